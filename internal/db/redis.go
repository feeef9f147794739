package db

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/yigit/alunos/internal/config"
	"github.com/yigit/alunos/internal/pkg/logger"
)

// NewRedisClient connects to the Redis server that holds sessions
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Sessions.RedisAddr,
		Password: cfg.Sessions.RedisPassword,
		DB:       cfg.Sessions.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Sessions.RedisAddr, err)
	}

	logger.Info().Str("addr", cfg.Sessions.RedisAddr).Msg("Connected to Redis")
	return client, nil
}
