package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/pkg/apperrors"
	"github.com/yigit/alunos/internal/pkg/logger"
)

const (
	sessionKeyPrefix  = "session:"
	revokeMaxAttempts = 3
)

// RedisSessionStore keeps sessions as JSON values that expire with the session
type RedisSessionStore struct {
	rdb *redis.Client
}

// NewRedisSessionStore creates a new RedisSessionStore
func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// CreateSession stores a session until it expires
func (s *RedisSessionStore) CreateSession(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	if err := s.rdb.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		logger.Error().Err(err).Str("accountID", session.AccountID.String()).Msg("Redis SET command failed")
		return fmt.Errorf("error creating session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id
func (s *RedisSessionStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Str("sessionID", id).Msg("Redis GET command failed")
		return nil, fmt.Errorf("error retrieving session: %w", err)
	}

	session := &models.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, nil
}

// RevokeSession marks an open session as revoked, keeping its remaining TTL
func (s *RedisSessionStore) RevokeSession(ctx context.Context, id string, at time.Time) (bool, error) {
	key := sessionKey(id)
	changed := false

	txf := func(tx *redis.Tx) error {
		changed = false
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}

		var session models.Session
		if err := json.Unmarshal(data, &session); err != nil {
			return err
		}
		if session.RevokedAt != nil {
			return nil
		}
		session.RevokedAt = &at
		updated, err := json.Marshal(session)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		if err == nil {
			changed = true
		}
		return err
	}

	for attempt := 0; attempt < revokeMaxAttempts; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			logger.Error().Err(err).Str("sessionID", id).Msg("Redis revoke transaction failed")
			return false, fmt.Errorf("error revoking session: %w", err)
		}
		return changed, nil
	}

	return false, fmt.Errorf("error revoking session: %w", redis.TxFailedErr)
}
