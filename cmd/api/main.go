package main

import (
	"context"
	"os"

	"github.com/yigit/alunos/internal/pkg/logger"
	"github.com/yigit/alunos/internal/server"
)

// @title Alunos API
// @version 1.0
// @description Student records API: owner-scoped CRUD over students with session-based sign-in

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
