package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/alunos/internal/app/auth"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/app/models/dto"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AccountResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	CurrentSession(ctx context.Context, token string) (*models.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	provider *auth.SessionProvider
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(provider *auth.SessionProvider, logger zerolog.Logger) AuthService {
	return &authServiceImpl{provider: provider, logger: logger}
}

// SignUp registers a new account
func (s *authServiceImpl) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AccountResponse, error) {
	account, err := s.provider.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Debug().Err(err).Str("email", req.Email).Msg("Sign-up rejected")
		return nil, err
	}
	resp := dto.NewAccountResponse(account)
	return &resp, nil
}

// Login authenticates a user and returns an access token
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	session, token, err := s.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	resp := dto.NewTokenResponse(session, token, time.Now())
	return &resp, nil
}

// CurrentSession resolves a token to its active session
func (s *authServiceImpl) CurrentSession(ctx context.Context, token string) (*models.Session, error) {
	return s.provider.CurrentSession(ctx, token)
}

// Logout ends a session
func (s *authServiceImpl) Logout(ctx context.Context, sessionID string) error {
	return s.provider.SignOut(ctx, sessionID)
}
