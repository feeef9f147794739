package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/alunos/internal/app/models"
)

// SignUpRequest represents account registration data
type SignUpRequest struct {
	Email    string `json:"email" binding:"required" example:"professor@escola.com"`
	Password string `json:"password" binding:"required" example:"segredo123"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AccountResponse represents a created account
type AccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionResponse represents the current session
type SessionResponse struct {
	ID        string    `json:"id"`
	AccountID uuid.UUID `json:"accountId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string          `json:"accessToken"`
	TokenType   string          `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64           `json:"expiresIn"`
	Session     SessionResponse `json:"session"`
}

// NewAccountResponse maps an account model
func NewAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{ID: a.ID, Email: a.Email, CreatedAt: a.CreatedAt}
}

// NewSessionResponse maps a session model
func NewSessionResponse(s *models.Session) SessionResponse {
	return SessionResponse{ID: s.ID, AccountID: s.AccountID, Email: s.Email, ExpiresAt: s.ExpiresAt}
}

// NewTokenResponse builds the login response for a session
func NewTokenResponse(s *models.Session, token string, now time.Time) TokenResponse {
	return TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.ExpiresAt.Sub(now).Seconds()),
		Session:     NewSessionResponse(s),
	}
}
