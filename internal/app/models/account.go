package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is an authenticated identity that owns student records
type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Session is one sign-in of an account. Its ID is the access token's jti.
type Session struct {
	ID        string     `json:"id" db:"id"`
	AccountID uuid.UUID  `json:"account_id" db:"account_id"`
	Email     string     `json:"email" db:"email"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

// Active reports whether the session is neither revoked nor expired at now
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
