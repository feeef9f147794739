package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/pkg/apperrors"
)

// MemoryAccountStore is an in-process AccountStore
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

// NewMemoryAccountStore creates an empty MemoryAccountStore
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: make(map[string]*models.Account)}
}

func (s *MemoryAccountStore) CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := strings.ToLower(email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[key]; exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}
	account := &models.Account{
		ID:           uuid.New(),
		Email:        key,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.accounts[key] = account

	copied := *account
	return &copied, nil
}

func (s *MemoryAccountStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	copied := *account
	return &copied, nil
}

// MemorySessionStore is an in-process SessionStore
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

// NewMemorySessionStore creates an empty MemorySessionStore
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.Session)}
}

func (s *MemorySessionStore) CreateSession(ctx context.Context, session *models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *MemorySessionStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	return &session, nil
}

func (s *MemorySessionStore) RevokeSession(ctx context.Context, id string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok || session.RevokedAt != nil {
		return false, nil
	}
	session.RevokedAt = &at
	s.sessions[id] = session
	return true, nil
}
