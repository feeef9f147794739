package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	StudentGateway StudentGateway
	AccountStore   AccountStore
	SessionStore   SessionStore
}

// NewRepositories initializes all repositories on top of PostgreSQL
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		StudentGateway: NewStudentRepository(db),
		AccountStore:   NewAccountRepository(db),
		SessionStore:   NewSessionRepository(db),
	}
}

// NewMemoryRepositories initializes in-process repositories
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		StudentGateway: NewMemoryStudentRepository(),
		AccountStore:   NewMemoryAccountStore(),
		SessionStore:   NewMemorySessionStore(),
	}
}

// WithSessionStore replaces the session store, e.g. with a RedisSessionStore
func (r *Repositories) WithSessionStore(store SessionStore) *Repositories {
	r.SessionStore = store
	return r
}
