package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/app/repositories"
	"github.com/yigit/alunos/internal/pkg/apperrors"
	pkgauth "github.com/yigit/alunos/internal/pkg/auth"
	"github.com/yigit/alunos/internal/pkg/validation"
)

// SessionProvider authenticates accounts and tracks their sessions
type SessionProvider struct {
	accounts repositories.AccountStore
	sessions repositories.SessionStore
	tokens   *pkgauth.JWTService
	hasher   *pkgauth.PasswordHasher
	logger   zerolog.Logger
	now      func() time.Time

	mu        sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64

	// ended holds sessions whose end was already published, keyed by id,
	// with their expiry. It covers stores that drop a session once it ends.
	ended map[string]time.Time
}

// endedRetention is how long past its expiry an ended session is remembered
const endedRetention = 24 * time.Hour

// NewSessionProvider creates a new SessionProvider
func NewSessionProvider(
	accounts repositories.AccountStore,
	sessions repositories.SessionStore,
	tokens *pkgauth.JWTService,
	hasher *pkgauth.PasswordHasher,
	logger zerolog.Logger,
) *SessionProvider {
	return &SessionProvider{
		accounts:  accounts,
		sessions:  sessions,
		tokens:    tokens,
		hasher:    hasher,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[uint64]Listener),
		ended:     make(map[string]time.Time),
	}
}

// WithClock replaces the clock used for session timestamps
func (p *SessionProvider) WithClock(now func() time.Time) *SessionProvider {
	p.now = now
	return p
}

// Subscribe registers a listener for session events
func (p *SessionProvider) Subscribe(listener Listener) *Subscription {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.listeners[id] = listener
	p.mu.Unlock()

	var once sync.Once
	return &Subscription{unsubscribe: func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}}
}

func (p *SessionProvider) publish(event Event) {
	p.mu.Lock()
	listeners := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.Unlock()

	p.logger.Debug().
		Str("event", event.Type.String()).
		Str("sessionID", event.Session.ID).
		Int("listeners", len(listeners)).
		Msg("Publishing session event")

	for _, l := range listeners {
		l(event)
	}
}

// SignUp creates an account
func (p *SessionProvider) SignUp(ctx context.Context, email, password string) (*models.Account, error) {
	if verr := validation.ValidateSignUp(email, password); verr != nil {
		return nil, verr
	}

	hash, err := p.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	account, err := p.accounts.CreateAccount(ctx, email, hash)
	if err != nil {
		return nil, err
	}

	p.logger.Info().Str("accountID", account.ID.String()).Msg("Account created")
	return account, nil
}

// SignIn checks credentials and opens a session. It returns the session and its access token.
func (p *SessionProvider) SignIn(ctx context.Context, email, password string) (*models.Session, string, error) {
	account, err := p.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("error retrieving account: %w", err)
	}

	if !p.hasher.Check(account.PasswordHash, password) {
		p.logger.Warn().Str("email", account.Email).Msg("Sign-in with wrong password")
		return nil, "", apperrors.ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := p.tokens.GenerateAccessToken(account.ID, account.Email, sessionID)
	if err != nil {
		return nil, "", err
	}

	session := &models.Session{
		ID:        sessionID,
		AccountID: account.ID,
		Email:     account.Email,
		CreatedAt: p.now().UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
	if err := p.sessions.CreateSession(ctx, session); err != nil {
		return nil, "", err
	}

	p.logger.Info().Str("accountID", account.ID.String()).Str("sessionID", sessionID).Msg("Signed in")
	p.publish(Event{Type: EventSignedIn, Session: *session})
	return session, token, nil
}

// CurrentSession resolves an access token to its active session
func (p *SessionProvider) CurrentSession(ctx context.Context, token string) (*models.Session, error) {
	claims, err := p.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, pkgauth.ErrExpiredToken) {
			p.expire(ctx, sessionFromClaims(claims))
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}

	session, err := p.sessions.GetSession(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, err
	}

	if session.RevokedAt != nil {
		return nil, apperrors.ErrTokenRevoked
	}
	if !session.Active(p.now()) {
		p.expire(ctx, *session)
		return nil, apperrors.ErrTokenExpired
	}
	return session, nil
}

// SignOut ends a session. Signing out an ended session succeeds without an event.
func (p *SessionProvider) SignOut(ctx context.Context, sessionID string) error {
	session, err := p.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return nil
		}
		return fmt.Errorf("error signing out: %w", err)
	}

	changed, err := p.sessions.RevokeSession(ctx, sessionID, p.now().UTC())
	if err != nil {
		return fmt.Errorf("error signing out: %w", err)
	}
	if !changed || !p.markEnded(*session) {
		return nil
	}

	p.logger.Info().Str("sessionID", sessionID).Msg("Signed out")
	p.publish(Event{Type: EventSignedOut, Session: *session})
	return nil
}

// Expire publishes EventExpired for a session whose expiry has passed, even
// when no request carries its token any more. It reports whether an event
// was published.
func (p *SessionProvider) Expire(ctx context.Context, session models.Session) bool {
	if p.now().Before(session.ExpiresAt) {
		return false
	}
	return p.expire(ctx, session)
}

// expire ends a session whose token ran out and publishes EventExpired once.
// known is used for the event when the store has already dropped the session.
func (p *SessionProvider) expire(ctx context.Context, known models.Session) bool {
	if known.ID == "" {
		return false
	}

	session, err := p.sessions.GetSession(ctx, known.ID)
	switch {
	case err == nil:
		changed, err := p.sessions.RevokeSession(ctx, session.ID, p.now().UTC())
		if err != nil {
			p.logger.Error().Err(err).Str("sessionID", known.ID).Msg("Error ending expired session")
			return false
		}
		if !changed {
			p.markEnded(*session)
			return false
		}
	case errors.Is(err, apperrors.ErrTokenNotFound):
		session = &known
	default:
		p.logger.Error().Err(err).Str("sessionID", known.ID).Msg("Error loading expired session")
		return false
	}

	if !p.markEnded(*session) {
		return false
	}
	p.logger.Info().Str("sessionID", session.ID).Msg("Session expired")
	p.publish(Event{Type: EventExpired, Session: *session})
	return true
}

// markEnded records that a session's end is being published. It returns false
// when it already was.
func (p *SessionProvider) markEnded(session models.Session) bool {
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, seen := p.ended[session.ID]; seen {
		return false
	}
	for id, expiresAt := range p.ended {
		if now.Sub(expiresAt) > endedRetention {
			delete(p.ended, id)
		}
	}
	p.ended[session.ID] = session.ExpiresAt
	return true
}

// sessionFromClaims rebuilds what an expired token says about its session
func sessionFromClaims(claims *pkgauth.Claims) models.Session {
	session := models.Session{
		ID:        claims.SessionID(),
		AccountID: claims.AccountID,
		Email:     claims.Email,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	if claims.IssuedAt != nil {
		session.CreatedAt = claims.IssuedAt.Time.UTC()
	}
	return session
}
