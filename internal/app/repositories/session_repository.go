package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/pkg/apperrors"
	"github.com/yigit/alunos/internal/pkg/logger"
)

// SessionStore persists sign-in sessions.
// RevokeSession reports whether the call ended a session that was still open.
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	RevokeSession(ctx context.Context, id string, at time.Time) (bool, error)
}

// SessionRepository handles session database operations
type SessionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateSession stores a new session
func (r *SessionRepository) CreateSession(ctx context.Context, session *models.Session) error {
	sql, args, err := r.sb.Insert("sessions").
		Columns("id", "account_id", "email", "created_at", "expires_at").
		Values(session.ID, session.AccountID, session.Email, session.CreatedAt, session.ExpiresAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create session SQL")
		return fmt.Errorf("failed to build create session query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("accountID", session.AccountID.String()).Msg("Error executing create session query")
		return fmt.Errorf("error creating session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by id
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	sql, args, err := r.sb.Select("id", "account_id", "email", "created_at", "expires_at", "revoked_at").
		From("sessions").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get session SQL")
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	s := &models.Session{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.AccountID, &s.Email, &s.CreatedAt, &s.ExpiresAt, &s.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Str("sessionID", id).Msg("Error scanning session row")
		return nil, fmt.Errorf("error retrieving session: %w", err)
	}

	return s, nil
}

// RevokeSession marks an open session as revoked
func (r *SessionRepository) RevokeSession(ctx context.Context, id string, at time.Time) (bool, error) {
	sql, args, err := r.sb.Update("sessions").
		Set("revoked_at", at).
		Where(squirrel.Eq{"id": id, "revoked_at": nil}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke session SQL")
		return false, fmt.Errorf("failed to build revoke session query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("sessionID", id).Msg("Error executing revoke session query")
		return false, fmt.Errorf("error revoking session: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

// CleanupExpiredSessions removes expired sessions and sessions revoked more than 30 days ago
func (r *SessionRepository) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	now := time.Now()
	thirtyDaysAgo := now.Add(-30 * 24 * time.Hour)

	sql, args, err := r.sb.Delete("sessions").
		Where(squirrel.Or{
			squirrel.Lt{"expires_at": now},
			squirrel.Lt{"revoked_at": thirtyDaysAgo},
		}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building cleanup sessions SQL")
		return 0, fmt.Errorf("failed to build cleanup sessions query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing cleanup sessions query")
		return 0, fmt.Errorf("error cleaning up sessions: %w", err)
	}

	deletedCount := cmdTag.RowsAffected()
	logger.Info().Int64("deletedCount", deletedCount).Msg("Cleaned up expired/old revoked sessions")
	return deletedCount, nil
}
