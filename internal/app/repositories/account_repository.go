package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/pkg/apperrors"
	"github.com/yigit/alunos/internal/pkg/dberrors"
	"github.com/yigit/alunos/internal/pkg/logger"
)

// AccountStore persists accounts for the session provider
type AccountStore interface {
	CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// AccountRepository handles account database operations
type AccountRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateAccount inserts an account; emails are stored lower case
func (r *AccountRepository) CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error) {
	account := &models.Account{Email: strings.ToLower(email), PasswordHash: passwordHash}

	sql, args, err := r.sb.Insert("accounts").
		Columns("email", "password_hash").
		Values(account.Email, account.PasswordHash).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create account SQL")
		return nil, fmt.Errorf("failed to build create account query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&account.ID, &account.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "accounts_email_key") {
			logger.Warn().Str("email", account.Email).Msg("Attempted to create account with duplicate email")
			return nil, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", account.Email).Msg("Error executing create account query")
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	return account, nil
}

// GetAccountByEmail retrieves an account by email
func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	sql, args, err := r.sb.Select("id", "email", "password_hash", "created_at").
		From("accounts").
		Where(squirrel.Eq{"email": strings.ToLower(email)}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get account by email SQL")
		return nil, fmt.Errorf("failed to build get account query: %w", err)
	}

	account := &models.Account{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Str("email", email).Msg("Error scanning account row")
		return nil, fmt.Errorf("error retrieving account: %w", err)
	}

	return account, nil
}
