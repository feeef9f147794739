package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// UniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const UniqueViolation = "23505"

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == UniqueViolation && pgErr.ConstraintName == constraintName
}

// ViolatedConstraint returns the constraint name and the backend message of a
// unique violation. ok is false for any other error.
func ViolatedConstraint(err error) (constraint, message string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != UniqueViolation {
		return "", "", false
	}
	message = pgErr.Message
	if pgErr.Detail != "" {
		message += ": " + pgErr.Detail
	}
	return pgErr.ConstraintName, message, true
}
