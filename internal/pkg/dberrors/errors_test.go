package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestViolatedConstraint(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           UniqueViolation,
		Message:        `duplicate key value violates unique constraint "students_cpf_key"`,
		Detail:         "Key (cpf)=(12345678901) already exists.",
		ConstraintName: "students_cpf_key",
	}
	wrapped := fmt.Errorf("insert student: %w", pgErr)

	constraint, msg, ok := ViolatedConstraint(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "students_cpf_key", constraint)
	assert.Contains(t, msg, "duplicate key value")
	assert.Contains(t, msg, "Key (cpf)")

	assert.True(t, IsDuplicateConstraintError(wrapped, "students_cpf_key"))
	assert.False(t, IsDuplicateConstraintError(wrapped, "students_registration_number_key"))
}

func TestViolatedConstraintOtherErrors(t *testing.T) {
	_, _, ok := ViolatedConstraint(errors.New("connection refused"))
	assert.False(t, ok)

	_, _, ok = ViolatedConstraint(&pgconn.PgError{Code: "23503", ConstraintName: "students_owner_id_fkey"})
	assert.False(t, ok)
	assert.False(t, IsDuplicateConstraintError(nil, "students_cpf_key"))
}
