package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alunos/internal/pkg/apperrors"
)

func TestNormalizeStudentError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantField string
	}{
		{
			name: "registration number",
			err: &pgconn.PgError{
				Code:           "23505",
				ConstraintName: "students_registration_number_key",
				Message:        `duplicate key value violates unique constraint "students_registration_number_key"`,
			},
			wantField: apperrors.FieldRegistrationNumber,
		},
		{
			name: "cpf wrapped",
			err: fmt.Errorf("exec: %w", &pgconn.PgError{
				Code:           "23505",
				ConstraintName: "students_cpf_key",
				Message:        `duplicate key value violates unique constraint "students_cpf_key"`,
			}),
			wantField: apperrors.FieldCPF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := normalizeStudentError("create", tt.err)
			var conflict *apperrors.ConflictError
			require.True(t, errors.As(err, &conflict))
			assert.Equal(t, tt.wantField, conflict.Field)
			assert.Contains(t, conflict.Error(), "duplicate key value")
		})
	}
}

func TestNormalizeStudentErrorTransport(t *testing.T) {
	unknownConstraint := &pgconn.PgError{Code: "23505", ConstraintName: "students_pkey"}
	err := normalizeStudentError("create", unknownConstraint)
	assert.True(t, errors.Is(err, apperrors.ErrTransport))
	assert.False(t, errors.Is(err, apperrors.ErrConflict))

	network := errors.New("connection refused")
	err = normalizeStudentError("list", network)
	assert.True(t, errors.Is(err, apperrors.ErrTransport))
	assert.True(t, errors.Is(err, network))
	assert.Equal(t, "connection refused", err.Error())
}
