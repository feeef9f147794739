package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConflictMessage(t *testing.T) {
	msg, ok := ConflictMessage(FieldRegistrationNumber)
	assert.True(t, ok)
	assert.Equal(t, "Esta matrícula já está cadastrada.", msg)

	msg, ok = ConflictMessage(FieldCPF)
	assert.True(t, ok)
	assert.Equal(t, "Este CPF já está cadastrado.", msg)

	_, ok = ConflictMessage("email")
	assert.False(t, ok)
}

func TestConflictErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("create student: %w", NewConflictError(FieldCPF, ""))

	var conflict *ConflictError
	assert.True(t, errors.As(err, &conflict))
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "duplicate value for cpf", conflict.Error())
}
