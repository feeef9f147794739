package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrTransport        = errors.New("transport failure")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Account errors
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Student constraint fields reported by ConflictError
const (
	FieldRegistrationNumber = "registration_number"
	FieldCPF                = "cpf"
)

// ValidationError is a local field-rule violation. It never leaves the process.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match ErrValidationFailed
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

var conflictMessages = map[string]string{
	FieldRegistrationNumber: "Esta matrícula já está cadastrada.",
	FieldCPF:                "Este CPF já está cadastrado.",
}

// ConflictMessage returns the text shown to users when field is already taken
func ConflictMessage(field string) (string, bool) {
	msg, ok := conflictMessages[field]
	return msg, ok
}

// ConflictError reports a uniqueness violation detected by the data store.
// Field names the violated unique column; Detail is the raw backend text.
type ConflictError struct {
	Field  string
	Detail string
}

// Error implements error interface
func (e *ConflictError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "duplicate value for " + e.Field
}

// Unwrap lets errors.Is match ErrConflict
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a ConflictError for the given field
func NewConflictError(field, detail string) *ConflictError {
	return &ConflictError{Field: field, Detail: detail}
}

// TransportError wraps any other backend or network failure.
// Its message is the backend message, unchanged.
type TransportError struct {
	Op  string
	Err error
}

// Error implements error interface
func (e *TransportError) Error() string {
	if e.Err == nil {
		return ErrTransport.Error()
	}
	return e.Err.Error()
}

// Unwrap exposes the backend error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrTransport
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// NewTransportError wraps err as a TransportError for operation op
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
