package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/app/repositories"
	"github.com/yigit/alunos/internal/pkg/validation"
)

// StudentService defines the interface for student-related operations
type StudentService interface {
	ListStudents(ctx context.Context, ownerID uuid.UUID, search string) ([]models.Student, error)
	CreateStudent(ctx context.Context, ownerID uuid.UUID, in models.StudentInput) (*models.Student, error)
	UpdateStudent(ctx context.Context, ownerID, id uuid.UUID, in models.StudentInput) error
	DeleteStudent(ctx context.Context, ownerID, id uuid.UUID) error
}

// studentServiceImpl implements the StudentService interface
type studentServiceImpl struct {
	gateway repositories.StudentGateway
}

// NewStudentService creates a new student service instance
func NewStudentService(gateway repositories.StudentGateway) StudentService {
	return &studentServiceImpl{gateway: gateway}
}

// ListStudents returns the owner's students matching search, newest first
func (s *studentServiceImpl) ListStudents(ctx context.Context, ownerID uuid.UUID, search string) ([]models.Student, error) {
	students, err := s.gateway.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return models.FilterStudents(students, search), nil
}

// CreateStudent validates and inserts a student
func (s *studentServiceImpl) CreateStudent(ctx context.Context, ownerID uuid.UUID, in models.StudentInput) (*models.Student, error) {
	if verr := validation.ValidateStudent(in); verr != nil {
		return nil, verr
	}
	return s.gateway.Create(ctx, ownerID, in)
}

// UpdateStudent validates and replaces a student's fields
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, ownerID, id uuid.UUID, in models.StudentInput) error {
	if verr := validation.ValidateStudent(in); verr != nil {
		return verr
	}
	return s.gateway.Update(ctx, ownerID, id, in)
}

// DeleteStudent removes a student
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.gateway.Delete(ctx, ownerID, id)
}
