package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/alunos/internal/app/models"
)

// StudentRequest is the body of create and update requests
type StudentRequest struct {
	FullName           string `json:"full_name" example:"Ana Silva"`
	RegistrationNumber string `json:"registration_number" example:"2024001"`
	CPF                string `json:"cpf" example:"12345678901"`
	BirthDate          string `json:"birth_date" example:"2004-08-21"`
	Email              string `json:"email" example:"ana.silva@example.com"`
	Phone              string `json:"phone" example:"11987654321"`
}

// ToInput converts the request into a candidate record
func (r StudentRequest) ToInput() models.StudentInput {
	return models.StudentInput{
		FullName:           r.FullName,
		RegistrationNumber: r.RegistrationNumber,
		CPF:                r.CPF,
		BirthDate:          r.BirthDate,
		Email:              r.Email,
		Phone:              r.Phone,
	}
}

// StudentResponse is a student as returned by the API
type StudentResponse struct {
	ID                 uuid.UUID `json:"id"`
	FullName           string    `json:"full_name"`
	RegistrationNumber string    `json:"registration_number"`
	CPF                string    `json:"cpf"`
	BirthDate          string    `json:"birth_date"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	CreatedAt          time.Time `json:"created_at"`
}

// StudentListResponse contains the students matching a search
type StudentListResponse struct {
	Students []StudentResponse `json:"students"`
	Total    int               `json:"total"`
	Search   string            `json:"search,omitempty"`
}

// NewStudentResponse maps a student model to its response
func NewStudentResponse(s models.Student) StudentResponse {
	return StudentResponse{
		ID:                 s.ID,
		FullName:           s.FullName,
		RegistrationNumber: s.RegistrationNumber,
		CPF:                s.CPF,
		BirthDate:          s.BirthDate,
		Email:              s.Email,
		Phone:              s.Phone,
		CreatedAt:          s.CreatedAt,
	}
}

// NewStudentListResponse maps students to a list response
func NewStudentListResponse(students []models.Student, search string) StudentListResponse {
	items := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		items = append(items, NewStudentResponse(s))
	}
	return StudentListResponse{Students: items, Total: len(items), Search: search}
}
