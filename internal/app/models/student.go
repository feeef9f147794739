package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BirthDateLayout is the calendar date format used by forms and the store
const BirthDateLayout = "2006-01-02"

// Student defines the student model based on the 'students' table
type Student struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	FullName           string    `json:"full_name" db:"full_name"`
	RegistrationNumber string    `json:"registration_number" db:"registration_number"`
	CPF                string    `json:"cpf" db:"cpf"`
	BirthDate          string    `json:"birth_date" db:"birth_date"` // YYYY-MM-DD
	Email              string    `json:"email" db:"email"`
	Phone              string    `json:"phone" db:"phone"`
	OwnerID            uuid.UUID `json:"owner_id" db:"owner_id"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// StudentInput is a candidate record: the six fields a form submits.
// Field order matches the validation order.
type StudentInput struct {
	FullName           string `json:"full_name" form:"full_name" validate:"min=3,max=100"`
	RegistrationNumber string `json:"registration_number" form:"registration_number" validate:"min=1,max=50"`
	CPF                string `json:"cpf" form:"cpf" validate:"cpf"`
	BirthDate          string `json:"birth_date" form:"birth_date" validate:"required"`
	Email              string `json:"email" form:"email" validate:"required,email,max=255"`
	Phone              string `json:"phone" form:"phone" validate:"min=10,max=20"`
}

// Input returns the mutable fields of the student as a candidate record
func (s Student) Input() StudentInput {
	return StudentInput{
		FullName:           s.FullName,
		RegistrationNumber: s.RegistrationNumber,
		CPF:                s.CPF,
		BirthDate:          s.BirthDate,
		Email:              s.Email,
		Phone:              s.Phone,
	}
}

// Apply replaces every mutable field with the values from in.
// ID, OwnerID and CreatedAt are left untouched.
func (s *Student) Apply(in StudentInput) {
	s.FullName = in.FullName
	s.RegistrationNumber = in.RegistrationNumber
	s.CPF = in.CPF
	s.BirthDate = in.BirthDate
	s.Email = in.Email
	s.Phone = in.Phone
}

// FormattedBirthDate renders the birth date as dd/mm/yyyy, or the raw value
// when it is not a calendar date.
func (s Student) FormattedBirthDate() string {
	t, err := time.Parse(BirthDateLayout, s.BirthDate)
	if err != nil {
		return s.BirthDate
	}
	return t.Format("02/01/2006")
}

// Matches reports whether the full name or registration number contains
// term, ignoring case. An empty term matches every student.
func (s Student) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(s.FullName), term) ||
		strings.Contains(strings.ToLower(s.RegistrationNumber), term)
}

// FilterStudents returns the subsequence of students matching term, in order
func FilterStudents(students []Student, term string) []Student {
	filtered := make([]Student, 0, len(students))
	for _, s := range students {
		if s.Matches(term) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
