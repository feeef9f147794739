package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleStudents() []Student {
	return []Student{
		{FullName: "Ana Silva", RegistrationNumber: "2024001"},
		{FullName: "Bruno Costa", RegistrationNumber: "2024002"},
		{FullName: "Carla Anaya", RegistrationNumber: "MAT-77"},
		{FullName: "Diego Souza", RegistrationNumber: "2023ANA"},
	}
}

func TestFilterStudents(t *testing.T) {
	students := sampleStudents()

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"empty term keeps everything in order", "", []string{"Ana Silva", "Bruno Costa", "Carla Anaya", "Diego Souza"}},
		{"name match ignores case", "ana", []string{"Ana Silva", "Carla Anaya", "Diego Souza"}},
		{"registration number match", "2024", []string{"Ana Silva", "Bruno Costa"}},
		{"upper case term", "MAT", []string{"Carla Anaya"}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterStudents(students, tt.term)
			names := make([]string, 0, len(got))
			for _, s := range got {
				names = append(names, s.FullName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestStudentApplyKeepsIdentity(t *testing.T) {
	s := sampleStudents()[0]
	s.CPF = "12345678901"
	in := s.Input()
	in.Phone = "11999990000"
	in.FullName = "Ana Maria Silva"

	before := s
	s.Apply(in)

	assert.Equal(t, before.ID, s.ID)
	assert.Equal(t, before.OwnerID, s.OwnerID)
	assert.Equal(t, before.CreatedAt, s.CreatedAt)
	assert.Equal(t, "Ana Maria Silva", s.FullName)
	assert.Equal(t, "11999990000", s.Phone)
}

func TestFormattedBirthDate(t *testing.T) {
	assert.Equal(t, "31/12/2001", Student{BirthDate: "2001-12-31"}.FormattedBirthDate())
	assert.Equal(t, "ontem", Student{BirthDate: "ontem"}.FormattedBirthDate())
}
