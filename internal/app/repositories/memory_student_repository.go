package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/pkg/apperrors"
)

type memoryStudent struct {
	models.Student
	seq uint64
}

// MemoryStudentRepository is an in-process StudentGateway with the same
// uniqueness rules as the students table.
type MemoryStudentRepository struct {
	mu       sync.RWMutex
	students map[uuid.UUID]*memoryStudent
	seq      uint64
	now      func() time.Time
}

// NewMemoryStudentRepository creates an empty MemoryStudentRepository
func NewMemoryStudentRepository() *MemoryStudentRepository {
	return &MemoryStudentRepository{
		students: make(map[uuid.UUID]*memoryStudent),
		now:      time.Now,
	}
}

// WithClock replaces the clock used for created_at
func (r *MemoryStudentRepository) WithClock(now func() time.Time) *MemoryStudentRepository {
	r.now = now
	return r
}

func duplicateDetail(field, value string) string {
	return fmt.Sprintf(`duplicate key value violates unique constraint "students_%s_key": Key (%s)=(%s) already exists.`, field, field, value)
}

// checkUnique must be called with the lock held. Constraints are checked in
// table order, so a registration number clash wins over a CPF clash on
// another row, as in Postgres.
func (r *MemoryStudentRepository) checkUnique(in models.StudentInput, except uuid.UUID) error {
	taken := func(match func(*memoryStudent) bool) bool {
		for id, s := range r.students {
			if id != except && match(s) {
				return true
			}
		}
		return false
	}

	if taken(func(s *memoryStudent) bool { return s.RegistrationNumber == in.RegistrationNumber }) {
		return apperrors.NewConflictError(apperrors.FieldRegistrationNumber,
			duplicateDetail(apperrors.FieldRegistrationNumber, in.RegistrationNumber))
	}
	if taken(func(s *memoryStudent) bool { return s.CPF == in.CPF }) {
		return apperrors.NewConflictError(apperrors.FieldCPF, duplicateDetail(apperrors.FieldCPF, in.CPF))
	}
	return nil
}

// List retrieves every student of an owner, newest first
func (r *MemoryStudentRepository) List(ctx context.Context, ownerID uuid.UUID) ([]models.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTransportError("list", err)
	}

	r.mu.RLock()
	rows := make([]*memoryStudent, 0, len(r.students))
	for _, s := range r.students {
		if s.OwnerID == ownerID {
			rows = append(rows, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	students := make([]models.Student, 0, len(rows))
	for _, s := range rows {
		students = append(students, s.Student)
	}
	return students, nil
}

// Create inserts a new student owned by ownerID
func (r *MemoryStudentRepository) Create(ctx context.Context, ownerID uuid.UUID, in models.StudentInput) (*models.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTransportError("create", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(in, uuid.Nil); err != nil {
		return nil, err
	}

	r.seq++
	row := &memoryStudent{
		Student: models.Student{
			ID:        uuid.New(),
			OwnerID:   ownerID,
			CreatedAt: r.now().UTC(),
		},
		seq: r.seq,
	}
	row.Apply(in)
	r.students[row.ID] = row

	created := row.Student
	return &created, nil
}

// Update replaces the mutable fields of the student identified by id
func (r *MemoryStudentRepository) Update(ctx context.Context, ownerID, id uuid.UUID, in models.StudentInput) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewTransportError("update", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.students[id]
	if !ok || row.OwnerID != ownerID {
		return nil
	}
	if err := r.checkUnique(in, id); err != nil {
		return err
	}
	row.Apply(in)
	return nil
}

// Delete removes the student identified by id
func (r *MemoryStudentRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewTransportError("delete", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if row, ok := r.students[id]; ok && row.OwnerID == ownerID {
		delete(r.students, id)
	}
	return nil
}
