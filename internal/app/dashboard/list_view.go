package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/app/repositories"
)

// ListState is the fetch state of a ListView
type ListState int

const (
	ListLoading ListState = iota
	ListReady
	ListError
)

func (s ListState) String() string {
	switch s {
	case ListLoading:
		return "loading"
	case ListReady:
		return "ready"
	default:
		return "error"
	}
}

// EmptyState tells why a list renders no rows
type EmptyState int

const (
	EmptyNone EmptyState = iota
	EmptyNoRecords
	EmptyNoMatches
)

// Hint is the text shown under "Nenhum aluno encontrado"
func (e EmptyState) Hint() string {
	switch e {
	case EmptyNoRecords:
		return "Comece adicionando seu primeiro aluno"
	case EmptyNoMatches:
		return "Tente ajustar sua busca"
	default:
		return ""
	}
}

var (
	ErrNoPendingDelete = errors.New("no delete awaiting confirmation")
	ErrStudentNotFound = errors.New("student not found in list")
	ErrViewDetached    = errors.New("view is no longer mounted")
)

// DeletePrompt is the confirmation shown before a delete
type DeletePrompt struct {
	Student models.Student
}

func (p DeletePrompt) Title() string {
	return "Confirmar Exclusão"
}

func (p DeletePrompt) Message() string {
	return fmt.Sprintf("Tem certeza que deseja excluir o aluno %s? Esta ação não pode ser desfeita.", p.Student.FullName)
}

// ListView holds the owner's students, the search text and the delete prompt
type ListView struct {
	gateway  repositories.StudentGateway
	ownerID  uuid.UUID
	notifier Notifier
	logger   zerolog.Logger

	mu         sync.Mutex
	state      ListState
	loaded     bool
	generation uint64
	students   []models.Student
	search     string
	pending    *DeletePrompt
	deleting   bool
	detached   bool
}

// NewListView creates a ListView in the loading state
func NewListView(gateway repositories.StudentGateway, ownerID uuid.UUID, notifier Notifier, logger zerolog.Logger) *ListView {
	return &ListView{
		gateway:  gateway,
		ownerID:  ownerID,
		notifier: notifier,
		logger:   logger,
		state:    ListLoading,
		students: []models.Student{},
	}
}

// Mount fetches the list the first time it is called
func (v *ListView) Mount(ctx context.Context) error {
	v.mu.Lock()
	loaded := v.loaded
	v.mu.Unlock()
	if loaded {
		return nil
	}
	return v.Load(ctx)
}

// Load fetches the full list. Previously fetched rows are kept on failure.
func (v *ListView) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.detached {
		v.mu.Unlock()
		return ErrViewDetached
	}
	v.generation++
	gen := v.generation
	v.state = ListLoading
	v.loaded = true
	v.mu.Unlock()

	students, err := v.gateway.List(ctx, v.ownerID)

	v.mu.Lock()
	if v.detached || gen != v.generation {
		v.mu.Unlock()
		return err
	}
	if err != nil {
		v.state = ListError
		v.mu.Unlock()
		v.logger.Warn().Err(err).Str("ownerID", v.ownerID.String()).Msg("Failed to load students")
		v.notifier.Notify(failure("Erro ao carregar alunos", err.Error()))
		return err
	}
	v.state = ListReady
	v.students = students
	v.mu.Unlock()
	return nil
}

// State returns the fetch state
func (v *ListView) State() ListState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Search returns the current search text
func (v *ListView) Search() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.search
}

// SetSearch replaces the search text
func (v *ListView) SetSearch(term string) {
	v.mu.Lock()
	v.search = term
	v.mu.Unlock()
}

// All returns every fetched student, newest first
func (v *ListView) All() []models.Student {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Student{}, v.students...)
}

// Students returns the fetched students that match the search text
func (v *ListView) Students() []models.Student {
	v.mu.Lock()
	defer v.mu.Unlock()
	return models.FilterStudents(v.students, v.search)
}

// Empty reports why the filtered list has no rows
func (v *ListView) Empty() EmptyState {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(models.FilterStudents(v.students, v.search)) > 0 {
		return EmptyNone
	}
	if v.search != "" {
		return EmptyNoMatches
	}
	return EmptyNoRecords
}

// Find looks up a fetched student by id
func (v *ListView) Find(id uuid.UUID) (models.Student, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, s := range v.students {
		if s.ID == id {
			return s, true
		}
	}
	return models.Student{}, false
}

// RequestDelete opens the confirmation prompt for a student
func (v *ListView) RequestDelete(id uuid.UUID) (DeletePrompt, error) {
	student, ok := v.Find(id)
	if !ok {
		return DeletePrompt{}, ErrStudentNotFound
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = &DeletePrompt{Student: student}
	return *v.pending, nil
}

// PendingDelete returns the open confirmation prompt, if any
func (v *ListView) PendingDelete() (DeletePrompt, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending == nil {
		return DeletePrompt{}, false
	}
	return *v.pending, true
}

// Deleting reports whether a confirmed delete is in flight
func (v *ListView) Deleting() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.deleting
}

// CancelDelete discards the confirmation prompt
func (v *ListView) CancelDelete() {
	v.mu.Lock()
	v.pending = nil
	v.mu.Unlock()
}

// ConfirmDelete deletes the student in the prompt and re-fetches the list
func (v *ListView) ConfirmDelete(ctx context.Context) error {
	v.mu.Lock()
	if v.pending == nil || v.deleting {
		v.mu.Unlock()
		return ErrNoPendingDelete
	}
	target := v.pending.Student
	v.pending = nil
	v.deleting = true
	v.mu.Unlock()

	err := v.gateway.Delete(ctx, v.ownerID, target.ID)

	v.mu.Lock()
	v.deleting = false
	detached := v.detached
	v.mu.Unlock()
	if detached {
		return err
	}

	if err != nil {
		v.logger.Warn().Err(err).Str("studentID", target.ID.String()).Msg("Failed to delete student")
		v.notifier.Notify(failure("Erro ao excluir aluno", err.Error()))
		return err
	}

	v.notifier.Notify(notice("Aluno excluído", "O aluno foi removido com sucesso."))
	if err := v.Load(ctx); err != nil && !errors.Is(err, ErrViewDetached) {
		v.logger.Debug().Err(err).Msg("Reload after delete failed")
	}
	return nil
}

// Detach unmounts the view; in-flight results are dropped
func (v *ListView) Detach() {
	v.mu.Lock()
	v.detached = true
	v.pending = nil
	v.mu.Unlock()
}
