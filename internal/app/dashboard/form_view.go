package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/app/repositories"
	"github.com/yigit/alunos/internal/pkg/apperrors"
	"github.com/yigit/alunos/internal/pkg/validation"
)

var (
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrFormClosed       = errors.New("form is closed")
)

// FormMode selects between inserting a new student and editing an existing one
type FormMode interface {
	isFormMode()
}

// CreateMode submits through Create
type CreateMode struct{}

// EditMode submits through Update for Student
type EditMode struct {
	Student models.Student
}

func (CreateMode) isFormMode() {}
func (EditMode) isFormMode()   {}

// SubmitErrorMessage is the description shown for a failed create or update
func SubmitErrorMessage(err error) string {
	var conflict *apperrors.ConflictError
	if errors.As(err, &conflict) {
		if msg, ok := apperrors.ConflictMessage(conflict.Field); ok {
			return msg
		}
	}
	return err.Error()
}

// FormView collects a candidate record and saves it through the gateway
type FormView struct {
	mode     FormMode
	gateway  repositories.StudentGateway
	ownerID  uuid.UUID
	notifier Notifier
	onClose  func()
	logger   zerolog.Logger

	mu         sync.Mutex
	values     models.StudentInput
	submitting bool
	detached   bool
}

// NewFormView creates a FormView. In edit mode the fields start from the student.
func NewFormView(mode FormMode, gateway repositories.StudentGateway, ownerID uuid.UUID, notifier Notifier, onClose func(), logger zerolog.Logger) *FormView {
	f := &FormView{
		mode:     mode,
		gateway:  gateway,
		ownerID:  ownerID,
		notifier: notifier,
		onClose:  onClose,
		logger:   logger,
	}
	if edit, ok := mode.(EditMode); ok {
		f.values = edit.Student.Input()
	}
	return f
}

func (f *FormView) Mode() FormMode {
	return f.mode
}

// Editing reports whether the form updates an existing student
func (f *FormView) Editing() bool {
	_, ok := f.mode.(EditMode)
	return ok
}

func (f *FormView) Title() string {
	if f.Editing() {
		return "Editar Aluno"
	}
	return "Novo Aluno"
}

func (f *FormView) SubmitLabel() string {
	if f.Submitting() {
		return "Salvando..."
	}
	if f.Editing() {
		return "Atualizar"
	}
	return "Cadastrar"
}

// Values returns the current field values
func (f *FormView) Values() models.StudentInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// SetValues replaces the field values; inputs are disabled while submitting
func (f *FormView) SetValues(in models.StudentInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInProgress
	}
	f.values = in
	return nil
}

// Submitting reports whether a save is in flight
func (f *FormView) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Submit validates in and saves it. A failed validation never reaches the gateway.
func (f *FormView) Submit(ctx context.Context, in models.StudentInput) error {
	f.mu.Lock()
	if f.detached {
		f.mu.Unlock()
		return ErrFormClosed
	}
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	f.values = in
	if verr := validation.ValidateStudent(in); verr != nil {
		f.mu.Unlock()
		f.notifier.Notify(failure("Erro de validação", verr.Message))
		return verr
	}
	f.submitting = true
	f.mu.Unlock()

	detached, err := f.save(ctx, in)
	if detached {
		return err
	}

	if err != nil {
		f.logger.Warn().Err(err).Bool("editing", f.Editing()).Msg("Failed to save student")
		f.notifier.Notify(failure("Erro", SubmitErrorMessage(err)))
		return err
	}

	if f.Editing() {
		f.notifier.Notify(notice("Aluno atualizado!", "As informações foram atualizadas com sucesso."))
	} else {
		f.notifier.Notify(notice("Aluno cadastrado!", "O aluno foi adicionado com sucesso."))
	}
	f.close()
	return nil
}

// save calls the gateway and always clears the submitting flag
func (f *FormView) save(ctx context.Context, in models.StudentInput) (detached bool, err error) {
	defer func() {
		f.mu.Lock()
		f.submitting = false
		detached = f.detached
		f.mu.Unlock()
	}()

	switch m := f.mode.(type) {
	case EditMode:
		err = f.gateway.Update(ctx, f.ownerID, m.Student.ID, in)
	default:
		_, err = f.gateway.Create(ctx, f.ownerID, in)
	}
	return false, err
}

// Cancel closes the form without saving
func (f *FormView) Cancel() error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	f.mu.Unlock()
	f.close()
	return nil
}

func (f *FormView) close() {
	f.mu.Lock()
	if f.detached {
		f.mu.Unlock()
		return
	}
	f.detached = true
	f.mu.Unlock()
	if f.onClose != nil {
		f.onClose()
	}
}

// Detach unmounts the form without running onClose; a pending save is ignored
func (f *FormView) Detach() {
	f.mu.Lock()
	f.detached = true
	f.mu.Unlock()
}
