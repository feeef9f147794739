package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/pkg/apperrors"
)

type formFixture struct {
	form    *FormView
	gw      *stubGateway
	toaster *Toaster
	owner   uuid.UUID
	closed  int
}

func newFormFixture(t *testing.T, mode FormMode, gw *stubGateway, owner uuid.UUID) *formFixture {
	t.Helper()
	f := &formFixture{gw: gw, toaster: NewToaster(), owner: owner}
	f.form = NewFormView(mode, gw, owner, f.toaster, func() { f.closed++ }, zerolog.Nop())
	return f
}

func TestFormViewValidationNeverCallsGateway(t *testing.T) {
	f := newFormFixture(t, CreateMode{}, newStubGateway(), uuid.New())

	in := validInput("Al", "2024001", "123")
	err := f.form.Submit(context.Background(), in)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Nome deve ter pelo menos 3 caracteres", verr.Message)
	assert.Zero(t, f.gw.count("create"))
	assert.Zero(t, f.closed)
	assert.False(t, f.form.Submitting())
	assert.Equal(t, in, f.form.Values())

	n, ok := f.toaster.Take()
	require.True(t, ok)
	assert.Equal(t, "Erro de validação", n.Title)
	assert.Equal(t, "Nome deve ter pelo menos 3 caracteres", n.Description)
	assert.True(t, n.Destructive())
}

func TestFormViewCreate(t *testing.T) {
	ctx := context.Background()
	f := newFormFixture(t, CreateMode{}, newStubGateway(), uuid.New())
	assert.Equal(t, "Novo Aluno", f.form.Title())
	assert.Equal(t, "Cadastrar", f.form.SubmitLabel())

	require.NoError(t, f.form.Submit(ctx, validInput("Ana Silva", "2024001", "12345678901")))
	assert.Equal(t, 1, f.closed)

	n, ok := f.toaster.Take()
	require.True(t, ok)
	assert.Equal(t, "Aluno cadastrado!", n.Title)

	students, err := f.gw.List(ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, students, 1)

	assert.ErrorIs(t, f.form.Submit(ctx, validInput("Ana Silva", "2024009", "99999999999")), ErrFormClosed)
}

func TestFormViewEditPrepopulatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	gw := newStubGateway()
	owner := uuid.New()
	created, err := gw.Create(ctx, owner, validInput("Ana Silva", "2024001", "12345678901"))
	require.NoError(t, err)

	f := newFormFixture(t, EditMode{Student: *created}, gw, owner)
	assert.Equal(t, created.Input(), f.form.Values())
	assert.Equal(t, "Editar Aluno", f.form.Title())
	assert.Equal(t, "Atualizar", f.form.SubmitLabel())

	in := f.form.Values()
	in.Phone = "21912345678"
	require.NoError(t, f.form.Submit(ctx, in))
	assert.Equal(t, 1, gw.count("update"))
	assert.Zero(t, gw.count("create"))

	n, _ := f.toaster.Take()
	assert.Equal(t, "Aluno atualizado!", n.Title)
}

func TestFormViewConflictMessages(t *testing.T) {
	ctx := context.Background()
	gw := newStubGateway()
	owner := uuid.New()
	_, err := gw.Create(ctx, owner, validInput("Ana Silva", "2024001", "12345678901"))
	require.NoError(t, err)

	tests := []struct {
		name string
		in   models.StudentInput
		want string
	}{
		{"registration number", validInput("Outra Ana", "2024001", "99999999999"), "Esta matrícula já está cadastrada."},
		{"cpf", validInput("Outra Ana", "2024999", "12345678901"), "Este CPF já está cadastrado."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFormFixture(t, CreateMode{}, gw, owner)
			err := f.form.Submit(ctx, tt.in)
			assert.ErrorIs(t, err, apperrors.ErrConflict)
			assert.Zero(t, f.closed)
			assert.False(t, f.form.Submitting())

			n, ok := f.toaster.Take()
			require.True(t, ok)
			assert.Equal(t, "Erro", n.Title)
			assert.Equal(t, tt.want, n.Description)
			assert.True(t, n.Destructive())
		})
	}
}

func TestFormViewTransportMessageVerbatim(t *testing.T) {
	gw := newStubGateway()
	gw.fail("create", apperrors.NewTransportError("create", errors.New("upstream timeout")))
	f := newFormFixture(t, CreateMode{}, gw, uuid.New())

	assert.Error(t, f.form.Submit(context.Background(), validInput("Ana Silva", "2024001", "12345678901")))
	n, _ := f.toaster.Take()
	assert.Equal(t, "upstream timeout", n.Description)
	assert.False(t, f.form.Submitting())
	assert.Equal(t, "Cadastrar", f.form.SubmitLabel())
}

func TestFormViewRejectsDuplicateSubmit(t *testing.T) {
	ctx := context.Background()
	gw := newStubGateway()
	f := newFormFixture(t, CreateMode{}, gw, uuid.New())
	in := validInput("Ana Silva", "2024001", "12345678901")

	gw.hold()
	done := make(chan error, 1)
	go func() { done <- f.form.Submit(ctx, in) }()
	<-gw.entered

	assert.True(t, f.form.Submitting())
	assert.Equal(t, "Salvando...", f.form.SubmitLabel())
	assert.ErrorIs(t, f.form.Submit(ctx, in), ErrSubmitInProgress)
	assert.ErrorIs(t, f.form.Cancel(), ErrSubmitInProgress)
	assert.ErrorIs(t, f.form.SetValues(in), ErrSubmitInProgress)

	gw.release()
	require.NoError(t, <-done)
	assert.False(t, f.form.Submitting())
	assert.Equal(t, 1, gw.count("create"))
	assert.Equal(t, 1, f.closed)
}

func TestFormViewDetachedIgnoresResolution(t *testing.T) {
	ctx := context.Background()
	gw := newStubGateway()
	f := newFormFixture(t, CreateMode{}, gw, uuid.New())

	gw.hold()
	done := make(chan error, 1)
	go func() { done <- f.form.Submit(ctx, validInput("Ana Silva", "2024001", "12345678901")) }()
	<-gw.entered

	f.form.Detach()
	gw.release()
	require.NoError(t, <-done)

	assert.Zero(t, f.closed)
	_, ok := f.toaster.Take()
	assert.False(t, ok)
}

func TestFormViewCancel(t *testing.T) {
	f := newFormFixture(t, CreateMode{}, newStubGateway(), uuid.New())
	require.NoError(t, f.form.Cancel())
	require.NoError(t, f.form.Cancel())
	assert.Equal(t, 1, f.closed)
}
