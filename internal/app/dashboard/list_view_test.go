package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alunos/internal/pkg/apperrors"
)

func newTestList(t *testing.T) (*ListView, *stubGateway, *Toaster, uuid.UUID) {
	t.Helper()
	gw := newStubGateway()
	toaster := NewToaster()
	owner := uuid.New()
	return NewListView(gw, owner, toaster, zerolog.Nop()), gw, toaster, owner
}

func TestListViewLoadAndFilter(t *testing.T) {
	ctx := context.Background()
	list, gw, _, owner := newTestList(t)

	_, err := gw.Create(ctx, owner, validInput("Ana Silva", "2024001", "12345678901"))
	require.NoError(t, err)
	_, err = gw.Create(ctx, owner, validInput("Bruno Costa", "2024002", "10987654321"))
	require.NoError(t, err)

	assert.Equal(t, ListLoading, list.State())
	require.NoError(t, list.Mount(ctx))
	require.NoError(t, list.Mount(ctx))
	assert.Equal(t, 1, gw.count("list"))
	assert.Equal(t, ListReady, list.State())
	assert.Len(t, list.Students(), 2)

	list.SetSearch("ANA")
	require.Len(t, list.Students(), 1)
	assert.Equal(t, "Ana Silva", list.Students()[0].FullName)

	list.SetSearch("2024002")
	require.Len(t, list.Students(), 1)
	assert.Equal(t, "Bruno Costa", list.Students()[0].FullName)

	list.SetSearch("zzz")
	assert.Empty(t, list.Students())
	assert.Equal(t, EmptyNoMatches, list.Empty())
	assert.Equal(t, "Tente ajustar sua busca", list.Empty().Hint())

	list.SetSearch("")
	assert.Equal(t, list.All(), list.Students())
	assert.Equal(t, EmptyNone, list.Empty())
	assert.Equal(t, 1, gw.count("list"), "search never refetches")
}

func TestListViewEmptyWithoutRecords(t *testing.T) {
	list, _, _, _ := newTestList(t)
	require.NoError(t, list.Load(context.Background()))
	assert.Equal(t, EmptyNoRecords, list.Empty())
	assert.Equal(t, "Comece adicionando seu primeiro aluno", list.Empty().Hint())
}

func TestListViewLoadFailureKeepsRowsAndNotifies(t *testing.T) {
	ctx := context.Background()
	list, gw, toaster, owner := newTestList(t)

	_, err := gw.Create(ctx, owner, validInput("Ana Silva", "2024001", "12345678901"))
	require.NoError(t, err)
	require.NoError(t, list.Load(ctx))

	gw.fail("list", apperrors.NewTransportError("list", errors.New("connection refused")))
	assert.Error(t, list.Load(ctx))
	assert.Equal(t, ListError, list.State())
	assert.Len(t, list.All(), 1)

	n, ok := toaster.Take()
	require.True(t, ok)
	assert.Equal(t, "Erro ao carregar alunos", n.Title)
	assert.Equal(t, "connection refused", n.Description)
	assert.True(t, n.Destructive())
}

func TestListViewDeleteFlow(t *testing.T) {
	ctx := context.Background()
	list, gw, toaster, owner := newTestList(t)

	created, err := gw.Create(ctx, owner, validInput("Ana Silva", "2024001", "12345678901"))
	require.NoError(t, err)
	require.NoError(t, list.Load(ctx))

	assert.ErrorIs(t, list.ConfirmDelete(ctx), ErrNoPendingDelete)
	_, err = list.RequestDelete(uuid.New())
	assert.ErrorIs(t, err, ErrStudentNotFound)

	prompt, err := list.RequestDelete(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Confirmar Exclusão", prompt.Title())
	assert.Contains(t, prompt.Message(), "Ana Silva")

	list.CancelDelete()
	_, pending := list.PendingDelete()
	assert.False(t, pending)
	assert.Zero(t, gw.count("delete"))

	_, err = list.RequestDelete(created.ID)
	require.NoError(t, err)
	require.NoError(t, list.ConfirmDelete(ctx))
	assert.Equal(t, 1, gw.count("delete"))
	assert.Equal(t, 2, gw.count("list"), "delete re-fetches the full list")
	assert.Empty(t, list.All())

	n, ok := toaster.Take()
	require.True(t, ok)
	assert.Equal(t, "Aluno excluído", n.Title)
	assert.False(t, n.Destructive())
}

func TestListViewDeleteFailure(t *testing.T) {
	ctx := context.Background()
	list, gw, toaster, owner := newTestList(t)

	created, err := gw.Create(ctx, owner, validInput("Ana Silva", "2024001", "12345678901"))
	require.NoError(t, err)
	require.NoError(t, list.Load(ctx))

	gw.fail("delete", apperrors.NewTransportError("delete", errors.New("permission denied")))
	_, err = list.RequestDelete(created.ID)
	require.NoError(t, err)
	assert.Error(t, list.ConfirmDelete(ctx))
	assert.Equal(t, 1, gw.count("list"))
	assert.Len(t, list.All(), 1)

	n, ok := toaster.Take()
	require.True(t, ok)
	assert.Equal(t, "Erro ao excluir aluno", n.Title)
	assert.Equal(t, "permission denied", n.Description)
	assert.True(t, n.Destructive())
}

func TestListViewDetachedIgnoresLateResult(t *testing.T) {
	ctx := context.Background()
	list, gw, toaster, owner := newTestList(t)
	_, err := gw.Create(ctx, owner, validInput("Ana Silva", "2024001", "12345678901"))
	require.NoError(t, err)

	gw.fail("list", errors.New("late failure"))
	gw.hold()
	done := make(chan error, 1)
	go func() { done <- list.Load(ctx) }()
	<-gw.entered

	list.Detach()
	gw.release()
	<-done

	assert.Equal(t, ListLoading, list.State())
	_, ok := toaster.Take()
	assert.False(t, ok)
	assert.ErrorIs(t, list.Load(ctx), ErrViewDetached)
}
