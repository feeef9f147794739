package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alunos/internal/app/auth"
	"github.com/yigit/alunos/internal/app/models"
)

type failingSignOut struct {
	SessionEvents
	err error
}

func (f failingSignOut) SignOut(context.Context, string) error {
	return f.err
}

func TestDashboardModes(t *testing.T) {
	ctx := context.Background()
	provider, session := newTestProvider(t)
	gw := newStubGateway()
	d := New(*session, gw, provider, nil, zerolog.Nop())
	defer d.Close()

	created, err := gw.Create(ctx, session.AccountID, validInput("Ana Silva", "2024001", "12345678901"))
	require.NoError(t, err)

	assert.Equal(t, ModeList, d.Mode())
	require.NoError(t, d.Mount(ctx))
	assert.Equal(t, ListReady, d.List().State())

	assert.ErrorIs(t, d.Edit(uuid.New()), ErrStudentNotFound)

	require.NoError(t, d.Edit(created.ID))
	assert.Equal(t, ModeForm, d.Mode())
	assert.Nil(t, d.List())
	editing, ok := d.Editing()
	require.True(t, ok)
	assert.Equal(t, created.ID, editing.ID)
	assert.True(t, d.Form().Editing())

	require.NoError(t, d.CloseForm())
	assert.Equal(t, ModeList, d.Mode())
	assert.Nil(t, d.Form())
	_, ok = d.Editing()
	assert.False(t, ok)
	assert.Equal(t, ListLoading, d.List().State(), "list remounts after the form closes")

	d.OpenCreate()
	assert.Equal(t, ModeForm, d.Mode())
	assert.False(t, d.Form().Editing())
	_, ok = d.Editing()
	assert.False(t, ok)
}

func TestDashboardSubmitReturnsToFreshList(t *testing.T) {
	ctx := context.Background()
	provider, session := newTestProvider(t)
	gw := newStubGateway()
	d := New(*session, gw, provider, nil, zerolog.Nop())
	defer d.Close()

	require.NoError(t, d.Mount(ctx))
	d.List().SetSearch("nada")
	d.OpenCreate()
	require.NoError(t, d.SubmitForm(ctx, validInput("Ana Silva", "2024001", "12345678901")))

	assert.Equal(t, ModeList, d.Mode())
	require.NoError(t, d.Mount(ctx))
	assert.Equal(t, "", d.List().Search())
	assert.Len(t, d.List().Students(), 1)

	n, ok := d.Toaster().Take()
	require.True(t, ok)
	assert.Equal(t, "Aluno cadastrado!", n.Title)
}

func TestDashboardLogoutNavigatesOnce(t *testing.T) {
	provider, session := newTestProvider(t)
	nav := &recordingNavigator{}
	d := New(*session, newStubGateway(), provider, nav, zerolog.Nop())
	defer d.Close()

	require.NoError(t, d.Logout(context.Background()))
	assert.Equal(t, UnauthenticatedPath, d.Destination())
	assert.Equal(t, []string{UnauthenticatedPath}, nav.visited())

	n, ok := d.Toaster().Take()
	require.True(t, ok)
	assert.Equal(t, "Logout realizado", n.Title)
	assert.Equal(t, "Até logo!", n.Description)
}

func TestDashboardLogoutFailureStays(t *testing.T) {
	provider, session := newTestProvider(t)
	nav := &recordingNavigator{}
	events := failingSignOut{SessionEvents: provider, err: errors.New("network down")}
	d := New(*session, newStubGateway(), events, nav, zerolog.Nop())
	defer d.Close()

	assert.Error(t, d.Logout(context.Background()))
	assert.False(t, d.Left())
	assert.Empty(t, nav.visited())

	n, ok := d.Toaster().Take()
	require.True(t, ok)
	assert.Equal(t, "Erro ao sair", n.Title)
	assert.Equal(t, "network down", n.Description)
	assert.True(t, n.Destructive())
}

func TestDashboardFollowsExternalSessionEnd(t *testing.T) {
	ctx := context.Background()
	provider, session := newTestProvider(t)
	other, _, err := provider.SignIn(ctx, "professor@escola.com", "segredo123")
	require.NoError(t, err)

	nav := &recordingNavigator{}
	d := New(*session, newStubGateway(), provider, nav, zerolog.Nop())

	require.NoError(t, provider.SignOut(ctx, other.ID))
	assert.False(t, d.Left(), "another session's end is ignored")

	require.NoError(t, provider.SignOut(ctx, session.ID))
	assert.True(t, d.Left())
	assert.Equal(t, []string{UnauthenticatedPath}, nav.visited())

	d.Close()
	var after []auth.Event
	provider.Subscribe(func(e auth.Event) { after = append(after, e) })
	_, _, err = provider.SignIn(ctx, "professor@escola.com", "segredo123")
	require.NoError(t, err)
	assert.Len(t, after, 1)
	assert.Len(t, nav.visited(), 1)
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	provider, session := newTestProvider(t)
	reg := NewRegistry(newStubGateway(), provider, nil, zerolog.Nop())

	d := reg.Get(*session)
	assert.Same(t, d, reg.Get(*session))
	assert.Equal(t, 1, reg.Len())

	require.NoError(t, d.Logout(ctx))
	assert.Equal(t, 1, reg.Sweep())
	assert.Zero(t, reg.Len())

	fresh := reg.Get(*session)
	assert.NotSame(t, d, fresh)
	reg.Remove(session.ID)
	_, ok := reg.Lookup(session.ID)
	assert.False(t, ok)

	reg.Get(models.Session{ID: "a"})
	reg.Get(models.Session{ID: "b"})
	reg.CloseAll()
	assert.Zero(t, reg.Len())
}

func TestRegistryExpiresIdleDashboards(t *testing.T) {
	ctx := context.Background()
	provider, session := newTestProvider(t)
	later := session.ExpiresAt.Add(time.Minute)
	provider.WithClock(func() time.Time { return later })

	nav := &recordingNavigator{}
	reg := NewRegistry(newStubGateway(), provider, nav, zerolog.Nop())
	idle := reg.Get(*session)
	live := reg.Get(models.Session{ID: "live", ExpiresAt: later.Add(time.Hour)})

	var ended []auth.Event
	sub := provider.Subscribe(func(e auth.Event) {
		if e.Ended() {
			ended = append(ended, e)
		}
	})
	defer sub.Unsubscribe()

	assert.Zero(t, reg.Sweep(), "nothing navigated yet")
	assert.Equal(t, 1, reg.ExpireStale(later, func(s models.Session) { provider.Expire(ctx, s) }))

	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, UnauthenticatedPath, idle.Destination())
	assert.Equal(t, []string{UnauthenticatedPath}, nav.visited())
	require.Len(t, ended, 1)
	assert.Equal(t, auth.EventExpired, ended[0].Type)
	assert.Equal(t, session.ID, ended[0].Session.ID)
	assert.False(t, live.Left())

	// without a provider callback the dashboard still leaves
	assert.Equal(t, 1, reg.ExpireStale(later.Add(2*time.Hour), nil))
	assert.True(t, live.Left())
	assert.Zero(t, reg.Len())
}

// Create A, see it first, edit its phone, delete it, end with an empty list.
func TestAnaSilvaScenario(t *testing.T) {
	ctx := context.Background()
	provider, session := newTestProvider(t)
	gw := newStubGateway()
	d := New(*session, gw, provider, nil, zerolog.Nop())
	defer d.Close()

	require.NoError(t, d.Mount(ctx))
	assert.Equal(t, EmptyNoRecords, d.List().Empty())
	d.OpenCreate()
	a := models.StudentInput{
		FullName:           "Ana Silva",
		RegistrationNumber: "2024001",
		CPF:                "12345678901",
		BirthDate:          "2004-08-21",
		Email:              "ana.silva@example.com",
		Phone:              "11987654321",
	}
	require.NoError(t, d.SubmitForm(ctx, a))

	require.NoError(t, d.Mount(ctx))
	students := d.List().Students()
	require.Len(t, students, 1)
	assert.Equal(t, "Ana Silva", students[0].FullName)
	id := students[0].ID

	require.NoError(t, d.Edit(id))
	edited := d.Form().Values()
	edited.Phone = "21912345678"
	require.NoError(t, d.SubmitForm(ctx, edited))

	require.NoError(t, d.Mount(ctx))
	students = d.List().Students()
	require.Len(t, students, 1)
	assert.Equal(t, id, students[0].ID)
	assert.Equal(t, "21912345678", students[0].Phone)

	_, err := d.List().RequestDelete(id)
	require.NoError(t, err)
	require.NoError(t, d.List().ConfirmDelete(ctx))
	assert.Empty(t, d.List().Students())
	assert.Equal(t, EmptyNoRecords, d.List().Empty())
}
