package dashboard

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/alunos/internal/app/auth"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/app/repositories"
)

// UnauthenticatedPath is where a dashboard navigates once its session ends
const UnauthenticatedPath = "/auth"

// Mode is the view a dashboard is showing
type Mode int

const (
	ModeList Mode = iota
	ModeForm
)

func (m Mode) String() string {
	if m == ModeForm {
		return "form"
	}
	return "list"
}

// SessionEvents is the part of the session provider a dashboard uses
type SessionEvents interface {
	Subscribe(listener auth.Listener) *auth.Subscription
	SignOut(ctx context.Context, sessionID string) error
}

// Navigator is told when a dashboard leaves for another page
type Navigator interface {
	Navigate(sessionID, path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(sessionID, path string)

func (f NavigatorFunc) Navigate(sessionID, path string) {
	f(sessionID, path)
}

// Dashboard composes the list and form views for one session
type Dashboard struct {
	session   models.Session
	gateway   repositories.StudentGateway
	provider  SessionEvents
	toaster   *Toaster
	navigator Navigator
	logger    zerolog.Logger

	subscription *auth.Subscription
	destination  atomic.Value

	mu      sync.Mutex
	mode    Mode
	editing *models.Student
	list    *ListView
	form    *FormView
}

// New creates a Dashboard in list mode and subscribes it to session events
func New(session models.Session, gateway repositories.StudentGateway, provider SessionEvents, navigator Navigator, logger zerolog.Logger) *Dashboard {
	d := &Dashboard{
		session:   session,
		gateway:   gateway,
		provider:  provider,
		toaster:   NewToaster(),
		navigator: navigator,
		logger:    logger.With().Str("sessionID", session.ID).Logger(),
		mode:      ModeList,
	}
	d.destination.Store("")
	d.list = d.newList()
	d.subscription = provider.Subscribe(d.onSessionEvent)
	return d
}

func (d *Dashboard) newList() *ListView {
	return NewListView(d.gateway, d.session.AccountID, d.toaster, d.logger)
}

// onSessionEvent runs on the provider's goroutine and must not take d.mu
func (d *Dashboard) onSessionEvent(event auth.Event) {
	if !event.Ended() || event.Session.ID != d.session.ID {
		return
	}
	d.logger.Info().Str("event", event.Type.String()).Msg("Session ended, leaving dashboard")
	d.navigate(UnauthenticatedPath)
}

func (d *Dashboard) navigate(path string) {
	if !d.destination.CompareAndSwap("", path) {
		return
	}
	if d.navigator != nil {
		d.navigator.Navigate(d.session.ID, path)
	}
}

// Session returns the session the dashboard belongs to
func (d *Dashboard) Session() models.Session {
	return d.session
}

// Toaster returns the dashboard's notification surface
func (d *Dashboard) Toaster() *Toaster {
	return d.toaster
}

// Destination returns the page the dashboard navigated to, or ""
func (d *Dashboard) Destination() string {
	return d.destination.Load().(string)
}

// Left reports whether the dashboard navigated away
func (d *Dashboard) Left() bool {
	return d.Destination() != ""
}

// Mode returns the current view mode
func (d *Dashboard) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Editing returns the student attached to the form, if any
func (d *Dashboard) Editing() (models.Student, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.editing == nil {
		return models.Student{}, false
	}
	return *d.editing, true
}

// List returns the list view, or nil in form mode
func (d *Dashboard) List() *ListView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.list
}

// Form returns the form view, or nil in list mode
func (d *Dashboard) Form() *FormView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form
}

// Mount loads the list if it has not been fetched since entering list mode
func (d *Dashboard) Mount(ctx context.Context) error {
	list := d.List()
	if list == nil {
		return nil
	}
	return list.Mount(ctx)
}

// Refresh re-fetches the list
func (d *Dashboard) Refresh(ctx context.Context) error {
	list := d.List()
	if list == nil {
		return nil
	}
	return list.Load(ctx)
}

// OpenCreate switches to an empty form
func (d *Dashboard) OpenCreate() {
	d.openForm(CreateMode{}, nil)
}

// Edit switches to a form pre-populated with the listed student id
func (d *Dashboard) Edit(id uuid.UUID) error {
	list := d.List()
	if list == nil {
		return ErrViewDetached
	}
	student, ok := list.Find(id)
	if !ok {
		return ErrStudentNotFound
	}
	d.openForm(EditMode{Student: student}, &student)
	return nil
}

func (d *Dashboard) openForm(mode FormMode, editing *models.Student) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.list != nil {
		d.list.Detach()
		d.list = nil
	}
	if d.form != nil {
		d.form.Detach()
	}

	var form *FormView
	form = NewFormView(mode, d.gateway, d.session.AccountID, d.toaster, func() { d.closeForm(form) }, d.logger)
	d.form = form
	d.editing = editing
	d.mode = ModeForm
}

// SubmitForm submits the open form
func (d *Dashboard) SubmitForm(ctx context.Context, in models.StudentInput) error {
	form := d.Form()
	if form == nil {
		return ErrFormClosed
	}
	return form.Submit(ctx, in)
}

// CloseForm cancels the open form and returns to a freshly mounted list
func (d *Dashboard) CloseForm() error {
	form := d.Form()
	if form == nil {
		return nil
	}
	return form.Cancel()
}

// closeForm runs when form closes itself after cancel or a successful save
func (d *Dashboard) closeForm(form *FormView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.form != form {
		return
	}
	d.form = nil
	d.editing = nil
	d.mode = ModeList
	d.list = d.newList()
}

// Logout signs out and navigates to the unauthenticated entry point on success
func (d *Dashboard) Logout(ctx context.Context) error {
	if err := d.provider.SignOut(ctx, d.session.ID); err != nil {
		d.logger.Warn().Err(err).Msg("Sign-out failed")
		d.toaster.Notify(failure("Erro ao sair", err.Error()))
		return err
	}
	d.toaster.Notify(notice("Logout realizado", "Até logo!"))
	d.navigate(UnauthenticatedPath)
	return nil
}

// Close releases the session subscription and unmounts both views
func (d *Dashboard) Close() {
	d.subscription.Unsubscribe()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.list != nil {
		d.list.Detach()
	}
	if d.form != nil {
		d.form.Detach()
	}
}
