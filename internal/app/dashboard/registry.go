package dashboard

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/app/repositories"
)

// Registry keeps one Dashboard per session
type Registry struct {
	gateway   repositories.StudentGateway
	provider  SessionEvents
	navigator Navigator
	logger    zerolog.Logger

	mu         sync.Mutex
	dashboards map[string]*Dashboard
}

// NewRegistry creates an empty Registry
func NewRegistry(gateway repositories.StudentGateway, provider SessionEvents, navigator Navigator, logger zerolog.Logger) *Registry {
	return &Registry{
		gateway:    gateway,
		provider:   provider,
		navigator:  navigator,
		logger:     logger,
		dashboards: make(map[string]*Dashboard),
	}
}

// Get returns the session's dashboard, creating it on first use. A dashboard
// that already navigated away is closed and replaced.
func (r *Registry) Get(session models.Session) *Dashboard {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.dashboards[session.ID]; ok {
		if !d.Left() {
			return d
		}
		d.Close()
	}

	d := New(session, r.gateway, r.provider, r.navigator, r.logger)
	r.dashboards[session.ID] = d
	r.logger.Debug().Str("sessionID", session.ID).Msg("Dashboard created")
	return d
}

// Lookup returns an existing dashboard
func (r *Registry) Lookup(sessionID string) (*Dashboard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dashboards[sessionID]
	return d, ok
}

// Remove closes and forgets a session's dashboard
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	d, ok := r.dashboards[sessionID]
	delete(r.dashboards, sessionID)
	r.mu.Unlock()
	if ok {
		d.Close()
	}
}

// Sweep closes every dashboard that navigated away and returns how many were dropped
func (r *Registry) Sweep() int {
	r.mu.Lock()
	var left []*Dashboard
	for id, d := range r.dashboards {
		if d.Left() {
			left = append(left, d)
			delete(r.dashboards, id)
		}
	}
	r.mu.Unlock()

	for _, d := range left {
		d.Close()
	}
	return len(left)
}

// ExpireStale drops the dashboards whose session expired before now, including
// ones no request or socket has touched since. expire runs first for each of
// them so the session provider can publish the transition; a dashboard that
// still has not navigated afterwards is sent to UnauthenticatedPath directly.
func (r *Registry) ExpireStale(now time.Time, expire func(models.Session)) int {
	r.mu.Lock()
	var stale []*Dashboard
	for id, d := range r.dashboards {
		if !now.Before(d.Session().ExpiresAt) {
			stale = append(stale, d)
			delete(r.dashboards, id)
		}
	}
	r.mu.Unlock()

	for _, d := range stale {
		if expire != nil {
			expire(d.Session())
		}
		if !d.Left() {
			d.navigate(UnauthenticatedPath)
		}
		d.Close()
	}
	return len(stale)
}

// Len returns the number of live dashboards
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dashboards)
}

// CloseAll closes every dashboard
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.dashboards
	r.dashboards = make(map[string]*Dashboard)
	r.mu.Unlock()

	for _, d := range all {
		d.Close()
	}
}
