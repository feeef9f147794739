package auth

import (
	"github.com/yigit/alunos/internal/app/models"
)

// EventType identifies a session state change
type EventType int

const (
	EventSignedIn EventType = iota + 1
	EventSignedOut
	EventExpired
)

func (t EventType) String() string {
	switch t {
	case EventSignedIn:
		return "signed_in"
	case EventSignedOut:
		return "signed_out"
	case EventExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Event is delivered to every listener when a session changes state
type Event struct {
	Type    EventType
	Session models.Session
}

// Ended reports whether the event terminates its session
func (e Event) Ended() bool {
	return e.Type == EventSignedOut || e.Type == EventExpired
}

// Listener receives session events. It is called synchronously on the
// goroutine that caused the change and must not block.
type Listener func(Event)

// Subscription releases a listener
type Subscription struct {
	unsubscribe func()
}

// Unsubscribe stops delivery. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.unsubscribe == nil {
		return
	}
	s.unsubscribe()
}
