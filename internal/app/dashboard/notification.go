package dashboard

import "sync"

// Variant is the severity of a notification
type Variant int

const (
	VariantDefault Variant = iota
	VariantDestructive
)

func (v Variant) String() string {
	if v == VariantDestructive {
		return "destructive"
	}
	return "default"
}

// Notification is a transient message shown to the user
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"-"`
}

// Destructive reports whether the notification signals a failure
func (n Notification) Destructive() bool {
	return n.Variant == VariantDestructive
}

// Notifier is a fire-and-forget notification surface
type Notifier interface {
	Notify(Notification)
}

// Toaster keeps the most recent notification until it is taken
type Toaster struct {
	mu      sync.Mutex
	current *Notification
}

// NewToaster creates an empty Toaster
func NewToaster() *Toaster {
	return &Toaster{}
}

// Notify replaces any pending notification
func (t *Toaster) Notify(n Notification) {
	t.mu.Lock()
	t.current = &n
	t.mu.Unlock()
}

// Take returns the pending notification and clears it
func (t *Toaster) Take() (Notification, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Notification{}, false
	}
	n := *t.current
	t.current = nil
	return n, true
}

func notice(title, description string) Notification {
	return Notification{Title: title, Description: description}
}

func failure(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDestructive}
}
