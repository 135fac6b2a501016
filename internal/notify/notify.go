// Package notify holds toast and loading-overlay state independent of any
// page. Surfaces render it: the web shell into the DOM, the TUI with lipgloss.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
	Info    Kind = "info"
)

// Icon returns the glyph shown beside a toast of kind k.
func (k Kind) Icon() string {
	switch k {
	case Success:
		return "✓"
	case Error:
		return "✗"
	case Warning:
		return "⚠"
	default:
		return "ℹ"
	}
}

func (k Kind) valid() bool {
	switch k {
	case Success, Error, Warning, Info:
		return true
	}
	return false
}

// Toast is one transient notification.
type Toast struct {
	ID        string
	Message   string
	Kind      Kind
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Listener is told about every toast change so a surface can re-render.
type Listener func()

// Notifier keeps the active toast stack and the single overlay.
type Notifier struct {
	mu          sync.Mutex
	now         func() time.Time
	defaultLife time.Duration
	toasts      []Toast
	overlay     string
	overlayOn   bool
	listeners   []Listener
}

type Option func(*Notifier)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

// New returns a Notifier whose toasts live for defaultLife unless a call
// passes its own duration.
func New(defaultLife time.Duration, opts ...Option) *Notifier {
	n := &Notifier{now: time.Now, defaultLife: defaultLife}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe registers l for change notifications.
func (n *Notifier) Subscribe(l Listener) {
	n.mu.Lock()
	n.listeners = append(n.listeners, l)
	n.mu.Unlock()
}

// Notify appends a toast. Unknown kinds fall back to Info and d <= 0 uses
// the default lifetime.
func (n *Notifier) Notify(message string, kind Kind, d time.Duration) Toast {
	if !kind.valid() {
		kind = Info
	}
	if d <= 0 {
		d = n.defaultLife
	}
	n.mu.Lock()
	now := n.now()
	t := Toast{
		ID:        uuid.New().String(),
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(d),
	}
	n.toasts = append(n.toasts, t)
	n.mu.Unlock()
	n.changed()
	return t
}

// Dismiss removes the toast with id. It reports false if no such toast is
// active.
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	removed := false
	for i, t := range n.toasts {
		if t.ID == id {
			n.toasts = append(n.toasts[:i], n.toasts[i+1:]...)
			removed = true
			break
		}
	}
	n.mu.Unlock()
	if removed {
		n.changed()
	}
	return removed
}

// Expire removes and returns toasts whose expiry is not after now.
func (n *Notifier) Expire(now time.Time) []Toast {
	n.mu.Lock()
	var expired []Toast
	keep := n.toasts[:0]
	for _, t := range n.toasts {
		if !t.ExpiresAt.After(now) {
			expired = append(expired, t)
		} else {
			keep = append(keep, t)
		}
	}
	n.toasts = keep
	n.mu.Unlock()
	if len(expired) > 0 {
		n.changed()
	}
	return expired
}

// Active returns a copy of the toast stack in insertion order.
func (n *Notifier) Active() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Toast, len(n.toasts))
	copy(out, n.toasts)
	return out
}

// NextExpiry returns the earliest pending expiry.
func (n *Notifier) NextExpiry() (time.Time, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var next time.Time
	for _, t := range n.toasts {
		if next.IsZero() || t.ExpiresAt.Before(next) {
			next = t.ExpiresAt
		}
	}
	return next, !next.IsZero()
}

// ShowOverlay turns the blocking overlay on with message. Showing again
// while visible only replaces the message.
func (n *Notifier) ShowOverlay(message string) {
	if message == "" {
		message = "Loading..."
	}
	n.mu.Lock()
	n.overlay = message
	n.overlayOn = true
	n.mu.Unlock()
	n.changed()
}

// HideOverlay is a no-op when no overlay is showing.
func (n *Notifier) HideOverlay() {
	n.mu.Lock()
	was := n.overlayOn
	n.overlayOn = false
	n.mu.Unlock()
	if was {
		n.changed()
	}
}

// Overlay returns the overlay message and whether it is visible.
func (n *Notifier) Overlay() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.overlay, n.overlayOn
}

func (n *Notifier) changed() {
	n.mu.Lock()
	ls := append([]Listener(nil), n.listeners...)
	n.mu.Unlock()
	for _, l := range ls {
		l()
	}
}
