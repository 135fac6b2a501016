// Package action is the dispatch table behind every button in the
// dashboard. Each action either completes instantly or runs as a delayed
// simulated task whose Outcome the surface applies when it settles.
package action

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/complyhub/complyhub/internal/notify"
)

var (
	ErrUnknownAction        = errors.New("unknown action")
	ErrInvalidInput         = errors.New("invalid input")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrDuplicateAction      = errors.New("action already registered")
)

// Style selects how an action shows that it is in progress.
type Style int

const (
	// Instant actions complete synchronously with no indicator.
	Instant Style = iota
	// Blocking actions cover the page with the loading overlay.
	Blocking
	// Inline actions show a pending message in their result panel.
	Inline
)

func (s Style) String() string {
	switch s {
	case Blocking:
		return "blocking"
	case Inline:
		return "inline"
	}
	return "instant"
}

// Input carries the form fields submitted with an action.
type Input map[string]string

// Get returns the trimmed value of key.
func (in Input) Get(key string) string {
	return strings.TrimSpace(in[key])
}

// Confirmed reports whether the user accepted the action's confirmation.
func (in Input) Confirmed() bool {
	switch strings.ToLower(in.Get("confirm")) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// Field is one validated input. Rule uses validator tags; Message is the
// warning shown when it fails.
type Field struct {
	Name    string
	Rule    string
	Message string
}

// FieldError reports which input failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrInvalidInput }

// ConfirmationError carries the prompt a surface should show before
// dispatching again with confirm=true.
type ConfirmationError struct {
	Action string
	Prompt string
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfirmationRequired, e.Action)
}

func (e *ConfirmationError) Unwrap() error { return ErrConfirmationRequired }

// Action is one entry of the dispatch table.
type Action struct {
	Name    string
	Label   string
	Style   Style
	Delay   time.Duration
	Target  string // result panel id for Inline actions
	Fields  []Field
	Confirm string
	Pending func(in Input) string
	Run     func(ctx context.Context, in Input) (Outcome, error)
}

func (a Action) pendingText(in Input) string {
	if a.Pending == nil {
		return "Loading..."
	}
	return a.Pending(in)
}

func fixed(s string) func(Input) string {
	return func(Input) string { return s }
}

// ── outcome ──────────────────────────────────────────────────

// Outcome is everything an action does to the page once it settles.
type Outcome struct {
	Panel      *Panel
	Toast      *Toast
	Announce   string
	Navigate   *Navigation
	CloseModal string
	Fields     map[string]string // element id -> new value
	Enable     []string
	Reveal     []string
}

type Toast struct {
	Message string
	Kind    notify.Kind
}

// Navigation moves to a page and optionally a tab inside it. An empty
// Container is resolved from the tab id.
type Navigation struct {
	Page      string
	Container string
	Tab       string
}

// Panel is a status block rendered into Target.
type Panel struct {
	Target   string
	Level    string // success, info, warning, critical
	Icon     string
	Title    string
	Lines    []string
	Heading  string
	Items    []string
	Pre      string
	PreLabel string
	Table    *Table
	Actions  []Ref
	Note     *Panel
	Live     bool
}

// Ref is a button that dispatches another action.
type Ref struct {
	Name      string
	Label     string
	AriaLabel string
	Variant   string
}

// Table is surface-neutral tabular output.
type Table struct {
	Caption string
	Headers []string
	Rows    [][]Cell
}

// Cell is plain text, optionally shown as a status badge of class Badge.
type Cell struct {
	Text  string
	Badge string
}

func textRow(values ...string) []Cell {
	row := make([]Cell, len(values))
	for i, v := range values {
		row[i] = Cell{Text: v}
	}
	return row
}

func toast(kind notify.Kind, format string, args ...any) *Toast {
	return &Toast{Message: fmt.Sprintf(format, args...), Kind: kind}
}

// ── registry ─────────────────────────────────────────────────

// Registry maps action names to actions.
type Registry struct {
	actions map[string]Action
}

func NewRegistry(actions ...Action) (*Registry, error) {
	r := &Registry{actions: make(map[string]Action, len(actions))}
	for _, a := range actions {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(a Action) error {
	if _, ok := r.actions[a.Name]; ok {
		return fmt.Errorf("%s: %w", a.Name, ErrDuplicateAction)
	}
	if a.Run == nil {
		return fmt.Errorf("%s: action has no Run", a.Name)
	}
	r.actions[a.Name] = a
	return nil
}

func (r *Registry) Get(name string) (Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// Names returns registered action names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.actions))
	for name := range r.actions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
