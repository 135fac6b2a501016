package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/complyhub/complyhub/internal/a11y"
	"github.com/complyhub/complyhub/internal/nav"
	"github.com/complyhub/complyhub/internal/notify"
	"github.com/complyhub/complyhub/internal/task"
	"github.com/go-playground/validator/v10"
)

// View applies the surface-specific parts of an outcome.
type View interface {
	ShowPanel(p Panel)
	SetField(id, value string)
	SetEnabled(id string, enabled bool)
	Reveal(id string)
	CloseModal(id string)
}

// Deps are the collaborators a Dispatcher drives.
type Deps struct {
	Notifier  *notify.Notifier
	Announcer a11y.Announcer
	Nav       *nav.Controller
	View      View
	Runner    *task.Runner
	Observer  Observer
	Logger    *slog.Logger
}

// Ticket tracks one dispatched action.
type Ticket struct {
	ID        string
	Action    string
	Style     Style
	StartedAt time.Time

	act     Action
	task    *task.Task[Outcome]
	mu      sync.Mutex
	applied bool
}

func (t *Ticket) Done() <-chan struct{} { return t.task.Done() }
func (t *Ticket) State() task.State     { return t.task.State() }

// Outcome returns the settled outcome, or the zero Outcome while pending.
func (t *Ticket) Outcome() (Outcome, error) { return t.task.Result() }

func (t *Ticket) Wait(ctx context.Context) (Outcome, error) { return t.task.Wait(ctx) }

func (t *Ticket) markApplied() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.applied {
		return false
	}
	t.applied = true
	return true
}

// Dispatcher validates input, shows pending indicators, runs the action as
// a task and applies its outcome.
type Dispatcher struct {
	reg      *Registry
	deps     Deps
	validate *validator.Validate
	log      *slog.Logger
	sync     func(func())
}

type DispatcherOption func(*Dispatcher)

// WithAutoApply makes the dispatcher apply outcomes itself as tasks settle.
// Each apply runs through sync, which must serialize it with every other
// UI mutation.
func WithAutoApply(sync func(func())) DispatcherOption {
	return func(d *Dispatcher) { d.sync = sync }
}

func NewDispatcher(reg *Registry, deps Deps, opts ...DispatcherOption) *Dispatcher {
	if deps.Announcer == nil {
		deps.Announcer = a11y.Discard{}
	}
	if deps.Observer == nil {
		deps.Observer = NoopObserver{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Runner == nil {
		deps.Runner = task.NewRunner()
	}
	d := &Dispatcher{
		reg:      reg,
		deps:     deps,
		validate: newValidator(),
		log:      deps.Logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Registry() *Registry { return d.reg }

// Runner exposes the task runner so surfaces can look tasks up and shut
// it down on exit.
func (d *Dispatcher) Runner() *task.Runner { return d.deps.Runner }

// Dispatch starts the named action. Instant actions are applied before
// Dispatch returns. Invalid input raises a warning toast and starts
// nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, in Input) (*Ticket, error) {
	a, ok := d.reg.Get(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownAction)
	}
	if in == nil {
		in = Input{}
	}

	if err := validateInput(d.validate, a.Fields, in); err != nil {
		var fe *FieldError
		if errors.As(err, &fe) && d.deps.Notifier != nil {
			d.deps.Notifier.Notify(fe.Message, notify.Warning, 0)
		}
		d.observe(ctx, a, time.Now(), err, "rejected")
		return nil, err
	}
	if a.Confirm != "" && !in.Confirmed() {
		return nil, &ConfirmationError{Action: a.Name, Prompt: a.Confirm}
	}

	switch a.Style {
	case Blocking:
		if d.deps.Notifier != nil {
			d.deps.Notifier.ShowOverlay(a.pendingText(in))
		}
	case Inline:
		if d.deps.View != nil && a.Target != "" {
			d.deps.View.ShowPanel(Panel{Target: a.Target, Level: "info", Icon: "⏳", Lines: []string{a.pendingText(in)}, Live: true})
		}
	}

	delay := a.Delay
	if a.Style == Instant {
		delay = 0
	}
	run := a.Run
	tk := task.Run(d.deps.Runner, a.Name, delay, func(ctx context.Context) (Outcome, error) {
		return run(ctx, in)
	})
	ticket := &Ticket{ID: tk.ID(), Action: a.Name, Style: a.Style, StartedAt: time.Now(), act: a, task: tk}

	if a.Style == Instant {
		if _, err := tk.Wait(ctx); err != nil {
			switch tk.State() {
			case task.Pending, task.Cancelled:
				return ticket, err
			}
		}
		d.Apply(ticket)
		return ticket, nil
	}

	d.log.DebugContext(ctx, "action started", "action", a.Name, "task_id", ticket.ID, "style", a.Style.String())
	if d.sync != nil {
		go func() {
			<-tk.Done()
			d.sync(func() { d.Apply(ticket) })
		}()
	}
	return ticket, nil
}

// Apply applies a settled ticket's outcome once. It returns false while
// the ticket is pending, when it was already applied, or when the task was
// cancelled; a superseded task leaves the indicators to its successor.
func (d *Dispatcher) Apply(t *Ticket) bool {
	select {
	case <-t.Done():
	default:
		return false
	}
	if !t.markApplied() {
		return false
	}

	ctx := context.Background()
	out, err := t.task.Result()
	switch t.task.State() {
	case task.Cancelled:
		d.observe(ctx, t.act, t.StartedAt, err, "cancelled")
		return false
	case task.Failed:
		d.fail(t, err)
		d.observe(ctx, t.act, t.StartedAt, err, "failed")
		return true
	}

	if t.Style == Blocking && d.deps.Notifier != nil {
		d.deps.Notifier.HideOverlay()
	}
	d.applyOutcome(out)
	d.observe(ctx, t.act, t.StartedAt, nil, "succeeded")
	return true
}

func (d *Dispatcher) applyOutcome(out Outcome) {
	v := d.deps.View
	if v != nil {
		if out.Panel != nil {
			v.ShowPanel(*out.Panel)
		}
		for id, val := range out.Fields {
			v.SetField(id, val)
		}
		for _, id := range out.Enable {
			v.SetEnabled(id, true)
		}
		for _, id := range out.Reveal {
			v.Reveal(id)
		}
		if out.CloseModal != "" {
			v.CloseModal(out.CloseModal)
		}
	}
	if out.Toast != nil && d.deps.Notifier != nil {
		d.deps.Notifier.Notify(out.Toast.Message, out.Toast.Kind, 0)
	}
	if out.Announce != "" {
		d.deps.Announcer.Announce(out.Announce)
	}
	if n := out.Navigate; n != nil && d.deps.Nav != nil {
		if n.Page != "" {
			d.deps.Nav.SwitchPage(n.Page)
		}
		if n.Tab != "" {
			container := n.Container
			if container == "" {
				container, _ = d.deps.Nav.GroupOf(n.Tab)
			}
			d.deps.Nav.SwitchTab(container, n.Tab)
		}
	}
}

func (d *Dispatcher) fail(t *Ticket, err error) {
	d.log.Error("action failed", "action", t.Action, "task_id", t.ID, "error", err)
	if t.Style == Blocking && d.deps.Notifier != nil {
		d.deps.Notifier.HideOverlay()
	}
	if t.Style == Inline && d.deps.View != nil && t.act.Target != "" {
		d.deps.View.ShowPanel(Panel{Target: t.act.Target, Level: "critical", Icon: "✗", Title: "Error", Lines: []string{"The operation could not be completed."}})
	}
	if d.deps.Notifier != nil {
		d.deps.Notifier.Notify(fmt.Sprintf("Error running %s. Please try again.", t.act.Label), notify.Error, 0)
	}
}

func (d *Dispatcher) observe(ctx context.Context, a Action, started time.Time, err error, state string) {
	d.deps.Observer.ObserveAction(ctx, Event{
		Name:      a.Name,
		Duration:  time.Since(started),
		Success:   err == nil,
		Err:       err,
		StartedAt: started,
		Fields:    map[string]any{"style": a.Style.String(), "state": state},
	})
}
