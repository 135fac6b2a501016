// Package task models delayed background work as cancellable tasks with a
// pending -> succeeded | failed | cancelled lifecycle. Tasks started under
// a key supersede the pending task already holding that key.
package task

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrCancelled  = errors.New("task cancelled")
	ErrSuperseded = errors.New("task superseded")
	ErrShutdown   = errors.New("runner shut down")
)

type State int

const (
	Pending State = iota
	Succeeded
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Info is a point-in-time view of any task, independent of its result type.
type Info struct {
	ID        string
	Key       string
	State     State
	Err       error
	StartedAt time.Time
	SettledAt time.Time
}

type handle interface {
	info() Info
	cancel(cause error)
}

// Task is one unit of delayed work producing an R.
type Task[R any] struct {
	id        string
	key       string
	startedAt time.Time
	done      chan struct{}
	stop      context.CancelFunc

	mu        sync.Mutex
	state     State
	result    R
	err       error
	settledAt time.Time
}

func (t *Task[R]) ID() string  { return t.id }
func (t *Task[R]) Key() string { return t.key }

// Done is closed once the task settles.
func (t *Task[R]) Done() <-chan struct{} { return t.done }

func (t *Task[R]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Result returns the settled value and error. While pending it returns the
// zero value and nil.
func (t *Task[R]) Result() (R, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

// Wait blocks until the task settles or ctx ends.
func (t *Task[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-t.done:
		return t.Result()
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Cancel stops a pending task. Settled tasks are unaffected.
func (t *Task[R]) Cancel() {
	t.cancel(ErrCancelled)
}

func (t *Task[R]) cancel(cause error) {
	var zero R
	if t.settle(Cancelled, zero, cause) {
		t.stop()
	}
}

// settle records the outcome once. Later calls are ignored.
func (t *Task[R]) settle(s State, r R, err error) bool {
	t.mu.Lock()
	if t.state != Pending {
		t.mu.Unlock()
		return false
	}
	t.state, t.result, t.err, t.settledAt = s, r, err, time.Now()
	t.mu.Unlock()
	close(t.done)
	return true
}

func (t *Task[R]) info() Info {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Info{
		ID: t.id, Key: t.key, State: t.state, Err: t.err,
		StartedAt: t.startedAt, SettledAt: t.settledAt,
	}
}
