package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxRetained bounds how many tasks stay queryable by id.
const maxRetained = 256

// Runner starts tasks and tracks them by id and key.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	byKey  map[string]handle
	byID   map[string]handle
	order  []string
	closed bool
}

func NewRunner() *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		ctx:    ctx,
		cancel: cancel,
		byKey:  make(map[string]handle),
		byID:   make(map[string]handle),
	}
}

// Run starts fn after delay under key. A pending task already holding key
// is cancelled with ErrSuperseded so its completion is never observed. An
// empty key never supersedes. A panic in fn fails the task.
func Run[R any](r *Runner, key string, delay time.Duration, fn func(ctx context.Context) (R, error)) *Task[R] {
	ctx, stop := context.WithCancel(r.ctx)
	t := &Task[R]{
		id:        uuid.New().String(),
		key:       key,
		startedAt: time.Now(),
		done:      make(chan struct{}),
		stop:      stop,
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		t.cancel(ErrShutdown)
		return t
	}
	var prev handle
	if key != "" {
		prev = r.byKey[key]
		r.byKey[key] = t
	}
	r.track(t)
	r.wg.Add(1)
	r.mu.Unlock()

	if prev != nil {
		prev.cancel(fmt.Errorf("%w by %s", ErrSuperseded, t.id))
	}

	go func() {
		defer r.wg.Done()
		defer stop()
		defer r.release(key, t)
		execute(ctx, t, delay, fn)
	}()
	return t
}

// Get returns a snapshot of the task with id.
func (r *Runner) Get(id string) (Info, bool) {
	r.mu.Lock()
	h, ok := r.byID[id]
	r.mu.Unlock()
	if !ok {
		return Info{}, false
	}
	return h.info(), true
}

// Pending returns the ids of tasks that have not settled.
func (r *Runner) Pending() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Info
	for _, id := range r.order {
		if in := r.byID[id].info(); in.State == Pending {
			out = append(out, in)
		}
	}
	return out
}

// Shutdown cancels every pending task, waits for their goroutines and
// rejects later Run calls.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	r.closed = true
	handles := make([]handle, 0, len(r.byID))
	for _, h := range r.byID {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	for _, h := range handles {
		h.cancel(ErrShutdown)
	}
	r.cancel()
	r.wg.Wait()
}

func (r *Runner) track(h handle) {
	id := h.info().ID
	r.byID[id] = h
	r.order = append(r.order, id)
	for len(r.order) > maxRetained {
		oldest := r.order[0]
		if r.byID[oldest].info().State == Pending {
			break
		}
		delete(r.byID, oldest)
		r.order = r.order[1:]
	}
}

func (r *Runner) release(key string, h handle) {
	if key == "" {
		return
	}
	r.mu.Lock()
	if r.byKey[key] == h {
		delete(r.byKey, key)
	}
	r.mu.Unlock()
}

var ErrPanic = errors.New("task panicked")

func execute[R any](ctx context.Context, t *Task[R], delay time.Duration, fn func(context.Context) (R, error)) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			t.cancel(ErrCancelled)
			return
		case <-timer.C:
		}
	}
	if ctx.Err() != nil {
		t.cancel(ErrCancelled)
		return
	}

	res, err := call(ctx, fn)
	if ctx.Err() != nil {
		// Cancelled while running: the result is discarded.
		t.cancel(ErrCancelled)
		return
	}
	if err != nil {
		t.settle(Failed, res, err)
		return
	}
	t.settle(Succeeded, res, nil)
}

func call[R any](ctx context.Context, fn func(context.Context) (R, error)) (res R, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()
	return fn(ctx)
}
