package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRun_Succeeds(t *testing.T) {
	r := NewRunner()
	defer r.Shutdown()

	tk := Run(r, "validate", 0, func(context.Context) (string, error) { return "97.3%", nil })

	got, err := tk.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "97.3%", got)
	assert.Equal(t, Succeeded, tk.State())

	info, ok := r.Get(tk.ID())
	require.True(t, ok)
	assert.Equal(t, Succeeded, info.State)
	assert.False(t, info.SettledAt.IsZero())
}

func TestRun_Fails(t *testing.T) {
	r := NewRunner()
	defer r.Shutdown()
	boom := errors.New("boom")

	tk := Run(r, "", 0, func(context.Context) (int, error) { return 0, boom })

	_, err := tk.Wait(waitCtx(t))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Failed, tk.State())
}

func TestRun_PanicFailsTask(t *testing.T) {
	r := NewRunner()
	defer r.Shutdown()

	tk := Run(r, "", 0, func(context.Context) (int, error) { panic("bad chart") })

	_, err := tk.Wait(waitCtx(t))
	assert.ErrorIs(t, err, ErrPanic)
	assert.Equal(t, Failed, tk.State())
}

func TestRun_PendingUntilDelay(t *testing.T) {
	r := NewRunner()
	defer r.Shutdown()

	tk := Run(r, "slow", time.Hour, func(context.Context) (int, error) { return 1, nil })

	assert.Equal(t, Pending, tk.State())
	v, err := tk.Result()
	assert.Zero(t, v)
	assert.NoError(t, err)
	require.Len(t, r.Pending(), 1)

	short, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = tk.Wait(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_SameKeySupersedes(t *testing.T) {
	r := NewRunner()
	defer r.Shutdown()

	first := Run(r, "generate-mosis", time.Hour, func(context.Context) (int, error) { return 1, nil })
	second := Run(r, "generate-mosis", 0, func(context.Context) (int, error) { return 2, nil })

	_, err := first.Wait(waitCtx(t))
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, Cancelled, first.State())

	got, err := second.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestRun_DifferentKeysIndependent(t *testing.T) {
	r := NewRunner()
	defer r.Shutdown()

	a := Run(r, "a", 0, func(context.Context) (int, error) { return 1, nil })
	b := Run(r, "b", 0, func(context.Context) (int, error) { return 2, nil })

	va, err := a.Wait(waitCtx(t))
	require.NoError(t, err)
	vb, err := b.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, 1, va)
	assert.Equal(t, 2, vb)
}

func TestCancel(t *testing.T) {
	r := NewRunner()
	defer r.Shutdown()

	tk := Run(r, "x", time.Hour, func(context.Context) (int, error) { return 1, nil })
	tk.Cancel()
	tk.Cancel()

	<-tk.Done()
	assert.Equal(t, Cancelled, tk.State())
	_, err := tk.Result()
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestShutdown_CancelsPendingAndRejectsNew(t *testing.T) {
	r := NewRunner()
	tk := Run(r, "x", time.Hour, func(context.Context) (int, error) { return 1, nil })

	r.Shutdown()

	assert.Equal(t, Cancelled, tk.State())
	_, err := tk.Result()
	assert.ErrorIs(t, err, ErrShutdown)

	late := Run(r, "y", 0, func(context.Context) (int, error) { return 1, nil })
	<-late.Done()
	assert.Equal(t, Cancelled, late.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "cancelled", Cancelled.String())
	assert.Equal(t, "unknown", State(42).String())
}
