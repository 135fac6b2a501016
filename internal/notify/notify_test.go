package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestNotifier() (*Notifier, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 11, 20, 8, 0, 0, 0, time.UTC)}
	return New(5*time.Second, WithClock(clock.now)), clock
}

func TestNotify_DefaultsAndOrder(t *testing.T) {
	n, clock := newTestNotifier()

	a := n.Notify("first", Success, 0)
	b := n.Notify("second", Kind("bogus"), time.Second)

	assert.Equal(t, clock.t.Add(5*time.Second), a.ExpiresAt)
	assert.Equal(t, Info, b.Kind)
	assert.NotEqual(t, a.ID, b.ID)

	active := n.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "first", active[0].Message)
	assert.Equal(t, "second", active[1].Message)
}

func TestDismiss(t *testing.T) {
	n, _ := newTestNotifier()
	a := n.Notify("a", Info, 0)
	n.Notify("b", Info, 0)

	assert.True(t, n.Dismiss(a.ID))
	assert.False(t, n.Dismiss(a.ID))
	require.Len(t, n.Active(), 1)
	assert.Equal(t, "b", n.Active()[0].Message)
}

func TestExpire_IndependentLifetimes(t *testing.T) {
	n, clock := newTestNotifier()
	n.Notify("short", Warning, time.Second)
	n.Notify("long", Success, 0)

	clock.advance(time.Second)
	expired := n.Expire(clock.t)
	require.Len(t, expired, 1)
	assert.Equal(t, "short", expired[0].Message)

	next, ok := n.NextExpiry()
	assert.True(t, ok)
	assert.Equal(t, clock.t.Add(4*time.Second), next)

	clock.advance(4 * time.Second)
	assert.Len(t, n.Expire(clock.t), 1)
	assert.Empty(t, n.Active())

	_, ok = n.NextExpiry()
	assert.False(t, ok)
}

func TestOverlay_Idempotent(t *testing.T) {
	n, _ := newTestNotifier()
	changes := 0
	n.Subscribe(func() { changes++ })

	n.HideOverlay()
	assert.Equal(t, 0, changes, "hiding an absent overlay is a no-op")

	n.ShowOverlay("Running comprehensive data validation...")
	n.ShowOverlay("Running comprehensive data validation...")
	msg, on := n.Overlay()
	assert.True(t, on)
	assert.Equal(t, "Running comprehensive data validation...", msg)

	n.HideOverlay()
	n.HideOverlay()
	_, on = n.Overlay()
	assert.False(t, on)
	assert.Equal(t, 3, changes)
}

func TestShowOverlay_DefaultMessage(t *testing.T) {
	n, _ := newTestNotifier()
	n.ShowOverlay("")
	msg, _ := n.Overlay()
	assert.Equal(t, "Loading...", msg)
}

func TestKindIcon(t *testing.T) {
	assert.Equal(t, "✓", Success.Icon())
	assert.Equal(t, "✗", Error.Icon())
	assert.Equal(t, "⚠", Warning.Icon())
	assert.Equal(t, "ℹ", Info.Icon())
}
