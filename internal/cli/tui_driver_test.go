package cli

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/complyhub/complyhub/internal/config"
	"github.com/complyhub/complyhub/internal/sample"
	"github.com/complyhub/complyhub/internal/teatest"
)

var tuiNow = time.Date(2025, 11, 3, 14, 5, 0, 0, time.UTC)

// testClock is a settable clock shared by the notifier and the header.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// testApp returns an App over the embedded sample with every simulated
// delay disabled, so delayed actions settle as soon as they are waited on.
func testApp(t *testing.T) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.SimDelay = 0
	cfg.SQLDelay = 0
	cfg.SchedulerDelay = 0
	return &App{
		Config: cfg,
		Source: sample.Source{},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// TestDriver wraps teatest.Driver with dashboard-specific inspection.
type TestDriver struct {
	*teatest.Driver
	Clock *testClock
}

// NewTestDriver builds the dashboard model over app, sizes the terminal
// and drains Init.
func NewTestDriver(t *testing.T, app *App) *TestDriver {
	t.Helper()
	clock := &testClock{t: tuiNow}
	snap, err := app.loadSnapshot(context.Background())
	require.NoError(t, err)
	m, err := newDashboardModel(context.Background(), app, snap, withClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(m.s.dispatch.Runner().Shutdown)

	d := teatest.New(t, m, teatest.WithSize(160, 200), teatest.WithCmdTimeout(250*time.Millisecond))
	d.DrainInit()
	return &TestDriver{Driver: d, Clock: clock}
}

func (d *TestDriver) state() *dashState {
	return d.Model.(dashboardModel).s
}

// ActivePage returns the id of the page on screen.
func (d *TestDriver) ActivePage() string {
	return d.state().nav.ActivePage()
}

// ActiveTab returns the active tab of container.
func (d *TestDriver) ActiveTab(container string) string {
	tab, _ := d.state().nav.ActiveTab(container)
	return tab
}

// Toasts returns the active toast messages, oldest first.
func (d *TestDriver) Toasts() []string {
	active := d.state().notifier.Active()
	out := make([]string, len(active))
	for i, t := range active {
		out[i] = t.Message
	}
	return out
}

// Announcement returns the last status line message.
func (d *TestDriver) Announcement() string {
	return d.state().status.Last()
}

// OpenModal returns the id of the open dialog, or "".
func (d *TestDriver) OpenModal() string {
	id, _ := d.state().modals.Active()
	return id
}

// ModalFocus returns the focus key inside the open dialog.
func (d *TestDriver) ModalFocus() string {
	if m := d.state().modal; m != nil {
		return m.focus
	}
	return ""
}

// WizardOpen reports whether a huh form is on screen.
func (d *TestDriver) WizardOpen() bool {
	return d.state().wizard != nil
}

// Select moves the cursor onto name in the active page's action list.
func (d *TestDriver) Select(name string) {
	d.T.Helper()
	actions := d.state().activePage().Actions
	for i, a := range actions {
		if a == name {
			d.state().cursor = i
			return
		}
	}
	d.T.Fatalf("action %q not on page %q", name, d.ActivePage())
}

// Run selects name on the active page and presses Enter.
func (d *TestDriver) Run(name string) {
	d.T.Helper()
	d.Select(name)
	d.PressEnter()
}

// GoTo switches to the page at 1-based position n.
func (d *TestDriver) GoTo(n int) {
	d.T.Helper()
	d.PressKey(rune('0' + n))
}
