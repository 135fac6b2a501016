// Package teatest runs a tea.Model without a tea.Program.
//
// Every message goes straight to Update and the returned Cmd tree is walked
// depth first on the calling goroutine, so a test observes the model after
// each key exactly as the program would. A Cmd that has not produced a
// message within the driver's timeout is dropped: tickers, spinner frames
// and cursor blinks therefore never fire, while task waits that settle
// immediately still deliver their message.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds how many Cmd generations one Send may produce.
const MaxDrainDepth = 100

// DefaultCmdTimeout is the time a Cmd gets before it is dropped.
const DefaultCmdTimeout = 50 * time.Millisecond

// Driver feeds messages to Model and keeps the latest model value.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting reports that a tea.Quit Cmd ran. The real program stops on
	// tea.QuitMsg before the model sees it, so the driver records it.
	Quitting bool

	cmdTimeout time.Duration
}

type Option func(*Driver)

// New wraps model. Options run in order; call DrainInit afterwards.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, cmdTimeout: DefaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithSize delivers a WindowSizeMsg of w×h before anything else. Its Cmd
// is discarded.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// WithCmdTimeout sets how long a Cmd may block before it is dropped.
func WithCmdTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.cmdTimeout = timeout }
}

// DrainInit runs the model's Init Cmd tree.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drain(d.Model.Init())
}

// Send delivers msg and drains whatever it triggers. It does nothing once
// the model has quit.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.drain(cmd)
}

func (d *Driver) SendKey(msg tea.KeyMsg) {
	d.T.Helper()
	d.Send(msg)
}

// Press sends a key without runes, such as tea.KeyEnter.
func (d *Driver) Press(k tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: k})
}

// PressKey sends one printable character.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func (d *Driver) PressEnter()    { d.T.Helper(); d.Press(tea.KeyEnter) }
func (d *Driver) PressEsc()      { d.T.Helper(); d.Press(tea.KeyEsc) }
func (d *Driver) PressCtrlC()    { d.T.Helper(); d.Press(tea.KeyCtrlC) }
func (d *Driver) PressUp()       { d.T.Helper(); d.Press(tea.KeyUp) }
func (d *Driver) PressDown()     { d.T.Helper(); d.Press(tea.KeyDown) }
func (d *Driver) PressLeft()     { d.T.Helper(); d.Press(tea.KeyLeft) }
func (d *Driver) PressRight()    { d.T.Helper(); d.Press(tea.KeyRight) }
func (d *Driver) PressTab()      { d.T.Helper(); d.Press(tea.KeyTab) }
func (d *Driver) PressShiftTab() { d.T.Helper(); d.Press(tea.KeyShiftTab) }

// Type presses each rune of s in turn.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

func (d *Driver) View() string {
	return d.Model.View()
}

// pendingCmd is a Cmd waiting to run and the generation that produced it.
type pendingCmd struct {
	cmd   tea.Cmd
	depth int
}

// drain walks the Cmd tree rooted at root depth first. Batch members run
// in order and each is drained completely before the next one starts.
func (d *Driver) drain(root tea.Cmd) {
	d.T.Helper()
	stack := []pendingCmd{{cmd: root}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.cmd == nil {
			continue
		}
		if p.depth >= MaxDrainDepth {
			d.T.Logf("teatest: dropped a Cmd at depth %d", p.depth)
			continue
		}

		msg := d.await(p.cmd)
		switch m := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			for i := len(m) - 1; i >= 0; i-- {
				stack = append(stack, pendingCmd{cmd: m[i], depth: p.depth + 1})
			}
			continue
		case tea.QuitMsg:
			d.Quitting = true
			d.Model, _ = d.Model.Update(m)
			return
		}
		if isBlink(msg) {
			continue
		}

		var next tea.Cmd
		d.Model, next = d.Model.Update(msg)
		stack = append(stack, pendingCmd{cmd: next, depth: p.depth + 1})
	}
}

// await runs cmd on its own goroutine and gives up after the driver's
// timeout. An abandoned goroutine finishes into a buffered channel.
func (d *Driver) await(cmd tea.Cmd) tea.Msg {
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()

	timer := time.NewTimer(d.cmdTimeout)
	defer timer.Stop()
	select {
	case msg := <-out:
		return msg
	case <-timer.C:
		return nil
	}
}

// isBlink matches the textinput cursor's unexported blink messages, which
// would otherwise schedule another blink forever.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
