package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type recordMsg string

// recorder logs every recordMsg and answers "go" with a batch.
type recorder struct{ seen []string }

func (r *recorder) Init() tea.Cmd { return nil }

func (r *recorder) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordMsg:
		r.seen = append(r.seen, string(msg))
		if msg == "a" {
			return r, emit("a1")
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "g":
			return r, tea.Batch(emit("a"), emit("b"), tea.Tick(time.Hour, func(time.Time) tea.Msg { return recordMsg("late") }))
		case "q":
			return r, tea.Quit
		}
	}
	return r, nil
}

func (r *recorder) View() string { return "" }

func emit(s string) tea.Cmd {
	return func() tea.Msg { return recordMsg(s) }
}

func TestDriver_DrainsBatchDepthFirstAndDropsSlowCmds(t *testing.T) {
	m := &recorder{}
	d := New(t, m, WithCmdTimeout(10*time.Millisecond))

	d.PressKey('g')
	assert.Equal(t, []string{"a", "a1", "b"}, m.seen)
}

func TestDriver_QuitStopsFurtherMessages(t *testing.T) {
	m := &recorder{}
	d := New(t, m)

	d.PressKey('q')
	assert.True(t, d.Quitting)

	d.Send(recordMsg("after"))
	assert.Empty(t, m.seen)
}
