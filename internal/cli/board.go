package cli

import (
	"github.com/complyhub/complyhub/internal/action"
)

// panelBoard is the terminal's action.View: it keeps the latest panel per
// target plus the field, enablement and visibility state outcomes set.
// It is only touched from one goroutine (bubbletea's Update, or the run
// command), so it needs no locking.
type panelBoard struct {
	order    []string
	panels   map[string]action.Panel
	fields   map[string]string
	enabled  map[string]bool
	revealed map[string]bool
	onClose  func(id string)
}

var _ action.View = (*panelBoard)(nil)

func newPanelBoard() *panelBoard {
	return &panelBoard{
		panels:   make(map[string]action.Panel),
		fields:   make(map[string]string),
		enabled:  make(map[string]bool),
		revealed: make(map[string]bool),
	}
}

func (b *panelBoard) ShowPanel(p action.Panel) {
	if _, ok := b.panels[p.Target]; !ok {
		b.order = append(b.order, p.Target)
	}
	b.panels[p.Target] = p
}

func (b *panelBoard) SetField(id, value string)          { b.fields[id] = value }
func (b *panelBoard) SetEnabled(id string, enabled bool) { b.enabled[id] = enabled }
func (b *panelBoard) Reveal(id string)                   { b.revealed[id] = true }

func (b *panelBoard) CloseModal(id string) {
	if b.onClose != nil {
		b.onClose(id)
	}
}

// Panel returns the panel last shown in target.
func (b *panelBoard) Panel(target string) (action.Panel, bool) {
	p, ok := b.panels[target]
	return p, ok
}

// Panels returns every panel in first-shown order.
func (b *panelBoard) Panels() []action.Panel {
	out := make([]action.Panel, 0, len(b.order))
	for _, t := range b.order {
		out = append(out, b.panels[t])
	}
	return out
}

// Field returns the value an outcome last wrote into input id.
func (b *panelBoard) Field(id string) (string, bool) {
	v, ok := b.fields[id]
	return v, ok
}

// Enabled reports whether an outcome enabled id. Controls start disabled
// only when listed in disabledByDefault.
func (b *panelBoard) Enabled(id string) bool {
	if v, ok := b.enabled[id]; ok {
		return v
	}
	return !disabledByDefault[id]
}

func (b *panelBoard) Revealed(id string) bool { return b.revealed[id] }

// disabledByDefault lists controls that start disabled until an outcome
// enables them.
var disabledByDefault = map[string]bool{
	action.GenerateMOSISButton: true,
}
