package cli

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type dashKeyMap struct {
	Page     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	TabLeft  key.Binding
	TabRight key.Binding
	Up       key.Binding
	Down     key.Binding
	Activate key.Binding
	Dismiss  key.Binding
	Quit     key.Binding
	ForceQ   key.Binding
}

func newDashKeyMap() dashKeyMap {
	return dashKeyMap{
		Page:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8"), key.WithHelp("1-8", "page")),
		NextPage: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev page")),
		TabLeft:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "tab")),
		TabRight: key.NewBinding(key.WithKeys("right", "l")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "select")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		Activate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		Dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss toast")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQ:   key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (k dashKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Page, k.TabLeft, k.Up, k.Activate, k.Dismiss, k.Quit}
}

// bodyViewportKeyMap scrolls the page body with page keys only, leaving
// letters and arrows to the dashboard.
func bodyViewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
	}
}

func isBodyScrollKey(k viewport.KeyMap, msg tea.KeyMsg) bool {
	return key.Matches(msg, k.PageDown, k.PageUp, k.HalfPageUp, k.HalfPageDown)
}
