package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/complyhub/complyhub/internal/a11y"
	"github.com/complyhub/complyhub/internal/action"
	"github.com/complyhub/complyhub/internal/cli/formatter"
)

// Focus keys for the two modal buttons.
const (
	focusSubmit = "submit"
	focusCancel = "cancel"
)

type modalInput struct {
	Field       string
	Label       string
	Placeholder string
}

// modalSpec describes an input dialog that collects fields for one action.
// Dialogs backed by a page modal close when the action's outcome says so;
// the others close as soon as the action is accepted.
type modalSpec struct {
	ID              string
	Title           string
	Action          string
	Submit          string
	Inputs          []modalInput
	CloseOnDispatch bool
}

var modalSpecs = map[string]modalSpec{
	"execute-sql": {
		ID: "input-sql-query", Title: "Execute SQL", Action: "execute-sql", Submit: "Execute",
		Inputs:          []modalInput{{action.FieldSQLQuery, "SQL query", "SELECT ..."}},
		CloseOnDispatch: true,
	},
	"save-query": {
		ID: "input-save-query", Title: "Save Query", Action: "save-query", Submit: "Save",
		Inputs: []modalInput{
			{action.FieldQueryName, "Query name", "Untitled Query"},
			{action.FieldSQLQuery, "SQL query", "SELECT ..."},
		},
		CloseOnDispatch: true,
	},
	"execute-modal-sql": {
		ID: action.ModalSQL, Title: "Quick SQL Query", Action: "execute-modal-sql", Submit: "Execute",
		Inputs: []modalInput{{action.FieldModalSQL, "SQL query", "SELECT ..."}},
	},
	"add-compliance-item": {
		ID: action.ModalAddCompliance, Title: "Add Compliance Item", Action: "add-compliance-item", Submit: "Add Item",
		Inputs: []modalInput{
			{action.FieldComplianceTask, "Task name", "Annual report"},
			{action.FieldComplianceOwner, "Owner", "Compliance Officer"},
			{action.FieldComplianceDue, "Deadline", "YYYY-MM-DD"},
		},
	},
}

// modalForm is an open dialog: one text input per field plus submit and
// cancel, with focus trapped inside.
type modalForm struct {
	spec   modalSpec
	inputs []textinput.Model
	trap   *a11y.FocusTrap[string]
	focus  string
}

func newModalForm(spec modalSpec, prefill func(field string) (string, bool)) *modalForm {
	keys := make([]string, 0, len(spec.Inputs)+2)
	inputs := make([]textinput.Model, len(spec.Inputs))
	for i, in := range spec.Inputs {
		ti := textinput.New()
		ti.Prompt = "› "
		ti.Placeholder = in.Placeholder
		ti.CharLimit = 2000
		if v, ok := prefill(in.Field); ok {
			ti.SetValue(v)
		}
		inputs[i] = ti
		keys = append(keys, in.Field)
	}
	keys = append(keys, focusSubmit, focusCancel)

	f := &modalForm{spec: spec, inputs: inputs, trap: a11y.NewFocusTrap(keys)}
	first, _ := f.trap.First()
	f.setFocus(first)
	return f
}

func (f *modalForm) setFocus(key string) tea.Cmd {
	f.focus = key
	var cmd tea.Cmd
	for i := range f.inputs {
		if f.spec.Inputs[i].Field == key {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

// cycle moves focus with Tab or Shift+Tab, wrapping at either end.
func (f *modalForm) cycle(backward bool) tea.Cmd {
	next, ok := f.trap.Step(f.focus, backward)
	if !ok {
		return nil
	}
	return f.setFocus(next)
}

func (f *modalForm) updateInput(msg tea.Msg) tea.Cmd {
	for i := range f.inputs {
		if f.spec.Inputs[i].Field == f.focus {
			var cmd tea.Cmd
			f.inputs[i], cmd = f.inputs[i].Update(msg)
			return cmd
		}
	}
	return nil
}

func (f *modalForm) values() action.Input {
	in := action.Input{}
	for i, spec := range f.spec.Inputs {
		in[spec.Field] = f.inputs[i].Value()
	}
	return in
}

func (f *modalForm) View() string {
	var b strings.Builder
	for i, in := range f.spec.Inputs {
		label := in.Label
		if f.focus == in.Field {
			label = formatter.StyleHeader.Render(label)
		} else {
			label = formatter.Dim(label)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n\n")
	}
	b.WriteString(f.button(focusSubmit, f.spec.Submit))
	b.WriteString("  ")
	b.WriteString(f.button(focusCancel, "Cancel"))
	b.WriteString("\n\n")
	b.WriteString(formatter.Dim("tab next • enter submit • esc close"))
	return formatter.RenderBox(f.spec.Title, b.String())
}

func (f *modalForm) button(key, label string) string {
	if f.focus == key {
		return formatter.StyleHeader.Render("[ " + label + " ]")
	}
	return formatter.Dim("[ " + label + " ]")
}
