package cli

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/complyhub/complyhub/internal/action"
	"github.com/complyhub/complyhub/internal/cli/formatter"
)

// complyhubHuhTheme returns a huh theme using the formatter palette.
func complyhubHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// wizardForm wraps a huh.Form. When the form completes, done yields the
// follow-up command, usually a runActionMsg.
type wizardForm struct {
	title string
	form  *huh.Form
	done  func() tea.Cmd
}

func newWizardForm(title string, form *huh.Form, done func() tea.Cmd) *wizardForm {
	return &wizardForm{title: title, form: form, done: done}
}

func (w *wizardForm) View() string {
	return formatter.RenderBox(w.title, w.form.View())
}

func runActionCmd(name string, in action.Input) tea.Cmd {
	return func() tea.Msg { return runActionMsg{name: name, input: in} }
}

// wizardConfirm asks before dispatching an action that needs confirmation.
func wizardConfirm(name string, in action.Input, prompt string) *wizardForm {
	ok := new(bool)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Yes").
				Negative("No").
				Value(ok),
		),
	).WithTheme(complyhubHuhTheme()).WithShowHelp(false)

	return newWizardForm("Confirm", form, func() tea.Cmd {
		if !*ok {
			return nil
		}
		next := action.Input{"confirm": "true"}
		for k, v := range in {
			next[k] = v
		}
		return runActionCmd(name, next)
	})
}

// wizardSelect asks for one input value before dispatching name.
func wizardSelect(title, name, field string, options []huh.Option[string], initial string) *wizardForm {
	value := new(string)
	*value = initial
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Value(value),
		),
	).WithTheme(complyhubHuhTheme()).WithShowHelp(false)

	return newWizardForm(title, form, func() tea.Cmd {
		return runActionCmd(name, action.Input{field: *value})
	})
}

// selectWizards builds the option pickers for actions that take one
// choice. initial looks up the value an earlier outcome left in a field.
var selectWizards = map[string]func(initial func(string) string) *wizardForm{
	"run-auto-scheduler": func(initial func(string) string) *wizardForm {
		opts := make([]huh.Option[string], 0, 7)
		for g := 6; g <= 12; g++ {
			v := strconv.Itoa(g)
			opts = append(opts, huh.NewOption("Grade "+v, v))
		}
		return wizardSelect("Select Grade", "run-auto-scheduler", action.FieldSchedulerGrade, opts, initial(action.FieldSchedulerGrade))
	},
	"load-query-template": func(func(string) string) *wizardForm {
		names := action.TemplateNames()
		opts := make([]huh.Option[string], len(names))
		for i, n := range names {
			opts[i] = huh.NewOption(n, n)
		}
		return wizardSelect("Query Template", "load-query-template", action.FieldTemplate, opts, "")
	},
	"generate-tier-letters": func(func(string) string) *wizardForm {
		return wizardSelect("Truancy Tier", "generate-tier-letters", action.FieldTier,
			huh.NewOptions("1", "2", "3"), "")
	},
	"filter-issues": func(func(string) string) *wizardForm {
		return wizardSelect("Filter by Severity", "filter-issues", action.FieldSeverity,
			huh.NewOptions("critical", "high", "medium"), "")
	},
	"generate-mosis": func(initial func(string) string) *wizardForm {
		return wizardSelect("Report Type", "generate-mosis", action.FieldReportType,
			huh.NewOptions("October Enrollment", "Fall MOSIS", "End of Year MOSIS"), initial(action.FieldReportType))
	},
}
