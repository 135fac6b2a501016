package formatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/complyhub/complyhub/internal/action"
	"github.com/complyhub/complyhub/internal/alert"
	"github.com/complyhub/complyhub/internal/notify"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(0, 1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// RenderPanel renders an action result panel: a colored title line, its
// narrative, optional list, preformatted sample, table and follow-up
// actions, then any nested note.
func RenderPanel(p action.Panel) string {
	style := LevelStyle(p.Level)
	var parts []string

	if p.Title != "" {
		title := p.Title
		if p.Icon != "" {
			title = p.Icon + " " + title
		}
		parts = append(parts, style.Bold(true).Render(title))
	}
	for _, l := range p.Lines {
		parts = append(parts, l)
	}
	if p.Heading != "" {
		parts = append(parts, Bold(p.Heading))
	}
	for _, it := range p.Items {
		parts = append(parts, "  • "+it)
	}
	if p.Pre != "" {
		parts = append(parts, RenderBox(p.PreLabel, p.Pre))
	}
	if p.Table != nil {
		parts = append(parts, strings.TrimRight(RenderActionTable(*p.Table), "\n"))
	}
	if len(p.Actions) > 0 {
		refs := make([]string, len(p.Actions))
		for i, r := range p.Actions {
			refs[i] = StylePurple.Render("[" + r.Label + "]")
		}
		parts = append(parts, strings.Join(refs, " "))
	}
	if p.Note != nil {
		parts = append(parts, RenderPanel(*p.Note))
	}

	body := strings.Join(parts, "\n")
	if p.Title == "" && p.Icon != "" {
		body = style.Render(p.Icon) + " " + body
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(style.GetForeground()).
		PaddingLeft(1).
		Render(body)
}

// RenderAlerts renders the banner alerts, one block each.
func RenderAlerts(alerts []alert.Alert) string {
	if len(alerts) == 0 {
		return StyleGreen.Render("✓ No alerts")
	}
	blocks := make([]string, len(alerts))
	for i, a := range alerts {
		style := LevelStyle(string(a.Level))
		blocks[i] = style.Bold(true).Render(a.Icon+" "+a.Title) + "\n  " + a.Message
	}
	return strings.Join(blocks, "\n")
}

// RenderToast renders one notification line.
func RenderToast(t notify.Toast) string {
	return KindStyle(t.Kind).Render(t.Kind.Icon()) + " " + t.Message
}

// RenderViolations lists every error joined into err, one per line.
func RenderViolations(err error) string {
	var errs []error
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		errs = j.Unwrap()
	} else if err != nil {
		errs = []error{err}
	}
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, StyleRed.Render("✗")+" "+e.Error())
	}
	return strings.Join(lines, "\n")
}

// ErrorLine renders an error for command output.
func ErrorLine(err error) string {
	var fe *action.FieldError
	if errors.As(err, &fe) {
		return StyleYellow.Render("⚠") + " " + fe.Message
	}
	return StyleRed.Render("Error:") + " " + fmt.Sprint(err)
}
