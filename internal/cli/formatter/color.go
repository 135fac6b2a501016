// Package formatter renders dashboard data for the terminal with lipgloss.
package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/complyhub/complyhub/internal/notify"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// LevelStyle maps a panel or alert level to its color.
func LevelStyle(level string) lipgloss.Style {
	switch level {
	case "critical", "error":
		return StyleRed
	case "warning":
		return StyleYellow
	case "success":
		return StyleGreen
	case "info":
		return StyleBlue
	default:
		return StyleFg
	}
}

// KindStyle maps a toast kind to its color.
func KindStyle(k notify.Kind) lipgloss.Style {
	return LevelStyle(string(k))
}

// BadgeStyle maps a status-badge class to its color.
func BadgeStyle(class string) lipgloss.Style {
	switch class {
	case "complete", "pass", "low":
		return StyleGreen
	case "in-progress", "warning", "medium":
		return StyleYellow
	case "overdue", "error", "critical", "high":
		return StyleRed
	default:
		return StyleDim
	}
}

// Badge renders a status badge such as "● Overdue".
func Badge(class, label string) string {
	return BadgeStyle(class).Render("● " + label)
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
