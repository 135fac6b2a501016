package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/complyhub/complyhub/internal/action"
)

const colGap = 2

// RenderTable renders an aligned table with a header separator line.
// Columns are padded to the widest visible cell, so styled cells align.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	writeRow(&b, widths, headers, StyleHeader.Render)

	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("─", w)
	}
	writeRow(&b, widths, seps, StyleDim.Render)

	for _, row := range rows {
		writeRow(&b, widths, row, nil)
	}
	return b.String()
}

func writeRow(b *strings.Builder, widths []int, cells []string, style func(...string) string) {
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := max(w-lipgloss.Width(cell), 0)
		if style != nil {
			cell = style(cell)
		}
		b.WriteString(cell)
		if i < len(widths)-1 {
			pad += colGap
		}
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString("\n")
}

// RenderActionTable renders a surface-neutral result table, showing badge
// cells with their status color.
func RenderActionTable(t action.Table) string {
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		cells := make([]string, len(r))
		for j, c := range r {
			if c.Badge != "" {
				cells[j] = Badge(c.Badge, c.Text)
			} else {
				cells[j] = c.Text
			}
		}
		rows[i] = cells
	}
	out := RenderTable(t.Headers, rows)
	if t.Caption != "" {
		out = Dim(t.Caption) + "\n" + out
	}
	return out
}
