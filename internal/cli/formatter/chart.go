package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/complyhub/complyhub/internal/kpi"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// RenderProgress renders a percentage bar like [████░░░░]  97%. The bar is
// green at or above target, yellow within ten points of it and red below.
func RenderProgress(pct, target float64, width int) string {
	pct = kpi.Clamp(pct, 0, 100)
	width = max(width, 2)

	filled := min(int(pct/100*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct < target-10:
		style = StyleRed
	case pct < target:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct)
}

// Bars renders one horizontal bar per label, scaled to the largest value.
func Bars(labels []string, values []float64, width int) string {
	if len(labels) == 0 {
		return ""
	}
	width = max(width, 1)

	var peak float64
	labelW := 0
	for i, l := range labels {
		labelW = max(labelW, lipgloss.Width(l))
		if i < len(values) {
			peak = max(peak, values[i])
		}
	}

	var b strings.Builder
	for i, l := range labels {
		var v float64
		if i < len(values) {
			v = values[i]
		}
		n := 0
		if peak > 0 {
			n = int(v / peak * float64(width))
		}
		pad := strings.Repeat(" ", labelW-lipgloss.Width(l))
		fmt.Fprintf(&b, "%s%s %s %s\n", l, pad, StyleBlue.Render(strings.Repeat(filledBlock, n)), Dim(kpi.FormatNumber(v)))
	}
	return b.String()
}

// Sparkline renders values as a single line of block glyphs.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	out := make([]rune, len(values))
	for i, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkLevels)-1))
		}
		out[i] = sparkLevels[idx]
	}
	return string(out)
}
