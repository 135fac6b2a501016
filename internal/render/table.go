package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/complyhub/complyhub/internal/dom"
	"github.com/complyhub/complyhub/internal/kpi"
	"github.com/complyhub/complyhub/internal/markup"
)

// Table replaces the content of targetID with a data table. See TableHTML
// for cell handling.
func (r *Renderer) Table(targetID string, headers []string, rows [][]any, caption string) error {
	n, err := r.target(targetID)
	if err != nil {
		return err
	}
	return dom.SetInner(n, TableHTML(headers, rows, caption))
}

// TableHTML builds a data table. Strings are escaped, markup.HTML cells
// are inserted verbatim, numbers are formatted and anything else is
// escaped through fmt.
func TableHTML(headers []string, rows [][]any, caption string) markup.HTML {
	var b strings.Builder
	b.WriteString(`<table class="data-table">`)
	if caption != "" {
		b.WriteString(`<caption class="visually-hidden">` + markup.Escape(caption) + `</caption>`)
	}
	b.WriteString("<thead><tr>")
	for _, h := range headers {
		b.WriteString(`<th scope="col">` + markup.Escape(h) + `</th>`)
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>" + string(Cell(cell)) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return markup.HTML(b.String())
}

// Cell renders one table cell value.
func Cell(v any) markup.HTML {
	switch c := v.(type) {
	case markup.HTML:
		return c
	case string:
		return markup.Text(c)
	case int:
		return markup.HTML(strconv.Itoa(c))
	case int64:
		return markup.HTML(strconv.FormatInt(c, 10))
	case float64:
		return markup.HTML(kpi.FormatNumber(c))
	case nil:
		return ""
	default:
		return markup.Text(fmt.Sprint(c))
	}
}
