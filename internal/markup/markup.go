// Package markup separates trusted, code-built HTML fragments from
// untrusted text. Only values of type HTML are inserted into pages without
// escaping, and the constructors here build them from escaped input.
package markup

import (
	"html"
	"sort"
	"strings"
)

// HTML is a fragment the rendering code built itself. Converting arbitrary
// strings to HTML bypasses escaping; use the constructors below instead.
type HTML string

func (h HTML) String() string { return string(h) }

// Escape makes s safe for element content and quoted attribute values.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Text escapes s into a fragment.
func Text(s string) HTML {
	return HTML(Escape(s))
}

// Sanitize trims s and strips angle brackets. Used for short user-entered
// names that are stored, not just displayed.
func Sanitize(s string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(s))
}

// Join concatenates fragments.
func Join(parts ...HTML) HTML {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(string(p))
	}
	return HTML(b.String())
}

// Strong wraps escaped text in <strong>.
func Strong(s string) HTML {
	return Wrap("strong", Text(s))
}

// Wrap places inner inside a bare element.
func Wrap(tag string, inner HTML) HTML {
	return HTML("<" + tag + ">" + string(inner) + "</" + tag + ">")
}

// Badge renders a status badge, e.g. Badge("overdue", "Tier 3").
func Badge(class, label string) HTML {
	return BadgeHTML(class, Text(label))
}

// BadgeHTML renders a status badge around an already-built fragment.
func BadgeHTML(class string, inner HTML) HTML {
	return HTML(`<span class="status-badge ` + Escape(class) + `">` + string(inner) + `</span>`)
}

// Button describes an action button. Action is dispatched through the
// data-action attribute; Data adds extra data-* attributes in key order.
type Button struct {
	Label     string
	AriaLabel string
	Variant   string // primary, secondary, success, warning, danger
	Action    string
	Small     bool
	Data      map[string]string
}

func (b Button) HTML() HTML {
	var sb strings.Builder
	sb.WriteString(`<button type="button" class="btn`)
	if b.Variant != "" {
		sb.WriteString(" btn-" + Escape(b.Variant))
	}
	if b.Small {
		sb.WriteString(" btn-sm")
	}
	sb.WriteString(`"`)
	if b.Action != "" {
		sb.WriteString(` data-action="` + Escape(b.Action) + `"`)
	}
	keys := make([]string, 0, len(b.Data))
	for k := range b.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(` data-` + Escape(k) + `="` + Escape(b.Data[k]) + `"`)
	}
	if b.AriaLabel != "" {
		sb.WriteString(` aria-label="` + Escape(b.AriaLabel) + `"`)
	}
	sb.WriteString(">" + Escape(b.Label) + "</button>")
	return HTML(sb.String())
}
