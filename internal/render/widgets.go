package render

import (
	"fmt"
	"strings"

	"github.com/complyhub/complyhub/internal/action"
	"github.com/complyhub/complyhub/internal/alert"
	"github.com/complyhub/complyhub/internal/dom"
	"github.com/complyhub/complyhub/internal/markup"
	"github.com/complyhub/complyhub/internal/notify"
	"golang.org/x/net/html"
)

// Well-known element ids and classes.
const (
	AlertsTarget   = "alerts-container"
	HeaderSyncID   = "header-sync"
	ToastContainer = "toast-container"
	OverlayClass   = "loading-overlay"
)

func setInner(n *html.Node, frag markup.HTML) error {
	return dom.SetInner(n, frag)
}

func alertBlock(level, icon, title string, body markup.HTML, role string) markup.HTML {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="alert %s" role="%s">`, markup.Escape(level), role)
	if icon != "" {
		b.WriteString(`<div class="alert-icon" aria-hidden="true">` + markup.Escape(icon) + `</div>`)
	}
	b.WriteString(`<div class="alert-content">`)
	if title != "" {
		b.WriteString(`<div class="alert-title">` + markup.Escape(title) + `</div>`)
	}
	b.WriteString(string(body) + `</div></div>`)
	return markup.HTML(b.String())
}

// Alerts replaces the alert banner list.
func (r *Renderer) Alerts(alerts []alert.Alert) error {
	n, err := r.target(AlertsTarget)
	if err != nil {
		return err
	}
	parts := make([]markup.HTML, len(alerts))
	for i, a := range alerts {
		parts[i] = alertBlock(string(a.Level), a.Icon, a.Title, markup.Text(a.Message), "alert")
	}
	return setInner(n, markup.Join(parts...))
}

// HeaderSync writes the last-sync clock.
func (r *Renderer) HeaderSync(text string) error {
	n, err := r.target(HeaderSyncID)
	if err != nil {
		return err
	}
	dom.SetText(n, text)
	return nil
}

// toastRegion returns the toast container, creating it on first use.
func (r *Renderer) toastRegion() *html.Node {
	if found := r.doc.ByClass(ToastContainer); len(found) > 0 {
		return found[0]
	}
	n := dom.Element("div", "class", ToastContainer, "aria-live", "polite", "aria-atomic", "true")
	dom.Append(r.doc.Body(), n)
	return n
}

// Toasts rebuilds the toast region from the active toasts.
func (r *Renderer) Toasts(toasts []notify.Toast) error {
	region := r.toastRegion()
	var b strings.Builder
	for _, t := range toasts {
		fmt.Fprintf(&b, `<div class="toast %s" role="alert" data-toast-id="%s">`, t.Kind, markup.Escape(t.ID))
		b.WriteString(`<span class="toast-icon" aria-hidden="true">` + t.Kind.Icon() + `</span>`)
		b.WriteString(`<div class="toast-content"><div class="toast-message">` + markup.Escape(t.Message) + `</div></div>`)
		b.WriteString(`<button type="button" class="toast-close" aria-label="Close notification" data-dismiss="` + markup.Escape(t.ID) + `">&times;</button>`)
		b.WriteString(`</div>`)
	}
	return setInner(region, markup.HTML(b.String()))
}

// Overlay shows or hides the loading overlay, creating it on first show.
func (r *Renderer) Overlay(message string, shown bool) error {
	var n *html.Node
	if found := r.doc.ByClass(OverlayClass); len(found) > 0 {
		n = found[0]
	}
	if n == nil {
		if !shown {
			return nil
		}
		n = dom.Element("div", "class", OverlayClass)
		dom.Append(r.doc.Body(), n)
	}
	if shown {
		err := setInner(n, markup.HTML(`<div class="loading-content"><div class="loading-spinner"></div><div class="loading-message">`+
			markup.Escape(message)+`</div></div>`))
		if err != nil {
			return err
		}
	}
	dom.ToggleClass(n, "active", shown)
	return nil
}

// Panel renders an action result panel into its target.
func (r *Renderer) Panel(p action.Panel) error {
	n, err := r.target(p.Target)
	if err != nil {
		return err
	}
	return setInner(n, PanelHTML(p))
}

// PanelHTML builds the markup for an action result panel.
func PanelHTML(p action.Panel) markup.HTML {
	var parts []markup.HTML

	if p.Level != "" {
		var body []markup.HTML
		for i, line := range p.Lines {
			if i > 0 {
				body = append(body, "<br>")
			}
			body = append(body, markup.Text(line))
		}
		role := "status"
		if p.Level == "critical" {
			role = "alert"
		}
		block := alertBlock(p.Level, p.Icon, p.Title, markup.Join(body...), role)
		if p.Live {
			block = markup.HTML(strings.Replace(string(block), `role="status"`, `role="status" aria-live="polite"`, 1))
		}
		parts = append(parts, block)
	}
	if len(p.Items) > 0 {
		var b strings.Builder
		b.WriteString(`<div class="panel-list">`)
		if p.Heading != "" {
			b.WriteString(string(markup.Strong(p.Heading)))
		}
		b.WriteString("<ul>")
		for _, item := range p.Items {
			b.WriteString("<li>" + markup.Escape(item) + "</li>")
		}
		b.WriteString("</ul></div>")
		parts = append(parts, markup.HTML(b.String()))
	}
	if p.Pre != "" {
		parts = append(parts, markup.HTML(`<pre class="code-output" aria-label="`+markup.Escape(p.PreLabel)+`">`+markup.Escape(p.Pre)+`</pre>`))
	}
	if p.Table != nil {
		rows := make([][]any, len(p.Table.Rows))
		for i, row := range p.Table.Rows {
			cells := make([]any, len(row))
			for j, c := range row {
				if c.Badge != "" {
					cells[j] = markup.Badge(c.Badge, c.Text)
				} else {
					cells[j] = c.Text
				}
			}
			rows[i] = cells
		}
		parts = append(parts, markup.HTML(`<div class="card table-card">`)+TableHTML(p.Table.Headers, rows, p.Table.Caption)+markup.HTML(`</div>`))
	}
	if len(p.Actions) > 0 {
		buttons := make([]markup.HTML, len(p.Actions))
		for i, a := range p.Actions {
			buttons[i] = markup.Button{Label: a.Label, AriaLabel: a.AriaLabel, Variant: a.Variant, Action: a.Name}.HTML()
		}
		parts = append(parts, markup.HTML(`<div class="panel-actions">`)+markup.Join(buttons...)+markup.HTML(`</div>`))
	}
	if p.Note != nil {
		parts = append(parts, PanelHTML(*p.Note))
	}
	return markup.Join(parts...)
}
