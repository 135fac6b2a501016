package render

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/complyhub/complyhub/internal/dom"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

type ChartKind string

const (
	Line     ChartKind = "line"
	Bar      ChartKind = "bar"
	Pie      ChartKind = "pie"
	Doughnut ChartKind = "doughnut"
)

// DefaultAriaLabel is used when a chart has no description of its own.
const DefaultAriaLabel = "Chart visualization"

// Palette used across the dashboard charts.
const (
	ColorPrimary = "#3b82f6"
	ColorSuccess = "#10b981"
	ColorWarning = "#f59e0b"
	ColorDanger  = "#ef4444"
	ColorInfo    = "#8b5cf6"
	ColorGray    = "#6b7280"
	ColorTrack   = "#e5e7eb"
)

// Fill returns a translucent variant of a palette color.
func Fill(color string) string { return color + "1A" }

// ChartSpec is a Chart.js configuration plus the accessible description.
type ChartSpec struct {
	Kind      ChartKind
	Data      ChartData
	Options   map[string]any
	AriaLabel string
}

type ChartData struct {
	Labels   []any     `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset values may hold nil for gaps.
type Dataset struct {
	Label           string  `json:"label,omitempty"`
	Data            []any   `json:"data"`
	BackgroundColor any     `json:"backgroundColor,omitempty"`
	BorderColor     string  `json:"borderColor,omitempty"`
	BorderWidth     *int    `json:"borderWidth,omitempty"`
	BorderRadius    int     `json:"borderRadius,omitempty"`
	BorderDash      []int   `json:"borderDash,omitempty"`
	Tension         float64 `json:"tension,omitempty"`
	Fill            *bool   `json:"fill,omitempty"`
}

func defaultOptions() map[string]any {
	return map[string]any{
		"responsive":          true,
		"maintainAspectRatio": false,
	}
}

// ChartHandle is one live chart. Destroyed handles keep their spec for
// inspection but no longer own a config node.
type ChartHandle struct {
	ID        string
	Target    string
	Spec      ChartSpec
	Config    []byte
	node      *html.Node
	destroyed bool
}

func (h *ChartHandle) Destroyed() bool { return h.destroyed }

// Destroy removes the chart's config node from the document.
func (h *ChartHandle) Destroy() {
	if h.destroyed {
		return
	}
	dom.Remove(h.node)
	h.node = nil
	h.destroyed = true
}

// Charts is the registry of live charts, one per target id.
type Charts struct {
	live map[string]*ChartHandle
}

func newCharts() *Charts {
	return &Charts{live: make(map[string]*ChartHandle)}
}

func (c *Charts) Get(targetID string) (*ChartHandle, bool) {
	h, ok := c.live[targetID]
	return h, ok
}

func (c *Charts) Len() int { return len(c.live) }

// DestroyAll tears down every live chart.
func (c *Charts) DestroyAll() {
	for id, h := range c.live {
		h.Destroy()
		delete(c.live, id)
	}
}

// Chart renders spec onto the canvas targetID. A chart already on that
// canvas is destroyed first; there is no incremental update.
func (r *Renderer) Chart(targetID string, spec ChartSpec) (*ChartHandle, error) {
	canvas, err := r.target(targetID)
	if err != nil {
		return nil, err
	}
	if old, ok := r.charts.live[targetID]; ok {
		old.Destroy()
		delete(r.charts.live, targetID)
	}

	label := spec.AriaLabel
	if label == "" {
		label = DefaultAriaLabel
	}
	dom.SetAttr(canvas, "role", "img")
	dom.SetAttr(canvas, "aria-label", label)

	opts := defaultOptions()
	maps.Copy(opts, spec.Options)
	config, err := json.Marshal(struct {
		Type    ChartKind      `json:"type"`
		Data    ChartData      `json:"data"`
		Options map[string]any `json:"options"`
	}{spec.Kind, spec.Data, opts})
	if err != nil {
		return nil, fmt.Errorf("encoding chart %s: %w", targetID, err)
	}

	h := &ChartHandle{ID: uuid.New().String(), Target: targetID, Spec: spec, Config: config}
	// json.Marshal escapes <, > and &, so the payload cannot close the script.
	h.node = dom.Element("script", "type", "application/json", "data-chart-for", targetID, "data-chart-id", h.ID)
	dom.Append(h.node, dom.TextNode(string(config)))
	dom.InsertAfter(canvas, h.node)
	r.charts.live[targetID] = h
	return h, nil
}
