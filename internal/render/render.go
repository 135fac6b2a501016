// Package render draws the dashboard into a server-side document: tables,
// chart configurations, alerts, toasts, the loading overlay and action
// result panels. Every call targets an element id and fails independently.
package render

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/complyhub/complyhub/internal/dom"
	"golang.org/x/net/html"
)

var ErrTargetMissing = errors.New("render target missing")

// Renderer owns the chart registry for one document. It is not safe for
// concurrent use; the owning shell serializes calls.
type Renderer struct {
	doc    *dom.Document
	charts *Charts
	log    *slog.Logger
}

func NewRenderer(doc *dom.Document, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{doc: doc, charts: newCharts(), log: logger}
}

func (r *Renderer) Document() *dom.Document { return r.doc }
func (r *Renderer) Charts() *Charts         { return r.charts }

// target resolves id or logs and reports ErrTargetMissing.
func (r *Renderer) target(id string) (*html.Node, error) {
	n := r.doc.ByID(id)
	if n == nil {
		r.log.Warn("render target not found", "target", id)
		return nil, fmt.Errorf("%q: %w", id, ErrTargetMissing)
	}
	return n, nil
}

// Guard runs fn and converts a panic into an error so one broken widget
// never stops the others.
func Guard(name string, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("rendering %s: panic: %v", name, p)
		}
	}()
	return fn()
}
