// Package web serves the dashboard over HTTP. A Shell owns one server-side
// document with its navigation, notification and render state; the echo
// server exposes it as a page plus a small action and navigation API.
package web

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/complyhub/complyhub/internal/a11y"
	"github.com/complyhub/complyhub/internal/action"
	"github.com/complyhub/complyhub/internal/alert"
	"github.com/complyhub/complyhub/internal/dom"
	"github.com/complyhub/complyhub/internal/domain"
	"github.com/complyhub/complyhub/internal/nav"
	"github.com/complyhub/complyhub/internal/notify"
	"github.com/complyhub/complyhub/internal/render"
	"github.com/complyhub/complyhub/internal/task"
	"golang.org/x/net/html"
)

//go:embed layout.html
var layoutHTML string

const initErrorMessage = "Error initializing dashboard. Please refresh the page."

// SyncTimeFormat is the header clock layout.
const SyncTimeFormat = "03:04 PM"

var (
	ErrUnknownModal = errors.New("unknown modal")
	ErrNoModal      = errors.New("no modal open")
)

// ShellConfig carries the tunables a shell needs.
type ShellConfig struct {
	Settings     action.Settings
	ToastLife    time.Duration
	SyncInterval time.Duration
	Logger       *slog.Logger
	Observer     action.Observer
	Clock        func() time.Time
	// Layout overrides the embedded page, for tests.
	Layout string
}

// Shell is the single logical UI thread of the web surface. Every exported
// method takes mu, and task completions apply their outcome under it too.
type Shell struct {
	mu        sync.Mutex
	snap      *domain.Snapshot
	cfg       ShellConfig
	doc       *dom.Document
	render    *render.Renderer
	nav       *nav.Controller
	notifier  *notify.Notifier
	announcer *a11y.LiveRegion
	modals    a11y.ModalSlot
	trap      *a11y.FocusTrap[string]
	catalog   *action.Catalog
	dispatch  *action.Dispatcher
	log       *slog.Logger

	stopClock context.CancelFunc
	clockDone chan struct{}
}

func NewShell(snap *domain.Snapshot, cfg ShellConfig) (*Shell, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Layout == "" {
		cfg.Layout = layoutHTML
	}
	doc, err := dom.ParseString(cfg.Layout)
	if err != nil {
		return nil, fmt.Errorf("loading layout: %w", err)
	}

	s := &Shell{
		snap:      snap,
		cfg:       cfg,
		doc:       doc,
		render:    render.NewRenderer(doc, cfg.Logger),
		announcer: a11y.NewLiveRegion(doc),
		notifier:  notify.New(cfg.ToastLife, notify.WithClock(cfg.Clock)),
		log:       cfg.Logger,
	}

	s.nav = nav.New(pageIDs(doc), s.announcer)
	for container, tabs := range tabGroups(doc) {
		if err := s.nav.AddTabGroup(container, tabs); err != nil {
			return nil, fmt.Errorf("registering tabs: %w", err)
		}
	}
	s.nav.Subscribe(s.applyNav)
	s.notifier.Subscribe(s.renderNotices)

	s.catalog = action.NewCatalog(snap, cfg.Settings)
	reg, err := s.catalog.Registry()
	if err != nil {
		return nil, fmt.Errorf("building actions: %w", err)
	}
	s.dispatch = action.NewDispatcher(reg, action.Deps{
		Notifier:  s.notifier,
		Announcer: s.announcer,
		Nav:       s.nav,
		View:      shellView{s},
		Runner:    task.NewRunner(),
		Observer:  cfg.Observer,
		Logger:    cfg.Logger,
	}, action.WithAutoApply(s.locked))

	s.initialize()
	return s, nil
}

func (s *Shell) locked(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f()
}

// initialize draws every widget. A panic anywhere leaves an empty layout
// with a single error toast.
func (s *Shell) initialize() {
	err := render.Guard("dashboard", func() error {
		if err := s.render.Alerts(alert.Generate(s.snap, s.cfg.Settings.Target)); err != nil {
			s.log.Warn("alerts not rendered", "error", err)
		}
		// Missing widgets are logged inside Dashboard and do not fail init.
		_ = s.render.Dashboard(s.snap)
		s.updateSync()
		return nil
	})
	if err != nil {
		s.log.Error("dashboard initialization failed", "error", err)
		if main := s.doc.ByID("main"); main != nil {
			dom.Clear(main)
		}
		s.notifier.Notify(initErrorMessage, notify.Error, 0)
	}
}

func (s *Shell) updateSync() {
	if err := s.render.HeaderSync(s.cfg.Clock().Format(SyncTimeFormat)); err != nil {
		s.log.Debug("header clock not rendered", "error", err)
	}
}

// StartClock refreshes the last-sync clock every SyncInterval until Close.
func (s *Shell) StartClock() {
	if s.cfg.SyncInterval <= 0 || s.stopClock != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stopClock = cancel
	s.clockDone = make(chan struct{})
	go func() {
		defer close(s.clockDone)
		ticker := time.NewTicker(s.cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.locked(s.updateSync)
			}
		}
	}()
}

// Close stops the clock and cancels pending actions.
func (s *Shell) Close() {
	if s.stopClock != nil {
		s.stopClock()
		<-s.clockDone
	}
	s.dispatch.Runner().Shutdown()
	s.locked(s.render.Charts().DestroyAll)
}

// HTML serializes the current page after dropping expired toasts.
func (s *Shell) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier.Expire(s.cfg.Clock())
	return s.doc.String()
}

// Dispatch runs an action from the dashboard's dispatch table.
func (s *Shell) Dispatch(ctx context.Context, name string, in action.Input) (*action.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatch.Dispatch(ctx, name, in)
}

func (s *Shell) Task(id string) (task.Info, bool) {
	return s.dispatch.Runner().Get(id)
}

func (s *Shell) SwitchPage(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.SwitchPage(id)
}

func (s *Shell) SwitchTab(container, tab string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.SwitchTab(container, tab)
}

// MoveTab handles an arrow key pressed on a tab in container.
func (s *Shell) MoveTab(container, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.MoveTab(container, a11y.ParseKey(key))
}

func (s *Shell) ActivePage() string {
	return s.nav.ActivePage()
}

func (s *Shell) DismissToast(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifier.Dismiss(id)
}

func (s *Shell) Toasts() []notify.Toast {
	return s.notifier.Active()
}

// Announcement returns the live-region text.
func (s *Shell) Announcement() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.announcer.Last()
}

// OpenModal shows modal id, closing any other open modal, and returns the
// key of the element that should take focus.
func (s *Shell) OpenModal(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.modalNode(id)
	if n == nil {
		return "", fmt.Errorf("%q: %w", id, ErrUnknownModal)
	}
	if prev := s.modals.Open(id); prev != "" {
		s.hideModal(prev)
	}
	dom.AddClass(n, "active")
	dom.SetAttr(n, "aria-hidden", "false")

	var keys []string
	for _, f := range dom.Focusables(n) {
		if k := focusKey(f); k != "" {
			keys = append(keys, k)
		}
	}
	s.trap = a11y.NewFocusTrap(keys)
	first, _ := s.trap.First()
	return first, nil
}

func (s *Shell) CloseModal(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeModal(id)
}

// Escape closes the open modal, if any.
func (s *Shell) Escape() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.modals.Escape()
	if ok {
		s.hideModal(id)
	}
	return id, ok
}

// FocusNext moves focus inside the open modal for Tab or Shift+Tab.
func (s *Shell) FocusNext(current string, backward bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.modals.Active(); !ok || s.trap == nil {
		return "", ErrNoModal
	}
	next, _ := s.trap.Step(current, backward)
	return next, nil
}

func (s *Shell) closeModal(id string) bool {
	if !s.modals.Close(id) {
		return false
	}
	s.hideModal(id)
	return true
}

func (s *Shell) hideModal(id string) {
	s.trap = nil
	if n := s.modalNode(id); n != nil {
		dom.RemoveClass(n, "active")
		dom.SetAttr(n, "aria-hidden", "true")
	}
}

func (s *Shell) modalNode(id string) *html.Node {
	n := s.doc.ByID(id)
	if n == nil || !dom.HasClass(n, "modal") {
		return nil
	}
	return n
}

// renderNotices mirrors notifier state into the document. It runs inside
// whichever shell method changed the notifier, so mu is already held.
func (s *Shell) renderNotices() {
	if err := s.render.Toasts(s.notifier.Active()); err != nil {
		s.log.Warn("toasts not rendered", "error", err)
	}
	msg, shown := s.notifier.Overlay()
	if err := s.render.Overlay(msg, shown); err != nil {
		s.log.Warn("overlay not rendered", "error", err)
	}
}

// applyNav reflects a navigation change in the document. Like
// renderNotices it runs with mu held.
func (s *Shell) applyNav(ch nav.Change) {
	switch ch.Kind {
	case nav.PageChanged:
		for _, p := range s.doc.ByClass("page") {
			id, _ := dom.Attr(p, "id")
			setActive(p, id == ch.ID)
		}
		for _, b := range s.doc.ByClass("nav-btn") {
			page, _ := dom.Attr(b, "data-page")
			dom.ToggleClass(b, "active", page == ch.ID)
			if page == ch.ID {
				dom.SetAttr(b, "aria-current", "page")
			} else {
				dom.RemoveAttr(b, "aria-current")
			}
		}
	case nav.TabChanged:
		list := s.doc.ByID(ch.Container)
		if list == nil {
			return
		}
		for _, t := range dom.FindAll(list, func(n *html.Node) bool { return dom.HasClass(n, "tab") }) {
			tab, _ := dom.Attr(t, "data-tab")
			dom.ToggleClass(t, "active", tab == ch.ID)
			dom.SetAttr(t, "aria-selected", fmt.Sprint(tab == ch.ID))
		}
		for _, id := range s.nav.Tabs(ch.Container) {
			if panel := s.doc.ByID(id); panel != nil {
				setActive(panel, id == ch.ID)
			}
		}
	}
}

func setActive(n *html.Node, on bool) {
	dom.ToggleClass(n, "active", on)
	if on {
		dom.RemoveAttr(n, "hidden")
	} else {
		dom.SetAttr(n, "hidden", "")
	}
}

func pageIDs(doc *dom.Document) []string {
	var ids []string
	for _, p := range doc.ByClass("page") {
		if id, ok := dom.Attr(p, "id"); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func tabGroups(doc *dom.Document) map[string][]string {
	groups := make(map[string][]string)
	for _, list := range doc.ByClass("tabs") {
		container, ok := dom.Attr(list, "id")
		if !ok {
			continue
		}
		for _, t := range dom.FindAll(list, func(n *html.Node) bool { return dom.HasClass(n, "tab") }) {
			if id, ok := dom.Attr(t, "data-tab"); ok {
				groups[container] = append(groups[container], id)
			}
		}
	}
	return groups
}

// focusKey identifies a focusable element to the browser glue.
func focusKey(n *html.Node) string {
	for _, attr := range []string{"id", "data-action", "data-modal-close"} {
		if v, ok := dom.Attr(n, attr); ok && v != "" {
			return v
		}
	}
	return ""
}

// shellView applies action outcomes to the document. Its methods run with
// the shell's mu held.
type shellView struct{ s *Shell }

func (v shellView) ShowPanel(p action.Panel) {
	if err := v.s.render.Panel(p); err != nil {
		v.s.log.Warn("panel not rendered", "target", p.Target, "error", err)
	}
}

func (v shellView) SetField(id, value string) {
	n := v.s.doc.ByID(id)
	if n == nil {
		return
	}
	if n.Data == "textarea" {
		dom.SetText(n, value)
		return
	}
	dom.SetAttr(n, "value", value)
}

func (v shellView) SetEnabled(id string, enabled bool) {
	n := v.s.doc.ByID(id)
	if n == nil {
		return
	}
	if enabled {
		dom.RemoveAttr(n, "disabled")
	} else {
		dom.SetAttr(n, "disabled", "")
	}
}

func (v shellView) Reveal(id string) {
	if n := v.s.doc.ByID(id); n != nil {
		dom.RemoveAttr(n, "hidden")
	}
}

func (v shellView) CloseModal(id string) {
	v.s.closeModal(id)
}
