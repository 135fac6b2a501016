package web

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/complyhub/complyhub/internal/action"
	"github.com/complyhub/complyhub/internal/dom"
	"github.com/complyhub/complyhub/internal/notify"
	"github.com/complyhub/complyhub/internal/render"
	"github.com/complyhub/complyhub/internal/sample"
)

var fixedNow = time.Date(2025, 11, 3, 14, 5, 0, 0, time.UTC)

func newTestShell(t *testing.T) *Shell {
	t.Helper()
	snap, err := sample.Source{}.Load(context.Background())
	require.NoError(t, err)

	settings := action.DefaultSettings()
	settings.SimDelay, settings.SQLDelay, settings.SchedulerDelay = 0, 0, 0
	s, err := NewShell(snap, ShellConfig{
		Settings:  settings,
		ToastLife: time.Minute,
		Clock:     func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func parsed(t *testing.T, s *Shell) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(s.HTML())
	require.NoError(t, err)
	return doc
}

func hasToast(s *Shell, msg string) bool {
	for _, t := range s.Toasts() {
		if t.Message == msg {
			return true
		}
	}
	return false
}

func TestNewShell_RendersDashboard(t *testing.T) {
	s := newTestShell(t)
	doc := parsed(t, s)

	assert.Equal(t, "1,247", dom.Text(doc.ByID("stat-total-students")))
	assert.Equal(t, "02:05 PM", dom.Text(doc.ByID(render.HeaderSyncID)))
	assert.NotEmpty(t, doc.ByClass("alert"), "alerts rendered")

	scripts := dom.FindAll(doc.Root(), func(n *html.Node) bool {
		_, ok := dom.Attr(n, "data-chart-for")
		return ok
	})
	assert.Len(t, scripts, 18)
	assert.Equal(t, "overview", s.ActivePage())
}

func TestSwitchPage_TogglesSections(t *testing.T) {
	s := newTestShell(t)

	require.True(t, s.SwitchPage("analytics"))
	assert.False(t, s.SwitchPage("nowhere"))
	assert.Equal(t, "Switched to analytics page", s.Announcement())

	doc := parsed(t, s)
	analytics := doc.ByID("analytics")
	assert.True(t, dom.HasClass(analytics, "active"))
	_, hidden := dom.Attr(analytics, "hidden")
	assert.False(t, hidden)

	_, hidden = dom.Attr(doc.ByID("overview"), "hidden")
	assert.True(t, hidden)
	for _, b := range doc.ByClass("nav-btn") {
		page, _ := dom.Attr(b, "data-page")
		assert.Equal(t, page == "analytics", dom.HasClass(b, "active"), page)
	}
}

func TestSwitchTab_OnlyTouchesItsGroup(t *testing.T) {
	s := newTestShell(t)

	require.True(t, s.SwitchTab("analytics-tabs", "predictive-intervention"))
	doc := parsed(t, s)
	assert.True(t, dom.HasClass(doc.ByID("predictive-intervention"), "active"))
	assert.False(t, dom.HasClass(doc.ByID("assessment-analytics"), "active"))
	assert.True(t, dom.HasClass(doc.ByID("data-issues"), "active"), "other groups untouched")

	next, ok := s.MoveTab("analytics-tabs", "ArrowRight")
	require.True(t, ok)
	assert.Equal(t, "enrollment-forecasting", next)

	next, ok = s.MoveTab("analytics-tabs", "ArrowRight")
	require.True(t, ok)
	assert.Equal(t, "cohort-tracking", next)

	next, _ = s.MoveTab("analytics-tabs", "ArrowRight")
	assert.Equal(t, "assessment-analytics", next, "wraps")
}

func TestModal_FocusTrapAndEscape(t *testing.T) {
	s := newTestShell(t)

	first, err := s.OpenModal("sql-modal")
	require.NoError(t, err)
	assert.Equal(t, "modal-sql-query", first)

	next, err := s.FocusNext("sql-modal", false)
	require.NoError(t, err)
	assert.Equal(t, "modal-sql-query", next, "tab from last wraps to first")

	prev, err := s.FocusNext("modal-sql-query", true)
	require.NoError(t, err)
	assert.Equal(t, "sql-modal", prev, "shift-tab from first wraps to last")

	doc := parsed(t, s)
	assert.True(t, dom.HasClass(doc.ByID("sql-modal"), "active"))

	id, ok := s.Escape()
	assert.True(t, ok)
	assert.Equal(t, "sql-modal", id)
	_, ok = s.Escape()
	assert.False(t, ok)

	_, err = s.FocusNext("modal-sql-query", false)
	assert.ErrorIs(t, err, ErrNoModal)

	_, err = s.OpenModal("overview")
	assert.ErrorIs(t, err, ErrUnknownModal)
}

func TestModal_OpeningAnotherReplaces(t *testing.T) {
	s := newTestShell(t)

	_, err := s.OpenModal("sql-modal")
	require.NoError(t, err)
	_, err = s.OpenModal("add-compliance-modal")
	require.NoError(t, err)

	doc := parsed(t, s)
	assert.False(t, dom.HasClass(doc.ByID("sql-modal"), "active"))
	assert.True(t, dom.HasClass(doc.ByID("add-compliance-modal"), "active"))
	assert.False(t, s.CloseModal("sql-modal"))
	assert.True(t, s.CloseModal("add-compliance-modal"))
}

func TestDispatch_InstantClosesModalAndClearsField(t *testing.T) {
	s := newTestShell(t)
	_, err := s.OpenModal("sql-modal")
	require.NoError(t, err)

	_, err = s.Dispatch(context.Background(), "execute-modal-sql", action.Input{action.FieldModalSQL: "SELECT 1"})
	require.NoError(t, err)

	assert.True(t, hasToast(s, "Executing SQL query..."))
	doc := parsed(t, s)
	assert.False(t, dom.HasClass(doc.ByID("sql-modal"), "active"))
	assert.Empty(t, dom.Text(doc.ByID(action.FieldModalSQL)))
}

func TestDispatch_BlockingAppliesWhenSettled(t *testing.T) {
	s := newTestShell(t)

	tk, err := s.Dispatch(context.Background(), "execute-sql", action.Input{action.FieldSQLQuery: "SELECT * FROM students"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return hasToast(s, "Query executed successfully. 5 rows returned.")
	}, 2*time.Second, 10*time.Millisecond)

	info, ok := s.Task(tk.ID)
	require.True(t, ok)
	assert.Equal(t, "succeeded", info.State.String())

	doc := parsed(t, s)
	_, hidden := dom.Attr(doc.ByID(action.SQLExportSection), "hidden")
	assert.False(t, hidden)
	assert.Contains(t, s.HTML(), "S001234")
	overlay := doc.ByClass("loading-overlay")
	if len(overlay) > 0 {
		assert.False(t, dom.HasClass(overlay[0], "active"))
	}
}

func TestDispatch_InvalidInputWarns(t *testing.T) {
	s := newTestShell(t)

	_, err := s.Dispatch(context.Background(), "execute-sql", action.Input{action.FieldSQLQuery: "   "})
	require.ErrorIs(t, err, action.ErrInvalidInput)

	toasts := s.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.Warning, toasts[0].Kind)
	assert.Equal(t, "Please enter a SQL query", toasts[0].Message)
	assert.Contains(t, s.HTML(), "Please enter a SQL query")
}

func TestDispatch_NavigatesAndMirrorsDocument(t *testing.T) {
	s := newTestShell(t)

	_, err := s.Dispatch(context.Background(), "view-high-risk", nil)
	require.NoError(t, err)

	assert.Equal(t, "analytics", s.ActivePage())
	doc := parsed(t, s)
	assert.True(t, dom.HasClass(doc.ByID("predictive-intervention"), "active"))
}

func TestDismissToast(t *testing.T) {
	s := newTestShell(t)
	_, err := s.Dispatch(context.Background(), "export-dashboard", nil)
	require.NoError(t, err)

	toasts := s.Toasts()
	require.Len(t, toasts, 1)
	assert.Contains(t, s.HTML(), `data-toast-id="`+toasts[0].ID+`"`)

	assert.True(t, s.DismissToast(toasts[0].ID))
	assert.False(t, s.DismissToast(toasts[0].ID))
	assert.False(t, strings.Contains(s.HTML(), toasts[0].ID))
}

func TestNewShell_MinimalLayoutDegrades(t *testing.T) {
	snap, err := sample.Source{}.Load(context.Background())
	require.NoError(t, err)

	s, err := NewShell(snap, ShellConfig{
		Settings: action.DefaultSettings(),
		Layout:   `<html><body><main id="main"><section id="overview" class="page active"></section></main></body></html>`,
	})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "overview", s.ActivePage())
	assert.Empty(t, s.Toasts(), "missing widgets are not an init failure")
}
