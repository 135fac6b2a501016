package action

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/complyhub/complyhub/internal/a11y"
	"github.com/complyhub/complyhub/internal/domain"
	"github.com/complyhub/complyhub/internal/nav"
	"github.com/complyhub/complyhub/internal/notify"
	"github.com/complyhub/complyhub/internal/sample"
	"github.com/complyhub/complyhub/internal/task"
	"github.com/complyhub/complyhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeView struct {
	mu      sync.Mutex
	panels  []Panel
	fields  map[string]string
	enabled map[string]bool
	shown   []string
	closed  []string
}

func newFakeView() *fakeView {
	return &fakeView{fields: map[string]string{}, enabled: map[string]bool{}}
}

func (v *fakeView) ShowPanel(p Panel) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panels = append(v.panels, p)
}

func (v *fakeView) SetField(id, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fields[id] = value
}

func (v *fakeView) SetEnabled(id string, enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled[id] = enabled
}

func (v *fakeView) Reveal(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.shown = append(v.shown, id)
}

func (v *fakeView) CloseModal(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = append(v.closed, id)
}

func (v *fakeView) lastPanel() Panel {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.panels) == 0 {
		return Panel{}
	}
	return v.panels[len(v.panels)-1]
}

type harness struct {
	d        *Dispatcher
	notifier *notify.Notifier
	status   *a11y.StatusLine
	nav      *nav.Controller
	view     *fakeView
	runner   *task.Runner
}

func newHarness(t *testing.T, snap *domain.Snapshot, opts ...DispatcherOption) *harness {
	t.Helper()
	settings := DefaultSettings()
	settings.SimDelay, settings.SQLDelay, settings.SchedulerDelay = 0, 0, 0
	reg, err := NewCatalog(snap, settings).Registry()
	require.NoError(t, err)
	return newHarnessWith(t, reg, opts...)
}

func newHarnessWith(t *testing.T, reg *Registry, opts ...DispatcherOption) *harness {
	t.Helper()
	h := &harness{
		notifier: notify.New(5 * time.Second),
		status:   &a11y.StatusLine{},
		view:     newFakeView(),
		runner:   task.NewRunner(),
	}
	h.nav = nav.New([]string{"dashboard", "analytics"}, h.status)
	require.NoError(t, h.nav.AddTabGroup("analytics-tabs", []string{"predictive-analytics", "predictive-intervention"}))
	t.Cleanup(h.runner.Shutdown)

	h.d = NewDispatcher(reg, Deps{
		Notifier:  h.notifier,
		Announcer: h.status,
		Nav:       h.nav,
		View:      h.view,
		Runner:    h.runner,
		Logger:    slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	}, opts...)
	return h
}

func sampleSnapshot(t *testing.T) *domain.Snapshot {
	t.Helper()
	s, err := sample.Source{}.Load(context.Background())
	require.NoError(t, err)
	return s
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func settle(t *testing.T, h *harness, tk *Ticket) {
	t.Helper()
	_, _ = tk.Wait(waitCtx(t))
	require.True(t, h.d.Apply(tk))
}

func TestDispatch_DataValidationReportsAccuracy(t *testing.T) {
	h := newHarness(t, sampleSnapshot(t))

	tk, err := h.d.Dispatch(context.Background(), "run-data-validation", nil)
	require.NoError(t, err)
	msg, shown := h.notifier.Overlay()
	assert.True(t, shown)
	assert.Equal(t, "Running comprehensive data validation...", msg)

	settle(t, h, tk)

	_, shown = h.notifier.Overlay()
	assert.False(t, shown)
	toasts := h.notifier.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Validation complete: 97.3% accuracy. 34 issues found.", toasts[0].Message)
	assert.Equal(t, notify.Success, toasts[0].Kind)
	assert.Equal(t, "Data validation complete. 97.3% accuracy", h.status.Last())
}

func TestDispatch_DataValidationBelowTargetWarns(t *testing.T) {
	h := newHarness(t, testutil.NewCleanSnapshot(testutil.WithValidation(90, 100)))

	tk, err := h.d.Dispatch(context.Background(), "run-data-validation", nil)
	require.NoError(t, err)
	settle(t, h, tk)

	toasts := h.notifier.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Validation complete: 90% accuracy. 10 issues found.", toasts[0].Message)
	assert.Equal(t, notify.Warning, toasts[0].Kind)
}

func TestDispatch_InvalidInputWarnsWithoutTask(t *testing.T) {
	h := newHarness(t, sampleSnapshot(t))

	tk, err := h.d.Dispatch(context.Background(), "execute-sql", Input{FieldSQLQuery: "   "})
	assert.Nil(t, tk)
	require.ErrorIs(t, err, ErrInvalidInput)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FieldSQLQuery, fe.Field)

	toasts := h.notifier.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Please enter a SQL query", toasts[0].Message)
	assert.Equal(t, notify.Warning, toasts[0].Kind)
	_, shown := h.notifier.Overlay()
	assert.False(t, shown)
	assert.Empty(t, h.runner.Pending())
}

func TestDispatch_UnknownAction(t *testing.T) {
	h := newHarness(t, sampleSnapshot(t))

	_, err := h.d.Dispatch(context.Background(), "launch-rockets", nil)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Empty(t, h.notifier.Active())
}

func TestDispatch_ConfirmationRequired(t *testing.T) {
	h := newHarness(t, sampleSnapshot(t))

	_, err := h.d.Dispatch(context.Background(), "fix-critical-issues", nil)
	require.ErrorIs(t, err, ErrConfirmationRequired)
	var ce *ConfirmationError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Prompt, "Review and correct critical data issues?")
	assert.Empty(t, h.notifier.Active())

	_, err = h.d.Dispatch(context.Background(), "fix-critical-issues", Input{"confirm": "true"})
	require.NoError(t, err)
	toasts := h.notifier.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Opening critical issues for review", toasts[0].Message)
}

func TestDispatch_InstantNavigates(t *testing.T) {
	h := newHarness(t, sampleSnapshot(t))

	tk, err := h.d.Dispatch(context.Background(), "view-high-risk", nil)
	require.NoError(t, err)
	assert.Equal(t, task.Succeeded, tk.State())
	assert.Equal(t, "analytics", h.nav.ActivePage())
	tab, ok := h.nav.ActiveTab("analytics-tabs")
	require.True(t, ok)
	assert.Equal(t, "predictive-intervention", tab)
	assert.Equal(t, "Switched to predictive-intervention tab", h.status.Last())

	assert.False(t, h.d.Apply(tk), "instant tickets are applied once")
}

func TestDispatch_InstantAfterShutdownReportsCancellation(t *testing.T) {
	h := newHarness(t, sampleSnapshot(t))
	h.runner.Shutdown()

	tk, err := h.d.Dispatch(context.Background(), "export-dashboard", nil)
	require.ErrorIs(t, err, task.ErrShutdown)
	require.NotNil(t, tk)
	assert.Equal(t, task.Cancelled, tk.State())
	assert.Empty(t, h.notifier.Active(), "nothing is applied")
}

func TestDispatch_InlineShowsPendingPanel(t *testing.T) {
	h := newHarness(t, sampleSnapshot(t))

	tk, err := h.d.Dispatch(context.Background(), "run-auto-scheduler", Input{FieldSchedulerGrade: "7"})
	require.NoError(t, err)
	pending := h.view.lastPanel()
	assert.Equal(t, TargetScheduler, pending.Target)
	assert.True(t, pending.Live)
	assert.Equal(t, []string{"Running automated scheduler for Grade 7..."}, pending.Lines)

	settle(t, h, tk)

	done := h.view.lastPanel()
	assert.Equal(t, "Scheduling Complete", done.Title)
	assert.Equal(t, []string{"Successfully scheduled 215 students in Grade 7"}, done.Lines)
	toasts := h.notifier.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Scheduling complete for 215 students in Grade 7", toasts[0].Message)
}

func TestDispatch_ValidateMOSISEnablesGenerate(t *testing.T) {
	h := newHarness(t, sampleSnapshot(t))

	tk, err := h.d.Dispatch(context.Background(), "validate-mosis", nil)
	require.NoError(t, err)
	settle(t, h, tk)

	assert.True(t, h.view.enabled[GenerateMOSISButton])
	p := h.view.lastPanel()
	assert.Equal(t, TargetMOSIS, p.Target)
	assert.Contains(t, p.Items, "1,247 student records validated")
	assert.Equal(t, "MOSIS validation complete. All checks passed.", h.status.Last())
}

func TestDispatch_ModalActionsCloseAndClear(t *testing.T) {
	h := newHarness(t, sampleSnapshot(t))

	_, err := h.d.Dispatch(context.Background(), "add-compliance-item", Input{FieldComplianceTask: "Board report", FieldComplianceOwner: "J. Smith"})
	require.NoError(t, err)

	assert.Equal(t, []string{ModalAddCompliance}, h.view.closed)
	assert.Equal(t, "", h.view.fields[FieldComplianceTask])
	assert.Equal(t, "", h.view.fields[FieldComplianceOwner])
	assert.Equal(t, "", h.view.fields[FieldComplianceDue])
}

func TestDispatch_SupersededTicketIsIgnored(t *testing.T) {
	calls := 0
	reg, err := NewRegistry(Action{
		Name: "slow", Label: "slow", Style: Blocking, Delay: time.Hour,
		Run: func(context.Context, Input) (Outcome, error) {
			calls++
			return Outcome{Toast: toast(notify.Success, "done")}, nil
		},
	})
	require.NoError(t, err)
	h := newHarnessWith(t, reg)

	first, err := h.d.Dispatch(context.Background(), "slow", nil)
	require.NoError(t, err)
	second, err := h.d.Dispatch(context.Background(), "slow", nil)
	require.NoError(t, err)

	<-first.Done()
	assert.Equal(t, task.Cancelled, first.State())
	_, err = first.Outcome()
	assert.ErrorIs(t, err, task.ErrSuperseded)
	assert.False(t, h.d.Apply(first))

	_, shown := h.notifier.Overlay()
	assert.True(t, shown, "overlay stays up for the live task")
	assert.Equal(t, task.Pending, second.State())
	assert.False(t, h.d.Apply(second))
	assert.Zero(t, calls)
}

func TestDispatch_FailureShowsGenericError(t *testing.T) {
	reg, err := NewRegistry(Action{
		Name: "broken", Label: "report export", Style: Blocking,
		Run: func(context.Context, Input) (Outcome, error) {
			return Outcome{}, errors.New("disk full")
		},
	})
	require.NoError(t, err)
	h := newHarnessWith(t, reg)

	tk, err := h.d.Dispatch(context.Background(), "broken", nil)
	require.NoError(t, err)
	settle(t, h, tk)

	_, shown := h.notifier.Overlay()
	assert.False(t, shown)
	toasts := h.notifier.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Error running report export. Please try again.", toasts[0].Message)
	assert.Equal(t, notify.Error, toasts[0].Kind)
}

func TestDispatch_AutoApply(t *testing.T) {
	var mu sync.Mutex
	h := newHarness(t, sampleSnapshot(t), WithAutoApply(func(f func()) {
		mu.Lock()
		defer mu.Unlock()
		f()
	}))

	_, err := h.d.Dispatch(context.Background(), "run-dese-validation", nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(h.notifier.Active()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "DESE validation complete", h.notifier.Active()[0].Message)
	assert.Equal(t, "DESE validation complete. 2 critical issues found.", h.status.Last())
	p := h.view.lastPanel()
	require.NotNil(t, p.Table)
	assert.Len(t, p.Table.Rows, 8)
	require.NotNil(t, p.Note)
	assert.Equal(t, "critical", p.Note.Level)
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.ObserveAction(context.Background(), Event{Name: "execute-sql", Duration: 3 * time.Millisecond, Success: true})
	assert.Contains(t, buf.String(), "action_use_case")
	assert.Contains(t, buf.String(), "action=execute-sql")

	buf.Reset()
	obs.ObserveAction(context.Background(), Event{Name: "save-query", Err: &FieldError{Field: FieldSQLQuery, Message: "x"}})
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	obs.ObserveAction(context.Background(), Event{Name: "broken", Err: errors.New("boom")})
	assert.Contains(t, buf.String(), "level=ERROR")

	_, ok := NewLogObserver(nil).(NoopObserver)
	assert.True(t, ok)
}
