package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/complyhub/complyhub/internal/a11y"
	"github.com/complyhub/complyhub/internal/action"
	"github.com/complyhub/complyhub/internal/cli/formatter"
	"github.com/complyhub/complyhub/internal/domain"
	"github.com/complyhub/complyhub/internal/nav"
	"github.com/complyhub/complyhub/internal/notify"
	"github.com/complyhub/complyhub/internal/web"
)

// ticketSettledMsg is sent once a delayed action's task has settled.
type ticketSettledMsg struct{ ticket *action.Ticket }

type toastExpireMsg struct{}

type syncTickMsg struct{}

// runActionMsg dispatches an action with input collected by a wizard.
type runActionMsg struct {
	name  string
	input action.Input
}

// dashState is the mutable state behind dashboardModel. bubbletea copies
// the model on every Update, so everything lives behind this pointer.
type dashState struct {
	app  *App
	ctx  context.Context
	snap *domain.Snapshot

	nav      *nav.Controller
	status   *a11y.StatusLine
	notifier *notify.Notifier
	dispatch *action.Dispatcher
	board    *panelBoard
	modals   a11y.ModalSlot
	modal    *modalForm
	wizard   *wizardForm

	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     dashKeyMap

	cursor   int
	now      func() time.Time
	lastSync time.Time
	expiryAt time.Time
	width    int
	height   int
	quitting bool
}

type dashboardModel struct {
	s *dashState
}

type dashOption func(*dashState)

// withClock overrides time.Now for toast expiry and the header clock.
func withClock(now func() time.Time) dashOption {
	return func(s *dashState) { s.now = now }
}

func newDashboardModel(ctx context.Context, app *App, snap *domain.Snapshot, opts ...dashOption) (dashboardModel, error) {
	s := &dashState{
		app:    app,
		ctx:    ctx,
		snap:   snap,
		status: &a11y.StatusLine{},
		board:  newPanelBoard(),
		keys:   newDashKeyMap(),
		help:   help.New(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.notifier = notify.New(app.Config.ToastDuration, notify.WithClock(s.now))
	s.nav = nav.New(pageIDs(), s.status)
	for _, p := range dashboardPages {
		if p.Tabs == nil {
			continue
		}
		if err := s.nav.AddTabGroup(p.Tabs.Container, p.Tabs.Tabs); err != nil {
			return dashboardModel{}, fmt.Errorf("tab group %s: %w", p.Tabs.Container, err)
		}
	}
	s.nav.Subscribe(func(ch nav.Change) {
		if ch.Kind == nav.PageChanged {
			s.cursor = 0
		}
		s.viewport.GotoTop()
	})

	reg, err := action.NewCatalog(snap, app.settings()).Registry()
	if err != nil {
		return dashboardModel{}, err
	}
	s.board.onClose = s.closeModal
	s.dispatch = action.NewDispatcher(reg, action.Deps{
		Notifier:  s.notifier,
		Announcer: s.status,
		Nav:       s.nav,
		View:      s.board,
		Observer:  app.Observer,
		Logger:    app.logger(),
	})

	s.spinner = spinner.New()
	s.spinner.Spinner = spinner.Dot
	s.spinner.Style = formatter.StyleHeader

	s.viewport = viewport.New(0, 0)
	s.viewport.KeyMap = bodyViewportKeyMap()
	s.viewport.MouseWheelEnabled = true

	s.lastSync = s.now()
	return dashboardModel{s: s}, nil
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m dashboardModel) Init() tea.Cmd {
	return m.s.syncTick()
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := m.s
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		s.viewport.Width = msg.Width
		s.help.Width = msg.Width

	case tea.KeyMsg:
		cmd = s.handleKey(msg)

	case tea.MouseMsg:
		s.viewport, cmd = s.viewport.Update(msg)

	case ticketSettledMsg:
		s.dispatch.Apply(msg.ticket)

	case runActionMsg:
		cmd, _ = s.dispatchAction(msg.name, msg.input)

	case toastExpireMsg:
		s.expiryAt = time.Time{}
		s.notifier.Expire(s.now())

	case syncTickMsg:
		s.lastSync = s.now()
		cmd = s.syncTick()

	case spinner.TickMsg:
		if _, shown := s.notifier.Overlay(); shown {
			s.spinner, cmd = s.spinner.Update(msg)
		}

	default:
		switch {
		case s.wizard != nil:
			cmd = s.updateWizard(msg)
		case s.modal != nil:
			cmd = s.modal.updateInput(msg)
		}
	}

	if s.quitting {
		return m, cmd
	}
	return m, tea.Batch(cmd, s.scheduleExpiry())
}

func (s *dashState) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := s.keys
	if key.Matches(msg, k.ForceQ) {
		return s.quit()
	}
	// The overlay blocks the page until its task settles.
	if _, shown := s.notifier.Overlay(); shown {
		if key.Matches(msg, k.Quit) {
			return s.quit()
		}
		return nil
	}
	if s.wizard != nil {
		return s.updateWizard(msg)
	}
	if s.modal != nil {
		return s.modalKey(msg)
	}

	switch {
	case key.Matches(msg, k.Quit):
		return s.quit()
	case key.Matches(msg, k.Page):
		idx := int(msg.String()[0] - '1')
		s.nav.SwitchPage(dashboardPages[idx].ID)
	case key.Matches(msg, k.NextPage):
		s.cyclePage(1)
	case key.Matches(msg, k.PrevPage):
		s.cyclePage(-1)
	case key.Matches(msg, k.TabLeft):
		s.moveTab(a11y.KeyLeft)
	case key.Matches(msg, k.TabRight):
		s.moveTab(a11y.KeyRight)
	case key.Matches(msg, k.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, k.Down):
		if s.cursor < len(s.activePage().Actions)-1 {
			s.cursor++
		}
	case key.Matches(msg, k.Activate):
		return s.activate()
	case key.Matches(msg, k.Dismiss):
		if ts := s.notifier.Active(); len(ts) > 0 {
			s.notifier.Dismiss(ts[len(ts)-1].ID)
		}
	case isBodyScrollKey(s.viewport.KeyMap, msg):
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (s *dashState) quit() tea.Cmd {
	s.quitting = true
	s.dispatch.Runner().Shutdown()
	return tea.Quit
}

func (s *dashState) activePage() pageSpec {
	p, _ := pageByID(s.nav.ActivePage())
	return p
}

func (s *dashState) cyclePage(step int) {
	ids := pageIDs()
	cur := 0
	for i, id := range ids {
		if id == s.nav.ActivePage() {
			cur = i
		}
	}
	s.nav.SwitchPage(ids[(cur+step+len(ids))%len(ids)])
}

func (s *dashState) moveTab(k a11y.Key) {
	if g := s.activePage().Tabs; g != nil {
		s.nav.MoveTab(g.Container, k)
	}
}

func (s *dashState) fieldValue(id string) string {
	v, _ := s.board.Field(id)
	return v
}

// activate runs the highlighted action, first collecting its input in a
// dialog or picker when it takes any.
func (s *dashState) activate() tea.Cmd {
	p := s.activePage()
	if s.cursor >= len(p.Actions) {
		return nil
	}
	name := p.Actions[s.cursor]
	if ctrl, ok := actionControls[name]; ok && !s.board.Enabled(ctrl) {
		return nil
	}
	if spec, ok := modalSpecs[name]; ok {
		return s.openModal(spec)
	}
	if build, ok := selectWizards[name]; ok {
		return s.openWizard(build(s.fieldValue))
	}
	cmd, _ := s.dispatchAction(name, nil)
	return cmd
}

// dispatchAction starts name and reports whether it was accepted. Delayed
// actions return a command that waits for the task and hands the ticket
// back to Update, where the outcome is applied.
func (s *dashState) dispatchAction(name string, in action.Input) (tea.Cmd, bool) {
	t, err := s.dispatch.Dispatch(s.ctx, name, in)
	if err != nil {
		var ce *action.ConfirmationError
		switch {
		case errors.As(err, &ce):
			return s.openWizard(wizardConfirm(name, in, ce.Prompt)), false
		case errors.Is(err, action.ErrInvalidInput):
			// The dispatcher already raised the warning toast.
		default:
			s.notifier.Notify(err.Error(), notify.Error, 0)
		}
		return nil, false
	}
	if t.Style == action.Instant {
		return nil, true
	}
	cmds := []tea.Cmd{waitTicket(t)}
	if t.Style == action.Blocking {
		cmds = append(cmds, s.spinner.Tick)
	}
	return tea.Batch(cmds...), true
}

func waitTicket(t *action.Ticket) tea.Cmd {
	return func() tea.Msg {
		<-t.Done()
		return ticketSettledMsg{ticket: t}
	}
}

// ── dialogs ──────────────────────────────────────────────────────────────────

func (s *dashState) openModal(spec modalSpec) tea.Cmd {
	s.modals.Open(spec.ID)
	s.wizard = nil
	s.modal = newModalForm(spec, s.board.Field)
	return textinput.Blink
}

// closeModal closes id if it is the open dialog. Outcomes reach it through
// the panel board.
func (s *dashState) closeModal(id string) {
	if !s.modals.Close(id) {
		return
	}
	if s.modal != nil && s.modal.spec.ID == id {
		s.modal = nil
	}
}

func (s *dashState) modalKey(msg tea.KeyMsg) tea.Cmd {
	f := s.modal
	switch msg.Type {
	case tea.KeyEsc:
		if _, ok := s.modals.Escape(); ok {
			s.modal = nil
		}
		return nil
	case tea.KeyTab:
		return f.cycle(false)
	case tea.KeyShiftTab:
		return f.cycle(true)
	case tea.KeyEnter:
		if f.focus == focusCancel {
			s.closeModal(f.spec.ID)
			return nil
		}
		return s.submitModal(f)
	}
	return f.updateInput(msg)
}

func (s *dashState) submitModal(f *modalForm) tea.Cmd {
	in := f.values()
	for k, v := range in {
		s.board.SetField(k, v)
	}
	cmd, ok := s.dispatchAction(f.spec.Action, in)
	if ok && f.spec.CloseOnDispatch {
		s.closeModal(f.spec.ID)
	}
	return cmd
}

func (s *dashState) openWizard(w *wizardForm) tea.Cmd {
	s.wizard = w
	return w.form.Init()
}

func (s *dashState) updateWizard(msg tea.Msg) tea.Cmd {
	w := s.wizard
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		s.wizard = nil
		return nil
	}

	form, cmd := w.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.form = f
	}

	switch w.form.State {
	case huh.StateCompleted:
		s.wizard = nil
		return tea.Batch(cmd, w.done())
	case huh.StateAborted:
		s.wizard = nil
	}
	return cmd
}

// ── timers ───────────────────────────────────────────────────────────────────

func (s *dashState) syncTick() tea.Cmd {
	if s.app.Config.SyncInterval <= 0 {
		return nil
	}
	return tea.Tick(s.app.Config.SyncInterval, func(time.Time) tea.Msg { return syncTickMsg{} })
}

// scheduleExpiry arms one timer for the earliest toast expiry.
func (s *dashState) scheduleExpiry() tea.Cmd {
	at, ok := s.notifier.NextExpiry()
	if !ok || at.Equal(s.expiryAt) {
		return nil
	}
	s.expiryAt = at
	return tea.Tick(max(at.Sub(s.now()), 0), func(time.Time) tea.Msg { return toastExpireMsg{} })
}

// ── view ─────────────────────────────────────────────────────────────────────

func (m dashboardModel) View() string {
	s := m.s
	if s.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(s.headerView())
	b.WriteString("\n")
	b.WriteString(s.pageBar())
	b.WriteString("\n")
	page := s.activePage()
	if g := page.Tabs; g != nil {
		b.WriteString(s.tabBar(g))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch msg, shown := s.notifier.Overlay(); {
	case shown:
		b.WriteString(formatter.RenderBox("", s.spinner.View()+" "+msg))
	case s.wizard != nil:
		b.WriteString(s.wizard.View())
	case s.modal != nil:
		b.WriteString(s.modal.View())
	default:
		b.WriteString(s.bodyView(page))
		b.WriteString("\n")
		b.WriteString(s.actionList(page))
	}
	b.WriteString("\n")

	for _, t := range s.notifier.Active() {
		b.WriteString(formatter.RenderToast(t))
		b.WriteString("\n")
	}
	if msg := s.status.Last(); msg != "" {
		b.WriteString(formatter.Dim("🔊 " + msg))
		b.WriteString("\n")
	}
	b.WriteString(s.help.ShortHelpView(s.keys.ShortHelp()))
	return b.String()
}

func (s *dashState) headerView() string {
	title := formatter.StyleHeader.Render("🎓 ComplyHub")
	sync := formatter.Dim("Last sync: " + s.lastSync.Format(web.SyncTimeFormat))
	return title + "  " + sync
}

func (s *dashState) pageBar() string {
	active := s.nav.ActivePage()
	items := make([]string, len(dashboardPages))
	for i, p := range dashboardPages {
		label := fmt.Sprintf("%d %s", i+1, p.Title)
		if p.ID == active {
			items[i] = formatter.StyleHeader.Render("[" + label + "]")
		} else {
			items[i] = formatter.Dim(label)
		}
	}
	return strings.Join(items, "  ")
}

func (s *dashState) tabBar(g *tabGroupSpec) string {
	active, _ := s.nav.ActiveTab(g.Container)
	items := make([]string, len(g.Tabs))
	for i, t := range g.Tabs {
		if t == active {
			items[i] = formatter.StyleGreen.Underline(true).Render(g.Titles[i])
		} else {
			items[i] = formatter.Dim(g.Titles[i])
		}
	}
	return "  " + strings.Join(items, formatter.Dim(" │ "))
}

func (s *dashState) bodyView(page pageSpec) string {
	tab := ""
	if g := page.Tabs; g != nil {
		tab, _ = s.nav.ActiveTab(g.Container)
	}
	body := s.pageBody(page, tab)
	if s.height <= 0 {
		return body
	}
	s.viewport.Height = max(s.height-lipgloss.Height(s.actionList(page))-8, 3)
	s.viewport.SetContent(body)
	return s.viewport.View()
}

func (s *dashState) actionList(page pageSpec) string {
	var b strings.Builder
	b.WriteString(formatter.Header("Actions"))
	b.WriteString("\n")
	for i, name := range page.Actions {
		cursor := "  "
		if i == s.cursor {
			cursor = formatter.StyleHeader.Render("▸ ")
		}
		label := name
		if ctrl, ok := actionControls[name]; ok && !s.board.Enabled(ctrl) {
			label = formatter.Dim(name + " (disabled)")
		} else if i == s.cursor {
			label = formatter.Bold(name)
		}
		b.WriteString(cursor + label + "\n")
	}
	return b.String()
}
