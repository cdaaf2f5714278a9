package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"agenda/internal/config"
	"agenda/internal/controller"
	"agenda/internal/prefs"
	"agenda/internal/task"
	"agenda/internal/views"
)

type screen int

const (
	screenHome screen = iota
	screenCalendar
	screenProfile
	screenAdd
	screenDetail
)

func (s screen) String() string {
	switch s {
	case screenHome:
		return "Tasks"
	case screenCalendar:
		return "Calendar"
	case screenProfile:
		return "Profile"
	case screenAdd:
		return "New task"
	case screenDetail:
		return "Task"
	default:
		return ""
	}
}

type (
	changedMsg struct{ src screen }
	eventMsg   struct {
		src screen
		ev  controller.Event
	}
	themeMsg   struct{ theme prefs.Theme }
	savedMsg   struct{ err error }
	loadedMsg  struct{ err error }
	toggledMsg struct{}
)

type Model struct {
	ctx  context.Context
	cfg  config.Config
	opts controller.Options

	home    *controller.Home
	cal     *controller.Calendar
	profile *controller.Profile
	add     *controller.Add
	detail  *controller.Detail
	themes  <-chan prefs.Theme

	screen  screen
	back    screen
	cursor  int
	input   textinput.Model
	form    *formState
	status  string
	removed *task.Task
	styles  styles
}

func newModel(ctx context.Context, repo task.Repository, holder *prefs.Holder, cfg config.Config) Model {
	opts := controller.Options{RecentDays: cfg.RecentDays, UndoGrace: cfg.UndoGrace()}
	filter, err := views.ParseFilter(cfg.DefaultFilter)
	if err != nil {
		log.Printf("[ui] default_filter: %v; showing all tasks", err)
		filter = views.FilterAll
	}

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	return Model{
		ctx:     ctx,
		cfg:     cfg,
		opts:    opts,
		home:    controller.NewHome(ctx, repo, filter, opts),
		cal:     controller.NewCalendar(ctx, repo, opts),
		profile: controller.NewProfile(ctx, repo, holder, opts),
		add:     controller.NewAdd(repo, opts),
		detail:  controller.NewDetail(repo, opts),
		themes:  holder.Observe(ctx),
		screen:  screenHome,
		input:   ti,
		status:  fmt.Sprintf("Press '%s' to add, '%s' to switch screens.", cfg.Keys.Add, cfg.Keys.NextScreen),
		styles:  newStyles(holder.Theme()),
	}
}

func (m Model) close() {
	m.home.Close()
	m.cal.Close()
	m.profile.Close()
}

// Run drives the terminal UI until the user quits or ctx is cancelled.
func Run(ctx context.Context, repo task.Repository, holder *prefs.Holder, cfg config.Config, configPath string, firstLaunch bool) error {
	m := newModel(ctx, repo, holder, cfg)
	defer m.close()
	if firstLaunch {
		m.status = fmt.Sprintf("Created %s. %s", configPath, m.status)
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	g.Go(func() error {
		defer close(done)
		_, err := program.Run()
		return err
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			program.Quit()
		case <-done:
		}
		return nil
	})
	return g.Wait()
}

func waitChange(src screen, ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{src: src}
	}
}

func waitEvent(src screen, ch <-chan controller.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{src: src, ev: <-ch}
	}
}

func waitTheme(ch <-chan prefs.Theme) tea.Cmd {
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return themeMsg{theme: t}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitChange(screenHome, m.home.Changes()),
		waitChange(screenCalendar, m.cal.Changes()),
		waitChange(screenProfile, m.profile.Changes()),
		waitEvent(screenHome, m.home.Events()),
		waitEvent(screenAdd, m.add.Events()),
		waitEvent(screenDetail, m.detail.Events()),
		waitTheme(m.themes),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.cursor = clampCursor(m.cursor, m.listLen())
		return m, m.rewatch(msg.src)
	case eventMsg:
		m = m.handleEvent(msg)
		return m, waitEvent(msg.src, m.eventsOf(msg.src))
	case themeMsg:
		m.styles = newStyles(msg.theme)
		return m, waitTheme(m.themes)
	case savedMsg:
		if msg.err != nil {
			m.status = describeErr(msg.err)
		}
		return m, nil
	case loadedMsg:
		if msg.err != nil {
			m.status = describeErr(msg.err)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		switch m.screen {
		case screenCalendar:
			return m.updateCalendar(msg.String())
		case screenProfile:
			return m.updateProfile(msg.String())
		case screenDetail:
			return m.updateDetail(msg.String())
		default:
			return m.updateHome(msg.String())
		}
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) rewatch(src screen) tea.Cmd {
	switch src {
	case screenCalendar:
		return waitChange(src, m.cal.Changes())
	case screenProfile:
		return waitChange(src, m.profile.Changes())
	default:
		return waitChange(screenHome, m.home.Changes())
	}
}

func (m Model) eventsOf(src screen) <-chan controller.Event {
	switch src {
	case screenAdd:
		return m.add.Events()
	case screenDetail:
		return m.detail.Events()
	default:
		return m.home.Events()
	}
}

func (m Model) handleEvent(msg eventMsg) Model {
	ev := msg.ev
	switch msg.src {
	case screenAdd:
		if ev.Kind == controller.EventSaved {
			m.status = fmt.Sprintf("Added task #%d", ev.TaskID)
			m = m.closeForm()
			m.screen = m.back
		}
	case screenDetail:
		switch ev.Kind {
		case controller.EventSaved:
			m.status = "Task saved"
			m = m.closeForm()
		case controller.EventDeleted:
			m.status = "Deleted task"
			m.screen = m.back
		case controller.EventNotFound:
			m.status = fmt.Sprintf("Task #%d not found", ev.TaskID)
			m.screen = m.back
		}
	case screenHome:
		if ev.Kind == controller.EventDeleted {
			m.status = "Deleted task"
			if m.removed != nil && m.removed.ID == ev.TaskID {
				m.removed = nil
			}
		}
	}
	if ev.Kind == controller.EventError {
		m.status = describeErr(ev.Err)
	}
	return m
}

func (m Model) updateHome(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	visible := m.home.State().Visible
	switch key {
	case k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(visible))
	case k.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(visible))
	case k.PrevDay, "left":
		m.home.ShiftDate(-1)
	case k.NextDay, "right":
		m.home.ShiftDate(1)
	case k.Today:
		m.home.Today()
	case k.Filter:
		f := m.home.State().Filter.Next()
		m.home.SetFilter(f)
		m.status = "Filter: " + f.String()
	case k.Add:
		return m.openAdd(nil)
	case k.Toggle:
		if len(visible) == 0 {
			return m, nil
		}
		return m, m.toggleHome(visible[clampCursor(m.cursor, len(visible))])
	case k.Delete:
		if len(visible) == 0 {
			return m, nil
		}
		t := visible[clampCursor(m.cursor, len(visible))]
		m.home.RemoveWithUndo(t)
		m.removed = &t
		m.status = fmt.Sprintf("Removed %q. Press '%s' to undo.", t.Title, k.Undo)
	case k.Undo:
		if m.removed == nil {
			m.status = "Nothing to undo"
			return m, nil
		}
		if m.home.Undo(m.removed.ID) {
			m.status = fmt.Sprintf("Restored %q", m.removed.Title)
		} else {
			m.status = "Too late to undo"
		}
		m.removed = nil
	case k.Detail:
		if len(visible) == 0 {
			m.status = "No tasks"
			return m, nil
		}
		return m.openDetail(visible[clampCursor(m.cursor, len(visible))].ID)
	case k.NextScreen:
		return m.switchTo(screenCalendar), nil
	}
	return m, nil
}

func (m Model) updateCalendar(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	agenda := m.cal.State().Agenda
	switch key {
	case k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(agenda))
	case k.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(agenda))
	case k.PrevDay, "left":
		m.cal.ShiftDate(-1)
		m.cursor = 0
	case k.NextDay, "right":
		m.cal.ShiftDate(1)
		m.cursor = 0
	case k.PrevMonth:
		m.cal.PrevMonth()
	case k.NextMonth:
		m.cal.NextMonth()
	case k.Today:
		m.cal.SelectDate(m.cal.State().Today)
		m.cursor = 0
	case k.Add:
		selected := m.cal.State().Selected
		return m.openAdd(&selected)
	case k.Detail:
		if len(agenda) == 0 {
			m.status = "Nothing due on this day"
			return m, nil
		}
		return m.openDetail(agenda[clampCursor(m.cursor, len(agenda))].ID)
	case k.NextScreen:
		return m.switchTo(screenProfile), nil
	}
	return m, nil
}

func (m Model) updateProfile(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	theme := m.profile.State().Theme
	switch key {
	case k.Quit:
		return m, tea.Quit
	case k.DarkMode:
		if err := m.profile.SetDarkMode(!theme.DarkMode); err != nil {
			m.status = fmt.Sprintf("theme not saved: %v", err)
		}
	case k.DynamicColor:
		if err := m.profile.SetDynamicColor(!theme.DynamicColor); err != nil {
			m.status = fmt.Sprintf("theme not saved: %v", err)
		}
	case k.NextScreen:
		return m.switchTo(screenHome), nil
	}
	return m, nil
}

func (m Model) updateDetail(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	state := m.detail.State()
	if state.ConfirmDelete {
		switch key {
		case "y", "Y", k.Confirm:
			return m, m.deleteDetail()
		case "n", "N", k.Cancel:
			m.detail.CancelDelete()
			m.status = "Delete cancelled"
		}
		return m, nil
	}
	switch key {
	case k.Quit, k.Cancel:
		m.screen = m.back
	case k.Edit:
		if err := m.detail.BeginEdit(); err != nil {
			m.status = describeErr(err)
			return m, nil
		}
		return m.openForm(formEdit, m.detail.State().Draft), nil
	case k.Toggle:
		return m, m.toggleDetail()
	case k.Delete:
		if err := m.detail.RequestDelete(); err != nil {
			m.status = describeErr(err)
			return m, nil
		}
		if state.Task != nil {
			m.status = fmt.Sprintf("Delete %q? y/n", state.Task.Title)
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.cfg.Keys.Cancel, "esc":
		return m.cancelForm(), nil
	case "tab", "down":
		m.form.set(m.input.Value())
		m.form.move(1)
		return m.syncInput(), nil
	case "shift+tab", "up":
		m.form.set(m.input.Value())
		m.form.move(-1)
		return m.syncInput(), nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.set(m.input.Value())
		if !m.form.last() {
			m.form.move(1)
			return m.syncInput(), nil
		}
		return m.submitForm()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	var ed draftEditor = m.detail
	if m.form.kind == formAdd {
		ed = m.add
	}
	if err := m.form.apply(ed); err != nil {
		m.status = describeErr(err)
		return m, nil
	}
	ctx := m.ctx
	if m.form.kind == formAdd {
		add := m.add
		return m, func() tea.Msg {
			_, err := add.Save(ctx)
			return savedMsg{err: err}
		}
	}
	detail := m.detail
	return m, func() tea.Msg {
		return savedMsg{err: detail.Save(ctx)}
	}
}

func (m Model) openAdd(due *views.Date) (tea.Model, tea.Cmd) {
	if err := m.add.Reset(); err != nil {
		m.status = describeErr(err)
		return m, nil
	}
	if due != nil {
		_ = m.add.SetDueDate(due)
	}
	m.back = m.screen
	m.screen = screenAdd
	return m.openForm(formAdd, m.add.State().Draft), nil
}

func (m Model) openDetail(id int64) (tea.Model, tea.Cmd) {
	m.back = m.screen
	m.screen = screenDetail
	m.status = ""
	detail, ctx := m.detail, m.ctx
	return m, func() tea.Msg {
		return loadedMsg{err: detail.Load(ctx, id)}
	}
}

func (m Model) openForm(kind formKind, d controller.Draft) Model {
	m.form = newForm(kind, d)
	m.input.Focus()
	m = m.syncInput()
	m.status = m.formPrompt()
	return m
}

func (m Model) cancelForm() Model {
	kind := m.form.kind
	m = m.closeForm()
	if kind == formAdd {
		_ = m.add.Reset()
		m.screen = m.back
	} else {
		_ = m.detail.CancelEdit()
	}
	m.status = "Cancelled"
	return m
}

func (m Model) closeForm() Model {
	m.form = nil
	m.input.SetValue("")
	m.input.Blur()
	return m
}

func (m Model) syncInput() Model {
	m.input.SetValue(m.form.current())
	m.input.CursorEnd()
	m.input.Placeholder = m.form.label()
	m.status = m.formPrompt()
	return m
}

func (m Model) switchTo(s screen) Model {
	m.screen = s
	m.cursor = 0
	m.status = ""
	return m
}

func (m Model) formPrompt() string {
	if m.form == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		m.form.label(), m.form.index+1, len(m.form.values))
}

func (m Model) listLen() int {
	switch m.screen {
	case screenCalendar:
		return len(m.cal.State().Agenda)
	case screenHome:
		return len(m.home.State().Visible)
	default:
		return 0
	}
}

func describeErr(err error) string {
	switch {
	case errors.Is(err, controller.ErrTitleRequired):
		return "Title cannot be empty"
	case errors.Is(err, controller.ErrBusy):
		return "Still saving"
	case errors.Is(err, controller.ErrNotConfirmed):
		return "Delete not confirmed"
	default:
		return strings.TrimSpace(err.Error())
	}
}

func (m Model) toggleHome(t task.Task) tea.Cmd {
	home, ctx := m.home, m.ctx
	return func() tea.Msg {
		home.ToggleComplete(ctx, t)
		return toggledMsg{}
	}
}

func (m Model) toggleDetail() tea.Cmd {
	detail, ctx := m.detail, m.ctx
	return func() tea.Msg {
		detail.ToggleCompleted(ctx)
		return toggledMsg{}
	}
}

func (m Model) deleteDetail() tea.Cmd {
	detail, ctx := m.detail, m.ctx
	return func() tea.Msg {
		return savedMsg{err: detail.Delete(ctx)}
	}
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
