package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"agenda/internal/config"
	"agenda/internal/controller"
	"agenda/internal/task"
	"agenda/internal/views"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch {
	case m.form != nil:
		b.WriteString(m.renderForm())
	case m.screen == screenCalendar:
		b.WriteString(m.renderCalendar())
	case m.screen == screenProfile:
		b.WriteString(m.renderProfile())
	case m.screen == screenDetail:
		b.WriteString(m.renderDetail())
	default:
		b.WriteString(m.renderHome())
	}

	b.WriteString("\n---\n")
	if m.status != "" {
		b.WriteString(m.styles.status.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.muted.Render(renderHelp(m.screen, m.form != nil, m.cfg.Keys)))
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := []screen{screenHome, screenCalendar, screenProfile}
	parts := make([]string, 0, len(tabs)+1)
	for _, s := range tabs {
		if s == m.screen {
			parts = append(parts, m.styles.header.Render("["+s.String()+"]"))
		} else {
			parts = append(parts, m.styles.muted.Render(s.String()))
		}
	}
	if m.screen == screenAdd || m.screen == screenDetail {
		parts = append(parts, m.styles.header.Render("["+m.screen.String()+"]"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderHome() string {
	state := m.home.State()
	if state.Loading {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s  filter:%s  %d%% done\n\n",
		state.Selected.Weekday().String()[:3], state.Selected, state.Filter, state.Progress))
	if len(state.Visible) == 0 {
		b.WriteString(fmt.Sprintf("No tasks. Press '%s' to add one.", m.cfg.Keys.Add))
		return b.String()
	}
	b.WriteString(m.renderTaskList(state.Visible, true))
	return b.String()
}

func (m Model) renderTaskList(tasks []task.Task, showCursor bool) string {
	var b strings.Builder
	cur := clampCursor(m.cursor, len(tasks))
	for i, t := range tasks {
		cursor := " "
		if showCursor && i == cur {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %s %s", cursor, checkbox(t.Completed), t.Title)
		if t.Due != nil {
			line += " " + m.styles.muted.Render(t.Due.In(m.location()).Format("15:04"))
		}
		if t.Category != nil {
			line += " " + m.styles.muted.Render("#"+*t.Category)
		}
		switch {
		case t.Completed:
			line = m.styles.done.Render(line)
		case t.Priority == task.PriorityHigh:
			line = m.styles.high.Render(line)
		case showCursor && i == cur:
			line = m.styles.selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderCalendar() string {
	state := m.cal.State()
	if state.Loading {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(renderMonth(state.Month, state.Selected, state.Today, state.Markers, m.styles))
	b.WriteString("\n")
	b.WriteString(m.styles.header.Render(state.Selected.String()))
	b.WriteString("\n")
	if len(state.Agenda) == 0 {
		b.WriteString(m.styles.muted.Render("Nothing due"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList(state.Agenda, true))
	}
	if len(state.Undated) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.header.Render("No date"))
		b.WriteString("\n")
		b.WriteString(m.renderTaskList(state.Undated, false))
	}
	return b.String()
}

// renderMonth draws a Sunday-first month grid. Days with tasks carry a dot.
func renderMonth(ym views.YearMonth, selected, today views.Date, markers views.DateSet, st styles) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %d\n", ym.Month, ym.Year))
	b.WriteString("Su  Mo  Tu  We  Th  Fr  Sa\n")

	first := ym.First()
	col := int(first.Weekday())
	b.WriteString(strings.Repeat("    ", col))
	for day := 1; day <= ym.Days(); day++ {
		d := views.Date{Year: ym.Year, Month: ym.Month, Day: day}
		cell := fmt.Sprintf("%2d", day)
		switch {
		case d == selected:
			cell = st.selected.Render(cell)
		case d == today:
			cell = st.today.Render(cell)
		}
		mark := " "
		if markers.Has(d) {
			mark = st.marker.Render("•")
		}
		b.WriteString(cell + mark)
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		} else {
			b.WriteString(" ")
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderProfile() string {
	state := m.profile.State()
	if state.Loading {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Tasks     : %d\n", state.Total))
	b.WriteString(fmt.Sprintf("Completed : %d (%d%%)\n", state.Completed, state.Percent))
	b.WriteString("\n")
	b.WriteString(m.styles.header.Render("By category"))
	b.WriteString("\n")
	cats := make([]string, 0, len(state.ByCategory))
	for c := range state.ByCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		b.WriteString(fmt.Sprintf("  %-14s %d\n", c, state.ByCategory[c]))
	}
	if len(cats) == 0 {
		b.WriteString(m.styles.muted.Render("  (none)"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.header.Render(fmt.Sprintf("Last %d days", len(state.Recent))))
	b.WriteString("\n")
	for i, n := range state.Recent {
		d := state.RecentFrom.AddDays(i)
		b.WriteString(fmt.Sprintf("  %s %s %s\n", d, strings.Repeat("▇", n), m.styles.muted.Render(fmt.Sprint(n))))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Dark mode     : %s\n", onOff(state.Theme.DarkMode)))
	b.WriteString(fmt.Sprintf("Dynamic color : %s\n", onOff(state.Theme.DynamicColor)))
	if state.LastExportPath != "" {
		b.WriteString(fmt.Sprintf("Last export   : %s\n", state.LastExportPath))
	}
	return b.String()
}

func (m Model) renderDetail() string {
	state := m.detail.State()
	switch state.Status {
	case controller.StatusLoading:
		return "Loading..."
	case controller.StatusNotFound:
		return "Task not found"
	}
	if state.Task == nil {
		return "No task selected"
	}
	t := *state.Task
	var b strings.Builder
	b.WriteString(m.styles.header.Render(t.Title))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Status      : %s\n", humanDone(t.Completed)))
	b.WriteString(fmt.Sprintf("Description : %s\n", emptyPlaceholder(deref(t.Description))))
	b.WriteString(fmt.Sprintf("Due         : %s\n", m.formatDue(t.Due)))
	b.WriteString(fmt.Sprintf("Category    : %s\n", emptyPlaceholder(deref(t.Category))))
	b.WriteString(fmt.Sprintf("Priority    : %s\n", t.Priority))
	return b.String()
}

func (m Model) renderForm() string {
	var b strings.Builder
	for i, name := range formFields(m.form.kind) {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := m.form.values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-26s : %s\n", prefix, name, val))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

func renderHelp(s screen, editing bool, k config.Keymap) string {
	if editing {
		return fmt.Sprintf("tab/shift+tab move • %s next/save • %s cancel", k.Confirm, k.Cancel)
	}
	switch s {
	case screenCalendar:
		return fmt.Sprintf("%s/%s day • %s/%s month • %s/%s move • %s today • %s add • %s open • %s next • %s quit",
			k.PrevDay, k.NextDay, k.PrevMonth, k.NextMonth, k.Up, k.Down, k.Today, k.Add, k.Detail, k.NextScreen, k.Quit)
	case screenProfile:
		return fmt.Sprintf("%s dark mode • %s dynamic color • %s next • %s quit",
			k.DarkMode, k.DynamicColor, k.NextScreen, k.Quit)
	case screenDetail:
		return fmt.Sprintf("%s edit • %s toggle • %s delete • %s back",
			k.Edit, k.Toggle, k.Delete, k.Cancel)
	default:
		return fmt.Sprintf("%s/%s move • %s/%s day • %s add • %s open • %s toggle • %s delete • %s undo • %s filter • %s next • %s quit",
			k.Up, k.Down, k.PrevDay, k.NextDay, k.Add, k.Detail, k.Toggle, k.Delete, k.Undo, k.Filter, k.NextScreen, k.Quit)
	}
}

func (m Model) location() *time.Location {
	if m.opts.Location != nil {
		return m.opts.Location
	}
	return time.Local
}

func (m Model) formatDue(due *time.Time) string {
	if due == nil {
		return "(none)"
	}
	return due.In(m.location()).Format("2006-01-02 15:04")
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}
