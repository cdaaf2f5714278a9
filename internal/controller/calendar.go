package controller

import (
	"context"
	"sync"

	"agenda/internal/task"
	"agenda/internal/views"
)

// CalendarState is what the calendar screen renders.
type CalendarState struct {
	Loading  bool
	Month    views.YearMonth
	Selected views.Date
	Today    views.Date
	// Agenda lists tasks due on Selected.
	Agenda []task.Task
	// Markers are the days of Month with something due.
	Markers views.DateSet
	// Undated is the backlog of open tasks without a due date.
	Undated []task.Task
}

// Calendar drives the month grid and the day agenda.
type Calendar struct {
	opts Options
	feed feed

	mu       sync.Mutex
	month    views.YearMonth
	selected views.Date
}

func NewCalendar(ctx context.Context, repo task.Repository, opts Options) *Calendar {
	opts = opts.withDefaults()
	today := opts.today()
	c := &Calendar{
		opts:     opts,
		month:    today.YearMonth(),
		selected: today,
	}
	c.feed.start(ctx, repo)
	return c
}

func (c *Calendar) Changes() <-chan struct{} { return c.feed.changed }

func (c *Calendar) State() CalendarState {
	tasks, loaded := c.feed.snapshot()

	c.mu.Lock()
	month, selected := c.month, c.selected
	c.mu.Unlock()

	return CalendarState{
		Loading:  !loaded,
		Month:    month,
		Selected: selected,
		Today:    c.opts.today(),
		Agenda:   views.Agenda(tasks, selected, c.opts.Location),
		Markers:  views.MonthMarkers(tasks, month, c.opts.Location),
		Undated:  views.Undated(tasks),
	}
}

// SelectDate picks a day and shows its month.
func (c *Calendar) SelectDate(d views.Date) {
	c.mu.Lock()
	c.selected = d
	c.month = d.YearMonth()
	c.mu.Unlock()
	c.feed.notify()
}

// ShiftDate moves the selected day by n days, following it across months.
func (c *Calendar) ShiftDate(n int) {
	c.mu.Lock()
	d := c.selected.AddDays(n)
	c.mu.Unlock()
	c.SelectDate(d)
}

func (c *Calendar) PrevMonth() { c.shiftMonth(views.YearMonth.Prev) }
func (c *Calendar) NextMonth() { c.shiftMonth(views.YearMonth.Next) }

func (c *Calendar) shiftMonth(step func(views.YearMonth) views.YearMonth) {
	c.mu.Lock()
	c.month = step(c.month)
	c.mu.Unlock()
	c.feed.notify()
}

func (c *Calendar) Close() { c.feed.stop() }
