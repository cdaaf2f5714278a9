package controller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"agenda/internal/task"
	"agenda/internal/views"
)

// HomeState is what the home list renders.
type HomeState struct {
	Loading  bool
	All      []task.Task
	Visible  []task.Task
	Selected views.Date
	Filter   views.Filter
	// Progress is the completion percentage of Visible.
	Progress int
	// Pending holds tasks swiped away and waiting out the undo window.
	Pending []task.Task
}

// Home drives the main task list.
type Home struct {
	repo task.Repository
	opts Options
	feed feed
	ev   events
	ctx  context.Context

	mu       sync.Mutex
	selected views.Date
	filter   views.Filter
	pending  map[int64]*pendingRemoval
	closed   bool
}

type pendingRemoval struct {
	task  task.Task
	timer *time.Timer
}

// NewHome subscribes to the repository for the lifetime of ctx or until Close.
func NewHome(ctx context.Context, repo task.Repository, filter views.Filter, opts Options) *Home {
	opts = opts.withDefaults()
	h := &Home{
		repo:     repo,
		opts:     opts,
		ev:       newEvents("home"),
		ctx:      ctx,
		selected: opts.today(),
		filter:   filter,
		pending:  make(map[int64]*pendingRemoval),
	}
	h.feed.start(ctx, repo)
	return h
}

// Changes signals that the task collection changed. Signals coalesce.
func (h *Home) Changes() <-chan struct{} { return h.feed.changed }

// Events delivers EventDeleted and EventError from swipe removals.
func (h *Home) Events() <-chan Event { return h.ev.ch }

func (h *Home) State() HomeState {
	all, loaded := h.feed.snapshot()

	h.mu.Lock()
	selected, filter := h.selected, h.filter
	hidden := make(map[int64]bool, len(h.pending))
	pending := make([]task.Task, 0, len(h.pending))
	for id, p := range h.pending {
		hidden[id] = true
		pending = append(pending, p.task)
	}
	h.mu.Unlock()

	shown := all
	if len(hidden) > 0 {
		shown = make([]task.Task, 0, len(all))
		for _, t := range all {
			if !hidden[t.ID] {
				shown = append(shown, t)
			}
		}
	}
	visible := views.Visible(shown, selected, filter, h.opts.Location)
	return HomeState{
		Loading:  !loaded,
		All:      all,
		Visible:  visible,
		Selected: selected,
		Filter:   filter,
		Progress: views.CompletionPercent(visible),
		Pending:  pending,
	}
}

func (h *Home) SetFilter(f views.Filter) {
	h.mu.Lock()
	h.filter = f
	h.mu.Unlock()
	h.feed.notify()
}

func (h *Home) SelectDate(d views.Date) {
	h.mu.Lock()
	h.selected = d
	h.mu.Unlock()
	h.feed.notify()
}

// ShiftDate moves the selected day by n days.
func (h *Home) ShiftDate(n int) {
	h.mu.Lock()
	h.selected = h.selected.AddDays(n)
	h.mu.Unlock()
	h.feed.notify()
}

// Today selects the current day.
func (h *Home) Today() {
	h.SelectDate(h.opts.today())
}

// ToggleComplete flips t's completion flag. Failures are logged and
// otherwise ignored.
func (h *Home) ToggleComplete(ctx context.Context, t task.Task) {
	updated := t.WithCompleted(!t.Completed)
	if err := h.repo.UpdateTask(context.WithoutCancel(ctx), updated); err != nil {
		log.Printf("[controller] home: toggle task %d: %v", t.ID, err)
	}
}

// Delete removes t immediately.
func (h *Home) Delete(ctx context.Context, t task.Task) error {
	if err := h.repo.DeleteTask(context.WithoutCancel(ctx), t); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// RemoveWithUndo hides t at once and deletes it after the undo grace period
// unless Undo is called first.
func (h *Home) RemoveWithUndo(t task.Task) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	if p, ok := h.pending[t.ID]; ok {
		p.timer.Stop()
	}
	p := &pendingRemoval{task: t}
	p.timer = time.AfterFunc(h.opts.UndoGrace, func() { h.commitRemoval(p) })
	h.pending[t.ID] = p
	h.mu.Unlock()
	h.feed.notify()
}

// Undo cancels a pending removal. It reports false when the grace period
// has already lapsed or nothing is pending for id.
func (h *Home) Undo(id int64) bool {
	h.mu.Lock()
	p, ok := h.pending[id]
	if ok && p.timer.Stop() {
		delete(h.pending, id)
	} else {
		ok = false
	}
	h.mu.Unlock()
	if ok {
		h.feed.notify()
	}
	return ok
}

func (h *Home) commitRemoval(p *pendingRemoval) {
	h.mu.Lock()
	if h.pending[p.task.ID] != p {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	err := h.repo.DeleteTask(context.WithoutCancel(h.ctx), p.task)

	h.mu.Lock()
	if h.pending[p.task.ID] == p {
		delete(h.pending, p.task.ID)
	}
	h.mu.Unlock()

	if err != nil {
		log.Printf("[controller] home: delete task %d: %v", p.task.ID, err)
		h.ev.emit(Event{Kind: EventError, TaskID: p.task.ID, Err: fmt.Errorf("delete failed: %w", err)})
	} else {
		h.ev.emit(Event{Kind: EventDeleted, TaskID: p.task.ID})
	}
	h.feed.notify()
}

// Close stops the subscription and drops pending removals; their rows stay.
func (h *Home) Close() {
	h.mu.Lock()
	h.closed = true
	for id, p := range h.pending {
		p.timer.Stop()
		delete(h.pending, id)
	}
	h.mu.Unlock()
	h.feed.stop()
}
