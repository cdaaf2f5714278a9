package controller

import (
	"context"
	"fmt"
	"log"
	"sync"

	"agenda/internal/task"
	"agenda/internal/views"
)

// DetailState is what the detail screen renders.
type DetailState struct {
	Task          *task.Task
	Draft         Draft
	Status        Status
	ConfirmDelete bool
	Err           error
}

// Editing reports whether the edit form is open.
func (s DetailState) Editing() bool {
	return s.Status == StatusEditing || s.Status == StatusSaving
}

// Detail drives the view/edit screen of a single task.
type Detail struct {
	repo task.Repository
	opts Options
	ev   events

	mu      sync.Mutex
	task    *task.Task
	draft   Draft
	status  Status
	confirm bool
	err     error
}

func NewDetail(repo task.Repository, opts Options) *Detail {
	return &Detail{
		repo:   repo,
		opts:   opts.withDefaults(),
		ev:     newEvents("detail"),
		draft:  NewDraft(),
		status: StatusLoading,
	}
}

// Events delivers EventSaved, EventDeleted, EventNotFound and EventError.
func (c *Detail) Events() <-chan Event { return c.ev.ch }

func (c *Detail) State() DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := DetailState{Draft: c.draft, Status: c.status, ConfirmDelete: c.confirm, Err: c.err}
	if c.task != nil {
		t := *c.task
		s.Task = &t
	}
	return s
}

// Load fetches the task. An unknown id ends in StatusNotFound and emits
// EventNotFound; the screen never reaches editing.
func (c *Detail) Load(ctx context.Context, id int64) error {
	c.mu.Lock()
	c.status = StatusLoading
	c.mu.Unlock()

	t, err := c.repo.GetTask(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case err != nil:
		c.status = StatusIdle
		c.err = fmt.Errorf("load failed: %w", err)
		c.ev.emit(Event{Kind: EventError, TaskID: id, Err: c.err})
		return c.err
	case t == nil:
		c.task = nil
		c.status = StatusNotFound
		c.err = fmt.Errorf("task %d not found", id)
		c.ev.emit(Event{Kind: EventNotFound, TaskID: id})
		return nil
	}
	c.task = t
	c.draft = DraftOf(*t, c.opts.Location)
	c.status = StatusIdle
	c.err = nil
	return nil
}

// BeginEdit opens the edit form with a fresh buffer from the loaded task.
func (c *Detail) BeginEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.task == nil {
		return ErrNoTask
	}
	if c.status == StatusSaving {
		return ErrBusy
	}
	c.draft = DraftOf(*c.task, c.opts.Location)
	c.status = StatusEditing
	c.err = nil
	return nil
}

// CancelEdit closes the edit form and drops buffered changes.
func (c *Detail) CancelEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusSaving {
		return ErrBusy
	}
	if c.task != nil {
		c.draft = DraftOf(*c.task, c.opts.Location)
		c.status = StatusIdle
	}
	c.err = nil
	return nil
}

func (c *Detail) SetTitle(s string) error       { return c.edit(func(d *Draft) { d.Title = s }) }
func (c *Detail) SetDescription(s string) error { return c.edit(func(d *Draft) { d.Description = s }) }
func (c *Detail) SetDueDate(v *views.Date) error {
	return c.edit(func(d *Draft) { d.DueDate = v })
}
func (c *Detail) SetDueTime(v *views.TimeOfDay) error {
	return c.edit(func(d *Draft) { d.DueTime = v })
}
func (c *Detail) SetCategory(v *string) error       { return c.edit(func(d *Draft) { d.Category = v }) }
func (c *Detail) SetPriority(p task.Priority) error { return c.edit(func(d *Draft) { d.Priority = p }) }

func (c *Detail) edit(fn func(*Draft)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.task == nil:
		return ErrNoTask
	case c.status == StatusSaving:
		return ErrBusy
	}
	fn(&c.draft)
	c.status = StatusEditing
	c.err = nil
	return nil
}

// Save writes the buffer over the loaded task and emits EventSaved.
// On failure it emits EventError and keeps the buffer for a retry.
func (c *Detail) Save(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.task == nil:
		c.mu.Unlock()
		return ErrNoTask
	case c.status == StatusSaving:
		c.mu.Unlock()
		return ErrBusy
	case !c.draft.Valid():
		c.err = ErrTitleRequired
		c.mu.Unlock()
		return ErrTitleRequired
	}
	updated := c.draft.apply(*c.task, c.opts.Location)
	c.status = StatusSaving
	c.mu.Unlock()

	err := c.repo.UpdateTask(context.WithoutCancel(ctx), updated)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = StatusEditing
		c.err = fmt.Errorf("save failed: %w", err)
		c.ev.emit(Event{Kind: EventError, TaskID: updated.ID, Err: c.err})
		return c.err
	}
	c.task = &updated
	c.draft = DraftOf(updated, c.opts.Location)
	c.status = StatusIdle
	c.err = nil
	c.ev.emit(Event{Kind: EventSaved, TaskID: updated.ID})
	return nil
}

// ToggleCompleted flips the completion flag of the loaded task and writes
// the whole record back. It is best-effort: a failed write is logged and
// the screen keeps showing the previous value. A concurrent Save may
// overwrite the result; the last write wins.
func (c *Detail) ToggleCompleted(ctx context.Context) {
	c.mu.Lock()
	if c.task == nil {
		c.mu.Unlock()
		return
	}
	updated := c.task.WithCompleted(!c.task.Completed)
	c.mu.Unlock()

	if err := c.repo.UpdateTask(context.WithoutCancel(ctx), updated); err != nil {
		log.Printf("[controller] detail: toggle task %d: %v", updated.ID, err)
		return
	}
	if err := c.refresh(ctx, updated.ID); err != nil {
		log.Printf("[controller] detail: reload task %d: %v", updated.ID, err)
	}
}

func (c *Detail) refresh(ctx context.Context, id int64) error {
	t, err := c.repo.GetTask(ctx, id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if t == nil {
		c.task = nil
		c.status = StatusNotFound
		c.ev.emit(Event{Kind: EventNotFound, TaskID: id})
		return nil
	}
	c.task = t
	if c.status != StatusEditing && c.status != StatusSaving {
		c.draft = DraftOf(*t, c.opts.Location)
	}
	return nil
}

// RequestDelete arms the confirmation gate for Delete.
func (c *Detail) RequestDelete() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.task == nil {
		return ErrNoTask
	}
	c.confirm = true
	return nil
}

// CancelDelete disarms the confirmation gate.
func (c *Detail) CancelDelete() {
	c.mu.Lock()
	c.confirm = false
	c.mu.Unlock()
}

// Delete removes the loaded task once RequestDelete has been called.
// Without confirmation the repository is not touched. On failure
// EventError is emitted and the state is left as it was.
func (c *Detail) Delete(ctx context.Context) error {
	c.mu.Lock()
	if c.task == nil {
		c.mu.Unlock()
		return ErrNoTask
	}
	if !c.confirm {
		c.mu.Unlock()
		return ErrNotConfirmed
	}
	target := *c.task
	c.mu.Unlock()

	if err := c.repo.DeleteTask(context.WithoutCancel(ctx), target); err != nil {
		err = fmt.Errorf("delete failed: %w", err)
		c.ev.emit(Event{Kind: EventError, TaskID: target.ID, Err: err})
		return err
	}

	c.mu.Lock()
	c.confirm = false
	c.mu.Unlock()
	c.ev.emit(Event{Kind: EventDeleted, TaskID: target.ID})
	return nil
}
