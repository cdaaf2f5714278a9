package controller

import (
	"context"
	"fmt"
	"sync"

	"agenda/internal/task"
	"agenda/internal/views"
)

// AddState is what the create screen renders.
type AddState struct {
	Draft  Draft
	Status Status
	Err    error
}

// Add drives the create-task screen.
type Add struct {
	repo task.Repository
	opts Options
	ev   events

	mu     sync.Mutex
	draft  Draft
	status Status
	err    error
}

func NewAdd(repo task.Repository, opts Options) *Add {
	return &Add{
		repo:  repo,
		opts:  opts.withDefaults(),
		ev:    newEvents("add"),
		draft: NewDraft(),
	}
}

// Events delivers EventSaved with the new task id after each successful save.
func (a *Add) Events() <-chan Event { return a.ev.ch }

func (a *Add) State() AddState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AddState{Draft: a.draft, Status: a.status, Err: a.err}
}

func (a *Add) SetTitle(s string) error       { return a.edit(func(d *Draft) { d.Title = s }) }
func (a *Add) SetDescription(s string) error { return a.edit(func(d *Draft) { d.Description = s }) }
func (a *Add) SetDueDate(v *views.Date) error {
	return a.edit(func(d *Draft) { d.DueDate = v })
}
func (a *Add) SetDueTime(v *views.TimeOfDay) error {
	return a.edit(func(d *Draft) { d.DueTime = v })
}
func (a *Add) SetCategory(v *string) error       { return a.edit(func(d *Draft) { d.Category = v }) }
func (a *Add) SetPriority(p task.Priority) error { return a.edit(func(d *Draft) { d.Priority = p }) }
func (a *Add) SetReminder(on bool) error         { return a.edit(func(d *Draft) { d.Reminder = on }) }

// Reset discards the buffer.
func (a *Add) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == StatusSaving {
		return ErrBusy
	}
	a.draft = NewDraft()
	a.status = StatusIdle
	a.err = nil
	return nil
}

func (a *Add) edit(fn func(*Draft)) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == StatusSaving {
		return ErrBusy
	}
	fn(&a.draft)
	a.status = StatusEditing
	a.err = nil
	return nil
}

// Save persists the buffer as a new task. A blank title fails with
// ErrTitleRequired before the repository is touched. On success the buffer
// is cleared and EventSaved is emitted; on failure the buffer is kept so the
// save can be retried.
func (a *Add) Save(ctx context.Context) (int64, error) {
	a.mu.Lock()
	if a.status == StatusSaving {
		a.mu.Unlock()
		return 0, ErrBusy
	}
	if !a.draft.Valid() {
		a.err = ErrTitleRequired
		a.mu.Unlock()
		return 0, ErrTitleRequired
	}
	draft := a.draft
	a.status = StatusSaving
	a.mu.Unlock()

	t := draft.apply(task.New(""), a.opts.Location)
	id, err := a.repo.AddTask(context.WithoutCancel(ctx), t)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.status = StatusEditing
		a.err = fmt.Errorf("save failed: %w", err)
		return 0, a.err
	}
	a.draft = NewDraft()
	a.status = StatusIdle
	a.err = nil
	a.ev.emit(Event{Kind: EventSaved, TaskID: id})
	return id, nil
}
