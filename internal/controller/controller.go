// Package controller holds the per-screen state machines that sit between
// the task repository and the renderer. Controllers are the only writers of
// task mutations.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"agenda/internal/task"
	"agenda/internal/views"
)

var (
	// ErrTitleRequired rejects a save whose title is blank.
	ErrTitleRequired = errors.New("title required")
	// ErrBusy rejects edits and saves while a save is in flight.
	ErrBusy = errors.New("save in progress")
	// ErrNotConfirmed rejects a delete that was not confirmed first.
	ErrNotConfirmed = errors.New("delete not confirmed")
	// ErrNoTask is returned when an action needs a loaded task.
	ErrNoTask = errors.New("no task loaded")
)

// EventKind identifies a one-shot outcome.
type EventKind int

const (
	EventSaved EventKind = iota
	EventDeleted
	EventNotFound
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventSaved:
		return "saved"
	case EventDeleted:
		return "deleted"
	case EventNotFound:
		return "not-found"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a navigation-triggering outcome, consumed once.
type Event struct {
	Kind   EventKind
	TaskID int64
	Err    error
}

// Options configures clock, zone and tuning shared by every controller.
type Options struct {
	Location   *time.Location
	Now        func() time.Time
	RecentDays int
	UndoGrace  time.Duration
}

const (
	DefaultRecentDays = 7
	DefaultUndoGrace  = 4 * time.Second
)

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.RecentDays <= 0 {
		o.RecentDays = DefaultRecentDays
	}
	if o.UndoGrace <= 0 {
		o.UndoGrace = DefaultUndoGrace
	}
	return o
}

func (o Options) today() views.Date {
	return views.DateOf(o.Now(), o.Location)
}

// events is a single-consumer outcome queue with room for one event.
// Overflow is dropped.
type events struct {
	name string
	ch   chan Event
}

func newEvents(name string) events {
	return events{name: name, ch: make(chan Event, 1)}
}

func (e events) emit(ev Event) {
	select {
	case e.ch <- ev:
	default:
		log.Printf("[controller] %s: dropped %s event for task %d", e.name, ev.Kind, ev.TaskID)
	}
}

// feed keeps the latest task collection from one repository subscription
// and signals the renderer when it changes.
type feed struct {
	mu      sync.RWMutex
	tasks   []task.Task
	loaded  bool
	changed chan struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (f *feed) start(parent context.Context, repo task.Repository) {
	ctx, cancel := context.WithCancel(parent)
	f.cancel = cancel
	f.changed = make(chan struct{}, 1)

	updates := repo.ObserveTasks(ctx)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for list := range updates {
			f.mu.Lock()
			f.tasks = list
			f.loaded = true
			f.mu.Unlock()
			f.notify()
		}
	}()
}

func (f *feed) snapshot() ([]task.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.tasks, f.loaded
}

func (f *feed) notify() {
	select {
	case f.changed <- struct{}{}:
	default:
	}
}

func (f *feed) stop() {
	f.cancel()
	f.wg.Wait()
}
