// Package task defines the to-do record shared by every layer above storage.
package task

import (
	"context"
	"strings"
	"time"
)

// Priority ranks a task. The zero value is PriorityLow.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Raise returns the next higher priority, saturating at PriorityHigh.
func (p Priority) Raise() Priority {
	if p >= PriorityHigh {
		return PriorityHigh
	}
	return p + 1
}

// Lower returns the next lower priority, saturating at PriorityLow.
func (p Priority) Lower() Priority {
	if p <= PriorityLow {
		return PriorityLow
	}
	return p - 1
}

// Task is a single to-do item. ID 0 means the task has not been stored yet.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Due         *time.Time
	Completed   bool
	Category    *string
	Priority    Priority
}

// New returns an unsaved task with the default priority.
func New(title string) Task {
	return Task{Title: title, Priority: PriorityMedium}
}

func (t Task) HasDue() bool { return t.Due != nil }

// HasTitle reports whether the title has any non-space content.
func (t Task) HasTitle() bool { return strings.TrimSpace(t.Title) != "" }

// WithCompleted returns a copy of t with the completion flag set.
func (t Task) WithCompleted(done bool) Task {
	t.Completed = done
	return t
}

// Repository is the task data source consumed by controllers.
type Repository interface {
	// ObserveTasks streams the full ordered collection, current value first.
	ObserveTasks(ctx context.Context) <-chan []Task
	// GetTask returns nil when no task has the id.
	GetTask(ctx context.Context, id int64) (*Task, error)
	AddTask(ctx context.Context, t Task) (int64, error)
	UpdateTask(ctx context.Context, t Task) error
	DeleteTask(ctx context.Context, t Task) error
}
