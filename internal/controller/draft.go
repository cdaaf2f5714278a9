package controller

import (
	"strings"
	"time"

	"agenda/internal/task"
	"agenda/internal/views"
)

// Status is the edit state of a create or edit screen.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusEditing
	StatusSaving
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusEditing:
		return "editing"
	case StatusSaving:
		return "saving"
	case StatusNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Draft is the edit buffer behind the create and edit screens.
type Draft struct {
	Title       string
	Description string
	DueDate     *views.Date
	DueTime     *views.TimeOfDay
	Category    *string
	Priority    task.Priority
	// Reminder is kept in the buffer only; no reminder is scheduled.
	Reminder bool
}

// NewDraft returns an empty buffer with the default priority.
func NewDraft() Draft {
	return Draft{Priority: task.PriorityMedium}
}

// DraftOf fills a buffer from a stored task.
func DraftOf(t task.Task, loc *time.Location) Draft {
	d := Draft{
		Title:    t.Title,
		Category: t.Category,
		Priority: t.Priority,
	}
	if t.Description != nil {
		d.Description = *t.Description
	}
	if t.Due != nil {
		date := views.DateOf(*t.Due, loc)
		tod := views.TimeOfDayOf(*t.Due, loc)
		d.DueDate = &date
		d.DueTime = &tod
	}
	return d
}

func (d Draft) Valid() bool {
	return strings.TrimSpace(d.Title) != ""
}

// DueAt returns the due instant in loc, or nil without a date.
// A date without a time means local midnight.
func (d Draft) DueAt(loc *time.Location) *time.Time {
	if d.DueDate == nil {
		return nil
	}
	at := views.At(*d.DueDate, d.DueTime, loc)
	return &at
}

// apply writes the buffer onto base. ID and Completed are kept.
func (d Draft) apply(base task.Task, loc *time.Location) task.Task {
	base.Title = strings.TrimSpace(d.Title)
	base.Description = nil
	if strings.TrimSpace(d.Description) != "" {
		desc := d.Description
		base.Description = &desc
	}
	base.Due = d.dueFor(base, loc)
	base.Category = nil
	if d.Category != nil && strings.TrimSpace(*d.Category) != "" {
		cat := strings.TrimSpace(*d.Category)
		base.Category = &cat
	}
	base.Priority = d.Priority
	return base
}

// dueFor keeps base's stored instant while the buffer still shows the same
// local day and minute, so seconds and milliseconds survive an edit that
// leaves the due fields alone.
func (d Draft) dueFor(base task.Task, loc *time.Location) *time.Time {
	if base.Due != nil && d.DueDate != nil && d.DueTime != nil &&
		*d.DueDate == views.DateOf(*base.Due, loc) && *d.DueTime == views.TimeOfDayOf(*base.Due, loc) {
		due := *base.Due
		return &due
	}
	return d.DueAt(loc)
}
