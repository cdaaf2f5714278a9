package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"agenda/internal/controller"
	"agenda/internal/task"
	"agenda/internal/views"
)

type formKind int

const (
	formAdd formKind = iota
	formEdit
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
	fieldDueTime
	fieldCategory
	fieldPriority
	fieldReminder
)

// formState is the text buffer behind the add and edit screens. One input
// walks the fields; values are parsed into the controller on save.
type formState struct {
	kind   formKind
	values []string
	index  int
}

// draftEditor is the setter surface shared by the add and detail controllers.
type draftEditor interface {
	SetTitle(string) error
	SetDescription(string) error
	SetDueDate(*views.Date) error
	SetDueTime(*views.TimeOfDay) error
	SetCategory(*string) error
	SetPriority(task.Priority) error
}

func formFields(kind formKind) []string {
	fields := []string{"title", "description", "due date (YYYY-MM-DD)", "due time (HH:MM)", "category", "priority (low/medium/high)"}
	if kind == formAdd {
		fields = append(fields, "reminder (y/n)")
	}
	return fields
}

func newForm(kind formKind, d controller.Draft) *formState {
	f := &formState{kind: kind, values: make([]string, len(formFields(kind)))}
	f.values[fieldTitle] = d.Title
	f.values[fieldDescription] = d.Description
	if d.DueDate != nil {
		f.values[fieldDueDate] = d.DueDate.String()
	}
	if d.DueTime != nil {
		f.values[fieldDueTime] = d.DueTime.String()
	}
	if d.Category != nil {
		f.values[fieldCategory] = *d.Category
	}
	f.values[fieldPriority] = d.Priority.String()
	if kind == formAdd {
		f.values[fieldReminder] = boolToYN(d.Reminder)
	}
	return f
}

func (f *formState) label() string      { return formFields(f.kind)[f.index] }
func (f *formState) current() string    { return f.values[f.index] }
func (f *formState) set(v string)       { f.values[f.index] = v }
func (f *formState) last() bool         { return f.index >= len(f.values)-1 }
func (f *formState) move(delta int)     { f.index = wrapIndex(f.index+delta, len(f.values)) }
func (f *formState) value(i int) string { return strings.TrimSpace(f.values[i]) }

// apply parses every field and pushes it into ed. The first parse or
// controller error stops it.
func (f *formState) apply(ed draftEditor) error {
	due, err := parseOptionalDate(f.value(fieldDueDate))
	if err != nil {
		return fmt.Errorf("due date invalid: %w", err)
	}
	at, err := parseOptionalTime(f.value(fieldDueTime))
	if err != nil {
		return fmt.Errorf("due time invalid: %w", err)
	}
	if at != nil && due == nil {
		return errors.New("due time needs a due date")
	}
	priority, err := parsePriority(f.value(fieldPriority))
	if err != nil {
		return fmt.Errorf("priority invalid: %w", err)
	}
	var category *string
	if c := f.value(fieldCategory); c != "" {
		category = &c
	}

	steps := []func() error{
		func() error { return ed.SetTitle(f.values[fieldTitle]) },
		func() error { return ed.SetDescription(f.values[fieldDescription]) },
		func() error { return ed.SetDueDate(due) },
		func() error { return ed.SetDueTime(at) },
		func() error { return ed.SetCategory(category) },
		func() error { return ed.SetPriority(priority) },
	}
	if r, ok := ed.(interface{ SetReminder(bool) error }); ok && f.kind == formAdd {
		steps = append(steps, func() error { return r.SetReminder(parseYN(f.values[fieldReminder])) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func parseOptionalDate(v string) (*views.Date, error) {
	if v == "" {
		return nil, nil
	}
	d, err := views.ParseDate(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseOptionalTime(v string) (*views.TimeOfDay, error) {
	if v == "" {
		return nil, nil
	}
	t, err := views.ParseTimeOfDay(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parsePriority(v string) (task.Priority, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return task.PriorityMedium, nil
	}
	for _, p := range []task.Priority{task.PriorityLow, task.PriorityMedium, task.PriorityHigh} {
		if v == p.String() || v == p.String()[:1] {
			return p, nil
		}
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < int(task.PriorityLow) || n > int(task.PriorityHigh) {
		return 0, fmt.Errorf("unknown priority %q", v)
	}
	return task.Priority(n), nil
}

func parseYN(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "y" || v == "yes" || v == "true" || v == "1"
}

func boolToYN(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
