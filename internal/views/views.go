// Package views computes what screens render from the current task collection.
// Every function here is pure: it never mutates its input and depends only
// on its arguments.
package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"agenda/internal/task"
)

// UncategorizedLabel groups tasks without a category in ByCategory.
const UncategorizedLabel = "Uncategorized"

// Filter narrows the home list by completion.
type Filter int

const (
	FilterAll Filter = iota
	FilterCompleted
	FilterPending
)

func (f Filter) String() string {
	switch f {
	case FilterCompleted:
		return "completed"
	case FilterPending:
		return "pending"
	default:
		return "all"
	}
}

// Next cycles ALL -> COMPLETED -> PENDING -> ALL.
func (f Filter) Next() Filter {
	return (f + 1) % 3
}

// ParseFilter reads a filter name as written in the config file.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "completed", "done":
		return FilterCompleted, nil
	case "pending", "todo":
		return FilterPending, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter %q", s)
	}
}

func (f Filter) matches(t task.Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	default:
		return true
	}
}

// Agenda returns tasks due within date's local day, earliest first.
// Undated tasks are excluded.
func Agenda(tasks []task.Task, date Date, loc *time.Location) []task.Task {
	start := date.Start(loc)
	end := date.AddDays(1).Start(loc)

	var out []task.Task
	for _, t := range tasks {
		if t.Due == nil {
			continue
		}
		if !t.Due.Before(start) && t.Due.Before(end) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Due.Before(*out[j].Due) })
	return out
}

// MonthMarkers returns the days of ym that have at least one task due.
func MonthMarkers(tasks []task.Task, ym YearMonth, loc *time.Location) DateSet {
	set := DateSet{}
	for _, t := range tasks {
		if t.Due == nil {
			continue
		}
		if d := DateOf(*t.Due, loc); ym.Contains(d) {
			set[d] = struct{}{}
		}
	}
	return set
}

// Undated returns incomplete tasks with no due date in creation order.
func Undated(tasks []task.Task) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if t.Due == nil && !t.Completed {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Visible returns the home list: tasks due on selected plus every undated
// task, narrowed by filter. Input order is kept.
func Visible(tasks []task.Task, selected Date, filter Filter, loc *time.Location) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if t.Due != nil && DateOf(*t.Due, loc) != selected {
			continue
		}
		if filter.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// CompletionPercent is floor(100 * completed / total), or 0 for no tasks.
func CompletionPercent(tasks []task.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	return CountCompleted(tasks) * 100 / len(tasks)
}

func CountCompleted(tasks []task.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// ByCategory counts tasks per category label.
func ByCategory(tasks []task.Task) map[string]int {
	counts := make(map[string]int)
	for _, t := range tasks {
		label := UncategorizedLabel
		if t.Category != nil {
			label = *t.Category
		}
		counts[label]++
	}
	return counts
}

// RecentCounts counts tasks due on each of the days ending today,
// oldest day first.
func RecentCounts(tasks []task.Task, today Date, days int, loc *time.Location) []int {
	if days <= 0 {
		return nil
	}
	first := today.AddDays(-(days - 1))
	counts := make([]int, days)
	for _, t := range tasks {
		if t.Due == nil {
			continue
		}
		d := DateOf(*t.Due, loc)
		if d.Before(first) || d.After(today) {
			continue
		}
		counts[daysBetween(first, d)]++
	}
	return counts
}

func daysBetween(a, b Date) int {
	return int(b.Start(time.UTC).Sub(a.Start(time.UTC)).Hours() / 24)
}
