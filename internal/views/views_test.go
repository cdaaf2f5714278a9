package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/internal/task"
)

var loc = time.FixedZone("UTC+3", 3*60*60)

func due(t *testing.T, s string) *time.Time {
	t.Helper()
	v, err := time.ParseInLocation("2006-01-02 15:04:05", s, loc)
	require.NoError(t, err)
	return &v
}

func ids(tasks []task.Task) []int64 {
	out := []int64{}
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestAgenda(t *testing.T) {
	midnight := due(t, "2025-11-15 00:00:00")
	plus5s := midnight.Add(5000 * time.Millisecond)
	tasks := []task.Task{
		{ID: 1, Title: "later", Due: &plus5s},
		{ID: 2, Title: "midnight", Due: midnight},
		{ID: 3, Title: "next day", Due: due(t, "2025-11-16 00:00:00")},
		{ID: 4, Title: "undated"},
		{ID: 5, Title: "last ms", Due: due(t, "2025-11-15 23:59:59")},
		{ID: 6, Title: "day before", Due: due(t, "2025-11-14 23:59:59")},
	}

	got := Agenda(tasks, Date{2025, time.November, 15}, loc)
	assert.Equal(t, []int64{2, 1, 5}, ids(got))

	t.Run("day is taken in the given zone", func(t *testing.T) {
		utcMidnight := time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC)
		got := Agenda([]task.Task{{ID: 1, Due: &utcMidnight}}, Date{2025, time.November, 15}, loc)
		assert.Len(t, got, 1, "03:00 local")
		got = Agenda([]task.Task{{ID: 1, Due: &utcMidnight}}, Date{2025, time.November, 14}, loc)
		assert.Empty(t, got)
	})
}

func TestMonthMarkers(t *testing.T) {
	tasks := []task.Task{
		{ID: 1, Due: due(t, "2025-11-15 10:00:00")},
		{ID: 2, Due: due(t, "2025-11-15 18:00:00")},
		{ID: 3, Due: due(t, "2025-11-30 23:00:00")},
		{ID: 4, Due: due(t, "2025-12-01 00:00:00")},
		{ID: 5},
	}

	got := MonthMarkers(tasks, YearMonth{2025, time.November}, loc)
	assert.Equal(t, []Date{{2025, time.November, 15}, {2025, time.November, 30}}, got.Sorted())
	assert.True(t, got.Has(Date{2025, time.November, 15}))
	assert.False(t, got.Has(Date{2025, time.December, 1}))

	single := MonthMarkers(tasks[:1], YearMonth{2025, time.November}, loc)
	assert.Equal(t, DateSet{{2025, time.November, 15}: {}}, single)
}

func TestUndated(t *testing.T) {
	tasks := []task.Task{
		{ID: 9, Title: "b"},
		{ID: 3, Title: "a"},
		{ID: 4, Title: "done", Completed: true},
		{ID: 5, Title: "dated", Due: due(t, "2025-11-15 10:00:00")},
	}
	assert.Equal(t, []int64{3, 9}, ids(Undated(tasks)))
}

func TestVisible(t *testing.T) {
	today := Date{2025, time.November, 15}
	tasks := []task.Task{
		{ID: 1, Title: "today open", Due: due(t, "2025-11-15 09:00:00")},
		{ID: 2, Title: "today done", Due: due(t, "2025-11-15 11:00:00"), Completed: true},
		{ID: 3, Title: "undated open"},
		{ID: 4, Title: "tomorrow", Due: due(t, "2025-11-16 09:00:00")},
		{ID: 5, Title: "undated done", Completed: true},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"all ignores completion", FilterAll, []int64{1, 2, 3, 5}},
		{"pending", FilterPending, []int64{1, 3}},
		{"completed", FilterCompleted, []int64{2, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Visible(tasks, today, tt.filter, loc)))
		})
	}

	t.Run("undated stay visible on other days", func(t *testing.T) {
		got := Visible(tasks, Date{2030, time.January, 1}, FilterAll, loc)
		assert.Equal(t, []int64{3, 5}, ids(got))
	})

	t.Run("three task example", func(t *testing.T) {
		three := tasks[:3]
		assert.Len(t, Visible(three, today, FilterAll, loc), 3)
		assert.Equal(t, []int64{1, 3}, ids(Visible(three, today, FilterPending, loc)))
	})
}

func TestCompletionPercent(t *testing.T) {
	mk := func(done, total int) []task.Task {
		out := make([]task.Task, total)
		for i := 0; i < done; i++ {
			out[i].Completed = true
		}
		return out
	}

	tests := []struct {
		done, total, want int
	}{
		{0, 0, 0},
		{2, 3, 66},
		{1, 3, 33},
		{3, 3, 100},
		{0, 4, 0},
		{1, 7, 14},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompletionPercent(mk(tt.done, tt.total)), "%d/%d", tt.done, tt.total)
	}
}

func TestByCategory(t *testing.T) {
	tasks := []task.Task{
		{Category: ptr("Work")},
		{Category: ptr("Work")},
		{Category: ptr("Home")},
		{},
	}
	assert.Equal(t, map[string]int{"Work": 2, "Home": 1, UncategorizedLabel: 1}, ByCategory(tasks))
	assert.Empty(t, ByCategory(nil))
}

func TestRecentCounts(t *testing.T) {
	today := Date{2025, time.March, 2}
	tasks := []task.Task{
		{Due: due(t, "2025-03-02 08:00:00")},
		{Due: due(t, "2025-03-02 20:00:00")},
		{Due: due(t, "2025-02-28 12:00:00")},
		{Due: due(t, "2025-02-24 12:00:00")},
		{Due: due(t, "2025-02-23 12:00:00")},
		{Due: due(t, "2025-03-03 00:00:00")},
		{},
	}

	got := RecentCounts(tasks, today, 7, loc)
	assert.Equal(t, []int{1, 0, 0, 0, 1, 0, 2}, got)
	assert.Nil(t, RecentCounts(tasks, today, 0, loc))
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"all", FilterAll, false},
		{"", FilterAll, false},
		{"Completed", FilterCompleted, false},
		{" pending ", FilterPending, false},
		{"someday", FilterAll, true},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, FilterAll, FilterPending.Next())
}
