package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/internal/task"
	"agenda/internal/views"
)

func ids(tasks []task.Task) []int64 {
	out := []int64{}
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func newTestHome(t *testing.T, filter views.Filter, seed ...task.Task) (*Home, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository(seed...)
	h := NewHome(context.Background(), repo, filter, testOptions())
	t.Cleanup(h.Close)
	require.Eventually(t, func() bool { return !h.State().Loading }, time.Second, 5*time.Millisecond)
	return h, repo
}

func homeSeed() []task.Task {
	return []task.Task{
		{ID: 1, Title: "today open", Due: at(15, 9)},
		{ID: 2, Title: "today done", Due: at(15, 11), Completed: true},
		{ID: 3, Title: "undated open"},
		{ID: 4, Title: "tomorrow", Due: at(16, 9)},
	}
}

func TestHome_VisibleByFilter(t *testing.T) {
	h, _ := newTestHome(t, views.FilterAll, homeSeed()...)

	state := h.State()
	assert.Equal(t, views.Date{Year: 2025, Month: time.November, Day: 15}, state.Selected)
	assert.Equal(t, []int64{1, 2, 3}, ids(state.Visible))
	assert.Len(t, state.All, 4)
	assert.Equal(t, 33, state.Progress)

	h.SetFilter(views.FilterPending)
	assert.Equal(t, []int64{1, 3}, ids(h.State().Visible))
	assert.Equal(t, 0, h.State().Progress)

	h.SetFilter(views.FilterCompleted)
	assert.Equal(t, []int64{2}, ids(h.State().Visible))
	assert.Equal(t, 100, h.State().Progress)
}

func TestHome_SelectDate(t *testing.T) {
	h, _ := newTestHome(t, views.FilterAll, homeSeed()...)

	h.ShiftDate(1)
	state := h.State()
	assert.Equal(t, views.Date{Year: 2025, Month: time.November, Day: 16}, state.Selected)
	assert.Equal(t, []int64{4, 3}, ids(state.Visible))

	h.SelectDate(views.Date{Year: 2026, Month: time.January, Day: 1})
	assert.Equal(t, []int64{3}, ids(h.State().Visible))

	h.Today()
	assert.Equal(t, views.Date{Year: 2025, Month: time.November, Day: 15}, h.State().Selected)
}

func TestHome_FollowsRepository(t *testing.T) {
	h, repo := newTestHome(t, views.FilterAll)

	_, err := repo.AddTask(context.Background(), task.Task{Title: "new undated"})
	require.NoError(t, err)

	select {
	case <-h.Changes():
	case <-time.After(time.Second):
		t.Fatal("no change signal")
	}
	require.Eventually(t, func() bool { return len(h.State().Visible) == 1 }, time.Second, 5*time.Millisecond)
}

func TestHome_ToggleComplete(t *testing.T) {
	h, repo := newTestHome(t, views.FilterAll, homeSeed()...)

	h.ToggleComplete(context.Background(), h.State().Visible[0])

	stored, _ := repo.get(1)
	assert.True(t, stored.Completed)
}

func TestHome_ToggleCompleteFailureIsSwallowed(t *testing.T) {
	h, repo := newTestHome(t, views.FilterAll, homeSeed()...)
	repo.setErrors(func(r *fakeRepository) { r.updateErr = errors.New("boom") })

	assert.NotPanics(t, func() { h.ToggleComplete(context.Background(), h.State().Visible[0]) })
	stored, _ := repo.get(1)
	assert.False(t, stored.Completed)
}

func TestHome_Delete(t *testing.T) {
	h, repo := newTestHome(t, views.FilterAll, homeSeed()...)

	require.NoError(t, h.Delete(context.Background(), task.Task{ID: 3}))
	assert.Equal(t, []int64{3}, repo.deleted)
}

func TestHome_RemoveWithUndo(t *testing.T) {
	h, repo := newTestHome(t, views.FilterAll, homeSeed()...)

	h.RemoveWithUndo(task.Task{ID: 3, Title: "undated open"})

	state := h.State()
	assert.Equal(t, []int64{1, 2}, ids(state.Visible), "hidden immediately")
	assert.Equal(t, []int64{3}, ids(state.Pending))
	_, _, del := repo.calls()
	assert.Zero(t, del, "not deleted before the grace period")

	assert.Equal(t, Event{Kind: EventDeleted, TaskID: 3}, expectEvent(t, h.Events()))
	_, _, del = repo.calls()
	assert.Equal(t, 1, del)
	assert.Empty(t, h.State().Pending)
	assert.False(t, h.Undo(3), "too late to undo")
}

func TestHome_Undo(t *testing.T) {
	h, repo := newTestHome(t, views.FilterAll, homeSeed()...)

	h.RemoveWithUndo(task.Task{ID: 1})
	assert.True(t, h.Undo(1))
	assert.Equal(t, []int64{1, 2, 3}, ids(h.State().Visible))

	time.Sleep(3 * testOptions().UndoGrace)
	_, _, del := repo.calls()
	assert.Zero(t, del)
	assert.False(t, h.Undo(1))
}

func TestHome_RemoveFailureEmitsError(t *testing.T) {
	h, repo := newTestHome(t, views.FilterAll, homeSeed()...)
	repo.setErrors(func(r *fakeRepository) { r.deleteErr = errors.New("boom") })

	h.RemoveWithUndo(task.Task{ID: 1})

	ev := expectEvent(t, h.Events())
	assert.Equal(t, EventError, ev.Kind)
	assert.Equal(t, []int64{1, 2, 3}, ids(h.State().Visible), "row shows again")
}

func TestHome_CloseDropsPendingRemovals(t *testing.T) {
	repo := newFakeRepository(homeSeed()...)
	h := NewHome(context.Background(), repo, views.FilterAll, testOptions())

	h.RemoveWithUndo(task.Task{ID: 1})
	h.Close()

	time.Sleep(3 * testOptions().UndoGrace)
	_, _, del := repo.calls()
	assert.Zero(t, del)
	assert.Zero(t, repo.list.Subscribers())
}
