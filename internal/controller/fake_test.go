package controller

import (
	"context"
	"sort"
	"sync"
	"time"

	"agenda/internal/live"
	"agenda/internal/task"
)

// fakeRepository is an in-memory task.Repository that counts calls.
type fakeRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]task.Task
	list   *live.Value[[]task.Task]

	addCalls, updateCalls, deleteCalls   int
	addErr, updateErr, deleteErr, getErr error
	deleted                              []int64
}

func newFakeRepository(seed ...task.Task) *fakeRepository {
	r := &fakeRepository{rows: map[int64]task.Task{}, list: live.New[[]task.Task](nil)}
	for _, t := range seed {
		if t.ID > r.nextID {
			r.nextID = t.ID
		}
		r.rows[t.ID] = t
	}
	r.publish()
	return r
}

func (r *fakeRepository) publish() {
	out := make([]task.Task, 0, len(r.rows))
	for _, t := range r.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Due == nil && b.Due == nil:
			return a.ID < b.ID
		case a.Due == nil:
			return false
		case b.Due == nil:
			return true
		case !a.Due.Equal(*b.Due):
			return a.Due.Before(*b.Due)
		default:
			return a.ID < b.ID
		}
	})
	r.list.Set(out)
}

func (r *fakeRepository) ObserveTasks(ctx context.Context) <-chan []task.Task {
	return r.list.Subscribe(ctx).C()
}

func (r *fakeRepository) GetTask(_ context.Context, id int64) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	t, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *fakeRepository) AddTask(_ context.Context, t task.Task) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addCalls++
	if r.addErr != nil {
		return 0, r.addErr
	}
	if t.ID == 0 {
		r.nextID++
		t.ID = r.nextID
	}
	r.rows[t.ID] = t
	r.publish()
	return t.ID, nil
}

func (r *fakeRepository) UpdateTask(_ context.Context, t task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	if r.updateErr != nil {
		return r.updateErr
	}
	r.rows[t.ID] = t
	r.publish()
	return nil
}

func (r *fakeRepository) DeleteTask(_ context.Context, t task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, t.ID)
	delete(r.rows, t.ID)
	r.publish()
	return nil
}

func (r *fakeRepository) calls() (add, update, del int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addCalls, r.updateCalls, r.deleteCalls
}

func (r *fakeRepository) get(id int64) (task.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	return t, ok
}

func (r *fakeRepository) setErrors(fn func(r *fakeRepository)) {
	r.mu.Lock()
	fn(r)
	r.mu.Unlock()
}

var testLoc = time.FixedZone("UTC+3", 3*60*60)

// fixedNow is 2025-11-15 10:00 in testLoc.
func fixedNow() time.Time {
	return time.Date(2025, time.November, 15, 10, 0, 0, 0, testLoc)
}

func testOptions() Options {
	return Options{Location: testLoc, Now: fixedNow, UndoGrace: 30 * time.Millisecond}
}

func at(day, hour int) *time.Time {
	t := time.Date(2025, time.November, day, hour, 0, 0, 0, testLoc)
	return &t
}

func ptr[T any](v T) *T { return &v }
