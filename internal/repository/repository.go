// Package repository maps storage rows to domain tasks and delegates to the store.
package repository

import (
	"context"
	"time"

	"agenda/internal/storage"
	"agenda/internal/task"
)

// TaskRepository is the storage-backed task.Repository.
type TaskRepository struct {
	store *storage.Store
}

var _ task.Repository = (*TaskRepository)(nil)

func New(store *storage.Store) *TaskRepository {
	return &TaskRepository{store: store}
}

func (r *TaskRepository) ObserveTasks(ctx context.Context) <-chan []task.Task {
	rows := r.store.ObserveAll(ctx)
	out := make(chan []task.Task)
	go func() {
		defer close(out)
		for batch := range rows {
			select {
			case out <- ToDomainList(batch):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (r *TaskRepository) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	row, ok, err := r.store.GetByID(ctx, id)
	if err != nil || !ok {
		return nil, err
	}
	t := ToDomain(row)
	return &t, nil
}

func (r *TaskRepository) AddTask(ctx context.Context, t task.Task) (int64, error) {
	return r.store.Insert(ctx, ToRow(t))
}

func (r *TaskRepository) UpdateTask(ctx context.Context, t task.Task) error {
	return r.store.Update(ctx, ToRow(t))
}

func (r *TaskRepository) DeleteTask(ctx context.Context, t task.Task) error {
	return r.store.Delete(ctx, ToRow(t))
}

// ToDomain converts a stored row. Pointer fields are copied, never shared.
func ToDomain(row storage.TaskRow) task.Task {
	t := task.Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: clone(row.Description),
		Completed:   row.Completed,
		Category:    clone(row.Category),
		Priority:    task.Priority(row.Priority),
	}
	if row.DueDateEpoch != nil {
		due := time.UnixMilli(*row.DueDateEpoch)
		t.Due = &due
	}
	return t
}

// ToRow converts a domain task back to its stored shape.
func ToRow(t task.Task) storage.TaskRow {
	row := storage.TaskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: clone(t.Description),
		Completed:   t.Completed,
		Category:    clone(t.Category),
		Priority:    int(t.Priority),
	}
	if t.Due != nil {
		ms := t.Due.UnixMilli()
		row.DueDateEpoch = &ms
	}
	return row
}

func ToDomainList(rows []storage.TaskRow) []task.Task {
	out := make([]task.Task, len(rows))
	for i, row := range rows {
		out[i] = ToDomain(row)
	}
	return out
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
