package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// TaskRepository implements ports.TaskRepository in memory. Tasks are kept in
// insertion order, which stands in for MongoDB's natural order.
type TaskRepository struct {
	mu    sync.Mutex
	tasks []*domain.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{}
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

func (r *TaskRepository) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneTask(t)
	stored.ID = newID()
	r.tasks = append(r.tasks, stored)
	return cloneTask(stored), nil
}

func (r *TaskRepository) FindByOwner(_ context.Context, ownerID string, q ports.TaskQuery) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*domain.Task{}
	for _, t := range r.tasks {
		if t.Owner != ownerID {
			continue
		}
		if q.Completed != nil && t.Completed != *q.Completed {
			continue
		}
		out = append(out, cloneTask(t))
	}

	if less := taskOrder(q.SortField); less != nil {
		slices.SortStableFunc(out, func(a, b *domain.Task) int {
			if q.SortDesc {
				return less(b, a)
			}
			return less(a, b)
		})
	}

	if q.Skip > 0 {
		out = out[min(int(q.Skip), len(out)):]
	}
	if q.Limit > 0 && int(q.Limit) < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *TaskRepository) FindOne(_ context.Context, ownerID, taskID string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(ownerID, taskID)
	if i < 0 {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(r.tasks[i]), nil
}

func (r *TaskRepository) Update(_ context.Context, ownerID, taskID string, upd domain.TaskUpdate) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(ownerID, taskID)
	if i < 0 {
		return nil, domain.ErrTaskNotFound
	}
	t := r.tasks[i]
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	t.UpdatedAt = time.Now().UTC()
	return cloneTask(t), nil
}

func (r *TaskRepository) Delete(_ context.Context, ownerID, taskID string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(ownerID, taskID)
	if i < 0 {
		return nil, domain.ErrTaskNotFound
	}
	t := r.tasks[i]
	r.tasks = slices.Delete(r.tasks, i, i+1)
	return t, nil
}

func (r *TaskRepository) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.tasks)
	r.tasks = slices.DeleteFunc(r.tasks, func(t *domain.Task) bool { return t.Owner == ownerID })
	return int64(before - len(r.tasks)), nil
}

func (r *TaskRepository) index(ownerID, taskID string) int {
	return slices.IndexFunc(r.tasks, func(t *domain.Task) bool {
		return t.ID == taskID && t.Owner == ownerID
	})
}

// taskOrder returns the ascending comparison for a sort field, or nil for a
// field tasks do not have; MongoDB treats such a sort as a no-op.
func taskOrder(field string) func(a, b *domain.Task) int {
	switch field {
	case "description":
		return func(a, b *domain.Task) int { return cmp.Compare(a.Description, b.Description) }
	case "completed":
		return func(a, b *domain.Task) int { return cmp.Compare(boolRank(a.Completed), boolRank(b.Completed)) }
	case "createdAt":
		return func(a, b *domain.Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case "updatedAt":
		return func(a, b *domain.Task) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case "id", "_id":
		return func(a, b *domain.Task) int { return cmp.Compare(a.ID, b.ID) }
	}
	return nil
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
