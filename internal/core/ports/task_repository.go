package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// TaskQuery carries the optional list criteria. Owner scoping is not part of
// it: every TaskRepository method takes the owner separately and always
// applies it.
type TaskQuery struct {
	Completed *bool  // nil = both states
	SortField string // empty = store order
	SortDesc  bool
	Limit     int64 // 0 = no limit
	Skip      int64 // 0 = no skip
}

// TaskRepository defines persistence operations for tasks. A task that exists
// but belongs to another owner is reported as domain.ErrTaskNotFound.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByOwner(ctx context.Context, ownerID string, q TaskQuery) ([]*domain.Task, error)
	FindOne(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID string, upd domain.TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	// DeleteByOwner removes every task owned by ownerID and reports how many.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
