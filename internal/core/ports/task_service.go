package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// TaskListParams holds the raw query-string values of GET /tasks.
type TaskListParams struct {
	Completed string
	SortBy    string
	Limit     string
	Skip      string
}

// CreateTaskInput carries the body of POST /tasks.
type CreateTaskInput struct {
	Description string
	Completed   bool
}

// TaskService defines owner-scoped task use cases.
type TaskService interface {
	Create(ctx context.Context, ownerID string, in CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, ownerID string, params TaskListParams) ([]*domain.Task, error)
	Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID string, fields map[string]any) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
}
