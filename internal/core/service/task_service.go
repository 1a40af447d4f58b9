package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// TaskService implements task use cases. Every call is scoped to ownerID;
// tasks of other owners behave exactly like missing ones.
type TaskService struct {
	repo ports.TaskRepository
	log  zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, log zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, log: log}
}

func (s *TaskService) Create(ctx context.Context, ownerID string, in ports.CreateTaskInput) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, in.Description, in.Completed)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.log.Info().Str("task_id", created.ID).Str("owner", ownerID).Msg("task created")
	return created, nil
}

func (s *TaskService) List(ctx context.Context, ownerID string, params ports.TaskListParams) ([]*domain.Task, error) {
	tasks, err := s.repo.FindByOwner(ctx, ownerID, ParseTaskQuery(params))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	task, err := s.repo.FindOne(ctx, ownerID, taskID)
	if err != nil {
		return nil, notFoundOr(err, "get task")
	}
	return task, nil
}

// Update validates the field set before touching the store, so a disallowed
// key is reported even for a task the caller does not own.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, fields map[string]any) (*domain.Task, error) {
	upd, err := domain.ParseTaskUpdate(fields)
	if err != nil {
		return nil, err
	}
	if upd.Empty() {
		return s.Get(ctx, ownerID, taskID)
	}

	task, err := s.repo.Update(ctx, ownerID, taskID, upd)
	if err != nil {
		return nil, notFoundOr(err, "update task")
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	task, err := s.repo.Delete(ctx, ownerID, taskID)
	if err != nil {
		return nil, notFoundOr(err, "delete task")
	}
	s.log.Info().Str("task_id", taskID).Str("owner", ownerID).Msg("task deleted")
	return task, nil
}

// ParseTaskQuery turns the raw GET /tasks parameters into list criteria.
//
//	completed=true|false   anything else leaves the filter off
//	sortBy=field:desc      any other direction sorts ascending
//	limit=N, skip=N        unparseable or negative values mean "none"
//
// The lenient integer handling is deliberate: a bad limit is not an error.
func ParseTaskQuery(p ports.TaskListParams) ports.TaskQuery {
	var q ports.TaskQuery

	switch p.Completed {
	case "true":
		v := true
		q.Completed = &v
	case "false":
		v := false
		q.Completed = &v
	}

	if p.SortBy != "" {
		parts := strings.Split(p.SortBy, ":")
		q.SortField = parts[0]
		q.SortDesc = len(parts) > 1 && parts[1] == "desc"
	}

	q.Limit = lenientInt(p.Limit)
	q.Skip = lenientInt(p.Skip)
	return q
}

func lenientInt(s string) int64 {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return int64(n)
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, domain.ErrTaskNotFound) {
		return domain.ErrTaskNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
