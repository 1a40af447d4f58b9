package domain

import (
	"strings"
	"time"
)

// TaskUpdatableFields is the closed set of keys accepted by a task update.
var TaskUpdatableFields = []string{"description", "completed"}

// Task is a single to-do item. Owner is fixed at creation.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewTask(owner, description string, completed bool) (*Task, error) {
	description, err := NormalizeDescription(description)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Task{
		Description: description,
		Completed:   completed,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func NormalizeDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid("description", "is required")
	}
	return s, nil
}

type TaskUpdate struct {
	Description *string
	Completed   *bool
}

func (u TaskUpdate) Empty() bool {
	return u.Description == nil && u.Completed == nil
}

// ParseTaskUpdate is the task counterpart of ParseUserUpdate.
func ParseTaskUpdate(fields map[string]any) (TaskUpdate, error) {
	var upd TaskUpdate
	if err := checkAllowed(fields, TaskUpdatableFields); err != nil {
		return upd, err
	}

	for key, raw := range fields {
		switch key {
		case "description":
			s, ok := raw.(string)
			if !ok {
				return upd, invalid(key, "must be a string")
			}
			d, err := NormalizeDescription(s)
			if err != nil {
				return upd, err
			}
			upd.Description = &d
		case "completed":
			b, ok := raw.(bool)
			if !ok {
				return upd, invalid(key, "must be a boolean")
			}
			upd.Completed = &b
		}
	}
	return upd, nil
}
