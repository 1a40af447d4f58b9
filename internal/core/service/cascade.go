package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// CascadeCoordinator deletes a user and the tasks it owns. The two removals
// are separate store operations with no transaction around them: if the
// user delete fails after the tasks are gone, the account survives with no
// tasks and a retry completes the removal.
type CascadeCoordinator struct {
	users    ports.UserRepository
	tasks    ports.TaskRepository
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewCascadeCoordinator(users ports.UserRepository, tasks ports.TaskRepository, notifier ports.Notifier, log zerolog.Logger) *CascadeCoordinator {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &CascadeCoordinator{users: users, tasks: tasks, notifier: notifier, log: log}
}

// DeleteUser removes the user's tasks first, then the user record. It
// returns the number of tasks removed.
func (c *CascadeCoordinator) DeleteUser(ctx context.Context, user *domain.User) (int64, error) {
	removed, err := c.tasks.DeleteByOwner(ctx, user.ID)
	if err != nil {
		return 0, fmt.Errorf("delete tasks of user: %w", err)
	}

	if err := c.users.Delete(ctx, user.ID); err != nil {
		c.log.Error().Err(err).
			Str("user_id", user.ID).
			Int64("tasks_removed", removed).
			Msg("user removal failed after task cascade")
		return removed, fmt.Errorf("delete user: %w", err)
	}

	c.notifier.Enqueue(ports.AccountNotification{
		Kind:   ports.NotifyCancellation,
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		At:     time.Now().UTC(),
	})

	c.log.Info().Str("user_id", user.ID).Int64("tasks_removed", removed).Msg("user deleted")
	return removed, nil
}
