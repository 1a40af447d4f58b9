package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

func TestTaskRepository_UnknownSortFieldKeepsOrder(t *testing.T) {
	repo := NewTaskRepository()
	for _, d := range []string{"c", "a", "b"} {
		_, err := repo.Create(context.Background(), &domain.Task{Owner: "o1", Description: d})
		require.NoError(t, err)
	}

	tasks, err := repo.FindByOwner(context.Background(), "o1", ports.TaskQuery{SortField: "priority", SortDesc: true})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "c", tasks[0].Description)
	assert.Equal(t, "b", tasks[2].Description)
}

func TestTaskRepository_SkipPastEnd(t *testing.T) {
	repo := NewTaskRepository()
	_, err := repo.Create(context.Background(), &domain.Task{Owner: "o1", Description: "only"})
	require.NoError(t, err)

	tasks, err := repo.FindByOwner(context.Background(), "o1", ports.TaskQuery{Skip: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	repo := NewUserRepository()
	u, err := repo.Create(context.Background(), &domain.User{Email: "a@b.co"})
	require.NoError(t, err)
	require.NoError(t, repo.AddToken(context.Background(), u.ID, "t1"))

	got, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	got.Tokens[0] = "tampered"

	again, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, again.Tokens)
}
