package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/infrastructure/db/memory"
)

const testSecret = "test-secret"

var errStoreDown = errors.New("store unavailable")

// failingUsers wraps a working repository and fails the lookups and removals
// that the error paths under test depend on.
type failingUsers struct {
	*memory.UserRepository
}

func (failingUsers) FindByIDAndToken(context.Context, string, string) (*domain.User, error) {
	return nil, errStoreDown
}

func (failingUsers) Delete(context.Context, string) error {
	return errStoreDown
}

// recordingNotifier keeps every enqueued notification in order.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []ports.AccountNotification
}

func (n *recordingNotifier) Enqueue(an ports.AccountNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, an)
}

func (n *recordingNotifier) kinds() []ports.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ports.NotificationKind, len(n.sent))
	for i, an := range n.sent {
		out[i] = an.Kind
	}
	return out
}

type fixture struct {
	users    *memory.UserRepository
	tasks    *memory.TaskRepository
	notifier *recordingNotifier

	userSvc *UserService
	tokens  *TokenService
	auth    *AuthService
	taskSvc *TaskService
	cascade *CascadeCoordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:    memory.NewUserRepository(),
		tasks:    memory.NewTaskRepository(),
		notifier: &recordingNotifier{},
	}
	log := zerolog.Nop()
	f.userSvc = NewUserService(f.users, bcrypt.MinCost, log)
	f.tokens = NewTokenService(f.users, testSecret, 0)
	f.auth = NewAuthService(f.userSvc, f.tokens, f.notifier, log)
	f.taskSvc = NewTaskService(f.tasks, log)
	f.cascade = NewCascadeCoordinator(f.users, f.tasks, f.notifier, log)
	return f
}

// register creates an account and returns it with its first token.
func (f *fixture) register(t *testing.T, name, email string) (*domain.User, string) {
	t.Helper()
	user, token, err := f.auth.Register(context.Background(), ports.RegisterInput{
		Name:     name,
		Email:    email,
		Password: "s3cret-pass",
		Age:      30,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user, token
}
