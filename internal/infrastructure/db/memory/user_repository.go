package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// UserRepository implements ports.UserRepository in memory. Every method
// holds the lock for its whole duration, which gives the same per-document
// atomicity as the MongoDB update operators.
type UserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Tokens = slices.Clone(u.Tokens)
	if c.Tokens == nil {
		c.Tokens = []string{}
	}
	c.Avatar = slices.Clone(u.Avatar)
	return &c
}

func (r *UserRepository) emailTaken(email, exceptID string) bool {
	for id, u := range r.users {
		if u.Email == email && id != exceptID {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(user.Email, "") {
		return nil, domain.ErrEmailTaken
	}
	stored := cloneUser(user)
	stored.ID = newID()
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByIDAndToken(_ context.Context, id, token string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || !u.HasToken(token) {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) Update(_ context.Context, id string, changes domain.UserChanges) error {
	return r.mutate(id, func(u *domain.User) error {
		if changes.Email != nil && r.emailTaken(*changes.Email, id) {
			return domain.ErrEmailTaken
		}
		changes.Apply(u)
		return nil
	})
}

func (r *UserRepository) AddToken(_ context.Context, id, token string) error {
	return r.mutate(id, func(u *domain.User) error {
		u.Tokens = append(u.Tokens, token)
		return nil
	})
}

func (r *UserRepository) RemoveToken(_ context.Context, id, token string) error {
	return r.mutate(id, func(u *domain.User) error {
		u.Tokens = slices.DeleteFunc(u.Tokens, func(t string) bool { return t == token })
		return nil
	})
}

func (r *UserRepository) ClearTokens(_ context.Context, id string) error {
	return r.mutate(id, func(u *domain.User) error {
		u.Tokens = []string{}
		return nil
	})
}

func (r *UserRepository) SetAvatar(_ context.Context, id string, avatar []byte) error {
	return r.mutate(id, func(u *domain.User) error {
		u.Avatar = slices.Clone(avatar)
		return nil
	})
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) mutate(id string, fn func(*domain.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}
