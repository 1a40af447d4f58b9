package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
// Token list mutations are single-document atomic operations in the store,
// never a read followed by a full write.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByIDAndToken returns the user only if token is in its active list.
	FindByIDAndToken(ctx context.Context, id, token string) (*domain.User, error)
	Update(ctx context.Context, id string, changes domain.UserChanges) error
	AddToken(ctx context.Context, id, token string) error
	RemoveToken(ctx context.Context, id, token string) error
	ClearTokens(ctx context.Context, id string) error
	// SetAvatar stores avatar, or removes it when avatar is nil.
	SetAvatar(ctx context.Context, id string, avatar []byte) error
	Delete(ctx context.Context, id string) error
}
