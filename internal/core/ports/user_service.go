package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// ProfileService applies profile changes for the authenticated user.
type ProfileService interface {
	Update(ctx context.Context, user *domain.User, fields map[string]any) (*domain.User, error)
}

// AccountDeleter removes a user together with everything it owns.
type AccountDeleter interface {
	DeleteUser(ctx context.Context, user *domain.User) (int64, error)
}

// AvatarService manages the profile picture.
type AvatarService interface {
	Upload(ctx context.Context, userID, filename string, data []byte) error
	Remove(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) ([]byte, error)
}

// ImageTransformer turns an uploaded image into the stored avatar format.
type ImageTransformer interface {
	Transform(data []byte) ([]byte, error)
}
