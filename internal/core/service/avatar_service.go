package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// MaxAvatarBytes is the largest accepted upload, before resizing.
const MaxAvatarBytes = 1_000_000

var avatarFilename = regexp.MustCompile(`\.(jpg|jpeg|png)$`)

type AvatarService struct {
	users       ports.UserRepository
	transformer ports.ImageTransformer
	log         zerolog.Logger
}

func NewAvatarService(users ports.UserRepository, transformer ports.ImageTransformer, log zerolog.Logger) *AvatarService {
	return &AvatarService{users: users, transformer: transformer, log: log}
}

// Upload checks the file name and size, converts the image to the stored
// PNG format and saves it on the user record.
func (s *AvatarService) Upload(ctx context.Context, userID, filename string, data []byte) error {
	if !avatarFilename.MatchString(filename) {
		return domain.ErrUnsupportedFileType
	}
	if len(data) > MaxAvatarBytes {
		return domain.ErrPayloadTooLarge
	}

	png, err := s.transformer.Transform(data)
	if err != nil {
		s.log.Debug().Err(err).Str("user_id", userID).Msg("avatar transform failed")
		return domain.ErrInvalidImage
	}

	if err := s.users.SetAvatar(ctx, userID, png); err != nil {
		return fmt.Errorf("store avatar: %w", err)
	}
	return nil
}

func (s *AvatarService) Remove(ctx context.Context, userID string) error {
	if err := s.users.SetAvatar(ctx, userID, nil); err != nil {
		return fmt.Errorf("remove avatar: %w", err)
	}
	return nil
}

// Get returns the stored PNG. A missing user and a user without an avatar are
// both ErrAvatarNotFound.
func (s *AvatarService) Get(ctx context.Context, userID string) ([]byte, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrAvatarNotFound
		}
		return nil, fmt.Errorf("load avatar: %w", err)
	}
	if len(user.Avatar) == 0 {
		return nil, domain.ErrAvatarNotFound
	}
	return user.Avatar, nil
}
