package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// DefaultBcryptCost is used when the configured cost is out of bcrypt's range.
const DefaultBcryptCost = 8

// UserService is the credential store: it owns password hashing and every
// validated write to a user record.
type UserService struct {
	repo      ports.UserRepository
	cost      int
	dummyHash []byte
	log       zerolog.Logger
}

func NewUserService(repo ports.UserRepository, bcryptCost int, log zerolog.Logger) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = DefaultBcryptCost
	}
	// Compared against when the email is unknown so both login failures
	// cost one bcrypt comparison.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("no-such-account"), bcryptCost)
	return &UserService{repo: repo, cost: bcryptCost, dummyHash: dummy, log: log}
}

// Create validates and persists a new account. The plaintext password is
// hashed here, once, before the first write.
func (s *UserService) Create(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	user, password, err := domain.NewUser(in.Name, in.Email, in.Password, in.Age)
	if err != nil {
		return nil, err
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user created")
	return created, nil
}

// FindByCredentials returns the user owning email when password matches.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *UserService) FindByCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Update applies a partial profile update. Keys outside
// domain.UserUpdatableFields are rejected before anything is written, and the
// password is re-hashed only when the update carries one.
func (s *UserService) Update(ctx context.Context, user *domain.User, fields map[string]any) (*domain.User, error) {
	upd, err := domain.ParseUserUpdate(fields)
	if err != nil {
		return nil, err
	}

	changes := domain.UserChanges{Name: upd.Name, Email: upd.Email, Age: upd.Age}
	if upd.Password != nil {
		hash, err := s.hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		changes.PasswordHash = &hash
	}

	if err := s.repo.Update(ctx, user.ID, changes); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	updated := *user
	changes.Apply(&updated)
	updated.UpdatedAt = time.Now().UTC()
	return &updated, nil
}

func (s *UserService) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
