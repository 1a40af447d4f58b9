package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// RegisterInput carries the fields accepted by POST /users.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// AuthService covers the session lifecycle: registration, login and logout.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, userID, token string) error
	LogoutAll(ctx context.Context, userID string) error
}

// SessionVerifier resolves a bearer token to the user holding it.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*domain.User, error)
}
