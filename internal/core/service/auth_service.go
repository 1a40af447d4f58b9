package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// AuthService implements registration, login and logout on top of the
// credential store and the token service.
type AuthService struct {
	users    *UserService
	tokens   *TokenService
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewAuthService(users *UserService, tokens *TokenService, notifier ports.Notifier, log zerolog.Logger) *AuthService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &AuthService{users: users, tokens: tokens, notifier: notifier, log: log}
}

// Register creates the account, then issues its first token. The steps run
// strictly in that order: hash, persist, notify, issue.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, string, error) {
	user, err := s.users.Create(ctx, in)
	if err != nil {
		return nil, "", err
	}

	s.notifier.Enqueue(ports.AccountNotification{
		Kind:   ports.NotifyWelcome,
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		At:     time.Now().UTC(),
	})

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	user.Tokens = append(user.Tokens, token)
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByCredentials(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	user.Tokens = append(user.Tokens, token)

	s.log.Debug().Str("user_id", user.ID).Msg("session issued")
	return user, token, nil
}

func (s *AuthService) Logout(ctx context.Context, userID, token string) error {
	return s.tokens.Revoke(ctx, userID, token)
}

func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	return s.tokens.RevokeAll(ctx, userID)
}

type noopNotifier struct{}

func (noopNotifier) Enqueue(ports.AccountNotification) {}
