package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// sessionClaims binds a token to a user. The jti makes every issued token a
// distinct string even when two are signed within the same second.
type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenService issues and checks bearer session tokens. A token is valid only
// while it is listed on its user's record, so revocation is server-side.
type TokenService struct {
	users  ports.UserRepository
	secret []byte
	ttl    time.Duration
}

// NewTokenService returns a TokenService. A ttl of zero issues tokens without
// an expiry claim.
func NewTokenService(users ports.UserRepository, secret string, ttl time.Duration) *TokenService {
	if ttl < 0 {
		ttl = 0
	}
	return &TokenService{users: users, secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for userID and appends it to the user's active list.
func (s *TokenService) Issue(ctx context.Context, userID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := s.users.AddToken(ctx, userID, signed); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and then requires the token to still be on
// the user's list. Every rejection is ErrUnauthenticated; store failures are
// wrapped so callers can log them.
func (s *TokenService) Verify(ctx context.Context, token string) (*domain.User, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.users.FindByIDAndToken(ctx, claims.UserID, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	return user, nil
}

// Revoke removes one token from the user's list.
func (s *TokenService) Revoke(ctx context.Context, userID, token string) error {
	if err := s.users.RemoveToken(ctx, userID, token); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RevokeAll empties the user's token list.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	if err := s.users.ClearTokens(ctx, userID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}
	return nil
}
