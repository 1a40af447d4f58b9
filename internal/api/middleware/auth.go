package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// Context keys set by Auth for downstream handlers.
const (
	ContextUser  = "user"
	ContextToken = "token"
)

// Auth resolves the bearer token to its user and injects both into the echo
// context. Every rejection produces the same 401 body; the cause is only
// logged.
func Auth(verifier ports.SessionVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized()
			}

			user, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				// A bare ErrUnauthenticated is an ordinary rejection; anything
				// wrapping it carries a store failure worth recording.
				if !errors.Is(err, domain.ErrUnauthenticated) || errors.Unwrap(err) != nil {
					log.Warn().Err(err).Str("path", c.Path()).Msg("session verification failed")
				}
				return unauthorized()
			}

			c.Set(ContextUser, user)
			c.Set(ContextToken, token)
			req := c.Request()
			c.SetRequest(req.WithContext(WithUserID(req.Context(), user.ID)))
			return next(c)
		}
	}
}

type userIDKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated user's id.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserIDFromContext returns the id stored by WithUserID, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// bearerToken extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func unauthorized() error {
	metrics.AuthFailuresTotal.Inc()
	return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
}
