package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/domain"
)

// ctxSession returns the user and token injected by the Auth middleware.
// A handler reached without them is a routing mistake; it fails closed.
func ctxSession(c echo.Context) (*domain.User, string, error) {
	user, _ := c.Get(middleware.ContextUser).(*domain.User)
	token, _ := c.Get(middleware.ContextToken).(string)
	if user == nil || token == "" {
		return nil, "", echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	}
	return user, token, nil
}

// bindUpdate decodes a PATCH body into a plain map. Only the body is read so
// path parameters never show up as update keys.
func bindUpdate(c echo.Context) (map[string]any, error) {
	var fields updateRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &fields); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return fields, nil
}
