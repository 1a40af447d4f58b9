package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	profiles ports.ProfileService
	accounts ports.AccountDeleter
}

func NewUserHandler(profiles ports.ProfileService, accounts ports.AccountDeleter) *UserHandler {
	return &UserHandler{profiles: profiles, accounts: accounts}
}

// Me returns the authenticated user.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe applies a partial profile update.
//
// @Summary      Update current user
// @Description  Accepts any subset of name, email, password and age. Other keys are rejected.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	fields, err := bindUpdate(c)
	if err != nil {
		return err
	}

	updated, err := h.profiles.Update(c.Request().Context(), user, fields)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteMe removes the account and every task it owns.
//
// @Summary      Delete current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	removed, err := h.accounts.DeleteUser(c.Request().Context(), user)
	if err != nil {
		return err
	}

	metrics.UsersDeletedTotal.Inc()
	metrics.CascadeTasksDeletedTotal.Add(float64(removed))
	return c.JSON(http.StatusOK, user)
}
