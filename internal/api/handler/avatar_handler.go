package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/core/service"
)

const avatarField = "avatar"

type AvatarHandler struct {
	avatars ports.AvatarService
}

func NewAvatarHandler(avatars ports.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatars: avatars}
}

// Upload stores a new profile picture from the multipart field "avatar".
//
// @Summary      Upload avatar
// @Tags         avatar
// @Accept       multipart/form-data
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "jpg, jpeg or png, at most 1MB"
// @Success      200
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me/avatar [post]
func (h *AvatarHandler) Upload(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
			return domain.ErrPayloadTooLarge
		}
		return domain.ErrUnsupportedFileType
	}
	files := form.File[avatarField]
	if len(files) != 1 {
		return domain.ErrUnsupportedFileType
	}
	fh := files[0]
	if fh.Size > service.MaxAvatarBytes {
		return domain.ErrPayloadTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	// One byte past the limit is enough for the service to reject it.
	data, err := io.ReadAll(io.LimitReader(f, service.MaxAvatarBytes+1))
	if err != nil {
		return err
	}

	if err := h.avatars.Upload(c.Request().Context(), user.ID, fh.Filename, data); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// Remove deletes the profile picture.
//
// @Summary      Remove avatar
// @Tags         avatar
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Router       /users/me/avatar [delete]
func (h *AvatarHandler) Remove(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.avatars.Remove(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// Get serves any user's avatar as PNG. No authentication is required.
//
// @Summary      Get avatar
// @Tags         avatar
// @Produce      png
// @Param        id   path  string  true  "User id"
// @Success      200  {file}    binary
// @Failure      404  {object}  errorResponse
// @Router       /users/{id}/avatar [get]
func (h *AvatarHandler) Get(c echo.Context) error {
	data, err := h.avatars.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", data)
}
