package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// UploadLimit caps the request body at limit (echo size notation, e.g. "2M")
// and reports an oversized body as domain.ErrPayloadTooLarge, whether it is
// caught by Content-Length or while the handler reads the body.
func UploadLimit(limit string) echo.MiddlewareFunc {
	bodyLimit := echomiddleware.BodyLimit(limit)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		limited := bodyLimit(next)
		return func(c echo.Context) error {
			err := limited(c)
			if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
				return domain.ErrPayloadTooLarge
			}
			return err
		}
	}
}
