package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidUpdates     = errors.New("invalid updates")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("unable to login")
	ErrUnauthenticated    = errors.New("please authenticate")
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrAvatarNotFound     = errors.New("avatar not found")

	ErrPayloadTooLarge     = errors.New("file is too large")
	ErrUnsupportedFileType = errors.New("please upload an image")
	ErrInvalidImage        = errors.New("unable to process image")
)

// ValidationError reports a single rejected input field. It matches
// ErrValidation under errors.Is, and ErrInvalidUpdates when Field is empty
// and the update contained a key that is not allowed.
type ValidationError struct {
	Field   string
	Message string
	cause   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return e.cause != nil && target == e.cause
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
