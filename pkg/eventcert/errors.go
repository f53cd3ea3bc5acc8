package eventcert

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrTemplateNotFound      = fmt.Errorf("certificate template %w", ErrNotFound)
	ErrInvalidTransition     = errors.New("invalid certificate status transition")
	ErrAttendanceNotVerified = errors.New("participant attendance is not verified")
	ErrUnsupportedFormat     = errors.New("unsupported output format")
)

// ValidationError reports a rejected input. It is never partially applied.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RenderPanicError carries a panic raised while rendering one document.
type RenderPanicError struct {
	Value any
}

func (e *RenderPanicError) Error() string {
	return fmt.Sprintf("render panicked: %v", e.Value)
}
