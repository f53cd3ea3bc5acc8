package issuer

import (
	"context"
	"errors"

	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"gorm.io/gorm"
)

// IsRetryable reports whether a failed job may succeed when run again.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, eventcert.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return false
	case errors.Is(err, eventcert.ErrAttendanceNotVerified), errors.Is(err, eventcert.ErrInvalidTransition):
		return false
	case errors.Is(err, eventcert.ErrUnsupportedFormat), eventcert.IsValidationError(err):
		return false
	}
	return true
}

// FirstRetryable returns the first failed item worth another attempt.
func (b BatchReport) FirstRetryable() (ItemResult, bool) {
	for _, item := range b.Items {
		if IsRetryable(item.Err) {
			return item, true
		}
	}
	return ItemResult{}, false
}
