package issuer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"gorm.io/gorm"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "Nil", err: nil, want: false},
		{name: "Storage outage", err: errors.New("connection refused"), want: true},
		{name: "Wrapped template not found", err: fmt.Errorf("event e1: %w", eventcert.ErrTemplateNotFound), want: false},
		{name: "Record not found", err: gorm.ErrRecordNotFound, want: false},
		{name: "Attendance", err: eventcert.ErrAttendanceNotVerified, want: false},
		{name: "Transition", err: eventcert.ErrInvalidTransition, want: false},
		{name: "Validation", err: &eventcert.ValidationError{Message: "bad"}, want: false},
		{name: "Cancelled", err: context.Canceled, want: false},
		{name: "Deadline", err: context.DeadlineExceeded, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFirstRetryable(t *testing.T) {
	report := BatchReport{Items: []ItemResult{
		{ParticipantID: "p1"},
		{ParticipantID: "p2", Err: eventcert.ErrTemplateNotFound},
		{ParticipantID: "p3", Err: errors.New("upload timeout")},
	}}

	item, ok := report.FirstRetryable()
	if !ok || item.ParticipantID != "p3" {
		t.Errorf("expected p3 to be retryable, got %+v %v", item, ok)
	}

	if _, ok := (BatchReport{Items: report.Items[:2]}).FirstRetryable(); ok {
		t.Errorf("expected no retryable item")
	}
}
