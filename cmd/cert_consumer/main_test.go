package main

import (
	"context"
	"errors"
	"testing"

	"github.com/SeakMengs/EventHub/internal/issuer"
	"github.com/SeakMengs/EventHub/internal/queue"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	one    issuer.ItemResult
	oneErr error
	report issuer.BatchReport
	err    error
}

func (f fakeGenerator) GenerateOne(ctx context.Context, eventId, participantId string) (issuer.ItemResult, error) {
	return f.one, f.oneErr
}

func (f fakeGenerator) GenerateAll(ctx context.Context, eventId string) (issuer.BatchReport, error) {
	return f.report, f.err
}

func TestCertificateGenerateJobHandler(t *testing.T) {
	tests := []struct {
		name        string
		gen         fakeGenerator
		payload     queue.CertificateGeneratePayload
		wantRequeue bool
		wantErr     bool
	}{
		{
			name:    "Single participant",
			gen:     fakeGenerator{one: issuer.ItemResult{ParticipantID: "p1", CertificateNumber: "CERT-2026-AAAAAAAAAA"}},
			payload: queue.CertificateGeneratePayload{EventID: "e1", ParticipantID: "p1"},
		},
		{
			name:    "Single participant not verified",
			gen:     fakeGenerator{oneErr: eventcert.ErrAttendanceNotVerified},
			payload: queue.CertificateGeneratePayload{EventID: "e1", ParticipantID: "p1"},
			wantErr: true,
		},
		{
			name:    "Whole event",
			gen:     fakeGenerator{report: issuer.BatchReport{Succeeded: 2, Items: []issuer.ItemResult{{ParticipantID: "p1"}, {ParticipantID: "p2"}}}},
			payload: queue.CertificateGeneratePayload{EventID: "e1"},
		},
		{
			name: "Whole event with storage failure",
			gen: fakeGenerator{report: issuer.BatchReport{Succeeded: 1, Failed: 1, Items: []issuer.ItemResult{
				{ParticipantID: "p1"},
				{ParticipantID: "p2", Err: errors.New("upload timeout")},
			}}},
			payload:     queue.CertificateGeneratePayload{EventID: "e1"},
			wantRequeue: true,
			wantErr:     true,
		},
		{
			name: "Whole event with only permanent failures",
			gen: fakeGenerator{report: issuer.BatchReport{Failed: 1, Items: []issuer.ItemResult{
				{ParticipantID: "p1", Err: eventcert.ErrAttendanceNotVerified},
			}}},
			payload: queue.CertificateGeneratePayload{EventID: "e1"},
		},
		{
			name:    "Event without template",
			gen:     fakeGenerator{err: eventcert.ErrTemplateNotFound},
			payload: queue.CertificateGeneratePayload{EventID: "e1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newCertificateGenerateJobHandler(tt.gen, zap.NewNop().Sugar())
			requeue, err := handler(context.Background(), tt.payload)
			if requeue != tt.wantRequeue {
				t.Errorf("expected requeue %v, got %v", tt.wantRequeue, requeue)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr %v, got %v", tt.wantErr, err)
			}
		})
	}
}
