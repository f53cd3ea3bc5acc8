package main

import (
	"context"
	"errors"
	"testing"

	"github.com/SeakMengs/EventHub/internal/queue"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"go.uber.org/zap"
)

type fakeDeliverer struct {
	err error
}

func (f fakeDeliverer) Deliver(ctx context.Context, certificateId string) (eventcert.Record, error) {
	if f.err != nil {
		return eventcert.Record{}, f.err
	}
	return eventcert.Record{ID: certificateId, Status: eventcert.StatusSent}, nil
}

func TestMailJobHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantRequeue bool
	}{
		{name: "Delivered"},
		{name: "Smtp down", err: errors.New("dial tcp: connection refused"), wantRequeue: true},
		{name: "Certificate gone", err: eventcert.ErrNotFound},
		{name: "Still pending", err: eventcert.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newMailJobHandler(fakeDeliverer{err: tt.err}, zap.NewNop().Sugar())
			requeue, err := handler(context.Background(), queue.CertificateMailPayload{CertificateID: "c1"})
			if requeue != tt.wantRequeue {
				t.Errorf("expected requeue %v, got %v", tt.wantRequeue, requeue)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}
