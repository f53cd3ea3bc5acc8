package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	acked  int
	nacked int
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacked++
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.nacked++
	return nil
}

type fakePublisher struct {
	published map[QueueName][][]byte
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, routingKey QueueName, body []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.published == nil {
		f.published = make(map[QueueName][][]byte)
	}
	f.published[routingKey] = append(f.published[routingKey], body)
	return nil
}

func delivery(t *testing.T, ack *fakeAcknowledger, payload any) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

func TestProcessCertificateGenerateJob(t *testing.T) {
	logger := zap.NewNop().Sugar()
	boom := errors.New("boom")

	tests := []struct {
		name          string
		retry         int
		requeue       bool
		err           error
		wantAck       int
		wantNack      int
		wantPublished int
	}{
		{name: "Success", retry: 0, wantAck: 1},
		{name: "Retryable failure requeues", retry: 0, requeue: true, err: boom, wantAck: 1, wantPublished: 1},
		{name: "Permanent failure drops", retry: 0, requeue: false, err: boom, wantNack: 1},
		{name: "Last retry drops", retry: MAX_QUEUE_RETRY - 1, requeue: true, err: boom, wantNack: 1},
		{name: "Over max retries drops without running", retry: MAX_QUEUE_RETRY, wantNack: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			pub := &fakePublisher{}
			calls := 0
			handler := func(ctx context.Context, p CertificateGeneratePayload) (bool, error) {
				calls++
				if p.EventID != "e1" {
					t.Errorf("expected event e1, got %s", p.EventID)
				}
				return tt.requeue, tt.err
			}

			msg := delivery(t, ack, CertificateGeneratePayload{EventID: "e1", Retry: tt.retry})
			processCertificateGenerateJob(context.Background(), pub, logger, 1, msg, handler)

			if ack.acked != tt.wantAck || ack.nacked != tt.wantNack {
				t.Errorf("expected ack=%d nack=%d, got ack=%d nack=%d", tt.wantAck, tt.wantNack, ack.acked, ack.nacked)
			}
			if got := len(pub.published[QueueCertificateGenerate]); got != tt.wantPublished {
				t.Errorf("expected %d requeued, got %d", tt.wantPublished, got)
			}
			if tt.retry >= MAX_QUEUE_RETRY && calls != 0 {
				t.Errorf("expected handler not to run")
			}
		})
	}
}

func TestRequeueCarriesRetryCount(t *testing.T) {
	ack := &fakeAcknowledger{}
	pub := &fakePublisher{}
	handler := func(ctx context.Context, p CertificateGeneratePayload) (bool, error) {
		return true, errors.New("storage unavailable")
	}

	processCertificateGenerateJob(context.Background(), pub, zap.NewNop().Sugar(), 1, delivery(t, ack, CertificateGeneratePayload{EventID: "e1"}), handler)

	var requeued CertificateGeneratePayload
	if err := json.Unmarshal(pub.published[QueueCertificateGenerate][0], &requeued); err != nil {
		t.Fatalf("invalid requeued payload: %v", err)
	}
	if requeued.Retry != 1 {
		t.Errorf("expected retry 1, got %d", requeued.Retry)
	}
}

func TestProcessMailJob(t *testing.T) {
	logger := zap.NewNop().Sugar()

	t.Run("Requeue on failure", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		pub := &fakePublisher{}
		handler := func(ctx context.Context, p CertificateMailPayload) (bool, error) {
			return true, errors.New("smtp down")
		}

		processMailJob(context.Background(), pub, logger, 1, delivery(t, ack, NewCertificateMailPayload("c1")), handler)

		if ack.acked != 1 || len(pub.published[QueueCertificateMail]) != 1 {
			t.Fatalf("expected the job to be requeued, got ack=%d published=%d", ack.acked, len(pub.published[QueueCertificateMail]))
		}
		var requeued CertificateMailPayload
		_ = json.Unmarshal(pub.published[QueueCertificateMail][0], &requeued)
		if requeued.Try != 1 || requeued.CertificateID != "c1" {
			t.Errorf("unexpected requeued payload %+v", requeued)
		}
	})

	t.Run("Give up after max retry", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		pub := &fakePublisher{}
		handler := func(ctx context.Context, p CertificateMailPayload) (bool, error) {
			return true, errors.New("smtp down")
		}

		processMailJob(context.Background(), pub, logger, 1, delivery(t, ack, CertificateMailPayload{CertificateID: "c1", Try: MAX_QUEUE_RETRY}), handler)

		if ack.nacked != 1 || len(pub.published) != 0 {
			t.Errorf("expected the job to be dropped, got nack=%d published=%d", ack.nacked, len(pub.published))
		}
	})

	t.Run("Requeue publish failure drops", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		pub := &fakePublisher{err: errors.New("channel closed")}
		handler := func(ctx context.Context, p CertificateMailPayload) (bool, error) {
			return true, errors.New("smtp down")
		}

		processMailJob(context.Background(), pub, logger, 1, delivery(t, ack, NewCertificateMailPayload("c1")), handler)

		if ack.nacked != 1 || ack.acked != 0 {
			t.Errorf("expected nack, got ack=%d nack=%d", ack.acked, ack.nacked)
		}
	})

	t.Run("Invalid payload", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		processMailJob(context.Background(), &fakePublisher{}, logger, 1, amqp.Delivery{Acknowledger: ack, Body: []byte("{")}, nil)
		if ack.nacked != 1 {
			t.Errorf("expected nack for invalid payload")
		}
	})
}

func TestDeadLetterTopology(t *testing.T) {
	for _, q := range []QueueName{QueueCertificateGenerate, QueueCertificateMail} {
		args := queueArgs(q)
		if args["x-dead-letter-exchange"] != "" {
			t.Errorf("%s: expected the default exchange, got %v", q, args["x-dead-letter-exchange"])
		}
		if args["x-dead-letter-routing-key"] != string(q)+"_dead" {
			t.Errorf("%s: unexpected dead letter key %v", q, args["x-dead-letter-routing-key"])
		}
		if err := args.Validate(); err != nil {
			t.Errorf("%s: invalid arguments: %v", q, err)
		}
	}
}
