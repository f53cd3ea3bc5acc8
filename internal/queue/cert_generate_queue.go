package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type CertificateGeneratePayload struct {
	EventID string `json:"event_id"`
	// Empty means every verified participant of the event
	ParticipantID string `json:"participant_id,omitempty"`
	RequestedBy   string `json:"requested_by"`
	CreatedAt     string `json:"created_at"`
	Retry         int    `json:"retry" default:"0"`
}

// Return true to requeue the job when err is not nil.
type CertificateGenerateJobHandler func(ctx context.Context, jobPayload CertificateGeneratePayload) (bool, error)

func (r *RabbitMQ) EnqueueCertificateGenerate(ctx context.Context, eventId, participantId, requestedBy string) error {
	payloadBytes, err := json.Marshal(CertificateGeneratePayload{
		EventID:       eventId,
		ParticipantID: participantId,
		RequestedBy:   requestedBy,
		CreatedAt:     time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal generate payload: %w", err)
	}

	return r.Publish(ctx, QueueCertificateGenerate, payloadBytes)
}

func (r *RabbitMQ) ConsumeCertificateGenerateJob(ctx context.Context, handler CertificateGenerateJobHandler, maxWorker int, logger *zap.SugaredLogger) error {
	msgs, err := r.Consume(QueueCertificateGenerate, maxWorker)
	if err != nil {
		return fmt.Errorf("failed to start consuming generate jobs: %w", err)
	}

	for i := range max(maxWorker, 1) {
		go func(workerID int) {
			for {
				select {
				case <-ctx.Done():
					logger.Infof("[Worker %d] Shutting down", workerID)
					return
				case msg, ok := <-msgs:
					if !ok {
						logger.Infof("[Worker %d] Message channel closed", workerID)
						return
					}
					processCertificateGenerateJob(ctx, r, logger, workerID, msg, handler)
				}
			}
		}(i + 1)
	}

	return nil
}

func processCertificateGenerateJob(ctx context.Context, pub publisher, logger *zap.SugaredLogger, workerID int, msg amqp.Delivery, handler CertificateGenerateJobHandler) {
	if msg.Body == nil {
		logger.Warnf("[Worker %d] Received empty message body", workerID)
		// Drop the message
		_ = nack(msg, false)
		return
	}

	var jobPayload CertificateGeneratePayload
	if err := json.Unmarshal(msg.Body, &jobPayload); err != nil {
		logger.Warnf("[Worker %d] Invalid payload: %v", workerID, err)
		_ = nack(msg, false)
		return
	}

	jobPayload.Retry++
	if jobPayload.Retry > MAX_QUEUE_RETRY {
		logger.Warnf("[Worker %d] Max retries reached for event %s", workerID, jobPayload.EventID)
		_ = nack(msg, false)
		return
	}
	lastRetry := jobPayload.Retry == MAX_QUEUE_RETRY

	shouldRequeue, err := handler(ctx, jobPayload)
	if err == nil {
		logger.Infof("[Worker %d] Successfully processed job for EventID: %s, RequestedBy: %s", workerID, jobPayload.EventID, jobPayload.RequestedBy)
		_ = ack(msg)
		return
	}

	logger.Errorf("[Worker %d] Handler error: %v", workerID, err)

	if !shouldRequeue || lastRetry {
		logger.Warnf("[Worker %d] Dropped event %s job after %d attempt", workerID, jobPayload.EventID, jobPayload.Retry)
		_ = nack(msg, false)
		return
	}

	payloadBytes, err := json.Marshal(jobPayload)
	if err != nil {
		logger.Errorf("[Worker %d] Failed to marshal job payload: %v", workerID, err)
		_ = nack(msg, false)
		return
	}

	// requeue with updated retry count
	if err := pub.Publish(ctx, QueueCertificateGenerate, payloadBytes); err != nil {
		logger.Errorf("[Worker %d] Failed to requeue job: %v", workerID, err)
		_ = nack(msg, false)
		return
	}

	logger.Infof("[Worker %d] Requeued job for EventID: %s, Retry: %d", workerID, jobPayload.EventID, jobPayload.Retry)
	_ = ack(msg)
}
