package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type CertificateMailPayload struct {
	CertificateID string `json:"certificate_id"`
	CreatedAt     string `json:"created_at"`
	Try           int    `json:"try" default:"0"`
}

type MailJobHandler func(ctx context.Context, jobPayload CertificateMailPayload) (bool, error)

func NewCertificateMailPayload(certificateId string) CertificateMailPayload {
	return CertificateMailPayload{
		CertificateID: certificateId,
		Try:           0,
		CreatedAt:     time.Now().Format(time.RFC3339),
	}
}

// EnqueueCertificateDelivery schedules the email of a generated certificate.
func (r *RabbitMQ) EnqueueCertificateDelivery(ctx context.Context, certificateId string) error {
	payloadBytes, err := json.Marshal(NewCertificateMailPayload(certificateId))
	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	return r.Publish(ctx, QueueCertificateMail, payloadBytes)
}

func (r *RabbitMQ) ConsumeMailJob(ctx context.Context, handler MailJobHandler, maxWorker int, logger *zap.SugaredLogger) error {
	msgs, err := r.Consume(QueueCertificateMail, maxWorker)
	if err != nil {
		return fmt.Errorf("failed to start consuming mail jobs: %w", err)
	}

	for i := range max(maxWorker, 1) {
		go func(workerNumber int) {
			runMailWorker(ctx, r, logger, workerNumber, msgs, handler)
		}(i + 1)
	}

	return nil
}

func runMailWorker(ctx context.Context, pub publisher, logger *zap.SugaredLogger, workerNumber int, msgs <-chan amqp.Delivery, handler MailJobHandler) {
	for {
		select {
		case <-ctx.Done():
			logger.Infof("[Mail Worker %d] Shutting down", workerNumber)
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Infof("[Mail Worker %d] Message channel closed", workerNumber)
				return
			}
			processMailJob(ctx, pub, logger, workerNumber, msg, handler)
		}
	}
}

func processMailJob(ctx context.Context, pub publisher, logger *zap.SugaredLogger, workerNumber int, msg amqp.Delivery, handler MailJobHandler) {
	if msg.Body == nil {
		logger.Warnf("[Mail Worker %d] Received empty message body", workerNumber)
		_ = nack(msg, false)
		return
	}

	var jobPayload CertificateMailPayload
	if err := json.Unmarshal(msg.Body, &jobPayload); err != nil {
		logger.Warnf("[Mail Worker %d] Invalid payload: %v", workerNumber, err)
		_ = nack(msg, false)
		return
	}

	workerPrefix := fmt.Sprintf("[Mail Worker %d: Retry %d]", workerNumber, jobPayload.Try)

	shouldRequeue, err := handler(ctx, jobPayload)
	if err != nil {
		logger.Errorf("%s Handler error processing mail job for certificate: %s: %v", workerPrefix, jobPayload.CertificateID, err)

		if !shouldRequeue || jobPayload.Try >= MAX_QUEUE_RETRY {
			logger.Warnf("%s Not requeuing mail job for certificate: %s (shouldRequeue: %v)", workerPrefix, jobPayload.CertificateID, shouldRequeue)
			_ = nack(msg, false)
			return
		}

		requeueMailJob(ctx, pub, logger, workerPrefix, msg, jobPayload)
		return
	}

	logger.Infof("%s Successfully processed mail job for certificate: %s", workerPrefix, jobPayload.CertificateID)
	_ = ack(msg)
}

func requeueMailJob(ctx context.Context, pub publisher, logger *zap.SugaredLogger, workerPrefix string, msg amqp.Delivery, jobPayload CertificateMailPayload) {
	jobPayload.Try++
	payloadBytes, err := json.Marshal(jobPayload)
	if err != nil {
		logger.Errorf("%s Failed to marshal mail payload for requeue: %v", workerPrefix, err)
		_ = nack(msg, false)
		return
	}

	if err := pub.Publish(ctx, QueueCertificateMail, payloadBytes); err != nil {
		logger.Errorf("%s Failed to requeue mail job for certificate: %s: %v", workerPrefix, jobPayload.CertificateID, err)
		_ = nack(msg, false)
		return
	}

	logger.Infof("%s Requeued mail job for certificate: %s", workerPrefix, jobPayload.CertificateID)
	_ = ack(msg)
}
