package main

import (
	"context"
	"fmt"
	"time"

	appcontext "github.com/SeakMengs/EventHub/internal/app_context"
	"github.com/SeakMengs/EventHub/internal/config"
	"github.com/SeakMengs/EventHub/internal/database"
	"github.com/SeakMengs/EventHub/internal/env"
	"github.com/SeakMengs/EventHub/internal/issuer"
	"github.com/SeakMengs/EventHub/internal/mailer"
	"github.com/SeakMengs/EventHub/internal/queue"
	"github.com/SeakMengs/EventHub/internal/repository"
	"github.com/SeakMengs/EventHub/internal/util"
	"go.uber.org/zap"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

const MAX_WORKERS = 3

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	storage, closeStorage, err := appcontext.NewStorage(cfg, logger)
	if err != nil {
		logger.Panic(err)
	}
	defer closeStorage()

	renderer, _, err := appcontext.NewRenderer(cfg.Certificate, logger)
	if err != nil {
		logger.Panic(err)
	}

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.GetConnectionString())
	if err != nil {
		logger.Panic("Error connecting to RabbitMQ: ", err)
	}
	logger.Info("RabbitMQ connected \n")
	defer func() {
		if err := rabbitMQ.Close(); err != nil {
			logger.Errorf("Failed to close RabbitMQ connection: %v", err)
		}
	}()

	repo := repository.NewRepository(db, logger)
	mail := mailer.NewFromConfig(cfg.Mail, cfg.IsProduction(), logger)
	app := issuer.New(issuer.StoresFromRepository(repo), storage, renderer, mail, logger,
		issuer.WithFrontendURL(cfg.FRONTEND_URL),
		issuer.WithDeliveryQueue(rabbitMQ),
	)

	workers := MAX_WORKERS
	if cfg.RabbitMQ.WORKERS > 0 {
		workers = cfg.RabbitMQ.WORKERS
	}

	ctx := context.Background()

	if err := rabbitMQ.ConsumeCertificateGenerateJob(ctx, newCertificateGenerateJobHandler(app, logger), workers, logger); err != nil {
		logger.Fatalf("Failed to consume certificate generate job: %v", err)
	}

	logger.Infof("Started consuming certificate generate job with %d workers", workers)

	// Block forever to keep the consumer running
	select {}
}

type certificateGenerator interface {
	GenerateOne(ctx context.Context, eventId, participantId string) (issuer.ItemResult, error)
	GenerateAll(ctx context.Context, eventId string) (issuer.BatchReport, error)
}

// Return shouldRequeue, err
func newCertificateGenerateJobHandler(app certificateGenerator, logger *zap.SugaredLogger) queue.CertificateGenerateJobHandler {
	return func(ctx context.Context, jobPayload queue.CertificateGeneratePayload) (bool, error) {
		queueWaitDuration := "unknown"
		if createdAt, err := time.Parse(time.RFC3339, jobPayload.CreatedAt); err == nil {
			queueWaitDuration = time.Since(createdAt).String()
		}

		if jobPayload.ParticipantID != "" {
			result, err := app.GenerateOne(ctx, jobPayload.EventID, jobPayload.ParticipantID)
			if err != nil {
				return issuer.IsRetryable(err), err
			}
			logger.Infof("Generated certificate %s of participant %s, waited %s in queue", result.CertificateNumber, result.ParticipantID, queueWaitDuration)
			return false, nil
		}

		startTime := time.Now()
		report, err := app.GenerateAll(ctx, jobPayload.EventID)
		if err != nil {
			return issuer.IsRetryable(err), err
		}

		logger.Infof("Event %s: %d generated, %d skipped, %d failed in %s, waited %s in queue",
			jobPayload.EventID, report.Succeeded, report.Skipped, report.Failed, time.Since(startTime), queueWaitDuration)

		// a rerun only renders the records still pending
		if item, ok := report.FirstRetryable(); ok {
			return true, fmt.Errorf("%d of %d certificates failed, first %s: %w", report.Failed, len(report.Items), item.ParticipantID, item.Err)
		}
		return false, nil
	}
}
