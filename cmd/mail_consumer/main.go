package main

import (
	"context"

	appcontext "github.com/SeakMengs/EventHub/internal/app_context"
	"github.com/SeakMengs/EventHub/internal/config"
	"github.com/SeakMengs/EventHub/internal/database"
	"github.com/SeakMengs/EventHub/internal/env"
	"github.com/SeakMengs/EventHub/internal/issuer"
	"github.com/SeakMengs/EventHub/internal/mailer"
	"github.com/SeakMengs/EventHub/internal/queue"
	"github.com/SeakMengs/EventHub/internal/repository"
	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"go.uber.org/zap"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

const (
	MAX_WORKER = 3
)

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

	// delivery never renders, the renderer only satisfies the issuer
	renderer, _, err := appcontext.NewRenderer(cfg.Certificate, logger)
	if err != nil {
		logger.Panic(err)
	}

	repo := repository.NewRepository(db, logger)
	mail := mailer.NewFromConfig(cfg.Mail, cfg.IsProduction(), logger)
	app := issuer.New(issuer.StoresFromRepository(repo), storage, renderer, mail, logger,
		issuer.WithFrontendURL(cfg.FRONTEND_URL),
	)

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

	ctx := context.Background()

	if err := rabbitMQ.ConsumeMailJob(ctx, newMailJobHandler(app, logger), MAX_WORKER, logger); err != nil {
		logger.Fatalf("Failed to consume mail job: %v", err)
	}

	logger.Infof("Started consuming mail job")

	// Block forever to keep the consumer running
	select {}
}

type certificateDeliverer interface {
	Deliver(ctx context.Context, certificateId string) (eventcert.Record, error)
}

func newMailJobHandler(app certificateDeliverer, logger *zap.SugaredLogger) queue.MailJobHandler {
	return func(ctx context.Context, jobPayload queue.CertificateMailPayload) (bool, error) {
		record, err := app.Deliver(ctx, jobPayload.CertificateID)
		if err != nil {
			return issuer.IsRetryable(err), err
		}

		logger.Infof("Delivered certificate %s, status %s", record.CertificateNumber, record.Status)
		return false, nil
	}
}
