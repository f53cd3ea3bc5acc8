package appcontext

import (
	"context"

	"github.com/SeakMengs/EventHub/internal/auth"
	"github.com/SeakMengs/EventHub/internal/config"
	filestorage "github.com/SeakMengs/EventHub/internal/file_storage"
	"github.com/SeakMengs/EventHub/internal/issuer"
	"github.com/SeakMengs/EventHub/internal/mailer"
	"github.com/SeakMengs/EventHub/internal/repository"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"go.uber.org/zap"
)

// GenerateQueue accepts generate-all jobs to be run by the certificate consumer.
type GenerateQueue interface {
	EnqueueCertificateGenerate(ctx context.Context, eventId, participantId, requestedBy string) error
}

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	Logger *zap.SugaredLogger

	// Repository provides access to data storage operations.
	Repository *repository.Repository

	// Mailer handles email-sending functions.
	Mailer mailer.Client

	// JWTService verifies the bearer tokens of organizers.
	JWTService auth.JWTInterface

	// Storage keeps template backgrounds and generated certificate documents.
	Storage filestorage.Storage

	Renderer *eventcert.Renderer

	// Measurer is used by the template builder for hit-testing text fields.
	Measurer eventcert.TextMeasurer

	Issuer *issuer.Issuer

	// nil when rabbitmq is not configured, async generation is then rejected
	Queue GenerateQueue
}
