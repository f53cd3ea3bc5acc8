package issuer

import (
	"context"

	"github.com/SeakMengs/EventHub/internal/model"
	"github.com/SeakMengs/EventHub/internal/repository"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"gorm.io/gorm"
)

// The issuer only needs these slices of the repositories. Implemented by internal/repository.

type EventStore interface {
	GetById(ctx context.Context, tx *gorm.DB, eventId string) (*model.Event, error)
}

type ParticipantStore interface {
	GetById(ctx context.Context, tx *gorm.DB, eventId string, participantId string) (*model.Participant, error)
	GetVerifiedByEventId(ctx context.Context, tx *gorm.DB, eventId string) ([]model.Participant, error)
}

type TemplateStore interface {
	GetById(ctx context.Context, tx *gorm.DB, templateId string) (*model.CertificateTemplate, error)
}

type CertificateStore interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, eventId string, participantId string) (*model.Certificate, error)
	GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Certificate, error)
	GetIssuedByEventId(ctx context.Context, tx *gorm.DB, eventId string) ([]model.Certificate, error)
	UpdateRecord(ctx context.Context, tx *gorm.DB, certificate *model.Certificate, expected eventcert.Status) error
	IncrementDownload(ctx context.Context, tx *gorm.DB, id string) (*model.Certificate, error)
}

type FileStore interface {
	Create(ctx context.Context, tx *gorm.DB, file *model.File) (*model.File, error)
	GetById(ctx context.Context, tx *gorm.DB, fileID string) (*model.File, error)
	Delete(ctx context.Context, tx *gorm.DB, fileID string) error
}

type EventLogStore interface {
	Create(ctx context.Context, tx *gorm.DB, log *model.EventLog) (*model.EventLog, error)
}

type Stores struct {
	Events       EventStore
	Participants ParticipantStore
	Templates    TemplateStore
	Certificates CertificateStore
	Files        FileStore
	EventLogs    EventLogStore
}

func StoresFromRepository(r *repository.Repository) Stores {
	return Stores{
		Events:       r.Event,
		Participants: r.Participant,
		Templates:    r.CertificateTemplate,
		Certificates: r.Certificate,
		Files:        r.File,
		EventLogs:    r.EventLog,
	}
}

// DeliveryQueue schedules certificate emails. Implemented by queue.RabbitMQ.
type DeliveryQueue interface {
	EnqueueCertificateDelivery(ctx context.Context, certificateId string) error
}
