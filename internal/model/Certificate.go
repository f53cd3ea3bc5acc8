package model

import (
	"time"

	"github.com/SeakMengs/EventHub/pkg/eventcert"
)

type Certificate struct {
	BaseModel
	// pending records have no number yet; NULL keeps the unique index satisfied
	CertificateNumber *string          `gorm:"type:text;uniqueIndex" json:"certificateNumber"`
	Status            eventcert.Status `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	IssuedAt          *time.Time       `gorm:"type:timestamptz" json:"issuedAt"`
	DownloadCount     int64            `gorm:"type:bigint;not null;default:0" json:"downloadCount"`

	EventID       string `gorm:"type:text;not null;uniqueIndex:idx_certificates_event_participant" json:"eventId"`
	ParticipantID string `gorm:"type:text;not null;uniqueIndex:idx_certificates_event_participant" json:"participantId"`

	DocumentFileID *string `gorm:"type:text" json:"documentFileId"`

	Event        Event       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Participant  Participant `gorm:"constraint:OnDelete:CASCADE" json:"participant,omitempty"`
	DocumentFile *File       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"documentFile,omitempty"`
}

func (c Certificate) TableName() string {
	return "certificates"
}

func (c Certificate) ToRecord() eventcert.Record {
	r := eventcert.Record{
		ID:            c.ID,
		EventID:       c.EventID,
		ParticipantID: c.ParticipantID,
		Status:        c.Status,
		IssuedAt:      c.IssuedAt,
		DownloadCount: c.DownloadCount,
	}
	if c.CertificateNumber != nil {
		r.CertificateNumber = *c.CertificateNumber
	}
	if c.DocumentFileID != nil {
		r.DocumentRef = *c.DocumentFileID
	}
	if r.Status == "" {
		r.Status = eventcert.StatusPending
	}
	return r
}

func (c *Certificate) ApplyRecord(r eventcert.Record) {
	c.Status = r.Status
	c.IssuedAt = r.IssuedAt
	c.DownloadCount = r.DownloadCount
	c.CertificateNumber = nil
	if r.CertificateNumber != "" {
		number := r.CertificateNumber
		c.CertificateNumber = &number
	}
	c.DocumentFileID = nil
	if r.DocumentRef != "" {
		ref := r.DocumentRef
		c.DocumentFileID = &ref
	}
}
