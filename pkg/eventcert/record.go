package eventcert

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusGenerated  Status = "generated"
	StatusSent       Status = "sent"
	StatusDownloaded Status = "downloaded"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusGenerated, StatusSent, StatusDownloaded:
		return true
	}
	return false
}

// Issued reports whether a document exists for the record.
func (s Status) Issued() bool {
	return s == StatusGenerated || s == StatusSent || s == StatusDownloaded
}

// Record tracks one certificate of a (participant, event) pair, independent of the document bytes.
type Record struct {
	ID                string     `json:"id"`
	EventID           string     `json:"eventId"`
	ParticipantID     string     `json:"participantId"`
	CertificateNumber string     `json:"certificateNumber"`
	Status            Status     `json:"status"`
	IssuedAt          *time.Time `json:"issuedAt"`
	DownloadCount     int64      `json:"downloadCount"`
	DocumentRef       string     `json:"documentRef,omitempty"`
}

func NewRecord(eventID, participantID string) Record {
	return Record{EventID: eventID, ParticipantID: participantID, Status: StatusPending}
}

// MarkGenerated moves a pending record to generated. The number and issue time are only
// assigned here, so they stay stable across later reads.
func (r *Record) MarkGenerated(number string, issuedAt time.Time, documentRef string) error {
	if r.Status != StatusPending {
		return fmt.Errorf("%w: cannot generate a %s certificate", ErrInvalidTransition, r.Status)
	}
	if r.CertificateNumber == "" {
		r.CertificateNumber = number
	}
	t := issuedAt
	r.IssuedAt = &t
	r.DocumentRef = documentRef
	r.Status = StatusGenerated
	return nil
}

// MarkSent records a successful delivery. Sending again is harmless and keeps the status.
func (r *Record) MarkSent() error {
	switch r.Status {
	case StatusGenerated:
		r.Status = StatusSent
		return nil
	case StatusSent, StatusDownloaded:
		return nil
	default:
		return fmt.Errorf("%w: cannot send a %s certificate", ErrInvalidTransition, r.Status)
	}
}

// RecordDownload counts one download. The first download of a sent certificate marks it downloaded.
func (r *Record) RecordDownload() error {
	if !r.Status.Issued() {
		return fmt.Errorf("%w: cannot download a %s certificate", ErrInvalidTransition, r.Status)
	}
	r.DownloadCount++
	if r.Status == StatusSent {
		r.Status = StatusDownloaded
	}
	return nil
}
