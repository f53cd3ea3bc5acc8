package issuer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/SeakMengs/EventHub/internal/mailer"
	"github.com/SeakMengs/EventHub/internal/model"
	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"gorm.io/gorm"
)

type DownloadedDocument struct {
	Filename    string
	ContentType string
	Data        []byte
	Record      eventcert.Record
}

func (i *Issuer) document(ctx context.Context, certificate *model.Certificate) ([]byte, *model.File, error) {
	if !certificate.Status.Issued() {
		return nil, nil, fmt.Errorf("%w: certificate %s has not been generated", eventcert.ErrInvalidTransition, certificate.ID)
	}

	file := certificate.DocumentFile
	if file == nil {
		if certificate.DocumentFileID == nil {
			return nil, nil, fmt.Errorf("document of certificate %s: %w", certificate.ID, eventcert.ErrNotFound)
		}
		var err error
		if file, err = i.stores.Files.GetById(ctx, nil, *certificate.DocumentFileID); err != nil {
			return nil, nil, fmt.Errorf("document of certificate %s: %w", certificate.ID, i.notFound(err))
		}
	}

	data, err := i.storage.Download(ctx, file.BucketName, file.UniqueFileName)
	if err != nil {
		return nil, nil, err
	}
	return data, file, nil
}

// Download returns the stored document and counts the download.
func (i *Issuer) Download(ctx context.Context, certificateId string) (*DownloadedDocument, error) {
	certificate, err := i.stores.Certificates.GetById(ctx, nil, certificateId)
	if err != nil {
		return nil, i.notFound(err)
	}

	data, file, err := i.document(ctx, certificate)
	if err != nil {
		return nil, err
	}

	updated, err := i.stores.Certificates.IncrementDownload(ctx, nil, certificateId)
	if err != nil {
		return nil, err
	}

	return &DownloadedDocument{
		Filename:    file.ToBaseFilename(),
		ContentType: file.ContentType,
		Data:        data,
		Record:      updated.ToRecord(),
	}, nil
}

// DownloadAll writes a zip of every generated document of the event. Organizer exports are
// not counted as participant downloads.
func (i *Issuer) DownloadAll(ctx context.Context, eventId string, w io.Writer) (int, error) {
	certificates, err := i.stores.Certificates.GetIssuedByEventId(ctx, nil, eventId)
	if err != nil {
		return 0, err
	}

	entries := make([]eventcert.ZipEntry, 0, len(certificates))
	for idx := range certificates {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		c := &certificates[idx]
		data, file, err := i.document(ctx, c)
		if err != nil {
			i.logger.Warnf("Skipping certificate %s in export: %v", c.ID, err)
			continue
		}
		entry := eventcert.ZipEntry{Name: file.ToBaseFilename(), Data: data}
		if c.IssuedAt != nil {
			entry.Modified = *c.IssuedAt
		}
		entries = append(entries, entry)
	}

	if err := eventcert.WriteZip(w, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Deliver emails the stored document to the participant. The record stays generated when
// sending fails.
func (i *Issuer) Deliver(ctx context.Context, certificateId string) (eventcert.Record, error) {
	certificate, err := i.stores.Certificates.GetById(ctx, nil, certificateId)
	if err != nil {
		return eventcert.Record{}, i.notFound(err)
	}
	record := certificate.ToRecord()

	data, file, err := i.document(ctx, certificate)
	if err != nil {
		return record, err
	}

	participant := certificate.Participant
	mailData := mailer.CertificateIssuedData{
		AppName:           util.GetAppName(),
		ParticipantName:   participant.Name,
		EventTitle:        certificate.Event.Title,
		CertificateNumber: record.CertificateNumber,
	}
	if i.frontendURL != "" {
		mailData.LogoURL = util.GetAppLogoURL(i.frontendURL)
		mailData.VerifyURL = util.GetVerifyURL(i.frontendURL, record.CertificateNumber)
	}
	if !certificate.Event.Date.IsZero() {
		mailData.EventDate = eventcert.FormatLongDate(certificate.Event.Date, i.renderer.Config().Locale)
	}

	if _, err := i.mail.Send(mailer.CERTIFICATE_ISSUED_TEMPLATE, participant.Name, participant.Email, mailData, mailer.Attachment{
		Filename:    file.ToBaseFilename(),
		ContentType: file.ContentType,
		Data:        data,
	}); err != nil {
		return record, fmt.Errorf("failed to email certificate %s: %w", certificateId, err)
	}

	previous := record.Status
	if err := record.MarkSent(); err != nil {
		return record, err
	}
	if record.Status == previous {
		return record, nil
	}

	certificate.ApplyRecord(record)
	if err := i.stores.Certificates.UpdateRecord(ctx, nil, certificate, previous); err != nil {
		return record, err
	}

	return record, nil
}

// Preview renders a template with sample participant data. Nothing is persisted.
func (i *Issuer) Preview(ctx context.Context, templateId string, format eventcert.OutputFormat) (*eventcert.Document, error) {
	row, err := i.stores.Templates.GetById(ctx, nil, templateId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("template %s: %w", templateId, eventcert.ErrTemplateNotFound)
		}
		return nil, err
	}

	t, err := i.templateFromRow(ctx, row)
	if err != nil {
		return nil, err
	}

	opts := i.options(t)
	if format != "" {
		opts.Format = format
	}

	return i.renderer.Render(ctx, eventcert.RenderInput{
		Template:          t.tpl,
		Participant:       eventcert.SampleParticipant,
		Event:             eventcert.SampleEvent,
		CertificateNumber: PreviewCertificateNumber,
		IssuedAt:          eventcert.SampleEvent.Date,
		Background:        t.background,
		Assets:            t.assets,
	}, opts)
}
