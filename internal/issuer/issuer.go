package issuer

import (
	"context"
	"errors"
	"fmt"
	"time"

	filestorage "github.com/SeakMengs/EventHub/internal/file_storage"
	"github.com/SeakMengs/EventHub/internal/mailer"
	"github.com/SeakMengs/EventHub/internal/model"
	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PreviewCertificateNumber is printed on template previews instead of a minted number.
const PreviewCertificateNumber = "CERT-0000-PREVIEW"

// Issuer binds the renderer to persistence, object storage and email delivery.
type Issuer struct {
	stores   Stores
	storage  filestorage.Storage
	renderer *eventcert.Renderer
	mail     mailer.Client
	queue    DeliveryQueue
	logger   *zap.SugaredLogger

	frontendURL string
	now         func() time.Time
}

type Option func(*Issuer)

// WithDeliveryQueue enqueues an email for every newly generated certificate.
func WithDeliveryQueue(q DeliveryQueue) Option {
	return func(i *Issuer) {
		i.queue = q
	}
}

func WithFrontendURL(url string) Option {
	return func(i *Issuer) {
		i.frontendURL = url
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

func New(stores Stores, storage filestorage.Storage, renderer *eventcert.Renderer, mail mailer.Client, logger *zap.SugaredLogger, opts ...Option) *Issuer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	i := &Issuer{
		stores:   stores,
		storage:  storage,
		renderer: renderer,
		mail:     mail,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ItemResult is the outcome of one participant.
type ItemResult struct {
	ParticipantID     string           `json:"participantId"`
	CertificateID     string           `json:"certificateId,omitempty"`
	CertificateNumber string           `json:"certificateNumber,omitempty"`
	Status            eventcert.Status `json:"status,omitempty"`
	// Nothing was rendered because a document already exists
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

func (r ItemResult) OK() bool {
	return r.Err == nil
}

type BatchReport struct {
	EventID   string       `json:"eventId"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Skipped   int          `json:"skipped"`
	Items     []ItemResult `json:"items"`
}

func (b *BatchReport) add(item ItemResult) {
	switch {
	case item.Err != nil:
		item.Error = item.Err.Error()
		b.Failed++
	case item.Skipped:
		b.Skipped++
	default:
		b.Succeeded++
	}
	b.Items = append(b.Items, item)
}

// renderable is a render-ready template plus the assets it references.
type renderable struct {
	tpl        *eventcert.CertificateTemplate
	background []byte
	assets     map[string][]byte
}

// loadTemplate resolves the event's template with its background and field assets.
func (i *Issuer) loadTemplate(ctx context.Context, event *model.Event) (*renderable, error) {
	row := event.CertificateTemplate
	if row == nil {
		if event.CertificateTemplateID == nil || *event.CertificateTemplateID == "" {
			return nil, fmt.Errorf("event %s has no template: %w", event.ID, eventcert.ErrTemplateNotFound)
		}
		var err error
		row, err = i.stores.Templates.GetById(ctx, nil, *event.CertificateTemplateID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("template %s: %w", *event.CertificateTemplateID, eventcert.ErrTemplateNotFound)
			}
			return nil, err
		}
	}

	return i.templateFromRow(ctx, row)
}

func (i *Issuer) templateFromRow(ctx context.Context, row *model.CertificateTemplate) (*renderable, error) {
	tpl := row.ToEventcert()
	out := &renderable{tpl: &tpl, assets: make(map[string][]byte)}

	if tpl.Background != nil {
		file := row.BackgroundFile
		if file == nil {
			var err error
			if file, err = i.stores.Files.GetById(ctx, nil, tpl.Background.Ref); err != nil {
				return nil, fmt.Errorf("background %s: %w", tpl.Background.Ref, i.notFound(err))
			}
			tpl.Background.ContentType = file.ContentType
		}
		data, err := i.storage.Download(ctx, file.BucketName, file.UniqueFileName)
		if err != nil {
			return nil, fmt.Errorf("background %s: %w", tpl.Background.Ref, err)
		}
		out.background = data
	}

	for _, f := range tpl.Fields {
		if f.Kind.IsText() || f.Content == "" {
			continue
		}
		if _, ok := out.assets[f.Content]; ok {
			continue
		}
		file, err := i.stores.Files.GetById(ctx, nil, f.Content)
		if err != nil {
			return nil, fmt.Errorf("asset %s of field %s: %w", f.Content, f.ID, i.notFound(err))
		}
		data, err := i.storage.Download(ctx, file.BucketName, file.UniqueFileName)
		if err != nil {
			return nil, fmt.Errorf("asset %s of field %s: %w", f.Content, f.ID, err)
		}
		out.assets[f.Content] = data
	}

	return out, nil
}

func (i *Issuer) notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return eventcert.ErrNotFound
	}
	return err
}

// options picks the output format. A PDF background can only produce a PDF.
func (i *Issuer) options(t *renderable) eventcert.RenderOptions {
	opts := eventcert.RenderOptions{Format: i.renderer.Config().OutputFormat}
	if t != nil && t.tpl.Background.IsPDF() {
		opts.Format = eventcert.OutputPDF
	}
	return opts
}

func (i *Issuer) input(t *renderable, participant *model.Participant, event *model.Event, certificate *model.Certificate) eventcert.RenderInput {
	in := eventcert.RenderInput{
		Template:    t.tpl,
		Participant: participant.ToEventcert(),
		Event:       event.ToEventcert(),
		Background:  t.background,
		Assets:      t.assets,
		IssuedAt:    i.now(),
	}
	if certificate.CertificateNumber != nil {
		in.CertificateNumber = *certificate.CertificateNumber
	}
	return in
}

// store uploads a rendered document and moves the record to generated.
func (i *Issuer) store(ctx context.Context, certificate *model.Certificate, doc *eventcert.Document) error {
	key := util.ToCertificateObjectKey(certificate.EventID, doc.CertificateNumber, doc.Format.Extension())
	obj, err := i.storage.Upload(ctx, key, doc.Data, doc.ContentType)
	if err != nil {
		return err
	}

	file, err := i.stores.Files.Create(ctx, nil, &model.File{
		FileName:       doc.CertificateNumber + doc.Format.Extension(),
		UniqueFileName: obj.Key,
		BucketName:     obj.Bucket,
		ContentType:    doc.ContentType,
		Size:           obj.Size,
	})
	if err != nil {
		i.discard(ctx, obj, "")
		return err
	}

	record := certificate.ToRecord()
	if err := record.MarkGenerated(doc.CertificateNumber, doc.IssuedAt, file.ID); err != nil {
		i.discard(ctx, obj, file.ID)
		return err
	}
	updated := *certificate
	updated.ApplyRecord(record)
	if err := i.stores.Certificates.UpdateRecord(ctx, nil, &updated, eventcert.StatusPending); err != nil {
		// another worker generated it first
		i.discard(ctx, obj, file.ID)
		return err
	}

	*certificate = updated
	certificate.DocumentFile = file
	i.enqueueDelivery(ctx, certificate.ID)
	return nil
}

// discard removes a document that did not end up on its record, the file row first.
func (i *Issuer) discard(ctx context.Context, obj filestorage.Object, fileID string) {
	if fileID != "" {
		if err := i.stores.Files.Delete(ctx, nil, fileID); err != nil {
			i.logger.Errorf("Failed to delete file row %s: %v", fileID, err)
		}
	}
	if err := i.storage.Remove(ctx, obj.Bucket, obj.Key); err != nil {
		i.logger.Errorf("Failed to remove object %s/%s: %v", obj.Bucket, obj.Key, err)
	}
}

func (i *Issuer) enqueueDelivery(ctx context.Context, certificateId string) {
	if i.queue == nil {
		return
	}
	if err := i.queue.EnqueueCertificateDelivery(ctx, certificateId); err != nil {
		i.logger.Errorf("Failed to enqueue delivery of certificate %s: %v", certificateId, err)
	}
}

func resultOf(participantId string, certificate *model.Certificate) ItemResult {
	r := ItemResult{ParticipantID: participantId}
	if certificate != nil {
		rec := certificate.ToRecord()
		r.CertificateID = rec.ID
		r.CertificateNumber = rec.CertificateNumber
		r.Status = rec.Status
	}
	return r
}
