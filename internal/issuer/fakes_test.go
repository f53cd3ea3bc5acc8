package issuer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SeakMengs/EventHub/internal/mailer"
	"github.com/SeakMengs/EventHub/internal/model"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"gorm.io/gorm"
)

// fakeDB implements every store of the issuer in memory.
type fakeDB struct {
	mu           sync.Mutex
	seq          int
	events       map[string]model.Event
	participants map[string]model.Participant
	templates    map[string]model.CertificateTemplate
	certificates map[string]*model.Certificate
	files        map[string]model.File
	logs         []model.EventLog
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		events:       make(map[string]model.Event),
		participants: make(map[string]model.Participant),
		templates:    make(map[string]model.CertificateTemplate),
		certificates: make(map[string]*model.Certificate),
		files:        make(map[string]model.File),
	}
}

func (db *fakeDB) stores() Stores {
	return Stores{
		Events:       fakeEvents{db},
		Participants: fakeParticipants{db},
		Templates:    fakeTemplates{db},
		Certificates: fakeCertificates{db},
		Files:        fakeFiles{db},
		EventLogs:    fakeEventLogs{db},
	}
}

func (db *fakeDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%d", prefix, db.seq)
}

func (db *fakeDB) certificateOf(eventId, participantId string) *model.Certificate {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, c := range db.certificates {
		if c.EventID == eventId && c.ParticipantID == participantId {
			cp := *c
			return &cp
		}
	}
	return nil
}

type fakeEvents struct{ db *fakeDB }

func (f fakeEvents) GetById(_ context.Context, _ *gorm.DB, eventId string) (*model.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.events[eventId]
	if !ok {
		return &model.Event{}, gorm.ErrRecordNotFound
	}
	// mimic Preload("CertificateTemplate.BackgroundFile")
	if e.CertificateTemplateID != nil {
		if tpl, ok := f.db.templates[*e.CertificateTemplateID]; ok {
			if tpl.BackgroundFileID != nil {
				if file, ok := f.db.files[*tpl.BackgroundFileID]; ok {
					tpl.BackgroundFile = &file
				}
			}
			e.CertificateTemplate = &tpl
		}
	}
	return &e, nil
}

type fakeParticipants struct{ db *fakeDB }

func (f fakeParticipants) GetById(_ context.Context, _ *gorm.DB, eventId string, participantId string) (*model.Participant, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.participants[participantId]
	if !ok || p.EventID != eventId {
		return &model.Participant{}, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f fakeParticipants) GetVerifiedByEventId(_ context.Context, _ *gorm.DB, eventId string) ([]model.Participant, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Participant
	// ids are p1, p2, ... so iterate in order
	for n := 1; n <= len(f.db.participants); n++ {
		p, ok := f.db.participants[fmt.Sprintf("p%d", n)]
		if ok && p.EventID == eventId && p.AttendanceVerifiedAt != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeTemplates struct{ db *fakeDB }

func (f fakeTemplates) GetById(_ context.Context, _ *gorm.DB, templateId string) (*model.CertificateTemplate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	tpl, ok := f.db.templates[templateId]
	if !ok {
		return &model.CertificateTemplate{}, gorm.ErrRecordNotFound
	}
	return &tpl, nil
}

type fakeCertificates struct{ db *fakeDB }

func (f fakeCertificates) withRelations(c model.Certificate) *model.Certificate {
	c.Participant = f.db.participants[c.ParticipantID]
	c.Event = f.db.events[c.EventID]
	if c.DocumentFileID != nil {
		if file, ok := f.db.files[*c.DocumentFileID]; ok {
			c.DocumentFile = &file
		}
	}
	return &c
}

func (f fakeCertificates) GetOrCreate(_ context.Context, _ *gorm.DB, eventId string, participantId string) (*model.Certificate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, c := range f.db.certificates {
		if c.EventID == eventId && c.ParticipantID == participantId {
			return f.withRelations(*c), nil
		}
	}
	c := &model.Certificate{
		BaseModel:     model.BaseModel{ID: f.db.nextID("cert")},
		EventID:       eventId,
		ParticipantID: participantId,
		Status:        eventcert.StatusPending,
	}
	f.db.certificates[c.ID] = c
	return f.withRelations(*c), nil
}

func (f fakeCertificates) GetById(_ context.Context, _ *gorm.DB, id string) (*model.Certificate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.certificates[id]
	if !ok {
		return &model.Certificate{}, gorm.ErrRecordNotFound
	}
	return f.withRelations(*c), nil
}

func (f fakeCertificates) GetIssuedByEventId(_ context.Context, _ *gorm.DB, eventId string) ([]model.Certificate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Certificate
	for _, c := range f.db.certificates {
		if c.EventID == eventId && c.Status.Issued() {
			out = append(out, *f.withRelations(*c))
		}
	}
	return out, nil
}

func (f fakeCertificates) UpdateRecord(_ context.Context, _ *gorm.DB, certificate *model.Certificate, expected eventcert.Status) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	stored, ok := f.db.certificates[certificate.ID]
	if !ok || stored.Status != expected {
		return eventcert.ErrInvalidTransition
	}
	stored.ApplyRecord(certificate.ToRecord())
	return nil
}

func (f fakeCertificates) IncrementDownload(_ context.Context, _ *gorm.DB, id string) (*model.Certificate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	stored, ok := f.db.certificates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	record := stored.ToRecord()
	if err := record.RecordDownload(); err != nil {
		return f.withRelations(*stored), err
	}
	stored.ApplyRecord(record)
	return f.withRelations(*stored), nil
}

type fakeFiles struct{ db *fakeDB }

func (f fakeFiles) Create(_ context.Context, _ *gorm.DB, file *model.File) (*model.File, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if file.ID == "" {
		file.ID = f.db.nextID("file")
	}
	f.db.files[file.ID] = *file
	return file, nil
}

func (f fakeFiles) GetById(_ context.Context, _ *gorm.DB, fileID string) (*model.File, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	file, ok := f.db.files[fileID]
	if !ok {
		return &model.File{}, gorm.ErrRecordNotFound
	}
	return &file, nil
}

func (f fakeFiles) Delete(_ context.Context, _ *gorm.DB, fileID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.files, fileID)
	return nil
}

type fakeEventLogs struct{ db *fakeDB }

func (f fakeEventLogs) Create(_ context.Context, _ *gorm.DB, log *model.EventLog) (*model.EventLog, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.logs = append(f.db.logs, *log)
	return log, nil
}

type sentMail struct {
	toEmail     string
	data        any
	attachments []mailer.Attachment
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(templateFile mailer.MailTemplateFile, toName, toEmail string, data any, attachments ...mailer.Attachment) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return 500, errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{toEmail: toEmail, data: data, attachments: attachments})
	return 202, nil
}

type fakeQueue struct {
	mu  sync.Mutex
	ids []string
}

func (q *fakeQueue) EnqueueCertificateDelivery(_ context.Context, certificateId string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, certificateId)
	return nil
}
