package mailer

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"github.com/SeakMengs/EventHub/internal/config"
	"go.uber.org/zap"
)

type MailTemplateFile string

const (
	MAX_RETRY = 3

	CERTIFICATE_ISSUED_TEMPLATE MailTemplateFile = "templates/certificate_issued.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Client interface {
	Send(templateFile MailTemplateFile, toName, toEmail string, data any, attachments ...Attachment) (int, error)
}

// Data passed to CERTIFICATE_ISSUED_TEMPLATE
type CertificateIssuedData struct {
	AppName           string
	LogoURL           string
	ParticipantName   string
	EventTitle        string
	EventDate         string
	CertificateNumber string
	VerifyURL         string
}

// renderTemplate executes the "subject" and "body" blocks of a template in FS.
func renderTemplate(templateFile MailTemplateFile, data any) (string, string, error) {
	tmpl, err := template.ParseFS(FS, string(templateFile))
	if err != nil {
		return "", "", err
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return "", "", err
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return "", "", err
	}

	return subject.String(), body.String(), nil
}

// NewFromConfig picks the mail driver: "smtp", "gmail" or "sendgrid" (the default).
func NewFromConfig(cfg config.MailConfig, isProduction bool, logger *zap.SugaredLogger) Client {
	switch strings.ToLower(cfg.DRIVER) {
	case "smtp":
		return NewSMTPMailer(cfg.SMTP.HOST, cfg.SMTP.PORT, cfg.SMTP.USERNAME, cfg.SMTP.PASSWORD, cfg.FROM_EMAIL, cfg.FROM_NAME, logger)
	case "gmail":
		return NewGmailMailer(cfg.SMTP.USERNAME, cfg.SMTP.PASSWORD, cfg.FROM_NAME, logger)
	default:
		return NewSendgrid(cfg.SEND_GRID.API_KEY, cfg.FROM_EMAIL, cfg.FROM_NAME, isProduction, logger)
	}
}
