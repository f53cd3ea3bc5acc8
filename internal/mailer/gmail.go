package mailer

import (
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPMailer sends through any SMTP relay; Gmail by default.
type SMTPMailer struct {
	fromEmail string
	fromName  string
	host      string
	port      int
	username  string
	password  string
	logger    *zap.SugaredLogger
}

func NewSMTPMailer(host string, port int, username, password, fromEmail, fromName string, logger *zap.SugaredLogger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if fromEmail == "" {
		fromEmail = username
	}

	return &SMTPMailer{
		fromEmail: fromEmail,
		fromName:  fromName,
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		logger:    logger,
	}
}

func NewGmailMailer(username, password, fromName string, logger *zap.SugaredLogger) *SMTPMailer {
	return NewSMTPMailer("smtp.gmail.com", 587, username, password, username, fromName, logger)
}

func (sm *SMTPMailer) buildMessage(templateFile MailTemplateFile, toName, toEmail string, data any, attachments []Attachment) (*gomail.Message, error) {
	subject, body, err := renderTemplate(templateFile, data)
	if err != nil {
		return nil, err
	}

	message := gomail.NewMessage()
	message.SetAddressHeader("From", sm.fromEmail, sm.fromName)
	message.SetAddressHeader("To", toEmail, toName)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", body)

	for _, a := range attachments {
		content := a.Data
		message.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}

	return message, nil
}

func (sm *SMTPMailer) Send(templateFile MailTemplateFile, toName, toEmail string, data any, attachments ...Attachment) (int, error) {
	message, err := sm.buildMessage(templateFile, toName, toEmail, data, attachments)
	if err != nil {
		sm.logger.Errorw("failed to render email template", "error", err, "templateFile", templateFile)
		return http.StatusInternalServerError, err
	}

	dialer := gomail.NewDialer(sm.host, sm.port, sm.username, sm.password)

	if err := dialer.DialAndSend(message); err != nil {
		sm.logger.Errorw("failed to send email", "error", err, "toEmail", toEmail, "templateFile", templateFile)
		return http.StatusInternalServerError, fmt.Errorf("failed to send email: %w", err)
	}

	sm.logger.Infow("email sent successfully", "toEmail", toEmail, "templateFile", templateFile)

	return http.StatusOK, nil
}
