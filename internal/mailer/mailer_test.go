package mailer

import (
	"bytes"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/SeakMengs/EventHub/internal/config"
)

var testData = CertificateIssuedData{
	AppName:           "EventHub",
	ParticipantName:   "Jane Doe",
	EventTitle:        "GoMoment Workshop",
	EventDate:         "2 Januari 2026",
	CertificateNumber: "CERT-2026-ABCDEFGHJK",
	VerifyURL:         "http://localhost:3000/verify/CERT-2026-ABCDEFGHJK",
}

func TestRenderTemplate(t *testing.T) {
	subject, body, err := renderTemplate(CERTIFICATE_ISSUED_TEMPLATE, testData)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if subject != "Your certificate for GoMoment Workshop" {
		t.Errorf("unexpected subject %q", subject)
	}
	for _, want := range []string{"Hi Jane Doe", "CERT-2026-ABCDEFGHJK", "2 Januari 2026"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}

func TestSMTPMessageAttachment(t *testing.T) {
	sm := NewSMTPMailer("localhost", 25, "user", "pass", "noreply@example.com", "EventHub", nil)
	msg, err := sm.buildMessage(CERTIFICATE_ISSUED_TEMPLATE, "Jane Doe", "jane@example.com", testData, []Attachment{
		{Filename: "CERT-2026-ABCDEFGHJK.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("failed to write message: %v", err)
	}
	if !strings.Contains(buf.String(), `filename="CERT-2026-ABCDEFGHJK.pdf"`) {
		t.Errorf("expected attachment in message")
	}
}

func TestSendMail(t *testing.T) {
	apiKey := os.Getenv("MAIL_SEND_GRID_API_KEY")
	fromEmail := os.Getenv("MAIL_FROM_MAIL")
	toEmail := os.Getenv("MAIL_TEST_TO")
	if apiKey == "" || fromEmail == "" || toEmail == "" {
		t.Skip("sendgrid credentials not configured")
	}

	// isProduction = false to ensure that the send mail test always run in sandbox mode which won't send actual email to the user
	mail := NewSendgrid(apiKey, fromEmail, "EventHub", false, nil)

	status, err := mail.Send(CERTIFICATE_ISSUED_TEMPLATE, "Jane Doe", toEmail, testData)

	switch status {
	case http.StatusUnauthorized:
		t.Errorf("Unauthorized to send mail, check mail api_key and from_email")
	case http.StatusForbidden:
		t.Errorf("Forbidden to send mail, check mail from_email is it the correct email authorized in send grid?")
	}

	// If status == 202, it mean successful
	if status != http.StatusAccepted && status != http.StatusOK {
		t.Errorf("We got status %d, error: %v", status, err)
	}
}

func TestNewFromConfig(t *testing.T) {
	smtp := NewFromConfig(config.MailConfig{DRIVER: "SMTP", SMTP: config.SMTPConfig{HOST: "localhost", PORT: 2525}}, false, nil)
	if _, ok := smtp.(*SMTPMailer); !ok {
		t.Errorf("expected an smtp mailer, got %T", smtp)
	}

	sendgrid := NewFromConfig(config.MailConfig{}, false, nil)
	if _, ok := sendgrid.(*SendGridMailer); !ok {
		t.Errorf("expected a sendgrid mailer, got %T", sendgrid)
	}
}
