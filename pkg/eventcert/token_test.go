package eventcert

import (
	"reflect"
	"testing"
	"time"
)

func TestSubstitute(t *testing.T) {
	values := TokenValues{
		TokenParticipantName: "Jane Doe",
		TokenEventName:       "GoConf",
		TokenEventDate:       "2 January 2026",
	}

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{name: "No tokens", content: "Certificate of Attendance", expected: "Certificate of Attendance"},
		{name: "Double braces", content: "Diberikan kepada {{PARTICIPANT_NAME}}", expected: "Diberikan kepada Jane Doe"},
		{name: "Single braces", content: "Diberikan kepada {PARTICIPANT_NAME}", expected: "Diberikan kepada Jane Doe"},
		{name: "Event name both spellings", content: "{{EVENT_NAME}} / {EVENT_NAME}", expected: "GoConf / GoConf"},
		{name: "Event date", content: "on {{EVENT_DATE}}", expected: "on 2 January 2026"},
		{name: "Unknown double brace token", content: "{{FOO}} stays", expected: "{{FOO}} stays"},
		{name: "Unknown single brace token", content: "{FOO} stays", expected: "{FOO} stays"},
		{name: "Lower case is not a token", content: "{{participant_name}}", expected: "{{participant_name}}"},
		{name: "Empty", content: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Substitute(tt.content, values)
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSubstituteDoesNotRescanValues(t *testing.T) {
	values := TokenValues{
		TokenParticipantName: "{{EVENT_NAME}}",
		TokenEventName:       "GoConf",
	}

	got := Substitute("{{PARTICIPANT_NAME}}", values)
	if got != "{{EVENT_NAME}}" {
		t.Errorf("expected the substituted value verbatim, got %q", got)
	}
}

func TestTokensIn(t *testing.T) {
	got := TokensIn("{{PARTICIPANT_NAME}} at {EVENT_NAME} on {{EVENT_DATE}}")
	expected := []string{TokenParticipantName, TokenEventName, TokenEventDate}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestTokenValuesFor(t *testing.T) {
	p := Participant{Name: "Jane Doe", RegistrationNumber: "REG-7"}
	e := Event{Title: "GoConf", Date: time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC), Location: "Bandung"}
	issued := time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)

	got := TokenValuesFor(p, e, "CERT-2026-ABCDEFGHJK", issued, LocaleIndonesian)
	expected := TokenValues{
		TokenParticipantName:    "Jane Doe",
		TokenEventName:          "GoConf",
		TokenEventDate:          "5 Maret 2026",
		TokenEventLocation:      "Bandung",
		TokenCertificateNumber:  "CERT-2026-ABCDEFGHJK",
		TokenIssuedDate:         "6 Maret 2026",
		TokenRegistrationNumber: "REG-7",
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestFormatLongDate(t *testing.T) {
	date := time.Date(2026, time.January, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		locale   Locale
		expected string
	}{
		{locale: LocaleEnglish, expected: "2 January 2026"},
		{locale: LocaleIndonesian, expected: "2 Januari 2026"},
		{locale: Locale("fr"), expected: "2 January 2026"},
	}

	for _, tt := range tests {
		t.Run(string(tt.locale), func(t *testing.T) {
			if got := FormatLongDate(date, tt.locale); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
