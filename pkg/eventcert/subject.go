package eventcert

import "time"

type Participant struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	RegistrationNumber   string     `json:"registrationNumber"`
	AttendanceVerifiedAt *time.Time `json:"attendanceVerifiedAt"`
}

func (p Participant) AttendanceVerified() bool {
	return p.AttendanceVerifiedAt != nil && !p.AttendanceVerifiedAt.IsZero()
}

type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Location  string    `json:"location"`
}

// TokenValuesFor builds the substitution table of one render.
func TokenValuesFor(p Participant, e Event, certificateNumber string, issuedAt time.Time, locale Locale) TokenValues {
	values := TokenValues{
		TokenParticipantName:    p.Name,
		TokenEventName:          e.Title,
		TokenEventLocation:      e.Location,
		TokenRegistrationNumber: p.RegistrationNumber,
		TokenCertificateNumber:  certificateNumber,
	}
	if !e.Date.IsZero() {
		values[TokenEventDate] = FormatLongDate(e.Date, locale)
	}
	if !issuedAt.IsZero() {
		values[TokenIssuedDate] = FormatLongDate(issuedAt, locale)
	}
	return values
}

// SampleParticipant and SampleEvent fill template previews.
var (
	SampleParticipant = Participant{ID: "preview", Name: "Jane Doe", Email: "jane.doe@example.com", RegistrationNumber: "REG-0001"}
	SampleEvent       = Event{ID: "preview", Title: "Sample Event", Date: time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC), Location: "Jakarta"}
)
