package eventcert

import (
	"fmt"
	"time"
)

type Locale string

const (
	LocaleEnglish    Locale = "en"
	LocaleIndonesian Locale = "id"
)

var monthNames = map[Locale][12]string{
	LocaleEnglish: {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	LocaleIndonesian: {
		"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember",
	},
}

func (l Locale) IsSupported() bool {
	_, ok := monthNames[l]
	return ok
}

// FormatLongDate renders day, full month name and year, e.g. "2 January 2026".
// Unsupported locales fall back to English.
func FormatLongDate(t time.Time, locale Locale) string {
	names, ok := monthNames[locale]
	if !ok {
		names = monthNames[LocaleEnglish]
	}
	return fmt.Sprintf("%d %s %d", t.Day(), names[t.Month()-1], t.Year())
}
