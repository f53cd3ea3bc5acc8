package eventcert

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultNumberPrefix = "CERT"
	// No look-alike characters (0/O, 1/I)
	numberAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	numberLength   = 10
)

// NumberGenerator mints human readable certificate numbers.
type NumberGenerator func(issuedAt time.Time) (string, error)

// NewNumberGenerator returns a generator of numbers shaped <prefix>-<year>-<random>.
func NewNumberGenerator(prefix string) NumberGenerator {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	return func(issuedAt time.Time) (string, error) {
		id, err := gonanoid.Generate(numberAlphabet, numberLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate certificate number: %w", err)
		}
		return fmt.Sprintf("%s-%d-%s", prefix, issuedAt.Year(), id), nil
	}
}
