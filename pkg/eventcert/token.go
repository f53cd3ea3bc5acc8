package eventcert

import "regexp"

const (
	TokenParticipantName    = "PARTICIPANT_NAME"
	TokenEventName          = "EVENT_NAME"
	TokenEventDate          = "EVENT_DATE"
	TokenEventLocation      = "EVENT_LOCATION"
	TokenCertificateNumber  = "CERTIFICATE_NUMBER"
	TokenIssuedDate         = "ISSUED_DATE"
	TokenRegistrationNumber = "REGISTRATION_NUMBER"
)

// Matches {{TOKEN}} first so a double braced token never degrades into a single braced one.
var tokenPattern = regexp.MustCompile(`\{\{([A-Z][A-Z0-9_]*)\}\}|\{([A-Z][A-Z0-9_]*)\}`)

// TokenValues maps a token name (without braces) to its replacement.
type TokenValues map[string]string

// Substitute replaces every recognized token in a single pass. Unknown tokens are kept
// verbatim and replacement values are never rescanned.
func Substitute(content string, values TokenValues) string {
	if len(values) == 0 {
		return content
	}

	return tokenPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := tokenPattern.FindStringSubmatch(match)
		name := sub[1]
		if name == "" {
			name = sub[2]
		}
		if v, ok := values[name]; ok {
			return v
		}
		return match
	})
}

// TokensIn lists the token names found in content, in order of appearance.
func TokensIn(content string) []string {
	var out []string
	for _, sub := range tokenPattern.FindAllStringSubmatch(content, -1) {
		if sub[1] != "" {
			out = append(out, sub[1])
		} else {
			out = append(out, sub[2])
		}
	}
	return out
}
