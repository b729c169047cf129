package extract

import (
	"regexp"

	"datefixer/internal/dating"
)

var messagingPattern = regexp.MustCompile(`IMG-(\d{4})(\d{2})(\d{2})-WA\d+`)

// Messaging matches WhatsApp-style names such as IMG-20250127-WA0006.jpg. The
// name carries no time of day, so guesses have day confidence.
type Messaging struct{}

// NewMessaging returns the messaging-app extractor.
func NewMessaging() Messaging { return Messaging{} }

// Name implements Extractor.
func (Messaging) Name() string { return "messaging" }

// Match implements Extractor.
func (Messaging) Match(_ string, name string) (dating.Guess, bool) {
	m := messagingPattern.FindStringSubmatch(name)
	if m == nil {
		return dating.Guess{}, false
	}
	f := atois(m[1:])
	g, err := dating.FromFields(f[0], f[1], f[2], 0, 0, 0, dating.Day)
	if err != nil {
		return dating.Guess{}, false
	}
	return g, true
}
