package extract

import (
	"regexp"
	"strconv"

	"github.com/google/uuid"

	"datefixer/internal/dating"
)

var (
	millisPattern     = regexp.MustCompile(`^(\d{13})`)
	identifierPattern = regexp.MustCompile(`^(\d+)-([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})`)
)

// MillisEpoch matches names that start with a 13 digit Unix millisecond
// timestamp, e.g. 1624280370243_postfix.jpg.
type MillisEpoch struct{}

// NewMillisEpoch returns the millisecond-epoch extractor.
func NewMillisEpoch() MillisEpoch { return MillisEpoch{} }

// Name implements Extractor.
func (MillisEpoch) Name() string { return "millis_epoch" }

// Match implements Extractor. Identifier-tagged names belong to
// IdentifierEpoch and are declined here.
func (MillisEpoch) Match(_ string, name string) (dating.Guess, bool) {
	m := millisPattern.FindStringSubmatch(name)
	if m == nil {
		return dating.Guess{}, false
	}
	if _, tagged := matchIdentifier(name); tagged {
		return dating.Guess{}, false
	}
	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return dating.Guess{}, false
	}
	return dating.FromUnixMilli(ms, dating.Second), true
}

// IdentifierEpoch matches upload names made of a millisecond timestamp, a
// dash and a UUID, e.g. 1606470461418-49b19a16-01a9-4a11-9789-e3005d827362.jpg.
type IdentifierEpoch struct{}

// NewIdentifierEpoch returns the identifier-tagged epoch extractor.
func NewIdentifierEpoch() IdentifierEpoch { return IdentifierEpoch{} }

// Name implements Extractor.
func (IdentifierEpoch) Name() string { return "identifier_epoch" }

// Match implements Extractor.
func (IdentifierEpoch) Match(_ string, name string) (dating.Guess, bool) {
	digits, ok := matchIdentifier(name)
	if !ok {
		return dating.Guess{}, false
	}
	ms, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return dating.Guess{}, false
	}
	return dating.FromUnixMilli(ms, dating.Second), true
}

func matchIdentifier(name string) (string, bool) {
	m := identifierPattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	if _, err := uuid.Parse(m[2]); err != nil {
		return "", false
	}
	return m[1], true
}
