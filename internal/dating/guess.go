package dating

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the timestamp layout used in logs and in the metadata tool's
// date format.
const Layout = "2006-01-02 15:04:05"

// ErrInvalidDate reports calendar fields that do not name a real instant.
var ErrInvalidDate = errors.New("invalid calendar date")

// Guess is a timestamp paired with the confidence it was derived with. Times
// are naive: they always carry the UTC location and no offset semantics.
type Guess struct {
	Time       time.Time
	Confidence Confidence
}

// NewGuess builds a guess from an existing instant, dropping sub-second
// precision and any location.
func NewGuess(t time.Time, confidence Confidence) Guess {
	return Guess{Time: Naive(t), Confidence: confidence}
}

// FromFields builds a guess from calendar fields. Unlike time.Date it refuses
// out-of-range values instead of normalising them, so month 13 or
// February 30 fail.
func FromFields(year, month, day, hour, minute, second int, confidence Confidence) (Guess, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return Guess{}, fmt.Errorf("%w: %04d-%02d-%02d %02d:%02d:%02d", ErrInvalidDate, year, month, day, hour, minute, second)
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Guess{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return Guess{Time: t, Confidence: confidence}, nil
}

// FromUnixMilli interprets ms as milliseconds since the Unix epoch, truncated
// to whole seconds.
func FromUnixMilli(ms int64, confidence Confidence) Guess {
	return Guess{Time: time.Unix(ms/1000, 0).UTC(), Confidence: confidence}
}

// Naive strips sub-second precision and normalises the location to UTC
// without shifting the wall clock of UTC instants.
func Naive(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// SameTime reports whether both guesses name the same instant, ignoring
// confidence.
func (g Guess) SameTime(other Guess) bool {
	return g.Time.Equal(other.Time)
}

// After reports whether the guess lies strictly after t.
func (g Guess) After(t time.Time) bool {
	return g.Time.After(t)
}

// String renders the guess for logs.
func (g Guess) String() string {
	return fmt.Sprintf("%s (confidence: %s)", g.Time.Format(Layout), g.Confidence)
}

// MaxTime is a reference time later than any guess the extractors can
// produce; it disables future-date rejection.
var MaxTime = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// WallClock returns the wall-clock reading of t in its own location as a
// naive time. Reference times compared with naive metadata dates go through
// here.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
