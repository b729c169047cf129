package dating

import (
	"fmt"
	"time"
)

// Confidence expresses the precision of a date guess. Values are totally
// ordered; None is the minimum.
type Confidence int

const (
	None Confidence = iota
	Decade
	Year
	Month
	Day
	Hour
	Minute
	Second
)

var confidenceNames = [...]string{
	None:   "None",
	Decade: "Decade",
	Year:   "Year",
	Month:  "Month",
	Day:    "Day",
	Hour:   "Hour",
	Minute: "Minute",
	Second: "Second",
}

// String returns the confidence name.
func (c Confidence) String() string {
	if c < None || c > Second {
		return fmt.Sprintf("Confidence(%d)", int(c))
	}
	return confidenceNames[c]
}

// Less reports whether c is strictly less specific than other.
func (c Confidence) Less(other Confidence) bool {
	return c < other
}

// Compare returns -1, 0 or +1 depending on whether a is less specific than,
// equal to, or more specific than b.
func Compare(a, b Confidence) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Max returns the more specific of a and b.
func Max(a, b Confidence) Confidence {
	if a < b {
		return b
	}
	return a
}

// ParseConfidence maps a confidence name back to its value.
func ParseConfidence(name string) (Confidence, error) {
	for c, n := range confidenceNames {
		if n == name {
			return Confidence(c), nil
		}
	}
	return None, fmt.Errorf("unknown confidence %q", name)
}

// Floor is the sentinel date that marks "no information". Modification times
// before it are clamped to it, and a metadata date equal to it carries None
// confidence.
var Floor = time.Date(1970, time.January, 2, 0, 0, 0, 0, time.UTC)

// ConfidenceOf derives the confidence of an existing timestamp from the
// finest field that differs from its default value.
func ConfidenceOf(t time.Time) Confidence {
	t = t.UTC()
	switch {
	case t.Equal(Floor):
		return None
	case t.Second() != 0:
		return Second
	case t.Minute() != 0:
		return Minute
	case t.Hour() != 0:
		return Hour
	case t.Day() != 1:
		return Day
	case t.Month() != time.January:
		return Month
	case t.Year()%10 != 0:
		return Year
	default:
		return Decade
	}
}
