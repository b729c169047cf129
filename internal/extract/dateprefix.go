package extract

import (
	"regexp"
	"strconv"

	"datefixer/internal/dating"
)

// Separators between fields may be any of space, '-', '_', ':' or '.', and
// need not be the same throughout one name.
var datePrefixPattern = regexp.MustCompile(
	`^(?P<year>\d{4})` +
		`(?P<w1>[-_\s:.])?(?P<month>\d{2}|\pL{3,9})?` +
		`(?P<w2>[-_\s:.])?(?P<day>\d{2})?` +
		`(?P<w3>[-_\s:.])?(?P<hour>\d{2})?` +
		`(?P<w4>[-_\s:.])?(?P<minute>\d{2})?` +
		`(?P<w5>[-_\s:.])?(?P<second>\d{2})?`)

var (
	groupYear   = datePrefixPattern.SubexpIndex("year")
	groupMonth  = datePrefixPattern.SubexpIndex("month")
	groupDay    = datePrefixPattern.SubexpIndex("day")
	groupHour   = datePrefixPattern.SubexpIndex("hour")
	groupMinute = datePrefixPattern.SubexpIndex("minute")
	groupSecond = datePrefixPattern.SubexpIndex("second")
	separators  = []int{
		datePrefixPattern.SubexpIndex("w1"),
		datePrefixPattern.SubexpIndex("w2"),
		datePrefixPattern.SubexpIndex("w3"),
		datePrefixPattern.SubexpIndex("w4"),
		datePrefixPattern.SubexpIndex("w5"),
	}
)

// DatePrefix matches stems that start with a date, optionally followed by a
// time: 2020-10-10 211056.png, 20201010_20_25_57 a.png, 2020-Mar-10.png,
// 2024-03-23_21.45.17_mull.jpg. Each field after the year is only considered
// when the previous one parsed, and confidence is the finest field present.
//
// A bare year is too weak a signal: "2563.jpg" and "2563a.jpg" do not match,
// while "2020 a.png" does because a separator follows the year.
type DatePrefix struct{}

// NewDatePrefix returns the generic date-prefix extractor.
func NewDatePrefix() DatePrefix { return DatePrefix{} }

// Name implements Extractor.
func (DatePrefix) Name() string { return "date_prefix" }

// Match implements Extractor.
func (DatePrefix) Match(path, _ string) (dating.Guess, bool) {
	s := stem(path)
	idx := datePrefixPattern.FindStringSubmatchIndex(s)
	if idx == nil {
		return dating.Guess{}, false
	}
	group := func(n int) (string, bool) {
		if idx[2*n] < 0 {
			return "", false
		}
		return s[idx[2*n]:idx[2*n+1]], true
	}

	yearText, _ := group(groupYear)
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return dating.Guess{}, false
	}
	confidence := dating.Year
	month, day, hour, minute, second := 1, 1, 0, 0, 0

	// Each later field only counts once the previous one parsed.
	fields := []struct {
		group int
		dst   *int
		conf  dating.Confidence
		parse func(string) (int, bool)
	}{
		{groupMonth, &month, dating.Month, parseMonth},
		{groupDay, &day, dating.Day, parseNumber},
		{groupHour, &hour, dating.Hour, parseNumber},
		{groupMinute, &minute, dating.Minute, parseNumber},
		{groupSecond, &second, dating.Second, parseNumber},
	}
	for _, f := range fields {
		text, ok := group(f.group)
		if !ok {
			break
		}
		value, ok := f.parse(text)
		if !ok {
			break
		}
		*f.dst = value
		confidence = f.conf
	}

	if confidence == dating.Year && !anySeparator(idx) {
		return dating.Guess{}, false
	}

	g, err := dating.FromFields(year, month, day, hour, minute, second, confidence)
	if err != nil {
		return dating.Guess{}, false
	}
	return g, true
}

func anySeparator(idx []int) bool {
	for _, n := range separators {
		if idx[2*n] >= 0 {
			return true
		}
	}
	return false
}

func parseNumber(text string) (int, bool) {
	n, err := strconv.Atoi(text)
	return n, err == nil
}

func atois(values []string) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i], _ = strconv.Atoi(v)
	}
	return out
}
