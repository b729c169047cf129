package dating_test

import (
	"errors"
	"testing"
	"time"

	"datefixer/internal/dating"
)

var allConfidences = []dating.Confidence{
	dating.None, dating.Decade, dating.Year, dating.Month,
	dating.Day, dating.Hour, dating.Minute, dating.Second,
}

func TestCompareIsStrictTotalOrder(t *testing.T) {
	for i, a := range allConfidences {
		for j, b := range allConfidences {
			got := dating.Compare(a, b)
			var want int
			switch {
			case i < j:
				want = -1
			case i > j:
				want = 1
			}
			if got != want {
				t.Fatalf("Compare(%s, %s) = %d, want %d", a, b, got, want)
			}
			if a.Less(b) && b.Less(a) {
				t.Fatalf("%s and %s are both less than each other", a, b)
			}
			if (i == j) == (a.Less(b) || b.Less(a)) {
				t.Fatalf("trichotomy violated for %s and %s", a, b)
			}
		}
	}
}

func TestNoneIsMinimum(t *testing.T) {
	for _, c := range allConfidences[1:] {
		if !dating.None.Less(c) {
			t.Fatalf("expected None < %s", c)
		}
		if dating.Max(dating.None, c) != c {
			t.Fatalf("Max(None, %s) should be %s", c, c)
		}
	}
	if dating.Max(dating.Second, dating.Day) != dating.Second {
		t.Fatal("Max should return the more specific confidence")
	}
}

func TestParseConfidenceRoundTripsNames(t *testing.T) {
	for _, c := range allConfidences {
		parsed, err := dating.ParseConfidence(c.String())
		if err != nil {
			t.Fatalf("ParseConfidence(%q): %v", c.String(), err)
		}
		if parsed != c {
			t.Fatalf("ParseConfidence(%q) = %s", c.String(), parsed)
		}
	}
	if _, err := dating.ParseConfidence("Fortnight"); err == nil {
		t.Fatal("expected error for unknown confidence")
	}
}

func TestConfidenceOf(t *testing.T) {
	cases := []struct {
		name string
		when time.Time
		want dating.Confidence
	}{
		{"floor", dating.Floor, dating.None},
		{"second", time.Date(2021, 6, 21, 12, 59, 30, 0, time.UTC), dating.Second},
		{"minute", time.Date(2021, 6, 21, 12, 59, 0, 0, time.UTC), dating.Minute},
		{"hour", time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC), dating.Hour},
		{"day", time.Date(2021, 6, 21, 0, 0, 0, 0, time.UTC), dating.Day},
		{"month", time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), dating.Month},
		{"year", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), dating.Year},
		{"decade", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), dating.Decade},
		{"epoch is not floor", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), dating.Decade},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := dating.ConfidenceOf(tc.when); got != tc.want {
				t.Fatalf("ConfidenceOf(%s) = %s, want %s", tc.when, got, tc.want)
			}
		})
	}
}

func TestFromFieldsRejectsInvalidCalendarValues(t *testing.T) {
	invalid := [][6]int{
		{2019, 13, 18, 13, 8, 41},
		{2019, 2, 30, 0, 0, 0},
		{2019, 0, 1, 0, 0, 0},
		{2019, 1, 1, 24, 0, 0},
		{2019, 1, 1, 0, 60, 0},
		{2019, 1, 1, 0, 0, 60},
	}
	for _, f := range invalid {
		if _, err := dating.FromFields(f[0], f[1], f[2], f[3], f[4], f[5], dating.Second); !errors.Is(err, dating.ErrInvalidDate) {
			t.Fatalf("FromFields(%v) err = %v, want ErrInvalidDate", f, err)
		}
	}

	g, err := dating.FromFields(2020, 2, 29, 23, 59, 59, dating.Second)
	if err != nil {
		t.Fatalf("leap day rejected: %v", err)
	}
	if g.Time.Format(dating.Layout) != "2020-02-29 23:59:59" {
		t.Fatalf("unexpected time %s", g.Time.Format(dating.Layout))
	}
}

func TestFromUnixMilliTruncatesToSeconds(t *testing.T) {
	g := dating.FromUnixMilli(1624280370243, dating.Second)
	if got := g.Time.Format(dating.Layout); got != "2021-06-21 12:59:30" {
		t.Fatalf("FromUnixMilli = %s", got)
	}
	if g.String() != "2021-06-21 12:59:30 (confidence: Second)" {
		t.Fatalf("unexpected String(): %s", g.String())
	}
}

func TestWallClockKeepsLocalReading(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	in := time.Date(2024, 3, 1, 10, 30, 15, 500, zone)
	got := dating.WallClock(in)
	want := time.Date(2024, 3, 1, 10, 30, 15, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("WallClock = %s, want %s", got, want)
	}
}
