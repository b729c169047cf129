package reconcile_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"datefixer/internal/dating"
	"datefixer/internal/extract"
	"datefixer/internal/reconcile"
)

var (
	now      = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	naiveNow = now
)

func at(layout string) time.Time {
	t, err := time.Parse(dating.Layout, layout)
	if err != nil {
		panic(err)
	}
	return t
}

func guess(ts string, c dating.Confidence) *extract.Result {
	return &extract.Result{Guess: dating.NewGuess(at(ts), c), Extractor: "test"}
}

func ptr(t time.Time) *time.Time { return &t }

func TestDecide(t *testing.T) {
	normalMod := at("2020-01-01 10:00:00")
	cases := []struct {
		name string
		in   reconcile.Inputs
		want reconcile.Plan
	}{
		{
			name: "future modified time reset to now",
			in:   reconcile.Inputs{ModTime: now.Add(72 * time.Hour), Now: now, ModifiedLimit: now.Add(24 * time.Hour)},
			want: reconcile.Plan{SetModTime: true, ModTime: now, ModTimeReason: reconcile.ReasonModTimeFuture},
		},
		{
			name: "future check disabled",
			in:   reconcile.Inputs{ModTime: now.Add(72 * time.Hour), Now: now},
			want: reconcile.Plan{},
		},
		{
			name: "modified time before floor clamped",
			in:   reconcile.Inputs{ModTime: time.Unix(0, 0).UTC(), Now: now},
			want: reconcile.Plan{SetModTime: true, ModTime: dating.Floor, ModTimeReason: reconcile.ReasonModTimeFloor},
		},
		{
			name: "unwritable format ignores guess",
			in:   reconcile.Inputs{ModTime: normalMod, Now: now, Guess: guess("2019-08-18 13:08:41", dating.Second)},
			want: reconcile.Plan{},
		},
		{
			name: "guess alone is adopted",
			in:   reconcile.Inputs{ModTime: normalMod, Now: now, Writable: true, Guess: guess("2020-10-01 00:00:00", dating.Month)},
			want: reconcile.Plan{
				WriteMetadata:  true,
				Metadata:       dating.NewGuess(at("2020-10-01 00:00:00"), dating.Month),
				MetadataReason: reconcile.ReasonAdoptGuess,
			},
		},
		{
			name: "nothing known",
			in:   reconcile.Inputs{ModTime: normalMod, Now: now, Writable: true},
			want: reconcile.Plan{Unresolved: true},
		},
		{
			name: "existing more precise than guess",
			in: reconcile.Inputs{
				ModTime: normalMod, Now: now, Writable: true,
				Existing: ptr(at("2019-08-18 13:08:41")),
				Guess:    guess("2019-08-18 00:00:00", dating.Day),
			},
			want: reconcile.Plan{ExistingConfidence: dating.Second},
		},
		{
			name: "more confident guess overwrites",
			in: reconcile.Inputs{
				ModTime: normalMod, Now: now, Writable: true,
				Existing: ptr(at("2019-08-18 00:00:00")),
				Guess:    guess("2019-08-18 13:08:41", dating.Second),
			},
			want: reconcile.Plan{
				WriteMetadata:      true,
				Metadata:           dating.NewGuess(at("2019-08-18 13:08:41"), dating.Second),
				MetadataReason:     reconcile.ReasonMoreConfident,
				ExistingConfidence: dating.Day,
			},
		},
		{
			name: "equal confidence keeps existing",
			in: reconcile.Inputs{
				ModTime: normalMod, Now: now, Writable: true,
				Existing: ptr(at("2019-08-18 13:08:41")),
				Guess:    guess("2021-01-02 03:04:05", dating.Second),
			},
			want: reconcile.Plan{ExistingConfidence: dating.Second},
		},
		{
			name: "identical value not rewritten at higher confidence",
			in: reconcile.Inputs{
				ModTime: normalMod, Now: now, Writable: true,
				Existing: ptr(at("2020-10-10 00:00:00")),
				Guess:    guess("2020-10-10 00:00:00", dating.Second),
			},
			want: reconcile.Plan{ExistingConfidence: dating.Day},
		},
		{
			name: "floor sentinel yields to any guess",
			in: reconcile.Inputs{
				ModTime: normalMod, Now: now, Writable: true,
				Existing: ptr(dating.Floor),
				Guess:    guess("2020-01-01 00:00:00", dating.Decade),
			},
			want: reconcile.Plan{
				WriteMetadata:      true,
				Metadata:           dating.NewGuess(at("2020-01-01 00:00:00"), dating.Decade),
				MetadataReason:     reconcile.ReasonMoreConfident,
				ExistingConfidence: dating.None,
			},
		},
		{
			name: "future metadata date replaced by now",
			in: reconcile.Inputs{
				ModTime: normalMod, Now: now, Writable: true, NaiveNow: naiveNow,
				Existing:      ptr(at("2031-05-05 05:05:05")),
				MetadataLimit: naiveNow.Add(24 * time.Hour),
			},
			want: reconcile.Plan{
				WriteMetadata:      true,
				Metadata:           dating.NewGuess(naiveNow, dating.None),
				MetadataReason:     reconcile.ReasonFutureDate,
				ExistingConfidence: dating.Second,
			},
		},
		{
			name: "more confident guess supersedes future fix",
			in: reconcile.Inputs{
				ModTime: normalMod, Now: now, Writable: true, NaiveNow: naiveNow,
				Existing:      ptr(at("2030-01-01 00:00:00")),
				MetadataLimit: naiveNow,
				Guess:         guess("2019-08-18 13:08:41", dating.Second),
			},
			want: reconcile.Plan{
				WriteMetadata:      true,
				Metadata:           dating.NewGuess(at("2019-08-18 13:08:41"), dating.Second),
				MetadataReason:     reconcile.ReasonMoreConfident,
				ExistingConfidence: dating.Decade,
			},
		},
		{
			name: "both fixes at once",
			in: reconcile.Inputs{
				ModTime: time.Unix(0, 0).UTC(), Now: now, Writable: true,
				Guess: guess("2019-08-18 13:08:41", dating.Second),
			},
			want: reconcile.Plan{
				SetModTime: true, ModTime: dating.Floor, ModTimeReason: reconcile.ReasonModTimeFloor,
				WriteMetadata:  true,
				Metadata:       dating.NewGuess(at("2019-08-18 13:08:41"), dating.Second),
				MetadataReason: reconcile.ReasonAdoptGuess,
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := reconcile.Decide(tc.in)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanAction(t *testing.T) {
	if got := (reconcile.Plan{}).Action(); got != reconcile.ActionNone || got.String() != "none" {
		t.Fatalf("empty plan action = %v", got)
	}
	both := reconcile.Plan{WriteMetadata: true, SetModTime: true}.Action()
	if !both.Has(reconcile.ActionWriteMetadata) || !both.Has(reconcile.ActionWriteFilesystem) {
		t.Fatalf("action = %v", both)
	}
	if both.String() != "metadata+filesystem" {
		t.Fatalf("String() = %q", both.String())
	}
	if both.Has(reconcile.ActionNone) {
		t.Fatal("Has(ActionNone) should be false")
	}
}
