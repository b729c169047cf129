package reconcile

import (
	"time"

	"datefixer/internal/dating"
	"datefixer/internal/extract"
)

// Inputs is everything Decide looks at for one file.
type Inputs struct {
	// ModTime is the file's modification instant.
	ModTime time.Time
	// Now is the reference instant of the run.
	Now time.Time
	// ModifiedLimit is the latest acceptable modification instant. Zero
	// disables the future check.
	ModifiedLimit time.Time

	// Writable reports whether exiftool can write the file's format. The
	// remaining fields are ignored when it is false.
	Writable bool
	Guess    *extract.Result
	Existing *time.Time
	// MetadataLimit is the latest acceptable naive metadata date. Zero
	// disables the future check.
	MetadataLimit time.Time
	// NaiveNow replaces future metadata dates.
	NaiveNow time.Time
}

// MetadataReason explains a planned metadata write.
type MetadataReason string

const (
	ReasonAdoptGuess    MetadataReason = "adopt_guess"
	ReasonMoreConfident MetadataReason = "more_confident_guess"
	ReasonFutureDate    MetadataReason = "future_date"
)

// ModTimeReason explains a planned modification-time write.
type ModTimeReason string

const (
	ReasonModTimeFuture ModTimeReason = "future_modified_time"
	ReasonModTimeFloor  ModTimeReason = "before_floor"
)

// Plan is the outcome of Decide.
type Plan struct {
	SetModTime    bool
	ModTime       time.Time
	ModTimeReason ModTimeReason

	WriteMetadata  bool
	Metadata       dating.Guess
	MetadataReason MetadataReason

	// ExistingConfidence is meaningful when Inputs.Existing was set.
	ExistingConfidence dating.Confidence
	// Unresolved is set when a writable file had neither an existing date
	// nor a guess.
	Unresolved bool
}

// Action returns the writes the plan schedules.
func (p Plan) Action() Action {
	a := ActionNone
	if p.WriteMetadata {
		a |= ActionWriteMetadata
	}
	if p.SetModTime {
		a |= ActionWriteFilesystem
	}
	return a
}

// Decide applies the reconciliation rules to in.
func Decide(in Inputs) Plan {
	var p Plan

	switch {
	case !in.ModifiedLimit.IsZero() && in.ModTime.After(in.ModifiedLimit):
		p.SetModTime, p.ModTime, p.ModTimeReason = true, in.Now, ReasonModTimeFuture
	case in.ModTime.Before(dating.Floor):
		p.SetModTime, p.ModTime, p.ModTimeReason = true, dating.Floor, ReasonModTimeFloor
	}

	if !in.Writable {
		return p
	}

	if in.Existing == nil {
		if in.Guess != nil {
			p.WriteMetadata, p.Metadata, p.MetadataReason = true, in.Guess.Guess, ReasonAdoptGuess
		} else {
			p.Unresolved = true
		}
		return p
	}

	existing := dating.NewGuess(*in.Existing, dating.ConfidenceOf(*in.Existing))
	p.ExistingConfidence = existing.Confidence

	if !in.MetadataLimit.IsZero() && existing.After(in.MetadataLimit) {
		p.WriteMetadata = true
		p.Metadata = dating.NewGuess(in.NaiveNow, dating.None)
		p.MetadataReason = ReasonFutureDate
	}

	// Equal confidence never overwrites, and an identical value is never
	// rewritten.
	if g := in.Guess; g != nil &&
		dating.Compare(g.Guess.Confidence, existing.Confidence) > 0 &&
		!g.Guess.SameTime(existing) {
		p.WriteMetadata, p.Metadata, p.MetadataReason = true, g.Guess, ReasonMoreConfident
	}
	return p
}
