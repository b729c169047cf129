package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"
	"unicode"

	"datefixer/internal/dating"
	"datefixer/internal/extract"
	"datefixer/internal/logging"
	"datefixer/internal/services"
)

// Gateway is the slice of the metadata gateway the engine uses.
type Gateway interface {
	ReadDate(ctx context.Context, path string) (time.Time, bool, error)
	WriteDate(ctx context.Context, path string, t time.Time) error
	Repair(ctx context.Context, path string) error
}

// Extensions reports which formats the gateway can write.
type Extensions interface {
	Contains(ext string) bool
}

// Recorder persists applied changes. Failures are logged and never fail the
// reconciliation.
type Recorder interface {
	Record(ctx context.Context, change Change) error
}

// ChangeKind distinguishes the two kinds of write.
type ChangeKind string

const (
	ChangeMetadata ChangeKind = "metadata"
	ChangeModTime  ChangeKind = "modified_time"
)

// Change describes one write, attempted or hypothetical.
type Change struct {
	Path string
	Kind ChangeKind
	// Old is the value before the write; zero when there was none.
	Old           time.Time
	New           time.Time
	OldConfidence dating.Confidence
	NewConfidence dating.Confidence
	// Source is the extractor or rule that produced New.
	Source string
	DryRun bool
	Err    error
}

// Settings are the run-wide decision parameters.
type Settings struct {
	// Now is the reference instant. Zero means time.Now at construction.
	Now time.Time
	// FutureModified and FutureMetadata are how far past Now a date may lie.
	// Negative values disable the corresponding check.
	FutureModified time.Duration
	FutureMetadata time.Duration
	DryRun         bool
	// RepairOnError strips and rebuilds metadata once after a failed write,
	// then retries the write once.
	RepairOnError bool
}

// Config wires an Engine. Everything but Gateway is shared between workers.
type Config struct {
	Gateway    Gateway
	Extensions Extensions
	Chain      *extract.Chain
	FS         FS
	Settings   Settings
	Stats      *Stats
	Recorder   Recorder
	Logger     *slog.Logger
}

// Engine reconciles one file at a time. It is owned by one worker because
// its gateway is.
type Engine struct {
	gateway  Gateway
	exts     Extensions
	chain    *extract.Chain
	fs       FS
	settings Settings
	stats    *Stats
	recorder Recorder
	logger   *slog.Logger

	naiveNow      time.Time
	modifiedLimit time.Time
	metadataLimit time.Time
}

// NewEngine fills in defaults for unset Config fields.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		gateway:  cfg.Gateway,
		exts:     cfg.Extensions,
		chain:    cfg.Chain,
		fs:       cfg.FS,
		settings: cfg.Settings,
		stats:    cfg.Stats,
		recorder: cfg.Recorder,
		logger:   logging.NewComponentLogger(cfg.Logger, "reconcile"),
	}
	if e.chain == nil {
		e.chain = extract.Default()
	}
	if e.fs == nil {
		e.fs = OSFS{}
	}
	if e.stats == nil {
		e.stats = &Stats{}
	}
	if e.settings.Now.IsZero() {
		e.settings.Now = time.Now()
	}
	e.naiveNow = dating.WallClock(e.settings.Now)
	if e.settings.FutureModified >= 0 {
		e.modifiedLimit = e.settings.Now.Add(e.settings.FutureModified)
	}
	if e.settings.FutureMetadata >= 0 {
		e.metadataLimit = e.naiveNow.Add(e.settings.FutureMetadata)
	}
	return e
}

// Stats returns the counters the engine updates.
func (e *Engine) Stats() *Stats { return e.stats }

// Reconcile inspects path and applies whatever fixes the rules call for. The
// returned Action lists the writes that succeeded (or would have, in a dry
// run). Failures are wrapped in services.FileError.
func (e *Engine) Reconcile(ctx context.Context, path string) (Action, error) {
	ctx = services.WithFilePath(ctx, path)
	logger := logging.WithContext(ctx, e.logger)
	e.stats.FilesProcessed.Add(1)

	modTime, err := e.fs.ModTime(path)
	if err != nil {
		e.stats.Errors.Add(1)
		return ActionNone, services.WithPath(path, err)
	}

	in := Inputs{
		ModTime:       modTime,
		Now:           e.settings.Now,
		ModifiedLimit: e.modifiedLimit,
		MetadataLimit: e.metadataLimit,
		NaiveNow:      e.naiveNow,
	}
	in.Writable = e.exts != nil && e.exts.Contains(filepath.Ext(path))

	var errs []error
	if in.Writable {
		if res, ok := e.guess(path); ok {
			logger.Debug("guessed date",
				logging.String("date", res.Guess.Time.Format(dating.Layout)),
				logging.String("confidence", res.Guess.Confidence.String()),
				logging.String("extractor", res.Extractor),
			)
			in.Guess = &res
		}
		existing, ok, err := e.gateway.ReadDate(ctx, path)
		switch {
		case err != nil:
			e.stats.Errors.Add(1)
			errs = append(errs, err)
			logging.ErrorWithContext(logger, "reading metadata date failed", "metadata_read_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorKind, services.Classify(err)),
			)
			// An unparsable stored value counts as no date, so a guess may
			// replace it. Transport and tool failures leave metadata alone;
			// the modification-time rule still runs.
			if !errors.Is(err, services.ErrProtocol) {
				in.Writable = false
			}
		case ok:
			in.Existing = &existing
			logger.Debug("existing metadata date",
				logging.String("date", existing.Format(dating.Layout)),
				logging.String("confidence", dating.ConfidenceOf(existing).String()),
			)
		}
	} else {
		e.stats.FilesSkipped.Add(1)
		logging.Trace(ctx, logger, "format not writable; metadata skipped",
			logging.String("extension", filepath.Ext(path)))
	}

	plan := Decide(in)
	if plan.Unresolved {
		e.logUnresolved(ctx, logger, path)
	}

	var action Action
	if plan.WriteMetadata {
		if err := e.applyMetadata(ctx, logger, path, in, plan); err != nil {
			errs = append(errs, err)
		} else {
			action |= ActionWriteMetadata
		}
	}
	if plan.SetModTime {
		if err := e.applyModTime(ctx, logger, path, modTime, plan); err != nil {
			errs = append(errs, err)
		} else {
			action |= ActionWriteFilesystem
		}
	}

	if len(errs) > 0 {
		return action, services.WithPath(path, errors.Join(errs...))
	}
	return action, nil
}

func (e *Engine) guess(path string) (extract.Result, bool) {
	if res, ok := e.chain.ResolveDetailed(path, filepath.Base(path), e.naiveNow); ok {
		return res, true
	}
	dir := filepath.Dir(path)
	name := filepath.Base(dir)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return extract.Result{}, false
	}
	return e.chain.ResolveDetailed(dir, name, e.naiveNow)
}

func (e *Engine) applyMetadata(ctx context.Context, logger *slog.Logger, path string, in Inputs, plan Plan) error {
	change := Change{
		Path:          path,
		Kind:          ChangeMetadata,
		New:           plan.Metadata.Time,
		NewConfidence: plan.Metadata.Confidence,
		Source:        string(plan.MetadataReason),
		DryRun:        e.settings.DryRun,
	}
	if in.Guess != nil && plan.MetadataReason != ReasonFutureDate {
		change.Source = in.Guess.Extractor
	}
	attrs := []logging.Attr{
		logging.String("date", plan.Metadata.Time.Format(dating.Layout)),
		logging.String("confidence", plan.Metadata.Confidence.String()),
		logging.String("reason", string(plan.MetadataReason)),
	}
	if in.Existing != nil {
		change.Old = *in.Existing
		change.OldConfidence = plan.ExistingConfidence
		attrs = append(attrs,
			logging.String("previous", in.Existing.Format(dating.Layout)),
			logging.String("previous_confidence", plan.ExistingConfidence.String()),
		)
	}

	var err error
	if e.settings.DryRun {
		logger.Info("dry run: would write metadata date", logging.Args(attrs...)...)
	} else {
		err = e.writeWithRepair(ctx, logger, path, plan.Metadata.Time)
	}
	change.Err = err
	e.record(ctx, logger, change)

	if err != nil {
		e.stats.Errors.Add(1)
		logging.ErrorWithContext(logger, "writing metadata date failed", "metadata_write_failed",
			append(attrs,
				logging.Error(err),
				logging.String(logging.FieldErrorKind, services.Classify(err)),
			)...,
		)
		return err
	}
	if in.Existing != nil {
		e.stats.MetadataOverwritten.Add(1)
	} else {
		e.stats.MetadataWritten.Add(1)
	}
	if !e.settings.DryRun {
		logger.Info("metadata date written", logging.Args(attrs...)...)
	}
	return nil
}

func (e *Engine) writeWithRepair(ctx context.Context, logger *slog.Logger, path string, t time.Time) error {
	err := e.gateway.WriteDate(ctx, path, t)
	if err == nil || !e.settings.RepairOnError || !errors.Is(err, services.ErrExternalTool) {
		return err
	}
	logging.WarnWithContext(logger, "metadata write failed; repairing and retrying once", "metadata_repair",
		logging.Error(err),
		logging.String(logging.FieldImpact, "all metadata is rebuilt from what exiftool can salvage"),
	)
	if repairErr := e.gateway.Repair(ctx, path); repairErr != nil {
		return errors.Join(err, repairErr)
	}
	e.stats.Repairs.Add(1)
	return e.gateway.WriteDate(ctx, path, t)
}

func (e *Engine) applyModTime(ctx context.Context, logger *slog.Logger, path string, old time.Time, plan Plan) error {
	attrs := []logging.Attr{
		logging.String("modified", old.Format(dating.Layout)),
		logging.String("new_modified", plan.ModTime.Format(dating.Layout)),
		logging.String("reason", string(plan.ModTimeReason)),
	}
	change := Change{
		Path:   path,
		Kind:   ChangeModTime,
		Old:    old,
		New:    plan.ModTime,
		Source: string(plan.ModTimeReason),
		DryRun: e.settings.DryRun,
	}

	var err error
	if e.settings.DryRun {
		logger.Info("dry run: would set modified time", logging.Args(attrs...)...)
	} else if err = e.fs.SetModTime(path, plan.ModTime); err == nil {
		logger.Info("modified time set", logging.Args(attrs...)...)
	}
	change.Err = err
	e.record(ctx, logger, change)

	if err != nil {
		e.stats.Errors.Add(1)
		logging.ErrorWithContext(logger, "setting modified time failed", "modtime_write_failed",
			append(attrs, logging.Error(err))...)
		return err
	}
	e.stats.ModifiedTimesUpdated.Add(1)
	return nil
}

func (e *Engine) record(ctx context.Context, logger *slog.Logger, change Change) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(ctx, change); err != nil {
		logging.WarnWithContext(logger, "journal write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "change is missing from the journal"),
		)
	}
}

// logUnresolved is loud only when the name had enough digits to suggest a
// date pattern the extractors missed.
func (e *Engine) logUnresolved(ctx context.Context, logger *slog.Logger, path string) {
	digits := 0
	for _, r := range filepath.Base(path) {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits > 4 {
		logger.Debug("no date found in name or metadata", logging.Int("digits", digits))
		return
	}
	logging.Trace(ctx, logger, "no date found in name or metadata")
}
