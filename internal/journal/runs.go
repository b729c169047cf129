package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"datefixer/internal/dating"
	"datefixer/internal/reconcile"
)

// Run records the changes of one fix run. It is safe for concurrent use.
type Run struct {
	store *Store
	id    string
}

// RunSummary is a stored run.
type RunSummary struct {
	ID                   string
	StartedAt            time.Time
	FinishedAt           time.Time
	Roots                []string
	DryRun               bool
	FilesProcessed       int64
	FilesSkipped         int64
	Errors               int64
	MetadataWritten      int64
	MetadataOverwritten  int64
	ModifiedTimesUpdated int64
	Changes              int64
}

// Entry is one stored change.
type Entry struct {
	ID            int64
	RunID         string
	RecordedAt    time.Time
	Path          string
	Kind          reconcile.ChangeKind
	OldValue      string
	NewValue      string
	OldConfidence string
	NewConfidence string
	Source        string
	DryRun        bool
	Error         string
}

// StartRun creates a run row and returns its recorder.
func (s *Store) StartRun(ctx context.Context, roots []string, dryRun bool, startedAt time.Time) (*Run, error) {
	id := uuid.NewString()
	err := s.execWithRetry(ctx,
		"INSERT INTO runs (id, started_at, roots, dry_run) VALUES (?, ?, ?, ?)",
		id, formatInstant(startedAt), strings.Join(roots, "\n"), boolToInt(dryRun),
	)
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	return &Run{store: s, id: id}, nil
}

// ID returns the run's UUID.
func (r *Run) ID() string { return r.id }

// Record stores one change.
func (r *Run) Record(ctx context.Context, c reconcile.Change) error {
	var (
		oldValue, oldConf, errText sql.NullString
		newConf                    sql.NullString
	)
	if !c.Old.IsZero() {
		oldValue = sql.NullString{String: formatValue(c.Kind, c.Old), Valid: true}
	}
	if c.Kind == reconcile.ChangeMetadata {
		if !c.Old.IsZero() {
			oldConf = sql.NullString{String: c.OldConfidence.String(), Valid: true}
		}
		newConf = sql.NullString{String: c.NewConfidence.String(), Valid: true}
	}
	if c.Err != nil {
		errText = sql.NullString{String: c.Err.Error(), Valid: true}
	}
	err := r.store.execWithRetry(ctx,
		`INSERT INTO changes (run_id, recorded_at, path, kind, old_value, new_value,
			old_confidence, new_confidence, source, dry_run, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.id, formatInstant(time.Now()), c.Path, string(c.Kind), oldValue, formatValue(c.Kind, c.New),
		oldConf, newConf, c.Source, boolToInt(c.DryRun), errText,
	)
	if err != nil {
		return fmt.Errorf("record change for %s: %w", c.Path, err)
	}
	return nil
}

// Finish stores the run's final counters.
func (r *Run) Finish(ctx context.Context, snap reconcile.Snapshot, finishedAt time.Time) error {
	err := r.store.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, files_processed = ?, files_skipped = ?, errors = ?,
			metadata_written = ?, metadata_overwritten = ?, modified_times_updated = ?
		 WHERE id = ?`,
		formatInstant(finishedAt), snap.FilesProcessed, snap.FilesSkipped, snap.Errors,
		snap.MetadataWritten, snap.MetadataOverwritten, snap.ModifiedTimesUpdated, r.id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", r.id, err)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.started_at, COALESCE(r.finished_at, ''), r.roots, r.dry_run,
			r.files_processed, r.files_skipped, r.errors, r.metadata_written,
			r.metadata_overwritten, r.modified_times_updated,
			(SELECT COUNT(1) FROM changes c WHERE c.run_id = r.id)
		 FROM runs r ORDER BY r.started_at DESC, r.rowid DESC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			rs                RunSummary
			started, finished string
			roots             string
			dryRun            int
		)
		if err := rows.Scan(&rs.ID, &started, &finished, &roots, &dryRun,
			&rs.FilesProcessed, &rs.FilesSkipped, &rs.Errors, &rs.MetadataWritten,
			&rs.MetadataOverwritten, &rs.ModifiedTimesUpdated, &rs.Changes); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rs.StartedAt = parseInstant(started)
		rs.FinishedAt = parseInstant(finished)
		if roots != "" {
			rs.Roots = strings.Split(roots, "\n")
		}
		rs.DryRun = dryRun != 0
		runs = append(runs, rs)
	}
	return runs, rows.Err()
}

// ListChanges returns the most recent changes first. A non-empty path
// restricts the result to that file.
func (s *Store) ListChanges(ctx context.Context, path string, limit int) ([]Entry, error) {
	query := `SELECT id, run_id, recorded_at, path, kind, COALESCE(old_value, ''), new_value,
			COALESCE(old_confidence, ''), COALESCE(new_confidence, ''), COALESCE(source, ''),
			dry_run, COALESCE(error, '')
		 FROM changes`
	args := []any{}
	if path != "" {
		query += " WHERE path = ?"
		args = append(args, path)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, normalizeLimit(limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			recorded string
			kind     string
			dryRun   int
		)
		if err := rows.Scan(&e.ID, &e.RunID, &recorded, &e.Path, &kind, &e.OldValue, &e.NewValue,
			&e.OldConfidence, &e.NewConfidence, &e.Source, &dryRun, &e.Error); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		e.RecordedAt = parseInstant(recorded)
		e.Kind = reconcile.ChangeKind(kind)
		e.DryRun = dryRun != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetRun returns one run, or an error wrapping sql.ErrNoRows.
func (s *Store) GetRun(ctx context.Context, id string) (RunSummary, error) {
	runs, err := s.ListRuns(ctx, -1)
	if err != nil {
		return RunSummary{}, err
	}
	for _, r := range runs {
		if r.ID == id || (len(id) >= 8 && strings.HasPrefix(r.ID, id)) {
			return r, nil
		}
	}
	return RunSummary{}, fmt.Errorf("run %s: %w", id, sql.ErrNoRows)
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func formatValue(kind reconcile.ChangeKind, t time.Time) string {
	if kind == reconcile.ChangeMetadata {
		return t.Format(dating.Layout)
	}
	return formatInstant(t)
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseInstant(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
