package traverse

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"datefixer/internal/exiftool"
	"datefixer/internal/logging"
	"datefixer/internal/reconcile"
	"datefixer/internal/services"
)

// Reconciler fixes one file.
type Reconciler interface {
	Reconcile(ctx context.Context, path string) (reconcile.Action, error)
}

// ReconcilerFactory builds a worker's reconciler around the executor it
// checked out of the pool.
type ReconcilerFactory func(worker int, exec exiftool.Executor) Reconciler

// Config wires a Driver.
type Config struct {
	Pool          *exiftool.Pool
	NewReconciler ReconcilerFactory
	Stats         *reconcile.Stats
	Exclude       []string
	SkipHidden    bool
	Logger        *slog.Logger
}

// Driver runs one traversal. It is not reusable.
type Driver struct {
	pool       *exiftool.Pool
	factory    ReconcilerFactory
	stats      *reconcile.Stats
	exclude    map[string]struct{}
	skipHidden bool
	logger     *slog.Logger

	cancelled atomic.Bool
}

// New validates cfg and returns a Driver.
func New(cfg Config) (*Driver, error) {
	if cfg.Pool == nil {
		return nil, services.Wrap(services.ErrConfiguration, "traverse", "new", "exiftool pool is required", nil)
	}
	if cfg.NewReconciler == nil {
		return nil, services.Wrap(services.ErrConfiguration, "traverse", "new", "reconciler factory is required", nil)
	}
	d := &Driver{
		pool:       cfg.Pool,
		factory:    cfg.NewReconciler,
		stats:      cfg.Stats,
		exclude:    make(map[string]struct{}, len(cfg.Exclude)),
		skipHidden: cfg.SkipHidden,
		logger:     logging.NewComponentLogger(cfg.Logger, "traverse"),
	}
	if d.stats == nil {
		d.stats = &reconcile.Stats{}
	}
	for _, p := range cfg.Exclude {
		if strings.TrimSpace(p) == "" {
			continue
		}
		d.exclude[canonical(p)] = struct{}{}
	}
	return d, nil
}

// Cancel stops dispatching new files. Safe to call from a signal handler
// goroutine.
func (d *Driver) Cancel() { d.cancelled.Store(true) }

// Cancelled reports whether Cancel was called.
func (d *Driver) Cancelled() bool { return d.cancelled.Load() }

// Stats returns the counters shared with the workers.
func (d *Driver) Stats() *reconcile.Stats { return d.stats }

// Run walks roots and reconciles every regular file found. It returns once
// all workers are done. The error is non-nil only when ctx ends the run or a
// worker cannot check out a supervisor.
func (d *Driver) Run(ctx context.Context, roots []string) error {
	workers := d.pool.Size()
	paths := make(chan string, workers*4)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return d.work(gctx, i, paths)
		})
	}

	g.Go(func() error {
		defer close(paths)
		for _, root := range roots {
			if d.stopped(gctx) {
				return nil
			}
			d.walk(gctx, root, paths)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (d *Driver) stopped(ctx context.Context) bool {
	return d.cancelled.Load() || ctx.Err() != nil
}

func (d *Driver) work(ctx context.Context, id int, paths <-chan string) error {
	sup, err := d.pool.Acquire(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return fmt.Errorf("worker %d: %w", id, err)
	}
	defer d.pool.Release(sup)

	ctx = services.WithWorker(ctx, id)
	rec := d.factory(id, sup)
	for path := range paths {
		if d.stopped(ctx) {
			// Drain so the walker never blocks on a full channel.
			continue
		}
		if _, err := rec.Reconcile(ctx, path); err != nil {
			d.logger.Debug("file finished with errors",
				logging.FilePath(path),
				logging.Int(logging.FieldWorker, id),
				logging.String(logging.FieldErrorKind, services.Classify(err)),
			)
		}
	}
	return nil
}

func (d *Driver) walk(ctx context.Context, root string, paths chan<- string) {
	root = filepath.Clean(root)
	if d.excluded(root) {
		d.stats.FoldersSkipped.Add(1)
		d.logger.Info("root excluded", logging.FilePath(root))
		return
	}
	d.logger.Info("processing root", logging.FilePath(root))

	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if d.stopped(ctx) {
			return filepath.SkipAll
		}
		if err != nil {
			d.stats.Errors.Add(1)
			logging.ErrorWithContext(d.logger, "failed to read entry", "walk_failed",
				logging.FilePath(path),
				logging.Error(err),
			)
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		isRoot := path == root
		if !isRoot && d.skipHidden && isHidden(entry.Name()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !isRoot && d.excluded(path) {
			if entry.IsDir() {
				d.stats.FoldersSkipped.Add(1)
				logging.Trace(ctx, d.logger, "directory excluded", logging.FilePath(path))
				return filepath.SkipDir
			}
			d.stats.FilesSkipped.Add(1)
			logging.Trace(ctx, d.logger, "file excluded", logging.FilePath(path))
			return nil
		}

		switch {
		case entry.IsDir():
			d.stats.FoldersProcessed.Add(1)
			logging.Trace(ctx, d.logger, "processing directory", logging.FilePath(path))
		case entry.Type().IsRegular():
			select {
			case paths <- path:
			case <-ctx.Done():
				return filepath.SkipAll
			}
		default:
			d.stats.FilesSkipped.Add(1)
			d.logger.Warn("skipping non-file entry",
				logging.FilePath(path),
				logging.String("type", entry.Type().String()),
			)
		}
		return nil
	})
}

func (d *Driver) excluded(path string) bool {
	if len(d.exclude) == 0 {
		return false
	}
	_, ok := d.exclude[canonical(path)]
	return ok
}

func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
