package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"datefixer/internal/config"
	"datefixer/internal/exiftool"
	"datefixer/internal/extract"
	"datefixer/internal/journal"
	"datefixer/internal/logging"
	"datefixer/internal/preflight"
	"datefixer/internal/reconcile"
	"datefixer/internal/runlock"
	"datefixer/internal/services"
	"datefixer/internal/traverse"
)

type fixOptions struct {
	exclude            []string
	dryRun             bool
	futureModifiedDays int
	futureExifDays     int
	skipHidden         bool
	ignoreMinor        bool
	repair             bool
	workers            int
	printStats         bool
	noJournal          bool
}

func newFixCommand(ctx *commandContext) *cobra.Command {
	var opts fixOptions

	cmd := &cobra.Command{
		Use:   "fix PATH...",
		Short: "Infer capture dates from names and repair metadata and modified times",
		Long: "Walks each PATH, guesses a capture date from every file name (or its folder's name),\n" +
			"and writes it to DateTimeOriginal when it is more precise than the stored value.\n" +
			"Modified times in the future or before 1970-01-02 are corrected as well.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			run := *cfg
			run.Fix.Exclude = append([]string(nil), cfg.Fix.Exclude...)
			opts.apply(cmd, &run)
			if err := run.Validate(); err != nil {
				return err
			}
			return runFix(cmd, ctx, &run, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.exclude, "exclude", "e", nil, "Paths to skip; directories prune their subtree (repeatable)")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "Report the changes without writing anything")
	flags.IntVar(&opts.futureModifiedDays, "fix-future-modified-times", config.DisabledDays, "Reset modified times more than DAYS in the future (-1 disables)")
	flags.IntVar(&opts.futureExifDays, "fix-future-exif-dates", config.DisabledDays, "Reset metadata dates more than DAYS in the future (-1 disables)")
	flags.BoolVar(&opts.skipHidden, "skip-hidden-files", false, "Skip files and folders whose names start with a dot")
	flags.BoolVar(&opts.ignoreMinor, "ignore-minor-exif-errors", false, "Pass -m to exiftool so minor errors do not fail a write")
	flags.BoolVar(&opts.repair, "repair", false, "Rebuild a file's metadata once when a write fails, then retry")
	flags.IntVarP(&opts.workers, "workers", "j", 0, "Number of parallel exiftool workers (default: number of CPUs)")
	flags.BoolVar(&opts.printStats, "print-stats", false, "Print run statistics when done")
	flags.BoolVar(&opts.noJournal, "no-journal", false, "Do not record changes in the journal")

	return cmd
}

// apply overrides cfg with the flags the user set explicitly.
func (o fixOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("exclude") {
		for _, p := range o.exclude {
			expanded, err := config.ExpandPath(strings.TrimSpace(p))
			if err == nil && expanded != "" {
				cfg.Fix.Exclude = append(cfg.Fix.Exclude, expanded)
			}
		}
	}
	if flags.Changed("dry-run") {
		cfg.Fix.DryRun = o.dryRun
	}
	if flags.Changed("fix-future-modified-times") {
		cfg.Fix.FutureModifiedDays = o.futureModifiedDays
	}
	if flags.Changed("fix-future-exif-dates") {
		cfg.Fix.FutureExifDays = o.futureExifDays
	}
	if flags.Changed("skip-hidden-files") {
		cfg.Fix.SkipHidden = o.skipHidden
	}
	if flags.Changed("ignore-minor-exif-errors") {
		cfg.Exiftool.IgnoreMinorErrors = o.ignoreMinor
	}
	if flags.Changed("repair") {
		cfg.Exiftool.RepairOnError = o.repair
	}
	if flags.Changed("workers") && o.workers > 0 {
		cfg.Fix.Workers = o.workers
	}
	if o.noJournal {
		cfg.Journal.Enabled = false
	}
}

func runFix(cmd *cobra.Command, cmdCtx *commandContext, cfg *config.Config, opts fixOptions, roots []string) error {
	started := time.Now()
	out := cmd.OutOrStdout()

	logger, closer, err := logging.NewFromConfig(cfg, cmdCtx.logLevel(), cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()
	if named, ok := closer.(interface{ Name() string }); ok {
		logging.PruneRunLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, named.Name(), started)
	}

	if cfg.Paths.LockPath != "" {
		lock, err := runlock.Acquire(cfg.Paths.LockPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("failed to release run lock", logging.Error(err))
			}
		}()
	}

	runCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pool := exiftool.NewPool(cfg.Fix.Workers, func() *exiftool.Supervisor {
		return exiftool.NewSupervisor(
			exiftool.WithBinary(cfg.Exiftool.Binary),
			exiftool.WithLogger(logger),
		)
	})
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("exiftool shutdown reported errors", logging.Error(err))
		}
	}()

	exts, err := startupChecks(runCtx, cfg, pool, roots, logger)
	if err != nil {
		return err
	}

	var recorder reconcile.Recorder
	var jrun *journal.Run
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Paths.JournalPath)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "journal", "open", cfg.Paths.JournalPath, err)
		}
		defer store.Close()
		jrun, err = store.StartRun(runCtx, roots, cfg.Fix.DryRun, started)
		if err != nil {
			return err
		}
		recorder = jrun
		logger = logging.WithRunID(logger, jrun.ID())
		runCtx = services.WithRunID(runCtx, jrun.ID())
	}

	settings := reconcile.Settings{
		Now:            started,
		FutureModified: -1,
		FutureMetadata: -1,
		DryRun:         cfg.Fix.DryRun,
		RepairOnError:  cfg.Exiftool.RepairOnError,
	}
	if d, ok := cfg.Fix.FutureModifiedThreshold(); ok {
		settings.FutureModified = d
	}
	if d, ok := cfg.Fix.FutureExifThreshold(); ok {
		settings.FutureMetadata = d
	}

	stats := &reconcile.Stats{}
	chain := extract.Default()
	driver, err := traverse.New(traverse.Config{
		Pool: pool,
		NewReconciler: func(_ int, exec exiftool.Executor) traverse.Reconciler {
			return reconcile.NewEngine(reconcile.Config{
				Gateway:    exiftool.NewGateway(exec, exiftool.WithIgnoreMinorErrors(cfg.Exiftool.IgnoreMinorErrors)),
				Extensions: exts,
				Chain:      chain,
				Settings:   settings,
				Stats:      stats,
				Recorder:   recorder,
				Logger:     logger,
			})
		},
		Stats:      stats,
		Exclude:    cfg.Fix.Exclude,
		SkipHidden: cfg.Fix.SkipHidden,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	stopSignals := handleInterrupts(driver, cancel, cmd.ErrOrStderr())
	defer stopSignals()

	logger.Info("fix run started",
		logging.Int("workers", pool.Size()),
		logging.Bool("dry_run", cfg.Fix.DryRun),
		logging.Int("roots", len(roots)),
	)
	runErr := driver.Run(runCtx, roots)

	snap := stats.Snapshot(time.Since(started))
	if jrun != nil {
		// The run context may already be cancelled; the summary must still land.
		if err := jrun.Finish(context.WithoutCancel(runCtx), snap, time.Now()); err != nil {
			logger.Warn("failed to finish journal run", logging.Error(err))
		}
	}
	logger.Info("fix run finished",
		logging.Int64("files_processed", snap.FilesProcessed),
		logging.Int64("errors", snap.Errors),
		logging.Int64("metadata_written", snap.MetadataWritten),
		logging.Int64("modified_times_updated", snap.ModifiedTimesUpdated),
		logging.Bool("cancelled", driver.Cancelled()),
		logging.Duration("elapsed", snap.Elapsed),
	)
	if opts.printStats {
		fmt.Fprintln(out, renderStats(snap))
	}
	return runErr
}

// startupChecks runs the preflight checks on one pooled supervisor and loads
// the writable extension list with it.
func startupChecks(ctx context.Context, cfg *config.Config, pool *exiftool.Pool, roots []string, logger *slog.Logger) (exiftool.ExtensionSet, error) {
	sup, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer pool.Release(sup)

	gateway := exiftool.NewGateway(sup)
	results := preflight.RunAll(ctx, cfg, roots, gateway)
	for _, r := range results {
		logger.Debug("preflight check", logging.String("check", r.Name), logging.Bool("passed", r.Passed), logging.String("detail", r.Detail))
	}
	if failed := preflight.Failed(results); len(failed) > 0 {
		lines := make([]string, 0, len(failed))
		for _, r := range failed {
			lines = append(lines, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
		return nil, services.Wrap(services.ErrConfiguration, "preflight", "", strings.Join(lines, "; "), nil)
	}

	exts, err := gateway.WritableExtensions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load writable extensions: %w", err)
	}
	return exts, nil
}

// handleInterrupts stops dispatch on the first interrupt and cancels the run
// context on the second.
func handleInterrupts(driver *traverse.Driver, cancel context.CancelFunc, notice io.Writer) func() {
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt)
	done := make(chan struct{})

	go func() {
		count := 0
		for {
			select {
			case <-signals:
				count++
				if count == 1 {
					fmt.Fprintln(notice, "\nReceived Ctrl+C, finishing files in progress (press again to abort)...")
					driver.Cancel()
					continue
				}
				cancel()
				return
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(signals)
		close(done)
	}
}
