package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"datefixer/internal/config"
	"datefixer/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the change journal",
	}
	journalCmd.AddCommand(newJournalListCommand(ctx))
	journalCmd.AddCommand(newJournalRunsCommand(ctx))
	journalCmd.AddCommand(newJournalShowCommand(ctx))
	return journalCmd
}

func openJournal(ctx *commandContext) (*journal.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Paths.JournalPath == "" {
		return nil, fmt.Errorf("paths.journal_path is not configured")
	}
	return journal.Open(cfg.Paths.JournalPath)
}

func newJournalListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var path string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent changes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openJournal(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if path != "" {
				if expanded, err := config.ExpandPath(path); err == nil {
					path = expanded
				}
			}
			entries, err := store.ListChanges(cmd.Context(), path, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No changes recorded")
				return nil
			}
			fmt.Fprintln(out, renderChanges(entries))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of entries (0 for all)")
	cmd.Flags().StringVar(&path, "path", "", "Only show changes to this file")
	return cmd
}

func newJournalRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent fix runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openJournal(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					shortID(r.ID),
					formatLocal(r.StartedAt),
					runDuration(r),
					yesNo(r.DryRun),
					strconv.FormatInt(r.FilesProcessed, 10),
					strconv.FormatInt(r.Changes, 10),
					strconv.FormatInt(r.Errors, 10),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Duration", "Dry run", "Files", "Changes", "Errors"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum number of runs (0 for all)")
	return cmd
}

func newJournalShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN",
		Short: "Show one run's summary; RUN may be an 8+ character prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openJournal(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			r, err := store.GetRun(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				if journal.IsNotFound(err) {
					return fmt.Errorf("no run matches %q", args[0])
				}
				return err
			}
			rows := [][]string{
				{"Run", r.ID},
				{"Started", formatLocal(r.StartedAt)},
				{"Finished", formatLocal(r.FinishedAt)},
				{"Roots", strings.Join(r.Roots, ", ")},
				{"Dry run", yesNo(r.DryRun)},
				{"Files processed", strconv.FormatInt(r.FilesProcessed, 10)},
				{"Files skipped", strconv.FormatInt(r.FilesSkipped, 10)},
				{"Errors", strconv.FormatInt(r.Errors, 10)},
				{"EXIF dates updated", strconv.FormatInt(r.MetadataWritten, 10)},
				{"EXIF dates overwritten", strconv.FormatInt(r.MetadataOverwritten, 10)},
				{"Modified times updated", strconv.FormatInt(r.ModifiedTimesUpdated, 10)},
				{"Changes recorded", strconv.FormatInt(r.Changes, 10)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}

func renderChanges(entries []journal.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		result := "ok"
		switch {
		case e.Error != "":
			result = "error: " + e.Error
		case e.DryRun:
			result = "dry run"
		}
		oldValue := e.OldValue
		if oldValue == "" {
			oldValue = "-"
		}
		if e.OldConfidence != "" {
			oldValue += " (" + e.OldConfidence + ")"
		}
		newValue := e.NewValue
		if e.NewConfidence != "" {
			newValue += " (" + e.NewConfidence + ")"
		}
		rows = append(rows, []string{
			formatLocal(e.RecordedAt),
			e.Path,
			string(e.Kind),
			oldValue,
			newValue,
			result,
		})
	}
	return renderTable([]string{"When", "File", "Kind", "Old", "New", "Result"}, rows, nil)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatLocal(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func runDuration(r journal.RunSummary) string {
	if r.FinishedAt.IsZero() {
		return "unfinished"
	}
	return prettyDuration(r.FinishedAt.Sub(r.StartedAt))
}
