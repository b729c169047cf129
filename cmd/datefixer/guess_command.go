package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"datefixer/internal/dating"
	"datefixer/internal/extract"
)

func newGuessCommand() *cobra.Command {
	var asTable bool

	cmd := &cobra.Command{
		Use:         "guess NAME...",
		Short:       "Show the date the extractor chain infers from file names",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			chain := extract.Default()
			now := dating.WallClock(time.Now())
			rows := make([][]string, 0, len(args))
			for _, name := range args {
				res, ok := chain.ResolveDetailed(name, filepath.Base(name), now)
				if !ok {
					rows = append(rows, []string{name, "-", "-", "-"})
					continue
				}
				rows = append(rows, []string{
					name,
					res.Guess.Time.Format(dating.Layout),
					res.Guess.Confidence.String(),
					res.Extractor,
				})
			}

			out := cmd.OutOrStdout()
			if asTable {
				fmt.Fprintln(out, renderTable([]string{"Name", "Date", "Confidence", "Extractor"}, rows, nil))
				return nil
			}
			for _, row := range rows {
				if row[1] == "-" {
					fmt.Fprintf(out, "%s: no date\n", row[0])
					continue
				}
				fmt.Fprintf(out, "%s: %s (confidence: %s, via %s)\n", row[0], row[1], row[2], row[3])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asTable, "table", false, "Render as a table")
	return cmd
}
