package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"datefixer/internal/exiftool"
)

const extensionsPerLine = 10

func newExtensionsCommand(ctx *commandContext) *cobra.Command {
	var asTable bool

	cmd := &cobra.Command{
		Use:   "extensions",
		Short: "List the file extensions whose capture date exiftool can write",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sup := exiftool.NewSupervisor(
				exiftool.WithBinary(cfg.Exiftool.Binary),
				exiftool.WithLogger(ctx.newLogger(cmd.ErrOrStderr())),
			)
			defer sup.Close()

			exts, err := exiftool.NewGateway(sup).WritableExtensions(cmd.Context())
			if err != nil {
				return err
			}
			sorted := exts.Sorted()
			out := cmd.OutOrStdout()
			if asTable {
				rows := make([][]string, 0, len(sorted))
				for _, ext := range sorted {
					rows = append(rows, []string{ext})
				}
				fmt.Fprintln(out, renderTable([]string{"Extension"}, rows, nil))
				return nil
			}
			writeExtensionColumns(out, sorted)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asTable, "table", false, "Render as a table")
	return cmd
}

func writeExtensionColumns(out io.Writer, exts []string) {
	fmt.Fprintln(out, "Supported file extensions:")
	for start := 0; start < len(exts); start += extensionsPerLine {
		end := min(start+extensionsPerLine, len(exts))
		fmt.Fprintf(out, "  %s\n", strings.Join(exts[start:end], " "))
	}
}
