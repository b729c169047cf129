// Package logging assembles the slog loggers used by datefixer.
//
// Console output goes to stdout in a compact single-line form that puts the
// file being processed right after the component name. When a log directory
// is configured, every record is also written as JSON to a per-run file and
// old run files are pruned. A Trace level below Debug carries the noisiest
// output, such as names that clearly contain no date.
package logging
