// Package logs reads the per-run log files written by fix runs: it finds the
// newest one, returns its last lines, and follows it while a run is still
// writing.
//
// Reads use bounded memory regardless of file size; follow mode polls and
// stops when its context ends.
package logs
