// Package preflight provides readiness checks that run before a fix run
// starts: the exiftool binary answers, the requested roots are reachable,
// and the state directories are writable.
//
// A failed check aborts the run before any file is touched. The CLI
// "config show" command reuses the same checks to display their status.
package preflight
