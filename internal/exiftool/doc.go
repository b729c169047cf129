// Package exiftool supervises long-lived exiftool processes and exposes the
// typed metadata operations the reconciliation engine needs.
//
// A Supervisor owns at most one child started in batch mode
// (-stay_open True -@ -). Each command is written as one argument per line,
// followed by -echo4 {ready} and -execute, so exiftool terminates the
// response with a {ready} line on stdout and on stderr. The framing lives in
// frameReader, an explicit state machine that is tested against synthetic
// streams.
//
// When a command fails at the transport level the supervisor checks whether
// the child has exited. A dead child is discarded and replaced lazily on the
// next call; a live one is kept. Commands are never retried here.
//
// Supervisors are not safe for concurrent use. Pool hands each worker
// exclusive ownership of one supervisor for as long as it holds it.
//
// There is no per-command timeout: a hung exiftool blocks the calling worker.
package exiftool
