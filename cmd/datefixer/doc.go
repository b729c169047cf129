// Package main hosts the datefixer CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the run logger,
// and hands the heavy lifting to the internal packages: traverse and
// reconcile for fix runs, exiftool for the metadata tool, journal for the
// change history. Commands here only translate flags and render output.
package main
