// Package journal records every change a fix run makes in a SQLite database
// so runs can be audited afterwards.
//
// Each run gets a UUID. Workers record changes concurrently through Run,
// which satisfies reconcile.Recorder; Finish stores the run's counters.
package journal
