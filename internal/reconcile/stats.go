package reconcile

import (
	"sync/atomic"
	"time"
)

// Stats are run-wide counters shared by every worker.
type Stats struct {
	FoldersProcessed     atomic.Int64
	FoldersSkipped       atomic.Int64
	FilesProcessed       atomic.Int64
	FilesSkipped         atomic.Int64
	Errors               atomic.Int64
	MetadataWritten      atomic.Int64
	MetadataOverwritten  atomic.Int64
	ModifiedTimesUpdated atomic.Int64
	Repairs              atomic.Int64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	FoldersProcessed     int64
	FoldersSkipped       int64
	FilesProcessed       int64
	FilesSkipped         int64
	Errors               int64
	MetadataWritten      int64
	MetadataOverwritten  int64
	ModifiedTimesUpdated int64
	Repairs              int64
	Elapsed              time.Duration
}

// Snapshot copies the counters. elapsed is stored as given.
func (s *Stats) Snapshot(elapsed time.Duration) Snapshot {
	return Snapshot{
		FoldersProcessed:     s.FoldersProcessed.Load(),
		FoldersSkipped:       s.FoldersSkipped.Load(),
		FilesProcessed:       s.FilesProcessed.Load(),
		FilesSkipped:         s.FilesSkipped.Load(),
		Errors:               s.Errors.Load(),
		MetadataWritten:      s.MetadataWritten.Load(),
		MetadataOverwritten:  s.MetadataOverwritten.Load(),
		ModifiedTimesUpdated: s.ModifiedTimesUpdated.Load(),
		Repairs:              s.Repairs.Load(),
		Elapsed:              elapsed,
	}
}
