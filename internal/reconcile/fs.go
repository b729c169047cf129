package reconcile

import (
	"os"
	"time"
)

// FS reads and writes modification times.
type FS interface {
	ModTime(path string) (time.Time, error)
	SetModTime(path string, t time.Time) error
}

// OSFS is the real filesystem.
type OSFS struct{}

func (OSFS) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// SetModTime leaves the access time unchanged.
func (OSFS) SetModTime(path string, t time.Time) error {
	return os.Chtimes(path, time.Time{}, t)
}
