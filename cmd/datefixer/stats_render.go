package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"datefixer/internal/reconcile"
)

func renderStats(snap reconcile.Snapshot) string {
	count := func(v int64) string { return strconv.FormatInt(v, 10) }
	rows := [][]string{
		{"Folders processed", count(snap.FoldersProcessed)},
		{"Folders skipped", count(snap.FoldersSkipped)},
		{"Files processed", count(snap.FilesProcessed)},
		{"Files skipped", count(snap.FilesSkipped)},
		{"Files with errors", count(snap.Errors)},
		{"EXIF dates updated", count(snap.MetadataWritten)},
		{"EXIF dates overwritten", count(snap.MetadataOverwritten)},
		{"Modified times updated", count(snap.ModifiedTimesUpdated)},
		{"Repairs", count(snap.Repairs)},
		{"Time taken", prettyDuration(snap.Elapsed)},
	}
	return renderTable([]string{"Statistic", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

// prettyDuration prints the two or three most significant units, e.g.
// "1d 2h 3m", "4m 5s", "1s 250ms".
func prettyDuration(d time.Duration) string {
	if d <= 0 {
		return "0ns"
	}
	const day = 24 * time.Hour

	var parts []string
	add := func(v int64, unit string) {
		if v > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", v, unit))
		}
	}
	secs := int64(d / time.Second)
	switch {
	case d >= day:
		parts = append(parts, fmt.Sprintf("%dd", int64(d/day)))
		add(int64((d%day)/time.Hour), "h")
		add(int64((d%time.Hour)/time.Minute), "m")
	case d >= time.Hour:
		parts = append(parts, fmt.Sprintf("%dh", int64(d/time.Hour)))
		add(int64((d%time.Hour)/time.Minute), "m")
		add(secs%60, "s")
	case d >= time.Minute:
		parts = append(parts, fmt.Sprintf("%dm", int64(d/time.Minute)))
		add(secs%60, "s")
	case d >= time.Second:
		parts = append(parts, fmt.Sprintf("%ds", secs))
		add(int64((d%time.Second)/time.Millisecond), "ms")
	case d >= time.Millisecond:
		parts = append(parts, fmt.Sprintf("%dms", int64(d/time.Millisecond)))
		add(int64((d%time.Millisecond)/time.Microsecond), "µs")
	case d >= time.Microsecond:
		parts = append(parts, fmt.Sprintf("%dµs", int64(d/time.Microsecond)))
		add(int64(d%time.Microsecond), "ns")
	default:
		parts = append(parts, fmt.Sprintf("%dns", int64(d)))
	}
	return strings.Join(parts, " ")
}
