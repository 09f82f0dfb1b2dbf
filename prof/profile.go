// Package prof records wall-clock timings of protocol phases for the demo
// drivers.
package prof

import (
	"sync"
	"time"
)

// Entry represents a single timing measurement.
type Entry struct {
	Label string
	Dur   time.Duration
}

var (
	mu     sync.Mutex
	record []Entry
)

// Track logs the duration since start under the given label; use it as
// defer prof.Track(time.Now(), "sign").
func Track(start time.Time, label string) {
	elapsed := time.Since(start)
	mu.Lock()
	record = append(record, Entry{Label: label, Dur: elapsed})
	mu.Unlock()
}

// SnapshotAndReset returns the collected timing entries and clears them.
func SnapshotAndReset() []Entry {
	mu.Lock()
	defer mu.Unlock()
	out := make([]Entry, len(record))
	copy(out, record)
	record = nil
	return out
}

// Summary aggregates entries per label.
type Summary struct {
	Count int
	Total time.Duration
	Max   time.Duration
}

// Summarize groups the given entries by label.
func Summarize(entries []Entry) map[string]Summary {
	out := make(map[string]Summary)
	for _, e := range entries {
		s := out[e.Label]
		s.Count++
		s.Total += e.Dur
		if e.Dur > s.Max {
			s.Max = e.Dur
		}
		out[e.Label] = s
	}
	return out
}
