// Package measure collects byte-size and diagnostic counters from the
// signing pipeline. Recording is gated by Enabled so hot paths stay free of
// bookkeeping unless asked for.
package measure

import (
	"math"
	"os"
	"sync"
)

// Enabled gates all recording. Set DNTL_MEASURE=1 or flip it from a demo
// driver.
var Enabled = os.Getenv("DNTL_MEASURE") == "1"

// Registry accumulates named byte counters.
type Registry struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{counters: make(map[string]uint64)}
}

// Global is the process-wide registry used by the keys and cmd packages.
var Global = NewRegistry()

// Add accumulates n bytes under key. Negative deltas are ignored.
func (r *Registry) Add(key string, n int64) {
	if n <= 0 {
		return
	}
	r.mu.Lock()
	r.counters[key] += uint64(n)
	r.mu.Unlock()
}

// SnapshotAndReset returns the current counter map and clears it.
func (r *Registry) SnapshotAndReset() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.counters
	r.counters = make(map[string]uint64)
	return out
}

// BitEntropy returns the Shannon entropy of the bit string formed by the
// low eight bits of every value, in bits per symbol.
func BitEntropy(vals []uint64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var ones int
	for _, v := range vals {
		b := uint8(v)
		for b != 0 {
			ones += int(b & 1)
			b >>= 1
		}
	}
	total := len(vals) * 8
	p := float64(ones) / float64(total)
	if p == 0 || p == 1 {
		return 0
	}
	return -p*math.Log2(p) - (1-p)*math.Log2(1-p)
}
