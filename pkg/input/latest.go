// Package input provides the sample sources that steer the target: remote
// velocity commands, a USB gamepad, and a mixer combining them.
package input

import (
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r3"
)

// Latest holds the most recent remote sample. Samples older than the timeout
// read as zero, so a dropped client stops the target instead of leaving it
// drifting.
type Latest struct {
	mu      sync.Mutex
	sample  r3.Vector
	updated time.Time
	timeout time.Duration
	now     func() time.Time
}

// NewLatest creates an empty sample holder. A timeout of zero never expires.
func NewLatest(timeout time.Duration) *Latest {
	return &Latest{timeout: timeout, now: time.Now}
}

// Set stores a sample. Each axis is clamped to [-1, 1]; non-finite axes are
// stored as 0.
func (l *Latest) Set(sample r3.Vector) {
	sample = r3.Vector{X: clampAxis(sample.X), Y: clampAxis(sample.Y), Z: clampAxis(sample.Z)}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sample = sample
	l.updated = l.now()
}

// Clear drops the current sample.
func (l *Latest) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sample = r3.Vector{}
	l.updated = time.Time{}
}

// Sample returns the stored sample, or zero when it is stale.
func (l *Latest) Sample() r3.Vector {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.updated.IsZero() {
		return r3.Vector{}
	}
	if l.timeout > 0 && l.now().Sub(l.updated) > l.timeout {
		return r3.Vector{}
	}
	return l.sample
}

func clampAxis(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
