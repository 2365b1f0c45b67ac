// Package tempo maintains a per-session statistical model of the speaker's
// word-to-word cadence and turns it into hesitation thresholds and hint
// escalation delays.
//
// All state is session-scoped: the service creates one Estimator per
// practice session and resets it at session start. Nothing here is safe for
// concurrent use and nothing needs to be.
package tempo

import (
	"math"
	"sort"
)

// Window is a bounded most-recent-N sequence of observed latencies in
// milliseconds. Adding beyond capacity evicts the oldest sample.
type Window struct {
	samples []float64
	cap     int
}

// NewWindow creates a window holding at most capacity samples.
func NewWindow(capacity int) *Window {
	return &Window{
		samples: make([]float64, 0, capacity),
		cap:     capacity,
	}
}

// Add appends a sample, evicting the oldest when full.
func (w *Window) Add(ms float64) {
	if len(w.samples) == w.cap {
		copy(w.samples, w.samples[1:])
		w.samples = w.samples[:w.cap-1]
	}
	w.samples = append(w.samples, ms)
}

// Len returns the number of held samples.
func (w *Window) Len() int { return len(w.samples) }

// Reset discards all samples.
func (w *Window) Reset() { w.samples = w.samples[:0] }

// Median returns the middle sample, or 0 when empty.
func (w *Window) Median() float64 {
	return w.Percentile(50)
}

// Percentile returns the p-th percentile (nearest-rank), or 0 when empty.
func (w *Window) Percentile(p float64) float64 {
	n := len(w.samples)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, w.samples)
	sort.Float64s(sorted)

	rank := int(math.Ceil(p/100*float64(n))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= n {
		rank = n - 1
	}
	return sorted[rank]
}

// StdDev returns the population standard deviation, or 0 with fewer than
// two samples.
func (w *Window) StdDev() float64 {
	n := len(w.samples)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, s := range w.samples {
		sum += s
	}
	mean := sum / float64(n)

	var sq float64
	for _, s := range w.samples {
		d := s - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(n))
}
