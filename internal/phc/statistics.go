package phc

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Statistics summarizes a rolling window of measurement results
type Statistics struct {
	MedianOffset time.Duration
	MeanOffset   time.Duration
	StdDevOffset time.Duration
	DelayJitter  time.Duration
	SamplesCount int
	FailureRatio float64
}

// Window is a fixed-size rolling window of results for one device
type Window struct {
	mu       sync.Mutex
	results  []Result
	size     int
	attempts int
	failures int
}

// NewWindow creates a rolling window holding up to size results
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{size: size}
}

// Add records a successful measurement
func (w *Window) Add(res Result) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts++
	w.results = append(w.results, res)
	if len(w.results) > w.size {
		w.results = w.results[1:]
	}
}

// RecordFailure records a failed measurement attempt
func (w *Window) RecordFailure() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts++
	w.failures++
	if w.attempts > 4*w.size {
		// Age out old attempts so the ratio tracks recent behavior
		w.attempts = w.attempts / 2
		w.failures = w.failures / 2
	}
}

// Statistics computes the current window summary
func (w *Window) Statistics() *Statistics {
	w.mu.Lock()
	defer w.mu.Unlock()

	stats := &Statistics{SamplesCount: len(w.results)}
	if w.attempts > 0 {
		stats.FailureRatio = float64(w.failures) / float64(w.attempts)
	}
	if len(w.results) == 0 {
		return stats
	}

	offsets := make([]float64, len(w.results))
	delays := make([]float64, len(w.results))
	for i, res := range w.results {
		offsets[i] = res.Offset.Seconds()
		delays[i] = res.Delay.Seconds()
	}

	stats.MedianOffset = time.Duration(median(offsets) * float64(time.Second))
	stats.MeanOffset = time.Duration(mean(offsets) * float64(time.Second))
	stats.StdDevOffset = time.Duration(stdDev(offsets) * float64(time.Second))
	stats.DelayJitter = time.Duration(stdDev(delays) * float64(time.Second))

	return stats
}

// median calculates the median of a slice of float64 values.
// For even-length slices, returns the average of the two middle values.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2.0
	}
	return sorted[n/2]
}

// mean calculates the arithmetic mean of a slice of float64 values
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev calculates the population standard deviation
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
