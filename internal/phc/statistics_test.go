package phc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindow_Empty(t *testing.T) {
	w := NewWindow(8)
	stats := w.Statistics()

	assert.Equal(t, 0, stats.SamplesCount)
	assert.Equal(t, 0.0, stats.FailureRatio)
	assert.Equal(t, time.Duration(0), stats.MedianOffset)
}

func TestWindow_SingleResult(t *testing.T) {
	w := NewWindow(8)
	w.Add(Result{Offset: 100 * time.Nanosecond, Delay: 50 * time.Nanosecond})

	stats := w.Statistics()
	assert.Equal(t, 1, stats.SamplesCount)
	assert.Equal(t, 0.0, stats.FailureRatio)
	assert.Equal(t, 100*time.Nanosecond, stats.MedianOffset)
	assert.Equal(t, 100*time.Nanosecond, stats.MeanOffset)
	assert.Equal(t, time.Duration(0), stats.StdDevOffset)
	assert.Equal(t, time.Duration(0), stats.DelayJitter)
}

func TestWindow_MultipleResults(t *testing.T) {
	w := NewWindow(8)
	offsets := []time.Duration{
		100 * time.Nanosecond,
		150 * time.Nanosecond,
		80 * time.Nanosecond,
		120 * time.Nanosecond,
		110 * time.Nanosecond,
	}
	for _, o := range offsets {
		w.Add(Result{Offset: o, Delay: 50 * time.Nanosecond})
	}

	stats := w.Statistics()
	assert.Equal(t, 5, stats.SamplesCount)
	assert.Equal(t, 110*time.Nanosecond, stats.MedianOffset)
	assert.Equal(t, 112*time.Nanosecond, stats.MeanOffset)
	assert.Greater(t, stats.StdDevOffset, time.Duration(0))
	assert.Equal(t, time.Duration(0), stats.DelayJitter) // constant delay
}

func TestWindow_EvictsOldest(t *testing.T) {
	w := NewWindow(2)
	w.Add(Result{Offset: 1000 * time.Nanosecond})
	w.Add(Result{Offset: 100 * time.Nanosecond})
	w.Add(Result{Offset: 200 * time.Nanosecond})

	stats := w.Statistics()
	assert.Equal(t, 2, stats.SamplesCount)
	assert.Equal(t, 150*time.Nanosecond, stats.MedianOffset)
}

func TestWindow_FailureRatio(t *testing.T) {
	w := NewWindow(8)
	w.Add(Result{Offset: time.Nanosecond})
	w.RecordFailure()
	w.Add(Result{Offset: time.Nanosecond})
	w.RecordFailure()

	stats := w.Statistics()
	assert.InDelta(t, 0.5, stats.FailureRatio, 0.01)
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"empty", []float64{}, 0.0},
		{"single", []float64{5.0}, 5.0},
		{"odd_count", []float64{1.0, 3.0, 2.0}, 2.0},
		{"even_count", []float64{1.0, 2.0, 3.0, 4.0}, 2.5},
		{"unsorted", []float64{5.0, 1.0, 3.0, 2.0, 4.0}, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, median(tt.values), 0.001)
		})
	}
}

func TestMeanAndStdDev(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.InDelta(t, 3.0, mean([]float64{1, 2, 3, 4, 5}), 0.001)

	assert.Equal(t, 0.0, stdDev([]float64{1.0}))
	assert.InDelta(t, 1.732, stdDev([]float64{1, 3, 5, 3, 1, 5, 1, 5}), 0.001)
}
