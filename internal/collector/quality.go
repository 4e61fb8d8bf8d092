package collector

import (
	"context"
	"time"

	"github.com/clocknet/phc-exporter/internal/config"
	"github.com/clocknet/phc-exporter/pkg/logger"
	"github.com/clocknet/phc-exporter/pkg/metrics"
)

// QualityCollector summarizes the rolling measurement window of each
// device into quality metrics (median, stability, jitter, failure ratio)
type QualityCollector struct {
	*CommonCollector
}

// NewQualityCollector creates a new quality metrics collector
func NewQualityCollector(cfg *config.Config, m *metrics.PHCMetrics, state *DeviceState) *QualityCollector {
	return &QualityCollector{
		CommonCollector: NewCommonCollector(cfg, m, state, "quality"),
	}
}

// Collect publishes the window summary for every registered device
func (c *QualityCollector) Collect(ctx context.Context) error {
	start := time.Now()
	defer func() {
		c.GetMetrics().CollectorDurationSeconds.WithLabelValues(c.Name()).Observe(time.Since(start).Seconds())
	}()

	m := c.GetMetrics()
	state := c.GetState()

	for _, path := range state.Paths() {
		w := state.Window(path)
		if w == nil {
			continue
		}

		stats := w.Statistics()

		m.MedianOffsetSeconds.WithLabelValues(path).Set(stats.MedianOffset.Seconds())
		m.StabilitySeconds.WithLabelValues(path).Set(stats.StdDevOffset.Seconds())
		m.JitterSeconds.WithLabelValues(path).Set(stats.DelayJitter.Seconds())
		m.SamplesCount.WithLabelValues(path).Set(float64(stats.SamplesCount))
		m.FailureRatio.WithLabelValues(path).Set(stats.FailureRatio)

		logger.DebugFields("collector", "Quality metrics updated", map[string]interface{}{
			"device":    path,
			"median":    stats.MedianOffset.Seconds(),
			"stability": stats.StdDevOffset.Seconds(),
			"samples":   stats.SamplesCount,
		})
	}

	return nil
}
