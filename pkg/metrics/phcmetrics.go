package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PHCMetrics encapsulates all PHC exporter metrics
type PHCMetrics struct {
	// Base measurement metrics
	OffsetSeconds    *prometheus.GaugeVec
	DelaySeconds     *prometheus.GaugeVec
	TimestampSeconds *prometheus.GaugeVec
	OffsetExceeded   *prometheus.GaugeVec // 1 if |offset| exceeds max threshold, 0 otherwise
	DeviceReachable  *prometheus.GaugeVec
	SelectedMethod   *prometheus.GaugeVec

	// Measurement outcome counters
	MeasurementsTotal *prometheus.CounterVec
	FallbacksTotal    *prometheus.CounterVec
	ProbesTotal       *prometheus.CounterVec
	BreakerOpenTotal  *prometheus.CounterVec

	// Quality metrics
	MedianOffsetSeconds *prometheus.GaugeVec
	StabilitySeconds    *prometheus.GaugeVec
	JitterSeconds       *prometheus.GaugeVec
	SamplesCount        *prometheus.GaugeVec
	FailureRatio        *prometheus.GaugeVec

	// Exporter operational metrics
	ExporterBuildInfo         *prometheus.GaugeVec
	ExporterScrapeDuration    prometheus.Histogram
	ExporterScrapesTotal      *prometheus.CounterVec
	ExporterDevicesConfigured prometheus.Gauge
	ExporterMemoryUsageBytes  prometheus.Gauge
	ExporterGoroutinesCount   prometheus.Gauge
	CollectorDurationSeconds  *prometheus.HistogramVec
}

// NewPHCMetrics creates and initializes all PHC exporter metrics
// with the default namespace "phc" and empty subsystem
func NewPHCMetrics() *PHCMetrics {
	return NewPHCMetricsWithConfig("phc", "")
}

// NewPHCMetricsWithConfig creates and initializes all PHC exporter metrics with custom namespace and subsystem
func NewPHCMetricsWithConfig(namespace, subsystem string) *PHCMetrics {
	return &PHCMetrics{
		OffsetSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "offset_seconds",
				Help:      "Offset between the hardware clock and the system clock in seconds",
			},
			[]string{"device", "method"},
		),
		DelaySeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "delay_seconds",
				Help:      "Uncertainty bound of the selected offset sample in seconds",
			},
			[]string{"device", "method"},
		),
		TimestampSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "timestamp_seconds",
				Help:      "Instant the offset sample is valid for, in Unix seconds",
			},
			[]string{"device"},
		),
		OffsetExceeded: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "offset_exceeded",
				Help:      "Whether the offset magnitude exceeds the configured threshold (1 = exceeded, 0 = within limits)",
			},
			[]string{"device"},
		),
		DeviceReachable: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "device_reachable",
				Help:      "Whether the hardware clock device produced a sample (1) or not (0)",
			},
			[]string{"device"},
		),
		SelectedMethod: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "selected_method",
				Help:      "Measurement method selected by capability probing (1 = selected)",
			},
			[]string{"device", "method"},
		),
		MeasurementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "measurements_total",
				Help:      "Total number of offset measurements by device, method and result",
			},
			[]string{"device", "method", "result"},
		),
		FallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fallbacks_total",
				Help:      "Total number of generic clock-difference fallback measurements",
			},
			[]string{"device"},
		),
		ProbesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "probes_total",
				Help:      "Total number of capability probes by device and result",
			},
			[]string{"device", "result"},
		),
		BreakerOpenTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "breaker_open_total",
				Help:      "Total number of measurements skipped because the device circuit breaker was open",
			},
			[]string{"device"},
		),
		MedianOffsetSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "median_offset_seconds",
				Help:      "Median offset over the rolling window in seconds",
			},
			[]string{"device"},
		),
		StabilitySeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stability_seconds",
				Help:      "Standard deviation of the offset over the rolling window in seconds",
			},
			[]string{"device"},
		),
		JitterSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jitter_seconds",
				Help:      "Standard deviation of the sample delay over the rolling window in seconds",
			},
			[]string{"device"},
		),
		SamplesCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "samples_count",
				Help:      "Number of successful measurements in the rolling window",
			},
			[]string{"device"},
		),
		FailureRatio: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "failure_ratio",
				Help:      "Ratio of failed measurements over the rolling window",
			},
			[]string{"device"},
		),
		ExporterBuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "exporter_build_info",
				Help:      "Build information of the PHC exporter",
			},
			[]string{"version", "commit", "go_version"},
		),
		ExporterScrapeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "exporter_scrape_duration_seconds",
				Help:      "Duration of a full collection cycle in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		ExporterScrapesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "exporter_scrapes_total",
				Help:      "Total number of collection cycles by status",
			},
			[]string{"status"},
		),
		ExporterDevicesConfigured: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "exporter_devices_configured",
				Help:      "Number of hardware clock devices configured",
			},
		),
		ExporterMemoryUsageBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "exporter_memory_usage_bytes",
				Help:      "Current memory usage of the exporter in bytes",
			},
		),
		ExporterGoroutinesCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "exporter_goroutines_count",
				Help:      "Current number of goroutines",
			},
		),
		CollectorDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "collector_duration_seconds",
				Help:      "Duration of each collector run in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"collector"},
		),
	}
}

// Describe implements prometheus.Collector
func (m *PHCMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector
func (m *PHCMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

func (m *PHCMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.OffsetSeconds,
		m.DelaySeconds,
		m.TimestampSeconds,
		m.OffsetExceeded,
		m.DeviceReachable,
		m.SelectedMethod,
		m.MeasurementsTotal,
		m.FallbacksTotal,
		m.ProbesTotal,
		m.BreakerOpenTotal,
		m.MedianOffsetSeconds,
		m.StabilitySeconds,
		m.JitterSeconds,
		m.SamplesCount,
		m.FailureRatio,
		m.ExporterBuildInfo,
		m.ExporterScrapeDuration,
		m.ExporterScrapesTotal,
		m.ExporterDevicesConfigured,
		m.ExporterMemoryUsageBytes,
		m.ExporterGoroutinesCount,
		m.CollectorDurationSeconds,
	}
}
