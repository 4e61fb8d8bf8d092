// Package collector provides the PHC exporter metrics collectors.
//
// The package includes two collector types:
//   - PHCCollector: Measures the hardware/system clock offset per device
//   - QualityCollector: Summarizes rolling-window quality metrics
//
// All collectors implement the Collector interface and can be managed
// through a Registry for coordinated metrics collection.
//
// Usage:
//
//	state := collector.NewDeviceState(cfg.PHC.WindowSize)
//	registry := collector.NewRegistry()
//	registry.Register(collector.NewPHCCollector(cfg, m, state))
//	if err := registry.CollectAll(ctx); err != nil {
//	    log.Fatal(err)
//	}
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clocknet/phc-exporter/internal/config"
	"github.com/clocknet/phc-exporter/internal/phc"
	"github.com/clocknet/phc-exporter/pkg/logger"
	"github.com/clocknet/phc-exporter/pkg/mathutil"
	"github.com/clocknet/phc-exporter/pkg/metrics"
)

// PHCCollector measures the hardware/system clock offset for every
// configured device
type PHCCollector struct {
	*CommonCollector
	limiter *phc.RateLimiter
	breaker *phc.DeviceBreaker
}

// NewPHCCollector creates a new hardware clock offset collector.
// Rate limiting and the per-device circuit breaker are wired in from the
// configuration; the breaker is enabled by default.
func NewPHCCollector(cfg *config.Config, m *metrics.PHCMetrics, state *DeviceState) *PHCCollector {
	c := &PHCCollector{
		CommonCollector: NewCommonCollector(cfg, m, state, "phc"),
	}

	if cfg.PHC.RateLimit.Enabled {
		c.limiter = phc.NewRateLimiter(
			cfg.PHC.RateLimit.GlobalRate,
			cfg.PHC.RateLimit.PerDeviceRate,
			cfg.PHC.RateLimit.BurstSize,
		)
	}

	if cfg.PHC.CircuitBreaker.Enabled {
		c.breaker = phc.NewDeviceBreaker(phc.BreakerConfig{
			MaxRequests:      cfg.PHC.CircuitBreaker.MaxRequests,
			Interval:         cfg.PHC.CircuitBreaker.Interval,
			Timeout:          cfg.PHC.CircuitBreaker.Timeout,
			FailureThreshold: cfg.PHC.CircuitBreaker.FailureThreshold,
		})
	}

	return c
}

// Collect measures all registered devices once
func (c *PHCCollector) Collect(ctx context.Context) error {
	start := time.Now()
	defer func() {
		// Record collector duration
		c.GetMetrics().CollectorDurationSeconds.WithLabelValues(c.Name()).Observe(time.Since(start).Seconds())
	}()

	m := c.GetMetrics()
	paths := c.GetState().Paths()

	logger.Infof("collector", "Starting PHC collection with %d devices", len(paths))

	successCount := 0
	failCount := 0

	for _, path := range paths {
		if err := c.collectFromDevice(ctx, path); err != nil {
			logger.WarnFields("collector", "Failed to collect from device", map[string]interface{}{
				"device": path,
				"error":  err.Error(),
			})
			failCount++
			m.DeviceReachable.WithLabelValues(path).Set(0)
		} else {
			successCount++
			m.DeviceReachable.WithLabelValues(path).Set(1)
		}
	}

	duration := time.Since(start)
	m.ExporterScrapeDuration.Observe(duration.Seconds())

	if successCount > 0 {
		m.ExporterScrapesTotal.WithLabelValues("success").Inc()
	} else {
		m.ExporterScrapesTotal.WithLabelValues("failure").Inc()
	}

	logger.InfoFields("collector", "PHC collection completed", map[string]interface{}{
		"success":  successCount,
		"failed":   failCount,
		"duration": duration.Seconds(),
	})

	return nil
}

// collectFromDevice performs one offset measurement on a single device
func (c *PHCCollector) collectFromDevice(ctx context.Context, path string) error {
	m := c.GetMetrics()
	state := c.GetState()

	dev, ok := state.Device(path)
	if !ok {
		return fmt.Errorf("device %s is not registered", path)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, path); err != nil {
			return fmt.Errorf("rate limit for %s: %w", path, err)
		}
	}

	method, ok := state.Method(path)
	if !ok {
		var err error
		method, err = c.resolveMethod(dev)
		if err != nil {
			return err
		}
		state.SetMethod(path, method)
		c.publishSelectedMethod(path, method)
	}

	measure := func() (phc.Result, error) {
		return c.measure(dev, method)
	}

	var res phc.Result
	var err error
	if c.breaker != nil {
		res, err = c.breaker.Execute(path, measure)
	} else {
		res, err = measure()
	}

	if err != nil {
		if errors.Is(err, phc.ErrBreakerOpen) {
			m.BreakerOpenTotal.WithLabelValues(path).Inc()
			return err
		}

		m.MeasurementsTotal.WithLabelValues(path, method.String(), "error").Inc()
		if w := state.Window(path); w != nil {
			w.RecordFailure()
		}
		// Drop the cached method so the next cycle re-probes; the device
		// may have lost the capability (driver reload, suspend/resume)
		state.ClearMethod(path)
		return fmt.Errorf("measurement of %s via %s: %w", path, method, err)
	}

	c.updateMetrics(path, method, res)
	if w := state.Window(path); w != nil {
		w.Add(res)
	}

	return nil
}

// measure performs one measurement using the resolved method. Devices on
// which probing found no usable control request are measured through the
// generic clock-difference fallback.
func (c *PHCCollector) measure(dev phc.Device, method phc.Method) (phc.Result, error) {
	cfg := c.GetConfig()

	if method == phc.MethodUnsupported {
		reader, ok := dev.(phc.ClockReader)
		if !ok {
			return phc.Result{}, phc.ErrRuntimeMissing
		}
		c.GetMetrics().FallbacksTotal.WithLabelValues(dev.Path()).Inc()
		return phc.MeasureSysClock(reader, cfg.PHC.Samples)
	}

	return phc.Measure(dev, method, cfg.PHC.Samples)
}

// resolveMethod determines the measurement method for a device, either
// the fixed one from the configuration or by capability probing
func (c *PHCCollector) resolveMethod(dev phc.Device) (phc.Method, error) {
	cfg := c.GetConfig()
	m := c.GetMetrics()

	if cfg.PHC.Method != "auto" {
		method := phc.ParseMethod(cfg.PHC.Method)
		if method == phc.MethodCross {
			if err := phc.EnableCross(dev, cfg.PHC.CrossPeriod); err != nil {
				return phc.MethodUnsupported, fmt.Errorf("arming cross-timestamping on %s: %w", dev.Path(), err)
			}
		}
		return method, nil
	}

	method, err := phc.Probe(dev, cfg.PHC.Samples)
	if err != nil {
		m.ProbesTotal.WithLabelValues(dev.Path(), "failure").Inc()

		if cfg.PHC.EnableFallback {
			if _, ok := dev.(phc.ClockReader); ok {
				logger.WarnFields("collector", "No control request usable, using clock-difference fallback", map[string]interface{}{
					"device": dev.Path(),
				})
				return phc.MethodUnsupported, nil
			}
		}
		return phc.MethodUnsupported, fmt.Errorf("probing %s: %w", dev.Path(), err)
	}

	m.ProbesTotal.WithLabelValues(dev.Path(), "success").Inc()
	logger.InfoFields("collector", "Measurement method selected", map[string]interface{}{
		"device": dev.Path(),
		"method": method.String(),
	})
	return method, nil
}

// publishSelectedMethod marks the chosen method in the selection gauge
// and clears the others
func (c *PHCCollector) publishSelectedMethod(path string, method phc.Method) {
	m := c.GetMetrics()
	for _, candidate := range []phc.Method{phc.MethodCross, phc.MethodPrecise, phc.MethodExtended, phc.MethodBasic} {
		value := 0.0
		if candidate == method {
			value = 1.0
		}
		m.SelectedMethod.WithLabelValues(path, candidate.String()).Set(value)
	}
}

// updateMetrics updates Prometheus metrics from a measurement result
func (c *PHCCollector) updateMetrics(path string, method phc.Method, res phc.Result) {
	cfg := c.GetConfig()
	m := c.GetMetrics()

	m.OffsetSeconds.WithLabelValues(path, method.String()).Set(res.Offset.Seconds())
	m.DelaySeconds.WithLabelValues(path, method.String()).Set(res.Delay.Seconds())
	m.TimestampSeconds.WithLabelValues(path).Set(float64(res.Timestamp.UnixNano()) / 1e9)
	m.MeasurementsTotal.WithLabelValues(path, method.String(), "success").Inc()

	exceeded := 0.0
	if mathutil.AbsDuration(res.Offset) > cfg.PHC.MaxOffset {
		exceeded = 1.0
	}
	m.OffsetExceeded.WithLabelValues(path).Set(exceeded)

	logger.DebugFields("collector", "Metrics updated", map[string]interface{}{
		"device": path,
		"method": method.String(),
		"offset": res.Offset.Seconds(),
		"delay":  res.Delay.Seconds(),
	})
}
