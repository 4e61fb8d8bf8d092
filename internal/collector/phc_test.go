package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clocknet/phc-exporter/internal/config"
	"github.com/clocknet/phc-exporter/internal/phc"
	"github.com/clocknet/phc-exporter/pkg/metrics"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.PHC.Samples = 1
	cfg.PHC.MaxOffset = 100 * time.Microsecond
	return cfg
}

// fallbackDevice is a mock device that also exposes raw clock reads for
// the clock-difference fallback
type fallbackDevice struct {
	*phc.MockDevice
	sys    []int64
	dev    []int64
	sysIdx int
	devIdx int
}

func (d *fallbackDevice) SystemTime() (int64, error) {
	v := d.sys[d.sysIdx]
	d.sysIdx++
	return v, nil
}

func (d *fallbackDevice) DeviceTime() (int64, error) {
	v := d.dev[d.devIdx]
	d.devIdx++
	return v, nil
}

func TestPHCCollector_CollectExtended(t *testing.T) {
	cfg := testConfig()
	m := metrics.NewPHCMetrics()
	state := NewDeviceState(cfg.PHC.WindowSize)

	dev := phc.NewMockDevice("/dev/ptp0")
	dev.SetupExtended([3]int64{1000, 1040, 1100})
	state.AddDevice(dev)

	c := NewPHCCollector(cfg, m, state)
	err := c.Collect(context.Background())
	require.NoError(t, err)

	// Probing skipped cross (arming fails) and precise, selected extended
	method, ok := state.Method("/dev/ptp0")
	require.True(t, ok)
	assert.Equal(t, phc.MethodExtended, method)

	assert.InDelta(t, 10e-9, testutil.ToFloat64(m.OffsetSeconds.WithLabelValues("/dev/ptp0", "extended")), 1e-12)
	assert.InDelta(t, 100e-9, testutil.ToFloat64(m.DelaySeconds.WithLabelValues("/dev/ptp0", "extended")), 1e-12)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeviceReachable.WithLabelValues("/dev/ptp0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SelectedMethod.WithLabelValues("/dev/ptp0", "extended")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SelectedMethod.WithLabelValues("/dev/ptp0", "precise")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MeasurementsTotal.WithLabelValues("/dev/ptp0", "extended", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbesTotal.WithLabelValues("/dev/ptp0", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OffsetExceeded.WithLabelValues("/dev/ptp0")))
}

func TestPHCCollector_OffsetExceeded(t *testing.T) {
	cfg := testConfig()
	cfg.PHC.MaxOffset = 5 * time.Nanosecond
	m := metrics.NewPHCMetrics()
	state := NewDeviceState(cfg.PHC.WindowSize)

	dev := phc.NewMockDevice("/dev/ptp0")
	dev.SetupExtended([3]int64{1000, 1040, 1100})
	state.AddDevice(dev)

	c := NewPHCCollector(cfg, m, state)
	require.NoError(t, c.Collect(context.Background()))

	// |10ns| > 5ns threshold
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OffsetExceeded.WithLabelValues("/dev/ptp0")))
}

func TestPHCCollector_FailureClearsCachedMethod(t *testing.T) {
	cfg := testConfig()
	m := metrics.NewPHCMetrics()
	state := NewDeviceState(cfg.PHC.WindowSize)

	dev := phc.NewMockDevice("/dev/ptp0")
	dev.SetupExtended([3]int64{1000, 1040, 1100})
	state.AddDevice(dev)

	c := NewPHCCollector(cfg, m, state)
	require.NoError(t, c.Collect(context.Background()))

	_, ok := state.Method("/dev/ptp0")
	require.True(t, ok)

	// The device loses the capability between cycles
	dev.SetExtendedError(errors.New("EOPNOTSUPP"))
	require.NoError(t, c.Collect(context.Background())) // per-device errors are logged, not fatal

	_, ok = state.Method("/dev/ptp0")
	assert.False(t, ok, "cached method should be dropped after a failure")

	assert.Equal(t, 0.0, testutil.ToFloat64(m.DeviceReachable.WithLabelValues("/dev/ptp0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MeasurementsTotal.WithLabelValues("/dev/ptp0", "extended", "error")))
}

func TestPHCCollector_FixedMethodSkipsProbing(t *testing.T) {
	cfg := testConfig()
	cfg.PHC.Method = "precise"
	m := metrics.NewPHCMetrics()
	state := NewDeviceState(cfg.PHC.WindowSize)

	dev := phc.NewMockDevice("/dev/ptp0")
	dev.SetupPrecise(5_000_000_000, 4_999_999_950)
	state.AddDevice(dev)

	c := NewPHCCollector(cfg, m, state)
	require.NoError(t, c.Collect(context.Background()))

	method, ok := state.Method("/dev/ptp0")
	require.True(t, ok)
	assert.Equal(t, phc.MethodPrecise, method)

	// No probing took place
	assert.Equal(t, 0, dev.CallCount("arm_cross"))
	assert.InDelta(t, 50e-9, testutil.ToFloat64(m.OffsetSeconds.WithLabelValues("/dev/ptp0", "precise")), 1e-12)
}

func TestPHCCollector_FallbackWhenProbingFails(t *testing.T) {
	cfg := testConfig()
	cfg.PHC.EnableFallback = true
	m := metrics.NewPHCMetrics()
	state := NewDeviceState(cfg.PHC.WindowSize)

	// Every control request fails, but the raw clocks are readable
	dev := &fallbackDevice{
		MockDevice: phc.NewMockDevice("/dev/ptp0"),
		sys:        []int64{100, 300},
		dev:        []int64{190},
	}
	state.AddDevice(dev)

	c := NewPHCCollector(cfg, m, state)
	require.NoError(t, c.Collect(context.Background()))

	method, ok := state.Method("/dev/ptp0")
	require.True(t, ok)
	assert.Equal(t, phc.MethodUnsupported, method)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbesTotal.WithLabelValues("/dev/ptp0", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("/dev/ptp0")))
	assert.InDelta(t, 10e-9, testutil.ToFloat64(m.OffsetSeconds.WithLabelValues("/dev/ptp0", "unsupported")), 1e-12)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeviceReachable.WithLabelValues("/dev/ptp0")))
}

func TestPHCCollector_NoFallbackWithoutOptIn(t *testing.T) {
	cfg := testConfig()
	cfg.PHC.EnableFallback = false
	m := metrics.NewPHCMetrics()
	state := NewDeviceState(cfg.PHC.WindowSize)

	dev := phc.NewMockDevice("/dev/ptp0")
	state.AddDevice(dev)

	c := NewPHCCollector(cfg, m, state)
	require.NoError(t, c.Collect(context.Background()))

	_, ok := state.Method("/dev/ptp0")
	assert.False(t, ok)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DeviceReachable.WithLabelValues("/dev/ptp0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbesTotal.WithLabelValues("/dev/ptp0", "failure")))
}

func TestPHCCollector_BreakerSkipsFailingDevice(t *testing.T) {
	cfg := testConfig()
	cfg.PHC.Method = "extended"
	cfg.PHC.CircuitBreaker.FailureThreshold = 1
	m := metrics.NewPHCMetrics()
	state := NewDeviceState(cfg.PHC.WindowSize)

	dev := phc.NewMockDevice("/dev/ptp0")
	dev.SetExtendedError(errors.New("EIO"))
	state.AddDevice(dev)

	c := NewPHCCollector(cfg, m, state)

	// First cycle trips the breaker, second is short-circuited
	require.NoError(t, c.Collect(context.Background()))
	require.NoError(t, c.Collect(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BreakerOpenTotal.WithLabelValues("/dev/ptp0")))
	assert.Equal(t, 1, dev.CallCount("extended"))
}

func TestPHCCollector_WindowTracksResults(t *testing.T) {
	cfg := testConfig()
	m := metrics.NewPHCMetrics()
	state := NewDeviceState(cfg.PHC.WindowSize)

	dev := phc.NewMockDevice("/dev/ptp0")
	dev.SetupExtended([3]int64{1000, 1040, 1100})
	state.AddDevice(dev)

	c := NewPHCCollector(cfg, m, state)
	require.NoError(t, c.Collect(context.Background()))
	require.NoError(t, c.Collect(context.Background()))

	stats := state.Window("/dev/ptp0").Statistics()
	assert.Equal(t, 2, stats.SamplesCount)
	assert.Equal(t, 10*time.Nanosecond, stats.MedianOffset)
}
