package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()

	assert.NotNil(t, r.GetRegistry())
	assert.NotNil(t, r.GetMetrics())
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	err := r.Register()
	require.NoError(t, err)

	// Registering twice must fail
	err = r.Register()
	assert.Error(t, err)
}

func TestRegistry_MetricsObservable(t *testing.T) {
	r := NewRegistryWithConfig("phc", "")
	require.NoError(t, r.Register())

	m := r.GetMetrics()
	m.OffsetSeconds.WithLabelValues("/dev/ptp0", "extended").Set(50e-9)
	m.DelaySeconds.WithLabelValues("/dev/ptp0", "extended").Set(100e-9)
	m.DeviceReachable.WithLabelValues("/dev/ptp0").Set(1)
	m.MeasurementsTotal.WithLabelValues("/dev/ptp0", "extended", "success").Inc()

	assert.InDelta(t, 50e-9, testutil.ToFloat64(m.OffsetSeconds.WithLabelValues("/dev/ptp0", "extended")), 1e-12)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeviceReachable.WithLabelValues("/dev/ptp0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MeasurementsTotal.WithLabelValues("/dev/ptp0", "extended", "success")))
}

func TestRegistry_CustomNamespace(t *testing.T) {
	r := NewRegistryWithConfig("timecard", "phc")
	require.NoError(t, r.Register())

	m := r.GetMetrics()
	m.ExporterDevicesConfigured.Set(2)

	families, err := r.GetRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if f.GetName() == "timecard_phc_exporter_devices_configured" {
			found = true
		}
	}
	assert.True(t, found, "expected namespaced metric in gather output")
}
