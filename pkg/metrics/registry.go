package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry manages Prometheus metric registration
type Registry struct {
	registry   *prometheus.Registry
	phcMetrics *PHCMetrics
}

// NewRegistry creates a new metrics registry with PHC metrics
// Uses default namespace "phc" and empty subsystem
func NewRegistry() *Registry {
	return NewRegistryWithConfig("phc", "")
}

// NewRegistryWithConfig creates a new metrics registry with custom namespace and subsystem
func NewRegistryWithConfig(namespace, subsystem string) *Registry {
	return &Registry{
		registry:   prometheus.NewRegistry(),
		phcMetrics: NewPHCMetricsWithConfig(namespace, subsystem),
	}
}

// Register registers all PHC exporter metrics
func (r *Registry) Register() error {
	// Register the PHC metrics collector
	if err := r.registry.Register(r.phcMetrics); err != nil {
		return err
	}

	// Register Go runtime metrics
	r.registry.MustRegister(collectors.NewGoCollector())
	r.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return nil
}

// GetRegistry returns the underlying Prometheus registry
func (r *Registry) GetRegistry() *prometheus.Registry {
	return r.registry
}

// GetMetrics returns the PHC metrics instance
func (r *Registry) GetMetrics() *PHCMetrics {
	return r.phcMetrics
}

// MustRegister registers all metrics and panics on error
func (r *Registry) MustRegister() {
	if err := r.Register(); err != nil {
		panic(err)
	}
}
