package collector

import (
	"sort"
	"sync"

	"github.com/clocknet/phc-exporter/internal/config"
	"github.com/clocknet/phc-exporter/internal/phc"
	"github.com/clocknet/phc-exporter/pkg/metrics"
)

// CommonCollector provides shared functionality for all collectors
type CommonCollector struct {
	config  *config.Config
	metrics *metrics.PHCMetrics
	state   *DeviceState
	enabled bool
	name    string
}

// NewCommonCollector creates a new common collector base
func NewCommonCollector(cfg *config.Config, m *metrics.PHCMetrics, state *DeviceState, name string) *CommonCollector {
	return &CommonCollector{
		config:  cfg,
		metrics: m,
		state:   state,
		enabled: true,
		name:    name,
	}
}

// Name returns the collector name
func (c *CommonCollector) Name() string {
	return c.name
}

// Enabled returns whether the collector is enabled
func (c *CommonCollector) Enabled() bool {
	return c.enabled
}

// GetConfig returns the configuration
func (c *CommonCollector) GetConfig() *config.Config {
	return c.config
}

// GetMetrics returns the metrics registry
func (c *CommonCollector) GetMetrics() *metrics.PHCMetrics {
	return c.metrics
}

// GetState returns the shared per-device state
func (c *CommonCollector) GetState() *DeviceState {
	return c.state
}

// DeviceState tracks opened devices and their measurement state, shared
// between the measurement and quality collectors. The selected method is
// cached per device after the first successful probe and dropped again on
// measurement failure so the next cycle re-probes.
type DeviceState struct {
	mu      sync.RWMutex
	devices map[string]phc.Device
	methods map[string]phc.Method
	windows map[string]*phc.Window

	windowSize int
}

// NewDeviceState creates an empty device state with rolling windows of
// the given size
func NewDeviceState(windowSize int) *DeviceState {
	return &DeviceState{
		devices:    make(map[string]phc.Device),
		methods:    make(map[string]phc.Method),
		windows:    make(map[string]*phc.Window),
		windowSize: windowSize,
	}
}

// AddDevice registers an opened device
func (s *DeviceState) AddDevice(dev phc.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[dev.Path()] = dev
	s.windows[dev.Path()] = phc.NewWindow(s.windowSize)
}

// Paths returns the registered device paths in stable order
func (s *DeviceState) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.devices))
	for path := range s.devices {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Device returns the device registered under path
func (s *DeviceState) Device(path string) (phc.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dev, ok := s.devices[path]
	return dev, ok
}

// Window returns the rolling result window for a device
func (s *DeviceState) Window(path string) *phc.Window {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.windows[path]
}

// Method returns the cached measurement method for a device
func (s *DeviceState) Method(path string) (phc.Method, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.methods[path]
	return m, ok
}

// SetMethod caches the measurement method for a device
func (s *DeviceState) SetMethod(path string, m phc.Method) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[path] = m
}

// ClearMethod drops the cached method so the next cycle re-probes
func (s *DeviceState) ClearMethod(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.methods, path)
}

// Count returns the number of registered devices
func (s *DeviceState) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices)
}
