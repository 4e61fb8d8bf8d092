package config

import (
	"time"

	"github.com/clocknet/phc-exporter/internal/phc"
)

// ApplyDefaults sets default values for unspecified configuration fields
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9983
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	// Default CORS origins (empty = no CORS)
	if cfg.Server.AllowedOrigins == nil {
		cfg.Server.AllowedOrigins = []string{}
	}

	// PHC defaults
	if len(cfg.PHC.Devices) == 0 {
		cfg.PHC.Devices = []string{"/dev/ptp0"}
	}
	if cfg.PHC.Samples == 0 {
		cfg.PHC.Samples = phc.DefaultSamples
	}
	if cfg.PHC.Method == "" {
		cfg.PHC.Method = "auto"
	}
	if cfg.PHC.ScrapeInterval == 0 {
		cfg.PHC.ScrapeInterval = 15 * time.Second
	}
	if cfg.PHC.MaxOffset == 0 {
		cfg.PHC.MaxOffset = 100 * time.Microsecond
	}
	if cfg.PHC.CrossPeriod == 0 {
		cfg.PHC.CrossPeriod = phc.DefaultCrossPeriod
	}
	if cfg.PHC.WindowSize == 0 {
		cfg.PHC.WindowSize = 64
	}

	// Rate limiting defaults
	if cfg.PHC.RateLimit.GlobalRate == 0 {
		cfg.PHC.RateLimit.GlobalRate = 100
	}
	if cfg.PHC.RateLimit.PerDeviceRate == 0 {
		cfg.PHC.RateLimit.PerDeviceRate = 10
	}
	if cfg.PHC.RateLimit.BurstSize == 0 {
		cfg.PHC.RateLimit.BurstSize = 5
	}

	// Circuit breaker defaults (enabled by default for fault tolerance)
	cfg.PHC.CircuitBreaker.Enabled = true // Always enabled
	if cfg.PHC.CircuitBreaker.MaxRequests == 0 {
		cfg.PHC.CircuitBreaker.MaxRequests = 3
	}
	if cfg.PHC.CircuitBreaker.Interval == 0 {
		cfg.PHC.CircuitBreaker.Interval = 60 * time.Second
	}
	if cfg.PHC.CircuitBreaker.Timeout == 0 {
		cfg.PHC.CircuitBreaker.Timeout = 30 * time.Second
	}
	if cfg.PHC.CircuitBreaker.FailureThreshold == 0 {
		cfg.PHC.CircuitBreaker.FailureThreshold = 5
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "timecard"
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = "phc"
	}
	if cfg.Metrics.Labels == nil {
		cfg.Metrics.Labels = make(map[string]string)
	}
}

// DefaultConfig returns a configuration with all defaults applied
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
