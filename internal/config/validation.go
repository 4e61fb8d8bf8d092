package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/clocknet/phc-exporter/internal/phc"
)

// Validate checks if the configuration is valid
func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return err
	}

	if err := validatePHC(&cfg.PHC); err != nil {
		return err
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return err
	}

	if err := validateMetrics(&cfg.Metrics); err != nil {
		return err
	}

	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return errors.New("port must be between 1 and 65535, got " + strconv.Itoa(cfg.Port))
	}

	if cfg.ReadTimeout < 1*time.Second || cfg.ReadTimeout > 60*time.Second {
		return errors.New("read_timeout must be between 1s and 60s")
	}

	if cfg.WriteTimeout < 1*time.Second || cfg.WriteTimeout > 60*time.Second {
		return errors.New("write_timeout must be between 1s and 60s")
	}

	if cfg.TLSEnabled {
		if cfg.TLSCertFile == "" {
			return errors.New("tls_cert_file is required when tls_enabled is true")
		}
		if cfg.TLSKeyFile == "" {
			return errors.New("tls_key_file is required when tls_enabled is true")
		}
	}

	return nil
}

func validatePHC(cfg *PHCConfig) error {
	if len(cfg.Devices) == 0 {
		return errors.New("at least one PHC device must be configured")
	}

	for i, device := range cfg.Devices {
		if !strings.HasPrefix(device, "/dev/") {
			return errors.New("devices[" + strconv.Itoa(i) + "]: must be an absolute /dev path, got " + device)
		}
	}

	// The kernel caps bracketed readings at MaxSamples per ioctl; larger
	// requests are rejected here rather than silently truncated.
	if cfg.Samples < 1 || cfg.Samples > phc.MaxSamples {
		return errors.New("samples must be between 1 and " + strconv.Itoa(phc.MaxSamples) + ", got " + strconv.Itoa(cfg.Samples))
	}

	validMethods := map[string]bool{
		"auto":     true,
		"cross":    true,
		"precise":  true,
		"extended": true,
		"basic":    true,
	}
	if !validMethods[cfg.Method] {
		return errors.New("invalid method (must be auto, cross, precise, extended, or basic)")
	}

	if cfg.ScrapeInterval < 1*time.Second || cfg.ScrapeInterval > 10*time.Minute {
		return errors.New("scrape_interval must be between 1s and 10m")
	}

	if cfg.MaxOffset <= 0 {
		return errors.New("max_offset must be positive")
	}

	if cfg.CrossPeriod < 100*time.Microsecond || cfg.CrossPeriod > time.Second {
		return errors.New("cross_period must be between 100us and 1s")
	}

	if cfg.WindowSize < 1 || cfg.WindowSize > 4096 {
		return errors.New("window_size must be between 1 and 4096, got " + strconv.Itoa(cfg.WindowSize))
	}

	// Validate rate limiting
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.GlobalRate < 1 {
			return errors.New("rate_limit.global_rate must be at least 1")
		}
		if cfg.RateLimit.PerDeviceRate < 1 {
			return errors.New("rate_limit.per_device_rate must be at least 1")
		}
		if cfg.RateLimit.BurstSize < 1 {
			return errors.New("rate_limit.burst_size must be at least 1")
		}
	}

	return nil
}

func validateLogging(cfg *LoggingConfig) error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	if !validLevels[cfg.Level] {
		return errors.New("invalid log level (must be trace, debug, info, warn, error, fatal, or panic)")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[cfg.Format] {
		return errors.New("invalid log format (must be json or console)")
	}

	if cfg.EnableFile && cfg.FilePath == "" {
		return errors.New("file_path is required when enable_file is true")
	}

	return nil
}

func validateMetrics(cfg *MetricsConfig) error {
	if cfg.Namespace == "" {
		return errors.New("namespace is required")
	}

	return nil
}
