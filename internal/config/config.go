// Package config provides configuration loading with explicit naming
//
// Available functions:
//
//   LoadFromEnvVarsOnly()                     - Environment variables ONLY
//                                               Use: Docker, Kubernetes (no ConfigMap)
//
//   LoadFromYamlFile(path)                    - YAML file ONLY (no env overrides)
//                                               Use: Local development, testing
//
//   LoadFromYamlWithEnvOverrides(path)        - YAML base + Environment overrides
//                                               Use: Kubernetes (ConfigMap + env vars)
//                                               Priority: Env Vars > YAML > Defaults
//
// Environment variables supported:
//
//   SERVER:
//     - PHC_EXPORTER_ADDRESS, PHC_EXPORTER_PORT
//     - SERVER_READ_TIMEOUT, SERVER_WRITE_TIMEOUT
//     - TLS_ENABLED, TLS_CERT_FILE, TLS_KEY_FILE
//     - ENABLE_CORS, ALLOWED_ORIGINS (comma-separated)
//
//   PHC:
//     - PHC_DEVICES (comma-separated), PHC_SAMPLES, PHC_METHOD
//     - PHC_SCRAPE_INTERVAL, PHC_MAX_OFFSET, PHC_ENABLE_FALLBACK
//     - PHC_CROSS_PERIOD, PHC_WINDOW_SIZE
//
//   RATE_LIMIT:
//     - RATE_LIMIT_ENABLED, RATE_LIMIT_GLOBAL, RATE_LIMIT_PER_DEVICE
//     - RATE_LIMIT_BURST_SIZE
//
//   CIRCUIT_BREAKER:
//     - CIRCUIT_BREAKER_ENABLED, CIRCUIT_BREAKER_MAX_REQUESTS
//     - CIRCUIT_BREAKER_INTERVAL, CIRCUIT_BREAKER_TIMEOUT
//     - CIRCUIT_BREAKER_FAILURE_THRESHOLD
//
//   LOGGING:
//     - LOG_LEVEL (trace|debug|info|warn|error|fatal|panic)
//     - LOG_ENABLE_FILE, LOG_FILE_PATH
//     - Note: LOG_FORMAT is NOT supported (JSON only)
//
//   METRICS:
//     - METRICS_NAMESPACE, METRICS_SUBSYSTEM
//
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/clocknet/phc-exporter/pkg/logger"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	PHC     PHCConfig     `yaml:"phc"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Address        string        `yaml:"address"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	EnableCORS     bool          `yaml:"enable_cors"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	TLSEnabled     bool          `yaml:"tls_enabled"`
	TLSCertFile    string        `yaml:"tls_cert_file"`
	TLSKeyFile     string        `yaml:"tls_key_file"`
}

// PHCConfig contains PTP hardware clock measurement configuration
type PHCConfig struct {
	Devices        []string             `yaml:"devices"`
	Samples        int                  `yaml:"samples"`
	Method         string               `yaml:"method"`
	ScrapeInterval time.Duration        `yaml:"scrape_interval"`
	MaxOffset      time.Duration        `yaml:"max_offset"`
	EnableFallback bool                 `yaml:"enable_fallback"`
	CrossPeriod    time.Duration        `yaml:"cross_period"`
	WindowSize     int                  `yaml:"window_size"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	GlobalRate    int  `yaml:"global_rate"`
	PerDeviceRate int  `yaml:"per_device_rate"`
	BurstSize     int  `yaml:"burst_size"`
}

// CircuitBreakerConfig contains circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	EnableFile bool   `yaml:"enable_file"`
	FilePath   string `yaml:"file_path"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Namespace string            `yaml:"namespace"`
	Subsystem string            `yaml:"subsystem"`
	Labels    map[string]string `yaml:"labels"`
}

// LoadFromYamlFile reads configuration from a YAML file only (no env var overrides)
// Use case: Local development, testing
func LoadFromYamlFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("config", "Failed to read config file", err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		logger.Error("config", "Failed to parse config file", err)
		return nil, fmt.Errorf("failed to parse YAML config file %s: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(cfg)

	// Validate configuration
	if err := Validate(cfg); err != nil {
		logger.Error("config", "Invalid configuration", err)
		return nil, fmt.Errorf("configuration validation failed for %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromYamlWithEnvOverrides loads base config from YAML, then overrides with environment variables
// Use case: Kubernetes with ConfigMaps + env vars, Docker with config file + env vars
// Priority: Environment Variables > YAML File > Defaults
func LoadFromYamlWithEnvOverrides(path string) (*Config, error) {
	// First, try to load from YAML file
	cfg, err := LoadFromYamlFile(path)
	if err != nil {
		logger.Warn("config", "Failed to load YAML config file, falling back to env vars only")
		// If file doesn't exist, start from defaults
		cfg = &Config{}
		ApplyDefaults(cfg)
	}

	// Override with environment variables
	applyEnvOverrides(cfg)

	// Validate final configuration
	if err := Validate(cfg); err != nil {
		logger.Error("config", "Invalid configuration after env overrides", err)
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to an existing config
func applyEnvOverrides(cfg *Config) {
	// ---------------------------------------------------------------------------
	// SERVER - HTTP Server configuration
	// ---------------------------------------------------------------------------
	if addr := os.Getenv("PHC_EXPORTER_ADDRESS"); addr != "" {
		cfg.Server.Address = addr
	}
	if port := os.Getenv("PHC_EXPORTER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if readTimeout := os.Getenv("SERVER_READ_TIMEOUT"); readTimeout != "" {
		if t, err := time.ParseDuration(readTimeout); err == nil {
			cfg.Server.ReadTimeout = t
		}
	}
	if writeTimeout := os.Getenv("SERVER_WRITE_TIMEOUT"); writeTimeout != "" {
		if t, err := time.ParseDuration(writeTimeout); err == nil {
			cfg.Server.WriteTimeout = t
		}
	}
	if tlsEnabled := os.Getenv("TLS_ENABLED"); tlsEnabled != "" {
		if b, err := strconv.ParseBool(tlsEnabled); err == nil {
			cfg.Server.TLSEnabled = b
		}
	}
	if tlsCert := os.Getenv("TLS_CERT_FILE"); tlsCert != "" {
		cfg.Server.TLSCertFile = tlsCert
	}
	if tlsKey := os.Getenv("TLS_KEY_FILE"); tlsKey != "" {
		cfg.Server.TLSKeyFile = tlsKey
	}
	if enableCORS := os.Getenv("ENABLE_CORS"); enableCORS != "" {
		if b, err := strconv.ParseBool(enableCORS); err == nil {
			cfg.Server.EnableCORS = b
		}
	}
	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		cfg.Server.AllowedOrigins = parseCommaSeparated(allowedOrigins)
	}

	// ---------------------------------------------------------------------------
	// PHC - Hardware clock measurement configuration
	// ---------------------------------------------------------------------------
	if devices := os.Getenv("PHC_DEVICES"); devices != "" {
		cfg.PHC.Devices = parseCommaSeparated(devices)
	}
	if samples := os.Getenv("PHC_SAMPLES"); samples != "" {
		if s, err := strconv.Atoi(samples); err == nil {
			cfg.PHC.Samples = s
		}
	}
	if method := os.Getenv("PHC_METHOD"); method != "" {
		cfg.PHC.Method = method
	}
	if interval := os.Getenv("PHC_SCRAPE_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.PHC.ScrapeInterval = d
		}
	}
	if maxOffset := os.Getenv("PHC_MAX_OFFSET"); maxOffset != "" {
		if d, err := time.ParseDuration(maxOffset); err == nil {
			cfg.PHC.MaxOffset = d
		}
	}
	if fallback := os.Getenv("PHC_ENABLE_FALLBACK"); fallback != "" {
		if b, err := strconv.ParseBool(fallback); err == nil {
			cfg.PHC.EnableFallback = b
		}
	}
	if crossPeriod := os.Getenv("PHC_CROSS_PERIOD"); crossPeriod != "" {
		if d, err := time.ParseDuration(crossPeriod); err == nil {
			cfg.PHC.CrossPeriod = d
		}
	}
	if windowSize := os.Getenv("PHC_WINDOW_SIZE"); windowSize != "" {
		if s, err := strconv.Atoi(windowSize); err == nil {
			cfg.PHC.WindowSize = s
		}
	}

	// ---------------------------------------------------------------------------
	// RATE LIMIT - Rate limiting configuration
	// ---------------------------------------------------------------------------
	if rateLimitEnabled := os.Getenv("RATE_LIMIT_ENABLED"); rateLimitEnabled != "" {
		if b, err := strconv.ParseBool(rateLimitEnabled); err == nil {
			cfg.PHC.RateLimit.Enabled = b
		}
	}
	if globalRate := os.Getenv("RATE_LIMIT_GLOBAL"); globalRate != "" {
		if r, err := strconv.Atoi(globalRate); err == nil {
			cfg.PHC.RateLimit.GlobalRate = r
		}
	}
	if perDeviceRate := os.Getenv("RATE_LIMIT_PER_DEVICE"); perDeviceRate != "" {
		if r, err := strconv.Atoi(perDeviceRate); err == nil {
			cfg.PHC.RateLimit.PerDeviceRate = r
		}
	}
	if burstSize := os.Getenv("RATE_LIMIT_BURST_SIZE"); burstSize != "" {
		if b, err := strconv.Atoi(burstSize); err == nil {
			cfg.PHC.RateLimit.BurstSize = b
		}
	}

	// ---------------------------------------------------------------------------
	// CIRCUIT BREAKER - Circuit breaker configuration
	// ---------------------------------------------------------------------------
	if cbEnabled := os.Getenv("CIRCUIT_BREAKER_ENABLED"); cbEnabled != "" {
		if b, err := strconv.ParseBool(cbEnabled); err == nil {
			cfg.PHC.CircuitBreaker.Enabled = b
		}
	}
	if maxRequests := os.Getenv("CIRCUIT_BREAKER_MAX_REQUESTS"); maxRequests != "" {
		if r, err := strconv.ParseUint(maxRequests, 10, 32); err == nil {
			cfg.PHC.CircuitBreaker.MaxRequests = uint32(r)
		}
	}
	if cbInterval := os.Getenv("CIRCUIT_BREAKER_INTERVAL"); cbInterval != "" {
		if i, err := time.ParseDuration(cbInterval); err == nil {
			cfg.PHC.CircuitBreaker.Interval = i
		}
	}
	if cbTimeout := os.Getenv("CIRCUIT_BREAKER_TIMEOUT"); cbTimeout != "" {
		if t, err := time.ParseDuration(cbTimeout); err == nil {
			cfg.PHC.CircuitBreaker.Timeout = t
		}
	}
	if failureThreshold := os.Getenv("CIRCUIT_BREAKER_FAILURE_THRESHOLD"); failureThreshold != "" {
		if f, err := strconv.ParseUint(failureThreshold, 10, 32); err == nil {
			cfg.PHC.CircuitBreaker.FailureThreshold = uint32(f)
		}
	}

	// ---------------------------------------------------------------------------
	// LOGGING - Logging configuration
	// ---------------------------------------------------------------------------
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if enableFile := os.Getenv("LOG_ENABLE_FILE"); enableFile != "" {
		if b, err := strconv.ParseBool(enableFile); err == nil {
			cfg.Logging.EnableFile = b
		}
	}
	if filePath := os.Getenv("LOG_FILE_PATH"); filePath != "" {
		cfg.Logging.FilePath = filePath
	}

	// ---------------------------------------------------------------------------
	// METRICS - Prometheus metrics configuration
	// ---------------------------------------------------------------------------
	if namespace := os.Getenv("METRICS_NAMESPACE"); namespace != "" {
		cfg.Metrics.Namespace = namespace
	}
	if subsystem := os.Getenv("METRICS_SUBSYSTEM"); subsystem != "" {
		cfg.Metrics.Subsystem = subsystem
	}
}

// LoadFromEnvVarsOnly loads configuration from environment variables only (no YAML file)
// Use case: Docker containers, Kubernetes pods without ConfigMaps
// Priority: Environment Variables > Defaults
func LoadFromEnvVarsOnly() (*Config, error) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		logger.Error("config", "Invalid configuration from environment", err)
		return nil, fmt.Errorf("environment configuration validation failed: %w", err)
	}

	return cfg, nil
}

// parseCommaSeparated splits a comma-separated string
func parseCommaSeparated(s string) []string {
	var result []string
	for _, item := range splitByComma(s) {
		if trimmed := trim(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// splitByComma splits a string by comma delimiters.
// This is a utility function for parsing comma-separated values.
func splitByComma(s string) []string {
	var parts []string
	current := ""
	for _, char := range s {
		if char == ',' {
			parts = append(parts, current)
			current = ""
		} else {
			current += string(char)
		}
	}
	if current != "" {
		parts = append(parts, current)
	}
	return parts
}

// trim removes leading and trailing whitespace characters from a string.
// Handles spaces, tabs, and newlines.
func trim(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n') {
		end--
	}
	return s[start:end]
}
