package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/clocknet/phc-exporter/internal/collector"
	"github.com/clocknet/phc-exporter/internal/config"
	"github.com/clocknet/phc-exporter/internal/phc"
	"github.com/clocknet/phc-exporter/internal/server"
	"github.com/clocknet/phc-exporter/pkg/logger"
	"github.com/clocknet/phc-exporter/pkg/metrics"
)

var (
	// Build information
	version = "dev"
)

func main() {
	// Parse command-line flags
	configFile := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		// Use println for version output (user-facing, not logging)
		println("phc-exporter version", version)
		os.Exit(0)
	}

	// Load configuration (before logger is initialized)
	cfg, err := loadConfig(*configFile)
	if err != nil {
		// Cannot use logger yet, write to stderr
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.InitLogger(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.FilePath,
		Component:  "phc-exporter",
		EnableFile: cfg.Logging.EnableFile,
	}); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Log startup information
	logger.Startup(version, "", map[string]interface{}{
		"go_version": runtime.Version(),
		"config":     cfg,
	})

	// Create metrics registry with custom namespace and subsystem from config
	registry := metrics.NewRegistryWithConfig(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	if err := registry.Register(); err != nil {
		logger.Fatal("main", "Failed to register metrics", err)
	}

	// Get metrics instance
	m := registry.GetMetrics()

	// Set build info metric
	m.ExporterBuildInfo.WithLabelValues(version, "", runtime.Version()).Set(1)
	m.ExporterDevicesConfigured.Set(float64(len(cfg.PHC.Devices)))

	// Open the configured hardware clock devices. A device that cannot be
	// opened is skipped rather than fatal, so one missing clock does not
	// take the whole exporter down.
	state := collector.NewDeviceState(cfg.PHC.WindowSize)
	for _, path := range cfg.PHC.Devices {
		dev, err := phc.OpenDevice(path)
		if err != nil {
			logger.WarnFields("main", "Failed to open device, skipping", map[string]interface{}{
				"device": path,
				"error":  err.Error(),
			})
			continue
		}
		state.AddDevice(dev)
	}

	if state.Count() == 0 {
		logger.Warn("main", "No hardware clock devices could be opened")
	}

	// Create collector registry and register collectors
	collectorRegistry := collector.NewRegistry()
	collectorRegistry.Register(collector.NewPHCCollector(cfg, m, state))
	collectorRegistry.Register(collector.NewQualityCollector(cfg, m, state))

	logger.InfoFields("main", "Registered collectors", map[string]interface{}{
		"total":   collectorRegistry.Count(),
		"enabled": collectorRegistry.EnabledCount(),
		"devices": state.Count(),
	})

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start HTTP server
	srv := server.New(cfg, registry.GetRegistry(), m)
	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- srv.Start(ctx)
	}()

	// Start collection loop
	collectorErrChan := make(chan error, 1)
	go func() {
		collectorErrChan <- runCollectionLoop(ctx, cfg, collectorRegistry)
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.InfoFields("main", "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
		cancel()
	case err := <-serverErrChan:
		if err != nil {
			logger.Error("main", "Server error", err)
		}
		cancel()
	case err := <-collectorErrChan:
		if err != nil {
			logger.Error("main", "Collector error", err)
		}
		cancel()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main", "Server shutdown error", err)
	}

	logger.Shutdown("graceful")
}

// loadConfig loads configuration based on whether a config file is specified
func loadConfig(configFile string) (*config.Config, error) {
	if configFile != "" {
		// Load from YAML file with environment variable overrides
		// Priority: Environment Variables > YAML File > Defaults
		return config.LoadFromYamlWithEnvOverrides(configFile)
	}
	// No config file specified, use environment variables only
	// Priority: Environment Variables > Defaults
	return config.LoadFromEnvVarsOnly()
}

// runCollectionLoop runs the metrics collection loop
func runCollectionLoop(
	ctx context.Context,
	cfg *config.Config,
	collectorRegistry *collector.Registry,
) error {
	// Initial collection
	if err := collectorRegistry.CollectAll(ctx); err != nil {
		logger.Warn("main", "Initial collection failed")
	}

	// Collection interval using configured scrape_interval
	ticker := time.NewTicker(cfg.PHC.ScrapeInterval)
	defer ticker.Stop()

	logger.InfoFields("main", "Collection loop started", map[string]interface{}{
		"scrape_interval": cfg.PHC.ScrapeInterval,
	})

	for {
		select {
		case <-ctx.Done():
			logger.Info("main", "Collection loop stopped")
			return nil
		case <-ticker.C:
			start := time.Now()
			if err := collectorRegistry.CollectAll(ctx); err != nil {
				logger.Warn("main", "Collection failed")
			}
			logger.DebugFields("main", "Collection cycle finished", map[string]interface{}{
				"duration": time.Since(start).Seconds(),
			})
		}
	}
}
