package logger

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"INFO", zerolog.InfoLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestInitLogger_JSON(t *testing.T) {
	err := InitLogger(Config{
		Level:     "debug",
		Format:    "json",
		Output:    "stdout",
		Component: "test",
	})
	assert.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(Config{
		Level:     "info",
		Format:    "console",
		Component: "test",
	})
	assert.NoError(t, err)
}

func TestInitLogger_File(t *testing.T) {
	tmpDir := t.TempDir()
	path := tmpDir + "/exporter.log"

	err := InitLogger(Config{
		Level:      "info",
		Format:     "json",
		Output:     "file",
		FilePath:   path,
		EnableFile: true,
		Component:  "test",
	})
	assert.NoError(t, err)

	Info("test", "writes to file")
	assert.FileExists(t, path)
}

func TestLoggingHelpers(t *testing.T) {
	err := InitLogger(Config{Level: "debug", Format: "json", Component: "test"})
	assert.NoError(t, err)

	// None of these should panic
	Debug("pkg", "debug message")
	Debugf("pkg", "debug %s", "formatted")
	Info("pkg", "info message")
	Infof("pkg", "info %d", 42)
	Warn("pkg", "warn message")
	Warnf("pkg", "warn %v", time.Second)
	Error("pkg", "error message", assert.AnError)
	Errorf("pkg", assert.AnError, "error %s", "formatted")

	DebugFields("pkg", "fields", map[string]interface{}{"device": "/dev/ptp0"})
	InfoFields("pkg", "fields", map[string]interface{}{"samples": 9})
	WarnFields("pkg", "fields", map[string]interface{}{"method": "basic"})
	ErrorFields("pkg", "fields", assert.AnError, map[string]interface{}{"device": "/dev/ptp0"})

	HTTP("GET", "/metrics", 200, 5*time.Millisecond, "127.0.0.1:1234")
	Measurement("/dev/ptp0", "extended", 120*time.Microsecond, true)
	Measurement("/dev/ptp0", "cross", 10*time.Microsecond, false)
	Shutdown("test complete")
}

func TestWithFields(t *testing.T) {
	err := InitLogger(Config{Level: "info", Format: "json", Component: "test"})
	assert.NoError(t, err)

	sub := WithFields("phc", map[string]interface{}{"device": "/dev/ptp1"})
	sub.Info().Msg("scoped logger works")
}
