package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clocknet/phc-exporter/internal/config"
	"github.com/clocknet/phc-exporter/pkg/metrics"
)

func newTestMiddleware(cfg *config.Config) *Middleware {
	return NewMiddleware(cfg, metrics.NewPHCMetrics())
}

func TestMiddleware_Apply(t *testing.T) {
	cfg := config.DefaultConfig()
	m := newTestMiddleware(cfg)

	handler := m.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestMiddleware_RecoveryMiddleware(t *testing.T) {
	cfg := config.DefaultConfig()
	m := newTestMiddleware(cfg)

	handler := m.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		handler.ServeHTTP(w, req)
	})
	assert.Equal(t, http.StatusInternalServerError, w.Result().StatusCode)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestMiddleware_MetricsMiddleware_UpdatesRuntimeGauges(t *testing.T) {
	cfg := config.DefaultConfig()
	phcMetrics := metrics.NewPHCMetrics()
	m := NewMiddleware(cfg, phcMetrics)

	handler := m.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// The runtime gauges are populated on every request
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestMiddleware_CORSDisabledByDefault(t *testing.T) {
	cfg := config.DefaultConfig()
	m := newTestMiddleware(cfg)

	handler := m.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMiddleware_CORSAllowedOrigin(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.EnableCORS = true
	cfg.Server.AllowedOrigins = []string{"https://grafana.example.com"}
	m := newTestMiddleware(cfg)

	handler := m.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://grafana.example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, "https://grafana.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMiddleware_CORSBlockedOrigin(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.EnableCORS = true
	cfg.Server.AllowedOrigins = []string{"https://grafana.example.com"}
	m := newTestMiddleware(cfg)

	handler := m.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.net")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMiddleware_IsAllowedOrigin(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.AllowedOrigins = []string{"https://grafana.example.com", "*.corp.example.com"}
	m := newTestMiddleware(cfg)

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://grafana.example.com", true},
		{"https://dash.corp.example.com", true},
		{"https://corp.example.com", true},
		{"https://evil.example.net", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, m.isAllowedOrigin(tt.origin), "origin %q", tt.origin)
	}
}

func TestMiddleware_CORSPreflightRequest(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.EnableCORS = true
	cfg.Server.AllowedOrigins = []string{"https://grafana.example.com"}
	m := newTestMiddleware(cfg)

	called := false
	handler := m.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://grafana.example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.False(t, called, "OPTIONS requests are answered by the middleware")
}
