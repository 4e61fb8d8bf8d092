package phc

import (
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/clocknet/phc-exporter/pkg/logger"
)

// ErrBreakerOpen reports that measurements of a device are suspended
// because it has failed too many times in a row
var ErrBreakerOpen = errors.New("device circuit breaker is open")

// BreakerConfig holds circuit breaker configuration
type BreakerConfig struct {
	// MaxRequests is the number of trial measurements allowed while half-open
	MaxRequests uint32

	// Interval is the cyclic period of the closed state after which
	// failure counts are cleared
	Interval time.Duration

	// Timeout is the open-state duration before the breaker half-opens
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that trips
	// the breaker
	FailureThreshold uint32
}

// DeviceBreaker trips persistently failing devices so a dead or
// misbehaving hardware clock does not burn a control request every scrape
type DeviceBreaker struct {
	mu       sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker
	config   BreakerConfig
}

// NewDeviceBreaker creates a breaker set with the given configuration
func NewDeviceBreaker(cfg BreakerConfig) *DeviceBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	return &DeviceBreaker{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		config:   cfg,
	}
}

// Execute runs one measurement through the breaker for the given device
func (b *DeviceBreaker) Execute(device string, fn func() (Result, error)) (Result, error) {
	breaker := b.getBreakerForDevice(device)

	res, err := breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Result{}, ErrBreakerOpen
		}
		return Result{}, err
	}

	return res.(Result), nil
}

// State returns the breaker state for a device
func (b *DeviceBreaker) State(device string) gobreaker.State {
	return b.getBreakerForDevice(device).State()
}

func (b *DeviceBreaker) getBreakerForDevice(device string) *gobreaker.CircuitBreaker {
	b.mu.RLock()
	breaker, exists := b.breakers[device]
	b.mu.RUnlock()

	if exists {
		return breaker
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if breaker, exists = b.breakers[device]; exists {
		return breaker
	}

	threshold := b.config.FailureThreshold
	breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        device,
		MaxRequests: b.config.MaxRequests,
		Interval:    b.config.Interval,
		Timeout:     b.config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WarnFields("phc", "Device circuit breaker state changed", map[string]interface{}{
				"device": name,
				"from":   from.String(),
				"to":     to.String(),
			})
		},
	})
	b.breakers[device] = breaker
	return breaker
}
