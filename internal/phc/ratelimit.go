package phc

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter bounds how often measurements may hit the device control
// interface, globally and per device
type RateLimiter struct {
	global        *rate.Limiter
	perDevice     map[string]*rate.Limiter
	mu            sync.RWMutex
	perDeviceRate int
	burstSize     int
}

// NewRateLimiter creates a new rate limiter. Rates are measurements per
// second.
func NewRateLimiter(globalRate, perDeviceRate, burstSize int) *RateLimiter {
	return &RateLimiter{
		global:        rate.NewLimiter(rate.Limit(globalRate), burstSize),
		perDevice:     make(map[string]*rate.Limiter),
		perDeviceRate: perDeviceRate,
		burstSize:     burstSize,
	}
}

// Wait waits for permission to measure the given device
func (rl *RateLimiter) Wait(ctx context.Context, device string) error {
	if err := rl.global.Wait(ctx); err != nil {
		return fmt.Errorf("global rate limit: %w", err)
	}

	limiter := rl.getLimiterForDevice(device)
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("per-device rate limit for %s: %w", device, err)
	}

	return nil
}

// Allow reports whether a measurement of the given device may proceed
// right now, without blocking
func (rl *RateLimiter) Allow(device string) bool {
	if !rl.global.Allow() {
		return false
	}
	return rl.getLimiterForDevice(device).Allow()
}

// getLimiterForDevice gets or creates a rate limiter for a device
func (rl *RateLimiter) getLimiterForDevice(device string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.perDevice[device]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Re-check under the write lock
	if limiter, exists = rl.perDevice[device]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(rl.perDeviceRate), rl.burstSize)
	rl.perDevice[device] = limiter
	return limiter
}
