package phc

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceBreaker_PassesThroughSuccess(t *testing.T) {
	b := NewDeviceBreaker(BreakerConfig{FailureThreshold: 3, Timeout: time.Minute})

	res, err := b.Execute("/dev/ptp0", func() (Result, error) {
		return Result{Offset: 50 * time.Nanosecond}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 50*time.Nanosecond, res.Offset)
	assert.Equal(t, gobreaker.StateClosed, b.State("/dev/ptp0"))
}

func TestDeviceBreaker_PassesThroughFailure(t *testing.T) {
	b := NewDeviceBreaker(BreakerConfig{FailureThreshold: 3, Timeout: time.Minute})

	_, err := b.Execute("/dev/ptp0", func() (Result, error) {
		return Result{}, ErrRuntimeMissing
	})
	assert.ErrorIs(t, err, ErrRuntimeMissing)
}

func TestDeviceBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := NewDeviceBreaker(BreakerConfig{FailureThreshold: 3, Timeout: time.Minute})

	fail := func() (Result, error) { return Result{}, ErrRuntimeMissing }

	for i := 0; i < 3; i++ {
		_, err := b.Execute("/dev/ptp0", fail)
		assert.ErrorIs(t, err, ErrRuntimeMissing)
	}

	assert.Equal(t, gobreaker.StateOpen, b.State("/dev/ptp0"))

	_, err := b.Execute("/dev/ptp0", fail)
	assert.ErrorIs(t, err, ErrBreakerOpen)
}

func TestDeviceBreaker_PerDeviceIsolation(t *testing.T) {
	b := NewDeviceBreaker(BreakerConfig{FailureThreshold: 1, Timeout: time.Minute})

	_, err := b.Execute("/dev/ptp0", func() (Result, error) {
		return Result{}, ErrRuntimeMissing
	})
	assert.ErrorIs(t, err, ErrRuntimeMissing)
	assert.Equal(t, gobreaker.StateOpen, b.State("/dev/ptp0"))

	// The other device is unaffected
	res, err := b.Execute("/dev/ptp1", func() (Result, error) {
		return Result{Offset: time.Nanosecond}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, time.Nanosecond, res.Offset)
}

func TestDeviceBreaker_RecoversAfterTimeout(t *testing.T) {
	b := NewDeviceBreaker(BreakerConfig{
		FailureThreshold: 1,
		MaxRequests:      1,
		Timeout:          20 * time.Millisecond,
	})

	_, err := b.Execute("/dev/ptp0", func() (Result, error) {
		return Result{}, errors.New("EIO")
	})
	assert.Error(t, err)
	assert.Equal(t, gobreaker.StateOpen, b.State("/dev/ptp0"))

	time.Sleep(30 * time.Millisecond)

	res, err := b.Execute("/dev/ptp0", func() (Result, error) {
		return Result{Offset: 5 * time.Nanosecond}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Nanosecond, res.Offset)
	assert.Equal(t, gobreaker.StateClosed, b.State("/dev/ptp0"))
}
