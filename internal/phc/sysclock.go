package phc

import (
	"time"

	"github.com/clocknet/phc-exporter/pkg/logger"
)

// MeasureSysClock is the generic clock-difference fallback for devices
// supporting no sysoff method: it brackets n direct hardware clock reads
// between pairs of system clock reads and ranks them with the same
// narrowest-bracket selection as the bracketed methods.
func MeasureSysClock(r ClockReader, n int) (Result, error) {
	if n < 1 {
		n = 1
	}

	ts := make([]PTPClockTime, 0, 3*n)
	for i := 0; i < n; i++ {
		t1, err := r.SystemTime()
		if err != nil {
			return Result{}, fallbackFailed(r, err)
		}
		tp, err := r.DeviceTime()
		if err != nil {
			return Result{}, fallbackFailed(r, err)
		}
		t2, err := r.SystemTime()
		if err != nil {
			return Result{}, fallbackFailed(r, err)
		}
		ts = append(ts, FromNanoseconds(t1), FromNanoseconds(tp), FromNanoseconds(t2))
	}

	offset, timestamp, interval := selectBest(ts, 3, n)
	return Result{
		Offset:    time.Duration(offset),
		Timestamp: time.Unix(0, timestamp),
		Delay:     time.Duration(interval),
	}, nil
}

func fallbackFailed(r ClockReader, err error) error {
	logger.DebugFields("phc", "clock-difference fallback read failed", map[string]interface{}{
		"device": r.Path(),
		"error":  err.Error(),
	})
	return ErrRuntimeMissing
}
