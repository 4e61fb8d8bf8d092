// Package phc estimates the offset between a PTP hardware clock and the
// system clock.
//
// A device may support up to four measurement methods, probed in priority
// order at startup:
//   - Cross: the device streams hardware/system cross-timestamp events
//   - Precise: one atomic capture of both clocks
//   - Extended: n independent bracketed samples in one request
//   - Basic: n overlapping bracketed samples in one request
//
// Bracketed methods return several noisy samples; the narrowest bracket is
// selected as the lowest-jitter estimate. Every failure is the single
// recoverable kind ErrRuntimeMissing: the method is not usable on this
// device right now and the caller should fall back.
package phc

import (
	"errors"
	"time"

	"github.com/clocknet/phc-exporter/pkg/logger"
)

// ErrRuntimeMissing reports that a measurement method is not currently
// usable on the device. It is the only failure kind measurements return;
// the caller decides whether to retry, fall back or abort.
var ErrRuntimeMissing = errors.New("method not currently usable on this device")

// Method identifies a measurement method. The declaration order is the
// probing priority, from richest to noisiest.
type Method int

// Measurement methods in probing priority order
const (
	MethodCross Method = iota
	MethodPrecise
	MethodExtended
	MethodBasic
	methodLast

	// MethodUnsupported is the sentinel for a device supporting no method
	MethodUnsupported Method = -1
)

// String returns the method name used in logs and metric labels
func (m Method) String() string {
	switch m {
	case MethodCross:
		return "cross"
	case MethodPrecise:
		return "precise"
	case MethodExtended:
		return "extended"
	case MethodBasic:
		return "basic"
	default:
		return "unsupported"
	}
}

// ParseMethod maps a method name to its Method. Unknown names map to
// MethodUnsupported.
func ParseMethod(name string) Method {
	switch name {
	case "cross":
		return MethodCross
	case "precise":
		return MethodPrecise
	case "extended":
		return MethodExtended
	case "basic":
		return MethodBasic
	}
	return MethodUnsupported
}

// Result is one offset measurement. Offset is the signed difference
// between the clocks at Timestamp; Delay bounds the uncertainty of the
// sample (bracket width, or the device-reported figure for Cross).
type Result struct {
	Offset    time.Duration
	Timestamp time.Time
	Delay     time.Duration
}

// selectBest ranks n bracketed samples laid out in ts with the given
// stride (3 for independent triplets, 2 for overlapping ones) and returns
// the sample with the narrowest bracket. The bracket width bounds the
// scheduling jitter between the two system clock reads, so the narrowest
// bracket is the most trustworthy estimate of where the hardware read
// fell. The strict less-than keeps the lowest index on ties.
func selectBest(ts []PTPClockTime, stride, n int) (offset, timestamp, interval int64) {
	t1 := ts[0].Nanoseconds()
	tp := ts[1].Nanoseconds()
	t2 := ts[2].Nanoseconds()

	interval = t2 - t1
	timestamp = (t2 + t1) / 2
	offset = timestamp - tp

	for i := 1; i < n; i++ {
		t1 = ts[stride*i].Nanoseconds()
		tp = ts[stride*i+1].Nanoseconds()
		t2 = ts[stride*i+2].Nanoseconds()

		iv := t2 - t1
		if iv < interval {
			interval = iv
			timestamp = (t2 + t1) / 2
			offset = timestamp - tp
		}
	}

	return offset, timestamp, interval
}

// measurePrecise issues one atomic dual capture. The read has no bracket
// uncertainty, so Delay is zero.
func measurePrecise(dev Device) (Result, error) {
	pso, err := dev.ReadPrecise()
	if err != nil {
		logger.DebugFields("phc", "PTP_SYS_OFFSET_PRECISE failed", map[string]interface{}{
			"device": dev.Path(),
			"error":  err.Error(),
		})
		return Result{}, ErrRuntimeMissing
	}

	sys := pso.SysRealtime.Nanoseconds()
	return Result{
		Offset:    time.Duration(sys - pso.Device.Nanoseconds()),
		Timestamp: time.Unix(0, sys),
	}, nil
}

// measureCross drains the event stream without blocking and uses only the
// newest complete record; older records in the same poll are stale.
func measureCross(dev Device) (Result, error) {
	buf := make([]byte, eventBufSize)
	n, err := dev.PollEvents(buf)
	if err != nil {
		logger.DebugFields("phc", "cross-timestamp event read failed", map[string]interface{}{
			"device": dev.Path(),
			"error":  err.Error(),
		})
		return Result{}, ErrRuntimeMissing
	}

	event, ok := lastCrossEvent(buf, n)
	if !ok {
		logger.DebugFields("phc", "no complete cross-timestamp event available", map[string]interface{}{
			"device": dev.Path(),
			"bytes":  n,
		})
		return Result{}, ErrRuntimeMissing
	}
	if !event.Valid() {
		logger.DebugFields("phc", "cross-timestamp event flags invalid", map[string]interface{}{
			"device": dev.Path(),
			"flags":  event.Flags,
		})
		return Result{}, ErrRuntimeMissing
	}

	device := event.T.Nanoseconds()
	return Result{
		Offset:    time.Duration(device - event.Tstamp),
		Timestamp: time.Unix(0, device),
		Delay:     time.Duration(event.Delay()),
	}, nil
}

// measureExtended requests n independent triplets and picks the best one
func measureExtended(dev Device, n int) (Result, error) {
	pso, err := dev.ReadExtended(n)
	if err != nil {
		logger.DebugFields("phc", "PTP_SYS_OFFSET_EXTENDED failed", map[string]interface{}{
			"device": dev.Path(),
			"error":  err.Error(),
		})
		return Result{}, ErrRuntimeMissing
	}

	ts := make([]PTPClockTime, 0, 3*n)
	for i := 0; i < n; i++ {
		ts = append(ts, pso.TS[i][0], pso.TS[i][1], pso.TS[i][2])
	}

	offset, timestamp, interval := selectBest(ts, 3, n)
	return Result{
		Offset:    time.Duration(offset),
		Timestamp: time.Unix(0, timestamp),
		Delay:     time.Duration(interval),
	}, nil
}

// measureBasic requests 2n+1 alternating timestamps forming n overlapping
// brackets and picks the best one. The overlapping layout halves the
// response payload at the cost of samples sharing a boundary timestamp.
func measureBasic(dev Device, n int) (Result, error) {
	pso, err := dev.ReadBasic(n)
	if err != nil {
		logger.DebugFields("phc", "PTP_SYS_OFFSET failed", map[string]interface{}{
			"device": dev.Path(),
			"error":  err.Error(),
		})
		return Result{}, ErrRuntimeMissing
	}

	offset, timestamp, interval := selectBest(pso.TS[:], 2, n)
	return Result{
		Offset:    time.Duration(offset),
		Timestamp: time.Unix(0, timestamp),
		Delay:     time.Duration(interval),
	}, nil
}

// EnableCross arms periodic cross-timestamp event generation. This is a
// side-effecting setup call, not a measurement: success makes the Cross
// method available once the event queue has had time to fill.
func EnableCross(dev Device, period time.Duration) error {
	if err := dev.ArmCross(period); err != nil {
		logger.DebugFields("phc", "PTP_CROSSTS_REQUEST failed", map[string]interface{}{
			"device": dev.Path(),
			"period": period.String(),
			"error":  err.Error(),
		})
		return ErrRuntimeMissing
	}
	return nil
}

// Measure performs one offset measurement with the given method.
// n is the sample count for the bracketed methods and is ignored by
// Precise and Cross. Unknown methods report ErrRuntimeMissing.
func Measure(dev Device, method Method, n int) (Result, error) {
	switch method {
	case MethodCross:
		return measureCross(dev)
	case MethodPrecise:
		return measurePrecise(dev)
	case MethodExtended, MethodBasic:
		if n < 1 || n > MaxSamples {
			return Result{}, ErrRuntimeMissing
		}
		if method == MethodExtended {
			return measureExtended(dev, n)
		}
		return measureBasic(dev, n)
	}
	return Result{}, ErrRuntimeMissing
}

// Probe determines the best method the device supports, once per device
// session. Cross is declared usable as soon as arming succeeds and is
// never trial-read here, because the event queue needs time to fill. The
// remaining methods are tried in priority order with a throwaway read.
func Probe(dev Device, n int) (Method, error) {
	if n > MaxSamples {
		logger.WarnFields("phc", "Requested sample count exceeds the kernel maximum, falling back to clock-difference measurement", map[string]interface{}{
			"device":    dev.Path(),
			"requested": n,
			"max":       MaxSamples,
		})
		return MethodUnsupported, ErrRuntimeMissing
	}

	if err := EnableCross(dev, DefaultCrossPeriod); err == nil {
		return MethodCross, nil
	}

	for method := MethodCross + 1; method < methodLast; method++ {
		if _, err := Measure(dev, method, n); err != nil {
			continue
		}
		return method, nil
	}

	return MethodUnsupported, ErrRuntimeMissing
}
