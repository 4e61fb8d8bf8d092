package phc

import "time"

const nsPerSec int64 = 1_000_000_000

// PTPClockTime mirrors struct ptp_clock_time from linux/ptp_clock.h.
// NSec is kept in [0, 1e9) for normalized kernel-facing values; conversion
// from a negative nanosecond count truncates toward zero, so both fields
// carry the sign in that case.
type PTPClockTime struct {
	Sec      int64
	NSec     int32
	Reserved uint32
}

// Nanoseconds converts t to a signed nanosecond count
func (t PTPClockTime) Nanoseconds() int64 {
	return t.Sec*nsPerSec + int64(t.NSec)
}

// Time converts t to a time.Time
func (t PTPClockTime) Time() time.Time {
	return time.Unix(t.Sec, int64(t.NSec))
}

// FromNanoseconds converts a signed nanosecond count to a PTPClockTime.
// Division truncates toward zero, matching the kernel interface convention.
func FromNanoseconds(ns int64) PTPClockTime {
	return PTPClockTime{
		Sec:  ns / nsPerSec,
		NSec: int32(ns % nsPerSec),
	}
}
