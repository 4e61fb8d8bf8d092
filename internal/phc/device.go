package phc

import "time"

// MaxSamples is PTP_MAX_SAMPLES from linux/ptp_clock.h, the largest number
// of offset samples the kernel fills in one request.
const MaxSamples = 25

// SysOffset mirrors struct ptp_sys_offset. The kernel fills TS with
// 2*NSamples+1 alternating system/hardware timestamps: sample i uses
// TS[2i] (system), TS[2i+1] (hardware), TS[2i+2] (system), so consecutive
// samples share a boundary timestamp.
type SysOffset struct {
	NSamples uint32
	Reserved [3]uint32
	TS       [2*MaxSamples + 1]PTPClockTime
}

// SysOffsetExtended mirrors struct ptp_sys_offset_extended. Each of the
// NSamples rows is an independent (system, hardware, system) triplet.
type SysOffsetExtended struct {
	NSamples uint32
	Reserved [3]uint32
	TS       [MaxSamples][3]PTPClockTime
}

// SysOffsetPrecise mirrors struct ptp_sys_offset_precise: one atomic
// capture of the hardware clock and the system clocks.
type SysOffsetPrecise struct {
	Device      PTPClockTime
	SysRealtime PTPClockTime
	SysMonoRaw  PTPClockTime
	Reserved    [4]uint32
}

// CrossTSRequest mirrors struct ptp_crossts_request: arms periodic
// cross-timestamp event generation with the given period.
type CrossTSRequest struct {
	Period   PTPClockTime
	Reserved [4]uint32
}

// Device is the capability surface of an opened hardware clock handle.
// Each call issues one synchronous control request; the handle is owned by
// the caller and must not be used from multiple goroutines concurrently.
type Device interface {
	// Path identifies the device for logging and metric labels
	Path() string

	// ReadPrecise atomically captures the hardware and system clocks
	ReadPrecise() (*SysOffsetPrecise, error)

	// ReadExtended fills n independent bracketed triplets
	ReadExtended(n int) (*SysOffsetExtended, error)

	// ReadBasic fills 2n+1 alternating timestamps forming n overlapping brackets
	ReadBasic(n int) (*SysOffset, error)

	// ArmCross asks the device to start periodic cross-timestamp events
	ArmCross(period time.Duration) error

	// PollEvents performs a zero-timeout readiness check on the event
	// stream and, if data is pending, reads it into buf. It never blocks;
	// it returns 0 when no events are ready.
	PollEvents(buf []byte) (int, error)
}

// ClockReader reads the raw clocks behind a device, for the generic
// clock-difference fallback used when no sysoff method is supported.
type ClockReader interface {
	Path() string

	// SystemTime reads CLOCK_REALTIME in nanoseconds
	SystemTime() (int64, error)

	// DeviceTime reads the hardware clock in nanoseconds
	DeviceTime() (int64, error)
}
