//go:build linux

package phc

import (
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request numbers for /dev/ptp* character devices, computed from the
// struct layouts against linux/ptp_clock.h (magic '='). PTP_CROSSTS_REQUEST
// is out-of-tree; its number is isolated here so a different kernel ABI is
// a one-line change.
const (
	ioctlSysOffset         = 0x43403d05 // _IOW('=', 5, struct ptp_sys_offset)
	ioctlSysOffsetPrecise  = 0xc0403d08 // _IOWR('=', 8, struct ptp_sys_offset_precise)
	ioctlSysOffsetExtended = 0xc4c03d09 // _IOWR('=', 9, struct ptp_sys_offset_extended)
	ioctlCrossTSRequest    = 0x40203d15 // _IOW('=', 21, struct ptp_crossts_request)
)

// PTPDevice is a Device over an opened /dev/ptp* handle. It never closes
// the handle; the caller owns it.
type PTPDevice struct {
	f *os.File
}

// OpenDevice opens a PTP hardware clock character device
func OpenDevice(path string) (Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening PHC device %s: %w", path, err)
	}
	return &PTPDevice{f: f}, nil
}

// NewDevice wraps an already opened PTP clock handle
func NewDevice(f *os.File) *PTPDevice {
	return &PTPDevice{f: f}
}

// Path returns the device path
func (d *PTPDevice) Path() string {
	return d.f.Name()
}

// Close closes the underlying handle
func (d *PTPDevice) Close() error {
	return d.f.Close()
}

func (d *PTPDevice) ioctl(request uintptr, ptr unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), request, uintptr(ptr))
	if errno != 0 {
		return errno
	}
	return nil
}

// ReadPrecise issues PTP_SYS_OFFSET_PRECISE
func (d *PTPDevice) ReadPrecise() (*SysOffsetPrecise, error) {
	res := &SysOffsetPrecise{}
	if err := d.ioctl(ioctlSysOffsetPrecise, unsafe.Pointer(res)); err != nil {
		return nil, fmt.Errorf("PTP_SYS_OFFSET_PRECISE: %w", err)
	}
	return res, nil
}

// ReadExtended issues PTP_SYS_OFFSET_EXTENDED for n samples
func (d *PTPDevice) ReadExtended(n int) (*SysOffsetExtended, error) {
	res := &SysOffsetExtended{NSamples: uint32(n)}
	if err := d.ioctl(ioctlSysOffsetExtended, unsafe.Pointer(res)); err != nil {
		return nil, fmt.Errorf("PTP_SYS_OFFSET_EXTENDED: %w", err)
	}
	return res, nil
}

// ReadBasic issues PTP_SYS_OFFSET for n samples
func (d *PTPDevice) ReadBasic(n int) (*SysOffset, error) {
	res := &SysOffset{NSamples: uint32(n)}
	if err := d.ioctl(ioctlSysOffset, unsafe.Pointer(res)); err != nil {
		return nil, fmt.Errorf("PTP_SYS_OFFSET: %w", err)
	}
	return res, nil
}

// ArmCross issues PTP_CROSSTS_REQUEST with the given sampling period
func (d *PTPDevice) ArmCross(period time.Duration) error {
	req := &CrossTSRequest{Period: FromNanoseconds(period.Nanoseconds())}
	if err := d.ioctl(ioctlCrossTSRequest, unsafe.Pointer(req)); err != nil {
		return fmt.Errorf("PTP_CROSSTS_REQUEST: %w", err)
	}
	return nil
}

// PollEvents checks event stream readiness with a zero timeout and reads
// any pending records into buf. Returns 0 when nothing is queued.
func (d *PTPDevice) PollEvents(buf []byte) (int, error) {
	pfds := []unix.PollFd{{Fd: int32(d.f.Fd()), Events: unix.POLLIN}}
	ready, err := unix.Poll(pfds, 0)
	if err != nil {
		return 0, fmt.Errorf("poll: %w", err)
	}
	if ready < 1 {
		return 0, nil
	}

	n, err := unix.Read(int(d.f.Fd()), buf)
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}
	return n, nil
}

// FD_TO_CLOCKID from linux/posix-timers: ((~fd) << 3) | CLOCKFD
func fdToClockID(fd uintptr) int32 {
	return int32((int(^fd) << 3) | 3)
}

// SystemTime reads CLOCK_REALTIME in nanoseconds
func (d *PTPDevice) SystemTime() (int64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return 0, fmt.Errorf("clock_gettime CLOCK_REALTIME: %w", err)
	}
	return ts.Nano(), nil
}

// DeviceTime reads the hardware clock through its dynamic posix clock id
func (d *PTPDevice) DeviceTime() (int64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(fdToClockID(d.f.Fd()), &ts); err != nil {
		return 0, fmt.Errorf("clock_gettime PHC: %w", err)
	}
	return ts.Nano(), nil
}
