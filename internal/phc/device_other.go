//go:build !linux

package phc

import "errors"

// OpenDevice is only available on Linux, where PTP hardware clocks are
// exposed as /dev/ptp* character devices.
func OpenDevice(path string) (Device, error) {
	return nil, errors.New("PTP hardware clocks are not supported on this platform")
}
