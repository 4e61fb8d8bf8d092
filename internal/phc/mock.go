package phc

import (
	"errors"
	"sync"
	"time"
)

var errNotConfigured = errors.New("operation not configured in mock")

// MockDevice is a scriptable fake hardware clock for testing the
// measurement and probing logic without real hardware.
type MockDevice struct {
	mu   sync.Mutex
	path string

	preciseSys  int64
	preciseDev  int64
	hasPrecise  bool
	preciseErr  error
	triplets    [][3]int64
	extendedErr error
	basicTS     []int64
	basicErr    error
	armErr      error
	armedPeriod time.Duration
	events      []byte
	pollErr     error

	callCounts map[string]int
}

// NewMockDevice creates a mock device on which every operation fails
// until configured
func NewMockDevice(path string) *MockDevice {
	return &MockDevice{
		path:       path,
		preciseErr: errNotConfigured,
		armErr:     errNotConfigured,
		callCounts: make(map[string]int),
	}
}

// Path returns the configured device path
func (m *MockDevice) Path() string {
	return m.path
}

// SetupPrecise configures the atomic dual capture with the given system
// and hardware clock readings in nanoseconds
func (m *MockDevice) SetupPrecise(sysNs, devNs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preciseSys = sysNs
	m.preciseDev = devNs
	m.hasPrecise = true
	m.preciseErr = nil
}

// SetPreciseError makes the precise capture fail
func (m *MockDevice) SetPreciseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preciseErr = err
}

// SetupExtended configures independent (before, hardware, after) triplets
// in nanoseconds
func (m *MockDevice) SetupExtended(triplets ...[3]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triplets = triplets
	m.extendedErr = nil
}

// SetExtendedError makes the extended read fail
func (m *MockDevice) SetExtendedError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extendedErr = err
}

// SetupBasic configures the flat alternating timestamp sequence in
// nanoseconds: sys, hw, sys, hw, ..., sys (2n+1 values for n samples)
func (m *MockDevice) SetupBasic(ts ...int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.basicTS = ts
	m.basicErr = nil
}

// SetBasicError makes the basic read fail
func (m *MockDevice) SetBasicError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.basicErr = err
}

// AllowArmCross makes cross-timestamp arming succeed
func (m *MockDevice) AllowArmCross() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armErr = nil
}

// SetArmCrossError makes cross-timestamp arming fail
func (m *MockDevice) SetArmCrossError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armErr = err
}

// SetupCrossEvents queues encoded cross-timestamp event records for the
// next poll
func (m *MockDevice) SetupCrossEvents(events ...CrossEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(events)*CrossEventSize)
	for i, e := range events {
		encodeCrossEvent(buf[i*CrossEventSize:], e)
	}
	m.events = buf
	m.pollErr = nil
}

// SetupRawEvents queues arbitrary bytes for the next poll, for exercising
// partial-record reads
func (m *MockDevice) SetupRawEvents(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = b
	m.pollErr = nil
}

// SetPollError makes the event poll fail
func (m *MockDevice) SetPollError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pollErr = err
}

// ArmedPeriod returns the period passed to the last successful ArmCross
func (m *MockDevice) ArmedPeriod() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armedPeriod
}

// CallCount returns how many times the named operation was invoked
func (m *MockDevice) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCounts[op]
}

// ReadPrecise returns the configured atomic capture
func (m *MockDevice) ReadPrecise() (*SysOffsetPrecise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCounts["precise"]++

	if m.preciseErr != nil {
		return nil, m.preciseErr
	}
	if !m.hasPrecise {
		return nil, errNotConfigured
	}
	return &SysOffsetPrecise{
		Device:      FromNanoseconds(m.preciseDev),
		SysRealtime: FromNanoseconds(m.preciseSys),
	}, nil
}

// ReadExtended returns up to n configured triplets
func (m *MockDevice) ReadExtended(n int) (*SysOffsetExtended, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCounts["extended"]++

	if m.extendedErr != nil {
		return nil, m.extendedErr
	}
	if len(m.triplets) == 0 {
		return nil, errNotConfigured
	}
	res := &SysOffsetExtended{NSamples: uint32(n)}
	for i := 0; i < n && i < len(m.triplets) && i < MaxSamples; i++ {
		res.TS[i][0] = FromNanoseconds(m.triplets[i][0])
		res.TS[i][1] = FromNanoseconds(m.triplets[i][1])
		res.TS[i][2] = FromNanoseconds(m.triplets[i][2])
	}
	return res, nil
}

// ReadBasic returns the configured alternating timestamp sequence
func (m *MockDevice) ReadBasic(n int) (*SysOffset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCounts["basic"]++

	if m.basicErr != nil {
		return nil, m.basicErr
	}
	if len(m.basicTS) == 0 {
		return nil, errNotConfigured
	}
	res := &SysOffset{NSamples: uint32(n)}
	for i := 0; i < len(m.basicTS) && i < len(res.TS); i++ {
		res.TS[i] = FromNanoseconds(m.basicTS[i])
	}
	return res, nil
}

// ArmCross records the requested period
func (m *MockDevice) ArmCross(period time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCounts["arm_cross"]++

	if m.armErr != nil {
		return m.armErr
	}
	m.armedPeriod = period
	return nil
}

// PollEvents copies queued event bytes into buf
func (m *MockDevice) PollEvents(buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCounts["poll_events"]++

	if m.pollErr != nil {
		return 0, m.pollErr
	}
	return copy(buf, m.events), nil
}
