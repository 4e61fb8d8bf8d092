package phc

import "encoding/binary"

// CrossEventSize is the wire size of one cross-timestamp event record.
const CrossEventSize = 32

// crossEventValid is the flag bit marking a usable cross-timestamp.
// The delay sub-field occupies the upper half of the flags word, in
// nanoseconds.
const (
	crossEventValid      uint32 = 1 << 0
	crossEventDelayShift        = 16
)

// CrossEvent is one record from the device event stream: a hardware clock
// reading paired with the system timestamp the device captured for it.
type CrossEvent struct {
	T      PTPClockTime
	Tstamp int64
	Flags  uint32
}

// Valid reports whether the cross-timestamp flag bit is set
func (e CrossEvent) Valid() bool {
	return e.Flags&crossEventValid != 0
}

// Delay extracts the device-reported delay sub-field in nanoseconds
func (e CrossEvent) Delay() int64 {
	return int64(e.Flags >> crossEventDelayShift)
}

// decodeCrossEvent interprets one fixed-size record starting at b[0].
// b must hold at least CrossEventSize bytes.
func decodeCrossEvent(b []byte) CrossEvent {
	return CrossEvent{
		T: PTPClockTime{
			Sec:      int64(binary.LittleEndian.Uint64(b[0:8])),
			NSec:     int32(binary.LittleEndian.Uint32(b[8:12])),
			Reserved: binary.LittleEndian.Uint32(b[12:16]),
		},
		Tstamp: int64(binary.LittleEndian.Uint64(b[16:24])),
		Flags:  binary.LittleEndian.Uint32(b[24:28]),
	}
}

// encodeCrossEvent writes e as one fixed-size record into b.
// b must hold at least CrossEventSize bytes. Used by the mock device.
func encodeCrossEvent(b []byte, e CrossEvent) {
	binary.LittleEndian.PutUint64(b[0:8], uint64(e.T.Sec))
	binary.LittleEndian.PutUint32(b[8:12], uint32(e.T.NSec))
	binary.LittleEndian.PutUint32(b[12:16], e.T.Reserved)
	binary.LittleEndian.PutUint64(b[16:24], uint64(e.Tstamp))
	binary.LittleEndian.PutUint32(b[24:28], e.Flags)
	binary.LittleEndian.PutUint32(b[28:32], 0)
}

// lastCrossEvent returns the newest complete record in a buffer of n read
// bytes, or false when the buffer holds less than one record. Older
// records in the same poll are stale and discarded.
func lastCrossEvent(buf []byte, n int) (CrossEvent, bool) {
	if n < CrossEventSize || n > len(buf) {
		return CrossEvent{}, false
	}
	num := n / CrossEventSize
	return decodeCrossEvent(buf[(num-1)*CrossEventSize:]), true
}
