package phc

import "time"

// Measurement behavior constants
const (
	// DefaultSamples is the default number of bracketed samples per measurement
	DefaultSamples = 5

	// DefaultCrossPeriod is the cross-timestamp sampling period requested
	// when probing device capabilities
	DefaultCrossPeriod = time.Millisecond

	// eventBufSize is the per-call scratch size for one event stream read
	eventBufSize = 4096
)
