package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCollector is a minimal collector for registry tests
type stubCollector struct {
	name    string
	enabled bool
	err     error
	calls   int
}

func (s *stubCollector) Collect(ctx context.Context) error {
	s.calls++
	return s.err
}

func (s *stubCollector) Name() string  { return s.name }
func (s *stubCollector) Enabled() bool { return s.enabled }

func TestRegistry_RegisterAndCount(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Count())

	r.Register(&stubCollector{name: "a", enabled: true})
	r.Register(&stubCollector{name: "b", enabled: false})

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, 1, r.EnabledCount())
	assert.Len(t, r.List(), 2)
}

func TestRegistry_CollectAllSkipsDisabled(t *testing.T) {
	r := NewRegistry()
	enabled := &stubCollector{name: "on", enabled: true}
	disabled := &stubCollector{name: "off", enabled: false}
	r.Register(enabled)
	r.Register(disabled)

	err := r.CollectAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, enabled.calls)
	assert.Equal(t, 0, disabled.calls)
}

func TestRegistry_CollectAllReturnsFirstError(t *testing.T) {
	r := NewRegistry()
	failing := &stubCollector{name: "bad", enabled: true, err: errors.New("boom")}
	ok := &stubCollector{name: "good", enabled: true}
	r.Register(failing)
	r.Register(ok)

	err := r.CollectAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")

	// All enabled collectors still run despite the failure
	assert.Equal(t, 1, ok.calls)
}
