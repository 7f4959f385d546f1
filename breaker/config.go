package breaker

import (
	"time"

	"github.com/resilience4g/resilience4g/corelog"
)

// RecordFailure classifies a reported error: true means it counts toward
// the failure rate, false means it should be ignored (IgnoredError event,
// no metrics impact).
type RecordFailure func(err error) bool

// DefaultRecordFailure counts every non-nil error as a failure.
func DefaultRecordFailure(err error) bool {
	return err != nil
}

// Config is the immutable configuration of a CircuitBreaker. The
// recognized surface matches spec.md §6 exactly.
type Config struct {
	Name string `json:"name" yaml:"name"`

	// FailureRateThreshold is in (0, 100].
	FailureRateThreshold float64 `json:"failure_rate_threshold" yaml:"failure_rate_threshold"`

	// WaitDurationInOpenState must be >= 1ms.
	WaitDurationInOpenState time.Duration `json:"wait_duration_in_open_state" yaml:"wait_duration_in_open_state"`

	// RingBufferSizeInClosedState must be >= 1.
	RingBufferSizeInClosedState int `json:"ring_buffer_size_in_closed_state" yaml:"ring_buffer_size_in_closed_state"`

	// RingBufferSizeInHalfOpenState must be >= 1.
	RingBufferSizeInHalfOpenState int `json:"ring_buffer_size_in_half_open_state" yaml:"ring_buffer_size_in_half_open_state"`

	// RecordFailure classifies a reported error. Defaults to
	// DefaultRecordFailure. Not serialized.
	RecordFailure RecordFailure `json:"-" yaml:"-"`
}

// DefaultConfig returns the defaults named in spec.md §6: 50% failure rate,
// 60s open wait, 100-call closed window, 10-call half-open window.
func DefaultConfig() *Config {
	return &Config{
		Name:                          "default",
		FailureRateThreshold:          50,
		WaitDurationInOpenState:       60 * time.Second,
		RingBufferSizeInClosedState:   100,
		RingBufferSizeInHalfOpenState: 10,
		RecordFailure:                 DefaultRecordFailure,
	}
}

// Validate rejects configurations that could never be constructed, per the
// fail-fast configuration-error taxonomy in spec.md §7.
func (c *Config) Validate() error {
	switch {
	case c.FailureRateThreshold <= 0 || c.FailureRateThreshold > 100:
		return corelog.NewFrameworkError("breaker.Config.Validate", "config",
			wrapf("failureRateThreshold must be in (0, 100], got %v", c.FailureRateThreshold))
	case c.WaitDurationInOpenState < time.Millisecond:
		return corelog.NewFrameworkError("breaker.Config.Validate", "config",
			wrapf("waitDurationInOpenState must be >= 1ms, got %v", c.WaitDurationInOpenState))
	case c.RingBufferSizeInClosedState < 1:
		return corelog.NewFrameworkError("breaker.Config.Validate", "config",
			wrapf("ringBufferSizeInClosedState must be >= 1, got %d", c.RingBufferSizeInClosedState))
	case c.RingBufferSizeInHalfOpenState < 1:
		return corelog.NewFrameworkError("breaker.Config.Validate", "config",
			wrapf("ringBufferSizeInHalfOpenState must be >= 1, got %d", c.RingBufferSizeInHalfOpenState))
	}
	return nil
}

// withDefaults returns a copy with RecordFailure set to
// DefaultRecordFailure when the caller left it nil. No other field is
// filled in; Validate has already rejected zero values where they matter.
func (c *Config) withDefaults() *Config {
	clone := *c
	if clone.RecordFailure == nil {
		clone.RecordFailure = DefaultRecordFailure
	}
	return &clone
}
