package breaker

import (
	"time"

	"gopkg.in/yaml.v3"
)

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// yamlConfig mirrors Config minus the RecordFailure predicate, which is a
// function value and cannot round-trip through YAML. Marshaling a Config
// and unmarshaling it back yields a functionally identical instance
// (spec.md §8 round-trip law): the predicate defaults back to
// DefaultRecordFailure, matching what DefaultConfig() would have set.
type yamlConfig struct {
	Name                          string  `yaml:"name"`
	FailureRateThreshold          float64 `yaml:"failure_rate_threshold"`
	WaitDurationInOpenState       string  `yaml:"wait_duration_in_open_state"`
	RingBufferSizeInClosedState   int     `yaml:"ring_buffer_size_in_closed_state"`
	RingBufferSizeInHalfOpenState int     `yaml:"ring_buffer_size_in_half_open_state"`
}

// MarshalYAML implements yaml.Marshaler.
func (c *Config) MarshalYAML() (interface{}, error) {
	return yamlConfig{
		Name:                          c.Name,
		FailureRateThreshold:          c.FailureRateThreshold,
		WaitDurationInOpenState:       c.WaitDurationInOpenState.String(),
		RingBufferSizeInClosedState:   c.RingBufferSizeInClosedState,
		RingBufferSizeInHalfOpenState: c.RingBufferSizeInHalfOpenState,
	}, nil
}

// UnmarshalYAML implements yaml.v3's Unmarshaler (node-based, not the
// yaml.v2 callback style).
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw yamlConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}
	wait, err := parseDuration(raw.WaitDurationInOpenState)
	if err != nil {
		return err
	}
	c.Name = raw.Name
	c.FailureRateThreshold = raw.FailureRateThreshold
	c.WaitDurationInOpenState = wait
	c.RingBufferSizeInClosedState = raw.RingBufferSizeInClosedState
	c.RingBufferSizeInHalfOpenState = raw.RingBufferSizeInHalfOpenState
	c.RecordFailure = DefaultRecordFailure
	return nil
}

var _ yaml.Marshaler = (*Config)(nil)
var _ yaml.Unmarshaler = (*Config)(nil)
