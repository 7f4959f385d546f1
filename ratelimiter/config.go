// Package ratelimiter implements the atomic, CAS-based permit algorithm
// described in spec.md §4.6: time is partitioned into fixed-length cycles,
// each cycle restores a bounded permit count, and a caller willing to wait
// reserves a negative permit for a future cycle rather than blocking the
// whole limiter.
package ratelimiter

import (
	"time"

	"github.com/resilience4g/resilience4g/corelog"
)

// Config is the immutable configuration of an AtomicRateLimiter. The
// recognized surface matches spec.md §6 exactly.
type Config struct {
	Name string `json:"name" yaml:"name"`

	// LimitForPeriod must be >= 1.
	LimitForPeriod int `json:"limit_for_period" yaml:"limit_for_period"`

	// LimitRefreshPeriod must be >= 1ns.
	LimitRefreshPeriod time.Duration `json:"limit_refresh_period" yaml:"limit_refresh_period"`

	// TimeoutDuration must be >= 0.
	TimeoutDuration time.Duration `json:"timeout_duration" yaml:"timeout_duration"`
}

// DefaultConfig returns the defaults named in spec.md §6: 50 permits per
// 500ns period, 5s timeout.
func DefaultConfig() *Config {
	return &Config{
		Name:               "default",
		LimitForPeriod:     50,
		LimitRefreshPeriod: 500 * time.Nanosecond,
		TimeoutDuration:    5 * time.Second,
	}
}

// Validate rejects configurations that could never be constructed.
func (c *Config) Validate() error {
	switch {
	case c.LimitForPeriod < 1:
		return corelog.NewFrameworkError("ratelimiter.Config.Validate", "config",
			wrapf("limitForPeriod must be >= 1, got %d", c.LimitForPeriod))
	case c.LimitRefreshPeriod < time.Nanosecond:
		return corelog.NewFrameworkError("ratelimiter.Config.Validate", "config",
			wrapf("limitRefreshPeriod must be >= 1ns, got %v", c.LimitRefreshPeriod))
	case c.TimeoutDuration < 0:
		return corelog.NewFrameworkError("ratelimiter.Config.Validate", "config",
			wrapf("timeoutDuration must be >= 0, got %v", c.TimeoutDuration))
	}
	return nil
}
