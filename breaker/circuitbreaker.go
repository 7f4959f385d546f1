// Package breaker implements a circuit breaker whose admission decisions
// are driven by a moving failure-rate window (ringbuffer.RingBitBuffer)
// rather than a time-bucketed sliding window. See spec.md §4 for the full
// state machine and SPEC_FULL.md for how this package composes with
// corelog, obsmetrics, decorate, and registry.
package breaker

import (
	"time"

	"github.com/resilience4g/resilience4g/corelog"
)

// CircuitBreaker is the aggregate facade over BreakerStateMachine and
// BreakerEventBus. It adds no logic beyond composing the two, per
// spec.md §4.5.
type CircuitBreaker struct {
	name   string
	sm     *BreakerStateMachine
	bus    *BreakerEventBus
	logger corelog.Logger
}

// New constructs a CircuitBreaker from config, starting in StateClosed.
// A nil config is rejected, matching the fail-fast configuration-error
// policy in spec.md §7; use DefaultConfig() for the documented defaults.
func New(config *Config, logger corelog.Logger) (*CircuitBreaker, error) {
	if config == nil {
		return nil, corelog.NewFrameworkError("breaker.New", "config", corelog.ErrMissingConfiguration)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	cfg := config.withDefaults()
	if logger == nil {
		logger = corelog.NoOpLogger{}
	}

	bus := NewBreakerEventBus()
	sm := NewBreakerStateMachine(cfg, bus, logger)

	return &CircuitBreaker{name: cfg.Name, sm: sm, bus: bus, logger: logger}, nil
}

// Name returns the breaker's configured name.
func (cb *CircuitBreaker) Name() string { return cb.name }

// IsCallPermitted reports whether a caller may proceed right now. See
// BreakerStateMachine.IsCallPermitted for the full admission rule.
func (cb *CircuitBreaker) IsCallPermitted() bool {
	return cb.sm.IsCallPermitted()
}

// OnSuccess reports a successful call of the given duration.
func (cb *CircuitBreaker) OnSuccess(duration time.Duration) {
	cb.sm.OnSuccess(duration)
}

// OnError reports a failed call of the given duration. err is classified
// by the configured RecordFailure predicate.
func (cb *CircuitBreaker) OnError(duration time.Duration, err error) {
	cb.sm.OnError(duration, err)
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() State { return cb.sm.State() }

// Metrics returns the currently active metrics window.
func (cb *CircuitBreaker) Metrics() *BreakerMetrics { return cb.sm.Metrics() }

// TransitionToDisabled administratively disables admission checks.
func (cb *CircuitBreaker) TransitionToDisabled() { cb.sm.TransitionToDisabled() }

// TransitionToForcedOpen administratively forces rejection of all calls.
func (cb *CircuitBreaker) TransitionToForcedOpen() { cb.sm.TransitionToForcedOpen() }

// TransitionToClosed administratively moves the breaker back to CLOSED,
// e.g. to move it out of DISABLED or FORCED_OPEN.
func (cb *CircuitBreaker) TransitionToClosed() { cb.sm.TransitionToClosed() }

// Reset returns the breaker to CLOSED with a fresh metrics window.
func (cb *CircuitBreaker) Reset() { cb.sm.Reset() }

// Subscribe registers fn to receive events emitted by this breaker, in
// emission order, until the returned function is called. Delivery is
// best-effort: an event is dropped when the bus's internal queue or this
// subscriber's buffer is full.
func (cb *CircuitBreaker) Subscribe(fn func(Event)) (unsubscribe func()) {
	return cb.bus.Subscribe(fn)
}

// Close shuts down the breaker's event bus. A breaker that is about to be
// discarded (e.g. evicted from a registry) should Close so its dispatch
// goroutine doesn't leak.
func (cb *CircuitBreaker) Close() {
	cb.bus.Close()
}
