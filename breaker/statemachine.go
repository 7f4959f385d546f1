package breaker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/resilience4g/resilience4g/corelog"
)

// BreakerStateMachine holds the current state, owns the metrics window,
// and decides admission and transitions. It is the core of CircuitBreaker;
// CircuitBreaker itself is a thin facade over this plus the event bus.
type BreakerStateMachine struct {
	config *Config
	logger corelog.Logger
	bus    *BreakerEventBus

	// mu serializes state transitions and the threshold decision that
	// drives them. Admission checks take it only when an expired open
	// timer drives OPEN -> HALF_OPEN; metric writes never take it (they
	// take only the ring buffer's own lock).
	mu sync.Mutex

	state         atomic.Int32 // State
	openedAtNanos atomic.Int64

	metrics atomic.Pointer[BreakerMetrics]

	halfOpenInFlight atomic.Int32
}

// NewBreakerStateMachine builds a state machine starting in StateClosed
// with a fresh closed-size metrics window.
func NewBreakerStateMachine(config *Config, bus *BreakerEventBus, logger corelog.Logger) *BreakerStateMachine {
	if logger == nil {
		logger = corelog.NoOpLogger{}
	}
	sm := &BreakerStateMachine{config: config, logger: logger, bus: bus}
	sm.state.Store(int32(StateClosed))
	sm.metrics.Store(NewBreakerMetrics(config.RingBufferSizeInClosedState))
	return sm
}

// State returns the current state.
func (sm *BreakerStateMachine) State() State {
	return State(sm.state.Load())
}

// Metrics returns the currently active metrics window. The pointer
// identity changes on every entry to Open (which pre-stages the half-open
// window) or Closed, and on Reset; callers should
// re-fetch rather than cache it across a call.
func (sm *BreakerStateMachine) Metrics() *BreakerMetrics {
	return sm.metrics.Load()
}

// IsCallPermitted is the admission check described in spec.md §4.3.
func (sm *BreakerStateMachine) IsCallPermitted() bool {
	switch sm.State() {
	case StateClosed, StateDisabled:
		return true
	case StateForcedOpen:
		return false
	case StateOpen:
		return sm.tryLazyHalfOpenTransition()
	case StateHalfOpen:
		return sm.tryAcquireHalfOpenSlot()
	default:
		return false
	}
}

// tryLazyHalfOpenTransition implements the OPEN admission rule: reject
// unless the open timer has elapsed, in which case the caller that
// observes expiry drives the OPEN -> HALF_OPEN transition and is admitted
// as the first probe. Losers of a concurrent race simply observe the new
// state and fall through to the ordinary half-open gate.
func (sm *BreakerStateMachine) tryLazyHalfOpenTransition() bool {
	openedAt := sm.openedAtNanos.Load()
	if time.Now().UnixNano()-openedAt < int64(sm.config.WaitDurationInOpenState) {
		return false
	}

	sm.mu.Lock()
	if sm.State() == StateOpen {
		sm.enterHalfOpenLocked()
	}
	sm.mu.Unlock()

	if sm.State() == StateHalfOpen {
		return sm.tryAcquireHalfOpenSlot()
	}
	return false
}

func (sm *BreakerStateMachine) tryAcquireHalfOpenSlot() bool {
	limit := int32(sm.config.RingBufferSizeInHalfOpenState)
	for {
		cur := sm.halfOpenInFlight.Load()
		if cur >= limit {
			return false
		}
		if sm.halfOpenInFlight.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

func (sm *BreakerStateMachine) releaseHalfOpenSlot() {
	for {
		cur := sm.halfOpenInFlight.Load()
		if cur <= 0 {
			return
		}
		if sm.halfOpenInFlight.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// OnSuccess records a success against whatever state is current at the
// moment of the call (spec.md §4.3 tie-break rule), possibly driving a
// HALF_OPEN -> CLOSED transition.
func (sm *BreakerStateMachine) OnSuccess(duration time.Duration) {
	switch sm.State() {
	case StateDisabled, StateForcedOpen, StateOpen:
		// A well-behaved caller never reports here: IsCallPermitted()
		// already rejected it. Guard anyway rather than writing a stray
		// outcome into the pre-staged half-open window.
		return
	case StateHalfOpen:
		rate := sm.Metrics().OnSuccess()
		sm.releaseHalfOpenSlot()
		sm.publish(Event{Type: EventSuccess, Name: sm.config.Name, Duration: duration})
		sm.evaluateHalfOpen(rate)
	default: // Closed
		rate := sm.Metrics().OnSuccess()
		sm.publish(Event{Type: EventSuccess, Name: sm.config.Name, Duration: duration})
		sm.evaluateClosed(rate)
	}
}

// OnError classifies err via the configured predicate and either records
// a counted failure or emits IgnoredError without touching metrics.
func (sm *BreakerStateMachine) OnError(duration time.Duration, err error) {
	st := sm.State()
	if st == StateDisabled || st == StateForcedOpen || st == StateOpen {
		return
	}

	predicate := sm.config.RecordFailure
	if predicate == nil {
		predicate = DefaultRecordFailure
	}
	if !predicate(err) {
		sm.publish(Event{Type: EventIgnoredError, Name: sm.config.Name, Duration: duration, Cause: err})
		return
	}

	switch st {
	case StateHalfOpen:
		rate := sm.Metrics().OnError()
		sm.releaseHalfOpenSlot()
		sm.publish(Event{Type: EventError, Name: sm.config.Name, Duration: duration, Cause: err})
		sm.evaluateHalfOpen(rate)
	default:
		rate := sm.Metrics().OnError()
		sm.publish(Event{Type: EventError, Name: sm.config.Name, Duration: duration, Cause: err})
		sm.evaluateClosed(rate)
	}
}

// evaluateClosed transitions CLOSED -> OPEN once the closed window is full
// and the failure rate is at or above threshold. Called with whatever
// rate OnSuccess/OnError just observed; RateUnknown means the window
// hasn't filled and no transition can happen yet (invariant 4).
func (sm *BreakerStateMachine) evaluateClosed(rate float64) {
	if rate == RateUnknown || rate < sm.config.FailureRateThreshold {
		return
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.State() == StateClosed {
		sm.enterOpenLocked()
	}
}

// evaluateHalfOpen transitions HALF_OPEN -> OPEN (relapse) or
// HALF_OPEN -> CLOSED (recovery) once the half-open window fills.
// Per spec.md §9's open question, a trickle of successes that never
// saturates the window leaves the breaker in HALF_OPEN indefinitely; that
// behavior is intentionally preserved here, not redesigned.
func (sm *BreakerStateMachine) evaluateHalfOpen(rate float64) {
	if rate == RateUnknown {
		return
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.State() != StateHalfOpen {
		return
	}
	if rate >= sm.config.FailureRateThreshold {
		sm.enterOpenLocked()
	} else {
		sm.enterClosedLocked()
	}
}

// enterOpenLocked must be called with mu held.
func (sm *BreakerStateMachine) enterOpenLocked() {
	from := sm.State()
	sm.openedAtNanos.Store(time.Now().UnixNano())
	// Pre-stage the half-open-sized window now: it is unused while OPEN
	// and ready the instant the lazy OPEN -> HALF_OPEN transition fires.
	sm.metrics.Store(NewBreakerMetrics(sm.config.RingBufferSizeInHalfOpenState))
	sm.halfOpenInFlight.Store(0)
	sm.state.Store(int32(StateOpen))
	sm.publish(Event{Type: EventStateTransition, Name: sm.config.Name, FromState: from, ToState: StateOpen})
}

// enterHalfOpenLocked must be called with mu held.
func (sm *BreakerStateMachine) enterHalfOpenLocked() {
	sm.halfOpenInFlight.Store(0)
	sm.state.Store(int32(StateHalfOpen))
	sm.publish(Event{Type: EventStateTransition, Name: sm.config.Name, FromState: StateOpen, ToState: StateHalfOpen})
}

// enterClosedLocked must be called with mu held.
func (sm *BreakerStateMachine) enterClosedLocked() {
	from := sm.State()
	sm.metrics.Store(NewBreakerMetrics(sm.config.RingBufferSizeInClosedState))
	sm.state.Store(int32(StateClosed))
	sm.publish(Event{Type: EventStateTransition, Name: sm.config.Name, FromState: from, ToState: StateClosed})
}

// TransitionToDisabled administratively moves to DISABLED: admits
// everything, records nothing, transitions nowhere until moved out.
func (sm *BreakerStateMachine) TransitionToDisabled() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	from := sm.State()
	sm.state.Store(int32(StateDisabled))
	sm.publish(Event{Type: EventStateTransition, Name: sm.config.Name, FromState: from, ToState: StateDisabled})
}

// TransitionToForcedOpen administratively moves to FORCED_OPEN: rejects
// everything until moved out.
func (sm *BreakerStateMachine) TransitionToForcedOpen() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	from := sm.State()
	sm.state.Store(int32(StateForcedOpen))
	sm.publish(Event{Type: EventStateTransition, Name: sm.config.Name, FromState: from, ToState: StateForcedOpen})
}

// TransitionToClosed administratively moves to CLOSED with a fresh
// closed-size window, mirroring TransitionToDisabled/TransitionToForcedOpen
// as an explicit operator action rather than Reset's "clear everything"
// semantics (it still emits EventStateTransition, not EventReset).
func (sm *BreakerStateMachine) TransitionToClosed() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.enterClosedLocked()
}

// Reset returns the breaker to CLOSED with a fresh metrics window,
// regardless of current state. reset(); reset() is equivalent to a single
// reset() (spec.md §8 idempotence law): the second call just replaces an
// already-fresh window with another empty one.
func (sm *BreakerStateMachine) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.metrics.Store(NewBreakerMetrics(sm.config.RingBufferSizeInClosedState))
	sm.halfOpenInFlight.Store(0)
	sm.state.Store(int32(StateClosed))
	sm.publish(Event{Type: EventReset, Name: sm.config.Name, ToState: StateClosed})
}

func (sm *BreakerStateMachine) publish(ev Event) {
	ev.ID = uuid.New()
	ev.Timestamp = time.Now()
	if sm.bus != nil {
		sm.bus.Publish(ev)
	}
}
