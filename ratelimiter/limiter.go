package ratelimiter

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/resilience4g/resilience4g/corelog"
)

// AtomicRateLimiter is the lock-free permit algorithm from spec.md §4.6: a
// single compare-and-swap on an immutable state triple, with cycle
// advancement, negative-permit reservation for waiting callers, and a
// bounded park for the caller's reserved cycle to arrive.
type AtomicRateLimiter struct {
	name          string
	refreshPeriod time.Duration
	startNanos    int64

	cur atomic.Pointer[state]

	limitForPeriod  atomic.Int64
	timeoutDuration atomic.Int64 // nanoseconds

	waitingThreads atomic.Int32
	lastWaitNanos  atomic.Int64

	bus    *RLEventBus
	logger corelog.Logger
}

// New constructs an AtomicRateLimiter starting at cycle 0 with a full
// permit bucket.
func New(config *Config, logger corelog.Logger) (*AtomicRateLimiter, error) {
	if config == nil {
		return nil, corelog.NewFrameworkError("ratelimiter.New", "config", corelog.ErrMissingConfiguration)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = corelog.NoOpLogger{}
	}

	rl := &AtomicRateLimiter{
		name:          config.Name,
		refreshPeriod: config.LimitRefreshPeriod,
		startNanos:    time.Now().UnixNano(),
		bus:           NewRLEventBus(),
		logger:        logger,
	}
	rl.limitForPeriod.Store(int64(config.LimitForPeriod))
	rl.timeoutDuration.Store(int64(config.TimeoutDuration))
	rl.cur.Store(&state{cycle: 0, permits: int64(config.LimitForPeriod), waitNanos: 0})
	return rl, nil
}

// Name returns the limiter's configured name.
func (rl *AtomicRateLimiter) Name() string { return rl.name }

// Acquire is GetPermission using the currently configured TimeoutDuration.
func (rl *AtomicRateLimiter) Acquire(ctx context.Context) error {
	timeout := time.Duration(rl.timeoutDuration.Load())
	return rl.GetPermission(ctx, timeout)
}

// GetPermission implements the algorithm in spec.md §4.6 steps 1-7: read
// the current state, advance the cycle if needed, reserve a permit
// (possibly going negative), and either admit immediately, park until the
// reserved cycle arrives, or reject without publishing the reservation if
// the required wait exceeds timeout.
func (rl *AtomicRateLimiter) GetPermission(ctx context.Context, timeout time.Duration) error {
	for {
		now := time.Now().UnixNano() - rl.startNanos
		refresh := int64(rl.refreshPeriod)
		limit := rl.limitForPeriod.Load()

		old := rl.cur.Load()
		currentCycle := uint64(now / refresh)

		permits := old.permits
		if currentCycle > old.cycle {
			// Cycle rolled over: past negative reservations are discarded,
			// their callers already scheduled their own wake-up at the
			// cycle they reserved (spec.md §4.6 step 3).
			permits = limit
		}
		permits--

		var waitNanos int64
		if permits < 0 {
			// ceil(|permits| / limit): with limit=1 a reservation of -1 waits
			// exactly one cycle, -2 waits two, not one cycle further out.
			cyclesToWait := (-permits-1)/limit + 1
			waitNanos = cyclesToWait*refresh - now%refresh
		}

		if waitNanos > timeout.Nanoseconds() {
			// Reject without publishing the reservation: the caller who
			// would wait this long is told no instead, and the state the
			// next caller observes is unaffected by this attempt.
			rl.lastWaitNanos.Store(waitNanos)
			rl.bus.Publish(newEvent(EventRejected, rl.name))
			return &NotPermittedError{Name: rl.name}
		}

		next := &state{cycle: currentCycle, permits: permits, waitNanos: waitNanos}
		if !rl.cur.CompareAndSwap(old, next) {
			continue // lost the race: retry from the top with a fresh read
		}

		rl.lastWaitNanos.Store(waitNanos)

		if waitNanos == 0 {
			rl.bus.Publish(newEvent(EventPermitted, rl.name))
			return nil
		}

		if err := rl.park(ctx, time.Duration(waitNanos)); err != nil {
			return err
		}
		rl.bus.Publish(newEvent(EventPermitted, rl.name))
		return nil
	}
}

// park blocks the caller for exactly d, subject to spurious-wake handling
// (time.Timer never wakes spuriously, so a single select suffices) and
// external cancellation via ctx.
func (rl *AtomicRateLimiter) park(ctx context.Context, d time.Duration) error {
	rl.waitingThreads.Add(1)
	defer rl.waitingThreads.Add(-1)

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AvailablePermissions returns the raw current permit count, including
// negatives for reserved-but-not-yet-admitted waiters (spec.md §4.6
// Metrics: "or exact, including negatives, for the atomic variant").
func (rl *AtomicRateLimiter) AvailablePermissions() int64 {
	return rl.cur.Load().permits
}

// NumberOfWaitingThreads returns the number of callers currently parked.
func (rl *AtomicRateLimiter) NumberOfWaitingThreads() int32 {
	return rl.waitingThreads.Load()
}

// NanosToWait returns the wait duration computed by the most recent
// GetPermission decision.
func (rl *AtomicRateLimiter) NanosToWait() int64 {
	return rl.lastWaitNanos.Load()
}

// ChangeTimeoutDuration atomically updates the timeout used by later
// Acquire calls, without invalidating outstanding reservations.
// GetPermission uses only its own timeout argument, and calls already in
// progress keep the timeout they started with.
func (rl *AtomicRateLimiter) ChangeTimeoutDuration(d time.Duration) {
	rl.timeoutDuration.Store(int64(d))
}

// ChangeLimitForPeriod atomically updates the per-cycle permit count. It
// takes effect starting with the next cycle rollover; outstanding
// reservations made under the old limit are honored as computed. Per
// spec.md §7, administrative state changes always succeed, so n < 1 is
// clamped to 1 rather than accepted: the reservation math at GetPermission
// divides by the stored limit, and a zero or negative value there would
// panic or corrupt the cycle arithmetic on the hot path.
func (rl *AtomicRateLimiter) ChangeLimitForPeriod(n int) {
	if n < 1 {
		n = 1
	}
	rl.limitForPeriod.Store(int64(n))
}

// Subscribe registers fn to receive Permitted/Rejected events emitted by
// this limiter, in emission order, until the returned function is called.
// Delivery is best-effort: an event is dropped when the bus's internal
// queue or this subscriber's buffer is full.
func (rl *AtomicRateLimiter) Subscribe(fn func(Event)) (unsubscribe func()) {
	return rl.bus.Subscribe(fn)
}

// Close shuts down the limiter's event bus.
func (rl *AtomicRateLimiter) Close() {
	rl.bus.Close()
}
