// Package decorate implements the decorator contract of spec.md §6: thin
// generic wrappers around an arbitrary callable that acquire permission,
// run the callable, and report the outcome, without any inheritance
// hierarchy between policies. It is grounded on the teacher's
// RetryWithCircuitBreaker composition helper, generalized from a single
// concrete *resilience.CircuitBreaker to any type exposing the core's
// permit/report methods.
package decorate

import (
	"context"
	"time"
)

// Permitter is satisfied by *breaker.CircuitBreaker. It is declared here,
// not imported from breaker, so this package stays usable over test
// doubles without pulling in the breaker package's internals.
type Permitter interface {
	IsCallPermitted() bool
	OnSuccess(duration time.Duration)
	OnError(duration time.Duration, err error)
}

// Waiter is satisfied by *ratelimiter.AtomicRateLimiter.
type Waiter interface {
	GetPermission(ctx context.Context, timeout time.Duration) error
}

// clock lets tests substitute a deterministic now(); production code never
// overrides it.
var clock = time.Now

// Do runs fn under a Permitter (a circuit breaker): if admission is
// denied, fn never runs and the zero value plus the permitter's rejection
// reason is returned. Otherwise fn runs, its duration is measured, and the
// outcome is reported via OnSuccess/OnError before the result is returned.
func Do[T any](p Permitter, rejected error, fn func() (T, error)) (T, error) {
	var zero T
	if !p.IsCallPermitted() {
		return zero, rejected
	}

	t0 := clock()
	result, err := fn()
	duration := clock().Sub(t0)

	if err != nil {
		p.OnError(duration, err)
		return zero, err
	}
	p.OnSuccess(duration)
	return result, nil
}

// Wait runs fn under a Waiter (a rate limiter): GetPermission may block up
// to timeout before admitting the call, or return an error immediately if
// admission isn't possible within that bound. Rate limiters don't receive
// success/error reports per spec.md §4.6 — admission is the only decision
// point — so Wait has no report step, unlike Do.
func Wait[T any](ctx context.Context, w Waiter, timeout time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	if err := w.GetPermission(ctx, timeout); err != nil {
		return zero, err
	}
	return fn()
}

// Chain composes a Waiter and a Permitter around fn: the rate limiter
// gates admission first (the cheaper, non-blocking-on-failure check in
// the common case), then the breaker, then fn runs and reports to the
// breaker. Neither policy's rejection touches the other.
func Chain[T any](ctx context.Context, w Waiter, timeout time.Duration, p Permitter, rejected error, fn func() (T, error)) (T, error) {
	return Wait(ctx, w, timeout, func() (T, error) {
		return Do(p, rejected, fn)
	})
}
