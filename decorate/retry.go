package decorate

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrRetriesExhausted wraps the last error seen once RetryWithBackoff gives
// up, mirroring the teacher's core.ErrMaxRetriesExceeded wrapping pattern
// in resilience/retry.go.
type ErrRetriesExhausted struct {
	Attempts int
	Last     error
}

func (e *ErrRetriesExhausted) Error() string {
	return fmt.Sprintf("max retry attempts (%d) exceeded: %v", e.Attempts, e.Last)
}

func (e *ErrRetriesExhausted) Unwrap() error { return e.Last }

// RetryWithBackoff combines Do (circuit breaker admission + reporting)
// with exponential backoff between attempts, replacing the teacher's
// hand-rolled jitter math with backoff/v5's ExponentialBackOff. A
// permission rejection from the breaker is treated as a permanent error:
// retrying into an open breaker immediately would just re-trip it.
func RetryWithBackoff[T any](ctx context.Context, p Permitter, rejected error, maxAttempts int, fn func() (T, error)) (T, error) {
	attempts := 0

	result, err := backoff.Retry(ctx, func() (T, error) {
		attempts++
		r, err := Do(p, rejected, fn)
		if err == rejected {
			return r, backoff.Permanent(err)
		}
		return r, err
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(uint(maxAttempts)))

	if err != nil {
		var zero T
		if err == rejected {
			return zero, err
		}
		return zero, &ErrRetriesExhausted{Attempts: attempts, Last: err}
	}
	return result, nil
}
