package breaker

import (
	"errors"
	"fmt"
)

// ErrCircuitBreakerOpen is returned by IsCallPermitted-gated callers (via
// the decorate package) when the breaker is in StateOpen or
// StateForcedOpen. Value-identified per spec.md §6.
var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

// ErrHalfOpenProbesExhausted describes a half-open breaker that has
// already admitted RingBufferSizeInHalfOpenState concurrent probe calls.
// No function in this module returns it: IsCallPermitted reports that
// case as false, and decorate.Do returns its caller's rejection error.
var ErrHalfOpenProbesExhausted = errors.New("circuit breaker half-open probe limit reached")

// OpenError wraps ErrCircuitBreakerOpen with the breaker's name so callers
// can report which policy rejected them while still matching
// errors.Is(err, ErrCircuitBreakerOpen).
type OpenError struct {
	Name string
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit breaker %q is open", e.Name)
}

func (e *OpenError) Unwrap() error { return ErrCircuitBreakerOpen }

func wrapf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
