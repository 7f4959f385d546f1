package corelog

import (
	"errors"
	"fmt"
)

// Sentinel errors comparable with errors.Is. breaker.New and
// ratelimiter.New wrap ErrMissingConfiguration for a nil config; no
// function in this module returns ErrInvalidConfiguration (Validate
// errors wrap a formatted message instead).
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")
)

// FrameworkError carries structured context about a configuration or
// construction failure, as returned by breaker.New, ratelimiter.New and
// the Config.Validate methods on invalid input.
type FrameworkError struct {
	Op      string // e.g. "breaker.New"
	Kind    string // e.g. "config"
	Message string
	Err     error
}

func (e *FrameworkError) Error() string {
	if e.Op != "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

func (e *FrameworkError) Unwrap() error { return e.Err }

// NewFrameworkError builds a FrameworkError wrapping err with op/kind
// context for logging and errors.Is/As inspection.
func NewFrameworkError(op, kind string, err error) *FrameworkError {
	return &FrameworkError{Op: op, Kind: kind, Err: err}
}
