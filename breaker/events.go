package breaker

import (
	"time"

	"github.com/google/uuid"
)

// EventType discriminates the sum type described in spec.md §3.
type EventType int

const (
	EventStateTransition EventType = iota
	EventSuccess
	EventError
	EventIgnoredError
	EventReset
)

func (t EventType) String() string {
	switch t {
	case EventStateTransition:
		return "state_transition"
	case EventSuccess:
		return "success"
	case EventError:
		return "error"
	case EventIgnoredError:
		return "ignored_error"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event is a single record on a breaker's event bus. Every event carries
// the policy name and a timestamp; call-outcome events additionally carry
// the elapsed duration of the guarded call.
type Event struct {
	ID        uuid.UUID
	Type      EventType
	Name      string
	Timestamp time.Time
	Duration  time.Duration

	// Populated for EventStateTransition. EventReset sets only ToState
	// (StateClosed); its FromState is left at the zero value.
	FromState State
	ToState   State

	// Populated for EventError/EventIgnoredError only.
	Cause error
}
