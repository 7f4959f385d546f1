package ratelimiter

import (
	"time"

	"github.com/google/uuid"
)

// EventType discriminates the two rate-limiter events from spec.md §3.
type EventType int

const (
	EventPermitted EventType = iota
	EventRejected
)

func (t EventType) String() string {
	if t == EventPermitted {
		return "permitted"
	}
	return "rejected"
}

// Event is a single record on a limiter's event bus.
type Event struct {
	ID        uuid.UUID
	Type      EventType
	Name      string
	Timestamp time.Time
}

func newEvent(typ EventType, name string) Event {
	return Event{ID: uuid.New(), Type: typ, Name: name, Timestamp: time.Now()}
}
