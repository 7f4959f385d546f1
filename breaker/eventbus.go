package breaker

import "sync"

// subscriberBuffer is the per-subscriber queue depth. A slow subscriber
// drops events past this depth rather than ever blocking the reporter.
const subscriberBuffer = 64

// BreakerEventBus is a single-producer, multi-consumer hot stream:
// Publish never blocks the reporter, delivery to any one subscriber is
// best-effort, and the order each subscriber observes matches the global
// emission order (spec.md §4.4).
//
// A single internal goroutine reads emitted events in order and fans each
// one out to every subscriber's own buffered channel with a non-blocking
// send; a slow subscriber only drops its own events, never anyone else's.
type BreakerEventBus struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int

	in   chan Event
	once sync.Once
}

type subscription struct {
	ch      chan Event
	dropped int
}

// NewBreakerEventBus creates a bus ready to Publish and Subscribe.
func NewBreakerEventBus() *BreakerEventBus {
	b := &BreakerEventBus{
		subs: make(map[int]*subscription),
		in:   make(chan Event, 256),
	}
	go b.dispatch()
	return b
}

func (b *BreakerEventBus) dispatch() {
	for ev := range b.in {
		b.mu.RLock()
		for _, sub := range b.subs {
			select {
			case sub.ch <- ev:
			default:
				sub.dropped++
			}
		}
		b.mu.RUnlock()
	}
}

// Publish emits ev to all current subscribers. It never blocks: if the
// internal queue is momentarily full (an unusually deep backlog across
// all subscribers), the event is dropped rather than stalling the caller.
func (b *BreakerEventBus) Publish(ev Event) {
	select {
	case b.in <- ev:
	default:
	}
}

// Subscribe registers fn to receive events in emission order on a
// dedicated goroutine. The returned function unsubscribes; it is safe to
// call at any time, including concurrently with Publish.
func (b *BreakerEventBus) Subscribe(fn func(Event)) (unsubscribe func()) {
	sub := &subscription{ch: make(chan Event, subscriberBuffer)}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub.ch {
			fn(ev)
		}
	}()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(sub.ch)
		<-done
	}
}

// Close shuts down the dispatch goroutine. It does not unsubscribe
// existing subscribers' channels; callers should unsubscribe individually
// before closing a bus they own.
func (b *BreakerEventBus) Close() {
	b.once.Do(func() { close(b.in) })
}
