package ratelimiter

import "sync"

const subscriberBuffer = 64

// RLEventBus fans Permitted/Rejected events out to subscribers without
// ever blocking the reporter, mirroring breaker.BreakerEventBus: a single
// dispatch goroutine preserves global emission order, each subscriber gets
// its own buffered channel so a slow one only drops its own events.
type RLEventBus struct {
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

// NewRLEventBus creates a bus ready to Publish and Subscribe.
func NewRLEventBus() *RLEventBus {
	b := &RLEventBus{subs: make(map[int]*subscription), in: make(chan Event, 256)}
	go b.dispatch()
	return b
}

func (b *RLEventBus) dispatch() {
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

// Publish emits ev to all current subscribers without blocking.
func (b *RLEventBus) Publish(ev Event) {
	select {
	case b.in <- ev:
	default:
	}
}

// Subscribe registers fn to receive events in emission order until the
// returned function is called.
func (b *RLEventBus) Subscribe(fn func(Event)) (unsubscribe func()) {
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

// Close shuts down the dispatch goroutine.
func (b *RLEventBus) Close() {
	b.once.Do(func() { close(b.in) })
}
