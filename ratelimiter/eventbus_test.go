package ratelimiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestRLEventBusOrderingPerSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewRLEventBus()
	defer bus.Close()

	var mu sync.Mutex
	var seen []EventType
	unsubscribe := bus.Subscribe(func(ev Event) {
		mu.Lock()
		seen = append(seen, ev.Type)
		mu.Unlock()
	})

	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			bus.Publish(newEvent(EventPermitted, "t"))
		} else {
			bus.Publish(newEvent(EventRejected, "t"))
		}
	}

	time.Sleep(50 * time.Millisecond)
	unsubscribe()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 20 {
		t.Fatalf("expected 20 events delivered, got %d", len(seen))
	}
	for i, typ := range seen {
		want := EventPermitted
		if i%2 != 0 {
			want = EventRejected
		}
		if typ != want {
			t.Fatalf("out of order delivery at index %d: got %s, want %s", i, typ, want)
		}
	}
}

func TestRLEventBusSlowSubscriberDoesNotBlockFastOne(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewRLEventBus()
	defer bus.Close()

	blocked := make(chan struct{})
	unsubSlow := bus.Subscribe(func(ev Event) {
		<-blocked
	})

	var mu sync.Mutex
	fastCount := 0
	unsubFast := bus.Subscribe(func(ev Event) {
		mu.Lock()
		fastCount++
		mu.Unlock()
	})

	for i := 0; i < subscriberBuffer+10; i++ {
		bus.Publish(newEvent(EventPermitted, "t"))
	}

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	got := fastCount
	mu.Unlock()
	if got == 0 {
		t.Fatal("expected the fast subscriber to keep receiving events despite a stuck slow one")
	}

	close(blocked)
	unsubSlow()
	unsubFast()
}

func TestRateLimiterEmitsPermittedAndRejectedEvents(t *testing.T) {
	rl, _ := New(&Config{
		Name:               "t",
		LimitForPeriod:     1,
		LimitRefreshPeriod: time.Second,
		TimeoutDuration:    0,
	}, nil)
	defer rl.Close()

	var mu sync.Mutex
	var types []EventType
	unsubscribe := rl.Subscribe(func(ev Event) {
		mu.Lock()
		types = append(types, ev.Type)
		mu.Unlock()
	})
	defer unsubscribe()

	ctx := context.Background()
	rl.GetPermission(ctx, 0)
	rl.GetPermission(ctx, 0)

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(types) != 2 {
		t.Fatalf("expected 2 events, got %d", len(types))
	}
	if types[0] != EventPermitted {
		t.Fatalf("expected first event Permitted, got %s", types[0])
	}
	if types[1] != EventRejected {
		t.Fatalf("expected second event Rejected, got %s", types[1])
	}
}
