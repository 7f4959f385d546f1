package ratelimiter

import (
	"context"
	"sync"
	"testing"
	"time"
)

// TestBasicOneCallPerPeriod is scenario 5 from spec.md §8.
func TestBasicOneCallPerPeriod(t *testing.T) {
	rl, err := New(&Config{
		Name:               "t",
		LimitForPeriod:     1,
		LimitRefreshPeriod: time.Second,
		TimeoutDuration:    0,
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := rl.GetPermission(context.Background(), 0); err != nil {
		t.Fatalf("first call should be admitted immediately, got %v", err)
	}
	if err := rl.GetPermission(context.Background(), 0); err == nil {
		t.Fatal("second back-to-back call should be rejected with zero timeout")
	}
}

// TestWaitForNextCycle is scenario 6 (simplified to a single wait): a
// caller willing to wait the full refresh period is admitted once that
// period elapses.
func TestWaitForNextCycle(t *testing.T) {
	rl, _ := New(&Config{
		Name:               "t",
		LimitForPeriod:     1,
		LimitRefreshPeriod: 100 * time.Millisecond,
		TimeoutDuration:    250 * time.Millisecond,
	}, nil)

	start := time.Now()
	if err := rl.GetPermission(context.Background(), 250*time.Millisecond); err != nil {
		t.Fatalf("call 1: %v", err)
	}
	if err := rl.GetPermission(context.Background(), 250*time.Millisecond); err != nil {
		t.Fatalf("call 2 should wait for the next cycle, got %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 90*time.Millisecond || elapsed >= 150*time.Millisecond {
		t.Fatalf("call 2 waited %v, expected roughly one refresh period (~100ms), not two", elapsed)
	}
}

// TestRejectsWhenWaitExceedsTimeout is scenario 6 in full: four callers
// arriving back-to-back (concurrently, within the same cycle) reserve
// permits -0, -1, -2, -3 in whatever order their CAS attempts land, which
// computes required waits of approximately 0, 100, 200, 300ms regardless of
// which physical goroutine gets which reservation. With a 250ms timeout,
// exactly three of the four must be admitted (the ~300ms reservation always
// exceeds it) — issuing the calls sequentially instead would let each
// admitted caller's park shift wall-clock time across a cycle boundary
// before the next call even starts, changing the reservation arithmetic
// entirely, so all four must race the CAS loop at once.
func TestRejectsWhenWaitExceedsTimeout(t *testing.T) {
	rl, _ := New(&Config{
		Name:               "t",
		LimitForPeriod:     1,
		LimitRefreshPeriod: 100 * time.Millisecond,
		TimeoutDuration:    250 * time.Millisecond,
	}, nil)

	const callers = 4
	results := make([]error, callers)

	var wg sync.WaitGroup
	wg.Add(callers)
	start := time.Now()
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = rl.GetPermission(context.Background(), 250*time.Millisecond)
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	admitted, rejected := 0, 0
	for _, err := range results {
		if err == nil {
			admitted++
		} else {
			rejected++
		}
	}
	if admitted != 3 || rejected != 1 {
		t.Fatalf("expected 3 admissions and 1 rejection among %d near-simultaneous callers, got %d admitted / %d rejected",
			callers, admitted, rejected)
	}
	// The slowest admitted caller waits ~200ms (the 0/100/200ms reservations);
	// the run must never drift into a 4th cycle (~300ms+), which would mean
	// the rejected caller's reservation was computed one cycle too late.
	if elapsed >= 280*time.Millisecond {
		t.Fatalf("run took %v, expected the slowest admitted caller to return within ~200ms plus scheduling slack", elapsed)
	}
}

func TestAvailablePermissionsGoesNegativeOnReservation(t *testing.T) {
	rl, _ := New(&Config{
		Name:               "t",
		LimitForPeriod:     1,
		LimitRefreshPeriod: time.Second,
		TimeoutDuration:    time.Second,
	}, nil)

	if err := rl.GetPermission(context.Background(), 0); err != nil {
		t.Fatalf("first call should take this cycle's only permit, got %v", err)
	}
	go rl.GetPermission(context.Background(), time.Second)
	time.Sleep(20 * time.Millisecond) // let the goroutine reserve next cycle's permit

	if err := rl.GetPermission(context.Background(), 0); err == nil {
		t.Fatal("expected immediate rejection: this cycle's permit is taken and the next one is reserved")
	}
	if rl.AvailablePermissions() >= 0 {
		t.Fatalf("expected a negative permit count after reservation, got %d", rl.AvailablePermissions())
	}
}

func TestChangeLimitForPeriodTakesEffectNextCycle(t *testing.T) {
	rl, _ := New(&Config{
		Name:               "t",
		LimitForPeriod:     1,
		LimitRefreshPeriod: 50 * time.Millisecond,
		TimeoutDuration:    0,
	}, nil)

	rl.ChangeLimitForPeriod(3)
	time.Sleep(60 * time.Millisecond) // force a fresh cycle under the new limit

	admitted := 0
	for i := 0; i < 3; i++ {
		if err := rl.GetPermission(context.Background(), 0); err == nil {
			admitted++
		}
	}
	if admitted != 3 {
		t.Fatalf("expected 3 admissions under the new limit, got %d", admitted)
	}
}

func TestContextCancellationDuringWait(t *testing.T) {
	rl, _ := New(&Config{
		Name:               "t",
		LimitForPeriod:     1,
		LimitRefreshPeriod: time.Second,
		TimeoutDuration:    2 * time.Second,
	}, nil)

	rl.GetPermission(context.Background(), 0) // consume the only permit

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := rl.GetPermission(ctx, 2*time.Second)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
