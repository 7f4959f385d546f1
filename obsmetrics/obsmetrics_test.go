package obsmetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/resilience4g/resilience4g/breaker"
	"github.com/resilience4g/resilience4g/ratelimiter"
)

func countOf(t *testing.T, rm *metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is not an int64 sum", name)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestBreakerCollectorRecordsSuccessAndFailure(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("test")

	cb, err := breaker.New(&breaker.Config{
		Name:                          "t",
		FailureRateThreshold:          50,
		WaitDurationInOpenState:       time.Second,
		RingBufferSizeInClosedState:   4,
		RingBufferSizeInHalfOpenState: 2,
	}, nil)
	if err != nil {
		t.Fatalf("breaker.New: %v", err)
	}
	defer cb.Close()

	collector := NewBreakerCollector(meter, cb)
	defer collector.Close()

	cb.OnSuccess(time.Millisecond)
	cb.OnError(time.Millisecond, errors.New("boom"))
	time.Sleep(20 * time.Millisecond) // let the bus dispatch reach the collector

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if got := countOf(t, &rm, metricBreakerSuccess); got != 1 {
		t.Fatalf("expected 1 success, got %d", got)
	}
	if got := countOf(t, &rm, metricBreakerFailure); got != 1 {
		t.Fatalf("expected 1 failure, got %d", got)
	}
}

func TestRateLimiterCollectorRecordsPermittedAndRejected(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("test")

	rl, err := ratelimiter.New(&ratelimiter.Config{
		Name:               "t",
		LimitForPeriod:     1,
		LimitRefreshPeriod: time.Second,
		TimeoutDuration:    0,
	}, nil)
	if err != nil {
		t.Fatalf("ratelimiter.New: %v", err)
	}
	defer rl.Close()

	collector := NewRateLimiterCollector(meter, rl)
	defer collector.Close()

	rl.GetPermission(context.Background(), 0)
	rl.GetPermission(context.Background(), 0) // rejected: no permits left this cycle
	time.Sleep(20 * time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if got := countOf(t, &rm, metricLimiterPermitted); got != 1 {
		t.Fatalf("expected 1 permitted, got %d", got)
	}
	if got := countOf(t, &rm, metricLimiterRejected); got != 1 {
		t.Fatalf("expected 1 rejected, got %d", got)
	}
}
