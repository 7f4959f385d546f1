package obsmetrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/resilience4g/resilience4g/breaker"
)

const (
	metricBreakerSuccess    = "resilience4g.breaker.success"
	metricBreakerFailure    = "resilience4g.breaker.failure"
	metricBreakerIgnored    = "resilience4g.breaker.ignored_error"
	metricBreakerTransition = "resilience4g.breaker.state_transition"
	metricBreakerDuration   = "resilience4g.breaker.call_duration"
)

// BreakerCollector subscribes to a breaker's event bus and records every
// event onto cached OTel instruments, adapted from the teacher's
// OTelMetricsCollector (itself wired to a single in-process breaker's
// listener slice, generalized here to this package's pub/sub bus).
type BreakerCollector struct {
	cache       *instrumentCache
	unsubscribe func()
}

// NewBreakerCollector starts recording metrics for cb using meter. Call
// Close to stop.
func NewBreakerCollector(meter metric.Meter, cb *breaker.CircuitBreaker) *BreakerCollector {
	c := &BreakerCollector{cache: newInstrumentCache(meter)}
	c.unsubscribe = cb.Subscribe(c.onEvent)
	return c
}

func (c *BreakerCollector) onEvent(ev breaker.Event) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("breaker", ev.Name))

	switch ev.Type {
	case breaker.EventSuccess:
		c.cache.counter(ctx, metricBreakerSuccess, 1, attrs)
		c.cache.histogram(ctx, metricBreakerDuration, float64(ev.Duration.Milliseconds()), metric.WithAttributes(
			attribute.String("breaker", ev.Name), attribute.String("outcome", "success"),
		))
	case breaker.EventError:
		c.cache.counter(ctx, metricBreakerFailure, 1, attrs)
		c.cache.histogram(ctx, metricBreakerDuration, float64(ev.Duration.Milliseconds()), metric.WithAttributes(
			attribute.String("breaker", ev.Name), attribute.String("outcome", "failure"),
		))
	case breaker.EventIgnoredError:
		c.cache.counter(ctx, metricBreakerIgnored, 1, attrs)
	case breaker.EventStateTransition, breaker.EventReset:
		c.cache.counter(ctx, metricBreakerTransition, 1, metric.WithAttributes(
			attribute.String("breaker", ev.Name),
			attribute.String("from_state", ev.FromState.String()),
			attribute.String("to_state", ev.ToState.String()),
		))
	}
}

// Close stops this collector from receiving further events. It does not
// shut down the meter provider.
func (c *BreakerCollector) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}
