package obsmetrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/resilience4g/resilience4g/ratelimiter"
)

const (
	metricLimiterPermitted = "resilience4g.ratelimiter.permitted"
	metricLimiterRejected  = "resilience4g.ratelimiter.rejected"
)

// RateLimiterCollector subscribes to a rate limiter's event bus and
// records Permitted/Rejected counts, the same caching-instrument shape as
// BreakerCollector.
type RateLimiterCollector struct {
	cache       *instrumentCache
	unsubscribe func()
}

// NewRateLimiterCollector starts recording metrics for rl using meter.
func NewRateLimiterCollector(meter metric.Meter, rl *ratelimiter.AtomicRateLimiter) *RateLimiterCollector {
	c := &RateLimiterCollector{cache: newInstrumentCache(meter)}
	c.unsubscribe = rl.Subscribe(c.onEvent)
	return c
}

func (c *RateLimiterCollector) onEvent(ev ratelimiter.Event) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("rate_limiter", ev.Name))

	switch ev.Type {
	case ratelimiter.EventPermitted:
		c.cache.counter(ctx, metricLimiterPermitted, 1, attrs)
	case ratelimiter.EventRejected:
		c.cache.counter(ctx, metricLimiterRejected, 1, attrs)
	}
}

// Close stops this collector from receiving further events.
func (c *RateLimiterCollector) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}
