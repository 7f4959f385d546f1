// Package obsmetrics adapts breaker and ratelimiter events onto OpenTelemetry
// metric instruments. It is grounded on the teacher's
// resilience/metrics_otel.go (an OTelMetricsCollector wrapping the same
// kind of breaker events this package observes) and
// telemetry/metrics.go's MetricInstruments (the double-checked-locking
// instrument cache, generalized here from a package-wide singleton to one
// instance per collector).
package obsmetrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/metric"
)

// instrumentCache lazily creates and caches named counters/histograms
// against a single meter, exactly like the teacher's MetricInstruments:
// an RLock-guarded read, then a double-checked Lock-guarded create.
type instrumentCache struct {
	meter      metric.Meter
	mu         sync.RWMutex
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
}

func newInstrumentCache(meter metric.Meter) *instrumentCache {
	return &instrumentCache{
		meter:      meter,
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

func (c *instrumentCache) counter(ctx context.Context, name string, value int64, opts ...metric.AddOption) {
	c.mu.RLock()
	counter, ok := c.counters[name]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		if counter, ok = c.counters[name]; !ok {
			var err error
			counter, err = c.meter.Int64Counter(name)
			if err != nil {
				c.mu.Unlock()
				return // instrument creation failure is not fatal to the caller
			}
			c.counters[name] = counter
		}
		c.mu.Unlock()
	}
	counter.Add(ctx, value, opts...)
}

func (c *instrumentCache) histogram(ctx context.Context, name string, value float64, opts ...metric.RecordOption) {
	c.mu.RLock()
	histogram, ok := c.histograms[name]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		if histogram, ok = c.histograms[name]; !ok {
			var err error
			histogram, err = c.meter.Float64Histogram(name)
			if err != nil {
				c.mu.Unlock()
				return
			}
			c.histograms[name] = histogram
		}
		c.mu.Unlock()
	}
	histogram.Record(ctx, value, opts...)
}
