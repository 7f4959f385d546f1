package breaker

import "github.com/resilience4g/resilience4g/ringbuffer"

// RateUnknown is returned by Rate when the window has not yet saturated
// (ℓ < N): spec.md §3 says the failure rate is defined only when the
// buffer is full, and the breaker must never transition on rate alone
// before that.
const RateUnknown = -1.0

// BreakerMetrics is a thin adapter over a ringbuffer.RingBitBuffer: it
// turns success/failure reports into bit writes and exposes the failure
// rate plus the raw counts. It carries no independent state of its own.
type BreakerMetrics struct {
	ring *ringbuffer.RingBitBuffer
}

// NewBreakerMetrics allocates a fresh metrics window of the given capacity.
func NewBreakerMetrics(capacity int) *BreakerMetrics {
	return &BreakerMetrics{ring: ringbuffer.New(capacity)}
}

// OnSuccess records a success (bit 0) and returns the resulting failure
// rate (or RateUnknown if the window isn't full yet).
func (m *BreakerMetrics) OnSuccess() float64 {
	m.ring.SetNextBit(0)
	return m.rate()
}

// OnError records a counted failure (bit 1) and returns the resulting
// failure rate (or RateUnknown if the window isn't full yet).
func (m *BreakerMetrics) OnError() float64 {
	m.ring.SetNextBit(1)
	return m.rate()
}

func (m *BreakerMetrics) rate() float64 {
	n := m.ring.Capacity()
	l := m.ring.Length()
	if l < n {
		return RateUnknown
	}
	return 100 * float64(m.ring.Cardinality()) / float64(n)
}

// BufferedCalls returns ℓ, the logical window length.
func (m *BreakerMetrics) BufferedCalls() int { return m.ring.Length() }

// FailedCalls returns the number of set bits (counted failures) currently
// in the window.
func (m *BreakerMetrics) FailedCalls() int { return m.ring.Cardinality() }

// SuccessfulCalls returns ℓ - failures.
func (m *BreakerMetrics) SuccessfulCalls() int {
	return m.ring.Length() - m.ring.Cardinality()
}

// FailureRate returns the current rate, or RateUnknown if the window is
// not yet saturated.
func (m *BreakerMetrics) FailureRate() float64 { return m.rate() }
