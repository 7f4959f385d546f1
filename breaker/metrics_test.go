package breaker

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestMetricsRateUnknownUntilFull(t *testing.T) {
	m := NewBreakerMetrics(4)
	if rate := m.OnSuccess(); rate != RateUnknown {
		t.Fatalf("expected RateUnknown before window fills, got %v", rate)
	}
	m.OnSuccess()
	m.OnSuccess()
	rate := m.OnError()
	if rate != 25 {
		t.Fatalf("expected rate 25 once window fills with 1/4 failures, got %v", rate)
	}
	if m.BufferedCalls() != 4 || m.FailedCalls() != 1 || m.SuccessfulCalls() != 3 {
		t.Fatalf("unexpected counts: buffered=%d failed=%d successful=%d",
			m.BufferedCalls(), m.FailedCalls(), m.SuccessfulCalls())
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}

	bad := DefaultConfig()
	bad.FailureRateThreshold = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected validation error for zero failure rate threshold")
	}

	bad = DefaultConfig()
	bad.RingBufferSizeInClosedState = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected validation error for zero closed-state ring size")
	}
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "payments-api"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Config
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Name != cfg.Name ||
		got.FailureRateThreshold != cfg.FailureRateThreshold ||
		got.WaitDurationInOpenState != cfg.WaitDurationInOpenState ||
		got.RingBufferSizeInClosedState != cfg.RingBufferSizeInClosedState ||
		got.RingBufferSizeInHalfOpenState != cfg.RingBufferSizeInHalfOpenState {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, cfg)
	}
	if got.RecordFailure == nil {
		t.Fatal("expected RecordFailure to default back after round trip")
	}
}
