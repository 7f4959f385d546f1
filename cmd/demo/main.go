// Command demo wires a circuit breaker, a rate limiter, and the OTel
// metrics collectors together around a simulated flaky collaborator,
// mirroring the construct -> configure -> run shape of the teacher's
// core/cmd/example/main.go.
package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/resilience4g/resilience4g/breaker"
	"github.com/resilience4g/resilience4g/corelog"
	"github.com/resilience4g/resilience4g/decorate"
	"github.com/resilience4g/resilience4g/obsmetrics"
	"github.com/resilience4g/resilience4g/ratelimiter"
	"github.com/resilience4g/resilience4g/registry"
)

var errCollaboratorDown = errors.New("downstream collaborator unavailable")

func main() {
	logger := corelog.NewProductionLogger(
		corelog.LoggingConfig{Level: "info", Format: "text", Output: "stdout"},
		corelog.DevelopmentConfig{DebugLogging: false},
		"cmd/demo",
	)

	meterProvider := sdkmetric.NewMeterProvider()
	defer meterProvider.Shutdown(context.Background())
	meter := meterProvider.Meter("resilience4g-demo")

	breakers := registry.New(func() *breaker.CircuitBreaker {
		cfg := breaker.DefaultConfig()
		cfg.Name = "downstream"
		cb, err := breaker.New(cfg, logger.WithComponent("breaker"))
		if err != nil {
			log.Fatalf("breaker.New: %v", err)
		}
		return cb
	})
	limiters := registry.New(func() *ratelimiter.AtomicRateLimiter {
		rl, err := ratelimiter.New(&ratelimiter.Config{
			Name:               "downstream",
			LimitForPeriod:     5,
			LimitRefreshPeriod: time.Second,
			TimeoutDuration:    200 * time.Millisecond,
		}, logger.WithComponent("ratelimiter"))
		if err != nil {
			log.Fatalf("ratelimiter.New: %v", err)
		}
		return rl
	})

	cb := breakers.Get("downstream")
	rl := limiters.Get("downstream")
	defer cb.Close()
	defer rl.Close()

	breakerMetrics := obsmetrics.NewBreakerCollector(meter, cb)
	limiterMetrics := obsmetrics.NewRateLimiterCollector(meter, rl)
	defer breakerMetrics.Close()
	defer limiterMetrics.Close()

	unsubscribe := cb.Subscribe(func(ev breaker.Event) {
		if ev.Type == breaker.EventStateTransition {
			logger.Info("breaker transitioned", map[string]interface{}{
				"name": ev.Name, "from": ev.FromState.String(), "to": ev.ToState.String(),
			})
		}
	})
	defer unsubscribe()

	ctx := context.Background()
	for i := 0; i < 30; i++ {
		result, err := decorate.Chain(ctx, rl, 200*time.Millisecond, cb, breaker.ErrCircuitBreakerOpen, func() (string, error) {
			return callFlakyCollaborator(i)
		})
		if err != nil {
			logger.Warn("call failed", map[string]interface{}{"attempt": i, "error": err.Error()})
		} else {
			logger.Info("call succeeded", map[string]interface{}{"attempt": i, "result": result})
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// callFlakyCollaborator fails roughly 40% of the time. In this demo the
// limiter admits about five calls a second and the default breaker window
// holds 100 calls, so the window does not fill within the 30 attempts and
// the breaker stays closed for the whole run.
func callFlakyCollaborator(attempt int) (string, error) {
	if rand.Intn(100) < 40 {
		return "", errCollaboratorDown
	}
	return "ok", nil
}
