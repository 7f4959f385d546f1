// Package corelog provides the minimal logging, error, and telemetry
// contracts shared by the breaker and ratelimiter packages and the demo
// command. It carries no dependency on any single logging backend.
package corelog

import "context"

// Logger is the minimal structured logging interface used throughout this
// module. Implementations should be safe for concurrent use.
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})

	InfoWithContext(ctx context.Context, msg string, fields map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, fields map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, fields map[string]interface{})
	DebugWithContext(ctx context.Context, msg string, fields map[string]interface{})
}

// ComponentAwareLogger lets a caller scope a Logger to a component name
// (e.g. "breaker/payments-api") without threading that name through every
// log call.
type ComponentAwareLogger interface {
	Logger
	WithComponent(component string) Logger
}

// Telemetry is the optional tracing hook a policy instance may be wired to.
// Neither breaker nor ratelimiter depend on a concrete implementation.
type Telemetry interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span is a single unit of tracing work started by Telemetry.StartSpan.
type Span interface {
	End()
	SetAttribute(key string, value interface{})
	RecordError(err error)
}
