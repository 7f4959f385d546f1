package corelog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// LoggingConfig controls ProductionLogger's output format and level.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // "json" or "text"
	Output string `json:"output" yaml:"output"` // "stdout" or "stderr"
}

// DevelopmentConfig carries local-dev overrides that don't belong in
// LoggingConfig proper.
type DevelopmentConfig struct {
	DebugLogging bool `json:"debug_logging" yaml:"debug_logging"`
}

// ProductionLogger is a dependency-free structured logger: JSON lines for
// log aggregation, or a human-readable line for local development.
type ProductionLogger struct {
	level     string
	debug     bool
	component string
	format    string
	output    io.Writer
}

// NewProductionLogger builds a ComponentAwareLogger from
// LoggingConfig/DevelopmentConfig.
// component identifies the subsystem (e.g. "breaker/orders-api") in every
// emitted record.
func NewProductionLogger(logging LoggingConfig, dev DevelopmentConfig, component string) ComponentAwareLogger {
	var output io.Writer = os.Stdout
	if logging.Output == "stderr" {
		output = os.Stderr
	}
	return &ProductionLogger{
		level:     strings.ToLower(logging.Level),
		debug:     dev.DebugLogging || strings.ToLower(logging.Level) == "debug",
		component: component,
		format:    logging.Format,
		output:    output,
	}
}

func (p *ProductionLogger) WithComponent(component string) Logger {
	clone := *p
	clone.component = component
	return &clone
}

func (p *ProductionLogger) Info(msg string, fields map[string]interface{})  { p.logEvent("INFO", msg, fields) }
func (p *ProductionLogger) Error(msg string, fields map[string]interface{}) { p.logEvent("ERROR", msg, fields) }
func (p *ProductionLogger) Warn(msg string, fields map[string]interface{})  { p.logEvent("WARN", msg, fields) }

func (p *ProductionLogger) Debug(msg string, fields map[string]interface{}) {
	if p.debug {
		p.logEvent("DEBUG", msg, fields)
	}
}

func (p *ProductionLogger) InfoWithContext(_ context.Context, msg string, fields map[string]interface{}) {
	p.Info(msg, fields)
}
func (p *ProductionLogger) ErrorWithContext(_ context.Context, msg string, fields map[string]interface{}) {
	p.Error(msg, fields)
}
func (p *ProductionLogger) WarnWithContext(_ context.Context, msg string, fields map[string]interface{}) {
	p.Warn(msg, fields)
}
func (p *ProductionLogger) DebugWithContext(_ context.Context, msg string, fields map[string]interface{}) {
	p.Debug(msg, fields)
}

func (p *ProductionLogger) logEvent(level, msg string, fields map[string]interface{}) {
	timestamp := time.Now().Format(time.RFC3339)

	if p.format == "json" {
		entry := map[string]interface{}{
			"timestamp": timestamp,
			"level":     level,
			"component": p.component,
			"message":   msg,
		}
		for k, v := range fields {
			entry[k] = v
		}
		if data, err := json.Marshal(entry); err == nil {
			fmt.Fprintln(p.output, string(data))
		}
		return
	}

	var fieldStr strings.Builder
	for k, v := range fields {
		fieldStr.WriteString(fmt.Sprintf(" %s=%v", k, v))
	}
	fmt.Fprintf(p.output, "%s [%s] [%s] %s%s\n", timestamp, level, p.component, msg, fieldStr.String())
}
