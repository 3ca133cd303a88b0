// Package observability provides production-grade observability features
// for causeway: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds task context to a logger.
// Returns a new logger with event_type, token, and parent fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "SOURCE_FILE", token, parent)
//	enriched.Info("doing work") // includes event_type, token, parent
func EnrichLogger(logger *slog.Logger, eventType, token, parent string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event_type", eventType),
		slog.String("token", token),
		slog.String("parent", parent),
	)
}

// LogTaskStart logs the start of a task execution.
func LogTaskStart(logger *slog.Logger, pluginName string) {
	if logger == nil {
		return
	}
	logger.Debug("task starting",
		slog.String("plugin", pluginName),
	)
}

// LogTaskComplete logs successful task completion.
func LogTaskComplete(logger *slog.Logger, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("task completed",
		slog.Float64("duration_ms", durationMs),
	)
}

// LogTaskError logs task failure.
func LogTaskError(logger *slog.Logger, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("task failed",
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDispatch logs an event broadcast.
func LogDispatch(logger *slog.Logger, eventName string, matched int) {
	if logger == nil {
		return
	}
	logger.Debug("event dispatched",
		slog.String("event", eventName),
		slog.Int("matched_handlers", matched),
	)
}

// LogDispatchError logs a handler that could not be invoked during dispatch.
// Dispatch continues with the remaining handlers.
func LogDispatchError(logger *slog.Logger, eventName string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("handler invocation failed",
		slog.String("event", eventName),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
