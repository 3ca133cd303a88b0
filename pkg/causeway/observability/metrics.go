package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records causeway metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordTaskExecution records one task execution with its duration and error status.
	RecordTaskExecution(ctx context.Context, eventType, pluginName string, duration time.Duration, err error)

	// RecordDispatch records one event broadcast and how many handlers matched.
	RecordDispatch(ctx context.Context, eventName string, matched int)

	// RecordQueueDepth records the number of tasks waiting in the queue.
	RecordQueueDepth(ctx context.Context, depth int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	taskExecutions metric.Int64Counter
	taskLatency    metric.Float64Histogram
	taskErrors     metric.Int64Counter
	dispatches     metric.Int64Counter
	queueDepth     metric.Int64Gauge
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("causeway")

	taskExecutions, err := meter.Int64Counter("causeway.task.executions",
		metric.WithDescription("Number of task executions"),
	)
	if err != nil {
		return nil, err
	}

	taskLatency, err := meter.Float64Histogram("causeway.task.latency_ms",
		metric.WithDescription("Task execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	taskErrors, err := meter.Int64Counter("causeway.task.errors",
		metric.WithDescription("Number of task execution errors"),
	)
	if err != nil {
		return nil, err
	}

	dispatches, err := meter.Int64Counter("causeway.dispatch.events",
		metric.WithDescription("Number of event broadcasts"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64Gauge("causeway.queue.depth",
		metric.WithDescription("Tasks waiting in the queue"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		taskExecutions: taskExecutions,
		taskLatency:    taskLatency,
		taskErrors:     taskErrors,
		dispatches:     dispatches,
		queueDepth:     queueDepth,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordTaskExecution records one task execution.
func (m *otelMetrics) RecordTaskExecution(ctx context.Context, eventType, pluginName string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("event_type", eventType),
		attribute.String("plugin", pluginName),
	}

	m.taskExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.taskLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.taskErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordDispatch records one event broadcast.
func (m *otelMetrics) RecordDispatch(ctx context.Context, eventName string, matched int) {
	m.dispatches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", eventName),
		attribute.Int("matched", matched),
	))
}

// RecordQueueDepth records the queue depth.
func (m *otelMetrics) RecordQueueDepth(ctx context.Context, depth int64) {
	m.queueDepth.Record(ctx, depth)
}
