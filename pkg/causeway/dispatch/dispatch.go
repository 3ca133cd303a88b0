// Package dispatch broadcasts named events to matching handlers.
//
// Dispatch is fire-and-forget: every matching handler independently
// enqueues a task and the dispatcher discards the resulting futures.
// A failing handler is observable only through its own future, never by
// the dispatch caller, and never affects sibling handlers.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/causeway/pkg/causeway/handler"
	"github.com/randalmurphal/causeway/pkg/causeway/observability"
)

// Dispatcher broadcasts events across a collection of handlers.
type Dispatcher struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for dispatch events.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

// WithSpans sets the span manager for dispatch tracing.
func WithSpans(s observability.SpanManager) Option {
	return func(d *Dispatcher) {
		if s != nil {
			d.spans = s
		}
	}
}

// New creates a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run invokes, in the given order, every handler whose event type equals
// eventName, passing args. It returns once all matching invocations have
// been initiated, without waiting for any of them to complete.
//
// A handler that refuses invocation (for example, one that was never
// registered) is logged and skipped; the remaining handlers still run.
func (d *Dispatcher) Run(ctx context.Context, handlers []handler.Invoker, eventName string, args any) {
	ctx, span := d.spans.StartDispatchSpan(ctx, eventName)
	defer d.spans.EndSpanWithError(span, nil)

	matched := 0
	for _, inv := range handlers {
		if inv.Type() != eventName {
			continue
		}
		matched++
		if _, err := inv.Invoke(ctx, args); err != nil {
			observability.LogDispatchError(d.logger, eventName, err)
		}
	}

	d.metrics.RecordDispatch(ctx, eventName, matched)
	observability.LogDispatch(d.logger, eventName, matched)
}
