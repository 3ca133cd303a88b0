package causeway

import (
	"log/slog"

	"github.com/randalmurphal/causeway/pkg/causeway/nodestore"
	"github.com/randalmurphal/causeway/pkg/causeway/observability"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used by the queue and dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets the node store backing the mutation actions.
// The caller keeps ownership: Close on the service will not close a
// store supplied here.
func WithStore(store nodestore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.ownStore = false
		}
	}
}

// WithMetrics enables metrics recording for tasks and dispatches.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSpans enables tracing for tasks and dispatches.
func WithSpans(sm observability.SpanManager) Option {
	return func(s *Service) {
		if sm != nil {
			s.spans = sm
		}
	}
}
