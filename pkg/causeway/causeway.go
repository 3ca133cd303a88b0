// Package causeway serializes source-event handlers on a single-worker
// task queue while tracking causal parent/child chains across
// asynchronous boundaries.
package causeway

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/causeway/pkg/causeway/actions"
	"github.com/randalmurphal/causeway/pkg/causeway/dispatch"
	"github.com/randalmurphal/causeway/pkg/causeway/handler"
	"github.com/randalmurphal/causeway/pkg/causeway/nodestore"
	"github.com/randalmurphal/causeway/pkg/causeway/observability"
	"github.com/randalmurphal/causeway/pkg/causeway/plugin"
	"github.com/randalmurphal/causeway/pkg/causeway/queue"
	"github.com/randalmurphal/causeway/pkg/causeway/registry"
)

// Service owns the task queue, the node store, and the set of registered
// handlers. It is the application-constructed replacement for what would
// otherwise be process-wide singletons: create one Service, pass it
// around, and Close it when done.
type Service struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	store    nodestore.Store
	ownStore bool

	queue      *queue.Queue
	dispatcher *dispatch.Dispatcher
	handlers   *registry.Registry[string, handler.Invoker]
}

// New creates a Service and starts its queue worker.
// Without options it logs via slog.Default, keeps nodes in memory, and
// records no metrics or traces.
func New(opts ...Option) *Service {
	s := &Service{
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = nodestore.NewMemoryStore()
		s.ownStore = true
	}

	s.queue = queue.New(
		queue.WithLogger(s.logger),
		queue.WithMetrics(s.metrics),
		queue.WithSpans(s.spans),
	)
	s.dispatcher = dispatch.New(
		dispatch.WithLogger(s.logger),
		dispatch.WithMetrics(s.metrics),
		dispatch.WithSpans(s.spans),
	)
	s.handlers = registry.New[string, handler.Invoker]()

	return s
}

// DefineSourceEvent validates a source-event definition and returns its
// descriptor. The descriptor cannot be invoked until it is registered to
// a plugin.
func (s *Service) DefineSourceEvent(def handler.Definition) (*handler.Descriptor, error) {
	return handler.Define(def)
}

// Register binds a descriptor to its owning plugin, producing an
// invokable handler wired to the service's queue and node store. The
// handler is also recorded so RunEvent can reach it.
func (s *Service) Register(desc *handler.Descriptor, ref plugin.Ref) *handler.Handler {
	acts := actions.Bind(s.store, ref)
	h := handler.Register(desc, ref, acts, s.queue)
	s.handlers.Add(desc.Type(), h)
	return h
}

// RunEvent broadcasts the named event with args to every handler
// registered for it, in registration order. Fire-and-forget: RunEvent
// returns once all matching invocations have been initiated.
func (s *Service) RunEvent(ctx context.Context, eventName string, args any) {
	s.dispatcher.Run(ctx, s.handlers.Get(eventName), eventName, args)
}

// Dispatch broadcasts the named event across an explicit handler
// collection instead of the service's own registry. Iteration follows
// the given order.
func (s *Service) Dispatch(ctx context.Context, handlers []handler.Invoker, eventName string, args any) {
	s.dispatcher.Run(ctx, handlers, eventName, args)
}

// Drain blocks until every task queued before the call has finished.
// Because RunEvent is fire-and-forget, Drain is how callers reach
// quiescence before reading the node store or shutting down. Handlers
// that trigger further events queue new tasks behind the drain point;
// call Drain again to cover each cascade level.
func (s *Service) Drain(ctx context.Context) error {
	return s.queue.Drain(ctx)
}

// Queue returns the service's task queue.
func (s *Service) Queue() *queue.Queue {
	return s.queue
}

// Store returns the service's node store.
func (s *Service) Store() nodestore.Store {
	return s.store
}

// Close stops the queue worker after the in-flight task finishes and
// closes the node store if the service created it.
func (s *Service) Close() error {
	err := s.queue.Close()
	if s.ownStore {
		if cerr := s.store.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
