// Package queue executes source-event tasks strictly one at a time.
//
// The queue is the serialization point of the whole system: tasks run in
// submission order with a fixed concurrency of 1, and each task runs
// under a fresh causal token (see the track package). A task never
// starts before the previous task's handler, including any waited-on
// asynchronous tail, has fully settled.
//
// There is no per-task timeout or cancellation. A handler that never
// returns, or that waits on work queued behind its own task, stalls the
// queue indefinitely.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/causeway/pkg/causeway/actions"
	"github.com/randalmurphal/causeway/pkg/causeway/observability"
	"github.com/randalmurphal/causeway/pkg/causeway/plugin"
	"github.com/randalmurphal/causeway/pkg/causeway/track"
)

// ErrClosed indicates a push against a closed queue.
var ErrClosed = errors.New("task queue closed")

// HandlerFunc is the signature of a raw source-event handler.
//
// The handler receives the invocation's args payload and the mutation
// actions bound to its owning plugin. It may return a plain value, or a
// Waiter whose eventual result becomes the task's result.
type HandlerFunc func(ctx context.Context, args any, acts actions.Actions) (any, error)

// Task is one queued unit of work wrapping a handler invocation.
// The queue owns a task exclusively from push until completion.
type Task struct {
	// Type is the event type that triggered this task.
	Type string

	// Handler is the raw handler to execute.
	Handler HandlerFunc

	// Args is the opaque payload passed through to the handler.
	Args any

	// Parent is the causal token active in the caller's execution
	// branch at the moment of push, or track.None.
	Parent string

	// Plugin identifies the plugin the handler is registered to.
	Plugin plugin.Ref

	// Actions is the mutation capability set bound to Plugin.
	Actions actions.Actions
}

// Queue runs tasks in FIFO order with concurrency fixed at 1.
type Queue struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	mu      sync.Mutex
	pending []*item
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// item pairs a task with the future its pusher holds.
type item struct {
	task   *Task
	future *Future
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the logger for task lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(q *Queue) {
		if m != nil {
			q.metrics = m
		}
	}
}

// WithSpans sets the span manager for per-task tracing.
func WithSpans(s observability.SpanManager) Option {
	return func(q *Queue) {
		if s != nil {
			q.spans = s
		}
	}
}

// New creates a queue and starts its single worker.
func New(opts ...Option) *Queue {
	q := &Queue{
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(q)
	}

	go q.work()
	return q
}

// Push enqueues a task and returns its future.
// Push never blocks; the returned future settles when the task's
// handler (and any waited-on asynchronous tail) has fully settled.
// Pushing to a closed queue returns an already-rejected future.
func (q *Queue) Push(task *Task) *Future {
	fut := newFuture()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		fut.settle(nil, ErrClosed)
		return fut
	}
	q.pending = append(q.pending, &item{task: task, future: fut})
	depth := len(q.pending)
	q.mu.Unlock()

	q.metrics.RecordQueueDepth(context.Background(), int64(depth))

	select {
	case q.wake <- struct{}{}:
	default:
	}

	return fut
}

// Drain blocks until every task pushed before the call has finished.
// Tasks pushed after Drain, including tasks pushed by the drained
// handlers themselves, are not waited for. Draining a closed queue
// returns ErrClosed.
func (q *Queue) Drain(ctx context.Context) error {
	fut := newFuture()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	// A marker item with no task; the worker settles it in place of
	// executing a handler.
	q.pending = append(q.pending, &item{future: fut})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}

	_, err := fut.Wait(ctx)
	return err
}

// Len returns the number of tasks waiting to execute.
// The task currently executing is not counted.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close stops the worker after the in-flight task finishes.
// Tasks still pending are rejected with ErrClosed. Close is idempotent.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	rejected := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, it := range rejected {
		it.future.settle(nil, ErrClosed)
	}

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done

	return nil
}

// work is the single worker loop. Strict FIFO, no overlap.
func (q *Queue) work() {
	defer close(q.done)

	for {
		it := q.next()
		if it == nil {
			return
		}
		if it.task == nil {
			// Drain marker.
			it.future.settle(nil, nil)
			continue
		}
		q.execute(it)
	}
}

// next blocks until a task is available or the queue closes.
func (q *Queue) next() *item {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			it := q.pending[0]
			q.pending = q.pending[1:]
			depth := len(q.pending)
			q.mu.Unlock()
			q.metrics.RecordQueueDepth(context.Background(), int64(depth))
			return it
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return nil
		}
		<-q.wake
	}
}

// execute runs one task under a fresh causal token and settles its future.
func (q *Queue) execute(it *item) {
	task := it.task

	token := track.NewToken(task.Type)
	ctx := track.With(context.Background(), token)
	if task.Parent != "" && task.Parent != track.None {
		ctx = track.WithParent(ctx, task.Parent)
	}

	ctx, span := q.spans.StartTaskSpan(ctx, task.Type, token, task.Parent)

	logger := observability.EnrichLogger(q.logger, task.Type, token, task.Parent)
	observability.LogTaskStart(logger, task.Plugin.Name)
	elapsed := observability.TimedOperation()

	value, err := q.runHandler(ctx, task)

	// A handler may hand back eventual work; the worker waits for it
	// before the next task may start. Unwrapping is recursive, so a
	// Waiter resolving to another Waiter settles with the innermost
	// result.
	for err == nil {
		w, ok := value.(Waiter)
		if !ok {
			break
		}
		value, err = w.Wait(ctx)
	}

	duration := time.Duration(elapsed() * float64(time.Millisecond))
	q.metrics.RecordTaskExecution(ctx, task.Type, task.Plugin.Name, duration, err)
	q.spans.EndSpanWithError(span, err)

	if err != nil {
		observability.LogTaskError(logger, err, elapsed())
	} else {
		observability.LogTaskComplete(logger, elapsed())
	}

	it.future.settle(value, err)
}

// runHandler invokes the raw handler, converting panics into errors so a
// misbehaving handler cannot take down the worker.
func (q *Queue) runHandler(ctx context.Context, task *Task) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return task.Handler(ctx, task.Args, task.Actions)
}
