package queue

import (
	"context"
	"sync"
)

// Waiter is anything that can be waited on for an eventual result.
//
// When a handler returns a Waiter, the queue worker waits for it to
// settle and resolves the task's future with the unwrapped result.
// *Future itself implements Waiter.
type Waiter interface {
	Wait(ctx context.Context) (any, error)
}

// Future is the eventual result of one pushed task.
// It settles exactly once, with either a value or an error.
type Future struct {
	once  sync.Once
	done  chan struct{}
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// settle resolves the future. Later calls are ignored.
func (f *Future) settle(value any, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done returns a channel that is closed when the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles or ctx is cancelled.
// Cancellation abandons the wait only; the task keeps running.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
