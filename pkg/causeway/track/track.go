// Package track carries causal execution tokens across asynchronous
// boundaries.
//
// Every task executed by the queue runs under a fresh token. Any handler
// invoked from within that task reads the ambient token as its parent,
// which is how parent/child relationships are reconstructed after the
// work has crossed the queue's asynchronous boundary.
//
// Propagation is explicit: tokens travel on the context.Context, so two
// concurrently executing branches can never observe each other's token.
package track

import (
	"context"

	"github.com/google/uuid"
)

// None is returned by Current for contexts outside any tracked scope.
const None = "none"

// tokenKey is the private context key for the active token.
type tokenKey struct{}

// parentKey is the private context key for the parent token.
type parentKey struct{}

// NewToken generates a fresh token for one execution branch.
// The token is formatted as "{eventType}-{uuid}".
func NewToken(eventType string) string {
	return eventType + "-" + uuid.NewString()
}

// With returns a context carrying token as the ambient value.
// The parent context is not modified; sibling branches derived from it
// keep their own tokens.
func With(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// Current returns the token of the calling execution branch, or None
// when the context carries no token.
func Current(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey{}).(string); ok && v != "" {
		return v
	}
	return None
}

// WithParent returns a context recording the token of the execution
// branch that caused this one. Set by the queue worker from the task's
// recorded parent.
func WithParent(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, parentKey{}, token)
}

// Parent returns the causal parent token of the calling execution
// branch, or None when the branch has no recorded parent.
func Parent(ctx context.Context) string {
	if v, ok := ctx.Value(parentKey{}).(string); ok && v != "" {
		return v
	}
	return None
}

// Run establishes token for the dynamic extent of fn and invokes it.
// Whatever fn returns is propagated unchanged.
func Run(ctx context.Context, token string, fn func(ctx context.Context) error) error {
	return fn(With(ctx, token))
}
