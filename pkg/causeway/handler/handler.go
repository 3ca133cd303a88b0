// Package handler defines and registers source-event handlers.
//
// Registration is two-phase. Define validates a raw definition and
// returns a Descriptor; the plugin-loading layer later calls Register to
// bind the descriptor to its owning plugin, producing an immutable,
// invokable Handler. A bare Descriptor satisfies Invoker but always
// refuses invocation, so a handler can never run without an identity.
package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/causeway/pkg/causeway/actions"
	"github.com/randalmurphal/causeway/pkg/causeway/plugin"
	"github.com/randalmurphal/causeway/pkg/causeway/queue"
	"github.com/randalmurphal/causeway/pkg/causeway/track"
)

// ErrNotRegistered indicates an invocation attempt before the handler
// was bound to a plugin. No task is enqueued.
var ErrNotRegistered = errors.New("handler not registered to a plugin")

// DefinitionError reports a missing field in a source-event definition.
type DefinitionError struct {
	// Field names the missing field, e.g. "type name".
	Field string
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	return fmt.Sprintf("source event definition missing %s", e.Field)
}

// Definition is a raw source-event definition supplied by plugin code.
type Definition struct {
	// Type is the event type this handler responds to. Required.
	Type string

	// Description explains what the handler does. Required.
	Description string

	// Handler is the function to run when the event fires. Required.
	Handler queue.HandlerFunc

	// Meta is opaque plugin-supplied metadata.
	Meta map[string]any
}

// Invoker is anything dispatch can invoke for a named event.
// Implemented by *Descriptor (always refusing) and *Handler.
type Invoker interface {
	// Type returns the event type this invoker responds to.
	Type() string

	// Invoke submits one invocation with the given args payload.
	Invoke(ctx context.Context, args any) (*queue.Future, error)
}

// Descriptor is a validated but not yet registered source-event handler.
type Descriptor struct {
	eventType   string
	description string
	fn          queue.HandlerFunc
	meta        map[string]any
}

// Define validates a definition and returns its descriptor.
// A missing type, description, or handler fails with a *DefinitionError
// naming the field.
func Define(def Definition) (*Descriptor, error) {
	if def.Type == "" {
		return nil, &DefinitionError{Field: "type name"}
	}
	if def.Description == "" {
		return nil, &DefinitionError{Field: "description"}
	}
	if def.Handler == nil {
		return nil, &DefinitionError{Field: "handler"}
	}

	return &Descriptor{
		eventType:   def.Type,
		description: def.Description,
		fn:          def.Handler,
		meta:        def.Meta,
	}, nil
}

// Type returns the event type this descriptor responds to.
func (d *Descriptor) Type() string {
	return d.eventType
}

// Description returns the handler's description.
func (d *Descriptor) Description() string {
	return d.description
}

// Meta returns the opaque metadata supplied at definition time.
func (d *Descriptor) Meta() map[string]any {
	return d.meta
}

// Invoke on an unregistered descriptor always fails with
// ErrNotRegistered and never enqueues a task.
func (d *Descriptor) Invoke(_ context.Context, _ any) (*queue.Future, error) {
	return nil, fmt.Errorf("%s: %w", d.eventType, ErrNotRegistered)
}

// Handler is a registered, immutable, invokable source-event handler.
type Handler struct {
	desc   *Descriptor
	plugin plugin.Ref
	acts   actions.Actions
	queue  *queue.Queue
}

// Register binds a descriptor to its owning plugin and the queue it will
// execute on. The returned Handler is immutable; registering the same
// descriptor again produces an independent handler.
func Register(desc *Descriptor, ref plugin.Ref, acts actions.Actions, q *queue.Queue) *Handler {
	return &Handler{
		desc:   desc,
		plugin: ref,
		acts:   acts,
		queue:  q,
	}
}

// Type returns the event type this handler responds to.
func (h *Handler) Type() string {
	return h.desc.eventType
}

// Plugin returns the identity the handler is registered under.
func (h *Handler) Plugin() plugin.Ref {
	return h.plugin
}

// Invoke reads the caller's causal token as the task's parent, enqueues
// a task, and returns its future. The handler body runs later, on the
// queue's worker, under a freshly generated token.
func (h *Handler) Invoke(ctx context.Context, args any) (*queue.Future, error) {
	fut := h.queue.Push(&queue.Task{
		Type:    h.desc.eventType,
		Handler: h.desc.fn,
		Args:    args,
		Parent:  track.Current(ctx),
		Plugin:  h.plugin,
		Actions: h.acts,
	})
	return fut, nil
}
