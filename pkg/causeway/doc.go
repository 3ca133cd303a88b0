/*
Package causeway provides a serialized task queue for plugin-supplied
source-event handlers, with causal parent/child tracking across
asynchronous boundaries.

# Overview

causeway sits between a plugin system and a node store. Plugins define
handlers for named source events; the application registers each handler
under its plugin's identity; dispatching an event enqueues one task per
matching handler. Tasks execute strictly one at a time, in submission
order, and every execution runs under a fresh causal token. A handler
that triggers another handler from inside its own execution produces a
task whose parent is the outer task's token, reconstructing the causal
chain even though the work crossed the queue's asynchronous boundary.

# Basic Usage

Create a Service, define and register a handler, then run events:

	svc := causeway.New()
	defer svc.Close()

	desc, err := svc.DefineSourceEvent(handler.Definition{
	    Type:        "SOURCE_FILE",
	    Description: "Creates a node per sourced file",
	    Handler: func(ctx context.Context, args any, acts actions.Actions) (any, error) {
	        path := args.(string)
	        return nil, acts.CreateNode(ctx, &nodestore.Node{
	            ID:     acts.CreateNodeID(path),
	            Type:   "File",
	            Fields: map[string]any{"path": path},
	        })
	    },
	})
	if err != nil {
	    log.Fatal(err)
	}

	svc.Register(desc, plugin.New("source-filesystem", config.New(nil)))
	svc.RunEvent(context.Background(), "SOURCE_FILE", "content/index.md")

RunEvent does not wait for handlers. Call Drain to reach quiescence
before reading the node store or shutting down.

# Serialization

The queue's concurrency is fixed at exactly 1. This is a deliberate
guarantee, not a tunable: handlers may freely mutate shared state
through the bound actions because no two handler bodies ever overlap.
Task N+1 never starts before task N's handler, including any waited-on
asynchronous tail, has fully settled.

# Causal tokens

Each executed task runs under a token formatted "{eventType}-{uuid}",
carried on the context (see the track package). Invoking a handler reads
the caller's token as the new task's parent. Nodes created during a task
record that task's token, so the full provenance of any node can be
traced back through the chain of handler invocations that produced it.

# Futures and errors

Invoke returns a future per invocation. A handler error, or a panic,
rejects only that invocation's future; the worker moves on to the next
task. Dispatch via RunEvent is fire-and-forget and discards the futures,
so a failing handler is observable only by whoever invoked it directly.

Handlers have no timeout. A handler that never returns, or that waits on
a future of a task queued behind its own, stalls the queue indefinitely.
*/
package causeway
