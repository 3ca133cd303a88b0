package causeway

import (
	"github.com/randalmurphal/causeway/pkg/causeway/handler"
	"github.com/randalmurphal/causeway/pkg/causeway/nodestore"
	"github.com/randalmurphal/causeway/pkg/causeway/queue"
)

// Sentinel errors re-exported from the subpackages they originate in, so
// callers holding only a Service can test for them with errors.Is.
var (
	// ErrQueueClosed indicates work was submitted after Close.
	ErrQueueClosed = queue.ErrClosed

	// ErrNotRegistered indicates an invocation on a descriptor that was
	// never registered to a plugin.
	ErrNotRegistered = handler.ErrNotRegistered

	// ErrNodeNotFound indicates a lookup or delete of a node that does
	// not exist.
	ErrNodeNotFound = nodestore.ErrNotFound
)
