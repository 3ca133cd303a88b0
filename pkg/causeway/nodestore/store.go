// Package nodestore provides node storage backing the mutation actions
// handed to source-event handlers.
package nodestore

import (
	"context"
	"errors"
	"time"
)

// Node is one unit of sourced content.
type Node struct {
	// ID uniquely identifies the node.
	ID string `json:"id"`

	// Type is the node's content type, e.g. "MarkdownPage".
	Type string `json:"type"`

	// Owner is the name of the plugin that created the node.
	// Set by the action layer, not by handlers.
	Owner string `json:"owner"`

	// ContentDigest is a stable hash of the node's fields, used for
	// change detection.
	ContentDigest string `json:"content_digest"`

	// Parent is the token of the task that created the node, if any.
	Parent string `json:"parent,omitempty"`

	// Fields holds the node's content.
	Fields map[string]any `json:"fields"`

	// CreatedAt is when the node was first stored.
	CreatedAt time.Time `json:"created_at"`
}

// Store persists nodes created by source-event handlers.
// Implementations must be safe for concurrent use.
type Store interface {
	// CreateNode stores a node.
	// Overwrites if a node with the same ID already exists.
	CreateNode(ctx context.Context, node *Node) error

	// DeleteNode removes a node.
	// Returns nil if the node doesn't exist.
	DeleteNode(ctx context.Context, id string) error

	// GetNode retrieves a node by ID.
	// Returns ErrNotFound if the node doesn't exist.
	GetNode(ctx context.Context, id string) (*Node, error)

	// NodesByType returns all nodes of a given type, ordered by creation time.
	NodesByType(ctx context.Context, nodeType string) ([]*Node, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a node doesn't exist.
	ErrNotFound = errors.New("node not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("node store closed")

	// ErrMissingID indicates CreateNode was called with an empty node ID.
	ErrMissingID = errors.New("node ID is required")
)
