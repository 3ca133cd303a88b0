// Package actions bundles the node-mutation capabilities handed to
// source-event handlers.
//
// Handlers never talk to a node store directly. At registration time the
// store's operations are bound to the owning plugin's identity, so every
// node a handler creates carries the plugin's name as its owner without
// the handler having to supply it.
package actions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/randalmurphal/causeway/pkg/causeway/config"
	"github.com/randalmurphal/causeway/pkg/causeway/nodestore"
	"github.com/randalmurphal/causeway/pkg/causeway/plugin"
	"github.com/randalmurphal/causeway/pkg/causeway/track"
)

// Actions is the capability set passed to a handler invocation.
// All functions are bound to the registering plugin.
type Actions struct {
	// CreateNode stores a node, stamping it with the plugin's identity
	// and a content digest before the store is called.
	CreateNode func(ctx context.Context, node *nodestore.Node) error

	// DeleteNode removes a node by ID.
	DeleteNode func(ctx context.Context, id string) error

	// CreateContentDigest returns a stable hash of v, suitable for
	// change detection on node content.
	CreateContentDigest func(v any) string

	// CreateNodeID derives a deterministic node ID from input,
	// namespaced by the plugin's name so two plugins sourcing the same
	// input never collide.
	CreateNodeID func(input string) string

	// PluginOptions holds the owning plugin's configured options.
	PluginOptions config.Config
}

// Bind builds the Actions for one plugin over the given store.
func Bind(store nodestore.Store, ref plugin.Ref) Actions {
	// Namespace for deterministic node IDs, derived from the plugin name.
	ns := uuid.NewSHA1(uuid.NameSpaceURL, []byte(ref.Name))

	return Actions{
		CreateNode: func(ctx context.Context, node *nodestore.Node) error {
			if node == nil {
				return nodestore.ErrMissingID
			}
			node.Owner = ref.Name
			if node.ContentDigest == "" {
				node.ContentDigest = ContentDigest(node.Fields)
			}
			if parent := track.Current(ctx); parent != track.None {
				node.Parent = parent
			}
			return store.CreateNode(ctx, node)
		},
		DeleteNode: func(ctx context.Context, id string) error {
			return store.DeleteNode(ctx, id)
		},
		CreateContentDigest: ContentDigest,
		CreateNodeID: func(input string) string {
			return uuid.NewSHA1(ns, []byte(input)).String()
		},
		PluginOptions: ref.Options,
	}
}

// ContentDigest returns a stable hex-encoded hash of v.
//
// The value is serialized to canonical JSON first (encoding/json sorts
// map keys), so logically equal values always produce the same digest.
func ContentDigest(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Unserializable values still get a stable digest of their
		// formatted representation.
		data = []byte(fmt.Sprintf("%#v", v))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
