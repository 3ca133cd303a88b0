package nodestore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/causeway/pkg/causeway/nodestore"
)

// storeFactory creates a store instance for testing.
type storeFactory func(t *testing.T) nodestore.Store

// storeContractTest runs contract tests against any Store implementation.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	ctx := context.Background()

	t.Run(name+"/Create_and_Get", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		node := &nodestore.Node{
			ID:            "node-1",
			Type:          "MarkdownPage",
			Owner:         "source-filesystem",
			ContentDigest: "digest-1",
			Fields:        map[string]any{"title": "Hello"},
		}
		require.NoError(t, store.CreateNode(ctx, node))

		got, err := store.GetNode(ctx, "node-1")
		require.NoError(t, err)
		assert.Equal(t, "MarkdownPage", got.Type)
		assert.Equal(t, "source-filesystem", got.Owner)
		assert.Equal(t, "Hello", got.Fields["title"])
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run(name+"/Get_NotFound", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.GetNode(ctx, "nonexistent")
		assert.ErrorIs(t, err, nodestore.ErrNotFound)
	})

	t.Run(name+"/Create_MissingID", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		err := store.CreateNode(ctx, &nodestore.Node{Type: "T"})
		assert.ErrorIs(t, err, nodestore.ErrMissingID)
	})

	t.Run(name+"/Create_Overwrite", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.CreateNode(ctx, &nodestore.Node{
			ID: "node-1", Type: "T", Fields: map[string]any{"v": "first"},
		}))
		require.NoError(t, store.CreateNode(ctx, &nodestore.Node{
			ID: "node-1", Type: "T", Fields: map[string]any{"v": "second"},
		}))

		got, err := store.GetNode(ctx, "node-1")
		require.NoError(t, err)
		assert.Equal(t, "second", got.Fields["v"])
	})

	t.Run(name+"/Delete", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.CreateNode(ctx, &nodestore.Node{ID: "node-1", Type: "T"}))
		require.NoError(t, store.DeleteNode(ctx, "node-1"))

		_, err := store.GetNode(ctx, "node-1")
		assert.ErrorIs(t, err, nodestore.ErrNotFound)

		// Deleting a missing node is not an error.
		assert.NoError(t, store.DeleteNode(ctx, "node-1"))
	})

	t.Run(name+"/NodesByType_Ordered", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		base := time.Now().UTC()
		require.NoError(t, store.CreateNode(ctx, &nodestore.Node{
			ID: "node-a", Type: "Page", CreatedAt: base,
		}))
		require.NoError(t, store.CreateNode(ctx, &nodestore.Node{
			ID: "node-b", Type: "Page", CreatedAt: base.Add(time.Millisecond),
		}))
		require.NoError(t, store.CreateNode(ctx, &nodestore.Node{
			ID: "node-c", Type: "Other", CreatedAt: base.Add(2 * time.Millisecond),
		}))

		pages, err := store.NodesByType(ctx, "Page")
		require.NoError(t, err)
		require.Len(t, pages, 2)
		assert.Equal(t, "node-a", pages[0].ID)
		assert.Equal(t, "node-b", pages[1].ID)
	})

	t.Run(name+"/NodesByType_Empty", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		nodes, err := store.NodesByType(ctx, "Nonexistent")
		require.NoError(t, err)
		assert.Empty(t, nodes)
	})

	t.Run(name+"/Closed", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Close())

		err := store.CreateNode(ctx, &nodestore.Node{ID: "node-1", Type: "T"})
		assert.ErrorIs(t, err, nodestore.ErrStoreClosed)

		_, err = store.GetNode(ctx, "node-1")
		assert.ErrorIs(t, err, nodestore.ErrStoreClosed)
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	storeContractTest(t, "memory", func(t *testing.T) nodestore.Store {
		return nodestore.NewMemoryStore()
	})
}

func TestSQLiteStore_Contract(t *testing.T) {
	storeContractTest(t, "sqlite", func(t *testing.T) nodestore.Store {
		store, err := nodestore.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return store
	})
}
