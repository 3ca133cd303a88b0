package nodestore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory node store.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	nodes  map[string]*Node
	closed bool
}

// NewMemoryStore creates a new in-memory node store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[string]*Node),
	}
}

// CreateNode implements Store.
func (m *MemoryStore) CreateNode(_ context.Context, node *Node) error {
	if node == nil || node.ID == "" {
		return ErrMissingID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	stored := *node
	if stored.CreatedAt.IsZero() {
		if existing, ok := m.nodes[node.ID]; ok {
			stored.CreatedAt = existing.CreatedAt
		} else {
			stored.CreatedAt = time.Now().UTC()
		}
	}

	m.nodes[node.ID] = &stored
	return nil
}

// DeleteNode implements Store.
func (m *MemoryStore) DeleteNode(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.nodes, id)
	return nil
}

// GetNode implements Store.
func (m *MemoryStore) GetNode(_ context.Context, id string) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	node, ok := m.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Copy to keep the stored node immutable from the caller's view.
	out := *node
	return &out, nil
}

// NodesByType implements Store.
func (m *MemoryStore) NodesByType(_ context.Context, nodeType string) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	var out []*Node
	for _, node := range m.nodes {
		if node.Type == nodeType {
			copied := *node
			out = append(out, &copied)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
