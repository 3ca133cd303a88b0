// Package registry provides a thread-safe multi-registry used to index
// registered handlers by event type.
package registry

import "sync"

// Registry is a thread-safe registry mapping each key to an ordered
// list of values. Values accumulate per key in insertion order, which
// is the order dispatch later iterates them in.
type Registry[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K][]V
}

// New creates a new empty registry.
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		entries: make(map[K][]V),
	}
}

// Add appends a value to the key's list.
func (r *Registry[K, V]) Add(key K, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = append(r.entries[key], value)
}

// Get returns a copy of the values for a key, in insertion order.
// The returned slice is safe to retain and iterate without locking.
func (r *Registry[K, V]) Get(key K) []V {
	r.mu.RLock()
	defer r.mu.RUnlock()
	values := r.entries[key]
	if len(values) == 0 {
		return nil
	}
	out := make([]V, len(values))
	copy(out, values)
	return out
}

// Has returns true if at least one value is registered for the key.
func (r *Registry[K, V]) Has(key K) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries[key]) > 0
}

// Keys returns all keys with at least one value.
// The order is not guaranteed.
func (r *Registry[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]K, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the total number of registered values across all keys.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, values := range r.entries {
		n += len(values)
	}
	return n
}

// Range iterates over all keys and their values. If fn returns false,
// iteration stops.
//
// Range iterates over a snapshot of the registry, so it is safe to call
// Add during iteration without affecting the current iteration.
func (r *Registry[K, V]) Range(fn func(K, []V) bool) {
	// Take a snapshot under read lock
	r.mu.RLock()
	snapshot := make(map[K][]V, len(r.entries))
	for k, values := range r.entries {
		copied := make([]V, len(values))
		copy(copied, values)
		snapshot[k] = copied
	}
	r.mu.RUnlock()

	for k, values := range snapshot {
		if !fn(k, values) {
			return
		}
	}
}
