package registry_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/causeway/pkg/causeway/registry"
)

func TestRegistry_AddGet(t *testing.T) {
	r := registry.New[string, int]()

	r.Add("a", 1)
	r.Add("a", 2)
	r.Add("b", 3)

	assert.Equal(t, []int{1, 2}, r.Get("a"))
	assert.Equal(t, []int{3}, r.Get("b"))
	assert.Nil(t, r.Get("missing"))
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := registry.New[string, int]()
	r.Add("a", 1)
	r.Add("a", 2)

	values := r.Get("a")
	values[0] = 99

	assert.Equal(t, []int{1, 2}, r.Get("a"))
}

func TestRegistry_Has(t *testing.T) {
	r := registry.New[string, string]()

	assert.False(t, r.Has("a"))
	r.Add("a", "x")
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("b"))
}

func TestRegistry_Keys(t *testing.T) {
	r := registry.New[string, int]()
	r.Add("a", 1)
	r.Add("b", 2)
	r.Add("b", 3)

	keys := r.Keys()
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestRegistry_Len(t *testing.T) {
	r := registry.New[string, int]()
	assert.Equal(t, 0, r.Len())

	r.Add("a", 1)
	r.Add("a", 2)
	r.Add("b", 3)
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_Range(t *testing.T) {
	r := registry.New[string, int]()
	r.Add("a", 1)
	r.Add("b", 2)

	seen := map[string][]int{}
	r.Range(func(k string, values []int) bool {
		seen[k] = values
		return true
	})

	require.Len(t, seen, 2)
	assert.Equal(t, []int{1}, seen["a"])
	assert.Equal(t, []int{2}, seen["b"])
}

func TestRegistry_RangeEarlyStop(t *testing.T) {
	r := registry.New[string, int]()
	r.Add("a", 1)
	r.Add("b", 2)
	r.Add("c", 3)

	visited := 0
	r.Range(func(string, []int) bool {
		visited++
		return false
	})

	assert.Equal(t, 1, visited)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := registry.New[string, int]()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			r.Add("key", n)
		}(i)
		go func() {
			defer wg.Done()
			r.Get("key")
			r.Has("key")
			r.Len()
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, r.Len())
}
