package utils

import (
	"sync"
)

// Cache is a concurrency-safe generic map with validation-based eviction
type Cache[K comparable, V any] struct {
	items map[K]V
	mutex sync.RWMutex

	hits   int
	misses int
}

// NewCache creates a new generic cache
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

// Get retrieves an item from the cache
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	v, ok := c.items[key]
	return v, ok
}

// GetValid retrieves an item if valid accepts it. Rejected items are evicted.
func (c *Cache[K, V]) GetValid(key K, valid func(V) bool) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	v, ok := c.items[key]
	if ok && valid(v) {
		c.hits++
		return v, true
	}
	if ok {
		delete(c.items, key)
	}
	c.misses++

	var zero V
	return zero, false
}

// Set stores an item in the cache
func (c *Cache[K, V]) Set(key K, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = value
}

// Delete removes an item from the cache
func (c *Cache[K, V]) Delete(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache[K, V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[K]V)
}

// GetStats returns cache statistics
func (c *Cache[K, V]) GetStats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return CacheStats{
		Size:   len(c.items),
		Hits:   c.hits,
		Misses: c.misses,
	}
}

// CacheStats provides cache statistics
type CacheStats struct {
	Size   int
	Hits   int
	Misses int
}
