// Package cache provides a small generic in-memory map guarded by a mutex.
// It backs the renderer's per-source face-coordinate cache (§4.G) and other
// in-process job bookkeeping that does not need to survive a restart.
package cache

import (
	"sync"

	"github.com/clipforge/viralclip/log"
)

type Cache[T interface{}] struct {
	cache map[string]T
	mutex sync.Mutex
}

func New[T interface{}]() *Cache[T] {
	return &Cache[T]{
		cache: make(map[string]T),
	}
}

func (c *Cache[T]) Remove(jobID, key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.cache, key)
	log.Log(jobID, "deleting from cache", "key", key)
}

func (c *Cache[T]) Get(key string) (T, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	info, ok := c.cache[key]
	return info, ok
}

func (c *Cache[T]) Store(key string, value T) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cache[key] = value
}

func (c *Cache[T]) UnittestIntrospection() *map[string]T {
	return &c.cache
}
