package codec

import (
	"sync"
)

type cacheKey struct {
	path      string
	grayscale bool
}

// Cache keeps decoded files in memory so repeated tool calls on the same
// path skip disk I/O and decoding.
//
// Entries are keyed by the exact path string and the grayscale option.
// They stay until Evict or Clear; Cache is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*File
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]*File)}
}

// Load returns the decoded file at path, decoding it on first use.
func (c *Cache) Load(path string, opts ...FileOption) (*File, error) {
	var o fileOptions
	for _, opt := range opts {
		opt(&o)
	}
	key := cacheKey{path: path, grayscale: o.grayscale}

	c.mu.RLock()
	if f, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		return f, nil
	}
	c.mu.RUnlock()

	f, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = f
	c.mu.Unlock()
	return f, nil
}

// Evict drops every entry for path.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	for k := range c.entries {
		if k.path == path {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[cacheKey]*File)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
