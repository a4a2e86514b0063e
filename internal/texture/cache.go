package texture

import (
	"fmt"
	"image"
	"os"
	"sync"
)

// Cache is a concurrency-safe texture cache. Batch workers share one cache
// so each texture is decoded once per run.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache creates a new texture cache backed by the given index.
// A nil index means names are used as paths directly; names missing from
// the index are tried as paths too.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
	}
}

// Load loads and caches a texture by name. Failures are cached too.
func (c *Cache) Load(texName string) (*image.NRGBA, error) {
	path := texName
	if c.index != nil {
		if p, ok := c.index.ResolvePath(texName); ok {
			path = p
		} else if _, err := os.Stat(texName); err != nil {
			return nil, fmt.Errorf("texture: %q not in index", texName)
		}
	}

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return entry.img, entry.err
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	img, err := LoadTexture(path)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[path]; exists {
		return entry.img, entry.err
	}
	c.items[path] = &cacheEntry{img: img, err: err}
	return img, err
}
