package core

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultIconCacheSize is used when a panel is opened without a cache size.
const DefaultIconCacheSize = 128

// IconCache is a bounded, panel-scoped cache in front of an IconSource.
// Safe for concurrent use.
type IconCache struct {
	source IconSource
	cache  *lru.Cache[int, []byte]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewIconCache creates a cache holding at most size icons.
func NewIconCache(source IconSource, size int) (*IconCache, error) {
	if size <= 0 {
		size = DefaultIconCacheSize
	}
	cache, err := lru.New[int, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create icon cache: %w", err)
	}
	return &IconCache{source: source, cache: cache}, nil
}

// Icon returns the icon for an entity, loading it from the source on a miss.
// Failed loads are not cached.
func (c *IconCache) Icon(key int) ([]byte, error) {
	if icon, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return icon, nil
	}
	c.misses.Add(1)

	if c.source == nil {
		return nil, fmt.Errorf("icon %d: %w", key, ErrNotFound)
	}
	icon, err := c.source.Icon(key)
	if err != nil {
		return nil, fmt.Errorf("icon %d: %w", key, err)
	}
	c.cache.Add(key, icon)
	return icon, nil
}

// Len returns the number of cached icons.
func (c *IconCache) Len() int {
	return c.cache.Len()
}

// Stats returns the hit and miss counts since the cache was created.
func (c *IconCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Purge drops every cached icon.
func (c *IconCache) Purge() {
	c.cache.Purge()
}
