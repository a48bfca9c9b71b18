package rcs

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// Cache bounds the amount of reconstructed revision text kept resident
// while walking one file's delta chain. Reconstruction is inherently
// sequential (each revision's text is derived from its predecessor's), but
// a revision can also be the branch point for several branches, so its
// text may be needed again long after the trunk walk has moved past it;
// an unbounded map would otherwise hold every revision of a large file's
// history resident for the life of the walk. A Cache is scoped to a single
// File — revision ids are not unique across files, so callers must not
// share one Cache between files.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache
}

// NewCache returns a Cache holding at most maxEntries reconstructed
// revisions before evicting the least recently used.
func NewCache(maxEntries int) *Cache {
	return &Cache{lru: lru.New(maxEntries)}
}

func (c *Cache) get(rev Revision) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(rev.String())
	if !ok {
		return nil, false
	}
	return v.([]string), true
}

func (c *Cache) put(rev Revision, lines []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(rev.String(), lines)
}
