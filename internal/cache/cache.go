// Package cache memoizes loaded pages for the content service.
package cache

import (
	"sync"

	"github.com/goliatone/go-sitecontent/content"
)

// Options configures a PageCache.
type Options struct {
	// Bypass disables the cache entirely. Development mode sets it so edits show up at once.
	Bypass bool
}

type key struct {
	locale content.Language
	pageID string
}

// PageCache is keyed by (locale, pageId). Entries never expire; they are dropped only by Clear
// or ClearAll. Concurrent first loads may both Set; the last write wins.
type PageCache struct {
	mu      sync.RWMutex
	entries map[key]*content.ContentPage
	bypass  bool
}

// New returns an empty cache.
func New(opts Options) *PageCache {
	return &PageCache{
		entries: map[key]*content.ContentPage{},
		bypass:  opts.Bypass,
	}
}

// Bypassed reports whether the cache is disabled.
func (c *PageCache) Bypassed() bool {
	return c == nil || c.bypass
}

// Get returns the cached page. The pointer is shared with every other caller.
func (c *PageCache) Get(pageID string, locale content.Language) (*content.ContentPage, bool) {
	if c.Bypassed() {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	page, ok := c.entries[key{locale: locale, pageID: pageID}]
	return page, ok
}

func (c *PageCache) Set(pageID string, locale content.Language, page *content.ContentPage) {
	if c.Bypassed() || page == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key{locale: locale, pageID: pageID}] = page
}

// Clear drops every locale cached for pageID.
func (c *PageCache) Clear(pageID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.pageID == pageID {
			delete(c.entries, k)
		}
	}
}

func (c *PageCache) ClearAll() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

func (c *PageCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
