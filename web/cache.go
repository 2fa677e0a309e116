// Package web holds rendering-layer support code shared by the HTML
// handlers.
package web

import "sync"

// PageCache caches rendered page bodies by request path. Post mutations
// invalidate the affected paths so the next request re-renders.
type PageCache struct {
	mu    sync.RWMutex
	pages map[string][]byte
}

func NewPageCache() *PageCache {
	return &PageCache{pages: make(map[string][]byte)}
}

func (c *PageCache) Get(path string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	body, ok := c.pages[path]
	return body, ok
}

func (c *PageCache) Set(path string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[path] = body
}

func (c *PageCache) Invalidate(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		delete(c.pages, p)
	}
}
