package library

import "sync"

// CoverCache is a presentation-side cache of cover-image blobs keyed by isbn,
// so redrawing the catalog does not refetch the same bytes. It is advisory
// only; the store stays authoritative.
type CoverCache struct {
	mu     sync.RWMutex
	covers map[string][]byte
}

func NewCoverCache() *CoverCache {
	return &CoverCache{covers: make(map[string][]byte)}
}

// Get returns the cached cover for isbn, if any.
func (c *CoverCache) Get(isbn string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.covers[isbn]
	return img, ok
}

// Put stores a cover; nil or empty images are not cached.
func (c *CoverCache) Put(isbn string, image []byte) {
	if len(image) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.covers[isbn] = image
}

// Invalidate drops one entry, e.g. after an edit or delete.
func (c *CoverCache) Invalidate(isbn string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.covers, isbn)
}

// Clear drops everything, e.g. on theme reload.
func (c *CoverCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.covers = make(map[string][]byte)
}

func (c *CoverCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.covers)
}
