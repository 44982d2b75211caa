// Package imagecache deduplicates image lookups across listing cards. The
// old UI had every card fetch its own images, so a page of N cards cost N
// identical calls; here all cards of one result rendering share a cache
// keyed by listing id, and concurrent resolves for the same id collapse
// into a single fetch.
package imagecache

import (
	"sync"
	"sync/atomic"

	"github.com/jredh-dev/souk/internal/client"
)

// Fetcher loads the images for a listing. *client.Client satisfies this via
// ImagesByListingID.
type Fetcher func(listingID int) ([]client.Image, error)

// Cache resolves a listing's display image at most once. A failed or empty
// lookup is cached as "no image": a valid answer, not an error, and one
// that must never block card rendering.
type Cache struct {
	fetch Fetcher

	mu      sync.Mutex
	entries map[int]*entry
}

type entry struct {
	once sync.Once
	img  client.Image
	ok   bool
	done atomic.Bool
}

// New creates a Cache backed by fetch.
func New(fetch Fetcher) *Cache {
	return &Cache{fetch: fetch, entries: make(map[int]*entry)}
}

// Resolve returns the listing's first image. ok is false when the listing
// has no images or the lookup failed; the caller renders a placeholder.
// Safe for concurrent use; the underlying fetch runs once per listing id.
func (c *Cache) Resolve(listingID int) (img client.Image, ok bool) {
	c.mu.Lock()
	e, exists := c.entries[listingID]
	if !exists {
		e = &entry{}
		c.entries[listingID] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		images, err := c.fetch(listingID)
		if err == nil && len(images) > 0 {
			e.img = images[0]
			e.ok = true
		}
		e.done.Store(true)
	})
	return e.img, e.ok
}

// Peek returns the cached image without triggering a fetch. resolved is
// false if Resolve has not completed for this id yet.
func (c *Cache) Peek(listingID int) (img client.Image, ok, resolved bool) {
	c.mu.Lock()
	e, exists := c.entries[listingID]
	c.mu.Unlock()
	if !exists || !e.done.Load() {
		return client.Image{}, false, false
	}
	return e.img, e.ok, true
}

// Clear drops every cached entry. Called when a new result set replaces the
// old one wholesale, so stale listings do not pin memory.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[int]*entry)
	c.mu.Unlock()
}
