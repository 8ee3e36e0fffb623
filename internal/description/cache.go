package description

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Cache holds description documents keyed by their LOCATION URL.
// Entries live until Clear; a later Store for the same URL replaces the
// earlier document. Cache is safe for concurrent use.
type Cache struct {
	docs *xsync.MapOf[string, []byte]
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{docs: xsync.NewMapOf[string, []byte]()}
}

// Lookup returns the cached document for url
func (c *Cache) Lookup(url string) ([]byte, bool) {
	return c.docs.Load(url)
}

// Store caches doc under url
func (c *Cache) Store(url string, doc []byte) {
	c.docs.Store(url, doc)
}

// Clear removes every entry
func (c *Cache) Clear() {
	c.docs.Clear()
}

// Len returns the number of cached documents
func (c *Cache) Len() int {
	return c.docs.Size()
}

// URLs returns the cached locations in no particular order
func (c *Cache) URLs() []string {
	urls := make([]string, 0, c.docs.Size())
	c.docs.Range(func(url string, _ []byte) bool {
		urls = append(urls, url)
		return true
	})
	return urls
}
