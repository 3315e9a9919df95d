package markdown

import (
	"context"
	"io"
	"sync"

	"github.com/a-h/templ"
)

// DefaultPreviewEntries is the PreviewCache size used when none is given.
const DefaultPreviewEntries = 64

// PreviewCache memoises RenderPreview. Entries are evicted oldest first once
// the cache holds max documents.
type PreviewCache struct {
	mu      sync.RWMutex
	entries map[string]string
	order   []string
	max     int
}

// NewPreviewCache creates a PreviewCache holding at most max documents.
func NewPreviewCache(max int) *PreviewCache {
	if max <= 0 {
		max = DefaultPreviewEntries
	}
	return &PreviewCache{entries: make(map[string]string, max), max: max}
}

// Render returns the preview HTML for content, rendering it on a miss.
// It tries a read lock first; only takes a write lock to store a new entry.
func (c *PreviewCache) Render(content string) string {
	c.mu.RLock()
	out, ok := c.entries[content]
	c.mu.RUnlock()
	if ok {
		return out
	}

	out = RenderPreview(content)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[content]; ok {
		return out
	}
	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[content] = out
	c.order = append(c.order, content)
	return out
}

// Len reports the number of cached documents.
func (c *PreviewCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Invalidate drops every cached document.
func (c *PreviewCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]string, c.max)
	c.order = nil
	c.mu.Unlock()
}

// Component returns a templ.Component writing the cached preview of content.
func (c *PreviewCache) Component(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, c.Render(content))
		return err
	})
}
