package syntax

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/codelens/codelens/pkg/codelens"
)

// contentCache memoizes FileSyntax by content hash: identical file content
// (vendored copies, generated boilerplate) is parsed once. Guarded by a
// mutex; after the parse phase the map is only read, matching spec.md §5's
// "reads after the parse phase require no synchronization because the
// cache is frozen" -- here we simply keep locking since workers can still
// be mid-parse when a late duplicate arrives.
type contentCache struct {
	mu    sync.Mutex
	byKey map[uint64]*codelens.FileSyntax
}

func newContentCache() *contentCache {
	return &contentCache{byKey: make(map[uint64]*codelens.FileSyntax)}
}

func (c *contentCache) key(content []byte) uint64 {
	return xxhash.Sum64(content)
}

func (c *contentCache) get(key uint64) (*codelens.FileSyntax, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fs, ok := c.byKey[key]
	return fs, ok
}

func (c *contentCache) put(key uint64, fs *codelens.FileSyntax) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byKey[key]; !exists {
		c.byKey[key] = fs
	}
}
