package buffer

import (
	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/ristretto/v2"

	"github.com/petro-db/petroidx/storage/disk"
)

// DecodeCache memoizes the already-parsed view of a page (an internal or
// leaf node struct, decoded from raw bytes) between reads of that page,
// so a hot page near the root is not re-parsed on every descent. It is
// strictly an optimization over pages the caller has independently pinned
// through a ReadPageGuard or WritePageGuard; it never substitutes for a
// pin, and a WritePageGuard invalidates its page's entry on Drop so the
// next reader decodes fresh bytes.
//
// Backed by ristretto, wired in from ShubhamNegi4-DaemonDB's dependency
// pool: its admission policy is a better fit here than a bespoke LRU,
// since decoded node structs vary widely in size (a near-empty root vs. a
// full internal node) and ristretto's cost-aware eviction accounts for
// that where a fixed-capacity map would not.
type DecodeCache struct {
	cache *ristretto.Cache[disk.PageId, any]
}

// NewDecodeCache builds a cache sized for approximately maxItems decoded
// pages.
func NewDecodeCache(maxItems int64) (*DecodeCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[disk.PageId, any]{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "buffer: create decode cache")
	}
	return &DecodeCache{cache: c}, nil
}

// Get returns the cached decoded value for pageId, if present.
func (c *DecodeCache) Get(pageId disk.PageId) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.cache.Get(pageId)
}

// Set caches a decoded value for pageId with unit cost.
func (c *DecodeCache) Set(pageId disk.PageId, v any) {
	if c == nil {
		return
	}
	c.cache.Set(pageId, v, 1)
}

// Invalidate drops any cached decoded value for pageId.
func (c *DecodeCache) Invalidate(pageId disk.PageId) {
	if c == nil {
		return
	}
	c.cache.Del(pageId)
}

// Close releases the cache's background goroutines.
func (c *DecodeCache) Close() {
	if c == nil {
		return
	}
	c.cache.Close()
}
