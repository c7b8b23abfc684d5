// Package buffer implements the pinned-page buffer pool manager consumed
// by the B+ tree core as an external collaborator: allocate a page, read
// an existing page, pin/unpin, mark dirty, flush the file. Its frame/
// guard/replacer shape is retargeted at storage/disk's PageId and the
// replacer's eviction logic is fully wired (see lru_k_replacer.go).
package buffer

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/petro-db/petroidx/storage/disk"
)

// BufferpoolManager pins pages of a single disk.File in a fixed set of
// in-memory frames, evicting via an LRU-K replacer when every frame is in
// use and none is free.
type BufferpoolManager struct {
	mu         sync.Mutex
	cond       sync.Cond
	frames     []*frame
	pageTable  map[disk.PageId]int
	freeFrames []int
	replacer   *lrukReplacer
	scheduler  *disk.Scheduler
	file       *disk.File
	cache      *DecodeCache
}

// New builds a buffer pool of the given frame capacity over file, evicting
// with LRU-K(k). A nil cache disables the optional decoded-page cache.
func New(capacity, k int, file *disk.File, cache *DecodeCache) *BufferpoolManager {
	frames := make([]*frame, capacity)
	free := make([]int, capacity)
	for i := 0; i < capacity; i++ {
		frames[i] = newFrame(i)
		free[i] = i
	}

	bpm := &BufferpoolManager{
		frames:     frames,
		pageTable:  make(map[disk.PageId]int),
		freeFrames: free,
		replacer:   NewLrukReplacer(capacity, k),
		scheduler:  disk.NewScheduler(file),
		file:       file,
		cache:      cache,
	}
	bpm.cond = *sync.NewCond(&bpm.mu)
	return bpm
}

// PageCount reports how many pages the underlying file currently holds.
// A freshly disk.Create'd file has PageCount zero; callers use this to
// tell a brand-new file apart from a reopened one.
func (b *BufferpoolManager) PageCount() disk.PageId {
	return b.file.PageCount()
}

// AllocatePage grows the underlying file by one page. It does not pin the
// new page; callers immediately WritePage it to initialize its contents.
func (b *BufferpoolManager) AllocatePage() (disk.PageId, error) {
	return b.file.AllocatePage()
}

// ReadPage pins pageId read-only, loading it from disk on a pool miss.
func (b *BufferpoolManager) ReadPage(pageId disk.PageId) (*ReadPageGuard, error) {
	f, err := b.acquireFrame(pageId)
	if err != nil {
		return nil, err
	}
	f.mu.RLock()
	return newReadPageGuard(f, b), nil
}

// WritePage pins pageId for mutation, loading it from disk on a pool miss.
// The page is not marked dirty until the guard's MarkDirty is called: a
// caller that only inspects a page while deciding whether to mutate it
// (navigating past an internal node during insert, say) must not force an
// unrelated flush of that page on eviction.
func (b *BufferpoolManager) WritePage(pageId disk.PageId) (*WritePageGuard, error) {
	f, err := b.acquireFrame(pageId)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	return newWritePageGuard(f, b), nil
}

// acquireFrame pins pageId into a frame, fetching it from disk if it is
// not already resident, blocking until a frame is free if the pool is
// full and nothing is currently evictable.
func (b *BufferpoolManager) acquireFrame(pageId disk.PageId) (*frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		if id, ok := b.pageTable[pageId]; ok {
			f := b.frames[id]
			b.replacer.recordAccess(f.id)
			b.replacer.setEvictable(f.id, false)
			f.pin()
			return f, nil
		}

		f, err := b.claimFrame()
		if err != nil {
			return nil, err
		}
		if f == nil {
			b.cond.Wait()
			continue
		}

		delete(b.pageTable, f.pageId)
		f.reset()
		f.pageId = pageId
		b.pageTable[pageId] = f.id

		b.replacer.recordAccess(f.id)
		b.replacer.setEvictable(f.id, false)
		f.pin()

		resp := <-b.scheduler.Schedule(disk.NewRequest(pageId, nil, false))
		if resp.Err != nil {
			f.unpin()
			delete(b.pageTable, pageId)
			return nil, resp.Err
		}
		copy(f.data, resp.Data)

		return f, nil
	}
}

// claimFrame returns a free frame, evicting one if necessary. It returns
// (nil, nil) if the pool is full and nothing is currently evictable.
func (b *BufferpoolManager) claimFrame() (*frame, error) {
	if len(b.freeFrames) > 0 {
		id := b.freeFrames[0]
		b.freeFrames = b.freeFrames[1:]
		return b.frames[id], nil
	}

	id, ok := b.replacer.evict()
	if !ok {
		return nil, nil
	}

	f := b.frames[id]
	if err := b.flushFrame(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (b *BufferpoolManager) flushFrame(f *frame) error {
	if !f.dirty {
		return nil
	}
	resp := <-b.scheduler.Schedule(disk.NewRequest(f.pageId, f.data, true))
	if resp.Err != nil {
		return errors.Wrapf(resp.Err, "buffer: flush page %d", f.pageId)
	}
	log.Debug().Uint32("page", f.pageId).Msg("flushed dirty frame on eviction")
	return nil
}

// onUnpin is called by a guard's Drop to release its pin and, once a
// frame's pin count reaches zero, make it evictable again and wake any
// waiter blocked in acquireFrame.
func (b *BufferpoolManager) onUnpin(f *frame) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if f.unpin() <= 0 {
		b.replacer.setEvictable(f.id, true)
		b.cond.Signal()
	}
}

// CachedDecode returns the memoized decoded view of pageId, if one was
// stored by CacheDecoded since the page was last written. Callers on a
// read-only path (navigation, scan) may use this to skip re-parsing a hot
// page; it is never consulted on a write path, since a WritePageGuard's
// Drop invalidates whatever was cached for its page.
func (b *BufferpoolManager) CachedDecode(pageId disk.PageId) (any, bool) {
	return b.cache.Get(pageId)
}

// CacheDecoded memoizes a decoded view of pageId for later CachedDecode
// calls. v should be treated as immutable by the caller once cached.
func (b *BufferpoolManager) CacheDecoded(pageId disk.PageId, v any) {
	b.cache.Set(pageId, v)
}

// FlushAll writes every dirty frame to disk and syncs the file. Close
// calls this before releasing the file handle.
func (b *BufferpoolManager) FlushAll() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, f := range b.frames {
		if f.pageId == disk.InvalidPageId {
			continue
		}
		if err := b.flushFrame(f); err != nil {
			return err
		}
	}
	return b.file.Flush()
}

// Close flushes the pool and closes the underlying file and scheduler.
func (b *BufferpoolManager) Close() error {
	if err := b.FlushAll(); err != nil {
		return err
	}
	b.scheduler.Stop()
	return b.file.Close()
}
