package buffer

import (
	"sync"
	"sync/atomic"

	"github.com/petro-db/petroidx/storage/disk"
)

// frame is one slot of the buffer pool: a fixed PageSize byte buffer plus
// the bookkeeping needed to know which page it currently holds, how many
// pins are outstanding on it, and whether it has been mutated since it was
// last read from or written to disk.
type frame struct {
	mu     sync.RWMutex
	id     int
	pageId disk.PageId
	data   []byte
	pins   atomic.Int32
	dirty  bool
}

func newFrame(id int) *frame {
	return &frame{id: id, pageId: disk.InvalidPageId, data: make([]byte, disk.PageSize)}
}

func (f *frame) pin() {
	f.pins.Add(1)
}

func (f *frame) unpin() int32 {
	return f.pins.Add(-1)
}

// reset clears a frame before it is repurposed to hold a different page.
func (f *frame) reset() {
	f.dirty = false
	f.pins.Store(0)
	clear(f.data)
}
