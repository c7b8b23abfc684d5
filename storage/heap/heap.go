// Package heap implements a minimal fixed-length-record heap file: the
// relation being indexed. It stands in for the heap-file scanner the
// index treats as an external collaborator, giving the index's bulk-load
// step something real to scan.
package heap

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/petro-db/petroidx/storage/disk"
	"github.com/petro-db/petroidx/storage/rid"
)

const pageHeaderSize = 4 // one int32 slot count

// ErrRecordTooLarge is returned when a record does not fit on an empty
// page.
var ErrRecordTooLarge = errors.New("heap: record larger than one page")

// File is an append-only heap of fixed-length records.
type File struct {
	disk       *disk.File
	recordSize int
	capacity   int // records per page

	lastPageId    disk.PageId
	lastPageCount int32
}

// Create creates a new, empty heap file at path storing records of
// recordSize bytes each.
func Create(path string, recordSize int) (*File, error) {
	capacity := (disk.PageSize - pageHeaderSize) / recordSize
	if capacity < 1 {
		return nil, errors.Wrapf(ErrRecordTooLarge, "record size %d", recordSize)
	}

	df, err := disk.Create(path)
	if err != nil {
		return nil, err
	}
	return &File{disk: df, recordSize: recordSize, capacity: capacity}, nil
}

// Open opens an existing heap file, recomputing its append cursor from the
// last allocated page.
func Open(path string, recordSize int) (*File, error) {
	capacity := (disk.PageSize - pageHeaderSize) / recordSize
	if capacity < 1 {
		return nil, errors.Wrapf(ErrRecordTooLarge, "record size %d", recordSize)
	}

	df, err := disk.Open(path)
	if err != nil {
		return nil, err
	}

	h := &File{disk: df, recordSize: recordSize, capacity: capacity}
	if n := df.PageCount(); n > 0 {
		h.lastPageId = n
		buf := make([]byte, disk.PageSize)
		if err := df.ReadPage(h.lastPageId, buf); err != nil {
			return nil, err
		}
		h.lastPageCount = int32(binary.LittleEndian.Uint32(buf[:4]))
	}
	return h, nil
}

// Insert appends record to the heap, allocating a new page if the current
// last page has no room, and returns its RecordId.
func (h *File) Insert(record []byte) (rid.RecordId, error) {
	if len(record) != h.recordSize {
		return rid.Invalid, errors.Newf("heap: record is %d bytes, want %d", len(record), h.recordSize)
	}

	if h.lastPageId == disk.InvalidPageId || int(h.lastPageCount) >= h.capacity {
		id, err := h.disk.AllocatePage()
		if err != nil {
			return rid.Invalid, err
		}
		h.lastPageId = id
		h.lastPageCount = 0

		buf := make([]byte, disk.PageSize)
		if err := h.disk.WritePage(h.lastPageId, buf); err != nil {
			return rid.Invalid, err
		}
	}

	buf := make([]byte, disk.PageSize)
	if err := h.disk.ReadPage(h.lastPageId, buf); err != nil {
		return rid.Invalid, err
	}

	slot := h.lastPageCount
	off := pageHeaderSize + int(slot)*h.recordSize
	copy(buf[off:off+h.recordSize], record)

	h.lastPageCount++
	binary.LittleEndian.PutUint32(buf[:4], uint32(h.lastPageCount))

	if err := h.disk.WritePage(h.lastPageId, buf); err != nil {
		return rid.Invalid, err
	}

	return rid.RecordId{PageNo: h.lastPageId, SlotNo: uint16(slot)}, nil
}

// Get reads back the record at id.
func (h *File) Get(id rid.RecordId) ([]byte, error) {
	buf := make([]byte, disk.PageSize)
	if err := h.disk.ReadPage(id.PageNo, buf); err != nil {
		return nil, err
	}
	off := pageHeaderSize + int(id.SlotNo)*h.recordSize
	out := make([]byte, h.recordSize)
	copy(out, buf[off:off+h.recordSize])
	return out, nil
}

// RecordSize reports the fixed record size this heap was created with.
func (h *File) RecordSize() int {
	return h.recordSize
}

// Flush persists every write made so far.
func (h *File) Flush() error {
	return h.disk.Flush()
}

// Close flushes and releases the underlying file.
func (h *File) Close() error {
	if err := h.Flush(); err != nil {
		return err
	}
	return h.disk.Close()
}
