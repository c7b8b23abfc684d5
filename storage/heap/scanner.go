package heap

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/petro-db/petroidx/storage/disk"
	"github.com/petro-db/petroidx/storage/rid"
)

// ErrEndOfFile is returned by Scanner.Next once every record has been
// visited, mirroring the EndOfFileException the original FileScan raised
// to terminate the bulk-load loop in the constructor it was driving
// (original_source/Btree/src/btree.cpp).
var ErrEndOfFile = errors.New("heap: end of file")

// Scanner visits every record of a heap file in page/slot order.
type Scanner struct {
	h       *File
	pageId  disk.PageId
	slot    int32
	count   int32
	pageBuf []byte
}

// NewScanner returns a Scanner positioned before the first record.
func (h *File) NewScanner() *Scanner {
	return &Scanner{h: h, pageId: disk.InvalidPageId}
}

// Next returns the RecordId and bytes of the next record, or ErrEndOfFile
// once the heap has been fully scanned.
func (s *Scanner) Next() (rid.RecordId, []byte, error) {
	for {
		if s.pageId == disk.InvalidPageId || s.slot >= s.count {
			nextPage := s.pageId + 1
			if nextPage > s.h.disk.PageCount() {
				return rid.Invalid, nil, ErrEndOfFile
			}

			buf := make([]byte, disk.PageSize)
			if err := s.h.disk.ReadPage(nextPage, buf); err != nil {
				return rid.Invalid, nil, err
			}

			s.pageId = nextPage
			s.slot = 0
			s.count = int32(binary.LittleEndian.Uint32(buf[:4]))
			s.pageBuf = buf
			continue
		}

		off := pageHeaderSize + int(s.slot)*s.h.recordSize
		record := make([]byte, s.h.recordSize)
		copy(record, s.pageBuf[off:off+s.h.recordSize])

		id := rid.RecordId{PageNo: s.pageId, SlotNo: uint16(s.slot)}
		s.slot++
		return id, record, nil
	}
}
