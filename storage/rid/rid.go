// Package rid defines the record identifier shared by the heap file and
// the index, kept separate from both so neither has to import the other.
package rid

import "github.com/petro-db/petroidx/storage/disk"

// RecordId addresses a tuple in a heap file by page and slot. It carries an
// explicit padding word so its on-disk layout is a fixed 8 bytes: a
// 4-byte page number, a 2-byte slot number, and 2 unused bytes.
type RecordId struct {
	PageNo disk.PageId
	SlotNo uint16
	_pad   uint16
}

// Invalid is the sentinel RecordId, identifying no tuple.
var Invalid = RecordId{PageNo: disk.InvalidPageId}

// IsInvalid reports whether r names no tuple.
func (r RecordId) IsInvalid() bool {
	return r.PageNo == disk.InvalidPageId
}
