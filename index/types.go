// Package index implements a persistent B+ tree index over a single int32
// attribute of a record-oriented relation: the page-format layer, the
// find-leaf descent, recursive insert-with-split, the scan state machine,
// and the open-or-create/close lifecycle. It consumes storage/disk's
// paged-file primitives through a buffer.BufferpoolManager and, during
// initial bulk load, a storage/heap.Scanner.
package index

import "github.com/petro-db/petroidx/storage/rid"

// PageId names a page within the index file. Zero is the INVALID sentinel.
type PageId = uint32

// InvalidPageId names no page.
const InvalidPageId PageId = 0

// RecordId addresses a tuple in the indexed relation's heap file.
type RecordId = rid.RecordId

// AttrType tags the indexed attribute's declared type. Only Integer is
// implemented; Double and String are accepted in the enum (matching the
// meta page's on-disk tag space) but any meta page bearing them fails
// validation with ErrBadIndexInfo on reopen.
type AttrType int32

const (
	Integer AttrType = iota
	Double
	String
)

// Operator is a comparison used both to pick the descent child during
// insertion and to bound a scan.
type Operator int32

const (
	LT Operator = iota
	LTE
	GTE
	GT
)

// compareOp reports whether a op b holds.
func compareOp(a, b int32, op Operator) bool {
	switch op {
	case LT:
		return a < b
	case LTE:
		return a <= b
	case GTE:
		return a >= b
	case GT:
		return a > b
	default:
		return false
	}
}

const (
	pageSize     = 8192
	keySize      = 4 // int32
	pageIdSize   = 4 // uint32
	levelSize    = 4 // int32
	recordIdSize = 8 // uint32 + uint16 + uint16

	// NodeOccupancy (N) is the largest number of separator keys an
	// internal page can hold; it has N+1 children.
	NodeOccupancy = (pageSize - levelSize - pageIdSize) / (keySize + pageIdSize)

	// LeafOccupancy (L) is the largest number of key/record-id entries a
	// leaf page can hold.
	LeafOccupancy = (pageSize - pageIdSize) / (keySize + recordIdSize)
)
