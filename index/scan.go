package index

import "github.com/petro-db/petroidx/buffer"

// scanCursor holds the single active scan's state. It is embedded
// directly in *Index rather than promoted to a separate handle;
// starting a new scan while one is active implicitly ends the prior one.
type scanCursor struct {
	active bool

	lowVal  int32
	lowOp   Operator
	highVal int32
	highOp  Operator

	page      *buffer.ReadPageGuard
	leaf      *LeafPage
	nextEntry int // -1 means exhausted
}

// StartScan begins a bounded range scan. lowOp must be GT or GTE; highOp
// must be LT or LTE. If a scan is already active it is ended first.
func (idx *Index) StartScan(lowVal int32, lowOp Operator, highVal int32, highOp Operator) error {
	if lowOp != GT && lowOp != GTE {
		return ErrBadOpcodes
	}
	if highOp != LT && highOp != LTE {
		return ErrBadOpcodes
	}
	if lowVal > highVal {
		return ErrBadScanRange
	}

	if idx.cursor.active {
		idx.endScanLocked()
	}

	idx.cursor.active = true
	idx.cursor.lowVal = lowVal
	idx.cursor.lowOp = lowOp
	idx.cursor.highVal = highVal
	idx.cursor.highOp = highOp
	idx.cursor.nextEntry = -1

	leafId, err := idx.findLeafPageId(lowVal, lowOp)
	if err != nil {
		idx.cursor.active = false
		return err
	}
	page, err := idx.bpm.ReadPage(leafId)
	if err != nil {
		idx.cursor.active = false
		return err
	}
	idx.cursor.page = page
	idx.cursor.leaf = decodeLeafPage(page.Data())

	found, err := idx.advance()
	if err != nil {
		idx.cursor.active = false
		return err
	}
	if !found {
		idx.endScanLocked()
		return ErrNoSuchKeyFound
	}
	return nil
}

// ScanNext returns the next qualifying record-id in ascending key order.
func (idx *Index) ScanNext() (RecordId, error) {
	if !idx.cursor.active {
		return RecordId{}, ErrScanNotInitialized
	}
	if idx.cursor.nextEntry == -1 {
		return RecordId{}, ErrIndexScanCompleted
	}

	out := idx.cursor.leaf.Rids[idx.cursor.nextEntry]
	if _, err := idx.advance(); err != nil {
		idx.cursor.active = false
		return out, err
	}
	return out, nil
}

// EndScan releases the pinned leaf, if any, and returns the cursor to
// Idle.
func (idx *Index) EndScan() error {
	if !idx.cursor.active {
		return ErrScanNotInitialized
	}
	idx.endScanLocked()
	return nil
}

func (idx *Index) endScanLocked() {
	if idx.cursor.page != nil {
		idx.cursor.page.Drop()
		idx.cursor.page = nil
	}
	idx.cursor.leaf = nil
	idx.cursor.active = false
	idx.cursor.nextEntry = -1
}

// advance moves the cursor to the next candidate entry, crossing leaf
// boundaries via the right-sibling chain as needed, and applies the low
// bound (only ever relevant on the first call after StartScan) and the
// high bound. It returns (false, nil) with no page pinned and nextEntry
// set to -1 if the scan is exhausted (the cursor stays active, so ScanNext
// then reports ErrIndexScanCompleted), (true, nil) with the leaf still
// pinned if positioned on a qualifying entry. A non-nil error means a
// buffer read failed mid-advance; no page is left pinned and nextEntry is
// -1, and the caller returns the cursor to Idle.
func (idx *Index) advance() (bool, error) {
	for {
		idx.cursor.nextEntry++

		if idx.cursor.nextEntry >= LeafOccupancy || idx.cursor.leaf.Rids[idx.cursor.nextEntry].IsInvalid() {
			rightSib := idx.cursor.leaf.RightSib
			idx.cursor.page.Drop()
			idx.cursor.page = nil
			idx.cursor.leaf = nil

			if rightSib == InvalidPageId {
				idx.cursor.nextEntry = -1
				return false, nil
			}

			page, err := idx.bpm.ReadPage(rightSib)
			if err != nil {
				idx.cursor.nextEntry = -1
				return false, err
			}
			idx.cursor.page = page
			idx.cursor.leaf = decodeLeafPage(page.Data())
			idx.cursor.nextEntry = -1
			continue
		}

		key := idx.cursor.leaf.Keys[idx.cursor.nextEntry]
		if !compareOp(key, idx.cursor.lowVal, idx.cursor.lowOp) {
			continue
		}
		if !compareOp(key, idx.cursor.highVal, idx.cursor.highOp) {
			idx.cursor.page.Drop()
			idx.cursor.page = nil
			idx.cursor.leaf = nil
			idx.cursor.nextEntry = -1
			return false, nil
		}
		return true, nil
	}
}
