package index

import "encoding/binary"

const (
	leafKeysOff     = 0
	leafRidsOff     = leafKeysOff + LeafOccupancy*keySize
	leafRightSibOff = leafRidsOff + LeafOccupancy*recordIdSize
)

// LeafPage holds up to LeafOccupancy (key, record-id) entries plus the
// page number of the next leaf in ascending key order. INVALID (zero
// PageNo) in Rids marks an unused slot.
type LeafPage struct {
	Keys     [LeafOccupancy]int32
	Rids     [LeafOccupancy]RecordId
	RightSib PageId
}

func decodeLeafPage(buf []byte) *LeafPage {
	l := &LeafPage{}
	for i := 0; i < LeafOccupancy; i++ {
		l.Keys[i] = int32(binary.LittleEndian.Uint32(buf[leafKeysOff+i*keySize:]))
	}
	for i := 0; i < LeafOccupancy; i++ {
		off := leafRidsOff + i*recordIdSize
		l.Rids[i] = RecordId{
			PageNo: binary.LittleEndian.Uint32(buf[off:]),
			SlotNo: binary.LittleEndian.Uint16(buf[off+4:]),
		}
	}
	l.RightSib = binary.LittleEndian.Uint32(buf[leafRightSibOff:])
	return l
}

func encodeLeafPage(buf []byte, l *LeafPage) {
	for i := 0; i < LeafOccupancy; i++ {
		binary.LittleEndian.PutUint32(buf[leafKeysOff+i*keySize:], uint32(l.Keys[i]))
	}
	for i := 0; i < LeafOccupancy; i++ {
		off := leafRidsOff + i*recordIdSize
		binary.LittleEndian.PutUint32(buf[off:], l.Rids[i].PageNo)
		binary.LittleEndian.PutUint16(buf[off+4:], l.Rids[i].SlotNo)
		binary.LittleEndian.PutUint16(buf[off+6:], 0)
	}
	binary.LittleEndian.PutUint32(buf[leafRightSibOff:], l.RightSib)
}

// clearLeaf sets the right-sibling field and resets the slot range
// [start, end): keys to 0, record-ids to INVALID.
func clearLeaf(l *LeafPage, rightSib PageId, start, end int) {
	l.RightSib = rightSib
	for i := start; i < end; i++ {
		l.Keys[i] = 0
		l.Rids[i] = RecordId{}
	}
}

// numEntries scans for the first INVALID record-id slot, mirroring
// InternalPage.numChildren's contiguous-at-the-low-end contract.
func (l *LeafPage) numEntries() int {
	for i := range l.Rids {
		if l.Rids[i].IsInvalid() {
			return i
		}
	}
	return len(l.Rids)
}

// insertPos returns the first index i in [0,m) with Keys[i] > key, or m.
func (l *LeafPage) insertPos(key int32, m int) int {
	lo, hi := 0, m
	for lo < hi {
		mid := (lo + hi) / 2
		if l.Keys[mid] > key {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
