package index

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/petro-db/petroidx/buffer"
	"github.com/petro-db/petroidx/storage/heap"
)

// Index is a persistent B+ tree over a single int32 attribute of a
// relation. No method may be called re-entrantly on one instance, and at
// most one scan is active at a time.
type Index struct {
	name         string
	relationName string
	attrOffset   int32
	attrType     AttrType

	bpm        *buffer.BufferpoolManager
	rootPageNo PageId

	cursor scanCursor
}

// indexFileName derives the deterministic on-disk name for an index over
// relationName's attribute at attrOffset.
func indexFileName(relationName string, attrOffset int32) string {
	return fmt.Sprintf("%s.%d", relationName, attrOffset)
}

// OpenOrCreate opens an existing index over (relationName, attrOffset),
// validating it against the supplied parameters, or creates one from
// scratch and bulk-loads it from heapScanner. bpm must already be
// wrapping the index file — freshly disk.Create'd for a new index,
// disk.Open'd for an existing one; OpenOrCreate tells the two cases apart
// by bpm.PageCount(). heapScanner may be nil when creating an index that
// is deliberately left empty (tests do this).
func OpenOrCreate(relationName string, attrOffset int32, attrType AttrType, bpm *buffer.BufferpoolManager, heapScanner *heap.Scanner) (*Index, error) {
	if len(relationName) > relationNameSize {
		return nil, ErrRelationNameTooLong
	}
	if attrType != Integer {
		return nil, ErrBadIndexInfo
	}

	idx := &Index{
		name:         indexFileName(relationName, attrOffset),
		relationName: relationName,
		attrOffset:   attrOffset,
		attrType:     attrType,
		bpm:          bpm,
	}

	if bpm.PageCount() == 0 {
		if err := idx.create(heapScanner); err != nil {
			return nil, err
		}
		return idx, nil
	}

	if err := idx.validateExisting(); err != nil {
		return nil, err
	}
	return idx, nil
}

// create wires a brand-new meta page, a key-less level-1 root, and the
// root's single initial leaf, then bulk-loads from heapScanner if given.
func (idx *Index) create(heapScanner *heap.Scanner) error {
	metaId, err := idx.bpm.AllocatePage()
	if err != nil {
		return err
	}
	rootId, err := idx.bpm.AllocatePage()
	if err != nil {
		return err
	}
	leafId, err := idx.bpm.AllocatePage()
	if err != nil {
		return err
	}

	metaWg, err := idx.bpm.WritePage(metaId)
	if err != nil {
		return err
	}
	meta := MetaPage{
		RelationName: relationNameField(idx.relationName),
		AttrOffset:   idx.attrOffset,
		AttrType:     idx.attrType,
		RootPageNo:   rootId,
	}
	encodeMetaPage(metaWg.Data(), meta)
	metaWg.MarkDirty()
	metaWg.Drop()

	rootWg, err := idx.bpm.WritePage(rootId)
	if err != nil {
		return err
	}
	root := &InternalPage{}
	clearInternal(root, 1, 0, NodeOccupancy)
	root.Children[0] = leafId
	encodeInternalPage(rootWg.Data(), root)
	rootWg.MarkDirty()
	rootWg.Drop()

	leafWg, err := idx.bpm.WritePage(leafId)
	if err != nil {
		return err
	}
	leaf := &LeafPage{}
	clearLeaf(leaf, InvalidPageId, 0, LeafOccupancy)
	encodeLeafPage(leafWg.Data(), leaf)
	leafWg.MarkDirty()
	leafWg.Drop()

	idx.rootPageNo = rootId

	if heapScanner != nil {
		if err := idx.bulkLoad(heapScanner); err != nil {
			return err
		}
	}

	return idx.bpm.FlushAll()
}

// bulkLoad iterates every record heapScanner yields, extracts the key at
// idx.attrOffset, and inserts it, stopping cleanly at heap.ErrEndOfFile.
func (idx *Index) bulkLoad(scanner *heap.Scanner) error {
	for {
		rid, record, err := scanner.Next()
		if err != nil {
			if errors.Is(err, heap.ErrEndOfFile) {
				return nil
			}
			return err
		}
		if int(idx.attrOffset)+4 > len(record) {
			return errors.Newf("index: attribute offset %d out of range for a %d-byte record", idx.attrOffset, len(record))
		}
		key := int32(binary.LittleEndian.Uint32(record[idx.attrOffset:]))
		if err := idx.Insert(key, rid); err != nil {
			return err
		}
	}
}

// validateExisting reads the meta page of an already-populated file and
// checks it against the parameters OpenOrCreate was called with.
func (idx *Index) validateExisting() error {
	metaGuard, err := idx.bpm.ReadPage(1)
	if err != nil {
		return err
	}
	meta := decodeMetaPage(metaGuard.Data())
	metaGuard.Drop()

	wantName := relationNameField(idx.relationName)
	if meta.RelationName != wantName || meta.AttrOffset != idx.attrOffset || meta.AttrType != idx.attrType {
		return ErrBadIndexInfo
	}
	idx.rootPageNo = meta.RootPageNo
	return nil
}

// writeMetaRoot persists a new root page number to the meta page, used
// when insertion grows the tree's height.
func (idx *Index) writeMetaRoot(root PageId) error {
	wg, err := idx.bpm.WritePage(1)
	if err != nil {
		return err
	}
	meta := decodeMetaPage(wg.Data())
	meta.RootPageNo = root
	encodeMetaPage(wg.Data(), meta)
	wg.MarkDirty()
	wg.Drop()
	return nil
}

// Close ends any active scan, then closes the buffer pool, which flushes
// every dirty page and releases the index file; the pool must not be
// closed again afterwards. Following the destructor convention of not
// throwing, errors past the flush attempt are logged, not propagated.
func (idx *Index) Close() error {
	if idx.cursor.active {
		_ = idx.EndScan()
	}
	if err := idx.bpm.Close(); err != nil {
		log.Debug().Err(err).Str("index", idx.name).Msg("error closing index, swallowed")
	}
	return nil
}
