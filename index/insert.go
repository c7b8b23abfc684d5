package index

import (
	"github.com/rs/zerolog/log"

	"github.com/petro-db/petroidx/buffer"
)

// Insert adds (key, rid) to the index, splitting leaves and internal
// nodes as needed and growing the tree height when the root itself
// splits.
func (idx *Index) Insert(key int32, r RecordId) error {
	splitKey, splitPageId, split, err := idx.insertAux(idx.rootPageNo, key, r)
	if err != nil {
		return err
	}
	if !split {
		return nil
	}

	newRootId, err := idx.bpm.AllocatePage()
	if err != nil {
		return err
	}
	wg, err := idx.bpm.WritePage(newRootId)
	if err != nil {
		return err
	}

	root := &InternalPage{}
	clearInternal(root, 0, 0, NodeOccupancy)
	root.Children[0] = idx.rootPageNo
	root.Keys[0] = splitKey
	root.Children[1] = splitPageId
	encodeInternalPage(wg.Data(), root)
	wg.MarkDirty()
	wg.Drop()

	idx.rootPageNo = newRootId
	log.Debug().Uint32("newRoot", newRootId).Msg("root split, tree height increased")
	return idx.writeMetaRoot(newRootId)
}

// insertAux recurses from pageId down to the leaf that should hold
// (key, rid), splitting on the way back up. It returns (0, INVALID,
// false, nil) when no split propagates to the caller.
func (idx *Index) insertAux(pageId PageId, key int32, r RecordId) (int32, PageId, bool, error) {
	wg, err := idx.bpm.WritePage(pageId)
	if err != nil {
		return 0, InvalidPageId, false, err
	}
	node := decodeInternalPage(wg.Data())

	if node.Level == 1 {
		leafId := node.findChild(key, GT)
		leafWg, err := idx.bpm.WritePage(leafId)
		if err != nil {
			wg.Drop()
			return 0, InvalidPageId, false, err
		}

		leaf := decodeLeafPage(leafWg.Data())
		sepKey, newLeafId, leafSplit, err := idx.insertIntoLeaf(leaf, key, r)
		if err != nil {
			leafWg.Drop()
			wg.Drop()
			return 0, InvalidPageId, false, err
		}
		encodeLeafPage(leafWg.Data(), leaf)
		leafWg.MarkDirty()
		leafWg.Drop()

		if !leafSplit {
			wg.Drop()
			return 0, InvalidPageId, false, nil
		}
		return idx.insertIntoInternal(wg, node, sepKey, newLeafId)
	}

	childId := node.findChild(key, GT)
	sepKey, newChildId, childSplit, err := idx.insertAux(childId, key, r)
	if err != nil {
		wg.Drop()
		return 0, InvalidPageId, false, err
	}
	if !childSplit {
		wg.Drop()
		return 0, InvalidPageId, false, nil
	}
	return idx.insertIntoInternal(wg, node, sepKey, newChildId)
}

// insertIntoLeaf inserts (key, rid) into leaf, splitting it if it is
// already full. The split path materializes the m+1 post-insertion
// entries in a scratch buffer and divides that in half, which sidesteps
// a boundary-case bug an in-place shift-then-relocate version hits when
// the insertion position lands exactly on the split midpoint (see
// DESIGN.md).
func (idx *Index) insertIntoLeaf(leaf *LeafPage, key int32, r RecordId) (int32, PageId, bool, error) {
	m := leaf.numEntries()
	pos := leaf.insertPos(key, m)

	if m < LeafOccupancy {
		for i := m; i > pos; i-- {
			leaf.Keys[i] = leaf.Keys[i-1]
			leaf.Rids[i] = leaf.Rids[i-1]
		}
		leaf.Keys[pos] = key
		leaf.Rids[pos] = r
		return 0, InvalidPageId, false, nil
	}

	tmpKeys := make([]int32, m+1)
	tmpRids := make([]RecordId, m+1)
	copy(tmpKeys, leaf.Keys[:pos])
	copy(tmpRids, leaf.Rids[:pos])
	tmpKeys[pos] = key
	tmpRids[pos] = r
	copy(tmpKeys[pos+1:], leaf.Keys[pos:m])
	copy(tmpRids[pos+1:], leaf.Rids[pos:m])

	mid := (m + 1) / 2 // an odd m+1 puts the extra entry in the right (new) page

	newPageId, err := idx.bpm.AllocatePage()
	if err != nil {
		return 0, InvalidPageId, false, err
	}
	newWg, err := idx.bpm.WritePage(newPageId)
	if err != nil {
		return 0, InvalidPageId, false, err
	}

	newLeaf := &LeafPage{}
	clearLeaf(newLeaf, leaf.RightSib, 0, LeafOccupancy)
	copy(newLeaf.Keys[:], tmpKeys[mid:])
	copy(newLeaf.Rids[:], tmpRids[mid:])

	clearLeaf(leaf, newPageId, 0, LeafOccupancy)
	copy(leaf.Keys[:], tmpKeys[:mid])
	copy(leaf.Rids[:], tmpRids[:mid])

	encodeLeafPage(newWg.Data(), newLeaf)
	newWg.MarkDirty()
	newWg.Drop()

	log.Debug().Uint32("newLeaf", newPageId).Int32("separator", newLeaf.Keys[0]).Msg("leaf split")
	return newLeaf.Keys[0], newPageId, true, nil
}

// insertIntoInternal inserts (key, child) into node — already decoded
// from wg — splitting it if full, and unpins wg on every path. If a
// split occurs the new sibling is also pinned and unpinned (dirty)
// before this returns.
func (idx *Index) insertIntoInternal(wg *buffer.WritePageGuard, node *InternalPage, key int32, child PageId) (int32, PageId, bool, error) {
	m := node.numKeys()
	pos := node.insertPos(key, m)

	if m < NodeOccupancy {
		for i := m; i > pos; i-- {
			node.Keys[i] = node.Keys[i-1]
		}
		for i := m + 1; i > pos+1; i-- {
			node.Children[i] = node.Children[i-1]
		}
		node.Keys[pos] = key
		node.Children[pos+1] = child

		encodeInternalPage(wg.Data(), node)
		wg.MarkDirty()
		wg.Drop()
		return 0, InvalidPageId, false, nil
	}

	tmpKeys := make([]int32, m+1)
	tmpChildren := make([]PageId, m+2)
	copy(tmpKeys, node.Keys[:pos])
	copy(tmpChildren, node.Children[:pos+1])
	tmpKeys[pos] = key
	tmpChildren[pos+1] = child
	copy(tmpKeys[pos+1:], node.Keys[pos:m])
	copy(tmpChildren[pos+2:], node.Children[pos+1:m+1])

	mid := (m + 1) / 2
	pushedKey := tmpKeys[mid]

	newPageId, err := idx.bpm.AllocatePage()
	if err != nil {
		wg.Drop()
		return 0, InvalidPageId, false, err
	}
	newWg, err := idx.bpm.WritePage(newPageId)
	if err != nil {
		wg.Drop()
		return 0, InvalidPageId, false, err
	}

	level := node.Level
	newNode := &InternalPage{}
	clearInternal(newNode, level, 0, NodeOccupancy)
	copy(newNode.Keys[:], tmpKeys[mid+1:])
	copy(newNode.Children[:], tmpChildren[mid+1:])

	clearInternal(node, level, 0, NodeOccupancy)
	copy(node.Keys[:], tmpKeys[:mid])
	copy(node.Children[:], tmpChildren[:mid+1])

	encodeInternalPage(wg.Data(), node)
	wg.MarkDirty()
	wg.Drop()

	encodeInternalPage(newWg.Data(), newNode)
	newWg.MarkDirty()
	newWg.Drop()

	log.Debug().Uint32("newInternal", newPageId).Int32("pushedUp", pushedKey).Msg("internal node split")
	return pushedKey, newPageId, true, nil
}
