package index

// findLeafPageId descends from the root to the leaf whose key range can
// contain key. Exactly one page is pinned at a time: each interior page
// is unpinned before its chosen child is pinned.
func (idx *Index) findLeafPageId(key int32, op Operator) (PageId, error) {
	currPageId := idx.rootPageNo

	for {
		node, unpin, err := idx.readInternal(currPageId)
		if err != nil {
			return InvalidPageId, err
		}

		child := node.findChild(key, op)
		isLeafLevel := node.Level == 1
		unpin()

		if isLeafLevel {
			return child, nil
		}
		currPageId = child
	}
}

// readInternal pins pageId read-only and decodes it as an internal node,
// consulting the decode cache first. The returned unpin func drops the
// pin; callers must call it on every exit path.
func (idx *Index) readInternal(pageId PageId) (*InternalPage, func(), error) {
	if cached, ok := idx.bpm.CachedDecode(pageId); ok {
		if node, ok := cached.(*InternalPage); ok {
			g, err := idx.bpm.ReadPage(pageId)
			if err != nil {
				return nil, nil, err
			}
			return node, g.Drop, nil
		}
	}

	g, err := idx.bpm.ReadPage(pageId)
	if err != nil {
		return nil, nil, err
	}
	node := decodeInternalPage(g.Data())
	idx.bpm.CacheDecoded(pageId, node)
	return node, g.Drop, nil
}
