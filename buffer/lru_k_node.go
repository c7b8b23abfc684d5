package buffer

// INVALID_FRAME_ID names no frame.
const INVALID_FRAME_ID = -1

// lrukNode tracks the last up to k access timestamps for one frame. A
// frame with fewer than k recorded accesses has, by LRU-K's definition, an
// infinite backward k-distance, making it a stronger eviction candidate
// than any frame that has been accessed k times.
type lrukNode struct {
	frameId     int
	k           int
	history     []int64
	isEvictable bool
}

func (n *lrukNode) hasKAccess() bool {
	return len(n.history) == n.k
}

// kthAccess returns the oldest recorded access timestamp, or -1 if the
// node has never been accessed.
func (n *lrukNode) kthAccess() int64 {
	if len(n.history) > 0 {
		return n.history[0]
	}
	return -1
}

func (n *lrukNode) addTimestamp(ts int64) {
	if len(n.history) < n.k {
		n.history = append(n.history, ts)
		return
	}
	n.history = n.history[1:]
	n.history = append(n.history, ts)
}

// backwardKDistance is now - (kth most recent access). Nodes with fewer
// than k accesses sort first for eviction, independent of this value.
func (n *lrukNode) backwardKDistance(now int64) int64 {
	return now - n.kthAccess()
}
