package buffer

import (
	"math"
	"sync"
)

// lrukReplacer picks which unpinned frame to evict when the pool is full
// and no frame is free. It tracks per-frame access timestamps
// and finds the evict candidate with a flat scan over nodeStore rather
// than a maintained ordered list, since a buffer pool sized for this
// index (tens to low hundreds of frames) makes an O(n) scan on evict
// cheaper to get right than splicing a doubly linked list on every
// access and evictability change.
type lrukReplacer struct {
	mu            sync.Mutex
	nodeStore     map[int]*lrukNode
	replacerSize  int
	currSize      int // number of currently evictable frames
	currTimestamp int64
	k             int
}

func NewLrukReplacer(capacity, k int) *lrukReplacer {
	return &lrukReplacer{
		k:            k,
		nodeStore:    make(map[int]*lrukNode),
		replacerSize: capacity,
	}
}

// recordAccess registers an access to frameId at the current logical time,
// creating its tracking node on first access.
func (lru *lrukReplacer) recordAccess(frameId int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	lru.currTimestamp++
	node, ok := lru.nodeStore[frameId]
	if !ok {
		node = &lrukNode{frameId: frameId, k: lru.k}
		lru.nodeStore[frameId] = node
	}
	node.addTimestamp(lru.currTimestamp)
}

// setEvictable marks frameId as eligible (or ineligible) for eviction. A
// pinned frame must never be evictable.
func (lru *lrukReplacer) setEvictable(frameId int, evictable bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	node, ok := lru.nodeStore[frameId]
	if !ok || node.isEvictable == evictable {
		return
	}
	node.isEvictable = evictable
	if evictable {
		lru.currSize++
	} else {
		lru.currSize--
	}
}

// evict picks the evictable frame with the largest backward k-distance,
// treating frames with fewer than k accesses as having infinite distance
// and breaking ties among those by earliest most-recent access. It
// removes the winning frame's tracking node and returns its id.
func (lru *lrukReplacer) evict() (int, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	best := INVALID_FRAME_ID
	var bestDist int64 = -1
	var bestRecent int64 = math.MaxInt64

	for id, node := range lru.nodeStore {
		if !node.isEvictable {
			continue
		}

		var dist int64
		if node.hasKAccess() {
			dist = node.backwardKDistance(lru.currTimestamp)
		} else {
			dist = math.MaxInt64
		}

		recent := node.history[len(node.history)-1]

		switch {
		case dist > bestDist:
			best, bestDist, bestRecent = id, dist, recent
		case dist == bestDist && recent < bestRecent:
			best, bestDist, bestRecent = id, dist, recent
		}
	}

	if best == INVALID_FRAME_ID {
		return INVALID_FRAME_ID, false
	}

	delete(lru.nodeStore, best)
	lru.currSize--
	return best, true
}

func (lru *lrukReplacer) size() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return lru.currSize
}
