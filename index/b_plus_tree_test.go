package index

import (
	"encoding/binary"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petro-db/petroidx/buffer"
	"github.com/petro-db/petroidx/storage/disk"
	"github.com/petro-db/petroidx/storage/heap"
)

func TestOpenOrCreateRejectsLongRelationName(t *testing.T) {
	df, err := disk.Create(path.Join(t.TempDir(), "x.0"))
	require.NoError(t, err)
	bpm := buffer.New(8, 2, df, nil)
	defer bpm.Close()

	_, err = OpenOrCreate("a-relation-name-far-longer-than-twenty-bytes", 0, Integer, bpm, nil)
	assert.ErrorIs(t, err, ErrRelationNameTooLong)
}

func TestReopenValidatesAgainstStoredMeta(t *testing.T) {
	dir := t.TempDir()
	p := path.Join(dir, "students.4")

	df, err := disk.Create(p)
	require.NoError(t, err)
	bpm := buffer.New(64, 2, df, nil)
	idx, err := OpenOrCreate("students", 4, Integer, bpm, nil)
	require.NoError(t, err)
	require.NoError(t, idx.Insert(7, RecordId{PageNo: 2, SlotNo: 0}))
	require.NoError(t, idx.Close())

	df2, err := disk.Open(p)
	require.NoError(t, err)
	bpm2 := buffer.New(64, 2, df2, nil)
	defer bpm2.Close()

	reopened, err := OpenOrCreate("students", 4, Integer, bpm2, nil)
	require.NoError(t, err)

	require.NoError(t, reopened.StartScan(0, GTE, 100, LTE))
	got, err := reopened.ScanNext()
	require.NoError(t, err)
	assert.Equal(t, RecordId{PageNo: 2, SlotNo: 0}, got)
}

func TestReopenRejectsMismatchedAttrOffset(t *testing.T) {
	dir := t.TempDir()
	p := path.Join(dir, "students.4")

	df, err := disk.Create(p)
	require.NoError(t, err)
	bpm := buffer.New(64, 2, df, nil)
	idx, err := OpenOrCreate("students", 4, Integer, bpm, nil)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	df2, err := disk.Open(p)
	require.NoError(t, err)
	bpm2 := buffer.New(64, 2, df2, nil)
	defer bpm2.Close()

	_, err = OpenOrCreate("students", 8, Integer, bpm2, nil)
	assert.ErrorIs(t, err, ErrBadIndexInfo)
}

func TestReopenRejectsMismatchedRelationName(t *testing.T) {
	dir := t.TempDir()
	p := path.Join(dir, "students.4")

	df, err := disk.Create(p)
	require.NoError(t, err)
	bpm := buffer.New(64, 2, df, nil)
	idx, err := OpenOrCreate("students", 4, Integer, bpm, nil)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	df2, err := disk.Open(p)
	require.NoError(t, err)
	bpm2 := buffer.New(64, 2, df2, nil)
	defer bpm2.Close()

	_, err = OpenOrCreate("faculty", 4, Integer, bpm2, nil)
	assert.ErrorIs(t, err, ErrBadIndexInfo)
}

func TestOpenOrCreateBulkLoadsFromHeapScanner(t *testing.T) {
	dir := t.TempDir()
	recordSize := 16
	attrOffset := int32(4)

	hf, err := heap.Create(path.Join(dir, "students.heap"), recordSize)
	require.NoError(t, err)

	n := 300
	for i := 0; i < n; i++ {
		record := make([]byte, recordSize)
		binary.LittleEndian.PutUint32(record[attrOffset:], uint32(i))
		_, err := hf.Insert(record)
		require.NoError(t, err)
	}
	require.NoError(t, hf.Flush())

	df, err := disk.Create(path.Join(dir, "students.4"))
	require.NoError(t, err)
	bpm := buffer.New(64, 2, df, nil)
	defer bpm.Close()

	scanner := hf.NewScanner()
	idx, err := OpenOrCreate("students", attrOffset, Integer, bpm, scanner)
	require.NoError(t, err)

	require.NoError(t, idx.StartScan(0, GTE, int32(n-1), LTE))
	got := mustScanAll(t, idx)
	assert.Len(t, got, n)
}

func TestRootGrowsAfterManySplits(t *testing.T) {
	idx := newTestIndex(t)
	initialRoot := idx.rootPageNo
	// Sequential inserts leave every split-off leaf holding LeafOccupancy/2
	// entries, so the level-1 root runs out of its NodeOccupancy+1 child
	// slots after about (NodeOccupancy+1)*LeafOccupancy/2 keys; the extra
	// LeafOccupancy keys force the split that replaces the root.
	n := (NodeOccupancy+1)*LeafOccupancy/2 + LeafOccupancy
	keys := make([]int32, n)
	for i := range keys {
		keys[i] = int32(i)
	}
	insertRange(t, idx, keys)
	assert.NotEqual(t, initialRoot, idx.rootPageNo, "the root split and a new root replaced it")

	require.NoError(t, idx.StartScan(0, GTE, int32(n-1), LTE))
	got := mustScanAll(t, idx)
	assert.Len(t, got, n)
}

func TestCompoundPredicateCombinations(t *testing.T) {
	idx := newTestIndex(t)
	n := 1000
	keys := make([]int32, n)
	for i := range keys {
		keys[i] = int32(i)
	}
	insertRange(t, idx, keys)

	cases := []struct {
		lowVal, highVal int32
		lowOp, highOp    Operator
		wantLen          int
	}{
		{100, 200, GT, LT, 99},   // 101..199
		{100, 200, GTE, LT, 100}, // 100..199
		{100, 200, GT, LTE, 100}, // 101..200
		{100, 200, GTE, LTE, 101}, // 100..200
	}
	for _, c := range cases {
		require.NoError(t, idx.StartScan(c.lowVal, c.lowOp, c.highVal, c.highOp))
		got := mustScanAll(t, idx)
		assert.Len(t, got, c.wantLen, "lowOp=%v highOp=%v", c.lowOp, c.highOp)
		require.NoError(t, idx.EndScan())
	}
}

func TestLeafChainIsAscendingAfterManyInserts(t *testing.T) {
	idx := newTestIndex(t)
	n := LeafOccupancy*4 + 33
	keys := make([]int32, n)
	for i := range keys {
		keys[i] = int32(n - 1 - i) // reverse order, exercises splits from both ends
	}
	for i, k := range keys {
		require.NoError(t, idx.Insert(k, RecordId{PageNo: uint32(i/10 + 2), SlotNo: uint16(i % 10)}))
	}

	leafId, err := idx.findLeafPageId(0, GTE)
	require.NoError(t, err)

	var allKeys []int32
	for leafId != InvalidPageId {
		g, err := idx.bpm.ReadPage(leafId)
		require.NoError(t, err)
		leaf := decodeLeafPage(g.Data())
		m := leaf.numEntries()
		for i := 0; i < m; i++ {
			allKeys = append(allKeys, leaf.Keys[i])
		}
		next := leaf.RightSib
		g.Drop()
		leafId = next
	}

	require.Len(t, allKeys, n)
	for i := 1; i < len(allKeys); i++ {
		assert.Less(t, allKeys[i-1], allKeys[i])
	}
}

func TestInternalSeparatorsAreConsistentWithChildren(t *testing.T) {
	idx := newTestIndex(t)
	n := LeafOccupancy*3 + 50
	keys := make([]int32, n)
	for i := range keys {
		keys[i] = int32(i)
	}
	insertRange(t, idx, keys)

	var walk func(pageId PageId)
	walk = func(pageId PageId) {
		g, err := idx.bpm.ReadPage(pageId)
		require.NoError(t, err)
		node := decodeInternalPage(g.Data())
		m := node.numKeys()
		childCount := node.numChildren()
		assert.Equal(t, m+1, childCount)
		for i := 1; i < m; i++ {
			assert.LessOrEqual(t, node.Keys[i-1], node.Keys[i])
		}
		children := make([]PageId, childCount)
		copy(children, node.Children[:childCount])
		level := node.Level
		g.Drop()

		if level == 0 {
			for _, c := range children {
				walk(c)
			}
		}
	}
	walk(idx.rootPageNo)
}

func TestCloseReturnsNilEvenThoughContractSwallowsErrors(t *testing.T) {
	df, err := disk.Create(path.Join(t.TempDir(), "rel.0"))
	require.NoError(t, err)
	bpm := buffer.New(64, 2, df, nil)
	idx, err := OpenOrCreate("rel", 0, Integer, bpm, nil)
	require.NoError(t, err)

	require.NoError(t, idx.Insert(1, RecordId{PageNo: 2, SlotNo: 0}))
	assert.NoError(t, idx.Close())
}
