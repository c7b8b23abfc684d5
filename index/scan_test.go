package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanEmptyIndexFailsNoSuchKey(t *testing.T) {
	idx := newTestIndex(t)
	err := idx.StartScan(0, GTE, 100, LTE)
	assert.ErrorIs(t, err, ErrNoSuchKeyFound)
}

func TestScanNextBeforeStartFailsScanNotInitialized(t *testing.T) {
	idx := newTestIndex(t)
	_, err := idx.ScanNext()
	assert.ErrorIs(t, err, ErrScanNotInitialized)
}

func TestEndScanWhileIdleFails(t *testing.T) {
	idx := newTestIndex(t)
	assert.ErrorIs(t, idx.EndScan(), ErrScanNotInitialized)
}

func TestScanBadOpcodesRejected(t *testing.T) {
	idx := newTestIndex(t)
	assert.ErrorIs(t, idx.StartScan(0, LT, 10, LTE), ErrBadOpcodes)
	assert.ErrorIs(t, idx.StartScan(0, GTE, 10, GT), ErrBadOpcodes)
}

func TestScanBadRangeRejected(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Insert(5, RecordId{PageNo: 2}))
	assert.ErrorIs(t, idx.StartScan(100, GTE, 99, LTE), ErrBadScanRange)
}

func TestScanMonotoneBuild(t *testing.T) {
	idx := newTestIndex(t)
	n := 5000
	keys := make([]int32, n)
	for i := range keys {
		keys[i] = int32(i)
	}
	insertRange(t, idx, keys)

	require.NoError(t, idx.StartScan(0, GTE, int32(n-1), LTE))
	got := mustScanAll(t, idx)
	require.Len(t, got, n)

	require.NoError(t, idx.EndScan())
	err := idx.StartScan(2500, GT, 2500, LTE)
	assert.ErrorIs(t, err, ErrNoSuchKeyFound)

	require.NoError(t, idx.StartScan(2500, GTE, 2500, LTE))
	one, err := idx.ScanNext()
	require.NoError(t, err)
	assert.Equal(t, RecordId{PageNo: uint32(2500/10 + 2), SlotNo: uint16(2500 % 10)}, one)
	_, err = idx.ScanNext()
	assert.ErrorIs(t, err, ErrIndexScanCompleted)
}

func TestScanReverseBuildMatchesMonotone(t *testing.T) {
	idx := newTestIndex(t)
	n := 2000
	keys := make([]int32, n)
	for i := range keys {
		keys[i] = int32(n - 1 - i)
	}
	for i, k := range keys {
		require.NoError(t, idx.Insert(k, RecordId{PageNo: uint32(i/10 + 2), SlotNo: uint16(i % 10)}))
	}

	require.NoError(t, idx.StartScan(0, GTE, int32(n-1), LTE))
	got := mustScanAll(t, idx)

	lastKeyRid := map[RecordId]bool{}
	for i := 0; i < n; i++ {
		lastKeyRid[RecordId{PageNo: uint32(i/10 + 2), SlotNo: uint16(i % 10)}] = true
	}
	require.Len(t, got, n)
	for _, r := range got {
		assert.True(t, lastKeyRid[r])
	}
}

func TestScanNegativeKeys(t *testing.T) {
	idx := newTestIndex(t)
	for i := int32(-500); i <= 500; i++ {
		require.NoError(t, idx.Insert(i, RecordId{PageNo: uint32(i + 1000), SlotNo: 0}))
	}

	require.NoError(t, idx.StartScan(-100, GT, 100, LT))
	got := mustScanAll(t, idx)
	assert.Len(t, got, 199) // -99..99 inclusive
}

func TestScanSparseKeys(t *testing.T) {
	idx := newTestIndex(t)
	for i := int32(0); i < 10000; i += 2 {
		require.NoError(t, idx.Insert(i, RecordId{PageNo: uint32(i/2 + 2), SlotNo: 0}))
	}

	require.NoError(t, idx.StartScan(1, GTE, 9, LTE))
	got := mustScanAll(t, idx)
	require.Len(t, got, 4) // keys 2,4,6,8

	wantFirst := RecordId{PageNo: 2/2 + 2, SlotNo: 0}
	assert.Equal(t, wantFirst, got[0])
}

func TestScanOutOfRangeOnNonEmptyTree(t *testing.T) {
	idx := newTestIndex(t)
	n := 5000
	keys := make([]int32, n)
	for i := range keys {
		keys[i] = int32(i)
	}
	insertRange(t, idx, keys)

	assert.ErrorIs(t, idx.StartScan(100, GTE, 99, LTE), ErrBadScanRange)
	assert.ErrorIs(t, idx.StartScan(1_000_000, GTE, 2_000_000, LTE), ErrNoSuchKeyFound)
}

func TestStartScanWhileActiveImplicitlyEndsPrior(t *testing.T) {
	idx := newTestIndex(t)
	keys := []int32{1, 2, 3, 4, 5}
	insertRange(t, idx, keys)

	require.NoError(t, idx.StartScan(1, GTE, 5, LTE))
	_, err := idx.ScanNext()
	require.NoError(t, err)

	require.NoError(t, idx.StartScan(1, GTE, 5, LTE))
	got := mustScanAll(t, idx)
	assert.Len(t, got, 5)
}

func TestScanBoundaryOnLeafStart(t *testing.T) {
	idx := newTestIndex(t)
	n := LeafOccupancy*2 + 5
	keys := make([]int32, n)
	for i := range keys {
		keys[i] = int32(i)
	}
	insertRange(t, idx, keys)

	boundaryKey := int32(LeafOccupancy)
	require.NoError(t, idx.StartScan(boundaryKey, GTE, boundaryKey, LTE))
	got, err := idx.ScanNext()
	require.NoError(t, err)
	assert.Equal(t, RecordId{PageNo: uint32(int(boundaryKey)/10 + 2), SlotNo: uint16(int(boundaryKey) % 10)}, got)
}
