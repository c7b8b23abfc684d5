package index

import (
	"path"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petro-db/petroidx/buffer"
	"github.com/petro-db/petroidx/storage/disk"
)

// newTestIndex creates a fresh, empty index over a scratch file, with no
// bulk load. Capacity is generous enough that ordinary tests never force
// an eviction mid-traversal; tests that care about eviction build their
// own buffer pool directly.
func newTestIndex(t *testing.T) *Index {
	t.Helper()
	p := path.Join(t.TempDir(), "rel.0")
	df, err := disk.Create(p)
	require.NoError(t, err)

	bpm := buffer.New(64, 2, df, nil)
	t.Cleanup(func() { _ = bpm.Close() })

	idx, err := OpenOrCreate("rel", 0, Integer, bpm, nil)
	require.NoError(t, err)
	return idx
}

func insertRange(t *testing.T, idx *Index, keys []int32) {
	t.Helper()
	for i, k := range keys {
		require.NoError(t, idx.Insert(k, RecordId{PageNo: uint32(i/10 + 2), SlotNo: uint16(i % 10)}))
	}
}

func drainScan(t *testing.T, idx *Index) []RecordId {
	t.Helper()
	var out []RecordId
	for {
		r, err := idx.ScanNext()
		if err != nil {
			require.ErrorIs(t, err, ErrIndexScanCompleted)
			return out
		}
		out = append(out, r)
	}
}
