package disk

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	t.Run("create starts with zero pages", func(t *testing.T) {
		file := createFile(t)
		assert.Equal(t, PageId(0), file.PageCount())
	})

	t.Run("allocate grows the file by one page at a time", func(t *testing.T) {
		file := createFile(t)

		id1, err := file.AllocatePage()
		require.NoError(t, err)
		assert.Equal(t, PageId(1), id1)

		id2, err := file.AllocatePage()
		require.NoError(t, err)
		assert.Equal(t, PageId(2), id2)

		assert.Equal(t, PageId(2), file.PageCount())
	})

	t.Run("write then read round-trips a page", func(t *testing.T) {
		file := createFile(t)
		id, err := file.AllocatePage()
		require.NoError(t, err)

		buf := make([]byte, PageSize)
		copy(buf, []byte("hello, page"))

		require.NoError(t, file.WritePage(id, buf))

		out := make([]byte, PageSize)
		require.NoError(t, file.ReadPage(id, out))
		assert.Equal(t, buf, out)
	})

	t.Run("reading an unallocated page fails", func(t *testing.T) {
		file := createFile(t)
		out := make([]byte, PageSize)
		err := file.ReadPage(5, out)
		assert.ErrorIs(t, err, ErrPageNotAllocated)
	})

	t.Run("reading page zero fails", func(t *testing.T) {
		file := createFile(t)
		out := make([]byte, PageSize)
		err := file.ReadPage(InvalidPageId, out)
		assert.ErrorIs(t, err, ErrPageNotAllocated)
	})

	t.Run("exists reflects the filesystem", func(t *testing.T) {
		dir := t.TempDir()
		p := path.Join(dir, "test.db")
		assert.False(t, Exists(p))

		file, err := Create(p)
		require.NoError(t, err)
		t.Cleanup(func() { _ = file.Close() })

		assert.True(t, Exists(p))
	})
}

func createFile(t *testing.T) *File {
	t.Helper()
	p := path.Join(t.TempDir(), "test.db")
	file, err := Create(p)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = file.Close()
		_ = os.Remove(p)
	})
	return file
}
