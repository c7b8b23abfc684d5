// Package disk implements the paged-file abstraction the buffer pool and
// the index lifecycle build on: page allocation, page-numbered reads and
// writes, and an existence check so callers can tell a fresh index from a
// reopened one.
package disk

import (
	"os"

	"github.com/cockroachdb/errors"
)

// PageId names a page within a paged file. Zero is reserved as the invalid
// sentinel and never names a real page; pages are numbered from 1.
type PageId = uint32

// InvalidPageId is the sentinel PageId naming no page.
const InvalidPageId PageId = 0

// PageSize is fixed for the lifetime of a file; changing it breaks
// compatibility with files written by a previous build.
const PageSize = 8192

var (
	// ErrPageNotAllocated is returned when a caller addresses a page number
	// beyond the file's current page count.
	ErrPageNotAllocated = errors.New("disk: page not allocated")
)

// Exists reports whether a paged file already exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// File is a single paged file on disk. Page 1, when present, is reserved by
// convention for a caller-defined meta page; the File itself imposes no
// structure beyond fixed-size, page-numbered slots.
type File struct {
	f         *os.File
	pageCount PageId
}

// Create creates a new, empty paged file at path. It fails if a file
// already exists there.
func Create(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "disk: create %s", path)
	}
	return &File{f: f}, nil
}

// Open opens an existing paged file at path.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "disk: open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "disk: stat %s", path)
	}
	return &File{f: f, pageCount: PageId(info.Size() / PageSize)}, nil
}

// AllocatePage grows the file by one page and returns its PageId. The file
// grows monotonically; pages are never freed in-place.
func (file *File) AllocatePage() (PageId, error) {
	file.pageCount++
	id := file.pageCount
	if err := file.f.Truncate(int64(file.pageCount) * PageSize); err != nil {
		file.pageCount--
		return InvalidPageId, errors.Wrapf(err, "disk: allocate page %d", id)
	}
	return id, nil
}

// ReadPage reads the page numbered id into buf, which must be exactly
// PageSize bytes.
func (file *File) ReadPage(id PageId, buf []byte) error {
	if id == InvalidPageId || id > file.pageCount {
		return errors.Wrapf(ErrPageNotAllocated, "page %d", id)
	}
	_, err := file.f.ReadAt(buf, int64(id-1)*PageSize)
	if err != nil {
		return errors.Wrapf(err, "disk: read page %d", id)
	}
	return nil
}

// WritePage writes buf, which must be exactly PageSize bytes, to the page
// numbered id.
func (file *File) WritePage(id PageId, buf []byte) error {
	if id == InvalidPageId || id > file.pageCount {
		return errors.Wrapf(ErrPageNotAllocated, "page %d", id)
	}
	_, err := file.f.WriteAt(buf, int64(id-1)*PageSize)
	if err != nil {
		return errors.Wrapf(err, "disk: write page %d", id)
	}
	return nil
}

// Flush forces all writes made through WritePage to stable storage.
func (file *File) Flush() error {
	return errors.Wrap(file.f.Sync(), "disk: flush")
}

// Close releases the underlying OS file handle.
func (file *File) Close() error {
	return errors.Wrap(file.f.Close(), "disk: close")
}

// PageCount reports the number of pages currently allocated in the file.
func (file *File) PageCount() PageId {
	return file.pageCount
}
