// Package source defines the SeekableSource capability the container
// parser and region reader read through, plus the thread-safety wrapper
// required by the concurrency model: every access to the underlying byte
// source is serialized through a single mutex (spec §5).
package source

import (
	"io"
	"sync"

	"github.com/echoflaresat/tifflayout/tifferr"
)

// Source is a random-access byte source. Implementations need not be safe
// for concurrent use by multiple goroutines; LockedSource provides that.
type Source interface {
	// Len returns the total size of the source in bytes.
	Len() (int64, error)

	// ReadAt reads len(buf) bytes starting at offset off. It follows
	// io.ReaderAt's contract: a short read is always accompanied by a
	// non-nil error.
	ReadAt(buf []byte, off int64) (int, error)
}

// LockedSource wraps a Source with a mutex so it can be shared across
// goroutines reading concurrently. The IFD list, once cached, does not
// need this protection since it becomes immutable; only raw byte access
// does.
type LockedSource struct {
	mu  sync.Mutex
	src Source
}

// NewLocked wraps src for concurrent use.
func NewLocked(src Source) *LockedSource {
	return &LockedSource{src: src}
}

// Len returns the total size of the underlying source.
func (l *LockedSource) Len() (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Len()
}

// ReadAt reads len(buf) bytes at offset off under the shared lock.
func (l *LockedSource) ReadAt(buf []byte, off int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.ReadAt(buf, off)
}

// ReadExact reads exactly len(buf) bytes at off, returning a typed IoError
// (or Truncated, if the source ran out of bytes) on failure.
func (l *LockedSource) ReadExact(buf []byte, off int64) error {
	n, err := l.ReadAt(buf, off)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return tifferr.Wrapf(tifferr.Truncated, err, "short read at offset %d: got %d/%d bytes", off, n, len(buf))
		}
		return tifferr.Wrapf(tifferr.IoError, err, "read at offset %d", off)
	}
	if n != len(buf) {
		return tifferr.Newf(tifferr.Truncated, "short read at offset %d: got %d/%d bytes", off, n, len(buf))
	}
	return nil
}

// ReaderAtSource adapts an io.ReaderAt with a known size to Source.
type ReaderAtSource struct {
	r    io.ReaderAt
	size int64
}

// FromReaderAt builds a Source from an io.ReaderAt of the given total size.
func FromReaderAt(r io.ReaderAt, size int64) *ReaderAtSource {
	return &ReaderAtSource{r: r, size: size}
}

// FromReadSeeker builds a Source from an io.ReadSeeker, determining its
// size via Seek(0, io.SeekEnd) and restoring the original position
// is not required since all reads go through ReadAt-style seek+read.
func FromReadSeeker(rs io.ReadSeeker) (*ReaderAtSource, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, tifferr.Wrap(tifferr.IoError, err, "determining source length")
	}
	return &ReaderAtSource{r: &seekerReaderAt{rs: rs}, size: size}, nil
}

// Len returns the known size of the source.
func (s *ReaderAtSource) Len() (int64, error) {
	return s.size, nil
}

// ReadAt reads len(buf) bytes at offset off.
func (s *ReaderAtSource) ReadAt(buf []byte, off int64) (int, error) {
	return s.r.ReadAt(buf, off)
}

// seekerReaderAt adapts an io.ReadSeeker to io.ReaderAt by seeking before
// every read. Concurrent use requires external serialization, which is
// exactly what LockedSource provides.
type seekerReaderAt struct {
	rs io.ReadSeeker
}

func (r *seekerReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if _, err := r.rs.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(r.rs, p)
}
