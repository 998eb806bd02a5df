// Package zipcd reads the structure of a ZIP archive without decompressing anything.
//
// The end of central directory record (EOCD) is located by scanning backwards from the end of the file, the central
// directory is parsed in full, and local file headers are resolved on demand. What comes back are records and absolute
// byte ranges; turning those bytes into file contents is up to the caller (see package decompress).
//
// Only single-disk, non-ZIP64 archives whose length is known in advance are supported.
package zipcd

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"sync"
)

// Compression methods that are understood by Archive.CopyRaw.
const (
	Store   uint16 = 0
	Deflate uint16 = 8
)

// DefaultBufferSize is the default value of [Options.BufferSize].
const DefaultBufferSize = 16 * 1024

// Options customises how an Archive is read.
type Options struct {
	// BufferSize is the size of the buffer used to read the central directory sequentially.
	//
	// By default, DefaultBufferSize is used.
	BufferSize int
}

// Archive is a parsed ZIP archive.
//
// The EOCD and the whole central directory are parsed when the Archive is created and never change afterwards. Local
// file headers are read lazily and cached by their central directory index. All methods are safe for concurrent use.
type Archive struct {
	src     io.ReaderAt
	size    int64
	closer  io.Closer
	eocd    EOCDRecord
	entries []CentralDirectoryEntry

	// mu guards headers.
	mu      sync.Mutex
	headers map[int]LocalFileHeader
}

// Open reads the archive from the given io.ReadSeeker.
//
// The size of the archive is determined by seeking to the end of src. Because seek and read are not atomic together,
// every read from the returned Archive is serialised with a mutex; use NewReader if src is already safe for concurrent
// io.ReaderAt.
//
// Open does not take ownership of src; if src is an io.Closer, it must remain open until the Archive is no longer used.
func Open(src io.ReadSeeker, optFns ...func(*Options)) (*Archive, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &IOError{Op: "seek to end", Err: err}
	}

	return newArchive(&lockedReaderAt{src: src}, size, nil, optFns...)
}

// NewReader reads the archive from the given io.ReaderAt of the given size.
//
// src must be safe for concurrent ReadAt (as are *os.File, *bytes.Reader, and *io.SectionReader over either).
func NewReader(src io.ReaderAt, size int64, optFns ...func(*Options)) (*Archive, error) {
	return newArchive(src, size, nil, optFns...)
}

// OpenFile opens the named file and reads the archive from it.
//
// The returned Archive owns the file handle; Close must be called to release it. If the archive cannot be parsed, the
// file is closed before OpenFile returns.
func OpenFile(name string, optFns ...func(*Options)) (*Archive, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, &IOError{Op: "open file", Err: err}
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, &IOError{Op: "stat file", Err: err}
	}

	a, err := newArchive(f, fi.Size(), f, optFns...)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf(`open "%s" error: %w`, name, err)
	}

	return a, nil
}

func newArchive(src io.ReaderAt, size int64, closer io.Closer, optFns ...func(*Options)) (*Archive, error) {
	opts := &Options{
		BufferSize: DefaultBufferSize,
	}
	for _, fn := range optFns {
		fn(opts)
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}

	offset, err := FindEOCD(src, size)
	if err != nil {
		return nil, err
	}

	eocd, err := ReadEOCD(src, size, offset)
	if err != nil {
		return nil, err
	}

	entries, err := readCentralDirectory(src, size, eocd, opts.BufferSize)
	if err != nil {
		return nil, err
	}

	return &Archive{
		src:     src,
		size:    size,
		closer:  closer,
		eocd:    eocd,
		entries: entries,
		headers: make(map[int]LocalFileHeader),
	}, nil
}

// Close releases the file handle if the Archive was created with OpenFile.
//
// Close is a no-op for archives created with Open or NewReader; the caller keeps ownership of those sources.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}

	return a.closer.Close()
}

// Size returns the length in bytes of the archive.
func (a *Archive) Size() int64 {
	return a.size
}

// EOCD returns the end of central directory record.
func (a *Archive) EOCD() EOCDRecord {
	return a.eocd
}

// EntryCount returns the number of central directory entries.
func (a *Archive) EntryCount() int {
	return len(a.entries)
}

// Entries iterates over the central directory entries in order.
func (a *Archive) Entries() iter.Seq2[int, CentralDirectoryEntry] {
	return func(yield func(int, CentralDirectoryEntry) bool) {
		for i, e := range a.entries {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Entry returns the central directory entry at index i.
func (a *Archive) Entry(i int) (CentralDirectoryEntry, error) {
	if i < 0 || i >= len(a.entries) {
		return CentralDirectoryEntry{}, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, i, len(a.entries))
	}

	return a.entries[i], nil
}

// LocalHeader returns the local file header of the entry at index i.
//
// The header is read on first use and cached afterwards; failures are not cached. Errors from reading the header are
// returned as *EntryError and do not affect other entries.
func (a *Archive) LocalHeader(i int) (LocalFileHeader, error) {
	if _, err := a.Entry(i); err != nil {
		return LocalFileHeader{}, err
	}

	r := a.resolveWith(a.src, i)
	return r.Header, r.Err
}

// PayloadRange returns the absolute location of the compressed data of the entry at index i.
func (a *Archive) PayloadRange(i int) (PayloadRange, error) {
	h, err := a.LocalHeader(i)
	if err != nil {
		return PayloadRange{}, err
	}

	return h.Payload, nil
}

// LocalHeaders resolves the local file header of every entry in order.
//
// Unlike LocalHeader, iteration continues past failed entries; the error for each entry is yielded alongside its
// (possibly zero-value) header.
func (a *Archive) LocalHeaders() iter.Seq2[LocalFileHeader, error] {
	return func(yield func(LocalFileHeader, error) bool) {
		for i := range a.entries {
			if !yield(a.LocalHeader(i)) {
				return
			}
		}
	}
}

// IsEntryError returns true if err is scoped to a single entry, in which case the rest of the archive is still usable.
func IsEntryError(err error) bool {
	var e *EntryError
	return errors.As(err, &e)
}
