package zipcd

import (
	"errors"
	"fmt"
)

var (
	// ErrIOFailure is matched by every *IOError; the underlying read, seek, or open failed.
	ErrIOFailure = errors.New("io failure")

	// ErrEOCDNotFound is returned if no end of central directory record consistent with the source length exists.
	ErrEOCDNotFound = errors.New("end of central directory not found; most likely not a ZIP file")

	// ErrTruncatedComment is returned if the source ends before the EOCD comment does.
	ErrTruncatedComment = errors.New("truncated EOCD comment")

	// ErrBadCentralDirectoryMagic is returned if a central directory file header has the wrong signature.
	ErrBadCentralDirectoryMagic = errors.New("bad central directory file header signature")

	// ErrCentralDirectorySizeMismatch is returned if the central directory file headers do not add up to the size
	// declared by the EOCD.
	ErrCentralDirectorySizeMismatch = errors.New("central directory size mismatch")

	// ErrTruncatedCentralDirectory is returned if the source ends before all central directory file headers are read.
	ErrTruncatedCentralDirectory = errors.New("truncated central directory")

	// ErrBadLocalHeaderMagic is returned if a local file header has the wrong signature.
	ErrBadLocalHeaderMagic = errors.New("bad local file header signature")

	// ErrOffsetOutOfRange is returned if a local file header or its payload would be read past end of file.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrUnsupportedCompressionMethod is returned by Archive.CopyRaw for methods other than Store and Deflate.
	ErrUnsupportedCompressionMethod = errors.New("unsupported compression method")

	// ErrInvalidIndex is returned if the central directory index does not exist.
	ErrInvalidIndex = errors.New("invalid central directory index")

	// ErrNoDataDescriptor is returned by Archive.DataDescriptor if the entry does not have a data descriptor.
	ErrNoDataDescriptor = errors.New("entry has no data descriptor")
)

// IOError wraps an error from the underlying source.
//
// errors.Is(err, ErrIOFailure) is true for every IOError, and errors.Is/As will also see the wrapped error.
type IOError struct {
	Op     string
	Offset int64
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s at offset %d error: %v", e.Op, e.Offset, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIOFailure, e.Err}
}

// EntryError scopes an error to a single central directory entry.
//
// Local file header failures are returned as EntryError; the rest of the archive remains usable.
type EntryError struct {
	Index int
	Name  string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf(`entry %d ("%s"): %v`, e.Index, e.Name, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}
