package zipcd

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nguyengg/zipcd/record"
)

// CentralDirectoryEntry is a central directory file header along with its name, extra field, and comment.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#Central_directory_file_header_(CDFH).
type CentralDirectoryEntry struct {
	record.CentralDirectoryHeader

	// Index is the 0-based position of the entry in the central directory.
	Index int
	// Offset is the absolute offset of the entry's own signature.
	Offset int64

	Name    string
	Extra   []byte
	Comment string
}

// Modified returns the modification time of the entry.
//
// The extended timestamp, NTFS, or Unix extra fields are preferred over the MS-DOS date and time since they have better
// resolution and carry timezone information.
func (e CentralDirectoryEntry) Modified() time.Time {
	if modified, ok := record.ModTime(e.Extra); ok {
		return modified
	}

	return record.MSDosTimeToTime(e.ModifiedDate, e.ModifiedTime)
}

// HasDataDescriptor returns true if general purpose bit 3 is set.
func (e CentralDirectoryEntry) HasDataDescriptor() bool {
	return e.Flags&record.FlagDataDescriptor != 0
}

// FileHeader converts the entry into a zip.FileHeader.
//
// The returned header is suitable for fs.FileInfo purposes (FileInfo, Mode) and for zip.Writer.CreateRaw.
func (e CentralDirectoryEntry) FileHeader() zip.FileHeader {
	return zip.FileHeader{
		Name:               e.Name,
		Comment:            e.Comment,
		CreatorVersion:     e.CreatorVersion,
		ReaderVersion:      e.ReaderVersion,
		Flags:              e.Flags,
		Method:             e.Method,
		Modified:           e.Modified(),
		ModifiedTime:       e.ModifiedTime,
		ModifiedDate:       e.ModifiedDate,
		CRC32:              e.CRC32,
		CompressedSize:     e.CompressedSize,
		UncompressedSize:   e.UncompressedSize,
		CompressedSize64:   uint64(e.CompressedSize),
		UncompressedSize64: uint64(e.UncompressedSize),
		Extra:              e.Extra,
		ExternalAttrs:      e.ExternalAttrs,
	}
}

// readCentralDirectory reads all r.CDCount central directory file headers starting at r.CDOffset.
//
// The whole directory is read or an error is returned; there is no partial result.
func readCentralDirectory(src io.ReaderAt, size int64, r EOCDRecord, bufferSize int) ([]CentralDirectoryEntry, error) {
	start := int64(r.CDOffset)
	if r.CDCount == 0 {
		// nothing to read so the offset is irrelevant; only the declared size must agree.
		if r.CDSize != 0 {
			return nil, fmt.Errorf("%w: declared %d bytes for 0 entries", ErrCentralDirectorySizeMismatch, r.CDSize)
		}
		return []CentralDirectoryEntry{}, nil
	}
	if start > size {
		return nil, fmt.Errorf("%w: central directory offset %d is past end of file (%d)", ErrTruncatedCentralDirectory, start, size)
	}

	var (
		sr      = io.NewSectionReader(src, start, size-start)
		br      = bufio.NewReaderSize(sr, bufferSize)
		buf     = make([]byte, record.CentralDirectoryHeaderLen)
		cursor  = start
		entries = make([]CentralDirectoryEntry, 0, r.CDCount)
	)

	for i := 0; i < int(r.CDCount); i++ {
		e := CentralDirectoryEntry{Index: i, Offset: cursor}

		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, mapCentralDirectoryReadErr(err, i, cursor)
		}

		if err := e.CentralDirectoryHeader.UnmarshalBinary(buf); err != nil {
			if se := (*record.SignatureError)(nil); errors.As(err, &se) {
				return nil, fmt.Errorf("%w: entry %d at offset %d: got 0x%08x", ErrBadCentralDirectoryMagic, i, cursor, se.Got)
			}
			return nil, fmt.Errorf("entry %d at offset %d: %w", i, cursor, err)
		}
		cursor += record.CentralDirectoryHeaderLen

		if nmk := e.VariableLen(); nmk > 0 {
			nmkBuf := make([]byte, nmk)
			if _, err := io.ReadFull(br, nmkBuf); err != nil {
				return nil, mapCentralDirectoryReadErr(err, i, cursor)
			}

			n, m := int(e.FileNameLength), int(e.ExtraFieldLength)
			e.Name, e.Extra, e.Comment = string(nmkBuf[:n]), nmkBuf[n:n+m], string(nmkBuf[n+m:])
			cursor += int64(nmk)
		}

		entries = append(entries, e)
	}

	if got, want := cursor-start, int64(r.CDSize); got != want {
		return nil, fmt.Errorf("%w: declared %d bytes, read %d bytes", ErrCentralDirectorySizeMismatch, want, got)
	}

	return entries, nil
}

func mapCentralDirectoryReadErr(err error, i int, offset int64) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: entry %d at offset %d", ErrTruncatedCentralDirectory, i, offset)
	}

	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}

	return &IOError{Op: fmt.Sprintf("read central directory entry %d", i), Offset: offset, Err: err}
}
