package zipcd

import (
	"errors"
	"fmt"
	"io"

	"github.com/nguyengg/zipcd/record"
)

// PayloadRange is the absolute location of an entry's compressed data.
type PayloadRange struct {
	Offset int64
	Length int64
}

// End returns the offset right after the last byte of the payload.
func (r PayloadRange) End() int64 {
	return r.Offset + r.Length
}

// LocalFileHeader is a local file header along with its name, extra field, and payload location.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#Local_file_header.
type LocalFileHeader struct {
	record.LocalFileHeader

	// Offset is the absolute offset of the header's signature.
	Offset int64

	Name    string
	Extra   []byte
	Payload PayloadRange
}

// readLocalHeader reads the local file header that e points to.
//
// Every read is bounds-checked against size before it is issued so that a header or payload running past end of file
// is reported as ErrOffsetOutOfRange instead of a short read. If e has a data descriptor, the CRC-32 and sizes from e
// replace the (usually zero) ones in the local file header.
func readLocalHeader(src io.ReaderAt, size int64, e CentralDirectoryEntry) (h LocalFileHeader, err error) {
	h.Offset = int64(e.LocalHeaderOffset)
	if h.Offset+record.LocalFileHeaderLen > size {
		return h, fmt.Errorf("%w: local file header at offset %d needs %d bytes, file has %d", ErrOffsetOutOfRange, h.Offset, record.LocalFileHeaderLen, size)
	}

	buf := make([]byte, record.LocalFileHeaderLen)
	if err = readAt(src, buf, h.Offset, "read local file header"); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return h, fmt.Errorf("%w: short read of local file header at offset %d", ErrOffsetOutOfRange, h.Offset)
		}
		return h, err
	}

	if err = h.LocalFileHeader.UnmarshalBinary(buf); err != nil {
		if se := (*record.SignatureError)(nil); errors.As(err, &se) {
			return h, fmt.Errorf("%w: at offset %d: got 0x%08x", ErrBadLocalHeaderMagic, h.Offset, se.Got)
		}
		return h, err
	}

	offset := h.Offset + record.LocalFileHeaderLen
	if nm := int64(h.VariableLen()); nm > 0 {
		if offset+nm > size {
			return h, fmt.Errorf("%w: name and extra field at offset %d need %d bytes, file has %d", ErrOffsetOutOfRange, offset, nm, size)
		}

		nmBuf := make([]byte, nm)
		if err = readAt(src, nmBuf, offset, "read local file header name and extra field"); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return h, fmt.Errorf("%w: short read of name and extra field at offset %d", ErrOffsetOutOfRange, offset)
			}
			return h, err
		}

		n := int(h.FileNameLength)
		h.Name, h.Extra = string(nmBuf[:n]), nmBuf[n:]
		offset += nm
	}

	if h.HasDataDescriptor() {
		h.CRC32 = e.CRC32
		h.CompressedSize = e.CompressedSize
		h.UncompressedSize = e.UncompressedSize
	}

	h.Payload = PayloadRange{Offset: offset, Length: int64(h.CompressedSize)}
	if h.Payload.End() > size {
		return h, fmt.Errorf("%w: payload [%d, %d) is past end of file (%d)", ErrOffsetOutOfRange, h.Payload.Offset, h.Payload.End(), size)
	}

	return h, nil
}
