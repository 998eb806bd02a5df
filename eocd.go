package zipcd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/nguyengg/zipcd/record"
	"github.com/valyala/bytebufferpool"
)

// maxEOCDWindow is the number of trailing bytes that can contain a valid EOCD since the comment is at most 0xffff
// bytes long.
const maxEOCDWindow = record.EOCDLen + math.MaxUint16

var eocdSigBytes = record.SignatureBytes(record.EOCDSignature)

// EOCDRecord is the end of central directory record along with its comment and location.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#End_of_central_directory_record_(EOCD).
type EOCDRecord struct {
	record.EOCD

	// Comment is the comment section of the EOCD.
	Comment []byte

	// Start is the absolute offset of the EOCD signature.
	Start int64
	// End is the offset right after the last byte of the comment, which is the archive size.
	End int64
}

// FindEOCD returns the absolute offset of the end of central directory record in src of the given size.
//
// The comment that follows the EOCD may itself contain the EOCD signature, so a candidate at offset o is accepted only
// if o + 22 + its comment length equals size exactly; otherwise the scan continues backwards past the decoy. Because
// the comment is at most 0xffff bytes long, only the last 22+0xffff bytes are ever read.
//
// Returns ErrEOCDNotFound if no consistent offset exists, including when size is less than 22.
func FindEOCD(src io.ReaderAt, size int64) (int64, error) {
	if size < record.EOCDLen {
		return -1, fmt.Errorf("%w: need at least %d bytes, got %d", ErrEOCDNotFound, record.EOCDLen, size)
	}

	n := min(size, maxEOCDWindow)
	start := size - n

	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	bb.B = slices.Grow(bb.B[:0], int(n))[:n]

	if err := readAt(src, bb.B, start, "read EOCD window"); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return -1, &IOError{Op: "read EOCD window", Offset: start, Err: err}
		}
		return -1, err
	}

	// the last candidate must still leave room for the fixed-size record.
	b := bb.B[:n-record.EOCDLen+4]
	for {
		i := bytes.LastIndex(b, eocdSigBytes)
		if i == -1 {
			return -1, ErrEOCDNotFound
		}

		commentLength := int64(bb.B[i+20]) | int64(bb.B[i+21])<<8
		if offset := start + int64(i); offset+record.EOCDLen+commentLength == size {
			return offset, nil
		}

		b = b[:i+3]
	}
}

// ReadEOCD decodes the end of central directory record at the given offset, followed by its comment.
//
// Returns ErrTruncatedComment if src ends before the comment does.
func ReadEOCD(src io.ReaderAt, size, offset int64) (r EOCDRecord, err error) {
	if offset < 0 || offset+record.EOCDLen > size {
		return r, fmt.Errorf("%w: EOCD at offset %d does not fit in %d bytes", ErrEOCDNotFound, offset, size)
	}

	buf := make([]byte, record.EOCDLen)
	if err = readAt(src, buf, offset, "read EOCD"); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return r, fmt.Errorf("%w: short read at offset %d", ErrEOCDNotFound, offset)
		}
		return r, err
	}

	if err = r.EOCD.UnmarshalBinary(buf); err != nil {
		return r, fmt.Errorf("%w: %w", ErrEOCDNotFound, err)
	}

	r.Start = offset
	r.End = offset + record.EOCDLen + int64(r.CommentLength)
	r.Comment = make([]byte, r.CommentLength)
	if r.End > size {
		return r, fmt.Errorf("%w: need %d bytes, only %d available", ErrTruncatedComment, r.CommentLength, size-offset-record.EOCDLen)
	}

	if err = readAt(src, r.Comment, offset+record.EOCDLen, "read EOCD comment"); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return r, fmt.Errorf("%w: need %d bytes", ErrTruncatedComment, r.CommentLength)
		}
		return r, err
	}

	return r, nil
}
