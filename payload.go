package zipcd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nguyengg/zipcd/record"
)

// OpenRaw returns a reader over the compressed data of the entry at index i.
//
// Nothing is read until the returned reader is; the reader can be used concurrently with other reads from the Archive.
func (a *Archive) OpenRaw(i int) (*io.SectionReader, error) {
	r, err := a.PayloadRange(i)
	if err != nil {
		return nil, err
	}

	return io.NewSectionReader(a.src, r.Offset, r.Length), nil
}

// CopyRaw writes the compressed data of the entry at index i to dst.
//
// Only Store and Deflate entries can be copied; any other method returns ErrUnsupportedCompressionMethod without
// reading anything. The context is checked after every write.
func (a *Archive) CopyRaw(ctx context.Context, i int, dst io.Writer) (int64, error) {
	e, err := a.Entry(i)
	if err != nil {
		return 0, err
	}

	switch e.Method {
	case Store, Deflate:
	default:
		return 0, &EntryError{Index: i, Name: e.Name, Err: fmt.Errorf("%w: %d", ErrUnsupportedCompressionMethod, e.Method)}
	}

	r, err := a.OpenRaw(i)
	if err != nil {
		return 0, err
	}

	written, err := CopyBufferWithContext(ctx, dst, r, nil)
	if err != nil {
		if ctx.Err() == nil {
			_, base, _ := r.Outer()
			err = &IOError{Op: "copy raw payload", Offset: base + written, Err: err}
		}
		return written, &EntryError{Index: i, Name: e.Name, Err: err}
	}

	return written, nil
}

// DataDescriptor reads the data descriptor that follows the compressed data of the entry at index i.
//
// Returns ErrNoDataDescriptor if general purpose bit 3 is not set on the entry.
func (a *Archive) DataDescriptor(i int) (d record.DataDescriptor, err error) {
	h, err := a.LocalHeader(i)
	if err != nil {
		return d, err
	}

	if !h.HasDataDescriptor() {
		return d, &EntryError{Index: i, Name: h.Name, Err: ErrNoDataDescriptor}
	}

	offset := h.Payload.End()
	n := min(int64(record.DataDescriptorLen+4), a.size-offset)
	if n < record.DataDescriptorLen {
		return d, &EntryError{Index: i, Name: h.Name, Err: fmt.Errorf("%w: data descriptor at offset %d", ErrOffsetOutOfRange, offset)}
	}

	buf := make([]byte, n)
	if err = readAt(a.src, buf, offset, "read data descriptor"); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("%w: short read of data descriptor at offset %d", ErrOffsetOutOfRange, offset)
		}
		return d, &EntryError{Index: i, Name: h.Name, Err: err}
	}

	// an unsigned descriptor is only 12 bytes, so anything past that belongs to the next record.
	if err = d.UnmarshalBinary(buf); err != nil {
		return d, &EntryError{Index: i, Name: h.Name, Err: err}
	}

	return d, nil
}
