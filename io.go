package zipcd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// lockedReaderAt adapts an io.ReadSeeker to io.ReaderAt.
//
// Seek and Read are not atomic together, so every ReadAt holds mu for the seek+read pair.
type lockedReaderAt struct {
	// mu guards src.
	mu  sync.Mutex
	src io.ReadSeeker
}

func (r *lockedReaderAt) ReadAt(p []byte, off int64) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err = r.src.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}

	// io.ReaderAt must return a non-nil error when n < len(p); io.EOF is the conventional one at end of input.
	if n, err = io.ReadFull(r.src, p); errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}

	return n, err
}

// readAt reads exactly len(p) bytes at offset off.
//
// If src ends first, io.ErrUnexpectedEOF is returned as is so that callers can map it to their own truncation error.
// Any other error is returned as an *IOError describing op.
func readAt(src io.ReaderAt, p []byte, off int64, op string) error {
	switch n, err := src.ReadAt(p, off); {
	case n == len(p):
		return nil
	case err == nil, errors.Is(err, io.EOF):
		return io.ErrUnexpectedEOF
	default:
		return &IOError{Op: op, Offset: off, Err: err}
	}
}

// CopyBufferWithContext is a custom implementation of io.CopyBuffer that is cancellable via context.
//
// Similar to io.CopyBuffer, if buf is nil, a new buffer of size 32*1024 is created.
// Unlike io.CopyBuffer, it does not matter if src implements [io.WriterTo] or dst implements [io.ReaderFrom] because
// those interfaces do not support context.
//
// The context is checked for done status after every write.
func CopyBufferWithContext(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) (written int64, err error) {
	if buf == nil {
		buf = make([]byte, 32*1024)
	}

	var nr, nw int
	for {
		nr, err = src.Read(buf)

		if nr > 0 {
			switch nw, err = dst.Write(buf[0:nr]); {
			case err != nil:
				return written, err
			case nr < nw:
				return written, io.ErrShortWrite
			case nr != nw:
				return written, fmt.Errorf("invalid write: expected to write %d bytes, wrote %d bytes instead", nr, nw)
			}

			written += int64(nw)

			select {
			case <-ctx.Done():
				return written, ctx.Err()
			default:
			}
		}

		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}
