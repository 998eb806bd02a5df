// Package decompress turns the raw payload of a ZIP entry into its original contents.
//
// Decompressors are registered per compression method. Store, Deflate, BZIP2, Zstandard, and XZ are registered by
// default; Register can add others or replace the defaults.
package decompress

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/nguyengg/zipcd"
	"github.com/ulikunitz/xz"
)

// Compression methods with a default Decompressor.
//
// See https://pkware.cachefly.net/webdocs/casestudies/APPNOTE.TXT section 4.4.5.
const (
	Store   = zipcd.Store
	Deflate = zipcd.Deflate
	BZIP2   uint16 = 12
	Zstd    uint16 = 93
	XZ      uint16 = 95
)

// ErrUnsupportedMethod is returned if no Decompressor has been registered for a compression method.
var ErrUnsupportedMethod = errors.New("unsupported compression method")

// Decompressor creates a reader that decompresses contents from the given io.Reader.
type Decompressor func(src io.Reader) (io.ReadCloser, error)

var (
	// mu guards decompressors.
	mu            sync.RWMutex
	decompressors = map[uint16]Decompressor{
		Store:   newStoreReader,
		Deflate: newDeflateReader,
		BZIP2:   newBZIP2Reader,
		Zstd:    newZstdReader,
		XZ:      newXZReader,
	}
)

// Register registers the Decompressor for the given compression method, replacing any existing one.
func Register(method uint16, d Decompressor) {
	mu.Lock()
	defer mu.Unlock()
	decompressors[method] = d
}

// Supported returns true if a Decompressor has been registered for the given compression method.
func Supported(method uint16) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := decompressors[method]
	return ok
}

// NewReader returns a reader that decompresses src according to the given compression method.
//
// Returns ErrUnsupportedMethod if no Decompressor has been registered for method.
func NewReader(method uint16, src io.Reader) (io.ReadCloser, error) {
	mu.RLock()
	d, ok := decompressors[method]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMethod, method)
	}

	return d(src)
}

// Open returns a reader over the decompressed contents of the entry at index i of the given archive.
//
// CRC-32 is not verified.
func Open(a *zipcd.Archive, i int) (io.ReadCloser, error) {
	e, err := a.Entry(i)
	if err != nil {
		return nil, err
	}

	if !Supported(e.Method) {
		return nil, &zipcd.EntryError{Index: i, Name: e.Name, Err: fmt.Errorf("%w: %d", ErrUnsupportedMethod, e.Method)}
	}

	r, err := a.OpenRaw(i)
	if err != nil {
		return nil, err
	}

	rc, err := NewReader(e.Method, r)
	if err != nil {
		return nil, &zipcd.EntryError{Index: i, Name: e.Name, Err: err}
	}

	return rc, nil
}

func newStoreReader(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(src), nil
}

func newDeflateReader(src io.Reader) (io.ReadCloser, error) {
	return flate.NewReader(src), nil
}

func newBZIP2Reader(src io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(src, nil)
}

func newZstdReader(src io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}

	return dec.IOReadCloser(), nil
}

func newXZReader(src io.Reader) (io.ReadCloser, error) {
	r, err := xz.NewReader(src)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(r), nil
}
