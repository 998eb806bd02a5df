package zipcd

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive_ResolveLocalHeaders(t *testing.T) {
	data := buildZip(t, "", func(w *zip.Writer) {
		for i := range 20 {
			createRaw(t, w, fmt.Sprintf("%02d.txt", i), zip.Store, bytes.Repeat([]byte("x"), i))
		}
	})

	a, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoErrorf(t, err, "NewReader() error = %v", err)
	e, _ := a.Entry(7)
	binary.LittleEndian.PutUint32(data[e.Offset+42:], uint32(len(data)))

	a, err = NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoErrorf(t, err, "NewReader() error = %v", err)

	var opened atomic.Int32
	results, err := a.ResolveLocalHeaders(context.Background(), 4, func() (io.ReaderAt, error) {
		opened.Add(1)
		return bytes.NewReader(data), nil
	})
	require.NoErrorf(t, err, "ResolveLocalHeaders() error = %v", err)
	require.Len(t, results, 20)
	assert.LessOrEqual(t, opened.Load(), int32(4))

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		if i == 7 {
			assert.ErrorIs(t, r.Err, ErrOffsetOutOfRange)
			assert.True(t, IsEntryError(r.Err))
			continue
		}

		assert.NoErrorf(t, r.Err, "entry %d error = %v", i, r.Err)
		assert.Equal(t, fmt.Sprintf("%02d.txt", i), r.Header.Name)
		assert.Equal(t, int64(i), r.Header.Payload.Length)
	}

	// resolved headers are cached.
	h, err := a.LocalHeader(3)
	assert.NoError(t, err)
	assert.Equal(t, results[3].Header, h)
}

func TestArchive_ResolveLocalHeaders_SharedSource(t *testing.T) {
	data := buildZip(t, "", func(w *zip.Writer) {
		for i := range 5 {
			createRaw(t, w, fmt.Sprintf("%d.txt", i), zip.Store, []byte("hello"))
		}
	})

	a, err := Open(bytes.NewReader(data))
	require.NoErrorf(t, err, "Open() error = %v", err)

	results, err := a.ResolveLocalHeaders(context.Background(), 10, nil)
	require.NoErrorf(t, err, "ResolveLocalHeaders() error = %v", err)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, int64(5), r.Header.Payload.Length)
	}
}

func TestArchive_ResolveLocalHeaders_OpenError(t *testing.T) {
	data := buildZip(t, "", func(w *zip.Writer) {
		createRaw(t, w, "a.txt", zip.Store, []byte("hello"))
		createRaw(t, w, "b.txt", zip.Store, []byte("world"))
	})

	a, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoErrorf(t, err, "NewReader() error = %v", err)

	errBoom := errors.New("boom")
	results, err := a.ResolveLocalHeaders(context.Background(), 2, func() (io.ReaderAt, error) {
		return nil, errBoom
	})
	assert.ErrorIs(t, err, ErrIOFailure)
	assert.ErrorIs(t, err, errBoom)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Error(t, r.Err)
	}
}

func TestArchive_ResolveLocalHeaders_Cancelled(t *testing.T) {
	data := buildZip(t, "", func(w *zip.Writer) {
		createRaw(t, w, "a.txt", zip.Store, []byte("hello"))
	})

	a, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoErrorf(t, err, "NewReader() error = %v", err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := a.ResolveLocalHeaders(ctx, 1, func() (io.ReaderAt, error) {
		// block until the context is done so that no entry can be submitted.
		<-ctx.Done()
		return bytes.NewReader(data), nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestArchive_ResolveLocalHeaders_Empty(t *testing.T) {
	data := append([]byte{0x50, 0x4b, 0x05, 0x06}, make([]byte, 18)...)

	a, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoErrorf(t, err, "NewReader() error = %v", err)

	results, err := a.ResolveLocalHeaders(context.Background(), 4, nil)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

// sliceReaderAt is a non-comparable io.ReaderAt that counts how many times it is closed.
type sliceReaderAt struct {
	b      []byte
	closed *atomic.Int32
}

func (r sliceReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return bytes.NewReader(r.b).ReadAt(p, off)
}

func (r sliceReaderAt) Close() error {
	r.closed.Add(1)
	return nil
}

func TestArchive_ResolveLocalHeaders_NonComparableSource(t *testing.T) {
	data := buildZip(t, "", func(w *zip.Writer) {
		for i := range 8 {
			createRaw(t, w, fmt.Sprintf("%d.txt", i), zip.Store, []byte("hello"))
		}
	})

	var closed atomic.Int32
	src := sliceReaderAt{b: data, closed: &closed}
	a, err := NewReader(src, int64(len(data)))
	require.NoErrorf(t, err, "NewReader() error = %v", err)

	// the shared source is never closed.
	results, err := a.ResolveLocalHeaders(context.Background(), 4, nil)
	require.NoErrorf(t, err, "ResolveLocalHeaders() error = %v", err)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, int32(0), closed.Load())

	// every handle returned by open is closed exactly once.
	var opened atomic.Int32
	results, err = a.ResolveLocalHeaders(context.Background(), 4, func() (io.ReaderAt, error) {
		opened.Add(1)
		return sliceReaderAt{b: data, closed: &closed}, nil
	})
	require.NoErrorf(t, err, "ResolveLocalHeaders() error = %v", err)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, opened.Load(), closed.Load())
}
