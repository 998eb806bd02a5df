package decompress

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/nguyengg/zipcd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func compress(t *testing.T, method uint16, data []byte) []byte {
	t.Helper()

	var (
		buf bytes.Buffer
		w   io.WriteCloser
		err error
	)

	switch method {
	case Store:
		return data
	case Deflate:
		w, err = flate.NewWriter(&buf, flate.BestCompression)
	case BZIP2:
		w, err = bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	case Zstd:
		w, err = zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	case XZ:
		w, err = xz.NewWriter(&buf)
	default:
		t.Fatalf("unknown method %d", method)
	}
	require.NoError(t, err)

	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestOpen(t *testing.T) {
	content := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog\n", 500))
	methods := []uint16{Store, Deflate, BZIP2, Zstd, XZ}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, method := range methods {
		compressed := compress(t, method, content)
		fw, err := w.CreateRaw(&zip.FileHeader{
			Name:               "file",
			Method:             method,
			CompressedSize64:   uint64(len(compressed)),
			UncompressedSize64: uint64(len(content)),
		})
		require.NoError(t, err)
		_, err = fw.Write(compressed)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	a, err := zipcd.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoErrorf(t, err, "NewReader() error = %v", err)
	require.Equal(t, len(methods), a.EntryCount())

	for i, method := range methods {
		e, _ := a.Entry(i)
		assert.Equal(t, method, e.Method)

		rc, err := Open(a, i)
		if !assert.NoErrorf(t, err, "Open(%d) error = %v", i, err) {
			continue
		}

		got, err := io.ReadAll(rc)
		assert.NoErrorf(t, err, "ReadAll(method=%d) error = %v", method, err)
		assert.Equal(t, content, got, "method=%d", method)
		assert.NoError(t, rc.Close())
	}
}

func TestNewReader_Unsupported(t *testing.T) {
	_, err := NewReader(0xbeef, strings.NewReader("whatever"))
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
	assert.False(t, Supported(0xbeef))
}

func TestOpen_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.CreateRaw(&zip.FileHeader{Name: "ppmd", Method: 98, CompressedSize64: 3, UncompressedSize64: 3})
	require.NoError(t, err)
	_, err = fw.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	a, err := zipcd.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoErrorf(t, err, "NewReader() error = %v", err)

	_, err = Open(a, 0)
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
	assert.True(t, zipcd.IsEntryError(err))

	_, err = Open(a, 1)
	assert.ErrorIs(t, err, zipcd.ErrInvalidIndex)
}

func TestRegister(t *testing.T) {
	const upper uint16 = 0xfff0
	Register(upper, func(src io.Reader) (io.ReadCloser, error) {
		data, err := io.ReadAll(src)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(bytes.ToUpper(data))), nil
	})
	assert.True(t, Supported(upper))

	rc, err := NewReader(upper, strings.NewReader("hello"))
	require.NoErrorf(t, err, "NewReader() error = %v", err)
	got, err := io.ReadAll(rc)
	assert.NoError(t, err)
	assert.Equal(t, "HELLO", string(got))
}
