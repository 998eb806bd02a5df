package zipcd

import (
	"archive/zip"
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/nguyengg/zipcd/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindEOCD(t *testing.T) {
	// a comment that contains an EOCD signature whose comment length (7) is inconsistent with the actual trailing
	// data (8 bytes of "trailing").
	decoy := "decoy PK\x05\x06" + strings.Repeat("\x00", 16) + "\x07\x00" + "trailing"

	tests := []struct {
		name    string
		comment string
	}{
		{name: "no comment"},
		{name: "short comment", comment: "hello, world"},
		{name: "decoy signature in comment", comment: decoy},
		{name: "max comment length", comment: strings.Repeat("x", math.MaxUint16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildZip(t, tt.comment, func(w *zip.Writer) {
				createRaw(t, w, "a.txt", zip.Store, []byte("hello"))
			})
			want := int64(len(data) - record.EOCDLen - len(tt.comment))

			got, err := FindEOCD(bytes.NewReader(data), int64(len(data)))
			require.NoErrorf(t, err, "FindEOCD() error = %v", err)
			assert.Equal(t, want, got)

			r, err := ReadEOCD(bytes.NewReader(data), int64(len(data)), got)
			require.NoErrorf(t, err, "ReadEOCD() error = %v", err)
			assert.Equal(t, tt.comment, string(r.Comment))
			assert.Equal(t, want, r.Start)
			assert.Equal(t, int64(len(data)), r.End)
			assert.Equal(t, uint16(1), r.CDCount)
		})
	}
}

func TestFindEOCD_OnlyDecoy(t *testing.T) {
	// the only signature in the file is inconsistent with the file length.
	b, err := record.EOCD{CommentLength: 10}.MarshalBinary()
	require.NoError(t, err)
	b = append(b, "short"...)

	_, err = FindEOCD(bytes.NewReader(b), int64(len(b)))
	assert.ErrorIsf(t, err, ErrEOCDNotFound, "FindEOCD() error = %v", err)
}

func TestFindEOCD_SignatureTooCloseToEnd(t *testing.T) {
	// a signature in the last 21 bytes cannot start a 22-byte record.
	data := append(make([]byte, 30), 0x50, 0x4b, 0x05, 0x06, 0, 0)

	_, err := FindEOCD(bytes.NewReader(data), int64(len(data)))
	assert.ErrorIsf(t, err, ErrEOCDNotFound, "FindEOCD() error = %v", err)
}

func TestReadEOCD_TruncatedComment(t *testing.T) {
	b, err := record.EOCD{CommentLength: 10}.MarshalBinary()
	require.NoError(t, err)
	b = append(b, "short"...)

	_, err = ReadEOCD(bytes.NewReader(b), int64(len(b)), 0)
	assert.ErrorIsf(t, err, ErrTruncatedComment, "ReadEOCD() error = %v", err)

	// the source is shorter than it claims to be.
	b = append(b, "er!!!"...)
	_, err = ReadEOCD(bytes.NewReader(b[:len(b)-2]), int64(len(b)), 0)
	assert.ErrorIsf(t, err, ErrTruncatedComment, "ReadEOCD() error = %v", err)
}

func TestReadEOCD_BadOffset(t *testing.T) {
	b, err := record.EOCD{}.MarshalBinary()
	require.NoError(t, err)

	_, err = ReadEOCD(bytes.NewReader(b), int64(len(b)), 1)
	assert.ErrorIs(t, err, ErrEOCDNotFound)

	_, err = ReadEOCD(bytes.NewReader(append([]byte{0}, b...)), int64(len(b)+1), 0)
	assert.ErrorIs(t, err, ErrEOCDNotFound)
}
