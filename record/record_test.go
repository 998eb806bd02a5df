package record

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCentralDirectoryHeader_RoundTrip(t *testing.T) {
	want := CentralDirectoryHeader{
		CreatorVersion:    0x031e,
		ReaderVersion:     20,
		Flags:             0x0808,
		Method:            8,
		ModifiedTime:      0x6b5a,
		ModifiedDate:      0x5a21,
		CRC32:             0x506d938f,
		CompressedSize:    123,
		UncompressedSize:  456,
		FileNameLength:    10,
		ExtraFieldLength:  24,
		FileCommentLength: 3,
		DiskNumber:        1,
		InternalAttrs:     1,
		ExternalAttrs:     0x81a40000,
		LocalHeaderOffset: 0x245,
	}

	data, err := want.MarshalBinary()
	assert.NoErrorf(t, err, "MarshalBinary() error = %v", err)
	assert.Len(t, data, CentralDirectoryHeaderLen)
	assert.Equal(t, CentralDirectoryHeaderSignature, binary.LittleEndian.Uint32(data))

	// spot check a few offsets against the format.
	assert.Equal(t, uint16(8), binary.LittleEndian.Uint16(data[10:12]))
	assert.Equal(t, uint32(0x506d938f), binary.LittleEndian.Uint32(data[16:20]))
	assert.Equal(t, uint16(10), binary.LittleEndian.Uint16(data[28:30]))
	assert.Equal(t, uint32(0x245), binary.LittleEndian.Uint32(data[42:46]))

	var got CentralDirectoryHeader
	err = got.UnmarshalBinary(data)
	assert.NoErrorf(t, err, "UnmarshalBinary() error = %v", err)
	assert.Equal(t, want, got)
	assert.Equal(t, 37, got.VariableLen())
}

func TestLocalFileHeader_RoundTrip(t *testing.T) {
	want := LocalFileHeader{
		ReaderVersion:    20,
		Flags:            FlagDataDescriptor,
		Method:           0,
		ModifiedTime:     0x6b5a,
		ModifiedDate:     0x5a21,
		CRC32:            0xe434c8e8,
		CompressedSize:   5,
		UncompressedSize: 5,
		FileNameLength:   5,
		ExtraFieldLength: 9,
	}

	data, err := want.MarshalBinary()
	assert.NoErrorf(t, err, "MarshalBinary() error = %v", err)
	assert.Len(t, data, LocalFileHeaderLen)
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(data[18:22]))
	assert.Equal(t, uint16(9), binary.LittleEndian.Uint16(data[28:30]))

	var got LocalFileHeader
	err = got.UnmarshalBinary(data)
	assert.NoErrorf(t, err, "UnmarshalBinary() error = %v", err)
	assert.Equal(t, want, got)
	assert.True(t, got.HasDataDescriptor())
	assert.Equal(t, 14, got.VariableLen())
}

func TestEOCD_RoundTrip(t *testing.T) {
	want := EOCD{
		CDCountOnDisk: 3,
		CDCount:       3,
		CDSize:        258,
		CDOffset:      888,
		CommentLength: 7,
	}

	data, err := want.MarshalBinary()
	assert.NoErrorf(t, err, "MarshalBinary() error = %v", err)
	assert.Equal(t, []byte{0x50, 0x4b, 0x05, 0x06}, data[:4])

	var got EOCD
	err = got.UnmarshalBinary(data)
	assert.NoErrorf(t, err, "UnmarshalBinary() error = %v", err)
	assert.Equal(t, want, got)
}

func TestEOCD_Empty(t *testing.T) {
	// the minimal empty archive is the signature followed by 18 zero bytes.
	data := append([]byte{0x50, 0x4b, 0x05, 0x06}, make([]byte, 18)...)

	var got EOCD
	err := got.UnmarshalBinary(data)
	assert.NoErrorf(t, err, "UnmarshalBinary() error = %v", err)
	assert.Equal(t, EOCD{}, got)
}

func TestUnmarshalBinary_Malformed(t *testing.T) {
	tests := []struct {
		name string
		u    interface{ UnmarshalBinary([]byte) error }
		size int
	}{
		{name: "eocd", u: &EOCD{}, size: EOCDLen},
		{name: "central directory file header", u: &CentralDirectoryHeader{}, size: CentralDirectoryHeaderLen},
		{name: "local file header", u: &LocalFileHeader{}, size: LocalFileHeaderLen},
		{name: "data descriptor", u: &DataDescriptor{}, size: DataDescriptorLen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, n := range []int{0, 1, 4, tt.size - 1} {
				err := tt.u.UnmarshalBinary(make([]byte, n))
				assert.ErrorIsf(t, err, ErrMalformedRecord, "UnmarshalBinary(%d bytes) error = %v", n, err)
			}
		})
	}
}

func TestUnmarshalBinary_SignatureMismatch(t *testing.T) {
	lfh, _ := LocalFileHeader{}.MarshalBinary()

	var h CentralDirectoryHeader
	err := h.UnmarshalBinary(append(lfh, make([]byte, 16)...))

	var se *SignatureError
	if assert.True(t, errors.As(err, &se), "expected SignatureError, got %v", err) {
		assert.Equal(t, LocalFileHeaderSignature, se.Got)
		assert.Equal(t, CentralDirectoryHeaderSignature, se.Want)
	}
}

func TestDataDescriptor(t *testing.T) {
	tests := []struct {
		name string
		want DataDescriptor
	}{
		{
			name: "signed",
			want: DataDescriptor{CRC32: 0xb9bb1847, CompressedSize: 10, UncompressedSize: 20, Signed: true},
		},
		{
			name: "unsigned",
			want: DataDescriptor{CRC32: 0xb9bb1847, CompressedSize: 10, UncompressedSize: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.want.MarshalBinary()
			assert.NoErrorf(t, err, "MarshalBinary() error = %v", err)
			assert.Len(t, data, tt.want.Len())

			var got DataDescriptor
			err = got.UnmarshalBinary(data)
			assert.NoErrorf(t, err, "UnmarshalBinary() error = %v", err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtraFields(t *testing.T) {
	var extra []byte
	extra = binary.LittleEndian.AppendUint16(extra, 0xcafe)
	extra = binary.LittleEndian.AppendUint16(extra, 2)
	extra = append(extra, 1, 2)
	extra = binary.LittleEndian.AppendUint16(extra, ExtTimeExtraID)
	extra = binary.LittleEndian.AppendUint16(extra, 5)
	extra = append(extra, 1)
	extra = binary.LittleEndian.AppendUint32(extra, 1700000000)
	// truncated block that must be ignored.
	extra = binary.LittleEndian.AppendUint16(extra, 0xbeef)
	extra = binary.LittleEndian.AppendUint16(extra, 100)

	tags := make([]uint16, 0)
	for tag := range ExtraFields(extra) {
		tags = append(tags, tag)
	}
	assert.Equal(t, []uint16{0xcafe, ExtTimeExtraID}, tags)

	modified, ok := ModTime(extra)
	assert.True(t, ok)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), modified)

	_, ok = ModTime(nil)
	assert.False(t, ok)
}

func TestMSDosTimeToTime(t *testing.T) {
	// 2025-01-01 12:30:10
	dosDate := uint16((2025-1980)<<9 | 1<<5 | 1)
	dosTime := uint16(12<<11 | 30<<5 | 5)
	assert.Equal(t, time.Date(2025, time.January, 1, 12, 30, 10, 0, time.UTC), MSDosTimeToTime(dosDate, dosTime))
}
