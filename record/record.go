// Package record encodes and decodes the fixed-size records of the ZIP file format.
//
// Every record is decoded field by field from little-endian bytes at the offsets listed in
// https://en.wikipedia.org/wiki/ZIP_(file_format)#Structure. The package does no semantic validation beyond checking
// the signature of each record.
package record

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Record signatures.
const (
	LocalFileHeaderSignature        uint32 = 0x04034b50
	CentralDirectoryHeaderSignature uint32 = 0x02014b50
	EOCDSignature                   uint32 = 0x06054b50
	DataDescriptorSignature         uint32 = 0x08074b50
)

// Fixed sizes (in bytes) of each record, excluding their variable-size trailing fields.
const (
	LocalFileHeaderLen        = 30
	CentralDirectoryHeaderLen = 46
	EOCDLen                   = 22
	DataDescriptorLen         = 12
)

// ErrMalformedRecord is returned if the buffer to decode is shorter than the fixed size of the record.
var ErrMalformedRecord = errors.New("malformed record")

// SignatureError is returned if the first 4 bytes of a record do not match its expected signature.
type SignatureError struct {
	// Record is the human-friendly name of the record being decoded.
	Record string
	Got    uint32
	Want   uint32
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%s: mismatched signature, got 0x%08x, expected 0x%08x", e.Record, e.Got, e.Want)
}

// SignatureBytes returns the little-endian encoding of the given signature.
func SignatureBytes(sig uint32) []byte {
	return binary.LittleEndian.AppendUint32(make([]byte, 0, 4), sig)
}

func checkLen(name string, b []byte, n int) error {
	if len(b) < n {
		return fmt.Errorf("%s: %w: need %d bytes, got %d", name, ErrMalformedRecord, n, len(b))
	}

	return nil
}

func checkSignature(name string, b *readBuf, want uint32) error {
	if got := b.uint32(); got != want {
		return &SignatureError{Record: name, Got: got, Want: want}
	}

	return nil
}

// readBuf is a little-endian cursor over a byte slice.
//
// Callers must check the length of the slice beforehand; reading past the end panics.
type readBuf []byte

func (b *readBuf) uint16() uint16 {
	v := binary.LittleEndian.Uint16(*b)
	*b = (*b)[2:]
	return v
}

func (b *readBuf) uint32() uint32 {
	v := binary.LittleEndian.Uint32(*b)
	*b = (*b)[4:]
	return v
}

func (b *readBuf) sub(n int) readBuf {
	b2 := (*b)[:n]
	*b = (*b)[n:]
	return b2
}

// writeBuf appends little-endian values.
type writeBuf []byte

func (b *writeBuf) uint16(v uint16) {
	*b = binary.LittleEndian.AppendUint16(*b, v)
}

func (b *writeBuf) uint32(v uint32) {
	*b = binary.LittleEndian.AppendUint32(*b, v)
}
