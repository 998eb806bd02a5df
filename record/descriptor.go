package record

import "encoding/binary"

// DataDescriptor models the record that follows the compressed data of a file whose local file header has
// FlagDataDescriptor set.
//
// The signature is optional per APPNOTE but is written by virtually every producer; it is a de-facto standard that OS X
// Finder requires.
type DataDescriptor struct {
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32

	// Signed is true if the descriptor started with DataDescriptorSignature.
	Signed bool
}

// UnmarshalBinary decodes a data descriptor with or without its leading signature.
//
// data must contain at least DataDescriptorLen bytes. If it starts with DataDescriptorSignature and has at least
// DataDescriptorLen+4 bytes, the signed form is assumed.
func (d *DataDescriptor) UnmarshalBinary(data []byte) error {
	const name = "data descriptor"
	if err := checkLen(name, data, DataDescriptorLen); err != nil {
		return err
	}

	b := readBuf(data)
	if d.Signed = len(data) >= DataDescriptorLen+4 && binary.LittleEndian.Uint32(data) == DataDescriptorSignature; d.Signed {
		b.sub(4)
	}

	d.CRC32 = b.uint32()
	d.CompressedSize = b.uint32()
	d.UncompressedSize = b.uint32()
	return nil
}

// MarshalBinary returns the encoding of the descriptor, including the signature only if Signed is true.
func (d DataDescriptor) MarshalBinary() ([]byte, error) {
	return d.AppendBinary(make([]byte, 0, d.Len()))
}

// AppendBinary appends the encoding of the descriptor to b.
func (d DataDescriptor) AppendBinary(b []byte) ([]byte, error) {
	w := writeBuf(b)
	if d.Signed {
		w.uint32(DataDescriptorSignature)
	}
	w.uint32(d.CRC32)
	w.uint32(d.CompressedSize)
	w.uint32(d.UncompressedSize)
	return w, nil
}

// Len returns the encoded length of the descriptor.
func (d DataDescriptor) Len() int {
	if d.Signed {
		return DataDescriptorLen + 4
	}

	return DataDescriptorLen
}
