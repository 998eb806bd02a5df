package record

// FlagDataDescriptor is the general purpose bit flag (bit 3) signalling that CRC-32 and sizes in the local file header
// are zero and the real values follow the compressed data in a data descriptor.
const FlagDataDescriptor uint16 = 0x8

// LocalFileHeader models the fixed-size part of a local file header.
//
// The record is followed by FileNameLength bytes of name, ExtraFieldLength bytes of extra field, and then the
// compressed data.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#Local_file_header.
type LocalFileHeader struct {
	ReaderVersion    uint16
	Flags            uint16
	Method           uint16
	ModifiedTime     uint16
	ModifiedDate     uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	FileNameLength   uint16
	ExtraFieldLength uint16
}

// UnmarshalBinary decodes the first LocalFileHeaderLen bytes of data.
func (h *LocalFileHeader) UnmarshalBinary(data []byte) error {
	const name = "local file header"
	if err := checkLen(name, data, LocalFileHeaderLen); err != nil {
		return err
	}

	b := readBuf(data[:LocalFileHeaderLen])
	if err := checkSignature(name, &b, LocalFileHeaderSignature); err != nil {
		return err
	}

	h.ReaderVersion = b.uint16()
	h.Flags = b.uint16()
	h.Method = b.uint16()
	h.ModifiedTime = b.uint16()
	h.ModifiedDate = b.uint16()
	h.CRC32 = b.uint32()
	h.CompressedSize = b.uint32()
	h.UncompressedSize = b.uint32()
	h.FileNameLength = b.uint16()
	h.ExtraFieldLength = b.uint16()
	return nil
}

// MarshalBinary returns the LocalFileHeaderLen-byte encoding of the header, signature included.
func (h LocalFileHeader) MarshalBinary() ([]byte, error) {
	return h.AppendBinary(make([]byte, 0, LocalFileHeaderLen))
}

// AppendBinary appends the encoding of the header to b.
func (h LocalFileHeader) AppendBinary(b []byte) ([]byte, error) {
	w := writeBuf(b)
	w.uint32(LocalFileHeaderSignature)
	w.uint16(h.ReaderVersion)
	w.uint16(h.Flags)
	w.uint16(h.Method)
	w.uint16(h.ModifiedTime)
	w.uint16(h.ModifiedDate)
	w.uint32(h.CRC32)
	w.uint32(h.CompressedSize)
	w.uint32(h.UncompressedSize)
	w.uint16(h.FileNameLength)
	w.uint16(h.ExtraFieldLength)
	return w, nil
}

// HasDataDescriptor returns true if general purpose bit 3 is set.
func (h LocalFileHeader) HasDataDescriptor() bool {
	return h.Flags&FlagDataDescriptor != 0
}

// VariableLen returns the total length of the name and extra field that follow the fixed-size part.
func (h LocalFileHeader) VariableLen() int {
	return int(h.FileNameLength) + int(h.ExtraFieldLength)
}
