package record

// CentralDirectoryHeader models the fixed-size part of a central directory file header.
//
// The record is followed by FileNameLength bytes of name, ExtraFieldLength bytes of extra field, and
// FileCommentLength bytes of comment, in that order.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#Central_directory_file_header_(CDFH).
type CentralDirectoryHeader struct {
	CreatorVersion    uint16
	ReaderVersion     uint16
	Flags             uint16
	Method            uint16
	ModifiedTime      uint16
	ModifiedDate      uint16
	CRC32             uint32
	CompressedSize    uint32
	UncompressedSize  uint32
	FileNameLength    uint16
	ExtraFieldLength  uint16
	FileCommentLength uint16
	DiskNumber        uint16
	InternalAttrs     uint16
	ExternalAttrs     uint32

	// LocalHeaderOffset is the relative offset of local file header.
	//
	// This is the number of bytes between the start of the first disk on which the file occurs, and the start of
	// the local file header.
	LocalHeaderOffset uint32
}

// UnmarshalBinary decodes the first CentralDirectoryHeaderLen bytes of data.
func (h *CentralDirectoryHeader) UnmarshalBinary(data []byte) error {
	const name = "central directory file header"
	if err := checkLen(name, data, CentralDirectoryHeaderLen); err != nil {
		return err
	}

	b := readBuf(data[:CentralDirectoryHeaderLen])
	if err := checkSignature(name, &b, CentralDirectoryHeaderSignature); err != nil {
		return err
	}

	h.CreatorVersion = b.uint16()
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
	h.FileCommentLength = b.uint16()
	h.DiskNumber = b.uint16()
	h.InternalAttrs = b.uint16()
	h.ExternalAttrs = b.uint32()
	h.LocalHeaderOffset = b.uint32()
	return nil
}

// MarshalBinary returns the CentralDirectoryHeaderLen-byte encoding of the header, signature included.
func (h CentralDirectoryHeader) MarshalBinary() ([]byte, error) {
	return h.AppendBinary(make([]byte, 0, CentralDirectoryHeaderLen))
}

// AppendBinary appends the encoding of the header to b.
func (h CentralDirectoryHeader) AppendBinary(b []byte) ([]byte, error) {
	w := writeBuf(b)
	w.uint32(CentralDirectoryHeaderSignature)
	w.uint16(h.CreatorVersion)
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
	w.uint16(h.FileCommentLength)
	w.uint16(h.DiskNumber)
	w.uint16(h.InternalAttrs)
	w.uint32(h.ExternalAttrs)
	w.uint32(h.LocalHeaderOffset)
	return w, nil
}

// VariableLen returns the total length of the name, extra field, and comment that follow the fixed-size part.
func (h CentralDirectoryHeader) VariableLen() int {
	return int(h.FileNameLength) + int(h.ExtraFieldLength) + int(h.FileCommentLength)
}
