package record

// EOCD models the fixed-size part of the end of central directory record.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#End_of_central_directory_record_(EOCD).
type EOCD struct {
	// DiskNumber is number of this disk.
	DiskNumber uint16
	// CDDiskNumber is the disk where central directory starts.
	CDDiskNumber uint16
	// CDCountOnDisk is the number of central directory records on this disk.
	CDCountOnDisk uint16
	// CDCount is the total number of central directory records.
	CDCount uint16
	// CDSize is size of central directory in bytes.
	CDSize uint32
	// CDOffset is offset of start of central directory, relative to start of archive.
	CDOffset uint32
	// CommentLength is the length of the comment that immediately follows the record.
	CommentLength uint16
}

// UnmarshalBinary decodes the first EOCDLen bytes of data.
func (r *EOCD) UnmarshalBinary(data []byte) error {
	const name = "end of central directory record"
	if err := checkLen(name, data, EOCDLen); err != nil {
		return err
	}

	b := readBuf(data[:EOCDLen])
	if err := checkSignature(name, &b, EOCDSignature); err != nil {
		return err
	}

	r.DiskNumber = b.uint16()
	r.CDDiskNumber = b.uint16()
	r.CDCountOnDisk = b.uint16()
	r.CDCount = b.uint16()
	r.CDSize = b.uint32()
	r.CDOffset = b.uint32()
	r.CommentLength = b.uint16()
	return nil
}

// MarshalBinary returns the EOCDLen-byte encoding of the record, signature included.
func (r EOCD) MarshalBinary() ([]byte, error) {
	return r.AppendBinary(make([]byte, 0, EOCDLen))
}

// AppendBinary appends the encoding of the record to b.
func (r EOCD) AppendBinary(b []byte) ([]byte, error) {
	w := writeBuf(b)
	w.uint32(EOCDSignature)
	w.uint16(r.DiskNumber)
	w.uint16(r.CDDiskNumber)
	w.uint16(r.CDCountOnDisk)
	w.uint16(r.CDCount)
	w.uint32(r.CDSize)
	w.uint32(r.CDOffset)
	w.uint16(r.CommentLength)
	return w, nil
}
