package record

import (
	"iter"
	"time"
)

// Extra header IDs.
//
// IDs 0..31 are reserved for official use by PKWARE. IDs above that range are defined by third-party vendors.
//
// See http://mdfs.net/Docs/Comp/Archiving/Zip/ExtraField
const (
	Zip64ExtraID       uint16 = 0x0001 // Zip64 extended information
	NTFSExtraID        uint16 = 0x000a // NTFS
	UnixExtraID        uint16 = 0x000d // UNIX
	ExtTimeExtraID     uint16 = 0x5455 // Extended timestamp
	InfoZipUnixExtraID uint16 = 0x5855 // Info-ZIP Unix extension
)

// ExtraFields iterates over the (tag, data) pairs of an extra field.
//
// Iteration stops silently at the first block whose declared size runs past the end of extra; other ZIP authors might
// not even follow the basic format.
func ExtraFields(extra []byte) iter.Seq2[uint16, []byte] {
	return func(yield func(uint16, []byte) bool) {
		for b := readBuf(extra); len(b) >= 4; {
			tag := b.uint16()
			size := int(b.uint16())
			if len(b) < size {
				return
			}

			if !yield(tag, b.sub(size)) {
				return
			}
		}
	}
}

// ModTime returns the modification time recorded in the extended timestamp, NTFS, or Unix extra fields.
//
// The boolean return value is false if none of those fields exist or are well-formed.
func ModTime(extra []byte) (modified time.Time, ok bool) {
	for tag, data := range ExtraFields(extra) {
		b := readBuf(data)

		switch tag {
		case NTFSExtraID:
			if len(b) < 4 {
				continue
			}
			b.uint32() // reserved (ignored)
			for len(b) >= 4 {
				attrTag := b.uint16()
				attrSize := int(b.uint16())
				if len(b) < attrSize {
					break
				}
				attr := b.sub(attrSize)
				if attrTag != 1 || attrSize != 24 {
					continue
				}

				const ticksPerSecond = 1e7 // Windows timestamp resolution
				ts := int64(attr.uint32()) | int64(attr.uint32())<<32
				secs := ts / ticksPerSecond
				nsecs := (1e9 / ticksPerSecond) * (ts % ticksPerSecond)
				epoch := time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)
				modified, ok = time.Unix(epoch.Unix()+secs, nsecs).UTC(), true
			}
		case UnixExtraID, InfoZipUnixExtraID:
			if len(b) < 8 {
				continue
			}
			b.uint32() // AcTime (ignored)
			modified, ok = time.Unix(int64(b.uint32()), 0).UTC(), true
		case ExtTimeExtraID:
			if len(b) < 5 || b[0]&1 == 0 {
				continue
			}
			b.sub(1)
			modified, ok = time.Unix(int64(b.uint32()), 0).UTC(), true
		}
	}

	return
}

// MSDosTimeToTime converts an MS-DOS date and time into a time.Time.
// The resolution is 2s.
// See: https://learn.microsoft.com/en-us/windows/win32/api/winbase/nf-winbase-dosdatetimetofiletime
//
// taken from https://go.dev/src/archive/zip/struct.go.
func MSDosTimeToTime(dosDate, dosTime uint16) time.Time {
	return time.Date(
		// date bits 0-4: day of month; 5-8: month; 9-15: years since 1980
		int(dosDate>>9+1980),
		time.Month(dosDate>>5&0xf),
		int(dosDate&0x1f),

		// time bits 0-4: second/2; 5-10: minute; 11-15: hour
		int(dosTime>>11),
		int(dosTime>>5&0x3f),
		int(dosTime&0x1f*2),
		0, // nanoseconds

		time.UTC,
	)
}
