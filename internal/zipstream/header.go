package zipstream

import (
	"encoding/binary"
	"time"
)

const (
	localHeaderSignature   = 0x04034b50
	centralHeaderSignature = 0x02014b50
	directoryEndSignature  = 0x06054b50

	localHeaderLen    = 30 // + filename
	dataDescriptorLen = 12 // crc32, compressed size, uncompressed size
	centralHeaderLen  = 46 // + filename
	directoryEndLen   = 22

	zipVersion20  = 20 // 2.0: supports DEFLATE and the data descriptor
	methodDeflate = 8

	flagDataDescriptor = 1 << 3  // sizes and crc follow the file data
	flagUTF8           = 1 << 11 // filename is UTF-8

	// MaxEntries is the largest entry count the 16-bit field in the
	// end-of-central-directory record can hold.
	MaxEntries = 1<<16 - 1

	maxUint32 = 1<<32 - 1
)

// centralDirEntry holds the finalized metadata for one written entry until
// the central directory is emitted. Entries are appended in addition order
// and never reordered.
type centralDirEntry struct {
	name             string
	crc32            uint32
	compressedSize   uint32
	uncompressedSize uint32
	headerOffset     uint32
	modTime          uint16
	modDate          uint16
}

// encodeLocalHeader renders the fixed local file header followed by the
// entry name. The crc and size fields (offsets 14, 18, 22) stay zero: flag
// bit 3 tells readers to take them from the data descriptor instead, which
// is what lets the stream be written without seeking back.
func encodeLocalHeader(name string, modTime, modDate uint16) []byte {
	b := make([]byte, localHeaderLen+len(name))
	le := binary.LittleEndian
	le.PutUint32(b[0:], localHeaderSignature)
	le.PutUint16(b[4:], zipVersion20)
	le.PutUint16(b[6:], flagDataDescriptor|flagUTF8)
	le.PutUint16(b[8:], methodDeflate)
	le.PutUint16(b[10:], modTime)
	le.PutUint16(b[12:], modDate)
	le.PutUint16(b[26:], uint16(len(name)))
	copy(b[localHeaderLen:], name)
	return b
}

// encodeDataDescriptor renders the 12-byte trailer carrying the values the
// local header omitted. The optional 0x08074b50 descriptor signature is not
// written; readers locate these fields through the central directory.
func encodeDataDescriptor(crc, compressedSize, uncompressedSize uint32) []byte {
	b := make([]byte, dataDescriptorLen)
	le := binary.LittleEndian
	le.PutUint32(b[0:], crc)
	le.PutUint32(b[4:], compressedSize)
	le.PutUint32(b[8:], uncompressedSize)
	return b
}

// encode renders the central directory file header for this entry. It
// mirrors the local header fields and additionally records the offset at
// which the local header was written.
func (e *centralDirEntry) encode() []byte {
	b := make([]byte, centralHeaderLen+len(e.name))
	le := binary.LittleEndian
	le.PutUint32(b[0:], centralHeaderSignature)
	le.PutUint16(b[4:], zipVersion20) // version made by
	le.PutUint16(b[6:], zipVersion20) // version needed to extract
	le.PutUint16(b[8:], flagDataDescriptor|flagUTF8)
	le.PutUint16(b[10:], methodDeflate)
	le.PutUint16(b[12:], e.modTime)
	le.PutUint16(b[14:], e.modDate)
	le.PutUint32(b[16:], e.crc32)
	le.PutUint32(b[20:], e.compressedSize)
	le.PutUint32(b[24:], e.uncompressedSize)
	le.PutUint16(b[28:], uint16(len(e.name)))
	le.PutUint32(b[42:], e.headerOffset)
	copy(b[centralHeaderLen:], e.name)
	return b
}

// encodeDirectoryEnd renders the end-of-central-directory record closing the
// archive.
func encodeDirectoryEnd(entries uint16, dirSize, dirOffset uint32) []byte {
	b := make([]byte, directoryEndLen)
	le := binary.LittleEndian
	le.PutUint32(b[0:], directoryEndSignature)
	le.PutUint16(b[8:], entries)  // entries on this disk
	le.PutUint16(b[10:], entries) // entries total
	le.PutUint32(b[12:], dirSize)
	le.PutUint32(b[16:], dirOffset)
	return b
}

// msdosTime converts t to the 16-bit MS-DOS time and date fields used by
// ZIP headers. The zero time maps to zeroed fields, which keeps archive
// output deterministic when no timestamp is configured. DOS times have
// two-second resolution and no notion of a time zone; the wall-clock
// fields of t are written as-is.
func msdosTime(t time.Time) (timeField, dateField uint16) {
	if t.IsZero() {
		return 0, 0
	}
	timeField = uint16(t.Hour()<<11 | t.Minute()<<5 | t.Second()/2)
	dateField = uint16((t.Year()-1980)<<9 | int(t.Month())<<5 | t.Day())
	return timeField, dateField
}
