package section

import (
	"fmt"
	"io"

	"github.com/baseline-eto/petfill/endian"
	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/format"
)

// ArchiveHeader precedes the compressed stream of a packed raster.
//
// Layout (32 bytes, big-endian):
//
//	Bytes  | Field       | Type   | Description
//	-------|-------------|--------|-------------------------------------
//	0-3    | Magic       | uint32 | MagicArchiveV1 ("PETA")
//	4      | Version     | uint8  | ArchiveVersion
//	5      | Compression | uint8  | format.CompressionType of the stream
//	6-7    | Reserved    | uint16 | zero
//	8-15   | RawSize     | uint64 | byte length of the unpacked raster
//	16-23  | Checksum    | uint64 | xxHash64 of the unpacked raster
//	24-31  | Reserved    |        | zero
type ArchiveHeader struct {
	Compression format.CompressionType
	RawSize     uint64
	Checksum    uint64
}

// Bytes serializes the ArchiveHeader into a 32-byte slice.
func (h *ArchiveHeader) Bytes() []byte {
	b := make([]byte, ArchiveHeaderSize)
	engine := endian.GetBigEndianEngine()

	engine.PutUint32(b[0:4], MagicArchiveV1)
	b[4] = ArchiveVersion
	b[5] = uint8(h.Compression)
	engine.PutUint64(b[8:16], h.RawSize)
	engine.PutUint64(b[16:24], h.Checksum)

	return b
}

// Parse parses the header from a byte slice.
//
// Returns:
//   - error: ErrInvalidHeaderSize, ErrInvalidMagicNumber, ErrUnsupportedVersion
//     or ErrInvalidCompression
func (h *ArchiveHeader) Parse(data []byte) error {
	if len(data) != ArchiveHeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	engine := endian.GetBigEndianEngine()

	if magic := engine.Uint32(data[0:4]); magic != MagicArchiveV1 {
		return fmt.Errorf("%w: 0x%08X", errs.ErrInvalidMagicNumber, magic)
	}
	if data[4] != ArchiveVersion {
		return fmt.Errorf("%w: archive version %d", errs.ErrUnsupportedVersion, data[4])
	}

	h.Compression = format.CompressionType(data[5])
	if h.Compression.String() == "Unknown" {
		return fmt.Errorf("%w: %d", errs.ErrInvalidCompression, data[5])
	}

	h.RawSize = engine.Uint64(data[8:16])
	h.Checksum = engine.Uint64(data[16:24])

	return nil
}

// ReadArchiveHeader reads and parses an ArchiveHeader from r.
func ReadArchiveHeader(r io.Reader) (*ArchiveHeader, error) {
	var buf [ArchiveHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errs.ErrInvalidHeaderSize
		}

		return nil, errs.IO("read archive header", err)
	}

	h := &ArchiveHeader{}
	if err := h.Parse(buf[:]); err != nil {
		return nil, err
	}

	return h, nil
}
