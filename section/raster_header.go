package section

import (
	"fmt"
	"io"
	"math"

	"github.com/baseline-eto/petfill/endian"
	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/format"
)

// RasterHeader represents the fixed-size header at the start of every
// intermediate and final raster. All fields are big-endian on the wire.
type RasterHeader struct {
	// Version is the format version, currently 1.
	Version uint8 // byte offset 0
	// Width is the raster width in pixels.
	Width uint32 // byte offset 1-4
	// Height is the raster height in pixels.
	Height uint32 // byte offset 5-8
	// BitDepth is the number of bits per payload sample.
	BitDepth uint8 // byte offset 9
	// MinimumValue is the physical value represented by code 0.
	MinimumValue float32 // byte offset 10-13
	// ScalingFactor is the physical increase per code step.
	ScalingFactor float32 // byte offset 14-17
	// Reserved is zero-filled on encode. At most ReservedSize bytes.
	Reserved []byte // byte offset 18-31
}

// NewRasterHeader creates a version 1, 8-bit header.
//
// Parameters:
//   - width, height: Raster dimensions in pixels
//   - minimum: Raw value mapped to code 0
//   - scale: Raw units per code step
//
// The stored minimum and scaling factor are the raw values times 0.1.
func NewRasterHeader(width, height uint32, minimum uint32, scale float32) *RasterHeader {
	return &RasterHeader{
		Version:       format.Version,
		Width:         width,
		Height:        height,
		BitDepth:      format.BitDepth,
		MinimumValue:  float32(minimum) * format.ValueScale,
		ScalingFactor: scale * format.ValueScale,
	}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly 32 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 32 bytes, ErrUnsupportedVersion
//     if the version is not 1
func (h *RasterHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	engine := endian.GetBigEndianEngine()

	h.Version = data[versionOffset]
	if h.Version != format.Version {
		return fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, h.Version)
	}

	h.Width = engine.Uint32(data[widthOffset:heightOffset])
	h.Height = engine.Uint32(data[heightOffset:depthOffset])
	h.BitDepth = data[depthOffset]
	h.MinimumValue = math.Float32frombits(engine.Uint32(data[minimumOffset:scalingOffset]))
	h.ScalingFactor = math.Float32frombits(engine.Uint32(data[scalingOffset:reservedOffset]))

	// An all-zero reserved area decodes to nil so that default headers round-trip.
	h.Reserved = nil
	for _, b := range data[reservedOffset:HeaderSize] {
		if b != 0 {
			h.Reserved = append([]byte(nil), data[reservedOffset:HeaderSize]...)
			break
		}
	}

	return nil
}

// Bytes serializes the RasterHeader into a 32-byte slice.
//
// Returns:
//   - []byte: Encoded header
//   - error: ErrReservedTooWide if Reserved holds more than ReservedSize bytes
func (h *RasterHeader) Bytes() ([]byte, error) {
	if len(h.Reserved) > ReservedSize {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrReservedTooWide, len(h.Reserved))
	}

	b := make([]byte, HeaderSize)
	engine := endian.GetBigEndianEngine()

	b[versionOffset] = h.Version
	engine.PutUint32(b[widthOffset:heightOffset], h.Width)
	engine.PutUint32(b[heightOffset:depthOffset], h.Height)
	b[depthOffset] = h.BitDepth
	engine.PutUint32(b[minimumOffset:scalingOffset], math.Float32bits(h.MinimumValue))
	engine.PutUint32(b[scalingOffset:reservedOffset], math.Float32bits(h.ScalingFactor))
	copy(b[reservedOffset:], h.Reserved)

	return b, nil
}

// WriteTo writes the encoded header to w.
func (h *RasterHeader) WriteTo(w io.Writer) (int64, error) {
	b, err := h.Bytes()
	if err != nil {
		return 0, err
	}

	n, err := w.Write(b)
	if err != nil {
		return int64(n), errs.IO("write header", err)
	}

	return int64(n), nil
}

// Value converts a quantized code to the physical value it represents.
// The result is meaningless for format.Invalid.
func (h *RasterHeader) Value(code uint8) float32 {
	return float32(code)*h.ScalingFactor + h.MinimumValue
}

// PayloadSize is the expected byte length of the pixel data following the header.
func (h *RasterHeader) PayloadSize() int64 {
	return int64(h.Width) * int64(h.Height) * int64(h.BitDepth/8)
}

// ParseRasterHeader parses a RasterHeader from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be at least 32 bytes)
//
// Returns:
//   - *RasterHeader: Parsed header
//   - error: ErrInvalidHeaderSize or ErrUnsupportedVersion
func ParseRasterHeader(data []byte) (*RasterHeader, error) {
	if len(data) < HeaderSize {
		return nil, errs.ErrInvalidHeaderSize
	}

	h := &RasterHeader{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return nil, err
	}

	return h, nil
}

// ReadRasterHeader reads exactly 32 bytes from r and parses them.
// A short read is reported as ErrInvalidHeaderSize.
func ReadRasterHeader(r io.Reader) (*RasterHeader, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errs.ErrInvalidHeaderSize
		}

		return nil, errs.IO("read header", err)
	}

	return ParseRasterHeader(buf[:])
}
