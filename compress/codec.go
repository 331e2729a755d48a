package compress

import (
	"fmt"
	"io"

	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/format"
)

// Compressor wraps a destination in a compressing stream.
type Compressor interface {
	// NewWriter returns a writer that compresses into w.
	//
	// Close must be called to flush the stream. It does not close w, and
	// the writer must not be used afterwards.
	NewWriter(w io.Writer) (io.WriteCloser, error)
}

// Decompressor wraps a source in a decompressing stream.
//
// Example:
//
//	codec, _ := compress.GetCodec(format.CompressionZstd)
//	zr, err := codec.NewReader(f)
//	if err != nil {
//	    return fmt.Errorf("open archive stream: %w", err)
//	}
//	defer zr.Close()
type Decompressor interface {
	// NewReader returns a reader that decompresses r. Close releases codec
	// resources; it does not close r.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Codec combines both directions for one algorithm.
type Codec interface {
	Compressor
	Decompressor

	// Type identifies the algorithm in archive headers.
	Type() format.CompressionType
}

// CompressionStats describes one compressed stream.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the size of input data before compression
	OriginalSize int64

	// CompressedSize is the size of data after compression
	CompressedSize int64

	// CompressionTimeNs is the time taken to compress the data
	CompressionTimeNs int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
// Returns 0 if the original size is zero.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCompression, compressionType)
}

// nopCloser adapts a writer that needs no finalisation.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
