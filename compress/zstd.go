package compress

import "github.com/baseline-eto/petfill/format"

// ZstdCompressor streams Zstandard frames. It is the default archive codec:
// quantized rasters are dominated by long runs of 255 over oceans and
// compress well at the default level.
//
// The pure Go klauspost/compress implementation is used unless the module is
// built with cgo and the gozstd tag, which switches to the libzstd binding.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Type implements Codec.
func (c ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}
