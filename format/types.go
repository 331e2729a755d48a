package format

type (
	CompressionType uint8
)

const (
	Version  uint8 = 1 // Version is the only raster format version understood.
	BitDepth uint8 = 8 // BitDepth is the sample width of quantized rasters.

	RawSampleSize       = 2 // RawSampleSize is the byte width of a MOD16A3 sample.
	QuantizedSampleSize = 1 // QuantizedSampleSize is the byte width of a quantized pixel.

	// RawInvalidThreshold is the largest valid raw sample. Anything above it
	// is a MOD16A3 fill value (water, barren, urban, no data).
	RawInvalidThreshold uint16 = 0xFFF8

	// Invalid marks an invalid or not yet filled quantized pixel.
	Invalid uint8 = 0xFF
	// MaxCode is the largest quantized code that carries a value.
	MaxCode uint8 = Invalid - 1

	// LandThreshold separates mask cells: values above it are land.
	LandThreshold uint8 = 128

	// Scale applied to raw MOD16A3 units when storing them in a header.
	ValueScale float32 = 0.1
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType parses a case-sensitive lower-case compression name
// as used on the command line ("none", "zstd", "s2", "lz4").
func ParseCompressionType(name string) (CompressionType, bool) {
	switch name {
	case "none":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}

// Extension returns the conventional file suffix for archives using c.
func (c CompressionType) Extension() string {
	switch c {
	case CompressionZstd:
		return ".zst"
	case CompressionS2:
		return ".s2"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ".bin"
	}
}
