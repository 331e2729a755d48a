// Package section defines the low-level binary structures of petfill files.
//
// This package handles serialization of the two fixed-size headers used by
// petfill: the raster header shared by every quantized raster, and the
// archive header that precedes a compressed raster.
//
// # Raster File Structure
//
//	┌─────────────────────────────────────────────────────────┐
//	│ RasterHeader (32 bytes, fixed, big-endian)              │
//	├─────────────────────────────────────────────────────────┤
//	│ Row 0     (width bytes)                                 │
//	│ Row 1     (width bytes)                                 │
//	│ ...                                                     │
//	│ Row h-1   (width bytes)                                 │
//	└─────────────────────────────────────────────────────────┘
//
// The file length is always 32 + width*height. Anything else is a format
// error and is how a partially written pass output is detected.
//
// # Header Format
//
// RasterHeader (32 bytes):
//
//	Bytes  | Field          | Type    | Description
//	-------|----------------|---------|----------------------------------
//	0      | Version        | uint8   | Format version (1)
//	1-4    | Width          | uint32  | Raster width in pixels
//	5-8    | Height         | uint32  | Raster height in pixels
//	9      | BitDepth       | uint8   | Bits per sample (8)
//	10-13  | MinimumValue   | float32 | Value of code 0 (raw min × 0.1)
//	14-17  | ScalingFactor  | float32 | Value per code step (scale × 0.1)
//	18-31  | Reserved       |         | Zero
//
// A quantized code c therefore represents c*ScalingFactor + MinimumValue;
// code 255 means no data.
//
// ArchiveHeader (32 bytes) is documented on the type.
package section
