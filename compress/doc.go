// Package compress provides streaming codecs for raster archives.
//
// A production raster is roughly 725 MB, so codecs wrap io.Writer and
// io.Reader rather than whole buffers. Four algorithms are supported, keyed
// by format.CompressionType as stored in archive headers:
//
//   - None: bytes are stored unchanged
//   - Zstd: best ratio, the default (klauspost/compress, or libzstd via
//     valyala/gozstd when built with cgo and the gozstd tag)
//   - S2: faster than zstd at a lower ratio
//   - LZ4: fastest decompression
//
// Writers must be closed to flush the stream; closing never closes the
// underlying writer or reader:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	zw, _ := codec.NewWriter(f)
//	if _, err := io.Copy(zw, raster); err != nil {
//	    return err
//	}
//	return zw.Close()
package compress
