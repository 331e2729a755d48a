//go:build !(cgo && gozstd)

package compress

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders. A decoder operates without
// allocations after warmup, so it is worth keeping across archives.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPool pools zstd encoders for reuse across streams.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(true),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

type zstdWriter struct {
	*zstd.Encoder
}

// Close finishes the frame and returns the encoder to the pool.
func (w zstdWriter) Close() error {
	err := w.Encoder.Close()
	zstdEncoderPool.Put(w.Encoder)

	return err
}

type zstdReader struct {
	*zstd.Decoder
}

// Close detaches the source and returns the decoder to the pool.
// The decoder itself stays open for the next stream.
func (r zstdReader) Close() error {
	_ = r.Decoder.Reset(nil)
	zstdDecoderPool.Put(r.Decoder)

	return nil
}

// NewWriter implements Compressor using a pooled encoder.
func (c ZstdCompressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	encoder.Reset(w)

	return zstdWriter{encoder}, nil
}

// NewReader implements Decompressor using a pooled decoder.
func (c ZstdCompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	if err := decoder.Reset(r); err != nil {
		zstdDecoderPool.Put(decoder)
		return nil, fmt.Errorf("zstd stream: %w", err)
	}

	return zstdReader{decoder}, nil
}
