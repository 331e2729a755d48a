package compress

import (
	"io"
	"sync"

	"github.com/baseline-eto/petfill/format"
	"github.com/pierrec/lz4/v4"
)

// lz4WriterPool pools lz4 frame writers; each holds block buffers that
// benefit from reuse.
var lz4WriterPool = sync.Pool{
	New: func() any {
		return lz4.NewWriter(nil)
	},
}

type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Type implements Codec.
func (c LZ4Compressor) Type() format.CompressionType {
	return format.CompressionLZ4
}

type lz4Writer struct {
	*lz4.Writer
}

// Close writes the frame trailer and returns the writer to the pool.
func (w lz4Writer) Close() error {
	err := w.Writer.Close()
	lz4WriterPool.Put(w.Writer)

	return err
}

// NewWriter implements Compressor using a pooled frame writer.
func (c LZ4Compressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	lw, _ := lz4WriterPool.Get().(*lz4.Writer)
	lw.Reset(w)

	return lz4Writer{lw}, nil
}

// NewReader implements Decompressor.
func (c LZ4Compressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}
