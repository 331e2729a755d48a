package compress

import (
	"io"

	"github.com/baseline-eto/petfill/format"
)

// NoOpCompressor stores data as is. Useful when the archive is compressed
// by another layer or for measuring the container overhead.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Type implements Codec.
func (c NoOpCompressor) Type() format.CompressionType {
	return format.CompressionNone
}

// NewWriter returns w wrapped with a Close that does nothing.
func (c NoOpCompressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopCloser{w}, nil
}

// NewReader returns r wrapped with a Close that does nothing.
func (c NoOpCompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}
