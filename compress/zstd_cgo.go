//go:build cgo && gozstd

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

const gozstdLevel = 3

type gozstdWriter struct {
	*gozstd.Writer
}

// Close flushes the frame and releases the native encoder.
func (w gozstdWriter) Close() error {
	err := w.Writer.Close()
	w.Writer.Release()

	return err
}

type gozstdReader struct {
	*gozstd.Reader
}

// Close releases the native decoder.
func (r gozstdReader) Close() error {
	r.Reader.Release()
	return nil
}

// NewWriter implements Compressor using libzstd.
func (c ZstdCompressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return gozstdWriter{gozstd.NewWriterLevel(w, gozstdLevel)}, nil
}

// NewReader implements Decompressor using libzstd.
func (c ZstdCompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gozstdReader{gozstd.NewReader(r)}, nil
}
