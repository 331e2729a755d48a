// Package mask reads the land/water mask that gates interpolation.
//
// The mask is a headerless row-major byte grid covering the whole globe at a
// lower resolution than the PET raster. A cell above 128 is land.
package mask

import (
	"fmt"
	"io"
	"os"

	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/format"
	"github.com/baseline-eto/petfill/grid"
)

// Reader gives random access to mask rows addressed by full-resolution raster row.
//
// Reader keeps the most recently read row, so consecutive raster rows that
// share a mask row cost a single read. It is not safe for concurrent use.
type Reader struct {
	r    io.ReaderAt
	size int64
	g    grid.Geometry

	closer io.Closer

	row       []byte
	rowOffset int64
}

// NewReader creates a Reader over r, which holds size bytes of mask data.
func NewReader(r io.ReaderAt, size int64, g grid.Geometry) *Reader {
	return &Reader{
		r:         r,
		size:      size,
		g:         g,
		row:       make([]byte, g.MaskWidth),
		rowOffset: -1,
	}
}

// Open opens the mask file at path.
func Open(path string, g grid.Geometry) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.IO("open mask", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errs.IO("stat mask", err)
	}

	mr := NewReader(f, info.Size(), g)
	mr.closer = f

	return mr, nil
}

// Close releases the underlying file when the Reader was created by Open.
func (m *Reader) Close() error {
	if m.closer == nil {
		return nil
	}

	return m.closer.Close()
}

// Offset returns the byte offset of the mask row covering raster row y.
func (m *Reader) Offset(y int) int64 {
	return int64(y/m.g.VerticalFactor())*int64(m.g.MaskWidth) + m.g.CroppedTopOffset()
}

// ReadRow returns the MaskWidth cells covering raster row y.
//
// The returned slice is owned by the Reader and is overwritten by the next
// call that lands on a different mask row.
func (m *Reader) ReadRow(y int) ([]byte, error) {
	off := m.Offset(y)
	if off == m.rowOffset {
		return m.row, nil
	}

	if y < 0 || off < 0 || off+int64(m.g.MaskWidth) > m.size {
		return nil, errs.IO(fmt.Sprintf("read mask row for raster row %d", y),
			fmt.Errorf("%w: offset %d, mask size %d", errs.ErrOffsetOutOfRange, off, m.size))
	}

	// ReadAt may report io.EOF alongside a full read of the last row.
	if n, err := m.r.ReadAt(m.row, off); n < len(m.row) {
		m.rowOffset = -1
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, errs.IO(fmt.Sprintf("read mask row for raster row %d", y), err)
	}
	m.rowOffset = off

	return m.row, nil
}

// IsLand reports whether raster column x is land according to a row
// returned by ReadRow.
func (m *Reader) IsLand(row []byte, x int) bool {
	return IsLand(row[x/m.g.HorizontalFactor()])
}

// IsLand reports whether a single mask cell is land.
func IsLand(cell byte) bool {
	return cell > format.LandThreshold
}
