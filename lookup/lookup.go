// Package lookup answers point queries against a finished raster: the
// average daily reference evapotranspiration (ETo) at a latitude and
// longitude.
//
// Only the header and one byte per query are read, so a Table works equally
// over a local file or a ranged reader on remote storage.
package lookup

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/format"
	"github.com/baseline-eto/petfill/grid"
	"github.com/baseline-eto/petfill/internal/options"
	"github.com/baseline-eto/petfill/section"
)

// DaysPerYear converts annual totals to daily averages.
const DaysPerYear = 365

// Option configures a Table.
type Option = options.Option[*Table]

// WithPrecision rounds results to n significant digits. Zero disables rounding.
func WithPrecision(n int) Option {
	return options.New(func(t *Table) error {
		if n < 0 {
			return fmt.Errorf("precision must not be negative, got %d", n)
		}
		t.precision = n

		return nil
	})
}

// WithCrop overrides the latitude bands missing from the top and bottom of
// the raster. Defaults match grid.Default.
func WithCrop(topDegrees, bottomDegrees int) Option {
	return options.New(func(t *Table) error {
		if topDegrees < 0 || bottomDegrees < 0 || topDegrees+bottomDegrees >= 180 {
			return fmt.Errorf("%w: crop %d/%d", errs.ErrInvalidGeometry, topDegrees, bottomDegrees)
		}
		t.cropTop, t.cropBottom = topDegrees, bottomDegrees

		return nil
	})
}

// Table resolves coordinates to pixels of one raster.
type Table struct {
	r      io.ReaderAt
	header *section.RasterHeader
	closer io.Closer

	cropTop    int
	cropBottom int
	precision  int

	originX float64
	originY float64
}

// Open reads the raster header from r.
func Open(r io.ReaderAt, opts ...Option) (*Table, error) {
	t := &Table{
		r:          r,
		cropTop:    grid.DefaultCropTopDegrees,
		cropBottom: grid.DefaultCropBotDegrees,
	}
	if err := options.Apply(t, opts...); err != nil {
		return nil, err
	}

	buf := make([]byte, section.HeaderSize)
	if n, err := r.ReadAt(buf, 0); n < len(buf) {
		if err == nil || err == io.EOF {
			return nil, errs.ErrInvalidHeaderSize
		}
		return nil, errs.IO("read header", err)
	}

	header, err := section.ParseRasterHeader(buf)
	if err != nil {
		return nil, err
	}
	if header.BitDepth != format.BitDepth {
		return nil, fmt.Errorf("%w: %d", errs.ErrUnsupportedDepth, header.BitDepth)
	}
	t.header = header

	// The origin sits off-centre vertically because the northern crop is
	// smaller than the southern one.
	span := float64(180 - t.cropTop - t.cropBottom)
	t.originX = math.Floor(float64(header.Width) / 2)
	t.originY = math.Floor(float64(header.Height) / span * float64(90-t.cropTop))

	return t, nil
}

// OpenFile opens the raster file at path. Close releases it.
func OpenFile(path string, opts ...Option) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.IO("open raster", err)
	}

	t, err := Open(f, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	t.closer = f

	return t, nil
}

// Close releases the file opened by OpenFile.
func (t *Table) Close() error {
	if t.closer == nil {
		return nil
	}

	return t.closer.Close()
}

// Header returns the parsed raster header.
func (t *Table) Header() *section.RasterHeader {
	return t.header
}

// Origin returns the pixel holding latitude 0, longitude 0.
func (t *Table) Origin() (x, y int) {
	return int(t.originX), int(t.originY)
}

// Offset returns the payload offset of the pixel covering lat, lon.
// Locations in the cropped bands, or otherwise outside the payload, fail
// with ErrOutOfBounds.
func (t *Table) Offset(lat, lon float64) (int64, error) {
	width := float64(t.header.Width)
	height := float64(t.header.Height)
	span := float64(180 - t.cropTop - t.cropBottom)

	x := math.Floor(t.originX + width*lon/360)
	y := math.Floor(t.originY - height*lat/span)
	offset := y*width + x

	if math.IsNaN(offset) || offset < 0 || offset >= width*height {
		return 0, fmt.Errorf("%w: %g, %g", errs.ErrOutOfBounds, lat, lon)
	}

	return int64(offset), nil
}

// AnnualETo returns the annual value stored for lat, lon in header units.
func (t *Table) AnnualETo(lat, lon float64) (float64, error) {
	offset, err := t.Offset(lat, lon)
	if err != nil {
		return 0, err
	}

	var b [1]byte
	if n, err := t.r.ReadAt(b[:], section.PayloadOffset+offset); n != 1 {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return 0, errs.IO(fmt.Sprintf("read pixel at offset %d", offset), err)
	}
	if b[0] == format.Invalid {
		return 0, fmt.Errorf("%w: %g, %g", errs.ErrDataUnavailable, lat, lon)
	}

	return float64(b[0])*float64(t.header.ScalingFactor) + float64(t.header.MinimumValue), nil
}

// DailyETo returns the average daily value for lat, lon, rounded to the
// configured precision.
func (t *Table) DailyETo(lat, lon float64) (float64, error) {
	annual, err := t.AnnualETo(lat, lon)
	if err != nil {
		return 0, err
	}

	return round(annual/DaysPerYear, t.precision), nil
}

// round keeps n significant digits.
func round(v float64, n int) float64 {
	if n == 0 || v == 0 {
		return v
	}

	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', n, 64), 64)
	if err != nil {
		return v
	}

	return r
}
