// Package scan finds the quantization bounds of a raw MOD16A3 raster.
package scan

import (
	"bufio"
	"fmt"
	"io"

	"github.com/baseline-eto/petfill/endian"
	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/format"
	"github.com/baseline-eto/petfill/grid"
	"github.com/baseline-eto/petfill/internal/options"
	"github.com/baseline-eto/petfill/internal/pool"
)

// Bounds is the inclusive range of valid raw samples used for quantization.
type Bounds struct {
	Min uint32
	Max uint32
}

// Validate checks Max >= Min.
func (b Bounds) Validate() error {
	if b.Max < b.Min {
		return fmt.Errorf("%w: [%d, %d]", errs.ErrInvalidBounds, b.Min, b.Max)
	}

	return nil
}

// Scale returns the raw units per quantized code, (max-min+1)/256.
func (b Bounds) Scale() float32 {
	return float32(b.Max-b.Min+1) / 256.0
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%d, %d]", b.Min, b.Max)
}

// Option configures a scan.
type Option = options.Option[*scanner]

// WithFullRow scans every column instead of the first half of each row.
func WithFullRow() Option {
	return options.NoError(func(s *scanner) {
		s.fullRow = true
	})
}

// WithProgress registers a callback invoked before each row is read.
func WithProgress(fn func(row int)) Option {
	return options.NoError(func(s *scanner) {
		s.progress = fn
	})
}

type scanner struct {
	fullRow  bool
	progress func(row int)
}

// Scan streams g.Height rows of g.Width native-endian uint16 samples from r
// and returns the minimum and maximum sample at or below the invalid
// sentinel.
//
// By default only the first g.Width/2 samples of each row contribute, which
// keeps the bounds identical to those of the published data files; pass
// WithFullRow to consider every sample.
//
// Returns:
//   - Bounds: inclusive valid range
//   - error: ErrNoValidSamples when nothing is valid, *errs.IOError on read failure
func Scan(r io.Reader, g grid.Geometry, opts ...Option) (Bounds, error) {
	if err := g.Validate(); err != nil {
		return Bounds{}, err
	}

	s := &scanner{}
	if err := options.Apply(s, opts...); err != nil {
		return Bounds{}, err
	}

	columns := g.Width / 2
	if s.fullRow {
		columns = g.Width
	}

	raw, releaseRaw := pool.GetRow(g.Width * format.RawSampleSize)
	defer releaseRaw()
	samples, releaseSamples := pool.GetSampleRow(g.Width)
	defer releaseSamples()

	engine := endian.GetNativeEngine()
	br := bufio.NewReaderSize(r, len(raw))

	lo, hi := uint16(0xFFFF), uint16(0)
	found := false

	for y := 0; y < g.Height; y++ {
		if s.progress != nil {
			s.progress(y)
		}

		if _, err := io.ReadFull(br, raw); err != nil {
			return Bounds{}, errs.IO(fmt.Sprintf("read raw row %d", y), err)
		}
		endian.DecodeUint16s(engine, raw, samples)

		for _, p := range samples[:columns] {
			if p > format.RawInvalidThreshold {
				continue
			}
			lo = min(lo, p)
			hi = max(hi, p)
			found = true
		}
	}

	if !found {
		return Bounds{}, errs.ErrNoValidSamples
	}

	return Bounds{Min: uint32(lo), Max: uint32(hi)}, nil
}
