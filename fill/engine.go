// Package fill implements the mask-constrained neighbour interpolation that
// fills invalid pixels of a quantized raster.
//
// One call to (*Engine).Pass streams a complete raster top to bottom through
// a five-row sliding window and writes a new, independent raster. An invalid
// land pixel takes the weighted mean of the valid pixels in its 5×5
// neighbourhood, each weighted 5 minus its Manhattan distance, provided the
// summed weight exceeds the threshold. Water pixels are copied through.
//
// Repeating passes grows the filled area inwards from the data edges:
//
//	engine, _ := fill.New(grid.Default(), maskReader)
//	stats, err := engine.Pass(in, inSize, out)
package fill

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/format"
	"github.com/baseline-eto/petfill/grid"
	"github.com/baseline-eto/petfill/internal/options"
	"github.com/baseline-eto/petfill/internal/pool"
	"github.com/baseline-eto/petfill/mask"
	"github.com/baseline-eto/petfill/section"
)

// DefaultWeightThreshold is the summed neighbour weight an interpolated value
// must exceed to be accepted, roughly three adjacent valid neighbours.
const DefaultWeightThreshold = 11

// MaskSource supplies the mask row covering a raster row.
// *mask.Reader implements it.
type MaskSource interface {
	ReadRow(y int) ([]byte, error)
}

// Statistics counts pixel outcomes over one pass.
type Statistics struct {
	// Filled is the number of invalid land pixels that received a value.
	Filled uint64
	// Unfilled is the number of invalid land pixels left invalid.
	Unfilled uint64
	// Water is the number of pixels copied through because the mask marks water.
	Water uint64
	// Retained is the number of land pixels that were already valid.
	Retained uint64
}

// Total returns the number of pixels accounted for.
func (s Statistics) Total() uint64 {
	return s.Filled + s.Unfilled + s.Water + s.Retained
}

func (s *Statistics) add(o Statistics) {
	s.Filled += o.Filled
	s.Unfilled += o.Unfilled
	s.Water += o.Water
	s.Retained += o.Retained
}

// Option configures an Engine.
type Option = options.Option[*Engine]

// WithWeightThreshold overrides DefaultWeightThreshold.
func WithWeightThreshold(threshold int) Option {
	return options.New(func(e *Engine) error {
		if threshold < 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidThreshold, threshold)
		}
		e.threshold = threshold

		return nil
	})
}

// WithWorkers splits the columns of each row across n goroutines. Rows are
// still processed in order and the output is identical for any n.
func WithWorkers(n int) Option {
	return options.New(func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("workers must be positive, got %d", n)
		}
		e.workers = n

		return nil
	})
}

// WithProgress registers a callback invoked before each row is processed.
func WithProgress(fn func(row int)) Option {
	return options.NoError(func(e *Engine) {
		e.progress = fn
	})
}

// Engine runs interpolation passes for one geometry and mask.
// An Engine may run many passes, one at a time.
type Engine struct {
	g         grid.Geometry
	mask      MaskSource
	threshold int
	workers   int
	progress  func(row int)
}

// New creates an Engine.
func New(g grid.Geometry, m MaskSource, opts ...Option) (*Engine, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		g:         g,
		mask:      m,
		threshold: DefaultWeightThreshold,
		workers:   1,
	}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

// Pass reads one quantized raster of srcSize bytes from src and writes the
// interpolated raster to dst.
//
// Nothing is written when srcSize or the header dimensions disagree with the
// geometry (ErrSizeMismatch). Read, write and mask failures abort the pass
// with an *errs.IOError; the partial output must then be discarded.
func (e *Engine) Pass(src io.Reader, srcSize int64, dst io.Writer) (Statistics, error) {
	var stats Statistics

	width, height := e.g.Width, e.g.Height
	expected := section.HeaderSize + e.g.QuantizedPayloadSize()
	if srcSize != expected {
		return stats, fmt.Errorf("%w: input is %d bytes, expected %d", errs.ErrSizeMismatch, srcSize, expected)
	}

	br := bufio.NewReaderSize(src, 4*width)
	header, err := section.ReadRasterHeader(br)
	if err != nil {
		return stats, err
	}
	if header.Width != uint32(width) || header.Height != uint32(height) {
		return stats, fmt.Errorf("%w: header is %dx%d, expected %dx%d",
			errs.ErrSizeMismatch, header.Width, header.Height, width, height)
	}
	if header.BitDepth != format.BitDepth {
		return stats, fmt.Errorf("%w: %d", errs.ErrUnsupportedDepth, header.BitDepth)
	}

	bw := bufio.NewWriterSize(dst, 4*width)
	if _, err := header.WriteTo(bw); err != nil {
		return stats, err
	}

	var w window
	for i := range w.rows {
		row, release := pool.GetRow(width)
		defer release()
		w.rows[i] = row
	}
	out, releaseOut := pool.GetRow(width)
	defer releaseOut()

	// Rows 0 and 1 go to the two newest slots; the first rotation moves
	// row 0 into the centre.
	for i := 0; i < min(radius, height); i++ {
		if _, err := io.ReadFull(br, w.rows[centerSlot+1+i]); err != nil {
			return stats, errs.IO(fmt.Sprintf("read input row %d", i), err)
		}
	}

	for y := 0; y < height; y++ {
		if e.progress != nil {
			e.progress(y)
		}

		maskRow, err := e.mask.ReadRow(y)
		if err != nil {
			return stats, err
		}

		w.rotate()
		if y < height-radius {
			if _, err := io.ReadFull(br, w.rows[windowRows-1]); err != nil {
				return stats, errs.IO(fmt.Sprintf("read input row %d", y+radius), err)
			}
		}

		stats.add(e.fillRow(&w, maskRow, y, out))

		if _, err := bw.Write(out); err != nil {
			return stats, errs.IO(fmt.Sprintf("write row %d", y), err)
		}
	}

	if err := bw.Flush(); err != nil {
		return stats, errs.IO("flush output", err)
	}

	return stats, nil
}

// fillRow computes output row y. Every column reads only the window and
// writes only its own output cell, so column spans can run concurrently.
func (e *Engine) fillRow(w *window, maskRow []byte, y int, out []byte) Statistics {
	width := e.g.Width
	if e.workers == 1 || width < 2*e.workers {
		return e.fillSpan(w, maskRow, y, out, 0, width)
	}

	span := (width + e.workers - 1) / e.workers
	partial := make([]Statistics, e.workers)

	var wg sync.WaitGroup
	for i := range e.workers {
		x0 := i * span
		x1 := min(x0+span, width)
		if x0 >= x1 {
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			partial[i] = e.fillSpan(w, maskRow, y, out, x0, x1)
		}()
	}
	wg.Wait()

	var stats Statistics
	for _, p := range partial {
		stats.add(p)
	}

	return stats
}

func (e *Engine) fillSpan(w *window, maskRow []byte, y int, out []byte, x0, x1 int) Statistics {
	var stats Statistics

	hf := e.g.HorizontalFactor()
	center := w.center()

	for x := x0; x < x1; x++ {
		pixel := center[x]

		switch {
		case !mask.IsLand(maskRow[x/hf]):
			stats.Water++
		case pixel != format.Invalid:
			stats.Retained++
		default:
			totalWeight, totalValue := w.accumulate(x, y, e.g.Width, e.g.Height)
			if totalWeight > e.threshold {
				pixel = uint8(totalValue / totalWeight)
				stats.Filled++
			} else {
				stats.Unfilled++
			}
		}

		out[x] = pixel
	}

	return stats
}
