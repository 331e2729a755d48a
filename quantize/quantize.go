// Package quantize reduces a raw 16-bit MOD16A3 raster to 8-bit codes.
package quantize

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
	"github.com/baseline-eto/petfill/scan"
	"github.com/baseline-eto/petfill/section"
)

// Option configures a Quantize call.
type Option = options.Option[*quantizer]

// WithProgress registers a callback invoked before each row is processed.
func WithProgress(fn func(row int)) Option {
	return options.NoError(func(q *quantizer) {
		q.progress = fn
	})
}

type quantizer struct {
	progress func(row int)
}

// Code maps one raw sample to its quantized code.
//
// Samples above the invalid sentinel map to format.Invalid. Valid samples map
// to floor((p-min)/scale); samples below b.Min clamp to 0 and results above
// format.MaxCode clamp to it, so a valid sample never produces the invalid code.
func Code(p uint16, b scan.Bounds) uint8 {
	if p > format.RawInvalidThreshold {
		return format.Invalid
	}
	if uint32(p) <= b.Min {
		return 0
	}

	code := uint32(float32(uint32(p)-b.Min) / b.Scale())
	if code > uint32(format.MaxCode) {
		return format.MaxCode
	}

	return uint8(code)
}

// Header builds the raster header written in front of quantized data.
func Header(g grid.Geometry, b scan.Bounds) *section.RasterHeader {
	return section.NewRasterHeader(uint32(g.Width), uint32(g.Height), b.Min, b.Scale())
}

// Quantize streams g.Height rows of native-endian uint16 samples from src
// and writes a header followed by one code per sample to dst.
//
// Rows are processed strictly top to bottom and dst is flushed before
// returning. On success the returned count is exactly 32 + width*height.
// There is no retry; any read or write failure aborts the call.
func Quantize(src io.Reader, dst io.Writer, g grid.Geometry, b scan.Bounds, opts ...Option) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	q := &quantizer{}
	if err := options.Apply(q, opts...); err != nil {
		return 0, err
	}

	raw, releaseRaw := pool.GetRow(g.Width * format.RawSampleSize)
	defer releaseRaw()
	samples, releaseSamples := pool.GetSampleRow(g.Width)
	defer releaseSamples()
	out, releaseOut := pool.GetRow(g.Width)
	defer releaseOut()

	engine := endian.GetNativeEngine()
	br := bufio.NewReaderSize(src, len(raw))
	bw := bufio.NewWriterSize(dst, 4*len(out))

	total, err := Header(g, b).WriteTo(bw)
	if err != nil {
		return total, err
	}

	for y := 0; y < g.Height; y++ {
		if q.progress != nil {
			q.progress(y)
		}

		if _, err := io.ReadFull(br, raw); err != nil {
			return total, errs.IO(fmt.Sprintf("read raw row %d", y), err)
		}
		endian.DecodeUint16s(engine, raw, samples)

		for x, p := range samples {
			out[x] = Code(p, b)
		}

		n, err := bw.Write(out)
		total += int64(n)
		if err != nil {
			return total, errs.IO(fmt.Sprintf("write row %d", y), err)
		}
	}

	if err := bw.Flush(); err != nil {
		return total, errs.IO("flush output", err)
	}

	return total, nil
}
