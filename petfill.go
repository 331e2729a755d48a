// Package petfill turns the global MOD16A3 potential evapotranspiration
// raster into a compact 8-bit baseline ETo dataset.
//
// The 16-bit source is reduced to 8 bits using its valid value range, then
// invalid land pixels are filled by repeated passes of a weighted 5×5
// neighbour interpolation that never crosses into water. The result is
// queried per location through the lookup package.
//
// # Basic Usage
//
// Building the dataset with settings from the environment:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := petfill.Build(ctx, cfg)
//
// Querying it:
//
//	eto, err := petfill.Lookup("Baseline_ETo_Data.bin", 40.7, -74.0)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the stage
// packages (scan, quantize, fill, pass, lookup) and the pipeline that
// chains them. Use those packages directly for fine-grained control.
package petfill

import (
	"context"
	"io"

	"github.com/baseline-eto/petfill/config"
	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/fill"
	"github.com/baseline-eto/petfill/grid"
	"github.com/baseline-eto/petfill/lookup"
	"github.com/baseline-eto/petfill/mask"
	"github.com/baseline-eto/petfill/pipeline"
	"github.com/baseline-eto/petfill/quantize"
	"github.com/baseline-eto/petfill/scan"
)

// DefaultPrecision is the number of significant digits Lookup returns.
const DefaultPrecision = 3

// Build runs the complete pipeline described by cfg.
func Build(ctx context.Context, cfg *config.Config, opts ...pipeline.Option) (*pipeline.Result, error) {
	p, err := pipeline.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	return p.Run(ctx)
}

// Reduce scans src for its valid range, rewinds it and writes the quantized
// raster to dst.
func Reduce(src io.ReadSeeker, dst io.Writer, g grid.Geometry, opts ...scan.Option) (scan.Bounds, error) {
	bounds, err := scan.Scan(src, g, opts...)
	if err != nil {
		return bounds, err
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return bounds, errs.IO("rewind raw raster", err)
	}

	if _, err := quantize.Quantize(src, dst, g, bounds); err != nil {
		return bounds, err
	}

	return bounds, nil
}

// FillPass runs a single interpolation pass with the mask held in m.
func FillPass(src io.Reader, srcSize int64, dst io.Writer, m io.ReaderAt, maskSize int64, g grid.Geometry, opts ...fill.Option) (fill.Statistics, error) {
	engine, err := fill.New(g, mask.NewReader(m, maskSize, g), opts...)
	if err != nil {
		return fill.Statistics{}, err
	}

	return engine.Pass(src, srcSize, dst)
}

// Lookup returns the average daily ETo at lat, lon from the raster at path,
// rounded to DefaultPrecision significant digits.
func Lookup(path string, lat, lon float64) (float64, error) {
	table, err := lookup.OpenFile(path, lookup.WithPrecision(DefaultPrecision))
	if err != nil {
		return 0, err
	}
	defer table.Close()

	return table.DailyETo(lat, lon)
}
