// Package pipeline wires the stages that turn a MOD16A3 PET file into the
// filled 8-bit raster: optional clean-up, range scan, quantization, the
// interpolation passes and an optional compressed archive of the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/baseline-eto/petfill/archive"
	"github.com/baseline-eto/petfill/compress"
	"github.com/baseline-eto/petfill/config"
	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/fill"
	"github.com/baseline-eto/petfill/grid"
	"github.com/baseline-eto/petfill/internal/logging"
	"github.com/baseline-eto/petfill/internal/options"
	"github.com/baseline-eto/petfill/mask"
	"github.com/baseline-eto/petfill/pass"
	"github.com/baseline-eto/petfill/quantize"
	"github.com/baseline-eto/petfill/scan"
)

// progressInterval is the number of rows between progress log lines.
const progressInterval = 1000

// Result summarises a Run.
type Result struct {
	// Bounds used for quantization; zero when an existing input was reused
	// and no bounds were configured.
	Bounds scan.Bounds
	// Quantized is false when an existing input raster was reused.
	Quantized bool
	Report    pass.Report
	// Final is the path of the finished raster.
	Final string
	// Archive is set when an archive was written.
	Archive *compress.CompressionStats
}

// Option configures a Pipeline.
type Option = options.Option[*Pipeline]

// WithGeometry overrides grid.Default.
func WithGeometry(g grid.Geometry) Option {
	return options.New(func(p *Pipeline) error {
		if err := g.Validate(); err != nil {
			return err
		}
		p.g = g

		return nil
	})
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *logging.Logger) Option {
	return options.NoError(func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	})
}

// Pipeline runs the stages for one configuration.
type Pipeline struct {
	cfg    *config.Config
	g      grid.Geometry
	logger *logging.Logger
}

// New creates a Pipeline. cfg must have been validated.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:    cfg,
		g:      grid.Default(),
		logger: logging.Discard(),
	}
	if err := options.Apply(p, opts...); err != nil {
		return nil, err
	}

	return p, nil
}

// Run executes every configured stage in order. ctx is checked between
// stages and between passes.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	cfg := p.cfg
	result := &Result{Final: cfg.Paths.Input}

	if cfg.Run.Clean {
		p.logger.Info("Cleaning...")
		for _, path := range []string{cfg.Paths.Input, cfg.Paths.Output} {
			removed, err := removeIfExists(path)
			if err != nil {
				return result, err
			}
			if removed {
				p.logger.Info("Removed file %s", path)
			}
		}
	}

	if _, err := os.Stat(cfg.Paths.Input); err == nil {
		p.logger.Info("Input file %q exists, skipping bit depth reduction", cfg.Paths.Input)
		if cfg.Bounds != nil {
			result.Bounds = *cfg.Bounds
		}
	} else {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		bounds, err := p.bounds()
		if err != nil {
			return result, err
		}
		result.Bounds = bounds

		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := p.quantize(bounds); err != nil {
			return result, err
		}
		result.Quantized = true
	}

	if cfg.Run.Passes > 0 {
		report, err := p.fill(ctx)
		result.Report = report
		if err != nil {
			return result, err
		}
		result.Final = cfg.Paths.Output
	}

	if cfg.Archive.Path != "" {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		stats, err := archive.PackFile(result.Final, cfg.Archive.Path, cfg.CompressionType())
		if err != nil {
			return result, fmt.Errorf("archive %s: %w", result.Final, err)
		}
		result.Archive = &stats
		p.logger.Info("Archived %s to %s (%s, %d -> %d bytes, %.1f%% saved)",
			result.Final, cfg.Archive.Path, stats.Algorithm, stats.OriginalSize, stats.CompressedSize, stats.SpaceSavings())
	}

	return result, nil
}

func (p *Pipeline) bounds() (scan.Bounds, error) {
	if p.cfg.Bounds != nil {
		return *p.cfg.Bounds, nil
	}

	f, err := os.Open(p.cfg.Paths.MOD16)
	if err != nil {
		return scan.Bounds{}, errs.IO("open MOD16 file", err)
	}
	defer f.Close()

	opts := []scan.Option{scan.WithProgress(p.progress("Finding pixel range"))}
	if p.cfg.Run.FullRowScan {
		opts = append(opts, scan.WithFullRow())
	}

	start := time.Now()
	bounds, err := scan.Scan(f, p.g, opts...)
	if err != nil {
		return scan.Bounds{}, fmt.Errorf("scan %s: %w", p.cfg.Paths.MOD16, err)
	}
	p.logger.Info("Pixel range %s, scale %g (%s)", bounds, bounds.Scale(), time.Since(start).Round(time.Millisecond))

	return bounds, nil
}

func (p *Pipeline) quantize(bounds scan.Bounds) error {
	src, err := os.Open(p.cfg.Paths.MOD16)
	if err != nil {
		return errs.IO("open MOD16 file", err)
	}
	defer src.Close()

	dst, err := os.Create(p.cfg.Paths.Input)
	if err != nil {
		return errs.IO("create input", err)
	}

	start := time.Now()
	n, err := quantize.Quantize(src, dst, p.g, bounds, quantize.WithProgress(p.progress("Reducing bit depth")))
	if closeErr := dst.Close(); err == nil && closeErr != nil {
		err = errs.IO("close input", closeErr)
	}
	if err != nil {
		// A partial raster would be mistaken for a finished one next run.
		_, rmErr := removeIfExists(p.cfg.Paths.Input)
		return errors.Join(fmt.Errorf("quantize %s: %w", p.cfg.Paths.MOD16, err), rmErr)
	}
	p.logger.Info("Wrote %s (%d bytes) in %s", p.cfg.Paths.Input, n, time.Since(start).Round(time.Millisecond))

	return nil
}

func (p *Pipeline) fill(ctx context.Context) (pass.Report, error) {
	m, err := mask.Open(p.cfg.Paths.Mask, p.g)
	if err != nil {
		return pass.Report{}, err
	}
	defer m.Close()

	engine, err := fill.New(p.g, m,
		fill.WithWorkers(p.cfg.Run.Workers),
		fill.WithProgress(p.progress("Filling missing pixels")),
	)
	if err != nil {
		return pass.Report{}, err
	}

	store := pass.FileStore{InputPath: p.cfg.Paths.Input, OutputPath: p.cfg.Paths.Output}
	runner, err := pass.NewRunner(engine, store,
		pass.WithLogger(p.logger),
		pass.WithStopWhenStable(p.cfg.Run.StopWhenStable),
	)
	if err != nil {
		return pass.Report{}, err
	}

	return runner.Run(ctx, p.cfg.Run.Passes)
}

// progress returns a row callback that logs every progressInterval rows.
func (p *Pipeline) progress(stage string) func(row int) {
	if !p.logger.Enabled(logging.LevelDebug) {
		return nil
	}

	height := p.g.Height

	return func(row int) {
		if row%progressInterval == 0 {
			p.logger.Debug("%s: row %d/%d", stage, row, height)
		}
	}
}

func removeIfExists(path string) (bool, error) {
	err := os.Remove(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, errs.IO("remove "+path, err)
	}
}
