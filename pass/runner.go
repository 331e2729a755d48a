// Package pass runs a sequence of interpolation passes over a double-buffered
// pair of rasters and reports how the statistics moved between the first
// and the last pass.
package pass

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/fill"
	"github.com/baseline-eto/petfill/internal/hash"
	"github.com/baseline-eto/petfill/internal/logging"
	"github.com/baseline-eto/petfill/internal/options"
)

// MaxPasses bounds a single Run.
const MaxPasses = 1000

// Filler runs one pass. *fill.Engine implements it.
type Filler interface {
	Pass(src io.Reader, srcSize int64, dst io.Writer) (fill.Statistics, error)
}

// PassResult describes one completed pass.
type PassResult struct {
	Index        int
	Statistics   fill.Statistics
	Elapsed      time.Duration
	InputDigest  uint64
	OutputDigest uint64
}

// Unchanged reports whether the pass reproduced its input exactly.
func (r PassResult) Unchanged() bool {
	return r.InputDigest == r.OutputDigest
}

// Delta is the signed difference first - last of the pass statistics.
// Filled and Unfilled are normally positive; Water never changes.
type Delta struct {
	Filled   int64
	Unfilled int64
	Water    int64
	Retained int64
}

// NewDelta computes first - last without clamping.
func NewDelta(first, last fill.Statistics) Delta {
	return Delta{
		Filled:   int64(first.Filled) - int64(last.Filled),
		Unfilled: int64(first.Unfilled) - int64(last.Unfilled),
		Water:    int64(first.Water) - int64(last.Water),
		Retained: int64(first.Retained) - int64(last.Retained),
	}
}

func (d Delta) String() string {
	return fmt.Sprintf("Δ filled: %d, Δ unfilled: %d, Δ water: %d", d.Filled, d.Unfilled, d.Water)
}

// Report summarises a Run.
type Report struct {
	Passes []PassResult
	Delta  Delta
	// Stable is set when the sequence ended because a pass changed nothing.
	Stable bool
}

// Last returns the result of the final pass, if any ran.
func (r Report) Last() (PassResult, bool) {
	if len(r.Passes) == 0 {
		return PassResult{}, false
	}

	return r.Passes[len(r.Passes)-1], true
}

// Option configures a Runner.
type Option = options.Option[*Runner]

// WithLogger sets the logger for per-pass summaries. The default discards.
func WithLogger(l *logging.Logger) Option {
	return options.NoError(func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	})
}

// WithStopWhenStable ends the sequence after a pass whose output equals its
// input. Enabled by default.
func WithStopWhenStable(stop bool) Option {
	return options.NoError(func(r *Runner) {
		r.stopWhenStable = stop
	})
}

// Runner executes passes strictly one after another.
type Runner struct {
	filler         Filler
	store          Store
	logger         *logging.Logger
	stopWhenStable bool
}

// NewRunner creates a Runner.
func NewRunner(filler Filler, store Store, opts ...Option) (*Runner, error) {
	r := &Runner{
		filler:         filler,
		store:          store,
		logger:         logging.Discard(),
		stopWhenStable: true,
	}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// Run executes up to passes passes. The output of pass i becomes the input
// of pass i+1; after the final pass the result stays in the store's output.
//
// ctx is checked between passes only. On error the report holds the passes
// that completed.
func (r *Runner) Run(ctx context.Context, passes int) (Report, error) {
	var report Report

	if passes < 0 || passes > MaxPasses {
		return report, fmt.Errorf("%w: %d (limit %d)", errs.ErrTooManyPasses, passes, MaxPasses)
	}

	for i := range passes {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if i > 0 {
			if err := r.store.Promote(); err != nil {
				return report, err
			}
		}

		result, err := r.runOne(i)
		if err != nil {
			return report, fmt.Errorf("pass %d: %w", i+1, err)
		}
		report.Passes = append(report.Passes, result)

		s := result.Statistics
		r.logger.Info("Finished pass %d in %s. Filled: %d; Unfilled: %d; Water: %d; Retained: %d",
			i+1, result.Elapsed.Round(time.Millisecond), s.Filled, s.Unfilled, s.Water, s.Retained)

		if r.stopWhenStable && result.Unchanged() {
			report.Stable = true
			r.logger.Info("Pass %d changed nothing, stopping early", i+1)

			break
		}
	}

	if len(report.Passes) > 0 {
		last, _ := report.Last()
		report.Delta = NewDelta(report.Passes[0].Statistics, last.Statistics)
		r.logger.Info("%s", report.Delta)
	}

	return report, nil
}

func (r *Runner) runOne(index int) (PassResult, error) {
	result := PassResult{Index: index}

	in, size, err := r.store.OpenInput()
	if err != nil {
		return result, err
	}
	defer in.Close()

	out, err := r.store.CreateOutput()
	if err != nil {
		return result, err
	}

	inDigest := hash.NewDigest()
	outDigest := hash.NewDigest()

	start := time.Now()
	stats, err := r.filler.Pass(inDigest.TeeReader(in), size, io.MultiWriter(out, outDigest))
	closeErr := out.Close()
	if err != nil {
		return result, err
	}
	if closeErr != nil {
		return result, errs.IO("close output", closeErr)
	}

	result.Statistics = stats
	result.Elapsed = time.Since(start)
	result.InputDigest = inDigest.Sum64()
	result.OutputDigest = outDigest.Sum64()

	return result, nil
}
