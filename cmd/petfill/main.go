package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"

	"github.com/baseline-eto/petfill/archive"
	"github.com/baseline-eto/petfill/config"
	"github.com/baseline-eto/petfill/format"
	"github.com/baseline-eto/petfill/internal/logging"
	"github.com/baseline-eto/petfill/lookup"
	"github.com/baseline-eto/petfill/pipeline"
)

const (
	appName    = "petfill"
	appVersion = "v1.0.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			logging.Error("%v", err)
		}
		stop()
		os.Exit(1)
	}
}

// run dispatches a subcommand. Without one, or when the first argument is a
// flag, it builds the raster.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	command := "build"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	switch command {
	case "build":
		return runBuild(ctx, args)
	case "lookup":
		return runLookup(args, stdout)
	case "pack":
		return runPack(args, stdout)
	case "unpack":
		return runUnpack(args, stdout)
	case "version":
		fmt.Fprintf(stdout, "%s %s\n", appName, appVersion)
		return nil
	case "help":
		showHelp(stdout)
		return nil
	default:
		showHelp(stdout)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runBuild(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	minFlag := fs.Uint64("min", 0, "minimum valid pixel value; skips the range scan (requires -max)")
	maxFlag := fs.Uint64("max", 0, "maximum valid pixel value; skips the range scan (requires -min)")
	mod16 := fs.String("mod16", "", "MOD16A3 PET input file")
	input := fs.String("input", "", "intermediate raster, created if missing")
	output := fs.String("output", "", "final raster")
	maskPath := fs.String("mask", "", "land/water mask")
	passes := fs.Int("passes", 0, "interpolation passes; 0 only reduces the bit depth")
	clean := fs.Bool("clean", false, "remove the input and output rasters first")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	workers := fs.Int("workers", 0, "goroutines per row")
	fullRow := fs.Bool("full-row-scan", false, "scan every column when finding the pixel range")
	archivePath := fs.String("archive", "", "also write a compressed archive of the result")
	compression := fs.String("compression", "", "archive compression (none, zstd, s2, lz4)")
	stopWhenStable := fs.Bool("stop-when-stable", true, "stop once a pass changes nothing")

	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := config.LoadOptions{
		MOD16:       strings.TrimSpace(*mod16),
		Input:       strings.TrimSpace(*input),
		Output:      strings.TrimSpace(*output),
		Mask:        strings.TrimSpace(*maskPath),
		FullRowScan: *fullRow,
		Clean:       *clean,
		Archive:     strings.TrimSpace(*archivePath),
		Compression: strings.TrimSpace(*compression),
		LogLevel:    strings.TrimSpace(*logLevel),
	}

	// Only flags given on the command line override the environment.
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min":
			v, err := toUint32(*minFlag)
			parseErr = errors.Join(parseErr, err)
			opts.Min = &v
		case "max":
			v, err := toUint32(*maxFlag)
			parseErr = errors.Join(parseErr, err)
			opts.Max = &v
		case "passes":
			opts.Passes = passes
		case "workers":
			opts.Workers = workers
		case "stop-when-stable":
			opts.StopWhenStable = stopWhenStable
		}
	})
	if parseErr != nil {
		return parseErr
	}

	cfg, err := config.LoadWithOverrides(opts)
	if err != nil {
		return err
	}

	logger := logging.Default()
	logger.SetLevelFromString(cfg.Logging.Level)

	p, err := pipeline.New(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("Finished: %s", result.Final)

	return nil
}

func runLookup(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	file := fs.String("file", config.DefaultOutput, "final raster")
	lat := fs.Float64("lat", 0, "latitude in degrees")
	lon := fs.Float64("lon", 0, "longitude in degrees")
	precision := fs.Int("precision", 3, "significant digits, 0 for full precision")

	if err := fs.Parse(args); err != nil {
		return err
	}

	table, err := lookup.OpenFile(*file, lookup.WithPrecision(*precision))
	if err != nil {
		return err
	}
	defer table.Close()

	eto, err := table.DailyETo(*lat, *lon)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, eto)

	return nil
}

func runPack(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pack", flag.ContinueOnError)
	in := fs.String("in", config.DefaultOutput, "raster to pack")
	out := fs.String("out", "", "archive path (default: input plus the codec extension)")
	compression := fs.String("compression", config.DefaultCompression, "none, zstd, s2 or lz4")

	if err := fs.Parse(args); err != nil {
		return err
	}

	typ, ok := format.ParseCompressionType(*compression)
	if !ok {
		return fmt.Errorf("invalid compression: %s", *compression)
	}
	if *out == "" {
		*out = *in + typ.Extension()
	}

	stats, err := archive.PackFile(*in, *out, typ)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d -> %d bytes (%s, %.1f%% saved)\n",
		*out, stats.OriginalSize, stats.CompressedSize, stats.Algorithm, stats.SpaceSavings())

	return nil
}

func runUnpack(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("unpack", flag.ContinueOnError)
	in := fs.String("in", "", "archive to unpack")
	out := fs.String("out", config.DefaultOutput, "restored raster")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("unpack: -in is required")
	}

	header, err := archive.UnpackFile(*in, *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d bytes (%s, checksum %016x)\n", *out, header.RawSize, header.Compression, header.Checksum)

	return nil
}

func toUint32(v uint64) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("value %d does not fit in 32 bits", v)
	}

	return uint32(v), nil
}

func showHelp(w io.Writer) {
	fmt.Fprintln(w, appName, "- fill missing pixels of the MOD16A3 PET raster")
	fmt.Fprintln(w, "USAGE: petfill [build] [options]")
	fmt.Fprintln(w, "       petfill lookup -lat 40.7 -lon -74.0 [-file Baseline_ETo_Data.bin]")
	fmt.Fprintln(w, "       petfill pack [-in raster] [-out archive] [-compression zstd]")
	fmt.Fprintln(w, "       petfill unpack -in archive [-out raster]")
	fmt.Fprintln(w, "BUILD OPTIONS:")
	fmt.Fprintln(w, "  -min, -max          Pixel range; skips the scan (both or neither)")
	fmt.Fprintln(w, "  -mod16              MOD16A3 PET file (default "+config.DefaultMOD16+")")
	fmt.Fprintln(w, "  -input              Intermediate raster (default "+config.DefaultInput+")")
	fmt.Fprintln(w, "  -output             Final raster (default "+config.DefaultOutput+")")
	fmt.Fprintln(w, "  -mask               Land/water mask (default "+config.DefaultMask+")")
	fmt.Fprintln(w, "  -passes             Interpolation passes (default 20)")
	fmt.Fprintln(w, "  -clean              Remove input and output rasters first")
	fmt.Fprintln(w, "  -workers            Goroutines per row (default 1)")
	fmt.Fprintln(w, "  -full-row-scan      Scan every column for the pixel range")
	fmt.Fprintln(w, "  -stop-when-stable   Stop once a pass changes nothing (default true)")
	fmt.Fprintln(w, "  -archive            Write a compressed archive of the result")
	fmt.Fprintln(w, "  -compression        Archive compression: none, zstd, s2, lz4 (default zstd)")
	fmt.Fprintln(w, "  -log-level          Log level: debug, info, warn, error")
	fmt.Fprintln(w, "ENVIRONMENT VARIABLES: PETFILL_MOD16, PETFILL_INPUT, PETFILL_OUTPUT, PETFILL_MASK,")
	fmt.Fprintln(w, "  PETFILL_PASSES, PETFILL_WORKERS, PETFILL_FULL_ROW_SCAN, PETFILL_STOP_WHEN_STABLE,")
	fmt.Fprintln(w, "  PETFILL_ARCHIVE, PETFILL_ARCHIVE_COMPRESSION, PETFILL_LOG_LEVEL")
}
