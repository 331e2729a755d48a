// Package errs defines the error values shared by petfill packages.
//
// Every failure is fatal to the operation in progress (scan, quantize, one
// fill pass, one archive or lookup call). Callers distinguish kinds with
// errors.Is:
//
//	if errors.Is(err, errs.ErrSizeMismatch) {
//	    // input raster is truncated or from a different geometry
//	}
//
// Format problems (malformed header, wrong file size) additionally match
// ErrFormat, and every I/O failure matches ErrIO.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is the umbrella kind for malformed rasters and headers.
	ErrFormat = errors.New("format error")

	ErrInvalidHeaderSize  = fmt.Errorf("%w: invalid header size", ErrFormat)
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported format version", ErrFormat)
	ErrUnsupportedDepth   = fmt.Errorf("%w: unsupported bit depth", ErrFormat)
	ErrReservedTooWide    = fmt.Errorf("%w: reserved field too wide", ErrFormat)
	ErrInvalidBounds      = fmt.Errorf("%w: maximum is below minimum", ErrFormat)
	ErrInvalidMagicNumber = fmt.Errorf("%w: invalid magic number", ErrFormat)

	// ErrSizeMismatch reports a raster whose byte length or dimensions do
	// not match the configured geometry.
	ErrSizeMismatch = fmt.Errorf("%w: raster size mismatch", ErrFormat)

	// ErrNoValidSamples reports a range scan that found nothing at or below
	// the invalid sentinel, so no quantization bounds can be derived.
	ErrNoValidSamples = errors.New("no valid samples")

	// ErrIO is matched by every *IOError.
	ErrIO = errors.New("i/o error")

	ErrOffsetOutOfRange = errors.New("offset out of range")

	ErrInvalidGeometry    = errors.New("invalid geometry")
	ErrInvalidCompression = errors.New("invalid compression type")
	ErrChecksumMismatch   = errors.New("checksum mismatch")

	ErrOutOfBounds      = errors.New("location is out of bounds")
	ErrDataUnavailable  = errors.New("data is not available for this location")
	ErrTooManyPasses    = errors.New("pass count exceeds limit")
	ErrInvalidThreshold = errors.New("invalid weight threshold")
)

// IOError wraps an underlying read, write or seek failure.
type IOError struct {
	// Op names the failed operation, e.g. "read input row".
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports ErrIO as a match so callers need not type-assert.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// IO wraps err as an *IOError for op. It returns nil when err is nil.
func IO(op string, err error) error {
	if err == nil {
		return nil
	}

	return &IOError{Op: op, Err: err}
}
