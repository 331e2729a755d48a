// Package archive packs a raster file into a checksummed, compressed
// artifact and restores it.
//
// An archive is a 32-byte section.ArchiveHeader followed by one compressed
// stream of the complete raster file, header included. The header records
// the codec, the unpacked length and its xxHash64, which Unpack verifies.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/baseline-eto/petfill/compress"
	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/format"
	"github.com/baseline-eto/petfill/internal/hash"
	"github.com/baseline-eto/petfill/section"
)

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}

// Pack writes src as an archive compressed with typ to dst.
//
// src is read twice: once to fingerprint it and once to compress it.
func Pack(dst io.Writer, src io.ReadSeeker, typ format.CompressionType) (compress.CompressionStats, error) {
	stats := compress.CompressionStats{Algorithm: typ}

	codec, err := compress.GetCodec(typ)
	if err != nil {
		return stats, err
	}

	checksum, size, err := hash.SumReader(src)
	if err != nil {
		return stats, errs.IO("fingerprint raster", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return stats, errs.IO("rewind raster", err)
	}

	header := section.ArchiveHeader{Compression: typ, RawSize: uint64(size), Checksum: checksum}
	if _, err := dst.Write(header.Bytes()); err != nil {
		return stats, errs.IO("write archive header", err)
	}

	start := time.Now()
	out := &countingWriter{w: dst}

	zw, err := codec.NewWriter(out)
	if err != nil {
		return stats, err
	}
	copied, err := io.Copy(zw, src)
	if err != nil {
		_ = zw.Close()
		return stats, errs.IO("compress raster", err)
	}
	if err := zw.Close(); err != nil {
		return stats, errs.IO("finish stream", err)
	}
	if copied != size {
		return stats, fmt.Errorf("%w: raster changed while packing (%d bytes, then %d)", errs.ErrSizeMismatch, size, copied)
	}

	stats.OriginalSize = size
	stats.CompressedSize = section.ArchiveHeaderSize + out.n
	stats.CompressionTimeNs = time.Since(start).Nanoseconds()

	return stats, nil
}

// Unpack restores the raster stored in the archive read from src into dst.
//
// It fails with ErrChecksumMismatch when the restored bytes do not match the
// length or digest recorded in the header; dst then holds a partial copy.
func Unpack(dst io.Writer, src io.Reader) (*section.ArchiveHeader, error) {
	header, err := section.ReadArchiveHeader(src)
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(header.Compression)
	if err != nil {
		return header, err
	}

	zr, err := codec.NewReader(src)
	if err != nil {
		return header, errs.IO("open stream", err)
	}
	defer zr.Close()

	digest := hash.NewDigest()

	// One byte past the recorded size is enough to detect a longer stream.
	limited := io.LimitReader(zr, int64(header.RawSize)+1)
	if _, err := io.Copy(io.MultiWriter(dst, digest), limited); err != nil {
		return header, errs.IO("decompress raster", err)
	}

	if digest.Len() != int64(header.RawSize) {
		return header, fmt.Errorf("%w: restored %d bytes, expected %d", errs.ErrChecksumMismatch, digest.Len(), header.RawSize)
	}
	if sum := digest.Sum64(); sum != header.Checksum {
		return header, fmt.Errorf("%w: 0x%016x, expected 0x%016x", errs.ErrChecksumMismatch, sum, header.Checksum)
	}

	return header, nil
}

// PackFile packs the raster at srcPath into a new archive at dstPath.
func PackFile(srcPath, dstPath string, typ format.CompressionType) (compress.CompressionStats, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return compress.CompressionStats{Algorithm: typ}, errs.IO("open raster", err)
	}
	defer src.Close()

	return writeFile(dstPath, func(dst io.Writer) (compress.CompressionStats, error) {
		return Pack(dst, src, typ)
	})
}

// UnpackFile restores the archive at srcPath into dstPath.
// dstPath is removed again if the archive fails verification.
func UnpackFile(srcPath, dstPath string) (*section.ArchiveHeader, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return nil, errs.IO("open archive", err)
	}
	defer src.Close()

	return writeFile(dstPath, func(dst io.Writer) (*section.ArchiveHeader, error) {
		return Unpack(dst, src)
	})
}

func writeFile[T any](path string, fn func(io.Writer) (T, error)) (T, error) {
	f, err := os.Create(path)
	if err != nil {
		var zero T
		return zero, errs.IO("create "+path, err)
	}

	result, err := fn(f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = errs.IO("close "+path, closeErr)
	}
	if err != nil {
		err = errors.Join(err, removeQuietly(path))
	}

	return result, err
}

func removeQuietly(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errs.IO("remove "+path, err)
	}

	return nil
}
