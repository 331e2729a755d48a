package hash

import (
	"io"

	"github.com/cespare/xxhash/v2"
)

// Sum computes the xxHash64 of data.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Digest is a streaming xxHash64 that can be placed behind a reader or
// writer to fingerprint a raster while it is copied.
type Digest struct {
	d *xxhash.Digest
	n int64
}

// NewDigest creates an empty Digest.
func NewDigest() *Digest {
	return &Digest{d: xxhash.New()}
}

// Write never fails.
func (d *Digest) Write(p []byte) (int, error) {
	d.n += int64(len(p))
	return d.d.Write(p)
}

// Sum64 returns the hash of everything written so far.
func (d *Digest) Sum64() uint64 {
	return d.d.Sum64()
}

// Len returns the number of bytes hashed.
func (d *Digest) Len() int64 {
	return d.n
}

// Reset clears the digest for reuse.
func (d *Digest) Reset() {
	d.d.Reset()
	d.n = 0
}

// TeeReader returns a reader that hashes everything read from r into d.
func (d *Digest) TeeReader(r io.Reader) io.Reader {
	return io.TeeReader(r, d)
}

// SumReader hashes r until EOF.
func SumReader(r io.Reader) (uint64, int64, error) {
	d := NewDigest()
	n, err := io.Copy(d, r)
	if err != nil {
		return 0, n, err
	}

	return d.Sum64(), n, nil
}
