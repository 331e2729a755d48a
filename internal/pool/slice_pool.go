package pool

import "sync"

// Row pools for the fixed-width buffers used while streaming rasters.
// A production row is 43200 pixels, so a full pass needs a handful of
// 43 KiB (quantized) or 86 KiB (raw) buffers which are worth recycling
// across passes.
var (
	rowPool = sync.Pool{
		New: func() any { return &[]byte{} },
	}
	sampleRowPool = sync.Pool{
		New: func() any { return &[]uint16{} },
	}
)

// GetRow retrieves a zeroed byte row of exactly size bytes from the pool.
//
// The caller must call the returned cleanup function to return the row to the pool.
//
// Example:
//
//	row, cleanup := pool.GetRow(width)
//	defer cleanup()
func GetRow(size int) ([]byte, func()) {
	ptr, _ := rowPool.Get().(*[]byte)
	row := (*ptr)[:0]

	if cap(row) < size {
		row = make([]byte, size)
	} else {
		row = row[:size]
		clear(row)
	}
	*ptr = row

	return row, func() { rowPool.Put(ptr) }
}

// GetSampleRow retrieves a zeroed uint16 row of exactly size samples from the pool.
//
// The caller must call the returned cleanup function to return the row to the pool.
func GetSampleRow(size int) ([]uint16, func()) {
	ptr, _ := sampleRowPool.Get().(*[]uint16)
	row := (*ptr)[:0]

	if cap(row) < size {
		row = make([]uint16, size)
	} else {
		row = row[:size]
		clear(row)
	}
	*ptr = row

	return row, func() { sampleRowPool.Put(ptr) }
}
