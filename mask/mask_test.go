package mask

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/grid"
	"github.com/stretchr/testify/require"
)

// 8x8 raster over a 4x4 mask: factor 2, and with a 45° crop the first
// raster row lines up with mask row 1.
var cropped = grid.Geometry{Width: 8, Height: 4, MaskWidth: 4, MaskHeight: 4, CropTopDegrees: 45}

func cells() []byte {
	return []byte{
		0, 0, 0, 0, // cropped away
		200, 0, 129, 128,
		255, 255, 1, 1,
		7, 7, 7, 7,
	}
}

type countingReaderAt struct {
	r     *bytes.Reader
	reads int
}

func (c *countingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	c.reads++
	return c.r.ReadAt(p, off)
}

func TestReader_Offset(t *testing.T) {
	m := NewReader(bytes.NewReader(cells()), 16, cropped)

	require.Equal(t, int64(4), cropped.CroppedTopOffset())
	require.Equal(t, int64(4), m.Offset(0))
	require.Equal(t, int64(4), m.Offset(1))
	require.Equal(t, int64(8), m.Offset(2))
	require.Equal(t, int64(8), m.Offset(3))

	g := grid.Default()
	prod := NewReader(bytes.NewReader(nil), g.MaskSize(), g)
	require.Equal(t, int64(10800*300), prod.Offset(0))
	require.Equal(t, int64(10800*301), prod.Offset(4))
	require.Equal(t, int64((16799/4)*10800+10800*300), prod.Offset(16799))
}

func TestReader_ReadRow(t *testing.T) {
	src := &countingReaderAt{r: bytes.NewReader(cells())}
	m := NewReader(src, 16, cropped)

	row, err := m.ReadRow(0)
	require.NoError(t, err)
	require.Equal(t, []byte{200, 0, 129, 128}, row)

	// Raster row 1 shares the mask row; no second read.
	row, err = m.ReadRow(1)
	require.NoError(t, err)
	require.Equal(t, []byte{200, 0, 129, 128}, row)
	require.Equal(t, 1, src.reads)

	row, err = m.ReadRow(2)
	require.NoError(t, err)
	require.Equal(t, []byte{255, 255, 1, 1}, row)
	require.Equal(t, 2, src.reads)
}

func TestReader_IsLand(t *testing.T) {
	m := NewReader(bytes.NewReader(cells()), 16, cropped)

	row, err := m.ReadRow(0)
	require.NoError(t, err)

	// Each mask cell covers two raster columns.
	want := []bool{true, true, false, false, true, true, false, false}
	for x, land := range want {
		require.Equal(t, land, m.IsLand(row, x), "x=%d", x)
	}

	require.True(t, IsLand(129))
	require.False(t, IsLand(128))
	require.False(t, IsLand(0))
}

func TestReader_OutOfRange(t *testing.T) {
	// Without the last mask row, raster rows 6-7 fall outside the file.
	g := grid.Geometry{Width: 8, Height: 8, MaskWidth: 4, MaskHeight: 4}
	m := NewReader(bytes.NewReader(cells()[:12]), 12, g)

	_, err := m.ReadRow(5)
	require.NoError(t, err)

	_, err = m.ReadRow(6)
	require.ErrorIs(t, err, errs.ErrIO)
	require.ErrorIs(t, err, errs.ErrOffsetOutOfRange)

	_, err = m.ReadRow(-4)
	require.ErrorIs(t, err, errs.ErrOffsetOutOfRange)
}

func TestReader_ShortSource(t *testing.T) {
	// The declared size is larger than what the source can deliver.
	m := NewReader(bytes.NewReader(cells()[:6]), 16, cropped)

	_, err := m.ReadRow(0)
	require.ErrorIs(t, err, errs.ErrIO)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Ocean_Mask.bin")
	require.NoError(t, os.WriteFile(path, cells(), 0o600))

	m, err := Open(path, cropped)
	require.NoError(t, err)
	defer m.Close()

	row, err := m.ReadRow(3)
	require.NoError(t, err)
	require.Equal(t, []byte{255, 255, 1, 1}, row)

	_, err = Open(filepath.Join(t.TempDir(), "missing.bin"), cropped)
	require.ErrorIs(t, err, errs.ErrIO)
	require.ErrorIs(t, err, os.ErrNotExist)
}
