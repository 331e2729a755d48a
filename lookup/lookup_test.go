package lookup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/format"
	"github.com/baseline-eto/petfill/section"
	"github.com/stretchr/testify/require"
)

// One pixel per 10 degrees: 36 columns, 14 rows from 80°N to 60°S.
const width, height = 36, 14

func testRaster(t *testing.T) []byte {
	t.Helper()

	header, err := section.NewRasterHeader(width, height, 1000, 40).Bytes()
	require.NoError(t, err)

	payload := make([]byte, width*height)
	for i := range payload {
		payload[i] = byte(i % 250)
	}
	payload[3*width+9] = format.Invalid // 45°N, 90°W

	return append(header, payload...)
}

func openTable(t *testing.T, opts ...Option) *Table {
	t.Helper()

	table, err := Open(bytes.NewReader(testRaster(t)), opts...)
	require.NoError(t, err)

	return table
}

func TestOpen(t *testing.T) {
	table := openTable(t)

	x, y := table.Origin()
	require.Equal(t, 18, x)
	require.Equal(t, 8, y)
	require.Equal(t, uint32(width), table.Header().Width)

	t.Run("Production origin", func(t *testing.T) {
		header, err := section.NewRasterHeader(43200, 16800, 0, 1).Bytes()
		require.NoError(t, err)

		prod, err := Open(bytes.NewReader(header))
		require.NoError(t, err)

		x, y := prod.Origin()
		require.Equal(t, 21600, x)
		require.Equal(t, 9600, y)
	})
}

func TestOpen_Errors(t *testing.T) {
	raster := testRaster(t)

	_, err := Open(bytes.NewReader(raster[:20]))
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

	bad := bytes.Clone(raster)
	bad[0] = 2
	_, err = Open(bytes.NewReader(bad))
	require.ErrorIs(t, err, errs.ErrUnsupportedVersion)

	bad = bytes.Clone(raster)
	bad[9] = 16
	_, err = Open(bytes.NewReader(bad))
	require.ErrorIs(t, err, errs.ErrUnsupportedDepth)
	require.ErrorIs(t, err, errs.ErrFormat)

	_, err = Open(bytes.NewReader(raster), WithPrecision(-1))
	require.Error(t, err)

	_, err = Open(bytes.NewReader(raster), WithCrop(100, 80))
	require.ErrorIs(t, err, errs.ErrInvalidGeometry)
}

func TestTable_Offset(t *testing.T) {
	table := openTable(t)

	tests := []struct {
		name     string
		lat, lon float64
		offset   int64
	}{
		{"origin", 0, 0, 8*width + 18},
		{"north west", 45, -90, 3*width + 9},
		{"just inside the top", 79.9, -180, 0},
		{"south east", -55, 175, 13*width + 35},
		{"fractional pixels floor", 4.9, 9.9, 7*width + 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, err := table.Offset(tt.lat, tt.lon)
			require.NoError(t, err)
			require.Equal(t, tt.offset, offset)
		})
	}
}

func TestTable_OutOfBounds(t *testing.T) {
	table := openTable(t)

	for _, loc := range [][2]float64{
		{85, 0},     // northern crop
		{-65, 0},    // southern crop
		{-60, -180}, // first pixel past the payload
	} {
		_, err := table.DailyETo(loc[0], loc[1])
		require.ErrorIs(t, err, errs.ErrOutOfBounds, "%v", loc)
	}
}

func TestTable_DailyETo(t *testing.T) {
	table := openTable(t)
	header := table.Header()

	code := byte((8*width + 18) % 250)
	annual := float64(code)*float64(header.ScalingFactor) + float64(header.MinimumValue)

	got, err := table.AnnualETo(0, 0)
	require.NoError(t, err)
	require.InDelta(t, annual, got, 1e-9)

	got, err = table.DailyETo(0, 0)
	require.NoError(t, err)
	require.InDelta(t, annual/DaysPerYear, got, 1e-12)

	_, err = table.DailyETo(45, -90)
	require.ErrorIs(t, err, errs.ErrDataUnavailable)
}

func TestTable_Precision(t *testing.T) {
	table := openTable(t, WithPrecision(3))

	got, err := table.DailyETo(0, 0)
	require.NoError(t, err)

	// Code 56: 56*4 + 100 = 324 per year.
	require.Equal(t, 0.888, got)

	require.Equal(t, 0.00123, round(0.0012345, 3))
	require.Equal(t, 1230.0, round(1234.5, 3))
	require.Equal(t, 1.5, round(1.5, 0))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Baseline_ETo_Data.bin")
	require.NoError(t, os.WriteFile(path, testRaster(t), 0o600))

	table, err := OpenFile(path, WithPrecision(3))
	require.NoError(t, err)
	defer table.Close()

	_, err = table.DailyETo(10, 10)
	require.NoError(t, err)

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.bin"))
	require.ErrorIs(t, err, errs.ErrIO)
}
