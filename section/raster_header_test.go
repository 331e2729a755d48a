package section

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/format"
	"github.com/stretchr/testify/require"
)

func TestNewRasterHeader(t *testing.T) {
	header := NewRasterHeader(43200, 16800, 12, 3.5)

	require.Equal(t, format.Version, header.Version)
	require.Equal(t, uint32(43200), header.Width)
	require.Equal(t, uint32(16800), header.Height)
	require.Equal(t, format.BitDepth, header.BitDepth)
	require.Equal(t, float32(12)*float32(0.1), header.MinimumValue)
	require.Equal(t, float32(3.5)*float32(0.1), header.ScalingFactor)
	require.Nil(t, header.Reserved)
}

func TestRasterHeader_Bytes(t *testing.T) {
	header := &RasterHeader{
		Version:       1,
		Width:         0x0000A8C0,
		Height:        0x000041A0,
		BitDepth:      8,
		MinimumValue:  1.5,
		ScalingFactor: -2,
	}

	data, err := header.Bytes()
	require.NoError(t, err)
	require.Len(t, data, HeaderSize)

	require.Equal(t, byte(1), data[0])
	require.Equal(t, []byte{0x00, 0x00, 0xA8, 0xC0}, data[1:5])
	require.Equal(t, []byte{0x00, 0x00, 0x41, 0xA0}, data[5:9])
	require.Equal(t, byte(8), data[9])
	require.Equal(t, []byte{0x3F, 0xC0, 0x00, 0x00}, data[10:14]) // 1.5
	require.Equal(t, []byte{0xC0, 0x00, 0x00, 0x00}, data[14:18]) // -2
	require.Equal(t, make([]byte, ReservedSize), data[18:])
}

func TestRasterHeader_RoundTrip(t *testing.T) {
	full := bytes.Repeat([]byte{0xAB}, ReservedSize)

	tests := []struct {
		name   string
		header RasterHeader
	}{
		{"zero dims", RasterHeader{Version: 1}},
		{"production", *NewRasterHeader(43200, 16800, 0, 256.0/256)},
		{"max dims", RasterHeader{Version: 1, Width: math.MaxUint32, Height: math.MaxUint32, BitDepth: 255}},
		{"negative and tiny floats", RasterHeader{Version: 1, BitDepth: 8, MinimumValue: -1e-30, ScalingFactor: math.SmallestNonzeroFloat32}},
		{"infinities", RasterHeader{Version: 1, MinimumValue: float32(math.Inf(-1)), ScalingFactor: float32(math.Inf(1))}},
		{"full reserved", RasterHeader{Version: 1, Width: 4, Height: 1, BitDepth: 8, Reserved: full}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.header.Bytes()
			require.NoError(t, err)

			parsed, err := ParseRasterHeader(data)
			require.NoError(t, err)
			require.Equal(t, tt.header, *parsed)
		})
	}
}

func TestRasterHeader_Parse(t *testing.T) {
	t.Run("Invalid size", func(t *testing.T) {
		header := &RasterHeader{}
		err := header.Parse([]byte{1, 2, 3})

		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
		require.ErrorIs(t, err, errs.ErrFormat)
	})

	t.Run("Too long", func(t *testing.T) {
		header := &RasterHeader{}
		err := header.Parse(make([]byte, HeaderSize+1))

		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("Unsupported version", func(t *testing.T) {
		for _, version := range []byte{0, 2, 255} {
			data := make([]byte, HeaderSize)
			data[0] = version

			header := &RasterHeader{}
			err := header.Parse(data)

			require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
			require.ErrorIs(t, err, errs.ErrFormat)
		}
	})
}

func TestRasterHeader_ReservedTooWide(t *testing.T) {
	header := NewRasterHeader(1, 1, 0, 1)
	header.Reserved = make([]byte, ReservedSize+1)

	_, err := header.Bytes()
	require.ErrorIs(t, err, errs.ErrReservedTooWide)

	var buf bytes.Buffer
	_, err = header.WriteTo(&buf)
	require.ErrorIs(t, err, errs.ErrReservedTooWide)
	require.Zero(t, buf.Len(), "nothing must be written for a malformed header")
}

func TestParseRasterHeader(t *testing.T) {
	t.Run("Trailing payload ignored", func(t *testing.T) {
		header := NewRasterHeader(4, 1, 7, 1)
		data, err := header.Bytes()
		require.NoError(t, err)
		data = append(data, 10, 0xFF, 0xFF, 20)

		parsed, err := ParseRasterHeader(data)
		require.NoError(t, err)
		require.Equal(t, header, parsed)
	})

	t.Run("Short", func(t *testing.T) {
		_, err := ParseRasterHeader(make([]byte, HeaderSize-1))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})
}

func TestReadRasterHeader(t *testing.T) {
	t.Run("Stream", func(t *testing.T) {
		header := NewRasterHeader(8, 2, 100, 2.5)

		var buf bytes.Buffer
		n, err := header.WriteTo(&buf)
		require.NoError(t, err)
		require.Equal(t, int64(HeaderSize), n)
		buf.WriteString("payload")

		parsed, err := ReadRasterHeader(&buf)
		require.NoError(t, err)
		require.Equal(t, header, parsed)
		require.Equal(t, "payload", buf.String(), "reader must be left at the payload")
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := ReadRasterHeader(bytes.NewReader(make([]byte, 10)))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("Reader failure", func(t *testing.T) {
		_, err := ReadRasterHeader(failingReader{})
		require.ErrorIs(t, err, errs.ErrIO)
	})
}

func TestRasterHeader_Value(t *testing.T) {
	header := &RasterHeader{MinimumValue: 10, ScalingFactor: 0.5}

	require.Equal(t, float32(10), header.Value(0))
	require.Equal(t, float32(12), header.Value(4))
	require.Equal(t, float32(137), header.Value(254))
}

func TestRasterHeader_PayloadSize(t *testing.T) {
	header := NewRasterHeader(43200, 16800, 0, 1)
	require.Equal(t, int64(43200*16800), header.PayloadSize())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}
