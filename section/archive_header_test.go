package section

import (
	"bytes"
	"testing"

	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/format"
	"github.com/stretchr/testify/require"
)

func TestArchiveHeader_RoundTrip(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			original := &ArchiveHeader{
				Compression: ct,
				RawSize:     32 + 43200*16800,
				Checksum:    0xDEADBEEFCAFEF00D,
			}

			data := original.Bytes()
			require.Len(t, data, ArchiveHeaderSize)
			require.Equal(t, []byte("PETA"), data[0:4])

			parsed, err := ReadArchiveHeader(bytes.NewReader(data))
			require.NoError(t, err)
			require.Equal(t, original, parsed)
		})
	}
}

func TestArchiveHeader_Parse(t *testing.T) {
	valid := (&ArchiveHeader{Compression: format.CompressionS2, RawSize: 1}).Bytes()

	t.Run("Invalid size", func(t *testing.T) {
		err := (&ArchiveHeader{}).Parse(valid[:10])
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("Invalid magic", func(t *testing.T) {
		data := bytes.Clone(valid)
		data[0] = 'X'

		err := (&ArchiveHeader{}).Parse(data)
		require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
	})

	t.Run("Unsupported version", func(t *testing.T) {
		data := bytes.Clone(valid)
		data[4] = 9

		err := (&ArchiveHeader{}).Parse(data)
		require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
	})

	t.Run("Unknown compression", func(t *testing.T) {
		data := bytes.Clone(valid)
		data[5] = 0x7F

		err := (&ArchiveHeader{}).Parse(data)
		require.ErrorIs(t, err, errs.ErrInvalidCompression)
	})

	t.Run("Truncated stream", func(t *testing.T) {
		_, err := ReadArchiveHeader(bytes.NewReader(valid[:31]))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})
}
