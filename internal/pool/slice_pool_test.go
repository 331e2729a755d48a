package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetRow(t *testing.T) {
	t.Run("returns row with correct size", func(t *testing.T) {
		row, cleanup := GetRow(100)
		defer cleanup()

		require.Len(t, row, 100)
	})

	t.Run("recycled rows are zeroed", func(t *testing.T) {
		row1, cleanup1 := GetRow(64)
		for i := range row1 {
			row1[i] = 0xFF
		}
		cleanup1()

		row2, cleanup2 := GetRow(32)
		defer cleanup2()

		require.Len(t, row2, 32)
		require.Equal(t, make([]byte, 32), row2)
	})

	t.Run("grows when capacity insufficient", func(t *testing.T) {
		_, cleanup1 := GetRow(10)
		cleanup1()

		row, cleanup2 := GetRow(4096)
		defer cleanup2()

		require.Len(t, row, 4096)
	})

	t.Run("zero size", func(t *testing.T) {
		row, cleanup := GetRow(0)
		defer cleanup()

		require.Empty(t, row)
	})
}

func TestGetSampleRow(t *testing.T) {
	row1, cleanup1 := GetSampleRow(16)
	require.Len(t, row1, 16)
	for i := range row1 {
		row1[i] = 0xFFFF
	}
	cleanup1()

	row2, cleanup2 := GetSampleRow(16)
	defer cleanup2()

	require.Equal(t, make([]uint16, 16), row2)
}
