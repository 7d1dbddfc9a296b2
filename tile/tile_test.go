package tile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCropToMapClipsTrailingEdgeTiles(t *testing.T) {
	idx := Index{XTile: 3, YTile: 1, FromX: 30, FromY: 10, ToX: 40, ToY: 20}
	tl := New(idx, 10, 10)

	tl.CropToMap(35, 15)
	require.Equal(t, 5, tl.SizeX)
	require.Equal(t, 5, tl.SizeY)
}

func TestCropToMapLeavesInBoundsTileUnchanged(t *testing.T) {
	idx := Index{FromX: 0, FromY: 0}
	tl := New(idx, 10, 10)

	tl.CropToMap(100, 100)
	require.Equal(t, 10, tl.SizeX)
	require.Equal(t, 10, tl.SizeY)
}

func TestCropDecodedToMapExtractsTopLeftSubrectangle(t *testing.T) {
	// A 4x3 tile whose right-hand column and bottom row fall outside a
	// 3x2 image; only the top-left 3x2 block should survive the crop.
	idx := Index{FromX: 0, FromY: 0}
	tl := New(idx, 4, 3)
	tl.SetDecoded([]byte{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
	}, true)

	tl.CropDecodedToMap(3, 2, 1)

	require.Equal(t, 3, tl.SizeX)
	require.Equal(t, 2, tl.SizeY)
	decoded, ok := tl.Decoded()
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 5, 6, 7}, decoded)
}

func TestCropDecodedToMapLeavesInBoundsTileUnchanged(t *testing.T) {
	idx := Index{FromX: 0, FromY: 0}
	tl := New(idx, 2, 2)
	tl.SetDecoded([]byte{1, 2, 3, 4}, true)

	tl.CropDecodedToMap(100, 100, 1)

	require.Equal(t, 2, tl.SizeX)
	require.Equal(t, 2, tl.SizeY)
	decoded, ok := tl.Decoded()
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 4}, decoded)
}

func TestAdjustNumberOfPixelsPadsShortBuffer(t *testing.T) {
	tl := New(Index{}, 2, 2)
	tl.SetDecoded([]byte{1, 2, 3}, true)

	tl.AdjustNumberOfPixels(4, 1)
	decoded, ok := tl.Decoded()
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 0}, decoded)
}

func TestAdjustNumberOfPixelsTruncatesLongBuffer(t *testing.T) {
	tl := New(Index{}, 2, 2)
	tl.SetDecoded([]byte{1, 2, 3, 4, 5}, true)

	tl.AdjustNumberOfPixels(4, 1)
	decoded, ok := tl.Decoded()
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 4}, decoded)
}

func TestSeparateSamplesIfNecessaryDeinterleaves(t *testing.T) {
	tl := New(Index{}, 2, 1)
	// 2 pixels, 3 channels, chunky: R0 G0 B0 R1 G1 B1
	tl.SetDecoded([]byte{1, 2, 3, 4, 5, 6}, true)

	tl.SeparateSamplesIfNecessary(3, 1)

	decoded, ok := tl.Decoded()
	require.True(t, ok)
	require.Equal(t, []byte{1, 4, 2, 5, 3, 6}, decoded)
	require.True(t, tl.Separated)
	require.False(t, tl.Interleaved)
}

func TestSeparateSamplesIfNecessaryNoopForSingleChannel(t *testing.T) {
	tl := New(Index{}, 2, 1)
	tl.SetDecoded([]byte{9, 8}, true)

	tl.SeparateSamplesIfNecessary(1, 1)

	decoded, ok := tl.Decoded()
	require.True(t, ok)
	require.Equal(t, []byte{9, 8}, decoded)
	require.True(t, tl.Separated)
}
