package decodepipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestYCbCrToRGBAchromaticBlockIsGray(t *testing.T) {
	// 2x2 subsampled block, all luma/chroma at mid-gray: should map to
	// (128,128,128) for every pixel in the block regardless of subsampling.
	decoded := []byte{128, 128, 128, 128, 128, 128} // Y0..Y3, Cb, Cr
	in := Input{
		SizeX: 2, SizeY: 2,
		BytesPerSample:      1,
		YCbCrSubXLog:        1,
		YCbCrSubYLog:        1,
		YCbCrCoefficients:   [3]float64{0.299, 0.587, 0.114},
		ReferenceBlackWhite: [6]float64{0, 255, 128, 255, 128, 255},
	}
	out, err := ycbcrToRGB(decoded, in)
	require.NoError(t, err)
	require.Len(t, out, 2*2*3)
	for px := 0; px < 4; px++ {
		require.Equal(t, []byte{128, 128, 128}, out[px*3:px*3+3])
	}
}

func TestYCbCrToRGBUnsubsampledSingleBlock(t *testing.T) {
	// No subsampling: one Y/Cb/Cr triple per pixel, a single-pixel image.
	decoded := []byte{150, 100, 200} // Y, Cb, Cr
	in := Input{
		SizeX: 1, SizeY: 1,
		BytesPerSample:      1,
		YCbCrSubXLog:        0,
		YCbCrSubYLog:        0,
		YCbCrCoefficients:   [3]float64{0.299, 0.587, 0.114},
		ReferenceBlackWhite: [6]float64{0, 255, 128, 255, 128, 255},
	}
	out, err := ycbcrToRGB(decoded, in)
	require.NoError(t, err)
	require.Equal(t, []byte{251, 108, 100}, out)
}

func TestYCbCrToRGBRejectsMultiByteSamples(t *testing.T) {
	in := Input{SizeX: 1, SizeY: 1, BytesPerSample: 2}
	_, err := ycbcrToRGB([]byte{0, 0, 0, 0, 0, 0}, in)
	require.Error(t, err)
}

func TestYCbCrToRGBSkipsTruncatedTrailingBlock(t *testing.T) {
	// Only 4 of the 6 bytes the single block needs: the block is skipped
	// rather than indexing out of range, leaving its pixels at the
	// zero-valued default.
	decoded := []byte{128, 128, 128, 128}
	in := Input{
		SizeX: 2, SizeY: 2,
		BytesPerSample:      1,
		YCbCrSubXLog:        1,
		YCbCrSubYLog:        1,
		YCbCrCoefficients:   [3]float64{0.299, 0.587, 0.114},
		ReferenceBlackWhite: [6]float64{0, 255, 128, 255, 128, 255},
	}
	out, err := ycbcrToRGB(decoded, in)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 2*2*3), out)
}
