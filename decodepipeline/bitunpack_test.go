package decodepipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/echoflaresat/tifflayout/photometric"
	"github.com/echoflaresat/tifflayout/sampleformat"
)

func TestUnpackUnusualPrecisionFourBit(t *testing.T) {
	// 4 samples of 4 bits each, packed MSB-first into 2 bytes: 0x12 0x34
	// -> nibbles 1, 2, 3, 4, left-justified into a byte each.
	in := Input{
		SizeX:               4,
		SizeY:               1,
		TileSamplesPerPixel: 1,
		BitsPerSample:       []int{4},
		BytesPerSample:      1,
		SampleFormat:        sampleformat.UInt,
		Photometric:         photometric.BlackIsZero,
	}
	out, err := unpackUnusualPrecision([]byte{0x12, 0x34}, in)
	require.NoError(t, err)
	require.Equal(t, []byte{0x10, 0x20, 0x30, 0x40}, out)
}

func TestUnpackUnusualPrecisionOneBit(t *testing.T) {
	in := Input{
		SizeX:               8,
		SizeY:               1,
		TileSamplesPerPixel: 1,
		BitsPerSample:       []int{1},
		BytesPerSample:      1,
		SampleFormat:        sampleformat.UInt,
		Photometric:         photometric.BlackIsZero,
	}
	// 0b10110010, each bit left-justified into its own output byte.
	out, err := unpackUnusualPrecision([]byte{0xB2}, in)
	require.NoError(t, err)
	require.Equal(t, []byte{0x80, 0x00, 0x80, 0x80, 0x00, 0x00, 0x80, 0x00}, out)
}

func TestUnpackUnusualPrecisionSkipsRowPadding(t *testing.T) {
	// width 3, 1 bit/sample: each row only uses 3 of its 8 available bits,
	// so 5 bits of padding must be skipped before the next row starts.
	in := Input{
		SizeX:               3,
		SizeY:               2,
		TileSamplesPerPixel: 1,
		BitsPerSample:       []int{1},
		BytesPerSample:      1,
		SampleFormat:        sampleformat.UInt,
		Photometric:         photometric.BlackIsZero,
	}
	// row0 = 1,0,1 then 5 padding bits; row1 = 1,1,0 then 5 padding bits.
	out, err := unpackUnusualPrecision([]byte{0b101_00000, 0b110_00000}, in)
	require.NoError(t, err)
	require.Equal(t, []byte{0x80, 0x00, 0x80, 0x80, 0x80, 0x00}, out)
}

func TestUnpackUnusualPrecisionMultiRow(t *testing.T) {
	in := Input{
		SizeX:               2,
		SizeY:               2,
		TileSamplesPerPixel: 1,
		BitsPerSample:       []int{4},
		BytesPerSample:      1,
		SampleFormat:        sampleformat.UInt,
		Photometric:         photometric.BlackIsZero,
	}
	out, err := unpackUnusualPrecision([]byte{0x12, 0x34}, in)
	require.NoError(t, err)
	require.Equal(t, []byte{0x10, 0x20, 0x30, 0x40}, out)
}
