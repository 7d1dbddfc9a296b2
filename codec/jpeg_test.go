package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeTestJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestJPEGCodecDecodesGrayscale(t *testing.T) {
	encoded := encodeTestJPEG(t, 8, 8)
	out, err := JPEGCodec{}.Decode(encoded, Opts{})
	require.NoError(t, err)
	require.Len(t, out, 64)
}

func TestJPEGCodecRejectsOversizedImageBeforeDecoding(t *testing.T) {
	// 100x100 grayscale estimates to 100*100*4 = 40000 bytes, well over
	// the tiny limit below, so Decode must reject via the DecodeConfig
	// pre-check rather than allocating the full pixel buffer.
	encoded := encodeTestJPEG(t, 100, 100)
	_, err := JPEGCodec{}.Decode(encoded, Opts{MaxDecodedBytes: 16})
	require.Error(t, err)
}

func TestJPEGCodecAllowsImageWithinLimit(t *testing.T) {
	encoded := encodeTestJPEG(t, 8, 8)
	out, err := JPEGCodec{}.Decode(encoded, Opts{MaxDecodedBytes: 1024})
	require.NoError(t, err)
	require.Len(t, out, 64)
}
