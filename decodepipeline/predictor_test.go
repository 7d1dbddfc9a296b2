package decodepipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/echoflaresat/tifflayout/predictor"
	"github.com/echoflaresat/tifflayout/tifferr"
)

func TestReverseHorizontalPredictor8Bit(t *testing.T) {
	// 1 row, width 4, 1 channel, deltas 10, 1, 1, 1 -> cumulative 10, 11, 12, 13.
	in := Input{SizeX: 4, SizeY: 1, TileSamplesPerPixel: 1, BytesPerSample: 1, Predictor: predictor.Horizontal}
	out, err := reversePredictor([]byte{10, 1, 1, 1}, in)
	require.NoError(t, err)
	require.Equal(t, []byte{10, 11, 12, 13}, out)
}

func TestReverseHorizontalPredictorMultiChannel(t *testing.T) {
	// width 2, 2 channels: pixel0 = (10, 20), delta pixel1 = (1, 2) -> (11, 22).
	in := Input{SizeX: 2, SizeY: 1, TileSamplesPerPixel: 2, BytesPerSample: 1, Predictor: predictor.Horizontal}
	out, err := reversePredictor([]byte{10, 20, 1, 2}, in)
	require.NoError(t, err)
	require.Equal(t, []byte{10, 20, 11, 22}, out)
}

func TestReverseHorizontalPredictorResetsPerRow(t *testing.T) {
	in := Input{SizeX: 2, SizeY: 2, TileSamplesPerPixel: 1, BytesPerSample: 1, Predictor: predictor.Horizontal}
	out, err := reversePredictor([]byte{5, 1, 7, 1}, in)
	require.NoError(t, err)
	require.Equal(t, []byte{5, 6, 7, 8}, out)
}

func TestReverseHorizontalPredictor16Bit(t *testing.T) {
	in := Input{SizeX: 2, SizeY: 1, TileSamplesPerPixel: 1, BytesPerSample: 2, Predictor: predictor.Horizontal}
	// sample0 = 0x0100, delta sample1 = 0x0001 -> sample1 = 0x0101.
	out, err := reversePredictor([]byte{0x01, 0x00, 0x00, 0x01}, in)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x00, 0x01, 0x01}, out)
}

func TestReversePredictorNoneIsNoop(t *testing.T) {
	in := Input{Predictor: predictor.None}
	data := []byte{1, 2, 3}
	out, err := reversePredictor(data, in)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestReversePredictorUnsupportedKind(t *testing.T) {
	in := Input{Predictor: predictor.Type(99)}
	_, err := reversePredictor([]byte{1}, in)
	require.Error(t, err)
}

func TestReversePredictorRejectsFloatingPoint(t *testing.T) {
	in := Input{Predictor: predictor.FloatingPoint}
	_, err := reversePredictor([]byte{1, 2, 3, 4}, in)
	require.Error(t, err)
	require.True(t, tifferr.Is(err, tifferr.Unsupported))
}
