package decodepipeline

import (
	"encoding/binary"

	"github.com/echoflaresat/tifflayout/predictor"
	"github.com/echoflaresat/tifflayout/tifferr"
)

// reversePredictor undoes the horizontal predictor, row by row, on a copy
// of decoded (spec §4.5 step 4). Predictor.None is a no-op.
// Predictor.FloatingPoint is explicitly unsupported and rejected.
func reversePredictor(decoded []byte, in Input) ([]byte, error) {
	switch in.Predictor {
	case predictor.None, predictor.Unknown:
		return decoded, nil
	case predictor.Horizontal:
		return reverseHorizontalPredictor(decoded, in), nil
	default:
		return nil, tifferr.Newf(tifferr.Unsupported, "unsupported predictor %s", in.Predictor)
	}
}

// reverseHorizontalPredictor adds each sample to the one preceding it in
// the same channel, per row, undoing the delta encoding the predictor
// applies byte-wise when BytesPerSample == 1 and sample-wise otherwise.
func reverseHorizontalPredictor(decoded []byte, in Input) []byte {
	channels := in.TileSamplesPerPixel
	bps := in.BytesPerSample
	if channels <= 0 {
		channels = 1
	}
	if bps <= 0 {
		bps = 1
	}
	stride := in.SizeX * channels * bps
	out := append([]byte(nil), decoded...)

	for row := 0; row+stride <= len(out); row += stride {
		line := out[row : row+stride]
		if bps == 1 {
			for i := channels; i < len(line); i++ {
				line[i] += line[i-channels]
			}
			continue
		}
		reverseHorizontalWide(line, in.SizeX, channels, bps)
	}
	return out
}

// reverseHorizontalWide handles the >1-byte-per-sample case generically
// via unsigned arithmetic modulo 2^(8*bps), matching the TIFF spec's
// defined wraparound behavior for the horizontal predictor.
func reverseHorizontalWide(line []byte, width, channels, bps int) {
	for i := 1; i < width; i++ {
		for c := 0; c < channels; c++ {
			curOff := (i*channels + c) * bps
			prevOff := ((i-1)*channels + c) * bps
			if curOff+bps > len(line) {
				return
			}
			cur := readUint(line[curOff:curOff+bps], bps)
			prev := readUint(line[prevOff:prevOff+bps], bps)
			writeUint(line[curOff:curOff+bps], bps, cur+prev)
		}
	}
}

func readUint(b []byte, bps int) uint64 {
	switch bps {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(b))
	case 4:
		return uint64(binary.BigEndian.Uint32(b))
	case 8:
		return binary.BigEndian.Uint64(b)
	default:
		return 0
	}
}

func writeUint(b []byte, bps int, v uint64) {
	switch bps {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(b, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(b, uint32(v))
	case 8:
		binary.BigEndian.PutUint64(b, v)
	}
}
