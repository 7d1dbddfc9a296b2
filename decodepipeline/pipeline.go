// Package decodepipeline implements the ordered transformation from a
// tile's or strip's on-disk bytes to decoded samples in a fixed layout,
// per spec §4.5: invert fill order, splice JPEG tables, decompress,
// reverse prediction, then apply exactly one of bit-unpacking or YCbCr
// conversion before the caller separates channels into the tile's
// canonical layout.
package decodepipeline

import (
	"github.com/echoflaresat/tifflayout/byteorder"
	"github.com/echoflaresat/tifflayout/codec"
	"github.com/echoflaresat/tifflayout/compression"
	"github.com/echoflaresat/tifflayout/fillorder"
	"github.com/echoflaresat/tifflayout/photometric"
	"github.com/echoflaresat/tifflayout/predictor"
	"github.com/echoflaresat/tifflayout/sampleformat"
	"github.com/echoflaresat/tifflayout/tifferr"
)

// Input bundles a single tile's raw bytes with the IFD-derived parameters
// the pipeline's stages need.
type Input struct {
	Encoded []byte

	SizeX, SizeY int

	FillOrder   fillorder.Order
	Compression compression.Type
	JPEGTables  []byte
	Predictor   predictor.Type

	// TileSamplesPerPixel is the channel count stored within the tile's
	// own buffer: 1 for a planar-separated tile, else the full channel
	// count (tilemap.TileMap.TileSamplesPerPixel).
	TileSamplesPerPixel int
	BitsPerSample       []int
	BytesPerSample      int
	SampleFormat        sampleformat.Type

	Photometric         photometric.Interpretation
	YCbCrSubXLog        int
	YCbCrSubYLog        int
	YCbCrCoefficients   [3]float64
	ReferenceBlackWhite [6]float64

	// AutoUnpackUnusualPrecisions gates stage 5; when false, samples
	// whose width is not a multiple of 8 bits are left packed.
	AutoUnpackUnusualPrecisions bool

	// YCbCrCorrection gates stage 6; when false, a YCbCr tile's bytes
	// are returned as decoded (chunky Y/Cb/Cr blocks) without conversion.
	YCbCrCorrection bool

	MaxDecodedBytes int
}

// Output is the pipeline's result: decoded bytes and whether they are
// chunky (Interleaved) or already reduced to a single plane.
type Output struct {
	Data        []byte
	Interleaved bool
}

// Run executes the full pipeline for one tile against the given codec
// registry.
func Run(reg *codec.Registry, in Input) (Output, error) {
	encoded := in.Encoded
	if in.FillOrder == fillorder.LSBFirst {
		encoded = byteorder.ReverseBits(encoded)
	}

	if in.Compression == compression.JPEG || in.Compression == compression.JPEGOld {
		spliced, err := spliceJPEGTables(encoded, in.JPEGTables)
		if err != nil {
			return Output{}, err
		}
		encoded = spliced
	}

	decoded, err := reg.Decode(in.Compression, encoded, codec.Opts{
		Width:           in.SizeX,
		Height:          in.SizeY,
		BitsPerSample:   in.BitsPerSample,
		SamplesPerPixel: in.TileSamplesPerPixel,
		JPEGTables:      in.JPEGTables,
		MaxDecodedBytes: in.MaxDecodedBytes,
	})
	if err != nil {
		return Output{}, err
	}

	decoded, err = reversePredictor(decoded, in)
	if err != nil {
		return Output{}, err
	}

	invertedPhotometric := in.Photometric == photometric.WhiteIsZero || in.Photometric == photometric.CMYK
	needsBitUnpack := in.AutoUnpackUnusualPrecisions &&
		(requiresBitUnpack(in.BitsPerSample, in.TileSamplesPerPixel) || invertedPhotometric)
	needsYCbCr := in.YCbCrCorrection && in.Photometric == photometric.YCbCr

	switch {
	case needsBitUnpack:
		decoded, err = unpackUnusualPrecision(decoded, in)
		if err != nil {
			return Output{}, err
		}
		return Output{Data: decoded, Interleaved: true}, nil

	case needsYCbCr:
		decoded, err = ycbcrToRGB(decoded, in)
		if err != nil {
			return Output{}, err
		}
		return Output{Data: decoded, Interleaved: true}, nil

	default:
		return Output{Data: decoded, Interleaved: in.TileSamplesPerPixel > 1}, nil
	}
}

// requiresBitUnpack reports whether samples are not a whole number of
// bytes wide (e.g. 1, 2, 4, 10, 12, 14 bits), which needs the BitReader
// stage rather than a byte-aligned reinterpretation.
func requiresBitUnpack(bits []int, channels int) bool {
	for i := 0; i < channels && i < len(bits); i++ {
		if bits[i]%8 != 0 {
			return true
		}
	}
	return false
}

// spliceJPEGTables inserts the abbreviated JPEGTables stream's tag
// segments (everything between its SOI and EOI markers) into encoded
// right after encoded's own SOI marker, so a per-tile JPEG stream that
// omits its quantization/Huffman tables (spec §4.5 step 2) can still be
// decoded standalone. The tile bytes must start with SOI (FF D8); a
// JPEGTables-bearing IFD whose tile data doesn't is malformed.
func spliceJPEGTables(encoded, tables []byte) ([]byte, error) {
	if len(tables) == 0 {
		return encoded, nil
	}
	if len(encoded) < 2 || encoded[0] != 0xFF || encoded[1] != 0xD8 {
		return nil, tifferr.New(tifferr.Malformed, "JPEG tile data does not start with SOI marker")
	}
	if len(tables) < 4 {
		return encoded, nil
	}
	// tables: strip leading SOI (FFD8) and trailing EOI (FFD9).
	body := tables
	if body[0] == 0xFF && body[1] == 0xD8 {
		body = body[2:]
	}
	if len(body) >= 2 && body[len(body)-2] == 0xFF && body[len(body)-1] == 0xD9 {
		body = body[:len(body)-2]
	}
	if len(body) == 0 {
		return encoded, nil
	}
	out := make([]byte, 0, len(encoded)+len(body))
	out = append(out, encoded[0:2]...)
	out = append(out, body...)
	out = append(out, encoded[2:]...)
	return out, nil
}
