package decodepipeline

import (
	"github.com/echoflaresat/tifflayout/byteorder"
	"github.com/echoflaresat/tifflayout/photometric"
	"github.com/echoflaresat/tifflayout/sampleformat"
)

// unpackUnusualPrecision implements spec §4.5 step 6: for every pixel and
// channel, either unpack a sub-byte sample via the BitReader (bits % 8 !=
// 0, skipping the per-row padding the format leaves to keep each row
// byte-aligned) or read an ordinary byte-aligned sample directly, then in
// both cases inverts the sample against max_value = 2^bits-1 when the
// photometric interpretation is WhiteIsZero or CMYK and the sample format
// is not IEEEFP. IEEEFP samples are never inverted and, like signed
// integer samples, are not left-justified by packSample.
func unpackUnusualPrecision(decoded []byte, in Input) ([]byte, error) {
	channels := in.TileSamplesPerPixel
	if channels <= 0 {
		channels = 1
	}
	outBPS := in.BytesPerSample
	if outBPS <= 0 {
		outBPS = 1
	}
	// Bit-level inversion only makes sense for integer sample values; a
	// floating-point sample's bit pattern isn't an integer magnitude, so
	// WhiteIsZero/CMYK floating-point data is left for the caller to
	// interpret in value space (as image.go's float16 display path does).
	invert := in.SampleFormat != sampleformat.IEEEFP &&
		(in.Photometric == photometric.WhiteIsZero || in.Photometric == photometric.CMYK)

	bitsOf := func(c int) int {
		if c < len(in.BitsPerSample) {
			return in.BitsPerSample[c]
		}
		return 1
	}

	samplesPerRow := in.SizeX * channels
	out := make([]byte, 0, samplesPerRow*in.SizeY*outBPS)

	if aligned(in.BitsPerSample) {
		rowStride := samplesPerRow * outBPS
		for row := 0; row < in.SizeY; row++ {
			rowOff := row * rowStride
			for s := 0; s < samplesPerRow; s++ {
				c := s % channels
				bits := bitsOf(c)
				off := rowOff + s*outBPS
				var v uint64
				if off+outBPS <= len(decoded) {
					v = readUint(decoded[off:off+outBPS], outBPS)
				}
				if invert {
					v = maxValueForBits(bits) - v
				}
				out = append(out, packSample(v, bits, outBPS, in.SampleFormat)...)
			}
		}
		return out, nil
	}

	br := byteorder.NewBitReader(decoded)
	for row := 0; row < in.SizeY; row++ {
		rowBits := 0
		for s := 0; s < samplesPerRow; s++ {
			c := s % channels
			bits := bitsOf(c)
			rowBits += bits
			v := br.GetBits(bits)
			if v < 0 {
				v = 0
			}
			uv := uint64(v)
			if invert {
				uv = maxValueForBits(bits) - uv
			}
			out = append(out, packSample(uv, bits, outBPS, in.SampleFormat)...)
		}
		br.SkipBits(paddingBits(rowBits))
	}
	return out, nil
}

// aligned reports whether every declared sample width is a whole number
// of bytes, so samples can be read directly rather than through the
// BitReader. The IFD's equal-bit-width-across-channels invariant means
// checking any one width suffices, but every width is checked for safety.
func aligned(bits []int) bool {
	for _, b := range bits {
		if b%8 != 0 {
			return false
		}
	}
	return true
}

// paddingBits computes the number of bits of row padding to skip after
// rowBits worth of samples, so the next row starts at a byte boundary:
// skip_bits = (8 - rowBits mod 8) mod 8.
func paddingBits(rowBits int) int {
	return (8 - rowBits%8) % 8
}

// maxValueForBits returns 2^bits-1, the inversion ceiling for WhiteIsZero
// and CMYK photometric interpretations.
func maxValueForBits(bits int) uint64 {
	if bits <= 0 {
		return 0
	}
	if bits >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(bits) - 1
}

func packSample(v uint64, bits, outBPS int, format sampleformat.Type) []byte {
	if format == sampleformat.UInt || format == sampleformat.Void || format == sampleformat.ComplexInt {
		// Left-justify so e.g. a 4-bit sample becomes the high nibble of
		// its output byte, matching how most TIFF readers present
		// sub-byte samples for display.
		if bits < outBPS*8 {
			v <<= uint(outBPS*8 - bits)
		}
	}
	out := make([]byte, outBPS)
	for i := outBPS - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}
