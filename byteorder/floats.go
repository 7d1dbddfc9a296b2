// Package byteorder provides endian-aware conversions between byte
// sequences and the integer/float primitives the TIFF format uses, plus
// the MSB-first BitReader used to unpack unusual sample widths.
package byteorder

import (
	"encoding/binary"
	"math"
)

// Float32 decodes an IEEE 754 binary32 value from b using the given byte
// order.
func Float32(bo binary.ByteOrder, b []byte) float32 {
	return math.Float32frombits(bo.Uint32(b))
}

// Float64 decodes an IEEE 754 binary64 value from b using the given byte
// order.
func Float64(bo binary.ByteOrder, b []byte) float64 {
	return math.Float64frombits(bo.Uint64(b))
}

// ReverseBitsTable is a 256-entry lookup table mapping each byte to its
// bit-reversed form. It implements TIFF's FillOrder=2 (LSB-first) to
// FillOrder=1 (MSB-first) conversion: reversing a byte's bit order twice
// is the identity, so the same table inverts in both directions.
var ReverseBitsTable = buildReverseBitsTable()

func buildReverseBitsTable() [256]byte {
	var t [256]byte
	for i := 0; i < 256; i++ {
		b := byte(i)
		var r byte
		for bit := 0; bit < 8; bit++ {
			r <<= 1
			r |= b & 1
			b >>= 1
		}
		t[i] = r
	}
	return t
}

// ReverseBits returns a new slice with every byte's bit order reversed.
func ReverseBits(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = ReverseBitsTable[b]
	}
	return out
}
