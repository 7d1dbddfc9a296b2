package byteorder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReverseBitsIsSelfInverse(t *testing.T) {
	data := []byte{0b10110010, 0x00, 0xFF}
	reversed := ReverseBits(data)
	require.Equal(t, []byte{0b01001101, 0x00, 0xFF}, reversed)
	require.Equal(t, data, ReverseBits(reversed))
}

func TestBitReaderGetBitsMSBFirst(t *testing.T) {
	br := NewBitReader([]byte{0b10110010})
	require.EqualValues(t, 1, br.GetBits(1))
	require.EqualValues(t, 0, br.GetBits(1))
	require.EqualValues(t, 0b1100, br.GetBits(4))
	require.EqualValues(t, 0b10, br.GetBits(2))
}

func TestBitReaderSpanningByteBoundary(t *testing.T) {
	br := NewBitReader([]byte{0xFF, 0x00})
	require.EqualValues(t, 0b111111110, br.GetBits(9))
}

func TestBitReaderEOFIsSticky(t *testing.T) {
	br := NewBitReader([]byte{0xFF})
	require.EqualValues(t, 0xFF, br.GetBits(8))
	require.EqualValues(t, -1, br.GetBits(1))
	require.True(t, br.EOF())
	require.EqualValues(t, -1, br.GetBits(4))
}

func TestBitReaderSkipBits(t *testing.T) {
	br := NewBitReader([]byte{0xAB, 0xCD})
	br.SkipBits(8)
	require.EqualValues(t, 0xCD, br.GetBits(8))
}
