package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackBitsLiteralRun(t *testing.T) {
	// ctrl=2 means "3 literal bytes follow".
	encoded := []byte{2, 0xAA, 0xBB, 0xCC}
	out, err := PackBitsCodec{}.Decode(encoded, Opts{})
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB, 0xCC}, out)
}

func TestPackBitsReplicateRun(t *testing.T) {
	// ctrl=-3 (0xFD) means "replicate the next byte 4 times".
	encoded := []byte{0xFD, 0x7A}
	out, err := PackBitsCodec{}.Decode(encoded, Opts{})
	require.NoError(t, err)
	require.Equal(t, []byte{0x7A, 0x7A, 0x7A, 0x7A}, out)
}

func TestPackBitsNoopControlByteIsSkipped(t *testing.T) {
	encoded := []byte{0x80, 1, 0x11, 0x22}
	out, err := PackBitsCodec{}.Decode(encoded, Opts{})
	require.NoError(t, err)
	require.Equal(t, []byte{0x11, 0x22}, out)
}

func TestPackBitsRejectsTruncatedLiteralRun(t *testing.T) {
	encoded := []byte{5, 0x11, 0x22} // declares 6 bytes, only 2 follow
	_, err := PackBitsCodec{}.Decode(encoded, Opts{})
	require.Error(t, err)
}

func TestPackBitsEnforcesMaxDecodedBytes(t *testing.T) {
	encoded := []byte{0xFD, 0x00} // 4 replicated bytes
	_, err := PackBitsCodec{}.Decode(encoded, Opts{MaxDecodedBytes: 2})
	require.Error(t, err)
}
