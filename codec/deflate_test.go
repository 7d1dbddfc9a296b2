package codec

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"

	"github.com/echoflaresat/tifflayout/compression"
)

func zlibCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDeflateCodecRoundTrip(t *testing.T) {
	want := bytes.Repeat([]byte{1, 2, 3, 4}, 64)
	encoded := zlibCompress(t, want)

	out, err := DeflateCodec{}.Decode(encoded, Opts{})
	require.NoError(t, err)
	require.Equal(t, want, out)
}

func TestDeflateCodecRejectsGarbage(t *testing.T) {
	_, err := DeflateCodec{}.Decode([]byte{0x00, 0x01, 0x02}, Opts{})
	require.Error(t, err)
}

func TestRegistryDecodeWrapsUnknownScheme(t *testing.T) {
	r := NewRegistry()
	_, err := r.Decode(compression.Type(9999), nil, Opts{})
	require.Error(t, err)
}

func TestRegistryDecodeEnforcesMaxDecodedBytes(t *testing.T) {
	r := NewRegistry()
	want := bytes.Repeat([]byte{7}, 256)
	encoded := zlibCompress(t, want)

	_, err := r.Decode(compression.Deflate, encoded, Opts{MaxDecodedBytes: 10})
	require.Error(t, err)
}
