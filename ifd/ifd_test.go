package ifd

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/echoflaresat/tifflayout/compression"
	"github.com/echoflaresat/tifflayout/ifdtype"
	"github.com/echoflaresat/tifflayout/tifftag"
)

func newWith(t *testing.T, entries map[tifftag.Tag]ifdtype.Value) *Ifd {
	t.Helper()
	d := New(binary.LittleEndian, false)
	for tag, v := range entries {
		require.NoError(t, d.Put(uint16(tag), Entry{Type: v.Type, Count: uint64(v.Count()), Value: v}))
	}
	return d
}

func shorts(vs ...uint64) ifdtype.Value { return ifdtype.Value{Type: ifdtype.Short, Uints: vs} }

func TestSamplesPerPixelForcedTo3ForOldJPEG(t *testing.T) {
	d := newWith(t, map[tifftag.Tag]ifdtype.Value{
		tifftag.SamplesPerPixel: shorts(1),
		tifftag.Compression:     shorts(uint64(compression.JPEGOld)),
	})
	spp, err := d.SamplesPerPixel()
	require.NoError(t, err)
	require.Equal(t, 3, spp)
}

func TestBytesPerSampleRejectsUnequalChannelWidths(t *testing.T) {
	d := newWith(t, map[tifftag.Tag]ifdtype.Value{
		tifftag.BitsPerSample:   shorts(8, 16),
		tifftag.SamplesPerPixel: shorts(2),
	})
	_, err := d.BytesPerSample()
	require.Error(t, err)
}

func TestBytesPerSampleAcceptsEqualChannelWidths(t *testing.T) {
	d := newWith(t, map[tifftag.Tag]ifdtype.Value{
		tifftag.BitsPerSample:   shorts(16, 16, 16),
		tifftag.SamplesPerPixel: shorts(3),
	})
	bps, err := d.BytesPerSample()
	require.NoError(t, err)
	require.Equal(t, 2, bps)
}

func TestImageWidthRejectsMissingTag(t *testing.T) {
	d := New(binary.LittleEndian, false)
	_, err := d.ImageWidth()
	require.Error(t, err)
}

func TestTileSizeYDefaultsToImageHeightWhenStripedAndRowsPerStripAbsent(t *testing.T) {
	d := newWith(t, map[tifftag.Tag]ifdtype.Value{
		tifftag.ImageLength: shorts(37),
	})
	tsy, err := d.TileSizeY()
	require.NoError(t, err)
	require.Equal(t, 37, tsy)
}

func TestCheckTileAreaInvariantsRejectsOversizedTile(t *testing.T) {
	d := newWith(t, map[tifftag.Tag]ifdtype.Value{
		tifftag.TileWidth:       {Type: ifdtype.Long, Uints: []uint64{1 << 20}},
		tifftag.TileLength:      {Type: ifdtype.Long, Uints: []uint64{1 << 20}},
		tifftag.BitsPerSample:   shorts(8),
		tifftag.SamplesPerPixel: shorts(1),
	})
	err := d.CheckTileAreaInvariants()
	require.Error(t, err)
}

func TestPutOnFrozenIfdRejectsNonWhitelistedTag(t *testing.T) {
	d := New(binary.LittleEndian, false)
	d.Freeze()
	err := d.Put(uint16(tifftag.Compression), Entry{Type: ifdtype.Short, Value: shorts(1)})
	require.Error(t, err)
}

func TestPutOnFrozenIfdAllowsWhitelistedTileOffsetsUpdate(t *testing.T) {
	d := New(binary.LittleEndian, false)
	d.Freeze()
	v := ifdtype.Value{Type: ifdtype.Long, Uints: []uint64{42}}
	err := d.Put(uint16(tifftag.TileOffsets), Entry{Type: ifdtype.Long, Count: 1, Value: v})
	require.NoError(t, err)

	e, ok := d.Get(uint16(tifftag.TileOffsets))
	require.True(t, ok)
	require.Equal(t, []uint64{42}, e.Value.Uints)
}

func TestDuplicateTagOnOpenIfdKeepsFirstOccurrence(t *testing.T) {
	d := New(binary.LittleEndian, false)
	require.NoError(t, d.Put(uint16(tifftag.ImageWidth), Entry{Type: ifdtype.Short, Value: shorts(10)}))
	require.NoError(t, d.Put(uint16(tifftag.ImageWidth), Entry{Type: ifdtype.Short, Value: shorts(99)}))

	e, ok := d.Get(uint16(tifftag.ImageWidth))
	require.True(t, ok)
	require.Equal(t, []uint64{10}, e.Value.Uints)
}

func TestIDsAreUniquePerIfd(t *testing.T) {
	a := New(binary.LittleEndian, false)
	b := New(binary.LittleEndian, false)
	require.NotEqual(t, a.ID(), b.ID())
}
