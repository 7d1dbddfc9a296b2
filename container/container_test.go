package container

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/echoflaresat/tifflayout/ifdtype"
	"github.com/echoflaresat/tifflayout/source"
	"github.com/echoflaresat/tifflayout/tifferr"
	"github.com/echoflaresat/tifflayout/tifftag"
)

// bytesSource adapts an in-memory byte slice to source.Source for tests.
type bytesSource struct{ data []byte }

var _ source.Source = (*bytesSource)(nil)

func (s *bytesSource) Len() (int64, error) { return int64(len(s.data)), nil }

func (s *bytesSource) ReadAt(buf []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(s.data)) {
		return 0, tifferr.New(tifferr.Truncated, "out of range")
	}
	n := copy(buf, s.data[off:])
	if n < len(buf) {
		return n, tifferr.New(tifferr.Truncated, "short read")
	}
	return n, nil
}

// entrySpec describes one 12-byte classic IFD entry to synthesize.
type entrySpec struct {
	tag   uint16
	typ   uint16
	count uint32
	value uint32 // inline value or offset, already placed at the right width by the caller
}

// buildClassicTIFF assembles a minimal little-endian classic TIFF: one
// IFD at offset 8 with the given entries (values assumed to fit inline),
// followed by nextIFDOffset, followed by trailingData appended at the end
// of the file.
func buildClassicTIFF(entries []entrySpec, nextIFDOffset uint32, trailingData []byte) []byte {
	bo := binary.LittleEndian
	buf := make([]byte, 8)
	buf[0], buf[1] = 'I', 'I'
	bo.PutUint16(buf[2:], 42)
	bo.PutUint32(buf[4:], 8)

	ifd := make([]byte, 2+len(entries)*12+4)
	bo.PutUint16(ifd, uint16(len(entries)))
	for i, e := range entries {
		off := 2 + i*12
		bo.PutUint16(ifd[off:], e.tag)
		bo.PutUint16(ifd[off+2:], e.typ)
		bo.PutUint32(ifd[off+4:], e.count)
		bo.PutUint32(ifd[off+8:], e.value)
	}
	bo.PutUint32(ifd[2+len(entries)*12:], nextIFDOffset)

	out := append(buf, ifd...)
	out = append(out, trailingData...)
	return out
}

func TestParserIFDsReadsTagsAndDerivedFields(t *testing.T) {
	pixels := []byte{10, 20, 30, 40, 50, 60, 70, 80}
	stripOffset := uint32(8 + 2 + 8*12 + 4) // right after this one IFD

	entries := []entrySpec{
		{tag: 256, typ: 3, count: 1, value: 4},             // ImageWidth
		{tag: 257, typ: 3, count: 1, value: 2},             // ImageLength
		{tag: 258, typ: 3, count: 1, value: 8},             // BitsPerSample
		{tag: 259, typ: 3, count: 1, value: 1},             // Compression = None
		{tag: 262, typ: 3, count: 1, value: 1},             // Photometric = BlackIsZero
		{tag: 273, typ: 4, count: 1, value: stripOffset},   // StripOffsets
		{tag: 277, typ: 3, count: 1, value: 1},             // SamplesPerPixel
		{tag: 279, typ: 4, count: 1, value: 8},             // StripByteCounts
	}
	raw := buildClassicTIFF(entries, 0, pixels)

	p, err := NewParser(&bytesSource{data: raw}, DefaultOptions())
	require.NoError(t, err)
	require.False(t, p.BigTIFF())
	require.Equal(t, binary.LittleEndian, p.ByteOrder())

	ifds, err := p.IFDs()
	require.NoError(t, err)
	require.Len(t, ifds, 1)

	w, err := ifds[0].ImageWidth()
	require.NoError(t, err)
	require.Equal(t, 4, w)

	h, err := ifds[0].ImageHeight()
	require.NoError(t, err)
	require.Equal(t, 2, h)

	offsets, err := ifds[0].TileOffsets()
	require.NoError(t, err)
	require.Equal(t, []int64{int64(stripOffset)}, offsets)
}

func TestParserReadsExternallyStoredASCIIValue(t *testing.T) {
	ascii := []byte("hello world\x00") // 12 bytes, exceeds the 4-byte inline threshold
	entries := []entrySpec{
		{tag: 270, typ: 2, count: uint32(len(ascii)), value: 26}, // offset right after this one IFD
	}
	raw := buildClassicTIFF(entries, 0, ascii)

	p, err := NewParser(&bytesSource{data: raw}, DefaultOptions())
	require.NoError(t, err)

	ifds, err := p.IFDs()
	require.NoError(t, err)
	require.Len(t, ifds, 1)

	entry, ok := ifds[0].Get(270)
	require.True(t, ok)
	require.Equal(t, []string{"hello world"}, entry.Value.Strings)
}

func TestParserDetectsCyclicIFDChain(t *testing.T) {
	entries := []entrySpec{
		{tag: 256, typ: 3, count: 1, value: 1},
		{tag: 257, typ: 3, count: 1, value: 1},
	}
	// next IFD offset points back at the same IFD (offset 8).
	raw := buildClassicTIFF(entries, 8, nil)

	p, err := NewParser(&bytesSource{data: raw}, DefaultOptions())
	require.NoError(t, err)

	_, err = p.IFDs()
	require.Error(t, err)
	require.True(t, tifferr.Is(err, tifferr.CyclicIFDChain))
}

func TestParserRejectsBadMagic(t *testing.T) {
	raw := []byte{'I', 'I', 0, 0, 8, 0, 0, 0}
	_, err := NewParser(&bytesSource{data: raw}, DefaultOptions())
	require.Error(t, err)
	require.True(t, tifferr.Is(err, tifferr.NotTiff))
}

func TestLastIFDOffsetFieldPosSurvivesSubIFDTraversal(t *testing.T) {
	// One main-chain IFD carrying a SubIFD tag that points at a second,
	// empty IFD placed right after it. After IFDs() returns,
	// LastIFDOffsetFieldPos must still point at the main chain's own
	// trailing next-IFD-offset field, not the sub-IFD's.
	entries := []entrySpec{
		{tag: uint16(tifftag.SubIFD), typ: 4, count: 1, value: 26},
	}
	raw := buildClassicTIFF(entries, 0, []byte{0, 0, 0, 0, 0, 0}) // sub-ifd: 0 entries, next=0

	p, err := NewParser(&bytesSource{data: raw}, DefaultOptions())
	require.NoError(t, err)

	ifds, err := p.IFDs()
	require.NoError(t, err)
	require.Len(t, ifds, 2)

	// Main IFD: header(8) + count(2) + one 12-byte entry = offset 22.
	require.EqualValues(t, 22, p.LastIFDOffsetFieldPos())
}

func TestReadEntryValueRejectsOverflowingCount(t *testing.T) {
	h := fileHeader{byteOrder: binary.LittleEndian, bigTIFF: true}
	src := source.NewLocked(&bytesSource{data: make([]byte, 64)})

	// count * 8 wraps a uint64, so an unchecked multiplication would
	// alias to a small inline-sized total and smuggle the real count
	// through to loadValue's make([]uint64, count).
	const hugeCount = (1 << 61) + 1
	_, err := readEntryValue(src, h, ifdtype.Long8, hugeCount, make([]byte, 8), 0)
	require.Error(t, err)
	require.True(t, tifferr.Is(err, tifferr.Malformed))
}

func TestReadEntryValueRejectsOutOfRangeOffset(t *testing.T) {
	h := fileHeader{byteOrder: binary.LittleEndian, bigTIFF: true}
	src := source.NewLocked(&bytesSource{data: make([]byte, 64)})

	_, err := readEntryValue(src, h, ifdtype.Long, 100, make([]byte, 8), 32)
	require.Error(t, err)
	require.True(t, tifferr.Is(err, tifferr.Malformed))
}
