// Package tile implements the Tile type: the encoded/decoded bytes for one
// grid cell of a TileMap, plus the layout conversions the decode pipeline
// and region reader need (spec §4.3).
package tile

// Index identifies one cell of a TileMap's logical grid: a separated-plane
// index (0 for chunky images) and a (x,y) tile/strip coordinate, together
// with the pixel-space rectangle that tile occupies in the full image.
type Index struct {
	Plane  int
	XTile  int
	YTile  int
	FromX  int64
	FromY  int64
	ToX    int64
	ToY    int64
}

// Tile holds the encoded bytes read from the source and the decoded bytes
// produced by the decode pipeline, along with the flags describing their
// current layout.
type Tile struct {
	Index Index

	// IFDID is the identity of the Ifd this tile was decoded from
	// (ifd.Ifd.ID()), used by TileMap.Put to reject a tile built against
	// a different IFD than the map it is being inserted into.
	IFDID uint64

	// SizeX, SizeY are the tile's declared pixel dimensions, which may be
	// cropped to the image boundary by CropToMap.
	SizeX, SizeY int

	encoded    []byte
	hasEncoded bool

	decoded    []byte
	hasDecoded bool

	// Interleaved indicates channels are chunky (RGBRGB...) inside
	// Decoded; Separated indicates they are planar (RRR...GGG...BBB...).
	// Exactly one should be true once Decoded is populated; both false
	// means the tile has not been through separation yet.
	Interleaved bool
	Separated   bool

	// Empty marks a tile whose offset or byte-count was zero and
	// missing_tiles_allowed was enabled: its Decoded buffer is a run of
	// byte_filler with no codec invocation.
	Empty bool
}

// New returns a Tile for the given grid index and declared size.
func New(index Index, sizeX, sizeY int) *Tile {
	return &Tile{Index: index, SizeX: sizeX, SizeY: sizeY}
}

// SetEncoded stores the as-read-from-disk bytes for this tile.
func (t *Tile) SetEncoded(data []byte) {
	t.encoded = data
	t.hasEncoded = true
}

// Encoded returns the stored encoded bytes and whether they have been set.
func (t *Tile) Encoded() ([]byte, bool) {
	return t.encoded, t.hasEncoded
}

// SetDecoded stores the pipeline's output bytes and their layout flag.
func (t *Tile) SetDecoded(data []byte, interleaved bool) {
	t.decoded = data
	t.hasDecoded = true
	t.Interleaved = interleaved
	t.Separated = !interleaved
}

// Decoded returns the stored decoded bytes and whether they have been set.
func (t *Tile) Decoded() ([]byte, bool) {
	return t.decoded, t.hasDecoded
}

// CropToMap reduces the tile's declared SizeX/SizeY to the portion that
// actually lies within an image of dimensions imgW x imgH, per spec §4.3.
// A tile entirely within bounds is unchanged.
func (t *Tile) CropToMap(imgW, imgH int) {
	if right := int(t.Index.FromX) + t.SizeX; right > imgW {
		if clipped := imgW - int(t.Index.FromX); clipped > 0 {
			t.SizeX = clipped
		} else {
			t.SizeX = 0
		}
	}
	if bottom := int(t.Index.FromY) + t.SizeY; bottom > imgH {
		if clipped := imgH - int(t.Index.FromY); clipped > 0 {
			t.SizeY = clipped
		} else {
			t.SizeY = 0
		}
	}
}

// CropDecodedToMap reduces a fully-decoded tile's SizeX/SizeY to the
// portion that lies within an image of dimensions imgW x imgH, per spec
// §4.3, re-slicing Decoded (still in its full-tile, chunky row-major
// layout) down to that top-left subrectangle. Unlike CropToMap, this must
// run after the decode pipeline has produced Decoded at the tile's full
// on-disk geometry: cropping the declared size first would feed the
// decoder (predictor, bit-unpack, CCITT) the wrong row stride for an
// edge tile whose on-disk dimensions don't divide the image evenly.
func (t *Tile) CropDecodedToMap(imgW, imgH, bytesPerPixel int) {
	fullX, fullY := t.SizeX, t.SizeY
	t.CropToMap(imgW, imgH)
	if t.SizeX == fullX && t.SizeY == fullY {
		return
	}
	out := make([]byte, t.SizeX*t.SizeY*bytesPerPixel)
	rowBytes := t.SizeX * bytesPerPixel
	fullRowBytes := fullX * bytesPerPixel
	for row := 0; row < t.SizeY; row++ {
		srcOff := row * fullRowBytes
		dstOff := row * rowBytes
		if srcOff+rowBytes > len(t.decoded) {
			break
		}
		copy(out[dstOff:dstOff+rowBytes], t.decoded[srcOff:srcOff+rowBytes])
	}
	t.decoded = out
}

// AdjustNumberOfPixels truncates or zero-extends Decoded so that it holds
// exactly wantPixels pixels of bytesPerPixel bytes each, per spec §4.3.
// Codecs occasionally return slightly short or long buffers (the last tile
// of a non-evenly-divisible image, or an over-eager run-length decoder);
// this normalizes them before the region reader indexes into them.
func (t *Tile) AdjustNumberOfPixels(wantPixels, bytesPerPixel int) {
	want := wantPixels * bytesPerPixel
	if len(t.decoded) == want {
		return
	}
	out := make([]byte, want)
	copy(out, t.decoded)
	t.decoded = out
	t.hasDecoded = true
}

// SeparateSamplesIfNecessary de-interleaves Decoded from chunky
// (RGBRGB...) to planar (RRR...GGG...BBB...) layout in place, when
// samplesPerPixel > 1 and the tile is currently interleaved. It is a
// no-op for single-channel tiles or tiles already separated.
func (t *Tile) SeparateSamplesIfNecessary(samplesPerPixel, bytesPerSample int) {
	if samplesPerPixel <= 1 || !t.Interleaved {
		t.Interleaved = false
		t.Separated = true
		return
	}
	pixels := len(t.decoded) / (samplesPerPixel * bytesPerSample)
	out := make([]byte, len(t.decoded))
	for i := 0; i < pixels; i++ {
		for s := 0; s < samplesPerPixel; s++ {
			srcOff := (i*samplesPerPixel + s) * bytesPerSample
			dstOff := (s*pixels + i) * bytesPerSample
			copy(out[dstOff:dstOff+bytesPerSample], t.decoded[srcOff:srcOff+bytesPerSample])
		}
	}
	t.decoded = out
	t.Interleaved = false
	t.Separated = true
}
