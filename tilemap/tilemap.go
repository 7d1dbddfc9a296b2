// Package tilemap implements the TileMap: a logical grid of tiles/strips
// laid over one frozen Ifd, with the geometry derived from that Ifd and
// the insertion-ordered tile storage the region reader populates (spec
// §3, §4.2).
package tilemap

import (
	"reflect"

	"github.com/echoflaresat/tifflayout/ifd"
	"github.com/echoflaresat/tifflayout/planarconfig"
	"github.com/echoflaresat/tifflayout/tifferr"
	"github.com/echoflaresat/tifflayout/tile"
)

const maxGridSize = 1 << 31
const maxTileIndexValue = 1_000_000_000

// gridKey is the internal map key: just the grid coordinates, not the
// (redundantly derivable) cached pixel rectangle that lives on the public
// tile.Index.
type gridKey struct {
	Plane, XTile, YTile int
}

// TileMap is a grid over one frozen Ifd's tiles or strips.
type TileMap struct {
	ifd        *ifd.Ifd
	resizable  bool

	planarSeparated      bool
	numChannels          int
	numSeparatedPlanes   int
	tileSamplesPerPixel  int
	bytesPerSample       int
	tileBytesPerPixel    int
	totalBytesPerPixel   int

	tileSizeX, tileSizeY int
	tilePixels, tileBytes int

	dimX, dimY             int
	tileCountX, tileCountY int
	numTiles               int

	tiles map[gridKey]*tile.Tile
	order []gridKey
}

// New builds a TileMap over d, which must already be frozen. If resizable
// is false, d must carry known image dimensions (spec §4.2: "fails if
// image dimensions absent").
func New(d *ifd.Ifd, resizable bool) (*TileMap, error) {
	if !d.Frozen() {
		return nil, tifferr.New(tifferr.Malformed, "tilemap: ifd must be frozen before use")
	}

	planar, err := d.PlanarConfig()
	if err != nil {
		return nil, err
	}
	channels, err := d.SamplesPerPixel()
	if err != nil {
		return nil, err
	}
	bps, err := d.BytesPerSample()
	if err != nil {
		return nil, err
	}
	tsx, err := d.TileSizeX()
	if err != nil {
		return nil, err
	}
	tsy, err := d.TileSizeY()
	if err != nil {
		return nil, err
	}
	if err := d.CheckTileAreaInvariants(); err != nil {
		return nil, err
	}

	separated := planar == planarconfig.Separate
	planes := 1
	tileSPP := channels
	if separated {
		planes = channels
		tileSPP = 1
	}

	tm := &TileMap{
		ifd:                 d,
		resizable:           resizable,
		planarSeparated:     separated,
		numChannels:         channels,
		numSeparatedPlanes:  planes,
		tileSamplesPerPixel: tileSPP,
		bytesPerSample:      bps,
		tileBytesPerPixel:   tileSPP * bps,
		totalBytesPerPixel:  channels * bps,
		tileSizeX:           tsx,
		tileSizeY:           tsy,
		tilePixels:          tsx * tsy,
		tiles:               make(map[gridKey]*tile.Tile),
	}
	tm.tileBytes = tm.tilePixels * tm.tileBytesPerPixel

	w, wErr := d.ImageWidth()
	h, hErr := d.ImageHeight()
	if wErr != nil || hErr != nil {
		if !resizable {
			if wErr != nil {
				return nil, wErr
			}
			return nil, hErr
		}
		return tm, nil
	}
	if err := tm.SetDimensions(w, h); err != nil {
		return nil, err
	}
	return tm, nil
}

// Ifd returns the frozen Ifd this map was built from.
func (tm *TileMap) Ifd() *ifd.Ifd { return tm.ifd }

// Resizable reports whether Put may grow the grid to fit new tiles.
func (tm *TileMap) Resizable() bool { return tm.resizable }

// PlanarSeparated reports whether channels are stored as separate planes.
func (tm *TileMap) PlanarSeparated() bool { return tm.planarSeparated }

// NumChannels returns the image's total sample count.
func (tm *TileMap) NumChannels() int { return tm.numChannels }

// NumSeparatedPlanes returns the number of separated planes (1 if chunky).
func (tm *TileMap) NumSeparatedPlanes() int { return tm.numSeparatedPlanes }

// TileSamplesPerPixel returns the channel count stored within one tile's
// buffer (1 if planar-separated, else NumChannels).
func (tm *TileMap) TileSamplesPerPixel() int { return tm.tileSamplesPerPixel }

// BytesPerSample returns the per-channel byte width.
func (tm *TileMap) BytesPerSample() int { return tm.bytesPerSample }

// TileBytesPerPixel returns TileSamplesPerPixel * BytesPerSample.
func (tm *TileMap) TileBytesPerPixel() int { return tm.tileBytesPerPixel }

// TotalBytesPerPixel returns NumChannels * BytesPerSample.
func (tm *TileMap) TotalBytesPerPixel() int { return tm.totalBytesPerPixel }

// TileSizeX, TileSizeY return one tile's pixel dimensions.
func (tm *TileMap) TileSizeX() int { return tm.tileSizeX }
func (tm *TileMap) TileSizeY() int { return tm.tileSizeY }

// TilePixels returns TileSizeX * TileSizeY.
func (tm *TileMap) TilePixels() int { return tm.tilePixels }

// TileBytes returns the decoded byte length of one tile.
func (tm *TileMap) TileBytes() int { return tm.tileBytes }

// DimX, DimY return the current (possibly expanded) image dimensions.
func (tm *TileMap) DimX() int { return tm.dimX }
func (tm *TileMap) DimY() int { return tm.dimY }

// TileCountX, TileCountY return the current grid dimensions.
func (tm *TileMap) TileCountX() int { return tm.tileCountX }
func (tm *TileMap) TileCountY() int { return tm.tileCountY }

// NumTiles returns TileCountX * TileCountY * NumSeparatedPlanes.
func (tm *TileMap) NumTiles() int { return tm.numTiles }

// SetDimensions recomputes tile counts for an image of size w x h.
func (tm *TileMap) SetDimensions(w, h int) error {
	cx := ceilDiv(w, tm.tileSizeX)
	cy := ceilDiv(h, tm.tileSizeY)
	if err := tm.setTileCounts(cx, cy); err != nil {
		return err
	}
	tm.dimX, tm.dimY = w, h
	return nil
}

// ExpandSizes grows the image dimensions to at least minW x minH, a no-op
// if the map is already at least that large.
func (tm *TileMap) ExpandSizes(minW, minH int) error {
	w, h := tm.dimX, tm.dimY
	if minW > w {
		w = minW
	}
	if minH > h {
		h = minH
	}
	if w == tm.dimX && h == tm.dimY {
		return nil
	}
	return tm.SetDimensions(w, h)
}

// ExpandTileCounts grows the grid to at least minCX x minCY tiles, a no-op
// if it is already at least that large.
func (tm *TileMap) ExpandTileCounts(minCX, minCY int) error {
	cx, cy := tm.tileCountX, tm.tileCountY
	if minCX > cx {
		cx = minCX
	}
	if minCY > cy {
		cy = minCY
	}
	if cx == tm.tileCountX && cy == tm.tileCountY {
		return nil
	}
	return tm.setTileCounts(cx, cy)
}

func (tm *TileMap) setTileCounts(cx, cy int) error {
	total := int64(cx) * int64(cy) * int64(tm.numSeparatedPlanes)
	if total >= maxGridSize {
		return tifferr.Newf(tifferr.OutOfRange, "tile grid too large: %d x %d x %d planes", cx, cy, tm.numSeparatedPlanes)
	}
	tm.tileCountX, tm.tileCountY = cx, cy
	tm.numTiles = int(total)
	return nil
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// NewIndex builds the TileIndex for grid coordinates (plane, xi, yi),
// computing its cached pixel rectangle from this map's tile size. This is
// the only supported way to construct a tile.Index for a given TileMap,
// so its geometry is always consistent with the map it is used against.
func (tm *TileMap) NewIndex(plane, xi, yi int) (tile.Index, error) {
	if plane < 0 || xi < 0 || yi < 0 {
		return tile.Index{}, tifferr.New(tifferr.OutOfRange, "tile index must be non-negative")
	}
	if int64(plane) > maxTileIndexValue || int64(xi) > maxTileIndexValue || int64(yi) > maxTileIndexValue {
		return tile.Index{}, tifferr.New(tifferr.OutOfRange, "tile index exceeds 1e9 bound")
	}
	fromX := int64(xi) * int64(tm.tileSizeX)
	fromY := int64(yi) * int64(tm.tileSizeY)
	toX := fromX + int64(tm.tileSizeX)
	toY := fromY + int64(tm.tileSizeY)
	if toX > maxGridSize || toY > maxGridSize {
		return tile.Index{}, tifferr.New(tifferr.OutOfRange, "tile rectangle exceeds 2^31 bound")
	}
	return tile.Index{Plane: plane, XTile: xi, YTile: yi, FromX: fromX, FromY: fromY, ToX: toX, ToY: toY}, nil
}

// LinearIndex computes the TileMap's linear tile ordering, per spec §4.2:
//
//	linear_index(plane, xi, yi) = (plane*tile_count_y + yi)*tile_count_x + xi
func (tm *TileMap) LinearIndex(plane, xi, yi int) (int, error) {
	if plane < 0 || plane >= tm.numSeparatedPlanes || xi < 0 || xi >= tm.tileCountX || yi < 0 || yi >= tm.tileCountY {
		return 0, tifferr.Newf(tifferr.OutOfRange, "tile index (%d,%d,%d) outside grid %dx%dx%d", plane, xi, yi, tm.numSeparatedPlanes, tm.tileCountX, tm.tileCountY)
	}
	return (plane*tm.tileCountY+yi)*tm.tileCountX + xi, nil
}

// Put inserts t into the grid at its Index's coordinates. In resizable
// mode the grid grows to encompass t; in fixed mode, a tile outside the
// current grid is rejected.
func (tm *TileMap) Put(t *tile.Tile) error {
	if t.IFDID != 0 && t.IFDID != tm.ifd.ID() {
		return tifferr.New(tifferr.Malformed, "tilemap: tile belongs to a different ifd")
	}
	k := gridKey{Plane: t.Index.Plane, XTile: t.Index.XTile, YTile: t.Index.YTile}

	if tm.resizable {
		if err := tm.ExpandTileCounts(k.XTile+1, k.YTile+1); err != nil {
			return err
		}
		if k.Plane >= tm.numSeparatedPlanes {
			return tifferr.Newf(tifferr.OutOfRange, "plane %d outside %d separated planes", k.Plane, tm.numSeparatedPlanes)
		}
	} else {
		if k.XTile >= tm.tileCountX || k.YTile >= tm.tileCountY || k.Plane >= tm.numSeparatedPlanes {
			return tifferr.Newf(tifferr.OutOfRange, "tile (%d,%d,%d) outside fixed grid %dx%dx%d", k.Plane, k.XTile, k.YTile, tm.numSeparatedPlanes, tm.tileCountX, tm.tileCountY)
		}
	}

	if _, exists := tm.tiles[k]; !exists {
		tm.order = append(tm.order, k)
	}
	tm.tiles[k] = t
	return nil
}

// Get returns the tile at (plane, xi, yi), if present.
func (tm *TileMap) Get(plane, xi, yi int) (*tile.Tile, bool) {
	t, ok := tm.tiles[gridKey{Plane: plane, XTile: xi, YTile: yi}]
	return t, ok
}

// Clear drops all tiles and resets the grid's tile counts to zero.
func (tm *TileMap) Clear() {
	tm.tiles = make(map[gridKey]*tile.Tile)
	tm.order = nil
	tm.tileCountX, tm.tileCountY, tm.numTiles = 0, 0, 0
}

// Equal reports whether tm and other refer to the same Ifd (by identity),
// share the same resizable/planar flags, and hold identical tile content.
func (tm *TileMap) Equal(other *TileMap) bool {
	if other == nil {
		return false
	}
	if tm.ifd.ID() != other.ifd.ID() {
		return false
	}
	if tm.resizable != other.resizable || tm.planarSeparated != other.planarSeparated {
		return false
	}
	if len(tm.tiles) != len(other.tiles) {
		return false
	}
	for k, v := range tm.tiles {
		ov, ok := other.tiles[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}
