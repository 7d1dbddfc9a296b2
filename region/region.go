// Package region implements ReadRegion: assembling an arbitrary pixel
// rectangle from the tiles or strips of a TileMap, decoding each tile on
// demand and compositing the overlap into the caller's output buffer
// (spec §4.6).
package region

import (
	"github.com/echoflaresat/tifflayout/codec"
	"github.com/echoflaresat/tifflayout/decodepipeline"
	"github.com/echoflaresat/tifflayout/ifd"
	"github.com/echoflaresat/tifflayout/source"
	"github.com/echoflaresat/tifflayout/tifferr"
	"github.com/echoflaresat/tifflayout/tile"
	"github.com/echoflaresat/tifflayout/tilemap"
)

// ReadOptions configures one ReadRegion call (the region-reader subset of
// spec §6's configuration surface).
type ReadOptions struct {
	// StoreTilesInMap caches each decoded tile into the TileMap so a
	// later overlapping ReadRegion call can reuse it. Default: true.
	StoreTilesInMap bool

	// CropTilesToImageBoundaries clips each tile's size to the image
	// edge. A present tile is decoded at its full declared geometry and
	// its decoded data cropped afterwards; a missing tile is cropped
	// before it is filled. Default: true; TIFF tiles routinely overhang
	// the image on the right/bottom edge.
	CropTilesToImageBoundaries bool

	// MissingTilesAllowed treats a zero offset or zero byte count as an
	// intentionally absent tile, filled with ByteFiller, rather than an
	// error. Default: false.
	MissingTilesAllowed bool

	// ByteFiller is the fill value used for missing tiles and for the
	// portion of a requested region that lies outside the image.
	ByteFiller byte

	// AutoUnpackUnusualPrecisions drives decodepipeline stage 5.
	// Default: true.
	AutoUnpackUnusualPrecisions bool

	// InterleaveResults re-interleaves the output into chunky
	// (RGBRGB...) layout; when false the result is planar
	// (RRR...GGG...BBB...). Default: false.
	InterleaveResults bool

	// YCbCrCorrection drives decodepipeline stage 6. Default: true.
	YCbCrCorrection bool

	// MaxDecodedTileBytes bounds each tile's decoded size. Zero means
	// unbounded.
	MaxDecodedTileBytes int
}

// DefaultReadOptions returns the spec-documented defaults.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		StoreTilesInMap:             true,
		CropTilesToImageBoundaries:  true,
		AutoUnpackUnusualPrecisions: true,
		YCbCrCorrection:             true,
	}
}

// ReadRegion reads the pixel rectangle [fromX, fromX+sizeX) x [fromY,
// fromY+sizeY) from tm, decoding and caching whichever intersecting
// tiles are not already present. The result is sizeX*sizeY pixels of
// tm.TotalBytesPerPixel() bytes each, planar by plane unless
// opts.InterleaveResults requests chunky output.
func ReadRegion(tm *tilemap.TileMap, src *source.LockedSource, reg *codec.Registry, fromX, fromY, sizeX, sizeY int, opts ReadOptions) ([]byte, error) {
	if sizeX <= 0 || sizeY <= 0 {
		return nil, tifferr.New(tifferr.OutOfRange, "region: size must be positive")
	}

	channels := tm.NumChannels()
	bps := tm.BytesPerSample()
	planes := make([][]byte, channels)
	for c := range planes {
		planes[c] = make([]byte, sizeX*sizeY*bps)
		if opts.ByteFiller != 0 {
			fill(planes[c], opts.ByteFiller)
		}
	}

	tsx, tsy := tm.TileSizeX(), tm.TileSizeY()
	xiFrom := fromX / tsx
	xiTo := (fromX + sizeX - 1) / tsx
	yiFrom := fromY / tsy
	yiTo := (fromY + sizeY - 1) / tsy

	for plane := 0; plane < tm.NumSeparatedPlanes(); plane++ {
		for yi := yiFrom; yi <= yiTo; yi++ {
			if yi < 0 || yi >= tm.TileCountY() {
				continue
			}
			for xi := xiFrom; xi <= xiTo; xi++ {
				if xi < 0 || xi >= tm.TileCountX() {
					continue
				}
				t, err := getOrLoadTile(tm, src, reg, plane, xi, yi, opts)
				if err != nil {
					return nil, err
				}
				if t == nil {
					continue
				}
				compositeTile(tm, t, planes, fromX, fromY, sizeX, sizeY)
			}
		}
	}

	if opts.InterleaveResults {
		return interleave(planes, sizeX*sizeY, bps), nil
	}
	out := make([]byte, 0, channels*sizeX*sizeY*bps)
	for _, p := range planes {
		out = append(out, p...)
	}
	return out, nil
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

// getOrLoadTile returns the tile at (plane, xi, yi), decoding and (if
// requested) caching it if not already present in tm.
func getOrLoadTile(tm *tilemap.TileMap, src *source.LockedSource, reg *codec.Registry, plane, xi, yi int, opts ReadOptions) (*tile.Tile, error) {
	if t, ok := tm.Get(plane, xi, yi); ok {
		return t, nil
	}

	d := tm.Ifd()
	idx, err := tm.NewIndex(plane, xi, yi)
	if err != nil {
		return nil, err
	}

	linear, err := tm.LinearIndex(plane, xi, yi)
	if err != nil {
		return nil, err
	}
	offsets, err := d.TileOffsets()
	if err != nil {
		return nil, err
	}
	byteCounts, err := d.TileByteCounts()
	if err != nil {
		return nil, err
	}
	if linear >= len(offsets) || linear >= len(byteCounts) {
		return nil, tifferr.Newf(tifferr.OutOfRange, "tile index %d out of range of offset/byte-count arrays", linear)
	}
	offset, byteCount := offsets[linear], byteCounts[linear]

	t := tile.New(idx, tm.TileSizeX(), tm.TileSizeY())
	t.IFDID = d.ID()

	if offset == 0 || byteCount == 0 {
		if !opts.MissingTilesAllowed {
			return nil, tifferr.Newf(tifferr.Malformed, "tile (%d,%d,%d) has zero offset or byte count and missing tiles are not allowed", plane, xi, yi)
		}
		t.Empty = true
		if opts.CropTilesToImageBoundaries {
			t.CropToMap(tm.DimX(), tm.DimY())
		}
		pixels := t.SizeX * t.SizeY
		bpp := tm.TileBytesPerPixel()
		buf := make([]byte, pixels*bpp)
		fill(buf, opts.ByteFiller)
		t.SetDecoded(buf, false)
	} else {
		// Decode at the tile's full on-disk geometry (t.SizeX/SizeY is
		// still tm.TileSizeX()/TileSizeY() here) so the predictor, bit
		// unpacker and CCITT codec see the real row stride. Only after
		// decoding are the declared size and decoded buffer cropped down
		// to the image boundary for a right/bottom edge tile.
		encoded := make([]byte, byteCount)
		if err := src.ReadExact(encoded, offset); err != nil {
			return nil, err
		}
		out, err := decodeTile(tm, d, reg, t, encoded, opts)
		if err != nil {
			return nil, err
		}
		t.SetDecoded(out.Data, out.Interleaved)
		t.AdjustNumberOfPixels(t.SizeX*t.SizeY, tm.TileBytesPerPixel())
		if opts.CropTilesToImageBoundaries {
			t.CropDecodedToMap(tm.DimX(), tm.DimY(), tm.TileBytesPerPixel())
		}
	}

	t.SeparateSamplesIfNecessary(tm.TileSamplesPerPixel(), tm.BytesPerSample())

	if opts.StoreTilesInMap {
		if err := tm.Put(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeTile(tm *tilemap.TileMap, d *ifd.Ifd, reg *codec.Registry, t *tile.Tile, encoded []byte, opts ReadOptions) (decodepipeline.Output, error) {
	comp, err := d.Compression()
	if err != nil {
		return decodepipeline.Output{}, err
	}
	fo, err := d.FillOrder()
	if err != nil {
		return decodepipeline.Output{}, err
	}
	pred, err := d.Predictor()
	if err != nil {
		return decodepipeline.Output{}, err
	}
	bits, err := d.BitsPerSample()
	if err != nil {
		return decodepipeline.Output{}, err
	}
	sf, err := d.SampleFormat()
	if err != nil {
		return decodepipeline.Output{}, err
	}
	photo, err := d.Photometric()
	if err != nil {
		return decodepipeline.Output{}, err
	}
	subX, subY, err := d.YCbCrSubSampling()
	if err != nil {
		return decodepipeline.Output{}, err
	}
	refBW, err := d.ReferenceBlackWhite()
	if err != nil {
		return decodepipeline.Output{}, err
	}
	lr, lg, lb, err := d.YCbCrCoefficients()
	if err != nil {
		return decodepipeline.Output{}, err
	}
	tables, _ := d.JPEGTables()

	return decodepipeline.Run(reg, decodepipeline.Input{
		Encoded:                     encoded,
		SizeX:                       t.SizeX,
		SizeY:                       t.SizeY,
		FillOrder:                   fo,
		Compression:                 comp,
		JPEGTables:                  tables,
		Predictor:                   pred,
		TileSamplesPerPixel:         tm.TileSamplesPerPixel(),
		BitsPerSample:               bits,
		BytesPerSample:              tm.BytesPerSample(),
		SampleFormat:                sf,
		Photometric:                 photo,
		YCbCrSubXLog:                subX,
		YCbCrSubYLog:                subY,
		YCbCrCoefficients:           [3]float64{lr, lg, lb},
		ReferenceBlackWhite:         refBW,
		AutoUnpackUnusualPrecisions: opts.AutoUnpackUnusualPrecisions,
		YCbCrCorrection:             opts.YCbCrCorrection,
		MaxDecodedBytes:             opts.MaxDecodedTileBytes,
	})
}

// compositeTile copies the overlap between t's pixel rectangle and the
// requested region into planes, which is indexed by global channel.
func compositeTile(tm *tilemap.TileMap, t *tile.Tile, planes [][]byte, fromX, fromY, sizeX, sizeY int) {
	decoded, ok := t.Decoded()
	if !ok {
		return
	}
	bps := tm.BytesPerSample()
	tileChannels := tm.TileSamplesPerPixel()
	tilePixels := t.SizeX * t.SizeY
	if tilePixels == 0 {
		return
	}

	tileLeft, tileTop := int(t.Index.FromX), int(t.Index.FromY)
	overlapLeft := max(fromX, tileLeft)
	overlapTop := max(fromY, tileTop)
	overlapRight := min(fromX+sizeX, tileLeft+t.SizeX)
	overlapBottom := min(fromY+sizeY, tileTop+t.SizeY)
	if overlapLeft >= overlapRight || overlapTop >= overlapBottom {
		return
	}

	for lc := 0; lc < tileChannels; lc++ {
		globalChannel := lc
		if tm.PlanarSeparated() {
			globalChannel = t.Index.Plane
		}
		if globalChannel >= len(planes) {
			continue
		}
		dst := planes[globalChannel]
		planeOff := lc * tilePixels * bps

		for y := overlapTop; y < overlapBottom; y++ {
			tileRow := y - tileTop
			regionRow := y - fromY
			srcRowOff := planeOff + (tileRow*t.SizeX+(overlapLeft-tileLeft))*bps
			dstRowOff := (regionRow*sizeX + (overlapLeft - fromX)) * bps
			width := (overlapRight - overlapLeft) * bps
			if srcRowOff+width > len(decoded) || dstRowOff+width > len(dst) {
				continue
			}
			copy(dst[dstRowOff:dstRowOff+width], decoded[srcRowOff:srcRowOff+width])
		}
	}
}

func interleave(planes [][]byte, pixels, bps int) []byte {
	channels := len(planes)
	out := make([]byte, pixels*channels*bps)
	for i := 0; i < pixels; i++ {
		for c := 0; c < channels; c++ {
			srcOff := i * bps
			dstOff := (i*channels + c) * bps
			if srcOff+bps > len(planes[c]) {
				continue
			}
			copy(out[dstOff:dstOff+bps], planes[c][srcOff:srcOff+bps])
		}
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
