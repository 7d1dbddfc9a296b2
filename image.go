package tifflayout

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/x448/float16"

	"github.com/echoflaresat/tifflayout/photometric"
	"github.com/echoflaresat/tifflayout/region"
	"github.com/echoflaresat/tifflayout/sampleformat"
	"github.com/echoflaresat/tifflayout/tifferr"
	"github.com/echoflaresat/tifflayout/tilemap"
)

// regionImage adapts a TileMap into an image.Image, caching one decoded
// row at a time in an LRU so sequential and near-sequential access (the
// common case for image.Image consumers) only decodes each tile once per
// pass, the same tradeoff the teacher package's stripedTiff makes with
// its per-row cache.
type regionImage struct {
	parser *Parser
	tm     *tilemap.TileMap

	width, height  int
	channels       int
	bytesPerSample int
	photo          photometric.Interpretation
	sampleFormat   sampleformat.Type

	cache *lru.Cache
	mu    sync.Mutex
}

func newRegionImage(p *Parser, tm *tilemap.TileMap) (*regionImage, error) {
	d := tm.Ifd()
	photo, err := d.Photometric()
	if err != nil {
		return nil, err
	}
	sf, err := d.SampleFormat()
	if err != nil {
		return nil, err
	}

	switch photo {
	case photometric.RGB, photometric.YCbCr, photometric.BlackIsZero, photometric.WhiteIsZero, photometric.CMYK:
	default:
		return nil, tifferr.Newf(tifferr.Unsupported, "AsImage: unsupported photometric interpretation %s", photo)
	}

	bps := tm.BytesPerSample()
	if bps != 1 && bps != 2 {
		return nil, tifferr.Newf(tifferr.Unsupported, "AsImage: unsupported bytes per sample %d", bps)
	}
	if photo == photometric.CMYK && bps != 1 {
		return nil, tifferr.New(tifferr.Unsupported, "AsImage: CMYK is only supported at 8 bits per sample")
	}
	isFloat16 := sf == sampleformat.IEEEFP && bps == 2
	if isFloat16 && photo != photometric.BlackIsZero && photo != photometric.WhiteIsZero {
		return nil, tifferr.New(tifferr.Unsupported, "AsImage: half-precision float samples are only supported for grayscale photometric interpretations")
	}

	cache, err := lru.New(64)
	if err != nil {
		return nil, tifferr.Wrap(tifferr.IoError, err, "creating row cache")
	}

	return &regionImage{
		parser:         p,
		tm:             tm,
		width:          tm.DimX(),
		height:         tm.DimY(),
		channels:       tm.NumChannels(),
		bytesPerSample: bps,
		photo:          photo,
		sampleFormat:   sf,
		cache:          cache,
	}, nil
}

// ColorModel reports the color.Model matching this image's photometric
// interpretation and sample depth.
func (img *regionImage) ColorModel() color.Model {
	switch img.photo {
	case photometric.BlackIsZero, photometric.WhiteIsZero:
		if img.bytesPerSample == 2 {
			return color.Gray16Model
		}
		return color.GrayModel
	case photometric.CMYK:
		return color.CMYKModel
	default:
		if img.bytesPerSample == 2 {
			return color.RGBA64Model
		}
		return color.RGBAModel
	}
}

// Bounds returns the image's pixel rectangle.
func (img *regionImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.width, img.height)
}

// At decodes (if necessary) the row containing (x, y) and returns that
// pixel's color.
func (img *regionImage) At(x, y int) color.Color {
	row := img.getRow(y)
	bps := img.bytesPerSample
	base := x * img.channels * bps

	sample := func(c int) uint32 {
		off := base + c*bps
		if bps == 1 {
			return uint32(row[off])
		}
		return uint32(row[off])<<8 | uint32(row[off+1])
	}

	if img.sampleFormat == sampleformat.IEEEFP && bps == 2 {
		v := clampFloat16ToGray16(sample(0))
		if img.photo == photometric.WhiteIsZero {
			v = 0xffff - v
		}
		return color.Gray16{Y: v}
	}

	switch img.photo {
	case photometric.BlackIsZero:
		return grayColor(sample(0), bps)
	case photometric.WhiteIsZero:
		// Already inverted by the decode pipeline (spec §4.5 step 6).
		return grayColor(sample(0), bps)
	case photometric.CMYK:
		return color.CMYK{C: byte(sample(0)), M: byte(sample(1)), Y: byte(sample(2)), K: byte(sample(3))}
	default: // RGB, YCbCr (already converted to RGB by the decode pipeline)
		return rgbColor(sample(0), sample(1), sample(2), bps)
	}
}

// clampFloat16ToGray16 interprets raw as an IEEE 754 half-precision float
// (TIFF SampleFormat IEEEFP at 2 bytes per sample) and maps it into
// Gray16's [0, 1] display range, clamping out-of-range radiometric values
// rather than wrapping them.
func clampFloat16ToGray16(raw uint32) uint16 {
	f := float16.Frombits(uint16(raw)).Float32()
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 0xffff
	default:
		return uint16(f * 0xffff)
	}
}

func grayColor(v uint32, bps int) color.Color {
	if bps == 2 {
		return color.Gray16{Y: uint16(v)}
	}
	return color.Gray{Y: uint8(v)}
}

func rgbColor(r, g, b uint32, bps int) color.Color {
	if bps == 2 {
		return color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: 0xffff}
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}
}

func (img *regionImage) getRow(y int) []byte {
	if row, ok := img.cache.Get(y); ok {
		return row.([]byte)
	}

	img.mu.Lock()
	defer img.mu.Unlock()
	if row, ok := img.cache.Get(y); ok {
		return row.([]byte)
	}

	data, err := region.ReadRegion(img.tm, img.parser.src, img.parser.registry, 0, y, img.width, 1, region.ReadOptions{
		StoreTilesInMap:             true,
		CropTilesToImageBoundaries:  img.parser.opts.CropTilesToImageBoundaries,
		MissingTilesAllowed:         img.parser.opts.MissingTilesAllowed,
		ByteFiller:                  img.parser.opts.ByteFiller,
		AutoUnpackUnusualPrecisions: img.parser.opts.AutoUnpackUnusualPrecisions,
		YCbCrCorrection:             img.parser.opts.YCbCrCorrection,
		InterleaveResults:           true,
		MaxDecodedTileBytes:         img.parser.opts.MaxDecodedTileBytes,
	})
	if err != nil {
		panic(fmt.Sprintf("tifflayout: reading row %d: %v", y, err))
	}

	img.cache.Add(y, data)
	return data
}
