// Package tifflayout provides a memory-efficient TIFF/BigTIFF decoder: a
// container parser over an IFD chain, and a tile-based region reader that
// pulls only the requested pixels from the source on demand, in the
// spirit of golang.org/x/image/tiff but without decoding the whole image
// eagerly.
//
//	⚠️ The source passed to NewParser must remain open for as long as the
//	returned Parser (or any image.Image built from it) is in use.
//
// If AsImage cannot set up a lazy image for a file (its header, IFD chain
// or image metadata is rejected), Decode falls back to
// golang.org/x/image/tiff, which decodes the whole image eagerly. A
// problem found only while pixel data is decoded does not trigger that
// fallback; it makes the returned image's At method panic.
package tifflayout

import (
	"image"
	"io"

	"github.com/echoflaresat/tifflayout/codec"
	"github.com/echoflaresat/tifflayout/compression"
	"github.com/echoflaresat/tifflayout/container"
	"github.com/echoflaresat/tifflayout/ifd"
	"github.com/echoflaresat/tifflayout/region"
	"github.com/echoflaresat/tifflayout/source"
	"github.com/echoflaresat/tifflayout/tilemap"

	stdtiff "golang.org/x/image/tiff"
)

const (
	littleEndianHeader = "II\x2A\x00"
	bigEndianHeader    = "MM\x00\x2A"
	bigTIFFLEHeader    = "II\x2B\x00"
	bigTIFFBEHeader    = "MM\x00\x2B"
)

// Options is this package's full configuration surface (spec §6):
// container validation strictness, decode-pipeline stage toggles, the
// region reader's boundary and missing-tile handling, and the codec
// registration hook.
type Options struct {
	RequireValidTiff bool
	CachingIFDs      bool

	AutoUnpackUnusualPrecisions bool
	YCbCrCorrection             bool
	CropTilesToImageBoundaries  bool
	MissingTilesAllowed         bool
	ByteFiller                  byte
	InterleaveResults           bool
	MaxDecodedTileBytes         int

	// ExtendedCodecs lets a caller register or override a Codec for a
	// given compression scheme before any tile is decoded.
	ExtendedCodecs map[compression.Type]codec.Codec

	// Logger receives non-fatal container diagnostics (sub-IFD parse
	// failures, skipped entries). May be nil.
	Logger func(container.LogEvent)
}

// DefaultOptions returns this package's documented defaults.
func DefaultOptions() Options {
	return Options{
		RequireValidTiff:            true,
		CachingIFDs:                 true,
		AutoUnpackUnusualPrecisions: true,
		YCbCrCorrection:             true,
		CropTilesToImageBoundaries:  true,
	}
}

// Parser is the entry point for reading one TIFF/BigTIFF container: its
// IFD chain, and pixel regions from any IFD in it.
type Parser struct {
	container *container.Parser
	src       *source.LockedSource
	registry  *codec.Registry
	opts      Options
}

// NewParser reads src's header and returns a Parser ready to enumerate
// IFDs and read regions.
func NewParser(src source.Source, opts Options) (*Parser, error) {
	locked := source.NewLocked(src)
	cp, err := container.NewParser(locked, container.Options{
		RequireValidTiff: opts.RequireValidTiff,
		CachingIFDs:      opts.CachingIFDs,
		Logger:           opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	reg := codec.NewRegistry()
	for t, c := range opts.ExtendedCodecs {
		reg.Register(t, c)
	}

	return &Parser{container: cp, src: locked, registry: reg, opts: opts}, nil
}

// IFDs returns every IFD in the container's chain (main chain, sub-IFDs,
// and EXIF IFDs), in traversal order.
func (p *Parser) IFDs() ([]*ifd.Ifd, error) {
	return p.container.IFDs()
}

// NewTileMap freezes d (if not already frozen) and builds a TileMap over
// it, ready for ReadRegion.
func (p *Parser) NewTileMap(d *ifd.Ifd) (*tilemap.TileMap, error) {
	d.Freeze()
	return tilemap.New(d, false)
}

// ReadRegion reads the pixel rectangle [fromX, fromX+sizeX) x [fromY,
// fromY+sizeY) from tm, per spec §4.6.
func (p *Parser) ReadRegion(tm *tilemap.TileMap, fromX, fromY, sizeX, sizeY int) ([]byte, error) {
	return region.ReadRegion(tm, p.src, p.registry, fromX, fromY, sizeX, sizeY, region.ReadOptions{
		StoreTilesInMap:             true,
		CropTilesToImageBoundaries:  p.opts.CropTilesToImageBoundaries,
		MissingTilesAllowed:         p.opts.MissingTilesAllowed,
		ByteFiller:                  p.opts.ByteFiller,
		AutoUnpackUnusualPrecisions: p.opts.AutoUnpackUnusualPrecisions,
		InterleaveResults:           p.opts.InterleaveResults,
		YCbCrCorrection:             p.opts.YCbCrCorrection,
		MaxDecodedTileBytes:         p.opts.MaxDecodedTileBytes,
	})
}

// AsImage adapts the first main-chain IFD of src into an image.Image that
// decodes tiles lazily as its pixels are read, generalizing the teacher
// package's stripedTiff/tiledTiff to the full tile/strip, planar, and
// photometric surface this package supports.
func AsImage(src source.Source, opts Options) (image.Image, error) {
	p, err := NewParser(src, opts)
	if err != nil {
		return nil, err
	}
	ifds, err := p.IFDs()
	if err != nil {
		return nil, err
	}
	if len(ifds) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	tm, err := p.NewTileMap(ifds[0])
	if err != nil {
		return nil, err
	}
	return newRegionImage(p, tm)
}

// Decode reads a TIFF image from r and returns it as an image.Image,
// preferring this package's lazy region-based decoder and falling back
// to golang.org/x/image/tiff when AsImage fails. Errors found only while
// pixels are decoded surface as panics from the returned image's At.
func Decode(r io.Reader) (image.Image, error) {
	var src source.Source
	if ra, ok := r.(io.ReaderAt); ok {
		if sz, ok := sizeOf(r); ok {
			src = source.FromReaderAt(ra, sz)
		}
	}
	if src == nil {
		if rs, ok := r.(io.ReadSeeker); ok {
			s, err := source.FromReadSeeker(rs)
			if err == nil {
				src = s
			}
		}
	}

	if src != nil {
		if img, err := AsImage(src, DefaultOptions()); err == nil {
			return img, nil
		}
	}
	return stdtiff.Decode(r)
}

// DecodeConfig returns the color model and dimensions of a TIFF image
// without decoding pixel data, delegating to golang.org/x/image/tiff for
// this metadata-only path.
func DecodeConfig(r io.Reader) (image.Config, error) {
	return stdtiff.DecodeConfig(r)
}

func sizeOf(r io.Reader) (int64, bool) {
	type sizer interface{ Size() int64 }
	if s, ok := r.(sizer); ok {
		return s.Size(), true
	}
	return 0, false
}

func init() {
	image.RegisterFormat("tiff", littleEndianHeader, Decode, DecodeConfig)
	image.RegisterFormat("tiff", bigEndianHeader, Decode, DecodeConfig)
	image.RegisterFormat("tiff", bigTIFFLEHeader, Decode, DecodeConfig)
	image.RegisterFormat("tiff", bigTIFFBEHeader, Decode, DecodeConfig)
}
