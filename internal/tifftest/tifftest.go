// Package tifftest builds small in-memory Ifd values for other packages'
// tests, so each package's test suite does not need to hand-roll TIFF tag
// tables to exercise tile, tilemap, codec, and region logic in isolation.
package tifftest

import (
	"encoding/binary"

	"github.com/echoflaresat/tifflayout/ifd"
	"github.com/echoflaresat/tifflayout/ifdtype"
	"github.com/echoflaresat/tifflayout/tifftag"
)

// Builder accumulates tag/value pairs for a synthetic Ifd.
type Builder struct {
	d *ifd.Ifd
}

// New starts a little-endian classic-TIFF Ifd builder.
func New() *Builder {
	return &Builder{d: ifd.New(binary.LittleEndian, false)}
}

func (b *Builder) put(tag tifftag.Tag, v ifdtype.Value) *Builder {
	_ = b.d.Put(uint16(tag), ifd.Entry{Type: v.Type, Count: uint64(v.Count()), Value: v})
	return b
}

// Short sets a SHORT-typed entry.
func (b *Builder) Short(tag tifftag.Tag, values ...uint64) *Builder {
	return b.put(tag, ifdtype.Value{Type: ifdtype.Short, Uints: values})
}

// Long sets a LONG-typed entry.
func (b *Builder) Long(tag tifftag.Tag, values ...uint64) *Builder {
	return b.put(tag, ifdtype.Value{Type: ifdtype.Long, Uints: values})
}

// Double sets a DOUBLE-typed entry.
func (b *Builder) Double(tag tifftag.Tag, values ...float64) *Builder {
	return b.put(tag, ifdtype.Value{Type: ifdtype.Double, Doubles: values})
}

// TileOffsets sets tag 324, usable before or after Build since it is on
// the frozen-Ifd mutation whitelist.
func (b *Builder) TileOffsets(values ...uint64) *Builder {
	return b.Long(tifftag.TileOffsets, values...)
}

// TileByteCounts sets tag 325, usable before or after Build since it is
// on the frozen-Ifd mutation whitelist.
func (b *Builder) TileByteCounts(values ...uint64) *Builder {
	return b.Long(tifftag.TileByteCounts, values...)
}

// Tiled sets the minimal required tags for a single-strip/tile 8-bit
// grayscale image of the given size, tiled into tileW x tileH cells, with
// tile offsets/byte-counts left for the caller to fill in via TileOffsets
// and TileByteCounts.
func (b *Builder) Tiled(width, height, tileW, tileH int) *Builder {
	return b.
		Short(tifftag.ImageWidth, uint64(width)).
		Short(tifftag.ImageLength, uint64(height)).
		Short(tifftag.BitsPerSample, 8).
		Short(tifftag.Compression, 1).
		Short(tifftag.PhotometricInterpretation, 1).
		Short(tifftag.SamplesPerPixel, 1).
		Short(tifftag.PlanarConfiguration, 1).
		Short(tifftag.TileWidth, uint64(tileW)).
		Short(tifftag.TileLength, uint64(tileH))
}

// Build freezes and returns the assembled Ifd.
func (b *Builder) Build() *ifd.Ifd {
	b.d.Freeze()
	return b.d
}

// Ifd exposes the (still mutable, until Build is called) underlying Ifd
// for whitelisted post-freeze updates such as TileOffsets/TileByteCounts.
func (b *Builder) Ifd() *ifd.Ifd { return b.d }
