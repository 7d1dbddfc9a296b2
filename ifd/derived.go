package ifd

import (
	"github.com/echoflaresat/tifflayout/compression"
	"github.com/echoflaresat/tifflayout/fillorder"
	"github.com/echoflaresat/tifflayout/ifdtype"
	"github.com/echoflaresat/tifflayout/photometric"
	"github.com/echoflaresat/tifflayout/planarconfig"
	"github.com/echoflaresat/tifflayout/predictor"
	"github.com/echoflaresat/tifflayout/sampleformat"
	"github.com/echoflaresat/tifflayout/tifferr"
	"github.com/echoflaresat/tifflayout/tifftag"
)

const maxInt31 = (1 << 31) - 1

func (d *Ifd) uintEntry(tag tifftag.Tag) ([]uint64, bool, error) {
	e, ok := d.Get(uint16(tag))
	if !ok {
		return nil, false, nil
	}
	u, err := e.Value.AsUint64Slice()
	if err != nil {
		return nil, true, tifferr.Wrapf(tifferr.Malformed, err, "tag %s", tag)
	}
	return u, true, nil
}

func (d *Ifd) firstUint(tag tifftag.Tag, def uint64) (uint64, error) {
	u, present, err := d.uintEntry(tag)
	if err != nil {
		return 0, err
	}
	if !present || len(u) == 0 {
		return def, nil
	}
	return u[0], nil
}

// ImageWidth returns the image's positive 31-bit-safe pixel width.
func (d *Ifd) ImageWidth() (int, error) {
	return d.positiveDim(tifftag.ImageWidth)
}

// ImageHeight returns the image's positive 31-bit-safe pixel height.
func (d *Ifd) ImageHeight() (int, error) {
	return d.positiveDim(tifftag.ImageLength)
}

func (d *Ifd) positiveDim(tag tifftag.Tag) (int, error) {
	v, present, err := d.uintEntry(tag)
	if err != nil {
		return 0, err
	}
	if !present || len(v) == 0 {
		return 0, tifferr.Newf(tifferr.Malformed, "missing required tag %s", tag)
	}
	n := v[0]
	if n == 0 || n > maxInt31 {
		return 0, tifferr.Newf(tifferr.OutOfRange, "tag %s out of range: %d", tag, n)
	}
	return int(n), nil
}

// BitsPerSample returns the per-channel bit widths; every value must be
// positive. The length is not checked against SamplesPerPixel here
// (BytesPerSample does that check).
func (d *Ifd) BitsPerSample() ([]int, error) {
	u, present, err := d.uintEntry(tifftag.BitsPerSample)
	if err != nil {
		return nil, err
	}
	if !present || len(u) == 0 {
		return []int{1}, nil // TIFF default when tag is absent
	}
	out := make([]int, len(u))
	for i, b := range u {
		if b == 0 {
			return nil, tifferr.Newf(tifferr.Malformed, "BitsPerSample[%d] must be positive", i)
		}
		out[i] = int(b)
	}
	return out, nil
}

// SamplesPerPixel returns the channel count. Compression == OLD_JPEG forces
// this to 3 regardless of the tag's value, per spec §3.
func (d *Ifd) SamplesPerPixel() (int, error) {
	comp, err := d.Compression()
	if err != nil {
		return 0, err
	}
	if comp == compression.JPEGOld {
		return 3, nil
	}
	n, err := d.firstUint(tifftag.SamplesPerPixel, 1)
	if err != nil {
		return 0, err
	}
	if n == 0 || n > 512 {
		return 0, tifferr.Newf(tifferr.OutOfRange, "SamplesPerPixel out of range: %d", n)
	}
	return int(n), nil
}

// BytesPerSample returns ceil(bits/8), requiring every channel's bit width
// to produce the same byte width.
func (d *Ifd) BytesPerSample() (int, error) {
	bits, err := d.BitsPerSample()
	if err != nil {
		return 0, err
	}
	spp, err := d.SamplesPerPixel()
	if err != nil {
		return 0, err
	}
	if len(bits) < spp {
		return 0, tifferr.Newf(tifferr.Malformed, "BitsPerSample has %d entries, need >= %d", len(bits), spp)
	}
	bps := (bits[0] + 7) / 8
	for i := 1; i < spp; i++ {
		if (bits[i]+7)/8 != bps {
			return 0, tifferr.New(tifferr.Unsupported, "non-equal bytes-per-sample across channels")
		}
	}
	if bps*spp > 4096 {
		return 0, tifferr.Newf(tifferr.OutOfRange, "channels * bytes_per_sample too large: %d", bps*spp)
	}
	return bps, nil
}

// PlanarConfig returns the planar configuration, defaulting to Contig.
func (d *Ifd) PlanarConfig() (planarconfig.Type, error) {
	n, err := d.firstUint(tifftag.PlanarConfiguration, uint64(planarconfig.Contig))
	if err != nil {
		return planarconfig.Unknown, err
	}
	return planarconfig.Type(n), nil
}

// Compression returns the compression scheme, defaulting to None.
func (d *Ifd) Compression() (compression.Type, error) {
	n, err := d.firstUint(tifftag.Compression, uint64(compression.None))
	if err != nil {
		return compression.Unknown, err
	}
	return compression.Type(n), nil
}

// Photometric returns the photometric interpretation. There is no safe
// universal default, so a missing tag is Malformed.
func (d *Ifd) Photometric() (photometric.Interpretation, error) {
	u, present, err := d.uintEntry(tifftag.PhotometricInterpretation)
	if err != nil {
		return photometric.Unknown, err
	}
	if !present || len(u) == 0 {
		return photometric.Unknown, tifferr.New(tifferr.Malformed, "missing PhotometricInterpretation")
	}
	return photometric.Interpretation(u[0]), nil
}

// FillOrder returns the fill order, defaulting to MSBFirst.
func (d *Ifd) FillOrder() (fillorder.Order, error) {
	n, err := d.firstUint(tifftag.FillOrder, uint64(fillorder.MSBFirst))
	if err != nil {
		return fillorder.Unknown, err
	}
	return fillorder.Order(n), nil
}

// Predictor returns the predictor, defaulting to None.
func (d *Ifd) Predictor() (predictor.Type, error) {
	n, err := d.firstUint(tifftag.Predictor, uint64(predictor.None))
	if err != nil {
		return predictor.Unknown, err
	}
	return predictor.Type(n), nil
}

// SampleFormat returns the sample format, defaulting to UInt.
func (d *Ifd) SampleFormat() (sampleformat.Type, error) {
	n, err := d.firstUint(tifftag.SampleFormat, uint64(sampleformat.UInt))
	if err != nil {
		return sampleformat.Unknown, err
	}
	return sampleformat.Type(n), nil
}

// HasTileInformation reports whether both TileWidth and TileLength are
// present. Exactly one being present is Malformed.
func (d *Ifd) HasTileInformation() (bool, error) {
	_, hasW, err := d.uintEntry(tifftag.TileWidth)
	if err != nil {
		return false, err
	}
	_, hasL, err := d.uintEntry(tifftag.TileLength)
	if err != nil {
		return false, err
	}
	if hasW != hasL {
		return false, tifferr.New(tifferr.Malformed, "TileWidth and TileLength must both be present or both absent")
	}
	return hasW && hasL, nil
}

// TileSizeX returns the tile width if tiled, else the full image width (a
// strip always spans the full row).
func (d *Ifd) TileSizeX() (int, error) {
	tiled, err := d.HasTileInformation()
	if err != nil {
		return 0, err
	}
	if tiled {
		n, err := d.firstUint(tifftag.TileWidth, 0)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, tifferr.New(tifferr.Malformed, "TileWidth must be positive")
		}
		return int(n), nil
	}
	return d.ImageWidth()
}

// TileSizeY returns the tile height if tiled, else RowsPerStrip.
func (d *Ifd) TileSizeY() (int, error) {
	tiled, err := d.HasTileInformation()
	if err != nil {
		return 0, err
	}
	if tiled {
		n, err := d.firstUint(tifftag.TileLength, 0)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, tifferr.New(tifferr.Malformed, "TileLength must be positive")
		}
		return int(n), nil
	}
	n, err := d.firstUint(tifftag.RowsPerStrip, 0)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		h, err := d.ImageHeight()
		if err != nil {
			return 0, err
		}
		return h, nil // RowsPerStrip absent means "one strip for the whole image"
	}
	return int(n), nil
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// TileCountX returns ceil(image_width / tile_size_x).
func (d *Ifd) TileCountX() (int, error) {
	w, err := d.ImageWidth()
	if err != nil {
		return 0, err
	}
	tsx, err := d.TileSizeX()
	if err != nil {
		return 0, err
	}
	return ceilDiv(w, tsx), nil
}

// TileCountY returns ceil(image_height / tile_size_y).
func (d *Ifd) TileCountY() (int, error) {
	h, err := d.ImageHeight()
	if err != nil {
		return 0, err
	}
	tsy, err := d.TileSizeY()
	if err != nil {
		return 0, err
	}
	return ceilDiv(h, tsy), nil
}

// CheckTileAreaInvariants validates the 31-bit area bounds spec §3
// requires: tile_size_x*tile_size_y fits in 31 bits, and that product
// times bytes-per-pixel also fits in 31 bits.
func (d *Ifd) CheckTileAreaInvariants() error {
	tsx, err := d.TileSizeX()
	if err != nil {
		return err
	}
	tsy, err := d.TileSizeY()
	if err != nil {
		return err
	}
	area := int64(tsx) * int64(tsy)
	if area > maxInt31 {
		return tifferr.Newf(tifferr.OutOfRange, "tile area %d exceeds 31-bit bound", area)
	}
	bps, err := d.BytesPerSample()
	if err != nil {
		return err
	}
	spp, err := d.SamplesPerPixel()
	if err != nil {
		return err
	}
	if area*int64(bps)*int64(spp) > maxInt31 {
		return tifferr.Newf(tifferr.OutOfRange, "tile byte size exceeds 31-bit bound")
	}
	return nil
}

// tileOrStripArray loads a tile/strip offsets or byte-counts array, reading
// the tile tag when HasTileInformation is true and the strip tag otherwise,
// honoring the per-IFD cache.
func (d *Ifd) tileOrStripArray(tileTag, stripTag tifftag.Tag, cache *[]int64) ([]int64, error) {
	if d.cacheValid && *cache != nil {
		return *cache, nil
	}
	tiled, err := d.HasTileInformation()
	if err != nil {
		return nil, err
	}
	tag := stripTag
	if tiled {
		tag = tileTag
	}
	u, present, err := d.uintEntry(tag)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, tifferr.Newf(tifferr.Malformed, "missing %s", tag)
	}
	out := make([]int64, len(u))
	for i, v := range u {
		if v > maxInt31 {
			return nil, tifferr.Newf(tifferr.OutOfRange, "%s[%d] exceeds 31-bit bound: %d", tag, i, v)
		}
		out[i] = int64(v)
	}
	expected, err := d.expectedTileCount()
	if err != nil {
		return nil, err
	}
	if len(out) != expected {
		return nil, tifferr.Newf(tifferr.Malformed, "%s has %d entries, expected %d", tag, len(out), expected)
	}
	*cache = out
	d.cacheValid = true
	return out, nil
}

func (d *Ifd) expectedTileCount() (int, error) {
	cx, err := d.TileCountX()
	if err != nil {
		return 0, err
	}
	cy, err := d.TileCountY()
	if err != nil {
		return 0, err
	}
	planar, err := d.PlanarConfig()
	if err != nil {
		return 0, err
	}
	planes := 1
	if planar == planarconfig.Separate {
		spp, err := d.SamplesPerPixel()
		if err != nil {
			return 0, err
		}
		planes = spp
	}
	total := int64(cx) * int64(cy) * int64(planes)
	if total >= (1 << 31) {
		return 0, tifferr.Newf(tifferr.OutOfRange, "tile grid too large: %d", total)
	}
	return int(total), nil
}

// TileOffsets returns the per-tile/strip byte offsets into the source.
func (d *Ifd) TileOffsets() ([]int64, error) {
	return d.tileOrStripArray(tifftag.TileOffsets, tifftag.StripOffsets, &d.cachedTileOffsets)
}

// TileByteCounts returns the per-tile/strip encoded byte counts.
func (d *Ifd) TileByteCounts() ([]int64, error) {
	return d.tileOrStripArray(tifftag.TileByteCounts, tifftag.StripByteCounts, &d.cachedTileByteCounts)
}

// JPEGTables returns the shared JPEG table segment, if present.
func (d *Ifd) JPEGTables() ([]byte, bool) {
	e, ok := d.Get(uint16(tifftag.JPEGTables))
	if !ok {
		return nil, false
	}
	return e.Value.Bytes, true
}

// YCbCrSubSampling returns the (subXLog, subYLog) logarithms of the chroma
// subsampling factors, defaulting to (1, 1) meaning 2x2 subsampling.
func (d *Ifd) YCbCrSubSampling() (subXLog, subYLog int, err error) {
	u, present, err := d.uintEntry(tifftag.YCbCrSubSampling)
	if err != nil {
		return 0, 0, err
	}
	if !present || len(u) < 2 {
		return 1, 1, nil
	}
	subX, subY := u[0], u[1]
	logOf := func(v uint64) (int, error) {
		switch v {
		case 1:
			return 0, nil
		case 2:
			return 1, nil
		case 4:
			return 2, nil
		default:
			return 0, tifferr.Newf(tifferr.Unsupported, "unsupported YCbCrSubSampling factor %d", v)
		}
	}
	xl, err := logOf(subX)
	if err != nil {
		return 0, 0, err
	}
	yl, err := logOf(subY)
	if err != nil {
		return 0, 0, err
	}
	return xl, yl, nil
}

// ReferenceBlackWhite returns the 6-value reference black/white array,
// defaulting to [0,255,128,255,128,255].
func (d *Ifd) ReferenceBlackWhite() ([6]float64, error) {
	def := [6]float64{0, 255, 128, 255, 128, 255}
	e, ok := d.Get(uint16(tifftag.ReferenceBlackWhite))
	if !ok {
		return def, nil
	}
	if e.Value.Type != ifdtype.Rational || len(e.Value.Rationals) != 6 {
		return def, nil
	}
	var out [6]float64
	for i, r := range e.Value.Rationals {
		out[i] = r.Float64()
	}
	return out, nil
}

// YCbCrCoefficients returns the (lumaRed, lumaGreen, lumaBlue) transform
// coefficients, defaulting to the CCIR 601 values (0.299, 0.587, 0.114).
func (d *Ifd) YCbCrCoefficients() (lumaRed, lumaGreen, lumaBlue float64, err error) {
	e, ok := d.Get(uint16(tifftag.YCbCrCoefficients))
	if !ok || e.Value.Type != ifdtype.Rational || len(e.Value.Rationals) != 3 {
		return 0.299, 0.587, 0.114, nil
	}
	return e.Value.Rationals[0].Float64(), e.Value.Rationals[1].Float64(), e.Value.Rationals[2].Float64(), nil
}
