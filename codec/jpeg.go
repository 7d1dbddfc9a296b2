package codec

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/echoflaresat/tifflayout/tifferr"
)

// JPEGCodec implements Compression == JPEG (and the legacy OLD_JPEG
// value, which the decode pipeline's JPEGTables fixup stage normalizes
// into the same abbreviated-stream shape before this codec ever sees it)
// using the standard library's baseline/progressive JPEG decoder. TIFF's
// embedded streams are ordinary JFIF streams once JPEGTables has been
// spliced back in, so no third-party JPEG decoder from this module's
// dependency set was needed here.
type JPEGCodec struct{}

func (JPEGCodec) Decode(encoded []byte, opts Opts) ([]byte, error) {
	if opts.MaxDecodedBytes > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(encoded))
		if err == nil {
			// 4 bytes/pixel covers every image type jpeg.Decode can
			// produce (Gray, YCbCr, CMYK, RGBA); this is a pre-decode
			// sanity bound, not the precise output size.
			if estimated := cfg.Width * cfg.Height * 4; estimated > opts.MaxDecodedBytes {
				return nil, tifferr.Newf(tifferr.OutOfRange, "jpeg image %dx%d exceeds decoded size limit %d", cfg.Width, cfg.Height, opts.MaxDecodedBytes)
			}
		}
	}

	img, err := jpeg.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}

	switch px := img.(type) {
	case *image.Gray:
		return append([]byte(nil), px.Pix...), nil
	case *image.YCbCr:
		return ycbcrToInterleaved(px), nil
	case *image.CMYK:
		return append([]byte(nil), px.Pix...), nil
	case *image.RGBA:
		return rgbaToRGB(px), nil
	default:
		return nil, tifferr.Newf(tifferr.Unsupported, "jpeg: unsupported decoded image type %T", img)
	}
}

func ycbcrToInterleaved(img *image.YCbCr) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			yi := img.YOffset(x, y)
			ci := img.COffset(x, y)
			out = append(out, img.Y[yi], img.Cb[ci], img.Cr[ci])
		}
	}
	return out
}

func rgbaToRGB(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			off := row + (x-b.Min.X)*4
			out = append(out, img.Pix[off], img.Pix[off+1], img.Pix[off+2])
		}
	}
	return out
}
