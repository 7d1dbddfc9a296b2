package codec

import (
	"github.com/echoflaresat/tifflayout/tifferr"
)

// PackBitsCodec implements Compression == PackBits, the simple byte-
// oriented run-length scheme described in TIFF spec section 9. No
// ecosystem library in this module's dependency set implements it; the
// algorithm below follows the same control-byte interpretation as
// mdouchement/tiff's unpackBits.
type PackBitsCodec struct{}

func (PackBitsCodec) Decode(encoded []byte, opts Opts) ([]byte, error) {
	out := make([]byte, 0, len(encoded)*2)
	i := 0
	for i < len(encoded) {
		ctrl := int8(encoded[i])
		i++
		switch {
		case ctrl >= 0:
			n := int(ctrl) + 1
			if i+n > len(encoded) {
				return nil, tifferr.New(tifferr.Malformed, "packbits: literal run overruns buffer")
			}
			out = append(out, encoded[i:i+n]...)
			i += n
		case ctrl == -128:
			// no-op control byte
		default:
			if i >= len(encoded) {
				return nil, tifferr.New(tifferr.Malformed, "packbits: replicate run missing value byte")
			}
			v := encoded[i]
			i++
			n := 1 - int(ctrl)
			for j := 0; j < n; j++ {
				out = append(out, v)
			}
		}
		if opts.MaxDecodedBytes > 0 && len(out) > opts.MaxDecodedBytes {
			return nil, tifferr.Newf(tifferr.OutOfRange, "packbits output exceeds limit %d", opts.MaxDecodedBytes)
		}
	}
	return out, nil
}
