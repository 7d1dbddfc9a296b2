package codec

import (
	"bytes"
	"compress/lzw"
	"io"
)

// LZWCodec implements Compression == LZW using the standard library's MSB-
// first LZW reader. TIFF's LZW variant adds an "early change" to the code
// width not present in the stdlib implementation or in any LZW library in
// this module's dependency set; streams produced by encoders that rely on
// early change will fail to decode. No ecosystem TIFF-flavored LZW codec
// was available to wire in its place.
type LZWCodec struct{}

func (LZWCodec) Decode(encoded []byte, opts Opts) ([]byte, error) {
	lr := lzw.NewReader(bytes.NewReader(encoded), lzw.MSB, 8)
	defer lr.Close()

	var r io.Reader = lr
	if opts.MaxDecodedBytes > 0 {
		r = io.LimitReader(lr, int64(opts.MaxDecodedBytes)+1)
	}
	return io.ReadAll(r)
}
