package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// DeflateCodec implements Compression == Deflate or DeflateOld via
// klauspost/compress's zlib reader.
type DeflateCodec struct{}

func (DeflateCodec) Decode(encoded []byte, opts Opts) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var limit int64 = -1
	if opts.MaxDecodedBytes > 0 {
		limit = int64(opts.MaxDecodedBytes) + 1
	}
	var r io.Reader = zr
	if limit >= 0 {
		r = io.LimitReader(zr, limit)
	}
	return io.ReadAll(r)
}
