package codec

import (
	"bytes"
	"io"

	"golang.org/x/image/ccitt"

	"github.com/echoflaresat/tifflayout/tifferr"
)

// CCITTMode selects which Group mode a CCITTCodec instance decodes.
type CCITTMode int

const (
	CCITTGroup3 CCITTMode = iota
	CCITTGroup4
)

// CCITTCodec implements Compression == G3 or G4 via golang.org/x/image's
// ccitt package. Plain CCITT Modified Huffman (Compression == CCITT, the
// original 1D-only scheme distinct from true Group 3) has no decoder in
// that package and none elsewhere in this module's dependency set; it is
// left unregistered, so requests for it surface as tifferr.Unsupported
// from the Registry.
type CCITTCodec struct {
	Mode CCITTMode
}

func (c CCITTCodec) Decode(encoded []byte, opts Opts) ([]byte, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, tifferr.New(tifferr.Malformed, "ccitt: width and height are required")
	}

	mode := ccitt.Group4
	if c.Mode == CCITTGroup3 {
		mode = ccitt.Group3
	}

	r := ccitt.NewReader(bytes.NewReader(encoded), ccitt.MSB, mode, opts.Width, opts.Height, nil)
	var reader io.Reader = r
	if opts.MaxDecodedBytes > 0 {
		reader = io.LimitReader(r, int64(opts.MaxDecodedBytes)+1)
	}
	return io.ReadAll(reader)
}
