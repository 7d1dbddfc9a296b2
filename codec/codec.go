// Package codec implements the per-compression-scheme decoders the decode
// pipeline's "decompress" stage invokes (spec §4.5 step 3), and the
// Registry that maps a TIFF Compression tag value to one.
package codec

import (
	"github.com/echoflaresat/tifflayout/compression"
	"github.com/echoflaresat/tifflayout/tifferr"
)

// Opts carries the per-tile context a Codec needs beyond the raw encoded
// bytes: the declared tile geometry and sample layout, plus any shared
// tables the scheme requires.
type Opts struct {
	Width, Height    int
	BitsPerSample    []int
	SamplesPerPixel  int
	LittleEndian     bool

	// JPEGTables holds the shared JPEG abbreviated-stream tables (tag
	// 347), prefixed onto the tile's own JPEG stream before decoding.
	JPEGTables []byte

	// MaxDecodedBytes bounds the output buffer a codec may allocate,
	// guarding against a corrupt byte count driving an unbounded
	// allocation. Zero means unbounded.
	MaxDecodedBytes int
}

// Codec decodes one tile's or strip's compressed bytes into raw samples,
// still in whatever sample layout the scheme natively produces (the
// decode pipeline's later stages normalize fill order, prediction, and
// channel layout).
type Codec interface {
	Decode(encoded []byte, opts Opts) ([]byte, error)
}

// Registry maps a Compression tag value to the Codec that handles it.
type Registry struct {
	codecs map[compression.Type]Codec
}

// NewRegistry returns a Registry pre-populated with every codec this
// package implements (spec §4.5's "decompress via Codec interface").
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[compression.Type]Codec)}
	r.Register(compression.None, PassthroughCodec{})
	r.Register(compression.Deflate, DeflateCodec{})
	r.Register(compression.DeflateOld, DeflateCodec{})
	r.Register(compression.LZW, LZWCodec{})
	r.Register(compression.PackBits, PackBitsCodec{})
	r.Register(compression.G3, CCITTCodec{Mode: CCITTGroup3})
	r.Register(compression.G4, CCITTCodec{Mode: CCITTGroup4})
	r.Register(compression.JPEG, JPEGCodec{})
	r.Register(compression.JPEGOld, JPEGCodec{})
	return r
}

// Register installs (or overrides) the codec for a compression scheme,
// the "extended codec registration" surface of spec §6.
func (r *Registry) Register(t compression.Type, c Codec) {
	r.codecs[t] = c
}

// Get returns the codec registered for t, if any.
func (r *Registry) Get(t compression.Type) (Codec, bool) {
	c, ok := r.codecs[t]
	return c, ok
}

// Decode looks up the codec for t and invokes it, wrapping an unknown
// scheme as tifferr.Unsupported.
func (r *Registry) Decode(t compression.Type, encoded []byte, opts Opts) ([]byte, error) {
	c, ok := r.codecs[t]
	if !ok {
		return nil, tifferr.Newf(tifferr.Unsupported, "no codec registered for compression %s", t)
	}
	out, err := c.Decode(encoded, opts)
	if err != nil {
		return nil, tifferr.Wrapf(tifferr.CodecError, err, "decoding compression %s", t)
	}
	if opts.MaxDecodedBytes > 0 && len(out) > opts.MaxDecodedBytes {
		return nil, tifferr.Newf(tifferr.OutOfRange, "decoded size %d exceeds limit %d", len(out), opts.MaxDecodedBytes)
	}
	return out, nil
}
