// Package ifd models one Image File Directory: a typed tag->value map plus
// the derived quantities (image dimensions, tile geometry, bits per
// sample, ...) the rest of the engine reads off it, with the invariants
// spec.md §3 requires.
package ifd

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/echoflaresat/tifflayout/ifdtype"
	"github.com/echoflaresat/tifflayout/tifferr"
	"github.com/echoflaresat/tifflayout/tifftag"
)

// SubKind discriminates the relationship of an IFD to the one that
// referenced it.
type SubKind int

const (
	// KindMain is an IFD reached by walking the classic next-IFD chain.
	KindMain SubKind = iota
	// KindSubIFD is reached via the SubIFD tag (330).
	KindSubIFD
	// KindExif is reached via the ExifIFD tag (34665).
	KindExif
	// KindThumbnail marks an IFD the caller has identified as a
	// thumbnail (the core itself never infers this; it is set by
	// higher-level callers that know the convention in use).
	KindThumbnail
)

// Entry is one parsed IFD field: its declared type, element count, and
// decoded value.
type Entry struct {
	Type  ifdtype.DataType
	Count uint64
	Value ifdtype.Value
}

// mutableWhitelist is the set of tags a frozen IFD still accepts updates
// for (spec §5 "IFD freeze discipline"): image dimensions in tiled mode,
// and the tile/strip offset and byte-count arrays.
var mutableWhitelist = map[uint16]bool{
	uint16(tifftag.ImageWidth):      true,
	uint16(tifftag.ImageLength):     true,
	uint16(tifftag.TileOffsets):     true,
	uint16(tifftag.TileByteCounts):  true,
	uint16(tifftag.StripOffsets):    true,
	uint16(tifftag.StripByteCounts): true,
}

var generationCounter uint64

// Ifd is one Image File Directory, together with the bookkeeping the
// engine's other layers need: where it was read from, what follows it in
// the chain, and caches of its derived byte-count/offset arrays.
type Ifd struct {
	id uint64 // monotonically allocated identity, used instead of pointer
	// identity so TileMap equality (spec §4.2) survives serialization or
	// relocation of the Ifd value.

	byteOrder binary.ByteOrder
	bigTIFF   bool

	fileOffset    *int64 // where this IFD's header was read from; nil if synthesized
	nextIFDOffset *int64 // file offset of the next IFD; nil if absent; 0 means "last"
	subKind       *SubKind

	order   []uint16
	entries map[uint16]Entry

	frozen bool

	cachedTileByteCounts []int64
	cachedTileOffsets    []int64
	cacheValid           bool
}

// New creates an empty, unfrozen IFD for the given byte order.
func New(byteOrder binary.ByteOrder, bigTIFF bool) *Ifd {
	return &Ifd{
		id:        atomic.AddUint64(&generationCounter, 1),
		byteOrder: byteOrder,
		bigTIFF:   bigTIFF,
		entries:   make(map[uint16]Entry),
	}
}

// ID returns the monotonically allocated identity of this IFD. Two Ifd
// values compare as "the same IFD" (for TileMap purposes) iff their IDs
// match.
func (d *Ifd) ID() uint64 { return d.id }

// ByteOrder returns the endianness this IFD's values were decoded with.
func (d *Ifd) ByteOrder() binary.ByteOrder { return d.byteOrder }

// BigTIFF reports whether this IFD was read from a BigTIFF container.
func (d *Ifd) BigTIFF() bool { return d.bigTIFF }

// FileOffset returns the file offset this IFD's header was read from, and
// whether that offset is known (it is absent for synthesized IFDs).
func (d *Ifd) FileOffset() (int64, bool) {
	if d.fileOffset == nil {
		return 0, false
	}
	return *d.fileOffset, true
}

// SetFileOffset records where this IFD's header was read from.
func (d *Ifd) SetFileOffset(off int64) { d.fileOffset = &off }

// NextIFDOffset returns the file offset of the next IFD, whether it is
// the last IFD in the chain (offset == 0), and whether it is known at all.
func (d *Ifd) NextIFDOffset() (offset int64, isLast bool, known bool) {
	if d.nextIFDOffset == nil {
		return 0, false, false
	}
	return *d.nextIFDOffset, *d.nextIFDOffset == 0, true
}

// SetNextIFDOffset records the file offset of the next IFD (0 for "last").
func (d *Ifd) SetNextIFDOffset(off int64) { d.nextIFDOffset = &off }

// SubKind returns the discriminator set for this IFD (if any) and whether
// one was set at all; a main-chain IFD parsed directly by the container
// has none set unless the caller calls SetSubKind.
func (d *Ifd) SubKind() (SubKind, bool) {
	if d.subKind == nil {
		return KindMain, false
	}
	return *d.subKind, true
}

// SetSubKind marks this IFD as reached via the given relationship.
func (d *Ifd) SetSubKind(k SubKind) { d.subKind = &k }

// Frozen reports whether structural mutation of this IFD is restricted to
// the updater whitelist.
func (d *Ifd) Frozen() bool { return d.frozen }

// Freeze prevents further structural mutation except for the whitelisted
// updaters (image dimensions in tiled mode; tile/strip offset and
// byte-count arrays). Freezing also invalidates any stale derived caches
// so later whitelisted mutations cannot leave them stale (Design Notes,
// spec §9: "This spec requires invalidating those caches on any mutation,
// or forbidding mutation after first read").
func (d *Ifd) Freeze() {
	d.frozen = true
	d.cacheValid = false
	d.cachedTileByteCounts = nil
	d.cachedTileOffsets = nil
}

// Put inserts tag's entry if it has not been seen before (duplicate tags
// keep their first occurrence, per spec §3). On a frozen IFD, Put only
// succeeds for tags in the updater whitelist, and invalidates any cached
// derived arrays so they are recomputed from the new value.
func (d *Ifd) Put(tag uint16, entry Entry) error {
	if d.frozen && !mutableWhitelist[tag] {
		return tifferr.Newf(tifferr.Malformed, "ifd: cannot mutate frozen entry for tag %d", tag)
	}
	if _, exists := d.entries[tag]; exists {
		if !d.frozen {
			// Duplicate tag on a still-open IFD: first occurrence wins,
			// silently ignore the rest.
			return nil
		}
		// A whitelisted update on a frozen IFD overwrites in place and
		// invalidates caches derived from it.
		d.entries[tag] = entry
		d.invalidateCachesFor(tag)
		return nil
	}
	d.order = append(d.order, tag)
	d.entries[tag] = entry
	return nil
}

// Remove deletes tag's entry. It fails on a frozen IFD.
func (d *Ifd) Remove(tag uint16) error {
	if d.frozen {
		return tifferr.New(tifferr.Malformed, "ifd: cannot remove entry from frozen ifd")
	}
	if _, ok := d.entries[tag]; !ok {
		return nil
	}
	delete(d.entries, tag)
	for i, t := range d.order {
		if t == tag {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear drops every entry. It fails on a frozen IFD.
func (d *Ifd) Clear() error {
	if d.frozen {
		return tifferr.New(tifferr.Malformed, "ifd: cannot clear frozen ifd")
	}
	d.order = nil
	d.entries = make(map[uint16]Entry)
	return nil
}

// Get returns the entry for tag, and whether it is present.
func (d *Ifd) Get(tag uint16) (Entry, bool) {
	e, ok := d.entries[tag]
	return e, ok
}

// Tags returns every tag present, in first-occurrence insertion order.
func (d *Ifd) Tags() []uint16 {
	out := make([]uint16, len(d.order))
	copy(out, d.order)
	return out
}

func (d *Ifd) invalidateCachesFor(tag uint16) {
	switch tifftag.Tag(tag) {
	case tifftag.TileOffsets, tifftag.StripOffsets, tifftag.TileByteCounts, tifftag.StripByteCounts,
		tifftag.ImageWidth, tifftag.ImageLength:
		d.cacheValid = false
		d.cachedTileByteCounts = nil
		d.cachedTileOffsets = nil
	}
}
