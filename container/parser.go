package container

import (
	"encoding/binary"

	"github.com/echoflaresat/tifflayout/ifd"
	"github.com/echoflaresat/tifflayout/source"
	"github.com/echoflaresat/tifflayout/tifferr"
	"github.com/echoflaresat/tifflayout/tifftag"
)

// LogEvent is delivered to an Options.Logger callback for non-fatal
// conditions: a Sub-IFD that failed to parse, or an unrecognized-but-
// optional entry that was skipped. The core holds no process-wide logger
// (spec §5 Design Notes); Logger is the caller's only hook.
type LogEvent struct {
	Message string
	Err     error
}

// Options configures the container parser's validation strictness and
// caching behavior (the subset of spec §6's configuration surface this
// layer owns).
type Options struct {
	// RequireValidTiff makes header and offset-range errors fatal
	// construction errors rather than attempting a best-effort parse.
	// Default: true.
	RequireValidTiff bool

	// CachingIFDs memoizes the full IFD list after the first traversal.
	// Default: true.
	CachingIFDs bool

	// Logger receives non-fatal diagnostics. May be nil.
	Logger func(LogEvent)
}

// DefaultOptions returns the spec §6-documented defaults.
func DefaultOptions() Options {
	return Options{
		RequireValidTiff: true,
		CachingIFDs:      true,
	}
}

func (o Options) log(msg string, err error) {
	if o.Logger != nil {
		o.Logger(LogEvent{Message: msg, Err: err})
	}
}

// Parser traverses the IFD chain of a single TIFF/BigTIFF container. It
// holds no decode state; that lives in the tile map / tile / decode
// pipeline layers that consume the Ifd values it produces.
type Parser struct {
	src    *source.LockedSource
	opts   Options
	header fileHeader

	lastIFDOffsetFieldPos int64

	cached   []*ifd.Ifd
	haveRead bool
}

// NewParser reads and validates the file header, then returns a Parser
// ready to walk the IFD chain.
func NewParser(src source.Source, opts Options) (*Parser, error) {
	locked := source.NewLocked(src)
	h, err := readHeader(locked, opts.RequireValidTiff)
	if err != nil {
		return nil, err
	}
	return &Parser{src: locked, opts: opts, header: h}, nil
}

// ByteOrder returns the container's byte order.
func (p *Parser) ByteOrder() binary.ByteOrder { return p.header.byteOrder }

// BigTIFF reports whether this file uses 64-bit BigTIFF offsets.
func (p *Parser) BigTIFF() bool { return p.header.bigTIFF }

// LastIFDOffsetFieldPos returns the file position of the next-IFD-offset
// field last read while traversing the main chain (spec §4.1: "exposed as
// state, used by higher layers for appending"). It is valid only after a
// call to IFDs.
func (p *Parser) LastIFDOffsetFieldPos() int64 {
	return p.lastIFDOffsetFieldPos
}

// IFDs walks the full next-IFD chain (following Sub-IFDs and EXIF IFDs
// non-fatally along the way) and returns every IFD found in traversal
// order, each main-chain IFD immediately followed by its own sub-IFDs. With
// CachingIFDs enabled the result is memoized after the first full
// traversal.
func (p *Parser) IFDs() ([]*ifd.Ifd, error) {
	if p.opts.CachingIFDs && p.haveRead {
		return p.cached, nil
	}

	var out []*ifd.Ifd
	visited := make(map[int64]bool)
	offset := p.header.firstIFDOffset

	for offset != 0 {
		if visited[offset] {
			return nil, tifferr.Newf(tifferr.CyclicIFDChain, "IFD offset %d revisited", offset)
		}
		visited[offset] = true

		d, next, err := p.parseOneIFD(offset)
		if err != nil {
			return nil, err
		}
		d.SetFileOffset(offset)
		d.SetNextIFDOffset(next)

		// followSubIFDs below calls parseOneIFD again for each Sub-IFD/
		// ExifIFD tag, which overwrites p.lastIFDOffsetFieldPos with that
		// sub-IFD's own trailing field; restore the main chain's, since
		// that's the one callers appending a new IFD need.
		mainChainFieldPos := p.lastIFDOffsetFieldPos

		out = append(out, d)
		p.followSubIFDs(d, &out)

		p.lastIFDOffsetFieldPos = mainChainFieldPos
		offset = next
	}

	if p.opts.CachingIFDs {
		p.cached = out
		p.haveRead = true
	}
	return out, nil
}

// parseOneIFD reads the entry count, all entries, and the trailing
// next-IFD-offset field starting at offset.
func (p *Parser) parseOneIFD(offset int64) (*ifd.Ifd, int64, error) {
	h := p.header

	countWidth := 2
	if h.bigTIFF {
		countWidth = 8
	}
	countBuf := make([]byte, countWidth)
	if err := p.src.ReadExact(countBuf, offset); err != nil {
		return nil, 0, err
	}
	var numEntries uint64
	if h.bigTIFF {
		numEntries = h.byteOrder.Uint64(countBuf)
	} else {
		numEntries = uint64(h.byteOrder.Uint16(countBuf))
	}
	if numEntries > maxIFDEntries {
		return nil, 0, tifferr.Newf(tifferr.Malformed, "IFD at %d declares %d entries, exceeding safety limit", offset, numEntries)
	}

	entryBytes := h.entryBytes()
	entriesOffset := offset + int64(countWidth)
	entriesBuf := make([]byte, int(numEntries)*entryBytes)
	if len(entriesBuf) > 0 {
		if err := p.src.ReadExact(entriesBuf, entriesOffset); err != nil {
			return nil, 0, err
		}
	}

	d := ifd.New(h.byteOrder, h.bigTIFF)
	for i := uint64(0); i < numEntries; i++ {
		raw := entriesBuf[int(i)*entryBytes : int(i+1)*entryBytes]
		tag, entry, err := parseEntry(p.src, h, raw)
		if err != nil {
			// An unrecognized-but-optional entry is skipped with a
			// warning rather than aborting the whole IFD; we treat any
			// per-entry parse failure the same way, since the entry's
			// tag is still known even when its value could not be
			// loaded.
			p.opts.log("skipping unreadable IFD entry", err)
			continue
		}
		if err := d.Put(tag, entry); err != nil {
			p.opts.log("skipping duplicate/invalid IFD entry", err)
		}
	}

	p.lastIFDOffsetFieldPos = entriesOffset + int64(len(entriesBuf))
	nextWidth := 4
	if h.bigTIFF {
		nextWidth = 8
	}
	nextBuf := make([]byte, nextWidth)
	if err := p.src.ReadExact(nextBuf, p.lastIFDOffsetFieldPos); err != nil {
		return nil, 0, err
	}
	var next int64
	if h.bigTIFF {
		next = int64(h.byteOrder.Uint64(nextBuf))
	} else {
		next = int64(h.byteOrder.Uint32(nextBuf))
	}
	if p.opts.RequireValidTiff && next != 0 {
		size, _ := p.src.Len()
		if next < 0 || next >= size {
			return nil, 0, tifferr.Newf(tifferr.Malformed, "next IFD offset %d out of range [0,%d)", next, size)
		}
	}

	return d, next, nil
}

// followSubIFDs follows the SubIFD and ExifIFD tags of d, if present,
// parsing the single IFD at each listed offset; a sub-IFD's own
// next-IFD-offset is not followed. Failures are swallowed
// per spec §4.1: "failures to parse these are non-fatal (logged, skipped)".
func (p *Parser) followSubIFDs(d *ifd.Ifd, out *[]*ifd.Ifd) {
	p.followSubIFDTag(d, uint16(tifftag.SubIFD), ifd.KindSubIFD, out)
	p.followSubIFDTag(d, uint16(tifftag.ExifIFD), ifd.KindExif, out)
}

func (p *Parser) followSubIFDTag(d *ifd.Ifd, tag uint16, kind ifd.SubKind, out *[]*ifd.Ifd) {
	entry, ok := d.Get(tag)
	if !ok {
		return
	}
	offsets, err := entry.Value.AsUint64Slice()
	if err != nil {
		p.opts.log("sub-ifd tag has unexpected type", err)
		return
	}
	for _, off := range offsets {
		sub, _, err := p.parseOneIFD(int64(off))
		if err != nil {
			p.opts.log("failed to parse sub-ifd, skipping", err)
			continue
		}
		sub.SetFileOffset(int64(off))
		sub.SetSubKind(kind)
		*out = append(*out, sub)
	}
}
