// Package container implements the TIFF/BigTIFF container parser: header
// recognition, IFD-chain traversal, entry parsing and value loading (spec
// §4.1, §6).
package container

import (
	"encoding/binary"

	"github.com/echoflaresat/tifflayout/source"
	"github.com/echoflaresat/tifflayout/tifferr"
)

const (
	leMarker = "II"
	beMarker = "MM"

	classicMagic = 42
	bigTIFFMagic = 43

	classicEntryBytes = 12
	bigTIFFEntryBytes = 20

	classicInlineThreshold = 4
	bigTIFFInlineThreshold = 8

	// Minimum file length: header + one full entry + next-offset field.
	classicMinLength = 8 + 2 + classicEntryBytes + 4
	bigTIFFMinLength = 16 + 8 + bigTIFFEntryBytes + 8

	maxIFDEntries = 1_000_000
)

// fileHeader holds the decoded byte-order marker, magic, and the layout
// parameters (entry size, inline threshold, offset widths) that differ
// between classic TIFF and BigTIFF.
type fileHeader struct {
	byteOrder      binary.ByteOrder
	bigTIFF        bool
	firstIFDOffset int64
}

// readHeader decodes the 8 (classic) or 16 (BigTIFF) byte file header.
func readHeader(src *source.LockedSource, requireValid bool) (fileHeader, error) {
	size, err := src.Len()
	if err != nil {
		return fileHeader{}, tifferr.Wrap(tifferr.IoError, err, "reading source length")
	}
	if size < 8 {
		return fileHeader{}, tifferr.Newf(tifferr.Truncated, "file too short: %d bytes", size)
	}

	buf := make([]byte, 8)
	if err := src.ReadExact(buf, 0); err != nil {
		return fileHeader{}, err
	}

	var bo binary.ByteOrder
	switch string(buf[0:2]) {
	case leMarker:
		bo = binary.LittleEndian
	case beMarker:
		bo = binary.BigEndian
	default:
		return fileHeader{}, tifferr.New(tifferr.NotTiff, "unrecognized byte-order marker")
	}

	magic := bo.Uint16(buf[2:4])
	switch magic {
	case classicMagic:
		if size < classicMinLength {
			return fileHeader{}, tifferr.Newf(tifferr.Truncated, "file too short: %d bytes", size)
		}
		offset := int64(bo.Uint32(buf[4:8]))
		if requireValid && (offset < 0 || offset >= size) {
			return fileHeader{}, tifferr.Newf(tifferr.Malformed, "first IFD offset %d out of range [0,%d)", offset, size)
		}
		if offset == 0 {
			return fileHeader{}, tifferr.New(tifferr.Malformed, "first IFD offset is 0")
		}
		return fileHeader{byteOrder: bo, bigTIFF: false, firstIFDOffset: offset}, nil

	case bigTIFFMagic:
		if size < bigTIFFMinLength {
			return fileHeader{}, tifferr.Newf(tifferr.Truncated, "BigTIFF file too short: %d bytes", size)
		}
		rest := make([]byte, 8)
		if err := src.ReadExact(rest, 8); err != nil {
			return fileHeader{}, err
		}
		offsetSize := bo.Uint16(buf[4:6])
		constZero := bo.Uint16(buf[6:8])
		if offsetSize != 8 || constZero != 0 {
			return fileHeader{}, tifferr.Newf(tifferr.Malformed, "unexpected BigTIFF offset-size header: size=%d const=%d", offsetSize, constZero)
		}
		offset := int64(bo.Uint64(rest))
		if offset < 0 {
			return fileHeader{}, tifferr.New(tifferr.Malformed, "negative BigTIFF first IFD offset")
		}
		if requireValid && offset >= size {
			return fileHeader{}, tifferr.Newf(tifferr.Malformed, "first IFD offset %d out of range [0,%d)", offset, size)
		}
		if offset == 0 {
			return fileHeader{}, tifferr.New(tifferr.Malformed, "first IFD offset is 0")
		}
		return fileHeader{byteOrder: bo, bigTIFF: true, firstIFDOffset: offset}, nil

	default:
		return fileHeader{}, tifferr.New(tifferr.NotTiff, "unrecognized magic number")
	}
}

func (h fileHeader) entryBytes() int {
	if h.bigTIFF {
		return bigTIFFEntryBytes
	}
	return classicEntryBytes
}

func (h fileHeader) inlineThreshold() int {
	if h.bigTIFF {
		return bigTIFFInlineThreshold
	}
	return classicInlineThreshold
}
