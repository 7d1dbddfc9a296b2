package container

import (
	"github.com/echoflaresat/tifflayout/ifd"
	"github.com/echoflaresat/tifflayout/ifdtype"
	"github.com/echoflaresat/tifflayout/source"
	"github.com/echoflaresat/tifflayout/tifferr"
)

// parseEntry decodes one 12- (classic) or 20-byte (BigTIFF) IFD entry
// already in memory at raw, and resolves/loads its value, following an
// external offset if necessary.
func parseEntry(src *source.LockedSource, h fileHeader, raw []byte) (tag uint16, entry ifd.Entry, err error) {
	bo := h.byteOrder
	tag = bo.Uint16(raw[0:2])
	dt := ifdtype.DataType(bo.Uint16(raw[2:4]))

	var count uint64
	var valueField []byte
	var valueOffset int64

	if h.bigTIFF {
		count = bo.Uint64(raw[4:12])
		valueField = raw[12:20]
		valueOffset = int64(bo.Uint64(raw[12:20]))
	} else {
		count = uint64(bo.Uint32(raw[4:8]))
		valueField = raw[8:12]
		valueOffset = int64(bo.Uint32(raw[8:12]))
	}

	if _, ok := ifdtype.ElementSize(dt); !ok {
		return tag, ifd.Entry{}, tifferr.Newf(tifferr.Malformed, "tag %d: unknown IFD type code %d", tag, uint16(dt))
	}

	val, err := readEntryValue(src, h, dt, count, valueField, valueOffset)
	if err != nil {
		return tag, ifd.Entry{}, tifferr.Wrapf(tifferr.Malformed, err, "tag %d", tag)
	}

	return tag, ifd.Entry{Type: dt, Count: count, Value: val}, nil
}
