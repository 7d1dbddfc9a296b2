package container

import (
	"encoding/binary"

	"github.com/echoflaresat/tifflayout/byteorder"
	"github.com/echoflaresat/tifflayout/ifdtype"
	"github.com/echoflaresat/tifflayout/source"
	"github.com/echoflaresat/tifflayout/tifferr"
)

// loadValue decodes count elements of the given type from raw, which is
// either the inline field bytes or the bytes read from an external offset
// (the caller has already resolved which). It implements spec §4.1 "Value
// loading".
func loadValue(bo binary.ByteOrder, dt ifdtype.DataType, count uint64, raw []byte) (ifdtype.Value, error) {
	v := ifdtype.Value{Type: dt}

	switch dt {
	case ifdtype.Byte, ifdtype.SByte, ifdtype.Undefined:
		v.Bytes = append([]byte(nil), raw[:count]...)

	case ifdtype.ASCII:
		v.Strings = splitASCII(raw[:count])

	case ifdtype.Short:
		v.Uints = make([]uint64, count)
		for i := uint64(0); i < count; i++ {
			v.Uints[i] = uint64(bo.Uint16(raw[i*2:]))
		}

	case ifdtype.Long, ifdtype.IFD:
		v.Uints = make([]uint64, count)
		for i := uint64(0); i < count; i++ {
			v.Uints[i] = uint64(bo.Uint32(raw[i*4:]))
		}

	case ifdtype.Long8, ifdtype.IFD8:
		v.Uints = make([]uint64, count)
		for i := uint64(0); i < count; i++ {
			v.Uints[i] = bo.Uint64(raw[i*8:])
		}

	case ifdtype.SShort:
		v.Ints = make([]int64, count)
		for i := uint64(0); i < count; i++ {
			v.Ints[i] = int64(int16(bo.Uint16(raw[i*2:])))
		}

	case ifdtype.SLong:
		v.Ints = make([]int64, count)
		for i := uint64(0); i < count; i++ {
			v.Ints[i] = int64(int32(bo.Uint32(raw[i*4:])))
		}

	case ifdtype.SLong8:
		v.Ints = make([]int64, count)
		for i := uint64(0); i < count; i++ {
			v.Ints[i] = int64(bo.Uint64(raw[i*8:]))
		}

	case ifdtype.Rational:
		v.Rationals = make([]ifdtype.RationalValue, count)
		for i := uint64(0); i < count; i++ {
			v.Rationals[i] = ifdtype.RationalValue{
				Num: bo.Uint32(raw[i*8:]),
				Den: bo.Uint32(raw[i*8+4:]),
			}
		}

	case ifdtype.SRational:
		v.SRationals = make([]ifdtype.SRationalValue, count)
		for i := uint64(0); i < count; i++ {
			v.SRationals[i] = ifdtype.SRationalValue{
				Num: int32(bo.Uint32(raw[i*8:])),
				Den: int32(bo.Uint32(raw[i*8+4:])),
			}
		}

	case ifdtype.Float:
		v.Floats = make([]float32, count)
		for i := uint64(0); i < count; i++ {
			v.Floats[i] = byteorder.Float32(bo, raw[i*4:])
		}

	case ifdtype.Double:
		v.Doubles = make([]float64, count)
		for i := uint64(0); i < count; i++ {
			v.Doubles[i] = byteorder.Float64(bo, raw[i*8:])
		}

	default:
		return ifdtype.Value{}, tifferr.Newf(tifferr.Malformed, "unknown IFD type code %d", uint16(dt))
	}

	return v, nil
}

// splitASCII splits a NUL-terminated (or not) byte buffer into strings on
// every NUL byte, per spec §4.1: "trailing NUL or non-NUL-terminated last
// string both accepted". A buffer that is only a single trailing NUL
// yields one empty string.
func splitASCII(raw []byte) []string {
	var out []string
	start := 0
	for i, b := range raw {
		if b == 0 {
			out = append(out, string(raw[start:i]))
			start = i + 1
		}
	}
	if start < len(raw) {
		out = append(out, string(raw[start:]))
	}
	if out == nil {
		out = []string{""}
	}
	return out
}

// readEntryValue resolves an entry's value bytes, following the external
// offset if the value does not fit inline, then decodes it.
func readEntryValue(src *source.LockedSource, h fileHeader, dt ifdtype.DataType, count uint64, inlineOrOffset []byte, valueOffset int64) (ifdtype.Value, error) {
	elemSize, ok := ifdtype.ElementSize(dt)
	if !ok {
		return ifdtype.Value{}, tifferr.Newf(tifferr.Malformed, "unknown IFD type code %d", uint16(dt))
	}
	if elemSize != 0 && count > (^uint64(0))/uint64(elemSize) {
		return ifdtype.Value{}, tifferr.Newf(tifferr.Malformed, "entry value count %d of type %d overflows a byte length", count, uint16(dt))
	}
	total := count * uint64(elemSize)

	if total <= uint64(h.inlineThreshold()) {
		return loadValue(h.byteOrder, dt, count, inlineOrOffset)
	}

	size, err := src.Len()
	if err != nil {
		return ifdtype.Value{}, tifferr.Wrap(tifferr.IoError, err, "reading source length")
	}
	// Compare in uint64 throughout: total or valueOffset alone can exceed
	// math.MaxInt64 for a crafted entry, and converting such a value to
	// int64 would wrap negative and slip past a signed comparison.
	if valueOffset < 0 || total > uint64(size) || uint64(valueOffset) > uint64(size)-total {
		return ifdtype.Value{}, tifferr.Newf(tifferr.Malformed, "entry value offset %d (len %d) out of range [0,%d)", valueOffset, total, size)
	}

	raw := make([]byte, total)
	if err := src.ReadExact(raw, valueOffset); err != nil {
		return ifdtype.Value{}, err
	}
	return loadValue(h.byteOrder, dt, count, raw)
}
