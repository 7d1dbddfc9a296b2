// Package ifdtype models the dynamically-typed value stored in each IFD
// entry as a tagged union over the fixed set of TIFF/BigTIFF field types,
// plus the type-code table used to size and decode them.
package ifdtype

import "fmt"

// DataType is a TIFF/BigTIFF field type code, as it appears in bytes 2-4 of
// an IFD entry.
type DataType uint16

const (
	Byte      DataType = 1
	ASCII     DataType = 2
	Short     DataType = 3
	Long      DataType = 4
	Rational  DataType = 5
	SByte     DataType = 6
	Undefined DataType = 7
	SShort    DataType = 8
	SLong     DataType = 9
	SRational DataType = 10
	Float     DataType = 11
	Double    DataType = 12
	IFD       DataType = 13
	Long8     DataType = 16
	SLong8    DataType = 17
	IFD8      DataType = 18
)

// sizes maps each known DataType to the byte width of one element.
var sizes = map[DataType]int{
	Byte:      1,
	ASCII:     1,
	Short:     2,
	Long:      4,
	Rational:  8,
	SByte:     1,
	Undefined: 1,
	SShort:    2,
	SLong:     4,
	SRational: 8,
	Float:     4,
	Double:    8,
	IFD:       4,
	Long8:     8,
	SLong8:    8,
	IFD8:      8,
}

// ElementSize returns the byte width of one element of type t, and false if
// t is not a recognized TIFF type code.
func ElementSize(t DataType) (int, bool) {
	n, ok := sizes[t]
	return n, ok
}

// String returns a human-readable name for the data type.
func (t DataType) String() string {
	switch t {
	case Byte:
		return "BYTE"
	case ASCII:
		return "ASCII"
	case Short:
		return "SHORT"
	case Long:
		return "LONG"
	case Rational:
		return "RATIONAL"
	case SByte:
		return "SBYTE"
	case Undefined:
		return "UNDEFINED"
	case SShort:
		return "SSHORT"
	case SLong:
		return "SLONG"
	case SRational:
		return "SRATIONAL"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case IFD:
		return "IFD"
	case Long8:
		return "LONG8"
	case SLong8:
		return "SLONG8"
	case IFD8:
		return "IFD8"
	default:
		return fmt.Sprintf("DataType(%d)", uint16(t))
	}
}

// RationalValue is an unsigned TIFF RATIONAL: numerator over denominator.
type RationalValue struct {
	Num, Den uint32
}

// Float64 returns the rational as a floating point ratio. A zero
// denominator returns 0 rather than dividing by zero.
func (r RationalValue) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// SRationalValue is a signed TIFF SRATIONAL: numerator over denominator.
type SRationalValue struct {
	Num, Den int32
}

// Float64 returns the rational as a floating point ratio. A zero
// denominator returns 0 rather than dividing by zero.
func (r SRationalValue) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Value is the tagged union stored for every IFD entry. Exactly one of the
// typed slices below is populated, selected by Type.
type Value struct {
	Type DataType

	Bytes      []byte           // BYTE, SBYTE, UNDEFINED
	Strings    []string         // ASCII, split on NUL
	Uints      []uint64         // SHORT, LONG, LONG8, IFD, IFD8 (widened to preserve range)
	Ints       []int64          // SSHORT, SLONG, SLONG8
	Rationals  []RationalValue  // RATIONAL
	SRationals []SRationalValue // SRATIONAL
	Floats     []float32        // FLOAT
	Doubles    []float64        // DOUBLE
}

// Count returns the number of elements the value holds, regardless of
// which typed slice backs it.
func (v Value) Count() int {
	switch v.Type {
	case Byte, SByte, Undefined:
		return len(v.Bytes)
	case ASCII:
		return len(v.Strings)
	case Short, Long, Long8, IFD, IFD8:
		return len(v.Uints)
	case SShort, SLong, SLong8:
		return len(v.Ints)
	case Rational:
		return len(v.Rationals)
	case SRational:
		return len(v.SRationals)
	case Float:
		return len(v.Floats)
	case Double:
		return len(v.Doubles)
	default:
		return 0
	}
}

// ErrTypeMismatch is returned by the As* projections when the stored Type
// cannot be viewed as the requested shape.
type ErrTypeMismatch struct {
	Want string
	Got  DataType
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("ifdtype: cannot read %s as %s", e.Got, e.Want)
}

// AsUint64Slice projects an integer-typed value (SHORT/LONG/LONG8/IFD/IFD8)
// to a slice of uint64, widening as needed, so SHORT and LONG fields are
// read interchangeably. Any other type, including the signed integer
// types, is rejected with ErrTypeMismatch.
func (v Value) AsUint64Slice() ([]uint64, error) {
	switch v.Type {
	case Short, Long, Long8, IFD, IFD8:
		return v.Uints, nil
	default:
		return nil, &ErrTypeMismatch{Want: "uint64 slice", Got: v.Type}
	}
}

// AsInt64Slice projects a signed-integer-typed value to a slice of int64.
func (v Value) AsInt64Slice() ([]int64, error) {
	switch v.Type {
	case SShort, SLong, SLong8:
		return v.Ints, nil
	case Short, Long, Long8:
		out := make([]int64, len(v.Uints))
		for i, u := range v.Uints {
			out[i] = int64(u)
		}
		return out, nil
	default:
		return nil, &ErrTypeMismatch{Want: "int64 slice", Got: v.Type}
	}
}

// FirstUint returns the first element of an integer-typed value, or 0 if
// empty.
func (v Value) FirstUint() uint64 {
	u, err := v.AsUint64Slice()
	if err != nil || len(u) == 0 {
		return 0
	}
	return u[0]
}
