// Package sampleformat defines the TIFF SampleFormat tag (339) values,
// which specify how to interpret the bits of each sample: as an unsigned
// or signed integer, an IEEE float, or a complex pair of either.
//
// Reference: https://www.awaresystems.be/imaging/tiff/tifftags/sampleformat.html
package sampleformat

import "fmt"

// Type represents a TIFF SampleFormat value.
type Type int

const (
	// Unknown indicates a missing SampleFormat tag; callers should treat
	// it the same as UInt, the TIFF default.
	Unknown Type = -1

	// UInt (1) is unsigned integer data. The default when the tag is
	// absent.
	UInt Type = 1

	// Int (2) is two's-complement signed integer data.
	Int Type = 2

	// IEEEFP (3) is IEEE 754 floating point data, including the
	// non-standard 16- and 24-bit widths some encoders emit.
	IEEEFP Type = 3

	// Void (4) is untyped data; the engine treats it as raw bytes.
	Void Type = 4

	// ComplexInt (5) is a pair of signed integers (real, imaginary).
	ComplexInt Type = 5

	// ComplexIEEEFP (6) is a pair of IEEE floats (real, imaginary).
	ComplexIEEEFP Type = 6
)

// String returns a human-readable name for the sample format.
func (t Type) String() string {
	switch t {
	case Unknown:
		return "Unknown"
	case UInt:
		return "UInt"
	case Int:
		return "Int"
	case IEEEFP:
		return "IEEEFP"
	case Void:
		return "Void"
	case ComplexInt:
		return "ComplexInt"
	case ComplexIEEEFP:
		return "ComplexIEEEFP"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(t))
	}
}
