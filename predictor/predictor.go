// Package predictor defines the TIFF Predictor tag (317) values, which
// specify an inter-sample differencing step applied before compression to
// improve compressibility.
//
// Reference: https://www.awaresystems.be/imaging/tiff/tifftags/predictor.html
package predictor

import "fmt"

// Type represents a TIFF Predictor value.
type Type int

const (
	// Unknown indicates a missing Predictor tag; callers should treat it
	// the same as None.
	Unknown Type = -1

	// None (1) applies no differencing.
	None Type = 1

	// Horizontal (2) stores each sample as the difference from the
	// sample of the same channel in the previous pixel on the same row.
	Horizontal Type = 2

	// FloatingPoint (3) is Adobe's floating-point horizontal differencing
	// supplement. This engine does not implement it; it is a documented
	// Unsupported case.
	FloatingPoint Type = 3
)

// String returns a human-readable name for the predictor type.
func (t Type) String() string {
	switch t {
	case Unknown:
		return "Unknown"
	case None:
		return "None"
	case Horizontal:
		return "Horizontal"
	case FloatingPoint:
		return "FloatingPoint"
	default:
		return fmt.Sprintf("Predictor(%d)", int(t))
	}
}
