// Package tifferr defines the typed error taxonomy shared by every layer of
// the engine: the container parser, the tile map, the decode pipeline and
// the region reader. Errors never cross an API boundary as a bare string;
// callers that need to branch on failure mode inspect Kind.
package tifferr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// Unknown is the zero value; it should not appear in returned errors.
	Unknown Kind = iota

	// NotTiff means the byte-order marker or magic number did not match
	// a recognized TIFF or BigTIFF header.
	NotTiff

	// Truncated means the source ran out of bytes before the structure
	// being read was complete.
	Truncated

	// Malformed means a structurally invalid field was encountered, e.g.
	// TileWidth present without TileLength.
	Malformed

	// CyclicIFDChain means an IFD offset was visited twice while walking
	// the next-IFD chain.
	CyclicIFDChain

	// Unsupported means the input is legal TIFF but describes a case this
	// engine does not implement (floating-point predictor, YCbCr on
	// planar-separated data, unequal bytes-per-sample across channels).
	Unsupported

	// CodecError means a registered Codec implementation returned an
	// error while decompressing a tile.
	CodecError

	// IoError means the underlying SeekableSource failed.
	IoError

	// OutOfRange means an arithmetic or index value exceeded a documented
	// limit (tile index > 1e9, area > 2^31, channels > 512, ...).
	OutOfRange
)

// String returns the symbolic name of the error kind.
func (k Kind) String() string {
	switch k {
	case NotTiff:
		return "NotTiff"
	case Truncated:
		return "Truncated"
	case Malformed:
		return "Malformed"
	case CyclicIFDChain:
		return "CyclicIFDChain"
	case Unsupported:
		return "Unsupported"
	case CodecError:
		return "CodecError"
	case IoError:
		return "IoError"
	case OutOfRange:
		return "OutOfRange"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the concrete error type returned by every package in this
// module. It carries a Kind for programmatic branching and an optional
// wrapped cause for diagnostics.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tiff: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("tiff: %s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause exposes the wrapped cause for github.com/pkg/errors consumers.
func (e *Error) Cause() error {
	return e.Err
}

// New builds an Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches msg and a Kind to an existing error, preserving it as the
// cause. If err is nil, Wrap returns nil.
func Wrap(kind Kind, err error, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: errors.WithStack(err)}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: errors.WithStack(err)}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
