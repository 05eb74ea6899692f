package rastercodec

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the way an encode operation failed.
type Kind int

const (
	// InvalidArgument covers unsupported pixel formats, empty rectangles,
	// and bytes-per-pixel mismatches with the requested color type.
	InvalidArgument Kind = iota
	// OutOfMemory covers buffer or quantizer allocation failures.
	OutOfMemory
	// BackendFailure covers the PNG/JPEG backend library reporting a write
	// error.
	BackendFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case OutOfMemory:
		return "OutOfMemory"
	case BackendFailure:
		return "BackendFailure"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every encoder entrypoint in this
// package. It carries a Kind so callers can branch on failure class without
// string matching.
type Error struct {
	Kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("rastercodec: %s: %s: %v", e.Kind, e.msg, e.cause)
	}
	return fmt.Sprintf("rastercodec: %s: %s", e.Kind, e.msg)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

func wrapError(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, msg: msg, cause: errors.WithStack(cause)}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
