// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package coreerr defines the error kinds shared by the decoder core
// (internal/scramble, internal/glaze, pak), so that every failure path,
// regardless of which package detects it, surfaces through the same
// wrapped error shape. The root gust package re-exports Error as
// CoreError for external callers.
package coreerr

// Kind identifies which of the core's structural invariants failed.
type Kind int

// The error kinds recognized by the decoder core.
const (
	// MalformedHeader: type tag mismatch in a ".e" stream, or PAK header
	// magic mismatch (the latter is a warning, not a fatal Kind value).
	MalformedHeader Kind = iota
	// SizeConstraint: D2's buffer isn't a multiple of 4 or is too small,
	// or a Glaze sub-stream's declared length doesn't fit its parent.
	SizeConstraint
	// MarkerNotFound: D2's 0xFF marker is absent from the expected tail.
	MarkerNotFound
	// ChecksumMismatch: D2's computed checksum pair differs from the
	// stored pair.
	ChecksumMismatch
	// DecompressionOverrun: a Glaze cursor ran past its region, or
	// output exceeded the declared length.
	DecompressionOverrun
	// UnreachableOpcode: the Glaze opcode stream produced opcode 0x00,
	// a code point the opcode-table builder can emit but the execution
	// dispatch never defines.
	UnreachableOpcode
	// AllocFailure: a working buffer could not be allocated. Go
	// allocation doesn't fail the way C's malloc does, and no function
	// in this module returns this kind.
	AllocFailure
)

func (k Kind) String() string {
	switch k {
	case MalformedHeader:
		return "malformed header"
	case SizeConstraint:
		return "size constraint violated"
	case MarkerNotFound:
		return "marker not found"
	case ChecksumMismatch:
		return "checksum mismatch"
	case DecompressionOverrun:
		return "decompression overrun"
	case UnreachableOpcode:
		return "unreachable opcode"
	case AllocFailure:
		return "allocation failure"
	default:
		return "unknown"
	}
}

// Error is the core's single error type: every failure path in
// internal/scramble, internal/glaze, and pak returns one of these,
// wrapping an optional underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of the given kind with no wrapped cause.
func New(kind Kind, op string) *Error {
	return &Error{Kind: kind, Op: op}
}

// Wrap returns an Error of the given kind wrapping err.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
