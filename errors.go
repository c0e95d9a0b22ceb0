// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texbridge

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every texbridge package.
var (
	// ErrInvalidArgument is returned when a required input is missing or
	// malformed, e.g. absent or non-positive surface dimensions.
	ErrInvalidArgument = errors.New("texbridge: invalid argument")

	// ErrNotFound is returned when an operation references an unknown
	// surface, workspace or handle.
	ErrNotFound = errors.New("texbridge: not found")

	// ErrOutOfBounds is returned when a view would exceed its backing
	// region. It indicates a decoder/native contract mismatch and is never
	// retried.
	ErrOutOfBounds = errors.New("texbridge: out of bounds")

	// ErrContextCreation is returned when a GPU context could not be
	// obtained.
	ErrContextCreation = errors.New("texbridge: context creation failed")
)

// Stable error codes reported across the host boundary.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeNotFound        = "not_found"
	CodeOutOfBounds     = "out_of_bounds"
	CodeContextCreation = "context_creation"
	CodeInternal        = "internal"
)

// OutOfBoundsError describes a view that does not fit its backing region.
// It matches ErrOutOfBounds with errors.Is.
type OutOfBoundsError struct {
	Offset    int
	Length    int
	ElemSize  int
	RegionLen int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("texbridge: view [%d, %d*%d) exceeds region of %d bytes",
		e.Offset, e.Length, e.ElemSize, e.RegionLen)
}

// Is reports whether target is ErrOutOfBounds.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// Code returns the stable error code for err.
// A nil error has an empty code; unclassified errors map to CodeInternal.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrOutOfBounds):
		return CodeOutOfBounds
	case errors.Is(err, ErrContextCreation):
		return CodeContextCreation
	default:
		return CodeInternal
	}
}
