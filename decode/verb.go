// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package decode

import "fmt"

// Verb is a path verb code of the native path format.
type Verb uint8

// Native path verb codes. Code 3 is unused by the native format.
const (
	VerbMove  Verb = 0
	VerbLine  Verb = 1
	VerbQuad  Verb = 2
	VerbCubic Verb = 4
	VerbClose Verb = 5
)

// verbPoints is the number of points each verb consumes from the point
// stream. Codes outside the table consume none.
var verbPoints = [...]uint8{
	VerbMove:  1,
	VerbLine:  1,
	VerbQuad:  2,
	VerbCubic: 3,
	VerbClose: 0,
}

// Points returns the number of points v consumes.
func (v Verb) Points() int {
	if int(v) < len(verbPoints) {
		return int(verbPoints[v])
	}
	return 0
}

// String returns the verb name.
func (v Verb) String() string {
	switch v {
	case VerbMove:
		return "move"
	case VerbLine:
		return "line"
	case VerbQuad:
		return "quad"
	case VerbCubic:
		return "cubic"
	case VerbClose:
		return "close"
	default:
		return fmt.Sprintf("Verb(%d)", uint8(v))
	}
}

// PointCount returns the number of points a verb stream references.
// It must mirror the native path format exactly: the result sizes the point
// view, so a wrong count reads out of bounds.
func PointCount(verbs []byte) int {
	n := 0
	for _, v := range verbs {
		n += Verb(v).Points()
	}
	return n
}
