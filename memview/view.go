// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package memview turns (offset, length, kind) triples over a shared linear
// memory region into typed, bounds-checked views.
//
// Views never copy: a byte view is a subslice of the region, and float32 or
// uint32 views decode little-endian elements on access from the aliased
// bytes. A view is only valid until the region is resized or the native side
// frees the memory it covers. Derive a fresh view after any such event and
// never retain one across a call back into native code.
//
//	v, err := memview.New(heap, ptr, count, memview.KindFloat32)
//	if err != nil {
//	    return err // texbridge.ErrOutOfBounds, nothing was read
//	}
//	for i := range v.Len() {
//	    x := v.Float32(i)
//	}
package memview

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/texbridge"
)

// Region is a linear memory region shared with the native side.
// Bytes returns the current backing slice; it may be replaced wholesale
// when the region grows.
type Region interface {
	Bytes() []byte
}

// Slice adapts a plain byte slice to Region.
type Slice []byte

// Bytes implements Region.
func (s Slice) Bytes() []byte { return s }

// Kind is the element type of a view.
type Kind uint8

const (
	// KindByte views elements as uint8.
	KindByte Kind = iota

	// KindFloat32 views elements as little-endian IEEE-754 float32.
	KindFloat32

	// KindUint32 views elements as little-endian uint32.
	KindUint32
)

// Size returns the element size in bytes.
func (k Kind) Size() int {
	switch k {
	case KindFloat32, KindUint32:
		return 4
	default:
		return 1
	}
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindByte:
		return "byte"
	case KindFloat32:
		return "float32"
	case KindUint32:
		return "uint32"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// View is a read-only typed window over a Region.
// The zero View is empty.
type View struct {
	data []byte
	kind Kind
	n    int
}

// New returns a view of length elements of kind starting at byte offset.
//
// New fails with an error matching texbridge.ErrOutOfBounds if
// offset+length*kind.Size() exceeds the region's current byte length, or if
// offset or length is negative. No memory is read in that case.
func New(r Region, offset, length int, kind Kind) (View, error) {
	buf := r.Bytes()
	size := kind.Size()
	if !fits(offset, length, size, len(buf)) {
		return View{}, &texbridge.OutOfBoundsError{
			Offset:    offset,
			Length:    length,
			ElemSize:  size,
			RegionLen: len(buf),
		}
	}
	end := offset + length*size
	return View{data: buf[offset:end:end], kind: kind, n: length}, nil
}

// fits reports whether [offset, offset+length*size) lies within [0, regionLen)
// without overflowing int arithmetic.
func fits(offset, length, size, regionLen int) bool {
	if offset < 0 || length < 0 || offset > regionLen {
		return false
	}
	if length > (math.MaxInt-offset)/size {
		return false
	}
	return offset+length*size <= regionLen
}

// Len returns the number of elements in the view.
func (v View) Len() int { return v.n }

// Kind returns the element kind.
func (v View) Kind() Kind { return v.kind }

// Raw returns the aliased bytes covered by the view.
// Callers must not modify the returned slice.
func (v View) Raw() []byte { return v.data }

// Byte returns element i of a byte view.
func (v View) Byte(i int) byte {
	v.mustKind(KindByte)
	return v.data[i]
}

// Float32 returns element i of a float32 view.
func (v View) Float32(i int) float32 {
	v.mustKind(KindFloat32)
	return math.Float32frombits(binary.LittleEndian.Uint32(v.data[i*4:]))
}

// Uint32 returns element i of a uint32 view.
func (v View) Uint32(i int) uint32 {
	v.mustKind(KindUint32)
	return binary.LittleEndian.Uint32(v.data[i*4:])
}

// Float32s copies the view into a new slice.
func (v View) Float32s() []float32 {
	out := make([]float32, v.n)
	for i := range out {
		out[i] = v.Float32(i)
	}
	return out
}

// Uint32s copies the view into a new slice.
func (v View) Uint32s() []uint32 {
	out := make([]uint32, v.n)
	for i := range out {
		out[i] = v.Uint32(i)
	}
	return out
}

// Bytes copies the view's raw bytes into a new slice.
func (v View) Bytes() []byte {
	out := make([]byte, len(v.data))
	copy(out, v.data)
	return out
}

func (v View) mustKind(k Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("memview: %s access on %s view", k, v.kind))
	}
}
