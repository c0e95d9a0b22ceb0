// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package decode turns the small fixed-shape headers returned by native
// compute calls into typed views over native memory.
//
// Every decoder is a pure function of (header, region). Decoders keep no
// state and never retry: a header that does not fit its region is a
// contract mismatch and fails with texbridge.ErrOutOfBounds.
package decode

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/texbridge/memview"
	"github.com/gogpu/texbridge/native"
)

// GlyphHeader is the header returned by the native glyph path call.
type GlyphHeader struct {
	// RawPath is the native path object. It stays owned by the native side.
	RawPath native.Handle

	// Points is the byte offset of the interleaved x,y float32 stream.
	Points uint32

	// Verbs is the byte offset of the verb byte stream.
	Verbs uint32

	// VerbCount is the number of verbs.
	VerbCount uint32
}

// GlyphHeaderFromWords builds a header from the four words the native call
// returns: rawPath, pointsPtr, verbsPtr, verbCount.
func GlyphHeaderFromWords(w [4]uint32) GlyphHeader {
	return GlyphHeader{
		RawPath:   native.Handle(w[0]),
		Points:    w[1],
		Verbs:     w[2],
		VerbCount: w[3],
	}
}

// GlyphPath is a decoded glyph outline. Verbs and Points alias native
// memory and are valid only until the native path is deleted.
type GlyphPath struct {
	RawPath native.Handle
	Verbs   memview.View // KindByte, one verb per element
	Points  memview.View // KindFloat32, x,y interleaved
}

// ReadGlyphPath decodes a glyph path header. The point view length is
// derived from the verbs with PointCount.
func ReadGlyphPath(r memview.Region, h GlyphHeader) (GlyphPath, error) {
	verbs, err := memview.New(r, int(h.Verbs), int(h.VerbCount), memview.KindByte)
	if err != nil {
		return GlyphPath{}, fmt.Errorf("decode: glyph verbs: %w", err)
	}
	count := PointCount(verbs.Raw())
	points, err := memview.New(r, int(h.Points), count*2, memview.KindFloat32)
	if err != nil {
		return GlyphPath{}, fmt.Errorf("decode: glyph points: %w", err)
	}
	return GlyphPath{RawPath: h.RawPath, Verbs: verbs, Points: points}, nil
}

// NumVerbs returns the number of verbs.
func (p GlyphPath) NumVerbs() int { return p.Verbs.Len() }

// NumPoints returns the number of 2D points.
func (p GlyphPath) NumPoints() int { return p.Points.Len() / 2 }

// Verb returns verb i.
func (p GlyphPath) Verb(i int) Verb { return Verb(p.Verbs.Byte(i)) }

// Point returns point i.
func (p GlyphPath) Point(i int) mgl32.Vec2 {
	return mgl32.Vec2{p.Points.Float32(2 * i), p.Points.Float32(2*i + 1)}
}

// Walk replays the path, calling fn with each verb and the points it
// consumes. The pts slice is reused between calls.
func (p GlyphPath) Walk(fn func(v Verb, pts []mgl32.Vec2) error) error {
	var buf [3]mgl32.Vec2
	next := 0
	for i := range p.NumVerbs() {
		v := p.Verb(i)
		n := v.Points()
		for j := range n {
			buf[j] = p.Point(next + j)
		}
		next += n
		if err := fn(v, buf[:n]); err != nil {
			return err
		}
	}
	return nil
}
