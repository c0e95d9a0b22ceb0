package textsvc

import (
	"fmt"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/decode"
	"github.com/gogpu/texbridge/native"
)

type outlineKey struct {
	font  native.Handle
	glyph uint16
	size  float32
}

// outline is a glyph outline in the native path format.
type outline struct {
	verbs  []byte
	points []float32
}

type glyphAlloc struct {
	verbs, points uint32
}

// MakeGlyphPath writes the outline of glyph at size pixels per em into the
// heap and returns its header. Each contour ends with a close verb. The path
// must be deleted with DeleteGlyphPath.
func (s *Service) MakeGlyphPath(h native.Handle, glyph uint16, size float32) (decode.GlyphHeader, error) {
	f, err := s.font(h)
	if err != nil {
		return decode.GlyphHeader{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.outlines.GetOrCreate(outlineKey{font: h, glyph: glyph, size: size}, func() (*outline, error) {
		return s.loadOutline(f, glyph, size)
	})
	if err != nil {
		return decode.GlyphHeader{}, err
	}

	vp, err := s.heap.AllocBytes(o.verbs)
	if err != nil {
		return decode.GlyphHeader{}, err
	}
	pp, err := s.heap.Alloc(4 * len(o.points))
	if err == nil {
		err = s.heap.PutFloat32s(pp, o.points...)
	}
	if err != nil {
		_ = s.heap.Free(vp)
		return decode.GlyphHeader{}, err
	}

	s.nextPath++
	raw := s.nextPath
	s.paths[raw] = glyphAlloc{verbs: vp, points: pp}
	return decode.GlyphHeader{
		RawPath:   raw,
		Points:    pp,
		Verbs:     vp,
		VerbCount: uint32(len(o.verbs)),
	}, nil
}

// DeleteGlyphPath frees a path returned by MakeGlyphPath.
func (s *Service) DeleteGlyphPath(raw native.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.paths[raw]
	if !ok {
		return fmt.Errorf("textsvc: glyph path %v: %w", raw, texbridge.ErrNotFound)
	}
	delete(s.paths, raw)
	_ = s.heap.Free(a.verbs)
	return s.heap.Free(a.points)
}

// loadOutline converts sfnt segments to verbs and points.
// Caller must hold s.mu.
func (s *Service) loadOutline(f *Font, glyph uint16, size float32) (*outline, error) {
	segments, err := f.sfnt.LoadGlyph(&s.buf, sfnt.GlyphIndex(glyph), toFixed(size), nil)
	if err != nil {
		return nil, fmt.Errorf("textsvc: load glyph %d: %w", glyph, err)
	}

	o := &outline{}
	open := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				o.verbs = append(o.verbs, byte(decode.VerbClose))
			}
			open = true
			o.add(decode.VerbMove, seg.Args[:1])
		case sfnt.SegmentOpLineTo:
			o.add(decode.VerbLine, seg.Args[:1])
		case sfnt.SegmentOpQuadTo:
			o.add(decode.VerbQuad, seg.Args[:2])
		case sfnt.SegmentOpCubeTo:
			o.add(decode.VerbCubic, seg.Args[:3])
		}
	}
	if open {
		o.verbs = append(o.verbs, byte(decode.VerbClose))
	}
	return o, nil
}

func (o *outline) add(v decode.Verb, args []fixed.Point26_6) {
	o.verbs = append(o.verbs, byte(v))
	for _, p := range args {
		o.points = append(o.points, fromFixed(p.X), fromFixed(p.Y))
	}
}
