package textsvc

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/text/unicode/bidi"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/decode"
	"github.com/gogpu/texbridge/native"
)

// Direction is the paragraph direction requested for shaping.
type Direction uint32

const (
	// DirectionAuto takes the direction of the first strong character.
	DirectionAuto Direction = iota
	DirectionLTR
	DirectionRTL
)

// Shape result layout. The header is (glyphCount u32, rtl u32, advance f32)
// followed by one glyphRecord per glyph, all little-endian.
const (
	shapeHeaderSize = 12
	glyphRecordSize = 24
)

// Glyph flags.
const (
	FlagRTL uint32 = 1 << iota
	FlagSpace
	FlagNewline
)

// ShapedGlyph is one positioned glyph of a shape result.
type ShapedGlyph struct {
	Glyph   uint16
	Cluster int // rune index in the shaped text
	Flags   uint32
	Advance float32
	XOffset float32
	YOffset float32
}

// Shape is a decoded shape result. Glyphs are in visual order.
type Shape struct {
	RTL     bool
	Advance float32
	Glyphs  []ShapedGlyph
}

// ShapeText shapes text at size pixels per em and returns a pointer to the
// result, or 0 for empty text. Bidi runs are shaped separately and stored in
// visual order. The result must be deleted with DeleteShapeResult.
func (s *Service) ShapeText(h native.Handle, text string, size float32, dir Direction) (uint32, error) {
	f, err := s.font(h)
	if err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}
	if size <= 0 {
		return 0, fmt.Errorf("textsvc: shape size %v: %w", size, texbridge.ErrInvalidArgument)
	}

	runes := []rune(text)
	rtl := paragraphRTL(runes, dir)
	glyphs := shapeRuns(f.shaper, runes, rtl, size)

	var advance float32
	for _, g := range glyphs {
		advance += g.Advance
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ptr, err := s.heap.Alloc(shapeHeaderSize + glyphRecordSize*len(glyphs))
	if err != nil {
		return 0, err
	}
	words := make([]uint32, 0, 3+6*len(glyphs))
	words = append(words, uint32(len(glyphs)), b2u(rtl), math.Float32bits(advance))
	for _, g := range glyphs {
		words = append(words,
			uint32(g.Glyph), uint32(g.Cluster), g.Flags,
			math.Float32bits(g.Advance), math.Float32bits(g.XOffset), math.Float32bits(g.YOffset))
	}
	if err := s.heap.PutUint32s(ptr, words...); err != nil {
		_ = s.heap.Free(ptr)
		return 0, err
	}
	s.shapes[ptr] = struct{}{}
	return ptr, nil
}

// DeleteShapeResult frees a result returned by ShapeText. Deleting 0 is a
// no-op.
func (s *Service) DeleteShapeResult(ptr uint32) error {
	if ptr == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shapes[ptr]; !ok {
		return fmt.Errorf("textsvc: shape result 0x%x: %w", ptr, texbridge.ErrNotFound)
	}
	delete(s.shapes, ptr)
	return s.heap.Free(ptr)
}

// ReadShape parses a shape result decoded from the heap. An empty result
// yields an empty Shape.
func ReadShape(res decode.ShapeResult) (Shape, error) {
	if res.Raw.IsNull() {
		return Shape{}, nil
	}
	b := res.Results.Raw()
	if len(b) < shapeHeaderSize {
		return Shape{}, fmt.Errorf("textsvc: shape header: %w", texbridge.ErrOutOfBounds)
	}
	n := int(binary.LittleEndian.Uint32(b))
	if n > (len(b)-shapeHeaderSize)/glyphRecordSize {
		return Shape{}, fmt.Errorf("textsvc: %d glyphs: %w", n, texbridge.ErrOutOfBounds)
	}
	sh := Shape{
		RTL:     binary.LittleEndian.Uint32(b[4:]) != 0,
		Advance: f32(b[8:]),
		Glyphs:  make([]ShapedGlyph, n),
	}
	for i := range sh.Glyphs {
		r := b[shapeHeaderSize+i*glyphRecordSize:]
		sh.Glyphs[i] = ShapedGlyph{
			Glyph:   uint16(binary.LittleEndian.Uint32(r)),
			Cluster: int(binary.LittleEndian.Uint32(r[4:])),
			Flags:   binary.LittleEndian.Uint32(r[8:]),
			Advance: f32(r[12:]),
			XOffset: f32(r[16:]),
			YOffset: f32(r[20:]),
		}
	}
	return sh, nil
}

// paragraphRTL resolves the paragraph direction. Auto follows the first
// strong character and defaults to left-to-right.
func paragraphRTL(runes []rune, dir Direction) bool {
	switch dir {
	case DirectionLTR:
		return false
	case DirectionRTL:
		return true
	}
	for _, r := range runes {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.L:
			return false
		case bidi.R, bidi.AL:
			return true
		}
	}
	return false
}

type run struct {
	start, end int // rune range, end exclusive
	rtl        bool
}

// visualRuns splits runes into directional runs in visual order.
func visualRuns(runes []rune, rtl bool) []run {
	def := bidi.LeftToRight
	if rtl {
		def = bidi.RightToLeft
	}
	p := bidi.Paragraph{}
	if _, err := p.SetString(string(runes), bidi.DefaultDirection(def)); err != nil {
		return []run{{0, len(runes), rtl}}
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return []run{{0, len(runes), rtl}}
	}
	runs := make([]run, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		r := ordering.Run(i)
		start, end := r.Pos()
		runs = append(runs, run{start, min(end+1, len(runes)), r.Direction() == bidi.RightToLeft})
	}
	return runs
}

func shapeRuns(f *gotext.Font, runes []rune, rtl bool, size float32) []ShapedGlyph {
	face := gotext.NewFace(f)
	var shaper shaping.HarfbuzzShaper
	var out []ShapedGlyph
	for _, r := range visualRuns(runes, rtl) {
		if r.start >= r.end {
			continue
		}
		dir := di.DirectionLTR
		if r.rtl {
			dir = di.DirectionRTL
		}
		output := shaper.Shape(shaping.Input{
			Text:      runes,
			RunStart:  r.start,
			RunEnd:    r.end,
			Direction: dir,
			Face:      face,
			Size:      toFixed(size),
			Script:    runScript(runes[r.start:r.end]),
			Language:  language.NewLanguage("en"),
		})
		for _, g := range output.Glyphs {
			cluster := g.TextIndex()
			sg := ShapedGlyph{
				Glyph:   uint16(g.GlyphID),
				Cluster: cluster,
				Advance: fromFixed(g.Advance),
				XOffset: fromFixed(g.XOffset),
				YOffset: fromFixed(g.YOffset),
			}
			if r.rtl {
				sg.Flags |= FlagRTL
			}
			if cluster >= 0 && cluster < len(runes) {
				switch c := runes[cluster]; {
				case c == '\n':
					sg.Flags |= FlagNewline
				case unicode.IsSpace(c):
					sg.Flags |= FlagSpace
				}
			}
			out = append(out, sg)
		}
	}
	return out
}

func runScript(runes []rune) language.Script {
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func f32(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) }
