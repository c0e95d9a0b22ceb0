package textsvc

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/decode"
)

// Align is the horizontal alignment of broken lines.
type Align uint32

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Wrap selects whether lines wrap at the layout width.
type Wrap uint32

const (
	WrapOn Wrap = iota
	WrapOff
)

// AutoWidth makes the layout as wide as its widest line.
const AutoWidth float32 = -1

// Line break layout: (lineCount u32, width f32) followed by
// (start u32, end u32, width f32, x f32) per line.
const (
	linesHeaderSize = 8
	lineRecordSize  = 16
)

// Line is a range of glyphs of a shape result laid out on one line.
type Line struct {
	Start, End int // glyph range, end exclusive
	Width      float32
	X          float32
}

// Lines is a decoded line break result.
type Lines struct {
	Width float32
	Lines []Line
}

// BreakLines breaks the shape result at shapePtr into lines no wider than
// width and returns a pointer to the result, or 0 when shapePtr is 0. Lines
// break after whitespace; a newline always breaks. A word wider than the
// layout is split between glyphs. With AutoWidth or WrapOff only newlines
// break. The result must be deleted with DeleteLineBreaks.
func (s *Service) BreakLines(shapePtr uint32, width float32, align Align, wrap Wrap) (uint32, error) {
	if shapePtr == 0 {
		return 0, nil
	}
	if width < 0 && width != AutoWidth {
		return 0, fmt.Errorf("textsvc: line width %v: %w", width, texbridge.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shapes[shapePtr]; !ok {
		return 0, fmt.Errorf("textsvc: shape result 0x%x: %w", shapePtr, texbridge.ErrNotFound)
	}
	res, err := decode.ReadShapeResult(s.heap, shapePtr)
	if err != nil {
		return 0, err
	}
	sh, err := ReadShape(res)
	if err != nil {
		return 0, err
	}

	lines := breakGlyphs(sh.Glyphs, width, wrap == WrapOn && width != AutoWidth)
	layoutWidth := width
	if width == AutoWidth {
		layoutWidth = 0
		for _, l := range lines {
			layoutWidth = max(layoutWidth, l.Width)
		}
	}
	for i := range lines {
		lines[i].X = alignX(align, layoutWidth, lines[i].Width)
	}

	ptr, err := s.heap.Alloc(linesHeaderSize + lineRecordSize*len(lines))
	if err != nil {
		return 0, err
	}
	words := make([]uint32, 0, 2+4*len(lines))
	words = append(words, uint32(len(lines)), math.Float32bits(layoutWidth))
	for _, l := range lines {
		words = append(words, uint32(l.Start), uint32(l.End), math.Float32bits(l.Width), math.Float32bits(l.X))
	}
	if err := s.heap.PutUint32s(ptr, words...); err != nil {
		_ = s.heap.Free(ptr)
		return 0, err
	}
	s.lines[ptr] = struct{}{}
	return ptr, nil
}

// DeleteLineBreaks frees a result returned by BreakLines. Deleting 0 is a
// no-op.
func (s *Service) DeleteLineBreaks(ptr uint32) error {
	if ptr == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lines[ptr]; !ok {
		return fmt.Errorf("textsvc: line breaks 0x%x: %w", ptr, texbridge.ErrNotFound)
	}
	delete(s.lines, ptr)
	return s.heap.Free(ptr)
}

// ReadLines parses a line break result decoded from the heap.
func ReadLines(res decode.LineBreaks) (Lines, error) {
	if res.Raw.IsNull() {
		return Lines{}, nil
	}
	b := res.Results.Raw()
	if len(b) < linesHeaderSize {
		return Lines{}, fmt.Errorf("textsvc: line breaks header: %w", texbridge.ErrOutOfBounds)
	}
	n := int(binary.LittleEndian.Uint32(b))
	if n > (len(b)-linesHeaderSize)/lineRecordSize {
		return Lines{}, fmt.Errorf("textsvc: %d lines: %w", n, texbridge.ErrOutOfBounds)
	}
	ls := Lines{Width: f32(b[4:]), Lines: make([]Line, n)}
	for i := range ls.Lines {
		r := b[linesHeaderSize+i*lineRecordSize:]
		ls.Lines[i] = Line{
			Start: int(binary.LittleEndian.Uint32(r)),
			End:   int(binary.LittleEndian.Uint32(r[4:])),
			Width: f32(r[8:]),
			X:     f32(r[12:]),
		}
	}
	return ls, nil
}

func breakGlyphs(glyphs []ShapedGlyph, limit float32, wrap bool) []Line {
	var lines []Line
	emit := func(start, end int) {
		lines = append(lines, Line{Start: start, End: end, Width: lineWidth(glyphs[start:end])})
	}

	start, brk := 0, -1
	var w float32
	for i, g := range glyphs {
		switch {
		case g.Flags&FlagNewline != 0:
			emit(start, i+1)
			start, brk, w = i+1, -1, 0
			continue
		case g.Flags&FlagSpace != 0:
			brk = i + 1
			w += g.Advance
			continue
		}
		if wrap && i > start && w+g.Advance > limit {
			if brk > start {
				emit(start, brk)
				start = brk
				w = advance(glyphs[start:i])
			} else {
				emit(start, i)
				start, w = i, 0
			}
			brk = -1
		}
		w += g.Advance
	}
	if start < len(glyphs) || len(lines) == 0 {
		emit(start, len(glyphs))
	}
	return lines
}

// lineWidth is the advance of glyphs without trailing whitespace.
func lineWidth(glyphs []ShapedGlyph) float32 {
	end := len(glyphs)
	for end > 0 && glyphs[end-1].Flags&(FlagSpace|FlagNewline) != 0 {
		end--
	}
	return advance(glyphs[:end])
}

func advance(glyphs []ShapedGlyph) float32 {
	var w float32
	for _, g := range glyphs {
		w += g.Advance
	}
	return w
}

func alignX(a Align, layout, line float32) float32 {
	switch a {
	case AlignCenter:
		return (layout - line) / 2
	case AlignRight:
		return layout - line
	default:
		return 0
	}
}
