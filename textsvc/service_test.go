package textsvc

import (
	"bytes"
	"errors"
	"math"
	"slices"
	"testing"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/decode"
	"github.com/gogpu/texbridge/native"
)

func newTestService(t *testing.T) (*Service, native.Handle) {
	t.Helper()
	s := New(native.NewHeap(1024))
	h, err := s.LoadFont(goregular.TTF)
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}
	return s, h
}

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 0.01 }

func TestLoadFontRejectsGarbage(t *testing.T) {
	s := New(native.NewHeap(64))
	if _, err := s.LoadFont([]byte("not a font")); err == nil {
		t.Error("LoadFont(garbage) should fail")
	}
}

func TestUnknownFont(t *testing.T) {
	s := New(native.NewHeap(64))
	if _, err := s.MakeGlyphPath(42, 1, 12); !errors.Is(err, texbridge.ErrNotFound) {
		t.Errorf("MakeGlyphPath() error = %v, want ErrNotFound", err)
	}
	if _, err := s.ShapeText(42, "x", 12, DirectionAuto); !errors.Is(err, texbridge.ErrNotFound) {
		t.Errorf("ShapeText() error = %v, want ErrNotFound", err)
	}
	if err := s.UnloadFont(42); !errors.Is(err, texbridge.ErrNotFound) {
		t.Errorf("UnloadFont() error = %v, want ErrNotFound", err)
	}
}

func TestFontMetrics(t *testing.T) {
	s, h := newTestService(t)
	m, err := s.FontMetrics(h, 32)
	if err != nil {
		t.Fatal(err)
	}
	if m.Ascent <= 0 || m.Descent <= 0 {
		t.Errorf("metrics = %+v, want positive ascent and descent", m)
	}
}

func TestMakeGlyphPath(t *testing.T) {
	s, h := newTestService(t)
	gid, err := s.GlyphIndex(h, 'O')
	if err != nil || gid == 0 {
		t.Fatalf("GlyphIndex('O') = %d, %v", gid, err)
	}

	hdr, err := s.MakeGlyphPath(h, gid, 32)
	if err != nil {
		t.Fatal(err)
	}
	path, err := decode.ReadGlyphPath(s, hdr)
	if err != nil {
		t.Fatal(err)
	}

	if path.Verb(0) != decode.VerbMove {
		t.Errorf("first verb = %v, want move", path.Verb(0))
	}
	if v := path.Verb(path.NumVerbs() - 1); v != decode.VerbClose {
		t.Errorf("last verb = %v, want close", v)
	}
	closes := 0
	for i := range path.NumVerbs() {
		if path.Verb(i) == decode.VerbClose {
			closes++
		}
	}
	if closes != 2 {
		t.Errorf("'O' has %d contours, want 2", closes)
	}
	if got, want := path.NumPoints(), decode.PointCount(path.Verbs.Bytes()); got != want {
		t.Errorf("NumPoints() = %d, want %d", got, want)
	}

	if err := s.DeleteGlyphPath(hdr.RawPath); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteGlyphPath(hdr.RawPath); !errors.Is(err, texbridge.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
	if n := s.Heap().Live(); n != 0 {
		t.Errorf("heap has %d live allocations after delete", n)
	}
}

func TestGlyphOutlineCached(t *testing.T) {
	s, h := newTestService(t)
	gid, _ := s.GlyphIndex(h, 'a')
	a, _ := s.MakeGlyphPath(h, gid, 20)
	b, err := s.MakeGlyphPath(h, gid, 20)
	if err != nil {
		t.Fatal(err)
	}
	if a.RawPath == b.RawPath || a.Verbs == b.Verbs {
		t.Error("each path needs its own allocation")
	}
	if st := s.outlines.Stats(); st.Hits != 1 || st.Misses != 1 {
		t.Errorf("outline cache stats = %+v, want 1 hit 1 miss", st)
	}

	if err := s.UnloadFont(h); err != nil {
		t.Fatal(err)
	}
	if s.outlines.Len() != 0 {
		t.Error("UnloadFont should purge cached outlines")
	}
}

func shape(t *testing.T, s *Service, h native.Handle, text string) (uint32, Shape) {
	t.Helper()
	ptr, err := s.ShapeText(h, text, 16, DirectionAuto)
	if err != nil {
		t.Fatal(err)
	}
	res, err := decode.ReadShapeResult(s, ptr)
	if err != nil {
		t.Fatal(err)
	}
	sh, err := ReadShape(res)
	if err != nil {
		t.Fatal(err)
	}
	return ptr, sh
}

func TestShapeText(t *testing.T) {
	s, h := newTestService(t)
	ptr, sh := shape(t, s, h, "hello world")

	if len(sh.Glyphs) != 11 || sh.RTL {
		t.Fatalf("shape = %d glyphs rtl=%v, want 11 ltr", len(sh.Glyphs), sh.RTL)
	}
	var sum float32
	for i, g := range sh.Glyphs {
		if g.Cluster != i {
			t.Errorf("glyph %d cluster = %d", i, g.Cluster)
		}
		sum += g.Advance
	}
	if !near(sum, sh.Advance) {
		t.Errorf("advance = %v, want sum %v", sh.Advance, sum)
	}
	if sh.Glyphs[5].Flags&FlagSpace == 0 {
		t.Error("glyph 5 should be flagged as space")
	}

	if err := s.DeleteShapeResult(ptr); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteShapeResult(ptr); !errors.Is(err, texbridge.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestShapeEmptyText(t *testing.T) {
	s, h := newTestService(t)
	ptr, sh := shape(t, s, h, "")
	if ptr != 0 || len(sh.Glyphs) != 0 {
		t.Errorf("empty text = 0x%x %+v, want null result", ptr, sh)
	}
	if err := s.DeleteShapeResult(0); err != nil {
		t.Errorf("DeleteShapeResult(0) error = %v", err)
	}
	if _, err := s.ShapeText(h, "x", 0, DirectionAuto); !errors.Is(err, texbridge.ErrInvalidArgument) {
		t.Errorf("zero size error = %v, want ErrInvalidArgument", err)
	}
}

func TestParagraphDirection(t *testing.T) {
	tests := []struct {
		text string
		dir  Direction
		want bool
	}{
		{"hello", DirectionAuto, false},
		{"123 שלום", DirectionAuto, true},
		{"مرحبا", DirectionAuto, true},
		{"123", DirectionAuto, false},
		{"שלום", DirectionLTR, false},
		{"hello", DirectionRTL, true},
	}
	for _, tt := range tests {
		if got := paragraphRTL([]rune(tt.text), tt.dir); got != tt.want {
			t.Errorf("paragraphRTL(%q, %d) = %v, want %v", tt.text, tt.dir, got, tt.want)
		}
	}
}

func breakLines(t *testing.T, s *Service, shapePtr uint32, width float32, align Align, wrap Wrap) Lines {
	t.Helper()
	ptr, err := s.BreakLines(shapePtr, width, align, wrap)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.DeleteLineBreaks(ptr) })
	res, err := decode.ReadLineBreaks(s, ptr)
	if err != nil {
		t.Fatal(err)
	}
	ls, err := ReadLines(res)
	if err != nil {
		t.Fatal(err)
	}
	return ls
}

func TestBreakLinesWraps(t *testing.T) {
	s, h := newTestService(t)
	_, hello := shape(t, s, h, "hello")
	ptr, _ := shape(t, s, h, "hello hello")

	ls := breakLines(t, s, ptr, hello.Advance+1, AlignLeft, WrapOn)
	if len(ls.Lines) != 2 {
		t.Fatalf("lines = %+v, want 2", ls.Lines)
	}
	if l := ls.Lines[0]; l.Start != 0 || l.End != 6 || !near(l.Width, hello.Advance) {
		t.Errorf("line 0 = %+v, want [0,6) width %v", l, hello.Advance)
	}
	if l := ls.Lines[1]; l.Start != 6 || l.End != 11 {
		t.Errorf("line 1 = %+v, want [6,11)", l)
	}
}

func TestBreakLinesNoWrapAndAutoWidth(t *testing.T) {
	s, h := newTestService(t)
	ptr, sh := shape(t, s, h, "hello world")

	for _, tc := range []struct {
		name  string
		width float32
		wrap  Wrap
	}{
		{"wrap off", 10, WrapOff},
		{"auto width", AutoWidth, WrapOn},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ls := breakLines(t, s, ptr, tc.width, AlignLeft, tc.wrap)
			if len(ls.Lines) != 1 || ls.Lines[0].End != 11 {
				t.Fatalf("lines = %+v, want one line", ls.Lines)
			}
			if !near(ls.Lines[0].Width, sh.Advance) {
				t.Errorf("width = %v, want %v", ls.Lines[0].Width, sh.Advance)
			}
		})
	}

	if ls := breakLines(t, s, ptr, AutoWidth, AlignLeft, WrapOn); !near(ls.Width, sh.Advance) {
		t.Errorf("auto layout width = %v, want %v", ls.Width, sh.Advance)
	}
}

func TestBreakLinesNewline(t *testing.T) {
	s, h := newTestService(t)
	ptr, _ := shape(t, s, h, "ab\ncd")
	ls := breakLines(t, s, ptr, 1000, AlignLeft, WrapOff)
	if len(ls.Lines) != 2 || ls.Lines[0].End != 3 || ls.Lines[1].Start != 3 {
		t.Errorf("lines = %+v, want break after the newline", ls.Lines)
	}
}

func TestBreakLinesAlign(t *testing.T) {
	s, h := newTestService(t)
	ptr, sh := shape(t, s, h, "hi")
	tests := []struct {
		align Align
		want  float32
	}{
		{AlignLeft, 0},
		{AlignCenter, (200 - sh.Advance) / 2},
		{AlignRight, 200 - sh.Advance},
	}
	for _, tt := range tests {
		ls := breakLines(t, s, ptr, 200, tt.align, WrapOn)
		if !near(ls.Lines[0].X, tt.want) {
			t.Errorf("align %d: x = %v, want %v", tt.align, ls.Lines[0].X, tt.want)
		}
	}
}

func TestBreakLinesErrors(t *testing.T) {
	s, h := newTestService(t)
	if ptr, err := s.BreakLines(0, 100, AlignLeft, WrapOn); ptr != 0 || err != nil {
		t.Errorf("BreakLines(0) = 0x%x, %v; want null result", ptr, err)
	}
	if _, err := s.BreakLines(8, 100, AlignLeft, WrapOn); !errors.Is(err, texbridge.ErrNotFound) {
		t.Errorf("unknown shape error = %v, want ErrNotFound", err)
	}
	ptr, _ := shape(t, s, h, "x")
	if _, err := s.BreakLines(ptr, -5, AlignLeft, WrapOn); !errors.Is(err, texbridge.ErrInvalidArgument) {
		t.Errorf("negative width error = %v, want ErrInvalidArgument", err)
	}
}

func TestBreakGlyphsSplitsLongWord(t *testing.T) {
	glyphs := make([]ShapedGlyph, 5)
	for i := range glyphs {
		glyphs[i].Advance = 10
	}
	lines := breakGlyphs(glyphs, 25, true)
	want := [][2]int{{0, 2}, {2, 4}, {4, 5}}
	if len(lines) != len(want) {
		t.Fatalf("lines = %+v, want %v", lines, want)
	}
	for i, w := range want {
		if lines[i].Start != w[0] || lines[i].End != w[1] {
			t.Errorf("line %d = [%d,%d), want %v", i, lines[i].Start, lines[i].End, w)
		}
	}
}

func layout(tags ...string) gotext.Layout {
	var l gotext.Layout
	for _, tag := range tags {
		l.Features = append(l.Features, gotext.Feature{Tag: gotext.Tag(decode.MakeTag(tag))})
	}
	return l
}

func TestFeatureTags(t *testing.T) {
	tests := []struct {
		name string
		font *gotext.Font
		want []string
	}{
		{"no layout tables", &gotext.Font{}, nil},
		{
			name: "merged and sorted",
			font: &gotext.Font{
				GSUB: gotext.GSUB{Layout: layout("liga", "kern")},
				GPOS: gotext.GPOS{Layout: layout("mark", "kern")},
			},
			want: []string{"kern", "liga", "mark"},
		},
		{
			name: "duplicate records",
			font: &gotext.Font{GSUB: gotext.GSUB{Layout: layout("ccmp", "ccmp", "aalt")}},
			want: []string{"aalt", "ccmp"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := make([]decode.Tag, len(tt.want))
			for i, tag := range tt.want {
				want[i] = decode.MakeTag(tag)
			}
			if got := featureTags(tt.font); !slices.Equal(got, want) {
				t.Errorf("featureTags() = %v, want %v", got, want)
			}
		})
	}
}

func TestFontFeaturesMatchParsedFont(t *testing.T) {
	s, h := newTestService(t)
	face, err := gotext.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		t.Fatal(err)
	}
	ptr, err := s.FontFeatures(h)
	if err != nil {
		t.Fatal(err)
	}
	tags, err := decode.ReadFontFeatures(s, ptr, s.DeleteFontFeatures)
	if err != nil {
		t.Fatal(err)
	}
	if want := featureTags(face.Font); !slices.Equal(tags, want) {
		t.Errorf("FontFeatures() = %v, want %v", tags, want)
	}
}

func TestFontFeaturesRoundTrip(t *testing.T) {
	s, h := newTestService(t)
	ptr, err := s.FontFeatures(h)
	if err != nil {
		t.Fatal(err)
	}
	tags, err := decode.ReadFontFeatures(s, ptr, s.DeleteFontFeatures)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.IsSorted(tags) {
		t.Errorf("tags %v are not sorted", tags)
	}
	if n := s.Heap().Live(); n != 0 {
		t.Errorf("heap has %d live allocations after free", n)
	}
}
