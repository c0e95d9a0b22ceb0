// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package textsvc is a reference native text service.
//
// It implements the native side of the text calls: every result is written
// into a native.Heap in the fixed-shape layouts the decode package reads,
// and must be deleted with the matching Delete call. Outlines come from
// golang.org/x/image/font/sfnt, shaping from go-text/typesetting's HarfBuzz
// port and paragraph direction from golang.org/x/text/unicode/bidi.
//
// Service is safe for concurrent use, but views decoded from its heap are
// only valid until the next call that allocates.
package textsvc

import (
	"bytes"
	"fmt"
	"sync"

	gotext "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/internal/cache"
	"github.com/gogpu/texbridge/native"
)

const defaultOutlineCacheSize = 512

// Option configures a Service.
type Option func(*Service)

// WithOutlineCacheSize sets how many glyph outlines are kept parsed.
func WithOutlineCacheSize(n int) Option {
	return func(s *Service) {
		s.outlines = cache.New[outlineKey, *outline](n)
	}
}

// Font is a loaded font.
type Font struct {
	sfnt   *sfnt.Font
	shaper *gotext.Font
}

// Service is the reference text service.
type Service struct {
	mu   sync.Mutex
	heap *native.Heap
	buf  sfnt.Buffer

	fonts    *native.Table[*Font]
	outlines *cache.Cache[outlineKey, *outline]

	paths    map[native.Handle]glyphAlloc
	nextPath native.Handle
	shapes   map[uint32]struct{}
	lines    map[uint32]struct{}
	features map[uint32]uint32 // header -> data
}

// New returns a Service allocating its results in heap.
func New(heap *native.Heap, opts ...Option) *Service {
	s := &Service{
		heap:     heap,
		fonts:    native.NewTable[*Font](),
		outlines: cache.New[outlineKey, *outline](defaultOutlineCacheSize),
		paths:    make(map[native.Handle]glyphAlloc),
		shapes:   make(map[uint32]struct{}),
		lines:    make(map[uint32]struct{}),
		features: make(map[uint32]uint32),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Heap returns the heap results are written to.
func (s *Service) Heap() *native.Heap { return s.heap }

// Bytes implements memview.Region over the service heap.
func (s *Service) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heap.Bytes()
}

// LoadFont parses a TrueType or OpenType font and returns its handle.
func (s *Service) LoadFont(data []byte) (native.Handle, error) {
	sf, err := sfnt.Parse(data)
	if err != nil {
		return native.Null, fmt.Errorf("textsvc: parse font: %w", err)
	}
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return native.Null, fmt.Errorf("textsvc: parse font for shaping: %w", err)
	}
	h := s.fonts.Register(&Font{sfnt: sf, shaper: face.Font})
	texbridge.Logger().Debug("textsvc: font loaded", "handle", h, "bytes", len(data))
	return h, nil
}

// UnloadFont forgets a font and its cached outlines.
func (s *Service) UnloadFont(h native.Handle) error {
	if _, ok := s.fonts.Unregister(h); !ok {
		return fmt.Errorf("textsvc: font %v: %w", h, texbridge.ErrNotFound)
	}
	s.outlines.DeleteFunc(func(k outlineKey) bool { return k.font == h })
	return nil
}

func (s *Service) font(h native.Handle) (*Font, error) {
	f, ok := s.fonts.Lookup(h)
	if !ok {
		return nil, fmt.Errorf("textsvc: font %v: %w", h, texbridge.ErrNotFound)
	}
	return f, nil
}

// GlyphIndex returns the glyph of rune r, or 0 if the font has none.
func (s *Service) GlyphIndex(h native.Handle, r rune) (uint16, error) {
	f, err := s.font(h)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := f.sfnt.GlyphIndex(&s.buf, r)
	if err != nil {
		return 0, fmt.Errorf("textsvc: glyph index of %q: %w", r, err)
	}
	return uint16(g), nil
}

// Metrics are vertical font metrics in pixels.
type Metrics struct {
	Ascent  float32
	Descent float32
}

// FontMetrics returns the font's ascent and descent at size pixels per em.
// Descent is positive below the baseline.
func (s *Service) FontMetrics(h native.Handle, size float32) (Metrics, error) {
	f, err := s.font(h)
	if err != nil {
		return Metrics{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := f.sfnt.Metrics(&s.buf, toFixed(size), xfont.HintingNone)
	if err != nil {
		return Metrics{}, fmt.Errorf("textsvc: font metrics: %w", err)
	}
	return Metrics{Ascent: fromFixed(m.Ascent), Descent: fromFixed(m.Descent)}, nil
}

func toFixed(v float32) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func fromFixed(v fixed.Int26_6) float32 { return float32(v) / 64 }
