package script

import (
	"fmt"
	"strings"
	"text/scanner"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/decode"
)

// Token kinds of a highlight row.
const (
	KindIdent uint32 = iota + 1
	KindNumber
	KindString
	KindComment
	KindPunct
)

// SetSource stores the source of a named module for highlighting.
func (w *Workspace) SetSource(name, src string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sources[name] = strings.Split(src, "\n")
}

// HighlightRow tokenizes row of the named source and writes one
// (column, length, kind) uint32 triple per token into the heap. Columns are
// byte offsets within the row. The row must be freed with FreeHighlight.
func (w *Workspace) HighlightRow(name string, row int) (decode.HighlightHeader, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	lines, ok := w.sources[name]
	if !ok {
		return decode.HighlightHeader{}, fmt.Errorf("script: source %q: %w", name, texbridge.ErrNotFound)
	}
	if row < 0 || row >= len(lines) {
		return decode.HighlightHeader{}, fmt.Errorf("script: source %q has no row %d: %w",
			name, row, texbridge.ErrInvalidArgument)
	}

	words := tokenize(lines[row])
	if len(words) == 0 {
		return decode.HighlightHeader{}, nil
	}
	ptr, err := w.heap.Alloc(4 * len(words))
	if err != nil {
		return decode.HighlightHeader{}, err
	}
	if err := w.heap.PutUint32s(ptr, words...); err != nil {
		return decode.HighlightHeader{}, err
	}
	return decode.HighlightHeader{Count: uint32(len(words)), Data: ptr}, nil
}

// FreeHighlight frees a row returned by HighlightRow.
func (w *Workspace) FreeHighlight(h decode.HighlightHeader) error {
	if h.Data == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.heap.Free(h.Data)
}

func tokenize(line string) []uint32 {
	var s scanner.Scanner
	s.Init(strings.NewReader(line))
	s.Mode = scanner.GoTokens &^ scanner.SkipComments
	s.Error = func(*scanner.Scanner, string) {}

	var words []uint32
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		words = append(words,
			uint32(s.Position.Offset),
			uint32(len(s.TokenText())),
			tokenKind(tok))
	}
	return words
}

func tokenKind(tok rune) uint32 {
	switch tok {
	case scanner.Ident:
		return KindIdent
	case scanner.Int, scanner.Float:
		return KindNumber
	case scanner.String, scanner.RawString, scanner.Char:
		return KindString
	case scanner.Comment:
		return KindComment
	default:
		return KindPunct
	}
}
