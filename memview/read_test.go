package memview

import (
	"errors"
	"testing"

	"github.com/gogpu/texbridge"
)

func TestFindNullTerminator(t *testing.T) {
	buf := Slice("hello\x00world")
	tests := []struct {
		name  string
		start int
		want  int
	}{
		{"terminated", 0, 5},
		{"at terminator", 5, 0},
		{"unterminated tail", 6, 5},
		{"past end", 42, 0},
		{"negative", -3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindNullTerminator(buf, tt.start); got != tt.want {
				t.Errorf("FindNullTerminator(%d) = %d, want %d", tt.start, got, tt.want)
			}
		})
	}
}

func TestCString(t *testing.T) {
	buf := Slice("abc\x00de")
	if got := string(CString(buf, 0)); got != "abc" {
		t.Errorf("CString(0) = %q, want abc", got)
	}
	if got := string(CString(buf, 4)); got != "de" {
		t.Errorf("CString(4) = %q, want de", got)
	}
	if got := CString(buf, 3); got != nil {
		t.Errorf("CString(3) = %q, want nil", got)
	}
}

func TestReadUint32(t *testing.T) {
	buf := Slice{0x01, 0x02, 0x03, 0x04, 0xFF}
	got, err := ReadUint32(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x04030201 {
		t.Errorf("ReadUint32 = %#x, want little-endian 0x04030201", got)
	}
	if _, err := ReadUint32(buf, 2); !errors.Is(err, texbridge.ErrOutOfBounds) {
		t.Errorf("ReadUint32 past end error = %v, want ErrOutOfBounds", err)
	}
}

func TestTail(t *testing.T) {
	buf := Slice("0123456789")
	v, err := Tail(buf, 6)
	if err != nil {
		t.Fatal(err)
	}
	if string(v.Raw()) != "6789" {
		t.Errorf("Tail(6) = %q, want 6789", v.Raw())
	}
	if _, err := Tail(buf, 11); !errors.Is(err, texbridge.ErrOutOfBounds) {
		t.Errorf("Tail past end error = %v, want ErrOutOfBounds", err)
	}
}

func TestMemoryGrowInvalidatesViews(t *testing.T) {
	m := NewMemory(8)
	m.Bytes()[0] = 42

	before, err := New(m, 0, 8, KindByte)
	if err != nil {
		t.Fatal(err)
	}
	gen := m.Generation()

	m.Grow(8)
	if m.Len() != 16 {
		t.Fatalf("Len() = %d after Grow(8), want 16", m.Len())
	}
	if m.Generation() != gen+1 {
		t.Errorf("Generation() = %d, want %d", m.Generation(), gen+1)
	}

	m.Bytes()[0] = 7
	if before.Byte(0) != 42 {
		t.Error("stale view should still reference the old buffer")
	}
	after, _ := New(m, 0, 1, KindByte)
	if after.Byte(0) != 7 {
		t.Error("re-derived view should observe the new buffer")
	}
	if _, err := New(m, 8, 8, KindByte); err != nil {
		t.Errorf("view over grown area error = %v", err)
	}
}
