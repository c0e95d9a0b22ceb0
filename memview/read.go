package memview

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Bytes returns an aliased byte slice of length n at offset.
func Bytes(r Region, offset, n int) ([]byte, error) {
	v, err := New(r, offset, n, KindByte)
	if err != nil {
		return nil, err
	}
	return v.data, nil
}

// Tail returns a byte view from offset to the end of the region.
func Tail(r Region, offset int) (View, error) {
	return New(r, offset, len(r.Bytes())-offset, KindByte)
}

// ReadUint32 reads a little-endian uint32 at byte offset.
func ReadUint32(r Region, offset int) (uint32, error) {
	b, err := Bytes(r, offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadFloat32 reads a little-endian float32 at byte offset.
func ReadFloat32(r Region, offset int) (float32, error) {
	u, err := ReadUint32(r, offset)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

// FindNullTerminator scans forward from start until a zero byte or the end
// of the region and returns the number of bytes before it.
// A start outside the region yields 0.
func FindNullTerminator(r Region, start int) int {
	buf := r.Bytes()
	if start < 0 || start >= len(buf) {
		return 0
	}
	if i := bytes.IndexByte(buf[start:], 0); i >= 0 {
		return i
	}
	return len(buf) - start
}

// CString returns the aliased bytes of the C-style string starting at start,
// without its terminator.
func CString(r Region, start int) []byte {
	n := FindNullTerminator(r, start)
	if n == 0 {
		return nil
	}
	return r.Bytes()[start : start+n : start+n]
}
