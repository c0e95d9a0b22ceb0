package memview

// Memory is a growable linear memory region.
//
// Growing replaces the backing slice: every view derived before a Grow call
// still points at the old buffer and must be derived again. Generation
// increments on each growth so callers can detect stale views.
//
// Memory is not safe for concurrent use.
type Memory struct {
	buf []byte
	gen uint64
}

// NewMemory creates a zeroed region of size bytes.
func NewMemory(size int) *Memory {
	if size < 0 {
		size = 0
	}
	return &Memory{buf: make([]byte, size)}
}

// Bytes implements Region.
func (m *Memory) Bytes() []byte { return m.buf }

// Len returns the current region size in bytes.
func (m *Memory) Len() int { return len(m.buf) }

// Generation returns the number of times the region has been reallocated.
func (m *Memory) Generation() uint64 { return m.gen }

// Grow extends the region by at least n bytes, reallocating the backing
// slice. Existing contents are preserved at the same offsets.
func (m *Memory) Grow(n int) {
	if n <= 0 {
		return
	}
	next := make([]byte, len(m.buf)+n)
	copy(next, m.buf)
	m.buf = next
	m.gen++
}
