package native

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/memview"
)

// heapAlign is the allocation alignment in bytes.
const heapAlign = 8

// Heap is a simulated native linear heap.
//
// Native services allocate their result records in a Heap and hand back
// 32-bit pointers (byte offsets), exactly like a wasm module hands back
// offsets into its linear memory. Offset 0 is never allocated so it can
// serve as the null pointer.
//
// When an allocation does not fit, the backing memory is reallocated;
// views derived before that point are stale.
//
// Heap is not safe for concurrent use.
type Heap struct {
	mem  *memview.Memory
	next uint32
	live map[uint32]uint32
	free []block
}

type block struct {
	ptr  uint32
	size uint32
}

// NewHeap creates a heap with an initial capacity of size bytes.
func NewHeap(size int) *Heap {
	if size < heapAlign*2 {
		size = heapAlign * 2
	}
	return &Heap{
		mem:  memview.NewMemory(size),
		next: heapAlign,
		live: make(map[uint32]uint32),
	}
}

// Bytes implements memview.Region.
func (h *Heap) Bytes() []byte { return h.mem.Bytes() }

// Memory returns the backing memory region.
func (h *Heap) Memory() *memview.Memory { return h.mem }

// Live returns the number of outstanding allocations.
func (h *Heap) Live() int { return len(h.live) }

// Alloc reserves n bytes and returns their offset. The memory is zeroed.
func (h *Heap) Alloc(n int) (uint32, error) {
	if n < 0 || uint64(n) > math.MaxUint32-heapAlign {
		return 0, fmt.Errorf("native: alloc %d bytes: %w", n, texbridge.ErrInvalidArgument)
	}
	size := alignUp(uint32(n))
	if size == 0 {
		size = heapAlign
	}

	for i, b := range h.free {
		if b.size >= size {
			h.free = append(h.free[:i], h.free[i+1:]...)
			clear(h.mem.Bytes()[b.ptr : b.ptr+b.size])
			h.live[b.ptr] = b.size
			return b.ptr, nil
		}
	}

	end := uint64(h.next) + uint64(size)
	if end > math.MaxUint32 {
		return 0, fmt.Errorf("native: alloc %d bytes: heap exhausted: %w", n, texbridge.ErrOutOfBounds)
	}
	if int(end) > h.mem.Len() {
		grow := h.mem.Len()
		if need := int(end) - h.mem.Len(); need > grow {
			grow = need
		}
		h.mem.Grow(grow)
		texbridge.Logger().Debug("native: heap grown", "size", h.mem.Len(), "generation", h.mem.Generation())
	}
	ptr := h.next
	h.next = uint32(end)
	h.live[ptr] = size
	return ptr, nil
}

// Free releases an allocation. Freeing an unknown or already freed pointer
// fails with texbridge.ErrNotFound.
func (h *Heap) Free(ptr uint32) error {
	size, ok := h.live[ptr]
	if !ok {
		return fmt.Errorf("native: free 0x%x: %w", ptr, texbridge.ErrNotFound)
	}
	delete(h.live, ptr)
	h.free = append(h.free, block{ptr: ptr, size: size})
	return nil
}

// Write copies b into the heap at ptr.
func (h *Heap) Write(ptr uint32, b []byte) error {
	dst, err := memview.Bytes(h, int(ptr), len(b))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// AllocBytes allocates len(b) bytes and copies b into them.
func (h *Heap) AllocBytes(b []byte) (uint32, error) {
	ptr, err := h.Alloc(len(b))
	if err != nil {
		return 0, err
	}
	return ptr, h.Write(ptr, b)
}

// PutUint32s writes little-endian uint32 values starting at ptr.
func (h *Heap) PutUint32s(ptr uint32, vals ...uint32) error {
	dst, err := memview.Bytes(h, int(ptr), len(vals)*4)
	if err != nil {
		return err
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(dst[i*4:], v)
	}
	return nil
}

// PutFloat32s writes little-endian float32 values starting at ptr.
func (h *Heap) PutFloat32s(ptr uint32, vals ...float32) error {
	dst, err := memview.Bytes(h, int(ptr), len(vals)*4)
	if err != nil {
		return err
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
	return nil
}

func alignUp(n uint32) uint32 {
	return (n + heapAlign - 1) &^ (heapAlign - 1)
}
