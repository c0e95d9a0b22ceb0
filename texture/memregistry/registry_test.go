package memregistry

import (
	"errors"
	"testing"

	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/gpuctx"
	"github.com/gogpu/texbridge/gpuctx/haldevice"
	"github.com/gogpu/texbridge/native"
	"github.com/gogpu/texbridge/texture"
)

type countingAPI struct {
	created, destroyed int
	sizes              [][2]int
}

func (c *countingAPI) CreateRenderer(_ int64, d any, w, h int) (native.Handle, error) {
	if _, ok := d.(*Producer); !ok {
		return native.Null, errors.New("unexpected drawable")
	}
	c.created++
	c.sizes = append(c.sizes, [2]int{w, h})
	return native.Handle(c.created), nil
}
func (c *countingAPI) DestroyRenderer(native.Handle)                { c.destroyed++ }
func (c *countingAPI) ResizeRenderer(native.Handle, int, int) error { return nil }

// newManager returns a Manager whose contexts come from a broker on the
// noop HAL backend.
func newManager(t *testing.T, reg *Registry, api native.RendererAPI) *texture.Manager {
	t.Helper()
	dev, err := haldevice.New(&noop.API{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(dev.Close)
	m := texture.NewManager(reg, gpuctx.NewBroker(dev, api))
	t.Cleanup(m.Close)
	return m
}

func TestCreateRemoveLeavesRegistryEmpty(t *testing.T) {
	reg := New()
	api := &countingAPI{}
	m := newManager(t, reg, api)

	id, err := m.CreateSurface(64, 64)
	if err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}
	p, _ := reg.Lookup(id)

	if err := m.RemoveSurface(id); err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 0 || m.Len() != 0 {
		t.Errorf("registry=%d manager=%d, want both empty", reg.Len(), m.Len())
	}
	if api.destroyed != 1 {
		t.Errorf("destroyed %d times, want 1", api.destroyed)
	}
	if !p.Released() {
		t.Error("producer should be released")
	}
	p.Release()
}

func TestProducerLifecycle(t *testing.T) {
	reg := New()
	api := &countingAPI{}
	m := newManager(t, reg, api)

	id, _ := m.CreateSurface(32, 16)
	p, _ := reg.Lookup(id)

	p.Invalidate()
	p.Invalidate()
	if api.destroyed != 1 {
		t.Errorf("destroyed %d times, want 1", api.destroyed)
	}
	if err := p.Recreate(48, 24); err != nil {
		t.Fatal(err)
	}
	if last := api.sizes[len(api.sizes)-1]; last != [2]int{48, 24} {
		t.Errorf("recreated at %v, want [48 24]", last)
	}
	s, _ := m.Surface(id)
	if s.State != texture.StateActive {
		t.Errorf("state = %v, want active", s.State)
	}

	_ = m.RemoveSurface(id)
	if err := p.Recreate(1, 1); !errors.Is(err, texbridge.ErrNotFound) {
		t.Errorf("Recreate after release error = %v, want ErrNotFound", err)
	}
}

func TestAllocateUniqueIDs(t *testing.T) {
	reg := New()
	seen := map[int64]bool{}
	for range 5 {
		p, err := reg.Allocate()
		if err != nil {
			t.Fatal(err)
		}
		if seen[p.ID()] {
			t.Fatalf("duplicate id %d", p.ID())
		}
		seen[p.ID()] = true
	}
}
