// Package memregistry is an in-process drawable registry.
//
// It stands in for the host's texture registry in tests, the headless demo
// and the reference renderer: producers are plain sized buffers whose
// lifecycle events are driven by Invalidate and Recreate.
package memregistry

import (
	"fmt"
	"sync"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/gpuctx"
	"github.com/gogpu/texbridge/texture"
)

// Registry allocates Producers with increasing ids starting at 1.
// Registry is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	next      int64
	producers map[int64]*Producer
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{producers: make(map[int64]*Producer)}
}

// Allocate implements texture.Registry.
func (r *Registry) Allocate() (texture.Producer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	p := &Producer{id: r.next, reg: r}
	r.producers[p.id] = p
	return p, nil
}

// Lookup returns the live producer with the given id.
func (r *Registry) Lookup(id int64) (*Producer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.producers[id]
	return p, ok
}

// Len returns the number of unreleased producers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.producers)
}

func (r *Registry) remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.producers, id)
}

// Producer is an in-process frame producer. It implements texture.Producer
// and serves as its own drawable.
type Producer struct {
	id  int64
	reg *Registry

	mu       sync.Mutex
	width    int
	height   int
	listener texture.Listener
	released bool
}

// ID implements texture.Producer.
func (p *Producer) ID() int64 { return p.id }

// Drawable implements texture.Producer.
func (p *Producer) Drawable() gpuctx.Drawable { return p }

// Size implements texture.Producer.
func (p *Producer) Size() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// SetSize implements texture.Producer.
func (p *Producer) SetSize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width, p.height = width, height
}

// Subscribe implements texture.Producer.
func (p *Producer) Subscribe(l texture.Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener = l
}

// Released reports whether Release was called.
func (p *Producer) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

// Release implements texture.Producer.
func (p *Producer) Release() {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	p.released = true
	p.listener = nil
	p.mu.Unlock()
	p.reg.remove(p.id)
}

// Invalidate simulates the platform destroying the producer's surface.
func (p *Producer) Invalidate() {
	if l := p.subscriber(); l != nil {
		l.OnSurfaceInvalidated(p.id)
	}
}

// Recreate simulates the platform recreating the surface at a new size.
func (p *Producer) Recreate(width, height int) error {
	l := p.subscriber()
	if l == nil {
		return fmt.Errorf("memregistry: producer %d has no listener: %w", p.id, texbridge.ErrNotFound)
	}
	p.SetSize(width, height)
	return l.OnSurfaceRecreated(p.id)
}

func (p *Producer) subscriber() texture.Listener {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listener
}
