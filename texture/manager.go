// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package texture manages the render surfaces shared between a host UI
// runtime and a native renderer.
//
// A Manager owns a table of surfaces keyed by the host-assigned id. Each
// surface has a host producer and at most one live GPU context, created by
// a ContextFactory (a gpuctx.Broker) on the producer's drawable. The
// context owns the surface's native renderer handle. The platform may
// destroy and recreate a surface's GPU resources at any time; the Manager
// reacts by closing and recreating the context, and rendering is skipped
// while the surface is invalidated.
//
// Resizes are coalesced: ResizeIfChanged only records the requested size,
// and the next Render applies at most one in-place native resize carrying
// the last requested size.
//
// Manager is NOT safe for concurrent use. All calls, including the
// Listener callbacks, must happen on the coordinating goroutine.
package texture

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/native"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the Manager's logger. By default the shared
// texbridge.Logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// Manager is the render surface table.
type Manager struct {
	registry Registry
	contexts ContextFactory
	surfaces map[int64]*Surface
	log      *slog.Logger
}

// NewManager returns an empty Manager allocating producers from registry
// and creating their contexts with contexts.
func NewManager(registry Registry, contexts ContextFactory, opts ...Option) *Manager {
	m := &Manager{
		registry: registry,
		contexts: contexts,
		surfaces: make(map[int64]*Surface),
		log:      texbridge.Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateSurface allocates a producer of the given size, creates a context
// and native renderer on its drawable and returns the surface id.
func (m *Manager) CreateSurface(width, height int) (int64, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("texture: width and height are required, got %dx%d: %w",
			width, height, texbridge.ErrInvalidArgument)
	}

	p, err := m.registry.Allocate()
	if err != nil {
		return 0, fmt.Errorf("texture: allocate producer: %w", err)
	}
	p.SetSize(width, height)

	id := p.ID()
	s := &Surface{
		ID:       id,
		Width:    width,
		Height:   height,
		State:    StateCreated,
		producer: p,
	}
	ctx, err := m.contexts.CreateContextFor(p.Drawable(), id)
	if err != nil {
		p.Release()
		return 0, fmt.Errorf("texture: create surface %d: %w", id, err)
	}
	s.ctx = ctx
	s.State = StateActive
	m.surfaces[id] = s
	p.Subscribe(m)

	m.log.Info("texture: surface created", "id", id, "width", width, "height", height)
	return id, nil
}

// RemoveSurface closes the surface's context, releases its producer and
// forgets it. Unknown ids fail with texbridge.ErrNotFound and change
// nothing.
func (m *Manager) RemoveSurface(id int64) error {
	s, ok := m.surfaces[id]
	if !ok {
		return fmt.Errorf("texture: surface %d: %w", id, texbridge.ErrNotFound)
	}
	s.closeContext()
	s.producer.Release()
	s.State = StateReleased
	delete(m.surfaces, id)

	m.log.Info("texture: surface removed", "id", id)
	return nil
}

// OnSurfaceInvalidated closes the surface's context. It is idempotent and
// ignores unknown ids.
func (m *Manager) OnSurfaceInvalidated(id int64) {
	s, ok := m.surfaces[id]
	if !ok {
		m.log.Debug("texture: invalidation for unknown surface", "id", id)
		return
	}
	s.closeContext()
	s.State = StateInvalidated
	m.log.Debug("texture: surface invalidated", "id", id)
}

// OnSurfaceRecreated creates a new context at the producer's current size.
// Any existing context is closed before the new one is created.
func (m *Manager) OnSurfaceRecreated(id int64) error {
	s, ok := m.surfaces[id]
	if !ok {
		return fmt.Errorf("texture: recreate surface %d: %w", id, texbridge.ErrNotFound)
	}
	s.closeContext()

	ctx, err := m.contexts.CreateContextFor(s.producer.Drawable(), id)
	if err != nil {
		s.State = StateInvalidated
		return fmt.Errorf("texture: recreate surface %d: %w", id, err)
	}
	s.ctx = ctx
	w, h := ctx.Size()
	s.Width, s.Height = w, h
	s.State = StateActive
	m.log.Debug("texture: surface recreated", "id", id, "width", w, "height", h)
	return nil
}

// ResizeIfChanged records a requested size. The next Render resizes the
// native renderer once if the last requested size differs from its current
// size.
func (m *Manager) ResizeIfChanged(id int64, width, height int) error {
	s, ok := m.surfaces[id]
	if !ok {
		return fmt.Errorf("texture: resize surface %d: %w", id, texbridge.ErrNotFound)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("texture: resize surface %d to %dx%d: %w",
			id, width, height, texbridge.ErrInvalidArgument)
	}
	if s.pending {
		m.log.Debug("texture: resize coalesced", "id", id, "width", width, "height", height)
	}
	s.pending = true
	s.pendingWidth, s.pendingHeight = width, height
	return nil
}

// Render runs one frame of surface id. It applies the pending resize, then
// calls fn with the live handle. While the surface has no live renderer it
// returns false without calling fn.
func (m *Manager) Render(id int64, fn func(h native.Handle) error) (bool, error) {
	s, ok := m.surfaces[id]
	if !ok {
		return false, fmt.Errorf("texture: render surface %d: %w", id, texbridge.ErrNotFound)
	}
	if s.State != StateActive || !s.Live() {
		return false, nil
	}

	if s.pending {
		s.pending = false
		if rw, rh := s.ctx.Size(); rw != s.pendingWidth || rh != s.pendingHeight {
			if err := s.ctx.Resize(s.pendingWidth, s.pendingHeight); err != nil {
				return false, fmt.Errorf("texture: render surface %d: %w", id, err)
			}
			s.producer.SetSize(s.pendingWidth, s.pendingHeight)
			s.Width, s.Height = s.pendingWidth, s.pendingHeight
		}
	}

	if err := fn(s.ctx.Handle()); err != nil {
		return true, fmt.Errorf("texture: render surface %d: %w", id, err)
	}
	return true, nil
}

// Surface returns the surface with the given id.
func (m *Manager) Surface(id int64) (*Surface, bool) {
	s, ok := m.surfaces[id]
	return s, ok
}

// Len returns the number of surfaces.
func (m *Manager) Len() int { return len(m.surfaces) }

// IDs returns the surface ids in ascending order.
func (m *Manager) IDs() []int64 {
	return slices.Sorted(maps.Keys(m.surfaces))
}

// Close removes every surface.
func (m *Manager) Close() {
	for _, id := range m.IDs() {
		_ = m.RemoveSurface(id)
	}
}
