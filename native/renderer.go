// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package native describes the boundary between texbridge and the native
// rendering engine: opaque handles, the renderer entry points, and a
// simulated linear heap that native services write their results into.
package native

import (
	"fmt"

	"github.com/gogpu/texbridge"
)

// Handle is an opaque identity of a native object.
// The zero Handle is the null sentinel: no native object.
type Handle uintptr

// Null is the sentinel for "no active native object".
const Null Handle = 0

// IsNull reports whether h is the null sentinel.
func (h Handle) IsNull() bool { return h == Null }

// String returns a hex representation of the handle.
func (h Handle) String() string { return fmt.Sprintf("Handle(0x%x)", uintptr(h)) }

// RendererAPI is the native renderer entry points texbridge calls into.
//
// texbridge guarantees DestroyRenderer is never called with Null and never
// twice for the same handle, and that CreateRenderer is called at most once
// per activation of a surface.
type RendererAPI interface {
	// CreateRenderer binds a new renderer to drawable at the given size.
	CreateRenderer(surfaceID int64, drawable any, width, height int) (Handle, error)

	// DestroyRenderer releases a renderer created by CreateRenderer.
	DestroyRenderer(h Handle)

	// ResizeRenderer resizes a live renderer in place; the handle is kept.
	ResizeRenderer(h Handle, width, height int) error
}

// noCopy may be embedded into structs which must not be copied after first
// use. See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Renderer owns one native renderer handle.
//
// The handle is created by NewRenderer and destroyed exactly once by Close.
// A Renderer is used through its pointer only; copying it is flagged by
// go vet. Renderer is NOT safe for concurrent use: only the coordinating
// goroutine that created it may call its methods.
type Renderer struct {
	_ noCopy

	api       RendererAPI
	handle    Handle
	surfaceID int64
	width     int
	height    int
}

// NewRenderer calls api.CreateRenderer and wraps the result.
// A Null handle without an error is reported as texbridge.ErrContextCreation.
func NewRenderer(api RendererAPI, surfaceID int64, drawable any, width, height int) (*Renderer, error) {
	h, err := api.CreateRenderer(surfaceID, drawable, width, height)
	if err != nil {
		return nil, fmt.Errorf("native: create renderer for surface %d: %w", surfaceID, err)
	}
	if h.IsNull() {
		return nil, fmt.Errorf("native: create renderer for surface %d returned null: %w",
			surfaceID, texbridge.ErrContextCreation)
	}
	return &Renderer{
		api:       api,
		handle:    h,
		surfaceID: surfaceID,
		width:     width,
		height:    height,
	}, nil
}

// Handle returns the native handle, or Null once the renderer is closed.
func (r *Renderer) Handle() Handle {
	if r == nil {
		return Null
	}
	return r.handle
}

// API returns the renderer entry points the handle belongs to.
func (r *Renderer) API() RendererAPI { return r.api }

// Live reports whether the renderer still owns a native handle.
func (r *Renderer) Live() bool { return !r.Handle().IsNull() }

// Size returns the size the native renderer was last created or resized to.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// Resize resizes the native renderer in place.
func (r *Renderer) Resize(width, height int) error {
	if !r.Live() {
		return fmt.Errorf("native: resize closed renderer of surface %d: %w", r.surfaceID, texbridge.ErrNotFound)
	}
	if err := r.api.ResizeRenderer(r.handle, width, height); err != nil {
		return fmt.Errorf("native: resize renderer of surface %d: %w", r.surfaceID, err)
	}
	r.width, r.height = width, height
	return nil
}

// Close destroys the native handle. It is idempotent and safe on a nil
// Renderer: the native destroy entry point runs at most once.
func (r *Renderer) Close() {
	if r == nil || r.handle.IsNull() {
		return
	}
	h := r.handle
	r.handle = Null
	r.api.DestroyRenderer(h)
}
