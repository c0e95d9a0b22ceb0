// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import "github.com/gogpu/texbridge/gpuctx"

// Listener receives platform surface lifecycle events.
type Listener interface {
	// OnSurfaceInvalidated is called when the platform destroys the
	// surface's GPU resources.
	OnSurfaceInvalidated(id int64)

	// OnSurfaceRecreated is called when the platform recreates them.
	OnSurfaceRecreated(id int64) error
}

// Producer is a host-side frame producer backing one surface.
type Producer interface {
	// ID returns the host-assigned surface id.
	ID() int64

	// Drawable returns the platform object the surface's context is created
	// on.
	Drawable() gpuctx.Drawable

	// Size returns the producer's current buffer size.
	Size() (width, height int)

	// SetSize sets the producer's buffer size.
	SetSize(width, height int)

	// Subscribe registers l for the producer's lifecycle events.
	Subscribe(l Listener)

	// Release returns the producer to the host. It must be idempotent.
	Release()
}

// Registry is the host drawable registry.
type Registry interface {
	// Allocate creates a new producer with a unique id.
	Allocate() (Producer, error)
}

// ContextFactory creates the GPU context of a surface. *gpuctx.Broker
// implements it.
type ContextFactory interface {
	CreateContextFor(d gpuctx.Drawable, surfaceID int64) (*gpuctx.Context, error)
}

var _ ContextFactory = (*gpuctx.Broker)(nil)
