// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpuctx probes what the graphics device can do and creates the GPU
// contexts native renderers draw into.
//
// The probe runs once per Broker: it creates a 1x1 offscreen drawable, opens
// a multisampled context on it, reads the extension list and limits, then
// applies known driver quirks. Every context the Broker creates afterwards
// uses the cached result.
//
// # Devices
//
// A Device is the graphics API as seen by the probe. Two implementations
// ship with this module:
//
//   - gpuctx/haldevice: gogpu/wgpu HAL adapters (Vulkan, or the noop
//     backend in tests)
//   - gpuctx/gldevice: OpenGL through go-gl and GLFW (build tag "gl")
package gpuctx

// Param is a device integer parameter queried by the probe.
type Param int

// Probed parameters.
const (
	ParamMaxRenderbufferSize Param = iota + 1
	ParamMaxTextureSize
)

// String returns the parameter name.
func (p Param) String() string {
	switch p {
	case ParamMaxRenderbufferSize:
		return "MAX_RENDERBUFFER_SIZE"
	case ParamMaxTextureSize:
		return "MAX_TEXTURE_SIZE"
	default:
		return "UNKNOWN_PARAM"
	}
}

// Drawable is a target a context can be created on.
type Drawable interface {
	// Size returns the drawable's current size in pixels.
	Size() (width, height int)
}

// GLContext is a live graphics context.
type GLContext interface {
	// HasExtension reports whether the named extension is supported.
	HasExtension(name string) bool

	// Parameter returns an integer device parameter, or 0 if unknown.
	Parameter(p Param) int

	// DebugRendererInfo returns the unmasked vendor and renderer strings.
	// ok is false when the device does not expose them.
	DebugRendererInfo() (vendor, renderer string, ok bool)

	// MakeCurrent binds the context to the calling thread.
	MakeCurrent() error

	// Destroy releases the context. It must be safe to call twice.
	Destroy()
}

// Device opens drawables and contexts.
type Device interface {
	// Offscreen creates an offscreen drawable of the given size.
	Offscreen(width, height int) (Drawable, error)

	// CreateContext creates a context on d. It returns false when the
	// device refuses; that absence is the context creation failure.
	CreateContext(d Drawable, attrs Attributes) (GLContext, bool)
}
