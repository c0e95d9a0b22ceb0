// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package haldevice implements gpuctx.Device on gogpu/wgpu HAL adapters.
//
// Each context opens its own HAL device on the selected adapter. The HAL has
// no extension strings, so the extensions a context reports are configured
// with WithExtensions. Limits come from the limits requested at open time.
package haldevice

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/gpuctx"
)

var (
	// ErrNoAdapters is returned when the backend exposes no adapter.
	ErrNoAdapters = errors.New("haldevice: no GPU adapters found")

	// ErrBackendUnavailable is returned when the requested backend is not
	// registered.
	ErrBackendUnavailable = errors.New("haldevice: backend not available")

	// ErrInvalidSize is returned for non-positive drawable sizes.
	ErrInvalidSize = errors.New("haldevice: invalid drawable size")
)

// InstanceCreator is the part of a HAL backend used to create an instance.
type InstanceCreator interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// Option configures a Device.
type Option func(*Device)

// WithExtensions sets the extension names contexts report as supported.
func WithExtensions(names ...string) Option {
	return func(d *Device) {
		for _, n := range names {
			d.extensions[n] = true
		}
	}
}

// WithLimits sets the limits requested when opening devices.
func WithLimits(l gputypes.Limits) Option {
	return func(d *Device) {
		d.limits = l
	}
}

// Device is a gpuctx.Device backed by one HAL adapter.
type Device struct {
	instance   hal.Instance
	adapter    *hal.ExposedAdapter
	class      string
	limits     gputypes.Limits
	extensions map[string]bool
}

// Open creates a Device on the registered backend of the given type.
func Open(variant gputypes.Backend, opts ...Option) (*Device, error) {
	backend, ok := hal.GetBackend(variant)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, variant)
	}
	return New(backend, opts...)
}

// New creates a Device on the first discrete or integrated adapter of b,
// falling back to the first adapter.
func New(b InstanceCreator, opts ...Option) (*Device, error) {
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("haldevice: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapters
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	class := "other"
	switch selected.Info.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		class = "discrete"
	case gputypes.DeviceTypeIntegratedGPU:
		class = "integrated"
	}

	d := &Device{
		instance:   instance,
		adapter:    selected,
		class:      class,
		limits:     gputypes.DefaultLimits(),
		extensions: map[string]bool{},
	}
	for _, opt := range opts {
		opt(d)
	}
	texbridge.Logger().Info("haldevice: adapter selected", "adapter", selected.Info.Name)
	return d, nil
}

// AdapterName returns the selected adapter's name.
func (d *Device) AdapterName() string { return d.adapter.Info.Name }

// Close destroys the HAL instance. Contexts must be destroyed first.
func (d *Device) Close() {
	if d.instance == nil {
		return
	}
	d.instance.Destroy()
	d.instance = nil
}

// Offscreen returns a headless drawable of the given size.
func (d *Device) Offscreen(width, height int) (gpuctx.Drawable, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Target{width: width, height: height}, nil
}

// CreateContext opens a HAL device on the selected adapter.
func (d *Device) CreateContext(dr gpuctx.Drawable, attrs gpuctx.Attributes) (gpuctx.GLContext, bool) {
	if d.instance == nil || dr == nil {
		return nil, false
	}
	openDev, err := d.adapter.Adapter.Open(gputypes.Features(0), d.limits)
	if err != nil {
		texbridge.Logger().Warn("haldevice: open device failed", "error", err)
		return nil, false
	}
	return &context{
		device:     openDev.Device,
		queue:      openDev.Queue,
		name:       d.adapter.Info.Name,
		class:      d.class,
		limits:     d.limits,
		extensions: d.extensions,
		attrs:      attrs,
	}, true
}

// Target is a headless drawable.
type Target struct {
	width, height int
}

// NewTarget returns a headless drawable of the given size.
func NewTarget(width, height int) *Target { return &Target{width: width, height: height} }

// Size returns the target size.
func (t *Target) Size() (int, int) { return t.width, t.height }

// Resize changes the target size. Contexts pick it up on their next clear.
func (t *Target) Resize(width, height int) {
	t.width, t.height = width, height
}

type context struct {
	device     hal.Device
	queue      hal.Queue
	name       string
	class      string
	limits     gputypes.Limits
	extensions map[string]bool
	attrs      gpuctx.Attributes
}

func (c *context) HasExtension(name string) bool { return c.extensions[name] }

func (c *context) Parameter(p gpuctx.Param) int {
	switch p {
	case gpuctx.ParamMaxRenderbufferSize, gpuctx.ParamMaxTextureSize:
		return int(c.limits.MaxTextureDimension2D)
	default:
		return 0
	}
}

func (c *context) DebugRendererInfo() (vendor, renderer string, ok bool) {
	return c.class, c.name, true
}

func (c *context) MakeCurrent() error {
	if c.device == nil {
		return gpuctx.ErrContextClosed
	}
	return nil
}

func (c *context) Destroy() {
	if c.device == nil {
		return
	}
	c.device.Destroy()
	c.device = nil
	c.queue = nil
}
