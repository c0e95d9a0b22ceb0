package gpuctx

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/native"
)

// ErrContextClosed is returned when a closed Context is used.
var ErrContextClosed = errors.New("gpuctx: context is closed")

// Clearer is implemented by renderer APIs that can clear a frame.
type Clearer interface {
	Clear(h native.Handle, c color.Color) error
}

// Context is a graphics context bound to one drawable and one native
// renderer.
//
// Context is NOT safe for concurrent use.
type Context struct {
	gl       GLContext
	drawable Drawable
	renderer *native.Renderer
	attrs    Attributes
	caps     Capabilities

	// Size snapshot of the drawable at the last (re)size of the renderer.
	width  int
	height int

	closed bool
}

// Handle returns the native renderer handle, or native.Null once closed.
func (c *Context) Handle() native.Handle {
	if c == nil {
		return native.Null
	}
	return c.renderer.Handle()
}

// Live reports whether the context still owns a native renderer.
func (c *Context) Live() bool { return c != nil && !c.closed && c.renderer.Live() }

// Drawable returns the drawable the context was created on.
func (c *Context) Drawable() Drawable { return c.drawable }

// Size returns the cached drawable size.
func (c *Context) Size() (width, height int) { return c.width, c.height }

// Antialias reports whether the context was created with multisampling.
func (c *Context) Antialias() bool { return c.attrs.Antialias() }

// Format returns the context's texture format.
func (c *Context) Format() gputypes.TextureFormat { return c.attrs.Format }

// Capabilities returns the capabilities the context was created with.
func (c *Context) Capabilities() Capabilities { return c.caps }

// Resize resizes the native renderer in place if the size differs from the
// cached one. The handle is kept.
func (c *Context) Resize(width, height int) error {
	if c.closed {
		return ErrContextClosed
	}
	if width == c.width && height == c.height {
		return nil
	}
	if err := c.renderer.Resize(width, height); err != nil {
		return err
	}
	texbridge.Logger().Debug("gpuctx: renderer resized",
		"from", fmt.Sprintf("%dx%d", c.width, c.height),
		"to", fmt.Sprintf("%dx%d", width, height))
	c.width, c.height = width, height
	return nil
}

// Clear starts a frame. If the drawable's size changed since the last frame,
// the native renderer is resized once first.
func (c *Context) Clear(col color.Color) error {
	if c.closed {
		return ErrContextClosed
	}
	if err := c.Resize(c.drawable.Size()); err != nil {
		return fmt.Errorf("gpuctx: clear: %w", err)
	}
	if cl, ok := c.renderer.API().(Clearer); ok {
		if err := cl.Clear(c.renderer.Handle(), col); err != nil {
			return fmt.Errorf("gpuctx: clear: %w", err)
		}
	}
	return nil
}

// Close destroys the native renderer and the context. It is idempotent and
// safe on a nil Context.
func (c *Context) Close() {
	if c == nil || c.closed {
		return
	}
	c.closed = true
	c.renderer.Close()
	c.gl.Destroy()
}
