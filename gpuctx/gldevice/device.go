//go:build gl

// Package gldevice implements gpuctx.Device on desktop OpenGL.
//
// Drawables are hidden GLFW windows; each context creation makes a new
// hidden window with the requested sample count, since GLFW fixes the pixel
// format at window creation. GLFW requires all calls to happen on the main
// thread: the program must call runtime.LockOSThread from an init function.
package gldevice

import (
	"fmt"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/gpuctx"
)

// Device is a gpuctx.Device backed by GLFW and OpenGL 4.1 core.
type Device struct {
	glOnce sync.Once
	glErr  error
}

// Open initializes GLFW. Call Close when done.
func Open() (*Device, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("gldevice: glfw init: %w", err)
	}
	return &Device{}, nil
}

// Close terminates GLFW.
func (d *Device) Close() {
	glfw.Terminate()
}

// Offscreen returns a hidden drawable of the given size.
func (d *Device) Offscreen(width, height int) (gpuctx.Drawable, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gldevice: invalid drawable size %dx%d", width, height)
	}
	return &Surface{width: width, height: height}, nil
}

// CreateContext creates a hidden window and its context.
func (d *Device) CreateContext(dr gpuctx.Drawable, attrs gpuctx.Attributes) (gpuctx.GLContext, bool) {
	w, h := dr.Size()
	samples := 0
	if attrs.Antialias() {
		samples = int(attrs.Multisample.Count)
	}

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Samples, samples)

	window, err := glfw.CreateWindow(w, h, "texbridge", nil, nil)
	if err != nil {
		texbridge.Logger().Warn("gldevice: create window failed", "error", err)
		return nil, false
	}
	window.MakeContextCurrent()

	// Function pointers are loaded once, from the first current context.
	d.glOnce.Do(func() { d.glErr = gl.Init() })
	if d.glErr != nil {
		texbridge.Logger().Warn("gldevice: gl init failed", "error", d.glErr)
		window.Destroy()
		return nil, false
	}

	c := &context{window: window}
	if s, ok := dr.(*Surface); ok {
		s.window = window
		c.surface = s
	}
	return c, true
}

// Surface is a hidden-window drawable.
type Surface struct {
	width, height int
	window        *glfw.Window
}

// Size returns the framebuffer size once a context exists, else the
// requested size.
func (s *Surface) Size() (int, int) {
	if s.window != nil {
		return s.window.GetFramebufferSize()
	}
	return s.width, s.height
}

// Resize resizes the hidden window.
func (s *Surface) Resize(width, height int) {
	s.width, s.height = width, height
	if s.window != nil {
		s.window.SetSize(width, height)
	}
}

type context struct {
	window  *glfw.Window
	surface *Surface
	exts    map[string]bool
}

func (c *context) HasExtension(name string) bool {
	if c.exts == nil {
		c.window.MakeContextCurrent()
		var n int32
		gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
		c.exts = make(map[string]bool, n)
		for i := range uint32(n) {
			c.exts[gl.GoStr(gl.GetStringi(gl.EXTENSIONS, i))] = true
		}
	}
	return c.exts[name]
}

func (c *context) Parameter(p gpuctx.Param) int {
	var pname uint32
	switch p {
	case gpuctx.ParamMaxRenderbufferSize:
		pname = gl.MAX_RENDERBUFFER_SIZE
	case gpuctx.ParamMaxTextureSize:
		pname = gl.MAX_TEXTURE_SIZE
	default:
		return 0
	}
	c.window.MakeContextCurrent()
	var v int32
	gl.GetIntegerv(pname, &v)
	return int(v)
}

func (c *context) DebugRendererInfo() (vendor, renderer string, ok bool) {
	c.window.MakeContextCurrent()
	vendor = gl.GoStr(gl.GetString(gl.VENDOR))
	renderer = gl.GoStr(gl.GetString(gl.RENDERER))
	return vendor, renderer, vendor != "" || renderer != ""
}

func (c *context) MakeCurrent() error {
	if c.window == nil {
		return gpuctx.ErrContextClosed
	}
	c.window.MakeContextCurrent()
	return nil
}

func (c *context) Destroy() {
	if c.window == nil {
		return
	}
	if c.surface != nil && c.surface.window == c.window {
		c.surface.width, c.surface.height = c.window.GetFramebufferSize()
		c.surface.window = nil
	}
	c.window.Destroy()
	c.window = nil
}
