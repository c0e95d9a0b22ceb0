package gpuctx

import (
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/texbridge"
)

// PixelLocalStorageExtension is the extension that signals pixel local
// storage support.
const PixelLocalStorageExtension = "WEBGL_shader_pixel_local_storage"

// probeSampleCount is the multisample count of the probe context.
const probeSampleCount = 4

// Capabilities is the cached result of the device probe.
type Capabilities struct {
	// SupportsPixelLocalStorage reports whether the device exposes pixel
	// local storage.
	SupportsPixelLocalStorage bool

	// PreferAntialiasCanvas reports whether contexts should be created with
	// multisampling. It is true iff pixel local storage is absent and no
	// known driver quirk disables it.
	PreferAntialiasCanvas bool

	// MaxRenderTargetSize is min(MAX_RENDERBUFFER_SIZE, MAX_TEXTURE_SIZE).
	MaxRenderTargetSize int
}

// Attributes are context creation attributes.
type Attributes struct {
	Multisample gputypes.MultisampleState
	Format      gputypes.TextureFormat
}

// Antialias reports whether the attributes request multisampling.
func (a Attributes) Antialias() bool { return a.Multisample.Count > 1 }

func multisample(antialias bool) gputypes.MultisampleState {
	if antialias {
		return gputypes.MultisampleState{Count: probeSampleCount, Mask: 0xFFFFFFFF}
	}
	return gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF}
}

// quirk disables canvas antialiasing for a vendor/renderer combination.
type quirk struct {
	vendor   string
	renderer string
}

// antialiasQuirks lists drivers whose multisampled canvases misrender.
var antialiasQuirks = []quirk{
	{vendor: "Google", renderer: "ANGLE Metal Renderer"},
}

func antialiasBroken(vendor, renderer string) bool {
	for _, q := range antialiasQuirks {
		if strings.Contains(vendor, q.vendor) && strings.Contains(renderer, q.renderer) {
			return true
		}
	}
	return false
}

// probe computes the device capabilities. extensions lists the extension
// names accepted as pixel local storage support.
func probe(dev Device, format gputypes.TextureFormat, extensions []string) (Capabilities, error) {
	d, err := dev.Offscreen(1, 1)
	if err != nil {
		return Capabilities{}, fmt.Errorf("gpuctx: probe drawable: %w: %w", texbridge.ErrContextCreation, err)
	}
	if c, ok := d.(io.Closer); ok {
		defer c.Close()
	}

	gl, ok := dev.CreateContext(d, Attributes{Multisample: multisample(true), Format: format})
	if !ok {
		return Capabilities{}, fmt.Errorf("gpuctx: probe context: %w", texbridge.ErrContextCreation)
	}
	defer gl.Destroy()

	var caps Capabilities
	for _, name := range extensions {
		if gl.HasExtension(name) {
			caps.SupportsPixelLocalStorage = true
			break
		}
	}

	caps.MaxRenderTargetSize = min(
		limitOrDefault(gl.Parameter(ParamMaxRenderbufferSize)),
		limitOrDefault(gl.Parameter(ParamMaxTextureSize)),
	)

	caps.PreferAntialiasCanvas = !caps.SupportsPixelLocalStorage
	if vendor, renderer, ok := gl.DebugRendererInfo(); ok && antialiasBroken(vendor, renderer) {
		texbridge.Logger().Debug("gpuctx: canvas antialiasing disabled by driver quirk",
			"vendor", vendor, "renderer", renderer)
		caps.PreferAntialiasCanvas = false
	}

	if !caps.PreferAntialiasCanvas {
		// Multisampling is fixed at creation, so recreate without it.
		plain, ok := dev.CreateContext(d, Attributes{Multisample: multisample(false), Format: format})
		if !ok {
			return Capabilities{}, fmt.Errorf("gpuctx: probe context without multisampling: %w",
				texbridge.ErrContextCreation)
		}
		plain.Destroy()
	}
	return caps, nil
}

func limitOrDefault(v int) int {
	if v > 0 {
		return v
	}
	return int(gputypes.DefaultLimits().MaxTextureDimension2D)
}
