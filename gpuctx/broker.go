package gpuctx

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/native"
)

// Option configures a Broker.
type Option func(*options)

type options struct {
	provider   gpucontext.DeviceProvider
	extensions []string
}

func defaultOptions() options {
	return options{extensions: []string{PixelLocalStorageExtension}}
}

// WithDeviceProvider shares an existing GPU device provider. Contexts then
// report the provider's surface format.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithExtensions replaces the extension names accepted as pixel local
// storage support.
func WithExtensions(names ...string) Option {
	return func(o *options) {
		o.extensions = append([]string(nil), names...)
	}
}

// Broker creates GPU contexts for native renderers.
//
// The capability probe runs at most once per Broker, on the first call that
// needs it, and its result (including a failure) is kept for the Broker's
// lifetime. Broker is safe for concurrent use; the contexts it returns are
// not.
type Broker struct {
	dev       Device
	renderers native.RendererAPI
	opts      options

	once sync.Once
	caps Capabilities
	err  error
}

// NewBroker returns a Broker probing dev and creating renderers via
// renderers.
func NewBroker(dev Device, renderers native.RendererAPI, opts ...Option) *Broker {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Broker{dev: dev, renderers: renderers, opts: o}
}

// Capabilities returns the device capabilities, probing on first use.
// A failed probe reports an error matching texbridge.ErrContextCreation on
// every call.
func (b *Broker) Capabilities() (Capabilities, error) {
	b.once.Do(func() {
		b.caps, b.err = probe(b.dev, b.format(), b.opts.extensions)
		if b.err != nil {
			texbridge.Logger().Warn("gpuctx: capability probe failed", "error", b.err)
			return
		}
		texbridge.Logger().Info("gpuctx: capabilities probed",
			"pls", b.caps.SupportsPixelLocalStorage,
			"antialias", b.caps.PreferAntialiasCanvas,
			"maxRenderTarget", b.caps.MaxRenderTargetSize)
	})
	return b.caps, b.err
}

// CreateContextFor creates a context on d with the cached antialiasing
// preference, makes it current and binds the native renderer of surface
// surfaceID at d's size.
func (b *Broker) CreateContextFor(d Drawable, surfaceID int64) (*Context, error) {
	caps, err := b.Capabilities()
	if err != nil {
		return nil, err
	}
	attrs := Attributes{
		Multisample: multisample(caps.PreferAntialiasCanvas),
		Format:      b.format(),
	}
	gl, ok := b.dev.CreateContext(d, attrs)
	if !ok {
		return nil, fmt.Errorf("gpuctx: create context: %w", texbridge.ErrContextCreation)
	}
	if err := gl.MakeCurrent(); err != nil {
		gl.Destroy()
		return nil, fmt.Errorf("gpuctx: make current: %w: %w", texbridge.ErrContextCreation, err)
	}

	w, h := d.Size()
	r, err := native.NewRenderer(b.renderers, surfaceID, d, w, h)
	if err != nil {
		gl.Destroy()
		return nil, err
	}
	return &Context{
		gl:       gl,
		drawable: d,
		renderer: r,
		attrs:    attrs,
		caps:     caps,
		width:    w,
		height:   h,
	}, nil
}

func (b *Broker) format() gputypes.TextureFormat {
	if b.opts.provider != nil {
		return b.opts.provider.SurfaceFormat()
	}
	return gputypes.TextureFormatRGBA8Unorm
}
