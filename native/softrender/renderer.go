// Package softrender is a reference native renderer that draws with the
// gogpu/gg software rasterizer.
//
// Every renderer handle owns a gg.Context it draws into and a swapchain of
// frames. Flush copies the drawn frame into a free swapchain image and
// presents it; hosts read the presented frame with Snapshot.
package softrender

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/decode"
	"github.com/gogpu/texbridge/native"
	"github.com/gogpu/texbridge/texture"
)

// DefaultSwapchainLength is the number of frames per renderer: one
// presenting and the rest free for rendering.
const DefaultSwapchainLength = 4

// Option configures a Renderer.
type Option func(*Renderer)

// WithSwapchainLength sets the number of frames per renderer. Values below
// 2 are raised to 2.
func WithSwapchainLength(n int) Option {
	return func(r *Renderer) { r.length = max(n, 2) }
}

// Renderer implements native.RendererAPI.
type Renderer struct {
	targets *native.Table[*target]
	length  int
}

type target struct {
	mu        sync.Mutex
	surfaceID int64
	dc        *gg.Context
	chain     *texture.Swapchain[*image.RGBA]
}

var _ native.RendererAPI = (*Renderer)(nil)

// New returns an empty Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		targets: native.NewTable[*target](),
		length:  DefaultSwapchainLength,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Len returns the number of live renderer handles.
func (r *Renderer) Len() int { return r.targets.Len() }

// CreateRenderer implements native.RendererAPI. The drawable is not used:
// frames are kept in memory.
func (r *Renderer) CreateRenderer(surfaceID int64, _ any, width, height int) (native.Handle, error) {
	if width <= 0 || height <= 0 {
		return native.Null, fmt.Errorf("softrender: renderer %dx%d: %w", width, height, texbridge.ErrInvalidArgument)
	}
	t := &target{
		surfaceID: surfaceID,
		dc:        gg.NewContext(width, height),
		chain:     r.newChain(width, height),
	}
	h := r.targets.Register(t)
	texbridge.Logger().Debug("softrender: renderer created", "surface", surfaceID, "handle", h, "width", width, "height", height)
	return h, nil
}

// DestroyRenderer implements native.RendererAPI.
func (r *Renderer) DestroyRenderer(h native.Handle) {
	t, ok := r.targets.Unregister(h)
	if !ok {
		texbridge.Logger().Warn("softrender: destroy of unknown renderer", "handle", h)
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chain.Close()
	_ = t.dc.Close()
	texbridge.Logger().Debug("softrender: renderer destroyed", "surface", t.surfaceID, "handle", h)
}

// ResizeRenderer implements native.RendererAPI. The frame contents are
// discarded.
func (r *Renderer) ResizeRenderer(h native.Handle, width, height int) error {
	t, err := r.target(h)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.dc.Resize(width, height); err != nil {
		return fmt.Errorf("softrender: resize %v: %w: %w", h, texbridge.ErrInvalidArgument, err)
	}
	t.chain.Close()
	t.chain = r.newChain(width, height)
	return nil
}

// Clear fills the frame of h with col.
func (r *Renderer) Clear(h native.Handle, col color.Color) error {
	t, err := r.target(h)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dc.ClearWithColor(gg.FromColor(col))
	return nil
}

// DrawGlyph fills a decoded glyph path with col after transforming its
// points by m.
func (r *Renderer) DrawGlyph(h native.Handle, path decode.GlyphPath, m mgl32.Mat3, col color.Color) error {
	t, err := r.target(h)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	dc := t.dc
	dc.ClearPath()
	err = path.Walk(func(v decode.Verb, pts []mgl32.Vec2) error {
		p := make([]mgl32.Vec2, len(pts))
		for i, pt := range pts {
			p[i] = m.Mul3x1(pt.Vec3(1)).Vec2()
		}
		switch v {
		case decode.VerbMove:
			dc.MoveTo(float64(p[0].X()), float64(p[0].Y()))
		case decode.VerbLine:
			dc.LineTo(float64(p[0].X()), float64(p[0].Y()))
		case decode.VerbQuad:
			dc.QuadraticTo(float64(p[0].X()), float64(p[0].Y()), float64(p[1].X()), float64(p[1].Y()))
		case decode.VerbCubic:
			dc.CubicTo(float64(p[0].X()), float64(p[0].Y()),
				float64(p[1].X()), float64(p[1].Y()),
				float64(p[2].X()), float64(p[2].Y()))
		case decode.VerbClose:
			dc.ClosePath()
		default:
			return fmt.Errorf("softrender: verb %v: %w", v, texbridge.ErrInvalidArgument)
		}
		return nil
	})
	if err != nil {
		dc.ClearPath()
		return err
	}
	dc.SetFillRule(gg.FillRuleNonZero)
	dc.SetColor(col)
	return dc.Fill()
}

// Flush presents the drawn frame of h. It blocks while every render frame
// is in use.
func (r *Renderer) Flush(ctx context.Context, h native.Handle) error {
	t, err := r.target(h)
	if err != nil {
		return err
	}
	t.mu.Lock()
	chain := t.chain
	t.mu.Unlock()

	frame, err := chain.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("softrender: flush %v: %w", h, err)
	}
	t.mu.Lock()
	_ = t.dc.FlushGPU()
	src := t.dc.Image()
	t.mu.Unlock()
	if frame.Bounds() != src.Bounds() {
		// resized while acquiring; the frame belongs to the old chain
		chain.Release(frame)
		return nil
	}
	draw.Draw(frame, frame.Bounds(), src, src.Bounds().Min, draw.Src)
	chain.Present(frame)
	return nil
}

// Snapshot returns a copy of the presented frame of h.
func (r *Renderer) Snapshot(h native.Handle) (*image.RGBA, error) {
	t, err := r.target(h)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	chain := t.chain
	t.mu.Unlock()

	var out *image.RGBA
	chain.Presenting(func(frame *image.RGBA) {
		out = image.NewRGBA(frame.Bounds())
		copy(out.Pix, frame.Pix)
	})
	return out, nil
}

func (r *Renderer) target(h native.Handle) (*target, error) {
	t, ok := r.targets.Lookup(h)
	if !ok {
		return nil, fmt.Errorf("softrender: renderer %v: %w", h, texbridge.ErrNotFound)
	}
	return t, nil
}

func (r *Renderer) newChain(width, height int) *texture.Swapchain[*image.RGBA] {
	frames := make([]*image.RGBA, r.length)
	for i := range frames {
		frames[i] = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	return texture.NewSwapchain(frames[0], frames[1:]...)
}
