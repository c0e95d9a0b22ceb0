// Command texbridge renders a line of text through the full surface and
// native result pipeline and writes the presented frame to a PNG file.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan"
	"github.com/xlab/closer"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/texbridge"
	"github.com/gogpu/texbridge/decode"
	"github.com/gogpu/texbridge/gpuctx"
	"github.com/gogpu/texbridge/gpuctx/haldevice"
	"github.com/gogpu/texbridge/host"
	"github.com/gogpu/texbridge/native"
	"github.com/gogpu/texbridge/native/softrender"
	"github.com/gogpu/texbridge/textsvc"
	"github.com/gogpu/texbridge/texture"
	"github.com/gogpu/texbridge/texture/memregistry"
)

type config struct {
	width, height int
	text          string
	size          float64
	output        string
	backend       string
}

func main() {
	var cfg config
	flag.IntVar(&cfg.width, "width", 480, "surface width")
	flag.IntVar(&cfg.height, "height", 120, "surface height")
	flag.StringVar(&cfg.text, "text", "Hello, texbridge", "text to render")
	flag.Float64Var(&cfg.size, "size", 40, "font size in pixels per em")
	flag.StringVar(&cfg.output, "output", "texbridge.png", "output file")
	flag.StringVar(&cfg.backend, "backend", "noop", "GPU backend: noop or vulkan")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	texbridge.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	closer.Checked(func() error { return run(cfg) }, true)
}

func run(cfg config) error {
	renderers := softrender.New()
	dev, err := openDevice(cfg.backend)
	if err != nil {
		return err
	}
	closer.Bind(dev.Close)

	broker := gpuctx.NewBroker(dev, renderers)
	caps, err := broker.Capabilities()
	if err != nil {
		return err
	}
	log.Printf("%s: pixel local storage=%v antialias=%v max target=%d",
		dev.AdapterName(), caps.SupportsPixelLocalStorage, caps.PreferAntialiasCanvas, caps.MaxRenderTargetSize)

	mgr := texture.NewManager(memregistry.New(), broker)
	closer.Bind(mgr.Close)
	bridge := host.NewBridge(mgr)

	reply := bridge.CreateSurface(host.CreateRequest{Width: &cfg.width, Height: &cfg.height})
	if !reply.OK() {
		return reply.Err
	}
	id := reply.SurfaceID

	svc := textsvc.New(native.NewHeap(64 << 10))
	font, err := svc.LoadFont(goregular.TTF)
	if err != nil {
		return err
	}
	tags, err := decode.ReadFontFeatures(svc, mustFeatures(svc, font), svc.DeleteFontFeatures)
	if err != nil {
		return err
	}
	log.Printf("font features: %v", tags)

	var handle native.Handle
	drawn, err := mgr.Render(id, func(h native.Handle) error {
		handle = h
		if err := renderers.Clear(h, color.White); err != nil {
			return err
		}
		return drawText(svc, renderers, h, font, cfg)
	})
	if err != nil {
		return err
	}
	if !drawn {
		return fmt.Errorf("surface %d has no live renderer", id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := renderers.Flush(ctx, handle); err != nil {
		return err
	}
	img, err := renderers.Snapshot(handle)
	if err != nil {
		return err
	}

	if err := writePNG(cfg.output, img); err != nil {
		return err
	}
	log.Printf("frame saved to %s (%dx%d)", cfg.output, cfg.width, cfg.height)
	return nil
}

// writePNG encodes img to path. A failed close is reported: the frame may
// not have reached the disk.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// openDevice opens the HAL device of the named backend.
func openDevice(backend string) (*haldevice.Device, error) {
	switch backend {
	case "noop":
		return haldevice.New(&noop.API{})
	case "vulkan":
		return haldevice.Open(gputypes.BackendVulkan)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func mustFeatures(svc *textsvc.Service, font native.Handle) uint32 {
	ptr, err := svc.FontFeatures(font)
	if err != nil {
		log.Printf("font features: %v", err)
		return 0
	}
	return ptr
}

// drawText shapes cfg.text, breaks it to the surface width and fills every
// glyph outline.
func drawText(svc *textsvc.Service, renderers *softrender.Renderer, h native.Handle, font native.Handle, cfg config) error {
	size := float32(cfg.size)
	shapePtr, err := svc.ShapeText(font, cfg.text, size, textsvc.DirectionAuto)
	if err != nil {
		return err
	}
	defer svc.DeleteShapeResult(shapePtr)

	linesPtr, err := svc.BreakLines(shapePtr, float32(cfg.width)-16, textsvc.AlignCenter, textsvc.WrapOn)
	if err != nil {
		return err
	}
	defer svc.DeleteLineBreaks(linesPtr)

	res, err := decode.ReadShapeResult(svc, shapePtr)
	if err != nil {
		return err
	}
	shape, err := textsvc.ReadShape(res)
	if err != nil {
		return err
	}
	lb, err := decode.ReadLineBreaks(svc, linesPtr)
	if err != nil {
		return err
	}
	lines, err := textsvc.ReadLines(lb)
	if err != nil {
		return err
	}
	metrics, err := svc.FontMetrics(font, size)
	if err != nil {
		return err
	}

	ink := color.RGBA{R: 0x20, G: 0x30, B: 0x60, A: 0xff}
	baseline := 8 + metrics.Ascent
	for _, line := range lines.Lines {
		x := 8 + line.X
		for _, g := range shape.Glyphs[line.Start:line.End] {
			if err := drawGlyph(svc, renderers, h, font, g, size, x+g.XOffset, baseline-g.YOffset, ink); err != nil {
				return err
			}
			x += g.Advance
		}
		baseline += metrics.Ascent + metrics.Descent
	}
	return nil
}

func drawGlyph(svc *textsvc.Service, renderers *softrender.Renderer, h, font native.Handle,
	g textsvc.ShapedGlyph, size, x, y float32, ink color.Color) error {
	hdr, err := svc.MakeGlyphPath(font, g.Glyph, size)
	if err != nil {
		return err
	}
	defer svc.DeleteGlyphPath(hdr.RawPath)
	if hdr.VerbCount == 0 {
		return nil
	}
	path, err := decode.ReadGlyphPath(svc, hdr)
	if err != nil {
		return err
	}
	return renderers.DrawGlyph(h, path, mgl32.Translate2D(x, y), ink)
}
