package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestWritePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 3))
	img.Set(2, 1, color.RGBA{R: 0xff, A: 0xff})

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := writePNG(path, img); err != nil {
		t.Fatalf("writePNG() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode written frame: %v", err)
	}
	if b := got.Bounds(); b.Dx() != 6 || b.Dy() != 3 {
		t.Errorf("bounds = %v, want 6x3", b)
	}
	if r, _, _, _ := got.At(2, 1).RGBA(); r != 0xffff {
		t.Errorf("pixel (2,1) red = %#x, want 0xffff", r)
	}
}

func TestWritePNGErrors(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if err := writePNG(filepath.Join(t.TempDir(), "missing", "frame.png"), img); err == nil {
		t.Error("writePNG() into a missing directory should fail")
	}

	// An empty image fails to encode; the file is still closed.
	path := filepath.Join(t.TempDir(), "empty.png")
	if err := writePNG(path, image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Error("writePNG() of an empty image should fail")
	}
	if err := os.Remove(path); err != nil {
		t.Errorf("remove after failed encode: %v", err)
	}
}

func TestOpenDeviceUnknownBackend(t *testing.T) {
	if _, err := openDevice("metal"); err == nil {
		t.Error("openDevice(\"metal\") should fail")
	}
	dev, err := openDevice("noop")
	if err != nil {
		t.Fatalf("openDevice(\"noop\") error = %v", err)
	}
	dev.Close()
}
