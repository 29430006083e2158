package export

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/cropstudio/internal/canvas"
)

// testImage returns a gradient so crops from different places differ.
func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 0xff})
		}
	}
	return img
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

func TestAllNoRegions(t *testing.T) {
	root := t.TempDir()
	_, err := All(testImage(200, 200), nil, Options{}, "photo", root)
	if !errors.Is(err, ErrNoRegions) {
		t.Fatalf("err = %v, want ErrNoRegions", err)
	}
	if _, statErr := os.Stat(filepath.Join(root, "photo")); !os.IsNotExist(statErr) {
		t.Error("output directory was created despite empty selection")
	}
}

func TestAllWritesSequentialFiles(t *testing.T) {
	root := t.TempDir()
	regions := []canvas.Region{
		{Rect: image.Rect(0, 0, 50, 40)},
		{Rect: image.Rect(100, 100, 180, 170)},
	}
	artifacts, err := All(testImage(200, 200), regions, Options{}, "photo", root)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(artifacts))
	}
	for i, want := range []image.Point{{50, 40}, {80, 70}} {
		path := filepath.Join(root, "photo", []string{"1.png", "2.png"}[i])
		if artifacts[i].Path != path {
			t.Errorf("artifact %d path = %s, want %s", i, artifacts[i].Path, path)
		}
		img := decodePNG(t, path)
		if got := img.Bounds().Size(); got != want {
			t.Errorf("%s size = %v, want %v", path, got, want)
		}
	}
}

func TestAllClampsRegionToImage(t *testing.T) {
	root := t.TempDir()
	regions := []canvas.Region{{Rect: image.Rect(150, 150, 300, 260)}}
	artifacts, err := All(testImage(200, 200), regions, Options{}, "edge", root)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if got := artifacts[0].Bounds.Size(); got != image.Pt(50, 50) {
		t.Errorf("clamped crop size = %v, want (50,50)", got)
	}
}

func TestCircleMask(t *testing.T) {
	root := t.TempDir()
	regions := []canvas.Region{{Rect: image.Rect(0, 0, 100, 100)}}
	if _, err := All(testImage(200, 200), regions, Options{Circle: true}, "round", root); err != nil {
		t.Fatalf("All: %v", err)
	}
	img := decodePNG(t, filepath.Join(root, "round", "1.png"))
	if _, _, _, a := img.At(50, 50).RGBA(); a != 0xffff {
		t.Errorf("center alpha = %#x, want opaque", a)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("corner alpha = %#x, want transparent", a)
	}
}

func TestResizeNormalizesOddDimensions(t *testing.T) {
	root := t.TempDir()
	regions := []canvas.Region{{Rect: image.Rect(0, 0, 60, 60)}}
	opts := Options{Resize: true, Width: 1201, Height: 800}
	artifacts, err := All(testImage(200, 200), regions, opts, "sized", root)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if got := artifacts[0].Bounds.Size(); got != image.Pt(1200, 800) {
		t.Errorf("resized crop = %v, want (1200,800)", got)
	}
}

func TestEnhanceDropsCircleAlpha(t *testing.T) {
	root := t.TempDir()
	// Uniform light gray, so any compositing against a backdrop would be
	// visible as a darkened corner.
	src := image.NewNRGBA(image.Rect(0, 0, 200, 200))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 230, 230, 230, 0xff
	}
	regions := []canvas.Region{{Rect: image.Rect(0, 0, 160, 160)}}
	opts := Options{Circle: true, Enhance: true}
	if _, err := All(src, regions, opts, "both", root); err != nil {
		t.Fatalf("All: %v", err)
	}
	img := decodePNG(t, filepath.Join(root, "both", "1.png"))
	r, _, _, a := img.At(0, 0).RGBA()
	if a != 0xffff {
		t.Errorf("corner alpha = %#x, want opaque after enhancement", a)
	}
	// The corner sits outside the ellipse mask; dropping alpha keeps its
	// gray value instead of blacking it out.
	if r>>8 < 200 {
		t.Errorf("corner R = %d, want the source gray preserved", r>>8)
	}
}

func TestDropAlphaKeepsColors(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(1, 1, color.NRGBA{R: 200, G: 90, B: 30, A: 0})
	out := dropAlpha(src)
	got := out.NRGBAAt(1, 1)
	if got != (color.NRGBA{R: 200, G: 90, B: 30, A: 0xff}) {
		t.Errorf("dropAlpha pixel = %+v, want colors kept with opaque alpha", got)
	}
}

func TestOutputDir(t *testing.T) {
	if got, want := OutputDir("", "photo"), filepath.Join(DefaultOutputRoot, "photo"); got != want {
		t.Errorf("OutputDir default = %q, want %q", got, want)
	}
	if got, want := OutputDir("crops", "photo"), filepath.Join("crops", "photo"); got != want {
		t.Errorf("OutputDir = %q, want %q", got, want)
	}
}

func TestAllOverwrites(t *testing.T) {
	root := t.TempDir()
	src := testImage(200, 200)
	first := []canvas.Region{{Rect: image.Rect(0, 0, 50, 50)}}
	second := []canvas.Region{{Rect: image.Rect(0, 0, 120, 90)}}
	if _, err := All(src, first, Options{}, "photo", root); err != nil {
		t.Fatalf("first export: %v", err)
	}
	if _, err := All(src, second, Options{}, "photo", root); err != nil {
		t.Fatalf("second export: %v", err)
	}
	img := decodePNG(t, filepath.Join(root, "photo", "1.png"))
	if got := img.Bounds().Size(); got != image.Pt(120, 90) {
		t.Errorf("overwritten file size = %v, want (120,90)", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{1200, 1200, 1200, 1200},
		{1201, 800, 1200, 800},
		{101, 101, 100, 100},
		{100, 4000, 100, 4000},
	}
	for _, tt := range tests {
		w, h := Normalize(tt.w, tt.h)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("Normalize(%d, %d) = (%d, %d), want (%d, %d)", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
		// Idempotent.
		if w2, h2 := Normalize(w, h); w2 != w || h2 != h {
			t.Errorf("Normalize not idempotent for (%d, %d)", tt.w, tt.h)
		}
	}
}

func TestClampDimension(t *testing.T) {
	tests := []struct{ in, want int }{
		{12, 100},
		{100, 100},
		{2048, 2048},
		{4000, 4000},
		{9000, 4000},
	}
	for _, tt := range tests {
		if got := ClampDimension(tt.in); got != tt.want {
			t.Errorf("ClampDimension(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
