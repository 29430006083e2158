// Package export turns committed crop regions into PNG files on disk.
package export

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/example/cropstudio/internal/canvas"
	"github.com/example/cropstudio/internal/enhance"
)

// ErrNoRegions indicates an export was requested with nothing selected.
// Nothing is written and the output directory is not created.
var ErrNoRegions = errors.New("no crop zones")

// Dimension bounds for the resize option, matching the UI spinners.
const (
	MinDimension = 100
	MaxDimension = 4000
)

// DefaultOutputRoot is the directory exports land under when no override is
// configured.
const DefaultOutputRoot = "output"

// Options holds the session-wide export settings. One value applies to every
// region in a batch.
type Options struct {
	Circle  bool
	Resize  bool
	Width   int
	Height  int
	Enhance bool
}

// Artifact describes one written PNG.
type Artifact struct {
	Path   string
	Index  int
	Bounds image.Rectangle
}

// Normalize adjusts both dimensions down to the nearest even number. It is
// idempotent and never increases a value.
func Normalize(w, h int) (int, int) {
	return w - w%2, h - h%2
}

// ClampDimension forces v into the valid resize range.
func ClampDimension(v int) int {
	if v < MinDimension {
		return MinDimension
	}
	if v > MaxDimension {
		return MaxDimension
	}
	return v
}

// OutputDir returns the directory crops for stem are written into under
// outRoot, falling back to DefaultOutputRoot when outRoot is empty.
func OutputDir(outRoot, stem string) string {
	if outRoot == "" {
		outRoot = DefaultOutputRoot
	}
	return filepath.Join(outRoot, stem)
}

// All exports every region of src, in creation order, as
// outRoot/<stem>/<n>.png with n starting at 1. Existing files are
// overwritten. The call is synchronous and returns the written artifacts.
//
// Per region the steps are crop, then circle mask, then resize, then
// enhance. Enhancement drops the alpha channel while leaving the color
// channels untouched, so combining Circle with Enhance discards the mask
// transparency; the order is kept as-is deliberately and documented rather
// than silently reordered.
func All(src *image.NRGBA, regions []canvas.Region, opts Options, stem, outRoot string) ([]Artifact, error) {
	if len(regions) == 0 {
		return nil, ErrNoRegions
	}
	outDir := OutputDir(outRoot, stem)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %q: %w", outDir, err)
	}

	artifacts := make([]Artifact, 0, len(regions))
	for i, region := range regions {
		crop := Render(src, region, opts)
		path := filepath.Join(outDir, fmt.Sprintf("%d.png", i+1))
		if err := imaging.Save(crop, path); err != nil {
			return artifacts, fmt.Errorf("save %q: %w", path, err)
		}
		artifacts = append(artifacts, Artifact{Path: path, Index: i + 1, Bounds: crop.Bounds()})
	}
	return artifacts, nil
}

// Render processes a single region through the full pipeline without touching
// disk. The clipboard copy path shares this with All so both produce identical
// pixels.
func Render(src *image.NRGBA, region canvas.Region, opts Options) *image.NRGBA {
	crop := cropRegion(src, region.Rect)
	if opts.Circle {
		crop = applyEllipseMask(crop)
	}
	if opts.Resize {
		w, h := Normalize(ClampDimension(opts.Width), ClampDimension(opts.Height))
		crop = imaging.Resize(crop, w, h, imaging.Lanczos)
	}
	if opts.Enhance {
		crop = enhance.Apply(dropAlpha(crop))
	}
	return crop
}

// cropRegion copies the rectangle out of src, clamped to the source bounds.
func cropRegion(src *image.NRGBA, rect image.Rectangle) *image.NRGBA {
	return imaging.Crop(src, rect.Intersect(src.Bounds()))
}

// applyEllipseMask replaces the crop's alpha channel with an inscribed
// ellipse: opaque inside, transparent outside.
func applyEllipseMask(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rx := float64(w) / 2
	ry := float64(h) / 2
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		dy := (float64(y) + 0.5 - ry) / ry
		for x := 0; x < w; x++ {
			dx := (float64(x) + 0.5 - rx) / rx
			if dx*dx+dy*dy <= 1 {
				row[x*4+3] = 0xff
			} else {
				row[x*4+3] = 0
			}
		}
	}
	return img
}

// dropAlpha discards the alpha channel, mirroring a conversion to a
// three-channel representation before enhancement. The color channels pass
// through unchanged, so formerly transparent pixels keep their stored colors.
func dropAlpha(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		copy(dst[:b.Dx()*4], src[:b.Dx()*4])
		for x := 0; x < b.Dx(); x++ {
			dst[x*4+3] = 0xff
		}
	}
	return out
}
