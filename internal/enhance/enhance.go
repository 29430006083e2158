// Package enhance implements the sharpen + local-contrast filter applied to
// exported crops. The transform is pure: identical input always yields
// identical output.
package enhance

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	blurSigma     = 1.2
	sharpenWeight = 1.4
	blurWeight    = 0.4

	claheTiles = 8
	claheClip  = 2.0
)

// Apply sharpens img with an unsharp mask and boosts local contrast with
// contrast-limited adaptive histogram equalization on the luminance channel.
// The result is fully opaque; any alpha in the input is discarded.
func Apply(img *image.NRGBA) *image.NRGBA {
	sharp := unsharpMask(img)
	equalizeLuminance(sharp)
	return sharp
}

// unsharpMask combines the image with a Gaussian-blurred copy as
// sharpenWeight*orig - blurWeight*blur, clamped per channel.
func unsharpMask(img *image.NRGBA) *image.NRGBA {
	blurred := imaging.Blur(img, blurSigma)
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		// PixOffset keeps this correct for sub-images whose bounds do not
		// start at the origin.
		srcRow := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		blurRow := blurred.Pix[y*blurred.Stride:]
		dstRow := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			i := x * 4
			for c := 0; c < 3; c++ {
				v := sharpenWeight*float64(srcRow[i+c]) - blurWeight*float64(blurRow[i+c])
				dstRow[i+c] = clampByte(v)
			}
			dstRow[i+3] = 0xff
		}
	}
	return out
}

// equalizeLuminance runs CLAHE over the Y channel of img in place, leaving
// chroma untouched.
func equalizeLuminance(img *image.NRGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}

	luma := make([]uint8, w*h)
	cb := make([]uint8, w*h)
	cr := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			i := x * 4
			yy, cbv, crv := color.RGBToYCbCr(row[i], row[i+1], row[i+2])
			luma[y*w+x] = yy
			cb[y*w+x] = cbv
			cr[y*w+x] = crv
		}
	}

	eq := clahe(luma, w, h)

	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			i := x * 4
			r, g, bl := color.YCbCrToRGB(eq[y*w+x], cb[y*w+x], cr[y*w+x])
			row[i], row[i+1], row[i+2] = r, g, bl
		}
	}
}

// clahe equalizes the single-channel plane with a claheTiles x claheTiles
// grid and a clip limit of claheClip times the uniform bin height. Tile
// mappings are blended bilinearly by pixel position, the standard CLAHE
// interpolation that hides tile seams.
func clahe(plane []uint8, w, h int) []uint8 {
	tilesX, tilesY := claheTiles, claheTiles
	if tilesX > w {
		tilesX = w
	}
	if tilesY > h {
		tilesY = h
	}
	if tilesX == 0 || tilesY == 0 {
		return plane
	}

	tileW := (w + tilesX - 1) / tilesX
	tileH := (h + tilesY - 1) / tilesY

	// Per-tile lookup tables.
	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := x0+tileW, y0+tileH
			if x1 > w {
				x1 = w
			}
			if y1 > h {
				y1 = h
			}
			luts[ty*tilesX+tx] = tileLUT(plane, w, x0, y0, x1, y1)
		}
	}

	out := make([]uint8, len(plane))
	for y := 0; y < h; y++ {
		// Position relative to tile centers.
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := int(fy)
		if fy < 0 {
			ty0 = -1
		}
		ty1 := ty0 + 1
		wy := fy - float64(ty0)
		ty0 = clampInt(ty0, 0, tilesY-1)
		ty1 = clampInt(ty1, 0, tilesY-1)

		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := int(fx)
			if fx < 0 {
				tx0 = -1
			}
			tx1 := tx0 + 1
			wx := fx - float64(tx0)
			tx0 = clampInt(tx0, 0, tilesX-1)
			tx1 = clampInt(tx1, 0, tilesX-1)

			v := plane[y*w+x]
			tl := float64(luts[ty0*tilesX+tx0][v])
			tr := float64(luts[ty0*tilesX+tx1][v])
			bl := float64(luts[ty1*tilesX+tx0][v])
			br := float64(luts[ty1*tilesX+tx1][v])
			top := tl + (tr-tl)*wx
			bottom := bl + (br-bl)*wx
			out[y*w+x] = clampByte(top + (bottom-top)*wy)
		}
	}
	return out
}

// tileLUT builds the clipped-histogram equalization mapping for one tile.
func tileLUT(plane []uint8, stride, x0, y0, x1, y1 int) [256]uint8 {
	var hist [256]int
	count := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[plane[y*stride+x]]++
			count++
		}
	}
	var lut [256]uint8
	if count == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	limit := int(claheClip * float64(count) / 256.0)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i, n := range hist {
		if n > limit {
			excess += n - limit
			hist[i] = limit
		}
	}
	// Redistribute the clipped mass evenly across all bins.
	perBin := excess / 256
	remainder := excess % 256
	for i := range hist {
		hist[i] += perBin
		if i < remainder {
			hist[i]++
		}
	}

	cdf := 0
	for i, n := range hist {
		cdf += n
		lut[i] = clampByte(float64(cdf) * 255.0 / float64(count))
	}
	return lut
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
