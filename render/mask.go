// Copyright 2026 The moodcam Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	xdraw "golang.org/x/image/draw"
)

// applyBokeh blurs the background of src behind a subject mask, simulating
// a wide aperture before the film look is applied. The mask comes from the
// capture-side segmentation model at whatever resolution it ran at; it is
// rescaled to the frame here.
func applyBokeh(src *image.RGBA, mask *image.Gray, aperture float64) *image.RGBA {
	b := src.Bounds()
	m := scaleMask(mask, b)
	if maskOpaque(m) {
		// Nothing segmented as background; blurring would be a no-op
		// composite, so skip the Gaussian entirely.
		return src
	}

	if aperture > 1 {
		aperture = 1
	}
	radius := aperture * float64(b.Dx()+b.Dy()) / 2 * 0.02
	if radius < 1.5 {
		radius = 1.5
	}
	blurred := blur.Gaussian(src, radius)

	// Composite: mask 255 keeps the sharp subject, 0 takes the blurred
	// background, in-between feathers the edge.
	out := image.NewRGBA(b)
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		bi := blurred.PixOffset(b.Min.X, b.Min.Y+y)
		oi := out.PixOffset(b.Min.X, b.Min.Y+y)
		mi := m.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			a := uint32(m.Pix[mi])
			for c := 0; c < 4; c++ {
				s := uint32(src.Pix[si+c])
				bl := uint32(blurred.Pix[bi+c])
				out.Pix[oi+c] = uint8((s*a + bl*(255-a) + 127) / 255)
			}
			si += 4
			bi += 4
			oi += 4
			mi++
		}
	}
	return out
}

// scaleMask resizes mask to bounds with bilinear filtering. Segmentation
// masks are soft-edged, so bilinear keeps the feather instead of
// introducing staircase artifacts.
func scaleMask(mask *image.Gray, bounds image.Rectangle) *image.Gray {
	if mask.Bounds().Dx() == bounds.Dx() && mask.Bounds().Dy() == bounds.Dy() {
		return mask
	}
	dst := image.NewGray(bounds)
	xdraw.BiLinear.Scale(dst, bounds, mask, mask.Bounds(), xdraw.Src, nil)
	return dst
}

func maskOpaque(m *image.Gray) bool {
	for _, v := range m.Pix {
		if v != 255 {
			return false
		}
	}
	return true
}
