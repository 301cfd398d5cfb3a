// Copyright 2026 The moodcam Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
)

// Decimate downscales a frame so its longer edge is at most maxDim,
// preserving aspect ratio. The live preview grades decimated frames: the
// kernel cost scales with pixel count, so grading a 1080-wide preview
// instead of the full sensor frame is what keeps the loop real-time.
// Frames already small enough come back unchanged.
func Decimate(src *image.RGBA, maxDim int) *image.RGBA {
	if maxDim <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	var tw, th uint
	if w >= h {
		tw = uint(maxDim)
	} else {
		th = uint(maxDim)
	}
	small := resize.Resize(tw, th, src, resize.Bilinear)
	if r, isRGBA := small.(*image.RGBA); isRGBA {
		return r
	}
	sb := small.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Draw(dst, dst.Bounds(), small, sb.Min, draw.Src)
	return dst
}
