// Copyright 2026 The moodcam Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/moodcam/emulsion"
	"github.com/moodcam/emulsion/grade"
)

// ExportOptions configures a still export.
type ExportOptions struct {
	// Tunables overrides the calibration constants; nil means defaults.
	Tunables *grade.Tunables

	// GrainSeed seeds the grain tile. Exports are deterministic: the same
	// image, preset, and seed always produce the same output.
	GrainSeed int64

	// GrainTileSize is the grain tile edge in pixels; 0 means the
	// generator default.
	GrainTileSize int

	// Mask is an optional subject mask for background bokeh: 255 marks
	// the subject, 0 the background. It is scaled to the image size if it
	// differs. A nil or fully opaque mask disables the bokeh stage.
	Mask *image.Gray

	// Workers is the worker-pool size for the grading pass; 0 means
	// GOMAXPROCS.
	Workers int
}

// Export grades a still image with the high-quality path: texture grain,
// static grain placement, and two-pass bloom and halation.
//
// Export never fails the shot. On any error, including a panic in the
// pipeline, it returns the unmodified source and ok=false; the caller
// saves the original instead of losing the capture. A cancelled context
// is treated the same way.
func Export(ctx context.Context, src image.Image, ps *emulsion.ParameterSet, opts ExportOptions) (out image.Image, ok bool) {
	out = src
	defer func() {
		if r := recover(); r != nil {
			emulsion.Logger().Error("export failed, returning original", "panic", r)
			out = src
			ok = false
		}
	}()

	if err := exportCheck(ctx, src, ps); err != nil {
		emulsion.Logger().Warn("export fell back to original", "err", err)
		return src, false
	}

	rgba := toRGBA(src)
	if opts.Mask != nil && ps.Effects.BokehAperture > 0 {
		rgba = applyBokeh(rgba, opts.Mask, ps.Effects.BokehAperture)
	}

	r := New(Options{
		Workers:       opts.Workers,
		Strategy:      grade.GrainTexture,
		Tunables:      opts.Tunables,
		GrainSeed:     opts.GrainSeed,
		GrainTileSize: opts.GrainTileSize,
	})
	defer r.Close()

	cl := ps.Clone()
	cl.Clamp()
	p := r.compile(cl)

	if ctx.Err() != nil {
		emulsion.Logger().Warn("export cancelled", "err", ctx.Err())
		return src, false
	}
	return grade.ProcessTwoPass(rgba, p, 0), true
}

func exportCheck(ctx context.Context, src image.Image, ps *emulsion.ParameterSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("render: nil source image")
	}
	if b := src.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("render: empty source image %v", b)
	}
	if ps == nil {
		return fmt.Errorf("render: nil parameter set")
	}
	return ps.Validate()
}

// toRGBA returns src as a zero-origin RGBA image, copying only when the
// representation differs.
func toRGBA(src image.Image) *image.RGBA {
	if r, isRGBA := src.(*image.RGBA); isRGBA && r.Bounds().Min == (image.Point{}) {
		return r
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
