package grade

import (
	"image"

	"github.com/anthonynsimon/bild/blur"

	"github.com/moodcam/emulsion/internal/srgb"
)

// Process grades a whole image through the single-pass chain and returns
// a new image of the same size. Rows are processed sequentially here;
// parallel execution lives in the render package, which slices the frame
// across a worker pool and calls ProcessRows per slice.
func Process(src *image.RGBA, p *Params, t float32) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	hp := p.ClarityField(src)
	ProcessRows(src, dst, p, t, hp, 0, b.Dy())
	return dst
}

// ProcessRows grades the half-open row range [y0, y1) of src into dst.
// src and dst must share bounds. hp is the clarity high-pass field from
// ClarityField, or nil when clarity is off.
//
// Each pixel is independent, so disjoint row ranges may be processed
// concurrently against the same dst.
func ProcessRows(src, dst *image.RGBA, p *Params, t float32, hp []float32, y0, y1 int) {
	b := src.Bounds()
	w := b.Dx()
	h := b.Dy()
	for y := y0; y < y1; y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := dst.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			sr := float32(src.Pix[si+0]) / 255
			sg := float32(src.Pix[si+1]) / 255
			sb := float32(src.Pix[si+2]) / 255

			var hv float32
			if hp != nil {
				hv = hp[y*w+x]
			}
			r, g, bl := p.gradePixel(sr, sg, sb, x, y, w, h, t, hv)

			dst.Pix[di+0] = uint8(r*255 + 0.5)
			dst.Pix[di+1] = uint8(g*255 + 0.5)
			dst.Pix[di+2] = uint8(bl*255 + 0.5)
			dst.Pix[di+3] = src.Pix[si+3]
			si += 4
			di += 4
		}
	}
}

// ClarityField precomputes the per-pixel local-contrast signal the clarity
// stage adds back: a cross-pattern (4-neighbor) high pass over the linear
// luma of the source. Returns nil when clarity is zero, which turns the
// stage off for the whole frame.
func (p *Params) ClarityField(src *image.RGBA) []float32 {
	if p.clarity == 0 {
		return nil
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	luma := make([]float32, w*h)
	for y := 0; y < h; y++ {
		i := src.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			r := srgb.ByteToLinear(src.Pix[i+0])
			g := srgb.ByteToLinear(src.Pix[i+1])
			bl := srgb.ByteToLinear(src.Pix[i+2])
			luma[y*w+x] = srgb.Luma(r, g, bl)
			i += 4
		}
	}

	hp := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := luma[y*w+x]
			sum := luma[y*w+clampI(x-1, w)] +
				luma[y*w+clampI(x+1, w)] +
				luma[clampI(y-1, h)*w+x] +
				luma[clampI(y+1, h)*w+x]
			hp[y*w+x] = c - sum/4
		}
	}
	return hp
}

// ProcessTwoPass grades the image with the higher-quality two-pass bloom
// and halation: instead of the in-pixel approximation (a pixel can only
// glow onto itself), the highlight energy is extracted, Gaussian-blurred,
// and composited back, so bright areas spill onto their neighbors the way
// lens flare and film-base scatter actually behave. Used by the still
// export path; the preview keeps the cheap single-pass variant.
func ProcessTwoPass(src *image.RGBA, p *Params, t float32) *image.RGBA {
	if p.bloom <= effectEps && p.halation <= effectEps {
		return Process(src, p, t)
	}

	// Pass 1: the full chain with the in-pixel glow stages disabled.
	base := *p
	base.bloom = 0
	base.halation = 0
	out := Process(src, &base, t)

	bounds := out.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Extract highlight energy in linear light.
	glow := image.NewRGBA(bounds)
	for y := 0; y < h; y++ {
		i := out.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < w; x++ {
			r := srgb.ByteToLinear(out.Pix[i+0])
			g := srgb.ByteToLinear(out.Pix[i+1])
			bl := srgb.ByteToLinear(out.Pix[i+2])
			l := srgb.Luma(r, g, bl)

			var gr, gg, gb float32
			if p.bloom > effectEps {
				m := smoothstep(p.tun.BloomThreshold, 1, l) * p.bloom
				gr += r * m
				gg += g * m
				gb += bl * m
			}
			if p.halation > effectEps {
				m := smoothstep(p.tun.HalationThreshold, 1, l) * p.halation * 0.5
				gr += p.tun.HalationTint[0] * m
				gg += p.tun.HalationTint[1] * m
				gb += p.tun.HalationTint[2] * m
			}
			glow.Pix[i+0] = uint8(clamp01(gr)*255 + 0.5)
			glow.Pix[i+1] = uint8(clamp01(gg)*255 + 0.5)
			glow.Pix[i+2] = uint8(clamp01(gb)*255 + 0.5)
			glow.Pix[i+3] = 255
			i += 4
		}
	}

	// Pass 2: spread the glow. Radius scales with frame size so the look
	// is resolution-independent.
	radius := float64(w+h) / 2 * 0.01
	if radius < 2 {
		radius = 2
	}
	blurred := blur.Gaussian(glow, radius)

	// Composite additively in linear light and re-encode.
	for y := 0; y < h; y++ {
		oi := out.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		gi := blurred.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < w; x++ {
			r := srgb.ByteToLinear(out.Pix[oi+0]) + srgb.ByteToLinear(blurred.Pix[gi+0])
			g := srgb.ByteToLinear(out.Pix[oi+1]) + srgb.ByteToLinear(blurred.Pix[gi+1])
			bl := srgb.ByteToLinear(out.Pix[oi+2]) + srgb.ByteToLinear(blurred.Pix[gi+2])
			out.Pix[oi+0] = srgb.LinearToByte(r)
			out.Pix[oi+1] = srgb.LinearToByte(g)
			out.Pix[oi+2] = srgb.LinearToByte(bl)
			oi += 4
			gi += 4
		}
	}
	return out
}

func clampI(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
