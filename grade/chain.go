// Package grade implements the color-grading transform chain: the per-pixel
// function that turns a source sRGB pixel into a film-graded sRGB pixel.
//
// The chain is a fixed, order-dependent stage sequence: decode, white
// balance, exposure, curves via LUT, contrast, fade, saturation, vibrance,
// tone splits, grain, vignette, clarity, bloom, halation, encode, dither.
// Reordering stages changes the output; the order here is the contract.
//
// Every stage clamps instead of failing: there are no recoverable error
// states per pixel. The kernel is a pure function of the source pixel, the
// packed textures and the compiled Params snapshot, which makes it
// data-parallel across pixels and testable without any rendering context.
package grade

import (
	"github.com/chewxy/math32"

	"github.com/moodcam/emulsion"
	"github.com/moodcam/emulsion/internal/lut"
	"github.com/moodcam/emulsion/internal/srgb"
)

// effectEps is the threshold below which an optional stage is skipped.
// The skip must be continuous: an amount just above the threshold
// contributes (amount × …) ≈ 0, so there is no visible pop when a slider
// crosses it.
const effectEps = 0.001

// lutFadeLo and lutFadeHi bound the smoothstep that fades the curve stage
// in above near-black. Below lutFadeLo the LUT is bypassed entirely,
// preserving pure blacks and keeping curve quantization noise out of the
// deepest shadows.
const (
	lutFadeLo = 0.10
	lutFadeHi = 0.25
)

// GradePixel grades one pixel. sr, sg, sb are the source color in sRGB
// encoding, [0,1]. px, py are the pixel coordinates inside a w×h frame
// (used for grain placement, vignette geometry and output dithering).
// t is the frame time in seconds; stills pass 0.
//
// The returned color is sRGB-encoded and clamped to [0,1].
func (p *Params) GradePixel(sr, sg, sb float32, px, py, w, h int, t float32) (float32, float32, float32) {
	return p.gradePixel(sr, sg, sb, px, py, w, h, t, 0)
}

// gradePixel is the full kernel. hp is the precomputed clarity high-pass
// value for this pixel; callers without a neighborhood pass 0, which turns
// the clarity stage into a no-op.
func (p *Params) gradePixel(sr, sg, sb float32, px, py, w, h int, t float32, hp float32) (float32, float32, float32) {
	// 1. Decode sRGB → linear. All grading below happens in linear light.
	r := srgb.ToLinear(sr)
	g := srgb.ToLinear(sg)
	b := srgb.ToLinear(sb)

	// 2. White balance. Channel scales are precompiled from temperature
	// and tint.
	r *= p.wbR
	g *= p.wbG
	b *= p.wbB

	// 3. Exposure, 4. clamp.
	r = clamp01(r * p.gain)
	g = clamp01(g * p.gain)
	b = clamp01(b * p.gain)

	// 5. Tone curves via LUT. Near-black pixels bypass; above that the
	// curved result fades in smoothly so the curve never snaps on at the
	// threshold. The curve is applied as a displacement at the clamped
	// lookup coordinate, which keeps identity curves exactly identity.
	l := srgb.Luma(r, g, b)
	if l >= lutFadeLo {
		blend := smoothstep(lutFadeLo, lutFadeHi, l)
		r += blend * p.curveDelta(lut.RowR, r)
		g += blend * p.curveDelta(lut.RowG, g)
		b += blend * p.curveDelta(lut.RowB, b)
	}

	// 6. Contrast around the 0.5 pivot.
	r = (r-0.5)*p.contrast + 0.5
	g = (g-0.5)*p.contrast + 0.5
	b = (b-0.5)*p.contrast + 0.5

	// 7. Fade: lift blacks toward the display-referred fade level. A pure
	// lerp toward white, not toward a fog color.
	if p.fade > 0 {
		r = r*(1-p.fade) + p.fadeLin
		g = g*(1-p.fade) + p.fadeLin
		b = b*(1-p.fade) + p.fadeLin
	}

	// 8. Saturation: lerp between grayscale and the original.
	l = srgb.Luma(r, g, b)
	r = l + (r-l)*p.sat
	g = l + (g-l)*p.sat
	b = l + (b-l)*p.sat

	// 9. Vibrance: boost low-saturation pixels harder than already
	// saturated ones.
	if p.vibrance != 0 {
		satAmount := max3(r, g, b) - min3(r, g, b)
		boost := 1 + p.vibrance*(1-satAmount)
		l = srgb.Luma(r, g, b)
		r = l + (r-l)*boost
		g = l + (g-l)*boost
		b = l + (b-l)*boost
	}

	// 10. Global tone split: shadows/midtones/highlights weighted by the
	// pixel's own luma, applied as a gentle exposure shift.
	l = srgb.Luma(clamp01(r), clamp01(g), clamp01(b))
	if adj := toneAdjust(p.toneGlobal, l); adj != 0 {
		m := math32.Exp2(adj * p.tun.ToneGlobalK)
		r *= m
		g *= m
		b *= m
	}

	// 11. Per-channel tone split: each channel weighted by its own value,
	// then a luminance-wide pass with the white triple.
	k := p.tun.ToneChannelK
	if adj := toneAdjust(p.toneRed, clamp01(r)); adj != 0 {
		r *= math32.Exp2(adj * k)
	}
	if adj := toneAdjust(p.toneGreen, clamp01(g)); adj != 0 {
		g *= math32.Exp2(adj * k)
	}
	if adj := toneAdjust(p.toneBlue, clamp01(b)); adj != 0 {
		b *= math32.Exp2(adj * k)
	}
	if adj := toneAdjust(p.toneWhite, l); adj != 0 {
		m := math32.Exp2(adj * k)
		r *= m
		g *= m
		b *= m
	}

	// 12. Clamp and recompute luma for the texture stages.
	r = clamp01(r)
	g = clamp01(g)
	b = clamp01(b)
	l = srgb.Luma(r, g, b)

	// 13. Grain, added in linear light (film grain is scattered silver,
	// not a multiplicative veil).
	if p.grainStrength > effectEps {
		n := p.grainNoise(px, py, w, h, t)
		n *= p.grainAmp * p.tun.GrainIntensity * grainToneMul(p.grainMode, l)
		r += n
		g += n
		b += n
	}

	// 14. Vignette.
	if p.vignette > effectEps {
		u := (float32(px) + 0.5) / float32(w)
		v := (float32(py) + 0.5) / float32(h)
		dx := u - 0.5
		dy := v - 0.5
		dist := math32.Sqrt(dx*dx + dy*dy)
		fall := 1 - smoothstep(0.3, 0.9, dist*p.vignette*2)
		r *= fall
		g *= fall
		b *= fall
	}

	// 15. Clarity: add back the precomputed midtone high-pass. Positive
	// amounts sharpen local contrast, negative amounts soften it.
	if p.clarity != 0 && hp != 0 {
		mask := 4 * l * (1 - l) // midtones only; shadows and highlights keep their density
		c := p.clarity * p.tun.ClarityGain * mask * hp
		r += c
		g += c
		b += c
	}

	// 16. Bloom: bright areas spill into themselves.
	if p.bloom > effectEps {
		mask := smoothstep(p.tun.BloomThreshold, 1, l)
		r += r * mask * p.bloom
		g += g * mask * p.bloom
		b += b * mask * p.bloom
	}

	// 17. Halation: the warm glow of light scattering back through the
	// film base around highlights.
	if p.halation > effectEps {
		mask := smoothstep(p.tun.HalationThreshold, 1, l) * p.halation * 0.5
		r += p.tun.HalationTint[0] * mask
		g += p.tun.HalationTint[1] * mask
		b += p.tun.HalationTint[2] * mask
	}

	// 18. Clamp, encode linear → sRGB.
	r = srgb.FromLinear(clamp01(r))
	g = srgb.FromLinear(clamp01(g))
	b = srgb.FromLinear(clamp01(b))

	// 19. Ordered dither, ±1/255, to mask 8-bit banding introduced above.
	d := ditherOffset(px, py)
	return clamp01(r + d), clamp01(g + d), clamp01(b + d)
}

// curveDelta returns the displacement the packed curves apply at channel
// value c: master (luma) curve first, then the channel's own curve. The
// lookup coordinate is kept off the exact table edges.
func (p *Params) curveDelta(row int, c float32) float32 {
	x := c
	if x < 0.01 {
		x = 0.01
	} else if x > 0.99 {
		x = 0.99
	}
	y := p.lut.Lookup(lut.RowLuma, x)
	y = p.lut.Lookup(row, y)
	return y - x
}

// toneAdjust combines a highlights/midtones/shadows triple into one signed
// adjustment using the pixel weight functions: shadows fall off as
// (1-l)², highlights rise as l², midtones peak at l=0.5 with a
// Gaussian-like bump.
func toneAdjust(t toneTriple, l float32) float32 {
	if t.hi == 0 && t.mid == 0 && t.sh == 0 {
		return 0
	}
	wS := (1 - l) * (1 - l)
	wH := l * l
	x := (l - 0.5) * 2.5
	wM := math32.Exp(-(x * x))
	return t.sh*wS + t.mid*wM + t.hi*wH
}

// grainToneMul weights grain by pixel brightness per the tone-response
// mode. Film grain lives in the shadows; FLAT mimics digital sensor noise.
func grainToneMul(mode emulsion.GrainToneMode, l float32) float32 {
	switch mode {
	case emulsion.GrainToneShadow:
		return 1.5 + (1-l)*2.0
	case emulsion.GrainToneMid:
		return 1.0 + (1-l)*1.0
	default:
		return 1.0
	}
}

// grainNoise returns the signed noise sample for a pixel, in roughly
// [-1,1], per the active strategy.
func (p *Params) grainNoise(px, py, w, h int, t float32) float32 {
	if p.strategy == GrainHash {
		return hashNoise(px, py, frameIndex(t, p.animateGrain))
	}

	// Texture strategy: sample the grain tile at pixel rate divided by
	// the grain size (size 2 doubles the apparent particle size), offset
	// per frame when animating so the grain boils like projected film.
	size := p.grainSize
	if size < 0.5 {
		size = 0.5
	}
	ts := float32(p.grain.Width())
	ox, oy := frameOffset(t, p.animateGrain)
	u := (float32(px)/size + ox) / ts
	v := (float32(py)/size + oy) / ts
	s := p.sampler.Sample(p.grain, u, v)

	// Fine grain, alternating between the two decorrelated variants on
	// animated frames, shaped by the clump field and modulated by the
	// macro non-uniformity.
	fine := s[0]
	if p.animateGrain && frameIndex(t, true)&1 == 1 {
		fine = s[1]
	}
	n := fine + (s[2]-fine)*p.grainClump*0.6
	n *= 1 + p.tun.GrainMacroWeight*s[3]
	return n
}

// bayer2 is the 2×2 ordered-dither pattern for stage 19.
var bayer2 = [2][2]float32{
	{0, 2},
	{3, 1},
}

// ditherOffset returns a signed offset within ±1/255 from the pixel's
// position in the 2×2 Bayer pattern.
func ditherOffset(px, py int) float32 {
	return ((bayer2[py&1][px&1]+0.5)/4 - 0.5) * (2.0 / 255.0)
}

// frameIndex quantizes frame time to 24 fps grain steps; static mode is
// always frame 0 so stills reproduce exactly.
func frameIndex(t float32, animate bool) uint32 {
	if !animate {
		return 0
	}
	return uint32(t * 24)
}

// frameOffset derives a texel offset for animated grain from the frame
// index, hopping around the tile instead of scrolling.
func frameOffset(t float32, animate bool) (float32, float32) {
	f := frameIndex(t, animate)
	if f == 0 {
		return 0, 0
	}
	hx := hash32(f * 2)
	hy := hash32(f*2 + 1)
	return float32(hx & 0xFF), float32(hy & 0xFF)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func min3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func smoothstep(edge0, edge1, x float32) float32 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
