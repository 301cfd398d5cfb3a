package grade

import (
	"github.com/chewxy/math32"

	"github.com/moodcam/emulsion"
	"github.com/moodcam/emulsion/internal/lut"
	"github.com/moodcam/emulsion/internal/srgb"
	"github.com/moodcam/emulsion/internal/texture"
)

// GrainStrategy selects how stage 13 obtains its noise.
type GrainStrategy int

const (
	// GrainTexture samples the pre-generated organic grain tile. Higher
	// quality: blue-noise spectrum, clump structure, macro non-uniformity.
	GrainTexture GrainStrategy = iota

	// GrainHash derives noise from a per-pixel integer hash. Cheaper and
	// texture-free, but spectrally white; the real-time fallback.
	GrainHash
)

// String returns the strategy name.
func (s GrainStrategy) String() string {
	switch s {
	case GrainTexture:
		return "texture"
	case GrainHash:
		return "hash"
	default:
		return "unknown"
	}
}

// toneTriple is the float32 form of a highlights/midtones/shadows triple.
type toneTriple struct {
	hi, mid, sh float32
}

// Params is the compiled, immutable per-frame snapshot the kernel reads.
// All derivable quantities (white-balance channel scales, the 2^EV gain)
// are precomputed here so the per-pixel function does no redundant work.
// Everything is defensively clamped during compilation; the kernel itself
// only clamps where a stage can push values out of range.
type Params struct {
	gain     float32 // 2^exposureEV
	wbR      float32
	wbG      float32
	wbB      float32
	contrast float32
	fade     float32
	fadeLin  float32 // fade target in linear light
	sat      float32
	vibrance float32
	clarity  float32

	toneGlobal toneTriple
	toneWhite  toneTriple
	toneRed    toneTriple
	toneGreen  toneTriple
	toneBlue   toneTriple

	grainStrength float32
	grainAmp      float32 // grainStrength with the gate fade-in applied
	grainSize     float32
	grainClump    float32
	grainMode     emulsion.GrainToneMode
	strategy      GrainStrategy
	animateGrain  bool

	vignette float32
	bloom    float32
	halation float32

	lut     *lut.CurveLUT
	grain   *texture.Texture
	sampler texture.BilinearSampler

	tun Tunables
}

// Options selects the chain variants of Compile.
type Options struct {
	// Strategy picks the grain source; the zero value is GrainTexture.
	Strategy GrainStrategy

	// AnimateGrain re-seeds the grain placement every frame. Off for
	// stills, on for the live preview.
	AnimateGrain bool

	// Tunables overrides the calibration constants; nil means defaults.
	Tunables *Tunables
}

// Compile flattens a ParameterSet into a kernel-ready snapshot.
//
// grainTex may be nil when opts.Strategy is GrainHash or grain strength is
// zero; the LUT is required (pack an identity LUT for curve-free grading).
func Compile(ps *emulsion.ParameterSet, curveLUT *lut.CurveLUT, grainTex *texture.Texture, opts Options) *Params {
	tun := DefaultTunables()
	if opts.Tunables != nil {
		tun = *opts.Tunables
	}

	// Defensive re-clamp: the chain must not trust upstream clamping.
	cl := ps.Clone()
	cl.Clamp()

	// Temperature shift: 6500K is neutral, warmer pushes red up and blue
	// down, tint rides the green channel.
	t := float32(6500-cl.TemperatureK) / 6500
	tint := float32(cl.Tint)

	p := &Params{
		gain:     math32.Exp2(float32(cl.ExposureEV)),
		wbR:      1 + 0.3*t,
		wbG:      1 - 0.05*math32.Abs(t) + 0.15*tint,
		wbB:      1 - 0.3*t,
		contrast: float32(cl.Contrast),
		fade:     float32(cl.Fade),
		fadeLin:  0,
		sat:      float32(cl.Saturation),
		vibrance: float32(cl.Vibrance),
		clarity:  float32(cl.Clarity),

		toneGlobal: toneTriple{float32(cl.Highlights), float32(cl.Midtones), float32(cl.Shadows)},
		toneWhite:  triple(cl.ToneRGB.White),
		toneRed:    triple(cl.ToneRGB.Red),
		toneGreen:  triple(cl.ToneRGB.Green),
		toneBlue:   triple(cl.ToneRGB.Blue),

		grainStrength: float32(cl.Grain.Strength),
		grainSize:     float32(cl.Grain.Size),
		grainClump:    float32(cl.Grain.Clumping),
		grainMode:     cl.Grain.ToneMode,
		strategy:      opts.Strategy,
		animateGrain:  opts.AnimateGrain,

		vignette: float32(cl.Effects.Vignette),
		bloom:    float32(cl.Effects.Bloom),
		halation: float32(cl.Effects.Halation),

		lut:     curveLUT,
		grain:   grainTex,
		sampler: texture.BilinearSampler{Mode: texture.Wrap},
		tun:     tun,
	}

	// The fade parameter is authored against the displayed image: fade 0.2
	// must lift pure black to display code 0.2, not to linear 0.2. The
	// lerp target is therefore the linearized fade value.
	p.fadeLin = srgb.ToLinear(p.fade)

	if p.strategy == GrainTexture && p.grain == nil {
		p.grainStrength = 0
	}

	// The kernel skips grain entirely at strengths below its gate. Fading
	// the amplitude in over a short ramp above the gate keeps the byte
	// output continuous as a slider crosses it; near-black pixels sit on
	// the steepest part of the encode curve, where even a gate-sized
	// amplitude step would move the output by a visible couple of codes.
	p.grainAmp = p.grainStrength * smoothstep(effectEps, 2*effectEps, p.grainStrength)
	return p
}

func triple(t emulsion.ToneTriple) toneTriple {
	return toneTriple{float32(t.Highlights), float32(t.Midtones), float32(t.Shadows)}
}
