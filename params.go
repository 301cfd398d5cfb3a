package emulsion

import (
	"fmt"
)

// CurvePoints is an ordered list of (x, y) control points in [0,1]².
// The x values must be strictly increasing. An empty list means "identity".
type CurvePoints [][2]float64

// Validate checks the control-point contract: every coordinate in [0,1]
// and x strictly increasing. Malformed points are a data error and are
// rejected at the boundary, never inside the per-pixel kernel.
func (p CurvePoints) Validate() error {
	prev := -1.0
	for i, pt := range p {
		x, y := pt[0], pt[1]
		if x < 0 || x > 1 || y < 0 || y > 1 {
			return fmt.Errorf("point %d (%g, %g) outside [0,1]", i, x, y)
		}
		if x <= prev {
			return fmt.Errorf("point %d x=%g not strictly increasing", i, x)
		}
		prev = x
	}
	return nil
}

// Equal reports whether two point lists are identical. Used by the LUT
// cache to decide whether a regeneration is needed.
func (p CurvePoints) Equal(q CurvePoints) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy, so an immutable snapshot cannot alias
// editor-owned point slices.
func (p CurvePoints) Clone() CurvePoints {
	if p == nil {
		return nil
	}
	q := make(CurvePoints, len(p))
	copy(q, p)
	return q
}

// ToneTriple holds a highlights/midtones/shadows adjustment, each in [-1,1].
type ToneTriple struct {
	Highlights float64 `json:"highlights"`
	Midtones   float64 `json:"midtones"`
	Shadows    float64 `json:"shadows"`
}

func (t *ToneTriple) clamp() {
	t.Highlights = clamp(t.Highlights, -1, 1)
	t.Midtones = clamp(t.Midtones, -1, 1)
	t.Shadows = clamp(t.Shadows, -1, 1)
}

// ToneChannels holds the four per-channel tone-split triples. White applies
// uniformly to all channels; Red/Green/Blue apply to their own channel only.
type ToneChannels struct {
	White ToneTriple `json:"white"`
	Red   ToneTriple `json:"red"`
	Green ToneTriple `json:"green"`
	Blue  ToneTriple `json:"blue"`
}

// CurveSet holds the four per-channel tone curves and the LUT resolution.
type CurveSet struct {
	LUTResolution int         `json:"lutResolution"`
	LumaPoints    CurvePoints `json:"lumaPoints"`
	RPoints       CurvePoints `json:"rPoints"`
	GPoints       CurvePoints `json:"gPoints"`
	BPoints       CurvePoints `json:"bPoints"`
}

// Validate checks all four point lists.
func (c *CurveSet) Validate() error {
	for _, ch := range []struct {
		name string
		pts  CurvePoints
	}{
		{"luma", c.LumaPoints},
		{"r", c.RPoints},
		{"g", c.GPoints},
		{"b", c.BPoints},
	} {
		if err := ch.pts.Validate(); err != nil {
			return fmt.Errorf("%s curve: %w", ch.name, err)
		}
	}
	return nil
}

// Equal reports whether two curve sets would produce the same LUT.
func (c *CurveSet) Equal(o *CurveSet) bool {
	return c.LUTResolution == o.LUTResolution &&
		c.LumaPoints.Equal(o.LumaPoints) &&
		c.RPoints.Equal(o.RPoints) &&
		c.GPoints.Equal(o.GPoints) &&
		c.BPoints.Equal(o.BPoints)
}

// GrainToneMode selects how grain strength responds to pixel brightness.
// Film grain is most visible in shadows and midtones; digital sensor noise
// is flat. This is a per-frame parameter read, not a state machine.
type GrainToneMode int

const (
	// GrainToneShadow weights grain heavily into the shadows.
	GrainToneShadow GrainToneMode = iota

	// GrainToneMid weights grain moderately toward darker tones.
	GrainToneMid

	// GrainToneFlat applies grain uniformly across all tones.
	GrainToneFlat
)

// String returns the tone-mode name.
func (m GrainToneMode) String() string {
	switch m {
	case GrainToneShadow:
		return "shadow"
	case GrainToneMid:
		return "mid"
	case GrainToneFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so presets serialize the
// mode as a stable string rather than a bare integer.
func (m GrainToneMode) MarshalText() ([]byte, error) {
	s := m.String()
	if s == "unknown" {
		return nil, fmt.Errorf("invalid grain tone mode %d", int(m))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *GrainToneMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "shadow":
		*m = GrainToneShadow
	case "mid":
		*m = GrainToneMid
	case "flat":
		*m = GrainToneFlat
	default:
		return fmt.Errorf("invalid grain tone mode %q", b)
	}
	return nil
}

// GrainSettings parametrizes the film-grain stage.
type GrainSettings struct {
	Strength float64       `json:"strength"` // [0,1], 0 disables grain
	Size     float64       `json:"size"`     // [0.5,2], pixel-grouping multiplier
	Clumping float64       `json:"clumping"` // [0,1], blend of the clump layer
	ToneMode GrainToneMode `json:"toneMode"`
}

// EffectSettings parametrizes the optical-effect stages.
type EffectSettings struct {
	Vignette      float64 `json:"vignette"`
	Bloom         float64 `json:"bloom"`
	Halation      float64 `json:"halation"`
	BokehAperture float64 `json:"bokehAperture"`
}

// ParameterSet is the full preset record driving the pipeline. The JSON
// field names form a stable schema shared with exported preset files; do
// not rename them.
//
// A ParameterSet handed to the render loop must be treated as immutable:
// the loop swaps whole snapshots atomically so a tick never observes a
// half-updated set. Editors mutate a private copy and publish it.
type ParameterSet struct {
	ExposureEV   float64 `json:"exposureEV"`   // EV stops, [-5,5]
	Contrast     float64 `json:"contrast"`     // multiplier around 0.5 pivot, [0,2]
	Fade         float64 `json:"fade"`         // black-lift fraction, [0,1]
	Saturation   float64 `json:"saturation"`   // [0,2], 1 = unchanged
	Vibrance     float64 `json:"vibrance"`     // [-1,1]
	Highlights   float64 `json:"highlights"`   // [-1,1]
	Midtones     float64 `json:"midtones"`     // [-1,1]
	Shadows      float64 `json:"shadows"`      // [-1,1]
	TemperatureK float64 `json:"temperatureK"` // Kelvin, [2000,12000], 6500 = neutral
	Tint         float64 `json:"tint"`         // [-1,1], green-magenta axis
	Clarity      float64 `json:"clarity"`      // [-1,1], signed local contrast

	Curves  CurveSet       `json:"curves"`
	ToneRGB ToneChannels   `json:"toneRGB"`
	Grain   GrainSettings  `json:"grain"`
	Effects EffectSettings `json:"effects"`
}

// NewParameterSet returns an identity parameter set: grading it leaves the
// image unchanged up to the sRGB round trip and output dithering.
func NewParameterSet() *ParameterSet {
	return &ParameterSet{
		Contrast:     1,
		Saturation:   1,
		TemperatureK: 6500,
		Curves: CurveSet{
			LUTResolution: DefaultLUTResolution,
			LumaPoints:    CurvePoints{{0, 0}, {1, 1}},
			RPoints:       CurvePoints{{0, 0}, {1, 1}},
			GPoints:       CurvePoints{{0, 0}, {1, 1}},
			BPoints:       CurvePoints{{0, 0}, {1, 1}},
		},
		Grain: GrainSettings{
			Size:     1,
			ToneMode: GrainToneShadow,
		},
	}
}

// DefaultLUTResolution is the sample count per curve row in the packed LUT.
const DefaultLUTResolution = 256

// Clamp forces every scalar parameter into its documented range, in place.
// The grading chain additionally clamps at its own consumption points, so
// a caller that forgets Clamp degrades gracefully rather than corrupting
// the output.
func (ps *ParameterSet) Clamp() {
	ps.ExposureEV = clamp(ps.ExposureEV, -5, 5)
	ps.Contrast = clamp(ps.Contrast, 0, 2)
	ps.Fade = clamp(ps.Fade, 0, 1)
	ps.Saturation = clamp(ps.Saturation, 0, 2)
	ps.Vibrance = clamp(ps.Vibrance, -1, 1)
	ps.Highlights = clamp(ps.Highlights, -1, 1)
	ps.Midtones = clamp(ps.Midtones, -1, 1)
	ps.Shadows = clamp(ps.Shadows, -1, 1)
	ps.TemperatureK = clamp(ps.TemperatureK, 2000, 12000)
	ps.Tint = clamp(ps.Tint, -1, 1)
	ps.Clarity = clamp(ps.Clarity, -1, 1)

	ps.ToneRGB.White.clamp()
	ps.ToneRGB.Red.clamp()
	ps.ToneRGB.Green.clamp()
	ps.ToneRGB.Blue.clamp()

	ps.Grain.Strength = clamp(ps.Grain.Strength, 0, 1)
	ps.Grain.Size = clamp(ps.Grain.Size, 0.5, 2)
	ps.Grain.Clumping = clamp(ps.Grain.Clumping, 0, 1)
	if ps.Grain.ToneMode < GrainToneShadow || ps.Grain.ToneMode > GrainToneFlat {
		ps.Grain.ToneMode = GrainToneShadow
	}

	ps.Effects.Vignette = clamp(ps.Effects.Vignette, 0, 1)
	ps.Effects.Bloom = clamp(ps.Effects.Bloom, 0, 1)
	ps.Effects.Halation = clamp(ps.Effects.Halation, 0, 1)
	ps.Effects.BokehAperture = clamp(ps.Effects.BokehAperture, 0, 1)

	if ps.Curves.LUTResolution <= 1 {
		ps.Curves.LUTResolution = DefaultLUTResolution
	}
}

// Validate checks the parts of the set that cannot be fixed by clamping
// (the curve control points). Scalars are not validated; Clamp handles them.
func (ps *ParameterSet) Validate() error {
	return ps.Curves.Validate()
}

// Clone returns a deep copy suitable for publishing as an immutable
// snapshot while the editor keeps mutating the original.
func (ps *ParameterSet) Clone() *ParameterSet {
	cp := *ps
	cp.Curves.LumaPoints = ps.Curves.LumaPoints.Clone()
	cp.Curves.RPoints = ps.Curves.RPoints.Clone()
	cp.Curves.GPoints = ps.Curves.GPoints.Clone()
	cp.Curves.BPoints = ps.Curves.BPoints.Clone()
	return &cp
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
