package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moodcam/emulsion"
	"github.com/moodcam/emulsion/internal/lut"
)

// TestCompileClampsDefensively tests that the chain does not trust
// upstream clamping: a wildly out-of-range set compiles to bounded
// kernel inputs.
func TestCompileClampsDefensively(t *testing.T) {
	ps := emulsion.NewParameterSet()
	ps.ExposureEV = 99
	ps.Saturation = -10
	ps.Grain.Strength = 5

	l := lut.Pack(256, nil, nil, nil, nil)
	p := Compile(ps, l, nil, Options{Strategy: GrainHash})

	assert.InDelta(t, 32.0, p.gain, 1e-4, "gain must come from the clamped EV of +5")
	assert.Equal(t, float32(0), p.sat)
	assert.Equal(t, float32(1), p.grainStrength)
}

// TestCompileDoesNotMutateInput tests that compiling a snapshot leaves the
// caller's set untouched; the editor owns it.
func TestCompileDoesNotMutateInput(t *testing.T) {
	ps := emulsion.NewParameterSet()
	ps.ExposureEV = 99
	l := lut.Pack(256, nil, nil, nil, nil)
	Compile(ps, l, nil, Options{})
	assert.Equal(t, 99.0, ps.ExposureEV)
}

// TestTextureStrategyRequiresTexture tests the nil-texture fallback:
// grain silently disables rather than dereferencing nil per pixel.
func TestTextureStrategyRequiresTexture(t *testing.T) {
	ps := emulsion.NewParameterSet()
	ps.Grain.Strength = 1
	l := lut.Pack(256, nil, nil, nil, nil)
	p := Compile(ps, l, nil, Options{Strategy: GrainTexture})
	assert.Equal(t, float32(0), p.grainStrength)
}

// TestGrainGateFadeIn tests the amplitude ramp above the grain skip gate:
// a strength just over the gate must compile to a near-zero amplitude,
// while ordinary strengths pass through untouched.
func TestGrainGateFadeIn(t *testing.T) {
	l := lut.Pack(256, nil, nil, nil, nil)

	ps := emulsion.NewParameterSet()
	ps.Grain.Strength = 0.0011
	p := Compile(ps, l, nil, Options{Strategy: GrainHash})
	assert.Less(t, p.grainAmp, float32(1e-4),
		"just above the gate the amplitude must still be negligible")

	ps.Grain.Strength = 0.5
	p = Compile(ps, l, nil, Options{Strategy: GrainHash})
	assert.Equal(t, float32(0.5), p.grainAmp)
}

func TestNeutralTemperatureIsIdentityBalance(t *testing.T) {
	ps := emulsion.NewParameterSet() // 6500K, no tint
	l := lut.Pack(256, nil, nil, nil, nil)
	p := Compile(ps, l, nil, Options{})
	assert.Equal(t, float32(1), p.wbR)
	assert.Equal(t, float32(1), p.wbG)
	assert.Equal(t, float32(1), p.wbB)
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "texture", GrainTexture.String())
	assert.Equal(t, "hash", GrainHash.String())
}
