package grade

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Tunables are the presentation constants of the grading chain: tone-split
// attenuation, grain intensity, bloom/halation thresholds and tint. They
// are not laws of physics: the values below were calibrated against
// reference film renders, and a calibration run can override them from a
// YAML file without rebuilding.
type Tunables struct {
	// ToneGlobalK attenuates the global highlights/midtones/shadows
	// adjustment: color is scaled by 2^(adj·ToneGlobalK).
	ToneGlobalK float32 `yaml:"toneGlobalK"`

	// ToneChannelK attenuates the per-channel tone triples the same way.
	ToneChannelK float32 `yaml:"toneChannelK"`

	// GrainIntensity converts grain strength 1.0 into linear-light noise
	// amplitude before tone weighting.
	GrainIntensity float32 `yaml:"grainIntensity"`

	// GrainMacroWeight is how strongly the macro non-uniformity layer
	// modulates the fine grain amplitude.
	GrainMacroWeight float32 `yaml:"grainMacroWeight"`

	// BloomThreshold is the luma where the bloom mask starts rising.
	BloomThreshold float32 `yaml:"bloomThreshold"`

	// HalationThreshold is the luma where the halation mask starts rising.
	HalationThreshold float32 `yaml:"halationThreshold"`

	// HalationTint is the warm scatter color added around highlights.
	HalationTint [3]float32 `yaml:"halationTint"`

	// ClarityGain scales the signed clarity amount into high-pass gain.
	ClarityGain float32 `yaml:"clarityGain"`
}

// DefaultTunables returns the calibrated defaults.
func DefaultTunables() Tunables {
	return Tunables{
		ToneGlobalK:       0.35,
		ToneChannelK:      0.25,
		GrainIntensity:    0.15,
		GrainMacroWeight:  0.35,
		BloomThreshold:    0.6,
		HalationThreshold: 0.7,
		HalationTint:      [3]float32{1.0, 0.3, 0.1},
		ClarityGain:       1.5,
	}
}

// LoadTunables reads a YAML calibration file over the defaults, so a file
// only needs to name the constants it changes.
func LoadTunables(path string) (Tunables, error) {
	t := DefaultTunables()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("grade: read tunables: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("grade: parse tunables: %w", err)
	}
	return t, nil
}
