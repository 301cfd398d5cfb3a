package emulsion

import (
	"encoding/json"
	"fmt"
	"os"
)

// ParsePreset decodes a preset JSON document into a ParameterSet.
//
// The decoded set is validated (curve points) and clamped (scalars) before
// it is returned, so a set obtained here is always safe to hand to the
// render loop. Unknown fields are ignored for forward compatibility with
// presets exported by newer app versions.
func ParsePreset(data []byte) (*ParameterSet, error) {
	ps := NewParameterSet()
	if err := json.Unmarshal(data, ps); err != nil {
		return nil, fmt.Errorf("emulsion: parse preset: %w", err)
	}
	if err := ps.Validate(); err != nil {
		return nil, fmt.Errorf("emulsion: invalid preset: %w", err)
	}
	ps.Clamp()
	return ps, nil
}

// LoadPreset reads and parses a preset JSON file.
func LoadPreset(path string) (*ParameterSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("emulsion: read preset: %w", err)
	}
	return ParsePreset(data)
}

// SavePreset writes the set as indented preset JSON, the same document
// shape the mobile app exports for profile sharing.
func SavePreset(path string, ps *ParameterSet) error {
	data, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		return fmt.Errorf("emulsion: encode preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("emulsion: write preset: %w", err)
	}
	return nil
}
