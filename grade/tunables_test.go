package grade

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTunablesPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"toneGlobalK: 0.5\nhalationTint: [1.0, 0.4, 0.2]\n"), 0o644))

	tun, err := LoadTunables(path)
	require.NoError(t, err)

	// Named constants change, everything else keeps its default.
	assert.Equal(t, float32(0.5), tun.ToneGlobalK)
	assert.Equal(t, [3]float32{1.0, 0.4, 0.2}, tun.HalationTint)
	def := DefaultTunables()
	assert.Equal(t, def.ToneChannelK, tun.ToneChannelK)
	assert.Equal(t, def.GrainIntensity, tun.GrainIntensity)
	assert.Equal(t, def.BloomThreshold, tun.BloomThreshold)
}

func TestLoadTunablesMissingFile(t *testing.T) {
	tun, err := LoadTunables(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	// The defaults still come back usable.
	assert.Equal(t, DefaultTunables(), tun)
}

func TestLoadTunablesBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("toneGlobalK: [not a number"), 0o644))
	_, err := LoadTunables(path)
	assert.Error(t, err)
}
