package grain

import (
	"bytes"
	"math"
	"testing"
)

// TestDeterministic tests that the same (size, seed) pair reproduces the
// exact same bytes. Reproducibility is the contract that keeps exports
// stable across app sessions.
func TestDeterministic(t *testing.T) {
	a := Generate(64, 7)
	b := Generate(64, 7)
	if !bytes.Equal(a.data, b.data) {
		t.Error("same seed produced different tiles")
	}

	c := Generate(64, 8)
	if bytes.Equal(a.data, c.data) {
		t.Error("different seeds produced identical tiles")
	}
}

// TestLayerRange tests that every layer spans at least 90% of [-1,1]:
// no degenerate near-constant channel.
func TestLayerRange(t *testing.T) {
	tile := Generate(64, 1)
	names := []string{"fineA", "fineB", "clump", "macro"}
	for ch := FineA; ch <= Macro; ch++ {
		lo, hi := float32(1), float32(-1)
		for y := 0; y < tile.Size(); y++ {
			for x := 0; x < tile.Size(); x++ {
				v := tile.At(ch, x, y)
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
		}
		t.Logf("%s: range [%g, %g]", names[ch], lo, hi)
		if lo > -0.9 || hi < 0.9 {
			t.Errorf("%s layer spans [%g, %g], want at least [-0.9, 0.9]", names[ch], lo, hi)
		}
	}
}

// TestFineLayersIndependent tests that the two fine variants are
// decorrelated; the chain relies on this to animate grain by swapping
// between them.
func TestFineLayersIndependent(t *testing.T) {
	tile := Generate(64, 3)
	var dot, na, nb float64
	for y := 0; y < tile.Size(); y++ {
		for x := 0; x < tile.Size(); x++ {
			a := float64(tile.At(FineA, x, y))
			b := float64(tile.At(FineB, x, y))
			dot += a * b
			na += a * a
			nb += b * b
		}
	}
	corr := dot / math.Sqrt(na*nb)
	t.Logf("fineA/fineB correlation: %g", corr)
	if math.Abs(corr) > 0.1 {
		t.Errorf("fine layers correlate at %g, want |corr| <= 0.1", corr)
	}
}

// TestFineLayerIsHighPass tests the blue-noise property indirectly: the
// fine layer's local 5x5 means must be much smaller than its raw values,
// i.e. the low-frequency energy was removed.
func TestFineLayerIsHighPass(t *testing.T) {
	tile := Generate(128, 5)
	s := tile.Size()

	var rawEnergy, lowEnergy float64
	for y := 0; y < s; y++ {
		for x := 0; x < s; x++ {
			v := float64(tile.At(FineA, x, y))
			rawEnergy += v * v

			var sum float64
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					sum += float64(tile.At(FineA, x+dx, y+dy))
				}
			}
			m := sum / 25
			lowEnergy += m * m
		}
	}
	ratio := lowEnergy / rawEnergy
	t.Logf("low-frequency energy ratio: %g", ratio)
	if ratio > 0.15 {
		t.Errorf("fine layer keeps %g of its energy below Nyquist/5, want <= 0.15", ratio)
	}
}

// TestClumpIsBimodal tests the shaping curve: the clump layer must hold a
// larger share of its mass near the extremes than eased value noise would.
func TestClumpIsBimodal(t *testing.T) {
	tile := Generate(128, 11)
	s := tile.Size()

	extreme := 0
	total := s * s
	for y := 0; y < s; y++ {
		for x := 0; x < s; x++ {
			v := tile.At(Clump, x, y)
			if v < -0.6 || v > 0.6 {
				extreme++
			}
		}
	}
	frac := float64(extreme) / float64(total)
	t.Logf("fraction beyond ±0.6: %g", frac)
	if frac < 0.2 {
		t.Errorf("clump layer has %g of mass beyond ±0.6, want >= 0.2", frac)
	}
}

// TestTileable tests that At wraps: the neighborhoods across opposite
// edges are the same texels the generator blended against.
func TestTileable(t *testing.T) {
	tile := Generate(64, 2)
	s := tile.Size()
	for ch := FineA; ch <= Macro; ch++ {
		for i := 0; i < s; i++ {
			if tile.At(ch, -1, i) != tile.At(ch, s-1, i) {
				t.Fatalf("channel %d: x wrap mismatch at row %d", ch, i)
			}
			if tile.At(ch, i, s) != tile.At(ch, i, 0) {
				t.Fatalf("channel %d: y wrap mismatch at col %d", ch, i)
			}
		}
	}
}

// TestSizeRounding tests the size fallback and multiple-of-4 rounding.
func TestSizeRounding(t *testing.T) {
	if got := Generate(0, 1).Size(); got != DefaultTileSize {
		t.Errorf("size 0 → %d, want %d", got, DefaultTileSize)
	}
	if got := Generate(65, 1).Size(); got != 68 {
		t.Errorf("size 65 → %d, want 68", got)
	}
}

// TestTextureMatchesTile tests the float-texture unpacking.
func TestTextureMatchesTile(t *testing.T) {
	tile := Generate(32, 9)
	tex := tile.Texture()
	for y := 0; y < 32; y += 5 {
		for x := 0; x < 32; x += 5 {
			texel := tex.At(x, y)
			for ch := FineA; ch <= Macro; ch++ {
				if texel[ch] != tile.At(ch, x, y) {
					t.Fatalf("(%d,%d) ch %d: %g vs %g", x, y, ch, texel[ch], tile.At(ch, x, y))
				}
			}
		}
	}
}
