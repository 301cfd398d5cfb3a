// Package grain synthesizes the procedural film-grain texture: a tileable
// square tile with four noise layers of different statistical character,
// packed one per channel.
//
// Channel layout:
//   - FineA, FineB: two independent blue-noise-like fine grain fields.
//     White noise minus its own local box blur (killing the low-frequency
//     energy), blended 70/30 with an ordered Bayer pattern to suppress the
//     residual low-frequency bias.
//   - Clump: two octaves of smoothstep-eased value noise pushed through a
//     smoothstep shaping curve, so values pile up at the extremes; the
//     aggregated silver-halide clumps of real emulsion rather than
//     uniform per-pixel noise.
//   - Macro: one octave of very-low-frequency value noise, the large-scale
//     emulsion-thickness non-uniformity.
//
// Every layer is normalized to span [-1,1] before byte quantization; raw
// octave sums are not guaranteed full range. Generation is deterministic
// for a given seed and never reads the clock; temporal grain animation is
// the consumer's job, done by offsetting sample coordinates per frame.
package grain

import (
	"context"
	"log/slog"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/moodcam/emulsion"
	"github.com/moodcam/emulsion/internal/texture"
)

// Channel indices within the packed tile.
const (
	FineA = iota
	FineB
	Clump
	Macro
	numChannels
)

// DefaultTileSize is the tile edge length used when the caller does not
// care. 256 is large enough that the tile repeat is invisible at typical
// grain scales and small enough to generate in a few milliseconds.
const DefaultTileSize = 256

// Tile is a generated grain tile: size×size texels, one byte per channel,
// each byte encoding a signed noise value ([0,255] ↔ [-1,1]). Immutable
// after generation.
type Tile struct {
	size int
	data []uint8 // 4 bytes per texel, row-major
	seed int64
}

// Generate synthesizes a tile. Non-positive sizes fall back to
// DefaultTileSize; other sizes are rounded up to a multiple of 4 so the
// Bayer component tiles cleanly.
//
// The same (size, seed) pair always produces the same bytes.
func Generate(size int, seed int64) *Tile {
	if size <= 0 {
		size = DefaultTileSize
	}
	if size%4 != 0 {
		size += 4 - size%4
	}

	rng := rand.New(rand.NewSource(seed))
	t := &Tile{
		size: size,
		data: make([]uint8, size*size*4),
		seed: seed,
	}

	layers := [numChannels][]float32{
		FineA: fineLayer(rng, size, 0),
		FineB: fineLayer(rng, size, 1),
		Clump: clumpLayer(rng, size),
		Macro: macroLayer(rng, size),
	}

	names := [numChannels]string{"fineA", "fineB", "clump", "macro"}
	for ch, layer := range layers {
		normalizeSigned(layer)
		logLayerStats(names[ch], layer)
		for i, v := range layer {
			t.data[i*4+ch] = quantize(v)
		}
	}
	return t
}

// Size returns the tile edge length in texels.
func (t *Tile) Size() int { return t.size }

// Seed returns the seed the tile was generated from.
func (t *Tile) Seed() int64 { return t.seed }

// At returns the signed noise value of one channel at (x, y), decoded back
// to [-1,1]. Coordinates wrap, matching the tileable generation.
func (t *Tile) At(ch, x, y int) float32 {
	x = wrap(x, t.size)
	y = wrap(y, t.size)
	b := t.data[(y*t.size+x)*4+ch]
	return float32(b)/127.5 - 1
}

// Texture unpacks the tile into a float texture with signed values in
// [-1,1], ready for the chain's wrap-mode sampler.
func (t *Tile) Texture() *texture.Texture {
	tex := texture.New(t.size, t.size)
	data := tex.Data()
	for i, b := range t.data {
		data[i] = float32(b)/127.5 - 1
	}
	return tex
}

// fineLayer builds one blue-noise-like field: white noise high-passed by
// subtracting a wrapped box blur, then blended with the Bayer pattern.
//
// variant selects a shear of the Bayer lookup. The white-noise components
// of the two fine layers are already independent, but a shared Bayer term
// alone correlates them at ~0.17; shearing the second lookup by the row
// index keeps the pattern's spectral character while dropping the
// cross-correlation of the deterministic term to ~0.2 of itself.
func fineLayer(rng *rand.Rand, size, variant int) []float32 {
	white := make([]float32, size*size)
	for i := range white {
		white[i] = rng.Float32()*2 - 1
	}

	blurred := boxBlurWrap(white, size, 2)

	out := make([]float32, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := y*size + x
			high := white[i] - blurred[i]
			out[i] = 0.7*high + 0.3*bayerSigned(x+variant*y, y)
		}
	}
	return out
}

// clumpLayer builds the mid-frequency clump field: two value-noise
// octaves, then a smoothstep shaping curve that compresses mid-high values
// toward a bimodal distribution.
func clumpLayer(rng *rand.Rand, size int) []float32 {
	o1 := valueNoise(rng, size, 8)
	o2 := valueNoise(rng, size, 16)

	out := make([]float32, size*size)
	for i := range out {
		n := (o1[i] + 0.5*o2[i]) / 1.5
		s := smoothstep(0.3, 0.7, n)
		// Keep 30% of the raw field so the clumps retain interior texture
		// instead of collapsing to flat blobs.
		out[i] = 0.3*n + 0.7*s
	}
	return out
}

// macroLayer builds the single-octave low-frequency field.
func macroLayer(rng *rand.Rand, size int) []float32 {
	return valueNoise(rng, size, 3)
}

// valueNoise samples a cells×cells random lattice bilinearly with
// smoothstep easing. Lattice indices wrap, so the field tiles. Output is
// in [0,1] (before normalization).
func valueNoise(rng *rand.Rand, size, cells int) []float32 {
	lattice := make([]float32, cells*cells)
	for i := range lattice {
		lattice[i] = rng.Float32()
	}
	at := func(cx, cy int) float32 {
		return lattice[wrap(cy, cells)*cells+wrap(cx, cells)]
	}

	out := make([]float32, size*size)
	scale := float32(cells) / float32(size)
	for y := 0; y < size; y++ {
		fy := float32(y) * scale
		cy := int(fy)
		ty := smoothstep(0, 1, fy-float32(cy))
		for x := 0; x < size; x++ {
			fx := float32(x) * scale
			cx := int(fx)
			tx := smoothstep(0, 1, fx-float32(cx))

			top := lerp(at(cx, cy), at(cx+1, cy), tx)
			bot := lerp(at(cx, cy+1), at(cx+1, cy+1), tx)
			out[y*size+x] = lerp(top, bot, ty)
		}
	}
	return out
}

// boxBlurWrap is a separable box blur with wrapping edges, radius r.
func boxBlurWrap(src []float32, size, r int) []float32 {
	tmp := make([]float32, len(src))
	dst := make([]float32, len(src))
	inv := 1 / float32(2*r+1)

	for y := 0; y < size; y++ {
		row := src[y*size : (y+1)*size]
		for x := 0; x < size; x++ {
			var sum float32
			for k := -r; k <= r; k++ {
				sum += row[wrap(x+k, size)]
			}
			tmp[y*size+x] = sum * inv
		}
	}
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			var sum float32
			for k := -r; k <= r; k++ {
				sum += tmp[wrap(y+k, size)*size+x]
			}
			dst[y*size+x] = sum * inv
		}
	}
	return dst
}

// bayer4 is the standard 4×4 ordered-dither matrix.
var bayer4 = [4][4]float32{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// bayerSigned maps the Bayer matrix entry at (x, y) to [-1,1].
func bayerSigned(x, y int) float32 {
	return bayer4[y&3][x&3]/7.5 - 1
}

// normalizeSigned rescales a layer in place so it spans exactly [-1,1].
// A degenerate (near-constant) layer becomes all zeros instead of
// amplifying float noise to full range.
func normalizeSigned(layer []float32) {
	lo, hi := layer[0], layer[0]
	for _, v := range layer[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span < 1e-6 {
		for i := range layer {
			layer[i] = 0
		}
		return
	}
	inv := 2 / span
	for i := range layer {
		layer[i] = (layer[i]-lo)*inv - 1
	}
}

// logLayerStats reports per-layer statistics at debug level; handy when
// calibrating grain against reference film scans.
func logLayerStats(name string, layer []float32) {
	log := emulsion.Logger()
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	f64 := make([]float64, len(layer))
	for i, v := range layer {
		f64[i] = float64(v)
	}
	mean, std := stat.MeanStdDev(f64, nil)
	log.Debug("grain layer generated", "layer", name, "mean", mean, "stddev", std)
}

func quantize(v float32) uint8 {
	b := int((v + 1) * 127.5)
	if b < 0 {
		b = 0
	} else if b > 255 {
		b = 255
	}
	return uint8(b)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
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

func lerp(a, b, t float32) float32 { return a + (b-a)*t }
