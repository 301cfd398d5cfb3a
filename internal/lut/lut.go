// Package lut packs the four per-channel tone curves into a single
// texture-shaped lookup table, and caches the result so the O(n) spline
// fit never runs on a frame whose curves did not change.
package lut

import (
	"github.com/moodcam/emulsion/internal/curve"
	"github.com/moodcam/emulsion/internal/texture"
)

// Row indices in the packed LUT. The luma (master) curve lives in the
// fourth row, the slot a GPU layout would carry in the alpha channel.
// Packer and consumer must agree on this layout; nothing else depends
// on it.
const (
	RowR = iota
	RowG
	RowB
	RowLuma
	numRows
)

// DefaultResolution is the sample count per curve row.
const DefaultResolution = 256

// CurveLUT is a packed, immutable lookup table: numRows stacked rows of
// `resolution` float32 samples, one row per channel curve. Safe for
// concurrent reads.
type CurveLUT struct {
	resolution int
	tex        *texture.Texture
	rows       [numRows][]float32
}

// Pack fits all four curves and packs them into a LUT. Each point list
// uses the (x, y) in [0,1]² convention of the curve package; nil or empty
// lists produce an identity row. Resolution values below 2 fall back to
// DefaultResolution.
func Pack(resolution int, luma, r, g, b [][2]float64) *CurveLUT {
	if resolution < 2 {
		resolution = DefaultResolution
	}

	l := &CurveLUT{
		resolution: resolution,
		tex:        texture.New(resolution, numRows),
	}
	l.rows[RowR] = curve.Sample(toPoints(r), resolution)
	l.rows[RowG] = curve.Sample(toPoints(g), resolution)
	l.rows[RowB] = curve.Sample(toPoints(b), resolution)
	l.rows[RowLuma] = curve.Sample(toPoints(luma), resolution)

	for row := 0; row < numRows; row++ {
		for x := 0; x < resolution; x++ {
			var texel [4]float32
			texel[row%4] = l.rows[row][x]
			l.tex.Set(x, row, texel)
		}
	}
	return l
}

// Resolution returns the sample count per row.
func (l *CurveLUT) Resolution() int { return l.resolution }

// Texture returns the LUT as a texture, for sampler-based consumers.
func (l *CurveLUT) Texture() *texture.Texture { return l.tex }

// Lookup evaluates one channel's curve at x, interpolating linearly
// between adjacent samples, the CPU equivalent of a linear-filtered 1-D
// texture fetch. x is clamped to [0,1]; row must be one of the Row
// constants.
func (l *CurveLUT) Lookup(row int, x float32) float32 {
	if x < 0 {
		x = 0
	} else if x > 1 {
		x = 1
	}
	f := x * float32(l.resolution-1)
	i := int(f)
	if i >= l.resolution-1 {
		return l.rows[row][l.resolution-1]
	}
	t := f - float32(i)
	samples := l.rows[row]
	return samples[i] + (samples[i+1]-samples[i])*t
}

func toPoints(pts [][2]float64) []curve.Point {
	if len(pts) == 0 {
		return nil
	}
	out := make([]curve.Point, len(pts))
	for i, p := range pts {
		out[i] = curve.Point{X: float32(p[0]), Y: float32(p[1])}
	}
	return out
}
