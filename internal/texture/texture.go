// Package texture provides the small texture abstraction shared by the
// LUT and grain stages: a float32 4-channel pixel grid plus pluggable
// samplers addressing it by normalized coordinates.
//
// The grading chain only ever talks to the Sampler interface, so the CPU
// implementation here (array indexing plus optional bilinear filtering)
// can be swapped for GPU texture units without touching the chain.
package texture

import "github.com/chewxy/math32"

// Texture is a dense W×H grid of 4-channel float32 texels, stored
// row-major, 4 floats per texel. Values are not restricted to [0,1];
// the grain texture stores signed noise in [-1,1].
type Texture struct {
	width  int
	height int
	data   []float32
}

// New creates a zeroed texture with the given dimensions.
func New(width, height int) *Texture {
	return &Texture{
		width:  width,
		height: height,
		data:   make([]float32, width*height*4),
	}
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// Data returns the raw texel data (4 floats per texel, row-major).
func (t *Texture) Data() []float32 { return t.data }

// Set stores the texel at (x, y). Out-of-bounds coordinates are ignored.
func (t *Texture) Set(x, y int, v [4]float32) {
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return
	}
	i := (y*t.width + x) * 4
	t.data[i+0] = v[0]
	t.data[i+1] = v[1]
	t.data[i+2] = v[2]
	t.data[i+3] = v[3]
}

// At returns the texel at (x, y). Out-of-bounds coordinates read as zero.
func (t *Texture) At(x, y int) [4]float32 {
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return [4]float32{}
	}
	i := (y*t.width + x) * 4
	return [4]float32{t.data[i+0], t.data[i+1], t.data[i+2], t.data[i+3]}
}

// AddressMode defines how sample coordinates outside [0,1] are resolved.
type AddressMode uint8

const (
	// Clamp extends the edge texels outward. Used by the LUT, where
	// sampling past the ends must return the boundary value.
	Clamp AddressMode = iota

	// Wrap tiles the texture. Used by the grain texture, which is
	// generated tileable and sampled at scaled/offset coordinates.
	Wrap
)

// String returns the address-mode name.
func (m AddressMode) String() string {
	switch m {
	case Clamp:
		return "Clamp"
	case Wrap:
		return "Wrap"
	default:
		return "Unknown"
	}
}

// Sampler fetches a texel from a texture at normalized coordinates
// (u, v) in [0,1], where (0,0) is the top-left corner.
type Sampler interface {
	Sample(t *Texture, u, v float32) [4]float32
}

// NearestSampler selects the closest texel with no filtering. The LUT rows
// are sampled this way: each row is a 1-D table and the resolution is high
// enough that filtering buys nothing.
type NearestSampler struct {
	Mode AddressMode
}

// Sample returns the texel containing (u, v).
func (s NearestSampler) Sample(t *Texture, u, v float32) [4]float32 {
	x := resolve(int(math32.Floor(u*float32(t.width))), t.width, s.Mode)
	y := resolve(int(math32.Floor(v*float32(t.height))), t.height, s.Mode)
	return t.At(x, y)
}

// BilinearSampler interpolates linearly between the 4 neighboring texels.
// The grain texture is sampled this way so that scaled grain (size > 1)
// stays smooth instead of turning into blocks.
type BilinearSampler struct {
	Mode AddressMode
}

// Sample returns the bilinear blend of the 4 texels around (u, v).
func (s BilinearSampler) Sample(t *Texture, u, v float32) [4]float32 {
	fx := u*float32(t.width) - 0.5
	fy := v*float32(t.height) - 0.5

	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	x0r := resolve(x0, t.width, s.Mode)
	x1r := resolve(x0+1, t.width, s.Mode)
	y0r := resolve(y0, t.height, s.Mode)
	y1r := resolve(y0+1, t.height, s.Mode)

	c00 := t.At(x0r, y0r)
	c10 := t.At(x1r, y0r)
	c01 := t.At(x0r, y1r)
	c11 := t.At(x1r, y1r)

	var out [4]float32
	for i := 0; i < 4; i++ {
		top := c00[i] + (c10[i]-c00[i])*tx
		bot := c01[i] + (c11[i]-c01[i])*tx
		out[i] = top + (bot-top)*ty
	}
	return out
}

// resolve maps a texel index onto [0, n) per the address mode.
func resolve(i, n int, mode AddressMode) int {
	if mode == Wrap {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
