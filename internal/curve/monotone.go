// Package curve converts sparse user-authored control points into smooth
// monotone response curves, sampled at a fixed resolution for LUT packing.
//
// The interpolation is a monotone cubic Hermite spline using the
// Fritsch–Carlson tangent limiter: wherever the control points are
// monotonic, the sampled curve is monotonic too, no matter how aggressively
// the user varies the slope between points. A plain Catmull-Rom spline
// overshoots in exactly those cases and produces solarization-like
// artifacts in the graded image.
//
// Reference: Fritsch & Carlson, "Monotone Piecewise Cubic Interpolation",
// SIAM J. Numer. Anal. 17 (1980).
package curve

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Point is one control point in [0,1]².
type Point struct {
	X, Y float32
}

// secantEps is the threshold below which a segment's secant slope is
// treated as flat. Guards the α/β division when two control points share
// (almost) the same y; without it a 0/0 propagates NaN into every sample
// of the segment.
const secantEps = 1e-6

// Spline is a fitted monotone cubic Hermite spline. Fitting is O(n) in the
// number of control points; evaluation is O(log n) per sample. A Spline is
// immutable after construction and safe for concurrent use.
type Spline struct {
	pts []Point
	m   []float32 // tangent at each control point
}

// New fits a spline to the given control points.
//
// The points are the caller's contract: x strictly increasing, all
// coordinates in [0,1]. Violations are programming errors and panic rather
// than returning a recoverable error; validation belongs at the parameter
// boundary, not here in the hot path.
//
// Degenerate inputs are legal: zero points yields the identity ramp
// f(x)=x, a single point yields the constant function f(x)=y0.
func New(points []Point) *Spline {
	for i := 1; i < len(points); i++ {
		if points[i].X <= points[i-1].X {
			panic(fmt.Sprintf("curve: control point %d x=%g not strictly increasing", i, points[i].X))
		}
	}

	s := &Spline{pts: points}
	n := len(points)
	if n < 2 {
		return s
	}

	// Secant slope of each segment.
	d := make([]float32, n-1)
	for i := 0; i < n-1; i++ {
		d[i] = (points[i+1].Y - points[i].Y) / (points[i+1].X - points[i].X)
	}

	// Initial tangents: one-sided at the ends, average of adjacent secants
	// at interior points. A sign change between the adjacent secants means
	// the point is a local extremum the user authored; force the tangent
	// to zero so the spline does not invent an overshoot past it.
	m := make([]float32, n)
	m[0] = d[0]
	m[n-1] = d[n-2]
	for i := 1; i < n-1; i++ {
		if d[i-1]*d[i] <= 0 {
			m[i] = 0
		} else {
			m[i] = (d[i-1] + d[i]) / 2
		}
	}

	// Fritsch–Carlson limiter: flat segments force flat tangents, and any
	// segment whose normalized tangent vector (α, β) leaves the circle of
	// radius 3 gets both tangents rescaled onto it. Inside that circle the
	// cubic cannot change direction between the control points.
	for i := 0; i < n-1; i++ {
		if math32.Abs(d[i]) < secantEps {
			m[i] = 0
			m[i+1] = 0
			continue
		}
		alpha := m[i] / d[i]
		beta := m[i+1] / d[i]
		if alpha < 0 {
			m[i] = 0
			alpha = 0
		}
		if beta < 0 {
			m[i+1] = 0
			beta = 0
		}
		r2 := alpha*alpha + beta*beta
		if r2 > 9 {
			tau := 3 / math32.Sqrt(r2)
			m[i] = tau * alpha * d[i]
			m[i+1] = tau * beta * d[i]
		}
	}

	s.m = m
	return s
}

// Eval evaluates the spline at x. Outside the control-point range the
// nearest endpoint's y is returned (flat extrapolation). The result is
// clamped to [0,1].
func (s *Spline) Eval(x float32) float32 {
	n := len(s.pts)
	switch n {
	case 0:
		return clamp01(x) // identity ramp
	case 1:
		return clamp01(s.pts[0].Y)
	}

	if x <= s.pts[0].X {
		return clamp01(s.pts[0].Y)
	}
	if x >= s.pts[n-1].X {
		return clamp01(s.pts[n-1].Y)
	}

	// Binary search for the segment containing x: the largest i with
	// pts[i].X <= x.
	lo, hi := 0, n-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.pts[mid].X <= x {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	i := lo

	p0, p1 := s.pts[i], s.pts[i+1]
	h := p1.X - p0.X
	t := (x - p0.X) / h
	t2 := t * t
	t3 := t2 * t

	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	y := h00*p0.Y + h10*h*s.m[i] + h01*p1.Y + h11*h*s.m[i+1]
	return clamp01(y)
}

// Sample fits a spline to points and evaluates it at n positions
// x_i = i/(n-1). n must be at least 2; anything smaller is a programming
// error and panics.
func Sample(points []Point, n int) []float32 {
	if n < 2 {
		panic(fmt.Sprintf("curve: sample resolution %d, need >= 2", n))
	}
	s := New(points)
	out := make([]float32, n)
	inv := 1 / float32(n-1)
	for i := range out {
		out[i] = s.Eval(float32(i) * inv)
	}
	return out
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
