package curve

import (
	"math"
	"math/rand"
	"sort"
	"testing"
)

// TestIdentityNoPoints tests that the empty point list yields f(x)=x.
func TestIdentityNoPoints(t *testing.T) {
	out := Sample(nil, 256)
	for i, v := range out {
		want := float32(i) / 255.0
		if math.Abs(float64(v-want)) > 1e-6 {
			t.Fatalf("sample %d = %g, want %g", i, v, want)
		}
	}
}

// TestIdentityEndpoints tests that the pinned [[0,0],[1,1]] curve is the
// identity ramp within float tolerance.
func TestIdentityEndpoints(t *testing.T) {
	out := Sample([]Point{{0, 0}, {1, 1}}, 256)
	maxErr := float64(0)
	for i, v := range out {
		want := float64(i) / 255.0
		diff := math.Abs(float64(v) - want)
		if diff > maxErr {
			maxErr = diff
		}
	}
	t.Logf("max identity error: %g", maxErr)
	if maxErr > 1e-5 {
		t.Errorf("identity curve deviates by %g", maxErr)
	}
}

// TestSinglePointConstant tests the one-point degenerate case.
func TestSinglePointConstant(t *testing.T) {
	out := Sample([]Point{{0.5, 0.3}}, 64)
	for i, v := range out {
		if v != 0.3 {
			t.Fatalf("sample %d = %g, want constant 0.3", i, v)
		}
	}
}

// TestFlatExtrapolation tests that evaluation outside the point range
// clamps to the nearest endpoint's y exactly.
func TestFlatExtrapolation(t *testing.T) {
	s := New([]Point{{0.25, 0.4}, {0.75, 0.6}})
	if got := s.Eval(0.0); got != 0.4 {
		t.Errorf("Eval(0) = %g, want 0.4", got)
	}
	if got := s.Eval(0.1); got != 0.4 {
		t.Errorf("Eval(0.1) = %g, want 0.4", got)
	}
	if got := s.Eval(1.0); got != 0.6 {
		t.Errorf("Eval(1) = %g, want 0.6", got)
	}
}

// TestMonotonicityRandom is the property test: for randomized monotone
// control-point sets the full sampled curve must be non-decreasing.
func TestMonotonicityRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(8)
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = rng.Float64()
		}
		sort.Float64s(xs)
		// Reject coincident x (would violate the strictly-increasing contract).
		ok := true
		for i := 1; i < n; i++ {
			if xs[i]-xs[i-1] < 1e-4 {
				ok = false
			}
		}
		if !ok {
			continue
		}

		ys := make([]float64, n)
		for i := range ys {
			ys[i] = rng.Float64()
		}
		sort.Float64s(ys) // non-decreasing y: the monotone case

		pts := make([]Point, n)
		for i := range pts {
			pts[i] = Point{float32(xs[i]), float32(ys[i])}
		}

		out := Sample(pts, 257)
		for i := 1; i < len(out); i++ {
			if out[i] < out[i-1]-1e-6 {
				t.Fatalf("trial %d: sample %d decreases: %g -> %g (points %v)",
					trial, i, out[i-1], out[i], pts)
			}
		}
	}
}

// TestNoOvershoot tests that a steep slope change cannot push the curve
// past the control points' range.
func TestNoOvershoot(t *testing.T) {
	pts := []Point{{0, 0}, {0.1, 0.05}, {0.2, 0.9}, {1, 1}}
	out := Sample(pts, 512)
	for i, v := range out {
		if v < 0 || v > 1 {
			t.Fatalf("sample %d = %g escapes [0,1]", i, v)
		}
	}
}

// TestFlatSegmentNoNaN tests the near-zero-secant guard: two points with
// identical y must produce a flat segment, never NaN.
func TestFlatSegmentNoNaN(t *testing.T) {
	pts := []Point{{0, 0.5}, {0.5, 0.5}, {1, 1}}
	out := Sample(pts, 128)
	for i, v := range out {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("sample %d is %g", i, v)
		}
	}
	// The flat region must stay flat.
	s := New(pts)
	if got := s.Eval(0.25); got != 0.5 {
		t.Errorf("Eval(0.25) = %g, want 0.5", got)
	}
}

// TestBadInputPanics tests that contract violations fail fast.
func TestBadInputPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("non-increasing x did not panic")
		}
	}()
	New([]Point{{0.5, 0}, {0.5, 1}})
}

func TestBadResolutionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("resolution 1 did not panic")
		}
	}()
	Sample([]Point{{0, 0}, {1, 1}}, 1)
}
