package lut

// Cache regenerates the packed LUT only when the curve inputs actually
// change. Consumers between an invalidating edit and the next Get see the
// previous LUT; eventual consistency is fine here, a stale curve for one
// frame is invisible.
//
// A Cache belongs to a single owner (the render tick); it is not safe for
// concurrent use. Cross-goroutine parameter handoff happens one level up,
// via the atomic parameter snapshot.
type Cache struct {
	lut *CurveLUT

	// The inputs that produced lut, deep-copied so an editor mutating
	// its own point slices cannot silently corrupt the comparison.
	resolution    int
	luma, r, g, b [][2]float64
}

// Get returns a LUT for the given curves, reusing the cached one when the
// inputs are unchanged. The returned LUT is immutable; callers may keep it
// across frames.
func (c *Cache) Get(resolution int, luma, r, g, b [][2]float64) *CurveLUT {
	if c.lut != nil && resolution == c.resolution &&
		pointsEqual(luma, c.luma) && pointsEqual(r, c.r) &&
		pointsEqual(g, c.g) && pointsEqual(b, c.b) {
		return c.lut
	}

	c.lut = Pack(resolution, luma, r, g, b)
	c.resolution = resolution
	c.luma = clonePoints(luma)
	c.r = clonePoints(r)
	c.g = clonePoints(g)
	c.b = clonePoints(b)
	return c.lut
}

// Generation-free invalidation: equality of the point lists is the dirty
// test. Lists are tiny (a handful of points), so the comparison is far
// cheaper than one spline fit.
func pointsEqual(a, b [][2]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func clonePoints(p [][2]float64) [][2]float64 {
	if p == nil {
		return nil
	}
	q := make([][2]float64, len(p))
	copy(q, p)
	return q
}
