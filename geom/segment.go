package geom

import "github.com/achilleasa/polaris-cull/types"

// A line segment between two points of the same space.
type Segment[S types.Space] struct {
	A, B Point[S]
}

func NewSegment[S types.Space](a, b Point[S]) Segment[S] {
	return Segment[S]{A: a, B: b}
}

// Get the segment point at parametric position t in [0, 1].
func (s Segment[S]) At(t float32) Point[S] {
	return s.A.Lerp(s.B, t)
}

// Test whether any part of the segment lies inside the frustum. The
// parametric range [0, 1] is clipped against each plane in turn
// (Liang-Barsky); the segment intersects iff a non-empty range survives.
func (s Segment[S]) IntersectsFrustum(f Frustum[S]) bool {
	var t0, t1 float32 = 0, 1
	for _, pl := range f.Planes {
		da := pl.Distance(s.A)
		db := pl.Distance(s.B)

		switch {
		case da > 0 && db > 0:
			return false
		case da <= 0 && db <= 0:
			continue
		}

		t := da / (da - db)
		if da > 0 {
			// entering the half-space
			if t > t0 {
				t0 = t
			}
		} else if t < t1 {
			t1 = t
		}

		if t0 > t1 {
			return false
		}
	}
	return true
}
