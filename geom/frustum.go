package geom

import (
	"fmt"

	"github.com/achilleasa/polaris-cull/types"
)

// Frustum plane indices.
const (
	PlaneNear = iota
	PlaneFar
	PlaneLeft
	PlaneRight
	PlaneTop
	PlaneBottom
	numPlanes
)

// The result of classifying a volume against a frustum.
type Containment uint8

const (
	Outside Containment = iota
	Intersecting
	Inside
)

func (c Containment) String() string {
	switch c {
	case Outside:
		return "outside"
	case Intersecting:
		return "intersecting"
	case Inside:
		return "inside"
	}
	return fmt.Sprintf("containment(%d)", uint8(c))
}

// A half-space bounded by the plane Normal·p + D = 0. Normal is unit length
// and points away from the half-space interior.
type Plane[S types.Space] struct {
	Normal Vector[S]
	D      float32
}

// Signed distance from p to the plane; positive values are outside.
func (pl Plane[S]) Distance(p Point[S]) float32 {
	return pl.Normal.V.Dot(p.V) + pl.D
}

// Build a plane from the homogeneous coefficients (a, b, c, d) of an
// inward-facing plane equation. The result is normalized and flipped so that
// the normal points outwards.
func planeFromInward[S types.Space](coeff types.Vec4) Plane[S] {
	n := coeff.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane[S]{}
	}
	return Plane[S]{
		Normal: Vector[S]{V: n.Mul(-1 / l)},
		D:      -coeff[3] / l,
	}
}

// A view frustum described by six outward-facing planes.
type Frustum[S types.Space] struct {
	Planes [numPlanes]Plane[S]
}

// Create a frustum from explicit planes (indexed by the Plane* constants).
func NewFrustum[S types.Space](planes [6]Plane[S]) Frustum[S] {
	return Frustum[S]{Planes: planes}
}

// Extract the frustum planes from a transform that maps S into clip space
// (e.g. projection * view for a world space frustum). Uses the
// Gribb/Hartmann method for OpenGL style clip volumes (-w <= x,y,z <= w).
func FrustumFromMatrix[S types.Space](toClip Transform[S, types.Clip]) Frustum[S] {
	r0 := toClip.M.Row(0)
	r1 := toClip.M.Row(1)
	r2 := toClip.M.Row(2)
	r3 := toClip.M.Row(3)

	var f Frustum[S]
	f.Planes[PlaneLeft] = planeFromInward[S](r3.Add(r0))
	f.Planes[PlaneRight] = planeFromInward[S](r3.Sub(r0))
	f.Planes[PlaneBottom] = planeFromInward[S](r3.Add(r1))
	f.Planes[PlaneTop] = planeFromInward[S](r3.Sub(r1))
	f.Planes[PlaneNear] = planeFromInward[S](r3.Add(r2))
	f.Planes[PlaneFar] = planeFromInward[S](r3.Sub(r2))
	return f
}

// Create a box-shaped frustum spanning min and max (an orthographic view
// volume looking down -forward).
func BoxFrustum[S types.Space](min, max Point[S]) Frustum[S] {
	axis := func(i int, sign float32) Vector[S] {
		var v types.Vec3
		v[i] = sign
		return Vector[S]{V: v}
	}

	var f Frustum[S]
	f.Planes[PlaneLeft] = Plane[S]{Normal: axis(0, -1), D: min.V[0]}
	f.Planes[PlaneRight] = Plane[S]{Normal: axis(0, 1), D: -max.V[0]}
	f.Planes[PlaneBottom] = Plane[S]{Normal: axis(1, -1), D: min.V[1]}
	f.Planes[PlaneTop] = Plane[S]{Normal: axis(1, 1), D: -max.V[1]}
	f.Planes[PlaneNear] = Plane[S]{Normal: axis(2, 1), D: -max.V[2]}
	f.Planes[PlaneFar] = Plane[S]{Normal: axis(2, -1), D: min.V[2]}
	return f
}

// Test whether p lies inside (or on the boundary of) the frustum.
func (f Frustum[S]) ContainsPoint(p Point[S]) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) > 0 {
			return false
		}
	}
	return true
}

// Classify an OBB against the frustum. For each plane the box is projected on
// the plane normal; if the box lies entirely on the outer side of any plane it
// is Outside, if it lies entirely on the inner side of all planes it is
// Inside, otherwise it is Intersecting. Boxes that straddle no single plane
// yet miss the frustum (near its edges) are reported as Intersecting.
func (f Frustum[S]) ClassifyOBB(b OBB[S]) Containment {
	res := Inside
	for _, pl := range f.Planes {
		dist := pl.Distance(b.Center)
		radius := b.supportRadius(pl.Normal)
		if dist-radius > 0 {
			return Outside
		}
		if dist+radius > 0 {
			res = Intersecting
		}
	}
	return res
}
