package geom

import (
	"math"

	"github.com/achilleasa/polaris-cull/types"
)

// An oriented bounding box. Axes must be unit length and mutually orthogonal;
// HalfExtents[i] is the box half-size along Axes[i]. Zero extents are allowed
// and a box with all extents zero behaves as a point.
type OBB[S types.Space] struct {
	Center      Point[S]
	Axes        [3]Vector[S]
	HalfExtents types.Vec3
}

// Create an OBB from its center, orthonormal axes and half-extents.
func NewOBB[S types.Space](center Point[S], axes [3]Vector[S], halfExtents types.Vec3) OBB[S] {
	assertFinite(halfExtents, "obb half-extents")
	return OBB[S]{Center: center, Axes: axes, HalfExtents: halfExtents}
}

// Create an axis-aligned OBB spanning min and max.
func NewAABB[S types.Space](min, max Point[S]) OBB[S] {
	return OBB[S]{
		Center:      Point[S]{V: min.V.Add(max.V).Mul(0.5)},
		Axes:        worldAxes[S](),
		HalfExtents: max.V.Sub(min.V).Mul(0.5),
	}
}

// Create an OBB whose axes are the canonical axes rotated by q.
func OBBFromRotation[S types.Space](center Point[S], q types.Quat, halfExtents types.Vec3) OBB[S] {
	var axes [3]Vector[S]
	for i, a := range q.Normalize().Axes() {
		axes[i] = Vector[S]{V: a}
	}
	return NewOBB(center, axes, halfExtents)
}

func worldAxes[S types.Space]() [3]Vector[S] {
	return [3]Vector[S]{
		{V: types.Vec3{1, 0, 0}},
		{V: types.Vec3{0, 1, 0}},
		{V: types.Vec3{0, 0, 1}},
	}
}

// Test whether p lies inside the box. The offset from the center is
// projected on each box axis and compared against the half-extent along that
// axis; points on the boundary are contained.
func (b OBB[S]) ContainsPoint(p Point[S]) bool {
	d := p.Sub(b.Center)
	for i := 0; i < 3; i++ {
		proj := d.Dot(b.Axes[i])
		if proj > b.HalfExtents[i] || proj < -b.HalfExtents[i] {
			return false
		}
	}
	return true
}

// Get the 8 box corners.
func (b OBB[S]) Corners() [8]Point[S] {
	var out [8]Point[S]
	ex := b.Axes[0].Mul(b.HalfExtents[0])
	ey := b.Axes[1].Mul(b.HalfExtents[1])
	ez := b.Axes[2].Mul(b.HalfExtents[2])
	for i := 0; i < 8; i++ {
		c := b.Center
		if i&1 == 0 {
			c = c.Add(ex.Mul(-1))
		} else {
			c = c.Add(ex)
		}
		if i&2 == 0 {
			c = c.Add(ey.Mul(-1))
		} else {
			c = c.Add(ey)
		}
		if i&4 == 0 {
			c = c.Add(ez.Mul(-1))
		} else {
			c = c.Add(ez)
		}
		out[i] = c
	}
	return out
}

// Get the projected radius of the box onto a direction.
func (b OBB[S]) supportRadius(dir Vector[S]) float32 {
	var r float32
	for i := 0; i < 3; i++ {
		r += b.HalfExtents[i] * abs32(dir.Dot(b.Axes[i]))
	}
	return r
}

// Get the min and max corners of the axis-aligned box enclosing b.
func (b OBB[S]) Bounds() (min, max Point[S]) {
	var ext types.Vec3
	for i := 0; i < 3; i++ {
		ext = ext.Add(b.Axes[i].V.Abs().Mul(b.HalfExtents[i]))
	}
	return Point[S]{V: b.Center.V.Sub(ext)}, Point[S]{V: b.Center.V.Add(ext)}
}

// Get an axis-aligned OBB that encloses all supplied boxes. An empty list
// yields the zero box.
func EnclosingOBB[S types.Space](boxes ...OBB[S]) OBB[S] {
	if len(boxes) == 0 {
		return OBB[S]{Axes: worldAxes[S]()}
	}

	nmin := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	nmax := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, b := range boxes {
		bmin, bmax := b.Bounds()
		nmin = types.MinVec3(nmin, bmin.V)
		nmax = types.MaxVec3(nmax, bmax.V)
	}
	return NewAABB(Point[S]{V: nmin}, Point[S]{V: nmax})
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
