package geom

import (
	"fmt"

	"github.com/achilleasa/polaris-cull/types"
)

// A position in space S.
//
// V holds the raw components. Building a value from the raw components of
// a value in another space bypasses the space check; move values between
// spaces with a Transform.
type Point[S types.Space] struct {
	V types.Vec3
}

// A direction/displacement in space S. See Point for the rules on V.
type Vector[S types.Space] struct {
	V types.Vec3
}

// Create a point from its right, up and forward components.
func NewPoint[S types.Space](right, up, forward float32) Point[S] {
	return PointAt[S](types.Vec3{right, up, forward})
}

// Wrap a raw vector as a point in space S. This is the entry point for
// untagged input such as scene files or math library output; the caller
// asserts the components are already expressed in S.
func PointAt[S types.Space](v types.Vec3) Point[S] {
	assertFinite(v, "point")
	return Point[S]{V: v}
}

// Create a vector from its right, up and forward components.
func NewVector[S types.Space](right, up, forward float32) Vector[S] {
	return VectorAlong[S](types.Vec3{right, up, forward})
}

// Wrap a raw vector as a direction in space S. Like PointAt, the caller
// asserts the components are already expressed in S.
func VectorAlong[S types.Space](v types.Vec3) Vector[S] {
	assertFinite(v, "vector")
	return Vector[S]{V: v}
}

func (p Point[S]) Right() float32   { return p.V[0] }
func (p Point[S]) Up() float32      { return p.V[1] }
func (p Point[S]) Forward() float32 { return p.V[2] }

// Offset the point by a vector.
func (p Point[S]) Add(v Vector[S]) Point[S] {
	return Point[S]{V: p.V.Add(v.V)}
}

// Get the vector from p2 to p.
func (p Point[S]) Sub(p2 Point[S]) Vector[S] {
	return Vector[S]{V: p.V.Sub(p2.V)}
}

// Linearly interpolate between p and p2.
func (p Point[S]) Lerp(p2 Point[S], t float32) Point[S] {
	return Point[S]{V: p.V.Add(p2.V.Sub(p.V).Mul(t))}
}

func (p Point[S]) String() string {
	return fmt.Sprintf("%s(%.3f, %.3f, %.3f)", types.SpaceName[S](), p.V[0], p.V[1], p.V[2])
}

func (v Vector[S]) Right() float32   { return v.V[0] }
func (v Vector[S]) Up() float32      { return v.V[1] }
func (v Vector[S]) Forward() float32 { return v.V[2] }

func (v Vector[S]) Add(v2 Vector[S]) Vector[S] {
	return Vector[S]{V: v.V.Add(v2.V)}
}

func (v Vector[S]) Sub(v2 Vector[S]) Vector[S] {
	return Vector[S]{V: v.V.Sub(v2.V)}
}

func (v Vector[S]) Mul(s float32) Vector[S] {
	return Vector[S]{V: v.V.Mul(s)}
}

func (v Vector[S]) Dot(v2 Vector[S]) float32 {
	return v.V.Dot(v2.V)
}

func (v Vector[S]) Cross(v2 Vector[S]) Vector[S] {
	return Vector[S]{V: v.V.Cross(v2.V)}
}

func (v Vector[S]) Len() float32 {
	return v.V.Len()
}

func (v Vector[S]) Normalize() Vector[S] {
	return Vector[S]{V: v.V.Normalize()}
}

func (v Vector[S]) String() string {
	return fmt.Sprintf("%s<%.3f, %.3f, %.3f>", types.SpaceName[S](), v.V[0], v.V[1], v.V[2])
}
