package geom

import "github.com/achilleasa/polaris-cull/types"

// A Transform maps values from space From to space To. It is the only way to
// re-tag geometry.
type Transform[From, To types.Space] struct {
	M types.Mat4
}

// Wrap a matrix as a transform between two spaces.
func NewTransform[From, To types.Space](m types.Mat4) Transform[From, To] {
	return Transform[From, To]{M: m}
}

// Identity transform within a single space.
func Identity[S types.Space]() Transform[S, S] {
	return Transform[S, S]{M: types.Ident4()}
}

// Chain two transforms: first is applied before then.
func Compose[A, B, C types.Space](first Transform[A, B], then Transform[B, C]) Transform[A, C] {
	return Transform[A, C]{M: then.M.Mul4(first.M)}
}

// Get the transform mapping To back to From.
func (t Transform[From, To]) Inverse() Transform[To, From] {
	return Transform[To, From]{M: t.M.Inv()}
}

func (t Transform[From, To]) ApplyPoint(p Point[From]) Point[To] {
	return PointAt[To](t.M.MulPoint(p.V))
}

func (t Transform[From, To]) ApplyVector(v Vector[From]) Vector[To] {
	return VectorAlong[To](t.M.MulDir(v.V))
}

func (t Transform[From, To]) ApplySegment(s Segment[From]) Segment[To] {
	return Segment[To]{A: t.ApplyPoint(s.A), B: t.ApplyPoint(s.B)}
}

// Transform an OBB. Scale is folded into the half-extents so the resulting
// axes stay unit length. The matrix must be affine and free of shear along the
// box axes, otherwise the output axes are not orthogonal.
func (t Transform[From, To]) ApplyOBB(b OBB[From]) OBB[To] {
	out := OBB[To]{Center: t.ApplyPoint(b.Center)}
	for i := 0; i < 3; i++ {
		axis := t.M.MulDir(b.Axes[i].V)
		scale := axis.Len()
		out.Axes[i] = Vector[To]{V: axis.Normalize()}
		out.HalfExtents[i] = b.HalfExtents[i] * scale
	}
	return out
}
