package geom

import (
	"math"
	"math/rand"
	"testing"

	"github.com/achilleasa/polaris-cull/types"
	"github.com/stretchr/testify/require"
)

func unitBox(x, y, z float32) OBB[types.World] {
	return NewAABB(NewPoint[types.World](x-1, y-1, z-1), NewPoint[types.World](x+1, y+1, z+1))
}

func cameraFrustum() Frustum[types.Camera] {
	proj := NewTransform[types.Camera, types.Clip](types.Perspective4(90, 1, 1, 100))
	return FrustumFromMatrix(proj)
}

func TestOBBContainsPoint(t *testing.T) {
	rotated := OBBFromRotation(
		NewPoint[types.World](0, 0, 0),
		types.QuatFromAxisAngle(types.XYZ(0, 0, 1), math.Pi/4),
		types.XYZ(2, 1, 1),
	)

	type spec struct {
		box OBB[types.World]
		pt  Point[types.World]
		exp bool
	}
	specs := []spec{
		{unitBox(0, 0, 0), NewPoint[types.World](0, 0, 0), true},
		{unitBox(0, 0, 0), NewPoint[types.World](0.5, -0.5, 0.99), true},
		// boundary points are contained
		{unitBox(0, 0, 0), NewPoint[types.World](1, 1, 1), true},
		{unitBox(0, 0, 0), NewPoint[types.World](1.01, 0, 0), false},
		{unitBox(10, 0, 0), NewPoint[types.World](0, 0, 0), false},
		// local X axis points along (1,1,0)/sqrt(2)
		{rotated, NewPoint[types.World](1.2, 1.2, 0), true},
		{rotated, NewPoint[types.World](1.9, 0, 0), false},
		{rotated, NewPoint[types.World](-1.2, -1.2, 0.5), true},
		// degenerate boxes behave as points
		{NewAABB(NewPoint[types.World](3, 3, 3), NewPoint[types.World](3, 3, 3)), NewPoint[types.World](3, 3, 3), true},
		{NewAABB(NewPoint[types.World](3, 3, 3), NewPoint[types.World](3, 3, 3)), NewPoint[types.World](3, 3, 3.1), false},
	}

	for index, s := range specs {
		require.Equal(t, s.exp, s.box.ContainsPoint(s.pt), "spec %d", index)
	}
}

func TestOBBContainsPointMatchesProjection(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		box := randomOBB(rng)
		pt := NewPoint[types.World](rng.Float32()*8-4, rng.Float32()*8-4, rng.Float32()*8-4)

		d := pt.Sub(box.Center)
		exp := true
		for axis := 0; axis < 3; axis++ {
			if abs32(d.Dot(box.Axes[axis])) > box.HalfExtents[axis] {
				exp = false
			}
		}
		require.Equal(t, exp, box.ContainsPoint(pt))
	}
}

func TestOBBBoundsAndCorners(t *testing.T) {
	box := OBBFromRotation(
		NewPoint[types.World](5, 0, 0),
		types.QuatFromAxisAngle(types.XYZ(0, 1, 0), math.Pi/2),
		types.XYZ(3, 1, 1),
	)

	bmin, bmax := box.Bounds()
	require.InDelta(t, 4, bmin.V[0], 1e-4)
	require.InDelta(t, 6, bmax.V[0], 1e-4)
	require.InDelta(t, -3, bmin.V[2], 1e-4)
	require.InDelta(t, 3, bmax.V[2], 1e-4)

	for _, c := range box.Corners() {
		require.True(t, box.ContainsPoint(box.Center.Lerp(c, 0.999)))
		require.True(t, c.V[0] >= bmin.V[0]-1e-4 && c.V[0] <= bmax.V[0]+1e-4)
	}

	enc := EnclosingOBB(unitBox(-10, 0, 0), unitBox(10, 2, 0))
	require.Equal(t, types.XYZ(0, 1, 0), enc.Center.V)
	require.Equal(t, types.XYZ(11, 2, 1), enc.HalfExtents)
}

func TestPerspectiveFrustumContainsPoint(t *testing.T) {
	f := cameraFrustum()

	type spec struct {
		pt  Point[types.Camera]
		exp bool
	}
	specs := []spec{
		{NewPoint[types.Camera](0, 0, -10), true},
		{NewPoint[types.Camera](9, 0, -10), true},
		{NewPoint[types.Camera](0, -9, -10), true},
		{NewPoint[types.Camera](11, 0, -10), false},
		{NewPoint[types.Camera](0, 0, 10), false},
		{NewPoint[types.Camera](0, 0, -0.5), false},
		{NewPoint[types.Camera](0, 0, -150), false},
	}

	for index, s := range specs {
		require.Equal(t, s.exp, f.ContainsPoint(s.pt), "spec %d: %v", index, s.pt)
	}

	for _, pl := range f.Planes {
		require.InDelta(t, 1, pl.Normal.Len(), 1e-5)
	}
}

func TestClassifyOBB(t *testing.T) {
	f := BoxFrustum(NewPoint[types.World](-5, -5, -5), NewPoint[types.World](5, 5, 5))

	type spec struct {
		box OBB[types.World]
		exp Containment
	}
	specs := []spec{
		{unitBox(0, 0, 0), Inside},
		{unitBox(4.5, 0, 0), Intersecting},
		// touching the boundary from inside is still inside
		{unitBox(4, 0, 0), Inside},
		{unitBox(100, 0, 0), Outside},
		{unitBox(-100, 0, 0), Outside},
		{unitBox(0, 0, 6.5), Outside},
		{NewAABB(NewPoint[types.World](-50, -50, -50), NewPoint[types.World](50, 50, 50)), Intersecting},
		{
			OBBFromRotation(
				NewPoint[types.World](6.2, 0, 0),
				types.QuatFromAxisAngle(types.XYZ(0, 0, 1), math.Pi/4),
				types.XYZ(1, 1, 1),
			),
			// rotated corner reaches x = 6.2 - sqrt(2)
			Intersecting,
		},
	}

	for index, s := range specs {
		require.Equal(t, s.exp, f.ClassifyOBB(s.box), "spec %d", index)
	}
}

func TestClassifyOBBMatchesCorners(t *testing.T) {
	f := cameraFrustum()
	rng := rand.New(rand.NewSource(7))

	// Random world boxes are scattered in front of the camera; the
	// world-to-camera transform here is a pure rotation, so axes stay
	// orthonormal.
	toCamera := NewTransform[types.World, types.Camera](types.QuatFromAxisAngle(types.XYZ(0, 1, 0), 0.3).Mat4())

	checked := 0
	for i := 0; i < 2000; i++ {
		wb := randomOBB(rng)
		c := toCamera.ApplyPoint(wb.Center)
		box := NewOBB(
			NewPoint[types.Camera](c.Right()*6, c.Up()*6, -rng.Float32()*120),
			[3]Vector[types.Camera]{
				toCamera.ApplyVector(wb.Axes[0]),
				toCamera.ApplyVector(wb.Axes[1]),
				toCamera.ApplyVector(wb.Axes[2]),
			},
			wb.HalfExtents.Mul(3),
		)

		corners := box.Corners()
		ambiguous := false
		outsideOne := false
		insideAll := true
		for _, pl := range f.Planes {
			allOut := true
			for _, c := range corners {
				d := pl.Distance(c)
				if abs32(d) < 1e-3 {
					ambiguous = true
				}
				if d <= 0 {
					allOut = false
				} else {
					insideAll = false
				}
			}
			if allOut {
				outsideOne = true
			}
		}
		if ambiguous {
			continue
		}
		checked++

		got := f.ClassifyOBB(box)
		require.Equal(t, outsideOne, got == Outside, "box %d", i)
		require.Equal(t, insideAll, got == Inside, "box %d", i)
	}
	require.True(t, checked > 1000)
}

func TestSegmentIntersectsFrustum(t *testing.T) {
	f := BoxFrustum(NewPoint[types.World](-5, -5, -5), NewPoint[types.World](5, 5, 5))

	type spec struct {
		a, b Point[types.World]
		exp  bool
	}
	specs := []spec{
		// fully inside
		{NewPoint[types.World](0, 0, 0), NewPoint[types.World](1, 1, 1), true},
		// crosses through with both endpoints outside
		{NewPoint[types.World](-20, 0, 0), NewPoint[types.World](20, 0, 0), true},
		// one endpoint inside
		{NewPoint[types.World](0, 0, 0), NewPoint[types.World](0, 50, 0), true},
		// entirely on the outer side of one plane
		{NewPoint[types.World](6, -20, 0), NewPoint[types.World](6, 20, 0), false},
		// passes beside a corner: each plane alone is straddled but the clipped range is empty
		{NewPoint[types.World](-20, 0, 0), NewPoint[types.World](0, 20, 0), false},
		// touches the boundary
		{NewPoint[types.World](5, 5, 0), NewPoint[types.World](10, 10, 0), true},
		// degenerate segment
		{NewPoint[types.World](1, 1, 1), NewPoint[types.World](1, 1, 1), true},
		{NewPoint[types.World](9, 9, 9), NewPoint[types.World](9, 9, 9), false},
	}

	for index, s := range specs {
		require.Equal(t, s.exp, NewSegment(s.a, s.b).IntersectsFrustum(f), "spec %d", index)
	}
}

func TestTransformComposeAndInverse(t *testing.T) {
	objToWorld := NewTransform[types.Object, types.World](
		types.Translate4(types.XYZ(10, 0, 0)).Mul4(types.QuatFromAxisAngle(types.XYZ(0, 1, 0), math.Pi/2).Mat4()),
	)
	worldToCam := NewTransform[types.World, types.Camera](types.LookAtV(types.XYZ(0, 0, 10), types.XYZ(0, 0, 0), types.XYZ(0, 1, 0)))

	objToCam := Compose(objToWorld, worldToCam)
	p := NewPoint[types.Object](1, 0, 0)

	viaWorld := worldToCam.ApplyPoint(objToWorld.ApplyPoint(p))
	direct := objToCam.ApplyPoint(p)
	require.InDeltaSlice(t, viaWorld.V[:], direct.V[:], 1e-4)

	back := objToCam.Inverse().ApplyPoint(direct)
	require.InDeltaSlice(t, p.V[:], back.V[:], 1e-4)

	// +X rotates onto -Z around Y.
	w := objToWorld.ApplyPoint(p)
	require.InDeltaSlice(t, []float32{10, 0, -1}, w.V[:], 1e-4)
}

func TestTransformOBB(t *testing.T) {
	box := NewAABB(NewPoint[types.Object](-1, -1, -1), NewPoint[types.Object](1, 1, 1))
	xf := NewTransform[types.Object, types.World](
		types.Translate4(types.XYZ(0, 5, 0)).Mul4(types.Scale4(types.XYZ(2, 3, 4))),
	)

	wb := xf.ApplyOBB(box)
	require.InDeltaSlice(t, []float32{0, 5, 0}, wb.Center.V[:], 1e-5)
	require.InDeltaSlice(t, []float32{2, 3, 4}, wb.HalfExtents[:], 1e-5)
	for i := 0; i < 3; i++ {
		require.InDelta(t, 1, wb.Axes[i].Len(), 1e-5)
	}
	require.True(t, wb.ContainsPoint(NewPoint[types.World](1.9, 7.9, -3.9)))
	require.False(t, wb.ContainsPoint(NewPoint[types.World](2.1, 5, 0)))
}

func TestIdentityTransform(t *testing.T) {
	id := Identity[types.World]()
	p := NewPoint[types.World](3, -2, 7)
	require.Equal(t, p, id.ApplyPoint(p))

	toCam := NewTransform[types.World, types.Camera](types.Translate4(types.XYZ(0, 0, -5)))
	require.Equal(t, toCam.ApplyPoint(p), Compose(id, toCam).ApplyPoint(p))
}

func TestTransformVectorsAndSegments(t *testing.T) {
	xf := NewTransform[types.Object, types.World](
		types.Translate4(types.XYZ(10, 0, 0)).Mul4(types.Scale4(types.XYZ(2, 2, 2))),
	)

	// Directions ignore the translation.
	v := xf.ApplyVector(NewVector[types.Object](0, 1, 0))
	require.InDeltaSlice(t, []float32{0, 2, 0}, v.V[:], 1e-5)

	seg := NewSegment(NewPoint[types.Object](0, 0, 0), NewPoint[types.Object](1, 0, 0))
	require.Equal(t, seg.A, seg.At(0))
	require.Equal(t, seg.B, seg.At(1))
	mid := seg.At(0.5)
	require.InDeltaSlice(t, []float32{0.5, 0, 0}, mid.V[:], 1e-6)

	ws := xf.ApplySegment(seg)
	require.InDeltaSlice(t, []float32{10, 0, 0}, ws.A.V[:], 1e-5)
	require.InDeltaSlice(t, []float32{12, 0, 0}, ws.B.V[:], 1e-5)
	wantQuarter, gotQuarter := xf.ApplyPoint(seg.At(0.25)), ws.At(0.25)
	require.InDeltaSlice(t, wantQuarter.V[:], gotQuarter.V[:], 1e-5)
}

func TestNewFrustumMatchesBoxFrustum(t *testing.T) {
	plane := func(x, y, z, d float32) Plane[types.World] {
		return Plane[types.World]{Normal: NewVector[types.World](x, y, z), D: d}
	}

	var planes [6]Plane[types.World]
	planes[PlaneNear] = plane(0, 0, 1, -1)
	planes[PlaneFar] = plane(0, 0, -1, -1)
	planes[PlaneLeft] = plane(-1, 0, 0, -1)
	planes[PlaneRight] = plane(1, 0, 0, -1)
	planes[PlaneTop] = plane(0, 1, 0, -1)
	planes[PlaneBottom] = plane(0, -1, 0, -1)

	f := NewFrustum(planes)
	require.Equal(t, BoxFrustum(NewPoint[types.World](-1, -1, -1), NewPoint[types.World](1, 1, 1)), f)
	require.True(t, f.ContainsPoint(NewPoint[types.World](1, 0, -1)))
	require.False(t, f.ContainsPoint(NewPoint[types.World](0, 1.01, 0)))
	require.Equal(t, Inside, f.ClassifyOBB(NewAABB(NewPoint[types.World](-0.5, -0.5, -0.5), NewPoint[types.World](0.5, 0.5, 0.5))))
}

func TestNamedAccessors(t *testing.T) {
	p := NewPoint[types.Camera](1, 2, 3)
	require.Equal(t, float32(1), p.Right())
	require.Equal(t, float32(2), p.Up())
	require.Equal(t, float32(3), p.Forward())
	require.Equal(t, "camera(1.000, 2.000, 3.000)", p.String())

	v := p.Sub(NewPoint[types.Camera](1, 2, 0))
	require.Equal(t, float32(3), v.Forward())
	require.Equal(t, float32(3), v.Len())
}

func randomOBB(rng *rand.Rand) OBB[types.World] {
	axis := types.XYZ(rng.Float32()-0.5, rng.Float32()-0.5, rng.Float32()-0.5)
	if axis.Len() < 1e-3 {
		axis = types.XYZ(0, 1, 0)
	}
	return OBBFromRotation(
		NewPoint[types.World](rng.Float32()*4-2, rng.Float32()*4-2, rng.Float32()*4-2),
		types.QuatFromAxisAngle(axis, rng.Float32()*2*math.Pi),
		types.XYZ(rng.Float32()*2, rng.Float32()*2, rng.Float32()*2),
	)
}
