package scene

import (
	"fmt"

	"github.com/achilleasa/polaris-cull/geom"
	"github.com/achilleasa/polaris-cull/types"
)

// Cross product length below which the view direction and the up vector
// are treated as parallel.
const parallelEpsilon float32 = 1e-4

// The camera type controls the scene camera and derives the world space view
// frustum used for culling.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Pending rotation (radians) applied and reset by Update.
	Pitch float32
	Yaw   float32

	// Vertical FOV in degrees.
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	view geom.Transform[types.World, types.Camera]
	proj geom.Transform[types.Camera, types.Clip]
}

func NewCamera(fov float32) *Camera {
	c := &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
		Aspect:   1,
		Near:     1,
		Far:      1000,
	}
	c.SetupProjection(c.Aspect)
	return c
}

// Setup camera projection matrix.
func (c *Camera) SetupProjection(aspect float32) {
	c.Aspect = aspect
	c.proj = geom.NewTransform[types.Camera, types.Clip](types.Perspective4(c.FOV, aspect, c.Near, c.Far))
	c.Update()
}

// Update camera. A rotation that would turn the view direction onto the up
// axis is dropped and the previous orientation kept.
func (c *Camera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()
	if isParallel(dir, c.Up) {
		c.Up = fallbackUp(dir)
	}

	pitchAxis := dir.Cross(c.Up)
	pitchQuat := types.QuatFromAxisAngle(pitchAxis, c.Pitch)
	yawQuat := types.QuatFromAxisAngle(c.Up, c.Yaw)

	orientQuat := pitchQuat.Mul(yawQuat).Normalize()

	// Update direction
	if rotated := orientQuat.Rotate(dir); !isParallel(rotated, c.Up) {
		dir = rotated
	}
	c.LookAt = c.Position.Add(dir.Mul(1.0))
	c.Pitch, c.Yaw = 0, 0

	c.view = geom.NewTransform[types.World, types.Camera](types.LookAtV(c.Position, c.LookAt, c.Up))
}

func isParallel(dir, up types.Vec3) bool {
	return dir.Cross(up.Normalize()).Len() < parallelEpsilon
}

// Pick the world axis least aligned with dir and make it orthogonal to dir.
func fallbackUp(dir types.Vec3) types.Vec3 {
	axes := [3]types.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	best := axes[0]
	for _, axis := range axes[1:] {
		if abs32(axis.Dot(dir)) < abs32(best.Dot(dir)) {
			best = axis
		}
	}
	return best.Sub(dir.Mul(best.Dot(dir))).Normalize()
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Get the world to camera space transform.
func (c *Camera) ViewTransform() geom.Transform[types.World, types.Camera] {
	return c.view
}

// Get the camera to clip space transform.
func (c *Camera) ProjectionTransform() geom.Transform[types.Camera, types.Clip] {
	return c.proj
}

// Get the view frustum in world space.
func (c *Camera) Frustum() geom.Frustum[types.World] {
	return geom.FrustumFromMatrix(geom.Compose(c.view, c.proj))
}

// Get the frustum corners in world space by unprojecting the corners of the
// clip space cube. Near plane corners come first: TL, TR, BL, BR.
func (c *Camera) FrustumCorners() [8]geom.Point[types.World] {
	clipToWorld := geom.Compose(c.view, c.proj).Inverse()

	var out [8]geom.Point[types.World]
	for idx, z := range []float32{-1, 1} {
		corners := [4]geom.Point[types.Clip]{
			geom.NewPoint[types.Clip](-1, 1, z),
			geom.NewPoint[types.Clip](1, 1, z),
			geom.NewPoint[types.Clip](-1, -1, z),
			geom.NewPoint[types.Clip](1, -1, z),
		}
		for corner, p := range corners {
			out[idx*4+corner] = clipToWorld.ApplyPoint(p)
		}
	}
	return out
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"Camera: pos (%3.3f, %3.3f, %3.3f) look at (%3.3f, %3.3f, %3.3f) fov %3.1f near %3.3f far %3.3f",
		c.Position[0], c.Position[1], c.Position[2],
		c.LookAt[0], c.LookAt[1], c.LookAt[2],
		c.FOV, c.Near, c.Far,
	)
}
