package types

// Space is implemented by the coordinate space tags. Geometry types are
// parameterized by a Space so that values expressed in different reference
// frames have distinct types and can not be combined without an explicit
// transform. Tags are empty structs; nothing is stored at runtime.
type Space interface {
	Name() string
}

// Object (model) space: coordinates relative to a mesh origin.
type Object struct{}

// World space: the shared scene reference frame.
type World struct{}

// Camera (view) space: the camera sits at the origin looking down -Z.
type Camera struct{}

// Clip space: homogeneous coordinates produced by the projection matrix.
type Clip struct{}

func (Object) Name() string { return "object" }
func (World) Name() string  { return "world" }
func (Camera) Name() string { return "camera" }
func (Clip) Name() string   { return "clip" }

// Get the name of the space tag S.
func SpaceName[S Space]() string {
	var s S
	return s.Name()
}
