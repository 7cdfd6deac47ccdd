package reader

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/achilleasa/polaris-cull/asset"
	"github.com/achilleasa/polaris-cull/bvh"
	"github.com/achilleasa/polaris-cull/geom"
	"github.com/achilleasa/polaris-cull/log"
	"github.com/achilleasa/polaris-cull/scene"
	"github.com/achilleasa/polaris-cull/types"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const defaultFOV float32 = 60

var (
	ErrInvalidObject = errors.New("reader: invalid object")
	ErrInvalidCamera = errors.New("reader: invalid camera")
)

// A scene description: the objects to index, optional debug line segments
// and the camera to cull from.
type Scene struct {
	Camera  *scene.Camera
	Objects []bvh.GameObjectInfo[types.World]
	Lines   []geom.Segment[types.World]

	// Object names keyed by id; unnamed objects are omitted.
	Names map[uuid.UUID]string
}

type vec3 [3]float32

type sceneDoc struct {
	Camera  *cameraDoc  `yaml:"camera"`
	Objects []objectDoc `yaml:"objects"`
	Lines   []lineDoc   `yaml:"lines"`
}

type cameraDoc struct {
	Position vec3  `yaml:"position"`
	LookAt   *vec3 `yaml:"look_at"`
	Up       *vec3 `yaml:"up"`

	FOV    float32 `yaml:"fov"`
	Near   float32 `yaml:"near"`
	Far    float32 `yaml:"far"`
	Aspect float32 `yaml:"aspect"`
}

type objectDoc struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Center      vec3         `yaml:"center"`
	HalfExtents vec3         `yaml:"half_extents"`
	Rotation    *rotationDoc `yaml:"rotation"`
}

type rotationDoc struct {
	Axis vec3 `yaml:"axis"`

	// Rotation angle in radians.
	Angle float32 `yaml:"angle"`
}

type lineDoc struct {
	From vec3 `yaml:"from"`
	To   vec3 `yaml:"to"`
}

// Read a scene description from a local YAML file or an http(s) URL.
func ReadScene(ctx context.Context, location string) (*Scene, error) {
	logger := log.New("reader")

	res, err := asset.Open(ctx, nil, location)
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}
	defer res.Close()

	sc, err := ParseScene(res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", res.Path(), err)
	}

	logger.Infof("loaded %d objects and %d lines from %s", len(sc.Objects), len(sc.Lines), res.Path())
	return sc, nil
}

// Parse a YAML scene description. Unknown keys are rejected.
func ParseScene(r io.Reader) (*Scene, error) {
	var doc sceneDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reader: could not parse scene: %w", err)
	}

	cam, err := buildCamera(doc.Camera)
	if err != nil {
		return nil, err
	}

	sc := &Scene{
		Camera:  cam,
		Objects: make([]bvh.GameObjectInfo[types.World], 0, len(doc.Objects)),
		Names:   make(map[uuid.UUID]string),
	}

	for idx, od := range doc.Objects {
		obj, err := buildObject(od)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", idx, err)
		}
		sc.Objects = append(sc.Objects, obj)
		if od.Name != "" {
			sc.Names[obj.ID] = od.Name
		}
	}

	for _, ld := range doc.Lines {
		sc.Lines = append(sc.Lines, geom.NewSegment(
			geom.PointAt[types.World](types.Vec3(ld.From)),
			geom.PointAt[types.World](types.Vec3(ld.To)),
		))
	}

	return sc, nil
}

func buildCamera(cd *cameraDoc) (*scene.Camera, error) {
	cam := scene.NewCamera(defaultFOV)
	if cd == nil {
		return cam, nil
	}

	if cd.FOV != 0 {
		cam.FOV = cd.FOV
	}
	if cd.Near != 0 {
		cam.Near = cd.Near
	}
	if cd.Far != 0 {
		cam.Far = cd.Far
	}
	aspect := cam.Aspect
	if cd.Aspect != 0 {
		aspect = cd.Aspect
	}

	cam.Position = types.Vec3(cd.Position)
	cam.LookAt = cam.Position.Add(types.Vec3{0, 0, -1})
	if cd.LookAt != nil {
		cam.LookAt = types.Vec3(*cd.LookAt)
	}
	if cd.Up != nil {
		cam.Up = types.Vec3(*cd.Up)
	}

	switch {
	case cam.FOV <= 0 || cam.FOV >= 180:
		return nil, fmt.Errorf("%w: fov %f out of range", ErrInvalidCamera, cam.FOV)
	case cam.Near <= 0 || cam.Far <= cam.Near:
		return nil, fmt.Errorf("%w: bad clip range [%f, %f]", ErrInvalidCamera, cam.Near, cam.Far)
	case aspect <= 0:
		return nil, fmt.Errorf("%w: aspect %f", ErrInvalidCamera, aspect)
	case cam.LookAt.Sub(cam.Position).Len() == 0:
		return nil, fmt.Errorf("%w: look_at equals position", ErrInvalidCamera)
	case cam.Up.Len() == 0:
		return nil, fmt.Errorf("%w: zero up vector", ErrInvalidCamera)
	case cam.LookAt.Sub(cam.Position).Normalize().Cross(cam.Up.Normalize()).Len() < 1e-4:
		return nil, fmt.Errorf("%w: up parallel to view direction", ErrInvalidCamera)
	}

	cam.SetupProjection(aspect)
	return cam, nil
}

func buildObject(od objectDoc) (bvh.GameObjectInfo[types.World], error) {
	var obj bvh.GameObjectInfo[types.World]

	obj.ID = uuid.New()
	if od.ID != "" {
		id, err := uuid.Parse(od.ID)
		if err != nil {
			return obj, fmt.Errorf("%w: bad id %q: %v", ErrInvalidObject, od.ID, err)
		}
		obj.ID = id
	}

	half := types.Vec3(od.HalfExtents)
	for _, c := range half {
		if c < 0 {
			return obj, fmt.Errorf("%w: negative half extents %v", ErrInvalidObject, half)
		}
	}

	center := geom.PointAt[types.World](types.Vec3(od.Center))
	rot := types.QuatIdent()
	if od.Rotation != nil {
		axis := types.Vec3(od.Rotation.Axis)
		if axis.Len() == 0 {
			return obj, fmt.Errorf("%w: zero rotation axis", ErrInvalidObject)
		}
		rot = types.QuatFromAxisAngle(axis, od.Rotation.Angle)
	}

	obj.Volume = geom.OBBFromRotation(center, rot, half)
	return obj, nil
}
