package reader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/polaris-cull/bvh"
	"github.com/achilleasa/polaris-cull/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testScene = `
camera:
  position: [0, 0, 20]
  look_at: [0, 0, 0]
  fov: 60
  near: 0.5
  far: 100
  aspect: 1.5
objects:
  - id: "6f1c2e1a-3b0d-4c55-9e0a-1d2f3a4b5c6d"
    name: crate
    center: [0, 0, 0]
    half_extents: [1, 1, 1]
  - name: barrel
    center: [3, 0, 0]
    half_extents: [0.5, 1, 0.5]
    rotation:
      axis: [0, 1, 0]
      angle: 0.5
  - center: [0, 0, 500]
    half_extents: [1, 1, 1]
lines:
  - from: [-100, 0, 0]
    to: [100, 0, 0]
  - from: [0, 500, 0]
    to: [10, 500, 0]
`

func TestParseScene(t *testing.T) {
	sc, err := ParseScene(strings.NewReader(testScene))
	require.NoError(t, err)

	require.Len(t, sc.Objects, 3)
	require.Len(t, sc.Lines, 2)
	require.Len(t, sc.Names, 2)

	crateID := uuid.MustParse("6f1c2e1a-3b0d-4c55-9e0a-1d2f3a4b5c6d")
	require.Equal(t, crateID, sc.Objects[0].ID)
	require.Equal(t, "crate", sc.Names[crateID])
	require.Equal(t, "barrel", sc.Names[sc.Objects[1].ID])

	barrel := sc.Objects[1].Volume
	require.Equal(t, types.XYZ(0.5, 1, 0.5), barrel.HalfExtents)
	require.InDelta(t, 1, barrel.Axes[1].V[1], 1e-5)

	require.Equal(t, float32(1.5), sc.Camera.Aspect)
	require.Equal(t, float32(0.5), sc.Camera.Near)
	require.Equal(t, types.XYZ(0, 0, 20), sc.Camera.Position)

	// The scene content feeds straight into a tree.
	tree, err := bvh.Build(sc.Objects, bvh.DefaultBuildOptions)
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{crateID, sc.Objects[1].ID}, tree.Traverse(sc.Camera.Frustum()))
}

func TestParseSceneDefaults(t *testing.T) {
	sc, err := ParseScene(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, sc.Objects)
	require.Equal(t, defaultFOV, sc.Camera.FOV)

	sc, err = ParseScene(strings.NewReader("camera:\n  position: [1, 2, 3]\n"))
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{1, 2, 2}, sc.Camera.LookAt[:], 1e-5)
}

func TestParseSceneErrors(t *testing.T) {
	type spec struct {
		doc    string
		expErr error
		expMsg string
	}
	specs := []spec{
		{"objects:\n  - id: nope\n", ErrInvalidObject, "bad id"},
		{"objects:\n  - half_extents: [1, -1, 1]\n", ErrInvalidObject, "negative half extents"},
		{"objects:\n  - rotation: {axis: [0, 0, 0], angle: 1}\n", ErrInvalidObject, "zero rotation axis"},
		{"camera:\n  fov: 200\n", ErrInvalidCamera, "fov"},
		{"camera:\n  near: 10\n  far: 5\n", ErrInvalidCamera, "clip range"},
		{"camera:\n  look_at: [0, 0, 0]\n", ErrInvalidCamera, "look_at"},
		{"camera:\n  up: [0, 0, 0]\n", ErrInvalidCamera, "up vector"},
		{"camera:\n  position: [0, 50, 0]\n  look_at: [0, 0, 0]\n", ErrInvalidCamera, "up parallel"},
		{"camera:\n  look_at: [0, 0, -5]\n  up: [0, 0, 2]\n", ErrInvalidCamera, "up parallel"},
		{"cameras: {}\n", nil, "could not parse scene"},
		{"objects:\n  - center: [1, 2]\n", nil, "could not parse scene"},
	}

	for index, s := range specs {
		_, err := ParseScene(strings.NewReader(s.doc))
		require.Error(t, err, "spec %d", index)
		if s.expErr != nil {
			require.ErrorIs(t, err, s.expErr, "spec %d", index)
		}
		require.Contains(t, err.Error(), s.expMsg, "spec %d", index)
	}
}

func TestReadScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScene), 0o644))

	sc, err := ReadScene(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, sc.Objects, 3)

	_, err = ReadScene(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("objects:\n  - id: nope\n"), 0o644))
	_, err = ReadScene(context.Background(), bad)
	require.ErrorIs(t, err, ErrInvalidObject)
	require.Contains(t, err.Error(), bad)
}

func TestReadRemoteScene(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testScene)
	}))
	defer server.Close()

	sc, err := ReadScene(context.Background(), server.URL+"/scene.yaml")
	require.NoError(t, err)
	require.Len(t, sc.Objects, 3)
	require.Len(t, sc.Lines, 2)
}
