// Package geom provides coordinate-space tagged geometry primitives and the
// intersection tests used for visibility culling.
//
// Every type is parameterized by a types.Space tag. Values tagged with
// different spaces are distinct types, so mixing e.g. a camera space frustum
// with an object space box is a compile error. The only way to move a value
// between spaces is a Transform.
//
// All tests are pure functions over values; they never allocate or fail.
// Frustum planes are expected to carry unit normals pointing away from the
// frustum interior. Malformed input yields unspecified results.
package geom

import (
	"fmt"

	"github.com/achilleasa/polaris-cull/types"
)

func assertFinite(v types.Vec3, what string) {
	if debugAssertions && !v.IsFinite() {
		panic(fmt.Sprintf("geom: non-finite %s: %v", what, v))
	}
}
