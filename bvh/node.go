package bvh

import (
	"github.com/achilleasa/polaris-cull/geom"
	"github.com/achilleasa/polaris-cull/types"
	"github.com/google/uuid"
)

// A dense index into a tree's node array. Indices are only meaningful for the
// tree build that produced them; callers must re-resolve them (see
// Tree.Lookup) after a rebuild.
type NodeIndex uint32

// Per-node visibility recorded by the most recent traversal that reached the
// node.
type Flag uint8

const (
	FlagPreviouslyVisible Flag = 1 << iota
	FlagPreviouslyInvisible
)

func (f Flag) String() string {
	switch f {
	case FlagPreviouslyVisible:
		return "visible"
	case FlagPreviouslyInvisible:
		return "invisible"
	}
	return "unknown"
}

// The per-object payload supplied by the scene graph when building a tree.
type GameObjectInfo[S types.Space] struct {
	ID     uuid.UUID
	Volume geom.OBB[S]
}

// Tree nodes are stored in a flat array in depth-first preorder so that
// every subtree occupies the contiguous index range [i, Miss). The two jump
// indices encode a stackless walk:
//
// - Hit is the node to visit next if this node's volume is not culled. For
// internal nodes this is the left child (i+1); for leafs it is the preorder
// successor, which equals Miss.
// - Miss is the first node after this subtree; the walk continues there when
// the volume is culled.
//
// A jump to len(nodes) ends the walk.
type Node[S types.Space] struct {
	Volume geom.OBB[S]
	Center geom.Point[S]

	Hit  NodeIndex
	Miss NodeIndex

	// Index of the leaf object or -1 for internal nodes.
	Object int32
}

// Returns true if this is a leaf node.
func (n *Node[S]) IsLeaf() bool {
	return n.Object >= 0
}
