package bvh

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/achilleasa/polaris-cull/geom"
	"github.com/achilleasa/polaris-cull/log"
	"github.com/achilleasa/polaris-cull/types"
	"github.com/google/uuid"
)

// Counters collected while walking a tree.
type TraversalStats struct {
	// Nodes whose volume was classified against the frustum.
	NodesVisited int

	// Visited nodes whose subtree was rejected.
	NodesCulled int

	// Leafs emitted by the walk.
	LeafsVisible int
}

// A callback invoked for each visible leaf with the flag that the leaf
// carried before this walk updated it.
type VisitFunc[S types.Space] func(obj GameObjectInfo[S], prev Flag)

// A Tree is a bounding volume hierarchy over objects in space S.
//
// Walks run against the snapshot that was active when they started and may
// run concurrently with each other. The only state they write is the per-node
// flag array; flags are a best-effort hint so they use relaxed atomic
// load/stores rather than locks and concurrent walks may leave any of the
// written values behind. Rebuilds are serialized and publish a brand new
// snapshot, so in-flight walks against the old one finish undisturbed.
type Tree[S types.Space] struct {
	logger log.Logger
	opts   BuildOptions

	// Serializes rebuilds.
	mu     sync.Mutex
	active atomic.Pointer[snapshot[S]]
}

// Create an empty tree.
func NewTree[S types.Space](opts BuildOptions) *Tree[S] {
	t := &Tree[S]{
		logger: log.New("bvh"),
		opts:   opts,
	}
	t.active.Store(&snapshot[S]{leafOf: map[uuid.UUID]NodeIndex{}})
	return t
}

// Create a tree and populate it with a set of objects.
func Build[S types.Space](objects []GameObjectInfo[S], opts BuildOptions) (*Tree[S], error) {
	t := NewTree[S](opts)
	if err := t.Rebuild(objects); err != nil {
		return nil, err
	}
	return t, nil
}

// Replace the tree contents with a new set of objects. The new node array is
// built on the side and swapped in atomically. Previously obtained node
// indices become invalid and must be re-resolved via Lookup. Leaf flags are
// carried over for objects present in both builds.
func (t *Tree[S]) Rebuild(objects []GameObjectInfo[S]) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap, err := buildSnapshot(objects, t.opts, t.logger)
	if err != nil {
		return err
	}

	prev := t.active.Load()
	carried := 0
	for id, newIndex := range snap.leafOf {
		if oldIndex, ok := prev.leafOf[id]; ok {
			snap.flags[newIndex].Store(prev.flags[oldIndex].Load())
			carried++
		}
	}
	snap.propagateFlags()

	t.active.Store(snap)
	t.logger.Infof("rebuilt tree with %d objects (%d carried over)", len(objects), carried)
	return nil
}

// Get the number of nodes in the tree.
func (t *Tree[S]) Len() int {
	return len(t.active.Load().nodes)
}

// Get the number of objects in the tree.
func (t *Tree[S]) Objects() int {
	return len(t.active.Load().objects)
}

// Resolve the leaf node index for an object.
func (t *Tree[S]) Lookup(id uuid.UUID) (NodeIndex, bool) {
	idx, ok := t.active.Load().leafOf[id]
	return idx, ok
}

// Get a copy of a node.
func (t *Tree[S]) Node(idx NodeIndex) (Node[S], bool) {
	snap := t.active.Load()
	if int(idx) >= len(snap.nodes) {
		return Node[S]{}, false
	}
	return snap.nodes[idx], true
}

// Get the visibility flag of a node.
func (t *Tree[S]) Flag(idx NodeIndex) (Flag, bool) {
	snap := t.active.Load()
	if int(idx) >= len(snap.flags) {
		return 0, false
	}
	return Flag(snap.flags[idx].Load()), true
}

// Get the object identifiers whose volumes are not culled by the frustum.
// An empty tree yields an empty list.
func (t *Tree[S]) Traverse(f geom.Frustum[S]) []uuid.UUID {
	out := make([]uuid.UUID, 0)
	t.Walk(f, func(obj GameObjectInfo[S], _ Flag) {
		out = append(out, obj.ID)
	})
	return out
}

// Walk the tree using the stackless hit/miss encoding and invoke visit for
// every leaf that is not culled by the frustum:
//
// - Outside: the subtree is culled and flagged invisible; jump to Miss.
// Subtrees that were already invisible are not rewritten.
// - Inside (internal node): every leaf in the subtree is visible, so the
// subtree range is emitted without further tests; jump to Miss.
// - Otherwise the node is flagged visible, emitted if it is a leaf and the
// walk continues at Hit.
//
// A jump that does not move forward or lands beyond the end of the node array
// means the tree is corrupt and causes a panic.
func (t *Tree[S]) Walk(f geom.Frustum[S], visit VisitFunc[S]) TraversalStats {
	snap := t.active.Load()
	end := NodeIndex(len(snap.nodes))

	var stats TraversalStats
	for idx := NodeIndex(0); idx != end; {
		node := &snap.nodes[idx]
		snap.checkJump(idx, node.Hit, "hit")
		snap.checkJump(idx, node.Miss, "miss")
		stats.NodesVisited++

		switch class := f.ClassifyOBB(node.Volume); {
		case class == geom.Outside:
			// A node flagged invisible always has an invisible subtree
			// so the range only needs updating on a transition.
			if snap.swapFlag(idx, FlagPreviouslyInvisible) != FlagPreviouslyInvisible {
				snap.markRange(idx+1, node.Miss, FlagPreviouslyInvisible)
			}
			stats.NodesCulled++
			idx = node.Miss
		case class == geom.Inside && !node.IsLeaf():
			for sub := idx; sub < node.Miss; sub++ {
				prev := snap.swapFlag(sub, FlagPreviouslyVisible)
				if subNode := &snap.nodes[sub]; subNode.IsLeaf() {
					stats.LeafsVisible++
					visit(snap.objects[subNode.Object], prev)
				}
			}
			idx = node.Miss
		default:
			prev := snap.swapFlag(idx, FlagPreviouslyVisible)
			if node.IsLeaf() {
				stats.LeafsVisible++
				visit(snap.objects[node.Object], prev)
			}
			idx = node.Hit
		}
	}

	return stats
}

// Flag every internal node that has a visible descendant as visible. Nodes
// are processed in reverse preorder so children are settled before parents.
func (s *snapshot[S]) propagateFlags() {
	for idx := len(s.nodes) - 1; idx >= 0; idx-- {
		node := &s.nodes[idx]
		if node.IsLeaf() {
			continue
		}
		left := node.Hit
		right := s.nodes[left].Miss
		if Flag(s.flags[left].Load()) == FlagPreviouslyVisible || Flag(s.flags[right].Load()) == FlagPreviouslyVisible {
			s.flags[idx].Store(uint32(FlagPreviouslyVisible))
		}
	}
}

func (s *snapshot[S]) checkJump(from, to NodeIndex, kind string) {
	if to <= from || int(to) > len(s.nodes) {
		panic(fmt.Sprintf("bvh: corrupt tree: node %d has %s index %d (node count %d)", from, kind, to, len(s.nodes)))
	}
}

func (s *snapshot[S]) swapFlag(idx NodeIndex, flag Flag) Flag {
	return Flag(s.flags[idx].Swap(uint32(flag)))
}

func (s *snapshot[S]) markRange(from, to NodeIndex, flag Flag) {
	for idx := from; idx < to; idx++ {
		s.flags[idx].Store(uint32(flag))
	}
}
