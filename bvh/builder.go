package bvh

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/achilleasa/polaris-cull/geom"
	"github.com/achilleasa/polaris-cull/log"
	"github.com/achilleasa/polaris-cull/types"
	"github.com/google/uuid"
)

// Each object becomes a leaf and a tree with n leafs has 2n-1 nodes that
// must be addressable by a NodeIndex and an int32 object index.
const maxObjects = math.MaxInt32 / 2

// Build options for constructing a BVH tree.
type BuildOptions struct {
	// Subtrees containing at least this many objects are partitioned
	// concurrently. A value <= 0 disables parallel partitioning.
	ParallelThreshold int
}

// The options used when none are specified.
var DefaultBuildOptions = BuildOptions{
	ParallelThreshold: 4096,
}

type buildStats struct {
	objects   int
	nodes     int
	leafs     int
	maxDepth  int
	buildTime time.Duration
}

// An immutable tree build. Only the flag words are written after
// construction.
type snapshot[S types.Space] struct {
	nodes   []Node[S]
	flags   []atomic.Uint32
	objects []GameObjectInfo[S]
	leafOf  map[uuid.UUID]NodeIndex
	stats   buildStats
}

type builder[S types.Space] struct {
	objects []GameObjectInfo[S]
	centers []types.Vec3

	// Bvh nodes stored as a contiguous preorder list. The list is
	// pre-allocated as its size is known up front.
	nodes []Node[S]

	parallelThreshold int
}

// Construct a BVH snapshot from a set of objects. Each object is stored in
// its own leaf. Internal nodes are split at the object median along the
// longest axis of their centroid bounds which yields a balanced tree.
func buildSnapshot[S types.Space](objects []GameObjectInfo[S], opts BuildOptions, logger log.Logger) (*snapshot[S], error) {
	if len(objects) > maxObjects {
		return nil, fmt.Errorf("%w: %d", ErrTooManyObjects, len(objects))
	}

	snap := &snapshot[S]{
		objects: append([]GameObjectInfo[S](nil), objects...),
		leafOf:  make(map[uuid.UUID]NodeIndex, len(objects)),
		stats:   buildStats{objects: len(objects)},
	}

	centers := make([]types.Vec3, len(objects))
	for idx, obj := range snap.objects {
		if _, exists := snap.leafOf[obj.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateObject, obj.ID)
		}
		if !isFinite(obj.Volume) {
			return nil, fmt.Errorf("%w: %s", ErrNonFiniteVolume, obj.ID)
		}
		snap.leafOf[obj.ID] = 0
		centers[idx] = obj.Volume.Center.V
	}

	if len(objects) == 0 {
		return snap, nil
	}

	b := &builder[S]{
		objects:           snap.objects,
		centers:           centers,
		nodes:             make([]Node[S], 2*len(objects)-1),
		parallelThreshold: opts.ParallelThreshold,
	}

	work := make([]int32, len(objects))
	for idx := range work {
		work[idx] = int32(idx)
	}

	start := time.Now()
	snap.stats.maxDepth = b.partition(work, 0, 0)
	snap.stats.buildTime = time.Since(start)

	snap.nodes = b.nodes
	snap.flags = make([]atomic.Uint32, len(b.nodes))
	for idx := range snap.nodes {
		snap.flags[idx].Store(uint32(FlagPreviouslyInvisible))
		if node := &snap.nodes[idx]; node.IsLeaf() {
			snap.leafOf[snap.objects[node.Object].ID] = NodeIndex(idx)
			snap.stats.leafs++
		}
	}
	snap.stats.nodes = len(snap.nodes)

	logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		snap.stats.buildTime.Nanoseconds()/1e6,
		snap.stats.maxDepth, snap.stats.nodes, snap.stats.leafs,
	)
	return snap, nil
}

// Partition the work list into the subtree rooted at base and return the
// depth of its deepest leaf. A subtree for k objects occupies exactly 2k-1
// slots so both child ranges are known before recursing.
func (b *builder[S]) partition(work []int32, base NodeIndex, depth int) int {
	node := &b.nodes[base]
	node.Hit = base + 1
	node.Miss = base + NodeIndex(2*len(work)-1)

	if len(work) == 1 {
		obj := &b.objects[work[0]]
		node.Volume = obj.Volume
		node.Center = obj.Volume.Center
		node.Object = work[0]
		return depth
	}

	nmin := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	nmax := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	cmin, cmax := nmin, nmax

	// Calculate bounding box and centroid bounds for node
	for _, objIndex := range work {
		bmin, bmax := b.objects[objIndex].Volume.Bounds()
		nmin = types.MinVec3(nmin, bmin.V)
		nmax = types.MaxVec3(nmax, bmax.V)
		cmin = types.MinVec3(cmin, b.centers[objIndex])
		cmax = types.MaxVec3(cmax, b.centers[objIndex])
	}

	node.Volume = geom.NewAABB(geom.PointAt[S](nmin), geom.PointAt[S](nmax))
	node.Center = node.Volume.Center
	node.Object = -1

	// Split at the median along the longest centroid axis; ties are broken
	// by object index so builds are deterministic.
	axis := cmax.Sub(cmin).MaxAxis()
	slices.SortFunc(work, func(l, r int32) int {
		if c := cmp.Compare(b.centers[l][axis], b.centers[r][axis]); c != 0 {
			return c
		}
		return cmp.Compare(l, r)
	})

	mid := len(work) / 2
	leftWork, rightWork := work[:mid], work[mid:]
	leftBase := base + 1
	rightBase := leftBase + NodeIndex(2*len(leftWork)-1)

	// Both halves write to disjoint node ranges and sort disjoint work
	// slices so they can be partitioned in parallel.
	if b.parallelThreshold > 0 && len(work) >= b.parallelThreshold {
		var (
			wg        sync.WaitGroup
			leftDepth int
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			leftDepth = b.partition(leftWork, leftBase, depth+1)
		}()
		rightDepth := b.partition(rightWork, rightBase, depth+1)
		wg.Wait()
		return max(leftDepth, rightDepth)
	}

	return max(
		b.partition(leftWork, leftBase, depth+1),
		b.partition(rightWork, rightBase, depth+1),
	)
}

func isFinite[S types.Space](b geom.OBB[S]) bool {
	if !b.Center.V.IsFinite() || !b.HalfExtents.IsFinite() {
		return false
	}
	for _, axis := range b.Axes {
		if !axis.V.IsFinite() {
			return false
		}
	}
	return true
}
