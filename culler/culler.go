// Package culler drives per-frame visibility queries against a world space
// BVH and reports the objects that should be rendered.
package culler

import (
	"sync/atomic"
	"time"

	"github.com/achilleasa/polaris-cull/bvh"
	"github.com/achilleasa/polaris-cull/geom"
	"github.com/achilleasa/polaris-cull/log"
	"github.com/achilleasa/polaris-cull/scene"
	"github.com/achilleasa/polaris-cull/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Culler options.
type Options struct {
	// Namespace prepended to the exported metric names.
	MetricsNamespace string

	// The registry for the culling metrics. Metrics are still collected
	// but not exported when nil.
	Registerer prometheus.Registerer
}

// The options used when none are specified.
var DefaultOptions = Options{
	MetricsNamespace: "polaris",
}

// Per-frame culling statistics.
type FrameStats struct {
	// Sequence number of the traversal.
	Frame uint64

	NodesVisited        int
	NodesCulled         int
	ObjectsVisible      int
	ObjectsNewlyVisible int

	// Time spent walking the tree.
	TraversalTime time.Duration
}

// The outcome of a culling pass.
type Result struct {
	// Objects whose volume is not culled by the frustum.
	Visible []uuid.UUID

	// The subset of Visible that was not visible in the previous traversal.
	// The renderer may use this as a hint for warming caches.
	NewlyVisible []uuid.UUID

	Stats FrameStats
}

// A Culler runs visibility queries against a world space tree. It is safe
// for concurrent use; see bvh.Tree for the rebuild semantics.
type Culler struct {
	logger  log.Logger
	tree    *bvh.Tree[types.World]
	metrics *metrics
	frame   atomic.Uint64
}

// Create a culler for the supplied tree.
func New(tree *bvh.Tree[types.World], opts Options) *Culler {
	return &Culler{
		logger:  log.New("culler"),
		tree:    tree,
		metrics: newMetrics(opts.MetricsNamespace, opts.Registerer),
	}
}

// Get the tree used by this culler.
func (c *Culler) Tree() *bvh.Tree[types.World] {
	return c.tree
}

// Collect the objects that are visible from a world space frustum.
func (c *Culler) Cull(f geom.Frustum[types.World]) Result {
	res := Result{
		Visible:      make([]uuid.UUID, 0),
		NewlyVisible: make([]uuid.UUID, 0),
	}

	start := time.Now()
	walkStats := c.tree.Walk(f, func(obj bvh.GameObjectInfo[types.World], prev bvh.Flag) {
		res.Visible = append(res.Visible, obj.ID)
		if prev != bvh.FlagPreviouslyVisible {
			res.NewlyVisible = append(res.NewlyVisible, obj.ID)
		}
	})

	res.Stats = FrameStats{
		Frame:               c.frame.Add(1),
		NodesVisited:        walkStats.NodesVisited,
		NodesCulled:         walkStats.NodesCulled,
		ObjectsVisible:      len(res.Visible),
		ObjectsNewlyVisible: len(res.NewlyVisible),
		TraversalTime:       time.Since(start),
	}
	c.metrics.observe(res.Stats)

	c.logger.Debugf(
		"frame %d: %d/%d objects visible (%d new), visited %d nodes, culled %d subtrees in %s",
		res.Stats.Frame, res.Stats.ObjectsVisible, c.tree.Objects(), res.Stats.ObjectsNewlyVisible,
		res.Stats.NodesVisited, res.Stats.NodesCulled, res.Stats.TraversalTime,
	)
	return res
}

// Collect the objects that are visible from a camera.
func (c *Culler) CullCamera(cam *scene.Camera) Result {
	return c.Cull(cam.Frustum())
}

// Get the indices of the line segments that have a visible portion. Debug
// geometry such as gizmos and bounds overlays is usually too sparse to be
// worth indexing so segments are tested directly.
func CullSegments(f geom.Frustum[types.World], segments []geom.Segment[types.World]) []int {
	out := make([]int, 0)
	for idx, seg := range segments {
		if seg.IntersectsFrustum(f) {
			out = append(out, idx)
		}
	}
	return out
}
