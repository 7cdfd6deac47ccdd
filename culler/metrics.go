package culler

import "github.com/prometheus/client_golang/prometheus"

const metricsSubsystem = "cull"

type metrics struct {
	traversals   prometheus.Counter
	nodesVisited prometheus.Counter
	nodesCulled  prometheus.Counter
	newlyVisible prometheus.Counter
	visible      prometheus.Gauge
	duration     prometheus.Histogram
}

func newMetrics(namespace string, reg prometheus.Registerer) *metrics {
	m := &metrics{
		traversals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "traversals_total",
			Help:      "The number of culling traversals.",
		}),
		nodesVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "nodes_visited_total",
			Help:      "The number of BVH nodes tested against a frustum.",
		}),
		nodesCulled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "nodes_culled_total",
			Help:      "The number of BVH subtrees rejected by a frustum.",
		}),
		newlyVisible: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "newly_visible_objects_total",
			Help:      "The number of objects that became visible after being invisible in the previous traversal.",
		}),
		visible: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "visible_objects",
			Help:      "The number of objects that passed the most recent traversal.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "traversal_seconds",
			Help:      "The time spent walking the BVH.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.traversals,
			m.nodesVisited,
			m.nodesCulled,
			m.newlyVisible,
			m.visible,
			m.duration,
		)
	}
	return m
}

func (m *metrics) observe(stats FrameStats) {
	m.traversals.Inc()
	m.nodesVisited.Add(float64(stats.NodesVisited))
	m.nodesCulled.Add(float64(stats.NodesCulled))
	m.newlyVisible.Add(float64(stats.ObjectsNewlyVisible))
	m.visible.Set(float64(stats.ObjectsVisible))
	m.duration.Observe(stats.TraversalTime.Seconds())
}
