// Package metrics exposes narrow-phase query statistics as prometheus
// collectors. Every label has a bounded value set: operation names, shape
// type names and solver names.
package metrics

import (
	"github.com/akmonengine/narrowphase/actor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation labels
const (
	OpDistance = "distance"
	OpOverlap  = "overlap"
	OpCast     = "cast"
	OpContacts = "contacts"
)

// Recorder groups the collectors of one engine. A nil *Recorder records
// nothing, so callers never need to check.
type Recorder struct {
	queries          *prometheus.CounterVec
	unsupported      *prometheus.CounterVec
	solverIterations *prometheus.HistogramVec
	nonConverged     *prometheus.CounterVec
	manifoldPoints   prometheus.Histogram
	castFraction     prometheus.Histogram
}

// NewRecorder registers the collectors on reg. Pass prometheus.DefaultRegisterer
// to expose them through promhttp.Handler().
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "narrowphase_queries_total",
			Help: "Queries run, by operation, shape pair and outcome",
		}, []string{"op", "shape_a", "shape_b", "hit"}),

		unsupported: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "narrowphase_unsupported_pairs_total",
			Help: "Queries on shape pairs with no dispatch entry",
		}, []string{"op", "shape_a", "shape_b"}),

		solverIterations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "narrowphase_solver_iterations",
			Help:    "Iterations used by an iterative solver run",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}, []string{"algorithm"}),

		nonConverged: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "narrowphase_solver_nonconverged_total",
			Help: "Solver runs that exhausted their iteration budget",
		}, []string{"algorithm"}),

		manifoldPoints: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "narrowphase_manifold_points",
			Help:    "Contact points per manifold",
			Buckets: []float64{1, 2, 3, 4},
		}),

		castFraction: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "narrowphase_cast_fraction",
			Help:    "Fraction of the sweep travelled before impact",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
	}
}

// ObserveQuery counts one query
func (r *Recorder) ObserveQuery(op string, a, b actor.ShapeType, hit bool) {
	if r == nil {
		return
	}
	outcome := "false"
	if hit {
		outcome = "true"
	}
	r.queries.WithLabelValues(op, a.String(), b.String(), outcome).Inc()
}

// ObserveUnsupported counts a query on a pair the engine cannot resolve
func (r *Recorder) ObserveUnsupported(op string, a, b actor.ShapeType) {
	if r == nil {
		return
	}
	r.unsupported.WithLabelValues(op, a.String(), b.String()).Inc()
}

// ObserveSolver implements kernel.Observer
func (r *Recorder) ObserveSolver(algorithm string, iterations int, converged bool) {
	if r == nil {
		return
	}
	r.solverIterations.WithLabelValues(algorithm).Observe(float64(iterations))
	if !converged {
		r.nonConverged.WithLabelValues(algorithm).Inc()
	}
}

// ObserveManifold records the size of a built manifold
func (r *Recorder) ObserveManifold(points int) {
	if r == nil {
		return
	}
	r.manifoldPoints.Observe(float64(points))
}

// ObserveCast records the impact fraction of a hit
func (r *Recorder) ObserveCast(fraction float64) {
	if r == nil {
		return
	}
	r.castFraction.Observe(fraction)
}
