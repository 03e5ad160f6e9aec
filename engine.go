// Package narrowphase answers geometric queries between two placed shapes:
// signed distance with closest points, boolean overlap, swept time of impact
// and contact manifolds.
//
// Pairs of convex primitives resolve through a double-dispatch table to one
// kernel, called in the mirrored order and flipped when only that order is
// implemented. Compounds and bulk triangle geometry fan out to their parts
// and keep the best result.
//
// An Engine is immutable after New and safe for concurrent use.
package narrowphase

import (
	"iter"
	"log/slog"
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/gjk"
	"github.com/akmonengine/narrowphase/kernel"
	"github.com/akmonengine/narrowphase/metrics"
	"github.com/akmonengine/narrowphase/query"
)

// entry resolves one ordered pair of convex shape types
type entry struct {
	fn kernel.Func
	// flip means fn takes the shapes in the reverse order
	flip bool
	// iterative marks the GJK/EPA kernel; its overlap test is boolean GJK
	iterative bool
}

func (e entry) supported() bool { return e.fn != nil }

// Engine runs narrow-phase queries with one configuration
type Engine struct {
	config  Config
	table   [actor.NumShapeTypes][actor.NumShapeTypes]entry
	options kernel.Options
	log     *diagnostics
	metrics *metrics.Recorder
}

// New validates the configuration and builds the dispatch table
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config:  cfg,
		table:   dispatchTable(),
		options: kernel.Options{GJK: cfg.gjkSettings(), EPA: cfg.epaSettings()},
		log:     newDiagnostics(cfg.Logger, cfg.Log),
		metrics: cfg.Metrics,
	}
	if cfg.Metrics != nil {
		e.options.Observer = cfg.Metrics
	}
	return e, nil
}

// Default returns an engine with DefaultConfig
func Default() *Engine {
	e, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return e
}

// Config returns the configuration the engine was built with
func (e *Engine) Config() Config { return e.config }

func dispatchTable() [actor.NumShapeTypes][actor.NumShapeTypes]entry {
	var table [actor.NumShapeTypes][actor.NumShapeTypes]entry
	set := func(a, b actor.ShapeType, fn kernel.Func) {
		table[a][b] = entry{fn: fn}
		if a != b {
			table[b][a] = entry{fn: fn, flip: true}
		}
	}

	set(actor.ShapeTypeSphere, actor.ShapeTypeSphere, kernel.SphereSphere)
	set(actor.ShapeTypeSphere, actor.ShapeTypeCapsule, kernel.SphereCapsule)
	set(actor.ShapeTypeSphere, actor.ShapeTypeBox, kernel.SphereBox)
	set(actor.ShapeTypeSphere, actor.ShapeTypeTriangle, kernel.SphereTriangle)
	set(actor.ShapeTypeCapsule, actor.ShapeTypeCapsule, kernel.CapsuleCapsule)
	set(actor.ShapeTypeCapsule, actor.ShapeTypeBox, kernel.CapsuleBox)
	set(actor.ShapeTypeCapsule, actor.ShapeTypeTriangle, kernel.CapsuleTriangle)
	set(actor.ShapeTypeBox, actor.ShapeTypeBox, kernel.BoxBox)

	// everything else between convex shapes goes through GJK/EPA, which is
	// symmetric and never needs a flip
	for a := actor.ShapeType(0); a < actor.NumShapeTypes; a++ {
		for b := actor.ShapeType(0); b < actor.NumShapeTypes; b++ {
			if a.IsConvex() && b.IsConvex() && !table[a][b].supported() {
				table[a][b] = entry{fn: kernel.Convex, iterative: true}
			}
		}
	}
	return table
}

// Supports reports whether the engine resolves a pair of shape types, in this
// order. Convex pairs always resolve; compounds resolve against anything but
// two bulk shapes never do.
func (e *Engine) Supports(a, b actor.ShapeType) bool {
	if a < 0 || a >= actor.NumShapeTypes || b < 0 || b >= actor.NumShapeTypes {
		return false
	}
	if a.IsBulk() && b.IsBulk() {
		return false
	}
	return true
}

// leaf runs the kernel of two convex bodies
func (e *Engine) leaf(a, b actor.Body, maxDistance float64) (bool, query.DistanceResult) {
	ent := e.table[a.Shape.Type()][b.Shape.Type()]
	if ent.flip {
		hit, r := ent.fn(b, a, maxDistance, e.options)
		return hit, r.Flip()
	}
	return ent.fn(a, b, maxDistance, e.options)
}

func (e *Engine) unsupported(op string, a, b actor.Body) {
	ta, tb := a.Shape.Type(), b.Shape.Type()
	e.metrics.ObserveUnsupported(op, ta, tb)
	e.log.warn("unsupported shape pair", op, ta, tb)
}

func noResult() query.DistanceResult {
	r := query.NewDistanceResult()
	r.Distance = math.Inf(1)
	return r
}

// Distance computes the signed distance between two placed shapes and
// reports whether it is at most maxDistance. Pass math.Inf(1) to always get
// the closest pair.
//
// For composite shapes the result is the closest of the tested part pairs,
// with SubShapeA and SubShapeB naming the parts. Parts whose bounds are
// farther than maxDistance are skipped; when nothing was tested the distance
// is +Inf. Unsupported pairs never hit.
func (e *Engine) Distance(a, b actor.Body, maxDistance float64) (bool, query.DistanceResult) {
	if !e.Supports(a.Shape.Type(), b.Shape.Type()) {
		e.unsupported(metrics.OpDistance, a, b)
		return false, noResult()
	}

	hit, best := false, noResult()
	e.pairs(a, b, maxDistance, func(p part) bool {
		h, r := e.leaf(p.a, p.b, maxDistance)
		r.SubShapeA, r.SubShapeB = p.subA, p.subB
		if r.Distance < best.Distance {
			hit, best = h, r
		}
		return true
	})

	e.reportApproximate(metrics.OpDistance, a, b, best)
	e.metrics.ObserveQuery(metrics.OpDistance, a.Shape.Type(), b.Shape.Type(), hit)
	return hit, best
}

// DistanceAll yields the result of every part pair within maxDistance, in
// enumeration order. For two convex shapes it yields at most once. The
// sequence can be ranged over any number of times.
func (e *Engine) DistanceAll(a, b actor.Body, maxDistance float64) iter.Seq[query.DistanceResult] {
	return func(yield func(query.DistanceResult) bool) {
		if !e.Supports(a.Shape.Type(), b.Shape.Type()) {
			e.unsupported(metrics.OpDistance, a, b)
			return
		}
		e.pairs(a, b, maxDistance, func(p part) bool {
			hit, r := e.leaf(p.a, p.b, maxDistance)
			if !hit {
				return true
			}
			r.SubShapeA, r.SubShapeB = p.subA, p.subB
			return yield(r)
		})
	}
}

// Overlap reports whether two shapes intersect. Touching shapes overlap.
// Pairs without a closed-form kernel use boolean GJK on the rounded shapes.
func (e *Engine) Overlap(a, b actor.Body) bool {
	if !e.Supports(a.Shape.Type(), b.Shape.Type()) {
		e.unsupported(metrics.OpOverlap, a, b)
		return false
	}

	overlap := false
	e.pairs(a, b, 0, func(p part) bool {
		ent := e.table[p.a.Shape.Type()][p.b.Shape.Type()]
		if ent.iterative {
			simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
			simplex.Reset()
			overlap = gjk.Intersect(p.a, p.b, simplex, e.config.GJK.MaxIterations)
			gjk.SimplexPool.Put(simplex)
		} else {
			overlap, _ = e.leaf(p.a, p.b, 0)
		}
		return !overlap
	})

	e.metrics.ObserveQuery(metrics.OpOverlap, a.Shape.Type(), b.Shape.Type(), overlap)
	return overlap
}

func (e *Engine) reportApproximate(op string, a, b actor.Body, r query.DistanceResult) {
	if r.Approximate {
		e.log.warn("solver did not converge", op, a.Shape.Type(), b.Shape.Type(),
			slog.Float64("distance", r.Distance))
	}
}
