package narrowphase

import (
	"iter"
	"log/slog"
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/metrics"
	"github.com/akmonengine/narrowphase/query"
	"github.com/akmonengine/narrowphase/sweep"
	"github.com/go-gl/mathgl/mgl64"
)

// AlgorithmMPR names the portal sweep in solver metrics
const AlgorithmMPR = "mpr"

// Cast translates a from its placement to end, keeping its rotation, and
// returns the first impact with the static b. Result is the distance query
// evaluated at the impact placement.
//
// Shapes that already touch at the start never hit: a sweep assumes a
// separated start. Composite shapes report the earliest impact of their parts.
func (e *Engine) Cast(a actor.Body, end mgl64.Vec3, b actor.Body) (bool, query.CastResult) {
	delta, ok := e.castable(a, end, b)
	if !ok {
		e.metrics.ObserveQuery(metrics.OpCast, a.Shape.Type(), b.Shape.Type(), false)
		return false, query.CastResult{Result: noResult()}
	}

	var best sweep.Result
	best.Fraction = math.Inf(1)
	e.pairs(a, b, delta.Len(), func(p part) bool {
		r := e.sweepPart(p, delta)
		if r.Hit && r.Fraction < best.Fraction {
			best = r
		}
		return true
	})
	if !best.Hit {
		e.metrics.ObserveQuery(metrics.OpCast, a.Shape.Type(), b.Shape.Type(), false)
		return false, query.CastResult{Result: noResult()}
	}

	impact := a.WithTransform(translate(a.Transform, delta.Mul(best.Fraction)))
	_, r := e.Distance(impact, b, math.Inf(1))

	out := query.CastResult{
		Fraction:    best.Fraction,
		Distance:    best.Fraction * delta.Len(),
		Normal:      best.Normal,
		Result:      r,
		Approximate: best.Approximate || r.Approximate,
	}
	if best.Approximate {
		e.log.warn("sweep did not converge", metrics.OpCast, a.Shape.Type(), b.Shape.Type(),
			slog.String("algorithm", AlgorithmMPR), slog.Float64("fraction", best.Fraction))
	}
	e.metrics.ObserveQuery(metrics.OpCast, a.Shape.Type(), b.Shape.Type(), true)
	e.metrics.ObserveCast(best.Fraction)
	return true, out
}

// CastAll yields the first impact of every part pair hit by the sweep, in
// enumeration order. Each Result is the distance between the two parts at
// their own impact placement.
func (e *Engine) CastAll(a actor.Body, end mgl64.Vec3, b actor.Body) iter.Seq[query.CastResult] {
	return func(yield func(query.CastResult) bool) {
		delta, ok := e.castable(a, end, b)
		if !ok {
			return
		}
		e.pairs(a, b, delta.Len(), func(p part) bool {
			s := e.sweepPart(p, delta)
			if !s.Hit {
				return true
			}
			impact := p.a.WithTransform(translate(p.a.Transform, delta.Mul(s.Fraction)))
			_, r := e.leaf(impact, p.b, math.Inf(1))
			r.SubShapeA, r.SubShapeB = p.subA, p.subB
			return yield(query.CastResult{
				Fraction:    s.Fraction,
				Distance:    s.Fraction * delta.Len(),
				Normal:      s.Normal,
				Result:      r,
				Approximate: s.Approximate || r.Approximate,
			})
		})
	}
}

// castable checks the pair and the start placement and returns the sweep
// translation
func (e *Engine) castable(a actor.Body, end mgl64.Vec3, b actor.Body) (mgl64.Vec3, bool) {
	if !e.Supports(a.Shape.Type(), b.Shape.Type()) {
		e.unsupported(metrics.OpCast, a, b)
		return mgl64.Vec3{}, false
	}
	delta := end.Sub(a.Transform.Position)
	if delta.LenSqr() == 0 {
		return delta, false
	}
	if touching, _ := e.Distance(a, b, 0); touching {
		e.log.debug("cast starts in contact", metrics.OpCast, a.Shape.Type(), b.Shape.Type())
		return delta, false
	}
	return delta, true
}

func (e *Engine) sweepPart(p part, delta mgl64.Vec3) sweep.Result {
	r := sweep.Cast(p.a, delta, p.b, e.config.mprSettings())
	if !r.ClosedForm && r.Iterations > 0 {
		e.metrics.ObserveSolver(AlgorithmMPR, r.Iterations, !r.Approximate)
	}
	return r
}

func translate(t actor.Transform, offset mgl64.Vec3) actor.Transform {
	t.Position = t.Position.Add(offset)
	return t
}
