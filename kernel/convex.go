package kernel

import (
	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/epa"
	"github.com/akmonengine/narrowphase/gjk"
	"github.com/akmonengine/narrowphase/query"
)

// Convex computes the distance between any two convex bodies with GJK on the
// cores, falling back to EPA when the cores overlap. The margins are applied
// afterwards. Features are recovered from the vertex ids of the final simplex
// or polytope face.
func Convex(a, b actor.Body, maxDistance float64, opts Options) (bool, query.DistanceResult) {
	shapeA, _ := a.Convex()
	shapeB, _ := b.Convex()
	radiusA, radiusB := shapeA.Margin(), shapeB.Margin()

	g := gjk.Distance(a, b, opts.GJK)
	opts.observe(AlgorithmGJK, g.Iterations, !g.Approximate)

	var r query.DistanceResult
	var idsA, idsB []int
	if g.Overlap {
		e := epa.Penetration(a, b, g.Simplex, opts.EPA)
		opts.observe(AlgorithmEPA, e.Iterations, !e.Approximate)

		r = pair(e.PointA, e.PointB, e.Normal, -e.Depth, radiusA, radiusB)
		r.Approximate = g.Approximate || e.Approximate
		idsA, idsB = e.IDsA, e.IDsB
	} else {
		r = pair(g.PointA, g.PointB, g.Normal, g.Distance, radiusA, radiusB)
		r.Approximate = g.Approximate
		idsA, idsB = g.IDsA, g.IDsB
	}

	r.FeatureA = shapeA.FeatureFromVertices(idsA, a.Transform.RotateInverse(r.NormalA))
	r.FeatureB = shapeB.FeatureFromVertices(idsB, b.Transform.RotateInverse(r.NormalB))
	return within(r, maxDistance)
}
