package narrowphase

import (
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/query"
)

// part is one pair of convex leaves taken from two shapes
type part struct {
	a, b       actor.Body
	subA, subB int
}

// pairs enumerates the convex leaf pairs of a and b whose bounds lie within
// maxDistance of each other, compounds before bulk shapes, A before B. It
// returns false when fn stopped the enumeration.
func (e *Engine) pairs(a, b actor.Body, maxDistance float64, fn func(part) bool) bool {
	return e.expand(part{a: a, b: b, subA: query.NoSubShape, subB: query.NoSubShape}, reach(maxDistance), fn)
}

// reach is the margin added to bounds before pruning. An infinite margin
// keeps every part.
func reach(maxDistance float64) float64 {
	if math.IsNaN(maxDistance) {
		return 0
	}
	return math.Max(maxDistance, 0)
}

func (e *Engine) expand(p part, margin float64, fn func(part) bool) bool {
	if c, ok := p.a.Shape.(*actor.Compound); ok {
		return children(c, p.a, p.b, margin, func(child actor.Body, i int) bool {
			return e.expand(part{a: child, b: p.b, subA: i, subB: p.subB}, margin, fn)
		})
	}
	if c, ok := p.b.Shape.(*actor.Compound); ok {
		return children(c, p.b, p.a, margin, func(child actor.Body, i int) bool {
			return e.expand(part{a: p.a, b: child, subA: p.subA, subB: i}, margin, fn)
		})
	}
	if bulk, ok := p.a.Shape.(actor.BulkShape); ok {
		return triangles(bulk, p.a, p.b, margin, func(tri actor.Body, i int) bool {
			return fn(part{a: tri, b: p.b, subA: i, subB: p.subB})
		})
	}
	if bulk, ok := p.b.Shape.(actor.BulkShape); ok {
		return triangles(bulk, p.b, p.a, margin, func(tri actor.Body, i int) bool {
			return fn(part{a: p.a, b: tri, subA: p.subA, subB: i})
		})
	}
	return fn(p)
}

// children visits the parts of a compound placed at parent whose bounds come
// within margin of other
func children(c *actor.Compound, parent, other actor.Body, margin float64, visit func(actor.Body, int) bool) bool {
	bounds := other.ComputeAABB().Expand(margin)

	for i := 0; i < c.ChildCount(); i++ {
		shape, local := c.Child(i)
		child := actor.Body{Shape: shape, Transform: parent.Transform.Mul(local)}
		if !child.ComputeAABB().Overlaps(bounds) {
			continue
		}
		if !visit(child, i) {
			return false
		}
	}
	return true
}

// triangles visits the candidate triangles of a bulk shape placed at parent
// for a query against other. The region is other's bounds in the bulk frame,
// grown by margin.
func triangles(bulk actor.BulkShape, parent, other actor.Body, margin float64, visit func(actor.Body, int) bool) bool {
	region := other.Shape.LocalAABB().Transform(parent.Transform.Relative(other.Transform)).Expand(margin)

	more := true
	bulk.Candidates(region, func(i int) bool {
		tri, ok := bulk.Triangle(i)
		if !ok {
			return true
		}
		more = visit(actor.Body{Shape: tri, Transform: parent.Transform}, i)
		return more
	})
	return more
}
