package narrowphase

import (
	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/contact"
	"github.com/akmonengine/narrowphase/metrics"
)

// Manifold is the contact manifold of one part pair
type Manifold struct {
	contact.Manifold
	SubShapeA int
	SubShapeB int
}

// Contacts builds a manifold for every part pair within maxDistance, in
// enumeration order. Two convex shapes give at most one manifold; a shape
// resting on a mesh gets one per touched triangle.
func (e *Engine) Contacts(a, b actor.Body, maxDistance float64) []Manifold {
	if !e.Supports(a.Shape.Type(), b.Shape.Type()) {
		e.unsupported(metrics.OpContacts, a, b)
		return nil
	}

	opts := e.config.contactOptions()
	var manifolds []Manifold
	e.pairs(a, b, maxDistance, func(p part) bool {
		hit, r := e.leaf(p.a, p.b, maxDistance)
		if !hit {
			return true
		}
		m := contact.Build(p.a, p.b, r, opts)
		e.metrics.ObserveManifold(len(m.Points))
		manifolds = append(manifolds, Manifold{Manifold: m, SubShapeA: p.subA, SubShapeB: p.subB})
		return true
	})

	e.metrics.ObserveQuery(metrics.OpContacts, a.Shape.Type(), b.Shape.Type(), len(manifolds) > 0)
	return manifolds
}
