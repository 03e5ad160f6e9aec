package kernel

import (
	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/geom"
	"github.com/akmonengine/narrowphase/query"
	"github.com/go-gl/mathgl/mgl64"
)

// SphereSphere computes the distance between two spheres.
// Coincident centres separate along +Y.
func SphereSphere(a, b actor.Body, maxDistance float64, opts Options) (bool, query.DistanceResult) {
	sa := a.Shape.(*actor.Sphere)
	sb := b.Shape.(*actor.Sphere)

	ca := a.Transform.Apply(sa.Center)
	cb := b.Transform.Apply(sb.Center)

	delta := cb.Sub(ca)
	dist := delta.Len()
	normal := up
	if dist > geom.Epsilon {
		normal = delta.Mul(1 / dist)
	}

	r := pair(ca, cb, normal, dist, sa.Radius, sb.Radius)
	r.FeatureA = actor.VertexFeature(0)
	r.FeatureB = actor.VertexFeature(0)
	return within(r, maxDistance)
}

// SphereCapsule computes the distance between a sphere (A) and a capsule (B).
// A centre lying on the capsule axis separates along a perpendicular of the axis.
func SphereCapsule(a, b actor.Body, maxDistance float64, opts Options) (bool, query.DistanceResult) {
	s := a.Shape.(*actor.Sphere)
	c := b.Shape.(*actor.Capsule)

	center := a.Transform.Apply(s.Center)
	p0 := b.Transform.Apply(c.P0)
	p1 := b.Transform.Apply(c.P1)

	q, t := geom.ClosestPointOnSegment(center, p0, p1)
	delta := q.Sub(center)
	dist := delta.Len()
	var normal mgl64.Vec3
	if dist > geom.Epsilon {
		normal = delta.Mul(1 / dist)
	} else {
		normal = fallbackNormal(p1.Sub(p0))
	}

	r := pair(center, q, normal, dist, s.Radius, c.Radius)
	r.FeatureA = actor.VertexFeature(0)
	r.FeatureB = segmentFeature(t)
	return within(r, maxDistance)
}

// CapsuleCapsule computes the distance between two capsules from the closest
// points of their axes. Intersecting axes separate along the cross product of
// the axes, oriented from A toward B.
func CapsuleCapsule(a, b actor.Body, maxDistance float64, opts Options) (bool, query.DistanceResult) {
	ca := a.Shape.(*actor.Capsule)
	cb := b.Shape.(*actor.Capsule)

	a0, a1 := a.Transform.Apply(ca.P0), a.Transform.Apply(ca.P1)
	b0, b1 := b.Transform.Apply(cb.P0), b.Transform.Apply(cb.P1)

	s, t, c1, c2 := geom.ClosestSegmentSegment(a0, a1, b0, b1)
	delta := c2.Sub(c1)
	dist := delta.Len()

	var normal mgl64.Vec3
	if dist > geom.Epsilon {
		normal = delta.Mul(1 / dist)
	} else {
		axisA, axisB := a1.Sub(a0), b1.Sub(b0)
		cross := axisA.Cross(axisB)
		switch {
		case cross.LenSqr() > geom.Epsilon*geom.Epsilon:
			normal = cross.Normalize()
			if normal.Dot(b.Center().Sub(a.Center())) < 0 {
				normal = normal.Mul(-1)
			}
		case axisA.LenSqr() > geom.Epsilon*geom.Epsilon:
			normal = geom.Perpendicular(axisA)
		default:
			normal = fallbackNormal(axisB)
		}
	}

	r := pair(c1, c2, normal, dist, ca.Radius, cb.Radius)
	r.FeatureA = segmentFeature(s)
	r.FeatureB = segmentFeature(t)
	return within(r, maxDistance)
}
