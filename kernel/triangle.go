package kernel

import (
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/geom"
	"github.com/akmonengine/narrowphase/query"
	"github.com/go-gl/mathgl/mgl64"
)

// SphereTriangle computes the distance between a sphere (A) and a two-sided
// triangle (B) in the local frame of the triangle. A centre lying on the
// triangle leaves through the front face.
func SphereTriangle(a, b actor.Body, maxDistance float64, opts Options) (bool, query.DistanceResult) {
	s := a.Shape.(*actor.Sphere)
	tri := b.Shape.(*actor.Triangle)

	center := b.Transform.ApplyInverse(a.Transform.Apply(s.Center))

	var r query.DistanceResult
	if tri.IsDegenerate() {
		r = segmentEdge(center, center, tri, s.Radius)
	} else {
		r = pointTriangle(center, tri, s.Radius)
	}
	r.FeatureA = actor.VertexFeature(0)
	return within(toWorld(r, b.Transform, mgl64.Vec3{}), maxDistance)
}

func pointTriangle(p mgl64.Vec3, tri *actor.Triangle, radius float64) query.DistanceResult {
	front := tri.Normal()
	q, _, feature := geom.ClosestPointOnTriangle(p, tri.V[0], tri.V[1], tri.V[2])

	delta := q.Sub(p)
	dist := delta.Len()
	var normal mgl64.Vec3
	if dist > geom.Epsilon {
		normal = delta.Mul(1 / dist)
	} else {
		normal = front.Mul(-1)
	}

	r := pair(p, q, normal, dist, radius, 0)
	r.FeatureB = feature
	if feature.IsFace() {
		r.FeatureB = triangleFace(r.NormalB, front)
	}
	return r
}

// segmentEdge treats a degenerate triangle as its longest edge and measures
// segment p0-p1 inflated by radius against it. A is the segment.
func segmentEdge(p0, p1 mgl64.Vec3, tri *actor.Triangle, radius float64) query.DistanceResult {
	e0, e1, edge := tri.LongestEdge()
	s, t, c1, c2 := geom.ClosestSegmentSegment(p0, p1, e0, e1)

	delta := c2.Sub(c1)
	dist := delta.Len()
	var normal mgl64.Vec3
	if dist > geom.Epsilon {
		normal = delta.Mul(1 / dist)
	} else {
		normal = fallbackNormal(e1.Sub(e0))
	}

	r := pair(c1, c2, normal, dist, radius, 0)
	r.FeatureA = segmentFeature(s)
	r.FeatureB = triangleEdgeFeature(edge, t)
	return r
}

// CapsuleTriangle computes the distance between a capsule (A) and a two-sided
// triangle (B) in the local frame of the triangle.
//
// When the capsule axis pierces the triangle, closest points alone say
// nothing about the penetration: the capsule leaves through the plane on the
// side of the endpoint with the smaller plane offset, and the depth is that
// offset plus the radius.
func CapsuleTriangle(a, b actor.Body, maxDistance float64, opts Options) (bool, query.DistanceResult) {
	c := a.Shape.(*actor.Capsule)
	tri := b.Shape.(*actor.Triangle)

	toTriangle := func(p mgl64.Vec3) mgl64.Vec3 {
		return b.Transform.ApplyInverse(a.Transform.Apply(p))
	}
	p0, p1 := toTriangle(c.P0), toTriangle(c.P1)

	var r query.DistanceResult
	switch {
	case tri.IsDegenerate():
		r = segmentEdge(p0, p1, tri, c.Radius)
	case p1.Sub(p0).LenSqr() <= geom.Epsilon*geom.Epsilon:
		r = pointTriangle(p0, tri, c.Radius)
		r.FeatureA = actor.VertexFeature(0)
	default:
		if hit, pierce := piercingSegment(p0, p1, tri, c.Radius); hit {
			r = pierce
		} else {
			r = segmentTriangle(p0, p1, tri, c.Radius)
		}
	}
	return within(toWorld(r, b.Transform, mgl64.Vec3{}), maxDistance)
}

func piercingSegment(p0, p1 mgl64.Vec3, tri *actor.Triangle, radius float64) (bool, query.DistanceResult) {
	t, _, _, ok := geom.RayTriangle(p0, p1.Sub(p0), tri.V[0], tri.V[1], tri.V[2])
	if !ok || t > 1 {
		return false, query.DistanceResult{}
	}

	front := tri.Normal()
	d := [2]float64{p0.Sub(tri.V[0]).Dot(front), p1.Sub(tri.V[0]).Dot(front)}
	k := 0
	if math.Abs(d[1]) < math.Abs(d[0]) {
		k = 1
	}
	side := sign(d[k])
	if d[k] == 0 {
		side = -sign(d[1-k])
	}
	p := [2]mgl64.Vec3{p0, p1}[k]

	// B moves along -side*front to release the endpoint
	normalA := front.Mul(side)
	projected := p.Sub(front.Mul(d[k]))
	q, _, _ := geom.ClosestPointOnTriangle(projected, tri.V[0], tri.V[1], tri.V[2])

	r := query.NewDistanceResult()
	r.Distance = -math.Abs(d[k]) - radius
	r.NormalA = normalA
	r.NormalB = normalA.Mul(-1)
	r.PointA = p.Add(normalA.Mul(radius))
	r.PointB = q
	r.FeatureA = actor.VertexFeature(k)
	r.FeatureB = triangleFace(r.NormalB, front)
	return true, r
}

// segmentTriangle measures a segment that does not pierce the triangle.
// Candidates in order: both endpoints against the triangle, then the segment
// against the three edges.
func segmentTriangle(p0, p1 mgl64.Vec3, tri *actor.Triangle, radius float64) query.DistanceResult {
	front := tri.Normal()

	best := math.Inf(1)
	var onSegment, onTriangle mgl64.Vec3
	var featureA, featureB actor.Feature

	for k, p := range [2]mgl64.Vec3{p0, p1} {
		q, _, f := geom.ClosestPointOnTriangle(p, tri.V[0], tri.V[1], tri.V[2])
		if d := q.Sub(p).LenSqr(); d < best {
			best, onSegment, onTriangle = d, p, q
			featureA, featureB = actor.VertexFeature(k), f
		}
	}
	for e := 0; e < 3; e++ {
		s, t, c1, c2 := geom.ClosestSegmentSegment(p0, p1, tri.V[e], tri.V[(e+1)%3])
		if d := c2.Sub(c1).LenSqr(); d < best {
			best, onSegment, onTriangle = d, c1, c2
			featureA, featureB = segmentFeature(s), triangleEdgeFeature(e, t)
		}
	}

	dist := math.Sqrt(best)
	var normal mgl64.Vec3
	if dist > geom.Epsilon {
		normal = onTriangle.Sub(onSegment).Mul(1 / dist)
	} else {
		// touching: the segment midpoint tells the side
		mid := p0.Add(p1).Mul(0.5)
		normal = front.Mul(-sign(mid.Sub(tri.V[0]).Dot(front)))
	}

	r := pair(onSegment, onTriangle, normal, dist, radius, 0)
	r.FeatureA = featureA
	r.FeatureB = featureB
	if featureB.IsFace() {
		r.FeatureB = triangleFace(r.NormalB, front)
	}
	return r
}
