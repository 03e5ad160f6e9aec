package kernel

import (
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/geom"
	"github.com/akmonengine/narrowphase/query"
	"github.com/go-gl/mathgl/mgl64"
)

// boxFeatureTolerance is how close to a face a clamped coordinate must be to
// count as lying on it
const boxFeatureTolerance = 1e-9

// SphereBox computes the distance between a sphere (A) and a box (B) in the
// local frame of the box.
//
// An interior centre is pushed out through the shallowest face. Exact ties
// resolve in the order x, y, z and to the positive side when the centre sits
// on the mid plane.
func SphereBox(a, b actor.Body, maxDistance float64, opts Options) (bool, query.DistanceResult) {
	s := a.Shape.(*actor.Sphere)
	box := b.Shape.(*actor.Box)

	center := b.Transform.ApplyInverse(a.Transform.Apply(s.Center)).Sub(box.Center)
	r := pointBox(center, s.Radius, box.HalfExtents)
	r.FeatureA = actor.VertexFeature(0)
	return within(toWorld(r, b.Transform, box.Center), maxDistance)
}

// pointBox is the closest-feature procedure of a ball of radius r centred on
// p against a box centred on the origin. A is the ball.
func pointBox(p mgl64.Vec3, radius float64, h mgl64.Vec3) query.DistanceResult {
	q, clamped, positive, inside := clampToBox(p, h)

	if !inside {
		delta := p.Sub(q)
		dist := delta.Len()
		outward := delta.Mul(1 / dist)
		r := pair(p, q, outward.Mul(-1), dist, radius, 0)
		r.FeatureB = actor.BoxClampFeature(clamped, positive)
		return r
	}

	// Shallowest face, strict < keeps the x, y, z order on ties
	axis := 0
	depth := h[0] - math.Abs(p[0])
	for i := 1; i < 3; i++ {
		if d := h[i] - math.Abs(p[i]); d < depth {
			axis, depth = i, d
		}
	}
	var outward mgl64.Vec3
	outward[axis] = sign(p[axis])
	q[axis] = outward[axis] * h[axis]

	r := query.NewDistanceResult()
	r.Distance = -depth - radius
	r.NormalA = outward.Mul(-1)
	r.NormalB = outward
	r.PointA = p.Sub(outward.Mul(radius))
	r.PointB = q
	r.FeatureB = actor.BoxFaceFeature(axis, p[axis] >= 0)
	return r
}

// clampToBox clamps p into the box of half extents h centred on the origin and
// reports which coordinates were clamped and on which side.
func clampToBox(p, h mgl64.Vec3) (q mgl64.Vec3, clamped, positive [3]bool, inside bool) {
	inside = true
	q = p
	for i := 0; i < 3; i++ {
		switch {
		case p[i] > h[i]:
			q[i] = h[i]
			clamped[i], positive[i] = true, true
			inside = false
		case p[i] < -h[i]:
			q[i] = -h[i]
			clamped[i] = true
			inside = false
		}
	}
	return q, clamped, positive, inside
}

// boxSurfaceFeature classifies a point on the surface of an origin-centred box
func boxSurfaceFeature(q, h mgl64.Vec3) actor.Feature {
	var onFace, positive [3]bool
	for i := 0; i < 3; i++ {
		if math.Abs(q[i]) >= h[i]-boxFeatureTolerance*(1+h[i]) {
			onFace[i] = true
			positive[i] = q[i] > 0
		}
	}
	return actor.BoxClampFeature(onFace, positive)
}

// CapsuleBox computes the distance between a capsule (A) and a box (B) in the
// local frame of the box.
//
// A separated axis is resolved exactly from the endpoint clamps and the box
// edges. An axis crossing the box uses the separating axes of a segment and a
// box: the three face normals, then the three axis x edge directions. Ties
// keep that order.
func CapsuleBox(a, b actor.Body, maxDistance float64, opts Options) (bool, query.DistanceResult) {
	c := a.Shape.(*actor.Capsule)
	box := b.Shape.(*actor.Box)

	toBox := func(p mgl64.Vec3) mgl64.Vec3 {
		return b.Transform.ApplyInverse(a.Transform.Apply(p)).Sub(box.Center)
	}
	p0, p1 := toBox(c.P0), toBox(c.P1)
	h := box.HalfExtents

	var r query.DistanceResult
	switch {
	case p1.Sub(p0).LenSqr() <= geom.Epsilon*geom.Epsilon:
		r = pointBox(p0, c.Radius, h)
		r.FeatureA = actor.VertexFeature(0)
	case segmentCrossesBox(p0, p1, h):
		r = segmentInBox(p0, p1, c.Radius, h)
	default:
		r = segmentOutsideBox(p0, p1, c.Radius, h)
	}
	return within(toWorld(r, b.Transform, box.Center), maxDistance)
}

// segmentCrossesBox is the slab test of segment p0-p1 against the box
func segmentCrossesBox(p0, p1, h mgl64.Vec3) bool {
	d := p1.Sub(p0)
	tMin, tMax := 0.0, 1.0
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < geom.Epsilon {
			if math.Abs(p0[i]) > h[i] {
				return false
			}
			continue
		}
		t1 := (-h[i] - p0[i]) / d[i]
		t2 := (h[i] - p0[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// segmentOutsideBox finds the closest points of a segment that does not reach
// the box. Candidates in order: the two endpoint clamps, then the segment
// against the twelve box edges.
func segmentOutsideBox(p0, p1 mgl64.Vec3, radius float64, h mgl64.Vec3) query.DistanceResult {
	best := math.Inf(1)
	var bestSeg, bestBox mgl64.Vec3
	bestT := 0.0

	for k, p := range [2]mgl64.Vec3{p0, p1} {
		q, _, _, _ := clampToBox(p, h)
		if d := p.Sub(q).LenSqr(); d < best {
			best, bestSeg, bestBox, bestT = d, p, q, float64(k)
		}
	}

	unit := actor.Box{HalfExtents: h}
	for e := 0; e < 12; e++ {
		edge := unit.FeaturePoints(actor.EdgeFeature(e))
		s, _, c1, c2 := geom.ClosestSegmentSegment(p0, p1, edge[0], edge[1])
		if d := c1.Sub(c2).LenSqr(); d < best {
			best, bestSeg, bestBox, bestT = d, c1, c2, s
		}
	}

	delta := bestBox.Sub(bestSeg)
	dist := delta.Len()
	var normal mgl64.Vec3
	if dist > geom.Epsilon {
		normal = delta.Mul(1 / dist)
	} else {
		// grazing contact: leave through the face nearest the segment point
		normal = geom.SafeNormalize(bestBox, up)
		normal = normal.Mul(-1)
	}

	r := pair(bestSeg, bestBox, normal, dist, radius, 0)
	r.FeatureA = segmentFeature(bestT)
	r.FeatureB = boxSurfaceFeature(bestBox, h)
	return r
}

// segmentInBox resolves a segment crossing the box with the separating axes
// of the pair, keeping the one of largest separation.
func segmentInBox(p0, p1 mgl64.Vec3, radius float64, h mgl64.Vec3) query.DistanceResult {
	u := p1.Sub(p0)

	bestSep := math.Inf(-1)
	bestAxis := -1
	var bestNormal mgl64.Vec3 // box outward normal toward the segment

	for i := 0; i < 3; i++ {
		lo, hi := math.Min(p0[i], p1[i]), math.Max(p0[i], p1[i])
		above, below := lo-h[i], -h[i]-hi
		var n mgl64.Vec3
		sep := above
		n[i] = 1
		if below > above {
			sep = below
			n[i] = -1
		}
		if sep > bestSep {
			bestSep, bestAxis, bestNormal = sep, i, n
		}
	}
	for i := 0; i < 3; i++ {
		var e mgl64.Vec3
		e[i] = 1
		l := u.Cross(e)
		length := l.Len()
		if length <= geom.Epsilon*u.Len() {
			continue
		}
		l = l.Mul(1 / length)
		s := p0.Dot(l)
		if s < 0 {
			l, s = l.Mul(-1), -s
		}
		extent := h[0]*math.Abs(l[0]) + h[1]*math.Abs(l[1]) + h[2]*math.Abs(l[2])
		if sep := s - extent; sep > bestSep {
			bestSep, bestAxis, bestNormal = sep, 3+i, l
		}
	}

	r := query.NewDistanceResult()
	r.Distance = bestSep - radius
	r.NormalA = bestNormal.Mul(-1)
	r.NormalB = bestNormal

	if bestAxis < 3 {
		i := bestAxis
		side := bestNormal[i]
		// endpoint deepest below the face
		k, p := 0, p0
		if side*p1[i] < side*p0[i] {
			k, p = 1, p1
		}
		q, _, _, _ := clampToBox(p, h)
		q[i] = side * h[i]
		r.PointA = p.Sub(bestNormal.Mul(radius))
		r.PointB = q
		r.FeatureA = actor.VertexFeature(k)
		if math.Abs(p1[i]-p0[i]) <= boxFeatureTolerance*(1+h[i]) {
			r.FeatureA = actor.EdgeFeature(0)
		}
		r.FeatureB = actor.BoxFaceFeature(i, side > 0)
		return r
	}

	// Box edge parallel to axis i on the side of the normal
	i := bestAxis - 3
	var e0, e1 mgl64.Vec3
	var signs [3]bool
	for j := 0; j < 3; j++ {
		if j == i {
			e0[j], e1[j] = -h[j], h[j]
			continue
		}
		signs[j] = bestNormal[j] >= 0
		e0[j] = sign(bestNormal[j]) * h[j]
		e1[j] = e0[j]
	}
	s, _, c1, c2 := geom.ClosestSegmentSegment(p0, p1, e0, e1)
	r.PointA = c1.Sub(bestNormal.Mul(radius))
	r.PointB = c2
	r.FeatureA = segmentFeature(s)
	r.FeatureB = actor.BoxEdgeFeature(i, signs)
	return r
}
