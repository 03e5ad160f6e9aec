// Package geom holds the exact closest-point and ray primitives shared by the
// distance kernels, the convex engine and the sweep engine.
//
// References:
//   - Ericson: "Real-Time Collision Detection" (2004), chapter 5
package geom

import (
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the squared-length threshold under which a segment or a cross
// product counts as degenerate
const Epsilon = 1e-12

// Clamp01 clamps x to [0, 1]
func Clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// ClosestPointOnSegment returns the point of segment ab closest to p and its
// parameter along ab
func ClosestPointOnSegment(p, a, b mgl64.Vec3) (mgl64.Vec3, float64) {
	ab := b.Sub(a)
	denom := ab.Dot(ab)
	if denom <= Epsilon {
		return a, 0
	}
	t := Clamp01(p.Sub(a).Dot(ab) / denom)
	return a.Add(ab.Mul(t)), t
}

// ClosestSegmentSegment computes the closest points c1 = p1 + s*(q1-p1) and
// c2 = p2 + t*(q2-p2) between two segments. Parallel overlapping segments
// resolve to the middle of the overlap so the result does not depend on
// endpoint order. Zero-length segments degrade to point queries.
func ClosestSegmentSegment(p1, q1, p2, q2 mgl64.Vec3) (s, t float64, c1, c2 mgl64.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	switch {
	case a <= Epsilon && e <= Epsilon:
		s, t = 0, 0
	case a <= Epsilon:
		s = 0
		t = Clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e <= Epsilon {
			t = 0
			s = Clamp01(-c / a)
			break
		}

		b := d1.Dot(d2)
		denom := a*e - b*b
		if denom > Epsilon*a*e {
			s = Clamp01((b*f - c*e) / denom)
		} else {
			// Parallel: middle of the projected overlap, else the nearest end
			t0 := p2.Sub(p1).Dot(d1) / a
			t1 := q2.Sub(p1).Dot(d1) / a
			lo := math.Max(0, math.Min(t0, t1))
			hi := math.Min(1, math.Max(t0, t1))
			switch {
			case lo <= hi:
				s = (lo + hi) / 2
			case math.Max(t0, t1) < 0:
				s = 0
			default:
				s = 1
			}
		}

		t = (b*s + f) / e
		if t < 0 {
			t = 0
			s = Clamp01(-c / a)
		} else if t > 1 {
			t = 1
			s = Clamp01((b - c) / a)
		}
	}

	c1 = p1.Add(d1.Mul(s))
	c2 = p2.Add(d2.Mul(t))
	return s, t, c1, c2
}

// LineLineParams returns the unclamped parameters of the closest points of
// the infinite lines p1 + s*d1 and p2 + t*d2. ok is false for parallel lines.
func LineLineParams(p1, d1, p2, d2 mgl64.Vec3) (s, t float64, ok bool) {
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	b := d1.Dot(d2)
	c := d1.Dot(r)
	f := d2.Dot(r)
	denom := a*e - b*b
	if denom <= Epsilon*a*e || a <= Epsilon || e <= Epsilon {
		return 0, 0, false
	}
	s = (b*f - c*e) / denom
	t = (a*f - b*c) / denom
	return s, t, true
}

// ClosestPointOnTriangle returns the point of triangle abc closest to p, its
// barycentric weights (for a, b, c) and the triangle feature holding it:
// vertex i, edge i (from vertex i to i+1) or face 0.
// Degenerate triangles resolve to the closest of their edges.
func ClosestPointOnTriangle(p, a, b, c mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3, actor.Feature) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, mgl64.Vec3{1, 0, 0}, actor.VertexFeature(0)
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, mgl64.Vec3{0, 1, 0}, actor.VertexFeature(1)
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 && d1-d3 > 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v)), mgl64.Vec3{1 - v, v, 0}, actor.EdgeFeature(0)
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, mgl64.Vec3{0, 0, 1}, actor.VertexFeature(2)
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 && d2-d6 > 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w)), mgl64.Vec3{1 - w, 0, w}, actor.EdgeFeature(2)
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 && (d4-d3)+(d5-d6) > 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w)), mgl64.Vec3{0, 1 - w, w}, actor.EdgeFeature(1)
	}

	denom := va + vb + vc
	n := ab.Cross(ac)
	if denom <= Epsilon*n.LenSqr() || n.LenSqr() <= Epsilon*(ab.LenSqr()+ac.LenSqr()) {
		return closestOnTriangleEdges(p, a, b, c)
	}
	v := vb / denom
	w := vc / denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w)), mgl64.Vec3{1 - v - w, v, w}, actor.FaceFeature(0)
}

func closestOnTriangleEdges(p, a, b, c mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3, actor.Feature) {
	verts := [3]mgl64.Vec3{a, b, c}
	bestDist := math.Inf(1)
	var best mgl64.Vec3
	var bary mgl64.Vec3
	var feature actor.Feature
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		q, t := ClosestPointOnSegment(p, verts[i], verts[j])
		if d := q.Sub(p).LenSqr(); d < bestDist {
			bestDist = d
			best = q
			bary = mgl64.Vec3{}
			bary[i] = 1 - t
			bary[j] = t
			switch {
			case t <= 0:
				feature = actor.VertexFeature(i)
			case t >= 1:
				feature = actor.VertexFeature(j)
			default:
				feature = actor.EdgeFeature(i)
			}
		}
	}
	return best, bary, feature
}

// Perpendicular returns a unit vector orthogonal to v, or +Y when v is zero
func Perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l <= 1e-12 {
		return mgl64.Vec3{0, 1, 0}
	}
	t, _ := actor.TangentBasis(v.Mul(1 / l))
	return t
}

// SafeNormalize returns v/|v|, or fallback when v is (numerically) zero
func SafeNormalize(v, fallback mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l <= 1e-12 {
		return fallback
	}
	return v.Mul(1 / l)
}

// PointInPolygon tests whether p, assumed on the plane of the convex CCW
// polygon with unit normal n, lies inside it within tolerance
func PointInPolygon(p mgl64.Vec3, poly []mgl64.Vec3, n mgl64.Vec3, tolerance float64) bool {
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		edge := b.Sub(a)
		l := edge.Len()
		if l <= 1e-12 {
			continue
		}
		// inward edge normal
		inward := n.Cross(edge).Mul(1 / l)
		if p.Sub(a).Dot(inward) < -tolerance {
			return false
		}
	}
	return true
}

// PolygonNormal returns the unit Newell normal of a polygon, zero if degenerate
func PolygonNormal(poly []mgl64.Vec3) mgl64.Vec3 {
	var n mgl64.Vec3
	for i := range poly {
		cur := poly[i]
		next := poly[(i+1)%len(poly)]
		n[0] += (cur.Y() - next.Y()) * (cur.Z() + next.Z())
		n[1] += (cur.Z() - next.Z()) * (cur.X() + next.X())
		n[2] += (cur.X() - next.X()) * (cur.Y() + next.Y())
	}
	return SafeNormalize(n, mgl64.Vec3{})
}
