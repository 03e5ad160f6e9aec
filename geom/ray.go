package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray parameters are expressed in units of the (unnormalized) direction:
// the hit point is origin + direction*t.

// RaySphere intersects a ray with a sphere. An origin inside the sphere hits
// at t = 0.
func RaySphere(origin, direction, center mgl64.Vec3, radius float64) (float64, mgl64.Vec3, bool) {
	m := origin.Sub(center)
	c := m.Dot(m) - radius*radius
	if c <= 0 {
		return 0, SafeNormalize(m, direction.Mul(-1)), true
	}
	b := m.Dot(direction)
	if b >= 0 {
		return 0, mgl64.Vec3{}, false
	}
	a := direction.Dot(direction)
	disc := b*b - a*c
	if disc < 0 || a <= Epsilon {
		return 0, mgl64.Vec3{}, false
	}
	t := math.Max(0, (-b-math.Sqrt(disc))/a)
	hit := origin.Add(direction.Mul(t))
	return t, SafeNormalize(hit.Sub(center), direction.Mul(-1)), true
}

// RayCapsule intersects a ray with the capsule p0-p1 of the given radius and
// returns the first hit and the outward normal there.
func RayCapsule(origin, direction, p0, p1 mgl64.Vec3, radius float64) (float64, mgl64.Vec3, bool) {
	axis := p1.Sub(p0)
	l2 := axis.Dot(axis)
	if l2 <= Epsilon {
		return RaySphere(origin, direction, p0, radius)
	}

	best := math.Inf(1)
	var normal mgl64.Vec3
	found := false

	m := origin.Sub(p0)
	md := m.Dot(axis)
	nd := direction.Dot(axis)
	dp := direction.Sub(axis.Mul(nd / l2))
	mp := m.Sub(axis.Mul(md / l2))
	a := dp.Dot(dp)
	b := mp.Dot(dp)
	c := mp.Dot(mp) - radius*radius

	if c <= 0 && md >= 0 && md <= l2 {
		// origin inside the cylinder part
		return 0, SafeNormalize(mp, Perpendicular(axis)), true
	}

	if a > Epsilon && c > 0 && b < 0 {
		disc := b*b - a*c
		if disc >= 0 {
			t := (-b - math.Sqrt(disc)) / a
			s := (md + t*nd) / l2
			if t >= 0 && s >= 0 && s <= 1 {
				best = t
				hit := origin.Add(direction.Mul(t))
				normal = SafeNormalize(hit.Sub(p0.Add(axis.Mul(s))), direction.Mul(-1))
				found = true
			}
		}
	}

	for _, cap := range [2]mgl64.Vec3{p0, p1} {
		if t, n, ok := RaySphere(origin, direction, cap, radius); ok && t < best {
			best, normal, found = t, n, true
		}
	}
	return best, normal, found
}

// RayRoundedPolygon intersects a ray with a convex polygon inflated by radius:
// the two offset copies of the polygon plus a capsule around every edge.
// A degenerate polygon contributes its edge capsules only.
func RayRoundedPolygon(origin, direction mgl64.Vec3, poly []mgl64.Vec3, radius float64) (float64, mgl64.Vec3, bool) {
	best := math.Inf(1)
	var normal mgl64.Vec3
	found := false

	n := PolygonNormal(poly)
	if n != (mgl64.Vec3{}) && len(poly) >= 3 {
		offset := origin.Sub(poly[0]).Dot(n)
		projected := origin.Sub(n.Mul(offset))
		if math.Abs(offset) <= radius && PointInPolygon(projected, poly, n, 0) {
			side := n
			if offset < 0 {
				side = n.Mul(-1)
			}
			return 0, side, true
		}

		for _, side := range [2]mgl64.Vec3{n, n.Mul(-1)} {
			denom := direction.Dot(side)
			if denom >= 0 {
				continue
			}
			planePoint := poly[0].Add(side.Mul(radius))
			dist := origin.Sub(planePoint).Dot(side)
			if dist < 0 {
				continue
			}
			t := -dist / denom
			hit := origin.Add(direction.Mul(t)).Sub(side.Mul(radius))
			if PointInPolygon(hit, poly, n, 1e-12) && t < best {
				best, normal, found = t, side, true
			}
		}
	}

	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		if len(poly) == 2 && i == 1 {
			break
		}
		if t, nrm, ok := RayCapsule(origin, direction, a, b, radius); ok && t < best {
			best, normal, found = t, nrm, true
		}
	}
	if len(poly) == 1 {
		if t, nrm, ok := RaySphere(origin, direction, poly[0], radius); ok && t < best {
			best, normal, found = t, nrm, true
		}
	}
	return best, normal, found
}

// RayRoundedPolygons returns the earliest hit among a set of rounded
// polygons. Their union is the rounded shape; each polygon lies inside it.
func RayRoundedPolygons(origin, direction mgl64.Vec3, polys [][]mgl64.Vec3, radius float64) (float64, mgl64.Vec3, bool) {
	best := math.Inf(1)
	var normal mgl64.Vec3
	found := false
	for _, poly := range polys {
		if t, n, ok := RayRoundedPolygon(origin, direction, poly, radius); ok && t < best {
			best, normal, found = t, n, true
		}
	}
	return best, normal, found
}

// RayTriangle is the two-sided Möller–Trumbore ray/triangle test. It returns
// the ray parameter and the barycentric coordinates of the hit along ab and ac.
func RayTriangle(origin, direction, a, b, c mgl64.Vec3) (t, u, v float64, ok bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := direction.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) <= Epsilon*e1.Len()*e2.Len()*direction.Len() {
		return 0, 0, 0, false
	}
	inv := 1 / det
	s := origin.Sub(a)
	u = s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	q := s.Cross(e1)
	v = direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	t = e2.Dot(q) * inv
	if t < 0 {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
