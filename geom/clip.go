package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ClipTolerance keeps points lying on a clipping plane
const ClipTolerance = 1e-9

// ClipPolygon clips a polygon (or a segment, or a point) against the half
// space {x : (x - planePoint).planeNormal >= 0}, Sutherland-Hodgman style.
// Two-point inputs are treated as a segment, not as a closed loop.
func ClipPolygon(polygon []mgl64.Vec3, planePoint, planeNormal mgl64.Vec3) []mgl64.Vec3 {
	switch len(polygon) {
	case 0:
		return nil
	case 1:
		if polygon[0].Sub(planePoint).Dot(planeNormal) >= -ClipTolerance {
			return polygon
		}
		return nil
	case 2:
		return clipSegment(polygon[0], polygon[1], planePoint, planeNormal)
	}

	output := make([]mgl64.Vec3, 0, len(polygon)+1)
	for i := 0; i < len(polygon); i++ {
		current := polygon[i]
		next := polygon[(i+1)%len(polygon)]

		currentDist := current.Sub(planePoint).Dot(planeNormal)
		nextDist := next.Sub(planePoint).Dot(planeNormal)

		if currentDist >= -ClipTolerance {
			output = append(output, current)
			if nextDist < -ClipTolerance {
				output = append(output, lineIntersectPlane(current, next, currentDist, nextDist))
			}
		} else if nextDist >= -ClipTolerance {
			output = append(output, lineIntersectPlane(current, next, currentDist, nextDist))
		}
	}
	return output
}

func clipSegment(a, b, planePoint, planeNormal mgl64.Vec3) []mgl64.Vec3 {
	da := a.Sub(planePoint).Dot(planeNormal)
	db := b.Sub(planePoint).Dot(planeNormal)
	switch {
	case da >= -ClipTolerance && db >= -ClipTolerance:
		return []mgl64.Vec3{a, b}
	case da < -ClipTolerance && db < -ClipTolerance:
		return nil
	case da < -ClipTolerance:
		return []mgl64.Vec3{lineIntersectPlane(a, b, da, db), b}
	default:
		return []mgl64.Vec3{a, lineIntersectPlane(a, b, da, db)}
	}
}

// lineIntersectPlane returns the point of segment p1-p2 where the signed
// plane distance, d1 at p1 and d2 at p2, crosses zero
func lineIntersectPlane(p1, p2 mgl64.Vec3, d1, d2 float64) mgl64.Vec3 {
	denom := d1 - d2
	if math.Abs(denom) < 1e-15 {
		return p1
	}
	t := Clamp01(d1 / denom)
	return p1.Add(p2.Sub(p1).Mul(t))
}

// ClipToPolygonPrism clips points against the side planes of a convex polygon
// with unit normal n: the result lies within the infinite prism swept by the
// polygon along n.
func ClipToPolygonPrism(points []mgl64.Vec3, polygon []mgl64.Vec3, n mgl64.Vec3) []mgl64.Vec3 {
	if len(polygon) < 3 {
		return points
	}
	center := Centroid(polygon)
	output := points
	for i := 0; i < len(polygon) && len(output) > 0; i++ {
		v1 := polygon[i]
		v2 := polygon[(i+1)%len(polygon)]
		sideNormal := n.Cross(v2.Sub(v1))
		l := sideNormal.Len()
		if l < 1e-12 {
			continue
		}
		sideNormal = sideNormal.Mul(1 / l)
		if center.Sub(v1).Dot(sideNormal) < 0 {
			sideNormal = sideNormal.Mul(-1)
		}
		output = ClipPolygon(output, v1, sideNormal)
	}
	return output
}

// Centroid returns the average of the points
func Centroid(points []mgl64.Vec3) mgl64.Vec3 {
	if len(points) == 0 {
		return mgl64.Vec3{}
	}
	var sum mgl64.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(points)))
}
