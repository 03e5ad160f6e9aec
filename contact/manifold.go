// Package contact builds multi-point contact manifolds from a distance result.
package contact

import (
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/geom"
	"github.com/akmonengine/narrowphase/query"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultSlop is the separation, beyond the pair distance, under which a
	// clipped point still counts as touching
	DefaultSlop = 1e-3
	// MaxPoints is the manifold capacity
	MaxPoints = 4

	// alignmentTolerance lets the A face stay the reference on near ties
	alignmentTolerance = 1e-6
)

// Side names the body that owns the reference face
type Side uint8

const (
	// ReferenceNone marks a single point contact
	ReferenceNone Side = iota
	ReferenceA
	ReferenceB
)

func (s Side) String() string {
	switch s {
	case ReferenceA:
		return "A"
	case ReferenceB:
		return "B"
	}
	return "none"
}

// Point is one contact point. Depth is the penetration along the manifold
// normal, negative when the point is a speculative (separated) contact.
type Point struct {
	Position mgl64.Vec3
	Depth    float64
}

// Manifold is a set of 1 to 4 contact points sharing one normal.
// Normal points from A toward B, like query.DistanceResult.NormalA.
type Manifold struct {
	Normal    mgl64.Vec3
	Points    []Point
	Reference Side
	// FeatureA and FeatureB are the features the points were taken from
	FeatureA actor.Feature
	FeatureB actor.Feature
}

// Options tunes manifold generation
type Options struct {
	Slop      float64
	MaxPoints int
}

// DefaultOptions returns the package defaults
func DefaultOptions() Options {
	return Options{Slop: DefaultSlop, MaxPoints: MaxPoints}
}

func (o Options) withDefaults() Options {
	if o.Slop < 0 {
		o.Slop = 0
	}
	if o.MaxPoints <= 0 || o.MaxPoints > MaxPoints {
		o.MaxPoints = MaxPoints
	}
	return o
}

// Build creates the contact manifold of two convex bodies from their distance
// result, using Sutherland-Hodgman clipping.
//
// Algorithm:
//  1. Vertex and edge pairs, and pairs without a polytope face, give one point
//  2. Otherwise the supporting face better aligned with the normal is the
//     reference (A wins ties), the other body's supporting feature is incident
//  3. Clip the incident feature against the side planes of the reference face
//  4. Keep points whose separation from the reference plane, minus the
//     incident margin, is at most max(distance, 0) + slop; project them onto
//     the reference face
//  5. Fall back to the closest points when nothing survives, reduce to
//     MaxPoints deterministically
func Build(a, b actor.Body, r query.DistanceResult, opts Options) Manifold {
	opts = opts.withDefaults()
	m := Manifold{Normal: r.NormalA, FeatureA: r.FeatureA, FeatureB: r.FeatureB}

	shapeA, okA := a.Convex()
	shapeB, okB := b.Convex()
	if !okA || !okB || !(r.FeatureA.IsFace() || r.FeatureB.IsFace()) {
		return single(m, r)
	}

	n := r.NormalA
	faceA, normalA, hasA := supportingFace(a, shapeA, n)
	faceB, normalB, hasB := supportingFace(b, shapeB, n.Mul(-1))

	var ref, inc actor.Body
	var refShape, incShape actor.Convex
	var refFace, incFeature actor.Feature
	var refNormal mgl64.Vec3
	switch {
	case hasA && (!hasB || normalA.Dot(n) >= normalB.Dot(n.Mul(-1))-alignmentTolerance):
		m.Reference = ReferenceA
		ref, refShape, refFace, refNormal = a, shapeA, faceA, normalA
		inc, incShape = b, shapeB
		incFeature = shapeB.SupportFeature(b.Transform.RotateInverse(n.Mul(-1)))
		m.FeatureA, m.FeatureB = faceA, incFeature
	case hasB:
		m.Reference = ReferenceB
		ref, refShape, refFace, refNormal = b, shapeB, faceB, normalB
		inc, incShape = a, shapeA
		incFeature = shapeA.SupportFeature(a.Transform.RotateInverse(n))
		m.FeatureA, m.FeatureB = incFeature, faceB
	default:
		return single(m, r)
	}

	reference := world(ref, refShape.FeaturePoints(refFace))
	incident := world(inc, incShape.FeaturePoints(incFeature))
	clipped := geom.ClipToPolygonPrism(incident, reference, refNormal)

	limit := math.Max(r.Distance, 0) + opts.Slop
	margin := refShape.Margin() + incShape.Margin()
	for _, p := range clipped {
		offset := p.Sub(reference[0]).Dot(refNormal)
		separation := offset - margin
		if separation > limit {
			continue
		}
		m.Points = append(m.Points, Point{
			Position: p.Sub(refNormal.Mul(offset)),
			Depth:    -separation,
		})
	}

	if len(m.Points) == 0 {
		m.FeatureA, m.FeatureB = r.FeatureA, r.FeatureB
		return single(m, r)
	}
	if len(m.Points) > opts.MaxPoints {
		m.Points = reduce(m.Points, n, opts.MaxPoints)
	}
	return m
}

// single is the one-point manifold halfway between the closest points
func single(m Manifold, r query.DistanceResult) Manifold {
	m.Reference = ReferenceNone
	m.Points = []Point{{
		Position: r.PointA.Add(r.PointB).Mul(0.5),
		Depth:    -r.Distance,
	}}
	return m
}

// supportingFace returns the face of a polytope most aligned with the world
// direction, and its world normal
func supportingFace(body actor.Body, shape actor.Convex, direction mgl64.Vec3) (actor.Feature, mgl64.Vec3, bool) {
	switch shape.Type() {
	case actor.ShapeTypeBox, actor.ShapeTypeTriangle, actor.ShapeTypeConvexHull:
	default:
		return actor.Feature{}, mgl64.Vec3{}, false
	}
	face := shape.SupportFeature(body.Transform.RotateInverse(direction))
	if !face.IsFace() {
		return actor.Feature{}, mgl64.Vec3{}, false
	}
	return face, body.Transform.Rotate(shape.FaceNormal(face)), true
}

func world(body actor.Body, points []mgl64.Vec3) []mgl64.Vec3 {
	result := make([]mgl64.Vec3, len(points))
	for i, point := range points {
		result[i] = body.Transform.Apply(point)
	}
	return result
}

// reduce keeps at most limit points: the deepest, the farthest from it, the
// one spanning the largest triangle with both, then the one adding the most
// area outside that triangle. Ties keep the earlier point.
func reduce(points []Point, normal mgl64.Vec3, limit int) []Point {
	chosen := make([]int, 0, limit)

	deepest := 0
	for i := range points {
		if points[i].Depth > points[deepest].Depth {
			deepest = i
		}
	}
	chosen = append(chosen, deepest)

	pick := func(score func(p mgl64.Vec3) float64) {
		best, bestScore := -1, math.Inf(-1)
		for i := range points {
			if contains(chosen, i) {
				continue
			}
			if s := score(points[i].Position); s > bestScore {
				best, bestScore = i, s
			}
		}
		if best >= 0 {
			chosen = append(chosen, best)
		}
	}

	p0 := points[deepest].Position
	if limit > 1 {
		pick(func(p mgl64.Vec3) float64 { return p.Sub(p0).LenSqr() })
	}
	if limit > 2 {
		p1 := points[chosen[1]].Position
		pick(func(p mgl64.Vec3) float64 {
			return math.Abs(p1.Sub(p0).Cross(p.Sub(p0)).Dot(normal))
		})
	}
	if limit > 3 {
		tri := [3]mgl64.Vec3{p0, points[chosen[1]].Position, points[chosen[2]].Position}
		orientation := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0])).Dot(normal)
		pick(func(p mgl64.Vec3) float64 {
			// the most negative edge area is the area added outside the triangle
			added := 0.0
			for i := 0; i < 3; i++ {
				e0, e1 := tri[i], tri[(i+1)%3]
				area := e1.Sub(e0).Cross(p.Sub(e0)).Dot(normal)
				if orientation < 0 {
					area = -area
				}
				added = math.Max(added, -area)
			}
			return added
		})
	}

	result := make([]Point, len(chosen))
	for i, index := range chosen {
		result[i] = points[index]
	}
	return result
}

func contains(indices []int, index int) bool {
	for _, i := range indices {
		if i == index {
			return true
		}
	}
	return false
}
