// Package kernel implements the primitive distance kernels: closed-form
// closest-feature procedures for sphere, capsule, box and triangle pairs, and
// the GJK/EPA fallback for every other convex pair.
//
// Every kernel takes the two placed shapes in a fixed order and returns the
// full signed result. The returned bool tells whether the distance is within
// maxDistance; the result is filled either way.
//
// Conventions shared by all kernels:
//   - NormalA is the unit direction from A toward B, NormalB its opposite
//   - PointB - PointA = Distance * NormalA (up to clamping on feature borders)
//   - when the shapes overlap, moving B by -Distance along NormalA separates them
package kernel

import (
	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/epa"
	"github.com/akmonengine/narrowphase/geom"
	"github.com/akmonengine/narrowphase/gjk"
	"github.com/akmonengine/narrowphase/query"
	"github.com/go-gl/mathgl/mgl64"
)

// Func is the signature shared by every kernel
type Func func(a, b actor.Body, maxDistance float64, opts Options) (bool, query.DistanceResult)

// Observer receives the iteration count of every iterative solver run.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveSolver(algorithm string, iterations int, converged bool)
}

// Options carries the solver budgets and the optional observer
type Options struct {
	GJK      gjk.Settings
	EPA      epa.Settings
	Observer Observer
}

// DefaultOptions returns the solver defaults with no observer
func DefaultOptions() Options {
	return Options{GJK: gjk.DefaultSettings(), EPA: epa.DefaultSettings()}
}

func (o Options) observe(algorithm string, iterations int, converged bool) {
	if o.Observer != nil {
		o.Observer.ObserveSolver(algorithm, iterations, converged)
	}
}

// Solver names reported to the Observer
const (
	AlgorithmGJK = "gjk"
	AlgorithmEPA = "epa"
)

var up = mgl64.Vec3{0, 1, 0}

func within(r query.DistanceResult, maxDistance float64) (bool, query.DistanceResult) {
	return r.Distance <= maxDistance, r
}

// pair fills the symmetric part of a result from the closest points of the
// cores, the unit normal from A toward B and the two radii.
func pair(coreA, coreB, normal mgl64.Vec3, distance, radiusA, radiusB float64) query.DistanceResult {
	r := query.NewDistanceResult()
	r.Distance = distance - radiusA - radiusB
	r.NormalA = normal
	r.NormalB = normal.Mul(-1)
	r.PointA = coreA.Add(normal.Mul(radiusA))
	r.PointB = coreB.Sub(normal.Mul(radiusB))
	return r
}

// segmentFeature maps a parameter on segment P0-P1 to vertex 0, vertex 1 or the
// side edge
func segmentFeature(t float64) actor.Feature {
	switch {
	case t <= 0:
		return actor.VertexFeature(0)
	case t >= 1:
		return actor.VertexFeature(1)
	default:
		return actor.EdgeFeature(0)
	}
}

// triangleEdgeFeature maps a parameter on triangle edge i to the edge or one
// of its end vertices
func triangleEdgeFeature(edge int, t float64) actor.Feature {
	switch {
	case t <= 0:
		return actor.VertexFeature(edge)
	case t >= 1:
		return actor.VertexFeature((edge + 1) % 3)
	default:
		return actor.EdgeFeature(edge)
	}
}

// triangleFace returns the triangle side whose normal agrees with outward
func triangleFace(outward, frontNormal mgl64.Vec3) actor.Feature {
	if outward.Dot(frontNormal) < 0 {
		return actor.FaceFeature(1)
	}
	return actor.FaceFeature(0)
}

// fallbackNormal builds a unit normal when closest points coincide: a
// direction perpendicular to the given axis, +Y when the axis is zero too.
func fallbackNormal(axis mgl64.Vec3) mgl64.Vec3 {
	if axis.LenSqr() > geom.Epsilon*geom.Epsilon {
		return geom.Perpendicular(axis)
	}
	return up
}

// toWorld maps a result computed in the local frame of b (relative to offset
// in that frame) to world space.
func toWorld(r query.DistanceResult, t actor.Transform, offset mgl64.Vec3) query.DistanceResult {
	r.PointA = t.Apply(r.PointA.Add(offset))
	r.PointB = t.Apply(r.PointB.Add(offset))
	r.NormalA = t.Rotate(r.NormalA)
	r.NormalB = t.Rotate(r.NormalB)
	return r
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
