// Package query holds the value types returned by narrow-phase queries.
package query

import (
	"github.com/akmonengine/narrowphase/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// NoSubShape marks a result that does not come from a composite child
const NoSubShape = -1

// DistanceResult describes the closest points between two shapes.
// Distance is signed: negative values are penetration depths.
// NormalA points from A toward B and is the outward normal of A at PointA.
type DistanceResult struct {
	Distance float64
	PointA   mgl64.Vec3
	PointB   mgl64.Vec3
	NormalA  mgl64.Vec3
	NormalB  mgl64.Vec3
	FeatureA actor.Feature
	FeatureB actor.Feature

	// SubShapeA and SubShapeB index the composite child or bulk triangle that
	// produced the result, NoSubShape otherwise.
	SubShapeA int
	SubShapeB int

	// Approximate is set when an iterative solver ran out of iterations
	Approximate bool
}

// NewDistanceResult returns an empty result with no sub-shape
func NewDistanceResult() DistanceResult {
	return DistanceResult{SubShapeA: NoSubShape, SubShapeB: NoSubShape}
}

// Flip swaps the roles of A and B
func (r DistanceResult) Flip() DistanceResult {
	r.PointA, r.PointB = r.PointB, r.PointA
	r.NormalA, r.NormalB = r.NormalB, r.NormalA
	r.FeatureA, r.FeatureB = r.FeatureB, r.FeatureA
	r.SubShapeA, r.SubShapeB = r.SubShapeB, r.SubShapeA
	return r
}

// Penetrating reports overlapping shapes
func (r DistanceResult) Penetrating() bool {
	return r.Distance < 0
}

// CastResult describes the first impact of a swept shape.
// Fraction is the share of the sweep travelled before impact, Distance the
// same in world units. Normal is the target's surface normal at impact,
// pointing back toward the caster.
type CastResult struct {
	Fraction float64
	Distance float64
	Normal   mgl64.Vec3
	// Result is the distance query evaluated at the impact placement
	Result      DistanceResult
	Approximate bool
}
