// Package sweep computes the first impact of a convex body translated along a
// straight line against a static convex body.
//
// A sphere or capsule caster reduces to a ray: its reference point (the
// sphere centre or the capsule's P0) travels along the translation, and the
// target grows by the caster. The grown target is the target core swept by
// -extent (the caster's core segment) and inflated by both radii, which is
// the union of a few rounded polygons. Every other pair goes through the MPR
// sweep.
package sweep

import (
	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/geom"
	"github.com/akmonengine/narrowphase/mpr"
	"github.com/go-gl/mathgl/mgl64"
)

// Result is the first impact of a sweep
type Result struct {
	Hit bool
	// Fraction of the translation travelled before impact, in [0, 1]
	Fraction float64
	// Normal is the target's surface normal at impact, pointing back toward
	// the caster
	Normal mgl64.Vec3

	// ClosedForm is set when the impact was computed analytically
	ClosedForm  bool
	Iterations  int
	Approximate bool
}

// ClosedForm reports whether a pair of shape types has an analytic cast, in
// either order
func ClosedForm(caster, target actor.ShapeType) bool {
	return closedPair(caster, target) || closedPair(target, caster)
}

func closedPair(caster, target actor.ShapeType) bool {
	if caster != actor.ShapeTypeSphere && caster != actor.ShapeTypeCapsule {
		return false
	}
	switch target {
	case actor.ShapeTypeSphere, actor.ShapeTypeCapsule, actor.ShapeTypeBox, actor.ShapeTypeTriangle:
		return true
	}
	return false
}

// Cast sweeps caster along delta against target. Both must be convex and must
// not overlap at the start; callers check that first.
func Cast(caster actor.Body, delta mgl64.Vec3, target actor.Body, settings mpr.Settings) Result {
	if delta.LenSqr() <= geom.Epsilon*geom.Epsilon {
		return Result{}
	}

	if closedPair(caster.Shape.Type(), target.Shape.Type()) {
		return closed(caster, delta, target)
	}
	if closedPair(target.Shape.Type(), caster.Shape.Type()) {
		// the target moves by -delta relative to the caster
		r := closed(target, delta.Mul(-1), caster)
		r.Normal = r.Normal.Mul(-1)
		return r
	}

	m := mpr.Cast(caster, delta, target, settings)
	return Result{
		Hit:         m.Hit,
		Fraction:    m.Fraction,
		Normal:      m.Normal,
		Iterations:  m.Iterations,
		Approximate: m.Approximate,
	}
}

// reference returns the caster's reference point and core extent in world
// space, and its radius
func reference(caster actor.Body) (mgl64.Vec3, mgl64.Vec3, float64) {
	switch s := caster.Shape.(type) {
	case *actor.Sphere:
		return caster.Transform.Apply(s.Center), mgl64.Vec3{}, s.Radius
	case *actor.Capsule:
		return caster.Transform.Apply(s.P0), caster.Transform.Rotate(s.Axis()), s.Radius
	}
	panic("sweep: caster is not a sphere or a capsule")
}

func closed(caster actor.Body, delta mgl64.Vec3, target actor.Body) Result {
	origin, extent, radius := reference(caster)

	// target frame
	o := target.Transform.ApplyInverse(origin)
	e := target.Transform.RotateInverse(extent)
	d := target.Transform.RotateInverse(delta)
	swept := e.LenSqr() > geom.Epsilon*geom.Epsilon

	var t float64
	var n mgl64.Vec3
	var hit bool
	switch s := target.Shape.(type) {
	case *actor.Sphere:
		t, n, hit = geom.RayCapsule(o, d, s.Center, s.Center.Sub(e), s.Radius+radius)
	case *actor.Capsule:
		if swept {
			quad := []mgl64.Vec3{s.P0, s.P1, s.P1.Sub(e), s.P0.Sub(e)}
			t, n, hit = geom.RayRoundedPolygon(o, d, quad, s.Radius+radius)
		} else {
			t, n, hit = geom.RayCapsule(o, d, s.P0, s.P1, s.Radius+radius)
		}
	case *actor.Box:
		t, n, hit = geom.RayRoundedPolygons(o, d, boxPolygons(s, e, swept), radius)
	case *actor.Triangle:
		t, n, hit = geom.RayRoundedPolygons(o, d, trianglePolygons(s, e, swept), radius)
	}

	if !hit || t > 1 {
		return Result{ClosedForm: true}
	}
	return Result{
		Hit:        true,
		Fraction:   t,
		Normal:     target.Transform.Rotate(n),
		ClosedForm: true,
	}
}

// boxPolygons covers the boundary of the box swept by -e: its faces, the faces
// moved by -e and the edges swept by -e
func boxPolygons(b *actor.Box, e mgl64.Vec3, swept bool) [][]mgl64.Vec3 {
	polys := make([][]mgl64.Vec3, 0, 24)
	for f := 0; f < 6; f++ {
		polys = append(polys, b.FeaturePoints(actor.FaceFeature(f)))
	}
	if !swept {
		return polys
	}
	for f := 0; f < 6; f++ {
		polys = append(polys, translated(polys[f], e.Mul(-1)))
	}
	for i := 0; i < 12; i++ {
		edge := b.FeaturePoints(actor.EdgeFeature(i))
		polys = append(polys, sweptEdge(edge[0], edge[1], e))
	}
	return polys
}

// trianglePolygons covers the boundary of the triangle swept by -e
func trianglePolygons(tri *actor.Triangle, e mgl64.Vec3, swept bool) [][]mgl64.Vec3 {
	face := tri.V[:]
	if !swept {
		return [][]mgl64.Vec3{face}
	}
	polys := [][]mgl64.Vec3{face, translated(face, e.Mul(-1))}
	for i := 0; i < 3; i++ {
		polys = append(polys, sweptEdge(tri.V[i], tri.V[(i+1)%3], e))
	}
	return polys
}

func sweptEdge(a, b, e mgl64.Vec3) []mgl64.Vec3 {
	return []mgl64.Vec3{a, b, b.Sub(e), a.Sub(e)}
}

func translated(poly []mgl64.Vec3, offset mgl64.Vec3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(poly))
	for i, p := range poly {
		out[i] = p.Add(offset)
	}
	return out
}
