// Package mpr implements Minkowski Portal Refinement (XenoCollide) on the
// configuration space obstacle B - A of two rounded convex bodies.
//
// Intersect casts a ray from an interior point of B - A toward the origin and
// refines a portal (a triangle of support points crossed by the ray) until it
// lies on the boundary. The origin is inside when it falls behind the portal;
// otherwise every support plane met on the way is a separating plane.
//
// Cast sweeps A along a translation and advances it by the gap of the best
// separating plane until the portal touches the origin.
//
// References:
//   - Snethen: "XenoCollide: Complex Collision Made Simple", Game Programming Gems 7 (2008)
package mpr

import (
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMaxIterations bounds portal discovery and refinement
	DefaultMaxIterations = 64
	// DefaultMaxAdvances bounds the steps of a sweep
	DefaultMaxAdvances = 32
	// DefaultTolerance is the distance, in world units, under which the portal
	// is on the boundary and a sweep has reached contact
	DefaultTolerance = 1e-6

	degenerateTolerance = 1e-20
	// flatTolerance bounds the volume of the tetrahedron v0..v3 relative to
	// the product of its edge lengths; below it B - A is taken as planar
	flatTolerance = 1e-9
)

// Settings bounds the work of a portal search and of a sweep
type Settings struct {
	MaxIterations int
	MaxAdvances   int
	Tolerance     float64
}

// DefaultSettings returns the package defaults
func DefaultSettings() Settings {
	return Settings{
		MaxIterations: DefaultMaxIterations,
		MaxAdvances:   DefaultMaxAdvances,
		Tolerance:     DefaultTolerance,
	}
}

func (s Settings) withDefaults() Settings {
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	if s.MaxAdvances <= 0 {
		s.MaxAdvances = DefaultMaxAdvances
	}
	if s.Tolerance <= 0 {
		s.Tolerance = DefaultTolerance
	}
	return s
}

// Result is the outcome of one portal search
type Result struct {
	Overlap bool
	// Normal is the outward unit normal of B - A at the last portal. It is the
	// surface normal of B facing A.
	Normal mgl64.Vec3
	// Depth estimates the penetration along Normal when overlapping
	Depth float64
	// Gap is the distance from the origin to the best separating plane, a lower
	// bound of the distance between the bodies. Axis is that plane's normal.
	Gap  float64
	Axis mgl64.Vec3

	Iterations  int
	Approximate bool
	// Degenerate is set when the portal collapsed (flat or aligned supports)
	// and the result carries no information
	Degenerate bool
}

type portal struct {
	v0, v1, v2, v3 mgl64.Vec3
}

// search holds the state of one portal search
type search struct {
	a, b     actor.Body
	settings Settings
	result   Result
}

// support of the rounded difference B - A
func (s *search) support(direction mgl64.Vec3) mgl64.Vec3 {
	return gjk.MinkowskiSupport(s.b, s.a, direction)
}

// plane records a support plane; planes with the origin in front separate
func (s *search) plane(direction, support mgl64.Vec3) {
	if gap := -support.Dot(direction); gap > s.result.Gap {
		s.result.Gap = gap
		s.result.Axis = direction
	}
}

// Intersect runs portal discovery and refinement on B - A
func Intersect(a, b actor.Body, settings Settings) Result {
	s := &search{a: a, b: b, settings: settings.withDefaults()}
	s.run()
	return s.result
}

func (s *search) run() {
	var p portal
	p.v0 = s.b.Center().Sub(s.a.Center())
	if p.v0.LenSqr() < degenerateTolerance {
		// the interior point is the origin
		s.overlap(mgl64.Vec3{0, 1, 0}, 0)
		return
	}

	if !s.discover(&p) {
		return
	}
	s.refine(&p)
}

func (s *search) overlap(normal mgl64.Vec3, depth float64) {
	s.result.Overlap = true
	s.result.Normal = normal
	s.result.Depth = math.Max(0, depth)
	s.result.Gap = 0
}

// discover finds a portal crossed by the ray from v0 through the origin. It
// returns false when the search already concluded.
func (s *search) discover(p *portal) bool {
	direction := p.v0.Mul(-1).Normalize()
	p.v1 = s.support(direction)
	s.plane(direction, p.v1)

	direction = p.v1.Cross(p.v0)
	if direction.LenSqr() < degenerateTolerance*(1+p.v1.LenSqr()*p.v0.LenSqr()) {
		// v0, v1 and the origin are aligned
		toOrigin := p.v0.Mul(-1).Normalize()
		if d := p.v1.Dot(toOrigin); d >= 0 {
			s.overlap(toOrigin, d)
		} else {
			s.result.Normal = toOrigin
		}
		return false
	}
	direction = direction.Normalize()
	p.v2 = s.support(direction)
	s.plane(direction, p.v2)

	direction = p.v1.Sub(p.v0).Cross(p.v2.Sub(p.v0))
	if direction.LenSqr() < degenerateTolerance {
		s.result.Degenerate = true
		return false
	}
	direction = direction.Normalize()
	if direction.Dot(p.v0) > 0 {
		p.v1, p.v2 = p.v2, p.v1
		direction = direction.Mul(-1)
	}

	for s.result.Iterations < s.settings.MaxIterations {
		s.result.Iterations++
		p.v3 = s.support(direction)
		s.plane(direction, p.v3)
		if p.flat() {
			s.result.Degenerate = true
			return false
		}

		switch {
		case p.v1.Cross(p.v3).Dot(p.v0) < 0:
			p.v2 = p.v3
		case p.v3.Cross(p.v2).Dot(p.v0) < 0:
			p.v1 = p.v3
		default:
			return true
		}

		direction = p.v1.Sub(p.v0).Cross(p.v2.Sub(p.v0))
		if direction.LenSqr() < degenerateTolerance {
			s.result.Degenerate = true
			return false
		}
		direction = direction.Normalize()
	}
	s.result.Approximate = true
	return false
}

// refine moves the portal onto the boundary of B - A
func (s *search) refine(p *portal) {
	for s.result.Iterations < s.settings.MaxIterations {
		s.result.Iterations++

		normal := p.v2.Sub(p.v1).Cross(p.v3.Sub(p.v1))
		if normal.LenSqr() < degenerateTolerance {
			s.result.Degenerate = true
			return
		}
		normal = normal.Normalize()
		s.result.Normal = normal
		// behind a portal of a planar B - A does not mean inside it
		if p.flat() {
			s.result.Degenerate = true
			return
		}

		v4 := s.support(normal)
		s.plane(normal, v4)
		if p.v1.Dot(normal) >= 0 {
			// the origin is behind the portal
			s.overlap(normal, v4.Dot(normal))
			return
		}
		if v4.Dot(normal)-p.v1.Dot(normal) <= s.settings.Tolerance {
			return
		}
		expand(p, v4)
	}
	s.result.Approximate = true
}

// flat reports a portal spanning no volume with the interior point, which
// only happens when B - A itself is planar (two segments, coplanar flat shapes)
func (p *portal) flat() bool {
	e1, e2, e3 := p.v1.Sub(p.v0), p.v2.Sub(p.v0), p.v3.Sub(p.v0)
	volume := math.Abs(e1.Dot(e2.Cross(e3)))
	return volume <= flatTolerance*e1.Len()*e2.Len()*e3.Len()
}

// expand replaces the portal vertex that keeps the ray inside the new portal
func expand(p *portal, v4 mgl64.Vec3) {
	v4v0 := v4.Cross(p.v0)
	if p.v1.Dot(v4v0) > 0 {
		if p.v2.Dot(v4v0) > 0 {
			p.v1 = v4
		} else {
			p.v3 = v4
		}
		return
	}
	if p.v3.Dot(v4v0) > 0 {
		p.v2 = v4
	} else {
		p.v1 = v4
	}
}
