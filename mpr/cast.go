package mpr

import (
	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// CastResult is the outcome of a sweep
type CastResult struct {
	Hit bool
	// Fraction of the translation travelled before contact, in [0, 1]
	Fraction float64
	// Normal is the surface normal of B at contact, pointing back toward A
	Normal mgl64.Vec3

	Iterations  int
	Advances    int
	Approximate bool
}

// Cast sweeps a along delta against the static b. Each step runs a portal
// search at the current placement and advances a until the origin reaches
// the best separating plane found. Steps never overshoot, so the first
// placement within tolerance is the time of impact.
//
// Bodies already in contact at the start report a hit at fraction 0.
// Running out of advances reports the last safe placement with Approximate set.
func Cast(a actor.Body, delta mgl64.Vec3, b actor.Body, settings Settings) CastResult {
	settings = settings.withDefaults()
	start := a.Transform

	var out CastResult
	t := 0.0
	for out.Advances < settings.MaxAdvances {
		out.Advances++

		placed := start
		placed.Position = start.Position.Add(delta.Mul(t))
		r := step(a.WithTransform(placed), b, settings)
		out.Iterations += r.Iterations
		out.Approximate = out.Approximate || r.Approximate

		if r.Overlap || r.Gap <= settings.Tolerance {
			out.Hit = true
			out.Fraction = t
			// after an advance the last separating axis is the contact normal;
			// a portal touching the origin carries no reliable orientation
			if out.Advances == 1 {
				out.Normal = r.Normal
			}
			return out
		}

		// the gap closes at this rate along the separating axis
		closing := -delta.Dot(r.Axis)
		if closing <= 0 {
			return CastResult{Iterations: out.Iterations, Advances: out.Advances, Approximate: out.Approximate}
		}
		t += r.Gap / closing
		if t > 1 {
			return CastResult{Iterations: out.Iterations, Advances: out.Advances, Approximate: out.Approximate}
		}
		out.Normal = r.Axis
	}

	out.Hit = true
	out.Fraction = t
	out.Approximate = true
	return out
}

// step runs one portal search and falls back to the exact GJK distance when
// the portal collapsed.
func step(a, b actor.Body, settings Settings) Result {
	r := Intersect(a, b, settings)
	if !r.Degenerate {
		return r
	}

	g := gjk.Distance(a, b, gjk.DefaultSettings())
	fallback := Result{Iterations: r.Iterations + g.Iterations, Approximate: g.Approximate}
	gap := g.Distance - a.Margin() - b.Margin()
	if g.Overlap || gap <= 0 {
		fallback.Overlap = true
		fallback.Normal = g.Normal.Mul(-1)
		return fallback
	}
	fallback.Gap = gap
	fallback.Axis = g.Normal.Mul(-1)
	fallback.Normal = fallback.Axis
	return fallback
}
