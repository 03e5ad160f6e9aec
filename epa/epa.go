// Package epa implements the Expanding Polytope Algorithm for penetration
// depth between overlapping convex cores.
//
// The polytope starts from the final GJK simplex, blown up to a tetrahedron
// when GJK stopped on a lower-dimensional one, and grows toward the boundary
// of A - B until the face closest to the origin stops moving. The closest face
// gives the minimum translation; barycentric back-projection of the origin's
// projection on it gives the witness points.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/geom"
	"github.com/akmonengine/narrowphase/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMaxIterations limits polytope expansion
	DefaultMaxIterations = 64

	// DefaultTolerance is the relative progress under which the closest face
	// is considered final
	DefaultTolerance = 1e-6

	// NormalSnapThreshold is used to clamp nearly-zero normal components to exactly zero.
	NormalSnapThreshold = 1e-12

	polytopeInitialCapacity = 16
)

// Settings bounds the work of a penetration query
type Settings struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultSettings returns the package defaults
func DefaultSettings() Settings {
	return Settings{MaxIterations: DefaultMaxIterations, Tolerance: DefaultTolerance}
}

// Result describes the penetration of two cores
type Result struct {
	// Depth is the core penetration depth, never negative
	Depth float64
	// Normal is the unit separation direction from A toward B: moving B by
	// Depth*Normal brings the cores to touching contact.
	Normal mgl64.Vec3
	// PointA and PointB are the deepest core points, in world space
	PointA, PointB mgl64.Vec3
	IDsA, IDsB     []int

	Approximate bool
	Iterations  int
}

// Penetration runs EPA on two bodies whose cores overlap. simplex is the
// final GJK simplex (1 to 4 vertices).
func Penetration(a, b actor.Body, simplex []gjk.Vertex, settings Settings) Result {
	if settings.MaxIterations <= 0 {
		settings.MaxIterations = DefaultMaxIterations
	}
	if settings.Tolerance <= 0 {
		settings.Tolerance = DefaultTolerance
	}

	tetra, n := blowUp(a, b, simplex)
	if n < 4 {
		return flatResult(a, b, tetra[:n])
	}

	builder := polytopeBuilderPool.Get().(*PolytopeBuilder)
	defer polytopeBuilderPool.Put(builder)
	builder.Reset()
	builder.BuildTetrahedron(tetra)

	var result Result
	closest := builder.ClosestFace()
	converged := false
	for result.Iterations < settings.MaxIterations {
		result.Iterations++
		if closest < 0 {
			break
		}
		face := builder.faces[closest]

		support := gjk.Support(a, b, face.Normal)
		distance := support.W.Dot(face.Normal)
		if distance-face.Distance <= settings.Tolerance*math.Max(1, math.Abs(distance)) || builder.has(support.W) {
			converged = true
			break
		}

		builder.Expand(support, closest)
		next := builder.ClosestFace()
		if next < 0 {
			break
		}
		closest = next
	}
	if closest < 0 {
		return flatResult(a, b, tetra[:])
	}

	result.Approximate = !converged
	fillFromFace(&result, builder, builder.faces[closest])
	return result
}

func fillFromFace(result *Result, builder *PolytopeBuilder, face Face) {
	v0 := builder.vertices[face.V[0]]
	v1 := builder.vertices[face.V[1]]
	v2 := builder.vertices[face.V[2]]

	projection := face.Normal.Mul(face.Distance)
	_, bary, _ := geom.ClosestPointOnTriangle(projection, v0.W, v1.W, v2.W)

	result.Depth = math.Max(0, face.Distance)
	result.Normal = snapNormalToAxis(face.Normal)
	verts := [3]gjk.Vertex{v0, v1, v2}
	for i, v := range verts {
		result.PointA = result.PointA.Add(v.A.Mul(bary[i]))
		result.PointB = result.PointB.Add(v.B.Mul(bary[i]))
		if bary[i] > 0 {
			result.IDsA = appendUnique(result.IDsA, v.IDA)
			result.IDsB = appendUnique(result.IDsB, v.IDB)
		}
	}
}

// blowUp grows a 1 to 4 vertex simplex into a non-degenerate tetrahedron and
// returns how many independent vertices it found. Fewer than 4 means A - B is
// flat (coplanar triangles, for instance).
func blowUp(a, b actor.Body, simplex []gjk.Vertex) ([4]gjk.Vertex, int) {
	var tetra [4]gjk.Vertex
	n := copy(tetra[:], simplex)
	if n == 0 {
		tetra[0] = gjk.Support(a, b, mgl64.Vec3{1, 0, 0})
		n = 1
	}

	// Drop vertices that do not add a dimension
	n = reduceDegenerate(&tetra, n)

	axes := [6]mgl64.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for n < 4 {
		var candidates []mgl64.Vec3
		switch n {
		case 1:
			candidates = axes[:]
		case 2:
			d := tetra[1].W.Sub(tetra[0].W)
			p := geom.Perpendicular(d)
			q := d.Cross(p).Normalize()
			candidates = []mgl64.Vec3{p, p.Mul(-1), q, q.Mul(-1)}
		case 3:
			normal := tetra[1].W.Sub(tetra[0].W).Cross(tetra[2].W.Sub(tetra[0].W)).Normalize()
			candidates = []mgl64.Vec3{normal, normal.Mul(-1)}
		}

		best := -1.0
		var bestVertex gjk.Vertex
		for _, dir := range candidates {
			v := gjk.Support(a, b, dir)
			if gain := spanGain(tetra, n, v.W); gain > best {
				best, bestVertex = gain, v
			}
		}
		if best <= 1e-10*(1+scale(tetra, n)) {
			return tetra, n
		}
		tetra[n] = bestVertex
		n++
	}
	return tetra, n
}

// spanGain measures how far w lies from the affine hull of the first n points
func spanGain(tetra [4]gjk.Vertex, n int, w mgl64.Vec3) float64 {
	switch n {
	case 1:
		return w.Sub(tetra[0].W).Len()
	case 2:
		// distance to the infinite line
		d := tetra[1].W.Sub(tetra[0].W)
		t := w.Sub(tetra[0].W).Dot(d) / math.Max(d.LenSqr(), 1e-300)
		return w.Sub(tetra[0].W.Add(d.Mul(t))).Len()
	default:
		normal := tetra[1].W.Sub(tetra[0].W).Cross(tetra[2].W.Sub(tetra[0].W))
		l := normal.Len()
		if l < 1e-300 {
			return 0
		}
		return math.Abs(w.Sub(tetra[0].W).Dot(normal)) / l
	}
}

func scale(tetra [4]gjk.Vertex, n int) float64 {
	m := 0.0
	for i := 0; i < n; i++ {
		m = math.Max(m, tetra[i].W.Len())
	}
	return m
}

func reduceDegenerate(tetra *[4]gjk.Vertex, n int) int {
	out := 1
	for i := 1; i < n; i++ {
		if spanGain(*tetra, out, tetra[i].W) > 1e-10*(1+scale(*tetra, out)) {
			tetra[out] = tetra[i]
			out++
		}
	}
	return out
}

// flatResult handles a flat difference: the cores touch with zero depth along
// the normal of their common plane.
func flatResult(a, b actor.Body, simplex []gjk.Vertex) Result {
	var result Result
	result.Normal = b.Center().Sub(a.Center())
	if len(simplex) >= 3 {
		n := simplex[1].W.Sub(simplex[0].W).Cross(simplex[2].W.Sub(simplex[0].W))
		if n.LenSqr() > 1e-24 {
			if n.Dot(result.Normal) < 0 {
				n = n.Mul(-1)
			}
			result.Normal = n
		}
	}
	result.Normal = geom.SafeNormalize(result.Normal, mgl64.Vec3{0, 1, 0})

	// Weights of the simplex point closest to the origin
	var origin mgl64.Vec3
	weights := []float64{1}
	switch len(simplex) {
	case 2:
		_, t := geom.ClosestPointOnSegment(origin, simplex[0].W, simplex[1].W)
		weights = []float64{1 - t, t}
	case 3, 4:
		_, bary, _ := geom.ClosestPointOnTriangle(origin, simplex[0].W, simplex[1].W, simplex[2].W)
		weights = bary[:]
	}
	for i, w := range weights {
		if i >= len(simplex) || w <= 0 {
			continue
		}
		result.PointA = result.PointA.Add(simplex[i].A.Mul(w))
		result.PointB = result.PointB.Add(simplex[i].B.Mul(w))
		result.IDsA = appendUnique(result.IDsA, simplex[i].IDA)
		result.IDsB = appendUnique(result.IDsB, simplex[i].IDB)
	}
	return result
}

// snapNormalToAxis clamps nearly-zero components of a normal vector to exactly zero
// so axis-aligned contacts keep exact axis normals.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	clamped := normal
	for i := 0; i < 3; i++ {
		if math.Abs(clamped[i]) < NormalSnapThreshold {
			clamped[i] = 0
		}
	}

	length := clamped.Len()
	if length < 1e-8 {
		return mgl64.Vec3{0, 1, 0}
	}
	return clamped.Mul(1.0 / length)
}

func appendUnique(ids []int, id int) []int {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
