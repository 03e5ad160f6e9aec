package epa

import (
	"math"
	"sync"

	"github.com/akmonengine/narrowphase/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// Face is a polytope triangle. V indexes the builder's vertices,
// counter-clockwise seen from outside.
type Face struct {
	V        [3]int
	Normal   mgl64.Vec3 // outward unit normal
	Distance float64    // signed distance from the origin to the face plane
	obsolete bool
}

// edge is a directed horizon edge
type edge struct {
	a, b int
}

// PolytopeBuilder holds the expanding polytope. Vertices keep the support
// pairs so witness points can be recovered from any face.
type PolytopeBuilder struct {
	vertices []gjk.Vertex
	faces    []Face
	horizon  []edge
}

var polytopeBuilderPool = sync.Pool{
	New: func() interface{} {
		return &PolytopeBuilder{
			vertices: make([]gjk.Vertex, 0, polytopeInitialCapacity),
			faces:    make([]Face, 0, polytopeInitialCapacity),
			horizon:  make([]edge, 0, polytopeInitialCapacity),
		}
	},
}

// Reset prepares the builder for reuse
func (b *PolytopeBuilder) Reset() {
	b.vertices = b.vertices[:0]
	b.faces = b.faces[:0]
	b.horizon = b.horizon[:0]
}

// BuildTetrahedron seeds the polytope with four vertices, oriented so every
// face normal points away from the opposite vertex.
func (b *PolytopeBuilder) BuildTetrahedron(v [4]gjk.Vertex) {
	b.vertices = append(b.vertices, v[0], v[1], v[2], v[3])

	// positive orientation: (v1-v0)x(v2-v0) points away from v3
	n := v[1].W.Sub(v[0].W).Cross(v[2].W.Sub(v[0].W))
	if n.Dot(v[3].W.Sub(v[0].W)) > 0 {
		b.vertices[1], b.vertices[2] = b.vertices[2], b.vertices[1]
	}

	b.addFace(0, 1, 2)
	b.addFace(0, 3, 1)
	b.addFace(0, 2, 3)
	b.addFace(1, 3, 2)
}

func (b *PolytopeBuilder) addFace(i, j, k int) {
	p0 := b.vertices[i].W
	n := b.vertices[j].W.Sub(p0).Cross(b.vertices[k].W.Sub(p0))
	face := Face{V: [3]int{i, j, k}}

	l := n.Len()
	if l < 1e-14 {
		// sliver: never selected as the closest face
		face.Normal = mgl64.Vec3{}
		face.Distance = math.Inf(1)
	} else {
		face.Normal = n.Mul(1 / l)
		face.Distance = face.Normal.Dot(p0)
	}
	b.faces = append(b.faces, face)
}

// ClosestFace returns the index of the live face closest to the origin, -1 if
// every face is degenerate.
func (b *PolytopeBuilder) ClosestFace() int {
	best := -1
	bestDistance := math.Inf(1)
	for i := range b.faces {
		if b.faces[i].Distance < bestDistance {
			best, bestDistance = i, b.faces[i].Distance
		}
	}
	return best
}

// has reports a support point already in the polytope
func (b *PolytopeBuilder) has(w mgl64.Vec3) bool {
	for _, v := range b.vertices {
		if v.W.Sub(w).LenSqr() <= 1e-24*(1+w.LenSqr()) {
			return true
		}
	}
	return false
}

// Expand adds a support vertex: faces that see it are removed and the
// horizon is stitched to it. closest is always treated as visible.
func (b *PolytopeBuilder) Expand(v gjk.Vertex, closest int) {
	index := len(b.vertices)
	b.vertices = append(b.vertices, v)
	b.horizon = b.horizon[:0]

	for i := range b.faces {
		f := &b.faces[i]
		if i != closest && f.Normal.Dot(v.W.Sub(b.vertices[f.V[0]].W)) <= 0 {
			continue
		}
		f.obsolete = true
		for e := 0; e < 3; e++ {
			b.toggleEdge(f.V[e], f.V[(e+1)%3])
		}
	}

	// Compact in place, keeping face order
	live := b.faces[:0]
	for _, f := range b.faces {
		if !f.obsolete {
			live = append(live, f)
		}
	}
	b.faces = live

	for _, e := range b.horizon {
		b.addFace(e.a, e.b, index)
	}
}

// toggleEdge records a directed edge of a removed face. An edge shared by two
// removed faces appears once in each direction and cancels out.
func (b *PolytopeBuilder) toggleEdge(i, j int) {
	for k, e := range b.horizon {
		if e.a == j && e.b == i {
			b.horizon = append(b.horizon[:k], b.horizon[k+1:]...)
			return
		}
	}
	b.horizon = append(b.horizon, edge{a: i, b: j})
}
