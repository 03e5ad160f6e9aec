package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidHull is returned when hull geometry is not a closed convex polytope
var ErrInvalidHull = errors.New("invalid convex hull")

// HullAsset is the shared, immutable geometry of a convex polytope.
// Faces are vertex index loops, counter-clockwise seen from outside.
type HullAsset struct {
	Vertices []mgl64.Vec3
	Faces    [][]int

	normals []mgl64.Vec3
	edges   [][2]int
	bounds  AABB
}

// NewHullAsset validates the polytope and precomputes face normals and edges.
func NewHullAsset(vertices []mgl64.Vec3, faces [][]int) (*HullAsset, error) {
	if len(vertices) < 4 || len(faces) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 vertices and 4 faces, got %d and %d", ErrInvalidHull, len(vertices), len(faces))
	}

	h := &HullAsset{
		Vertices: vertices,
		Faces:    faces,
		normals:  make([]mgl64.Vec3, len(faces)),
		bounds:   EmptyAABB(),
	}
	for _, v := range vertices {
		h.bounds = h.bounds.Extend(v)
	}

	edgeSet := make(map[[2]int]int)
	for fi, face := range faces {
		if len(face) < 3 {
			return nil, fmt.Errorf("%w: face %d has %d vertices", ErrInvalidHull, fi, len(face))
		}
		for _, vi := range face {
			if vi < 0 || vi >= len(vertices) {
				return nil, fmt.Errorf("%w: face %d references vertex %d", ErrInvalidHull, fi, vi)
			}
		}

		n := newellNormal(vertices, face)
		l := n.Len()
		if l < 1e-12 {
			return nil, fmt.Errorf("%w: face %d is degenerate", ErrInvalidHull, fi)
		}
		n = n.Mul(1 / l)
		h.normals[fi] = n

		// Every vertex must lie behind every face plane
		offset := n.Dot(vertices[face[0]])
		for vi, v := range vertices {
			if n.Dot(v)-offset > 1e-6*(1+math.Abs(offset)) {
				return nil, fmt.Errorf("%w: vertex %d is in front of face %d", ErrInvalidHull, vi, fi)
			}
		}

		for i := range face {
			a, b := face[i], face[(i+1)%len(face)]
			if a > b {
				a, b = b, a
			}
			key := [2]int{a, b}
			if _, ok := edgeSet[key]; !ok {
				edgeSet[key] = len(h.edges)
				h.edges = append(h.edges, key)
			}
		}
	}

	return h, nil
}

// NewBoxHull builds the hull asset of an axis-aligned box centred on the origin
func NewBoxHull(halfExtents mgl64.Vec3) (*HullAsset, error) {
	box := Box{HalfExtents: halfExtents}
	vertices := make([]mgl64.Vec3, 8)
	for i := range vertices {
		vertices[i] = box.Corner(i)
	}
	faces := make([][]int, 0, 6)
	for f := 0; f < 6; f++ {
		quad := box.FeaturePoints(FaceFeature(f))
		loop := make([]int, len(quad))
		for i, p := range quad {
			for vi, v := range vertices {
				if v == p {
					loop[i] = vi
					break
				}
			}
		}
		faces = append(faces, loop)
	}
	return NewHullAsset(vertices, faces)
}

// newellNormal computes a robust polygon normal
func newellNormal(vertices []mgl64.Vec3, loop []int) mgl64.Vec3 {
	var n mgl64.Vec3
	for i := range loop {
		cur := vertices[loop[i]]
		next := vertices[loop[(i+1)%len(loop)]]
		n[0] += (cur.Y() - next.Y()) * (cur.Z() + next.Z())
		n[1] += (cur.Z() - next.Z()) * (cur.X() + next.X())
		n[2] += (cur.X() - next.X()) * (cur.Y() + next.Y())
	}
	return n
}

// Edges returns the unique edges as sorted vertex index pairs
func (h *HullAsset) Edges() [][2]int { return h.edges }

// Bounds returns the unscaled local bounds
func (h *HullAsset) Bounds() AABB { return h.bounds }

// ConvexHull places a shared hull asset with a per-axis scale
type ConvexHull struct {
	Asset *HullAsset
	Scale mgl64.Vec3
}

// NewConvexHull returns an unscaled hull instance
func NewConvexHull(asset *HullAsset) *ConvexHull {
	return &ConvexHull{Asset: asset, Scale: mgl64.Vec3{1, 1, 1}}
}

func (c *ConvexHull) Type() ShapeType { return ShapeTypeConvexHull }
func (c *ConvexHull) sealed()         {}

func (c *ConvexHull) LocalAABB() AABB {
	return c.Asset.bounds.Scale(c.Scale)
}

// Vertex returns a scaled vertex
func (c *ConvexHull) Vertex(i int) mgl64.Vec3 {
	v := c.Asset.Vertices[i]
	return mgl64.Vec3{v[0] * c.Scale[0], v[1] * c.Scale[1], v[2] * c.Scale[2]}
}

// mirrored reports a scale that flips orientation
func (c *ConvexHull) mirrored() bool {
	return c.Scale[0]*c.Scale[1]*c.Scale[2] < 0
}

func (c *ConvexHull) Support(direction mgl64.Vec3) (mgl64.Vec3, int) {
	// (v*s).d == v.(s*d)
	scaled := mgl64.Vec3{direction[0] * c.Scale[0], direction[1] * c.Scale[1], direction[2] * c.Scale[2]}
	best := 0
	bestDot := c.Asset.Vertices[0].Dot(scaled)
	for i := 1; i < len(c.Asset.Vertices); i++ {
		if d := c.Asset.Vertices[i].Dot(scaled); d > bestDot {
			best, bestDot = i, d
		}
	}
	return c.Vertex(best), best
}

func (c *ConvexHull) Margin() float64 { return 0 }

func (c *ConvexHull) faceHas(face []int, id int) bool {
	for _, v := range face {
		if v == id {
			return true
		}
	}
	return false
}

func (c *ConvexHull) FeatureFromVertices(ids []int, direction mgl64.Vec3) Feature {
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		dup := false
		for _, u := range unique {
			if u == id {
				dup = true
				break
			}
		}
		if !dup && id >= 0 && id < len(c.Asset.Vertices) {
			unique = append(unique, id)
		}
	}

	switch len(unique) {
	case 0:
		return Feature{}
	case 1:
		return VertexFeature(unique[0])
	case 2:
		a, b := unique[0], unique[1]
		if a > b {
			a, b = b, a
		}
		for ei, e := range c.Asset.edges {
			if e[0] == a && e[1] == b {
				return EdgeFeature(ei)
			}
		}
	}

	// Best aligned face containing every vertex
	best := -1
	bestDot := math.Inf(-1)
	for fi, face := range c.Asset.Faces {
		all := true
		for _, id := range unique {
			if !c.faceHas(face, id) {
				all = false
				break
			}
		}
		if !all {
			continue
		}
		if d := c.faceNormal(fi).Dot(direction); d > bestDot {
			best, bestDot = fi, d
		}
	}
	if best >= 0 {
		return FaceFeature(best)
	}
	return c.SupportFeature(direction)
}

func (c *ConvexHull) faceNormal(fi int) mgl64.Vec3 {
	// Normals transform with the inverse scale
	n := c.Asset.normals[fi]
	for i := 0; i < 3; i++ {
		if c.Scale[i] != 0 {
			n[i] /= c.Scale[i]
		}
	}
	l := n.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}
	}
	return n.Mul(1 / l)
}

func (c *ConvexHull) FeaturePoints(f Feature) []mgl64.Vec3 {
	switch f.Kind {
	case FeatureVertex:
		return []mgl64.Vec3{c.Vertex(f.Index)}
	case FeatureEdge:
		e := c.Asset.edges[f.Index]
		return []mgl64.Vec3{c.Vertex(e[0]), c.Vertex(e[1])}
	case FeatureFace:
		face := c.Asset.Faces[f.Index]
		points := make([]mgl64.Vec3, len(face))
		for i, vi := range face {
			points[i] = c.Vertex(vi)
		}
		if c.mirrored() {
			for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
				points[i], points[j] = points[j], points[i]
			}
		}
		return points
	}
	return nil
}

func (c *ConvexHull) FaceNormal(f Feature) mgl64.Vec3 {
	if f.Kind != FeatureFace {
		return mgl64.Vec3{}
	}
	return c.faceNormal(f.Index)
}

func (c *ConvexHull) SupportFeature(direction mgl64.Vec3) Feature {
	best := 0
	bestDot := math.Inf(-1)
	for fi := range c.Asset.Faces {
		if d := c.faceNormal(fi).Dot(direction); d > bestDot {
			best, bestDot = fi, d
		}
	}
	return FaceFeature(best)
}
