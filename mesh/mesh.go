// Package mesh holds shared, immutable triangle geometry (indexed meshes and
// height grids) and the candidate enumerators that prune it by region.
//
// The narrow phase only sees these through actor.TriangleSource,
// actor.HeightSource and actor.CandidateEnumerator; any other implementation
// works the same.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidMesh is returned when mesh data cannot be built
var ErrInvalidMesh = errors.New("invalid mesh")

// TriangleMesh is an indexed triangle list
type TriangleMesh struct {
	vertices []mgl64.Vec3
	indices  []int
	bounds   actor.AABB
}

// NewTriangleMesh copies the vertices and the index triples
func NewTriangleMesh(vertices []mgl64.Vec3, indices []int) (*TriangleMesh, error) {
	if len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a non-empty multiple of 3", ErrInvalidMesh, len(indices))
	}
	for i, index := range indices {
		if index < 0 || index >= len(vertices) {
			return nil, fmt.Errorf("%w: index %d out of range at %d", ErrInvalidMesh, index, i)
		}
	}

	m := &TriangleMesh{
		vertices: append([]mgl64.Vec3(nil), vertices...),
		indices:  append([]int(nil), indices...),
		bounds:   actor.EmptyAABB(),
	}
	for _, index := range m.indices {
		v := m.vertices[index]
		if math.IsNaN(v.X()) || math.IsNaN(v.Y()) || math.IsNaN(v.Z()) {
			return nil, fmt.Errorf("%w: vertex %d is not a number", ErrInvalidMesh, index)
		}
		m.bounds = m.bounds.Extend(v)
	}
	return m, nil
}

func (m *TriangleMesh) TriangleCount() int { return len(m.indices) / 3 }

func (m *TriangleMesh) Triangle(i int) ([3]mgl64.Vec3, bool) {
	if i < 0 || i >= m.TriangleCount() {
		return [3]mgl64.Vec3{}, false
	}
	return [3]mgl64.Vec3{
		m.vertices[m.indices[3*i]],
		m.vertices[m.indices[3*i+1]],
		m.vertices[m.indices[3*i+2]],
	}, true
}

func (m *TriangleMesh) Bounds() actor.AABB { return m.bounds }

// triangleBounds is the box of triangle i, empty for holes
func triangleBounds(source actor.TriangleSource, i int) (actor.AABB, bool) {
	v, ok := source.Triangle(i)
	if !ok {
		return actor.EmptyAABB(), false
	}
	return actor.EmptyAABB().Extend(v[0]).Extend(v[1]).Extend(v[2]), true
}
