package actor

import "fmt"

// FeatureKind identifies the dimension of the shape feature that produced a
// closest point.
type FeatureKind uint8

const (
	FeatureNone FeatureKind = iota
	FeatureVertex
	FeatureEdge
	FeatureFace
)

func (k FeatureKind) String() string {
	switch k {
	case FeatureVertex:
		return "vertex"
	case FeatureEdge:
		return "edge"
	case FeatureFace:
		return "face"
	default:
		return "none"
	}
}

// Feature is a compact tag naming one vertex, edge or face of a shape.
// Index meaning depends on the shape:
//   - Box: vertex = sign bits (x:1, y:2, z:4), edge = axis*4 + sign bits of
//     the two other axes (lower axis first), face = axis*2 + (1 if positive side)
//   - Triangle: vertex i, edge i from V[i] to V[(i+1)%3], face 0
//   - Capsule: vertex 0/1 for the caps around P0/P1, edge 0 for the side
//   - ConvexHull: indices into the asset's vertex, edge and face tables
type Feature struct {
	Kind  FeatureKind
	Index int
}

func VertexFeature(index int) Feature { return Feature{Kind: FeatureVertex, Index: index} }
func EdgeFeature(index int) Feature   { return Feature{Kind: FeatureEdge, Index: index} }
func FaceFeature(index int) Feature   { return Feature{Kind: FeatureFace, Index: index} }

func (f Feature) IsFace() bool { return f.Kind == FeatureFace }

func (f Feature) String() string {
	if f.Kind == FeatureNone {
		return "none"
	}
	return fmt.Sprintf("%s#%d", f.Kind, f.Index)
}

// BoxFaceFeature returns the face of a box on axis (0..2), positive or negative side
func BoxFaceFeature(axis int, positive bool) Feature {
	index := axis * 2
	if positive {
		index++
	}
	return FaceFeature(index)
}

// BoxVertexFeature returns the corner whose coordinates have the given signs
func BoxVertexFeature(signs [3]bool) Feature {
	index := 0
	for i := 0; i < 3; i++ {
		if signs[i] {
			index |= 1 << i
		}
	}
	return VertexFeature(index)
}

// BoxEdgeFeature returns the edge parallel to axis, on the side of the other two
// axes given by signs (signs[axis] is ignored).
func BoxEdgeFeature(axis int, signs [3]bool) Feature {
	u, v := (axis+1)%3, (axis+2)%3
	if u > v {
		u, v = v, u
	}
	bits := 0
	if signs[u] {
		bits |= 1
	}
	if signs[v] {
		bits |= 2
	}
	return EdgeFeature(axis*4 + bits)
}

// BoxClampFeature classifies a point of a box surface by which coordinates sit
// on the box boundary: three → vertex, two → edge, one → face.
// clamped[i] tells whether coordinate i is on the boundary, positive[i] on which side.
func BoxClampFeature(clamped, positive [3]bool) Feature {
	count := 0
	free := -1
	fixed := -1
	for i := 0; i < 3; i++ {
		if clamped[i] {
			count++
			fixed = i
		} else {
			free = i
		}
	}

	switch count {
	case 3:
		return BoxVertexFeature(positive)
	case 2:
		return BoxEdgeFeature(free, positive)
	case 1:
		return BoxFaceFeature(fixed, positive[fixed])
	default:
		return Feature{}
	}
}
