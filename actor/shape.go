package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeCapsule
	ShapeTypeBox
	ShapeTypeTriangle
	ShapeTypeConvexHull
	ShapeTypeCompound
	ShapeTypeTriangleSoup
	ShapeTypeHeightField

	// NumShapeTypes is the size of the shape catalogue
	NumShapeTypes
)

var shapeTypeNames = [NumShapeTypes]string{
	"sphere", "capsule", "box", "triangle", "convex_hull", "compound", "triangle_soup", "height_field",
}

func (t ShapeType) String() string {
	if t < 0 || t >= NumShapeTypes {
		return "unknown"
	}
	return shapeTypeNames[t]
}

// IsConvex reports whether shapes of this type implement Convex
func (t ShapeType) IsConvex() bool {
	return t >= ShapeTypeSphere && t <= ShapeTypeConvexHull
}

// IsBulk reports whether the type is a triangle collection resolved through a
// candidate enumerator
func (t ShapeType) IsBulk() bool {
	return t == ShapeTypeTriangleSoup || t == ShapeTypeHeightField
}

// ShapeInterface is the closed set of collision shapes.
// Only the shapes of this package implement it.
type ShapeInterface interface {
	Type() ShapeType
	// LocalAABB is the bounding box of the shape in its own frame
	LocalAABB() AABB
	sealed()
}

// Convex is implemented by the primitive shapes usable by GJK, EPA and MPR.
// A convex shape is its core (point, segment or polytope) inflated by Margin.
type Convex interface {
	ShapeInterface
	// Support returns the core point furthest along direction and the id of the
	// core vertex it belongs to.
	Support(direction mgl64.Vec3) (mgl64.Vec3, int)
	// Margin is the rounding radius around the core
	Margin() float64
	// FeatureFromVertices returns the smallest feature containing all given core
	// vertex ids. direction is the outward direction of interest, used to pick a
	// side when several features qualify.
	FeatureFromVertices(ids []int, direction mgl64.Vec3) Feature
	// FeaturePoints returns the core points of a feature in local space: one for a
	// vertex, two for an edge, a CCW polygon (seen from outside) for a face.
	FeaturePoints(f Feature) []mgl64.Vec3
	// FaceNormal returns the local outward normal of a face feature
	FaceNormal(f Feature) mgl64.Vec3
	// SupportFeature returns the feature most parallel to the local direction:
	// the best aligned face for polytopes, the side edge or a cap for capsules.
	SupportFeature(direction mgl64.Vec3) Feature
}

// parallelTolerance is the |cos| below which a capsule axis counts as
// perpendicular to a direction
const parallelTolerance = 1e-3

// Sphere represents a spherical collision shape
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

func (s *Sphere) Type() ShapeType { return ShapeTypeSphere }
func (s *Sphere) sealed()         {}

// LocalAABB calculates the axis-aligned bounding box for the sphere
func (s *Sphere) LocalAABB() AABB {
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: s.Center.Sub(radiusVec), Max: s.Center.Add(radiusVec)}
}

func (s *Sphere) Support(direction mgl64.Vec3) (mgl64.Vec3, int) {
	return s.Center, 0
}

func (s *Sphere) Margin() float64 { return s.Radius }

func (s *Sphere) FeatureFromVertices(ids []int, direction mgl64.Vec3) Feature {
	return VertexFeature(0)
}

func (s *Sphere) FeaturePoints(f Feature) []mgl64.Vec3 {
	return []mgl64.Vec3{s.Center}
}

func (s *Sphere) FaceNormal(f Feature) mgl64.Vec3 { return mgl64.Vec3{} }

func (s *Sphere) SupportFeature(direction mgl64.Vec3) Feature { return VertexFeature(0) }

// Capsule is a segment P0-P1 inflated by Radius
type Capsule struct {
	P0, P1 mgl64.Vec3
	Radius float64
}

func (c *Capsule) Type() ShapeType { return ShapeTypeCapsule }
func (c *Capsule) sealed()         {}

func (c *Capsule) LocalAABB() AABB {
	return EmptyAABB().Extend(c.P0).Extend(c.P1).Expand(c.Radius)
}

// Axis returns P1 - P0
func (c *Capsule) Axis() mgl64.Vec3 { return c.P1.Sub(c.P0) }

func (c *Capsule) Support(direction mgl64.Vec3) (mgl64.Vec3, int) {
	if c.P1.Dot(direction) > c.P0.Dot(direction) {
		return c.P1, 1
	}
	return c.P0, 0
}

func (c *Capsule) Margin() float64 { return c.Radius }

func (c *Capsule) FeatureFromVertices(ids []int, direction mgl64.Vec3) Feature {
	has := [2]bool{}
	for _, id := range ids {
		if id == 0 || id == 1 {
			has[id] = true
		}
	}
	if has[0] && has[1] {
		return EdgeFeature(0)
	}
	if has[1] {
		return VertexFeature(1)
	}
	return VertexFeature(0)
}

func (c *Capsule) FeaturePoints(f Feature) []mgl64.Vec3 {
	switch f.Kind {
	case FeatureEdge:
		return []mgl64.Vec3{c.P0, c.P1}
	case FeatureVertex:
		if f.Index == 1 {
			return []mgl64.Vec3{c.P1}
		}
		return []mgl64.Vec3{c.P0}
	}
	return nil
}

func (c *Capsule) FaceNormal(f Feature) mgl64.Vec3 { return mgl64.Vec3{} }

func (c *Capsule) SupportFeature(direction mgl64.Vec3) Feature {
	axis := c.Axis()
	length := axis.Len()
	dirLen := direction.Len()
	if length < 1e-12 || dirLen < 1e-12 {
		return VertexFeature(0)
	}
	cos := axis.Dot(direction) / (length * dirLen)
	if math.Abs(cos) < parallelTolerance {
		return EdgeFeature(0)
	}
	if cos > 0 {
		return VertexFeature(1)
	}
	return VertexFeature(0)
}

// Box represents an oriented box collision shape
// The box is defined by its center and half-extents (half-width, half-height, half-depth)
type Box struct {
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
}

func (b *Box) Type() ShapeType { return ShapeTypeBox }
func (b *Box) sealed()         {}

func (b *Box) LocalAABB() AABB {
	return AABB{Min: b.Center.Sub(b.HalfExtents), Max: b.Center.Add(b.HalfExtents)}
}

// Corner returns the box vertex with the given feature index
func (b *Box) Corner(index int) mgl64.Vec3 {
	corner := b.Center
	for i := 0; i < 3; i++ {
		if index&(1<<i) != 0 {
			corner[i] += b.HalfExtents[i]
		} else {
			corner[i] -= b.HalfExtents[i]
		}
	}
	return corner
}

func (b *Box) Support(direction mgl64.Vec3) (mgl64.Vec3, int) {
	index := 0
	for i := 0; i < 3; i++ {
		if direction[i] >= 0 {
			index |= 1 << i
		}
	}
	return b.Corner(index), index
}

func (b *Box) Margin() float64 { return 0 }

func (b *Box) FeatureFromVertices(ids []int, direction mgl64.Vec3) Feature {
	if len(ids) == 0 {
		return Feature{}
	}

	// Axes on which every vertex agrees
	agreeMask := 0
	for axis := 0; axis < 3; axis++ {
		bit := ids[0] & (1 << axis)
		same := true
		for _, id := range ids[1:] {
			if id&(1<<axis) != bit {
				same = false
				break
			}
		}
		if same {
			agreeMask |= 1 << axis
		}
	}

	signs := [3]bool{ids[0]&1 != 0, ids[0]&2 != 0, ids[0]&4 != 0}
	switch agreeMask {
	case 7:
		return VertexFeature(ids[0])
	case 6:
		return BoxEdgeFeature(0, signs)
	case 5:
		return BoxEdgeFeature(1, signs)
	case 3:
		return BoxEdgeFeature(2, signs)
	case 0:
		return Feature{}
	}

	// One shared axis: the vertices span a face. Several shared axes cannot
	// happen here since 3, 5, 6 and 7 are handled above.
	for axis := 0; axis < 3; axis++ {
		if agreeMask&(1<<axis) != 0 {
			return BoxFaceFeature(axis, signs[axis])
		}
	}
	return Feature{}
}

func (b *Box) FeaturePoints(f Feature) []mgl64.Vec3 {
	switch f.Kind {
	case FeatureVertex:
		return []mgl64.Vec3{b.Corner(f.Index)}
	case FeatureEdge:
		axis := f.Index / 4
		u, v := (axis+1)%3, (axis+2)%3
		if u > v {
			u, v = v, u
		}
		base := 0
		if f.Index&1 != 0 {
			base |= 1 << u
		}
		if f.Index&2 != 0 {
			base |= 1 << v
		}
		return []mgl64.Vec3{b.Corner(base), b.Corner(base | 1<<axis)}
	case FeatureFace:
		axis := f.Index / 2
		positive := f.Index%2 == 1
		u, v := (axis+1)%3, (axis+2)%3
		side := 0
		if positive {
			side = 1 << axis
		}
		// CCW around +axis is (u-,v-) (u+,v-) (u+,v+) (u-,v+)
		quad := []mgl64.Vec3{
			b.Corner(side),
			b.Corner(side | 1<<u),
			b.Corner(side | 1<<u | 1<<v),
			b.Corner(side | 1<<v),
		}
		if !positive {
			quad[1], quad[3] = quad[3], quad[1]
		}
		return quad
	}
	return nil
}

func (b *Box) FaceNormal(f Feature) mgl64.Vec3 {
	if f.Kind != FeatureFace {
		return mgl64.Vec3{}
	}
	var n mgl64.Vec3
	if f.Index%2 == 1 {
		n[f.Index/2] = 1
	} else {
		n[f.Index/2] = -1
	}
	return n
}

// SupportFeature finds the face most parallel to the direction
// (the one whose normal points the most in the direction)
func (b *Box) SupportFeature(direction mgl64.Vec3) Feature {
	best := 0
	for i := 1; i < 3; i++ {
		if math.Abs(direction[i]) > math.Abs(direction[best]) {
			best = i
		}
	}
	return BoxFaceFeature(best, direction[best] >= 0)
}

// getTangentBasis returns two unit vectors orthogonal to normal and to each other
func getTangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var tangent1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	} else {
		tangent1 = mgl64.Vec3{1, 0, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}

// TangentBasis is the exported form of getTangentBasis. normal must be unit length.
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	return getTangentBasis(normal)
}
