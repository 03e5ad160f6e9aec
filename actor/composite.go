package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidCompound is returned when a compound asset cannot be built
var ErrInvalidCompound = errors.New("invalid compound")

// CandidateEnumerator yields the indices of sub-shapes whose bounds intersect
// a region given in the asset's unscaled local space. Enumeration stops as
// soon as yield returns false.
type CandidateEnumerator interface {
	Candidates(region AABB, yield func(index int) bool)
}

// TriangleSource is read-only triangle geometry addressable by index.
// Triangle returns false for indices that hold no triangle (holes).
type TriangleSource interface {
	TriangleCount() int
	Triangle(index int) ([3]mgl64.Vec3, bool)
	Bounds() AABB
}

// HeightSource is a TriangleSource laid out as a height grid, with the height
// range used to reject regions before enumeration.
type HeightSource interface {
	TriangleSource
	HeightRange() (float64, float64)
}

// CompoundChild is one convex part of a compound, placed in the compound frame
type CompoundChild struct {
	Shape     Convex
	Transform Transform
}

// CompoundAsset is the shared, immutable list of compound parts
type CompoundAsset struct {
	Children []CompoundChild
	bounds   AABB
}

// NewCompoundAsset copies the children and precomputes the bounds
func NewCompoundAsset(children []CompoundChild) (*CompoundAsset, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: no children", ErrInvalidCompound)
	}
	asset := &CompoundAsset{
		Children: make([]CompoundChild, len(children)),
		bounds:   EmptyAABB(),
	}
	for i, child := range children {
		if child.Shape == nil {
			return nil, fmt.Errorf("%w: child %d has no shape", ErrInvalidCompound, i)
		}
		child.Transform = child.Transform.Normalized()
		asset.Children[i] = child
		asset.bounds = asset.bounds.Union(child.Shape.LocalAABB().Transform(child.Transform))
	}
	return asset, nil
}

// Compound is a collection of convex parts sharing one placement.
// Scale is uniform and applied to the parts and their offsets.
type Compound struct {
	Asset *CompoundAsset
	Scale float64
}

// NewCompound returns an unscaled compound instance
func NewCompound(asset *CompoundAsset) *Compound {
	return &Compound{Asset: asset, Scale: 1}
}

func (c *Compound) Type() ShapeType { return ShapeTypeCompound }
func (c *Compound) sealed()         {}

func (c *Compound) scale() float64 {
	if c.Scale == 0 {
		return 1
	}
	return c.Scale
}

func (c *Compound) LocalAABB() AABB {
	s := c.scale()
	return c.Asset.bounds.Scale(mgl64.Vec3{s, s, s})
}

// ChildCount returns the number of parts
func (c *Compound) ChildCount() int { return len(c.Asset.Children) }

// Child returns part i, scaled, with its transform in the compound frame
func (c *Compound) Child(i int) (Convex, Transform) {
	child := c.Asset.Children[i]
	s := c.scale()
	if s == 1 {
		return child.Shape, child.Transform
	}
	t := child.Transform
	t.Position = t.Position.Mul(s)
	return ScaleConvex(child.Shape, s), t
}

// ScaleConvex returns a copy of a convex shape uniformly scaled about its
// local origin.
func ScaleConvex(shape Convex, s float64) Convex {
	abs := math.Abs(s)
	switch sh := shape.(type) {
	case *Sphere:
		return &Sphere{Center: sh.Center.Mul(s), Radius: sh.Radius * abs}
	case *Capsule:
		return &Capsule{P0: sh.P0.Mul(s), P1: sh.P1.Mul(s), Radius: sh.Radius * abs}
	case *Box:
		return &Box{Center: sh.Center.Mul(s), HalfExtents: sh.HalfExtents.Mul(abs)}
	case *Triangle:
		return &Triangle{V: [3]mgl64.Vec3{sh.V[0].Mul(s), sh.V[1].Mul(s), sh.V[2].Mul(s)}}
	case *ConvexHull:
		return &ConvexHull{Asset: sh.Asset, Scale: sh.Scale.Mul(s)}
	}
	return shape
}

// scaleVec multiplies component-wise
func scaleVec(v, s mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0] * s[0], v[1] * s[1], v[2] * s[2]}
}

func normalizeScale(s mgl64.Vec3) mgl64.Vec3 {
	if s == (mgl64.Vec3{}) {
		return mgl64.Vec3{1, 1, 1}
	}
	return s
}

// TriangleSoup is an unstructured triangle mesh. Index may be nil, in which
// case every triangle is a candidate.
type TriangleSoup struct {
	Source TriangleSource
	Index  CandidateEnumerator
	Scale  mgl64.Vec3
}

func (m *TriangleSoup) Type() ShapeType { return ShapeTypeTriangleSoup }
func (m *TriangleSoup) sealed()         {}

func (m *TriangleSoup) LocalAABB() AABB {
	return m.Source.Bounds().Scale(normalizeScale(m.Scale))
}

// Triangle returns sub-shape i, scaled, in the soup frame
func (m *TriangleSoup) Triangle(i int) (*Triangle, bool) {
	return scaledTriangle(m.Source, i, normalizeScale(m.Scale))
}

// Candidates enumerates the triangles that may touch a region given in the
// scaled local frame
func (m *TriangleSoup) Candidates(region AABB, yield func(int) bool) {
	scale := normalizeScale(m.Scale)
	local := region.InverseScale(scale)
	if !local.Overlaps(m.Source.Bounds()) {
		return
	}
	enumerate(m.Source, m.Index, local, yield)
}

// HeightField is a grid of heights triangulated two triangles per cell.
// Sub-shape index = cell*2 + k.
type HeightField struct {
	Source HeightSource
	Index  CandidateEnumerator
	Scale  mgl64.Vec3
}

func (h *HeightField) Type() ShapeType { return ShapeTypeHeightField }
func (h *HeightField) sealed()         {}

func (h *HeightField) LocalAABB() AABB {
	return h.Source.Bounds().Scale(normalizeScale(h.Scale))
}

// Triangle returns sub-shape i, scaled, in the height field frame
func (h *HeightField) Triangle(i int) (*Triangle, bool) {
	return scaledTriangle(h.Source, i, normalizeScale(h.Scale))
}

// Candidates enumerates the triangles that may touch a region given in the
// scaled local frame. Regions outside the height range are rejected first.
func (h *HeightField) Candidates(region AABB, yield func(int) bool) {
	scale := normalizeScale(h.Scale)
	local := region.InverseScale(scale)
	lo, hi := h.Source.HeightRange()
	if local.Max.Y() < lo || local.Min.Y() > hi {
		return
	}
	if !local.Overlaps(h.Source.Bounds()) {
		return
	}
	enumerate(h.Source, h.Index, local, yield)
}

func scaledTriangle(source TriangleSource, i int, scale mgl64.Vec3) (*Triangle, bool) {
	v, ok := source.Triangle(i)
	if !ok {
		return nil, false
	}
	return &Triangle{V: [3]mgl64.Vec3{
		scaleVec(v[0], scale),
		scaleVec(v[1], scale),
		scaleVec(v[2], scale),
	}}, true
}

func enumerate(source TriangleSource, index CandidateEnumerator, region AABB, yield func(int) bool) {
	if index != nil {
		index.Candidates(region, yield)
		return
	}
	for i := 0; i < source.TriangleCount(); i++ {
		if !yield(i) {
			return
		}
	}
}

// BulkShape is implemented by TriangleSoup and HeightField
type BulkShape interface {
	ShapeInterface
	Triangle(i int) (*Triangle, bool)
	Candidates(region AABB, yield func(int) bool)
}
