package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns an inverted box that any Extend call will overwrite
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no point
func (a AABB) IsEmpty() bool {
	return a.Min.X() > a.Max.X() || a.Min.Y() > a.Max.Y() || a.Min.Z() > a.Max.Z()
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Extend grows the box to include point
func (a AABB) Extend(point mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = math.Min(a.Min[i], point[i])
		a.Max[i] = math.Max(a.Max[i], point[i])
	}
	return a
}

// Union returns the smallest box containing both boxes
func (a AABB) Union(other AABB) AABB {
	if other.IsEmpty() {
		return a
	}
	return a.Extend(other.Min).Extend(other.Max)
}

// Expand grows the box by margin on every side
func (a AABB) Expand(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Center returns the middle of the box
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// HalfExtents returns half the size of the box on each axis
func (a AABB) HalfExtents() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// Transform returns the world box enclosing a local box placed by t
func (a AABB) Transform(t Transform) AABB {
	if a.IsEmpty() {
		return a
	}
	center := t.Apply(a.Center())
	half := a.HalfExtents()

	// Extent along each world axis is |R| * half
	m := t.Rotation.Mat4().Mat3()
	var extent mgl64.Vec3
	for i := 0; i < 3; i++ {
		extent[i] = math.Abs(m.At(i, 0))*half[0] + math.Abs(m.At(i, 1))*half[1] + math.Abs(m.At(i, 2))*half[2]
	}

	return AABB{Min: center.Sub(extent), Max: center.Add(extent)}
}

// Scale maps the box through a per-axis scale, keeping Min <= Max
// when a scale component is negative.
func (a AABB) Scale(scale mgl64.Vec3) AABB {
	out := a
	for i := 0; i < 3; i++ {
		lo, hi := a.Min[i]*scale[i], a.Max[i]*scale[i]
		out.Min[i] = math.Min(lo, hi)
		out.Max[i] = math.Max(lo, hi)
	}
	return out
}

// InverseScale undoes Scale. Zero scale components map to an unbounded axis.
func (a AABB) InverseScale(scale mgl64.Vec3) AABB {
	out := a
	for i := 0; i < 3; i++ {
		if scale[i] == 0 {
			out.Min[i] = math.Inf(-1)
			out.Max[i] = math.Inf(1)
			continue
		}
		lo, hi := a.Min[i]/scale[i], a.Max[i]/scale[i]
		out.Min[i] = math.Min(lo, hi)
		out.Max[i] = math.Max(lo, hi)
	}
	return out
}
