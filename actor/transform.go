package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid placement (rotation then translation) in 3D space
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// Translation creates a transform with identity rotation at the given position
func Translation(position mgl64.Vec3) Transform {
	return Transform{Position: position, Rotation: mgl64.QuatIdent()}
}

// Apply maps a local point to the parent space
func (t Transform) Apply(point mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(point))
}

// ApplyInverse maps a parent-space point to the local space
func (t Transform) ApplyInverse(point mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(point.Sub(t.Position))
}

// Rotate rotates a direction from local to parent space
func (t Transform) Rotate(direction mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(direction)
}

// RotateInverse rotates a direction from parent to local space
func (t Transform) RotateInverse(direction mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(direction)
}

// Mul composes t with a child transform expressed in t's local space.
// The result maps child-local points directly to t's parent space.
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Position: t.Apply(child.Position),
		Rotation: t.Rotation.Mul(child.Rotation).Normalize(),
	}
}

// Inverse returns the transform mapping parent-space points back to local space
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Conjugate()
	return Transform{
		Position: inv.Rotate(t.Position.Mul(-1)),
		Rotation: inv,
	}
}

// Relative returns other expressed in the local space of t
func (t Transform) Relative(other Transform) Transform {
	return t.Inverse().Mul(other)
}

// Normalized returns the transform with a unit rotation quaternion.
// A zero quaternion is treated as identity.
func (t Transform) Normalized() Transform {
	if t.Rotation.Len() < 1e-12 {
		t.Rotation = mgl64.QuatIdent()
		return t
	}
	t.Rotation = t.Rotation.Normalize()
	return t
}
