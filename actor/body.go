package actor

import "github.com/go-gl/mathgl/mgl64"

// Body is a shape instance placed in the common query space
type Body struct {
	Shape     ShapeInterface
	Transform Transform
}

// NewBody places a shape. The rotation is normalized.
func NewBody(shape ShapeInterface, transform Transform) Body {
	return Body{Shape: shape, Transform: transform.Normalized()}
}

// Convex returns the shape as a Convex when it is one
func (b Body) Convex() (Convex, bool) {
	c, ok := b.Shape.(Convex)
	return c, ok
}

// SupportWorld returns the world core support point of a convex body and the
// id of the core vertex that produced it.
func (b Body) SupportWorld(direction mgl64.Vec3) (mgl64.Vec3, int) {
	convex := b.Shape.(Convex)

	// 1. Transformer la direction en espace local (rotation inverse)
	localDirection := b.Transform.RotateInverse(direction)

	// 2. Trouver le support en espace local
	localSupport, id := convex.Support(localDirection)

	// 3. Transformer le point support en espace monde (rotation + translation)
	return b.Transform.Apply(localSupport), id
}

// Margin returns the rounding radius of a convex body, zero otherwise
func (b Body) Margin() float64 {
	if c, ok := b.Shape.(Convex); ok {
		return c.Margin()
	}
	return 0
}

// ComputeAABB returns the world bounding box of the body
func (b Body) ComputeAABB() AABB {
	return b.Shape.LocalAABB().Transform(b.Transform)
}

// Center returns a world point inside the body's core, used to seed GJK and MPR
func (b Body) Center() mgl64.Vec3 {
	switch s := b.Shape.(type) {
	case *Sphere:
		return b.Transform.Apply(s.Center)
	case *Capsule:
		return b.Transform.Apply(s.P0.Add(s.P1).Mul(0.5))
	case *Box:
		return b.Transform.Apply(s.Center)
	case *Triangle:
		return b.Transform.Apply(s.V[0].Add(s.V[1]).Add(s.V[2]).Mul(1.0 / 3.0))
	case *ConvexHull:
		// Vertex average is always inside a convex polytope, the box centre is not
		var sum mgl64.Vec3
		for i := range s.Asset.Vertices {
			sum = sum.Add(s.Vertex(i))
		}
		return b.Transform.Apply(sum.Mul(1 / float64(len(s.Asset.Vertices))))
	}
	return b.Transform.Apply(b.Shape.LocalAABB().Center())
}

// WithTransform returns a copy placed elsewhere
func (b Body) WithTransform(t Transform) Body {
	b.Transform = t
	return b
}
