package actor

import "github.com/go-gl/mathgl/mgl64"

// Triangle is a two-sided triangle. Face 0 is the side whose normal is
// (V1-V0)x(V2-V0), face 1 the opposite side.
type Triangle struct {
	V [3]mgl64.Vec3
}

func (t *Triangle) Type() ShapeType { return ShapeTypeTriangle }
func (t *Triangle) sealed()         {}

func (t *Triangle) LocalAABB() AABB {
	return EmptyAABB().Extend(t.V[0]).Extend(t.V[1]).Extend(t.V[2])
}

// RawNormal is the unnormalized front normal
func (t *Triangle) RawNormal() mgl64.Vec3 {
	return t.V[1].Sub(t.V[0]).Cross(t.V[2].Sub(t.V[0]))
}

// Normal is the unit front normal, zero for a degenerate triangle
func (t *Triangle) Normal() mgl64.Vec3 {
	n := t.RawNormal()
	l := n.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}
	}
	return n.Mul(1 / l)
}

// IsDegenerate reports a triangle with (numerically) zero area
func (t *Triangle) IsDegenerate() bool {
	n := t.RawNormal()
	scale := t.V[1].Sub(t.V[0]).LenSqr() + t.V[2].Sub(t.V[0]).LenSqr() + t.V[2].Sub(t.V[1]).LenSqr()
	return n.LenSqr() <= 1e-18*scale*scale || scale == 0
}

// LongestEdge returns the endpoints of the longest edge and its feature index
func (t *Triangle) LongestEdge() (mgl64.Vec3, mgl64.Vec3, int) {
	best := 0
	bestLen := -1.0
	for i := 0; i < 3; i++ {
		l := t.V[(i+1)%3].Sub(t.V[i]).LenSqr()
		if l > bestLen {
			best, bestLen = i, l
		}
	}
	return t.V[best], t.V[(best+1)%3], best
}

func (t *Triangle) Support(direction mgl64.Vec3) (mgl64.Vec3, int) {
	best := 0
	bestDot := t.V[0].Dot(direction)
	for i := 1; i < 3; i++ {
		if d := t.V[i].Dot(direction); d > bestDot {
			best, bestDot = i, d
		}
	}
	return t.V[best], best
}

func (t *Triangle) Margin() float64 { return 0 }

// TriangleEdgeIndex returns the edge index joining two distinct vertices
func TriangleEdgeIndex(i, j int) int {
	if (i+1)%3 == j {
		return i
	}
	return j
}

func (t *Triangle) FeatureFromVertices(ids []int, direction mgl64.Vec3) Feature {
	var has [3]bool
	count := 0
	for _, id := range ids {
		if id >= 0 && id < 3 && !has[id] {
			has[id] = true
			count++
		}
	}

	switch count {
	case 0:
		return Feature{}
	case 1:
		for i := 0; i < 3; i++ {
			if has[i] {
				return VertexFeature(i)
			}
		}
	case 2:
		for i := 0; i < 3; i++ {
			j := (i + 1) % 3
			if has[i] && has[j] {
				return EdgeFeature(i)
			}
		}
	}
	return t.SupportFeature(direction)
}

func (t *Triangle) FeaturePoints(f Feature) []mgl64.Vec3 {
	switch f.Kind {
	case FeatureVertex:
		return []mgl64.Vec3{t.V[f.Index]}
	case FeatureEdge:
		return []mgl64.Vec3{t.V[f.Index], t.V[(f.Index+1)%3]}
	case FeatureFace:
		if f.Index == 1 {
			return []mgl64.Vec3{t.V[0], t.V[2], t.V[1]}
		}
		return []mgl64.Vec3{t.V[0], t.V[1], t.V[2]}
	}
	return nil
}

func (t *Triangle) FaceNormal(f Feature) mgl64.Vec3 {
	if f.Kind != FeatureFace {
		return mgl64.Vec3{}
	}
	if f.Index == 1 {
		return t.Normal().Mul(-1)
	}
	return t.Normal()
}

func (t *Triangle) SupportFeature(direction mgl64.Vec3) Feature {
	if t.RawNormal().Dot(direction) < 0 {
		return FaceFeature(1)
	}
	return FaceFeature(0)
}
