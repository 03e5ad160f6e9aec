package epa

import (
	"testing"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxBody(position, halfExtents mgl64.Vec3) actor.Body {
	return actor.NewBody(&actor.Box{HalfExtents: halfExtents}, actor.Translation(position))
}

func pointBody(position mgl64.Vec3) actor.Body {
	return actor.NewBody(&actor.Sphere{Radius: 0.1}, actor.Translation(position))
}

func assertVec(t *testing.T, expected, actual mgl64.Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, expected[i], actual[i], delta, "component %d of %v", i, actual)
	}
}

// TestSnapNormalToAxis tests the normal snapping function for numerical stability
func TestSnapNormalToAxis(t *testing.T) {
	tests := []struct {
		name     string
		input    mgl64.Vec3
		expected mgl64.Vec3
	}{
		{"small_x_component", mgl64.Vec3{1e-13, 1.0, 0.0}, mgl64.Vec3{0.0, 1.0, 0.0}},
		{"small_z_component", mgl64.Vec3{0.0, 1.0, 1e-13}, mgl64.Vec3{0.0, 1.0, 0.0}},
		{"already_axis_aligned_x", mgl64.Vec3{1.0, 0.0, 0.0}, mgl64.Vec3{1.0, 0.0, 0.0}},
		{"diagonal_normal", mgl64.Vec3{1.0, 1.0, 1.0}.Normalize(), mgl64.Vec3{1.0, 1.0, 1.0}.Normalize()},
		{"near_zero_vector", mgl64.Vec3{1e-13, 1e-13, 1e-13}, mgl64.Vec3{0.0, 1.0, 0.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := snapNormalToAxis(tt.input)
			assertVec(t, tt.expected, result, 1e-9)
			assert.InDelta(t, 1.0, result.Len(), 1e-9)
		})
	}
}

func TestPenetration(t *testing.T) {
	tests := []struct {
		name       string
		a, b       actor.Body
		wantDepth  float64
		wantNormal mgl64.Vec3
	}{
		{
			name:       "overlapping boxes along x",
			a:          boxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}),
			b:          boxBody(mgl64.Vec3{1.5, 0.2, 0.1}, mgl64.Vec3{1, 1, 1}),
			wantDepth:  0.5,
			wantNormal: mgl64.Vec3{1, 0, 0},
		},
		{
			name:       "point inside box near the top face",
			a:          boxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}),
			b:          pointBody(mgl64.Vec3{0.2, 0.7, 0}),
			wantDepth:  0.3,
			wantNormal: mgl64.Vec3{0, 1, 0},
		},
		{
			name:       "box resting into a wide box",
			a:          boxBody(mgl64.Vec3{0, -1, 0}, mgl64.Vec3{5, 1, 5}),
			b:          boxBody(mgl64.Vec3{0.3, 0.4, -0.2}, mgl64.Vec3{0.5, 0.5, 0.5}),
			wantDepth:  0.1,
			wantNormal: mgl64.Vec3{0, 1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gjk.Distance(tt.a, tt.b, gjk.DefaultSettings())
			require.True(t, g.Overlap)

			r := Penetration(tt.a, tt.b, g.Simplex, DefaultSettings())
			assert.False(t, r.Approximate)
			assert.InDelta(t, tt.wantDepth, r.Depth, 1e-6)
			assertVec(t, tt.wantNormal, r.Normal, 1e-6)
			// pA - pB = depth * normal
			assertVec(t, r.Normal.Mul(r.Depth), r.PointA.Sub(r.PointB), 1e-6)
		})
	}
}

func TestPenetrationFromSingleVertex(t *testing.T) {
	a := boxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := pointBody(mgl64.Vec3{0.2, 0.7, 0})

	seed := []gjk.Vertex{gjk.Support(a, b, mgl64.Vec3{0, 1, 0})}
	r := Penetration(a, b, seed, DefaultSettings())
	assert.InDelta(t, 0.3, r.Depth, 1e-6)
	assertVec(t, mgl64.Vec3{0, 1, 0}, r.Normal, 1e-6)
	assertVec(t, mgl64.Vec3{0.2, 0.7, 0}, r.PointB, 1e-9)
}

func TestPenetrationFlatDifference(t *testing.T) {
	a := actor.NewBody(&actor.Triangle{V: [3]mgl64.Vec3{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}}}, actor.NewTransform())
	b := actor.NewBody(&actor.Triangle{V: [3]mgl64.Vec3{{0.5, 0.5, 0}, {3, 0.5, 0}, {0.5, 3, 0}}}, actor.NewTransform())

	g := gjk.Distance(a, b, gjk.DefaultSettings())
	require.True(t, g.Overlap)

	r := Penetration(a, b, g.Simplex, DefaultSettings())
	assert.Equal(t, 0.0, r.Depth)
	assert.InDelta(t, 1.0, r.Normal.Len(), 1e-9)
	assert.InDelta(t, 1.0, r.Normal.Z()*r.Normal.Z(), 1e-9)
}

func TestPolytopeExpand(t *testing.T) {
	var b PolytopeBuilder
	b.BuildTetrahedron([4]gjk.Vertex{
		{W: mgl64.Vec3{1, -1, -1}},
		{W: mgl64.Vec3{-1, 1, -1}},
		{W: mgl64.Vec3{-1, -1, 1}},
		{W: mgl64.Vec3{1, 1, 1}},
	})
	require.Len(t, b.faces, 4)
	for _, f := range b.faces {
		assert.Greater(t, f.Distance, 0.0, "outward faces of a tetrahedron around the origin")
	}

	closest := b.ClosestFace()
	n := b.faces[closest].Normal
	b.Expand(gjk.Vertex{W: n.Mul(3)}, closest)

	// one face replaced by three
	assert.Len(t, b.faces, 6)
	assert.Len(t, b.vertices, 5)
	for _, f := range b.faces {
		assert.Greater(t, f.Distance, 0.0)
	}
}
