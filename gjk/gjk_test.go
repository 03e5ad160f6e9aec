package gjk

import (
	"math"
	"testing"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper functions

func createBoxBody(position mgl64.Vec3, halfExtents mgl64.Vec3) actor.Body {
	return actor.NewBody(&actor.Box{HalfExtents: halfExtents}, actor.Translation(position))
}

func createSphereBody(position mgl64.Vec3, radius float64) actor.Body {
	return actor.NewBody(&actor.Sphere{Radius: radius}, actor.Translation(position))
}

func assertVec(t *testing.T, expected, actual mgl64.Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, expected[i], actual[i], delta, "component %d of %v", i, actual)
	}
}

func TestMinkowskiSupport(t *testing.T) {
	t.Run("two separated spheres along x-axis", func(t *testing.T) {
		a := createSphereBody(mgl64.Vec3{0, 0, 0}, 1.0)
		b := createSphereBody(mgl64.Vec3{3, 0, 0}, 1.0)

		// max(A.x) - min(B.x) = 1 - 2
		support := MinkowskiSupport(a, b, mgl64.Vec3{1, 0, 0})
		assert.InDelta(t, -1.0, support.X(), 1e-12)
	})

	t.Run("two overlapping spheres", func(t *testing.T) {
		a := createSphereBody(mgl64.Vec3{0, 0, 0}, 1.0)
		b := createSphereBody(mgl64.Vec3{1.5, 0, 0}, 1.0)

		support := MinkowskiSupport(a, b, mgl64.Vec3{1, 0, 0})
		assert.InDelta(t, 0.5, support.X(), 1e-12)
	})

	t.Run("core support ignores margins", func(t *testing.T) {
		a := createSphereBody(mgl64.Vec3{0, 0, 0}, 1.0)
		b := createSphereBody(mgl64.Vec3{3, 0, 0}, 1.0)

		v := Support(a, b, mgl64.Vec3{1, 0, 0})
		assertVec(t, mgl64.Vec3{-3, 0, 0}, v.W, 1e-12)
		assertVec(t, mgl64.Vec3{0, 0, 0}, v.A, 1e-12)
		assertVec(t, mgl64.Vec3{3, 0, 0}, v.B, 1e-12)
	})
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b actor.Body
		want bool
	}{
		{
			name: "overlapping spheres",
			a:    createSphereBody(mgl64.Vec3{0, 0, 0}, 1),
			b:    createSphereBody(mgl64.Vec3{1.5, 0, 0}, 1),
			want: true,
		},
		{
			name: "separated spheres",
			a:    createSphereBody(mgl64.Vec3{0, 0, 0}, 1),
			b:    createSphereBody(mgl64.Vec3{2.5, 0, 0}, 1),
			want: false,
		},
		{
			name: "overlapping boxes",
			a:    createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}),
			b:    createBoxBody(mgl64.Vec3{1.5, 0.3, -0.2}, mgl64.Vec3{1, 1, 1}),
			want: true,
		},
		{
			name: "separated boxes",
			a:    createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}),
			b:    createBoxBody(mgl64.Vec3{0, 2.5, 0}, mgl64.Vec3{1, 1, 1}),
			want: false,
		},
		{
			name: "box inside box",
			a:    createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 2, 2}),
			b:    createBoxBody(mgl64.Vec3{0.1, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}),
			want: true,
		},
		{
			name: "sphere against box corner region",
			a:    createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}),
			b:    createSphereBody(mgl64.Vec3{1.5, 1.5, 1.5}, 0.5),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			simplex := SimplexPool.Get().(*Simplex)
			defer SimplexPool.Put(simplex)
			simplex.Reset()

			assert.Equal(t, tt.want, Intersect(tt.a, tt.b, simplex, 32))
			assert.LessOrEqual(t, simplex.Count, 4)
		})
	}
}

func TestDistance(t *testing.T) {
	rotated := actor.NewBody(
		&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
		actor.Transform{Rotation: mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1})},
	)
	hullAsset, err := actor.NewBoxHull(mgl64.Vec3{1, 1, 1})
	require.NoError(t, err)

	tests := []struct {
		name       string
		a, b       actor.Body
		wantDist   float64
		wantNormal mgl64.Vec3
	}{
		{
			name:       "sphere cores",
			a:          createSphereBody(mgl64.Vec3{0, 0, 0}, 1),
			b:          createSphereBody(mgl64.Vec3{3, 0, 0}, 1),
			wantDist:   3,
			wantNormal: mgl64.Vec3{1, 0, 0},
		},
		{
			name:       "box faces",
			a:          createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}),
			b:          createBoxBody(mgl64.Vec3{2, 0.2, 0}, mgl64.Vec3{0.5, 0.5, 0.5}),
			wantDist:   1,
			wantNormal: mgl64.Vec3{1, 0, 0},
		},
		{
			name:       "box corner to point",
			a:          createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}),
			b:          createSphereBody(mgl64.Vec3{2, 2, 2}, 0.1),
			wantDist:   math.Sqrt(3),
			wantNormal: mgl64.Vec3{1, 1, 1}.Normalize(),
		},
		{
			name:       "rotated box edge",
			a:          rotated,
			b:          createSphereBody(mgl64.Vec3{3, 0, 0}, 0.1),
			wantDist:   3 - math.Sqrt2,
			wantNormal: mgl64.Vec3{1, 0, 0},
		},
		{
			name:       "hull face",
			a:          actor.NewBody(actor.NewConvexHull(hullAsset), actor.NewTransform()),
			b:          createSphereBody(mgl64.Vec3{0, -3, 0.5}, 0.5),
			wantDist:   2,
			wantNormal: mgl64.Vec3{0, -1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Distance(tt.a, tt.b, DefaultSettings())
			require.False(t, r.Overlap)
			assert.False(t, r.Approximate)
			assert.InDelta(t, tt.wantDist, r.Distance, 1e-6)
			assertVec(t, tt.wantNormal, r.Normal, 1e-6)
			assert.InDelta(t, r.Distance, r.PointB.Sub(r.PointA).Len(), 1e-9)

			flipped := Distance(tt.b, tt.a, DefaultSettings())
			assert.InDelta(t, r.Distance, flipped.Distance, 1e-6)
			assertVec(t, r.Normal.Mul(-1), flipped.Normal, 1e-6)
		})
	}
}

func TestDistanceFeatureIDs(t *testing.T) {
	a := createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := createSphereBody(mgl64.Vec3{2, 2, 2}, 0.1)

	r := Distance(a, b, DefaultSettings())
	assert.Equal(t, []int{7}, r.IDsA)
	assert.Equal(t, []int{0}, r.IDsB)
	assertVec(t, mgl64.Vec3{1, 1, 1}, r.PointA, 1e-9)
	assertVec(t, mgl64.Vec3{2, 2, 2}, r.PointB, 1e-9)
}

func TestDistanceOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b actor.Body
	}{
		{
			name: "interpenetrating boxes",
			a:    createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}),
			b:    createBoxBody(mgl64.Vec3{1.2, 0.4, 0.1}, mgl64.Vec3{1, 1, 1}),
		},
		{
			name: "point inside box",
			a:    createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}),
			b:    createSphereBody(mgl64.Vec3{0.2, 0.1, -0.3}, 0.5),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Distance(tt.a, tt.b, DefaultSettings())
			assert.True(t, r.Overlap)
			assert.Equal(t, 0.0, r.Distance)
			assert.NotEmpty(t, r.Simplex)
		})
	}
}

func TestDistanceBudget(t *testing.T) {
	a := createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := actor.NewBody(
		&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
		actor.Transform{Position: mgl64.Vec3{3, 1, 0.5}, Rotation: mgl64.QuatRotate(0.3, mgl64.Vec3{1, 1, 0}.Normalize())},
	)

	r := Distance(a, b, Settings{MaxIterations: 1, Tolerance: 1e-12})
	assert.True(t, r.Approximate)
	assert.Greater(t, r.Distance, 0.0)
}
