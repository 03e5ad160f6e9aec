package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func box3(minX, minY, minZ, maxX, maxY, maxZ float64) AABB {
	return AABB{Min: mgl64.Vec3{minX, minY, minZ}, Max: mgl64.Vec3{maxX, maxY, maxZ}}
}

func TestAABBOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     AABB
		expected bool
	}{
		{"separated on X", box3(0, 0, 0, 1, 1, 1), box3(2, 0, 0, 3, 1, 1), false},
		{"separated on Y", box3(0, 0, 0, 1, 1, 1), box3(0, -2, 0, 1, -1, 1), false},
		{"separated on Z", box3(0, 0, 0, 1, 1, 1), box3(0, 0, 2, 1, 1, 3), false},
		{"overlap on two axes only", box3(0, 0, 0, 1, 1, 1), box3(0.5, 0.5, 2, 1.5, 1.5, 3), false},
		{"identical", box3(0, 0, 0, 1, 1, 1), box3(0, 0, 0, 1, 1, 1), true},
		{"partial", box3(0, 0, 0, 2, 1, 1), box3(1, 0, 0, 3, 1, 1), true},
		{"contained", box3(-5, -5, -5, 5, 5, 5), box3(-1, -1, -1, 1, 1, 1), true},
		{"face touching", box3(0, 0, 0, 1, 1, 1), box3(1, 0, 0, 2, 1, 1), true},
		{"corner touching", box3(0, 0, 0, 1, 1, 1), box3(1, 1, 1, 2, 2, 2), true},
		{"flat box through a box", box3(-1, 0, -1, 1, 0, 1), box3(-0.5, -0.5, -0.5, 0.5, 0.5, 0.5), true},
		{"empty never overlaps", EmptyAABB(), box3(-1, -1, -1, 1, 1, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.expected, tt.b.Overlaps(tt.a), "symmetry")
		})
	}
}

func TestAABBContainsPoint(t *testing.T) {
	aabb := box3(-1, -2, -3, 1, 2, 3)

	tests := []struct {
		name     string
		point    mgl64.Vec3
		expected bool
	}{
		{"center", mgl64.Vec3{0, 0, 0}, true},
		{"corner", mgl64.Vec3{1, 2, 3}, true},
		{"face center", mgl64.Vec3{0, -2, 0}, true},
		{"just outside", mgl64.Vec3{1 + 1e-9, 0, 0}, false},
		{"far away", mgl64.Vec3{0, 0, 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, aabb.ContainsPoint(tt.point))
		})
	}
}

func TestAABBExtendUnion(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.True(t, EmptyAABB().IsEmpty())
		assert.False(t, box3(0, 0, 0, 0, 0, 0).IsEmpty(), "a point is not empty")
	})

	t.Run("extend", func(t *testing.T) {
		a := EmptyAABB().Extend(mgl64.Vec3{1, -2, 3}).Extend(mgl64.Vec3{-1, 2, 0})
		assert.Equal(t, box3(-1, -2, 0, 1, 2, 3), a)
	})

	t.Run("union", func(t *testing.T) {
		a := box3(0, 0, 0, 1, 1, 1).Union(box3(2, -1, 0, 3, 0.5, 4))
		assert.Equal(t, box3(0, -1, 0, 3, 1, 4), a)
		assert.Equal(t, box3(0, 0, 0, 1, 1, 1), box3(0, 0, 0, 1, 1, 1).Union(EmptyAABB()))
	})

	t.Run("expand", func(t *testing.T) {
		a := box3(0, 0, 0, 1, 1, 1).Expand(0.5)
		assert.Equal(t, box3(-0.5, -0.5, -0.5, 1.5, 1.5, 1.5), a)
		assert.Equal(t, mgl64.Vec3{0.5, 0.5, 0.5}, a.Center())
		assert.Equal(t, mgl64.Vec3{1, 1, 1}, a.HalfExtents())
	})
}

func TestAABBTransform(t *testing.T) {
	local := box3(-1, -0.5, -0.25, 1, 0.5, 0.25)

	tests := []struct {
		name      string
		transform Transform
		expected  AABB
	}{
		{
			name:      "translation",
			transform: Translation(mgl64.Vec3{10, 0, 0}),
			expected:  box3(9, -0.5, -0.25, 11, 0.5, 0.25),
		},
		{
			name: "quarter turn about Y swaps X and Z",
			transform: Transform{
				Position: mgl64.Vec3{0, 1, 0},
				Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}),
			},
			expected: box3(-0.25, 0.5, -1, 0.25, 1.5, 1),
		},
		{
			name: "eighth turn about Z",
			transform: Transform{
				Rotation: mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1}),
			},
			expected: box3(-1.5/math.Sqrt2, -1.5/math.Sqrt2, -0.25, 1.5/math.Sqrt2, 1.5/math.Sqrt2, 0.25),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := local.Transform(tt.transform)
			for i := 0; i < 3; i++ {
				assert.InDelta(t, tt.expected.Min[i], got.Min[i], 1e-12)
				assert.InDelta(t, tt.expected.Max[i], got.Max[i], 1e-12)
			}
		})
	}

	assert.True(t, EmptyAABB().Transform(Translation(mgl64.Vec3{1, 2, 3})).IsEmpty())
}

func TestAABBScale(t *testing.T) {
	a := box3(-1, 0, 1, 2, 3, 4)

	t.Run("mirroring keeps min below max", func(t *testing.T) {
		assert.Equal(t, box3(-4, 0, 2, 2, 6, 8), a.Scale(mgl64.Vec3{-2, 2, 2}))
	})

	t.Run("inverse undoes scale", func(t *testing.T) {
		s := mgl64.Vec3{-2, 0.5, 4}
		back := a.Scale(s).InverseScale(s)
		for i := 0; i < 3; i++ {
			assert.InDelta(t, a.Min[i], back.Min[i], 1e-12)
			assert.InDelta(t, a.Max[i], back.Max[i], 1e-12)
		}
	})

	t.Run("zero scale is unbounded", func(t *testing.T) {
		got := a.InverseScale(mgl64.Vec3{1, 0, 1})
		assert.True(t, math.IsInf(got.Min.Y(), -1))
		assert.True(t, math.IsInf(got.Max.Y(), 1))
	})
}
