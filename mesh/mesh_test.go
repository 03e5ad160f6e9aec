package mesh

import (
	"math"
	"math/rand"
	"testing"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(enumerator actor.CandidateEnumerator, region actor.AABB) []int {
	var out []int
	enumerator.Candidates(region, func(i int) bool {
		out = append(out, i)
		return true
	})
	return out
}

func region(min, max mgl64.Vec3) actor.AABB {
	return actor.AABB{Min: min, Max: max}
}

// quadStrip lays n unit quads along +X, two triangles each
func quadStrip(t *testing.T, n int) *TriangleMesh {
	t.Helper()
	var vertices []mgl64.Vec3
	for i := 0; i <= n; i++ {
		vertices = append(vertices, mgl64.Vec3{float64(i), 0, 0}, mgl64.Vec3{float64(i), 0, 1})
	}
	var indices []int
	for i := 0; i < n; i++ {
		a, b, c, d := 2*i, 2*i+1, 2*i+2, 2*i+3
		indices = append(indices, a, b, c, c, b, d)
	}
	m, err := NewTriangleMesh(vertices, indices)
	require.NoError(t, err)
	return m
}

func TestNewTriangleMesh(t *testing.T) {
	tests := []struct {
		name     string
		vertices []mgl64.Vec3
		indices  []int
		wantErr  bool
	}{
		{"single triangle", []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []int{0, 1, 2}, false},
		{"no indices", []mgl64.Vec3{{0, 0, 0}}, nil, true},
		{"partial triple", []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []int{0, 1}, true},
		{"index out of range", []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []int{0, 1, 3}, true},
		{"not a number", []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, math.NaN(), 0}}, []int{0, 1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewTriangleMesh(tt.vertices, tt.indices)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMesh)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, m.TriangleCount())
			v, ok := m.Triangle(0)
			assert.True(t, ok)
			assert.Equal(t, tt.vertices[2], v[2])
			assert.Equal(t, mgl64.Vec3{1, 1, 0}, m.Bounds().Max)
		})
	}

	t.Run("out of range triangle", func(t *testing.T) {
		m := quadStrip(t, 1)
		_, ok := m.Triangle(2)
		assert.False(t, ok)
	})
}

func TestHeightGrid(t *testing.T) {
	heights := []float64{
		0, 1, 2,
		0, 1, math.NaN(),
		0, 0, 0,
	}
	g, err := NewHeightGrid(3, 3, mgl64.Vec2{2, 1}, heights)
	require.NoError(t, err)

	t.Run("layout", func(t *testing.T) {
		assert.Equal(t, 8, g.TriangleCount())
		lo, hi := g.HeightRange()
		assert.Equal(t, 0.0, lo)
		assert.Equal(t, 2.0, hi)
		assert.Equal(t, mgl64.Vec3{4, 2, 2}, g.Bounds().Max)

		v, ok := g.Triangle(0)
		require.True(t, ok)
		assert.Equal(t, [3]mgl64.Vec3{{0, 0, 0}, {0, 0, 1}, {2, 1, 0}}, v)
	})

	t.Run("triangles face up", func(t *testing.T) {
		for i := 0; i < g.TriangleCount(); i++ {
			v, ok := g.Triangle(i)
			if !ok {
				continue
			}
			n := v[1].Sub(v[0]).Cross(v[2].Sub(v[0]))
			assert.Greater(t, n.Y(), 0.0, "triangle %d", i)
		}
	})

	t.Run("holes", func(t *testing.T) {
		// sample (row 1, column 2) is a hole
		_, ok := g.Triangle(2)
		assert.True(t, ok)
		_, ok = g.Triangle(5)
		assert.True(t, ok)
		for _, i := range []int{3, 6, 7} {
			_, ok = g.Triangle(i)
			assert.False(t, ok, "triangle %d", i)
		}
	})

	t.Run("candidates", func(t *testing.T) {
		all := collect(g, region(mgl64.Vec3{-10, -10, -10}, mgl64.Vec3{10, 10, 10}))
		assert.Equal(t, []int{0, 1, 2, 4, 5}, all)

		corner := collect(g, region(mgl64.Vec3{0.1, -1, 0.1}, mgl64.Vec3{0.2, 0.05, 0.2}))
		assert.Equal(t, []int{0, 1}, corner)

		inner := collect(g, region(mgl64.Vec3{0.5, -1, 1.2}, mgl64.Vec3{1, 3, 1.5}))
		assert.Equal(t, []int{4, 5}, inner)

		assert.Empty(t, collect(g, region(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{6, 1, 1})))
		assert.Empty(t, collect(g, actor.EmptyAABB()))
	})

	t.Run("early stop", func(t *testing.T) {
		count := 0
		g.Candidates(region(mgl64.Vec3{-10, -10, -10}, mgl64.Vec3{10, 10, 10}), func(int) bool {
			count++
			return false
		})
		assert.Equal(t, 1, count)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewHeightGrid(1, 3, mgl64.Vec2{1, 1}, []float64{0, 0, 0})
		assert.ErrorIs(t, err, ErrInvalidMesh)
		_, err = NewHeightGrid(2, 2, mgl64.Vec2{1, 1}, []float64{0, 0, 0})
		assert.ErrorIs(t, err, ErrInvalidMesh)
		_, err = NewHeightGrid(2, 2, mgl64.Vec2{0, 1}, []float64{0, 0, 0, 0})
		assert.ErrorIs(t, err, ErrInvalidMesh)
		nan := math.NaN()
		_, err = NewHeightGrid(2, 2, mgl64.Vec2{1, 1}, []float64{nan, nan, nan, nan})
		assert.ErrorIs(t, err, ErrInvalidMesh)
	})
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {16, 16}, {17, 32}, {1000, 1024},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, nextPowerOfTwo(tt.input), "input %d", tt.input)
	}
}

func TestWorldToCell(t *testing.T) {
	grid := NewGrid(quadStrip(t, 1), 1.0, 16)

	tests := []struct {
		name     string
		position mgl64.Vec3
		expected CellKey
	}{
		{"origin", mgl64.Vec3{0, 0, 0}, CellKey{0, 0, 0}},
		{"positive", mgl64.Vec3{1.5, 2.3, 3.7}, CellKey{1, 2, 3}},
		{"negative", mgl64.Vec3{-1.5, -2.3, -3.7}, CellKey{-2, -3, -4}},
		{"large", mgl64.Vec3{100.7, -200.3, 50.1}, CellKey{100, -201, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, grid.worldToCell(tt.position))
		})
	}
}

func TestHashCellRange(t *testing.T) {
	grid := NewGrid(quadStrip(t, 1), 1.0, 1024)
	for x := -20; x <= 20; x++ {
		for z := -20; z <= 20; z++ {
			h := grid.hashCell(CellKey{x, 0, z})
			assert.GreaterOrEqual(t, h, 0)
			assert.Less(t, h, 1024)
		}
	}
}

func TestGridMatchesBruteForce(t *testing.T) {
	m := quadStrip(t, 20)
	grid := NewGrid(m, 1.5, 8)
	brute := BruteForce{Source: m}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		center := mgl64.Vec3{rng.Float64()*24 - 2, rng.Float64()*2 - 1, rng.Float64()*2 - 0.5}
		half := mgl64.Vec3{rng.Float64() * 2, rng.Float64(), rng.Float64()}
		r := region(center.Sub(half), center.Add(half))
		assert.Equal(t, collect(brute, r), collect(grid, r), "region %v", r)
	}

	t.Run("unbounded region", func(t *testing.T) {
		inf := math.Inf(1)
		r := region(mgl64.Vec3{-inf, -inf, -inf}, mgl64.Vec3{inf, inf, inf})
		assert.Len(t, collect(grid, r), m.TriangleCount())
	})
}
