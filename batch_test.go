package narrowphase

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spherePairs(n int) []Pair {
	pairs := make([]Pair, n)
	for i := range pairs {
		// gaps of 0, 0.01, 0.02, ... between unit spheres
		pairs[i] = Pair{
			A:           at(sphere(1), mgl64.Vec3{}),
			B:           at(sphere(1), mgl64.Vec3{2 + float64(i)*0.01, 0, 0}),
			MaxDistance: 0.505,
		}
	}
	return pairs
}

func TestDistanceBatch(t *testing.T) {
	e := Default()

	tests := []struct {
		name    string
		pairs   int
		workers int
	}{
		{"single worker", 100, 1},
		{"more workers than pairs", 3, 8},
		{"uneven chunks", 257, 4},
		{"no workers", 10, 0},
		{"empty", 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := e.DistanceBatch(context.Background(), spherePairs(tt.pairs), tt.workers)
			require.NoError(t, err)
			require.Len(t, results, tt.pairs)
			for i, r := range results {
				assert.Equal(t, float64(i)*0.01 < 0.505, r.Hit, "pair %d", i)
				assert.InDelta(t, float64(i)*0.01, r.Result.Distance, eps, "pair %d", i)
			}
		})
	}

	t.Run("matches sequential queries", func(t *testing.T) {
		pairs := []Pair{
			{A: at(box(0.5, 0.5, 0.5), mgl64.Vec3{}), B: at(capsule(mgl64.Vec3{0, -1, 0}, mgl64.Vec3{0, 1, 0}, 0.2), mgl64.Vec3{1, 0, 0}), MaxDistance: 1},
			{A: at(hull(t, 0.5, 0.5, 0.5), mgl64.Vec3{}), B: at(sphere(0.5), mgl64.Vec3{0, 1.2, 0}), MaxDistance: 1},
			{A: at(sphere(0.5), mgl64.Vec3{}), B: at(box(1, 1, 1), mgl64.Vec3{5, 0, 0}), MaxDistance: 1},
		}
		results, err := e.DistanceBatch(context.Background(), pairs, 2)
		require.NoError(t, err)
		for i, p := range pairs {
			hit, r := e.Distance(p.A, p.B, p.MaxDistance)
			assert.Equal(t, hit, results[i].Hit)
			assert.Equal(t, r, results[i].Result)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results, err := e.DistanceBatch(ctx, spherePairs(500), 4)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, results, 500)
		for _, r := range results {
			assert.False(t, r.Hit)
		}
	})
}

func TestTask(t *testing.T) {
	for _, workers := range []int{1, 3, 7, 64} {
		seen := make([]int, 200)
		err := task(context.Background(), workers, len(seen), func(i int) { seen[i]++ })
		require.NoError(t, err)
		for i, n := range seen {
			assert.Equal(t, 1, n, "index %d with %d workers", i, workers)
		}
	}
}

func BenchmarkDistanceBatch(b *testing.B) {
	e := Default()
	pairs := spherePairs(4096)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.DistanceBatch(ctx, pairs, 4); err != nil {
			b.Fatal(err)
		}
	}
}
