package mesh

import (
	"fmt"
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// HeightGrid is a regular grid of height samples in the XZ plane, row-major
// (row along +Z, column along +X). Each cell holds two triangles facing +Y:
// triangle index = cell*2 + k, cell = row*(Columns-1) + column.
// A NaN sample makes a hole: the triangles touching it do not exist.
type HeightGrid struct {
	columns, rows int
	spacing       mgl64.Vec2
	heights       []float64
	minHeight     float64
	maxHeight     float64
}

// NewHeightGrid copies the samples. spacing is the cell size along X and Z.
func NewHeightGrid(columns, rows int, spacing mgl64.Vec2, heights []float64) (*HeightGrid, error) {
	if columns < 2 || rows < 2 {
		return nil, fmt.Errorf("%w: height grid needs at least 2x2 samples, got %dx%d", ErrInvalidMesh, columns, rows)
	}
	if len(heights) != columns*rows {
		return nil, fmt.Errorf("%w: %d heights for %dx%d samples", ErrInvalidMesh, len(heights), columns, rows)
	}
	if spacing.X() <= 0 || spacing.Y() <= 0 {
		return nil, fmt.Errorf("%w: spacing %v must be positive", ErrInvalidMesh, spacing)
	}

	g := &HeightGrid{
		columns:   columns,
		rows:      rows,
		spacing:   spacing,
		heights:   append([]float64(nil), heights...),
		minHeight: math.Inf(1),
		maxHeight: math.Inf(-1),
	}
	for _, h := range g.heights {
		if math.IsNaN(h) {
			continue
		}
		g.minHeight = math.Min(g.minHeight, h)
		g.maxHeight = math.Max(g.maxHeight, h)
	}
	if g.minHeight > g.maxHeight {
		return nil, fmt.Errorf("%w: every sample is a hole", ErrInvalidMesh)
	}
	return g, nil
}

func (g *HeightGrid) cells() int { return (g.columns - 1) * (g.rows - 1) }

func (g *HeightGrid) sample(row, column int) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(column) * g.spacing.X(),
		g.heights[row*g.columns+column],
		float64(row) * g.spacing.Y(),
	}
}

func (g *HeightGrid) TriangleCount() int { return 2 * g.cells() }

func (g *HeightGrid) Triangle(i int) ([3]mgl64.Vec3, bool) {
	if i < 0 || i >= g.TriangleCount() {
		return [3]mgl64.Vec3{}, false
	}
	cell := i / 2
	row, column := cell/(g.columns-1), cell%(g.columns-1)

	var v [3]mgl64.Vec3
	if i%2 == 0 {
		v = [3]mgl64.Vec3{g.sample(row, column), g.sample(row+1, column), g.sample(row, column+1)}
	} else {
		v = [3]mgl64.Vec3{g.sample(row, column+1), g.sample(row+1, column), g.sample(row+1, column+1)}
	}
	for _, p := range v {
		if math.IsNaN(p.Y()) {
			return [3]mgl64.Vec3{}, false
		}
	}
	return v, true
}

func (g *HeightGrid) Bounds() actor.AABB {
	return actor.AABB{
		Min: mgl64.Vec3{0, g.minHeight, 0},
		Max: mgl64.Vec3{
			float64(g.columns-1) * g.spacing.X(),
			g.maxHeight,
			float64(g.rows-1) * g.spacing.Y(),
		},
	}
}

func (g *HeightGrid) HeightRange() (float64, float64) {
	return g.minHeight, g.maxHeight
}

// Candidates enumerates, in index order, the triangles of the cells under the
// region whose bounds overlap it. The grid is its own index.
func (g *HeightGrid) Candidates(region actor.AABB, yield func(int) bool) {
	if region.IsEmpty() {
		return
	}
	c0, c1 := g.span(region.Min.X(), region.Max.X(), g.spacing.X(), g.columns-1)
	r0, r1 := g.span(region.Min.Z(), region.Max.Z(), g.spacing.Y(), g.rows-1)

	for row := r0; row <= r1; row++ {
		for column := c0; column <= c1; column++ {
			cell := row*(g.columns-1) + column
			for k := 0; k < 2; k++ {
				bounds, ok := triangleBounds(g, 2*cell+k)
				if !ok || !bounds.Overlaps(region) {
					continue
				}
				if !yield(2*cell + k) {
					return
				}
			}
		}
	}
}

// span returns the cell range covering [lo, hi], empty (first > last) when
// it misses the grid
func (g *HeightGrid) span(lo, hi, size float64, count int) (int, int) {
	lo = math.Max(math.Floor(lo/size), 0)
	hi = math.Min(math.Floor(hi/size), float64(count-1))
	if lo > hi {
		return 1, 0
	}
	return int(lo), int(hi)
}
