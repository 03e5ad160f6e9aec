package mesh

import (
	"math"
	"sort"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// CellKey - coordinates of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell - triangle indices registered in a cell
type Cell struct {
	triangles []int
}

// Grid is a uniform grid hashed into a power-of-two table of cells. Each
// triangle is registered in every cell its bounds touch. The grid is built
// once and read concurrently.
type Grid struct {
	source   actor.TriangleSource
	cellSize float64
	cells    []Cell
	cellMask int
}

// NewGrid indexes every triangle of source. numCells is rounded up to a power
// of two.
func NewGrid(source actor.TriangleSource, cellSize float64, numCells int) *Grid {
	numCells = nextPowerOfTwo(numCells)

	g := &Grid{
		source:   source,
		cellSize: cellSize,
		cells:    make([]Cell, numCells),
		cellMask: numCells - 1,
	}
	for i := 0; i < source.TriangleCount(); i++ {
		bounds, ok := triangleBounds(source, i)
		if !ok {
			continue
		}
		g.insert(i, bounds)
	}
	g.sortCells()
	return g
}

// nextPowerOfTwo - rounds up to the next power of 2
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// insert registers a triangle in all the cells it touches
func (g *Grid) insert(index int, bounds actor.AABB) {
	g.forCells(bounds, func(cellIdx int) {
		cell := &g.cells[cellIdx]
		if n := len(cell.triangles); n > 0 && cell.triangles[n-1] == index {
			return
		}
		cell.triangles = append(cell.triangles, index)
	})
}

func (g *Grid) sortCells() {
	for i := range g.cells {
		if len(g.cells[i].triangles) > 1 {
			sort.Ints(g.cells[i].triangles)
		}
	}
}

func (g *Grid) forCells(bounds actor.AABB, fn func(cellIdx int)) {
	minCell := g.worldToCell(bounds.Min)
	maxCell := g.worldToCell(bounds.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(g.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

// Candidates enumerates, in ascending index order and without duplicates,
// the triangles whose bounds overlap the region.
func (g *Grid) Candidates(region actor.AABB, yield func(int) bool) {
	if region.IsEmpty() {
		return
	}
	region = g.clampToSource(region)
	if region.IsEmpty() {
		return
	}

	var found []int
	g.forCells(region, func(cellIdx int) {
		found = append(found, g.cells[cellIdx].triangles...)
	})
	sort.Ints(found)

	previous := -1
	for _, index := range found {
		if index == previous {
			continue
		}
		previous = index
		if bounds, ok := triangleBounds(g.source, index); !ok || !bounds.Overlaps(region) {
			continue
		}
		if !yield(index) {
			return
		}
	}
}

// clampToSource intersects the region with the source bounds, so unbounded
// regions walk a finite set of cells
func (g *Grid) clampToSource(region actor.AABB) actor.AABB {
	bounds := g.source.Bounds()
	for i := 0; i < 3; i++ {
		region.Min[i] = math.Max(region.Min[i], bounds.Min[i])
		region.Max[i] = math.Min(region.Max[i], bounds.Max[i])
	}
	return region
}

// worldToCell - converts a local position to cell coordinates
func (g *Grid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / g.cellSize)),
		Y: int(math.Floor(pos.Y() / g.cellSize)),
		Z: int(math.Floor(pos.Z() / g.cellSize)),
	}
}

// hashCell - hashes a cell to an index in the table
func (g *Grid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & g.cellMask
}

// BruteForce enumerates every triangle whose bounds overlap the region. It is
// the reference enumerator the indexed ones are checked against.
type BruteForce struct {
	Source actor.TriangleSource
}

func (b BruteForce) Candidates(region actor.AABB, yield func(int) bool) {
	for i := 0; i < b.Source.TriangleCount(); i++ {
		bounds, ok := triangleBounds(b.Source, i)
		if !ok || !bounds.Overlaps(region) {
			continue
		}
		if !yield(i) {
			return
		}
	}
}
