package gjk

import (
	"github.com/akmonengine/narrowphase/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMaxIterations bounds the support queries of one distance query
	DefaultMaxIterations = 64
	// DefaultTolerance is the relative convergence threshold on the distance
	DefaultTolerance = 1e-6

	// touchTolerance is the core distance, relative to the size of the
	// difference, under which the cores are treated as touching
	touchTolerance = 1e-9
)

// Settings bounds the work of a distance query
type Settings struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultSettings returns the package defaults
func DefaultSettings() Settings {
	return Settings{MaxIterations: DefaultMaxIterations, Tolerance: DefaultTolerance}
}

func (s Settings) withDefaults() Settings {
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	if s.Tolerance <= 0 {
		s.Tolerance = DefaultTolerance
	}
	return s
}

// Result is the outcome of a core distance query
type Result struct {
	// Distance between the cores, zero when they overlap
	Distance float64
	// PointA and PointB are the closest core points, in world space
	PointA, PointB mgl64.Vec3
	// Normal is the unit direction from A toward B, zero when overlapping
	Normal mgl64.Vec3
	// IDsA and IDsB are the core vertex ids spanning the closest features
	IDsA, IDsB []int
	// Simplex is the final simplex, the EPA seed when Overlap is set
	Simplex []Vertex

	Overlap     bool
	Approximate bool
	Iterations  int
}

// Distance computes the distance between the cores of two convex bodies.
// The margins are ignored. When the cores overlap or touch, Overlap is set
// and Simplex holds the support points found so far.
func Distance(a, b actor.Body, settings Settings) Result {
	settings = settings.withDefaults()

	var s subSimplex
	direction := a.Center().Sub(b.Center())
	if direction.LenSqr() < 1e-16 {
		direction = mgl64.Vec3{1, 0, 0}
	}
	s.add(Support(a, b, direction.Mul(-1)))
	s.lambda[0] = 1
	v := s.verts[0].W

	var result Result
	converged := false
	for result.Iterations < settings.MaxIterations {
		result.Iterations++

		vv := v.Dot(v)
		if vv <= touchTolerance*touchTolerance*(1+s.scale()) {
			result.Overlap = true
			converged = true
			break
		}

		w := Support(a, b, v.Mul(-1))
		if vv-v.Dot(w.W) <= settings.Tolerance*vv || s.has(w.W) {
			converged = true
			break
		}

		previous := s
		s.add(w)
		next, enclosed := s.closest()
		if enclosed {
			result.Overlap = true
			converged = true
			break
		}
		if next.Dot(next) >= vv {
			// no progress, numerical floor reached
			s = previous
			converged = true
			break
		}
		v = next
	}
	result.Approximate = !converged

	result.Simplex = append([]Vertex(nil), s.verts[:s.count]...)
	result.PointA, result.PointB = s.witnesses()
	result.IDsA, result.IDsB = s.ids()
	if !result.Overlap {
		result.Distance = v.Len()
		result.Normal = v.Mul(-1 / result.Distance)
	}
	return result
}

func (s *subSimplex) scale() float64 {
	m := 0.0
	for i := 0; i < s.count; i++ {
		if l := s.verts[i].W.LenSqr(); l > m {
			m = l
		}
	}
	return m
}

// ids returns the unique vertex ids of each shape in the simplex
func (s *subSimplex) ids() ([]int, []int) {
	var idsA, idsB []int
	for i := 0; i < s.count; i++ {
		idsA = appendUnique(idsA, s.verts[i].IDA)
		idsB = appendUnique(idsB, s.verts[i].IDB)
	}
	return idsA, idsB
}

func appendUnique(ids []int, id int) []int {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
