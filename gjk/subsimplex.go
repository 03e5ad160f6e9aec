package gjk

import (
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is a support point of the core difference A - B together with the
// core points and vertex ids that produced it.
type Vertex struct {
	W        mgl64.Vec3
	A, B     mgl64.Vec3
	IDA, IDB int
}

// Support returns the core support vertex of A - B along direction
func Support(a, b actor.Body, direction mgl64.Vec3) Vertex {
	pa, ia := a.SupportWorld(direction)
	pb, ib := b.SupportWorld(direction.Mul(-1))
	return Vertex{W: pa.Sub(pb), A: pa, B: pb, IDA: ia, IDB: ib}
}

// subSimplex is the distance simplex with the barycentric weight of every
// vertex in the current closest point.
type subSimplex struct {
	verts  [4]Vertex
	lambda [4]float64
	count  int
}

func (s *subSimplex) add(v Vertex) {
	s.verts[s.count] = v
	s.count++
}

func (s *subSimplex) has(w mgl64.Vec3) bool {
	for i := 0; i < s.count; i++ {
		if s.verts[i].W.Sub(w).LenSqr() <= 1e-24*(1+w.LenSqr()) {
			return true
		}
	}
	return false
}

// keep retains the vertices of the given indices with their weights, dropping
// zero weights.
func (s *subSimplex) keep(indices []int, weights []float64) {
	var verts [4]Vertex
	var lambda [4]float64
	n := 0
	for k, i := range indices {
		if weights[k] <= 0 {
			continue
		}
		verts[n] = s.verts[i]
		lambda[n] = weights[k]
		n++
	}
	s.verts, s.lambda, s.count = verts, lambda, n
}

// point returns the weighted point of the simplex
func (s *subSimplex) point() mgl64.Vec3 {
	var v mgl64.Vec3
	for i := 0; i < s.count; i++ {
		v = v.Add(s.verts[i].W.Mul(s.lambda[i]))
	}
	return v
}

// witnesses returns the weighted core points on A and B
func (s *subSimplex) witnesses() (mgl64.Vec3, mgl64.Vec3) {
	var pa, pb mgl64.Vec3
	for i := 0; i < s.count; i++ {
		pa = pa.Add(s.verts[i].A.Mul(s.lambda[i]))
		pb = pb.Add(s.verts[i].B.Mul(s.lambda[i]))
	}
	return pa, pb
}

// closest reduces the simplex to the smallest sub-simplex whose affine hull
// holds the point closest to the origin and returns that point. enclosed
// reports a tetrahedron containing the origin.
func (s *subSimplex) closest() (mgl64.Vec3, bool) {
	var origin mgl64.Vec3
	switch s.count {
	case 1:
		s.lambda[0] = 1
	case 2:
		_, t := geom.ClosestPointOnSegment(origin, s.verts[0].W, s.verts[1].W)
		s.keep([]int{0, 1}, []float64{1 - t, t})
	case 3:
		_, bary, _ := geom.ClosestPointOnTriangle(origin, s.verts[0].W, s.verts[1].W, s.verts[2].W)
		s.keep([]int{0, 1, 2}, bary[:])
	case 4:
		if s.tetrahedron() {
			return mgl64.Vec3{}, true
		}
	}
	return s.point(), false
}

// tetraFaces lists each face of a tetrahedron followed by its opposite vertex
var tetraFaces = [4][4]int{{1, 2, 3, 0}, {0, 2, 3, 1}, {0, 1, 3, 2}, {0, 1, 2, 3}}

func (s *subSimplex) tetrahedron() bool {
	w := [4]mgl64.Vec3{s.verts[0].W, s.verts[1].W, s.verts[2].W, s.verts[3].W}

	scale := 0.0
	for _, p := range w {
		scale = math.Max(scale, p.LenSqr())
	}

	inside := true
	var outside [4]bool
	var weights [4]float64
	for f, face := range tetraFaces {
		i, j, k, l := face[0], face[1], face[2], face[3]
		n := w[j].Sub(w[i]).Cross(w[k].Sub(w[i]))
		sideOrigin := n.Dot(w[i].Mul(-1))
		sideOpposite := n.Dot(w[l].Sub(w[i]))
		if math.Abs(sideOpposite) <= 1e-12*scale*math.Sqrt(scale) {
			// flat tetrahedron: every face is a candidate
			inside = false
			outside = [4]bool{true, true, true, true}
			break
		}
		weights[l] = sideOrigin / sideOpposite
		if weights[l] < 0 {
			inside = false
			outside[f] = true
		}
	}

	if inside {
		// the full tetrahedron is kept as the EPA seed
		s.lambda = weights
		return true
	}

	best := math.Inf(1)
	bestFace := -1
	var bestBary mgl64.Vec3
	var origin mgl64.Vec3
	for f, face := range tetraFaces {
		if !outside[f] {
			continue
		}
		q, bary, _ := geom.ClosestPointOnTriangle(origin, w[face[0]], w[face[1]], w[face[2]])
		if d := q.LenSqr(); d < best {
			best, bestFace, bestBary = d, f, bary
		}
	}
	face := tetraFaces[bestFace]
	s.keep(face[:3], bestBary[:])
	return false
}
