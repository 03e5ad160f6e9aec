package kernel

import (
	"math"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/geom"
	"github.com/akmonengine/narrowphase/query"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// axisParallelTolerance is the |sin| under which two box axes are parallel
	// and their cross product is skipped
	axisParallelTolerance = 1e-6
	// freeAxisTolerance is the |cos| under which a box axis lies in a plane
	// and the supporting feature spans it
	freeAxisTolerance = 1e-6
	// edgeParamTolerance widens the [0,1] validity range of edge parameters
	edgeParamTolerance = 1e-6
	// edgePreference is the relative margin by which an edge axis must beat
	// the best face axis to be chosen
	edgePreference = 1e-6
)

// Lane layout of the 15 candidate axes
const (
	laneFaceA = 0
	laneFaceB = 1
	laneEdge  = 2 // lanes 2, 3, 4: A axis 0, 1, 2 crossed with B axes 0..2
	numLanes  = 5
)

// lanes holds 4 candidates evaluated together. Padding slots stay at -Inf
// with a cleared mask.
type lanes [4]float64

type mask [4]bool

// obb is a box expressed in a common frame
type obb struct {
	center mgl64.Vec3
	axes   [3]mgl64.Vec3
	half   mgl64.Vec3
}

func (b *obb) corner(index int) mgl64.Vec3 {
	p := b.center
	for i := 0; i < 3; i++ {
		if index&(1<<i) != 0 {
			p = p.Add(b.axes[i].Mul(b.half[i]))
		} else {
			p = p.Sub(b.axes[i].Mul(b.half[i]))
		}
	}
	return p
}

// toLocal returns p in the box axes, relative to its centre
func (b *obb) toLocal(p mgl64.Vec3) mgl64.Vec3 {
	d := p.Sub(b.center)
	return mgl64.Vec3{d.Dot(b.axes[0]), d.Dot(b.axes[1]), d.Dot(b.axes[2])}
}

func (b *obb) fromLocal(p mgl64.Vec3) mgl64.Vec3 {
	return b.center.Add(b.axes[0].Mul(p[0])).Add(b.axes[1].Mul(p[1])).Add(b.axes[2].Mul(p[2]))
}

// radius is the half length of the projection of the box on unit axis l
func (b *obb) radius(l mgl64.Vec3) float64 {
	return b.half[0]*math.Abs(b.axes[0].Dot(l)) +
		b.half[1]*math.Abs(b.axes[1].Dot(l)) +
		b.half[2]*math.Abs(b.axes[2].Dot(l))
}

// supportFeature returns the feature of the box furthest along direction,
// with its points in the common frame. Axes nearly perpendicular to direction
// are spanned by the feature.
func (b *obb) supportFeature(direction mgl64.Vec3) (actor.Feature, []mgl64.Vec3) {
	var fixed, positive [3]bool
	var free []int
	base := b.center
	for k := 0; k < 3; k++ {
		d := b.axes[k].Dot(direction)
		if math.Abs(d) <= freeAxisTolerance {
			free = append(free, k)
			continue
		}
		fixed[k] = true
		positive[k] = d > 0
		base = base.Add(b.axes[k].Mul(sign(d) * b.half[k]))
	}
	feature := actor.BoxClampFeature(fixed, positive)

	switch len(free) {
	case 0:
		return feature, []mgl64.Vec3{base}
	case 1:
		e := b.axes[free[0]].Mul(b.half[free[0]])
		return feature, []mgl64.Vec3{base.Sub(e), base.Add(e)}
	case 2:
		u := b.axes[free[0]].Mul(b.half[free[0]])
		v := b.axes[free[1]].Mul(b.half[free[1]])
		return feature, []mgl64.Vec3{base.Sub(u).Sub(v), base.Add(u).Sub(v), base.Add(u).Add(v), base.Sub(u).Add(v)}
	}
	return feature, []mgl64.Vec3{base}
}

// facePolygon returns the face of the box on axis k, side s (+1 or -1)
func (b *obb) facePolygon(k int, s float64) []mgl64.Vec3 {
	u, v := (k+1)%3, (k+2)%3
	c := b.center.Add(b.axes[k].Mul(s * b.half[k]))
	du := b.axes[u].Mul(b.half[u])
	dv := b.axes[v].Mul(b.half[v])
	return []mgl64.Vec3{c.Sub(du).Sub(dv), c.Add(du).Sub(dv), c.Add(du).Add(dv), c.Sub(du).Add(dv)}
}

// supportEdge returns the edge of the box parallel to axis k furthest along
// direction, and the sign bits of the two other axes.
func (b *obb) supportEdge(k int, direction mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3, [3]bool) {
	var signs [3]bool
	base := b.center
	for j := 0; j < 3; j++ {
		if j == k {
			continue
		}
		d := b.axes[j].Dot(direction)
		signs[j] = d >= 0
		base = base.Add(b.axes[j].Mul(sign(d) * b.half[j]))
	}
	e := b.axes[k].Mul(b.half[k])
	return base.Sub(e), base.Add(e), signs
}

// boxPair is the state of one box-box query, in the frame of A with A's centre
// at the origin
type boxPair struct {
	a, b obb

	sep   [numLanes]lanes
	valid [numLanes]mask
	// axis holds the unit candidate axes, oriented from A toward B
	axis [numLanes][4]mgl64.Vec3
}

// BoxBox computes the distance between two boxes in the local frame of A.
//
// The 15 candidate axes (6 face normals, 9 edge cross products) are all
// evaluated, each with its signed separation and a validity mask. A separated
// pair is then resolved exactly from the vertex clamps and the valid edge
// configurations. An overlapping pair keeps the valid axis of largest
// separation, preferring faces over edges.
func BoxBox(a, b actor.Body, maxDistance float64, opts Options) (bool, query.DistanceResult) {
	boxA := a.Shape.(*actor.Box)
	boxB := b.Shape.(*actor.Box)

	p := newBoxPair(boxA, boxB, a.Transform.Relative(b.Transform))
	p.evaluate()

	var r query.DistanceResult
	if p.separated() {
		r = p.closest()
	} else {
		r = p.penetration()
	}
	return within(toWorld(r, a.Transform, boxA.Center), maxDistance)
}

func newBoxPair(boxA, boxB *actor.Box, relative actor.Transform) *boxPair {
	p := &boxPair{}
	p.a = obb{
		axes: [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		half: boxA.HalfExtents,
	}
	p.b = obb{
		center: relative.Apply(boxB.Center).Sub(boxA.Center),
		half:   boxB.HalfExtents,
	}
	for k := 0; k < 3; k++ {
		var e mgl64.Vec3
		e[k] = 1
		p.b.axes[k] = relative.Rotate(e)
	}
	return p
}

// evaluate fills every lane: separation, oriented axis and validity
func (p *boxPair) evaluate() {
	for lane := 0; lane < numLanes; lane++ {
		for slot := 0; slot < 4; slot++ {
			p.sep[lane][slot] = math.Inf(-1)
		}
	}

	for k := 0; k < 3; k++ {
		p.evaluateFace(laneFaceA, k, &p.a, &p.b)
		p.evaluateFace(laneFaceB, k, &p.b, &p.a)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			p.evaluateEdge(i, j)
		}
	}
}

// evaluateFace tests face axis k of box face against box other. The axis is
// oriented from A toward B whichever box owns the face.
func (p *boxPair) evaluateFace(lane, k int, face, other *obb) {
	n := face.axes[k]
	offset := other.center.Sub(face.center).Dot(n)
	if offset < 0 {
		n = n.Mul(-1)
		offset = -offset
	}
	p.sep[lane][k] = offset - face.half[k] - other.radius(n)
	if lane == laneFaceB {
		p.axis[lane][k] = n.Mul(-1)
	} else {
		p.axis[lane][k] = n
	}

	// the supporting feature of the other box must overlap the face rectangle
	center := other.center
	var free [3]bool
	for m := 0; m < 3; m++ {
		d := other.axes[m].Dot(n)
		if math.Abs(d) <= freeAxisTolerance {
			free[m] = true
			continue
		}
		center = center.Sub(other.axes[m].Mul(sign(d) * other.half[m]))
	}
	ok := true
	for _, t := range [2]int{(k + 1) % 3, (k + 2) % 3} {
		tangent := face.axes[t]
		c := center.Sub(face.center).Dot(tangent)
		extent := 0.0
		for m := 0; m < 3; m++ {
			if free[m] {
				extent += other.half[m] * math.Abs(other.axes[m].Dot(tangent))
			}
		}
		if math.Abs(c)-extent > face.half[t]+edgeParamTolerance*(1+face.half[t]) {
			ok = false
		}
	}
	p.valid[lane][k] = ok
}

// evaluateEdge tests the cross product of A axis i and B axis j
func (p *boxPair) evaluateEdge(i, j int) {
	lane := laneEdge + i
	l := p.a.axes[i].Cross(p.b.axes[j])
	length := l.Len()
	if length <= axisParallelTolerance {
		return
	}
	l = l.Mul(1 / length)
	offset := p.b.center.Sub(p.a.center).Dot(l)
	if offset < 0 {
		l = l.Mul(-1)
		offset = -offset
	}
	p.axis[lane][j] = l
	p.sep[lane][j] = offset - p.a.radius(l) - p.b.radius(l)

	a0, a1, _ := p.a.supportEdge(i, l)
	b0, b1, _ := p.b.supportEdge(j, l.Mul(-1))
	s, t, ok := geom.LineLineParams(a0, a1.Sub(a0), b0, b1.Sub(b0))
	p.valid[lane][j] = ok &&
		s >= -edgeParamTolerance && s <= 1+edgeParamTolerance &&
		t >= -edgeParamTolerance && t <= 1+edgeParamTolerance
}

// separated reports a positive separation on any axis
func (p *boxPair) separated() bool {
	for lane := 0; lane < numLanes; lane++ {
		for slot := 0; slot < 4; slot++ {
			if p.sep[lane][slot] > 0 {
				return true
			}
		}
	}
	return false
}

// closest resolves a separated pair exactly. Candidates in order: B vertices
// clamped to A, A vertices clamped to B, valid edge pairs. Strict < keeps
// the first of equal candidates.
func (p *boxPair) closest() query.DistanceResult {
	best := math.Inf(1)
	var pointA, pointB mgl64.Vec3
	edgeI, edgeJ := -1, -1

	for v := 0; v < 8; v++ {
		vb := p.b.corner(v)
		q, _, _, _ := clampToBox(p.a.toLocal(vb), p.a.half)
		q = p.a.fromLocal(q)
		if d := vb.Sub(q).LenSqr(); d < best {
			best, pointA, pointB = d, q, vb
		}
	}
	for v := 0; v < 8; v++ {
		va := p.a.corner(v)
		q, _, _, _ := clampToBox(p.b.toLocal(va), p.b.half)
		q = p.b.fromLocal(q)
		if d := q.Sub(va).LenSqr(); d < best {
			best, pointA, pointB = d, va, q
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			lane := laneEdge + i
			if !p.valid[lane][j] {
				continue
			}
			l := p.axis[lane][j]
			a0, a1, _ := p.a.supportEdge(i, l)
			b0, b1, _ := p.b.supportEdge(j, l.Mul(-1))
			_, _, c1, c2 := geom.ClosestSegmentSegment(a0, a1, b0, b1)
			if d := c2.Sub(c1).LenSqr(); d < best {
				best, pointA, pointB = d, c1, c2
				edgeI, edgeJ = i, j
			}
		}
	}

	dist := math.Sqrt(best)
	normal := pointB.Sub(pointA).Mul(1 / dist)

	r := pair(pointA, pointB, normal, dist, 0, 0)
	if edgeI >= 0 {
		_, _, signsA := p.a.supportEdge(edgeI, normal)
		_, _, signsB := p.b.supportEdge(edgeJ, normal.Mul(-1))
		r.FeatureA = actor.BoxEdgeFeature(edgeI, signsA)
		r.FeatureB = actor.BoxEdgeFeature(edgeJ, signsB)
	} else {
		r.FeatureA, _ = p.a.supportFeature(normal)
		r.FeatureB, _ = p.b.supportFeature(normal.Mul(-1))
	}
	return r
}

// penetration picks the valid axis of largest separation. Face axes win
// unless an edge axis is better by a relative margin; order is A faces, B
// faces, edges. Without any valid axis every non-parallel axis is considered.
func (p *boxPair) penetration() query.DistanceResult {
	lane, slot := p.bestAxis(true)
	if lane < 0 {
		lane, slot = p.bestAxis(false)
	}

	switch lane {
	case laneFaceA:
		return faceContact(&p.a, &p.b, slot, p.sep[lane][slot], p.axis[lane][slot])
	case laneFaceB:
		// same construction seen from B, then swapped back
		r := faceContact(&p.b, &p.a, slot, p.sep[lane][slot], p.axis[lane][slot].Mul(-1))
		return r.Flip()
	default:
		return p.edgeContact(lane-laneEdge, slot)
	}
}

func (p *boxPair) bestAxis(validOnly bool) (int, int) {
	faceLane, faceSlot := -1, -1
	bestFace := math.Inf(-1)
	for _, lane := range [2]int{laneFaceA, laneFaceB} {
		for slot := 0; slot < 3; slot++ {
			if validOnly && !p.valid[lane][slot] {
				continue
			}
			if s := p.sep[lane][slot]; s > bestFace {
				bestFace, faceLane, faceSlot = s, lane, slot
			}
		}
	}

	edgeLane, edgeSlot := -1, -1
	bestEdge := math.Inf(-1)
	for lane := laneEdge; lane < numLanes; lane++ {
		for slot := 0; slot < 3; slot++ {
			if validOnly && !p.valid[lane][slot] {
				continue
			}
			if s := p.sep[lane][slot]; s > bestEdge {
				bestEdge, edgeLane, edgeSlot = s, lane, slot
			}
		}
	}

	if edgeLane >= 0 && (faceLane < 0 || bestEdge > bestFace+edgePreference*(1+math.Abs(bestFace))) {
		return edgeLane, edgeSlot
	}
	return faceLane, faceSlot
}

// faceContact builds the result for face axis k of box face pushed against
// box other. normal is the outward normal of the face, toward other. The face
// box plays the role of A.
func faceContact(face, other *obb, k int, sep float64, normal mgl64.Vec3) query.DistanceResult {
	featureOther, points := other.supportFeature(normal.Mul(-1))
	s := sign(normal.Dot(face.axes[k]))
	polygon := face.facePolygon(k, s)

	clipped := geom.ClipToPolygonPrism(points, polygon, normal)
	if len(clipped) == 0 {
		clipped = points
	}
	pointB := geom.Centroid(clipped)
	plane := face.center.Add(normal.Mul(face.half[k]))
	pointA := pointB.Sub(normal.Mul(pointB.Sub(plane).Dot(normal)))

	r := query.NewDistanceResult()
	r.Distance = sep
	r.NormalA = normal
	r.NormalB = normal.Mul(-1)
	r.PointA = pointA
	r.PointB = pointB
	r.FeatureA = actor.BoxFaceFeature(k, s > 0)
	r.FeatureB = featureOther
	return r
}

func (p *boxPair) edgeContact(i, j int) query.DistanceResult {
	lane := laneEdge + i
	l := p.axis[lane][j]
	a0, a1, signsA := p.a.supportEdge(i, l)
	b0, b1, signsB := p.b.supportEdge(j, l.Mul(-1))
	_, _, c1, c2 := geom.ClosestSegmentSegment(a0, a1, b0, b1)

	r := query.NewDistanceResult()
	r.Distance = p.sep[lane][j]
	r.NormalA = l
	r.NormalB = l.Mul(-1)
	r.PointA = c1
	r.PointB = c2
	r.FeatureA = actor.BoxEdgeFeature(i, signsA)
	r.FeatureB = actor.BoxEdgeFeature(j, signsB)
	return r
}
