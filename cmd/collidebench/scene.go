package main

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/akmonengine/narrowphase"
	"github.com/akmonengine/narrowphase/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// scene builds random query pairs from a fixed set of shared assets
type scene struct {
	rng    *rand.Rand
	spread float64
	hull   *actor.HullAsset
	dumb   *actor.CompoundAsset
}

func newScene(seed uint64, spread float64) (*scene, error) {
	// square pyramid
	hull, err := actor.NewHullAsset(
		[]mgl64.Vec3{{0, 0.6, 0}, {0.5, -0.3, 0.5}, {-0.5, -0.3, 0.5}, {0.5, -0.3, -0.5}, {-0.5, -0.3, -0.5}},
		[][]int{{2, 1, 0}, {3, 4, 0}, {1, 3, 0}, {4, 2, 0}, {1, 2, 4, 3}},
	)
	if err != nil {
		return nil, fmt.Errorf("building hull asset: %w", err)
	}
	dumb, err := actor.NewCompoundAsset([]actor.CompoundChild{
		{Shape: &actor.Sphere{Radius: 0.4}, Transform: actor.Translation(mgl64.Vec3{-0.6, 0, 0})},
		{Shape: &actor.Sphere{Radius: 0.4}, Transform: actor.Translation(mgl64.Vec3{0.6, 0, 0})},
		{Shape: &actor.Capsule{P0: mgl64.Vec3{-0.6, 0, 0}, P1: mgl64.Vec3{0.6, 0, 0}, Radius: 0.1}, Transform: actor.NewTransform()},
	})
	if err != nil {
		return nil, fmt.Errorf("building compound asset: %w", err)
	}

	return &scene{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		spread: spread,
		hull:   hull,
		dumb:   dumb,
	}, nil
}

func (s *scene) shape() actor.ShapeInterface {
	size := 0.2 + s.rng.Float64()*0.8
	switch s.rng.IntN(5) {
	case 0:
		return &actor.Sphere{Radius: size}
	case 1:
		return &actor.Capsule{P0: mgl64.Vec3{0, -size, 0}, P1: mgl64.Vec3{0, size, 0}, Radius: size / 2}
	case 2:
		return &actor.Box{HalfExtents: mgl64.Vec3{size, size / 2, size * 0.75}}
	case 3:
		h := actor.NewConvexHull(s.hull)
		h.Scale = mgl64.Vec3{size * 2, size * 2, size * 2}
		return h
	default:
		return actor.NewCompound(s.dumb)
	}
}

func (s *scene) body() actor.Body {
	position := mgl64.Vec3{
		(s.rng.Float64() - 0.5) * s.spread,
		(s.rng.Float64() - 0.5) * s.spread,
		(s.rng.Float64() - 0.5) * s.spread,
	}
	axis := mgl64.Vec3{s.rng.NormFloat64(), s.rng.NormFloat64(), s.rng.NormFloat64()}
	if axis.Len() < 1e-9 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	rotation := mgl64.QuatRotate(s.rng.Float64()*2*math.Pi, axis.Normalize())
	return actor.NewBody(s.shape(), actor.Transform{Position: position, Rotation: rotation})
}

func (s *scene) pairs(n int, maxDistance float64) []narrowphase.Pair {
	pairs := make([]narrowphase.Pair, n)
	for i := range pairs {
		pairs[i] = narrowphase.Pair{A: s.body(), B: s.body(), MaxDistance: maxDistance}
	}
	return pairs
}
