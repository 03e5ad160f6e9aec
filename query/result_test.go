package query

import (
	"testing"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestDistanceResultFlip(t *testing.T) {
	r := DistanceResult{
		Distance:  0.5,
		PointA:    mgl64.Vec3{1, 0, 0},
		PointB:    mgl64.Vec3{1.5, 0, 0},
		NormalA:   mgl64.Vec3{1, 0, 0},
		NormalB:   mgl64.Vec3{-1, 0, 0},
		FeatureA:  actor.FaceFeature(1),
		FeatureB:  actor.VertexFeature(3),
		SubShapeA: NoSubShape,
		SubShapeB: 7,
	}

	f := r.Flip()
	assert.Equal(t, r.Distance, f.Distance)
	assert.Equal(t, r.PointA, f.PointB)
	assert.Equal(t, r.PointB, f.PointA)
	assert.Equal(t, r.NormalA, f.NormalB)
	assert.Equal(t, r.NormalB, f.NormalA)
	assert.Equal(t, actor.VertexFeature(3), f.FeatureA)
	assert.Equal(t, actor.FaceFeature(1), f.FeatureB)
	assert.Equal(t, 7, f.SubShapeA)
	assert.Equal(t, NoSubShape, f.SubShapeB)

	assert.Equal(t, r, f.Flip(), "flip is an involution")
}

func TestNewDistanceResult(t *testing.T) {
	r := NewDistanceResult()
	assert.Equal(t, NoSubShape, r.SubShapeA)
	assert.Equal(t, NoSubShape, r.SubShapeB)
	assert.False(t, r.Penetrating())

	r.Distance = -0.1
	assert.True(t, r.Penetrating())
}
