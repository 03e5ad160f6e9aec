package sweep

import (
	"math"
	"testing"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/mpr"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func place(shape actor.ShapeInterface, position mgl64.Vec3) actor.Body {
	return actor.NewBody(shape, actor.Translation(position))
}

func assertVec(t *testing.T, expected, actual mgl64.Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, expected[i], actual[i], delta, "component %d of %v", i, actual)
	}
}

func TestCast(t *testing.T) {
	tests := []struct {
		name       string
		caster     actor.Body
		delta      mgl64.Vec3
		target     actor.Body
		hit        bool
		fraction   float64
		normal     mgl64.Vec3
		closedForm bool
	}{
		{
			name:       "sphere against a box",
			caster:     place(&actor.Sphere{Radius: 0.1}, mgl64.Vec3{-5, 0, 0}),
			delta:      mgl64.Vec3{10, 0, 0},
			target:     place(&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{}),
			hit:        true,
			fraction:   0.39,
			normal:     mgl64.Vec3{-1, 0, 0},
			closedForm: true,
		},
		{
			name:       "sphere against a sphere",
			caster:     place(&actor.Sphere{Radius: 0.5}, mgl64.Vec3{-5, 0, 0}),
			delta:      mgl64.Vec3{10, 0, 0},
			target:     place(&actor.Sphere{Radius: 0.5}, mgl64.Vec3{}),
			hit:        true,
			fraction:   0.4,
			normal:     mgl64.Vec3{-1, 0, 0},
			closedForm: true,
		},
		{
			name:       "crossed capsules",
			caster:     place(&actor.Capsule{P0: mgl64.Vec3{0, -1, 0}, P1: mgl64.Vec3{0, 1, 0}, Radius: 0.5}, mgl64.Vec3{-5, 0, 0}),
			delta:      mgl64.Vec3{10, 0, 0},
			target:     place(&actor.Capsule{P0: mgl64.Vec3{0, 0, -1}, P1: mgl64.Vec3{0, 0, 1}, Radius: 0.5}, mgl64.Vec3{}),
			hit:        true,
			fraction:   0.4,
			normal:     mgl64.Vec3{-1, 0, 0},
			closedForm: true,
		},
		{
			name:       "aligned capsules meet cap to cap",
			caster:     place(&actor.Capsule{P0: mgl64.Vec3{0, 0, 0}, P1: mgl64.Vec3{2, 0, 0}, Radius: 0.5}, mgl64.Vec3{-10, 0, 0}),
			delta:      mgl64.Vec3{20, 0, 0},
			target:     place(&actor.Capsule{P0: mgl64.Vec3{-1, 0, 0}, P1: mgl64.Vec3{1, 0, 0}, Radius: 0.5}, mgl64.Vec3{}),
			hit:        true,
			fraction:   0.3,
			normal:     mgl64.Vec3{-1, 0, 0},
			closedForm: true,
		},
		{
			name:   "capsule dropped on a triangle",
			caster: place(&actor.Capsule{P0: mgl64.Vec3{-0.25, 0, 0}, P1: mgl64.Vec3{0.25, 0, 0}, Radius: 0.25}, mgl64.Vec3{0, 3, 0}),
			delta:  mgl64.Vec3{0, -10, 0},
			target: place(&actor.Triangle{V: [3]mgl64.Vec3{
				{-1, 0, -1}, {1, 0, -1}, {0, 0, 1},
			}}, mgl64.Vec3{}),
			hit:        true,
			fraction:   0.275,
			normal:     mgl64.Vec3{0, 1, 0},
			closedForm: true,
		},
		{
			name:       "sphere passing over a box",
			caster:     place(&actor.Sphere{Radius: 0.5}, mgl64.Vec3{-5, 2, 0}),
			delta:      mgl64.Vec3{10, 0, 0},
			target:     place(&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{}),
			closedForm: true,
		},
		{
			name:       "sphere stopping short",
			caster:     place(&actor.Sphere{Radius: 0.5}, mgl64.Vec3{-5, 0, 0}),
			delta:      mgl64.Vec3{2, 0, 0},
			target:     place(&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{}),
			closedForm: true,
		},
		{
			name:       "box cast against a sphere uses the mirrored ray",
			caster:     place(&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{-5, 0, 0}),
			delta:      mgl64.Vec3{10, 0, 0},
			target:     place(&actor.Sphere{Radius: 0.5}, mgl64.Vec3{}),
			hit:        true,
			fraction:   0.35,
			normal:     mgl64.Vec3{-1, 0, 0},
			closedForm: true,
		},
		{
			name:     "box against a box goes through MPR",
			caster:   place(&actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}, mgl64.Vec3{-5, 0, 0}),
			delta:    mgl64.Vec3{10, 0, 0},
			target:   place(&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{}),
			hit:      true,
			fraction: 0.35,
			normal:   mgl64.Vec3{-1, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Cast(tt.caster, tt.delta, tt.target, mpr.DefaultSettings())
			assert.Equal(t, tt.closedForm, r.ClosedForm)
			require.Equal(t, tt.hit, r.Hit)
			if !tt.hit {
				return
			}
			assert.InDelta(t, tt.fraction, r.Fraction, 1e-6)
			assertVec(t, tt.normal, r.Normal, 1e-6)
		})
	}
}

func TestCastRotatedBox(t *testing.T) {
	box := actor.NewBody(&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, actor.Transform{
		Rotation: mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0}),
	})
	sphere := place(&actor.Sphere{Radius: 0.5}, mgl64.Vec3{-5, 0, 0})

	r := Cast(sphere, mgl64.Vec3{10, 0, 0}, box, mpr.DefaultSettings())
	require.True(t, r.Hit)
	// the vertical edge sits at x = -sqrt(2)
	assert.InDelta(t, (4.5-math.Sqrt2)/10, r.Fraction, 1e-9)
	assertVec(t, mgl64.Vec3{-1, 0, 0}, r.Normal, 1e-9)
}

func TestCastZeroTranslation(t *testing.T) {
	sphere := place(&actor.Sphere{Radius: 0.5}, mgl64.Vec3{-5, 0, 0})
	box := place(&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{})

	r := Cast(sphere, mgl64.Vec3{}, box, mpr.DefaultSettings())
	assert.False(t, r.Hit)
}

func TestClosedForm(t *testing.T) {
	assert.True(t, ClosedForm(actor.ShapeTypeSphere, actor.ShapeTypeBox))
	assert.True(t, ClosedForm(actor.ShapeTypeTriangle, actor.ShapeTypeCapsule))
	assert.False(t, ClosedForm(actor.ShapeTypeBox, actor.ShapeTypeBox))
	assert.False(t, ClosedForm(actor.ShapeTypeConvexHull, actor.ShapeTypeSphere))
	assert.False(t, ClosedForm(actor.ShapeTypeTriangle, actor.ShapeTypeTriangle))
}
