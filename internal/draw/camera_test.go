package draw

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/arixlabs/treemorph/internal/models"
)

func TestCameraViewLooksAtOrigin(t *testing.T) {
	c := NewCamera()
	p := c.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, p.X(), 1e-5)
	assert.InDelta(t, 0, p.Y(), 1e-5)
	assert.InDelta(t, -45, p.Z(), 1e-4)
}

func TestCameraOrbitsOnlyAsTree(t *testing.T) {
	c := NewCamera()
	s := models.NewState()
	c.Advance(10, s)
	assert.Zero(t, c.Orbit)

	s.Target = models.TreeShape
	c.Advance(30, s)
	assert.InDelta(t, math32.Pi/2, c.Orbit, 1e-4, "half speed turns once every two minutes")
	assert.InDelta(t, 45, c.Position().Len(), 1e-3)
	assert.InDelta(t, 45, c.Position().X(), 1e-3)
}

func TestCameraTiltLags(t *testing.T) {
	c := NewCamera()
	s := models.NewState()
	s.Tilt = mgl32.Vec2{0.2, -0.4}
	c.Advance(1.0/60, s)
	assert.Greater(t, c.Tilt[0], float32(0))
	assert.Less(t, c.Tilt[0], float32(0.2))
	for range 600 {
		c.Advance(1.0/60, s)
	}
	assert.InDelta(t, 0.2, c.Tilt[0], 1e-4)
	assert.InDelta(t, -0.4, c.Tilt[1], 1e-4)
}

func TestCameraScene(t *testing.T) {
	c := NewCamera()
	p := c.Scene().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -2, p.Y(), 1e-6)

	proj := c.Projection(0)
	assert.Equal(t, c.Projection(1), proj, "bad aspect falls back to square")
}
