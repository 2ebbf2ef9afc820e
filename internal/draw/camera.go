package draw

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/arixlabs/treemorph/internal/easing"
	"github.com/arixlabs/treemorph/internal/models"
)

// Camera orbits the scene origin. It turns slowly while the tree is
// assembled and follows the hand tilt with some lag.
type Camera struct {
	Eye  mgl32.Vec3
	FOV  float32
	Near float32
	Far  float32
	// GroupOffset lowers the whole scene so the tree sits centred.
	GroupOffset float32
	// AutoRotateSpeed is in orbit-control units: 1.0 is one turn a minute.
	AutoRotateSpeed float32
	TiltRate        float32

	Orbit float32
	Tilt  mgl32.Vec2
}

func NewCamera() *Camera {
	return &Camera{
		Eye:             mgl32.Vec3{0, 0, 45},
		FOV:             45,
		Near:            0.1,
		Far:             1000,
		GroupOffset:     -2,
		AutoRotateSpeed: 0.5,
		TiltRate:        4,
	}
}

func (c *Camera) Advance(dt float32, s *models.State) {
	if dt <= 0 {
		return
	}
	if s.Target == models.TreeShape {
		c.Orbit = math32.Mod(c.Orbit+dt*c.AutoRotateSpeed*2*math32.Pi/60, 2*math32.Pi)
	}
	c.Tilt = mgl32.Vec2{
		easing.Damp(c.Tilt[0], s.Tilt[0], c.TiltRate, dt),
		easing.Damp(c.Tilt[1], s.Tilt[1], c.TiltRate, dt),
	}
}

// Position is the eye after orbiting.
func (c *Camera) Position() mgl32.Vec3 {
	return mgl32.Rotate3DY(c.Orbit).Mul3x1(c.Eye)
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
}

func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	if !(aspect > 0) {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// Scene is the transform of the whole decorated group: offset, then tilt.
func (c *Camera) Scene() mgl32.Mat4 {
	return mgl32.Translate3D(0, c.GroupOffset, 0).
		Mul4(mgl32.HomogRotate3DX(c.Tilt[0])).
		Mul4(mgl32.HomogRotate3DY(c.Tilt[1]))
}
