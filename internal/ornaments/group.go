// Package ornaments animates the discrete decorations. Each archetype is one
// group drawn with a single instanced call; positions are damped on the CPU
// every frame and written into the group's matrix buffer.
package ornaments

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/arixlabs/treemorph/internal/easing"
	"github.com/arixlabs/treemorph/internal/models"
)

// Rates are damping rates per target direction.
type Rates struct {
	ToTree    float32
	ToScatter float32
}

func (r Rates) For(target models.MorphState) float32 {
	if target == models.TreeShape {
		return r.ToTree
	}
	return r.ToScatter
}

var DefaultRates = Rates{ToTree: 2.5, ToScatter: 1.5}

// SpinSpeed is the idle rotation rate around Y; X turns at half of it.
const SpinSpeed = 0.5

// StarGlow brightens star instances past 1 so bloom picks them up.
const StarGlow = 2.0

type Group struct {
	Type      models.OrnamentType
	Instances []models.Ornament
	Rates     Rates

	current []mgl32.Vec3
	elapsed float32

	// Matrices holds one column-major 4x4 transform per instance.
	Matrices []float32
	// Colors holds one RGB triple per instance, fixed at construction.
	Colors []float32
}

func NewGroup(t models.OrnamentType, instances []models.Ornament, rates Rates) *Group {
	g := &Group{
		Type:      t,
		Instances: instances,
		Rates:     rates,
		current:   make([]mgl32.Vec3, len(instances)),
		Matrices:  make([]float32, len(instances)*16),
		Colors:    make([]float32, len(instances)*3),
	}
	for i, inst := range instances {
		g.current[i] = inst.ScatterPos
		c := inst.Color
		if t == models.Star {
			c = c.Mul(StarGlow)
		}
		copy(g.Colors[i*3:], c[:])
	}
	g.writeMatrices()
	return g
}

func (g *Group) Len() int {
	return len(g.Instances)
}

func (g *Group) Position(i int) mgl32.Vec3 {
	return g.current[i]
}

func (g *Group) Matrix(i int) mgl32.Mat4 {
	var m mgl32.Mat4
	copy(m[:], g.Matrices[i*16:i*16+16])
	return m
}

// Rotation is the Euler rotation of instance i at the group's clock.
func (g *Group) Rotation(i int) mgl32.Vec3 {
	base := g.Instances[i].Rotation
	return mgl32.Vec3{
		base[0] + g.elapsed*SpinSpeed*0.5,
		base[1] + g.elapsed*SpinSpeed,
		base[2],
	}
}

// Advance damps every instance toward the active layout and refreshes the
// matrix buffer. Spin continues regardless of the target.
func (g *Group) Advance(dt float32, target models.MorphState) {
	if dt < 0 {
		dt = 0
	}
	g.elapsed += dt
	rate := g.Rates.For(target)
	for i, inst := range g.Instances {
		dest := inst.ScatterPos
		if target == models.TreeShape {
			dest = inst.TreePos
		}
		g.current[i] = easing.DampVec3(g.current[i], dest, rate, dt)
	}
	g.writeMatrices()
}

func (g *Group) writeMatrices() {
	for i, inst := range g.Instances {
		m := Transform(g.current[i], g.Rotation(i), inst.Scale)
		copy(g.Matrices[i*16:], m[:])
	}
}

// Transform composes translation, XYZ Euler rotation and uniform scale.
func Transform(pos, euler mgl32.Vec3, scale float32) mgl32.Mat4 {
	rot := mgl32.AnglesToQuat(euler[0], euler[1], euler[2], mgl32.XYZ).Mat4()
	return mgl32.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(rot).
		Mul4(mgl32.Scale3D(scale, scale, scale))
}
