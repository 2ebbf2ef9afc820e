package ornaments

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arixlabs/treemorph/internal/models"
	"github.com/arixlabs/treemorph/internal/sampler"
)

func assertNear(t *testing.T, want, got mgl32.Vec3, tol float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], tol, "component %d: want %v got %v", i, want, got)
	}
}

func sample(n int) []models.Ornament {
	s := sampler.New(sampler.DefaultDimensions, rand.New(rand.NewPCG(5, 6)))
	return s.Ornaments(n)
}

func TestNewSetPartitions(t *testing.T) {
	all := sample(800)
	set := NewSet(all, nil, DefaultRates)
	require.Len(t, set.Groups, 5)
	assert.Equal(t, 800, set.Len())
	for _, g := range set.Groups {
		for _, inst := range g.Instances {
			assert.Equal(t, g.Type, inst.Type)
		}
		assert.Len(t, g.Matrices, g.Len()*16)
		assert.Len(t, g.Colors, g.Len()*3)
	}
	assert.Nil(t, set.Group(models.OrnamentType(99)))
}

func TestGroupStartsScattered(t *testing.T) {
	all := sample(50)
	g := NewGroup(models.Bauble, all, DefaultRates)
	for i := range all {
		assert.Equal(t, all[i].ScatterPos, g.Position(i))
		m := g.Matrix(i)
		assertNear(t, all[i].ScatterPos, m.Col(3).Vec3(), 1e-5)
	}
}

func TestStarColorsGlow(t *testing.T) {
	o := models.Ornament{Type: models.Star, Color: mgl32.Vec3{0.5, 0.4, 0}, Scale: 1}
	g := NewGroup(models.Star, []models.Ornament{o}, DefaultRates)
	assert.Equal(t, []float32{1, 0.8, 0}, g.Colors)

	o.Type = models.Gift
	g = NewGroup(models.Gift, []models.Ornament{o}, DefaultRates)
	assert.Equal(t, []float32{0.5, 0.4, 0}, g.Colors)
}

func TestGroupConverges(t *testing.T) {
	all := sample(100)
	g := NewGroup(models.Gift, all, DefaultRates)
	for range 600 {
		g.Advance(1.0/60, models.TreeShape)
	}
	for i := range all {
		assertNear(t, all[i].TreePos, g.Position(i), 1e-3)
	}
	for range 900 {
		g.Advance(1.0/60, models.Scattered)
	}
	for i := range all {
		assertNear(t, all[i].ScatterPos, g.Position(i), 1e-3)
	}
}

func TestAssemblyFasterThanDispersal(t *testing.T) {
	o := models.Ornament{ScatterPos: mgl32.Vec3{0, 0, 0}, TreePos: mgl32.Vec3{10, 0, 0}, Scale: 1}
	g := NewGroup(models.Bauble, []models.Ornament{o}, DefaultRates)
	g.Advance(0.1, models.TreeShape)
	assembled := g.Position(0).X()

	// start from the tree and move back the same distance
	g.current[0] = o.TreePos
	g.Advance(0.1, models.Scattered)
	dispersed := 10 - g.Position(0).X()

	assert.Greater(t, assembled, dispersed)
}

func TestLargeDeltaSnaps(t *testing.T) {
	all := sample(10)
	g := NewGroup(models.Torus, all, DefaultRates)
	g.Advance(1e5, models.TreeShape)
	for i := range all {
		assertNear(t, all[i].TreePos, g.Position(i), 1e-5)
	}
}

func TestSpinIndependentOfTarget(t *testing.T) {
	o := models.Ornament{Rotation: mgl32.Vec3{0.1, 0.2, 0.3}, Scale: 1}
	a := NewGroup(models.Icicle, []models.Ornament{o}, DefaultRates)
	b := NewGroup(models.Icicle, []models.Ornament{o}, DefaultRates)
	a.Advance(2, models.TreeShape)
	b.Advance(2, models.Scattered)
	assert.Equal(t, a.Rotation(0), b.Rotation(0))
	assertNear(t, mgl32.Vec3{0.6, 1.2, 0.3}, a.Rotation(0), 1e-6)
}

func TestTransform(t *testing.T) {
	m := Transform(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{}, 2)
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assertNear(t, mgl32.Vec3{3, 2, 3}, p.Vec3(), 1e-6)

	// quarter turn about Y maps +X to -Z
	m = Transform(mgl32.Vec3{}, mgl32.Vec3{0, mgl32.DegToRad(90), 0}, 1)
	p = m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assertNear(t, mgl32.Vec3{0, 0, -1}, p.Vec3(), 1e-6)
}

func TestTopStar(t *testing.T) {
	star := NewTopStar(mgl32.Vec3{0, 30, 0}, mgl32.Vec3{0, 10, 0})
	set := NewSet(nil, star, DefaultRates)
	assert.Zero(t, set.Len())
	for range 600 {
		set.Advance(1.0/60, models.TreeShape)
	}
	assertNear(t, star.TreePos, star.Position, 1e-3)
	assert.InDelta(t, 5, star.Spin, 1e-3)
	assertNear(t, star.TreePos, star.Matrix().Col(3).Vec3(), 1e-3)
}
