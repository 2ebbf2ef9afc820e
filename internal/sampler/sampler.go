// Package sampler generates the paired scatter/tree layouts for every element
// in the scene. Each call draws fresh randomness, so two calls never return
// the same layout unless the caller supplies identically seeded sources.
package sampler

import (
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// SpiralStep is the angle advanced per foliage index around the tree axis.
	SpiralStep = 0.1
	// OrnamentHeightBias skews ornaments toward the base of the tree.
	OrnamentHeightBias = 2.5
)

// Dimensions are the configured bounds of both layouts.
type Dimensions struct {
	TreeHeight     float32
	TreeRadiusBase float32
	ScatterRadius  float32
}

var DefaultDimensions = Dimensions{
	TreeHeight:     18,
	TreeRadiusBase: 7,
	ScatterRadius:  45,
}

// ConeRadius is the tree silhouette radius at height y.
func (d Dimensions) ConeRadius(y float32) float32 {
	yNorm := (y + d.TreeHeight/2) / d.TreeHeight
	return d.TreeRadiusBase * (1 - yNorm)
}

type Sampler struct {
	dims Dimensions
	rng  *rand.Rand
}

// New returns a sampler over dims. A nil rng uses a randomly seeded source.
func New(dims Dimensions, rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sampler{dims: dims, rng: rng}
}

func (s *Sampler) float() float32 {
	return s.rng.Float32()
}

// UnitDirection is uniform over the sphere: theta = 2πu, phi = acos(2v-1).
func (s *Sampler) UnitDirection() mgl32.Vec3 {
	theta := s.float() * 2 * math32.Pi
	phi := math32.Acos(2*s.float() - 1)
	return spherical(1, theta, phi)
}

func spherical(r, theta, phi float32) mgl32.Vec3 {
	sp := math32.Sin(phi)
	return mgl32.Vec3{
		r * sp * math32.Cos(theta),
		r * sp * math32.Sin(theta),
		r * math32.Cos(phi),
	}
}

// ScatterSolid samples the full scatter ball with uniform density.
func (s *Sampler) ScatterSolid() mgl32.Vec3 {
	r := s.dims.ScatterRadius * math32.Cbrt(s.float())
	return s.UnitDirection().Mul(r)
}

// ScatterShell samples a direction uniformly at a radius between
// inner·R and (inner+span)·R.
func (s *Sampler) ScatterShell(inner, span float32) mgl32.Vec3 {
	r := s.dims.ScatterRadius * (inner + span*s.float())
	return s.UnitDirection().Mul(r)
}

// SpiralTree places foliage element i inside the cone. The radial offset is
// coneR·sqrt(u) and the angle follows the index, forming a helix.
func (s *Sampler) SpiralTree(i int) mgl32.Vec3 {
	h := s.dims.TreeHeight
	y := s.float()*h - h/2
	r := s.dims.ConeRadius(y) * math32.Sqrt(s.float())
	angle := float32(i) * SpiralStep
	return mgl32.Vec3{math32.Cos(angle) * r, y, math32.Sin(angle) * r}
}

// OrnamentTree places an ornament near the cone surface with height biased
// toward the base.
func (s *Sampler) OrnamentTree() mgl32.Vec3 {
	h := s.dims.TreeHeight
	y := math32.Pow(s.float(), OrnamentHeightBias)*h - h/2
	r := s.dims.ConeRadius(y) * (0.8 + 0.2*s.float())
	angle := s.float() * 2 * math32.Pi
	return mgl32.Vec3{math32.Cos(angle) * r, y, math32.Sin(angle) * r}
}

// Foliage holds the particle attribute buffers, interleaved xyz.
type Foliage struct {
	Count   int
	Scatter []float32
	Tree    []float32
	Random  []float32
}

func (f *Foliage) ScatterAt(i int) mgl32.Vec3 {
	return mgl32.Vec3{f.Scatter[i*3], f.Scatter[i*3+1], f.Scatter[i*3+2]}
}

func (f *Foliage) TreeAt(i int) mgl32.Vec3 {
	return mgl32.Vec3{f.Tree[i*3], f.Tree[i*3+1], f.Tree[i*3+2]}
}

func (s *Sampler) Foliage(n int) *Foliage {
	if n < 0 {
		n = 0
	}
	f := &Foliage{
		Count:   n,
		Scatter: make([]float32, n*3),
		Tree:    make([]float32, n*3),
		Random:  make([]float32, n),
	}
	for i := 0; i < n; i++ {
		sp := s.ScatterSolid()
		tp := s.SpiralTree(i)
		copy(f.Scatter[i*3:], sp[:])
		copy(f.Tree[i*3:], tp[:])
		f.Random[i] = s.float()
	}
	return f
}

// TopStar returns the scatter and tree positions of the tree-top star.
func (s *Sampler) TopStar() (scatter, tree mgl32.Vec3) {
	tree = mgl32.Vec3{0, s.dims.TreeHeight/2 + 1, 0}
	theta := s.float() * 2 * math32.Pi
	phi := s.float() * math32.Pi
	scatter = spherical(s.dims.ScatterRadius*0.8, theta, phi)
	return scatter, tree
}
