// Package foliage is the particle swarm. Every particle keeps only its two
// fixed positions and a random phase; everything else is a function of the
// shared uniforms, so the vertex stage can compute it without per-particle
// state.
package foliage

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/arixlabs/treemorph/internal/easing"
	"github.com/arixlabs/treemorph/internal/models"
	"github.com/arixlabs/treemorph/internal/sampler"
)

// Constants shared by Shade and the generated vertex shader.
const (
	BaseSpeed       = 0.2
	SpeedVariance   = 0.5
	WobbleAmplitude = 0.2
	WobbleFrequency = 0.1
	BreathThreshold = 0.8
	BreathAmplitude = 0.05
	BreathFrequency = 2.0
	BaseSize        = 4.0
	SizeVariance    = 3.0
	AlphaBase       = 0.6
	AlphaPulse      = 0.4
	AlphaPhase      = 10.0
	ColorPhaseBias  = 0.3
	ColorHeightBias = 0.5
	HeightOffset    = 10.0
	HeightRange     = 20.0
)

// Uniforms are the only values that change per frame.
type Uniforms struct {
	Time       float32
	Mix        float32
	PixelRatio float32
	ColorLow   mgl32.Vec3
	ColorHigh  mgl32.Vec3
}

type Field struct {
	*sampler.Foliage
	Uniforms Uniforms
}

func New(attrs *sampler.Foliage) *Field {
	return &Field{
		Foliage: attrs,
		Uniforms: Uniforms{
			PixelRatio: 1,
			ColorLow:   models.EmeraldLight,
			ColorHigh:  models.Gold,
		},
	}
}

// Advance moves the field clock and adopts the controller's blend value.
func (f *Field) Advance(dt, blend float32) {
	if dt > 0 {
		f.Uniforms.Time += dt
	}
	f.Uniforms.Mix = easing.Clamp01(blend)
}
