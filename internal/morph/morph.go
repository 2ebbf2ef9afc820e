// Package morph drives the global blend between the scattered cloud and the
// assembled tree.
package morph

import (
	"github.com/arixlabs/treemorph/internal/easing"
	"github.com/arixlabs/treemorph/internal/models"
)

// Rates are the blend damping rates. Assembly is gentler than dispersal.
type Rates struct {
	ToTree    float32
	ToScatter float32
}

var DefaultRates = Rates{ToTree: 1.5, ToScatter: 2.5}

type Controller struct {
	Rates Rates
}

func New(rates Rates) *Controller {
	if rates.ToTree <= 0 {
		rates.ToTree = DefaultRates.ToTree
	}
	if rates.ToScatter <= 0 {
		rates.ToScatter = DefaultRates.ToScatter
	}
	return &Controller{Rates: rates}
}

// SetTarget reports whether the target changed. Blend is left alone so a
// reversal mid-transition continues from where it is.
func (c *Controller) SetTarget(s *models.State, target models.MorphState) bool {
	if s.Target == target {
		return false
	}
	s.Target = target
	return true
}

func (c *Controller) Toggle(s *models.State) models.MorphState {
	c.SetTarget(s, s.Target.Other())
	return s.Target
}

// Advance damps the blend toward 1 for the tree and 0 for the cloud.
func (c *Controller) Advance(s *models.State, dt float32) float32 {
	goal, rate := float32(0), c.Rates.ToScatter
	if s.Target == models.TreeShape {
		goal, rate = 1, c.Rates.ToTree
	}
	s.Blend = easing.Clamp01(easing.Damp(easing.Clamp01(s.Blend), goal, rate, dt))
	return s.Blend
}
