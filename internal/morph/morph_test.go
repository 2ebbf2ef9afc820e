package morph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arixlabs/treemorph/internal/models"
)

func TestSetTarget(t *testing.T) {
	c := New(DefaultRates)
	s := models.NewState()
	assert.False(t, c.SetTarget(s, models.Scattered))
	assert.True(t, c.SetTarget(s, models.TreeShape))
	assert.False(t, c.SetTarget(s, models.TreeShape))
	assert.Equal(t, models.Scattered, c.Toggle(s))
	assert.Equal(t, models.TreeShape, c.Toggle(s))
}

func TestSetSameTargetKeepsTrajectory(t *testing.T) {
	c := New(DefaultRates)
	a := models.NewState()
	b := models.NewState()
	c.SetTarget(a, models.TreeShape)
	c.SetTarget(b, models.TreeShape)

	for i := range 240 {
		if i == 30 || i == 31 {
			assert.False(t, c.SetTarget(b, models.TreeShape))
		}
		if i == 120 {
			c.SetTarget(a, models.Scattered)
			c.SetTarget(b, models.Scattered)
			assert.False(t, c.SetTarget(b, models.Scattered))
		}
		require.Equal(t, c.Advance(a, 1.0/60), c.Advance(b, 1.0/60), "frame %d", i)
	}
	assert.Equal(t, a.Blend, b.Blend)
}

func TestAssembleThenReverse(t *testing.T) {
	c := New(DefaultRates)
	s := models.NewState()
	c.SetTarget(s, models.TreeShape)

	prev := s.Blend
	for range 300 {
		b := c.Advance(s, 1.0/60)
		assert.GreaterOrEqual(t, b, prev)
		prev = b
	}
	assert.GreaterOrEqual(t, s.Blend, float32(0.99))

	c.SetTarget(s, models.Scattered)
	before := s.Blend
	b := c.Advance(s, 1.0/60)
	assert.Less(t, b, before)
	assert.Greater(t, b, float32(0.9), "reversal does not snap")

	for range 300 {
		c.Advance(s, 1.0/60)
	}
	assert.LessOrEqual(t, s.Blend, float32(0.01))
}

func TestAdvanceClamps(t *testing.T) {
	c := New(DefaultRates)
	s := models.NewState()
	s.Target = models.TreeShape
	assert.Equal(t, float32(1), c.Advance(s, 1e6))
	s.Blend = 7
	assert.Equal(t, float32(1), c.Advance(s, 0))
	s.Blend = -2
	s.Target = models.Scattered
	assert.Equal(t, float32(0), c.Advance(s, 0.5))
	s.Blend = 0.5
	assert.Equal(t, float32(0.5), c.Advance(s, -1), "negative dt holds")
}

func TestDispersalFaster(t *testing.T) {
	c := New(DefaultRates)
	up := models.State{Target: models.TreeShape}
	down := models.State{Target: models.Scattered, Blend: 1}
	c.Advance(&up, 0.2)
	c.Advance(&down, 0.2)
	assert.Greater(t, 1-down.Blend, up.Blend)
}

func TestNewDefaults(t *testing.T) {
	assert.Equal(t, DefaultRates, New(Rates{}).Rates)
}
