package foliage

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arixlabs/treemorph/internal/sampler"
)

func assertNear(t *testing.T, want, got mgl32.Vec3, tol float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], tol, "component %d: want %v got %v", i, want, got)
	}
}

func newField(n int) *Field {
	s := sampler.New(sampler.DefaultDimensions, rand.New(rand.NewPCG(42, 43)))
	return New(s.Foliage(n))
}

func TestAdvance(t *testing.T) {
	f := newField(10)
	f.Advance(0.5, 0.25)
	f.Advance(0.25, 0.5)
	assert.InDelta(t, 0.75, f.Uniforms.Time, 1e-6)
	assert.Equal(t, float32(0.5), f.Uniforms.Mix)

	f.Advance(-1, 3)
	assert.InDelta(t, 0.75, f.Uniforms.Time, 1e-6, "negative dt leaves the clock alone")
	assert.Equal(t, float32(1), f.Uniforms.Mix, "blend is clamped")
}

func TestShadeEndpoints(t *testing.T) {
	scatter := mgl32.Vec3{10, -4, 3}
	tree := mgl32.Vec3{3, 2, 4}
	u := Uniforms{Time: 3.7, Mix: 0}

	v := Shade(scatter, tree, 0.4, u)
	speedT := u.Time * (BaseSpeed + 0.4*SpeedVariance)
	assertNear(t, scatter.Add(Wobble(scatter, speedT)), v.Position, 1e-5)
	assert.LessOrEqual(t, v.Position.Sub(scatter).Len(), float32(WobbleAmplitude*1.7321+1e-5))

	u.Mix = 1
	v = Shade(scatter, tree, 0.4, u)
	breath := v.Position.Sub(tree)
	assert.LessOrEqual(t, breath.Len(), float32(BreathAmplitude+1e-5))
	// breathing moves along the outward normal only
	assert.InDelta(t, 0, breath.Cross(ImpliedNormal(tree)).Len(), 1e-5)
}

func TestShadeNoBreathingBelowThreshold(t *testing.T) {
	scatter := mgl32.Vec3{0, 0, 0}
	tree := mgl32.Vec3{5, 0, 0}
	// eased(0.6) = 1 - 0.8^3/2 = 0.744, below the breathing threshold
	u := Uniforms{Time: 0, Mix: 0.6}
	v := Shade(scatter, tree, 0, u)
	wob := Wobble(scatter, 0)
	want := scatter.Add(wob).Add(tree.Sub(scatter.Add(wob)).Mul(0.744))
	assertNear(t, want, v.Position, 1e-4)
}

func TestShadeSizeAlphaColor(t *testing.T) {
	u := Uniforms{Time: 1, ColorLow: mgl32.Vec3{0, 0, 0}, ColorHigh: mgl32.Vec3{1, 1, 1}}
	for _, r := range []float32{0, 0.5, 0.999} {
		v := Shade(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 0, 0}, r, u)
		assert.InDelta(t, BaseSize+r*SizeVariance, v.Size, 1e-6)
		assert.GreaterOrEqual(t, v.Alpha, float32(AlphaBase-AlphaPulse-1e-6))
		assert.LessOrEqual(t, v.Alpha, float32(AlphaBase+AlphaPulse+1e-6))
		// fully scattered: color bias is the phase only
		assert.InDelta(t, r*ColorPhaseBias, v.Color.X(), 1e-5)
	}
}

func TestShadeIsStateless(t *testing.T) {
	u := Uniforms{Time: 12.5, Mix: 0.9}
	a := Shade(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{2, 1, 0}, 0.3, u)
	b := Shade(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{2, 1, 0}, 0.3, u)
	assert.Equal(t, a, b)
}

func TestImpliedNormal(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{}, ImpliedNormal(mgl32.Vec3{0, 5, 0}))
	n := ImpliedNormal(mgl32.Vec3{3, 7, 4})
	assertNear(t, mgl32.Vec3{0.6, 0, 0.8}, n, 1e-6)
}

func TestResolveMatchesVertex(t *testing.T) {
	f := newField(20000)
	f.Advance(2.5, 0.7)
	dst := make([]Vertex, f.Count)
	require.NoError(t, f.Resolve(context.Background(), dst))
	for _, i := range []int{0, 1, 4095, 4096, 9999, 19999} {
		assert.Equal(t, f.Vertex(i), dst[i])
	}
}

func TestResolveErrors(t *testing.T) {
	f := newField(100)
	assert.Error(t, f.Resolve(context.Background(), make([]Vertex, 10)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.Resolve(ctx, make([]Vertex, 100)), context.Canceled)

	empty := newField(0)
	assert.NoError(t, empty.Resolve(context.Background(), nil))
}

func TestVertexShaderUsesConstants(t *testing.T) {
	src := VertexShader()
	assert.Contains(t, src, "#version 410 core")
	assert.Contains(t, src, "uTime * (0.2 + aRandom * 0.5)")
	assert.Contains(t, src, "if (mixVal > 0.8)")
	assert.Contains(t, src, "sin(t * 2.0) * 0.05")
	assert.Contains(t, src, "(pos.y + 10.0) / 20.0")
	assert.NotContains(t, src, "{{")
	assert.Contains(t, FragmentShader, "discard")
}
