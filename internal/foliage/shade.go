package foliage

import (
	"context"
	"fmt"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/arixlabs/treemorph/internal/easing"
)

// Vertex is what the vertex stage produces for one particle. Size is before
// perspective attenuation.
type Vertex struct {
	Position mgl32.Vec3 `json:"position"`
	Size     float32    `json:"size"`
	Alpha    float32    `json:"alpha"`
	Color    mgl32.Vec3 `json:"color"`
}

// ImpliedNormal is the horizontal outward direction through a tree position.
func ImpliedNormal(tree mgl32.Vec3) mgl32.Vec3 {
	r := math32.Sqrt(tree[0]*tree[0] + tree[2]*tree[2])
	if r < 1e-6 {
		return mgl32.Vec3{}
	}
	return mgl32.Vec3{tree[0] / r, 0, tree[2] / r}
}

// Wobble is the idle drift added to the scatter position at phase time t.
func Wobble(scatter mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{
		math32.Sin(t+scatter[1]*WobbleFrequency) * WobbleAmplitude,
		math32.Cos(t+scatter[0]*WobbleFrequency) * WobbleAmplitude,
		math32.Sin(t+scatter[2]*WobbleFrequency) * WobbleAmplitude,
	}
}

// Shade mirrors the foliage vertex shader on the CPU.
func Shade(scatter, tree mgl32.Vec3, random float32, u Uniforms) Vertex {
	t := u.Time * (BaseSpeed + random*SpeedVariance)
	m := easing.EaseInOutCubic(u.Mix)

	pos := easing.LerpVec3(scatter.Add(Wobble(scatter, t)), tree, m)
	if m > BreathThreshold {
		pos = pos.Add(ImpliedNormal(tree).Mul(math32.Sin(t*BreathFrequency) * BreathAmplitude))
	}

	height := (pos[1] + HeightOffset) / HeightRange
	return Vertex{
		Position: pos,
		Size:     BaseSize + random*SizeVariance,
		Alpha:    AlphaBase + AlphaPulse*math32.Sin(t+random*AlphaPhase),
		Color:    easing.LerpVec3(u.ColorLow, u.ColorHigh, random*ColorPhaseBias+m*height*ColorHeightBias),
	}
}

func (f *Field) Vertex(i int) Vertex {
	return Shade(f.ScatterAt(i), f.TreeAt(i), f.Random[i], f.Uniforms)
}

// Resolve evaluates every particle into dst, split across GOMAXPROCS workers.
func (f *Field) Resolve(ctx context.Context, dst []Vertex) error {
	n := f.Count
	if len(dst) < n {
		return fmt.Errorf("resolve: destination holds %d vertices, need %d", len(dst), n)
	}
	if n == 0 {
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (n + workers - 1) / workers
	u := f.Uniforms

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)&4095 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				dst[i] = Shade(f.ScatterAt(i), f.TreeAt(i), f.Random[i], u)
			}
			return nil
		})
	}
	return g.Wait()
}
