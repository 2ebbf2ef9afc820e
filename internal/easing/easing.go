// Package easing holds the interpolation curves shared by the GPU particle
// path and the CPU instance path.
package easing

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func Clamp01(x float32) float32 {
	if x < 0 || math32.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// EaseInOutCubic accelerates through the first half and decelerates through
// the second. Input is clamped to [0, 1].
func EaseInOutCubic(x float32) float32 {
	x = Clamp01(x)
	if x < 0.5 {
		return 4 * x * x * x
	}
	f := -2*x + 2
	return 1 - f*f*f/2
}

// DampFactor is the fraction of the remaining distance covered in dt seconds
// when decaying at the given rate.
func DampFactor(rate, dt float32) float32 {
	if dt <= 0 || rate <= 0 {
		return 0
	}
	return Clamp01(1 - math32.Exp(-rate*dt))
}

// Damp moves current toward target with frame-rate independent exponential decay.
func Damp(current, target, rate, dt float32) float32 {
	return Lerp(current, target, DampFactor(rate, dt))
}

func DampVec3(current, target mgl32.Vec3, rate, dt float32) mgl32.Vec3 {
	k := DampFactor(rate, dt)
	return current.Add(target.Sub(current).Mul(k))
}

func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
