package photos

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/arixlabs/treemorph/internal/easing"
	"github.com/arixlabs/treemorph/internal/models"
)

// DefaultSmoothing is the per-frame interpolation fraction for frames.
const DefaultSmoothing = 0.06

// Tumble amplitudes and rates for scattered frames.
const (
	TumbleSway     = 0.4
	TumbleRoll     = 0.2
	TumbleRate     = 0.3
	TumbleSpinRate = 0.2
)

// Frame is the displayed pose of one photo.
type Frame struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

func (f Frame) Matrix(scale float32) mgl32.Mat4 {
	return mgl32.Translate3D(f.Position[0], f.Position[1], f.Position[2]).
		Mul4(f.Orientation.Mat4()).
		Mul4(mgl32.Scale3D(scale, scale, scale))
}

// Animator eases every photo frame toward its current target pose. Frames
// are keyed by photo id and appear at the origin.
type Animator struct {
	Smoothing float32

	frames  map[string]*Frame
	elapsed float32
}

func NewAnimator(smoothing float32) *Animator {
	if smoothing <= 0 || smoothing > 1 {
		smoothing = DefaultSmoothing
	}
	return &Animator{Smoothing: smoothing, frames: make(map[string]*Frame)}
}

// Frame returns the pose for id, if it is animated.
func (a *Animator) Frame(id string) (Frame, bool) {
	f, ok := a.frames[id]
	if !ok {
		return Frame{}, false
	}
	return *f, true
}

func (a *Animator) Len() int {
	return len(a.frames)
}

// Target is the pose a photo heads for under the given state.
func (a *Animator) Target(p models.Photo, target models.MorphState) Frame {
	if target == models.TreeShape {
		return Frame{
			Position:    p.TreePos,
			Orientation: euler(p.Rotation),
		}
	}
	t := a.elapsed
	facing := p.Rotation.Y()
	tumble := mgl32.Vec3{
		p.Rotation.X() + TumbleSway*math32.Sin(TumbleRate*t+facing),
		p.Rotation.Y() + TumbleSpinRate*t,
		p.Rotation.Z() + TumbleRoll*math32.Cos(TumbleRate*t+p.TreePos.Y()),
	}
	return Frame{Position: p.ScatterPos, Orientation: euler(tumble)}
}

// Advance moves each frame a fixed fraction toward its target, adds frames
// for new photos and drops frames whose photo is gone. dt drives only the
// tumble clock; smoothing is per call.
func (a *Animator) Advance(dt float32, target models.MorphState, album []models.Photo) {
	if dt > 0 {
		a.elapsed += dt
	}
	live := make(map[string]bool, len(album))
	for _, p := range album {
		live[p.ID] = true
		f, ok := a.frames[p.ID]
		if !ok {
			f = &Frame{Orientation: mgl32.QuatIdent()}
			a.frames[p.ID] = f
		}
		goal := a.Target(p, target)
		f.Position = easing.LerpVec3(f.Position, goal.Position, a.Smoothing)
		f.Orientation = mgl32.QuatSlerp(f.Orientation, goal.Orientation, a.Smoothing).Normalize()
	}
	for id := range a.frames {
		if !live[id] {
			delete(a.frames, id)
		}
	}
}

func euler(r mgl32.Vec3) mgl32.Quat {
	return mgl32.AnglesToQuat(r[0], r[1], r[2], mgl32.XYZ)
}
