package gestures

import (
	"github.com/chewxy/math32"

	"github.com/arixlabs/treemorph/internal/models"
)

// Hand landmark indices in the 21 point hand model.
const (
	Wrist     = 0
	ThumbTip  = 4
	IndexTip  = 8
	PinkyTip  = 20
	Landmarks = 21
)

// Classifier distances are in normalized image units.
const (
	PinchDistance = 0.05
	OpenDistance  = 0.4
)

// Landmark is one normalized image-space hand point; X and Y are in [0, 1].
type Landmark struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func planar(a, b Landmark) float32 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math32.Sqrt(dx*dx + dy*dy)
}

// Classify derives the hand signal from one detected hand. Fewer than 21
// points means no hand.
func Classify(lm []Landmark) models.HandData {
	if len(lm) < Landmarks {
		return models.Absent
	}
	wrist := lm[Wrist]
	h := models.HandData{
		X:         (wrist.X - 0.5) * 2,
		Y:         (wrist.Y - 0.5) * 2,
		IsPresent: true,
	}
	switch {
	case planar(lm[ThumbTip], lm[IndexTip]) < PinchDistance:
		h.Gesture = models.GesturePinch
	case planar(lm[ThumbTip], lm[PinkyTip]) > OpenDistance:
		h.Gesture = models.GestureOpen
	default:
		h.Gesture = models.GestureFist
	}
	return h
}
