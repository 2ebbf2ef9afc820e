package gestures

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/arixlabs/treemorph/internal/models"
	"github.com/arixlabs/treemorph/internal/morph"
)

// TiltScale maps the normalized hand position to scene tilt in radians.
const TiltScale = 0.5

type Action int

const (
	ActionNone Action = iota
	ActionScatter
	ActionAssemble
	ActionFocus
)

func (a Action) String() string {
	switch a {
	case ActionScatter:
		return "scatter"
	case ActionAssemble:
		return "assemble"
	case ActionFocus:
		return "focus"
	}
	return "none"
}

// Album is the photo source a pinch picks from.
type Album interface {
	Random(rng *rand.Rand) (models.Photo, bool)
}

// Machine turns the hand signal into morph and focus changes. Labels act
// only on the sample where they change, and only while the hand is present.
type Machine struct {
	morph    *morph.Controller
	rng      *rand.Rand
	previous models.Gesture
}

func New(ctrl *morph.Controller, rng *rand.Rand) *Machine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Machine{morph: ctrl, rng: rng}
}

// Previous is the last label seen while the hand was present.
func (m *Machine) Previous() models.Gesture {
	return m.previous
}

func (m *Machine) Update(hand models.HandData, s *models.State, album Album) Action {
	s.Tilt = mgl32.Vec2{hand.Y * TiltScale, hand.X * TiltScale}

	if !hand.IsPresent || hand.Gesture == m.previous {
		return ActionNone
	}
	m.previous = hand.Gesture

	switch hand.Gesture {
	case models.GestureOpen:
		m.morph.SetTarget(s, models.Scattered)
		s.ClearFocus()
		return ActionScatter
	case models.GestureFist:
		m.morph.SetTarget(s, models.TreeShape)
		s.ClearFocus()
		return ActionAssemble
	case models.GesturePinch:
		if album == nil {
			return ActionNone
		}
		if p, ok := album.Random(m.rng); ok {
			s.FocusedID = p.ID
			return ActionFocus
		}
	}
	return ActionNone
}
