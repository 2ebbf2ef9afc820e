package models

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type MorphState int

const (
	Scattered MorphState = iota
	TreeShape
)

func (s MorphState) String() string {
	switch s {
	case Scattered:
		return "SCATTERED"
	case TreeShape:
		return "TREE_SHAPE"
	}
	return fmt.Sprintf("MorphState(%d)", int(s))
}

// Other returns the opposite configuration.
func (s MorphState) Other() MorphState {
	if s == TreeShape {
		return Scattered
	}
	return TreeShape
}

func (s MorphState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *MorphState) UnmarshalText(text []byte) error {
	v, err := ParseMorphState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseMorphState(s string) (MorphState, error) {
	switch s {
	case "SCATTERED", "scattered":
		return Scattered, nil
	case "TREE_SHAPE", "tree_shape", "TREE", "tree":
		return TreeShape, nil
	}
	return Scattered, fmt.Errorf("unknown morph state %q", s)
}

type Gesture int

const (
	GestureNone Gesture = iota
	GestureOpen
	GestureFist
	GesturePinch
)

func (g Gesture) String() string {
	switch g {
	case GestureNone:
		return "NONE"
	case GestureOpen:
		return "OPEN"
	case GestureFist:
		return "FIST"
	case GesturePinch:
		return "PINCH"
	}
	return fmt.Sprintf("Gesture(%d)", int(g))
}

func (g Gesture) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Gesture) UnmarshalText(text []byte) error {
	switch string(text) {
	case "NONE", "":
		*g = GestureNone
	case "OPEN":
		*g = GestureOpen
	case "FIST":
		*g = GestureFist
	case "PINCH":
		*g = GesturePinch
	default:
		return fmt.Errorf("unknown gesture %q", text)
	}
	return nil
}

// HandData is one sample from the hand tracker. X and Y are normalized to [-1, 1].
type HandData struct {
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Gesture   Gesture `json:"gesture"`
	IsPresent bool    `json:"isPresent"`
}

// Absent is the sample published when no hand is tracked.
var Absent = HandData{Gesture: GestureNone}

type OrnamentType int

const (
	Bauble OrnamentType = iota
	Gift
	Torus
	Icicle
	Star
)

// OrnamentTypes lists the archetypes in group order.
var OrnamentTypes = [...]OrnamentType{Bauble, Gift, Torus, Icicle, Star}

func (t OrnamentType) String() string {
	switch t {
	case Bauble:
		return "BAUBLE"
	case Gift:
		return "GIFT"
	case Torus:
		return "TORUS"
	case Icicle:
		return "ICICLE"
	case Star:
		return "STAR"
	}
	return fmt.Sprintf("OrnamentType(%d)", int(t))
}

type Ornament struct {
	ID         int
	Type       OrnamentType
	ScatterPos mgl32.Vec3
	TreePos    mgl32.Vec3
	Rotation   mgl32.Vec3
	Scale      float32
	Color      mgl32.Vec3
}

// Photo is a user-attached picture. The JSON field names are the share wire format.
type Photo struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	TreePos    mgl32.Vec3 `json:"treePos"`
	ScatterPos mgl32.Vec3 `json:"scatterPos"`
	Rotation   mgl32.Vec3 `json:"rotation"`
}

// State is the process-wide morph state shared by every subsystem.
type State struct {
	Target MorphState
	// Blend is 0 when fully scattered and 1 when fully assembled. Only the
	// morph controller writes it.
	Blend float32
	// FocusedID is the photo shown exclusively, or "" for none.
	FocusedID string
	// Tilt is the ambient scene rotation (pitch, yaw) driven by the hand position.
	Tilt mgl32.Vec2
}

func NewState() *State {
	return &State{Target: Scattered}
}

func (s *State) Focused() bool {
	return s.FocusedID != ""
}

func (s *State) ClearFocus() {
	s.FocusedID = ""
}
