// Package scene ties the morphing subsystems into one session advanced once
// per rendered frame.
package scene

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/arixlabs/treemorph/internal/config"
	"github.com/arixlabs/treemorph/internal/foliage"
	gestures "github.com/arixlabs/treemorph/internal/gesture"
	"github.com/arixlabs/treemorph/internal/imagery"
	"github.com/arixlabs/treemorph/internal/models"
	"github.com/arixlabs/treemorph/internal/morph"
	"github.com/arixlabs/treemorph/internal/ornaments"
	"github.com/arixlabs/treemorph/internal/photos"
	"github.com/arixlabs/treemorph/internal/sampler"
)

type Options struct {
	Logger *slog.Logger
	// Rand seeds layout sampling and pinch selection. Nil means a fresh
	// random source.
	Rand *rand.Rand
	// Hand receives tracker samples. Nil means a private mailbox that
	// stays absent until something publishes to it.
	Hand *gestures.Mailbox
	// Loader decodes photo textures. Nil disables texture loading.
	Loader *imagery.Loader
	NewID  func() string
}

// Scene is the session. All fields are owned by the goroutine calling
// Frame; other goroutines go through Do.
type Scene struct {
	Settings  *config.Settings
	State     *models.State
	Photos    *photos.Collection
	Foliage   *foliage.Field
	Ornaments *ornaments.Set
	Frames    *photos.Animator
	Morph     *morph.Controller
	Gestures  *gestures.Machine
	Hand      *gestures.Mailbox
	Loader    *imagery.Loader

	sampler  *sampler.Sampler
	newID    func() string
	logger   *slog.Logger
	commands chan command
	textures []imagery.Texture
	frame    uint64
	elapsed  float64
}

func New(settings *config.Settings, opts Options) *Scene {
	if settings == nil {
		settings = config.Defaults()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	hand := opts.Hand
	if hand == nil {
		hand = &gestures.Mailbox{}
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	smp := sampler.New(sampler.Dimensions{
		TreeHeight:     settings.TreeHeight,
		TreeRadiusBase: settings.TreeRadiusBase,
		ScatterRadius:  settings.ScatterRadius,
	}, rng)
	ctrl := morph.New(morph.Rates{
		ToTree:    settings.BlendAssembleRate,
		ToScatter: settings.BlendDisperseRate,
	})

	starScatter, starTree := smp.TopStar()
	s := &Scene{
		Settings: settings,
		State:    models.NewState(),
		Photos:   photos.NewCollection(),
		Foliage:  foliage.New(smp.Foliage(settings.ParticleCount)),
		Ornaments: ornaments.NewSet(
			smp.Ornaments(settings.OrnamentCount),
			ornaments.NewTopStar(starScatter, starTree),
			ornaments.Rates{ToTree: settings.OrnamentAssembleRate, ToScatter: settings.OrnamentDisperseRate},
		),
		Frames:   photos.NewAnimator(settings.PhotoSmoothing),
		Morph:    ctrl,
		Gestures: gestures.New(ctrl, rng),
		Hand:     hand,
		Loader:   opts.Loader,
		sampler:  smp,
		newID:    newID,
		logger:   logger,
		commands: make(chan command, 64),
	}
	logger.Debug("scene generated",
		"particles", s.Foliage.Count,
		"ornaments", s.Ornaments.Len())
	return s
}

// Frame advances the session by dt seconds. Queued commands run first, then
// the hand sample, the blend, and finally every element group.
func (s *Scene) Frame(dt float32) {
	if !(dt > 0) || math.IsInf(float64(dt), 0) {
		dt = 0
	}
	s.drain()

	hand := s.Hand.Latest()
	if act := s.Gestures.Update(hand, s.State, s.Photos); act != gestures.ActionNone {
		s.logger.Debug("gesture", "gesture", hand.Gesture, "action", act, "target", s.State.Target, "focus", s.State.FocusedID)
	}

	s.Morph.Advance(s.State, dt)
	s.Foliage.Advance(dt, s.State.Blend)
	s.Ornaments.Advance(dt, s.State.Target)
	s.Frames.Advance(dt, s.State.Target, s.Photos.All())

	if s.Loader != nil {
		for _, tex := range s.Loader.Ready() {
			if tex.Err == nil && s.Photos.Contains(tex.ID) {
				s.textures = append(s.textures, tex)
			}
		}
	}

	s.frame++
	s.elapsed += float64(dt)
}

// TakeTextures returns decoded photo textures not yet handed to the renderer.
func (s *Scene) TakeTextures() []imagery.Texture {
	out := s.textures
	s.textures = nil
	return out
}

type Status struct {
	Target  models.MorphState `json:"target"`
	Blend   float32           `json:"blend"`
	Focus   string            `json:"focus,omitempty"`
	Tilt    [2]float32        `json:"tilt"`
	Photos  int               `json:"photos"`
	Frame   uint64            `json:"frame"`
	Elapsed float64           `json:"elapsed"`
	// Groups is the ornament count per archetype.
	Groups    map[string]int `json:"groups"`
	Particles int            `json:"particles"`
	// Gesture is the last hand gesture label acted on.
	Gesture models.Gesture `json:"gesture"`
	// Loading counts photo textures still queued for decoding.
	Loading int `json:"loading"`
}

func (s *Scene) Status() Status {
	groups := make(map[string]int, len(s.Ornaments.Groups))
	for _, g := range s.Ornaments.Groups {
		groups[g.Type.String()] = g.Len()
	}
	loading := 0
	if s.Loader != nil {
		loading = s.Loader.Pending()
	}
	return Status{
		Target:    s.State.Target,
		Blend:     s.State.Blend,
		Focus:     s.State.FocusedID,
		Tilt:      [2]float32(s.State.Tilt),
		Photos:    s.Photos.Len(),
		Frame:     s.frame,
		Elapsed:   s.elapsed,
		Groups:    groups,
		Particles: s.Foliage.Count,
		Gesture:   s.Gestures.Previous(),
		Loading:   loading,
	}
}
