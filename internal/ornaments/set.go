package ornaments

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/arixlabs/treemorph/internal/easing"
	"github.com/arixlabs/treemorph/internal/models"
)

// TopStarRates are slower than the ornament rates so the star lands last.
var TopStarRates = Rates{ToTree: 2.0, ToScatter: 1.0}

// TopStar is the single star crowning the tree.
type TopStar struct {
	ScatterPos mgl32.Vec3
	TreePos    mgl32.Vec3
	Position   mgl32.Vec3
	Spin       float32
	Scale      float32
}

func NewTopStar(scatter, tree mgl32.Vec3) *TopStar {
	return &TopStar{ScatterPos: scatter, TreePos: tree, Scale: 1}
}

func (s *TopStar) Advance(dt float32, target models.MorphState) {
	if dt < 0 {
		dt = 0
	}
	dest := s.ScatterPos
	if target == models.TreeShape {
		dest = s.TreePos
	}
	s.Position = easing.DampVec3(s.Position, dest, TopStarRates.For(target), dt)
	s.Spin += dt * SpinSpeed
}

func (s *TopStar) Matrix() mgl32.Mat4 {
	return Transform(s.Position, mgl32.Vec3{0, s.Spin, 0}, s.Scale)
}

// Set is every ornament group plus the top star.
type Set struct {
	Groups []*Group
	Star   *TopStar
}

// Partition splits ornaments by archetype, keeping generation order inside
// each group.
func Partition(all []models.Ornament) map[models.OrnamentType][]models.Ornament {
	out := make(map[models.OrnamentType][]models.Ornament, len(models.OrnamentTypes))
	for _, o := range all {
		out[o.Type] = append(out[o.Type], o)
	}
	return out
}

func NewSet(all []models.Ornament, star *TopStar, rates Rates) *Set {
	parts := Partition(all)
	s := &Set{Star: star}
	for _, t := range models.OrnamentTypes {
		s.Groups = append(s.Groups, NewGroup(t, parts[t], rates))
	}
	return s
}

func (s *Set) Group(t models.OrnamentType) *Group {
	for _, g := range s.Groups {
		if g.Type == t {
			return g
		}
	}
	return nil
}

func (s *Set) Len() int {
	n := 0
	for _, g := range s.Groups {
		n += g.Len()
	}
	return n
}

func (s *Set) Advance(dt float32, target models.MorphState) {
	for _, g := range s.Groups {
		g.Advance(dt, target)
	}
	if s.Star != nil {
		s.Star.Advance(dt, target)
	}
}
