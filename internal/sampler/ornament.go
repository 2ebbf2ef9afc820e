package sampler

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/arixlabs/treemorph/internal/models"
)

// ArchetypeThresholds are the cumulative probabilities of each archetype, in
// models.OrnamentTypes order. The last archetype takes the remainder.
var ArchetypeThresholds = [...]float32{0.35, 0.55, 0.70, 0.85}

// ArchetypeFor maps a uniform draw in [0,1) to an archetype.
func ArchetypeFor(u float32) models.OrnamentType {
	for i, th := range ArchetypeThresholds {
		if u < th {
			return models.OrnamentTypes[i]
		}
	}
	return models.OrnamentTypes[len(models.OrnamentTypes)-1]
}

func (s *Sampler) Ornament(id int) models.Ornament {
	t := ArchetypeFor(s.float())
	o := models.Ornament{
		ID:   id,
		Type: t,
		// keeps the dispersed ornaments inside the scatter radius
		ScatterPos: s.ScatterShell(0.5, 0.5),
		TreePos:    s.OrnamentTree(),
		Rotation: mgl32.Vec3{
			s.float() * math32.Pi,
			s.float() * math32.Pi,
			s.float() * math32.Pi,
		},
	}
	o.Scale, o.Color = s.look(t)
	return o
}

func (s *Sampler) look(t models.OrnamentType) (float32, mgl32.Vec3) {
	switch t {
	case models.Gift:
		scale := 0.5 + s.float()*0.4
		c := s.float()
		switch {
		case c > 0.9:
			return scale, models.RedDark
		case c > 0.7:
			return scale, models.Gold
		case c > 0.4:
			return scale, models.Emerald
		}
		return scale, models.EmeraldLight
	case models.Bauble:
		scale := 0.3 + s.float()*0.4
		c := s.float()
		switch {
		case c > 0.9:
			return scale, models.RedDark
		case c > 0.5:
			return scale, models.Emerald
		case c > 0.2:
			return scale, models.EmeraldLight
		}
		return scale, models.Gold
	case models.Torus:
		scale := 0.3 + s.float()*0.3
		if s.float() > 0.3 {
			return scale, models.EmeraldLight
		}
		return scale, models.Gold
	case models.Icicle:
		return 0.4 + s.float()*0.4, models.IcicleBlue
	case models.Star:
		return 0.3 + s.float()*0.3, models.Gold
	}
	return 1, models.Gold
}

func (s *Sampler) Ornaments(n int) []models.Ornament {
	out := make([]models.Ornament, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, s.Ornament(i))
	}
	return out
}

// Photo samples a placement for a newly attached picture. The frame faces
// outward from the tree axis.
func (s *Sampler) Photo(id, url string) models.Photo {
	h := s.dims.TreeHeight
	y := s.float()*0.8*h - 0.4*h
	r := s.dims.ConeRadius(y)
	angle := s.float() * 2 * math32.Pi
	return models.Photo{
		ID:         id,
		URL:        url,
		TreePos:    mgl32.Vec3{math32.Cos(angle) * r, y, math32.Sin(angle) * r},
		ScatterPos: s.ScatterShell(0.6, 0.4),
		Rotation:   mgl32.Vec3{0, math32.Pi/2 - angle, 0},
	}
}
