// Package mesh builds the indexed triangle meshes drawn for each ornament
// archetype, the top star and photo frames.
package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/arixlabs/treemorph/internal/models"
)

// Mesh is an indexed triangle list with one normal per vertex.
type Mesh struct {
	Positions []float32
	Normals   []float32
	Indices   []uint32
}

func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

func (m *Mesh) Vertex(i int) (pos, normal mgl32.Vec3) {
	copy(pos[:], m.Positions[i*3:])
	copy(normal[:], m.Normals[i*3:])
	return pos, normal
}

func (m *Mesh) add(p, n mgl32.Vec3) uint32 {
	m.Positions = append(m.Positions, p[0], p[1], p[2])
	m.Normals = append(m.Normals, n[0], n[1], n[2])
	return uint32(len(m.Positions)/3 - 1)
}

// quad appends two triangles for corners given counter-clockwise.
func (m *Mesh) quad(a, b, c, d mgl32.Vec3, n mgl32.Vec3) {
	i := m.add(a, n)
	m.add(b, n)
	m.add(c, n)
	m.add(d, n)
	m.Indices = append(m.Indices, i, i+1, i+2, i, i+2, i+3)
}

func (m *Mesh) tri(a, b, c mgl32.Vec3) {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	i := m.add(a, n)
	m.add(b, n)
	m.add(c, n)
	m.Indices = append(m.Indices, i, i+1, i+2)
}

// Archetype returns the mesh for an ornament type.
func Archetype(t models.OrnamentType) *Mesh {
	switch t {
	case models.Bauble:
		return Sphere(0.5, 32, 32)
	case models.Gift:
		return Box(1, 1, 1)
	case models.Torus:
		return Torus(0.4, 0.15, 8, 24)
	case models.Icicle:
		return Cylinder(0.1, 0, 1.5, 8)
	case models.Star:
		return Octahedron(1)
	}
	return Box(1, 1, 1)
}

func Box(w, h, d float32) *Mesh {
	x, y, z := w/2, h/2, d/2
	m := &Mesh{}
	m.quad(mgl32.Vec3{-x, -y, z}, mgl32.Vec3{x, -y, z}, mgl32.Vec3{x, y, z}, mgl32.Vec3{-x, y, z}, mgl32.Vec3{0, 0, 1})
	m.quad(mgl32.Vec3{x, -y, -z}, mgl32.Vec3{-x, -y, -z}, mgl32.Vec3{-x, y, -z}, mgl32.Vec3{x, y, -z}, mgl32.Vec3{0, 0, -1})
	m.quad(mgl32.Vec3{x, -y, z}, mgl32.Vec3{x, -y, -z}, mgl32.Vec3{x, y, -z}, mgl32.Vec3{x, y, z}, mgl32.Vec3{1, 0, 0})
	m.quad(mgl32.Vec3{-x, -y, -z}, mgl32.Vec3{-x, -y, z}, mgl32.Vec3{-x, y, z}, mgl32.Vec3{-x, y, -z}, mgl32.Vec3{-1, 0, 0})
	m.quad(mgl32.Vec3{-x, y, z}, mgl32.Vec3{x, y, z}, mgl32.Vec3{x, y, -z}, mgl32.Vec3{-x, y, -z}, mgl32.Vec3{0, 1, 0})
	m.quad(mgl32.Vec3{-x, -y, -z}, mgl32.Vec3{x, -y, -z}, mgl32.Vec3{x, -y, z}, mgl32.Vec3{-x, -y, z}, mgl32.Vec3{0, -1, 0})
	return m
}

// Plane faces +Z.
func Plane(w, h float32) *Mesh {
	x, y := w/2, h/2
	m := &Mesh{}
	m.quad(mgl32.Vec3{-x, -y, 0}, mgl32.Vec3{x, -y, 0}, mgl32.Vec3{x, y, 0}, mgl32.Vec3{-x, y, 0}, mgl32.Vec3{0, 0, 1})
	return m
}

func Sphere(radius float32, segments, rings int) *Mesh {
	m := &Mesh{}
	for r := 0; r <= rings; r++ {
		phi := math32.Pi * float32(r) / float32(rings)
		for s := 0; s <= segments; s++ {
			theta := 2 * math32.Pi * float32(s) / float32(segments)
			n := mgl32.Vec3{
				math32.Sin(phi) * math32.Cos(theta),
				math32.Cos(phi),
				math32.Sin(phi) * math32.Sin(theta),
			}
			m.add(n.Mul(radius), n)
		}
	}
	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			m.Indices = append(m.Indices, a, a+1, b, a+1, b+1, b)
		}
	}
	return m
}

// Torus lies in the XY plane around the Z axis.
func Torus(radius, tube float32, radial, tubular int) *Mesh {
	m := &Mesh{}
	for j := 0; j <= radial; j++ {
		v := 2 * math32.Pi * float32(j) / float32(radial)
		for i := 0; i <= tubular; i++ {
			u := 2 * math32.Pi * float32(i) / float32(tubular)
			center := mgl32.Vec3{radius * math32.Cos(u), radius * math32.Sin(u), 0}
			p := mgl32.Vec3{
				(radius + tube*math32.Cos(v)) * math32.Cos(u),
				(radius + tube*math32.Cos(v)) * math32.Sin(u),
				tube * math32.Sin(v),
			}
			m.add(p, p.Sub(center).Normalize())
		}
	}
	stride := uint32(tubular + 1)
	for j := 0; j < radial; j++ {
		for i := 0; i < tubular; i++ {
			a := uint32(j)*stride + uint32(i)
			b := a + stride
			m.Indices = append(m.Indices, a, a+1, b, b, a+1, b+1)
		}
	}
	return m
}

// Cylinder runs along Y, centred on the origin. A zero radius closes that
// end to a point.
func Cylinder(top, bottom, height float32, segments int) *Mesh {
	m := &Mesh{}
	half := height / 2
	slope := (bottom - top) / height
	for s := 0; s <= segments; s++ {
		theta := 2 * math32.Pi * float32(s) / float32(segments)
		c, sn := math32.Cos(theta), math32.Sin(theta)
		n := mgl32.Vec3{c, slope, sn}.Normalize()
		m.add(mgl32.Vec3{top * c, half, top * sn}, n)
		m.add(mgl32.Vec3{bottom * c, -half, bottom * sn}, n)
	}
	for s := 0; s < segments; s++ {
		a := uint32(s * 2)
		m.Indices = append(m.Indices, a, a+2, a+1, a+1, a+2, a+3)
	}
	if top > 0 {
		m.cap(top, half, segments, 1)
	}
	if bottom > 0 {
		m.cap(bottom, -half, segments, -1)
	}
	return m
}

func (m *Mesh) cap(radius, y float32, segments int, dir float32) {
	n := mgl32.Vec3{0, dir, 0}
	center := m.add(mgl32.Vec3{0, y, 0}, n)
	for s := 0; s <= segments; s++ {
		theta := 2 * math32.Pi * float32(s) / float32(segments)
		m.add(mgl32.Vec3{radius * math32.Cos(theta), y, radius * math32.Sin(theta)}, n)
	}
	for s := uint32(1); s <= uint32(segments); s++ {
		if dir > 0 {
			m.Indices = append(m.Indices, center, center+s+1, center+s)
		} else {
			m.Indices = append(m.Indices, center, center+s, center+s+1)
		}
	}
}

func Octahedron(radius float32) *Mesh {
	px, nx := mgl32.Vec3{radius, 0, 0}, mgl32.Vec3{-radius, 0, 0}
	py, ny := mgl32.Vec3{0, radius, 0}, mgl32.Vec3{0, -radius, 0}
	pz, nz := mgl32.Vec3{0, 0, radius}, mgl32.Vec3{0, 0, -radius}
	m := &Mesh{}
	m.tri(px, py, pz)
	m.tri(pz, py, nx)
	m.tri(nx, py, nz)
	m.tri(nz, py, px)
	m.tri(px, pz, ny)
	m.tri(pz, nx, ny)
	m.tri(nx, nz, ny)
	m.tri(nz, px, ny)
	return m
}

// StarPrism extrudes a five point star in XY along Z by depth.
func StarPrism(outer, inner, depth float32) *Mesh {
	const points = 5
	var rim [points * 2]mgl32.Vec3
	for i := range rim {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := float32(i)/float32(len(rim))*2*math32.Pi + math32.Pi/10
		rim[i] = mgl32.Vec3{math32.Cos(a) * r, math32.Sin(a) * r, 0}
	}
	front := mgl32.Vec3{0, 0, depth / 2}
	back := mgl32.Vec3{0, 0, -depth / 2}
	m := &Mesh{}
	for i := range rim {
		a, b := rim[i], rim[(i+1)%len(rim)]
		m.tri(front, a.Add(front), b.Add(front))
		m.tri(back, b.Add(back), a.Add(back))
		m.quad(a.Add(back), b.Add(back), b.Add(front), a.Add(front),
			b.Sub(a).Cross(mgl32.Vec3{0, 0, 1}).Normalize())
	}
	return m
}
