package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arixlabs/treemorph/internal/models"
)

func all() map[string]*Mesh {
	out := map[string]*Mesh{
		"plane":      Plane(1.05, 1.05),
		"frame":      Box(1.2, 1.5, 0.05),
		"star":       StarPrism(1.2, 0.6, 0.4),
		"cylinder":   Cylinder(0.3, 0.5, 2, 12),
		"cone":       Cylinder(0.1, 0, 1.5, 8),
		"octahedron": Octahedron(1),
	}
	for _, t := range models.OrnamentTypes {
		out[t.String()] = Archetype(t)
	}
	return out
}

func TestWellFormed(t *testing.T) {
	for name, m := range all() {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, len(m.Positions), len(m.Normals))
			require.Zero(t, len(m.Positions)%3)
			require.Zero(t, len(m.Indices)%3)
			require.NotEmpty(t, m.Indices)
			for _, idx := range m.Indices {
				require.Less(t, int(idx), m.VertexCount())
			}
			for i := range m.VertexCount() {
				_, n := m.Vertex(i)
				assert.InDelta(t, 1, n.Len(), 1e-4)
			}
		})
	}
}

// Triangles wind counter-clockwise seen from the side their normals face.
func TestWindingMatchesNormals(t *testing.T) {
	for name, m := range all() {
		t.Run(name, func(t *testing.T) {
			for k := 0; k < len(m.Indices); k += 3 {
				a, na := m.Vertex(int(m.Indices[k]))
				b, nb := m.Vertex(int(m.Indices[k+1]))
				c, nc := m.Vertex(int(m.Indices[k+2]))
				face := b.Sub(a).Cross(c.Sub(a))
				if face.Len() < 1e-6 {
					continue
				}
				avg := na.Add(nb).Add(nc)
				assert.Greater(t, face.Dot(avg), float32(0), "triangle %d", k/3)
			}
		})
	}
}

func TestSphereRadius(t *testing.T) {
	m := Sphere(0.5, 16, 12)
	assert.Equal(t, 17*13, m.VertexCount())
	for i := range m.VertexCount() {
		p, n := m.Vertex(i)
		assert.InDelta(t, 0.5, p.Len(), 1e-5)
		assert.InDelta(t, 1, p.Normalize().Dot(n), 1e-4)
	}
}

func TestBoxExtent(t *testing.T) {
	m := Box(1.2, 1.5, 0.05)
	assert.Equal(t, 24, m.VertexCount())
	assert.Len(t, m.Indices, 36)
	var hi mgl32.Vec3
	for i := range m.VertexCount() {
		p, _ := m.Vertex(i)
		for k := range 3 {
			hi[k] = max(hi[k], p[k])
		}
	}
	assert.InDelta(t, 0.6, hi.X(), 1e-6)
	assert.InDelta(t, 0.75, hi.Y(), 1e-6)
	assert.InDelta(t, 0.025, hi.Z(), 1e-6)
}

func TestConePointsDown(t *testing.T) {
	m := Cylinder(0.1, 0, 1.5, 8)
	for i := range m.VertexCount() {
		p, n := m.Vertex(i)
		if p.Y() < 0 {
			assert.InDelta(t, 0, mgl32.Vec2{p.X(), p.Z()}.Len(), 1e-6, "bottom collapses to the tip")
		}
		assert.LessOrEqual(t, n.Y(), float32(1))
	}
}

func TestStarPrismPoints(t *testing.T) {
	m := StarPrism(1.2, 0.6, 0.4)
	var far float32
	for i := range m.VertexCount() {
		p, _ := m.Vertex(i)
		far = max(far, mgl32.Vec2{p.X(), p.Y()}.Len())
		assert.LessOrEqual(t, p.Z(), float32(0.2+1e-6))
	}
	assert.InDelta(t, 1.2, far, 1e-5)
	// 10 rim edges, each with a front and back triangle and one side quad
	assert.Len(t, m.Indices, 10*(3+3+6))
}
