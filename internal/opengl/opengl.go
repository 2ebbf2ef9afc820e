package opengl

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/arixlabs/treemorph/internal/foliage"
	"github.com/arixlabs/treemorph/internal/mesh"
	"github.com/arixlabs/treemorph/internal/models"
	"github.com/arixlabs/treemorph/internal/scene"
	"github.com/arixlabs/treemorph/internal/shaders"
)

// Mesh is a static mesh uploaded to the GPU.
type Mesh struct {
	VAO     uint32
	vbos    [3]uint32
	Indices int32
}

// Instanced is a mesh drawn once per instance, with a per-instance model
// matrix and color.
type Instanced struct {
	Mesh
	Type      models.OrnamentType
	MatrixVBO uint32
	ColorVBO  uint32
	Count     int32
}

type Foliage struct {
	VAO   uint32
	vbos  [3]uint32
	Count int32
}

// Renderer owns every GL object. It must be created and used on the thread
// holding the GL context.
type Renderer struct {
	FoliageProgram  uint32
	OrnamentProgram uint32
	PhotoProgram    uint32

	FoliageUniforms  map[string]int32
	OrnamentUniforms map[string]int32
	PhotoUniforms    map[string]int32

	Foliage Foliage
	Groups  []*Instanced
	Star    *Instanced

	FrameBody    Mesh
	FrameRim     Mesh
	FrameSurface Mesh
	FrameLabel   Mesh

	Textures map[string]uint32
}

var foliageSource = shaders.Source{
	Name:     "foliage",
	Vertex:   foliage.VertexShader(),
	Fragment: foliage.FragmentShader,
}

// Photo frame part sizes.
const (
	FrameWidth   = 1.2
	FrameHeight  = 1.5
	FrameDepth   = 0.05
	SurfaceSize  = 1.05
	SurfaceLift  = 0.1
	LabelWidth   = 1.0
	LabelHeight  = 0.2
	LabelDrop    = -0.55
	SurfaceFront = 0.03
)

func InitGL(s *scene.Scene) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, err
	}

	r := &Renderer{Textures: make(map[string]uint32)}
	var err error

	if r.FoliageProgram, err = shaders.Program(foliageSource); err != nil {
		return nil, err
	}
	if r.FoliageUniforms, err = shaders.Uniforms(r.FoliageProgram,
		"uTime", "uMix", "uPixelRatio", "uColorHigh", "uColorLow", "uModelView", "uProjection"); err != nil {
		return nil, fmt.Errorf("foliage: %w", err)
	}
	if r.OrnamentProgram, err = shaders.Program(shaders.Ornament); err != nil {
		return nil, err
	}
	if r.OrnamentUniforms, err = shaders.Uniforms(r.OrnamentProgram,
		"uScene", "uView", "uProjection", "uEye", "uLightDir", "uMetalness", "uEmissive"); err != nil {
		return nil, fmt.Errorf("ornament: %w", err)
	}
	if r.PhotoProgram, err = shaders.Program(shaders.Photo); err != nil {
		return nil, err
	}
	if r.PhotoUniforms, err = shaders.Uniforms(r.PhotoProgram,
		"uScene", "uModel", "uView", "uProjection", "uExtent", "uLightDir", "uColor", "uUseTexture", "uTexture"); err != nil {
		return nil, fmt.Errorf("photo: %w", err)
	}

	r.Foliage = uploadFoliage(s.Foliage)
	for _, g := range s.Ornaments.Groups {
		r.Groups = append(r.Groups, newInstanced(g.Type, mesh.Archetype(g.Type), g.Len(), g.Colors))
	}
	if star := s.Ornaments.Star; star != nil {
		glow := models.Gold.Mul(2)
		r.Star = newInstanced(models.Star, mesh.StarPrism(1.2, 0.6, 0.4), 1, glow[:])
	}

	r.FrameBody = uploadMesh(mesh.Box(FrameWidth, FrameHeight, FrameDepth))
	r.FrameRim = uploadMesh(mesh.Box(FrameWidth+0.02, FrameHeight+0.02, 0.02))
	r.FrameSurface = uploadMesh(mesh.Plane(SurfaceSize, SurfaceSize))
	r.FrameLabel = uploadMesh(mesh.Plane(LabelWidth, LabelHeight))

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.ClearColor(0, 0, 0, 1)

	return r, nil
}

func uploadFoliage(f *foliage.Field) Foliage {
	out := Foliage{Count: int32(f.Count)}
	gl.GenVertexArrays(1, &out.VAO)
	gl.GenBuffers(3, &out.vbos[0])
	gl.BindVertexArray(out.VAO)

	for i, data := range [][]float32{f.Scatter, f.Tree, f.Random} {
		size := int32(3)
		if i == 2 {
			size = 1
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, out.vbos[i])
		if len(data) > 0 {
			gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
		}
		gl.VertexAttribPointer(uint32(i), size, gl.FLOAT, false, size*4, nil)
		gl.EnableVertexAttribArray(uint32(i))
	}

	gl.BindVertexArray(0)
	return out
}

func uploadMesh(m *mesh.Mesh) Mesh {
	out := Mesh{Indices: int32(len(m.Indices))}
	gl.GenVertexArrays(1, &out.VAO)
	gl.GenBuffers(3, &out.vbos[0])
	gl.BindVertexArray(out.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, out.vbos[0])
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Positions)*4, gl.Ptr(m.Positions), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, out.vbos[1])
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Normals)*4, gl.Ptr(m.Normals), gl.STATIC_DRAW)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, out.vbos[2])
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return out
}

func newInstanced(t models.OrnamentType, m *mesh.Mesh, count int, colors []float32) *Instanced {
	in := &Instanced{Mesh: uploadMesh(m), Type: t, Count: int32(count)}
	gl.BindVertexArray(in.VAO)

	gl.GenBuffers(1, &in.MatrixVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, in.MatrixVBO)
	gl.BufferData(gl.ARRAY_BUFFER, max(count, 1)*16*4, nil, gl.DYNAMIC_DRAW)
	for col := range uint32(4) {
		loc := 2 + col
		gl.VertexAttribPointerWithOffset(loc, 4, gl.FLOAT, false, 16*4, uintptr(col*4*4))
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribDivisor(loc, 1)
	}

	gl.GenBuffers(1, &in.ColorVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, in.ColorVBO)
	if len(colors) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(colors)*4, gl.Ptr(colors), gl.STATIC_DRAW)
	}
	gl.VertexAttribPointer(6, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(6)
	gl.VertexAttribDivisor(6, 1)

	gl.BindVertexArray(0)
	return in
}

// UploadMatrices replaces the instance transforms.
func (in *Instanced) UploadMatrices(m []float32) {
	if len(m) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, in.MatrixVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(m)*4, gl.Ptr(m))
}

// UploadTexture creates or replaces the texture for a photo.
func (r *Renderer) UploadTexture(id string, img *image.RGBA) {
	tex, ok := r.Textures[id]
	if !ok {
		gl.GenTextures(1, &tex)
		r.Textures[id] = tex
	}
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	b := img.Bounds()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// PruneTextures deletes textures whose photo is gone.
func (r *Renderer) PruneTextures(keep func(id string) bool) {
	for id, tex := range r.Textures {
		if !keep(id) {
			gl.DeleteTextures(1, &tex)
			delete(r.Textures, id)
		}
	}
}

func (m *Mesh) delete() {
	gl.DeleteBuffers(3, &m.vbos[0])
	gl.DeleteVertexArrays(1, &m.VAO)
}

func (r *Renderer) Delete() {
	r.PruneTextures(func(string) bool { return false })
	gl.DeleteBuffers(3, &r.Foliage.vbos[0])
	gl.DeleteVertexArrays(1, &r.Foliage.VAO)
	for _, in := range append(r.Groups, r.Star) {
		if in == nil {
			continue
		}
		gl.DeleteBuffers(1, &in.MatrixVBO)
		gl.DeleteBuffers(1, &in.ColorVBO)
		in.delete()
	}
	for _, m := range []*Mesh{&r.FrameBody, &r.FrameRim, &r.FrameSurface, &r.FrameLabel} {
		m.delete()
	}
	gl.DeleteProgram(r.FoliageProgram)
	gl.DeleteProgram(r.OrnamentProgram)
	gl.DeleteProgram(r.PhotoProgram)
}
