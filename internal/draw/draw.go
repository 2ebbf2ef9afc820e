package draw

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/arixlabs/treemorph/internal/models"
	"github.com/arixlabs/treemorph/internal/opengl"
	"github.com/arixlabs/treemorph/internal/photos"
	"github.com/arixlabs/treemorph/internal/scene"
)

type material struct {
	metalness float32
	emissive  float32
}

var materials = map[models.OrnamentType]material{
	models.Bauble: {metalness: 0.8},
	models.Gift:   {metalness: 0.2},
	models.Torus:  {metalness: 0.9},
	models.Icicle: {metalness: 0.2, emissive: 0.1},
	models.Star:   {metalness: 1.0, emissive: 0.8},
}

var (
	lightDir   = mgl32.Vec3{-0.4, -1, -0.6}.Normalize()
	frameWhite = mgl32.Vec3{0.996, 0.996, 0.996}
	labelGrey  = mgl32.Vec3{0.94, 0.94, 0.94}
)

// FocusPose places the focused photo between the camera and the tree.
var FocusPose = photos.Frame{Position: mgl32.Vec3{0, 0, 36}, Orientation: mgl32.QuatIdent()}

const FocusScale = 4

type App struct {
	r      *opengl.Renderer
	scene  *scene.Scene
	Camera *Camera
}

func New(r *opengl.Renderer, s *scene.Scene) *App {
	return &App{r: r, scene: s, Camera: NewCamera()}
}

// Draw renders the current scene state. dt only moves the camera.
func (a *App) Draw(width, height int, pixelRatio, dt float32) {
	s := a.scene
	a.Camera.Advance(dt, s.State)

	for _, tex := range s.TakeTextures() {
		a.r.UploadTexture(tex.ID, tex.Image)
	}
	a.r.PruneTextures(s.Photos.Contains)

	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view := a.Camera.View()
	proj := a.Camera.Projection(float32(width) / float32(max(height, 1)))
	group := a.Camera.Scene()

	a.drawOrnaments(view, proj, group)
	a.drawPhotos(view, proj, group)
	a.drawFoliage(view, proj, group, pixelRatio)

	if s.State.Focused() {
		gl.Clear(gl.DEPTH_BUFFER_BIT)
		if p, ok := s.Photos.Get(s.State.FocusedID); ok {
			a.drawPhoto(p.ID, FocusPose.Matrix(FocusScale), view, proj, mgl32.Ident4())
		}
	}
}

func (a *App) drawFoliage(view, proj, group mgl32.Mat4, pixelRatio float32) {
	f := a.scene.Foliage
	if a.r.Foliage.Count == 0 {
		return
	}
	u := a.r.FoliageUniforms
	modelView := view.Mul4(group)

	gl.UseProgram(a.r.FoliageProgram)
	gl.Uniform1f(u["uTime"], f.Uniforms.Time)
	gl.Uniform1f(u["uMix"], f.Uniforms.Mix)
	gl.Uniform1f(u["uPixelRatio"], pixelRatio)
	gl.Uniform3fv(u["uColorHigh"], 1, &f.Uniforms.ColorHigh[0])
	gl.Uniform3fv(u["uColorLow"], 1, &f.Uniforms.ColorLow[0])
	gl.UniformMatrix4fv(u["uModelView"], 1, false, &modelView[0])
	gl.UniformMatrix4fv(u["uProjection"], 1, false, &proj[0])

	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	gl.DepthMask(false)
	gl.BindVertexArray(a.r.Foliage.VAO)
	gl.DrawArrays(gl.POINTS, 0, a.r.Foliage.Count)
	gl.BindVertexArray(0)
	gl.DepthMask(true)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
}

func (a *App) drawOrnaments(view, proj, group mgl32.Mat4) {
	u := a.r.OrnamentUniforms
	eye := a.Camera.Position()

	gl.UseProgram(a.r.OrnamentProgram)
	gl.UniformMatrix4fv(u["uScene"], 1, false, &group[0])
	gl.UniformMatrix4fv(u["uView"], 1, false, &view[0])
	gl.UniformMatrix4fv(u["uProjection"], 1, false, &proj[0])
	gl.Uniform3fv(u["uEye"], 1, &eye[0])
	gl.Uniform3fv(u["uLightDir"], 1, &lightDir[0])

	for i, in := range a.r.Groups {
		g := a.scene.Ornaments.Groups[i]
		if in.Count == 0 {
			continue
		}
		in.UploadMatrices(g.Matrices)
		a.drawInstanced(in)
	}
	if star := a.scene.Ornaments.Star; star != nil && a.r.Star != nil {
		m := star.Matrix()
		a.r.Star.UploadMatrices(m[:])
		a.drawInstanced(a.r.Star)
	}
}

func (a *App) drawInstanced(in *opengl.Instanced) {
	u := a.r.OrnamentUniforms
	mat := materials[in.Type]
	gl.Uniform1f(u["uMetalness"], mat.metalness)
	gl.Uniform1f(u["uEmissive"], mat.emissive)
	gl.BindVertexArray(in.VAO)
	gl.DrawElementsInstanced(gl.TRIANGLES, in.Indices, gl.UNSIGNED_INT, nil, in.Count)
	gl.BindVertexArray(0)
}

func (a *App) drawPhotos(view, proj, group mgl32.Mat4) {
	s := a.scene
	for i := range s.Photos.Len() {
		p := s.Photos.At(i)
		if p.ID == s.State.FocusedID {
			continue
		}
		f, ok := s.Frames.Frame(p.ID)
		if !ok {
			continue
		}
		a.drawPhoto(p.ID, f.Matrix(1), view, proj, group)
	}
}

func (a *App) drawPhoto(id string, model, view, proj, group mgl32.Mat4) {
	u := a.r.PhotoUniforms
	gl.UseProgram(a.r.PhotoProgram)
	gl.UniformMatrix4fv(u["uScene"], 1, false, &group[0])
	gl.UniformMatrix4fv(u["uView"], 1, false, &view[0])
	gl.UniformMatrix4fv(u["uProjection"], 1, false, &proj[0])
	gl.Uniform3fv(u["uLightDir"], 1, &lightDir[0])
	gl.Uniform1i(u["uUseTexture"], 0)

	part := func(m *opengl.Mesh, offset mgl32.Vec3, color mgl32.Vec3, extent mgl32.Vec2) {
		mm := model.Mul4(mgl32.Translate3D(offset[0], offset[1], offset[2]))
		gl.UniformMatrix4fv(u["uModel"], 1, false, &mm[0])
		gl.Uniform3fv(u["uColor"], 1, &color[0])
		gl.Uniform2fv(u["uExtent"], 1, &extent[0])
		gl.BindVertexArray(m.VAO)
		gl.DrawElements(gl.TRIANGLES, m.Indices, gl.UNSIGNED_INT, nil)
	}

	part(&a.r.FrameRim, mgl32.Vec3{}, models.Gold, mgl32.Vec2{1, 1})
	part(&a.r.FrameBody, mgl32.Vec3{}, frameWhite, mgl32.Vec2{1, 1})
	part(&a.r.FrameLabel, mgl32.Vec3{0, opengl.LabelDrop, opengl.SurfaceFront}, labelGrey, mgl32.Vec2{1, 1})

	surface := mgl32.Vec3{0, opengl.SurfaceLift, opengl.SurfaceFront}
	if tex, ok := a.r.Textures[id]; ok {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.Uniform1i(u["uTexture"], 0)
		gl.Uniform1i(u["uUseTexture"], 1)
	}
	part(&a.r.FrameSurface, surface, models.WhiteWarm, mgl32.Vec2{opengl.SurfaceSize, opengl.SurfaceSize})
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindVertexArray(0)
}
