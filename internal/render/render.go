package render

import (
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"slot-viewer/internal/logger"
	"slot-viewer/internal/primitives"
	"slot-viewer/internal/scene"
	"slot-viewer/internal/viewport"
)

// Options selects the overlay model.
type Options struct {
	ModelPath   string
	Placeholder primitives.Def
}

// Renderer draws a scene.Scene with raylib. GPU resources (photo texture, plane mesh, overlay model)
// are created lazily inside Draw so they are only touched after the window/OpenGL context exists.
type Renderer struct {
	opts Options
	log  *logger.Logger

	bgVersion uint64
	bgTex     rl.Texture2D
	bgMesh    rl.Mesh
	bgMtl     rl.Material
	bgReady   bool

	model      rl.Model
	modelTint  rl.Color
	modelWires bool
	modelTried bool
	modelReady bool
}

// New returns a renderer. Nothing is loaded until the first Draw.
func New(opts Options, log *logger.Logger) *Renderer {
	return &Renderer{opts: opts, log: log}
}

// Camera builds the raylib camera for v. raylib takes the aspect ratio from the current render size,
// so a resized window only needs a new viewport size.
func Camera(v *viewport.Viewport) rl.Camera3D {
	return rl.Camera3D{
		Position:   rl.NewVector3(v.Position[0], v.Position[1], v.Position[2]),
		Target:     rl.NewVector3(v.Target[0], v.Target[1], v.Target[2]),
		Up:         rl.NewVector3(v.Up[0], v.Up[1], v.Up[2]),
		Fovy:       v.Fovy,
		Projection: rl.CameraPerspective,
	}
}

// Draw renders the background plane and one model per overlay. Call between BeginDrawing and EndDrawing.
func (r *Renderer) Draw(v *viewport.Viewport, s *scene.Scene) {
	r.syncBackground(s)
	r.ensureModel()

	rl.SetClipPlanes(v.Near, v.Far)
	rl.BeginMode3D(Camera(v))
	if bg := s.Background(); bg != nil && rl.IsTextureValid(r.bgTex) {
		r.drawBackground(bg)
	}
	if r.modelReady {
		for _, o := range s.Overlays() {
			p := o.Placement
			pos := rl.NewVector3(p.Position[0], p.Position[1], p.Position[2])
			scale := rl.NewVector3(p.Scale[0], p.Scale[1], p.Scale[2])
			rl.DrawModelEx(r.model, pos, rl.NewVector3(0, 1, 0), 0, scale, r.modelTint)
			if r.modelWires {
				rl.DrawModelWiresEx(r.model, pos, rl.NewVector3(0, 1, 0), 0, scale, rl.Black)
			}
		}
	}
	rl.EndMode3D()
}

// Close releases GPU resources. Call before the window closes.
func (r *Renderer) Close() {
	if r.bgReady {
		// Also unloads the photo texture bound as albedo.
		rl.UnloadMaterial(r.bgMtl)
		rl.UnloadMesh(&r.bgMesh)
		r.bgReady = false
	} else if rl.IsTextureValid(r.bgTex) {
		rl.UnloadTexture(r.bgTex)
	}
	r.bgTex = rl.Texture2D{}
	if r.modelReady {
		rl.UnloadModel(r.model)
		r.modelReady = false
	}
}

// syncBackground uploads the scene's photo when the scene was reset since the last frame.
func (r *Renderer) syncBackground(s *scene.Scene) {
	if s.Version() == r.bgVersion {
		return
	}
	r.bgVersion = s.Version()
	r.unloadBackgroundTexture()
	bg := s.Background()
	if bg == nil || bg.Image == nil {
		return
	}
	img := rl.NewImageFromImage(bg.Image)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if !rl.IsTextureValid(tex) {
		r.log.Info("background texture upload failed", "width", bg.Size.W, "height", bg.Size.H)
		return
	}
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	r.bgTex = tex

	if !r.bgReady {
		// Unit quad in XZ; drawBackground scales it and turns it to face the camera.
		r.bgMesh = rl.GenMeshPlane(1, 1, 1, 1)
		r.bgMtl = rl.LoadMaterialDefault()
		if albedo := r.bgMtl.GetMap(rl.MapAlbedo); albedo != nil {
			albedo.Color = rl.White
		}
		r.bgReady = true
	}
	rl.SetMaterialTexture(&r.bgMtl, rl.MapAlbedo, r.bgTex)
}

// unloadBackgroundTexture frees the photo texture and unbinds it from the plane material,
// so UnloadMaterial in Close does not free the same id again.
func (r *Renderer) unloadBackgroundTexture() {
	if !rl.IsTextureValid(r.bgTex) {
		return
	}
	rl.UnloadTexture(r.bgTex)
	r.bgTex = rl.Texture2D{}
	if r.bgReady {
		rl.SetMaterialTexture(&r.bgMtl, rl.MapAlbedo, rl.Texture2D{})
	}
}

// drawBackground draws the photo plane: scale to the plane size, rotate +90° about X so the
// quad's +Y normal points at the camera (image top row ends up at +Y), then move to bg.Z.
func (r *Renderer) drawBackground(bg *scene.Background) {
	scaleM := rl.MatrixScale(bg.Width, 1, bg.Height)
	rotM := rl.MatrixRotateX(rl.Pi / 2)
	transM := rl.MatrixTranslate(0, 0, bg.Z)
	transform := rl.MatrixMultiply(rl.MatrixMultiply(scaleM, rotM), transM)
	rl.DrawMesh(r.bgMesh, r.bgMtl, transform)
}

// ensureModel loads the overlay model once: the glTF asset when it exists and is valid,
// otherwise a cube built from the placeholder definition.
func (r *Renderer) ensureModel() {
	if r.modelTried {
		return
	}
	r.modelTried = true

	if r.opts.ModelPath != "" {
		if _, err := os.Stat(r.opts.ModelPath); err == nil {
			m := rl.LoadModel(r.opts.ModelPath)
			if rl.IsModelValid(m) && m.MeshCount > 0 {
				r.model = m
				r.modelTint = rl.White
				r.modelReady = true
				r.log.Info("overlay model loaded", "path", r.opts.ModelPath, "meshes", m.MeshCount)
				return
			}
			rl.UnloadModel(m)
			r.log.Info("overlay model invalid, using placeholder", "path", r.opts.ModelPath)
		} else {
			r.log.Info("overlay model missing, using placeholder", "path", r.opts.ModelPath)
		}
	}

	def := r.opts.Placeholder
	c := def.RGBA()
	r.model = rl.LoadModelFromMesh(rl.GenMeshCube(def.Size[0], def.Size[1], def.Size[2]))
	r.modelTint = rl.NewColor(c[0], c[1], c[2], c[3])
	r.modelWires = def.Wires
	r.modelReady = true
}
