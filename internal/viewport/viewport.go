package viewport

const (
	// FieldOfView is the vertical camera field of view in degrees.
	FieldOfView = 45
	// CameraDistance is how far the camera sits on +Z from the origin.
	CameraDistance = 5
	// Near and Far are the default clip plane distances.
	Near = 0.1
	Far  = 1000
)

// Viewport holds the camera and render surface size. The render layer builds its camera from it each frame.
// Resizing only touches these fields; scene content is owned elsewhere.
// raylib derives the projection aspect ratio from the framebuffer, so Width, Height and Aspect
// describe the surface for logging and layout; they are not fed to the projection.
type Viewport struct {
	Width    int
	Height   int
	Fovy     float32
	Near     float64
	Far      float64
	Position [3]float32
	Target   [3]float32
	Up       [3]float32
}

// New returns a viewport sized to width x height with the camera at (0,0,CameraDistance) looking at the origin.
func New(width, height int) *Viewport {
	v := &Viewport{
		Fovy:     FieldOfView,
		Near:     Near,
		Far:      Far,
		Position: [3]float32{0, 0, CameraDistance},
		Target:   [3]float32{0, 0, 0},
		Up:       [3]float32{0, 1, 0},
	}
	v.Resize(width, height)
	return v
}

// Resize records the new surface size. Non-positive sizes (minimized window) are ignored.
// Returns true when the size changed.
func (v *Viewport) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if width == v.Width && height == v.Height {
		return false
	}
	v.Width, v.Height = width, height
	return true
}

// Aspect returns width/height, or 1 before the first valid resize.
func (v *Viewport) Aspect() float32 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}
