package scene

import (
	"image"

	"slot-viewer/internal/pipeline"
	"slot-viewer/internal/slots"
)

// BackgroundDepth is the z position of the photo plane, behind the overlays at z=0.
const BackgroundDepth = -1

// Background is the textured photo plane.
type Background struct {
	Image  image.Image
	Size   slots.ImageSize
	Width  float32
	Height float32
	Z      float32
}

// NewBackground sizes a plane for img: SceneSpan wide, height following the photo aspect ratio.
func NewBackground(img image.Image, size slots.ImageSize) *Background {
	w, h := slots.PlaneSize(size)
	return &Background{
		Image:  img,
		Size:   size,
		Width:  float32(w),
		Height: float32(h),
		Z:      BackgroundDepth,
	}
}

// Overlay is one model instance placed over a slot.
type Overlay struct {
	Slot      slots.Slot
	Placement slots.Placement
}

// Scene is everything drawn in 3D: at most one background and its overlays.
// It belongs to a single upload at a time; content for other uploads is rejected.
// Not safe for concurrent use; only the main thread touches it.
type Scene struct {
	pending    string
	upload     string
	background *Background
	overlays   []Overlay
	version    uint64
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// Expect marks upload as the one the scene waits for. Backgrounds from any other upload are ignored.
func (s *Scene) Expect(upload string) {
	s.pending = upload
}

// Reset clears the scene and makes bg the background of upload.
func (s *Scene) Reset(upload string, bg *Background) {
	s.pending = upload
	s.upload = upload
	s.background = bg
	s.overlays = nil
	s.version++
}

// Clear removes everything. Later events from the previous upload are rejected.
func (s *Scene) Clear() {
	s.Reset("", nil)
}

// AddOverlay appends o if upload is the scene's current upload. Returns false for stale uploads.
func (s *Scene) AddOverlay(upload string, o Overlay) bool {
	if upload == "" || upload != s.upload {
		return false
	}
	s.overlays = append(s.overlays, o)
	return true
}

// Apply updates the scene from a pipeline event. A BackgroundReady for the expected upload replaces
// the scene; overlays only land on the upload they were detected for. Returns true when the scene changed.
func (s *Scene) Apply(ev pipeline.Event) bool {
	switch ev.Kind {
	case pipeline.BackgroundReady:
		if ev.Photo == nil || ev.Upload == "" || ev.Upload != s.pending {
			return false
		}
		s.Reset(ev.Upload, NewBackground(ev.Photo.Texture, ev.Photo.Size))
		return true
	case pipeline.OverlayReady:
		return s.AddOverlay(ev.Upload, Overlay{Slot: ev.Slot, Placement: ev.Placement})
	}
	return false
}

// Expected returns the ID of the latest upload the scene waits for, or "" after Clear.
func (s *Scene) Expected() string { return s.pending }

// Upload returns the ID of the upload shown, or "" when empty.
func (s *Scene) Upload() string { return s.upload }

// Background returns the photo plane, or nil.
func (s *Scene) Background() *Background { return s.background }

// Overlays returns the placed overlays. The slice must not be modified.
func (s *Scene) Overlays() []Overlay { return s.overlays }

// Version changes whenever the background is replaced, so the renderer knows to re-upload the texture.
func (s *Scene) Version() uint64 { return s.version }

// Len returns the number of objects in the scene, counting the background.
func (s *Scene) Len() int {
	n := len(s.overlays)
	if s.background != nil {
		n++
	}
	return n
}
