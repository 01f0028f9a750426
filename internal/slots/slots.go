package slots

// SceneSpan is the width, in scene units, that the full image width is mapped to.
// The image is centered on x=0, so it covers [-SceneSpan/2, SceneSpan/2].
const SceneSpan = 4

// Slot is a detected region in source-image pixels (origin top-left), as returned by the detection endpoint.
type Slot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Response is the JSON body of POST /api/detect_slots.
type Response struct {
	Slots []Slot `json:"slots"`
}

// ImageSize is the decoded pixel size of the uploaded photo.
type ImageSize struct {
	W int
	H int
}

// Valid reports whether both sides are positive. The transform divides by both.
func (s ImageSize) Valid() bool {
	return s.W > 0 && s.H > 0
}

// Aspect returns H/W.
func (s ImageSize) Aspect() float64 {
	return float64(s.H) / float64(s.W)
}

// Rect is a slot in scene space: (X, Y) is the top-left corner, W and H are extents along +X and -Y.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Placement is the transform applied to one overlay model instance.
type Placement struct {
	Position [3]float32
	Scale    [3]float32
}

// PlaneSize returns the background plane size (width, height) in scene units for an image:
// width is always SceneSpan, height keeps the image aspect ratio.
func PlaneSize(size ImageSize) (w, h float64) {
	return SceneSpan, SceneSpan * size.Aspect()
}

// ToScene maps a slot from pixel space to scene space. The vertical span is SceneSpan*H/W so a slot
// keeps the same proportions on the background plane as in the photo.
func ToScene(s Slot, size ImageSize) Rect {
	w, h := float64(size.W), float64(size.H)
	aspect := size.Aspect()
	return Rect{
		X: (s.X/w)*SceneSpan - SceneSpan/2,
		Y: SceneSpan/2 - (s.Y/h)*SceneSpan*aspect,
		W: (s.W / w) * SceneSpan,
		H: (s.H / h) * SceneSpan * aspect,
	}
}

// Place converts a scene rect into a model placement. The box depth reuses the width,
// and the top-left anchor becomes the center of the box on the z=0 plane.
func Place(r Rect) Placement {
	return Placement{
		Position: [3]float32{float32(r.X + r.W/2), float32(r.Y - r.H/2), 0},
		Scale:    [3]float32{float32(r.W), float32(r.H), float32(r.W)},
	}
}

// PlaceAll maps every slot for an image of the given size. Returns nil for an empty list.
func PlaceAll(list []Slot, size ImageSize) []Placement {
	if len(list) == 0 {
		return nil
	}
	out := make([]Placement, 0, len(list))
	for _, s := range list {
		out = append(out, Place(ToScene(s, size)))
	}
	return out
}
