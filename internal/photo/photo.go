package photo

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"slot-viewer/internal/slots"
)

// DefaultMaxTexture is the largest texture side uploaded to the GPU when no limit is configured.
const DefaultMaxTexture = 2048

// ErrNotImage is returned by Decode when the file content is not a recognised image type.
var ErrNotImage = errors.New("not an image")

// Photo is a decoded upload. Data is kept for re-sending to the detection endpoint;
// Texture may be a downscaled copy of the image, Size is always the original pixel size.
type Photo struct {
	Name    string
	MIME    string
	Data    []byte
	Texture image.Image
	Size    slots.ImageSize
}

// PlaneSize returns the background plane size in scene units.
func (p *Photo) PlaneSize() (w, h float64) {
	return slots.PlaneSize(p.Size)
}

// Read loads the whole file into memory.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "photo: read")
	}
	return data, nil
}

// Decode sniffs and decodes data. name is used as the upload filename (base name only).
// When either side of the image exceeds maxTexture, Texture is resized to fit; maxTexture <= 0 uses DefaultMaxTexture.
func Decode(name string, data []byte, maxTexture int) (*Photo, error) {
	if !filetype.IsImage(data) {
		return nil, errors.Wrapf(ErrNotImage, "photo: %s", filepath.Base(name))
	}
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, errors.Wrap(err, "photo: sniff")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "photo: decode %s", kind.Extension)
	}
	b := img.Bounds()
	size := slots.ImageSize{W: b.Dx(), H: b.Dy()}
	if !size.Valid() {
		return nil, errors.Errorf("photo: empty image %dx%d", size.W, size.H)
	}
	return &Photo{
		Name:    filepath.Base(name),
		MIME:    kind.MIME.Value,
		Data:    data,
		Texture: fitTexture(img, maxTexture),
		Size:    size,
	}, nil
}

// Load is Read followed by Decode.
func Load(path string, maxTexture int) (*Photo, error) {
	data, err := Read(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data, maxTexture)
}

// Size decodes only the image header and returns its pixel size.
func Size(data []byte) (slots.ImageSize, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return slots.ImageSize{}, errors.Wrap(err, "photo: decode config")
	}
	size := slots.ImageSize{W: cfg.Width, H: cfg.Height}
	if !size.Valid() {
		return size, errors.Errorf("photo: empty image %dx%d", size.W, size.H)
	}
	return size, nil
}

// fitTexture scales img down so neither side exceeds limit, keeping the aspect ratio.
func fitTexture(img image.Image, limit int) image.Image {
	if limit <= 0 {
		limit = DefaultMaxTexture
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= limit && h <= limit {
		return img
	}
	if w >= h {
		h = h * limit / w
		w = limit
	} else {
		w = w * limit / h
		h = limit
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return transform.Resize(img, w, h, transform.Linear)
}
