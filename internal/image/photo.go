// Package image provides photo loading and decoding for the editor.
package image

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"mask-painter/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Photo is a decoded photo bound to the editor. Its natural size is
// immutable once loaded.
type Photo struct {
	Path          string // original file path, empty for in-memory sources
	Image         image.Image
	NaturalWidth  int
	NaturalHeight int
}

// Size returns the photo's natural pixel dimensions.
func (p *Photo) Size() geometry.Size {
	return geometry.NewSize(float64(p.NaturalWidth), float64(p.NaturalHeight))
}

// Load reads and decodes a photo from the specified path.
func Load(path string) (*Photo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	photo, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	photo.Path = path
	return photo, nil
}

// Decode decodes a photo from a reader (file, blob, network body).
func Decode(r io.Reader) (*Photo, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%s image has degenerate size %dx%d", format, w, h)
	}

	return &Photo{
		Image:         img,
		NaturalWidth:  w,
		NaturalHeight: h,
	}, nil
}
