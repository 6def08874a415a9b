// Package imagefile loads micrograph files for display. Scratch overviews
// come out of the stitcher as JPEG, single tiles from the microscope as BMP
// or PNG.
package imagefile

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"

	"scratch-view/pkg/geometry"
)

var supportedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// Supported reports whether path has an image extension this viewer opens.
func Supported(path string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(path))]
}

// Document is a loaded micrograph. The pixel data is kept in RGBA so the
// viewer can scale regions of it without per-pixel conversions.
type Document struct {
	Path  string
	Image *image.RGBA
}

// Load reads and decodes the image at path.
func Load(path string) (*Document, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%s: unsupported image type", filepath.Base(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	return &Document{Path: path, Image: rgba}, nil
}

// Name returns the file name without its extension, used as a window title.
func (d *Document) Name() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SceneRect returns the image extent in scene coordinates, one unit per
// pixel with the origin at the top-left corner.
func (d *Document) SceneRect() geometry.Rect {
	b := d.Image.Bounds()
	return geometry.NewRect(0, 0, float64(b.Dx()), float64(b.Dy()))
}
