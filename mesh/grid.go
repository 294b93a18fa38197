package mesh

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG format with image.Decode
	_ "image/png"  // register PNG format with image.Decode
	"io"
	"log/slog"
	"os"

	"github.com/echoflaresat/tiff"

	"github.com/echoflaresat/grabtool/vectors"
)

// NewPlane builds a flat grid in the XZ plane centred on the origin, with
// cols x rows quads of the given cell size.
func NewPlane(cols, rows int, cell float64) (*Mesh, error) {
	return newGrid(cols, rows, cell, func(int, int) float64 { return 0 })
}

// FromHeightmap builds a grid with one vertex per pixel. Pixel luminance in
// [0, 1] is scaled by height and becomes the Y coordinate.
func FromHeightmap(img image.Image, cell, height float64) (*Mesh, error) {
	b := img.Bounds()
	if b.Dx() < 2 || b.Dy() < 2 {
		return nil, fmt.Errorf("heightmap must be at least 2x2 pixels, got %dx%d", b.Dx(), b.Dy())
	}
	return newGrid(b.Dx()-1, b.Dy()-1, cell, func(x, z int) float64 {
		r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+z).RGBA()
		// Rec.709 luma on 16-bit channels.
		lum := (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(bl)) / 0xFFFF
		return lum * height
	})
}

func newGrid(cols, rows int, cell float64, heightAt func(x, z int) float64) (*Mesh, error) {
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("grid needs at least one cell, got %dx%d", cols, rows)
	}
	if cell <= 0 {
		return nil, fmt.Errorf("grid cell size must be positive, got %g", cell)
	}

	w, h := cols+1, rows+1
	offX := float64(cols) * cell / 2
	offZ := float64(rows) * cell / 2

	vertices := make([]vectors.Vec3, 0, w*h)
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			vertices = append(vertices, vectors.Vec3{
				X: float64(x)*cell - offX,
				Y: heightAt(x, z),
				Z: float64(z)*cell - offZ,
			})
		}
	}

	triangles := make([]int, 0, cols*rows*6)
	for z := 0; z < rows; z++ {
		for x := 0; x < cols; x++ {
			i := z*w + x
			// Counter-clockwise seen from +Y.
			triangles = append(triangles,
				i, i+w, i+1,
				i+1, i+w, i+w+1,
			)
		}
	}
	return New(vertices, triangles)
}

// LoadImage decodes a TIFF heightmap, falling back to the registered image
// codecs (PNG, JPEG) when the file is not a TIFF.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err == nil {
		return img, nil
	}
	slog.Debug("not a TIFF, trying other image codecs", "path", path, "error", err)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	img, _, err = image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
