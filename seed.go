package life

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math/rand/v2"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Seed produces the initial generation.
type Seed interface {
	// Cells returns width*height cells, bottom row first, 0 dead and 255
	// alive.
	Cells(width, height int) ([]byte, error)
}

// EmptySeed starts with every cell dead.
type EmptySeed struct{}

// Cells returns an all-dead grid.
func (EmptySeed) Cells(width, height int) ([]byte, error) {
	return make([]byte, width*height), nil
}

// ImageSeed starts from a picture: pixels brighter than mid-gray are alive.
// The picture is centered on the grid and must not be larger than it.
type ImageSeed struct {
	Image image.Image
}

// LoadImageSeed decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file.
func LoadImageSeed(path string) (ImageSeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageSeed{}, fmt.Errorf("life: open seed: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return ImageSeed{}, fmt.Errorf("life: decode seed %s: %w", path, err)
	}
	Logger().Debug("life: seed decoded", "path", path, "format", format, "size", img.Bounds().Size())
	return ImageSeed{Image: img}, nil
}

// Cells thresholds the luminance of the picture.
func (s ImageSeed) Cells(width, height int) ([]byte, error) {
	b := s.Image.Bounds()
	if b.Dx() > width || b.Dy() > height {
		return nil, fmt.Errorf("%w: %dx%d seed for a %dx%d grid", ErrSeedTooLarge, b.Dx(), b.Dy(), width, height)
	}

	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), s.Image, b.Min, draw.Src)

	cells := make([]byte, width*height)
	ox, oy := (width-b.Dx())/2, (height-b.Dy())/2
	for y := 0; y < b.Dy(); y++ {
		// Image rows run top-down; grid rows bottom-up.
		row := oy + b.Dy() - 1 - y
		for x := 0; x < b.Dx(); x++ {
			if gray.GrayAt(x, y).Y > 127 {
				cells[row*width+ox+x] = 255
			}
		}
	}
	return cells, nil
}

// RandomSeed makes each cell alive with probability Density.
type RandomSeed struct {
	Density float64
	Seed    uint64
}

// Cells draws the grid from a PCG stream seeded with Seed.
func (s RandomSeed) Cells(width, height int) ([]byte, error) {
	if s.Density < 0 || s.Density > 1 {
		return nil, fmt.Errorf("%w: density %v outside [0,1]", ErrInvalidConfig, s.Density)
	}
	r := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))
	cells := make([]byte, width*height)
	for i := range cells {
		if r.Float64() < s.Density {
			cells[i] = 255
		}
	}
	return cells, nil
}

// PointSeed sets the listed cells alive. Coordinates have the origin at the
// bottom-left and wrap around the grid.
type PointSeed []image.Point

// Cells places the points.
func (s PointSeed) Cells(width, height int) ([]byte, error) {
	cells := make([]byte, width*height)
	for _, p := range s {
		x := ((p.X % width) + width) % width
		y := ((p.Y % height) + height) % height
		cells[y*width+x] = 255
	}
	return cells, nil
}
