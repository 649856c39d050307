package window

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PixelSource is anything that can read back the rendered frame; every
// gpucore.Device is one.
type PixelSource interface {
	ReadPixels() (*image.RGBA, error)
}

// Snapshotter writes every Nth presented frame to a PNG file.
type Snapshotter struct {
	src   PixelSource
	dir   string
	every uint64

	// Scale enlarges the image by an integer factor (nearest neighbour),
	// which keeps single cells visible on small grids. Zero or one
	// disables scaling.
	Scale int

	// HUD overlays the frame number in the top-left corner.
	HUD bool
}

// NewSnapshotter creates a snapshotter that writes frame 0, every, 2*every,
// ... into dir. every == 0 disables it.
func NewSnapshotter(src PixelSource, dir string, every uint64) *Snapshotter {
	return &Snapshotter{src: src, dir: dir, every: every, HUD: true}
}

// Due reports whether frame is written.
func (s *Snapshotter) Due(frame uint64) bool {
	return s.every > 0 && frame%s.every == 0
}

// Capture writes the frame if it is due and returns the file path, or ""
// when nothing was written.
func (s *Snapshotter) Capture(frame uint64) (string, error) {
	if !s.Due(frame) {
		return "", nil
	}
	img, err := s.src.ReadPixels()
	if err != nil {
		return "", fmt.Errorf("window: read pixels: %w", err)
	}

	if s.Scale > 1 {
		b := img.Bounds()
		scaled := image.NewRGBA(image.Rect(0, 0, b.Dx()*s.Scale, b.Dy()*s.Scale))
		draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
		img = scaled
	}
	if s.HUD {
		DrawHUD(img, fmt.Sprintf("frame %d", frame))
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("window: snapshot dir: %w", err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("frame_%06d.png", frame))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("window: create snapshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("window: encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("window: close snapshot: %w", err)
	}
	return path, nil
}

// DrawHUD draws text on a translucent box in the top-left corner of img.
func DrawHUD(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 0x40, G: 0xff, B: 0x40, A: 0xff}),
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	box := image.Rect(0, 0, width+8, face.Height+6).Intersect(img.Bounds())
	draw.Draw(img, box, image.NewUniform(color.RGBA{A: 0xa0}), image.Point{}, draw.Over)

	d.Dot = fixed.P(4, face.Ascent+3)
	d.DrawString(text)
}
