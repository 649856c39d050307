package life

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestImageSeedFlipsAndCenters(t *testing.T) {
	// 2x2 picture, white top-left pixel only.
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	img.Set(1, 1, color.RGBA{R: 100, G: 100, B: 100, A: 255})

	cells, err := ImageSeed{Image: img}.Cells(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	// Centered at offset (1,1); picture row 0 is the top, so grid row 2.
	for i, c := range cells {
		want := byte(0)
		if i == 2*4+1 {
			want = 255
		}
		if c != want {
			t.Errorf("cell (%d,%d) = %d, want %d", i%4, i/4, c, want)
		}
	}
}

func TestImageSeedNonZeroOrigin(t *testing.T) {
	img := image.NewGray(image.Rect(10, 10, 11, 11))
	img.SetGray(10, 10, color.Gray{Y: 200})
	cells, err := ImageSeed{Image: img}.Cells(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if cells[0] != 255 {
		t.Errorf("cell = %d, want alive", cells[0])
	}
}

func TestImageSeedTooLarge(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 5))
	if _, err := (ImageSeed{Image: img}).Cells(4, 4); !errors.Is(err, ErrSeedTooLarge) {
		t.Errorf("err = %v, want ErrSeedTooLarge", err)
	}
}

func TestLoadImageSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.png")
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.SetGray(2, 0, color.Gray{Y: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	seed, err := LoadImageSeed(path)
	if err != nil {
		t.Fatal(err)
	}
	cells, err := seed.Cells(3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if cells[0] != 0 || cells[1] != 0 || cells[2] != 255 {
		t.Errorf("cells = %v, want [0 0 255]", cells)
	}

	if _, err := LoadImageSeed(filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}
}

func TestRandomSeed(t *testing.T) {
	a, err := RandomSeed{Density: 0.5, Seed: 7}.Cells(32, 32)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := RandomSeed{Density: 0.5, Seed: 7}.Cells(32, 32)
	if string(a) != string(b) {
		t.Error("same seed produced different grids")
	}

	n := 0
	for _, c := range a {
		if c == 255 {
			n++
		}
	}
	if n < 300 || n > 724 {
		t.Errorf("%d of 1024 alive at density 0.5", n)
	}

	none, _ := RandomSeed{Density: 0}.Cells(8, 8)
	for _, c := range none {
		if c != 0 {
			t.Fatal("density 0 produced a live cell")
		}
	}
	if _, err := (RandomSeed{Density: 1.5}).Cells(1, 1); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("density 1.5: err = %v", err)
	}
}

func TestPointSeedWraps(t *testing.T) {
	cells, _ := PointSeed{{-1, 0}, {0, 5}}.Cells(4, 4)
	if cells[3] != 255 {
		t.Error("(-1,0) did not wrap to (3,0)")
	}
	if cells[1*4+0] != 255 {
		t.Error("(0,5) did not wrap to (0,1)")
	}
}
