package life

import (
	"fmt"

	"github.com/gogpu/life/gpucore"
)

// GenerationBuffer is the pair of equally sized images holding the
// current and next generation of cells.
//
// Cells are stored bottom row first; 0 is dead and 255 alive.
type GenerationBuffer struct {
	dev     gpucore.Device
	width   int
	height  int
	format  gpucore.TextureFormat
	current gpucore.TextureID
	next    gpucore.TextureID
	closed  bool
}

// AllocateGenerations creates both images, zero-filled.
func AllocateGenerations(dev gpucore.Device, width, height int, format gpucore.TextureFormat) (*GenerationBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: generation size %dx%d", ErrInvalidConfig, width, height)
	}

	g := &GenerationBuffer{dev: dev, width: width, height: height, format: format}
	zero := make([]byte, width*height*format.BytesPerTexel())
	for _, id := range []*gpucore.TextureID{&g.current, &g.next} {
		tex, err := dev.CreateTexture(width, height, format)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("life: allocate generation: %w", err)
		}
		*id = tex
		if err := dev.WriteTexture(tex, zero); err != nil {
			g.Close()
			return nil, fmt.Errorf("life: clear generation: %w", err)
		}
	}
	return g, nil
}

// Seed writes the initial generation into the current image.
func (g *GenerationBuffer) Seed(s Seed) error {
	if g.closed {
		return ErrClosed
	}
	cells, err := s.Cells(g.width, g.height)
	if err != nil {
		return err
	}
	return g.WriteCurrent(cells)
}

// WriteCurrent replaces the current generation. cells holds one byte per
// cell, bottom row first.
func (g *GenerationBuffer) WriteCurrent(cells []byte) error {
	if g.closed {
		return ErrClosed
	}
	if len(cells) != g.width*g.height {
		return fmt.Errorf("life: %d cells for a %dx%d grid", len(cells), g.width, g.height)
	}
	data := cells
	if bpt := g.format.BytesPerTexel(); bpt > 1 {
		data = make([]byte, len(cells)*bpt)
		for i, c := range cells {
			data[i*bpt] = c
		}
	}
	return g.dev.WriteTexture(g.current, data)
}

// ReadCurrent returns the current generation, one byte per cell.
func (g *GenerationBuffer) ReadCurrent() ([]byte, error) {
	return g.read(g.current)
}

// ReadNext returns the next generation, one byte per cell.
func (g *GenerationBuffer) ReadNext() ([]byte, error) {
	return g.read(g.next)
}

func (g *GenerationBuffer) read(id gpucore.TextureID) ([]byte, error) {
	if g.closed {
		return nil, ErrClosed
	}
	data, err := g.dev.ReadTexture(id)
	if err != nil {
		return nil, err
	}
	bpt := g.format.BytesPerTexel()
	if bpt == 1 {
		return data, nil
	}
	cells := make([]byte, len(data)/bpt)
	for i := range cells {
		cells[i] = data[i*bpt]
	}
	return cells, nil
}

// Current returns the image read by the step pass and displayed.
func (g *GenerationBuffer) Current() gpucore.TextureID { return g.current }

// Next returns the image written by the step pass.
func (g *GenerationBuffer) Next() gpucore.TextureID { return g.next }

// Size returns the grid size in cells.
func (g *GenerationBuffer) Size() (width, height int) { return g.width, g.height }

// Format returns the storage format of both images.
func (g *GenerationBuffer) Format() gpucore.TextureFormat { return g.format }

// Swap exchanges the roles of the two images.
func (g *GenerationBuffer) Swap() {
	g.current, g.next = g.next, g.current
}

// Close releases both images. Closing twice is a no-op.
func (g *GenerationBuffer) Close() {
	if g.closed {
		return
	}
	g.closed = true
	for _, id := range []gpucore.TextureID{g.current, g.next} {
		if id != gpucore.InvalidID {
			g.dev.DeleteTexture(id)
		}
	}
}
