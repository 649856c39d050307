package life

import (
	"fmt"

	"github.com/gogpu/life/automaton"
	"github.com/gogpu/life/gpucore"
)

// Config holds the settings of a Session. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// Width and Height are the grid size in cells and the initial
	// framebuffer size in pixels.
	Width, Height int

	// WorkgroupSize is the local size of the compute stages in x and y.
	// NewSession fails with ErrWorkgroupMismatch when a compute stage
	// declares a different @workgroup_size.
	WorkgroupSize uint32

	// MouseRadius is the brush radius in normalized grid units.
	MouseRadius float32

	// Background is the color of dead cells and of the cleared framebuffer.
	Background gpucore.Color

	// AliveColor is the color of live cells.
	AliveColor gpucore.Color

	// Rule is the birth/survival rule.
	Rule automaton.Rule

	// Swap replaces the per-frame copy pass with a swap of the two
	// generation images.
	Swap bool

	// Custom stage sources. Empty paths select the built-in stages.
	ComputePaths []string
	CopyPaths    []string
	VertexPath   string
	FragmentPath string
}

// DefaultConfig returns a 1024x1024 Conway grid.
func DefaultConfig() Config {
	return Config{
		Width:         1024,
		Height:        1024,
		WorkgroupSize: automaton.WorkgroupSize,
		MouseRadius:   0.05,
		Background:    gpucore.Black,
		AliveColor:    gpucore.Color{R: 1, G: 1, B: 1, A: 1},
		Rule:          automaton.Conway,
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: grid size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.WorkgroupSize == 0:
		return fmt.Errorf("%w: workgroup size 0", ErrInvalidConfig)
	case c.MouseRadius < 0:
		return fmt.Errorf("%w: negative mouse radius %v", ErrInvalidConfig, c.MouseRadius)
	case (c.VertexPath == "") != (c.FragmentPath == ""):
		return fmt.Errorf("%w: vertex and fragment paths must be set together", ErrInvalidConfig)
	}
	return nil
}
