// Package automaton holds the built-in life programs: the WGSL stage
// sources, the B/S rule notation they are parameterized by, and the CPU
// kernels the software backend runs for them.
package automaton

import (
	_ "embed"

	"github.com/gogpu/life/gpucore"
	"github.com/gogpu/life/shader"
)

// Entry point names of the built-in stages.
const (
	StepEntry     = "life_step"
	CopyEntry     = "copy_cells"
	QuadEntry     = "vs_quad"
	CellsEntry    = "fs_cells"
	WorkgroupSize = 8
)

// Resource and uniform names used by the built-in stages.
const (
	CurrentImage = "current_gen"
	NextImage    = "next_gen"
	CopySource   = "src_gen"
	CopyTarget   = "dst_gen"
	CellsTexture = "cells"

	GridSize      = "grid_size"
	Time          = "time"
	MousePosition = "mouse_position"
	MousePressed  = "mouse_pressed"
	MouseRadius   = "mouse_radius"
	BirthMask     = "birth_mask"
	SurviveMask   = "survive_mask"
	Background    = "background"
	AliveColor    = "alive_color"
)

//go:embed shaders/life_step.wgsl
var stepWGSL string

//go:embed shaders/copy_cells.wgsl
var copyWGSL string

//go:embed shaders/quad_vs.wgsl
var quadWGSL string

//go:embed shaders/cells_fs.wgsl
var cellsWGSL string

// StepStages returns the compute stages of the generation step.
func StepStages() []shader.Stage {
	return []shader.Stage{{Kind: gpucore.StageCompute, Source: stepWGSL, Path: "shaders/life_step.wgsl"}}
}

// CopyStages returns the compute stages of the next-to-current copy.
func CopyStages() []shader.Stage {
	return []shader.Stage{{Kind: gpucore.StageCompute, Source: copyWGSL, Path: "shaders/copy_cells.wgsl"}}
}

// RenderStages returns the vertex and fragment stages that display the
// cells.
func RenderStages() []shader.Stage {
	return []shader.Stage{
		{Kind: gpucore.StageVertex, Source: quadWGSL, Path: "shaders/quad_vs.wgsl"},
		{Kind: gpucore.StageFragment, Source: cellsWGSL, Path: "shaders/cells_fs.wgsl"},
	}
}
