package shader

import (
	"fmt"

	"github.com/gogpu/life/gpucore"
)

// QuadVertexCount is the number of vertices of the full-screen quad: two
// triangles. The vertex stage generates the corners from vertex_index.
const QuadVertexCount = 6

// RenderProgram is a vertex+fragment program that draws a full-screen quad.
type RenderProgram struct {
	*Object
	background gpucore.Color
}

var _ Program = (*RenderProgram)(nil)

// NewRenderProgram compiles and links a render program. Exactly one vertex
// and one fragment stage are required.
func NewRenderProgram(dev gpucore.Device, label string, stages ...Stage) (*RenderProgram, error) {
	if len(stages) != 2 || stages[0].Kind != gpucore.StageVertex || stages[1].Kind != gpucore.StageFragment {
		return nil, fmt.Errorf("%w: %s needs a vertex and a fragment stage, got %d stages", ErrStageCount, label, len(stages))
	}
	obj, err := CompileAndLink(dev, label, stages...)
	if err != nil {
		return nil, err
	}
	return &RenderProgram{Object: obj, background: gpucore.Black}, nil
}

// LoadRenderProgram reads the vertex and fragment stages from disk.
func LoadRenderProgram(dev gpucore.Device, label, vertexPath, fragmentPath string) (*RenderProgram, error) {
	vs, err := LoadStage(gpucore.StageVertex, vertexPath)
	if err != nil {
		return nil, err
	}
	fs, err := LoadStage(gpucore.StageFragment, fragmentPath)
	if err != nil {
		return nil, err
	}
	return NewRenderProgram(dev, label, vs, fs)
}

// SetBackground sets the clear color used by Draw. The default is opaque
// black.
func (p *RenderProgram) SetBackground(c gpucore.Color) {
	p.background = c
}

// Background returns the clear color used by Draw.
func (p *RenderProgram) Background() gpucore.Color { return p.background }

// Draw clears the framebuffer, activates the program and draws the quad.
func (p *RenderProgram) Draw() {
	p.dev.ClearColor(p.background)
	p.dev.Clear()
	p.Use()
	p.dev.DrawArrays(0, QuadVertexCount)
}

// Run draws the quad.
func (p *RenderProgram) Run() {
	p.Draw()
}
