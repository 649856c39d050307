package life

import (
	"github.com/gogpu/life/automaton"
	"github.com/gogpu/life/gpucore"
	"github.com/gogpu/life/shader"
)

// Image and texture units used by the built-in passes. They match the
// @binding of the built-in stages.
const (
	readUnit    uint32 = 0
	writeUnit   uint32 = 1
	displayUnit uint32 = 0
)

// Pass is one step of the per-frame pipeline.
type Pass interface {
	Name() string
	Execute(f Frame)
}

// StepPass computes the next generation from the current one, painting
// live cells under the pressed pointer.
type StepPass struct {
	Program  *shader.ComputeProgram
	Buffer   *GenerationBuffer
	Bindings *shader.BindingTable
	Rule     automaton.Rule
	Radius   float32
}

// Name returns "step".
func (p *StepPass) Name() string { return "step" }

// Execute binds current for reading and next for writing, uploads the
// frame uniforms and dispatches.
func (p *StepPass) Execute(f Frame) {
	w, h := p.Buffer.Size()
	format := p.Buffer.Format()

	p.Program.Use()
	p.Bindings.BindImage(p.Buffer.Current(), readUnit, gpucore.ReadOnly, format)
	p.Bindings.BindImage(p.Buffer.Next(), writeUnit, gpucore.WriteOnly, format)

	p.Program.SetUVec2(automaton.GridSize, uint32(w), uint32(h))
	p.Program.SetFloat(automaton.Time, f.Time)
	p.Program.SetVec2(automaton.MousePosition, f.Mouse[0], f.Mouse[1])
	p.Program.SetBool(automaton.MousePressed, f.MousePressed)
	p.Program.SetFloat(automaton.MouseRadius, p.Radius)
	p.Program.SetUint(automaton.BirthMask, p.Rule.Birth)
	p.Program.SetUint(automaton.SurviveMask, p.Rule.Survive)
	p.Program.Run()
}

// RenderPass draws the current generation to the framebuffer.
type RenderPass struct {
	Program  *shader.RenderProgram
	Buffer   *GenerationBuffer
	Bindings *shader.BindingTable
}

// Name returns "render".
func (p *RenderPass) Name() string { return "render" }

// Execute binds current on the display unit and draws.
func (p *RenderPass) Execute(Frame) {
	p.Bindings.BindTexture(p.Buffer.Current(), displayUnit)
	p.Program.Draw()
}

// CopyPass commits the next generation by copying it over the current one.
type CopyPass struct {
	Program  *shader.ComputeProgram
	Buffer   *GenerationBuffer
	Bindings *shader.BindingTable
}

// Name returns "copy".
func (p *CopyPass) Name() string { return "copy" }

// Execute binds next for reading and current for writing and dispatches.
func (p *CopyPass) Execute(Frame) {
	w, h := p.Buffer.Size()
	format := p.Buffer.Format()

	p.Program.Use()
	p.Bindings.BindImage(p.Buffer.Next(), readUnit, gpucore.ReadOnly, format)
	p.Bindings.BindImage(p.Buffer.Current(), writeUnit, gpucore.WriteOnly, format)
	p.Program.SetUVec2(automaton.GridSize, uint32(w), uint32(h))
	p.Program.Run()
}

// SwapPass commits the next generation by exchanging the two images. The
// step and render passes bind images by role every frame, so no unit
// assignment goes stale.
type SwapPass struct {
	Buffer *GenerationBuffer
}

// Name returns "swap".
func (p *SwapPass) Name() string { return "swap" }

// Execute swaps current and next.
func (p *SwapPass) Execute(Frame) {
	p.Buffer.Swap()
}

// PassFunc adapts a function to a Pass.
type PassFunc struct {
	Label string
	Fn    func(Frame)
}

// Name returns the label.
func (p PassFunc) Name() string { return p.Label }

// Execute calls the function.
func (p PassFunc) Execute(f Frame) { p.Fn(f) }
