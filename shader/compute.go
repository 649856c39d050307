package shader

import (
	"fmt"

	"github.com/gogpu/life/gpucore"
)

// ComputeProgram is a program built from compute stages.
type ComputeProgram struct {
	*Object
	groups [3]uint32
}

var _ Program = (*ComputeProgram)(nil)

// NewComputeProgram compiles and links one or more compute stages.
func NewComputeProgram(dev gpucore.Device, label string, stages ...Stage) (*ComputeProgram, error) {
	for i, st := range stages {
		if st.Kind != gpucore.StageCompute {
			return nil, fmt.Errorf("%w: stage %d of %s is %s, want compute", ErrStageCount, i, label, st.Kind)
		}
	}
	obj, err := CompileAndLink(dev, label, stages...)
	if err != nil {
		return nil, err
	}
	return &ComputeProgram{Object: obj, groups: [3]uint32{1, 1, 1}}, nil
}

// LoadComputeProgram reads compute stages from disk and builds a program.
func LoadComputeProgram(dev gpucore.Device, label string, paths ...string) (*ComputeProgram, error) {
	stages, err := LoadStages(gpucore.StageCompute, paths...)
	if err != nil {
		return nil, err
	}
	return NewComputeProgram(dev, label, stages...)
}

// SetGroups sets the workgroup grid used by Run.
func (p *ComputeProgram) SetGroups(x, y, z uint32) {
	p.groups = [3]uint32{x, y, z}
}

// Groups returns the workgroup grid used by Run.
func (p *ComputeProgram) Groups() [3]uint32 { return p.groups }

// Dispatch runs the active program over x*y*z workgroups and waits until
// its image stores are visible to later commands. The program must be
// active.
func (p *ComputeProgram) Dispatch(x, y, z uint32) {
	p.dev.DispatchCompute(x, y, z)
	p.dev.MemoryBarrier(gpucore.BarrierShaderImageAccess)
}

// Run dispatches over the configured grid.
func (p *ComputeProgram) Run() {
	p.Dispatch(p.groups[0], p.groups[1], p.groups[2])
}

// LocalSize returns the workgroup size declared by the program's entry
// point.
func (p *ComputeProgram) LocalSize() [3]uint32 {
	return p.dev.ComputeWorkgroupSize(p.id)
}

// GroupsFor returns the number of workgroups of size local needed to cover
// n invocations.
func GroupsFor(n int, local uint32) uint32 {
	if n <= 0 || local == 0 {
		return 0
	}
	return (uint32(n) + local - 1) / local
}
