package software

import (
	"fmt"
	"math"

	"github.com/gogpu/life/gpucore"
	"github.com/gogpu/life/internal/wgslmeta"
)

type program struct {
	id   gpucore.ProgramID
	kind gpucore.StageKind // StageCompute, or StageVertex for render programs
	meta *wgslmeta.Module

	uniforms [][]byte // one per uniform block
	units    map[string]uint32

	compute   ComputeKernel
	workgroup [3]uint32
	vertex    VertexKernel
	fragment  FragmentKernel
}

func link(objs []*shaderObject) (*program, error) {
	if len(objs) == 0 {
		return nil, fmt.Errorf("no stages attached")
	}

	counts := make(map[gpucore.StageKind]int)
	mods := make([]*wgslmeta.Module, 0, len(objs))
	for _, o := range objs {
		counts[o.kind]++
		mods = append(mods, o.meta)
	}

	p := &program{units: make(map[string]uint32)}
	nc, nv, nf := counts[gpucore.StageCompute], counts[gpucore.StageVertex], counts[gpucore.StageFragment]
	switch {
	case nc > 0 && nv == 0 && nf == 0:
		p.kind = gpucore.StageCompute
	case nc == 0 && nv == 1 && nf == 1:
		p.kind = gpucore.StageVertex
	default:
		return nil, fmt.Errorf("cannot link %d compute, %d vertex and %d fragment stages into one program", nc, nv, nf)
	}

	meta, err := wgslmeta.Merge(mods...)
	if err != nil {
		return nil, err
	}
	p.meta = meta

	if err := p.resolveKernels(); err != nil {
		return nil, err
	}

	for _, b := range meta.Uniforms {
		p.uniforms = append(p.uniforms, make([]byte, b.Size))
	}
	for _, r := range meta.Resources {
		p.units[r.Name] = r.Binding
	}
	return p, nil
}

func (p *program) resolveKernels() error {
	var eps []wgslmeta.EntryPoint
	for _, ep := range p.meta.EntryPoints {
		if p.kind == gpucore.StageCompute && ep.Stage == gpucore.StageCompute {
			eps = append(eps, ep)
		}
	}

	if p.kind == gpucore.StageCompute {
		if len(eps) != 1 {
			return fmt.Errorf("expected exactly one compute entry point, found %d", len(eps))
		}
		k, ok := lookupCompute(eps[0].Name)
		if !ok {
			return fmt.Errorf("entry point %q has no registered kernel", eps[0].Name)
		}
		p.compute, p.workgroup = k, eps[0].WorkgroupSize
		return nil
	}

	vs, _ := p.meta.EntryPoint(gpucore.StageVertex)
	fs, _ := p.meta.EntryPoint(gpucore.StageFragment)
	var ok bool
	if p.vertex, ok = lookupVertex(vs.Name); !ok {
		return fmt.Errorf("entry point %q has no registered kernel", vs.Name)
	}
	if p.fragment, ok = lookupFragment(fs.Name); !ok {
		return fmt.Errorf("entry point %q has no registered kernel", fs.Name)
	}
	return nil
}

func (p *program) setUniform(loc gpucore.UniformLocation, scalar string, words []uint32) error {
	m, ok := p.meta.MemberAt(loc)
	if !ok {
		return fmt.Errorf("location %d is not a uniform member", loc)
	}
	return m.Encode(p.uniforms[m.Block], scalar, words)
}

func f32bits(v float32) uint32 { return math.Float32bits(v) }
