//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/life/gpucore"
	"github.com/gogpu/life/internal/wgslmeta"
)

// framebufferFormat is the color format render programs draw into.
const framebufferFormat = gputypes.TextureFormatRGBA8Unorm

type shaderObject struct {
	kind   gpucore.StageKind
	meta   *wgslmeta.Module
	module hal.ShaderModule
}

type program struct {
	id   gpucore.ProgramID
	kind gpucore.StageKind // StageCompute, or StageVertex for render programs
	meta *wgslmeta.Module

	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	compute    hal.ComputePipeline
	render     hal.RenderPipeline

	// One buffer, shadow copy and dirty flag per uniform block.
	uniformBufs []hal.Buffer
	uniforms    [][]byte
	dirty       []bool
	units       map[string]uint32
}

// CompileShader translates a WGSL stage to SPIR-V and creates a shader
// module from it.
func (d *Device) CompileShader(kind gpucore.StageKind, source string) (gpucore.ShaderID, error) {
	meta, err := wgslmeta.Reflect(kind, source)
	if err != nil {
		return gpucore.InvalidID, err
	}
	if _, ok := meta.EntryPoint(kind); !ok {
		return gpucore.InvalidID, fmt.Errorf("no @%s entry point declared", kind)
	}

	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return gpucore.InvalidID, err
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  kind.String(),
		Source: hal.ShaderSource{SPIRV: spirvWords(spirvBytes)},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create shader module: %w", err)
	}

	id := gpucore.ShaderID(d.newID())
	d.shaders[id] = &shaderObject{kind: kind, meta: meta, module: module}
	d.log().Debug("wgpu: shader compiled", "id", id, "kind", kind, "words", len(spirvBytes)/4)
	return id, nil
}

// DeleteShader releases a shader module.
func (d *Device) DeleteShader(id gpucore.ShaderID) {
	s, ok := d.shaders[id]
	if !ok {
		return
	}
	delete(d.shaders, id)
	d.device.DestroyShaderModule(s.module)
}

// LinkProgram builds the bind group layout and pipeline for the stages.
func (d *Device) LinkProgram(ids []gpucore.ShaderID) (gpucore.ProgramID, error) {
	objs := make([]*shaderObject, 0, len(ids))
	for _, id := range ids {
		obj, ok := d.shaders[id]
		if !ok {
			return gpucore.InvalidID, fmt.Errorf("shader %d does not exist", id)
		}
		objs = append(objs, obj)
	}

	kind, err := programKind(objs)
	if err != nil {
		return gpucore.InvalidID, err
	}
	mods := make([]*wgslmeta.Module, len(objs))
	for i, o := range objs {
		mods[i] = o.meta
	}
	meta, err := wgslmeta.Merge(mods...)
	if err != nil {
		return gpucore.InvalidID, err
	}

	p := &program{kind: kind, meta: meta, units: make(map[string]uint32)}
	if err := d.createPipeline(p, objs); err != nil {
		d.destroyProgram(p)
		return gpucore.InvalidID, err
	}
	for _, r := range meta.Resources {
		p.units[r.Name] = r.Binding
	}

	p.id = gpucore.ProgramID(d.newID())
	d.programs[p.id] = p
	d.log().Debug("wgpu: program linked", "id", p.id, "kind", p.kind, "stages", len(ids))
	return p.id, nil
}

func programKind(objs []*shaderObject) (gpucore.StageKind, error) {
	if len(objs) == 0 {
		return 0, fmt.Errorf("no stages attached")
	}
	counts := make(map[gpucore.StageKind]int)
	for _, o := range objs {
		counts[o.kind]++
	}
	nc, nv, nf := counts[gpucore.StageCompute], counts[gpucore.StageVertex], counts[gpucore.StageFragment]
	switch {
	case nc == 1 && nv == 0 && nf == 0:
		return gpucore.StageCompute, nil
	case nc == 0 && nv == 1 && nf == 1:
		return gpucore.StageVertex, nil
	default:
		return 0, fmt.Errorf("cannot link %d compute, %d vertex and %d fragment stages into one program", nc, nv, nf)
	}
}

func (d *Device) createPipeline(p *program, objs []*shaderObject) error {
	entries, err := layoutEntries(p.kind, p.meta)
	if err != nil {
		return err
	}
	p.bindLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "life_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	p.pipeLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "life_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	for _, b := range p.meta.Uniforms {
		buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: b.Var,
			Size:  uint64(b.Size),
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create uniform buffer %s: %w", b.Var, err)
		}
		p.uniformBufs = append(p.uniformBufs, buf)
		p.uniforms = append(p.uniforms, make([]byte, b.Size))
		p.dirty = append(p.dirty, true)
	}

	if p.kind == gpucore.StageCompute {
		ep, _ := p.meta.EntryPoint(gpucore.StageCompute)
		p.compute, err = d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:   ep.Name,
			Layout:  p.pipeLayout,
			Compute: hal.ComputeState{Module: objs[0].module, EntryPoint: ep.Name},
		})
		if err != nil {
			return fmt.Errorf("create compute pipeline: %w", err)
		}
		return nil
	}

	var vs, fs *shaderObject
	for _, o := range objs {
		if o.kind == gpucore.StageVertex {
			vs = o
		} else {
			fs = o
		}
	}
	vep, _ := vs.meta.EntryPoint(gpucore.StageVertex)
	fep, _ := fs.meta.EntryPoint(gpucore.StageFragment)
	p.render, err = d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fep.Name,
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     vs.module,
			EntryPoint: vep.Name,
		},
		Fragment: &hal.FragmentState{
			Module:     fs.module,
			EntryPoint: fep.Name,
			Targets: []gputypes.ColorTargetState{
				{Format: framebufferFormat, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	return nil
}

// layoutEntries describes every uniform block and storage buffer of a
// program. Only bind group 0 is supported.
func layoutEntries(kind gpucore.StageKind, meta *wgslmeta.Module) ([]gputypes.BindGroupLayoutEntry, error) {
	var entries []gputypes.BindGroupLayoutEntry
	for _, b := range meta.Uniforms {
		if b.Group != 0 {
			return nil, fmt.Errorf("uniform block %s is in @group(%d), only group 0 is supported", b.Var, b.Group)
		}
		e := gputypes.BindGroupLayoutEntry{
			Binding:    b.Binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, MinBindingSize: uint64(b.Size)},
		}
		if kind != gpucore.StageCompute {
			e.Visibility = gputypes.ShaderStageVertex | gputypes.ShaderStageFragment
		}
		entries = append(entries, e)
	}
	for _, r := range meta.Resources {
		if r.Group != 0 {
			return nil, fmt.Errorf("%s is in @group(%d), only group 0 is supported", r.Name, r.Group)
		}
		e := gputypes.BindGroupLayoutEntry{
			Binding:    r.Binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}
		if r.Access.CanWrite() {
			e.Buffer.Type = gputypes.BufferBindingTypeStorage
		}
		if kind != gpucore.StageCompute {
			e.Visibility = 0
			for _, s := range r.Stages {
				if s == gpucore.StageVertex {
					e.Visibility |= gputypes.ShaderStageVertex
				} else {
					e.Visibility |= gputypes.ShaderStageFragment
				}
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DeleteProgram releases a program, deactivating it if active.
func (d *Device) DeleteProgram(id gpucore.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	if d.active == p {
		d.active = nil
	}
	delete(d.programs, id)
	if err := d.wait(); err != nil {
		d.log().Warn("wgpu: program released while busy", "id", id, "err", err)
	}
	d.destroyProgram(p)
}

func (d *Device) destroyProgram(p *program) {
	if p.compute != nil {
		d.device.DestroyComputePipeline(p.compute)
	}
	if p.render != nil {
		d.device.DestroyRenderPipeline(p.render)
	}
	if p.pipeLayout != nil {
		d.device.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bindLayout != nil {
		d.device.DestroyBindGroupLayout(p.bindLayout)
	}
	for _, buf := range p.uniformBufs {
		d.device.DestroyBuffer(buf)
	}
}

// UseProgram activates a program. InvalidID or an unknown ID deactivates.
func (d *Device) UseProgram(id gpucore.ProgramID) {
	d.active = d.programs[id]
}

// UniformLocation returns the location of a uniform member or resource.
func (d *Device) UniformLocation(id gpucore.ProgramID, name string) gpucore.UniformLocation {
	p, ok := d.programs[id]
	if !ok {
		return gpucore.NoLocation
	}
	return p.meta.Location(name)
}

// ComputeWorkgroupSize returns the local size of a compute program.
func (d *Device) ComputeWorkgroupSize(id gpucore.ProgramID) [3]uint32 {
	p, ok := d.programs[id]
	if !ok || p.kind != gpucore.StageCompute {
		return [3]uint32{}
	}
	ep, _ := p.meta.EntryPoint(gpucore.StageCompute)
	return ep.WorkgroupSize
}

// Uniform1i writes an i32 member, or re-targets a resource to unit v.
func (d *Device) Uniform1i(loc gpucore.UniformLocation, v int32) {
	if d.active == nil {
		return
	}
	if r, ok := d.active.meta.ResourceAt(loc); ok {
		if v < 0 {
			d.log().Warn("wgpu: negative unit ignored", "resource", r.Name, "unit", v)
			return
		}
		d.active.units[r.Name] = uint32(v)
		return
	}
	d.write(loc, "i32", uint32(v))
}

// Uniform1ui writes a u32 member.
func (d *Device) Uniform1ui(loc gpucore.UniformLocation, v uint32) {
	d.write(loc, "u32", v)
}

// Uniform2ui writes a vec2<u32> member.
func (d *Device) Uniform2ui(loc gpucore.UniformLocation, x, y uint32) {
	d.write(loc, "u32", x, y)
}

// Uniform1f writes an f32 member.
func (d *Device) Uniform1f(loc gpucore.UniformLocation, v float32) {
	d.write(loc, "f32", math.Float32bits(v))
}

// Uniform2f writes a vec2<f32> member.
func (d *Device) Uniform2f(loc gpucore.UniformLocation, x, y float32) {
	d.write(loc, "f32", math.Float32bits(x), math.Float32bits(y))
}

// Uniform3f writes a vec3<f32> member.
func (d *Device) Uniform3f(loc gpucore.UniformLocation, x, y, z float32) {
	d.write(loc, "f32", math.Float32bits(x), math.Float32bits(y), math.Float32bits(z))
}

// Uniform4f writes a vec4<f32> member.
func (d *Device) Uniform4f(loc gpucore.UniformLocation, x, y, z, w float32) {
	d.write(loc, "f32", math.Float32bits(x), math.Float32bits(y), math.Float32bits(z), math.Float32bits(w))
}

func (d *Device) write(loc gpucore.UniformLocation, scalar string, words ...uint32) {
	if d.active == nil || !loc.Valid() {
		return
	}
	m, ok := d.active.meta.MemberAt(loc)
	if !ok {
		d.log().Warn("wgpu: uniform write ignored", "location", loc, "err", "not a uniform member")
		return
	}
	if err := m.Encode(d.active.uniforms[m.Block], scalar, words); err != nil {
		d.log().Warn("wgpu: uniform write ignored", "location", loc, "err", err)
		return
	}
	d.active.dirty[m.Block] = true
}

// flushUniforms uploads the blocks of p that changed. Queue writes are
// ordered before later submissions.
func (d *Device) flushUniforms(p *program) {
	for i, buf := range p.uniformBufs {
		if !p.dirty[i] {
			continue
		}
		d.queue.WriteBuffer(buf, 0, p.uniforms[i])
		p.dirty[i] = false
	}
}

// spirvWords reinterprets little-endian SPIR-V bytes as words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words
}
