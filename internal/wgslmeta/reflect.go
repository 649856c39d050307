// Package wgslmeta extracts binding and entry point metadata from WGSL
// stage sources.
//
// Sources are parsed and lowered with naga; the metadata is read from the
// resulting IR: uniform blocks with their member offsets, storage buffer
// variables with their access mode, and entry points with their compute
// workgroup size.
package wgslmeta

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/life/gpucore"
)

// Errors returned by Reflect and Merge.
var (
	// ErrUnsupportedBinding is returned for bound variables that are
	// neither uniform blocks nor storage buffers, such as textures and
	// samplers. Images are storage arrays on every device.
	ErrUnsupportedBinding = errors.New("wgslmeta: unsupported binding")

	// ErrUnsupportedType is returned for uniform variables whose layout
	// cannot be derived, such as top-level arrays.
	ErrUnsupportedType = errors.New("wgslmeta: unsupported uniform type")

	// ErrConflict is returned when two declarations share a binding, or
	// when stages declare the same name differently.
	ErrConflict = errors.New("wgslmeta: conflicting declarations")
)

// EntryPoint is a stage entry function.
type EntryPoint struct {
	Name  string
	Stage gpucore.StageKind

	// WorkgroupSize is only set for compute entry points. Missing
	// dimensions are 1.
	WorkgroupSize [3]uint32
}

// Resource is a storage buffer variable. In the life shaders every image
// is a storage array with one u32 per texel.
type Resource struct {
	Name    string
	Group   uint32
	Binding uint32
	Access  gpucore.Access

	// Stages records which stage kinds declared the resource.
	Stages []gpucore.StageKind
}

// Member is one writable field of a uniform block. Nested struct fields
// are flattened with dotted names ("light.color").
type Member struct {
	Name string

	// Type is the WGSL spelling of the member type, for diagnostics.
	Type string

	// Block is the index of the owning block in Module.Uniforms.
	Block int

	// Scalar is the component type: "f32", "i32", "u32", or another WGSL
	// scalar that cannot be written through the typed setters.
	Scalar string

	// Columns and Rows give the shape: 1x1 for scalars, 1xN for vectors,
	// CxR for matrices. Stride is the byte distance between matrix
	// columns.
	Columns, Rows int
	Stride        uint32

	// Len is the element count of an array member, 0 otherwise. Writes
	// target element 0.
	Len int

	Offset uint32
	Size   uint32
}

// Block is one var<uniform> variable. A variable of struct type has one
// member per field; any other type is a single member named after the
// variable.
type Block struct {
	// Var is the variable name (e.g. "params"); Struct is its struct type
	// name, empty for non-struct blocks.
	Var     string
	Struct  string
	Group   uint32
	Binding uint32
	Members []Member

	// Size is the block size rounded up to 16 bytes, as required for
	// uniform buffers.
	Size uint32
}

// Member returns the member with the given name.
func (b *Block) Member(name string) (Member, bool) {
	for _, m := range b.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// Module is the reflected interface of one or more stage sources.
type Module struct {
	EntryPoints []EntryPoint
	Resources   []Resource
	Uniforms    []*Block
}

// EntryPoint returns the first entry point of the given stage kind.
func (m *Module) EntryPoint(kind gpucore.StageKind) (EntryPoint, bool) {
	for _, ep := range m.EntryPoints {
		if ep.Stage == kind {
			return ep, true
		}
	}
	return EntryPoint{}, false
}

// Resource returns the resource with the given name.
func (m *Module) Resource(name string) (Resource, bool) {
	for _, r := range m.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}

// Member returns the uniform member with the given name from any block.
func (m *Module) Member(name string) (Member, bool) {
	for _, b := range m.Uniforms {
		if mem, ok := b.Member(name); ok {
			return mem, true
		}
	}
	return Member{}, false
}

// Reflect parses one WGSL source with naga and extracts its metadata.
// kind is recorded on every resource so that Merge can report which
// stages use it.
func Reflect(kind gpucore.StageKind, source string) (*Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	module, err := naga.Lower(ast)
	if err != nil {
		return nil, fmt.Errorf("lower: %w", err)
	}
	return FromIR(kind, module)
}

// Merge combines the modules of the stages linked into one program. Entry
// points are concatenated; resources and uniform blocks declared by more
// than one stage must agree on binding, access and layout.
func Merge(mods ...*Module) (*Module, error) {
	out := &Module{}
	for _, m := range mods {
		out.EntryPoints = append(out.EntryPoints, m.EntryPoints...)

		for _, r := range m.Resources {
			idx := -1
			for i := range out.Resources {
				if out.Resources[i].Name == r.Name {
					idx = i
					break
				}
			}
			if idx < 0 {
				r.Stages = append([]gpucore.StageKind(nil), r.Stages...)
				out.Resources = append(out.Resources, r)
				continue
			}
			prev := &out.Resources[idx]
			if prev.Group != r.Group || prev.Binding != r.Binding || prev.Access != r.Access {
				return nil, fmt.Errorf("%w: resource %s", ErrConflict, r.Name)
			}
			prev.Stages = append(prev.Stages, r.Stages...)
		}

		for _, b := range m.Uniforms {
			idx := -1
			for i, prev := range out.Uniforms {
				if prev.Var == b.Var {
					idx = i
					break
				}
			}
			if idx < 0 {
				out.Uniforms = append(out.Uniforms, b.withIndex(len(out.Uniforms)))
				continue
			}
			if !sameBlock(out.Uniforms[idx], b) {
				return nil, fmt.Errorf("%w: uniform block %s", ErrConflict, b.Var)
			}
		}
	}
	if err := out.checkBindings(); err != nil {
		return nil, err
	}
	return out, nil
}

// withIndex returns a copy of b whose members point at block index i.
func (b *Block) withIndex(i int) *Block {
	c := *b
	c.Members = make([]Member, len(b.Members))
	for j, m := range b.Members {
		m.Block = i
		c.Members[j] = m
	}
	return &c
}

func sameBlock(a, b *Block) bool {
	if a.Group != b.Group || a.Binding != b.Binding || a.Size != b.Size || len(a.Members) != len(b.Members) {
		return false
	}
	for i := range a.Members {
		x, y := a.Members[i], b.Members[i]
		x.Block, y.Block = 0, 0
		if x != y {
			return false
		}
	}
	return true
}

// checkBindings reports two differently named variables sharing a
// group and binding.
func (m *Module) checkBindings() error {
	owners := make(map[[2]uint32]string)
	claim := func(name string, group, binding uint32) error {
		key := [2]uint32{group, binding}
		if prev, ok := owners[key]; ok && prev != name {
			return fmt.Errorf("%w: %s and %s share @group(%d) @binding(%d)", ErrConflict, prev, name, group, binding)
		}
		owners[key] = name
		return nil
	}
	for _, b := range m.Uniforms {
		if err := claim(b.Var, b.Group, b.Binding); err != nil {
			return err
		}
	}
	for _, r := range m.Resources {
		if err := claim(r.Name, r.Group, r.Binding); err != nil {
			return err
		}
	}
	return nil
}
