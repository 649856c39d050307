package wgslmeta

import (
	"fmt"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/life/gpucore"
)

// FromIR extracts metadata from a lowered naga module.
func FromIR(kind gpucore.StageKind, m *ir.Module) (*Module, error) {
	mod := &Module{}

	for _, ep := range m.EntryPoints {
		stage, ok := stageKind(ep.Stage)
		if !ok {
			continue
		}
		e := EntryPoint{Name: ep.Name, Stage: stage}
		if stage == gpucore.StageCompute {
			e.WorkgroupSize = ep.Workgroup
			for i, v := range e.WorkgroupSize {
				if v == 0 {
					e.WorkgroupSize[i] = 1
				}
			}
		}
		mod.EntryPoints = append(mod.EntryPoints, e)
	}

	for _, gv := range m.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		group, binding := gv.Binding.Group, gv.Binding.Binding

		switch gv.Space {
		case ir.SpaceUniform:
			block, err := uniformBlock(m, gv, len(mod.Uniforms))
			if err != nil {
				return nil, err
			}
			mod.Uniforms = append(mod.Uniforms, block)
		case ir.SpaceStorage:
			access := gpucore.ReadOnly
			if gv.Access&ir.StorageWrite != 0 {
				access = gpucore.ReadWrite
			}
			mod.Resources = append(mod.Resources, Resource{
				Name:    gv.Name,
				Group:   group,
				Binding: binding,
				Access:  access,
				Stages:  []gpucore.StageKind{kind},
			})
		default:
			return nil, fmt.Errorf("%w: %s at @group(%d) @binding(%d)", ErrUnsupportedBinding, gv.Name, group, binding)
		}
	}

	if err := mod.checkBindings(); err != nil {
		return nil, err
	}
	return mod, nil
}

func stageKind(s ir.ShaderStage) (gpucore.StageKind, bool) {
	switch s {
	case ir.StageCompute:
		return gpucore.StageCompute, true
	case ir.StageVertex:
		return gpucore.StageVertex, true
	case ir.StageFragment:
		return gpucore.StageFragment, true
	}
	return 0, false
}

// uniformBlock lays out one var<uniform> variable from the offsets naga
// computed, which already honor @align and @size.
func uniformBlock(m *ir.Module, gv ir.GlobalVariable, index int) (*Block, error) {
	b := &Block{Var: gv.Name, Group: gv.Binding.Group, Binding: gv.Binding.Binding}

	t := m.Types[gv.Type]
	switch inner := t.Inner.(type) {
	case ir.StructType:
		b.Struct = t.Name
		b.Members = structMembers(m, inner, "", 0, index)
		b.Size = inner.Span
	case ir.ArrayType:
		return nil, fmt.Errorf("%w: %s is a top-level array; wrap it in a struct", ErrUnsupportedType, gv.Name)
	default:
		mem := newMember(m, gv.Name, gv.Type, 0, 0, index)
		b.Members = []Member{mem}
		b.Size = mem.Size
	}

	b.Size = alignUp(b.Size, 16)
	if b.Size == 0 {
		b.Size = 16
	}
	return b, nil
}

// structMembers flattens the fields of st. base is the offset of st in
// the block; nested fields get prefix.
func structMembers(m *ir.Module, st ir.StructType, prefix string, base uint32, block int) []Member {
	var out []Member
	for i, sm := range st.Members {
		end := st.Span
		if i+1 < len(st.Members) {
			end = st.Members[i+1].Offset
		}
		name := prefix + sm.Name
		if nested, ok := m.Types[sm.Type].Inner.(ir.StructType); ok {
			out = append(out, structMembers(m, nested, name+".", base+sm.Offset, block)...)
			continue
		}
		out = append(out, newMember(m, name, sm.Type, base+sm.Offset, end-sm.Offset, block))
	}
	return out
}

// newMember describes the value of type h at offset. span is the room the
// enclosing struct gives it, used to size arrays.
func newMember(m *ir.Module, name string, h ir.TypeHandle, offset, span uint32, block int) Member {
	mem := Member{Name: name, Type: typeName(m, h), Block: block, Offset: offset, Columns: 1, Rows: 1}

	switch t := m.Types[h].Inner.(type) {
	case ir.ScalarType:
		mem.Scalar = scalarName(t)
		mem.Size = uint32(t.Width)
	case ir.VectorType:
		mem.Scalar = scalarName(t.Scalar)
		mem.Rows = int(t.Size)
		mem.Size = uint32(t.Size) * uint32(t.Scalar.Width)
	case ir.MatrixType:
		mem.Scalar = scalarName(t.Scalar)
		mem.Columns, mem.Rows = int(t.Columns), int(t.Rows)
		mem.Stride = columnStride(int(t.Rows), uint32(t.Scalar.Width))
		mem.Size = uint32(t.Columns) * mem.Stride
	case ir.ArrayType:
		elem := newMember(m, name, t.Base, offset, t.Stride, block)
		elem.Type = mem.Type
		if t.Stride > 0 {
			elem.Len = int(span / t.Stride)
		}
		elem.Size = span
		return elem
	default:
		mem.Size = span
	}
	return mem
}

// columnStride is the aligned size of a matrix column: vec2 columns align
// to 8 bytes, vec3 and vec4 columns to 16 (for 4-byte scalars).
func columnStride(rows int, width uint32) uint32 {
	if rows == 2 {
		return 2 * width
	}
	return 4 * width
}

func scalarName(s ir.ScalarType) string {
	switch s.Kind {
	case ir.ScalarFloat:
		if s.Width == 2 {
			return "f16"
		}
		return "f32"
	case ir.ScalarSint:
		return "i32"
	case ir.ScalarUint:
		return "u32"
	case ir.ScalarBool:
		return "bool"
	}
	return "unknown"
}

func typeName(m *ir.Module, h ir.TypeHandle) string {
	t := m.Types[h]
	switch inner := t.Inner.(type) {
	case ir.ScalarType:
		return scalarName(inner)
	case ir.VectorType:
		return fmt.Sprintf("vec%d<%s>", inner.Size, scalarName(inner.Scalar))
	case ir.MatrixType:
		return fmt.Sprintf("mat%dx%d<%s>", inner.Columns, inner.Rows, scalarName(inner.Scalar))
	case ir.ArrayType:
		return fmt.Sprintf("array<%s>", typeName(m, inner.Base))
	}
	if t.Name != "" {
		return t.Name
	}
	return "unknown"
}

func alignUp(v, align uint32) uint32 {
	return (v + align - 1) &^ (align - 1)
}
