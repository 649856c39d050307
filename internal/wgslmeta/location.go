package wgslmeta

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/life/gpucore"
)

// Location returns the uniform location of a block member or resource.
// Block members are numbered first, block by block, then resources, in
// declaration order.
func (m *Module) Location(name string) gpucore.UniformLocation {
	members := m.members()
	for i, mem := range members {
		if mem.Name == name {
			return gpucore.UniformLocation(i)
		}
	}
	for i, r := range m.Resources {
		if r.Name == name {
			return gpucore.UniformLocation(len(members) + i)
		}
	}
	return gpucore.NoLocation
}

// MemberAt returns the block member at loc.
func (m *Module) MemberAt(loc gpucore.UniformLocation) (Member, bool) {
	members := m.members()
	if !loc.Valid() || int(loc) >= len(members) {
		return Member{}, false
	}
	return members[loc], true
}

// ResourceAt returns the resource at loc.
func (m *Module) ResourceAt(loc gpucore.UniformLocation) (Resource, bool) {
	i := int(loc) - len(m.members())
	if !loc.Valid() || i < 0 || i >= len(m.Resources) {
		return Resource{}, false
	}
	return m.Resources[i], true
}

func (m *Module) members() []Member {
	var out []Member
	for _, b := range m.Uniforms {
		out = append(out, b.Members...)
	}
	return out
}

func writable(scalar string) bool {
	return scalar == "f32" || scalar == "i32" || scalar == "u32"
}

// Encode stores words into the block data at the member's offset, column
// by column for matrices and into element 0 for arrays. scalar is the
// component type the caller writes; i32 and u32 are interchangeable.
func (mem Member) Encode(data []byte, scalar string, words []uint32) error {
	if !writable(mem.Scalar) {
		return fmt.Errorf("%s is %s, which has no typed setter", mem.Name, mem.Type)
	}
	if n := mem.Columns * mem.Rows; n != len(words) {
		return fmt.Errorf("%s is %s, written with %d components", mem.Name, mem.Type, len(words))
	}
	integer := func(k string) bool { return k == "i32" || k == "u32" }
	if mem.Scalar != scalar && !(integer(mem.Scalar) && integer(scalar)) {
		return fmt.Errorf("%s is %s, written as %s", mem.Name, mem.Type, scalar)
	}
	for i, w := range words {
		off := int(mem.Offset) + i/mem.Rows*int(mem.Stride) + i%mem.Rows*4
		if off+4 > len(data) {
			return fmt.Errorf("%s at offset %d overflows a %d byte block", mem.Name, mem.Offset, len(data))
		}
		binary.LittleEndian.PutUint32(data[off:], w)
	}
	return nil
}
