package software

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/gogpu/life/gpucore"
)

// ComputeKernel runs one compute invocation. inv.GlobalID is the
// global_invocation_id builtin.
type ComputeKernel func(inv *Invocation)

// VertexKernel produces the clip-space position and the varyings of one
// vertex. inv.VertexIndex is the vertex_index builtin.
type VertexKernel func(inv *Invocation) (position [4]float32, varyings []float32)

// FragmentKernel shades one fragment from interpolated varyings and
// returns an RGBA color in [0,1].
type FragmentKernel func(inv *Invocation, varyings []float32) [4]float32

var (
	kernelsMu sync.RWMutex
	compute   = make(map[string]ComputeKernel)
	vertex    = make(map[string]VertexKernel)
	fragment  = make(map[string]FragmentKernel)
)

// RegisterCompute registers the kernel executed for a @compute entry point.
// Registering a name again replaces the previous kernel.
func RegisterCompute(entryPoint string, k ComputeKernel) {
	kernelsMu.Lock()
	defer kernelsMu.Unlock()
	compute[entryPoint] = k
}

// RegisterVertex registers the kernel executed for a @vertex entry point.
func RegisterVertex(entryPoint string, k VertexKernel) {
	kernelsMu.Lock()
	defer kernelsMu.Unlock()
	vertex[entryPoint] = k
}

// RegisterFragment registers the kernel executed for a @fragment entry point.
func RegisterFragment(entryPoint string, k FragmentKernel) {
	kernelsMu.Lock()
	defer kernelsMu.Unlock()
	fragment[entryPoint] = k
}

func lookupCompute(name string) (ComputeKernel, bool) {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()
	k, ok := compute[name]
	return k, ok
}

func lookupVertex(name string) (VertexKernel, bool) {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()
	k, ok := vertex[name]
	return k, ok
}

func lookupFragment(name string) (FragmentKernel, bool) {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()
	k, ok := fragment[name]
	return k, ok
}

// Invocation gives a kernel access to the resources and uniforms of the
// program it runs for.
type Invocation struct {
	GlobalID    [3]uint32
	VertexIndex uint32

	dev  *Device
	prog *program
}

// Image returns the storage view bound for the named resource variable.
// The view is empty when nothing is bound to the resource's unit.
func (inv *Invocation) Image(name string) Image {
	unit, ok := inv.prog.units[name]
	if !ok {
		return Image{}
	}
	if inv.prog.kind == gpucore.StageCompute {
		b, ok := inv.dev.images[unit]
		if !ok {
			return Image{}
		}
		tex := inv.dev.textures[b.texture]
		if tex == nil {
			return Image{}
		}
		return Image{tex: tex, access: b.access}
	}
	tex := inv.dev.textures[inv.dev.samplers[unit]]
	if tex == nil {
		return Image{}
	}
	return Image{tex: tex, access: gpucore.ReadOnly}
}

// Uint returns a u32 uniform member, or 0 when the block has no such member.
func (inv *Invocation) Uint(name string) uint32 {
	b, ok := inv.member(name, 4)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Int returns an i32 uniform member.
func (inv *Invocation) Int(name string) int32 {
	return int32(inv.Uint(name))
}

// Float returns an f32 uniform member.
func (inv *Invocation) Float(name string) float32 {
	return math.Float32frombits(inv.Uint(name))
}

// UVec2 returns a vec2<u32> uniform member.
func (inv *Invocation) UVec2(name string) [2]uint32 {
	b, ok := inv.member(name, 8)
	if !ok {
		return [2]uint32{}
	}
	return [2]uint32{binary.LittleEndian.Uint32(b), binary.LittleEndian.Uint32(b[4:])}
}

// Vec2 returns a vec2<f32> uniform member.
func (inv *Invocation) Vec2(name string) [2]float32 {
	u := inv.UVec2(name)
	return [2]float32{math.Float32frombits(u[0]), math.Float32frombits(u[1])}
}

// Vec4 returns a vec4<f32> uniform member.
func (inv *Invocation) Vec4(name string) [4]float32 {
	var v [4]float32
	b, ok := inv.member(name, 16)
	if !ok {
		return v
	}
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

func (inv *Invocation) member(name string, size uint32) ([]byte, bool) {
	m, ok := inv.prog.meta.Member(name)
	if !ok || m.Size < size {
		return nil, false
	}
	data := inv.prog.uniforms[m.Block]
	if int(m.Offset+size) > len(data) {
		return nil, false
	}
	return data[m.Offset : m.Offset+size], true
}
