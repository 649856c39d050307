package gpucore

import "fmt"

// Resource IDs
//
// These opaque IDs represent device resources. Each backend maintains a
// mapping between IDs and its native objects.

// ShaderID is an opaque handle to a compiled shader stage.
type ShaderID uint64

// ProgramID is an opaque handle to a linked program.
type ProgramID uint64

// TextureID is an opaque handle to a 2-D texture.
type TextureID uint64

// InvalidID is the zero value, representing an invalid/null resource.
// Passing it to UseProgram deactivates the current program.
const InvalidID = 0

// UniformLocation addresses a uniform or resource variable inside a linked
// program. Locations are only meaningful for the program they were queried on.
type UniformLocation int32

// NoLocation is returned by Device.UniformLocation when the name is not
// declared by any stage of the program.
const NoLocation UniformLocation = -1

// Valid reports whether the location refers to a declared variable.
func (l UniformLocation) Valid() bool { return l >= 0 }

// StageKind identifies the pipeline stage a shader source is compiled for.
type StageKind uint8

// Shader stage kinds.
const (
	// StageCompute is a compute shader stage.
	StageCompute StageKind = iota + 1

	// StageVertex is a vertex shader stage.
	StageVertex

	// StageFragment is a fragment shader stage.
	StageFragment
)

// String returns the stage name.
func (k StageKind) String() string {
	switch k {
	case StageCompute:
		return "compute"
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("StageKind(%d)", int(k))
	}
}

// Access is the declared access mode of an image binding.
type Access uint8

// Image access modes.
const (
	// ReadOnly images may only be loaded from.
	ReadOnly Access = iota + 1

	// WriteOnly images may only be stored to.
	WriteOnly

	// ReadWrite images may be loaded from and stored to.
	ReadWrite
)

// String returns the access mode name.
func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "read_only"
	case WriteOnly:
		return "write_only"
	case ReadWrite:
		return "read_write"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}

// CanRead reports whether the access mode permits loads.
func (a Access) CanRead() bool { return a == ReadOnly || a == ReadWrite }

// CanWrite reports whether the access mode permits stores.
func (a Access) CanWrite() bool { return a == WriteOnly || a == ReadWrite }

// TextureFormat specifies the storage format of texture data.
type TextureFormat uint32

// Texture formats.
const (
	// TextureFormatR8Unorm is 8-bit red channel only, normalized unsigned integer.
	// Automaton cell state uses this format: 0 is dead, 255 is alive.
	TextureFormatR8Unorm TextureFormat = iota + 1

	// TextureFormatRGBA8Unorm is 8-bit RGBA, normalized unsigned integer.
	TextureFormatRGBA8Unorm
)

// String returns the format name.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatR8Unorm:
		return "r8unorm"
	case TextureFormatRGBA8Unorm:
		return "rgba8unorm"
	default:
		return fmt.Sprintf("TextureFormat(%d)", int(f))
	}
}

// BytesPerTexel returns the host-side size of one texel.
func (f TextureFormat) BytesPerTexel() int {
	switch f {
	case TextureFormatR8Unorm:
		return 1
	case TextureFormatRGBA8Unorm:
		return 4
	default:
		return 0
	}
}

// BarrierBits selects which kinds of memory access a barrier orders.
type BarrierBits uint32

// Barrier bits.
const (
	// BarrierShaderImageAccess orders image loads/stores issued by shaders.
	BarrierShaderImageAccess BarrierBits = 1 << 0

	// BarrierTextureFetch orders texture reads issued by render programs.
	BarrierTextureFetch BarrierBits = 1 << 1

	// BarrierAll orders every kind of access.
	BarrierAll BarrierBits = 0xFFFFFFFF
)

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Black is opaque black.
var Black = Color{A: 1}
