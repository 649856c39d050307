package gpucore

import "image"

// Device abstracts over the GPU backends the simulation can run on.
//
// A Device is a single command stream: commands execute in the order they
// are issued, from one goroutine. Implementations are NOT safe for
// concurrent use.
//
// Resource lifecycle:
//   - Resources are created via Compile*/Link*/Create* methods
//   - Resources must be explicitly released via Delete* methods
//   - Deleting a resource while it is bound is undefined behavior
//   - IDs become invalid after deletion and must not be reused
//
// Program state:
//   - At most one program is active; UseProgram replaces it
//   - Uniform* calls write to the active program and are ignored when no
//     program is active or the location is NoLocation
//   - Image and texture unit bindings are device state, not program state;
//     they persist until rebound
type Device interface {
	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// === Shader Compilation ===

	// CompileShader compiles one stage source. The returned error carries
	// the compiler diagnostic text; no shader is created on failure.
	CompileShader(kind StageKind, source string) (ShaderID, error)

	// DeleteShader releases a compiled stage. Stages attached to a linked
	// program may be deleted immediately after LinkProgram returns.
	DeleteShader(id ShaderID)

	// LinkProgram links compiled stages into an executable program.
	// The returned error carries the linker diagnostic text.
	LinkProgram(shaders []ShaderID) (ProgramID, error)

	// DeleteProgram releases a linked program. Deleting the active program
	// deactivates it.
	DeleteProgram(id ProgramID)

	// UseProgram makes the program active. InvalidID deactivates.
	UseProgram(id ProgramID)

	// UniformLocation returns the location of a uniform block member or
	// resource variable, or NoLocation when the program declares no such
	// name.
	UniformLocation(id ProgramID, name string) UniformLocation

	// ComputeWorkgroupSize returns the @workgroup_size declared by a
	// compute program's entry point, or zeros for render programs and
	// unknown IDs.
	ComputeWorkgroupSize(id ProgramID) [3]uint32

	// === Uniforms (active program) ===

	// Uniform1i writes a signed integer. On a resource location it
	// re-targets the resource to the given unit.
	Uniform1i(loc UniformLocation, v int32)

	// Uniform1ui writes an unsigned integer.
	Uniform1ui(loc UniformLocation, v uint32)

	// Uniform2ui writes a two-component unsigned vector.
	Uniform2ui(loc UniformLocation, x, y uint32)

	// Uniform1f writes a float.
	Uniform1f(loc UniformLocation, v float32)

	// Uniform2f writes a two-component vector.
	Uniform2f(loc UniformLocation, x, y float32)

	// Uniform3f writes a three-component vector.
	Uniform3f(loc UniformLocation, x, y, z float32)

	// Uniform4f writes a four-component vector.
	Uniform4f(loc UniformLocation, x, y, z, w float32)

	// === Texture Management ===

	// CreateTexture allocates a texture. Contents are undefined until
	// written.
	CreateTexture(width, height int, format TextureFormat) (TextureID, error)

	// WriteTexture replaces the full contents of a texture. data is tightly
	// packed rows, bottom row first, BytesPerTexel bytes per texel.
	WriteTexture(id TextureID, data []byte) error

	// ReadTexture returns the full contents of a texture in the layout
	// accepted by WriteTexture. This may stall until pending work finishes.
	ReadTexture(id TextureID) ([]byte, error)

	// DeleteTexture releases a texture.
	DeleteTexture(id TextureID)

	// BindImageTexture attaches a texture to an image unit for shader
	// load/store. A format that differs from the texture's storage format
	// is undefined behavior and is not detected.
	BindImageTexture(unit uint32, id TextureID, access Access, format TextureFormat)

	// BindTexture attaches a texture to a texture unit for sampling by
	// render programs.
	BindTexture(unit uint32, id TextureID)

	// === Execution ===

	// DispatchCompute runs the active compute program over a grid of
	// workgroups.
	DispatchCompute(groupsX, groupsY, groupsZ uint32)

	// MemoryBarrier blocks until writes from previously issued commands of
	// the selected kinds are visible to subsequent commands.
	MemoryBarrier(bits BarrierBits)

	// Viewport sets the render target rectangle. The framebuffer is resized
	// to width x height.
	Viewport(x, y, width, height int)

	// ClearColor sets the color used by Clear.
	ClearColor(c Color)

	// Clear fills the framebuffer with the clear color.
	Clear()

	// DrawArrays draws count vertices as a triangle list with the active
	// render program.
	DrawArrays(first, count int)

	// ReadPixels returns a copy of the framebuffer, top row first.
	ReadPixels() (*image.RGBA, error)

	// Destroy releases every resource owned by the device.
	Destroy()
}
