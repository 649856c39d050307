// Package wgpu runs life programs on a GPU through the gogpu/wgpu HAL.
//
// Stage sources are WGSL. They are compiled to SPIR-V with naga and bound
// through one bind group per program: the uniform block plus one storage
// buffer per image. Images are storage buffers holding one u32 per texel,
// the layout the shaders index with y*width+x.
//
// Commands are submitted as they are issued and tracked with a single
// timeline fence. MemoryBarrier and the read operations wait for that
// fence to reach the last submitted value.
//
// Importing the package registers the "wgpu" backend:
//
//	import _ "github.com/gogpu/life/backend/wgpu"
//
// Build with the nogpu tag to leave it out.
package wgpu
