// Package gpucore defines the command surface shared by every GPU device the
// life simulation can run on.
//
// The [Device] interface is deliberately shaped like a programmable-pipeline
// context: shader stages are compiled and linked into programs, one program
// is active at a time, uniforms are written through locations, and textures
// are attached to numbered image and texture units. Backends translate these
// calls into their native API:
//
//	               +-----------------+
//	               |  shader / life  |
//	               +--------+--------+
//	                        |
//	                 gpucore.Device
//	                        |
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	| backend/wgpu    |          | backend/software|
//	| (hal.Device)    |          | (CPU kernels)   |
//	+-----------------+          +-----------------+
//
// # Resource Management
//
// GPU resources are referenced by opaque IDs ([ShaderID], [ProgramID],
// [TextureID]). The zero ID is never valid. Every Create/Compile/Link call
// has a matching Delete call, and IDs must not be used after deletion.
//
// # Synchronization
//
// Devices execute commands in submission order on a single command stream.
// Writes performed by a compute dispatch are only guaranteed visible to later
// reads after [Device.MemoryBarrier] returns.
package gpucore
