// Package backend provides a registry of pluggable GPU devices.
//
// Each backend package registers a factory in its init() function and is
// linked in with a blank import:
//
//	import (
//		_ "github.com/gogpu/life/backend/software"
//		_ "github.com/gogpu/life/backend/wgpu"
//	)
//
// # Backend Selection
//
// Use Default() to open the best available device, or Open() to request
// a specific backend by name:
//
//	// Open the default (best available) device
//	dev, err := backend.Default()
//
//	// Or request a specific backend
//	dev, err := backend.Open("software")
//
// A backend whose factory fails (for example wgpu on a machine without a
// Vulkan adapter) is skipped by Default.
//
// # Available Backends
//
// - "software": CPU interpreter of the life kernels (always available)
// - "wgpu": GPU device via gogpu/wgpu HAL and naga (requires Vulkan)
package backend
