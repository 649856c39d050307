// Package software implements gpucore.Device on the CPU.
//
// Stage sources are parsed with naga, so a source that would not compile
// for the GPU does not compile here either. Their bindings and uniform
// block layout are reflected from the WGSL declarations. Execution is done
// by Go kernels registered under the entry point name of the stage:
//
//	software.RegisterCompute("life_step", func(inv *software.Invocation) {
//		cur := inv.Image("current_gen")
//		...
//	})
//
// Linking a program whose entry points have no registered kernel fails
// with a link error naming the missing entry point.
//
// Render programs are rasterized with edge functions into an RGBA
// framebuffer sized by Viewport.
//
// The package registers itself with the backend registry as "software".
package software
