// Package life runs a cellular automaton on the GPU.
//
// # Overview
//
// Each frame the main loop polls window events, updates the frame state
// (time, cursor, button), and runs three passes:
//
//	step    compute: current -> next (rule + pointer painting)
//	render  draw: current -> framebuffer
//	copy    compute: next -> current
//
// and then presents. The display therefore lags the simulation by one
// generation. With Config.Swap the copy pass is replaced by exchanging the
// two images.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/life"
//		"github.com/gogpu/life/backend"
//		_ "github.com/gogpu/life/backend/software"
//		_ "github.com/gogpu/life/backend/wgpu"
//		"github.com/gogpu/life/window"
//	)
//
//	dev, err := backend.Default()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Destroy()
//
//	s, err := life.NewSession(dev,
//		life.WithSeed(life.RandomSeed{Density: 0.25}),
//		life.WithMaxFrames(500))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	win := window.NewHeadless(1024, 1024)
//	if err := s.Run(ctx, win); err != nil {
//		log.Fatal(err)
//	}
//
// # Cells
//
// Cells live in two R8 images, bottom row first: 0 is dead, 255 is alive,
// and any value above 127 counts as alive. The neighbourhood wraps around
// the grid edges. While the primary button is held, cells within
// Config.MouseRadius of the pointer become alive.
//
// # Architecture
//
// The library is organized into:
//   - life: Session, MainLoop, FrameState, GenerationBuffer, passes, seeds
//   - shader: program objects over a gpucore.Device
//   - automaton: built-in WGSL stages, rule notation, CPU kernels
//   - backend/software, backend/wgpu: devices
//   - window: input/presentation surface, headless snapshots
//   - metrics: Prometheus observer
package life
