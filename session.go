package life

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/life/automaton"
	"github.com/gogpu/life/gpucore"
	"github.com/gogpu/life/shader"
	"github.com/gogpu/life/window"
)

// Session owns the programs and generation images of one simulation on a
// device.
type Session struct {
	dev    gpucore.Device
	cfg    Config
	opts   options
	logger *slog.Logger

	step     *shader.ComputeProgram
	copy     *shader.ComputeProgram
	render   *shader.RenderProgram
	buffer   *GenerationBuffer
	bindings *shader.BindingTable
	passes   []Pass

	loop   *MainLoop
	closed bool
}

// NewSession compiles the programs, allocates and seeds the generation
// images and assembles the pass list: step, render, then copy (or swap
// when Config.Swap is set). Any compile or link failure aborts startup.
func NewSession(dev gpucore.Device, opts ...Option) (_ *Session, err error) {
	o := applyOptions(opts)
	cfg := o.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	propagateLogger(dev, o.logger)

	s := &Session{dev: dev, cfg: cfg, opts: o, logger: o.logger, bindings: shader.NewBindingTable(dev)}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if s.step, err = s.buildCompute("step", cfg.ComputePaths, automaton.StepStages()); err != nil {
		return nil, err
	}
	if err = checkLocalSize(s.step, cfg.WorkgroupSize); err != nil {
		return nil, err
	}
	s.step.SetGroups(shader.GroupsFor(cfg.Width, cfg.WorkgroupSize), shader.GroupsFor(cfg.Height, cfg.WorkgroupSize), 1)

	if s.render, err = s.buildRender(); err != nil {
		return nil, err
	}
	s.render.SetBackground(cfg.Background)
	s.render.BindTextureUniform(automaton.CellsTexture, displayUnit)
	s.render.Use()
	s.render.SetUVec2(automaton.GridSize, uint32(cfg.Width), uint32(cfg.Height))
	s.render.SetColor(automaton.Background, cfg.Background)
	s.render.SetColor(automaton.AliveColor, cfg.AliveColor)
	dev.UseProgram(gpucore.InvalidID)

	if !cfg.Swap {
		if s.copy, err = s.buildCompute("copy", cfg.CopyPaths, automaton.CopyStages()); err != nil {
			return nil, err
		}
		if err = checkLocalSize(s.copy, cfg.WorkgroupSize); err != nil {
			return nil, err
		}
		s.copy.SetGroups(s.step.Groups()[0], s.step.Groups()[1], 1)
	}

	if s.buffer, err = AllocateGenerations(dev, cfg.Width, cfg.Height, gpucore.TextureFormatR8Unorm); err != nil {
		return nil, err
	}
	if err = s.buffer.Seed(o.seed); err != nil {
		return nil, fmt.Errorf("life: seed: %w", err)
	}

	s.passes = []Pass{
		&StepPass{Program: s.step, Buffer: s.buffer, Bindings: s.bindings, Rule: cfg.Rule, Radius: cfg.MouseRadius},
		&RenderPass{Program: s.render, Buffer: s.buffer, Bindings: s.bindings},
	}
	if cfg.Swap {
		s.passes = append(s.passes, &SwapPass{Buffer: s.buffer})
	} else {
		s.passes = append(s.passes, &CopyPass{Program: s.copy, Buffer: s.buffer, Bindings: s.bindings})
	}

	s.logger.Info("life: session ready",
		"backend", dev.Name(), "grid", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"rule", cfg.Rule.String(), "swap", cfg.Swap)
	return s, nil
}

func (s *Session) buildCompute(label string, paths []string, builtin []shader.Stage) (*shader.ComputeProgram, error) {
	if len(paths) > 0 {
		return shader.LoadComputeProgram(s.dev, label, paths...)
	}
	return shader.NewComputeProgram(s.dev, label, builtin...)
}

// checkLocalSize rejects a program whose declared local size would not
// tile the grid with the workgroup counts derived from size.
func checkLocalSize(p *shader.ComputeProgram, size uint32) error {
	local := p.LocalSize()
	if local[0] != size || local[1] != size {
		return fmt.Errorf("%w: %s declares @workgroup_size(%d, %d, %d), config uses %d",
			ErrWorkgroupMismatch, p.Label(), local[0], local[1], local[2], size)
	}
	return nil
}

func (s *Session) buildRender() (*shader.RenderProgram, error) {
	if s.cfg.VertexPath != "" {
		return shader.LoadRenderProgram(s.dev, "render", s.cfg.VertexPath, s.cfg.FragmentPath)
	}
	return shader.NewRenderProgram(s.dev, "render", automaton.RenderStages()...)
}

// Buffer returns the generation images.
func (s *Session) Buffer() *GenerationBuffer { return s.buffer }

// Passes returns the built-in passes in execution order.
func (s *Session) Passes() []Pass { return s.passes }

// Config returns the configuration the session was built with.
func (s *Session) Config() Config { return s.cfg }

// Loop returns the loop of the last Run, or nil before Run.
func (s *Session) Loop() *MainLoop { return s.loop }

// NewLoop creates a main loop driving this session's passes on win.
func (s *Session) NewLoop(win window.Window) *MainLoop {
	frame := NewFrameState(win, s.dev)
	loop := NewMainLoop(win, frame, s.passes,
		WithObserver(s.opts.observer),
		WithMaxFrames(s.opts.maxFrames),
		WithLogger(s.logger),
		WithPasses(s.opts.passes...))
	return loop
}

// Run drives the session on win until the loop terminates or ctx is done.
func (s *Session) Run(ctx context.Context, win window.Window) error {
	if s.closed {
		return ErrClosed
	}
	s.loop = s.NewLoop(win)
	return s.loop.Run(ctx)
}

// Close releases the programs and images. Closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.step != nil {
		errs = append(errs, s.step.Close())
	}
	if s.copy != nil {
		errs = append(errs, s.copy.Close())
	}
	if s.render != nil {
		errs = append(errs, s.render.Close())
	}
	if s.buffer != nil {
		s.buffer.Close()
	}
	s.logger.Info("life: session closed")
	return errors.Join(errs...)
}
