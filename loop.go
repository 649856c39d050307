package life

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/life/window"
)

// LoopState is the lifecycle state of a MainLoop.
type LoopState uint8

// Loop states. Transitions only move forward:
// Running -> Closing -> Terminated.
const (
	Running LoopState = iota
	Closing
	Terminated
)

// String returns the state name.
func (s LoopState) String() string {
	switch s {
	case Running:
		return "running"
	case Closing:
		return "closing"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("LoopState(%d)", int(s))
	}
}

// Observer receives loop instrumentation. Calls are made from the loop
// goroutine.
type Observer interface {
	PassDone(pass string, d time.Duration)
	FrameDone(index uint64, d time.Duration)
	StateChanged(from, to LoopState)
}

// MainLoop runs the frame pipeline: poll events, update the frame state,
// advance time, execute the passes in order, present.
//
// A close request seen while handling events lets the current iteration
// finish (the frame is still rendered and presented) and then terminates.
type MainLoop struct {
	win       window.Window
	frame     *FrameState
	passes    []Pass
	observer  Observer
	maxFrames uint64
	logger    *slog.Logger
	state     LoopState
}

// NewMainLoop creates a loop over the given passes. WithMaxFrames,
// WithObserver, WithLogger and WithPasses apply; other options are
// ignored.
func NewMainLoop(win window.Window, frame *FrameState, passes []Pass, opts ...Option) *MainLoop {
	o := applyOptions(opts)
	all := make([]Pass, 0, len(passes)+len(o.passes))
	all = append(all, passes...)
	all = append(all, o.passes...)
	return &MainLoop{
		win:       win,
		frame:     frame,
		passes:    all,
		observer:  o.observer,
		maxFrames: o.maxFrames,
		logger:    o.logger,
	}
}

// State returns the lifecycle state.
func (l *MainLoop) State() LoopState { return l.state }

// Frame returns the current frame values.
func (l *MainLoop) Frame() Frame { return l.frame.Snapshot() }

// Passes returns the passes in execution order.
func (l *MainLoop) Passes() []Pass { return l.passes }

// Run iterates until the loop terminates. Context cancellation is checked
// between iterations and handled like a close request: one last frame is
// rendered and presented.
func (l *MainLoop) Run(ctx context.Context) error {
	l.logger.Info("life: loop started", "passes", len(l.passes))
	for l.state != Terminated {
		if ctx.Err() != nil && l.state == Running {
			l.logger.Debug("life: context done, closing", "err", ctx.Err())
			l.setState(Closing)
		}
		if err := l.Step(); err != nil {
			return err
		}
	}
	l.logger.Info("life: loop terminated", "frames", l.frame.Index)
	return nil
}

// Step runs one iteration. It is a no-op once the loop has terminated.
func (l *MainLoop) Step() error {
	if l.state == Terminated {
		return nil
	}
	start := time.Now()

	if l.frame.Update(l.win.PollEvents(), l.win) && l.state == Running {
		l.setState(Closing)
	}
	l.frame.AdvanceTime()

	f := l.frame.Snapshot()
	for _, p := range l.passes {
		t0 := time.Now()
		p.Execute(f)
		if l.observer != nil {
			l.observer.PassDone(p.Name(), time.Since(t0))
		}
	}

	if err := l.win.Present(); err != nil {
		l.setState(Terminated)
		return fmt.Errorf("life: present frame %d: %w", f.Index, err)
	}
	l.frame.Index++

	if l.observer != nil {
		l.observer.FrameDone(f.Index, time.Since(start))
	}
	if l.maxFrames > 0 && l.frame.Index >= l.maxFrames && l.state == Running {
		l.setState(Closing)
	}
	if l.state == Closing {
		l.setState(Terminated)
	}
	return nil
}

func (l *MainLoop) setState(to LoopState) {
	from := l.state
	if from == to {
		return
	}
	l.state = to
	l.logger.Debug("life: loop state", "from", from, "to", to)
	if l.observer != nil {
		l.observer.StateChanged(from, to)
	}
}
