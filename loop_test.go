package life

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gogpu/life/window"
)

var errPresent = errors.New("surface lost")

type recordingObserver struct {
	passes []string
	frames []uint64
	states []string
}

func (r *recordingObserver) PassDone(pass string, _ time.Duration) {
	r.passes = append(r.passes, pass)
}

func (r *recordingObserver) FrameDone(index uint64, _ time.Duration) {
	r.frames = append(r.frames, index)
}

func (r *recordingObserver) StateChanged(from, to LoopState) {
	r.states = append(r.states, fmt.Sprintf("%s->%s", from, to))
}

func countingPasses(log *[]string, names ...string) []Pass {
	passes := make([]Pass, len(names))
	for i, name := range names {
		passes[i] = PassFunc{Label: name, Fn: func(f Frame) {
			*log = append(*log, fmt.Sprintf("%s@%d", name, f.Index))
		}}
	}
	return passes
}

func TestLoopFrameIndexAfterNIterations(t *testing.T) {
	win := &stubWindow{w: 4, h: 4}
	var log []string
	loop := NewMainLoop(win, NewFrameState(win, nil), countingPasses(&log, "a"), WithMaxFrames(5))

	if err := loop.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := loop.Frame().Index; got != 5 {
		t.Errorf("frame index = %d, want 5", got)
	}
	if win.present != 5 {
		t.Errorf("presented %d frames, want 5", win.present)
	}
	if loop.State() != Terminated {
		t.Errorf("state = %v, want terminated", loop.State())
	}
}

func TestLoopPassOrder(t *testing.T) {
	win := &stubWindow{w: 4, h: 4}
	var log []string
	loop := NewMainLoop(win, NewFrameState(win, nil), countingPasses(&log, "step", "render"),
		WithPasses(countingPasses(&log, "copy")...), WithMaxFrames(2))
	if err := loop.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := "[step@0 render@0 copy@0 step@1 render@1 copy@1]"
	if got := fmt.Sprint(log); got != want {
		t.Errorf("passes = %s, want %s", got, want)
	}
}

func TestLoopCloseFinishesIteration(t *testing.T) {
	tests := []struct {
		name  string
		event window.Event
	}{
		{"close request", window.CloseRequest{}},
		{"escape", window.KeyEvent{Key: window.KeyEscape, Action: window.Press}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Close arrives on the third poll.
			win := &stubWindow{w: 4, h: 4, events: [][]window.Event{nil, nil, {tt.event}}}
			var log []string
			obs := &recordingObserver{}
			loop := NewMainLoop(win, NewFrameState(win, nil), countingPasses(&log, "p"), WithObserver(obs))

			if err := loop.Run(context.Background()); err != nil {
				t.Fatal(err)
			}
			if win.present != 3 {
				t.Errorf("presented %d frames, want 3 (closing frame still presented)", win.present)
			}
			if got := fmt.Sprint(log); got != "[p@0 p@1 p@2]" {
				t.Errorf("passes = %s", got)
			}
			if got := fmt.Sprint(obs.states); got != "[running->closing closing->terminated]" {
				t.Errorf("states = %s", got)
			}
			if got := fmt.Sprint(obs.frames); got != "[0 1 2]" {
				t.Errorf("frames = %s", got)
			}
		})
	}
}

func TestLoopContextCancel(t *testing.T) {
	win := &stubWindow{w: 4, h: 4}
	var log []string
	loop := NewMainLoop(win, NewFrameState(win, nil), countingPasses(&log, "p"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := loop.Run(ctx); err != nil {
		t.Fatalf("Run() = %v, want nil for a close", err)
	}
	if win.present != 1 {
		t.Errorf("presented %d frames, want 1", win.present)
	}
	if loop.State() != Terminated {
		t.Errorf("state = %v", loop.State())
	}
}

func TestLoopPresentError(t *testing.T) {
	win := &stubWindow{w: 4, h: 4, failAt: 2}
	loop := NewMainLoop(win, NewFrameState(win, nil), nil)

	err := loop.Run(context.Background())
	if !errors.Is(err, errPresent) {
		t.Fatalf("Run() = %v, want present error", err)
	}
	if loop.State() != Terminated {
		t.Errorf("state = %v, want terminated", loop.State())
	}
	if loop.Frame().Index != 1 {
		t.Errorf("frame index = %d, want 1", loop.Frame().Index)
	}
}

func TestLoopStepAfterTerminate(t *testing.T) {
	win := &stubWindow{w: 4, h: 4}
	loop := NewMainLoop(win, NewFrameState(win, nil), nil, WithMaxFrames(1))
	if err := loop.Step(); err != nil {
		t.Fatal(err)
	}
	if loop.State() != Terminated {
		t.Fatalf("state = %v after max frames", loop.State())
	}
	_ = loop.Step()
	if win.present != 1 {
		t.Errorf("Step after termination presented a frame")
	}
}

func TestLoopStateString(t *testing.T) {
	for state, want := range map[LoopState]string{Running: "running", Closing: "closing", Terminated: "terminated", 9: "LoopState(9)"} {
		if got := state.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
