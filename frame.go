package life

import (
	"time"

	"github.com/gogpu/life/window"
)

// Frame is the per-frame input to the passes: an immutable copy of the
// FrameState taken after input handling.
type Frame struct {
	// Index counts presented frames; it is 0 during the first iteration.
	Index uint64

	// Time is the number of seconds since the FrameState was created.
	Time float32

	// Width and Height are the framebuffer size in pixels.
	Width, Height int

	// Mouse is the last cursor position normalized to [0,1] with the
	// origin at the bottom-left of the window.
	Mouse [2]float32

	// MousePressed is the primary button state.
	MousePressed bool
}

// Viewporter receives framebuffer size changes.
type Viewporter interface {
	Viewport(x, y, width, height int)
}

// FrameState accumulates input and time between frames. It is owned by
// the main loop.
type FrameState struct {
	Frame

	start    time.Time
	now      func() time.Time
	viewport Viewporter
}

// NewFrameState starts the clock and takes the initial size and cursor
// position from win. The viewport is set to the window size.
func NewFrameState(win window.Window, vp Viewporter) *FrameState {
	f := &FrameState{now: time.Now, viewport: vp}
	f.start = f.now()
	f.Width, f.Height = win.Size()
	x, y := win.CursorPos()
	f.Mouse = NormalizeCursor(x, y, f.Width, f.Height)
	f.MousePressed = win.Pressed(window.ButtonLeft)
	if vp != nil {
		vp.Viewport(0, 0, f.Width, f.Height)
	}
	return f
}

// Update applies a batch of events and reports whether closing was
// requested (window close or Escape pressed). Mouse button events re-query
// the live button state from win rather than trusting the event action.
func (f *FrameState) Update(events []window.Event, win window.Window) (closeRequested bool) {
	for _, ev := range events {
		switch e := ev.(type) {
		case window.Resize:
			f.Width, f.Height = e.Width, e.Height
			if f.viewport != nil {
				f.viewport.Viewport(0, 0, e.Width, e.Height)
			}
		case window.CloseRequest:
			closeRequested = true
		case window.KeyEvent:
			if e.Key == window.KeyEscape && e.Action == window.Press {
				closeRequested = true
			}
		case window.CursorMove:
			f.Mouse = NormalizeCursor(e.X, e.Y, f.Width, f.Height)
		case window.MouseButtonEvent:
			if e.Button == window.ButtonLeft {
				f.MousePressed = win.Pressed(window.ButtonLeft)
			}
		}
	}
	return closeRequested
}

// AdvanceTime sets Time to the elapsed seconds since creation.
func (f *FrameState) AdvanceTime() {
	f.Time = float32(f.now().Sub(f.start).Seconds())
}

// Snapshot returns the current frame values.
func (f *FrameState) Snapshot() Frame {
	return f.Frame
}

// NormalizeCursor maps window pixel coordinates (origin top-left) to
// [0,1] coordinates with the origin at the bottom-left. A zero-sized
// window maps everything to the origin.
func NormalizeCursor(x, y float64, width, height int) [2]float32 {
	if width <= 0 || height <= 0 {
		return [2]float32{}
	}
	return [2]float32{float32(x / float64(width)), float32(1 - y/float64(height))}
}
