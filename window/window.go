// Package window defines the window surface the main loop drives and a
// headless implementation of it.
//
// A Window is polled once per frame. Event state is applied to the window
// before PollEvents returns, so queries made while handling a batch see
// the state at the end of the batch.
package window

// Window is the presentation surface and input source of the main loop.
type Window interface {
	// PollEvents returns the events received since the previous call.
	PollEvents() []Event

	// Size returns the framebuffer size in pixels.
	Size() (width, height int)

	// CursorPos returns the cursor position in window pixels, origin at
	// the top-left.
	CursorPos() (x, y float64)

	// Pressed returns the current state of a mouse button.
	Pressed(b Button) bool

	// Present shows the rendered frame.
	Present() error

	// Close releases the window.
	Close() error
}
