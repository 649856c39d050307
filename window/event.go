package window

import "fmt"

// Event is an input or window-system event delivered by PollEvents.
type Event interface {
	event()
}

// Action is the transition of a key or button.
type Action uint8

// Key and button actions.
const (
	Release Action = iota
	Press
	Repeat
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Release:
		return "release"
	case Press:
		return "press"
	case Repeat:
		return "repeat"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Key identifies a keyboard key. Only the keys the application reacts to
// are named.
type Key uint16

// Keys.
const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyQ
)

// Button identifies a mouse button.
type Button uint8

// Mouse buttons.
const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Resize reports a new framebuffer size in pixels.
type Resize struct {
	Width, Height int
}

// CloseRequest reports that the user asked to close the window.
type CloseRequest struct{}

// KeyEvent reports a key transition.
type KeyEvent struct {
	Key    Key
	Action Action
}

// CursorMove reports a new cursor position in window pixels, origin at the
// top-left.
type CursorMove struct {
	X, Y float64
}

// MouseButtonEvent reports a mouse button transition.
type MouseButtonEvent struct {
	Button Button
	Action Action
}

func (Resize) event()           {}
func (CloseRequest) event()     {}
func (KeyEvent) event()         {}
func (CursorMove) event()       {}
func (MouseButtonEvent) event() {}
