package window

import (
	"log/slog"
	"sync"
)

// Headless is a Window without a display. Events are scripted per poll or
// pushed from other goroutines; Present optionally writes snapshots.
//
// Headless is safe for concurrent use.
type Headless struct {
	mu sync.Mutex

	width, height    int
	cursorX, cursorY float64
	buttons          [ButtonMiddle + 1]bool

	script map[uint64][]Event
	queue  []Event
	polls  uint64

	presented uint64
	snapshots *Snapshotter
	closed    bool
	logger    *slog.Logger
}

var _ Window = (*Headless)(nil)

// HeadlessOption configures a Headless window.
type HeadlessOption func(*Headless)

// WithScript delivers events on the given poll (0 is the first poll).
// Scripts for the same poll accumulate in order.
func WithScript(poll uint64, events ...Event) HeadlessOption {
	return func(h *Headless) {
		h.script[poll] = append(h.script[poll], events...)
	}
}

// WithSnapshots writes presented frames through s.
func WithSnapshots(s *Snapshotter) HeadlessOption {
	return func(h *Headless) {
		h.snapshots = s
	}
}

// WithLogger sets the window logger.
func WithLogger(l *slog.Logger) HeadlessOption {
	return func(h *Headless) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHeadless creates a headless window with the given framebuffer size.
func NewHeadless(width, height int, opts ...HeadlessOption) *Headless {
	h := &Headless{
		width:  width,
		height: height,
		script: make(map[uint64][]Event),
		logger: slog.New(nopHandler{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Push queues events for the next poll.
func (h *Headless) Push(events ...Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queue = append(h.queue, events...)
}

// PollEvents returns the scripted events for this poll followed by pushed
// events, after applying them to the window state.
func (h *Headless) PollEvents() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	events := append(h.script[h.polls], h.queue...)
	delete(h.script, h.polls)
	h.queue = nil
	h.polls++

	for _, ev := range events {
		switch e := ev.(type) {
		case Resize:
			h.width, h.height = e.Width, e.Height
		case CursorMove:
			h.cursorX, h.cursorY = e.X, e.Y
		case MouseButtonEvent:
			if int(e.Button) < len(h.buttons) {
				h.buttons[e.Button] = e.Action != Release
			}
		}
	}
	return events
}

// Size returns the framebuffer size.
func (h *Headless) Size() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

// CursorPos returns the last cursor position.
func (h *Headless) CursorPos() (float64, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursorX, h.cursorY
}

// Pressed returns the button state after the last poll.
func (h *Headless) Pressed(b Button) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if int(b) >= len(h.buttons) {
		return false
	}
	return h.buttons[b]
}

// Present counts the frame and writes a snapshot when one is due.
// Snapshot failures are logged, not returned.
func (h *Headless) Present() error {
	h.mu.Lock()
	frame := h.presented
	h.presented++
	snap := h.snapshots
	h.mu.Unlock()

	if snap == nil {
		return nil
	}
	path, err := snap.Capture(frame)
	if err != nil {
		h.logger.Warn("window: snapshot failed", "frame", frame, "err", err)
		return nil
	}
	if path != "" {
		h.logger.Debug("window: snapshot written", "frame", frame, "path", path)
	}
	return nil
}

// Presented returns the number of frames presented.
func (h *Headless) Presented() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presented
}

// Closed reports whether Close was called.
func (h *Headless) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Close marks the window closed.
func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}
