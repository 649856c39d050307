package window

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestHeadlessScript(t *testing.T) {
	w := NewHeadless(100, 50,
		WithScript(0, CursorMove{X: 10, Y: 20}),
		WithScript(1, MouseButtonEvent{Button: ButtonLeft, Action: Press}, Resize{Width: 200, Height: 80}),
		WithScript(2, MouseButtonEvent{Button: ButtonLeft, Action: Release}),
	)

	if evs := w.PollEvents(); len(evs) != 1 {
		t.Fatalf("poll 0: %d events, want 1", len(evs))
	}
	if x, y := w.CursorPos(); x != 10 || y != 20 {
		t.Errorf("CursorPos() = %v, %v", x, y)
	}
	if w.Pressed(ButtonLeft) {
		t.Error("left pressed before press event")
	}

	w.PollEvents()
	if !w.Pressed(ButtonLeft) {
		t.Error("left not pressed after press event")
	}
	if width, height := w.Size(); width != 200 || height != 80 {
		t.Errorf("Size() = %dx%d, want 200x80", width, height)
	}

	w.PollEvents()
	if w.Pressed(ButtonLeft) {
		t.Error("left still pressed after release")
	}
	if evs := w.PollEvents(); len(evs) != 0 {
		t.Errorf("poll 3: %d events, want none", len(evs))
	}
}

func TestHeadlessPush(t *testing.T) {
	w := NewHeadless(10, 10, WithScript(0, CursorMove{X: 1}))
	w.Push(CloseRequest{})

	evs := w.PollEvents()
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	if _, ok := evs[1].(CloseRequest); !ok {
		t.Errorf("events[1] = %T, want CloseRequest (pushed after scripted)", evs[1])
	}
	if evs := w.PollEvents(); len(evs) != 0 {
		t.Errorf("pushed events delivered twice")
	}
}

func TestHeadlessClose(t *testing.T) {
	w := NewHeadless(1, 1)
	if w.Closed() {
		t.Fatal("new window reports closed")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if !w.Closed() {
		t.Error("Closed() = false after Close")
	}
}

type solid struct {
	c   color.RGBA
	err error
}

func (s solid) ReadPixels() (*image.RGBA, error) {
	if s.err != nil {
		return nil, s.err
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = s.c.R, s.c.G, s.c.B, s.c.A
	}
	return img, nil
}

func TestSnapshotsEveryN(t *testing.T) {
	dir := t.TempDir()
	snap := NewSnapshotter(solid{c: color.RGBA{R: 255, A: 255}}, dir, 2)
	snap.HUD = false
	w := NewHeadless(4, 3, WithSnapshots(snap))

	for i := 0; i < 5; i++ {
		if err := w.Present(); err != nil {
			t.Fatal(err)
		}
	}
	if w.Presented() != 5 {
		t.Errorf("Presented() = %d, want 5", w.Presented())
	}

	for _, frame := range []string{"frame_000000.png", "frame_000002.png", "frame_000004.png"} {
		if _, err := os.Stat(filepath.Join(dir, frame)); err != nil {
			t.Errorf("%s: %v", frame, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "frame_000001.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("frame 1 written, want skipped")
	}
}

func TestSnapshotScaleAndHUD(t *testing.T) {
	dir := t.TempDir()
	snap := NewSnapshotter(solid{c: color.RGBA{B: 255, A: 255}}, dir, 1)
	snap.Scale = 10

	path, err := snap.Capture(0)
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("snapshot = %v, want 40x30", b)
	}
	// Bottom-right is outside the HUD box and keeps the source color.
	if r, g, b, _ := img.At(39, 29).RGBA(); r != 0 || g != 0 || b != 0xffff {
		t.Errorf("pixel (39,29) = %v %v %v, want blue", r, g, b)
	}
	// The HUD box darkens the top-left corner.
	if _, _, b, _ := img.At(1, 1).RGBA(); b == 0xffff {
		t.Error("HUD box not drawn")
	}
}

func TestSnapshotReadError(t *testing.T) {
	snap := NewSnapshotter(solid{err: errors.New("device lost")}, t.TempDir(), 1)
	if _, err := snap.Capture(0); err == nil {
		t.Error("Capture() error = nil, want read failure")
	}
	w := NewHeadless(1, 1, WithSnapshots(snap))
	if err := w.Present(); err != nil {
		t.Errorf("Present() = %v, snapshot errors must not fail presentation", err)
	}
}

func TestSnapshotDisabled(t *testing.T) {
	snap := NewSnapshotter(solid{}, t.TempDir(), 0)
	if path, err := snap.Capture(0); path != "" || err != nil {
		t.Errorf("Capture() = %q, %v; want nothing", path, err)
	}
}
