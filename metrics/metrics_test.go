package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/gogpu/life"
	"github.com/gogpu/life/backend/software"
	"github.com/gogpu/life/window"
)

func TestCollectorObserves(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, "test")

	c.PassDone("step", 2*time.Millisecond)
	c.PassDone("step", 3*time.Millisecond)
	c.PassDone("render", time.Millisecond)
	c.FrameDone(0, 6*time.Millisecond)
	c.StateChanged(life.Running, life.Closing)

	if got := testutil.ToFloat64(c.Frames); got != 1 {
		t.Errorf("frames = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.LoopState); got != float64(life.Closing) {
		t.Errorf("loop state = %v, want %v", got, float64(life.Closing))
	}
	if n := testutil.CollectAndCount(c.PassDuration); n != 2 {
		t.Errorf("pass series = %d, want 2 (step, render)", n)
	}

	m := &dto.Metric{}
	if err := c.PassDuration.WithLabelValues("step").(prometheus.Histogram).Write(m); err != nil {
		t.Fatal(err)
	}
	if got := m.GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("step samples = %d, want 2", got)
	}
}

func TestCollectorSessionLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, "abc")
	c.FrameDone(0, time.Millisecond)

	expected := `
# HELP gglife_frames_total Number of frames presented
# TYPE gglife_frames_total counter
gglife_frames_total{session="abc"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "gglife_frames_total"); err != nil {
		t.Error(err)
	}
}

func TestCollectorWithSession(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, "run")

	cfg := life.DefaultConfig()
	cfg.Width, cfg.Height = 16, 16
	dev := software.New()
	defer dev.Destroy()
	s, err := life.NewSession(dev, life.WithConfig(cfg), life.WithObserver(c), life.WithMaxFrames(3))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Run(context.Background(), window.NewHeadless(16, 16)); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(c.Frames); got != 3 {
		t.Errorf("frames = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.LoopState); got != float64(life.Terminated) {
		t.Errorf("loop state = %v, want terminated", got)
	}
	if n := testutil.CollectAndCount(c.PassDuration); n != 3 {
		t.Errorf("pass series = %d, want 3 (step, render, copy)", n)
	}
}
