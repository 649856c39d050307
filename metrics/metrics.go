// Package metrics exports main loop instrumentation to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gogpu/life"
)

// Collector is a life.Observer that records frame and pass timings and the
// loop state.
type Collector struct {
	// Frames counts presented frames
	Frames prometheus.Counter

	// PassDuration tracks pass execution time by pass name
	PassDuration *prometheus.HistogramVec

	// FrameDuration tracks the time of a whole loop iteration
	FrameDuration prometheus.Histogram

	// LoopState holds the numeric life.LoopState (0 running, 1 closing,
	// 2 terminated)
	LoopState prometheus.Gauge
}

var _ life.Observer = (*Collector)(nil)

// frameBuckets spans 0.5ms to ~1s.
var frameBuckets = prometheus.ExponentialBuckets(0.0005, 2, 12)

// New registers the collector's metrics on reg. session is attached as a
// constant label so that several runs can share a registry.
func New(reg prometheus.Registerer, session string) *Collector {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"session": session}

	return &Collector{
		Frames: factory.NewCounter(prometheus.CounterOpts{
			Name:        "gglife_frames_total",
			Help:        "Number of frames presented",
			ConstLabels: labels,
		}),
		PassDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "gglife_pass_duration_seconds",
			Help:        "Pass execution time in seconds",
			Buckets:     frameBuckets,
			ConstLabels: labels,
		}, []string{"pass"}),
		FrameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "gglife_frame_duration_seconds",
			Help:        "Main loop iteration time in seconds",
			Buckets:     frameBuckets,
			ConstLabels: labels,
		}),
		LoopState: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "gglife_loop_state",
			Help:        "Main loop state (0 running, 1 closing, 2 terminated)",
			ConstLabels: labels,
		}),
	}
}

// PassDone observes one pass execution.
func (c *Collector) PassDone(pass string, d time.Duration) {
	c.PassDuration.WithLabelValues(pass).Observe(d.Seconds())
}

// FrameDone observes one presented frame.
func (c *Collector) FrameDone(_ uint64, d time.Duration) {
	c.Frames.Inc()
	c.FrameDuration.Observe(d.Seconds())
}

// StateChanged records the new loop state.
func (c *Collector) StateChanged(_, to life.LoopState) {
	c.LoopState.Set(float64(to))
}
