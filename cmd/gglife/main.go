// Command gglife runs a cellular automaton on the GPU and writes snapshots
// of the rendered grid.
//
// Usage:
//
//	gglife -width 256 -height 256 -seed glider.png -frames 500 -snapshot-dir out -snapshot-every 50
//
// Without -seed the grid starts from a random fill of -density. The run
// ends after -frames frames, or on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gogpu/life"
	"github.com/gogpu/life/automaton"
	"github.com/gogpu/life/backend"
	"github.com/gogpu/life/metrics"
	"github.com/gogpu/life/window"

	_ "github.com/gogpu/life/backend/software"
	_ "github.com/gogpu/life/backend/wgpu"
)

type flags struct {
	width, height int
	seed          string
	density       float64
	randSeed      uint64
	backendName   string
	rule          string
	radius        float64
	workgroup     uint
	frames        uint64
	snapshotDir   string
	snapshotEvery uint64
	scale         int
	compute       string
	copyStages    string
	vertex        string
	fragment      string
	swap          bool
	metricsAddr   string
	logLevel      string
}

func parseFlags() *flags {
	f := &flags{}
	flag.IntVar(&f.width, "width", 1024, "grid width in cells")
	flag.IntVar(&f.height, "height", 1024, "grid height in cells")
	flag.StringVar(&f.seed, "seed", "", "seed image (png, jpeg, gif, bmp, tiff, webp); empty for a random fill")
	flag.Float64Var(&f.density, "density", 0.25, "alive probability of the random fill")
	flag.Uint64Var(&f.randSeed, "rand", 1, "random fill seed")
	flag.StringVar(&f.backendName, "backend", "auto", "backend: "+strings.Join(backend.Available(), ", ")+" or auto")
	flag.StringVar(&f.rule, "rule", automaton.Conway.String(), "birth/survival rule, e.g. B36/S23")
	flag.Float64Var(&f.radius, "radius", 0.05, "brush radius in normalized grid units")
	flag.UintVar(&f.workgroup, "workgroup", automaton.WorkgroupSize, "compute local size in x and y; must match @workgroup_size of -compute and -copy stages")
	flag.Uint64Var(&f.frames, "frames", 0, "stop after this many frames (0 runs until interrupted)")
	flag.StringVar(&f.snapshotDir, "snapshot-dir", "", "directory for PNG snapshots")
	flag.Uint64Var(&f.snapshotEvery, "snapshot-every", 0, "write every Nth frame (0 disables)")
	flag.IntVar(&f.scale, "snapshot-scale", 1, "integer upscale of snapshots")
	flag.StringVar(&f.compute, "compute", "", "comma-separated compute stage files replacing the step program")
	flag.StringVar(&f.copyStages, "copy", "", "comma-separated compute stage files replacing the copy program")
	flag.StringVar(&f.vertex, "vertex", "", "vertex stage file")
	flag.StringVar(&f.fragment, "fragment", "", "fragment stage file")
	flag.BoolVar(&f.swap, "swap", false, "swap generation images instead of copying")
	flag.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flag.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.Parse()
	return f
}

func main() {
	if err := run(parseFlags()); err != nil {
		fmt.Fprintln(os.Stderr, "gglife:", err)
		os.Exit(1)
	}
}

func run(f *flags) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	sessionID := uuid.New().String()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("session", sessionID)
	life.SetLogger(logger)

	cfg, seed, err := configure(f)
	if err != nil {
		return err
	}

	dev, err := backend.OpenOrDefault(f.backendName)
	if err != nil {
		return err
	}
	defer dev.Destroy()
	logger.Info("backend selected", "name", dev.Name(), "grid", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "rule", cfg.Rule)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	collector := metrics.New(reg, sessionID)
	if f.metricsAddr != "" {
		srv := serveMetrics(f.metricsAddr, reg, logger)
		defer shutdown(srv)
	}

	opts := []life.Option{
		life.WithConfig(cfg),
		life.WithSeed(seed),
		life.WithLogger(logger),
		life.WithObserver(collector),
	}
	if f.frames > 0 {
		opts = append(opts, life.WithMaxFrames(f.frames))
	}
	sess, err := life.NewSession(dev, opts...)
	if err != nil {
		return err
	}
	defer sess.Close()

	var winOpts []window.HeadlessOption
	winOpts = append(winOpts, window.WithLogger(logger))
	if f.snapshotDir != "" && f.snapshotEvery > 0 {
		if err := os.MkdirAll(f.snapshotDir, 0o755); err != nil {
			return fmt.Errorf("snapshot dir: %w", err)
		}
		snap := window.NewSnapshotter(dev, f.snapshotDir, f.snapshotEvery)
		snap.Scale = f.scale
		winOpts = append(winOpts, window.WithSnapshots(snap))
	}
	win := window.NewHeadless(cfg.Width, cfg.Height, winOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := sess.Run(ctx, win); err != nil {
		return err
	}
	logger.Info("run finished", "frames", win.Presented(), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// configure turns the flags into a session config and seed.
func configure(f *flags) (life.Config, life.Seed, error) {
	cfg := life.DefaultConfig()
	cfg.Width, cfg.Height = f.width, f.height
	cfg.MouseRadius = float32(f.radius)
	cfg.WorkgroupSize = uint32(f.workgroup)
	cfg.Swap = f.swap
	cfg.ComputePaths = splitList(f.compute)
	cfg.CopyPaths = splitList(f.copyStages)
	cfg.VertexPath, cfg.FragmentPath = f.vertex, f.fragment

	rule, err := automaton.ParseRule(f.rule)
	if err != nil {
		return cfg, nil, err
	}
	cfg.Rule = rule
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	if f.seed == "" {
		return cfg, life.RandomSeed{Density: f.density, Seed: f.randSeed}, nil
	}
	seed, err := life.LoadImageSeed(f.seed)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, seed, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
