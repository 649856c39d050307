package main

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gogpu/life"
	"github.com/gogpu/life/automaton"
)

func defaultFlags() *flags {
	return &flags{
		width: 64, height: 32,
		density: 0.5, randSeed: 7,
		rule:   "B3/S23",
		radius:    0.1,
		workgroup: 8,
	}
}

func TestConfigure(t *testing.T) {
	f := defaultFlags()
	f.rule = "B36/S23"
	f.swap = true
	f.compute = "a.wgsl, b.wgsl,"
	f.workgroup = 16

	cfg, seed, err := configure(f)
	if err != nil {
		t.Fatalf("configure() error = %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 32 || !cfg.Swap || cfg.WorkgroupSize != 16 {
		t.Errorf("cfg = %+v", cfg)
	}
	if want, _ := automaton.ParseRule("B36/S23"); cfg.Rule != want {
		t.Errorf("rule = %v, want %v", cfg.Rule, want)
	}
	if !reflect.DeepEqual(cfg.ComputePaths, []string{"a.wgsl", "b.wgsl"}) {
		t.Errorf("compute paths = %q", cfg.ComputePaths)
	}
	if rs, ok := seed.(life.RandomSeed); !ok || rs.Density != 0.5 || rs.Seed != 7 {
		t.Errorf("seed = %#v, want RandomSeed{0.5, 7}", seed)
	}
}

func TestConfigureErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*flags)
		want   error
	}{
		{"bad rule", func(f *flags) { f.rule = "B9" }, automaton.ErrInvalidRule},
		{"bad size", func(f *flags) { f.width = 0 }, life.ErrInvalidConfig},
		{"negative radius", func(f *flags) { f.radius = -1 }, life.ErrInvalidConfig},
		{"zero workgroup", func(f *flags) { f.workgroup = 0 }, life.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := defaultFlags()
			tt.modify(f)
			if _, _, err := configure(f); !errors.Is(err, tt.want) {
				t.Errorf("configure() error = %v, want %v", err, tt.want)
			}
		})
	}

	f := defaultFlags()
	f.seed = "does-not-exist.png"
	if _, _, err := configure(f); err == nil {
		t.Error("missing seed image accepted")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{" a , ,b ", []string{"a", "b"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
