package life

import (
	"errors"
	"testing"

	"github.com/gogpu/life/automaton"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Width != 1024 || c.Height != 1024 {
		t.Errorf("size = %dx%d, want 1024x1024", c.Width, c.Height)
	}
	if c.Rule != automaton.Conway {
		t.Errorf("rule = %v, want B3/S23", c.Rule)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -1 }},
		{"zero workgroup", func(c *Config) { c.WorkgroupSize = 0 }},
		{"negative radius", func(c *Config) { c.MouseRadius = -0.1 }},
		{"vertex without fragment", func(c *Config) { c.VertexPath = "quad_vs.wgsl" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
