package automaton

import (
	"testing"

	"github.com/gogpu/life/backend/software"
	"github.com/gogpu/life/gpucore"
	"github.com/gogpu/life/shader"
)

func TestBuiltinProgramsLink(t *testing.T) {
	dev := software.New()
	defer dev.Destroy()

	step, err := shader.NewComputeProgram(dev, "step", StepStages()...)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	defer step.Close()
	cp, err := shader.NewComputeProgram(dev, "copy", CopyStages()...)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	defer cp.Close()
	render, err := shader.NewRenderProgram(dev, "render", RenderStages()...)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	defer render.Close()

	for _, name := range []string{GridSize, Time, MousePosition, MousePressed, MouseRadius, BirthMask, SurviveMask, CurrentImage, NextImage} {
		if _, err := step.UniformLocation(name); err != nil {
			t.Errorf("step: %v", err)
		}
	}
	for _, name := range []string{GridSize, CopySource, CopyTarget} {
		if _, err := cp.UniformLocation(name); err != nil {
			t.Errorf("copy: %v", err)
		}
	}
	for _, name := range []string{GridSize, Background, AliveColor, CellsTexture} {
		if _, err := render.UniformLocation(name); err != nil {
			t.Errorf("render: %v", err)
		}
	}
}

// stepOnce runs the step program once over a w x h grid and returns the
// next generation.
func stepOnce(t *testing.T, cells []byte, w, h int, brush func(p *shader.ComputeProgram)) []byte {
	t.Helper()
	dev := software.New()
	defer dev.Destroy()

	step, err := shader.NewComputeProgram(dev, "step", StepStages()...)
	if err != nil {
		t.Fatal(err)
	}
	cur, _ := dev.CreateTexture(w, h, gpucore.TextureFormatR8Unorm)
	next, _ := dev.CreateTexture(w, h, gpucore.TextureFormatR8Unorm)
	if err := dev.WriteTexture(cur, cells); err != nil {
		t.Fatal(err)
	}

	step.Use()
	step.BindImage(cur, 0, gpucore.ReadOnly, gpucore.TextureFormatR8Unorm)
	step.BindImage(next, 1, gpucore.WriteOnly, gpucore.TextureFormatR8Unorm)
	step.SetUVec2(GridSize, uint32(w), uint32(h))
	step.SetUint(BirthMask, Conway.Birth)
	step.SetUint(SurviveMask, Conway.Survive)
	if brush != nil {
		brush(step)
	}
	step.Dispatch(shader.GroupsFor(w, WorkgroupSize), shader.GroupsFor(h, WorkgroupSize), 1)

	out, err := dev.ReadTexture(next)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestStepWrapsAroundEdges(t *testing.T) {
	const w, h = 5, 5
	cells := make([]byte, w*h)
	// Vertical blinker on the x = 0 column, crossing the bottom edge:
	// rows 4, 0, 1.
	for _, y := range []int{4, 0, 1} {
		cells[y*w] = 255
	}

	out := stepOnce(t, cells, w, h, nil)

	// Horizontal at row 0: x = 4, 0, 1.
	want := make([]byte, w*h)
	for _, x := range []int{4, 0, 1} {
		want[x] = 255
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("cell (%d,%d) = %d, want %d", i%w, i/w, out[i], want[i])
		}
	}
}

func TestStepMouseBrush(t *testing.T) {
	const w, h = 10, 10
	out := stepOnce(t, make([]byte, w*h), w, h, func(p *shader.ComputeProgram) {
		p.SetBool(MousePressed, true)
		p.SetVec2(MousePosition, 0.55, 0.55)
		p.SetFloat(MouseRadius, 0.06)
	})
	for i, v := range out {
		want := byte(0)
		if i == 5*w+5 {
			want = 255
		}
		if v != want {
			t.Fatalf("cell (%d,%d) = %d, want %d", i%w, i/w, v, want)
		}
	}
}

func TestStepNeighbourCounts(t *testing.T) {
	const w, h = 5, 5
	const cx, cy = 2, 2
	around := [8][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}

	tests := []struct {
		name       string
		alive      bool
		neighbours int
		want       byte
	}{
		{"dead with 0", false, 0, 0},
		{"dead with 1", false, 1, 0},
		{"dead with 2", false, 2, 0},
		{"dead with 3 is born", false, 3, 255},
		{"dead with 4", false, 4, 0},
		{"dead with 8", false, 8, 0},
		{"alive with 0 dies", true, 0, 0},
		{"alive with 1 dies", true, 1, 0},
		{"alive with 2 survives", true, 2, 255},
		{"alive with 3 survives", true, 3, 255},
		{"alive with 4 dies", true, 4, 0},
		{"alive with 5 dies", true, 5, 0},
		{"alive with 8 dies", true, 8, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := make([]byte, w*h)
			if tt.alive {
				cells[cy*w+cx] = 255
			}
			for _, d := range around[:tt.neighbours] {
				cells[(cy+d[1])*w+cx+d[0]] = 255
			}

			out := stepOnce(t, cells, w, h, nil)
			if got := out[cy*w+cx]; got != tt.want {
				t.Errorf("center = %d, want %d", got, tt.want)
			}
		})
	}
}
