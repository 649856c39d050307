package wgslmeta

import (
	"errors"
	"testing"

	"github.com/gogpu/life/gpucore"
)

const stepSource = `
struct Params {
    grid_size: vec2<u32>,
    mouse_position: vec2<f32>,
    time: f32,
    mouse_radius: f32,
    mouse_pressed: u32,
}

// @group(0) @binding(9) var<storage, read> commented_out: array<u32>;
@group(0) @binding(0) var<storage, read> current_gen: array<u32>;
@group(0) @binding(1) var<storage, read_write> next_gen: array<u32>;
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(8, 4)
fn life_step(@builtin(global_invocation_id) id: vec3<u32>) {
}
`

func TestReflectCompute(t *testing.T) {
	mod, err := Reflect(gpucore.StageCompute, stepSource)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}

	ep, ok := mod.EntryPoint(gpucore.StageCompute)
	if !ok {
		t.Fatal("no compute entry point")
	}
	if ep.Name != "life_step" {
		t.Errorf("entry point = %q, want life_step", ep.Name)
	}
	if ep.WorkgroupSize != [3]uint32{8, 4, 1} {
		t.Errorf("workgroup size = %v, want [8 4 1]", ep.WorkgroupSize)
	}

	if len(mod.Resources) != 2 {
		t.Fatalf("got %d resources, want 2 (comments must be ignored)", len(mod.Resources))
	}
	tests := []struct {
		name    string
		binding uint32
		access  gpucore.Access
	}{
		{"current_gen", 0, gpucore.ReadOnly},
		{"next_gen", 1, gpucore.ReadWrite},
	}
	for _, tt := range tests {
		r, ok := mod.Resource(tt.name)
		if !ok {
			t.Errorf("resource %s missing", tt.name)
			continue
		}
		if r.Binding != tt.binding || r.Access != tt.access {
			t.Errorf("%s: binding=%d access=%v, want %d %v", tt.name, r.Binding, r.Access, tt.binding, tt.access)
		}
	}
}

func TestUniformLayout(t *testing.T) {
	mod, err := Reflect(gpucore.StageCompute, stepSource)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if len(mod.Uniforms) != 1 {
		t.Fatalf("got %d uniform blocks, want 1", len(mod.Uniforms))
	}
	block := mod.Uniforms[0]
	if block.Var != "params" || block.Struct != "Params" || block.Binding != 2 {
		t.Errorf("block = %s %s @%d", block.Var, block.Struct, block.Binding)
	}

	want := []struct {
		name   string
		offset uint32
	}{
		{"grid_size", 0},
		{"mouse_position", 8},
		{"time", 16},
		{"mouse_radius", 20},
		{"mouse_pressed", 24},
	}
	for _, w := range want {
		m, ok := block.Member(w.name)
		if !ok {
			t.Errorf("member %s missing", w.name)
			continue
		}
		if m.Offset != w.offset {
			t.Errorf("%s offset = %d, want %d", w.name, m.Offset, w.offset)
		}
	}
	if block.Size != 32 {
		t.Errorf("block size = %d, want 32", block.Size)
	}
}

// blockOffsets reflects src and returns the member offsets of its only
// uniform block.
func blockOffsets(t *testing.T, src string) (map[string]uint32, *Block) {
	t.Helper()
	mod, err := Reflect(gpucore.StageCompute, src)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if len(mod.Uniforms) != 1 {
		t.Fatalf("got %d uniform blocks, want 1", len(mod.Uniforms))
	}
	offsets := make(map[string]uint32)
	for _, m := range mod.Uniforms[0].Members {
		offsets[m.Name] = m.Offset
	}
	return offsets, mod.Uniforms[0]
}

func TestUniformMemberOffsets(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want map[string]uint32
		size uint32
	}{
		{
			name: "vec3 alignment",
			src: `struct S { a: f32, b: vec3<f32>, c: f32, d: vec4f }
@group(0) @binding(0) var<uniform> s: S;`,
			want: map[string]uint32{"a": 0, "b": 16, "c": 28, "d": 32},
			size: 48,
		},
		{
			name: "align attribute",
			src: `struct S { a: f32, @align(16) b: f32 }
@group(0) @binding(0) var<uniform> s: S;`,
			want: map[string]uint32{"a": 0, "b": 16},
			size: 32,
		},
		{
			name: "size attribute",
			src: `struct S { @size(32) a: f32, b: u32 }
@group(0) @binding(0) var<uniform> s: S;`,
			want: map[string]uint32{"a": 0, "b": 32},
			size: 48,
		},
		{
			name: "matrix member",
			src: `struct S { m: mat4x4<f32>, t: f32 }
@group(0) @binding(0) var<uniform> s: S;`,
			want: map[string]uint32{"m": 0, "t": 64},
			size: 80,
		},
		{
			name: "nested struct",
			src: `struct Light { color: vec4<f32>, power: f32 }
struct S { t: f32, light: Light }
@group(0) @binding(0) var<uniform> s: S;`,
			want: map[string]uint32{"t": 0, "light.color": 16, "light.power": 32},
			size: 48,
		},
		{
			name: "array member",
			src: `struct S { w: array<vec4<f32>, 4>, n: u32 }
@group(0) @binding(0) var<uniform> s: S;`,
			want: map[string]uint32{"w": 0, "n": 64},
			size: 80,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, block := blockOffsets(t, tt.src)
			if len(got) != len(tt.want) {
				t.Errorf("members = %v, want %v", got, tt.want)
			}
			for name, off := range tt.want {
				if o, ok := got[name]; !ok || o != off {
					t.Errorf("%s offset = %d (present %v), want %d", name, o, ok, off)
				}
			}
			if block.Size != tt.size {
				t.Errorf("size = %d, want %d", block.Size, tt.size)
			}
		})
	}
}

func TestMemberShapes(t *testing.T) {
	_, block := blockOffsets(t, `struct S { m: mat4x4<f32>, k: mat3x2<f32>, w: array<vec4<f32>, 4> }
@group(0) @binding(0) var<uniform> s: S;`)

	tests := []struct {
		name          string
		columns, rows int
		stride        uint32
		length        int
	}{
		{"m", 4, 4, 16, 0},
		{"k", 3, 2, 8, 0},
		{"w", 1, 4, 0, 4},
	}
	for _, tt := range tests {
		m, ok := block.Member(tt.name)
		if !ok {
			t.Errorf("member %s missing", tt.name)
			continue
		}
		if m.Columns != tt.columns || m.Rows != tt.rows || m.Stride != tt.stride || m.Len != tt.length {
			t.Errorf("%s: %dx%d stride %d len %d, want %dx%d stride %d len %d",
				tt.name, m.Columns, m.Rows, m.Stride, m.Len, tt.columns, tt.rows, tt.stride, tt.length)
		}
	}
}

func TestScalarUniform(t *testing.T) {
	mod, err := Reflect(gpucore.StageCompute, `@group(0) @binding(3) var<uniform> scale: f32;`)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if len(mod.Uniforms) != 1 {
		t.Fatalf("got %d uniform blocks, want 1", len(mod.Uniforms))
	}
	b := mod.Uniforms[0]
	if b.Var != "scale" || b.Struct != "" || b.Binding != 3 || b.Size != 16 {
		t.Errorf("block = %+v", b)
	}
	if loc := mod.Location("scale"); loc != 0 {
		t.Errorf("Location(scale) = %d, want 0", loc)
	}
}

func TestMultipleUniformBlocks(t *testing.T) {
	mod, err := Reflect(gpucore.StageCompute, `
struct A { x: f32 }
struct B { y: vec2<u32> }
@group(0) @binding(0) var<uniform> a: A;
@group(0) @binding(1) var<uniform> b: B;
@group(0) @binding(2) var<storage, read> cells: array<u32>;`)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if len(mod.Uniforms) != 2 {
		t.Fatalf("got %d uniform blocks, want 2", len(mod.Uniforms))
	}

	tests := []struct {
		name  string
		loc   gpucore.UniformLocation
		block int
	}{
		{"x", 0, 0},
		{"y", 1, 1},
	}
	for _, tt := range tests {
		if got := mod.Location(tt.name); got != tt.loc {
			t.Errorf("Location(%s) = %d, want %d", tt.name, got, tt.loc)
		}
		m, ok := mod.MemberAt(tt.loc)
		if !ok || m.Name != tt.name || m.Block != tt.block {
			t.Errorf("MemberAt(%d) = %+v, %v", tt.loc, m, ok)
		}
	}
	if got := mod.Location("cells"); got != 2 {
		t.Errorf("Location(cells) = %d, want 2", got)
	}
}

func TestReflectErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{
			name: "texture binding",
			src:  `@group(0) @binding(0) var tex: texture_2d<f32>;`,
			want: ErrUnsupportedBinding,
		},
		{
			name: "top-level uniform array",
			src:  `@group(0) @binding(0) var<uniform> w: array<vec4<f32>, 4>;`,
			want: ErrUnsupportedType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reflect(gpucore.StageCompute, tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Reflect(gpucore.StageCompute, `fn broken( {`); err == nil {
		t.Error("syntax error accepted")
	}
}

func TestMerge(t *testing.T) {
	vs, err := Reflect(gpucore.StageVertex, `@vertex fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> { return vec4<f32>(0.0, 0.0, 0.0, 1.0); }`)
	if err != nil {
		t.Fatal(err)
	}
	fs, err := Reflect(gpucore.StageFragment, `
@group(0) @binding(0) var<storage, read> cells: array<u32>;
@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(0.0, 0.0, 0.0, 1.0); }`)
	if err != nil {
		t.Fatal(err)
	}

	mod, err := Merge(vs, fs)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(mod.EntryPoints) != 2 {
		t.Errorf("entry points = %d, want 2", len(mod.EntryPoints))
	}
	if _, ok := mod.EntryPoint(gpucore.StageFragment); !ok {
		t.Error("fragment entry point lost")
	}
	r, ok := mod.Resource("cells")
	if !ok || len(r.Stages) != 1 || r.Stages[0] != gpucore.StageFragment {
		t.Errorf("cells = %+v", r)
	}
}

func TestMergeConflict(t *testing.T) {
	a, _ := Reflect(gpucore.StageCompute, `@group(0) @binding(0) var<storage, read> a: array<u32>;`)
	b, _ := Reflect(gpucore.StageCompute, `@group(0) @binding(0) var<storage, read> b: array<u32>;`)
	c, _ := Reflect(gpucore.StageCompute, `@group(0) @binding(0) var<storage, read_write> a: array<u32>;`)

	if _, err := Merge(a, b); !errors.Is(err, ErrConflict) {
		t.Errorf("shared binding: err = %v, want ErrConflict", err)
	}
	if _, err := Merge(a, c); !errors.Is(err, ErrConflict) {
		t.Errorf("access mismatch: err = %v, want ErrConflict", err)
	}
	if _, err := Merge(a, a); err != nil {
		t.Errorf("identical declarations: %v", err)
	}
}

func TestLocations(t *testing.T) {
	mod, err := Reflect(gpucore.StageCompute, stepSource)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		want gpucore.UniformLocation
	}{
		{"grid_size", 0},
		{"mouse_pressed", 4},
		{"current_gen", 5},
		{"next_gen", 6},
		{"params", gpucore.NoLocation},
		{"missing", gpucore.NoLocation},
	}
	for _, tt := range tests {
		if got := mod.Location(tt.name); got != tt.want {
			t.Errorf("Location(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}

	if m, ok := mod.MemberAt(2); !ok || m.Name != "time" {
		t.Errorf("MemberAt(2) = %+v, %v", m, ok)
	}
	if _, ok := mod.MemberAt(5); ok {
		t.Error("MemberAt(5) returned a resource location")
	}
	if r, ok := mod.ResourceAt(6); !ok || r.Name != "next_gen" {
		t.Errorf("ResourceAt(6) = %+v, %v", r, ok)
	}
	if _, ok := mod.ResourceAt(gpucore.NoLocation); ok {
		t.Error("ResourceAt(NoLocation) succeeded")
	}
}

func TestMemberEncode(t *testing.T) {
	mod, err := Reflect(gpucore.StageCompute, stepSource)
	if err != nil {
		t.Fatal(err)
	}
	block := mod.Uniforms[0]
	data := make([]byte, block.Size)
	grid, _ := block.Member("grid_size")
	if err := grid.Encode(data, "u32", []uint32{3, 5}); err != nil {
		t.Fatal(err)
	}
	if data[0] != 3 || data[4] != 5 {
		t.Errorf("grid_size bytes = %v", data[:8])
	}
	if err := grid.Encode(data, "i32", []uint32{1, 1}); err != nil {
		t.Errorf("i32 into vec2<u32>: %v", err)
	}

	tests := []struct {
		name   string
		member string
		scalar string
		words  []uint32
	}{
		{"component count", "grid_size", "u32", []uint32{1}},
		{"float into u32", "mouse_pressed", "f32", []uint32{0}},
		{"int into f32", "time", "u32", []uint32{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := block.Member(tt.member)
			if err := m.Encode(data, tt.scalar, tt.words); err == nil {
				t.Error("Encode() succeeded")
			}
		})
	}
}

func TestMatrixEncode(t *testing.T) {
	_, block := blockOffsets(t, `struct S { m: mat2x3<f32> }
@group(0) @binding(0) var<uniform> s: S;`)
	m, ok := block.Member("m")
	if !ok {
		t.Fatal("member m missing")
	}
	data := make([]byte, block.Size)
	if err := m.Encode(data, "f32", []uint32{1, 2, 3, 4, 5, 6}); err != nil {
		t.Fatal(err)
	}
	// Columns are vec3 padded to 16 bytes.
	want := map[int]byte{0: 1, 4: 2, 8: 3, 16: 4, 20: 5, 24: 6}
	for off, v := range want {
		if data[off] != v {
			t.Errorf("byte %d = %d, want %d", off, data[off], v)
		}
	}
	if data[12] != 0 {
		t.Errorf("padding byte 12 = %d, want 0", data[12])
	}
}
