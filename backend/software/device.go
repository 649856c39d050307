package software

import (
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/naga"

	"github.com/gogpu/life/backend"
	"github.com/gogpu/life/gpucore"
	"github.com/gogpu/life/internal/wgslmeta"
)

func init() {
	backend.Register(backend.BackendSoftware, func() (gpucore.Device, error) {
		return New(), nil
	})
}

// Stats counts the commands a Device has executed.
type Stats struct {
	Dispatches uint64
	Barriers   uint64
	Draws      uint64
	Triangles  uint64
}

type shaderObject struct {
	kind gpucore.StageKind
	meta *wgslmeta.Module
}

type imageBinding struct {
	texture gpucore.TextureID
	access  gpucore.Access
	format  gpucore.TextureFormat
}

// Device is a CPU implementation of gpucore.Device.
//
// Device is NOT safe for concurrent use.
type Device struct {
	logger atomic.Pointer[slog.Logger]

	nextID   uint64
	shaders  map[gpucore.ShaderID]*shaderObject
	programs map[gpucore.ProgramID]*program
	textures map[gpucore.TextureID]*texture

	active   *program
	images   map[uint32]imageBinding
	samplers map[uint32]gpucore.TextureID

	framebuffer *image.RGBA
	clearColor  gpucore.Color

	stats Stats
}

var _ gpucore.Device = (*Device)(nil)

// New creates a software device with an empty 1x1 framebuffer.
func New() *Device {
	d := &Device{
		shaders:     make(map[gpucore.ShaderID]*shaderObject),
		programs:    make(map[gpucore.ProgramID]*program),
		textures:    make(map[gpucore.TextureID]*texture),
		images:      make(map[uint32]imageBinding),
		samplers:    make(map[uint32]gpucore.TextureID),
		framebuffer: image.NewRGBA(image.Rect(0, 0, 1, 1)),
		clearColor:  gpucore.Black,
	}
	d.logger.Store(slog.New(nopHandler{}))
	return d
}

// SetLogger sets the device logger. Pass nil to disable logging.
func (d *Device) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	d.logger.Store(l)
}

func (d *Device) log() *slog.Logger { return d.logger.Load() }

// Name returns "software".
func (d *Device) Name() string { return backend.BackendSoftware }

// Stats returns the command counters.
func (d *Device) Stats() Stats { return d.stats }

func (d *Device) newID() uint64 {
	d.nextID++
	return d.nextID
}

// CompileShader validates a WGSL stage with naga and reflects its
// interface.
func (d *Device) CompileShader(kind gpucore.StageKind, source string) (gpucore.ShaderID, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("parse: %w", err)
	}
	module, err := naga.Lower(ast)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("lower: %w", err)
	}
	if len(module.EntryPoints) == 0 {
		return gpucore.InvalidID, fmt.Errorf("no entry point declared")
	}

	meta, err := wgslmeta.FromIR(kind, module)
	if err != nil {
		return gpucore.InvalidID, err
	}
	if _, ok := meta.EntryPoint(kind); !ok {
		return gpucore.InvalidID, fmt.Errorf("no @%s entry point declared", kind)
	}

	id := gpucore.ShaderID(d.newID())
	d.shaders[id] = &shaderObject{kind: kind, meta: meta}
	d.log().Debug("software: shader compiled", "id", id, "kind", kind)
	return id, nil
}

// DeleteShader releases a compiled stage.
func (d *Device) DeleteShader(id gpucore.ShaderID) {
	delete(d.shaders, id)
}

// LinkProgram links stages into a program and resolves their kernels.
func (d *Device) LinkProgram(ids []gpucore.ShaderID) (gpucore.ProgramID, error) {
	objs := make([]*shaderObject, 0, len(ids))
	for _, id := range ids {
		obj, ok := d.shaders[id]
		if !ok {
			return gpucore.InvalidID, fmt.Errorf("shader %d does not exist", id)
		}
		objs = append(objs, obj)
	}

	p, err := link(objs)
	if err != nil {
		return gpucore.InvalidID, err
	}
	p.id = gpucore.ProgramID(d.newID())
	d.programs[p.id] = p
	d.log().Debug("software: program linked", "id", p.id, "kind", p.kind, "stages", len(ids))
	return p.id, nil
}

// DeleteProgram releases a program, deactivating it if active.
func (d *Device) DeleteProgram(id gpucore.ProgramID) {
	if d.active != nil && d.active.id == id {
		d.active = nil
	}
	delete(d.programs, id)
}

// UseProgram activates a program. InvalidID or an unknown ID deactivates.
func (d *Device) UseProgram(id gpucore.ProgramID) {
	d.active = d.programs[id]
}

// UniformLocation returns the location of a uniform member or resource.
func (d *Device) UniformLocation(id gpucore.ProgramID, name string) gpucore.UniformLocation {
	p, ok := d.programs[id]
	if !ok {
		return gpucore.NoLocation
	}
	return p.meta.Location(name)
}

// ComputeWorkgroupSize returns the local size of a compute program.
func (d *Device) ComputeWorkgroupSize(id gpucore.ProgramID) [3]uint32 {
	p, ok := d.programs[id]
	if !ok || p.kind != gpucore.StageCompute {
		return [3]uint32{}
	}
	return p.workgroup
}

// Uniform1i writes an i32 member, or re-targets a resource to unit v.
func (d *Device) Uniform1i(loc gpucore.UniformLocation, v int32) {
	if d.active == nil {
		return
	}
	if r, ok := d.active.meta.ResourceAt(loc); ok {
		if v < 0 {
			d.log().Warn("software: negative unit ignored", "resource", r.Name, "unit", v)
			return
		}
		d.active.units[r.Name] = uint32(v)
		return
	}
	d.write(loc, "i32", uint32(v))
}

// Uniform1ui writes a u32 member.
func (d *Device) Uniform1ui(loc gpucore.UniformLocation, v uint32) {
	d.write(loc, "u32", v)
}

// Uniform2ui writes a vec2<u32> member.
func (d *Device) Uniform2ui(loc gpucore.UniformLocation, x, y uint32) {
	d.write(loc, "u32", x, y)
}

// Uniform1f writes an f32 member.
func (d *Device) Uniform1f(loc gpucore.UniformLocation, v float32) {
	d.write(loc, "f32", f32bits(v))
}

// Uniform2f writes a vec2<f32> member.
func (d *Device) Uniform2f(loc gpucore.UniformLocation, x, y float32) {
	d.write(loc, "f32", f32bits(x), f32bits(y))
}

// Uniform3f writes a vec3<f32> member.
func (d *Device) Uniform3f(loc gpucore.UniformLocation, x, y, z float32) {
	d.write(loc, "f32", f32bits(x), f32bits(y), f32bits(z))
}

// Uniform4f writes a vec4<f32> member.
func (d *Device) Uniform4f(loc gpucore.UniformLocation, x, y, z, w float32) {
	d.write(loc, "f32", f32bits(x), f32bits(y), f32bits(z), f32bits(w))
}

func (d *Device) write(loc gpucore.UniformLocation, scalar string, words ...uint32) {
	if d.active == nil || !loc.Valid() {
		return
	}
	if err := d.active.setUniform(loc, scalar, words); err != nil {
		d.log().Warn("software: uniform write ignored", "location", loc, "err", err)
	}
}

// CreateTexture allocates a zero-filled texture.
func (d *Device) CreateTexture(width, height int, format gpucore.TextureFormat) (gpucore.TextureID, error) {
	if width <= 0 || height <= 0 {
		return gpucore.InvalidID, fmt.Errorf("software: invalid texture size %dx%d", width, height)
	}
	if format.BytesPerTexel() == 0 {
		return gpucore.InvalidID, fmt.Errorf("software: unsupported format %v", format)
	}
	id := gpucore.TextureID(d.newID())
	d.textures[id] = newTexture(width, height, format)
	return id, nil
}

// WriteTexture replaces the texture contents.
func (d *Device) WriteTexture(id gpucore.TextureID, data []byte) error {
	tex, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("software: texture %d does not exist", id)
	}
	if len(data) != len(tex.data) {
		return fmt.Errorf("software: texture %d expects %d bytes, got %d", id, len(tex.data), len(data))
	}
	copy(tex.data, data)
	return nil
}

// ReadTexture returns a copy of the texture contents.
func (d *Device) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	tex, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("software: texture %d does not exist", id)
	}
	out := make([]byte, len(tex.data))
	copy(out, tex.data)
	return out, nil
}

// DeleteTexture releases a texture.
func (d *Device) DeleteTexture(id gpucore.TextureID) {
	delete(d.textures, id)
}

// BindImageTexture attaches a texture to an image unit.
func (d *Device) BindImageTexture(unit uint32, id gpucore.TextureID, access gpucore.Access, format gpucore.TextureFormat) {
	d.images[unit] = imageBinding{texture: id, access: access, format: format}
}

// BindTexture attaches a texture to a sampling unit.
func (d *Device) BindTexture(unit uint32, id gpucore.TextureID) {
	d.samplers[unit] = id
}

// DispatchCompute runs the active compute kernel over every invocation of
// the grid, in row-major workgroup order.
func (d *Device) DispatchCompute(groupsX, groupsY, groupsZ uint32) {
	p := d.active
	if p == nil || p.compute == nil {
		d.log().Warn("software: dispatch without an active compute program")
		return
	}
	d.stats.Dispatches++

	size := p.workgroup
	nx, ny, nz := groupsX*size[0], groupsY*size[1], groupsZ*size[2]
	inv := &Invocation{dev: d, prog: p}
	for z := uint32(0); z < nz; z++ {
		for y := uint32(0); y < ny; y++ {
			for x := uint32(0); x < nx; x++ {
				inv.GlobalID = [3]uint32{x, y, z}
				p.compute(inv)
			}
		}
	}
}

// MemoryBarrier is a no-op ordering point: commands already execute
// synchronously.
func (d *Device) MemoryBarrier(bits gpucore.BarrierBits) {
	d.stats.Barriers++
}

// Viewport resizes the framebuffer. Contents are discarded.
func (d *Device) Viewport(x, y, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	b := d.framebuffer.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return
	}
	d.framebuffer = image.NewRGBA(image.Rect(0, 0, width, height))
}

// ClearColor sets the clear color.
func (d *Device) ClearColor(c gpucore.Color) {
	d.clearColor = c
}

// Clear fills the framebuffer with the clear color.
func (d *Device) Clear() {
	c := toRGBA(d.clearColor)
	pix := d.framebuffer.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// DrawArrays rasterizes count vertices as a triangle list.
func (d *Device) DrawArrays(first, count int) {
	p := d.active
	if p == nil || p.vertex == nil || p.fragment == nil {
		d.log().Warn("software: draw without an active render program")
		return
	}
	d.stats.Draws++

	inv := &Invocation{dev: d, prog: p}
	for v := first; v+2 < first+count; v += 3 {
		var tri [3]vertexOut
		for i := range tri {
			inv.VertexIndex = uint32(v + i)
			pos, vary := p.vertex(inv)
			tri[i] = vertexOut{position: pos, varyings: vary}
		}
		d.stats.Triangles++
		rasterize(d.framebuffer, tri, func(varyings []float32) [4]float32 {
			return p.fragment(inv, varyings)
		})
	}
}

// ReadPixels returns a copy of the framebuffer.
func (d *Device) ReadPixels() (*image.RGBA, error) {
	out := image.NewRGBA(d.framebuffer.Bounds())
	copy(out.Pix, d.framebuffer.Pix)
	return out, nil
}

// Destroy releases every resource.
func (d *Device) Destroy() {
	clear(d.shaders)
	clear(d.programs)
	clear(d.textures)
	clear(d.images)
	clear(d.samplers)
	d.active = nil
}
