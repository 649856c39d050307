package shader

import (
	"fmt"

	"github.com/gogpu/life/gpucore"
)

// Program is an executable GPU program.
//
// Run performs the program's per-frame work: a dispatch for compute
// programs, a clear-and-draw for render programs.
type Program interface {
	ID() gpucore.ProgramID
	Use()
	Run()
	UniformLocation(name string) (gpucore.UniformLocation, error)
	Close() error
}

// Object is a linked program on a device. It owns the program handle for
// its lifetime; the compiled stages are released right after linking.
//
// Uniform setters write to the device's active program, so the program
// must be activated with Use before they are called. A setter for a name
// the program does not declare logs a warning and does nothing.
type Object struct {
	dev    gpucore.Device
	id     gpucore.ProgramID
	label  string
	closed bool
}

// CompileAndLink compiles each stage in order and links them into one
// program. The first stage that fails to compile aborts with a
// *CompileError naming its index. Compiled stages are deleted after the
// link attempt whether it succeeds or not.
func CompileAndLink(dev gpucore.Device, label string, stages ...Stage) (*Object, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: %s has no stages", ErrStageCount, label)
	}

	ids := make([]gpucore.ShaderID, 0, len(stages))
	release := func() {
		for _, id := range ids {
			dev.DeleteShader(id)
		}
	}

	for i, st := range stages {
		slogger().Debug("shader: compiling stage", "program", label, "index", i, "kind", st.Kind, "path", st.Path)
		id, err := dev.CompileShader(st.Kind, st.Source)
		if err != nil {
			release()
			return nil, &CompileError{Index: i, Kind: st.Kind, Path: st.Path, Log: err.Error()}
		}
		ids = append(ids, id)
	}

	prog, err := dev.LinkProgram(ids)
	release()
	if err != nil {
		return nil, &LinkError{Label: label, Log: err.Error()}
	}

	slogger().Info("shader: program linked", "program", label, "stages", len(stages), "backend", dev.Name())
	return &Object{dev: dev, id: prog, label: label}, nil
}

// ID returns the device program handle.
func (o *Object) ID() gpucore.ProgramID { return o.id }

// Label returns the name the program was built with.
func (o *Object) Label() string { return o.label }

// Device returns the device the program lives on.
func (o *Object) Device() gpucore.Device { return o.dev }

// Use makes the program the active program.
func (o *Object) Use() {
	o.dev.UseProgram(o.id)
}

// UniformLocation resolves a uniform or resource name. It returns an error
// wrapping ErrUniformNotFound when the program does not declare name.
func (o *Object) UniformLocation(name string) (gpucore.UniformLocation, error) {
	if o.closed {
		return gpucore.NoLocation, ErrClosed
	}
	loc := o.dev.UniformLocation(o.id, name)
	if !loc.Valid() {
		return gpucore.NoLocation, fmt.Errorf("%w: %q in %s", ErrUniformNotFound, name, o.label)
	}
	return loc, nil
}

// location resolves name for a setter, logging when it is missing.
func (o *Object) location(name string) (gpucore.UniformLocation, bool) {
	loc, err := o.UniformLocation(name)
	if err != nil {
		slogger().Warn("shader: uniform not set", "program", o.label, "name", name, "err", err)
		return gpucore.NoLocation, false
	}
	return loc, true
}

// SetBool sets a boolean uniform. WGSL uniform blocks cannot hold bool, so
// the member is a u32 holding 0 or 1.
func (o *Object) SetBool(name string, v bool) {
	var u uint32
	if v {
		u = 1
	}
	o.SetUint(name, u)
}

// SetInt sets an i32 uniform.
func (o *Object) SetInt(name string, v int32) {
	if loc, ok := o.location(name); ok {
		o.dev.Uniform1i(loc, v)
	}
}

// SetUint sets a u32 uniform.
func (o *Object) SetUint(name string, v uint32) {
	if loc, ok := o.location(name); ok {
		o.dev.Uniform1ui(loc, v)
	}
}

// SetUVec2 sets a vec2<u32> uniform.
func (o *Object) SetUVec2(name string, x, y uint32) {
	if loc, ok := o.location(name); ok {
		o.dev.Uniform2ui(loc, x, y)
	}
}

// SetFloat sets an f32 uniform.
func (o *Object) SetFloat(name string, v float32) {
	if loc, ok := o.location(name); ok {
		o.dev.Uniform1f(loc, v)
	}
}

// SetVec2 sets a vec2<f32> uniform from components.
func (o *Object) SetVec2(name string, x, y float32) {
	if loc, ok := o.location(name); ok {
		o.dev.Uniform2f(loc, x, y)
	}
}

// SetVec3 sets a vec3<f32> uniform from components.
func (o *Object) SetVec3(name string, x, y, z float32) {
	if loc, ok := o.location(name); ok {
		o.dev.Uniform3f(loc, x, y, z)
	}
}

// SetVec4 sets a vec4<f32> uniform from components.
func (o *Object) SetVec4(name string, x, y, z, w float32) {
	if loc, ok := o.location(name); ok {
		o.dev.Uniform4f(loc, x, y, z, w)
	}
}

// SetVector3 sets a vec3<f32> uniform from a vector.
func (o *Object) SetVector3(name string, v [3]float32) {
	o.SetVec3(name, v[0], v[1], v[2])
}

// SetVector4 sets a vec4<f32> uniform from a vector.
func (o *Object) SetVector4(name string, v [4]float32) {
	o.SetVec4(name, v[0], v[1], v[2], v[3])
}

// SetColor sets a vec4<f32> uniform from a color.
func (o *Object) SetColor(name string, c gpucore.Color) {
	o.SetVec4(name, c.R, c.G, c.B, c.A)
}

// BindImage attaches a texture to an image unit. The binding is device
// state and applies to whatever program runs next.
func (o *Object) BindImage(tex gpucore.TextureID, unit uint32, access gpucore.Access, format gpucore.TextureFormat) {
	o.dev.BindImageTexture(unit, tex, access, format)
}

// BindTexture attaches a texture to a sampling unit.
func (o *Object) BindTexture(tex gpucore.TextureID, unit uint32) {
	o.dev.BindTexture(unit, tex)
}

// BindTextureUniform points the named sampled resource at unit. The
// program is activated for the write and deactivated afterwards. Call it
// once at startup; the setting persists for the program's lifetime.
func (o *Object) BindTextureUniform(name string, unit uint32) {
	o.Use()
	o.SetInt(name, int32(unit))
	o.dev.UseProgram(gpucore.InvalidID)
}

// Close releases the program. Closing twice is a no-op.
func (o *Object) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	o.dev.DeleteProgram(o.id)
	slogger().Debug("shader: program released", "program", o.label)
	return nil
}
